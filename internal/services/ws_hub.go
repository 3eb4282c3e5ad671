package services

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// writeTimeout bounds a single broadcast write so a stalled client
// cannot block fan-out for everyone else on the channel.
const writeTimeout = 10 * time.Second

// Conn is the subset of a WebSocket connection the hub needs.
// *websocket.Conn satisfies it; tests use fakes.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// writeDeadliner is implemented by connections that support write
// deadlines (*websocket.Conn does).
type writeDeadliner interface {
	SetWriteDeadline(t time.Time) error
}

// Broadcaster is the real-time publish/subscribe channel keyed by
// user identity. Delivery is at-most-once and best-effort: a publish
// to a channel with no subscribers is a no-op, and nothing is queued
// for offline users — clients re-fetch the feed on reconnect.
type Broadcaster interface {
	Subscribe(userID string, conn Conn)
	Unsubscribe(conn Conn)
	Publish(userID string, payload interface{})
}

// ChannelName returns the pub/sub channel identifier for a user.
func ChannelName(userID string) string {
	return "feed_" + userID
}

// subscriber pairs a connection with its write mutex. gorilla/websocket
// allows at most one concurrent writer per connection, so every write
// the hub issues goes through write().
type subscriber struct {
	conn    Conn
	channel string
	writeMu sync.Mutex
}

func (s *subscriber) write(data []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if d, ok := s.conn.(writeDeadliner); ok {
		d.SetWriteDeadline(time.Now().Add(writeTimeout))
	}
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

// WSHub is the in-process Broadcaster. It maintains the set of live
// connections per channel; the registry is guarded by a single RWMutex
// and each connection carries its own write mutex, so concurrent
// publishes to one channel serialize per connection instead of racing
// on the socket.
type WSHub struct {
	mu       sync.RWMutex
	channels map[string]map[*subscriber]struct{}
	members  map[Conn]*subscriber
}

// NewWSHub creates a new WebSocket hub
func NewWSHub() *WSHub {
	return &WSHub{
		channels: make(map[string]map[*subscriber]struct{}),
		members:  make(map[Conn]*subscriber),
	}
}

// Subscribe registers conn under the user's channel. A connection
// belongs to at most one channel; resubscribing moves it.
func (h *WSHub) Subscribe(userID string, conn Conn) {
	channel := ChannelName(userID)

	h.mu.Lock()
	defer h.mu.Unlock()

	if prev, ok := h.members[conn]; ok {
		h.removeLocked(prev)
	}

	sub := &subscriber{conn: conn, channel: channel}
	set, ok := h.channels[channel]
	if !ok {
		set = make(map[*subscriber]struct{})
		h.channels[channel] = set
	}
	set[sub] = struct{}{}
	h.members[conn] = sub

	log.Info().Str("channel", channel).Msg("WebSocket connection subscribed")
}

// Unsubscribe removes conn from whatever channel it is in. Safe to
// call for a connection that was never subscribed.
func (h *WSHub) Unsubscribe(conn Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	sub, ok := h.members[conn]
	if !ok {
		return
	}
	h.removeLocked(sub)

	log.Info().Str("channel", sub.channel).Msg("WebSocket connection unsubscribed")
}

func (h *WSHub) removeLocked(sub *subscriber) {
	if set, ok := h.channels[sub.channel]; ok {
		delete(set, sub)
		if len(set) == 0 {
			delete(h.channels, sub.channel)
		}
	}
	delete(h.members, sub.conn)
}

// Publish delivers payload to every connection subscribed to the
// user's channel. A write failure drops and closes that one
// connection without aborting delivery to the rest.
func (h *WSHub) Publish(userID string, payload interface{}) {
	channel := ChannelName(userID)

	data, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Str("channel", channel).Msg("Failed to marshal broadcast payload")
		return
	}

	h.mu.RLock()
	set, ok := h.channels[channel]
	if !ok {
		h.mu.RUnlock()
		return
	}
	subs := make([]*subscriber, 0, len(set))
	for sub := range set {
		subs = append(subs, sub)
	}
	h.mu.RUnlock()

	var dead []*subscriber
	for _, sub := range subs {
		if err := sub.write(data); err != nil {
			log.Error().Err(err).Str("channel", channel).Msg("Failed to deliver broadcast")
			dead = append(dead, sub)
		}
	}

	for _, sub := range dead {
		h.Unsubscribe(sub.conn)
		sub.conn.Close()
	}
}

// IsSubscribed reports whether the user has at least one live
// connection on their channel.
func (h *WSHub) IsSubscribed(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.channels[ChannelName(userID)]
	return ok
}

// SendError writes an error message to a single connection. When the
// connection is subscribed the write goes through its write mutex, so
// the read loop's error replies never race a concurrent Publish.
func (h *WSHub) SendError(conn Conn, message string) error {
	data, err := json.Marshal(map[string]string{"type": "error", "message": message})
	if err != nil {
		return fmt.Errorf("failed to marshal error message: %w", err)
	}

	h.mu.RLock()
	sub, ok := h.members[conn]
	h.mu.RUnlock()
	if ok {
		return sub.write(data)
	}

	if d, hasDeadline := conn.(writeDeadliner); hasDeadline {
		d.SetWriteDeadline(time.Now().Add(writeTimeout))
	}
	return conn.WriteMessage(websocket.TextMessage, data)
}
