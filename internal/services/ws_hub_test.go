package services

import (
	"encoding/json"
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeConn records every frame and write deadline. Like a real gorilla
// connection it tolerates at most one writer at a time: overlapping
// WriteMessage calls are flagged instead of panicking.
type fakeConn struct {
	mu        sync.Mutex
	messages  [][]byte
	deadlines []time.Time
	writeErr  error
	closed    bool

	inWrite    int32
	overlapped int32
}

func (c *fakeConn) WriteMessage(_ int, data []byte) error {
	if atomic.AddInt32(&c.inWrite, 1) > 1 {
		atomic.StoreInt32(&c.overlapped, 1)
	}
	runtime.Gosched()
	defer atomic.AddInt32(&c.inWrite, -1)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.writeErr != nil {
		return c.writeErr
	}
	c.messages = append(c.messages, data)
	return nil
}

func (c *fakeConn) SetWriteDeadline(t time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deadlines = append(c.deadlines, t)
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) overlappedWrites() bool {
	return atomic.LoadInt32(&c.overlapped) == 1
}

func (c *fakeConn) writeDeadlines() []time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]time.Time(nil), c.deadlines...)
}

func (c *fakeConn) received() []map[string]interface{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []map[string]interface{}
	for _, raw := range c.messages {
		var m map[string]interface{}
		if err := json.Unmarshal(raw, &m); err == nil {
			out = append(out, m)
		}
	}
	return out
}

func TestPublishDeliversInOrder(t *testing.T) {
	hub := NewWSHub()
	conn := &fakeConn{}
	hub.Subscribe("u1", conn)

	hub.Publish("u1", map[string]string{"seq": "A"})
	hub.Publish("u1", map[string]string{"seq": "B"})

	got := conn.received()
	require.Len(t, got, 2)
	assert.Equal(t, "A", got[0]["seq"])
	assert.Equal(t, "B", got[1]["seq"])
}

func TestPublishWithoutSubscribersIsNoOp(t *testing.T) {
	hub := NewWSHub()

	// Must not panic and must not queue anything for later.
	hub.Publish("u1", map[string]string{"seq": "lost"})

	conn := &fakeConn{}
	hub.Subscribe("u1", conn)
	hub.Publish("u1", map[string]string{"seq": "first"})

	got := conn.received()
	require.Len(t, got, 1)
	assert.Equal(t, "first", got[0]["seq"])
}

func TestPublishOnlyReachesOwnChannel(t *testing.T) {
	hub := NewWSHub()
	conn1 := &fakeConn{}
	conn2 := &fakeConn{}
	hub.Subscribe("u1", conn1)
	hub.Subscribe("u2", conn2)

	hub.Publish("u1", map[string]string{"seq": "A"})

	assert.Len(t, conn1.received(), 1)
	assert.Empty(t, conn2.received())
}

func TestPublishSetsWriteDeadline(t *testing.T) {
	hub := NewWSHub()
	conn := &fakeConn{}
	hub.Subscribe("u1", conn)

	before := time.Now()
	hub.Publish("u1", map[string]string{"seq": "A"})

	deadlines := conn.writeDeadlines()
	require.Len(t, deadlines, 1)
	assert.True(t, deadlines[0].After(before), "broadcast writes must carry a deadline")
}

func TestDeadConnectionDoesNotAbortDelivery(t *testing.T) {
	hub := NewWSHub()
	dead := &fakeConn{writeErr: errors.New("broken pipe")}
	live := &fakeConn{}
	hub.Subscribe("u1", dead)
	hub.Subscribe("u1", live)

	hub.Publish("u1", map[string]string{"seq": "A"})

	assert.Len(t, live.received(), 1)
	assert.True(t, dead.closed)
	assert.True(t, hub.IsSubscribed("u1"))

	// The dead connection was dropped; the live one keeps receiving.
	hub.Publish("u1", map[string]string{"seq": "B"})
	assert.Len(t, live.received(), 2)
}

func TestUnsubscribe(t *testing.T) {
	hub := NewWSHub()
	conn := &fakeConn{}
	hub.Subscribe("u1", conn)
	require.True(t, hub.IsSubscribed("u1"))

	hub.Unsubscribe(conn)
	assert.False(t, hub.IsSubscribed("u1"))

	hub.Publish("u1", map[string]string{"seq": "late"})
	assert.Empty(t, conn.received())
}

func TestUnsubscribeUnknownConnIsNoOp(t *testing.T) {
	hub := NewWSHub()
	hub.Unsubscribe(&fakeConn{})
}

func TestResubscribeMovesConnection(t *testing.T) {
	hub := NewWSHub()
	conn := &fakeConn{}
	hub.Subscribe("u1", conn)
	hub.Subscribe("u2", conn)

	assert.False(t, hub.IsSubscribed("u1"))
	require.True(t, hub.IsSubscribed("u2"))

	hub.Publish("u2", map[string]string{"seq": "A"})
	assert.Len(t, conn.received(), 1)
}

func TestConcurrentPublishesSerializePerConnection(t *testing.T) {
	hub := NewWSHub()
	conn := &fakeConn{}
	hub.Subscribe("u1", conn)

	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			hub.Publish("u1", map[string]int{"seq": n})
		}(i)
	}
	wg.Wait()

	assert.False(t, conn.overlappedWrites(), "writes to one connection must never overlap")
	assert.Len(t, conn.received(), 64)
}

func TestSendErrorDoesNotOverlapPublish(t *testing.T) {
	hub := NewWSHub()
	conn := &fakeConn{}
	hub.Subscribe("u1", conn)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			hub.Publish("u1", map[string]string{"seq": "A"})
		}()
		go func() {
			defer wg.Done()
			hub.SendError(conn, "bad message")
		}()
	}
	wg.Wait()

	assert.False(t, conn.overlappedWrites(), "error replies and broadcasts share the connection's write mutex")
}

func TestConcurrentSubscribePublish(t *testing.T) {
	hub := NewWSHub()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			conn := &fakeConn{}
			hub.Subscribe("u1", conn)
			hub.Unsubscribe(conn)
		}()
		go func() {
			defer wg.Done()
			hub.Publish("u1", map[string]string{"seq": "X"})
		}()
	}
	wg.Wait()
}
