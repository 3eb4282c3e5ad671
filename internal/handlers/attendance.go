package handlers

import (
	"errors"
	"net/http"

	"barhop-backend/internal/middleware"
	"barhop-backend/internal/models"
	"barhop-backend/internal/repository"
	"barhop-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// AttendanceHandler handles event check-in HTTP requests
type AttendanceHandler struct {
	attendanceService *services.AttendanceService
}

// NewAttendanceHandler creates a new attendance handler
func NewAttendanceHandler(attendanceService *services.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendanceService: attendanceService}
}

// MessageResponse is a simple message payload
type MessageResponse struct {
	Message string `json:"message"`
}

// CheckIn handles POST /api/v1/events/{event_id}/attendances
func (h *AttendanceHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	eventID := chi.URLParam(r, "event_id")

	status, err := h.attendanceService.CheckIn(ctx, eventID, userID)
	if err != nil {
		log.Error().
			Err(err).
			Str("user_id", userID).
			Str("event_id", eventID).
			Msg("Failed to check in")

		statusCode := http.StatusInternalServerError
		if errors.Is(err, repository.ErrNotFound) {
			statusCode = http.StatusNotFound
		}

		respondError(w, err.Error(), statusCode)
		return
	}

	if status == services.CheckInAlreadyConfirmed {
		respondJSON(w, MessageResponse{Message: "Attendance already confirmed"}, http.StatusAlreadyReported)
		return
	}

	respondJSON(w, MessageResponse{Message: "Attendance confirmed"}, http.StatusOK)
}

// ListAttendees handles GET /api/v1/events/{event_id}/attendances
func (h *AttendanceHandler) ListAttendees(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	eventID := chi.URLParam(r, "event_id")

	attendees, err := h.attendanceService.ListAttendees(ctx, eventID)
	if err != nil {
		statusCode := http.StatusInternalServerError
		if errors.Is(err, repository.ErrNotFound) {
			statusCode = http.StatusNotFound
		}
		respondError(w, err.Error(), statusCode)
		return
	}

	if attendees == nil {
		attendees = []models.Attendee{}
	}
	respondJSON(w, attendees, http.StatusOK)
}
