package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"attendance-backend/internal/i18n"
	"attendance-backend/internal/service"
)

type AttendanceHandler struct {
	svc *service.AttendanceService
	log *slog.Logger
}

func NewAttendanceHandler(svc *service.AttendanceService, log *slog.Logger) *AttendanceHandler {
	return &AttendanceHandler{svc: svc, log: log}
}

func (h *AttendanceHandler) RegisterRoutes(r chi.Router) {
	r.Get("/attendance", h.HandleList)
	r.Post("/attendance", h.HandleRecord)
	r.Delete("/attendance/{id}", h.HandleDelete)
}

// attendanceEvent is a check-in when ID is empty and a check-out otherwise.
type attendanceEvent struct {
	ID            string   `json:"id"`
	UserID        string   `json:"userId"`
	Date          string   `json:"date"`
	CheckInTime   string   `json:"checkInTime"`
	CheckOutTime  *string  `json:"checkOutTime"`
	HoursWorked   *float64 `json:"hoursWorked"`
	Method        string   `json:"method"`
	Status        *string  `json:"status"`
	CheckInPhoto  string   `json:"checkInPhoto"`
	CheckOutPhoto *string  `json:"checkOutPhoto"`
}

func (h *AttendanceHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	records, err := h.svc.ListForUser(r.Context(), r.URL.Query().Get("userId"))
	if err != nil {
		writeError(w, r, h.log, "list attendance", err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (h *AttendanceHandler) HandleRecord(w http.ResponseWriter, r *http.Request) {
	var req attendanceEvent
	if err := decodeJSON(w, r, &req); err != nil {
		writeBadBody(w, r)
		return
	}

	record, created, err := h.svc.RecordEvent(r.Context(), service.AttendanceEvent(req))
	if err != nil {
		writeError(w, r, h.log, "record attendance", err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, record)
}

func (h *AttendanceHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteRecord(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, h.log, "delete attendance", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": i18n.T(r.Context(), "record_deleted")})
}
