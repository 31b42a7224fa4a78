package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"attendance-backend/internal/i18n"
	"attendance-backend/internal/model"
	"attendance-backend/internal/service"
)

// Request bodies may carry inline base64 photos.
const maxBodyBytes = 50 << 20

// callerHeader carries the id of the user making the request.
const callerHeader = "X-User-ID"

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding response", "err", err)
	}
}

// decodeJSON reads a JSON body into v. An empty body leaves v untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrBadRequest), errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrConflict):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden), errors.Is(err, service.ErrPendingApproval),
		errors.Is(err, service.ErrRejected):
		return http.StatusForbidden
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// writeError turns a service error into its status and localized message.
// Anything that is not a *service.Error is logged and reported as a server
// error without detail.
func writeError(w http.ResponseWriter, r *http.Request, log *slog.Logger, op string, err error) {
	var svcErr *service.Error
	if !errors.As(err, &svcErr) {
		log.Error(op, "err", err, "path", r.URL.Path)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"message": i18n.T(r.Context(), "server_error")})
		return
	}

	body := map[string]any{"message": i18n.T(r.Context(), svcErr.MessageID, svcErr.Data)}
	switch {
	case errors.Is(err, service.ErrPendingApproval):
		body["accountStatus"] = model.AccountStatusPending
	case errors.Is(err, service.ErrRejected):
		body["accountStatus"] = model.AccountStatusRejected
	}
	writeJSON(w, statusFor(err), body)
}

func writeBadBody(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusBadRequest, map[string]any{"message": i18n.T(r.Context(), "invalid_body")})
}
