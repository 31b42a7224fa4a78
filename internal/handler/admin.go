package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"attendance-backend/internal/i18n"
	"attendance-backend/internal/model"
	"attendance-backend/internal/service"
)

type AdminHandler struct {
	svc *service.AdminService
	log *slog.Logger
}

func NewAdminHandler(svc *service.AdminService, log *slog.Logger) *AdminHandler {
	return &AdminHandler{svc: svc, log: log}
}

func (h *AdminHandler) RegisterRoutes(r chi.Router) {
	r.Route("/admin", func(r chi.Router) {
		// Public: anyone holding a code may verify it.
		r.Get("/certificates/verify/{code}", h.HandleVerifyCertificate)

		r.Group(func(r chi.Router) {
			r.Use(h.requireAdmin)

			r.Get("/employees", h.HandleListEmployees)
			r.Get("/employees/all", h.HandleListAllUsers)
			r.Put("/employees/{userId}/assign-store", h.HandleAssignStore)
			r.Delete("/employees/{userId}", h.HandleDeleteEmployee)

			r.Get("/attendance", h.HandleListAttendance)
			// GET takes a user id, DELETE a record id.
			r.Get("/attendance/{id}", h.HandleUserAttendance)
			r.Delete("/attendance/{id}", h.HandleDeleteAttendance)
			r.Get("/stats", h.HandleStats)

			r.Get("/pending-users", h.HandlePendingUsers)
			r.Put("/users/{userId}/approve", h.HandleApprove)
			r.Put("/users/{userId}/reject", h.HandleReject)
			r.Put("/users/{userId}/reset-password", h.HandleResetPassword)

			r.Post("/certificates", h.HandleIssueCertificate)
			r.Get("/certificates", h.HandleListCertificates)
			r.Get("/certificates/employee/{employeeId}", h.HandleEmployeeCertificates)
			r.Delete("/certificates/{certificateId}", h.HandleRevokeCertificate)
		})
	})
}

type adminCtxKey struct{}

// requireAdmin resolves the caller header to an admin and stores it in the
// request context.
func (h *AdminHandler) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		admin, err := h.svc.RequireAdmin(r.Context(), r.Header.Get(callerHeader))
		if err != nil {
			writeError(w, r, h.log, "require admin", err)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), adminCtxKey{}, admin)))
	})
}

func adminFromContext(ctx context.Context) *model.User {
	admin, _ := ctx.Value(adminCtxKey{}).(*model.User)
	return admin
}

func (h *AdminHandler) HandleListEmployees(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.ListEmployees(r.Context())
	if err != nil {
		writeError(w, r, h.log, "list employees", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "count": len(users), "employees": users})
}

func (h *AdminHandler) HandleListAllUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.ListAllUsers(r.Context())
	if err != nil {
		writeError(w, r, h.log, "list users", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "count": len(users), "users": users})
}

func (h *AdminHandler) HandleListAttendance(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	records, err := h.svc.ListAttendance(r.Context(), model.AttendanceFilter{Date: q.Get("date"), UserID: q.Get("userId")})
	if err != nil {
		writeError(w, r, h.log, "list attendance", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "count": len(records), "records": records})
}

func (h *AdminHandler) HandleUserAttendance(w http.ResponseWriter, r *http.Request) {
	user, records, err := h.svc.GetUserAttendance(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.log, "user attendance", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "user": user, "records": records})
}

func (h *AdminHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		writeError(w, r, h.log, "stats", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "stats": stats})
}

type storeRequest struct {
	AssignedStore *struct {
		Name      string   `json:"name"`
		Address   string   `json:"address"`
		City      string   `json:"city"`
		Latitude  *float64 `json:"latitude"`
		Longitude *float64 `json:"longitude"`
		Radius    *float64 `json:"radius"`
	} `json:"assignedStore"`
}

func (h *AdminHandler) HandleAssignStore(w http.ResponseWriter, r *http.Request) {
	var req storeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeBadBody(w, r)
		return
	}
	var in *service.StoreInput
	if s := req.AssignedStore; s != nil {
		in = &service.StoreInput{
			Name: s.Name, Address: s.Address, City: s.City,
			Latitude: s.Latitude, Longitude: s.Longitude, Radius: s.Radius,
		}
	}

	user, err := h.svc.AssignStore(r.Context(), chi.URLParam(r, "userId"), in)
	if err != nil {
		writeError(w, r, h.log, "assign store", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": i18n.T(r.Context(), "store_assigned"),
		"user":    user,
	})
}

func (h *AdminHandler) HandleDeleteEmployee(w http.ResponseWriter, r *http.Request) {
	admin := adminFromContext(r.Context())
	if err := h.svc.DeleteEmployee(r.Context(), chi.URLParam(r, "userId"), admin.ID.Hex()); err != nil {
		writeError(w, r, h.log, "delete employee", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": i18n.T(r.Context(), "employee_deleted")})
}

func (h *AdminHandler) HandleDeleteAttendance(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteAttendanceRecord(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, h.log, "delete attendance record", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": i18n.T(r.Context(), "attendance_record_deleted")})
}

func (h *AdminHandler) HandlePendingUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.ListPendingUsers(r.Context())
	if err != nil {
		writeError(w, r, h.log, "pending users", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "count": len(users), "users": users})
}

func (h *AdminHandler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	h.handleStatusChange(w, r, "approve user", h.svc.ApproveUser, "user_approved")
}

func (h *AdminHandler) HandleReject(w http.ResponseWriter, r *http.Request) {
	h.handleStatusChange(w, r, "reject user", h.svc.RejectUser, "user_rejected")
}

func (h *AdminHandler) handleStatusChange(w http.ResponseWriter, r *http.Request, op string,
	change func(context.Context, string) (*model.User, error), messageID string) {
	user, err := change(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		writeError(w, r, h.log, op, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": i18n.T(r.Context(), messageID, map[string]any{"Name": user.Name}),
		"user": userStatusView{
			ID:            user.ID,
			Name:          user.Name,
			Username:      user.Username,
			AccountStatus: user.AccountStatus,
		},
	})
}

func (h *AdminHandler) HandleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		NewPassword string `json:"newPassword"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeBadBody(w, r)
		return
	}

	user, err := h.svc.ResetPassword(r.Context(), chi.URLParam(r, "userId"), req.NewPassword)
	if err != nil {
		writeError(w, r, h.log, "reset password", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": i18n.T(r.Context(), "password_reset", map[string]any{"Name": user.Name}),
		"user":    userStatusView{ID: user.ID, Name: user.Name, Username: user.Username},
	})
}
