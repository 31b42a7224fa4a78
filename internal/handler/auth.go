package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/v2/bson"

	"attendance-backend/internal/i18n"
	"attendance-backend/internal/model"
	"attendance-backend/internal/service"
)

type AuthHandler struct {
	svc *service.AuthService
	log *slog.Logger
}

func NewAuthHandler(svc *service.AuthService, log *slog.Logger) *AuthHandler {
	return &AuthHandler{svc: svc, log: log}
}

func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/auth/register", h.HandleRegister)
	r.Post("/auth/login", h.HandleLogin)
}

type credentials struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// userStatusView is the short user shape returned by register and the
// approval endpoints.
type userStatusView struct {
	ID            bson.ObjectID       `json:"id"`
	Name          string              `json:"name"`
	Username      string              `json:"username"`
	AccountStatus model.AccountStatus `json:"accountStatus,omitempty"`
}

type loginView struct {
	ID            bson.ObjectID        `json:"id"`
	Name          string               `json:"name"`
	Username      string               `json:"username"`
	StoreLocation string               `json:"storeLocation"`
	JoinDate      string               `json:"joinDate"`
	Role          model.Role           `json:"role"`
	AccountStatus model.AccountStatus  `json:"accountStatus,omitempty"`
	AssignedStore *model.AssignedStore `json:"assignedStore,omitempty"`
}

func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := decodeJSON(w, r, &req); err != nil {
		writeBadBody(w, r)
		return
	}

	user, err := h.svc.Register(r.Context(), req.Name, req.Username, req.Password)
	if err != nil {
		writeError(w, r, h.log, "register", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": i18n.T(r.Context(), "register_success"),
		"pending": true,
		"user": userStatusView{
			ID:            user.ID,
			Name:          user.Name,
			Username:      user.Username,
			AccountStatus: user.AccountStatus,
		},
	})
}

func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := decodeJSON(w, r, &req); err != nil {
		writeBadBody(w, r)
		return
	}

	user, err := h.svc.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, r, h.log, "login", err)
		return
	}
	writeJSON(w, http.StatusOK, loginView{
		ID:            user.ID,
		Name:          user.Name,
		Username:      user.Username,
		StoreLocation: user.StoreLocation,
		JoinDate:      user.JoinDate,
		Role:          user.EffectiveRole(),
		AccountStatus: user.AccountStatus,
		AssignedStore: user.AssignedStore,
	})
}
