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

type ProfileHandler struct {
	svc *service.ProfileService
	log *slog.Logger
}

func NewProfileHandler(svc *service.ProfileService, log *slog.Logger) *ProfileHandler {
	return &ProfileHandler{svc: svc, log: log}
}

func (h *ProfileHandler) RegisterRoutes(r chi.Router) {
	r.Route("/profile/{userId}", func(r chi.Router) {
		r.Get("/", h.HandleGet)
		r.Put("/", h.HandleUpdate)
		r.Put("/photo", h.HandleSetPhoto)
		r.Delete("/photo", h.HandleClearPhoto)
	})
}

// profileView never carries the credential or the account status.
type profileView struct {
	ID            bson.ObjectID `json:"id"`
	Name          string        `json:"name"`
	Username      string        `json:"username"`
	StoreLocation string        `json:"storeLocation"`
	JoinDate      string        `json:"joinDate"`
	ProfilePhoto  string        `json:"profilePhoto"`
	Phone         *string       `json:"phone,omitempty"`
}

func newProfileView(u *model.User, withPhone bool) profileView {
	v := profileView{
		ID:            u.ID,
		Name:          u.Name,
		Username:      u.Username,
		StoreLocation: u.StoreLocation,
		JoinDate:      u.JoinDate,
		ProfilePhoto:  u.ProfilePhoto,
	}
	if withPhone {
		phone := u.Phone
		v.Phone = &phone
	}
	return v
}

func (h *ProfileHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	user, err := h.svc.GetProfile(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		writeError(w, r, h.log, "get profile", err)
		return
	}
	writeJSON(w, http.StatusOK, newProfileView(user, true))
}

func (h *ProfileHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name  *string `json:"name"`
		Phone *string `json:"phone"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeBadBody(w, r)
		return
	}

	user, err := h.svc.UpdateProfile(r.Context(), chi.URLParam(r, "userId"), req.Name, req.Phone)
	if err != nil {
		writeError(w, r, h.log, "update profile", err)
		return
	}
	writeJSON(w, http.StatusOK, newProfileView(user, true))
}

func (h *ProfileHandler) HandleSetPhoto(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProfilePhoto string `json:"profilePhoto"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeBadBody(w, r)
		return
	}

	user, err := h.svc.SetProfilePhoto(r.Context(), chi.URLParam(r, "userId"), req.ProfilePhoto)
	if err != nil {
		writeError(w, r, h.log, "set profile photo", err)
		return
	}
	writeJSON(w, http.StatusOK, newProfileView(user, false))
}

func (h *ProfileHandler) HandleClearPhoto(w http.ResponseWriter, r *http.Request) {
	if _, err := h.svc.ClearProfilePhoto(r.Context(), chi.URLParam(r, "userId")); err != nil {
		writeError(w, r, h.log, "clear profile photo", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":      i18n.T(r.Context(), "profile_photo_deleted"),
		"profilePhoto": "",
	})
}
