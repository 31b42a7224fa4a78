package handler

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"attendance-backend/internal/i18n"
	"attendance-backend/internal/service"
)

// months accepts a JSON number or a numeric string. Anything else decodes
// as 0, which the service reports as missing.
type months int

var _ json.Unmarshaler = (*months)(nil)

func (m *months) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	if n, err := strconv.Atoi(string(data)); err == nil {
		*m = months(n)
		return nil
	}
	if f, err := strconv.ParseFloat(string(data), 64); err == nil && f == float64(int(f)) {
		*m = months(int(f))
		return nil
	}
	*m = 0
	return nil
}

type issueCertificateRequest struct {
	EmployeeID      string `json:"employeeId"`
	CertificateType string `json:"certificateType"`
	Duration        months `json:"duration"`
	CustomMessage   string `json:"customMessage"`
	Signature       string `json:"signature"`
}

func (h *AdminHandler) HandleIssueCertificate(w http.ResponseWriter, r *http.Request) {
	var req issueCertificateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeBadBody(w, r)
		return
	}

	cert, err := h.svc.IssueCertificate(r.Context(), service.IssueCertificateInput{
		AdminID:       adminFromContext(r.Context()).ID.Hex(),
		EmployeeID:    req.EmployeeID,
		Type:          req.CertificateType,
		Duration:      int(req.Duration),
		CustomMessage: req.CustomMessage,
		Signature:     req.Signature,
	})
	if err != nil {
		writeError(w, r, h.log, "issue certificate", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"success":     true,
		"message":     i18n.T(r.Context(), "certificate_issued"),
		"certificate": cert,
	})
}

func (h *AdminHandler) HandleListCertificates(w http.ResponseWriter, r *http.Request) {
	certs, err := h.svc.ListCertificates(r.Context())
	if err != nil {
		writeError(w, r, h.log, "list certificates", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "count": len(certs), "certificates": certs})
}

func (h *AdminHandler) HandleEmployeeCertificates(w http.ResponseWriter, r *http.Request) {
	certs, err := h.svc.ListCertificatesForEmployee(r.Context(), chi.URLParam(r, "employeeId"))
	if err != nil {
		writeError(w, r, h.log, "employee certificates", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "count": len(certs), "certificates": certs})
}

func (h *AdminHandler) HandleRevokeCertificate(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.RevokeCertificate(r.Context(), chi.URLParam(r, "certificateId")); err != nil {
		writeError(w, r, h.log, "revoke certificate", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": i18n.T(r.Context(), "certificate_revoked")})
}

func (h *AdminHandler) HandleVerifyCertificate(w http.ResponseWriter, r *http.Request) {
	cert, err := h.svc.VerifyCertificate(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		if statusFor(err) == http.StatusNotFound {
			writeJSON(w, http.StatusNotFound, map[string]any{
				"success": false,
				"message": i18n.T(r.Context(), "certificate_invalid_code"),
			})
			return
		}
		writeError(w, r, h.log, "verify certificate", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "verified": true, "certificate": cert})
}

// CertificateHandler serves employees their own certificates.
type CertificateHandler struct {
	svc *service.CertificateService
	log *slog.Logger
}

func NewCertificateHandler(svc *service.CertificateService, log *slog.Logger) *CertificateHandler {
	return &CertificateHandler{svc: svc, log: log}
}

func (h *CertificateHandler) RegisterRoutes(r chi.Router) {
	r.Get("/certificates", h.HandleListOwn)
	r.Get("/certificates/{id}", h.HandleGetOwn)
}

func (h *CertificateHandler) HandleListOwn(w http.ResponseWriter, r *http.Request) {
	certs, err := h.svc.ListOwn(r.Context(), r.Header.Get(callerHeader))
	if err != nil {
		writeError(w, r, h.log, "list own certificates", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "count": len(certs), "certificates": certs})
}

func (h *CertificateHandler) HandleGetOwn(w http.ResponseWriter, r *http.Request) {
	cert, err := h.svc.GetOwn(r.Context(), r.Header.Get(callerHeader), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.log, "get own certificate", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "certificate": cert})
}
