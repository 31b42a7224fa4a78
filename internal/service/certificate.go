package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"attendance-backend/internal/metrics"
	"attendance-backend/internal/model"
	"attendance-backend/internal/store"
)

const (
	verificationPrefix    = "BLNK"
	verificationSuffixLen = 6
	base36                = "0123456789abcdefghijklmnopqrstuvwxyz"
	codeAttempts          = 3
)

// NewVerificationCode returns BLNK-<base36 millis>-<6 random base36 chars>,
// upper-cased.
func NewVerificationCode(now time.Time) (string, error) {
	suffix := make([]byte, verificationSuffixLen)
	radix := big.NewInt(int64(len(base36)))
	for i := range suffix {
		n, err := rand.Int(rand.Reader, radix)
		if err != nil {
			return "", fmt.Errorf("random suffix: %w", err)
		}
		suffix[i] = base36[n.Int64()]
	}
	stamp := strconv.FormatInt(now.UnixMilli(), 36)
	return strings.ToUpper(verificationPrefix + "-" + stamp + "-" + string(suffix)), nil
}

type IssueCertificateInput struct {
	AdminID       string
	EmployeeID    string
	Type          string
	Duration      int // months; 0 means not supplied
	CustomMessage string
	Signature     string
}

// IssueCertificate snapshots the employee's name and store onto a new
// certificate signed by the calling admin.
func (s *AdminService) IssueCertificate(ctx context.Context, in IssueCertificateInput) (*model.Certificate, error) {
	if in.EmployeeID == "" || in.Duration == 0 {
		return nil, fail(ErrBadRequest, "employee_and_duration_required")
	}
	if in.Duration < model.MinCertificateMonths || in.Duration > model.MaxCertificateMonths {
		return nil, failWith(ErrBadRequest, "invalid_duration", map[string]any{
			"Min": model.MinCertificateMonths, "Max": model.MaxCertificateMonths,
		})
	}
	certType := model.CertificateTypeExperience
	if in.Type != "" {
		certType = model.CertificateType(in.Type)
		if !certType.Valid() {
			return nil, fail(ErrBadRequest, "invalid_certificate_type")
		}
	}

	employee, err := s.lookup(ctx, in.EmployeeID, "employee_not_found")
	if err != nil {
		return nil, err
	}
	admin, err := s.lookup(ctx, in.AdminID, "admin_not_found")
	if err != nil {
		return nil, err
	}

	cert := &model.Certificate{
		EmployeeID:       employee.ID,
		EmployeeName:     employee.Name,
		EmployeeUsername: employee.Username,
		CertificateType:  certType,
		Duration:         in.Duration,
		CustomMessage:    in.CustomMessage,
		IssueDate:        s.now(),
		IssuedBy:         admin.Name,
		Signature:        in.Signature,
		StoreName:        model.DefaultStoreLocation,
		StoreLocation:    model.DefaultStoreCity,
	}
	if cert.Signature == "" {
		cert.Signature = admin.Name
	}
	if st := employee.AssignedStore; st != nil {
		if st.Name != "" {
			cert.StoreName = st.Name
		}
		if st.City != "" {
			cert.StoreLocation = st.City
		}
	}

	for attempt := 1; ; attempt++ {
		cert.VerificationCode, err = NewVerificationCode(s.now())
		if err != nil {
			return nil, err
		}
		err = s.certs.Create(ctx, cert)
		if err == nil {
			break
		}
		if !errors.Is(err, store.ErrDuplicateKey) || attempt == codeAttempts {
			return nil, fmt.Errorf("create certificate: %w", err)
		}
		s.log.Warn("verification code collision", "code", cert.VerificationCode, "attempt", attempt)
	}

	metrics.CertificatesIssued.WithLabelValues(string(certType)).Inc()
	return cert, nil
}

func (s *AdminService) lookup(ctx context.Context, userID, notFoundID string) (*model.User, error) {
	user, err := s.getUser(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return nil, fail(ErrNotFound, notFoundID)
	}
	return user, err
}

func (s *AdminService) ListCertificates(ctx context.Context) ([]*model.Certificate, error) {
	certs, err := s.certs.ListRecent(ctx, maxCertificateList)
	if err != nil {
		return nil, fmt.Errorf("list certificates: %w", err)
	}
	return certs, nil
}

func (s *AdminService) ListCertificatesForEmployee(ctx context.Context, employeeID string) ([]*model.Certificate, error) {
	id, ok := parseID(employeeID)
	if !ok {
		return []*model.Certificate{}, nil
	}
	certs, err := s.certs.ListByEmployee(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list employee certificates: %w", err)
	}
	return certs, nil
}

func (s *AdminService) RevokeCertificate(ctx context.Context, certificateID string) error {
	id, ok := parseID(certificateID)
	if !ok {
		return fail(ErrNotFound, "certificate_not_found")
	}
	deleted, err := s.certs.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete certificate: %w", err)
	}
	if !deleted {
		return fail(ErrNotFound, "certificate_not_found")
	}
	return nil
}

// VerifyCertificate is public: it needs no caller and exposes no internal ids.
func (s *AdminService) VerifyCertificate(ctx context.Context, code string) (*model.VerifiedCertificate, error) {
	if code == "" {
		return nil, fail(ErrNotFound, "certificate_invalid_code")
	}
	cert, err := s.certs.GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("get certificate by code: %w", err)
	}
	if cert == nil {
		return nil, fail(ErrNotFound, "certificate_invalid_code")
	}
	return cert.Verified(), nil
}

// CertificateService serves employees their own certificates.
type CertificateService struct {
	certs CertificateRepository
}

func NewCertificateService(certs CertificateRepository) *CertificateService {
	return &CertificateService{certs: certs}
}

func (s *CertificateService) ListOwn(ctx context.Context, callerID string) ([]*model.Certificate, error) {
	if callerID == "" {
		return nil, fail(ErrUnauthorized, "caller_id_required")
	}
	id, ok := parseID(callerID)
	if !ok {
		return []*model.Certificate{}, nil
	}
	certs, err := s.certs.ListByEmployee(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list own certificates: %w", err)
	}
	return certs, nil
}

func (s *CertificateService) GetOwn(ctx context.Context, callerID, certificateID string) (*model.Certificate, error) {
	if callerID == "" {
		return nil, fail(ErrUnauthorized, "caller_id_required")
	}
	owner, ok := parseID(callerID)
	if !ok {
		return nil, fail(ErrNotFound, "certificate_not_found")
	}
	id, ok := parseID(certificateID)
	if !ok {
		return nil, fail(ErrNotFound, "certificate_not_found")
	}
	cert, err := s.certs.GetForEmployee(ctx, id, owner)
	if err != nil {
		return nil, fmt.Errorf("get own certificate: %w", err)
	}
	if cert == nil {
		return nil, fail(ErrNotFound, "certificate_not_found")
	}
	return cert, nil
}
