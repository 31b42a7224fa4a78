package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"attendance-backend/internal/i18n"
	"attendance-backend/internal/metrics"
	"attendance-backend/internal/model"
	"attendance-backend/internal/store"
)

type AuthService struct {
	users    UserRepository
	notifier Notifier // optional
	now      Clock
	log      *slog.Logger
}

func NewAuthService(users UserRepository, notifier Notifier, now Clock, log *slog.Logger) *AuthService {
	return &AuthService{users: users, notifier: notifier, now: now, log: log}
}

// Register creates an employee account in pending state. The account cannot
// log in until an admin approves it.
func (s *AuthService) Register(ctx context.Context, name, username, password string) (*model.User, error) {
	name = strings.TrimSpace(name)
	username = strings.TrimSpace(username)
	if name == "" || username == "" || password == "" {
		return nil, fail(ErrBadRequest, "registration_fields_required")
	}
	if err := checkPasswordTooLong(password); err != nil {
		return nil, err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Name:          name,
		Username:      username,
		Password:      hash,
		StoreLocation: model.DefaultStoreLocation,
		JoinDate:      FormatDay(s.now()),
		Role:          model.RoleEmployee,
		AccountStatus: model.AccountStatusPending,
		CreatedAt:     s.now(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicateKey) {
			return nil, fail(ErrConflict, "username_taken")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	metrics.Registrations.Inc()

	s.notifyPending(ctx, user)
	return user, nil
}

func (s *AuthService) notifyPending(ctx context.Context, user *model.User) {
	if s.notifier == nil {
		return
	}
	msg := i18n.T(ctx, "pending_registration", map[string]any{"Name": user.Name, "Username": user.Username})
	if err := s.notifier.Notify(ctx, msg); err != nil {
		s.log.Warn("notify pending registration", "username", user.Username, "err", err)
	}
}

// Login checks the credential first, then the account status. Legacy
// plaintext credentials are re-hashed on success.
func (s *AuthService) Login(ctx context.Context, username, password string) (*model.User, error) {
	username = strings.TrimSpace(username)
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		metrics.Logins.WithLabelValues(metrics.LoginInvalidCredentials).Inc()
		return nil, fail(ErrInvalidCredentials, "invalid_credentials")
	}

	ok, legacy := CheckPassword(user.Password, password)
	if !ok {
		metrics.Logins.WithLabelValues(metrics.LoginInvalidCredentials).Inc()
		return nil, fail(ErrInvalidCredentials, "invalid_credentials")
	}
	if legacy {
		s.upgradeLegacyPassword(ctx, user, password)
	}

	switch user.EffectiveStatus() {
	case model.AccountStatusPending:
		metrics.Logins.WithLabelValues(metrics.LoginPending).Inc()
		return nil, fail(ErrPendingApproval, "account_pending")
	case model.AccountStatusRejected:
		metrics.Logins.WithLabelValues(metrics.LoginRejected).Inc()
		return nil, fail(ErrRejected, "account_rejected")
	}

	metrics.Logins.WithLabelValues(metrics.LoginSuccess).Inc()
	s.log.Info("login", "username", user.Username, "role", user.EffectiveRole())
	return user, nil
}

func (s *AuthService) upgradeLegacyPassword(ctx context.Context, user *model.User, password string) {
	hash, err := HashPassword(password)
	if err == nil {
		_, err = s.users.Update(ctx, user.ID, store.UserUpdate{Password: &hash})
	}
	if err != nil {
		s.log.Warn("upgrade legacy password", "username", user.Username, "err", err)
		return
	}
	user.Password = hash
}

// AdminSeed describes the bootstrap administrator.
type AdminSeed struct {
	Name     string
	Username string
	Password string
}

var headquarters = model.AssignedStore{
	Name:      "Blinkit HQ",
	Address:   "Gurugram, Haryana",
	City:      "Gurugram",
	Latitude:  28.4595,
	Longitude: 77.0266,
	Radius:    500,
}

// SeedAdmin creates the bootstrap administrator unless the username exists.
func (s *AuthService) SeedAdmin(ctx context.Context, seed AdminSeed) (bool, error) {
	existing, err := s.users.GetByUsername(ctx, seed.Username)
	if err != nil {
		return false, fmt.Errorf("get admin: %w", err)
	}
	if existing != nil {
		return false, nil
	}

	hash, err := HashPassword(seed.Password)
	if err != nil {
		return false, err
	}
	hq := headquarters
	admin := &model.User{
		Name:          seed.Name,
		Username:      seed.Username,
		Password:      hash,
		StoreLocation: "All Stores",
		JoinDate:      FormatDay(s.now()),
		Role:          model.RoleAdmin,
		AccountStatus: model.AccountStatusApproved,
		AssignedStore: &hq,
		CreatedAt:     s.now(),
	}
	if err := s.users.Create(ctx, admin); err != nil {
		if errors.Is(err, store.ErrDuplicateKey) {
			return false, nil
		}
		return false, fmt.Errorf("create admin: %w", err)
	}
	return true, nil
}

// BackfillStatus approves admins and accounts created before approval gating.
func (s *AuthService) BackfillStatus(ctx context.Context) (int64, error) {
	return s.users.BackfillStatus(ctx)
}
