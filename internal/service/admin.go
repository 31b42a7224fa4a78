package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"

	"attendance-backend/internal/model"
	"attendance-backend/internal/store"
)

const (
	maxAttendanceListing = 500
	maxUserAttendance    = 100
	maxCertificateList   = 100
)

type AdminService struct {
	users      UserRepository
	attendance AttendanceRepository
	certs      CertificateRepository
	now        Clock
	log        *slog.Logger
}

func NewAdminService(users UserRepository, attendance AttendanceRepository, certs CertificateRepository, now Clock, log *slog.Logger) *AdminService {
	return &AdminService{users: users, attendance: attendance, certs: certs, now: now, log: log}
}

// RequireAdmin resolves the caller and fails unless it is an admin.
func (s *AdminService) RequireAdmin(ctx context.Context, callerID string) (*model.User, error) {
	if callerID == "" {
		return nil, fail(ErrUnauthorized, "caller_id_required")
	}
	id, ok := parseID(callerID)
	if !ok {
		return nil, fail(ErrForbidden, "admin_required")
	}
	caller, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get caller: %w", err)
	}
	if caller == nil || !caller.IsAdmin() {
		return nil, fail(ErrForbidden, "admin_required")
	}
	return caller, nil
}

func (s *AdminService) ListEmployees(ctx context.Context) ([]*model.User, error) {
	users, err := s.users.ListByRole(ctx, model.RoleEmployee)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	return users, nil
}

func (s *AdminService) ListAllUsers(ctx context.Context) ([]*model.User, error) {
	users, err := s.users.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// ListAttendance returns the newest records matching filter, each carrying
// the owner's name and username.
func (s *AdminService) ListAttendance(ctx context.Context, filter model.AttendanceFilter) ([]*model.EnrichedAttendance, error) {
	records, err := s.attendance.ListRecent(ctx, filter, maxAttendanceListing)
	if err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}

	seen := make(map[string]struct{})
	var ids []bson.ObjectID
	for _, r := range records {
		if _, dup := seen[r.UserID]; dup {
			continue
		}
		seen[r.UserID] = struct{}{}
		if id, ok := parseID(r.UserID); ok {
			ids = append(ids, id)
		}
	}
	owners, err := s.users.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("get record owners: %w", err)
	}
	byID := make(map[string]*model.User, len(owners))
	for _, u := range owners {
		byID[u.ID.Hex()] = u
	}

	enriched := make([]*model.EnrichedAttendance, 0, len(records))
	for _, r := range records {
		e := &model.EnrichedAttendance{AttendanceRecord: *r, UserName: "Unknown", UserUsername: "unknown"}
		if u, ok := byID[r.UserID]; ok {
			e.UserName = u.Name
			e.UserUsername = u.Username
		}
		enriched = append(enriched, e)
	}
	return enriched, nil
}

func (s *AdminService) GetUserAttendance(ctx context.Context, userID string) (*model.User, []*model.AttendanceRecord, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	records, err := s.attendance.ListRecent(ctx, model.AttendanceFilter{UserID: userID}, maxUserAttendance)
	if err != nil {
		return nil, nil, fmt.Errorf("list user attendance: %w", err)
	}
	return user, records, nil
}

type Stats struct {
	TotalEmployees     int64   `json:"totalEmployees"`
	CheckedInToday     int     `json:"checkedInToday"`
	CurrentlyCheckedIn int     `json:"currentlyCheckedIn"`
	TotalHoursToday    float64 `json:"totalHoursToday"`
	Date               string  `json:"date"`
}

func (s *AdminService) Stats(ctx context.Context) (*Stats, error) {
	today := FormatDay(s.now())

	total, err := s.users.CountByRole(ctx, model.RoleEmployee)
	if err != nil {
		return nil, fmt.Errorf("count employees: %w", err)
	}
	records, err := s.attendance.ListByDate(ctx, today)
	if err != nil {
		return nil, fmt.Errorf("list today's attendance: %w", err)
	}

	stats := &Stats{TotalEmployees: total, Date: today}
	users := make(map[string]struct{})
	var hours float64
	for _, r := range records {
		users[r.UserID] = struct{}{}
		if r.IsOpen() {
			stats.CurrentlyCheckedIn++
		}
		hours += r.HoursWorked
	}
	stats.CheckedInToday = len(users)
	stats.TotalHoursToday = roundTenths(hours)
	return stats, nil
}

// StoreInput is an admin's store assignment. Latitude and Longitude are
// pointers so a zero coordinate can be told apart from a missing one.
type StoreInput struct {
	Name      string
	Address   string
	City      string
	Latitude  *float64
	Longitude *float64
	Radius    *float64
}

func (in *StoreInput) toModel() (*model.AssignedStore, bool) {
	if in == nil || strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.City) == "" ||
		in.Latitude == nil || in.Longitude == nil {
		return nil, false
	}
	st := &model.AssignedStore{
		Name:      in.Name,
		Address:   in.Address,
		City:      in.City,
		Latitude:  *in.Latitude,
		Longitude: *in.Longitude,
		Radius:    model.DefaultStoreRadius,
	}
	if in.Radius != nil {
		st.Radius = *in.Radius
	}
	return st, true
}

func (s *AdminService) AssignStore(ctx context.Context, userID string, in *StoreInput) (*model.User, error) {
	st, ok := in.toModel()
	if !ok {
		return nil, fail(ErrBadRequest, "invalid_store")
	}
	return s.updateUser(ctx, userID, store.UserUpdate{AssignedStore: st})
}

// DeleteEmployee removes a non-admin user's attendance records, then the
// user. The two deletes are not atomic; if the second fails the user remains
// with no history and the call can be retried.
func (s *AdminService) DeleteEmployee(ctx context.Context, userID, callerID string) error {
	if userID == callerID {
		return fail(ErrBadRequest, "cannot_delete_self")
	}
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return err
	}
	if user.IsAdmin() {
		return fail(ErrForbidden, "cannot_delete_admin")
	}

	n, err := s.attendance.DeleteByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("delete attendance of %s: %w", userID, err)
	}
	if _, err := s.users.Delete(ctx, user.ID); err != nil {
		return fmt.Errorf("delete user %s: %w", userID, err)
	}
	s.log.Info("employee deleted", "user_id", userID, "records", n)
	return nil
}

func (s *AdminService) DeleteAttendanceRecord(ctx context.Context, recordID string) error {
	id, ok := parseID(recordID)
	if !ok {
		return fail(ErrNotFound, "attendance_record_not_found")
	}
	deleted, err := s.attendance.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete attendance: %w", err)
	}
	if !deleted {
		return fail(ErrNotFound, "attendance_record_not_found")
	}
	return nil
}

func (s *AdminService) ListPendingUsers(ctx context.Context) ([]*model.User, error) {
	users, err := s.users.ListPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("list pending users: %w", err)
	}
	return users, nil
}

func (s *AdminService) ApproveUser(ctx context.Context, userID string) (*model.User, error) {
	return s.setStatus(ctx, userID, model.AccountStatusApproved, "already_approved")
}

func (s *AdminService) RejectUser(ctx context.Context, userID string) (*model.User, error) {
	return s.setStatus(ctx, userID, model.AccountStatusRejected, "already_rejected")
}

// setStatus compares against the stored status, not the effective one.
func (s *AdminService) setStatus(ctx context.Context, userID string, status model.AccountStatus, alreadyID string) (*model.User, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.AccountStatus == status {
		return nil, fail(ErrBadRequest, alreadyID)
	}
	return s.updateUser(ctx, userID, store.UserUpdate{AccountStatus: &status})
}

func (s *AdminService) ResetPassword(ctx context.Context, userID, newPassword string) (*model.User, error) {
	if err := checkNewPassword(newPassword); err != nil {
		return nil, err
	}
	if _, err := s.getUser(ctx, userID); err != nil {
		return nil, err
	}
	hash, err := HashPassword(newPassword)
	if err != nil {
		return nil, err
	}
	return s.updateUser(ctx, userID, store.UserUpdate{Password: &hash})
}

func (s *AdminService) getUser(ctx context.Context, userID string) (*model.User, error) {
	id, ok := parseID(userID)
	if !ok {
		return nil, fail(ErrNotFound, "user_not_found")
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, fail(ErrNotFound, "user_not_found")
	}
	return user, nil
}

func (s *AdminService) updateUser(ctx context.Context, userID string, update store.UserUpdate) (*model.User, error) {
	id, ok := parseID(userID)
	if !ok {
		return nil, fail(ErrNotFound, "user_not_found")
	}
	user, err := s.users.Update(ctx, id, update)
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	if user == nil {
		return nil, fail(ErrNotFound, "user_not_found")
	}
	return user, nil
}
