// Package servicetest provides in-memory repositories that mirror the
// MongoDB stores closely enough for service and handler tests.
package servicetest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"attendance-backend/internal/model"
	"attendance-backend/internal/store"
)

// Users enforces unique usernames the way the users index does.
type Users struct {
	mu    sync.Mutex
	byID  map[bson.ObjectID]*model.User
	order []bson.ObjectID

	GetErr error
}

func NewUsers() *Users {
	return &Users{byID: map[bson.ObjectID]*model.User{}}
}

func (f *Users) Add(u *model.User) *model.User {
	if err := f.Create(context.Background(), u); err != nil {
		panic(err)
	}
	return u
}

func (f *Users) Create(_ context.Context, u *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.byID {
		if existing.Username == u.Username {
			return fmt.Errorf("insert user: %w", store.ErrDuplicateKey)
		}
	}
	if u.ID.IsZero() {
		u.ID = bson.NewObjectID()
	}
	cp := *u
	f.byID[u.ID] = &cp
	f.order = append(f.order, u.ID)
	return nil
}

func (f *Users) GetByID(_ context.Context, id bson.ObjectID) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.GetErr != nil {
		return nil, f.GetErr
	}
	u, ok := f.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (f *Users) GetByUsername(_ context.Context, username string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *Users) GetByIDs(_ context.Context, ids []bson.ObjectID) ([]*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.User
	for _, id := range ids {
		if u, ok := f.byID[id]; ok {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *Users) all() []*model.User {
	out := []*model.User{}
	for _, id := range f.order {
		if u, ok := f.byID[id]; ok {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out
}

func (f *Users) ListByRole(_ context.Context, role model.Role) ([]*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*model.User{}
	for _, u := range f.all() {
		if u.Role == role {
			out = append(out, u)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *Users) ListAll(_ context.Context) ([]*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.all()
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Role != out[j].Role {
			return out[i].Role < out[j].Role
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (f *Users) ListPending(_ context.Context) ([]*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*model.User{}
	for _, u := range f.all() {
		if u.AccountStatus == model.AccountStatusPending {
			out = append(out, u)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *Users) CountByRole(ctx context.Context, role model.Role) (int64, error) {
	users, _ := f.ListByRole(ctx, role)
	return int64(len(users)), nil
}

func (f *Users) Update(_ context.Context, id bson.ObjectID, up store.UserUpdate) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return nil, nil
	}
	if up.Name != nil {
		u.Name = *up.Name
	}
	if up.Phone != nil {
		u.Phone = *up.Phone
	}
	if up.ProfilePhoto != nil {
		u.ProfilePhoto = *up.ProfilePhoto
	}
	if up.Password != nil {
		u.Password = *up.Password
	}
	if up.AccountStatus != nil {
		u.AccountStatus = *up.AccountStatus
	}
	if up.AssignedStore != nil {
		st := *up.AssignedStore
		u.AssignedStore = &st
	}
	cp := *u
	return &cp, nil
}

func (f *Users) Delete(_ context.Context, id bson.ObjectID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.byID[id]
	delete(f.byID, id)
	return ok, nil
}

func (f *Users) BackfillStatus(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, u := range f.byID {
		if u.AccountStatus == "" || (u.Role == model.RoleAdmin && u.AccountStatus != model.AccountStatusApproved) {
			u.AccountStatus = model.AccountStatusApproved
			n++
		}
	}
	return n, nil
}

type Attendance struct {
	mu      sync.Mutex
	records []*model.AttendanceRecord
	tick    time.Time

	DeleteByUserErr error
}

func NewAttendance() *Attendance {
	return &Attendance{tick: time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)}
}

func (f *Attendance) Create(_ context.Context, r *model.AttendanceRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tick = f.tick.Add(time.Minute)
	r.ID = bson.NewObjectID()
	r.CreatedAt = f.tick
	r.UpdatedAt = f.tick
	cp := *r
	f.records = append(f.records, &cp)
	return nil
}

func (f *Attendance) GetByID(_ context.Context, id bson.ObjectID) (*model.AttendanceRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.records {
		if r.ID == id {
			cp := *r
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *Attendance) CheckOut(_ context.Context, id bson.ObjectID, co model.CheckOut) (*model.AttendanceRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.records {
		if r.ID != id {
			continue
		}
		if co.CheckOutTime != nil {
			r.CheckOutTime = *co.CheckOutTime
		}
		if co.HoursWorked != nil {
			r.HoursWorked = *co.HoursWorked
		}
		if co.CheckOutPhoto != nil {
			r.CheckOutPhoto = *co.CheckOutPhoto
		}
		if co.Status != nil {
			r.Status = *co.Status
		}
		cp := *r
		return &cp, nil
	}
	return nil, nil
}

// Records returns a snapshot of every stored record in insertion order.
func (f *Attendance) Records() []*model.AttendanceRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.filter(func(*model.AttendanceRecord) bool { return true })
}

func (f *Attendance) filter(keep func(*model.AttendanceRecord) bool) []*model.AttendanceRecord {
	out := []*model.AttendanceRecord{}
	for _, r := range f.records {
		if keep(r) {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out
}

func (f *Attendance) ListByUser(_ context.Context, userID string) ([]*model.AttendanceRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.filter(func(r *model.AttendanceRecord) bool { return r.UserID == userID }), nil
}

func (f *Attendance) ListByDate(_ context.Context, date string) ([]*model.AttendanceRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.filter(func(r *model.AttendanceRecord) bool { return r.Date == date }), nil
}

func (f *Attendance) ListRecent(_ context.Context, flt model.AttendanceFilter, limit int64) ([]*model.AttendanceRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.filter(func(r *model.AttendanceRecord) bool {
		return (flt.Date == "" || r.Date == flt.Date) && (flt.UserID == "" || r.UserID == flt.UserID)
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *Attendance) Delete(_ context.Context, id bson.ObjectID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, r := range f.records {
		if r.ID == id {
			f.records = append(f.records[:i], f.records[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (f *Attendance) DeleteByUser(_ context.Context, userID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.DeleteByUserErr != nil {
		return 0, f.DeleteByUserErr
	}
	kept := f.records[:0]
	var n int64
	for _, r := range f.records {
		if r.UserID == userID {
			n++
			continue
		}
		kept = append(kept, r)
	}
	f.records = kept
	return n, nil
}

type Certificates struct {
	mu    sync.Mutex
	certs []*model.Certificate
	tick  time.Time

	// Collisions makes the next N creates fail with a duplicate key.
	Collisions int
}

func NewCertificates() *Certificates {
	return &Certificates{tick: time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)}
}

func (f *Certificates) Create(_ context.Context, c *model.Certificate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Collisions > 0 {
		f.Collisions--
		return fmt.Errorf("insert certificate: %w", store.ErrDuplicateKey)
	}
	for _, existing := range f.certs {
		if existing.VerificationCode == c.VerificationCode {
			return fmt.Errorf("insert certificate: %w", store.ErrDuplicateKey)
		}
	}
	f.tick = f.tick.Add(time.Minute)
	c.ID = bson.NewObjectID()
	c.CreatedAt = f.tick
	c.UpdatedAt = f.tick
	cp := *c
	f.certs = append(f.certs, &cp)
	return nil
}

func (f *Certificates) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.certs)
}

func (f *Certificates) find(keep func(*model.Certificate) bool) *model.Certificate {
	for _, c := range f.certs {
		if keep(c) {
			cp := *c
			return &cp
		}
	}
	return nil
}

func (f *Certificates) GetByID(_ context.Context, id bson.ObjectID) (*model.Certificate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.find(func(c *model.Certificate) bool { return c.ID == id }), nil
}

func (f *Certificates) GetForEmployee(_ context.Context, id, employeeID bson.ObjectID) (*model.Certificate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.find(func(c *model.Certificate) bool { return c.ID == id && c.EmployeeID == employeeID }), nil
}

func (f *Certificates) GetByCode(_ context.Context, code string) (*model.Certificate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.find(func(c *model.Certificate) bool { return c.VerificationCode == code }), nil
}

func (f *Certificates) newest(keep func(*model.Certificate) bool) []*model.Certificate {
	out := []*model.Certificate{}
	for i := len(f.certs) - 1; i >= 0; i-- {
		if keep(f.certs[i]) {
			cp := *f.certs[i]
			out = append(out, &cp)
		}
	}
	return out
}

func (f *Certificates) ListRecent(_ context.Context, limit int64) ([]*model.Certificate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.newest(func(*model.Certificate) bool { return true })
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *Certificates) ListByEmployee(_ context.Context, employeeID bson.ObjectID) ([]*model.Certificate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.newest(func(c *model.Certificate) bool { return c.EmployeeID == employeeID }), nil
}

func (f *Certificates) Delete(_ context.Context, id bson.ObjectID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, c := range f.certs {
		if c.ID == id {
			f.certs = append(f.certs[:i], f.certs[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

// Notifier records every message it is asked to deliver.
type Notifier struct {
	mu       sync.Mutex
	Messages []string
	Err      error
}

func (n *Notifier) Notify(_ context.Context, msg string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Messages = append(n.Messages, msg)
	return n.Err
}
