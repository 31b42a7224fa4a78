package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"attendance-backend/internal/model"
	"attendance-backend/internal/service/servicetest"
)

type adminFixture struct {
	users   *servicetest.Users
	records *servicetest.Attendance
	certs   *servicetest.Certificates
	svc     *AdminService
	admin   *model.User
}

func newAdminFixture(t *testing.T) *adminFixture {
	t.Helper()
	f := &adminFixture{
		users:   servicetest.NewUsers(),
		records: servicetest.NewAttendance(),
		certs:   servicetest.NewCertificates(),
	}
	f.svc = NewAdminService(f.users, f.records, f.certs, fixedClock(testNow), discardLogger())
	f.admin = f.users.Add(&model.User{Name: "Boss", Username: "admin@blinkit.com", Role: model.RoleAdmin, AccountStatus: model.AccountStatusApproved})
	return f
}

func (f *adminFixture) employee(name string) *model.User {
	return f.users.Add(&model.User{Name: name, Username: name, Role: model.RoleEmployee, AccountStatus: model.AccountStatusApproved})
}

func (f *adminFixture) record(userID, date, checkOut string, hours float64) *model.AttendanceRecord {
	r := &model.AttendanceRecord{UserID: userID, Date: date, CheckInTime: "09:00", CheckOutTime: checkOut, HoursWorked: hours, Method: "selfie", Status: "checked-in"}
	if err := f.records.Create(context.Background(), r); err != nil {
		panic(err)
	}
	return r
}

func TestRequireAdmin(t *testing.T) {
	f := newAdminFixture(t)
	emp := f.employee("emp")
	ctx := context.Background()

	caller, err := f.svc.RequireAdmin(ctx, f.admin.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, f.admin.ID, caller.ID)

	_, err = f.svc.RequireAdmin(ctx, "")
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = f.svc.RequireAdmin(ctx, emp.ID.Hex())
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.RequireAdmin(ctx, bson.NewObjectID().Hex())
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.RequireAdmin(ctx, "zzz")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestRequireAdmin_StoreFailure(t *testing.T) {
	f := newAdminFixture(t)
	f.users.GetErr = errors.New("connection reset")

	_, err := f.svc.RequireAdmin(context.Background(), f.admin.ID.Hex())
	require.Error(t, err)
	var svcErr *Error
	assert.False(t, errors.As(err, &svcErr))
}

func TestStats(t *testing.T) {
	f := newAdminFixture(t)
	a := f.employee("a")
	b := f.employee("b")
	f.employee("c")

	f.record(a.ID.Hex(), "19/10/2026", "", 2.5)
	f.record(b.ID.Hex(), "19/10/2026", "05:00 PM", 3.0)
	f.record(b.ID.Hex(), "18/10/2026", "", 7)

	stats, err := f.svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &Stats{
		TotalEmployees:     3,
		CheckedInToday:     2,
		CurrentlyCheckedIn: 1,
		TotalHoursToday:    5.5,
		Date:               "19/10/2026",
	}, stats)
}

func TestStats_NoRecords(t *testing.T) {
	f := newAdminFixture(t)
	stats, err := f.svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.TotalEmployees)
	assert.Zero(t, stats.TotalHoursToday)
}

func TestRoundTenths(t *testing.T) {
	assert.Equal(t, 5.5, roundTenths(2.5+3.0))
	assert.Equal(t, 0.3, roundTenths(0.1+0.2))
	assert.Equal(t, 1.3, roundTenths(1.25))
	assert.Equal(t, 0.0, roundTenths(0))
}

func TestListAttendance_Enriched(t *testing.T) {
	f := newAdminFixture(t)
	a := f.employee("alice")
	f.record(a.ID.Hex(), "19/10/2026", "", 0)
	f.record("orphan", "19/10/2026", "", 0)
	f.record(a.ID.Hex(), "18/10/2026", "", 0)

	rows, err := f.svc.ListAttendance(context.Background(), model.AttendanceFilter{Date: "19/10/2026"})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "orphan", rows[0].UserID)
	assert.Equal(t, "Unknown", rows[0].UserName)
	assert.Equal(t, "unknown", rows[0].UserUsername)
	assert.Equal(t, "alice", rows[1].UserName)

	rows, err = f.svc.ListAttendance(context.Background(), model.AttendanceFilter{UserID: a.ID.Hex()})
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestGetUserAttendance(t *testing.T) {
	f := newAdminFixture(t)
	a := f.employee("alice")
	first := f.record(a.ID.Hex(), "18/10/2026", "06:00 PM", 9)
	second := f.record(a.ID.Hex(), "19/10/2026", "", 0)

	user, records, err := f.svc.GetUserAttendance(context.Background(), a.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Name)
	require.Len(t, records, 2)
	assert.Equal(t, second.ID, records[0].ID)
	assert.Equal(t, first.ID, records[1].ID)

	_, _, err = f.svc.GetUserAttendance(context.Background(), bson.NewObjectID().Hex())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAssignStore(t *testing.T) {
	f := newAdminFixture(t)
	emp := f.employee("emp")
	ctx := context.Background()
	lat, lng := 12.97, 77.59

	u, err := f.svc.AssignStore(ctx, emp.ID.Hex(), &StoreInput{Name: "Koramangala", Address: "80 Ft Rd", City: "Bengaluru", Latitude: &lat, Longitude: &lng})
	require.NoError(t, err)
	require.NotNil(t, u.AssignedStore)
	assert.Equal(t, model.AssignedStore{Name: "Koramangala", Address: "80 Ft Rd", City: "Bengaluru", Latitude: lat, Longitude: lng, Radius: 100}, *u.AssignedStore)

	stored, _ := f.users.GetByID(ctx, emp.ID)
	assert.Equal(t, u.AssignedStore, stored.AssignedStore)

	zero := 0.0
	_, err = f.svc.AssignStore(ctx, emp.ID.Hex(), &StoreInput{Name: "Null Island", City: "Sea", Latitude: &zero, Longitude: &zero})
	assert.NoError(t, err)

	_, err = f.svc.AssignStore(ctx, emp.ID.Hex(), &StoreInput{Name: "No coords", City: "X"})
	assert.ErrorIs(t, err, ErrBadRequest)

	_, err = f.svc.AssignStore(ctx, emp.ID.Hex(), nil)
	assert.ErrorIs(t, err, ErrBadRequest)

	_, err = f.svc.AssignStore(ctx, bson.NewObjectID().Hex(), &StoreInput{Name: "S", City: "C", Latitude: &lat, Longitude: &lng})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteEmployee_Cascades(t *testing.T) {
	f := newAdminFixture(t)
	emp := f.employee("emp")
	other := f.employee("other")
	f.record(emp.ID.Hex(), "18/10/2026", "06:00 PM", 9)
	f.record(emp.ID.Hex(), "19/10/2026", "", 0)
	f.record(other.ID.Hex(), "19/10/2026", "", 0)
	ctx := context.Background()

	require.NoError(t, f.svc.DeleteEmployee(ctx, emp.ID.Hex(), f.admin.ID.Hex()))

	gone, _ := f.users.GetByID(ctx, emp.ID)
	assert.Nil(t, gone)
	left, _ := f.records.ListByUser(ctx, emp.ID.Hex())
	assert.Empty(t, left)
	kept, _ := f.records.ListByUser(ctx, other.ID.Hex())
	assert.Len(t, kept, 1)
}

func TestDeleteEmployee_Guards(t *testing.T) {
	f := newAdminFixture(t)
	other := f.users.Add(&model.User{Name: "Other admin", Username: "root2", Role: model.RoleAdmin})
	ctx := context.Background()

	err := f.svc.DeleteEmployee(ctx, f.admin.ID.Hex(), f.admin.ID.Hex())
	assert.ErrorIs(t, err, ErrBadRequest)

	err = f.svc.DeleteEmployee(ctx, other.ID.Hex(), f.admin.ID.Hex())
	assert.ErrorIs(t, err, ErrForbidden)
	still, _ := f.users.GetByID(ctx, other.ID)
	assert.NotNil(t, still)

	err = f.svc.DeleteEmployee(ctx, bson.NewObjectID().Hex(), f.admin.ID.Hex())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteEmployee_KeepsUserWhenRecordsFail(t *testing.T) {
	f := newAdminFixture(t)
	emp := f.employee("emp")
	f.records.DeleteByUserErr = errors.New("write concern")

	err := f.svc.DeleteEmployee(context.Background(), emp.ID.Hex(), f.admin.ID.Hex())
	require.Error(t, err)
	still, _ := f.users.GetByID(context.Background(), emp.ID)
	assert.NotNil(t, still)
}

func TestDeleteAttendanceRecord(t *testing.T) {
	f := newAdminFixture(t)
	r := f.record("u", "19/10/2026", "", 0)
	ctx := context.Background()

	require.NoError(t, f.svc.DeleteAttendanceRecord(ctx, r.ID.Hex()))
	assert.ErrorIs(t, f.svc.DeleteAttendanceRecord(ctx, r.ID.Hex()), ErrNotFound)
	assert.ErrorIs(t, f.svc.DeleteAttendanceRecord(ctx, "bad"), ErrNotFound)
}

func TestApproveReject(t *testing.T) {
	f := newAdminFixture(t)
	ctx := context.Background()
	pending := f.users.Add(&model.User{Name: "New", Username: "new", Role: model.RoleEmployee, AccountStatus: model.AccountStatusPending})

	list, err := f.svc.ListPendingUsers(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	u, err := f.svc.ApproveUser(ctx, pending.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, model.AccountStatusApproved, u.AccountStatus)

	_, err = f.svc.ApproveUser(ctx, pending.ID.Hex())
	assert.ErrorIs(t, err, ErrBadRequest)

	u, err = f.svc.RejectUser(ctx, pending.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, model.AccountStatusRejected, u.AccountStatus)

	_, err = f.svc.RejectUser(ctx, pending.ID.Hex())
	var svcErr *Error
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, "already_rejected", svcErr.MessageID)

	list, err = f.svc.ListPendingUsers(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = f.svc.ApproveUser(ctx, bson.NewObjectID().Hex())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestApprove_LegacyUserWithoutStatus(t *testing.T) {
	f := newAdminFixture(t)
	legacy := f.users.Add(&model.User{Name: "Old", Username: "old", Role: model.RoleEmployee})

	u, err := f.svc.ApproveUser(context.Background(), legacy.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, model.AccountStatusApproved, u.AccountStatus)
}

func TestResetPassword(t *testing.T) {
	f := newAdminFixture(t)
	emp := f.employee("emp")
	ctx := context.Background()

	_, err := f.svc.ResetPassword(ctx, emp.ID.Hex(), "123")
	var svcErr *Error
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, "password_too_short", svcErr.MessageID)
	assert.Equal(t, MinPasswordLength, svcErr.Data["Min"])

	_, err = f.svc.ResetPassword(ctx, emp.ID.Hex(), "newpass")
	require.NoError(t, err)

	stored, _ := f.users.GetByID(ctx, emp.ID)
	ok, legacy := CheckPassword(stored.Password, "newpass")
	assert.True(t, ok)
	assert.False(t, legacy)

	_, err = f.svc.ResetPassword(ctx, bson.NewObjectID().Hex(), "newpass")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResetPassword_LengthBounds(t *testing.T) {
	f := newAdminFixture(t)
	emp := f.employee("emp")
	ctx := context.Background()

	tests := []struct {
		name      string
		password  string
		wantMsgID string
	}{
		{"four runes in twelve bytes", "पासव", "password_too_short"},
		{"over bcrypt limit", strings.Repeat("x", MaxPasswordBytes+1), "password_too_long"},
		{"seven runes", "पासवर्ड", ""},
		{"exactly bcrypt limit", strings.Repeat("x", MaxPasswordBytes), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.ResetPassword(ctx, emp.ID.Hex(), tt.password)
			if tt.wantMsgID == "" {
				require.NoError(t, err)
				return
			}
			var svcErr *Error
			require.ErrorAs(t, err, &svcErr)
			assert.ErrorIs(t, err, ErrBadRequest)
			assert.Equal(t, tt.wantMsgID, svcErr.MessageID)
		})
	}
}

func TestListEmployeesAndUsers(t *testing.T) {
	f := newAdminFixture(t)
	f.employee("zed")
	f.employee("amy")
	ctx := context.Background()

	emps, err := f.svc.ListEmployees(ctx)
	require.NoError(t, err)
	require.Len(t, emps, 2)
	assert.Equal(t, "amy", emps[0].Name)

	all, err := f.svc.ListAllUsers(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, model.RoleAdmin, all[0].Role)
}
