package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"attendance-backend/internal/service/servicetest"
)

func ptr[T any](v T) *T { return &v }

func TestRecordEvent_CheckInThenCheckOut(t *testing.T) {
	ctx := context.Background()
	records := servicetest.NewAttendance()
	svc := NewAttendanceService(records)

	in, created, err := svc.RecordEvent(ctx, AttendanceEvent{
		UserID:       "u1",
		Date:         "19/10/2026",
		CheckInTime:  "09:02 AM",
		Method:       "selfie",
		Status:       ptr("checked-in"),
		CheckInPhoto: "data:image/jpeg;base64,AAAA",
	})
	require.NoError(t, err)
	assert.True(t, created)
	assert.True(t, in.IsOpen())
	assert.False(t, in.ID.IsZero())

	out, created, err := svc.RecordEvent(ctx, AttendanceEvent{
		ID:            in.ID.Hex(),
		CheckOutTime:  ptr("06:00 PM"),
		HoursWorked:   ptr(8.97),
		CheckOutPhoto: ptr("data:image/jpeg;base64,BBBB"),
		Status:        ptr("completed"),
	})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, in.ID, out.ID)
	assert.Equal(t, "06:00 PM", out.CheckOutTime)
	assert.Equal(t, 8.97, out.HoursWorked)
	assert.Equal(t, "completed", out.Status)
	assert.Equal(t, "09:02 AM", out.CheckInTime)
	assert.Equal(t, "data:image/jpeg;base64,AAAA", out.CheckInPhoto)

	list, err := svc.ListForUser(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestRecordEvent_CheckOutUnknownRecord(t *testing.T) {
	svc := NewAttendanceService(servicetest.NewAttendance())
	ctx := context.Background()

	_, _, err := svc.RecordEvent(ctx, AttendanceEvent{ID: bson.NewObjectID().Hex(), CheckOutTime: ptr("18:00")})
	assert.ErrorIs(t, err, ErrNotFound)

	_, _, err = svc.RecordEvent(ctx, AttendanceEvent{ID: "not-an-id"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecordEvent_CheckInRequiresFields(t *testing.T) {
	svc := NewAttendanceService(servicetest.NewAttendance())
	_, _, err := svc.RecordEvent(context.Background(), AttendanceEvent{UserID: "u1", Date: "19/10/2026"})
	assert.ErrorIs(t, err, ErrBadRequest)
}

func TestListForUser_RequiresUserID(t *testing.T) {
	svc := NewAttendanceService(servicetest.NewAttendance())
	_, err := svc.ListForUser(context.Background(), "")
	assert.ErrorIs(t, err, ErrBadRequest)

	list, err := svc.ListForUser(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestDeleteRecord_Idempotent(t *testing.T) {
	ctx := context.Background()
	records := servicetest.NewAttendance()
	svc := NewAttendanceService(records)

	rec, _, err := svc.RecordEvent(ctx, AttendanceEvent{UserID: "u1", Date: "d", CheckInTime: "t", Method: "m", Status: ptr("s")})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteRecord(ctx, rec.ID.Hex()))
	require.NoError(t, svc.DeleteRecord(ctx, rec.ID.Hex()))
	require.NoError(t, svc.DeleteRecord(ctx, "garbage"))
	assert.Empty(t, records.Records())
}
