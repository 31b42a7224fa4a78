package service

import (
	"context"
	"fmt"
	"strings"

	"attendance-backend/internal/metrics"
	"attendance-backend/internal/model"
)

type AttendanceService struct {
	records AttendanceRepository
}

func NewAttendanceService(records AttendanceRepository) *AttendanceService {
	return &AttendanceService{records: records}
}

// AttendanceEvent is a check-in when ID is empty and a check-out of record ID
// otherwise. HoursWorked is taken from the client as-is.
type AttendanceEvent struct {
	ID            string
	UserID        string
	Date          string
	CheckInTime   string
	CheckOutTime  *string
	HoursWorked   *float64
	Method        string
	Status        *string
	CheckInPhoto  string
	CheckOutPhoto *string
}

func (s *AttendanceService) ListForUser(ctx context.Context, userID string) ([]*model.AttendanceRecord, error) {
	if userID == "" {
		return nil, fail(ErrBadRequest, "user_id_required")
	}
	records, err := s.records.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	return records, nil
}

// RecordEvent stores a check-in or check-out. created is true for check-ins.
func (s *AttendanceService) RecordEvent(ctx context.Context, ev AttendanceEvent) (record *model.AttendanceRecord, created bool, err error) {
	if ev.ID != "" {
		record, err = s.checkOut(ctx, ev)
		return record, false, err
	}
	record, err = s.checkIn(ctx, ev)
	return record, true, err
}

func (s *AttendanceService) checkIn(ctx context.Context, ev AttendanceEvent) (*model.AttendanceRecord, error) {
	status := ""
	if ev.Status != nil {
		status = *ev.Status
	}
	if ev.UserID == "" || ev.Date == "" || ev.CheckInTime == "" || strings.TrimSpace(ev.Method) == "" || status == "" {
		return nil, fail(ErrBadRequest, "check_in_fields_required")
	}

	record := &model.AttendanceRecord{
		UserID:       ev.UserID,
		Date:         ev.Date,
		CheckInTime:  ev.CheckInTime,
		Method:       ev.Method,
		Status:       status,
		CheckInPhoto: ev.CheckInPhoto,
	}
	if ev.CheckOutTime != nil {
		record.CheckOutTime = *ev.CheckOutTime
	}
	if ev.HoursWorked != nil {
		record.HoursWorked = *ev.HoursWorked
	}
	if err := s.records.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("create attendance: %w", err)
	}
	metrics.AttendanceEvents.WithLabelValues("check_in").Inc()
	return record, nil
}

func (s *AttendanceService) checkOut(ctx context.Context, ev AttendanceEvent) (*model.AttendanceRecord, error) {
	id, ok := parseID(ev.ID)
	if !ok {
		return nil, fail(ErrNotFound, "record_not_found")
	}
	record, err := s.records.CheckOut(ctx, id, model.CheckOut{
		CheckOutTime:  ev.CheckOutTime,
		HoursWorked:   ev.HoursWorked,
		CheckOutPhoto: ev.CheckOutPhoto,
		Status:        ev.Status,
	})
	if err != nil {
		return nil, fmt.Errorf("check out: %w", err)
	}
	if record == nil {
		return nil, fail(ErrNotFound, "record_not_found")
	}
	metrics.AttendanceEvents.WithLabelValues("check_out").Inc()
	return record, nil
}

// DeleteRecord removes a record. Deleting an unknown id succeeds.
func (s *AttendanceService) DeleteRecord(ctx context.Context, id string) error {
	oid, ok := parseID(id)
	if !ok {
		return nil
	}
	if _, err := s.records.Delete(ctx, oid); err != nil {
		return fmt.Errorf("delete attendance: %w", err)
	}
	return nil
}
