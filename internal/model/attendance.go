package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// AttendanceRecord is one check-in/check-out cycle. The record is open while
// CheckOutTime is empty. Date and times are stored as the client sent them.
type AttendanceRecord struct {
	ID            bson.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID        string        `bson:"userId" json:"userId"`
	Date          string        `bson:"date" json:"date"`
	CheckInTime   string        `bson:"checkInTime" json:"checkInTime"`
	CheckOutTime  string        `bson:"checkOutTime,omitempty" json:"checkOutTime,omitempty"`
	HoursWorked   float64       `bson:"hoursWorked" json:"hoursWorked"`
	Method        string        `bson:"method" json:"method"`
	Status        string        `bson:"status" json:"status"`
	CheckInPhoto  string        `bson:"checkInPhoto,omitempty" json:"checkInPhoto,omitempty"`
	CheckOutPhoto string        `bson:"checkOutPhoto,omitempty" json:"checkOutPhoto,omitempty"`
	CreatedAt     time.Time     `bson:"createdAt,omitempty" json:"createdAt,omitempty"`
	UpdatedAt     time.Time     `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

func (r *AttendanceRecord) IsOpen() bool {
	return r.CheckOutTime == ""
}

// CheckOut holds the fields a check-out is allowed to change. Nil fields are
// left untouched.
type CheckOut struct {
	CheckOutTime  *string
	HoursWorked   *float64
	CheckOutPhoto *string
	Status        *string
}

// AttendanceFilter narrows admin listings. Empty fields match everything.
type AttendanceFilter struct {
	Date   string
	UserID string
}

// EnrichedAttendance is a record joined with the owner's display fields.
type EnrichedAttendance struct {
	AttendanceRecord `bson:",inline"`
	UserName         string `json:"userName"`
	UserUsername     string `json:"userUsername"`
}
