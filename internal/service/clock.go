package service

import (
	"math"
	"time"
)

// DayLayout is the day format shared by join dates, attendance dates and the
// dashboard. Attendance lookups compare these strings for equality, so every
// day string must come from FormatDay.
const DayLayout = "02/01/2006"

// Clock returns the current time in the deployment's time zone.
type Clock func() time.Time

func NewClock(loc *time.Location) Clock {
	if loc == nil {
		loc = time.Local
	}
	return func() time.Time { return time.Now().In(loc) }
}

func FormatDay(t time.Time) string {
	return t.Format(DayLayout)
}

// roundTenths rounds half up to one decimal place.
func roundTenths(v float64) float64 {
	return math.Floor(v*10+0.5) / 10
}
