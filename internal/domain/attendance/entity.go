package attendance

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPresent Status = "present"
	StatusLate    Status = "late"
	StatusAbsent  Status = "absent"
	StatusHalfDay Status = "half-day"
)

// Attendance is one employee's record for one calendar date.
type Attendance struct {
	ID         string
	EmployeeID string
	Date       time.Time
	Sessions   []Session
	TotalHours decimal.Decimal
	Status     Status
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Session is a clock-in/clock-out pair. ClockOut is nil while the session is open.
type Session struct {
	ClockIn  time.Time  `json:"clock_in"`
	ClockOut *time.Time `json:"clock_out,omitempty"`
}

func (s Session) Duration() time.Duration {
	if s.ClockOut == nil {
		return 0
	}
	return s.ClockOut.Sub(s.ClockIn)
}

// Policy decides how a day's sessions map to a status.
type Policy struct {
	WorkStartHour   int
	WorkStartMinute int
	HalfDayHours    decimal.Decimal
	Location        *time.Location
}

var DefaultPolicy = Policy{
	WorkStartHour:   9,
	WorkStartMinute: 0,
	HalfDayHours:    decimal.NewFromInt(4),
	Location:        time.UTC,
}

func (a *Attendance) OpenSession() *Session {
	if len(a.Sessions) == 0 {
		return nil
	}
	last := &a.Sessions[len(a.Sessions)-1]
	if last.ClockOut != nil {
		return nil
	}
	return last
}

// Recompute derives TotalHours and Status from the sessions.
func (a *Attendance) Recompute(p Policy) {
	var worked time.Duration
	for _, s := range a.Sessions {
		worked += s.Duration()
	}
	a.TotalHours = decimal.NewFromInt(int64(worked / time.Minute)).Div(decimal.NewFromInt(60)).Round(2)
	a.Status = deriveStatus(a.Sessions, a.TotalHours, p)
}

func deriveStatus(sessions []Session, totalHours decimal.Decimal, p Policy) Status {
	if len(sessions) == 0 {
		return StatusAbsent
	}

	closed := sessions[len(sessions)-1].ClockOut != nil
	if closed {
		if totalHours.IsZero() {
			return StatusAbsent
		}
		if totalHours.LessThan(p.HalfDayHours) {
			return StatusHalfDay
		}
	}

	loc := p.Location
	if loc == nil {
		loc = time.UTC
	}
	first := sessions[0].ClockIn.In(loc)
	workStart := time.Date(first.Year(), first.Month(), first.Day(), p.WorkStartHour, p.WorkStartMinute, 0, 0, loc)
	if first.After(workStart) {
		return StatusLate
	}
	return StatusPresent
}

// Counts reports whether the record counts as an attended day.
func (s Status) Counts() bool {
	return s == StatusPresent || s == StatusLate
}

// DateOnly truncates t to midnight UTC of its calendar date in loc.
func DateOnly(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}
