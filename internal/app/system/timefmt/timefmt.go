// Package timefmt formats record timestamps for display and computes the
// due-date countdown shown next to assignments.
package timefmt

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	DateLayout     = "2006.01.02"
	DateTimeLayout = "2006.01.02 15:04"
)

// Labels used by Countdown.
const (
	LabelDueToday = "D-Day"
	LabelClosed   = "Closed"
)

// ErrBadDate is returned by ParseDue for input in none of the accepted layouts.
var ErrBadDate = errors.New("unrecognized date format")

// Formatter renders times in one display location.
type Formatter struct {
	loc *time.Location
}

// New returns a Formatter for loc; nil means UTC.
func New(loc *time.Location) Formatter {
	if loc == nil {
		loc = time.UTC
	}
	return Formatter{loc: loc}
}

// Location returns the display location.
func (f Formatter) Location() *time.Location {
	if f.loc == nil {
		return time.UTC
	}
	return f.loc
}

func (f Formatter) Date(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(f.Location()).Format(DateLayout)
}

func (f Formatter) DateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(f.Location()).Format(DateTimeLayout)
}

// Countdown describes how far away a due date is.
type Countdown struct {
	DaysLeft *int   `json:"days_left,omitempty"`
	Overdue  bool   `json:"overdue"`
	Label    string `json:"due_label,omitempty"`
}

// Countdown compares calendar days in the display location: a deadline later
// today is "D-Day", tomorrow is "D-1", and anything already past is "Closed"
// regardless of how many days ago. A nil due date yields the zero Countdown.
func (f Formatter) Countdown(due *time.Time, now time.Time) Countdown {
	if due == nil {
		return Countdown{}
	}
	days := daysBetween(now.In(f.Location()), due.In(f.Location()))
	if now.After(*due) {
		return Countdown{DaysLeft: &days, Overdue: true, Label: LabelClosed}
	}
	label := LabelDueToday
	if days > 0 {
		label = fmt.Sprintf("D-%d", days)
	}
	return Countdown{DaysLeft: &days, Label: label}
}

// daysBetween counts midnights crossed going from a to b (both already in
// the same location).
func daysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	da := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	db := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}

// ParseDue accepts RFC 3339, "2006-01-02T15:04" and "2006-01-02". Layouts
// without a zone are read in the display location; a bare date means the end
// of that day.
func (f Formatter) ParseDue(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.ParseInLocation("2006-01-02T15:04", s, f.Location()); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.ParseInLocation("2006-01-02", s, f.Location()); err == nil {
		y, m, d := t.Date()
		return time.Date(y, m, d, 23, 59, 0, 0, f.Location()).UTC(), nil
	}
	return time.Time{}, ErrBadDate
}
