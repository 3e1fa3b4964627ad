package budget

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrBadMonth is returned when a month string is not in YYYY-MM form.
var ErrBadMonth = errors.New("month must be in YYYY-MM format")

// Alert levels for the budget overview.
const (
	AlertWarning   = "WARNING"
	AlertOverlimit = "OVERLIMIT"
)

// Overview holds the derived budget figures for one month.
type Overview struct {
	Total      float64  `json:"total"`      // Sum of expenses in the month window
	Budget     float64  `json:"budget"`     // Configured budget, 0 when unset
	Remaining  *float64 `json:"remaining"`  // Budget minus total, nil when no budget; may be negative
	Percentage int      `json:"percentage"` // round(total/budget*100), 0 when no budget
	Alert      *string  `json:"alert"`      // nil, WARNING or OVERLIMIT
}

// ParseMonth parses a strict YYYY-MM string into year and month numbers.
func ParseMonth(s string) (int, time.Month, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return 0, 0, ErrBadMonth
	}
	return t.Year(), t.Month(), nil
}

// FormatMonth renders a year and month as YYYY-MM.
func FormatMonth(year int, month time.Month) string {
	return fmt.Sprintf("%04d-%02d", year, int(month))
}

// CurrentMonth returns the current calendar month in UTC as YYYY-MM.
func CurrentMonth(now time.Time) string {
	u := now.UTC()
	return FormatMonth(u.Year(), u.Month())
}

// MonthWindow returns the half-open UTC interval [start, end) covering the
// given month: start is the first instant of the month, end the first instant
// of the following month. An expense dated exactly at end belongs to the next
// month.
func MonthWindow(year int, month time.Month) (time.Time, time.Time) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

// ComputeOverview derives remaining budget, percentage consumed and alert
// level from a month total and the user's configured budget. A nil or zero
// budget means "no budget configured": remaining and alert stay nil and
// percentage stays 0 regardless of total.
//
// A total exactly equal to the budget yields percentage 100 and WARNING, not
// OVERLIMIT: the overlimit check is strictly total > budget.
func ComputeOverview(total float64, budget *float64) Overview {
	ov := Overview{Total: total}
	if budget == nil || *budget <= 0 {
		return ov
	}
	limit := *budget
	remaining := limit - total
	ov.Budget = limit
	ov.Remaining = &remaining
	ov.Percentage = int(math.Round(total / limit * 100))
	if total > limit {
		alert := AlertOverlimit
		ov.Alert = &alert
	} else if ov.Percentage >= 80 {
		alert := AlertWarning
		ov.Alert = &alert
	}
	return ov
}

// TomorrowDay returns the day-of-month of the calendar day after now, in
// now's location. AddDate handles month and year rollover, so Dec 31 yields 1.
func TomorrowDay(now time.Time) int {
	return now.AddDate(0, 0, 1).Day()
}
