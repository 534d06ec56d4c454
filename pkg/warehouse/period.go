package warehouse

import "fmt"

// Period selects the date window for a dashboard aggregation. The zero value
// PeriodDefault uses a wide 365-day window and is the only period allowed to
// fall back to an unbounded query when the window turns up empty.
type Period string

const (
	PeriodDefault Period = "default"
	PeriodDay     Period = "day"
	PeriodWeek    Period = "week"
	PeriodMonth   Period = "month"
)

// ParsePeriod maps a request parameter to a Period. An empty string selects
// the default window; anything else unrecognized is a validation error.
func ParsePeriod(s string) (Period, error) {
	switch s {
	case "", "default":
		return PeriodDefault, nil
	case "day":
		return PeriodDay, nil
	case "week":
		return PeriodWeek, nil
	case "month":
		return PeriodMonth, nil
	}
	return "", fmt.Errorf("invalid period %q (want day, week or month)", s)
}

// WindowDays returns the size of the period's date window in days.
func (p Period) WindowDays() int {
	switch p {
	case PeriodDay:
		return 1
	case PeriodWeek:
		return 7
	case PeriodMonth:
		return 30
	default:
		return 365
	}
}
