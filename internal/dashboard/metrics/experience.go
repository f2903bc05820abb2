package metrics

import (
	"fmt"
	"strings"
	"time"

	"github.com/freelancehub/dashboard-backend/internal/dashboard/domain"
)

// DateLayout is the stored format of experience dates.
const DateLayout = "2006-01-02"

// monthLayout is accepted for entries that only carry a month.
const monthLayout = "2006-01"

// Span is one employment period. End is ignored when Current is set.
type Span struct {
	Start   string
	End     string
	Current bool
}

// InvalidDateError identifies the entry whose dates could not be used.
type InvalidDateError struct {
	Index int
	Value string
	Err   error
}

func (e *InvalidDateError) Error() string {
	return fmt.Sprintf("experience %d: invalid date %q: %v", e.Index, e.Value, e.Err)
}

func (e *InvalidDateError) Unwrap() error { return domain.ErrInvalidDate }

// ParseDate accepts YYYY-MM-DD or YYYY-MM.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(monthLayout, s)
}

// MonthsBetween counts whole calendar months from start to end. A month only
// counts once end's day-of-month reaches start's.
func MonthsBetween(start, end time.Time) int {
	months := (end.Year()-start.Year())*12 + int(end.Month()) - int(start.Month())
	if end.Day() < start.Day() {
		months--
	}
	if months < 0 {
		return 0
	}
	return months
}

// TotalMonths sums whole months across spans. Overlapping spans are counted
// independently. Malformed dates and end-before-start are reported, never guessed.
func TotalMonths(spans []Span, now time.Time) (int, error) {
	total := 0
	for i, sp := range spans {
		start, err := ParseDate(sp.Start)
		if err != nil {
			return 0, &InvalidDateError{Index: i, Value: sp.Start, Err: err}
		}

		end := now
		if !sp.Current {
			end, err = ParseDate(sp.End)
			if err != nil {
				return 0, &InvalidDateError{Index: i, Value: sp.End, Err: err}
			}
		}
		if end.Before(start) {
			return 0, &InvalidDateError{Index: i, Value: sp.End, Err: fmt.Errorf("ends before %s", sp.Start)}
		}

		total += MonthsBetween(start, end)
	}
	return total, nil
}

// YearsOfExperience floor-divides the summed months by twelve.
func YearsOfExperience(spans []Span, now time.Time) (int, error) {
	months, err := TotalMonths(spans, now)
	if err != nil {
		return 0, err
	}
	return months / 12, nil
}
