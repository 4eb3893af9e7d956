package enrollment

import (
	"errors"
	"time"

	"clubsub/internal/plan"
)

var (
	ErrUnknownTerm   = errors.New("unknown plan term")
	ErrInvalidPeriod = errors.New("period count must be at least 1")
)

// hourlyWindow is the fixed length of an hourly enrollment, regardless of
// the plan's period count.
const hourlyWindow = 4 * time.Hour

// NormalizeStart pins an enrollment start to the top of its hour.
func NormalizeStart(t time.Time) time.Time {
	return t.Truncate(time.Hour)
}

func endOfHour(t time.Time) time.Time {
	return t.Truncate(time.Hour).Add(time.Hour - time.Second)
}

// ComputeEndDate evaluates an enrollment's end boundary for the given
// term. Period terms roll forward from the normalized start and land on
// HH:59:59; the hourly term is a fixed 4-hour window. Slot terms never
// derive from the start instant: the window is the plan's own calendar
// slot, copied verbatim.
func ComputeEndDate(start time.Time, term plan.Term) (time.Time, error) {
	switch t := term.(type) {
	case plan.PeriodTerm:
		start = NormalizeStart(start)
		if t.Unit == plan.UnitHourly {
			return start.Add(hourlyWindow), nil
		}
		if t.Count < 1 {
			return time.Time{}, ErrInvalidPeriod
		}
		var end time.Time
		switch t.Unit {
		case plan.UnitDaily:
			end = start.AddDate(0, 0, t.Count)
		case plan.UnitWeekly:
			end = start.AddDate(0, 0, 7*t.Count)
		case plan.UnitMonthly:
			end = start.AddDate(0, t.Count, 0)
		case plan.UnitYearly:
			end = start.AddDate(t.Count, 0, 0)
		default:
			return time.Time{}, ErrUnknownTerm
		}
		return endOfHour(end), nil

	case plan.SlotTerm:
		if !t.End.After(t.Start) {
			return time.Time{}, ErrUnknownTerm
		}
		return t.End, nil
	}
	return time.Time{}, ErrUnknownTerm
}

// Window returns the full [start, end] pair for a new enrollment created
// at now. Slot enrollments occupy the plan's window, not a window
// anchored at enrollment time.
func Window(now time.Time, term plan.Term) (time.Time, time.Time, error) {
	if t, ok := term.(plan.SlotTerm); ok {
		end, err := ComputeEndDate(now, term)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		return t.Start, end, nil
	}

	start := NormalizeStart(now)
	end, err := ComputeEndDate(start, term)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}
