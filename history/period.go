package history

import (
	"fmt"
	"time"

	"github.com/rhinoxpay/rhinoxcore/common"
)

// Period selectors for history filtering
const (
	PeriodDay    = "D"
	PeriodWeek   = "W"
	PeriodMonth  = "M"
	PeriodCustom = "custom"
)

// ResolveRange turns a period selector into an inclusive [start, end] window.
// Custom ranges must satisfy start <= end.
func ResolveRange(now time.Time, period string, start, end time.Time) (time.Time, time.Time, error) {
	switch period {
	case PeriodDay:
		midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		return midnight, now, nil
	case PeriodWeek:
		return now.AddDate(0, 0, -7), now, nil
	case PeriodMonth:
		return now.AddDate(0, 0, -30), now, nil
	case PeriodCustom:
		if start.IsZero() || end.IsZero() {
			return time.Time{}, time.Time{}, fmt.Errorf(
				"%w: custom period requires start and end dates", common.ErrInvalidInput)
		}
		if start.After(end) {
			return time.Time{}, time.Time{}, fmt.Errorf(
				"%w: range start %s is after end %s", common.ErrInvalidInput,
				start.Format(time.RFC3339), end.Format(time.RFC3339))
		}
		return start, end, nil
	default:
		return time.Time{}, time.Time{}, fmt.Errorf(
			"%w: unknown period %q", common.ErrInvalidInput, period)
	}
}

// hourLabel renders the 12-hour chart bucket label for hour h, e.g.
// "12 AM - 1 AM" for midnight
func hourLabel(h int) string {
	return fmt.Sprintf("%s - %s", clockLabel(h), clockLabel((h+1)%24))
}

func clockLabel(h int) string {
	suffix := "AM"
	if h >= 12 {
		suffix = "PM"
	}
	display := h % 12
	if display == 0 {
		display = 12
	}
	return fmt.Sprintf("%d %s", display, suffix)
}
