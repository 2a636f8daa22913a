package harmonize

import (
	"fmt"
	"time"

	"github.com/lacollections/warehouse/internal/domain/shared"
	"github.com/lacollections/warehouse/internal/domain/warehouse"
)

// Twin dates (1/1, 2/2 ... 12/12) are always mega-sale days on both
// platforms; additional recurring holidays come from the mapping
// configuration as MM-DD strings.

// GenerateTimeDimension produces one TimeDay per calendar date in
// [start, end] inclusive. The only failure mode is an inverted range.
func GenerateTimeDimension(start, end time.Time, holidays []string) ([]warehouse.TimeDay, error) {
	start = truncateToDay(start)
	end = truncateToDay(end)
	if start.After(end) {
		return nil, fmt.Errorf("%w: start %s after end %s",
			shared.ErrInvalidInput, start.Format("2006-01-02"), end.Format("2006-01-02"))
	}

	holidaySet := make(map[string]struct{}, len(holidays))
	for _, h := range holidays {
		holidaySet[h] = struct{}{}
	}

	days := make([]warehouse.TimeDay, 0, int(end.Sub(start).Hours()/24)+1)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		_, week := d.ISOWeek()
		days = append(days, warehouse.TimeDay{
			TimeKey:       warehouse.TimeKeyOf(d),
			Date:          d,
			Year:          d.Year(),
			Quarter:       (int(d.Month())-1)/3 + 1,
			Month:         int(d.Month()),
			Week:          week,
			DayOfWeek:     isoWeekday(d),
			IsWeekend:     d.Weekday() == time.Saturday || d.Weekday() == time.Sunday,
			IsPayday:      isPayday(d),
			IsMegaSaleDay: isMegaSaleDay(d, holidaySet),
		})
	}
	return days, nil
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// isoWeekday maps Sunday=0 ... Saturday=6 onto ISO Monday=1 ... Sunday=7
func isoWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// isPayday marks the mid-month and end-of-month salary days
func isPayday(t time.Time) bool {
	return t.Day() == 15 || t.Day() == lastDayOfMonth(t)
}

func lastDayOfMonth(t time.Time) int {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC).
		AddDate(0, 1, -1).Day()
}

func isMegaSaleDay(t time.Time, holidays map[string]struct{}) bool {
	if int(t.Month()) == t.Day() {
		return true
	}
	if _, ok := holidays[t.Format("01-02")]; ok {
		return true
	}
	bf := blackFriday(t.Year())
	if sameDay(t, bf) || sameDay(t, bf.AddDate(0, 0, 3)) {
		return true
	}
	return false
}

// blackFriday returns the fourth Friday of November for a year
func blackFriday(year int) time.Time {
	d := time.Date(year, time.November, 1, 0, 0, 0, 0, time.UTC)
	fridays := 0
	for {
		if d.Weekday() == time.Friday {
			fridays++
			if fridays == 4 {
				return d
			}
		}
		d = d.AddDate(0, 0, 1)
	}
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}
