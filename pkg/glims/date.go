package glims

import (
	"fmt"
	"strings"
	"time"

	"github.com/bruceraup/glims-aster-gains/pkg/aster"
)

// dateFormat is the date part of the window fields, e.g. "07/05/2023 00:00:00".
const dateFormat = "1/2/2006"

// ParseDate returns the date of a window field formatted as MM/DD/YYYY HH:MM:SS.
// The time of day is ignored.
func ParseDate(s string) (time.Time, error) {
	parts := strings.Split(s, " ")
	if len(parts) != 2 {
		return time.Time{}, fmt.Errorf("%w: date %q: want MM/DD/YYYY HH:MM:SS", aster.ErrParse, s)
	}

	t, err := time.Parse(dateFormat, parts[0])
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q: %v", aster.ErrParse, s, err)
	}
	return t, nil
}

// MidDayOfYear returns the day of year of the date halfway between start and end.
// Only the calendar dates count. An odd number of days between them is rounded towards
// the earlier date, so the order of start and end does not matter.
func MidDayOfYear(start, end time.Time) int {
	s := truncateDay(start)
	e := truncateDay(end)

	// whole days from the seconds, a time.Duration overflows for spans beyond 292 years
	days := int((e.Unix() - s.Unix()) / 86400)
	half := days / 2
	if days < 0 && days%2 != 0 {
		half-- // floor
	}
	return s.AddDate(0, 0, half).YearDay()
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
