package timeutil

import (
	"fmt"
	"math"
	"time"
)

const (
	minutesInHour  = 60
	minutesInDay   = 24 * minutesInHour
	minutesInMonth = 30 * minutesInDay
	minutesInYear  = 365 * minutesInDay
)

// StrictDistance describes the distance between from and to in the largest
// whole unit that fits, rounded to the nearest value ("45 seconds", "1 hour",
// "3 days"). Direction is ignored.
func StrictDistance(from, to time.Time) string {
	d := to.Sub(from)
	if d < 0 {
		d = -d
	}

	minutes := d.Minutes()
	switch {
	case d < time.Minute:
		return plural(int(math.Round(d.Seconds())), "second")
	case minutes < minutesInHour:
		return plural(int(math.Round(minutes)), "minute")
	case minutes < minutesInDay:
		return plural(int(math.Round(minutes/minutesInHour)), "hour")
	case minutes < minutesInMonth:
		return plural(int(math.Round(minutes/minutesInDay)), "day")
	case minutes < minutesInYear:
		return plural(int(math.Round(minutes/minutesInMonth)), "month")
	default:
		return plural(int(math.Round(minutes/minutesInYear)), "year")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
