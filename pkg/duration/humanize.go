// Coarse, human-friendly rendering of durations (snapshot ages etc.)
package duration

import (
	"strconv"
	"time"
)

const (
	day  = 24 * time.Hour
	week = 7 * day
)

// largest fitting unit, truncated: 47h => "1 day". sub-minute ages don't matter for
// snapshots taken at most every few minutes.
func Humanize(dur time.Duration) string {
	switch {
	case dur < 0:
		return "in the future" // clock skew
	case dur >= week:
		return plural(int(dur/week), "week", "weeks")
	case dur >= day:
		return plural(int(dur/day), "day", "days")
	case dur >= time.Hour:
		return plural(int(dur/time.Hour), "hour", "hours")
	case dur >= time.Minute:
		return plural(int(dur/time.Minute), "minute", "minutes")
	default:
		return "just now"
	}
}

func Ago(then time.Time, now time.Time) string {
	age := now.Sub(then)
	if age < time.Minute {
		return Humanize(age)
	}

	return Humanize(age) + " ago"
}

func plural(num int, singular string, plural string) string {
	if num == 1 {
		return strconv.Itoa(num) + " " + singular
	} else {
		return strconv.Itoa(num) + " " + plural
	}
}
