package durations

import (
	"fmt"
	"strings"
	"time"
)

type unit struct {
	name string
	val  time.Duration
}

var units = []unit{
	{"day", 24 * time.Hour},
	{"hour", time.Hour},
	{"minute", time.Minute},
	{"second", time.Second},
}

func plural(amt int64, name string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d", amt))
	sb.WriteString(" ")
	sb.WriteString(name)
	if amt != 1 {
		sb.WriteString("s")
	}
	return sb.String()
}

func NiceDuration(dur time.Duration) string {
	if dur <= 0 {
		return "0 seconds"
	}

	// trials are usually quick, so keep sub-second precision for them
	if dur < time.Second {
		ms := dur.Milliseconds()
		if ms == 0 {
			return "less than 1 millisecond"
		}
		return plural(ms, "millisecond")
	}

	var parts []string
	for _, curr := range units {
		if dur >= curr.val {
			amt := int64(dur / curr.val)
			dur %= curr.val

			parts = append(parts, plural(amt, curr.name))
		}
	}

	return strings.Join(parts, " ")
}
