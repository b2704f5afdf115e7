// Package duration parses the duration strings accepted in configuration
// and on the command line.
//
// Long spans use calendar-style units ("7d", "2w", "3m") because that is how
// people think about audit history. Short spans such as request timeouts use
// Go's own syntax ("500ms", "10s", "1m30s"). "m" on its own means months;
// minutes need Go syntax with another unit or a plain "90s".
package duration

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// ErrInvalid is wrapped by every parse failure.
var ErrInvalid = errors.New("invalid duration")

const day = 24 * time.Hour

var calendar = regexp.MustCompile(`^(\d+)([dwm])$`)

// Parse parses s as a calendar span (Nd, Nw, Nm with a month of 30 days) or
// as a Go duration. Negative durations are rejected.
func Parse(s string) (time.Duration, error) {
	if m := calendar.FindStringSubmatch(s); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return 0, fmt.Errorf("%w: %s: %v", ErrInvalid, s, err)
		}
		switch m[2] {
		case "d":
			return time.Duration(n) * day, nil
		case "w":
			return time.Duration(n) * 7 * day, nil
		default:
			return time.Duration(n) * 30 * day, nil
		}
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %s (use 10s, 7d, 4w or 3m)", ErrInvalid, s)
	}
	if d < 0 {
		return 0, fmt.Errorf("%w: %s is negative", ErrInvalid, s)
	}
	return d, nil
}
