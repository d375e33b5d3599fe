package timespec

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseDue parses a due-date specification relative to now.
// Supports:
//   - RFC3339 timestamps: "2025-10-29T13:00:00Z"
//   - Calendar dates: "2025-10-29" (end of that day, UTC)
//   - Day offsets: "3d" (three days from now)
//   - Go durations: "36h", "90m" (from now)
//   - "today" and "tomorrow" (end of day, UTC)
func ParseDue(spec string, now time.Time) (time.Time, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return time.Time{}, fmt.Errorf("empty due date")
	}

	switch strings.ToLower(spec) {
	case "today":
		return endOfDay(now), nil
	case "tomorrow":
		return endOfDay(now.AddDate(0, 0, 1)), nil
	}

	if t, err := time.Parse(time.RFC3339, spec); err == nil {
		return t, nil
	}

	if t, err := time.Parse("2006-01-02", spec); err == nil {
		return endOfDay(t), nil
	}

	if days, ok := strings.CutSuffix(spec, "d"); ok {
		if n, err := strconv.Atoi(days); err == nil {
			if n < 0 {
				return time.Time{}, fmt.Errorf("due date offset must not be negative: %s", spec)
			}
			return now.AddDate(0, 0, n), nil
		}
	}

	if d, err := time.ParseDuration(spec); err == nil {
		if d < 0 {
			return time.Time{}, fmt.Errorf("due date offset must not be negative: %s", spec)
		}
		return now.Add(d), nil
	}

	return time.Time{}, fmt.Errorf("invalid due date: %s (use a date like '2025-10-29', an offset like '3d' or '36h', or RFC3339)", spec)
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 23, 59, 59, 0, time.UTC)
}
