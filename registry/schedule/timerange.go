package schedule

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

const secondsPerDay = 24 * 60 * 60

// ErrUnparseableRange means the schedule time string did not match
// HH:MM-HH:MM. Callers must treat it as "cannot determine conflict",
// never as "no conflict".
var ErrUnparseableRange = errors.New("unparseable time range")

var timeRangePattern = regexp.MustCompile(`^(\d{1,2}):(\d{2})-(\d{1,2}):(\d{2})$`)

// TimeRange is a start/end pair in seconds since midnight. End is always
// strictly after start, ranges that wrap midnight get their end pushed
// out by a day.
type TimeRange struct {
	Start int
	End   int
}

// ParseTimeRange accepts "H:MM-H:MM" or "HH:MM-HH:MM" in 24 hour time
func ParseTimeRange(s string) (TimeRange, error) {
	m := timeRangePattern.FindStringSubmatch(s)
	if m == nil {
		return TimeRange{}, fmt.Errorf("%w: %q", ErrUnparseableRange, s)
	}
	startHour, _ := strconv.Atoi(m[1])
	startMinute, _ := strconv.Atoi(m[2])
	endHour, _ := strconv.Atoi(m[3])
	endMinute, _ := strconv.Atoi(m[4])
	if startHour > 23 || endHour > 23 || startMinute > 59 || endMinute > 59 {
		return TimeRange{}, fmt.Errorf("%w: %q", ErrUnparseableRange, s)
	}

	r := TimeRange{
		Start: (startHour*60 + startMinute) * 60,
		End:   (endHour*60 + endMinute) * 60,
	}
	// overnight ranges like 22:00-01:00 end the next day
	if r.End <= r.Start {
		r.End += secondsPerDay
	}
	return r, nil
}

// OverlapsWithBuffer widens this range by bufferMinutes on both ends and
// tests half open interval intersection. A zero buffer is a plain
// "do these literally overlap" check.
func (r TimeRange) OverlapsWithBuffer(other TimeRange, bufferMinutes int) bool {
	buffer := bufferMinutes * 60
	return (r.Start-buffer) < other.End && (r.End+buffer) > other.Start
}

// RangesOverlap parses both raw time strings and applies the buffered
// overlap test. An unparseable side yields false: an existing record with
// broken schedule data should not block new entries. The tradeoff is that
// broken data can mask a real conflict, which is why callers log it.
func RangesOverlap(a, b string, bufferMinutes int) bool {
	rangeA, err := ParseTimeRange(a)
	if err != nil {
		return false
	}
	rangeB, err := ParseTimeRange(b)
	if err != nil {
		return false
	}
	return rangeA.OverlapsWithBuffer(rangeB, bufferMinutes)
}
