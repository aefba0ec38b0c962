package schedule

import (
	"errors"
	"fmt"
	"testing"
)

func TestParseTimeRangeRoundTrip(t *testing.T) {
	cases := []struct {
		raw                                            string
		startHour, startMinute, endHour, endMinute int
	}{
		{"10:00-11:20", 10, 0, 11, 20},
		{"9:30-10:45", 9, 30, 10, 45},
		{"08:00-09:15", 8, 0, 9, 15},
		{"00:00-23:59", 0, 0, 23, 59},
		{"13:05-13:06", 13, 5, 13, 6},
	}
	for _, c := range cases {
		r, err := ParseTimeRange(c.raw)
		if err != nil {
			t.Errorf("ParseTimeRange(%q) unexpected error: %v", c.raw, err)
			continue
		}
		rebuilt := fmt.Sprintf("%d:%02d-%d:%02d",
			r.Start/3600, r.Start%3600/60,
			r.End/3600, r.End%3600/60,
		)
		want := fmt.Sprintf("%d:%02d-%d:%02d", c.startHour, c.startMinute, c.endHour, c.endMinute)
		if rebuilt != want {
			t.Errorf("ParseTimeRange(%q) did not round trip, rebuilt %q", c.raw, rebuilt)
		}
	}
}

func TestParseTimeRangeOvernightWrap(t *testing.T) {
	r, err := ParseTimeRange("22:00-01:00")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.End <= r.Start {
		t.Errorf("overnight range should push end past start: %+v", r)
	}
	if r.End != (1*60*60)+secondsPerDay {
		t.Errorf("overnight end should land on the next day, got %d", r.End)
	}
}

func TestParseTimeRangeFailures(t *testing.T) {
	cases := []string{
		"",
		"10:00",
		"10:00-",
		"-11:00",
		"25:00-26:00",
		"10:75-11:00",
		"ten to eleven",
		"10.00-11.00",
	}
	for _, raw := range cases {
		_, err := ParseTimeRange(raw)
		if err == nil {
			t.Errorf("ParseTimeRange(%q) should fail", raw)
			continue
		}
		if !errors.Is(err, ErrUnparseableRange) {
			t.Errorf("ParseTimeRange(%q) error should wrap ErrUnparseableRange, got %v", raw, err)
		}
	}
}

func TestRangesOverlapBuffer(t *testing.T) {
	cases := []struct {
		a, b   string
		buffer int
		want   bool
	}{
		// 5 minute gap loses to a 10 minute buffer
		{"10:00-11:20", "11:25-12:00", 10, true},
		// 15 minute gap clears it
		{"10:00-11:20", "11:35-12:00", 10, false},
		// back to back with no buffer is fine (half open intervals)
		{"10:00-11:00", "11:00-12:00", 0, false},
		{"10:00-11:00", "10:30-11:30", 0, true},
		// containment
		{"09:00-12:00", "10:00-11:00", 0, true},
		// disjoint
		{"08:00-09:00", "10:00-11:00", 10, false},
	}
	for _, c := range cases {
		if got := RangesOverlap(c.a, c.b, c.buffer); got != c.want {
			t.Errorf("RangesOverlap(%q, %q, %d) = %v want %v", c.a, c.b, c.buffer, got, c.want)
		}
		// the overlap test must be symmetric
		if got := RangesOverlap(c.b, c.a, c.buffer); got != c.want {
			t.Errorf("RangesOverlap(%q, %q, %d) = %v want %v", c.b, c.a, c.buffer, got, c.want)
		}
	}
}

func TestRangesOverlapReflexive(t *testing.T) {
	for _, raw := range []string{"10:00-11:20", "0:00-0:01", "23:00-02:00"} {
		if !RangesOverlap(raw, raw, 0) {
			t.Errorf("a range must overlap itself: %q", raw)
		}
	}
}

func TestRangesOverlapUnparseableIsConservative(t *testing.T) {
	// an unparseable side means "cannot determine conflict" and must not block
	if RangesOverlap("garbage", "10:00-11:00", 10) {
		t.Error("unparseable range should not report a conflict")
	}
	if RangesOverlap("10:00-11:00", "garbage", 10) {
		t.Error("unparseable range should not report a conflict")
	}
}
