package schedule

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// DefaultBufferMinutes is the minimum gap required between back to back
// meetings for section creation and registration checks
const DefaultBufferMinutes = 10

type Scope string

const (
	ScopeFaculty Scope = "faculty"
	ScopeRoom    Scope = "room"
	ScopeStudent Scope = "student"
)

// ScheduledSection is an existing meeting a candidate is compared against
type ScheduledSection struct {
	SectionID     int64  `json:"section_id"`
	CourseCode    string `json:"course_code"`
	CourseTitle   string `json:"course_title"`
	SectionNumber string `json:"section_number"`
	Days          string `json:"days"`
	Time          string `json:"time"`
	FacultyName   string `json:"faculty_name"`
	RoomNumber    string `json:"room_number"`
}

// SectionReader is the only data access the conflict checker needs
type SectionReader interface {
	ScheduledSections(
		ctx context.Context,
		scope Scope,
		scopeID int64,
		semester string,
		year int32,
		excludeSectionID int64,
	) ([]ScheduledSection, error)
}

// Conflict names the meeting a candidate collided with
type Conflict struct {
	Section ScheduledSection `json:"section"`
	Scope   Scope            `json:"scope"`
}

func (c *Conflict) Description() string {
	return fmt.Sprintf("conflicts with %s section %s (%s %s)",
		c.Section.CourseCode, c.Section.SectionNumber, c.Section.Days, c.Section.Time)
}

// MeetingsConflict is the one rule every conflict scope is built from:
// the day sets intersect and the time ranges overlap within the buffer
func MeetingsConflict(daysA, timeA, daysB, timeB string, bufferMinutes int) bool {
	if !ParseDays(daysA).Overlaps(ParseDays(daysB)) {
		return false
	}
	return RangesOverlap(timeA, timeB, bufferMinutes)
}

type Checker struct {
	reader        SectionReader
	bufferMinutes int
	logger        *slog.Logger
}

func NewChecker(reader SectionReader, bufferMinutes int, logger *slog.Logger) *Checker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Checker{
		reader:        reader,
		bufferMinutes: bufferMinutes,
		logger:        logger,
	}
}

// FindConflict tests a candidate (days, time) against every scheduled
// meeting in the scope, returning the first collision or nil. The
// candidate's own time must parse, an unparseable candidate is an error
// rather than a free pass. Existing rows that fail to parse are skipped
// with a warning so broken data does not block new entries but is not
// silent either.
func (c *Checker) FindConflict(
	ctx context.Context,
	scope Scope,
	scopeID int64,
	semester string,
	year int32,
	days string,
	timeRange string,
	excludeSectionID int64,
) (*Conflict, error) {
	candidateRange, err := ParseTimeRange(timeRange)
	if err != nil {
		return nil, err
	}
	candidateDays := ParseDays(days)

	existing, err := c.reader.ScheduledSections(ctx, scope, scopeID, semester, year, excludeSectionID)
	if err != nil {
		return nil, err
	}
	for _, section := range existing {
		if !candidateDays.Overlaps(ParseDays(section.Days)) {
			continue
		}
		sectionRange, err := ParseTimeRange(section.Time)
		if err != nil {
			if errors.Is(err, ErrUnparseableRange) {
				c.logger.Warn("skipping section with unparseable schedule time",
					"section_id", section.SectionID, "time", section.Time)
				continue
			}
			return nil, err
		}
		if candidateRange.OverlapsWithBuffer(sectionRange, c.bufferMinutes) {
			return &Conflict{Section: section, Scope: scope}, nil
		}
	}
	return nil, nil
}

func (c *Checker) FacultyConflict(
	ctx context.Context,
	facultyID int64,
	semester string,
	year int32,
	days, timeRange string,
	excludeSectionID int64,
) (*Conflict, error) {
	return c.FindConflict(ctx, ScopeFaculty, facultyID, semester, year, days, timeRange, excludeSectionID)
}

func (c *Checker) RoomConflict(
	ctx context.Context,
	roomID int64,
	semester string,
	year int32,
	days, timeRange string,
	excludeSectionID int64,
) (*Conflict, error) {
	return c.FindConflict(ctx, ScopeRoom, roomID, semester, year, days, timeRange, excludeSectionID)
}

func (c *Checker) StudentConflict(
	ctx context.Context,
	studentID int64,
	semester string,
	year int32,
	days, timeRange string,
	excludeSectionID int64,
) (*Conflict, error) {
	return c.FindConflict(ctx, ScopeStudent, studentID, semester, year, days, timeRange, excludeSectionID)
}
