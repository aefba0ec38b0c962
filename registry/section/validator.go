package section

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/tahsinm/registrar/data/db"
	"github.com/tahsinm/registrar/registry/schedule"
)

// Store is the only data access section validation needs
type Store interface {
	Course(ctx context.Context, courseID int64) (db.Course, bool, error)
	Room(ctx context.Context, roomID int64) (db.Room, bool, error)
	Section(ctx context.Context, sectionID int64) (db.Section, bool, error)
}

// NewSection is a proposed section, already reduced to scalars by the
// handler layer
type NewSection struct {
	CourseID        int64
	FacultyID       int64
	RoomID          int64
	Semester        string
	Year            int32
	SectionType     db.SectionType
	ParentSectionID int64
	ScheduleDays    string
	ScheduleTime    string
	Capacity        int32
}

// ValidationResult accumulates every applicable problem so the admin sees
// them all at once instead of fixing one per submit
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

func (r *ValidationResult) addError(format string, args ...any) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

type Validator struct {
	store   Store
	checker *schedule.Checker
}

func NewValidator(store Store, checker *schedule.Checker) *Validator {
	return &Validator{
		store:   store,
		checker: checker,
	}
}

// Validate runs every section creation check without short circuiting.
// Missing rows (course, room, parent) are validation errors, not failures.
func (v *Validator) Validate(
	ctx context.Context,
	logger *log.Entry,
	in NewSection,
) (ValidationResult, error) {
	result := ValidationResult{Valid: true}

	course, courseFound, err := v.store.Course(ctx, in.CourseID)
	if err != nil {
		return result, err
	}
	if !courseFound {
		result.addError("Course not found")
	}

	if courseFound {
		switch in.SectionType {
		case db.SectionTypeLab:
			if !course.HasLab {
				result.addError("Course %s has no lab component", course.Code)
			}
		case db.SectionTypeTheory:
			if course.TheoryCredits <= 0 {
				result.addError("Course %s has no theory credits", course.Code)
			}
		default:
			result.addError("Unknown section type %q", in.SectionType)
		}
	}

	if in.SectionType == db.SectionTypeLab {
		v.validateParent(ctx, in, &result)
	}

	timeOK := true
	if _, err := schedule.ParseTimeRange(in.ScheduleTime); err != nil {
		if !errors.Is(err, schedule.ErrUnparseableRange) {
			return result, err
		}
		result.addError("Schedule time %q is not a valid HH:MM-HH:MM range", in.ScheduleTime)
		timeOK = false
	}

	room, roomFound, err := v.store.Room(ctx, in.RoomID)
	if err != nil {
		return result, err
	}
	if !roomFound {
		result.addError("Room not found")
	} else {
		v.validateRoom(in, room, &result)
	}

	// the two conflict scans are independent reads
	if timeOK {
		var roomConflict, facultyConflict *schedule.Conflict
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			roomConflict, err = v.checker.RoomConflict(
				gctx, in.RoomID, in.Semester, in.Year, in.ScheduleDays, in.ScheduleTime, 0)
			return err
		})
		g.Go(func() error {
			var err error
			facultyConflict, err = v.checker.FacultyConflict(
				gctx, in.FacultyID, in.Semester, in.Year, in.ScheduleDays, in.ScheduleTime, 0)
			return err
		})
		if err := g.Wait(); err != nil {
			return result, err
		}
		if roomConflict != nil {
			result.addError("Room %s", roomConflict.Description())
		}
		if facultyConflict != nil {
			result.addError("Faculty member %s", facultyConflict.Description())
		}
	}

	if !result.Valid {
		logger.WithField("errors", result.Errors).Info("section rejected")
	}
	return result, nil
}

func (v *Validator) validateParent(ctx context.Context, in NewSection, result *ValidationResult) {
	if in.ParentSectionID == 0 {
		result.addError("Lab sections require a parent theory section")
		return
	}
	parent, found, err := v.store.Section(ctx, in.ParentSectionID)
	if err != nil || !found {
		// a real db failure will resurface on the next query anyway
		result.addError("Parent theory section not found")
		return
	}
	if parent.SectionType != db.SectionTypeTheory {
		result.addError("Parent section %s is not a theory section", parent.SectionNumber)
	}
	if parent.CourseID != in.CourseID || parent.Semester != in.Semester || parent.Year != in.Year {
		result.addError("Parent theory section must be for the same course and term")
	}
}

func (v *Validator) validateRoom(in NewSection, room db.Room, result *ValidationResult) {
	switch in.SectionType {
	case db.SectionTypeTheory:
		if room.RoomType != db.RoomTypeClassroom && room.RoomType != db.RoomTypeBoth {
			result.addError("Room %s is not a classroom", room.RoomNumber)
		}
	case db.SectionTypeLab:
		if room.RoomType != db.RoomTypeLab && room.RoomType != db.RoomTypeBoth {
			result.addError("Room %s is not a lab room", room.RoomNumber)
		}
	}
	if in.Capacity <= 0 {
		result.addError("Section capacity must be positive")
	} else if in.Capacity > room.Capacity {
		result.addError("Section capacity %d exceeds room capacity %d", in.Capacity, room.Capacity)
	}
}
