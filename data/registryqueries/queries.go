// Package registryqueries narrows the db package to exactly the reads and
// writes the registration core is allowed to make. The scheduling and
// enrollment engines only ever see these methods, which keeps what they
// can touch easy to verify.
package registryqueries

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tahsinm/registrar/data/db"
	"github.com/tahsinm/registrar/registry/schedule"
)

type Queries struct {
	pool *pgxpool.Pool
	q    *db.Queries
}

func New(pool *pgxpool.Pool) *Queries {
	return &Queries{
		pool: pool,
		q:    db.New(pool),
	}
}

func (r *Queries) WithTx(tx pgx.Tx) *Queries {
	return &Queries{
		pool: r.pool,
		q:    r.q.WithTx(tx),
	}
}

// ScheduledSections implements schedule.SectionReader over the three
// conflict scopes
func (r *Queries) ScheduledSections(
	ctx context.Context,
	scope schedule.Scope,
	scopeID int64,
	semester string,
	year int32,
	excludeSectionID int64,
) ([]schedule.ScheduledSection, error) {
	var rows []db.ScheduledSectionRow
	var err error
	switch scope {
	case schedule.ScopeFaculty:
		rows, err = r.q.GetScheduledSectionsForFaculty(ctx, db.ScheduledSectionsForFacultyParams{
			FacultyID:        scopeID,
			Semester:         semester,
			Year:             year,
			ExcludeSectionID: excludeSectionID,
		})
	case schedule.ScopeRoom:
		rows, err = r.q.GetScheduledSectionsForRoom(ctx, db.ScheduledSectionsForRoomParams{
			RoomID:           scopeID,
			Semester:         semester,
			Year:             year,
			ExcludeSectionID: excludeSectionID,
		})
	case schedule.ScopeStudent:
		rows, err = r.q.GetScheduledSectionsForStudent(ctx, db.ScheduledSectionsForStudentParams{
			StudentID:        scopeID,
			Semester:         semester,
			Year:             year,
			ExcludeSectionID: excludeSectionID,
		})
	default:
		return nil, fmt.Errorf("unknown conflict scope %q", scope)
	}
	if err != nil {
		return nil, err
	}

	sections := make([]schedule.ScheduledSection, 0, len(rows))
	for _, row := range rows {
		sections = append(sections, schedule.ScheduledSection{
			SectionID:     row.SectionID,
			CourseCode:    row.CourseCode,
			CourseTitle:   row.CourseTitle,
			SectionNumber: row.SectionNumber,
			Days:          row.ScheduleDays,
			Time:          row.ScheduleTime,
			FacultyName:   row.FacultyName.String,
			RoomNumber:    row.RoomNumber.String,
		})
	}
	return sections, nil
}

func (r *Queries) Section(ctx context.Context, sectionID int64) (db.Section, bool, error) {
	section, err := r.q.GetSection(ctx, sectionID)
	if errors.Is(err, pgx.ErrNoRows) {
		return db.Section{}, false, nil
	}
	return section, err == nil, err
}

func (r *Queries) PairedLab(ctx context.Context, theorySectionID int64) (db.Section, bool, error) {
	lab, err := r.q.GetPairedLabSection(ctx, theorySectionID)
	if errors.Is(err, pgx.ErrNoRows) {
		return db.Section{}, false, nil
	}
	return lab, err == nil, err
}

func (r *Queries) Course(ctx context.Context, courseID int64) (db.Course, bool, error) {
	course, err := r.q.GetCourse(ctx, courseID)
	if errors.Is(err, pgx.ErrNoRows) {
		return db.Course{}, false, nil
	}
	return course, err == nil, err
}

func (r *Queries) Room(ctx context.Context, roomID int64) (db.Room, bool, error) {
	room, err := r.q.GetRoom(ctx, roomID)
	if errors.Is(err, pgx.ErrNoRows) {
		return db.Room{}, false, nil
	}
	return room, err == nil, err
}

func (r *Queries) Term(ctx context.Context, semester string, year int32) (db.Term, bool, error) {
	term, err := r.q.GetTerm(ctx, db.TermKeyParams{Semester: semester, Year: year})
	if errors.Is(err, pgx.ErrNoRows) {
		return db.Term{}, false, nil
	}
	return term, err == nil, err
}

func (r *Queries) Registration(
	ctx context.Context,
	studentID, sectionID int64,
) (db.Registration, bool, error) {
	registration, err := r.q.GetRegistration(ctx, db.RegistrationKeyParams{
		StudentID: studentID,
		SectionID: sectionID,
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return db.Registration{}, false, nil
	}
	return registration, err == nil, err
}

func (r *Queries) Grade(ctx context.Context, studentID, courseID int64) (string, bool, error) {
	grade, err := r.q.GetGrade(ctx, db.GradeKeyParams{StudentID: studentID, CourseID: courseID})
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	return grade, err == nil, err
}

func (r *Queries) Prerequisites(ctx context.Context, courseID int64) ([]db.PrerequisiteRow, error) {
	return r.q.GetPrerequisiteCourses(ctx, courseID)
}

func (r *Queries) RegisteredSections(
	ctx context.Context,
	studentID int64,
	semester string,
	year int32,
) ([]db.RegisteredSectionRow, error) {
	return r.q.GetRegisteredSections(ctx, db.RegisteredSectionsParams{
		StudentID: studentID,
		Semester:  semester,
		Year:      year,
	})
}

// RegisterIfSeatAvailable makes the capacity check and the registration
// write one atomic step. The section row lock serializes concurrent
// registrations for the same section so two students cannot both take the
// last seat.
func (r *Queries) RegisterIfSeatAvailable(
	ctx context.Context,
	studentID, sectionID int64,
) (bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	q := r.q.WithTx(tx)
	capacity, err := q.LockSectionCapacity(ctx, sectionID)
	if err != nil {
		return false, err
	}
	taken, err := q.CountActiveRegistrations(ctx, sectionID)
	if err != nil {
		return false, err
	}
	if taken >= int64(capacity) {
		return false, nil
	}
	if err := q.UpsertRegistration(ctx, db.RegistrationKeyParams{
		StudentID: studentID,
		SectionID: sectionID,
	}); err != nil {
		return false, err
	}
	return true, tx.Commit(ctx)
}

func (r *Queries) SetRegistrationStatus(
	ctx context.Context,
	studentID, sectionID int64,
	status db.RegistrationStatus,
) (int64, error) {
	return r.q.SetRegistrationStatus(ctx, db.SetRegistrationStatusParams{
		StudentID: studentID,
		SectionID: sectionID,
		Status:    status,
	})
}

func (r *Queries) SectionNumbers(
	ctx context.Context,
	courseID int64,
	sectionType db.SectionType,
	semester string,
	year int32,
) (map[string]struct{}, error) {
	return r.q.GetExistingSectionNumbers(ctx, db.ExistingSectionNumbersParams{
		CourseID:    courseID,
		SectionType: sectionType,
		Semester:    semester,
		Year:        year,
	})
}

func (r *Queries) CreateSection(ctx context.Context, arg db.CreateSectionParams) (int64, error) {
	return r.q.CreateSection(ctx, arg)
}

func (r *Queries) DeleteSectionIfEmpty(ctx context.Context, sectionID int64) (int64, error) {
	return r.q.DeleteSectionIfEmpty(ctx, sectionID)
}

func (r *Queries) SeatsTaken(ctx context.Context, sectionID int64) (int64, error) {
	return r.q.CountActiveRegistrations(ctx, sectionID)
}
