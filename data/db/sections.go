package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const getSection = `
SELECT id, course_id, section_number, faculty_id, semester, year, section_type,
       parent_section_id, schedule_days, schedule_time, room_id, capacity
FROM sections
WHERE id = $1
`

func (q *Queries) GetSection(ctx context.Context, id int64) (Section, error) {
	row := q.db.QueryRow(ctx, getSection, id)
	var i Section
	err := row.Scan(
		&i.ID,
		&i.CourseID,
		&i.SectionNumber,
		&i.FacultyID,
		&i.Semester,
		&i.Year,
		&i.SectionType,
		&i.ParentSectionID,
		&i.ScheduleDays,
		&i.ScheduleTime,
		&i.RoomID,
		&i.Capacity,
	)
	return i, err
}

const getPairedLabSection = `
SELECT id, course_id, section_number, faculty_id, semester, year, section_type,
       parent_section_id, schedule_days, schedule_time, room_id, capacity
FROM sections
WHERE parent_section_id = $1 AND section_type = 'lab'
`

// the partial unique index on parent_section_id keeps this a single row
func (q *Queries) GetPairedLabSection(ctx context.Context, theorySectionID int64) (Section, error) {
	row := q.db.QueryRow(ctx, getPairedLabSection, theorySectionID)
	var i Section
	err := row.Scan(
		&i.ID,
		&i.CourseID,
		&i.SectionNumber,
		&i.FacultyID,
		&i.Semester,
		&i.Year,
		&i.SectionType,
		&i.ParentSectionID,
		&i.ScheduleDays,
		&i.ScheduleTime,
		&i.RoomID,
		&i.Capacity,
	)
	return i, err
}

// ScheduledSectionRow is the shape every conflict scope compares against
type ScheduledSectionRow struct {
	SectionID     int64       `json:"section_id"`
	CourseCode    string      `json:"course_code"`
	CourseTitle   string      `json:"course_title"`
	SectionNumber string      `json:"section_number"`
	ScheduleDays  string      `json:"schedule_days"`
	ScheduleTime  string      `json:"schedule_time"`
	FacultyName   pgtype.Text `json:"faculty_name"`
	RoomNumber    pgtype.Text `json:"room_number"`
}

func scanScheduledSectionRows(rows pgx.Rows) ([]ScheduledSectionRow, error) {
	defer rows.Close()
	var items []ScheduledSectionRow
	for rows.Next() {
		var i ScheduledSectionRow
		if err := rows.Scan(
			&i.SectionID,
			&i.CourseCode,
			&i.CourseTitle,
			&i.SectionNumber,
			&i.ScheduleDays,
			&i.ScheduleTime,
			&i.FacultyName,
			&i.RoomNumber,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const getScheduledSectionsForFaculty = `
SELECT s.id, c.code, c.title, s.section_number, s.schedule_days, s.schedule_time,
       f.name, r.room_number
FROM sections s
JOIN courses c ON c.id = s.course_id
LEFT JOIN faculty f ON f.id = s.faculty_id
LEFT JOIN rooms r ON r.id = s.room_id
WHERE s.faculty_id = $1 AND s.semester = $2 AND s.year = $3 AND s.id != $4
`

type ScheduledSectionsForFacultyParams struct {
	FacultyID        int64  `json:"faculty_id"`
	Semester         string `json:"semester"`
	Year             int32  `json:"year"`
	ExcludeSectionID int64  `json:"exclude_section_id"`
}

func (q *Queries) GetScheduledSectionsForFaculty(
	ctx context.Context,
	arg ScheduledSectionsForFacultyParams,
) ([]ScheduledSectionRow, error) {
	rows, err := q.db.Query(ctx, getScheduledSectionsForFaculty,
		arg.FacultyID,
		arg.Semester,
		arg.Year,
		arg.ExcludeSectionID,
	)
	if err != nil {
		return nil, err
	}
	return scanScheduledSectionRows(rows)
}

const getScheduledSectionsForRoom = `
SELECT s.id, c.code, c.title, s.section_number, s.schedule_days, s.schedule_time,
       f.name, r.room_number
FROM sections s
JOIN courses c ON c.id = s.course_id
LEFT JOIN faculty f ON f.id = s.faculty_id
LEFT JOIN rooms r ON r.id = s.room_id
WHERE s.room_id = $1 AND s.semester = $2 AND s.year = $3 AND s.id != $4
`

type ScheduledSectionsForRoomParams struct {
	RoomID           int64  `json:"room_id"`
	Semester         string `json:"semester"`
	Year             int32  `json:"year"`
	ExcludeSectionID int64  `json:"exclude_section_id"`
}

func (q *Queries) GetScheduledSectionsForRoom(
	ctx context.Context,
	arg ScheduledSectionsForRoomParams,
) ([]ScheduledSectionRow, error) {
	rows, err := q.db.Query(ctx, getScheduledSectionsForRoom,
		arg.RoomID,
		arg.Semester,
		arg.Year,
		arg.ExcludeSectionID,
	)
	if err != nil {
		return nil, err
	}
	return scanScheduledSectionRows(rows)
}

const getScheduledSectionsForStudent = `
SELECT s.id, c.code, c.title, s.section_number, s.schedule_days, s.schedule_time,
       f.name, r.room_number
FROM registrations reg
JOIN sections s ON s.id = reg.section_id
JOIN courses c ON c.id = s.course_id
LEFT JOIN faculty f ON f.id = s.faculty_id
LEFT JOIN rooms r ON r.id = s.room_id
WHERE reg.student_id = $1 AND reg.status = 'registered'
  AND s.semester = $2 AND s.year = $3 AND s.id != $4
`

type ScheduledSectionsForStudentParams struct {
	StudentID        int64  `json:"student_id"`
	Semester         string `json:"semester"`
	Year             int32  `json:"year"`
	ExcludeSectionID int64  `json:"exclude_section_id"`
}

func (q *Queries) GetScheduledSectionsForStudent(
	ctx context.Context,
	arg ScheduledSectionsForStudentParams,
) ([]ScheduledSectionRow, error) {
	rows, err := q.db.Query(ctx, getScheduledSectionsForStudent,
		arg.StudentID,
		arg.Semester,
		arg.Year,
		arg.ExcludeSectionID,
	)
	if err != nil {
		return nil, err
	}
	return scanScheduledSectionRows(rows)
}

const getExistingSectionNumbers = `
SELECT section_number
FROM sections
WHERE course_id = $1 AND section_type = $2 AND semester = $3 AND year = $4
`

type ExistingSectionNumbersParams struct {
	CourseID    int64       `json:"course_id"`
	SectionType SectionType `json:"section_type"`
	Semester    string      `json:"semester"`
	Year        int32       `json:"year"`
}

func (q *Queries) GetExistingSectionNumbers(
	ctx context.Context,
	arg ExistingSectionNumbersParams,
) (map[string]struct{}, error) {
	rows, err := q.db.Query(ctx, getExistingSectionNumbers,
		arg.CourseID,
		arg.SectionType,
		arg.Semester,
		arg.Year,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	numbers := map[string]struct{}{}
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		numbers[n] = struct{}{}
	}
	return numbers, rows.Err()
}

const createSection = `
INSERT INTO sections (course_id, section_number, faculty_id, semester, year,
                      section_type, parent_section_id, schedule_days,
                      schedule_time, room_id, capacity)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
RETURNING id
`

type CreateSectionParams struct {
	CourseID        int64       `json:"course_id"`
	SectionNumber   string      `json:"section_number"`
	FacultyID       pgtype.Int8 `json:"faculty_id"`
	Semester        string      `json:"semester"`
	Year            int32       `json:"year"`
	SectionType     SectionType `json:"section_type"`
	ParentSectionID pgtype.Int8 `json:"parent_section_id"`
	ScheduleDays    string      `json:"schedule_days"`
	ScheduleTime    string      `json:"schedule_time"`
	RoomID          pgtype.Int8 `json:"room_id"`
	Capacity        int32       `json:"capacity"`
}

func (q *Queries) CreateSection(ctx context.Context, arg CreateSectionParams) (int64, error) {
	row := q.db.QueryRow(ctx, createSection,
		arg.CourseID,
		arg.SectionNumber,
		arg.FacultyID,
		arg.Semester,
		arg.Year,
		arg.SectionType,
		arg.ParentSectionID,
		arg.ScheduleDays,
		arg.ScheduleTime,
		arg.RoomID,
		arg.Capacity,
	)
	var id int64
	err := row.Scan(&id)
	return id, err
}

const deleteSectionIfEmpty = `
DELETE FROM sections s
WHERE s.id = $1
  AND NOT EXISTS (
    SELECT 1 FROM registrations r
    WHERE r.section_id = s.id AND r.status = 'registered'
  )
`

// returns the number of deleted rows so callers can tell a guarded
// no-op from an actual delete
func (q *Queries) DeleteSectionIfEmpty(ctx context.Context, id int64) (int64, error) {
	tag, err := q.db.Exec(ctx, deleteSectionIfEmpty, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const countActiveRegistrations = `
SELECT count(*)
FROM registrations
WHERE section_id = $1 AND status = 'registered'
`

func (q *Queries) CountActiveRegistrations(ctx context.Context, sectionID int64) (int64, error) {
	row := q.db.QueryRow(ctx, countActiveRegistrations, sectionID)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const getSectionsForCourse = `
SELECT s.id, c.code, c.title, s.section_number, s.schedule_days, s.schedule_time,
       f.name, r.room_number
FROM sections s
JOIN courses c ON c.id = s.course_id
LEFT JOIN faculty f ON f.id = s.faculty_id
LEFT JOIN rooms r ON r.id = s.room_id
WHERE s.course_id = $1 AND s.semester = $2 AND s.year = $3
ORDER BY s.section_type, s.section_number
OFFSET $4 LIMIT $5
`

type SectionsForCourseParams struct {
	CourseID    int64  `json:"course_id"`
	Semester    string `json:"semester"`
	Year        int32  `json:"year"`
	Offsetvalue int32  `json:"offsetvalue"`
	Limitvalue  int32  `json:"limitvalue"`
}

func (q *Queries) GetSectionsForCourse(
	ctx context.Context,
	arg SectionsForCourseParams,
) ([]ScheduledSectionRow, error) {
	rows, err := q.db.Query(ctx, getSectionsForCourse,
		arg.CourseID,
		arg.Semester,
		arg.Year,
		arg.Offsetvalue,
		arg.Limitvalue,
	)
	if err != nil {
		return nil, err
	}
	return scanScheduledSectionRows(rows)
}
