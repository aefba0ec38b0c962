package db

import (
	"context"
)

const getRegistration = `
SELECT student_id, section_id, status, registration_date
FROM registrations
WHERE student_id = $1 AND section_id = $2
`

type RegistrationKeyParams struct {
	StudentID int64 `json:"student_id"`
	SectionID int64 `json:"section_id"`
}

func (q *Queries) GetRegistration(ctx context.Context, arg RegistrationKeyParams) (Registration, error) {
	row := q.db.QueryRow(ctx, getRegistration, arg.StudentID, arg.SectionID)
	var i Registration
	err := row.Scan(&i.StudentID, &i.SectionID, &i.Status, &i.RegistrationDate)
	return i, err
}

const upsertRegistration = `
INSERT INTO registrations (student_id, section_id, status, registration_date)
VALUES ($1, $2, 'registered', now())
ON CONFLICT (student_id, section_id)
DO UPDATE SET status = 'registered', registration_date = now()
`

// only ever called inside a transaction holding the section row lock,
// see registryqueries.RegisterIfSeatAvailable
func (q *Queries) UpsertRegistration(ctx context.Context, arg RegistrationKeyParams) error {
	_, err := q.db.Exec(ctx, upsertRegistration, arg.StudentID, arg.SectionID)
	return err
}

const setRegistrationStatus = `
UPDATE registrations
SET status = $3
WHERE student_id = $1 AND section_id = $2
`

type SetRegistrationStatusParams struct {
	StudentID int64              `json:"student_id"`
	SectionID int64              `json:"section_id"`
	Status    RegistrationStatus `json:"status"`
}

func (q *Queries) SetRegistrationStatus(
	ctx context.Context,
	arg SetRegistrationStatusParams,
) (int64, error) {
	tag, err := q.db.Exec(ctx, setRegistrationStatus, arg.StudentID, arg.SectionID, arg.Status)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const lockSectionCapacity = `
SELECT capacity FROM sections WHERE id = $1 FOR UPDATE
`

// takes the row lock that makes the capacity check-then-insert atomic
func (q *Queries) LockSectionCapacity(ctx context.Context, sectionID int64) (int32, error) {
	row := q.db.QueryRow(ctx, lockSectionCapacity, sectionID)
	var capacity int32
	err := row.Scan(&capacity)
	return capacity, err
}

// RegisteredSectionRow carries the credit split along with the section so
// credit totals do not need a query per course
type RegisteredSectionRow struct {
	SectionID     int64       `json:"section_id"`
	CourseID      int64       `json:"course_id"`
	CourseCode    string      `json:"course_code"`
	SectionNumber string      `json:"section_number"`
	SectionType   SectionType `json:"section_type"`
	ScheduleDays  string      `json:"schedule_days"`
	ScheduleTime  string      `json:"schedule_time"`
	TheoryCredits float64     `json:"theory_credits"`
	LabCredits    float64     `json:"lab_credits"`
}

const getRegisteredSections = `
SELECT s.id, s.course_id, c.code, s.section_number, s.section_type,
       s.schedule_days, s.schedule_time, c.theory_credits, c.lab_credits
FROM registrations reg
JOIN sections s ON s.id = reg.section_id
JOIN courses c ON c.id = s.course_id
WHERE reg.student_id = $1 AND reg.status = 'registered'
  AND s.semester = $2 AND s.year = $3
ORDER BY c.code, s.section_type
`

type RegisteredSectionsParams struct {
	StudentID int64  `json:"student_id"`
	Semester  string `json:"semester"`
	Year      int32  `json:"year"`
}

func (q *Queries) GetRegisteredSections(
	ctx context.Context,
	arg RegisteredSectionsParams,
) ([]RegisteredSectionRow, error) {
	rows, err := q.db.Query(ctx, getRegisteredSections, arg.StudentID, arg.Semester, arg.Year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []RegisteredSectionRow
	for rows.Next() {
		var i RegisteredSectionRow
		if err := rows.Scan(
			&i.SectionID,
			&i.CourseID,
			&i.CourseCode,
			&i.SectionNumber,
			&i.SectionType,
			&i.ScheduleDays,
			&i.ScheduleTime,
			&i.TheoryCredits,
			&i.LabCredits,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}
