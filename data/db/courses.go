package db

import (
	"context"
)

const getCourse = `
SELECT id, code, title, theory_credits, lab_credits, total_credits, has_lab, department_id
FROM courses
WHERE id = $1
`

func (q *Queries) GetCourse(ctx context.Context, id int64) (Course, error) {
	row := q.db.QueryRow(ctx, getCourse, id)
	var i Course
	err := row.Scan(
		&i.ID,
		&i.Code,
		&i.Title,
		&i.TheoryCredits,
		&i.LabCredits,
		&i.TotalCredits,
		&i.HasLab,
		&i.DepartmentID,
	)
	return i, err
}

const listCourses = `
SELECT id, code, title, theory_credits, lab_credits, total_credits, has_lab, department_id
FROM courses
ORDER BY code
OFFSET $1 LIMIT $2
`

type ListCoursesParams struct {
	Offsetvalue int32 `json:"offsetvalue"`
	Limitvalue  int32 `json:"limitvalue"`
}

func (q *Queries) ListCourses(ctx context.Context, arg ListCoursesParams) ([]Course, error) {
	rows, err := q.db.Query(ctx, listCourses, arg.Offsetvalue, arg.Limitvalue)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Course
	for rows.Next() {
		var i Course
		if err := rows.Scan(
			&i.ID,
			&i.Code,
			&i.Title,
			&i.TheoryCredits,
			&i.LabCredits,
			&i.TotalCredits,
			&i.HasLab,
			&i.DepartmentID,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const getPrerequisiteCourses = `
SELECT p.prerequisite_course_id, c.code
FROM prerequisites p
JOIN courses c ON c.id = p.prerequisite_course_id
WHERE p.course_id = $1
`

type PrerequisiteRow struct {
	CourseID int64  `json:"course_id"`
	Code     string `json:"code"`
}

func (q *Queries) GetPrerequisiteCourses(ctx context.Context, courseID int64) ([]PrerequisiteRow, error) {
	rows, err := q.db.Query(ctx, getPrerequisiteCourses, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []PrerequisiteRow
	for rows.Next() {
		var i PrerequisiteRow
		if err := rows.Scan(&i.CourseID, &i.Code); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}
