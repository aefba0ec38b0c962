package db

import (
	"context"
)

const getGrade = `
SELECT grade
FROM grades
WHERE student_id = $1 AND course_id = $2
`

type GradeKeyParams struct {
	StudentID int64 `json:"student_id"`
	CourseID  int64 `json:"course_id"`
}

func (q *Queries) GetGrade(ctx context.Context, arg GradeKeyParams) (string, error) {
	row := q.db.QueryRow(ctx, getGrade, arg.StudentID, arg.CourseID)
	var grade string
	err := row.Scan(&grade)
	return grade, err
}

const upsertGrade = `
INSERT INTO grades (student_id, course_id, grade, graded_at)
VALUES ($1, $2, $3, now())
ON CONFLICT (student_id, course_id)
DO UPDATE SET grade = $3, graded_at = now()
`

type UpsertGradeParams struct {
	StudentID int64  `json:"student_id"`
	CourseID  int64  `json:"course_id"`
	Grade     string `json:"grade"`
}

func (q *Queries) UpsertGrade(ctx context.Context, arg UpsertGradeParams) error {
	_, err := q.db.Exec(ctx, upsertGrade, arg.StudentID, arg.CourseID, arg.Grade)
	return err
}
