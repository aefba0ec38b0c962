package db

import (
	"context"
)

const authGetUser = `
SELECT id, username, encrypted_password, role, student_id, faculty_id
FROM users
WHERE username = $1
`

func (q *Queries) AuthGetUser(ctx context.Context, username string) (User, error) {
	row := q.db.QueryRow(ctx, authGetUser, username)
	var i User
	err := row.Scan(
		&i.ID,
		&i.Username,
		&i.EncryptedPassword,
		&i.Role,
		&i.StudentID,
		&i.FacultyID,
	)
	return i, err
}

const authInsertUser = `
INSERT INTO users (username, encrypted_password, role)
VALUES ($1, $2, $3)
`

type AuthInsertUserParams struct {
	Username          string `json:"username"`
	EncryptedPassword string `json:"encrypted_password"`
	Role              string `json:"role"`
}

func (q *Queries) AuthInsertUser(ctx context.Context, arg AuthInsertUserParams) error {
	_, err := q.db.Exec(ctx, authInsertUser, arg.Username, arg.EncryptedPassword, arg.Role)
	return err
}
