package db

import (
	"context"
)

const getRoom = `
SELECT id, room_number, room_type, capacity
FROM rooms
WHERE id = $1
`

func (q *Queries) GetRoom(ctx context.Context, id int64) (Room, error) {
	row := q.db.QueryRow(ctx, getRoom, id)
	var i Room
	err := row.Scan(&i.ID, &i.RoomNumber, &i.RoomType, &i.Capacity)
	return i, err
}

const getTerm = `
SELECT semester, year, registration_open, start_date, end_date
FROM terms
WHERE semester = $1 AND year = $2
`

type TermKeyParams struct {
	Semester string `json:"semester"`
	Year     int32  `json:"year"`
}

func (q *Queries) GetTerm(ctx context.Context, arg TermKeyParams) (Term, error) {
	row := q.db.QueryRow(ctx, getTerm, arg.Semester, arg.Year)
	var i Term
	err := row.Scan(&i.Semester, &i.Year, &i.RegistrationOpen, &i.StartDate, &i.EndDate)
	return i, err
}
