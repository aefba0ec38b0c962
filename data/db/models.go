package db

import "github.com/jackc/pgx/v5/pgtype"

type SectionType string

const (
	SectionTypeTheory SectionType = "theory"
	SectionTypeLab    SectionType = "lab"
)

type RoomType string

const (
	RoomTypeClassroom RoomType = "classroom"
	RoomTypeLab       RoomType = "lab"
	RoomTypeBoth      RoomType = "both"
)

type RegistrationStatus string

const (
	RegistrationStatusRegistered RegistrationStatus = "registered"
	RegistrationStatusDropped    RegistrationStatus = "dropped"
)

type Course struct {
	ID            int64       `json:"id"`
	Code          string      `json:"code"`
	Title         string      `json:"title"`
	TheoryCredits float64     `json:"theory_credits"`
	LabCredits    float64     `json:"lab_credits"`
	TotalCredits  float64     `json:"total_credits"`
	HasLab        bool        `json:"has_lab"`
	DepartmentID  pgtype.Int8 `json:"department_id"`
}

type Section struct {
	ID              int64       `json:"id"`
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

type Registration struct {
	StudentID        int64              `json:"student_id"`
	SectionID        int64              `json:"section_id"`
	Status           RegistrationStatus `json:"status"`
	RegistrationDate pgtype.Timestamp   `json:"registration_date"`
}

type Room struct {
	ID         int64    `json:"id"`
	RoomNumber string   `json:"room_number"`
	RoomType   RoomType `json:"room_type"`
	Capacity   int32    `json:"capacity"`
}

type Term struct {
	Semester         string           `json:"semester"`
	Year             int32            `json:"year"`
	RegistrationOpen bool             `json:"registration_open"`
	StartDate        pgtype.Timestamp `json:"start_date"`
	EndDate          pgtype.Timestamp `json:"end_date"`
}

type User struct {
	ID                int64       `json:"id"`
	Username          string      `json:"username"`
	EncryptedPassword string      `json:"-"`
	Role              string      `json:"role"`
	StudentID         pgtype.Int8 `json:"student_id"`
	FacultyID         pgtype.Int8 `json:"faculty_id"`
}
