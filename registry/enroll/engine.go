package enroll

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/tahsinm/registrar/data/db"
	"github.com/tahsinm/registrar/registry/schedule"
)

// DefaultMaxCredits is the per term credit load ceiling
const DefaultMaxCredits = 21.0

// grades that satisfy a prerequisite, F and withdrawals do not
var qualifyingGrades = map[string]struct{}{
	"A+": {}, "A": {}, "A-": {},
	"B+": {}, "B": {}, "B-": {},
	"C+": {}, "C": {}, "C-": {},
	"D+": {}, "D": {},
}

func gradeSatisfiesPrerequisite(grade string) bool {
	_, ok := qualifyingGrades[grade]
	return ok
}

// Store is the data access the registration engine needs. Implementations
// must make RegisterIfSeatAvailable atomic: the capacity check and the
// registration write happen under one section row lock so two students
// cannot both take the last seat.
type Store interface {
	Section(ctx context.Context, sectionID int64) (db.Section, bool, error)
	PairedLab(ctx context.Context, theorySectionID int64) (db.Section, bool, error)
	Course(ctx context.Context, courseID int64) (db.Course, bool, error)
	Registration(ctx context.Context, studentID, sectionID int64) (db.Registration, bool, error)
	RegisteredSections(ctx context.Context, studentID int64, semester string, year int32) ([]db.RegisteredSectionRow, error)
	Prerequisites(ctx context.Context, courseID int64) ([]db.PrerequisiteRow, error)
	Grade(ctx context.Context, studentID, courseID int64) (string, bool, error)
	Term(ctx context.Context, semester string, year int32) (db.Term, bool, error)
	RegisterIfSeatAvailable(ctx context.Context, studentID, sectionID int64) (bool, error)
	SetRegistrationStatus(ctx context.Context, studentID, sectionID int64, status db.RegistrationStatus) (int64, error)
}

// Denial is a structured refusal the handler renders verbatim, it is not
// an error: the request worked, the answer was no
type Denial struct {
	Code           string  `json:"code"`
	Message        string  `json:"message"`
	CurrentCredits float64 `json:"current_credits,omitempty"`
	MaxCredits     float64 `json:"max_credits,omitempty"`
}

// PairOutcome reports what happened to the dependent lab registration.
// A warning is non fatal to the theory registration that triggered it.
type PairOutcome struct {
	LabSectionID int64  `json:"lab_section_id,omitempty"`
	Registered   bool   `json:"registered"`
	Warning      string `json:"warning,omitempty"`
}

type DropResult struct {
	Dropped      bool  `json:"dropped"`
	LabDropped   bool  `json:"lab_dropped"`
	LabSectionID int64 `json:"lab_section_id,omitempty"`
}

type Engine struct {
	store      Store
	checker    *schedule.Checker
	maxCredits float64
}

func NewEngine(store Store, checker *schedule.Checker) *Engine {
	return &Engine{
		store:      store,
		checker:    checker,
		maxCredits: DefaultMaxCredits,
	}
}

// WithMaxCredits overrides the default credit load ceiling
func (e *Engine) WithMaxCredits(maxCredits float64) *Engine {
	e.maxCredits = maxCredits
	return e
}

// RegisterPrimary runs every registration precondition for one section and
// takes the seat if all pass. Callers register the paired lab separately
// with TryRegisterPairedLab so its partial failure stays visible.
func (e *Engine) RegisterPrimary(
	ctx context.Context,
	logger *log.Entry,
	studentID int64,
	sectionID int64,
) (*Denial, error) {
	section, found, err := e.store.Section(ctx, sectionID)
	if err != nil {
		return nil, err
	}
	if !found {
		return &Denial{Code: "section_not_found", Message: "Section not found"}, nil
	}

	term, found, err := e.store.Term(ctx, section.Semester, section.Year)
	if err != nil {
		return nil, err
	}
	if !found || !term.RegistrationOpen {
		return &Denial{Code: "registration_closed", Message: "Registration is closed for this semester"}, nil
	}

	registration, found, err := e.store.Registration(ctx, studentID, sectionID)
	if err != nil {
		return nil, err
	}
	if found && registration.Status == db.RegistrationStatusRegistered {
		return &Denial{Code: "already_registered", Message: "You are already registered for this section"}, nil
	}

	course, found, err := e.store.Course(ctx, section.CourseID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("section %d references missing course %d", section.ID, section.CourseID)
	}
	if denial := componentDenial(course, section.SectionType); denial != nil {
		return denial, nil
	}

	// labs are dependent children, they are only registered behind an
	// active theory registration
	if section.SectionType == db.SectionTypeLab {
		if denial, err := e.labParentDenial(ctx, studentID, section); denial != nil || err != nil {
			return denial, err
		}
	}

	if denial, err := e.creditLoadDenial(ctx, studentID, section, course); denial != nil || err != nil {
		return denial, err
	}

	if denial, err := e.prerequisiteDenial(ctx, studentID, course); denial != nil || err != nil {
		return denial, err
	}

	conflict, err := e.checker.StudentConflict(
		ctx, studentID, section.Semester, section.Year,
		section.ScheduleDays, section.ScheduleTime, section.ID)
	if err != nil {
		return nil, err
	}
	if conflict != nil {
		return &Denial{
			Code:    "schedule_conflict",
			Message: fmt.Sprintf("This section %s", conflict.Description()),
		}, nil
	}

	seated, err := e.store.RegisterIfSeatAvailable(ctx, studentID, sectionID)
	if err != nil {
		return nil, err
	}
	if !seated {
		return &Denial{Code: "section_full", Message: "Section is full"}, nil
	}

	logger.WithFields(log.Fields{
		"student_id": studentID,
		"section_id": sectionID,
		"course":     course.Code,
	}).Info("registered")
	return nil, nil
}

// TryRegisterPairedLab attempts the dependent lab registration after a
// successful theory registration. It never fails the primary action:
// capacity or conflict problems come back as a warning and the student
// keeps the theory seat.
func (e *Engine) TryRegisterPairedLab(
	ctx context.Context,
	logger *log.Entry,
	studentID int64,
	theorySectionID int64,
) (PairOutcome, error) {
	lab, found, err := e.store.PairedLab(ctx, theorySectionID)
	if err != nil {
		return PairOutcome{}, err
	}
	if !found {
		return PairOutcome{}, nil
	}
	outcome := PairOutcome{LabSectionID: lab.ID}

	registration, found, err := e.store.Registration(ctx, studentID, lab.ID)
	if err != nil {
		return outcome, err
	}
	if found && registration.Status == db.RegistrationStatusRegistered {
		outcome.Registered = true
		return outcome, nil
	}

	conflict, err := e.checker.StudentConflict(
		ctx, studentID, lab.Semester, lab.Year,
		lab.ScheduleDays, lab.ScheduleTime, lab.ID)
	if err != nil {
		return outcome, err
	}
	if conflict != nil {
		outcome.Warning = fmt.Sprintf(
			"Lab section %s was not added: it %s. Register for it manually after resolving the conflict.",
			lab.SectionNumber, conflict.Description())
		return outcome, nil
	}

	seated, err := e.store.RegisterIfSeatAvailable(ctx, studentID, lab.ID)
	if err != nil {
		return outcome, err
	}
	if !seated {
		outcome.Warning = fmt.Sprintf(
			"Lab section %s is full, you are registered for theory only.", lab.SectionNumber)
		return outcome, nil
	}

	outcome.Registered = true
	logger.WithFields(log.Fields{
		"student_id":     studentID,
		"lab_section_id": lab.ID,
	}).Info("paired lab registered")
	return outcome, nil
}

// Drop marks the registration dropped and, for a theory section, drops the
// paired lab registration too. The primary drop always commits first, the
// dependent drop has no blocking failure mode.
func (e *Engine) Drop(
	ctx context.Context,
	logger *log.Entry,
	studentID int64,
	sectionID int64,
) (DropResult, error) {
	affected, err := e.store.SetRegistrationStatus(
		ctx, studentID, sectionID, db.RegistrationStatusDropped)
	if err != nil {
		return DropResult{}, err
	}
	result := DropResult{Dropped: affected > 0}
	if !result.Dropped {
		return result, nil
	}

	section, found, err := e.store.Section(ctx, sectionID)
	if err != nil || !found || section.SectionType != db.SectionTypeTheory {
		return result, err
	}

	lab, found, err := e.store.PairedLab(ctx, sectionID)
	if err != nil || !found {
		return result, err
	}
	registration, found, err := e.store.Registration(ctx, studentID, lab.ID)
	if err != nil {
		return result, err
	}
	if found && registration.Status == db.RegistrationStatusRegistered {
		if _, err := e.store.SetRegistrationStatus(
			ctx, studentID, lab.ID, db.RegistrationStatusDropped); err != nil {
			return result, err
		}
		result.LabDropped = true
		result.LabSectionID = lab.ID
		logger.WithFields(log.Fields{
			"student_id":     studentID,
			"lab_section_id": lab.ID,
		}).Info("paired lab dropped")
	}
	return result, nil
}

func componentDenial(course db.Course, sectionType db.SectionType) *Denial {
	switch sectionType {
	case db.SectionTypeLab:
		if !course.HasLab {
			return &Denial{Code: "wrong_component", Message: "This course has no lab component"}
		}
	case db.SectionTypeTheory:
		if course.TheoryCredits <= 0 {
			return &Denial{Code: "wrong_component", Message: "This course has no theory component"}
		}
	}
	return nil
}

func (e *Engine) labParentDenial(
	ctx context.Context,
	studentID int64,
	lab db.Section,
) (*Denial, error) {
	if !lab.ParentSectionID.Valid {
		return &Denial{Code: "lab_without_theory", Message: "This lab section has no parent theory section"}, nil
	}
	registration, found, err := e.store.Registration(ctx, studentID, lab.ParentSectionID.Int64)
	if err != nil {
		return nil, err
	}
	if !found || registration.Status != db.RegistrationStatusRegistered {
		return &Denial{
			Code:    "lab_without_theory",
			Message: "Register for the theory section before its lab",
		}, nil
	}
	return nil, nil
}

func (e *Engine) creditLoadDenial(
	ctx context.Context,
	studentID int64,
	section db.Section,
	course db.Course,
) (*Denial, error) {
	current, err := e.StudentCredits(ctx, studentID, section.Semester, section.Year)
	if err != nil {
		return nil, err
	}
	contribution := course.TheoryCredits
	if section.SectionType == db.SectionTypeLab {
		contribution = course.LabCredits
	}
	if current+contribution > e.maxCredits {
		return &Denial{
			Code: "credit_overload",
			Message: fmt.Sprintf("Adding %.1f credits would exceed the %.1f credit limit (currently %.1f)",
				contribution, e.maxCredits, current),
			CurrentCredits: current,
			MaxCredits:     e.maxCredits,
		}, nil
	}
	return nil, nil
}

func (e *Engine) prerequisiteDenial(
	ctx context.Context,
	studentID int64,
	course db.Course,
) (*Denial, error) {
	prerequisites, err := e.store.Prerequisites(ctx, course.ID)
	if err != nil {
		return nil, err
	}
	for _, prerequisite := range prerequisites {
		grade, found, err := e.store.Grade(ctx, studentID, prerequisite.CourseID)
		if err != nil {
			return nil, err
		}
		if !found || !gradeSatisfiesPrerequisite(grade) {
			return &Denial{
				Code:    "prerequisite_unmet",
				Message: fmt.Sprintf("Prerequisite %s has not been passed", prerequisite.Code),
			}, nil
		}
	}
	return nil, nil
}
