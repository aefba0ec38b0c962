package enroll

import (
	"context"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgtype"
	log "github.com/sirupsen/logrus"

	"github.com/tahsinm/registrar/data/db"
	"github.com/tahsinm/registrar/registry/schedule"
)

type regKey struct {
	studentID int64
	sectionID int64
}

// memStore backs the engine and the student scope of the conflict checker
// from the same registration map, the way the real store reads both from
// the registrations table
type memStore struct {
	sections      map[int64]db.Section
	courses       map[int64]db.Course
	registrations map[regKey]db.Registration
	prereqs       map[int64][]db.PrerequisiteRow
	grades        map[regKey]string
	terms         map[string]db.Term
}

func newMemStore() *memStore {
	return &memStore{
		sections:      map[int64]db.Section{},
		courses:       map[int64]db.Course{},
		registrations: map[regKey]db.Registration{},
		prereqs:       map[int64][]db.PrerequisiteRow{},
		grades:        map[regKey]string{},
		terms:         map[string]db.Term{},
	}
}

func termKey(semester string, year int32) string {
	return fmt.Sprintf("%s-%d", semester, year)
}

func (m *memStore) Section(_ context.Context, id int64) (db.Section, bool, error) {
	s, ok := m.sections[id]
	return s, ok, nil
}

func (m *memStore) PairedLab(_ context.Context, theorySectionID int64) (db.Section, bool, error) {
	for _, s := range m.sections {
		if s.SectionType == db.SectionTypeLab &&
			s.ParentSectionID.Valid && s.ParentSectionID.Int64 == theorySectionID {
			return s, true, nil
		}
	}
	return db.Section{}, false, nil
}

func (m *memStore) Course(_ context.Context, id int64) (db.Course, bool, error) {
	c, ok := m.courses[id]
	return c, ok, nil
}

func (m *memStore) Registration(_ context.Context, studentID, sectionID int64) (db.Registration, bool, error) {
	r, ok := m.registrations[regKey{studentID, sectionID}]
	return r, ok, nil
}

func (m *memStore) RegisteredSections(
	_ context.Context,
	studentID int64,
	semester string,
	year int32,
) ([]db.RegisteredSectionRow, error) {
	var rows []db.RegisteredSectionRow
	for key, reg := range m.registrations {
		if key.studentID != studentID || reg.Status != db.RegistrationStatusRegistered {
			continue
		}
		section := m.sections[key.sectionID]
		if section.Semester != semester || section.Year != year {
			continue
		}
		course := m.courses[section.CourseID]
		rows = append(rows, db.RegisteredSectionRow{
			SectionID:     section.ID,
			CourseID:      course.ID,
			CourseCode:    course.Code,
			SectionNumber: section.SectionNumber,
			SectionType:   section.SectionType,
			ScheduleDays:  section.ScheduleDays,
			ScheduleTime:  section.ScheduleTime,
			TheoryCredits: course.TheoryCredits,
			LabCredits:    course.LabCredits,
		})
	}
	return rows, nil
}

func (m *memStore) Prerequisites(_ context.Context, courseID int64) ([]db.PrerequisiteRow, error) {
	return m.prereqs[courseID], nil
}

func (m *memStore) Grade(_ context.Context, studentID, courseID int64) (string, bool, error) {
	g, ok := m.grades[regKey{studentID, courseID}]
	return g, ok, nil
}

func (m *memStore) Term(_ context.Context, semester string, year int32) (db.Term, bool, error) {
	t, ok := m.terms[termKey(semester, year)]
	return t, ok, nil
}

func (m *memStore) RegisterIfSeatAvailable(_ context.Context, studentID, sectionID int64) (bool, error) {
	section := m.sections[sectionID]
	taken := 0
	for key, reg := range m.registrations {
		if key.sectionID == sectionID && reg.Status == db.RegistrationStatusRegistered {
			taken++
		}
	}
	if int32(taken) >= section.Capacity {
		return false, nil
	}
	m.registrations[regKey{studentID, sectionID}] = db.Registration{
		StudentID: studentID,
		SectionID: sectionID,
		Status:    db.RegistrationStatusRegistered,
	}
	return true, nil
}

func (m *memStore) SetRegistrationStatus(
	_ context.Context,
	studentID, sectionID int64,
	status db.RegistrationStatus,
) (int64, error) {
	key := regKey{studentID, sectionID}
	reg, ok := m.registrations[key]
	if !ok {
		return 0, nil
	}
	reg.Status = status
	m.registrations[key] = reg
	return 1, nil
}

// schedule.SectionReader over the same registration state
func (m *memStore) ScheduledSections(
	ctx context.Context,
	scope schedule.Scope,
	scopeID int64,
	semester string,
	year int32,
	excludeSectionID int64,
) ([]schedule.ScheduledSection, error) {
	if scope != schedule.ScopeStudent {
		return nil, nil
	}
	rows, err := m.RegisteredSections(ctx, scopeID, semester, year)
	if err != nil {
		return nil, err
	}
	var out []schedule.ScheduledSection
	for _, row := range rows {
		if row.SectionID == excludeSectionID {
			continue
		}
		out = append(out, schedule.ScheduledSection{
			SectionID:     row.SectionID,
			CourseCode:    row.CourseCode,
			SectionNumber: row.SectionNumber,
			Days:          row.ScheduleDays,
			Time:          row.ScheduleTime,
		})
	}
	return out, nil
}

func testLogger() *log.Entry {
	logger := log.New()
	logger.SetLevel(log.PanicLevel)
	return log.NewEntry(logger)
}

const (
	theorySectionID = 100
	labSectionID    = 101
	studentID       = 1
)

// one course with a theory section and its paired lab in an open term
func pairedFixture(labCapacity int32) *memStore {
	store := newMemStore()
	store.terms[termKey("Spring", 2026)] = db.Term{
		Semester: "Spring", Year: 2026, RegistrationOpen: true,
	}
	store.courses[1] = db.Course{
		ID: 1, Code: "CSE101", TheoryCredits: 3, LabCredits: 1, TotalCredits: 4, HasLab: true,
	}
	store.sections[theorySectionID] = db.Section{
		ID: theorySectionID, CourseID: 1, SectionNumber: "1",
		SectionType: db.SectionTypeTheory, Semester: "Spring", Year: 2026,
		ScheduleDays: "MWF", ScheduleTime: "10:00-11:20", Capacity: 30,
	}
	store.sections[labSectionID] = db.Section{
		ID: labSectionID, CourseID: 1, SectionNumber: "L1",
		SectionType: db.SectionTypeLab, Semester: "Spring", Year: 2026,
		ParentSectionID: pgtype.Int8{Int64: theorySectionID, Valid: true},
		ScheduleDays:    "T", ScheduleTime: "14:00-16:00", Capacity: labCapacity,
	}
	return store
}

func newTestEngine(store *memStore) *Engine {
	checker := schedule.NewChecker(store, schedule.DefaultBufferMinutes, nil)
	return NewEngine(store, checker)
}

func registered(store *memStore, sectionID int64) bool {
	reg, ok := store.registrations[regKey{studentID, sectionID}]
	return ok && reg.Status == db.RegistrationStatusRegistered
}

func TestRegisterTheoryAutoPairsLab(t *testing.T) {
	store := pairedFixture(30)
	engine := newTestEngine(store)
	ctx := context.Background()

	denial, err := engine.RegisterPrimary(ctx, testLogger(), studentID, theorySectionID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if denial != nil {
		t.Fatalf("expected registration to pass, got denial: %+v", denial)
	}
	outcome, err := engine.TryRegisterPairedLab(ctx, testLogger(), studentID, theorySectionID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !outcome.Registered || outcome.Warning != "" {
		t.Fatalf("expected the lab to pair cleanly, got %+v", outcome)
	}
	if !registered(store, theorySectionID) || !registered(store, labSectionID) {
		t.Error("both registrations should end registered")
	}

	credits, err := engine.StudentCredits(ctx, studentID, "Spring", 2026)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if credits != 4 {
		t.Errorf("paired course should count theory+lab once, got %v", credits)
	}
}

func TestRegisterTheoryWithFullLabWarns(t *testing.T) {
	store := pairedFixture(1)
	// someone else holds the only lab seat
	store.registrations[regKey{2, labSectionID}] = db.Registration{
		StudentID: 2, SectionID: labSectionID, Status: db.RegistrationStatusRegistered,
	}
	engine := newTestEngine(store)
	ctx := context.Background()

	denial, err := engine.RegisterPrimary(ctx, testLogger(), studentID, theorySectionID)
	if err != nil || denial != nil {
		t.Fatalf("theory registration should pass: denial=%+v err=%v", denial, err)
	}
	outcome, err := engine.TryRegisterPairedLab(ctx, testLogger(), studentID, theorySectionID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.Registered {
		t.Error("lab should not register when full")
	}
	if outcome.Warning == "" {
		t.Error("a full lab must surface a warning")
	}
	if !registered(store, theorySectionID) {
		t.Error("the theory registration must stand")
	}
	if registered(store, labSectionID) {
		t.Error("no lab registration should exist")
	}
}

func TestRegisterPairedLabConflictWarns(t *testing.T) {
	store := pairedFixture(30)
	// an existing Tuesday class that collides with the lab slot
	store.courses[2] = db.Course{ID: 2, Code: "MAT201", TheoryCredits: 3, TotalCredits: 3}
	store.sections[200] = db.Section{
		ID: 200, CourseID: 2, SectionNumber: "1", SectionType: db.SectionTypeTheory,
		Semester: "Spring", Year: 2026, ScheduleDays: "T", ScheduleTime: "15:00-16:20", Capacity: 30,
	}
	store.registrations[regKey{studentID, 200}] = db.Registration{
		StudentID: studentID, SectionID: 200, Status: db.RegistrationStatusRegistered,
	}
	engine := newTestEngine(store)
	ctx := context.Background()

	denial, err := engine.RegisterPrimary(ctx, testLogger(), studentID, theorySectionID)
	if err != nil || denial != nil {
		t.Fatalf("theory registration should pass: denial=%+v err=%v", denial, err)
	}
	outcome, err := engine.TryRegisterPairedLab(ctx, testLogger(), studentID, theorySectionID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.Registered || outcome.Warning == "" {
		t.Errorf("conflicting lab should warn and not register: %+v", outcome)
	}
	if !registered(store, theorySectionID) {
		t.Error("the theory registration must stand")
	}
}

func TestDropTheoryDropsPairedLab(t *testing.T) {
	store := pairedFixture(30)
	engine := newTestEngine(store)
	ctx := context.Background()

	if _, err := engine.RegisterPrimary(ctx, testLogger(), studentID, theorySectionID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := engine.TryRegisterPairedLab(ctx, testLogger(), studentID, theorySectionID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err := engine.Drop(ctx, testLogger(), studentID, theorySectionID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Dropped || !result.LabDropped {
		t.Fatalf("both drops should happen: %+v", result)
	}
	if registered(store, theorySectionID) || registered(store, labSectionID) {
		t.Error("both registrations should end dropped")
	}
	if store.registrations[regKey{studentID, labSectionID}].Status != db.RegistrationStatusDropped {
		t.Error("lab row should be marked dropped, not deleted")
	}
}

func TestDropWithoutRegistrationIsNoop(t *testing.T) {
	store := pairedFixture(30)
	engine := newTestEngine(store)

	result, err := engine.Drop(context.Background(), testLogger(), studentID, theorySectionID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Dropped || result.LabDropped {
		t.Errorf("nothing to drop: %+v", result)
	}
}

func TestCreditOverloadDenied(t *testing.T) {
	store := pairedFixture(30)
	// six three credit courses put the student at 18
	for i := int64(0); i < 6; i++ {
		courseID := 10 + i
		sectionID := 300 + i
		store.courses[courseID] = db.Course{
			ID: courseID, Code: fmt.Sprintf("GEN%d", 100+i), TheoryCredits: 3, TotalCredits: 3,
		}
		store.sections[sectionID] = db.Section{
			ID: sectionID, CourseID: courseID, SectionNumber: "1",
			SectionType: db.SectionTypeTheory, Semester: "Spring", Year: 2026,
			// spread far apart so nothing conflicts
			ScheduleDays: "SU", ScheduleTime: fmt.Sprintf("%02d:00-%02d:30", 6+i*2, 7+i*2), Capacity: 30,
		}
		store.registrations[regKey{studentID, sectionID}] = db.Registration{
			StudentID: studentID, SectionID: sectionID, Status: db.RegistrationStatusRegistered,
		}
	}
	// the candidate course is worth 4 credits of theory
	store.courses[1] = db.Course{ID: 1, Code: "CSE101", TheoryCredits: 4, LabCredits: 1, TotalCredits: 5, HasLab: true}

	engine := newTestEngine(store)
	denial, err := engine.RegisterPrimary(context.Background(), testLogger(), studentID, theorySectionID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if denial == nil || denial.Code != "credit_overload" {
		t.Fatalf("expected credit overload denial, got %+v", denial)
	}
	if denial.CurrentCredits != 18 || denial.MaxCredits != DefaultMaxCredits {
		t.Errorf("denial should report current and max credits: %+v", denial)
	}
}

func TestDuplicateRegistrationDenied(t *testing.T) {
	store := pairedFixture(30)
	engine := newTestEngine(store)
	ctx := context.Background()

	if denial, _ := engine.RegisterPrimary(ctx, testLogger(), studentID, theorySectionID); denial != nil {
		t.Fatalf("first registration should pass: %+v", denial)
	}
	denial, err := engine.RegisterPrimary(ctx, testLogger(), studentID, theorySectionID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if denial == nil || denial.Code != "already_registered" {
		t.Errorf("expected duplicate denial, got %+v", denial)
	}
}

func TestReRegisterAfterDrop(t *testing.T) {
	store := pairedFixture(30)
	engine := newTestEngine(store)
	ctx := context.Background()

	if denial, _ := engine.RegisterPrimary(ctx, testLogger(), studentID, theorySectionID); denial != nil {
		t.Fatalf("register: %+v", denial)
	}
	if _, err := engine.Drop(ctx, testLogger(), studentID, theorySectionID); err != nil {
		t.Fatalf("drop: %v", err)
	}
	denial, err := engine.RegisterPrimary(ctx, testLogger(), studentID, theorySectionID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if denial != nil {
		t.Errorf("re-registering a dropped section should pass: %+v", denial)
	}
	if !registered(store, theorySectionID) {
		t.Error("registration should be active again")
	}
}

func TestRegistrationClosedDenied(t *testing.T) {
	store := pairedFixture(30)
	store.terms[termKey("Spring", 2026)] = db.Term{
		Semester: "Spring", Year: 2026, RegistrationOpen: false,
	}
	engine := newTestEngine(store)

	denial, err := engine.RegisterPrimary(context.Background(), testLogger(), studentID, theorySectionID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if denial == nil || denial.Code != "registration_closed" {
		t.Errorf("expected registration closed denial, got %+v", denial)
	}
}

func TestPrerequisiteGating(t *testing.T) {
	store := pairedFixture(30)
	store.courses[5] = db.Course{ID: 5, Code: "CSE100", TheoryCredits: 3, TotalCredits: 3}
	store.prereqs[1] = []db.PrerequisiteRow{{CourseID: 5, Code: "CSE100"}}
	engine := newTestEngine(store)
	ctx := context.Background()

	// no grade at all
	denial, err := engine.RegisterPrimary(ctx, testLogger(), studentID, theorySectionID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if denial == nil || denial.Code != "prerequisite_unmet" {
		t.Fatalf("missing prerequisite should deny, got %+v", denial)
	}

	// an F does not satisfy
	store.grades[regKey{studentID, 5}] = "F"
	denial, _ = engine.RegisterPrimary(ctx, testLogger(), studentID, theorySectionID)
	if denial == nil || denial.Code != "prerequisite_unmet" {
		t.Fatalf("an F should not satisfy a prerequisite, got %+v", denial)
	}

	// a D does
	store.grades[regKey{studentID, 5}] = "D"
	denial, _ = engine.RegisterPrimary(ctx, testLogger(), studentID, theorySectionID)
	if denial != nil {
		t.Errorf("a D should satisfy a prerequisite, got %+v", denial)
	}
}

func TestScheduleConflictDenied(t *testing.T) {
	store := pairedFixture(30)
	store.courses[2] = db.Course{ID: 2, Code: "MAT201", TheoryCredits: 3, TotalCredits: 3}
	store.sections[200] = db.Section{
		ID: 200, CourseID: 2, SectionNumber: "1", SectionType: db.SectionTypeTheory,
		Semester: "Spring", Year: 2026, ScheduleDays: "WF", ScheduleTime: "11:25-12:45", Capacity: 30,
	}
	store.registrations[regKey{studentID, 200}] = db.Registration{
		StudentID: studentID, SectionID: 200, Status: db.RegistrationStatusRegistered,
	}
	engine := newTestEngine(store)

	// 10:00-11:20 vs 11:25-12:45 is only a 5 minute gap, inside the buffer
	denial, err := engine.RegisterPrimary(context.Background(), testLogger(), studentID, theorySectionID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if denial == nil || denial.Code != "schedule_conflict" {
		t.Errorf("expected schedule conflict denial, got %+v", denial)
	}
}

func TestLabRequiresActiveTheoryRegistration(t *testing.T) {
	store := pairedFixture(30)
	engine := newTestEngine(store)
	ctx := context.Background()

	denial, err := engine.RegisterPrimary(ctx, testLogger(), studentID, labSectionID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if denial == nil || denial.Code != "lab_without_theory" {
		t.Errorf("direct lab registration without theory should deny, got %+v", denial)
	}
}

func TestSectionFullDenied(t *testing.T) {
	store := pairedFixture(30)
	theory := store.sections[theorySectionID]
	theory.Capacity = 1
	store.sections[theorySectionID] = theory
	store.registrations[regKey{2, theorySectionID}] = db.Registration{
		StudentID: 2, SectionID: theorySectionID, Status: db.RegistrationStatusRegistered,
	}
	engine := newTestEngine(store)

	denial, err := engine.RegisterPrimary(context.Background(), testLogger(), studentID, theorySectionID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if denial == nil || denial.Code != "section_full" {
		t.Errorf("expected section full denial, got %+v", denial)
	}
}
