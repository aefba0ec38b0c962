package serveradmin

import (
	"encoding/json"
	"net/http"
	"strconv"

	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"

	"github.com/tahsinm/registrar/data/db"
	"github.com/tahsinm/registrar/data/registryqueries"
	"github.com/tahsinm/registrar/registry/schedule"
	"github.com/tahsinm/registrar/registry/section"
)

type adminHandler struct {
	dbPool   *pgxpool.Pool
	logger   *slog.Logger
	validate *validator.Validate
}

type createSectionRequest struct {
	CourseID        int64  `json:"course_id" validate:"required"`
	FacultyID       int64  `json:"faculty_id" validate:"required"`
	RoomID          int64  `json:"room_id" validate:"required"`
	Semester        string `json:"semester" validate:"required"`
	Year            int32  `json:"year" validate:"required"`
	SectionType     string `json:"section_type" validate:"required,oneof=theory lab"`
	ParentSectionID int64  `json:"parent_section_id"`
	ScheduleDays    string `json:"schedule_days" validate:"required"`
	ScheduleTime    string `json:"schedule_time" validate:"required"`
	Capacity        int32  `json:"capacity" validate:"required"`
}

type createSectionResponse struct {
	Valid         bool     `json:"valid"`
	Errors        []string `json:"errors,omitempty"`
	SectionID     int64    `json:"section_id,omitempty"`
	SectionNumber string   `json:"section_number,omitempty"`
}

func (h *adminHandler) createSection(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req createSectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid payload", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		http.Error(w, "Missing or invalid section fields: "+err.Error(), http.StatusBadRequest)
		return
	}
	// pairing selection is mandatory input for lab sections, not inferred
	if req.SectionType == string(db.SectionTypeLab) && req.ParentSectionID == 0 {
		http.Error(w, "Lab sections require a parent theory section", http.StatusBadRequest)
		return
	}

	store := registryqueries.New(h.dbPool)
	checker := schedule.NewChecker(store, schedule.DefaultBufferMinutes, h.logger)
	sectionValidator := section.NewValidator(store, checker)

	jobLogger := log.WithFields(log.Fields{
		"course_id":    req.CourseID,
		"section_type": req.SectionType,
	})
	result, err := sectionValidator.Validate(ctx, jobLogger, section.NewSection{
		CourseID:        req.CourseID,
		FacultyID:       req.FacultyID,
		RoomID:          req.RoomID,
		Semester:        req.Semester,
		Year:            req.Year,
		SectionType:     db.SectionType(req.SectionType),
		ParentSectionID: req.ParentSectionID,
		ScheduleDays:    req.ScheduleDays,
		ScheduleTime:    req.ScheduleTime,
		Capacity:        req.Capacity,
	})
	if err != nil {
		h.logger.Error("section validation failed", "err", err)
		http.Error(w, http.StatusText(500), 500)
		return
	}
	if !result.Valid {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(createSectionResponse{Valid: false, Errors: result.Errors})
		return
	}

	existingNumbers, err := store.SectionNumbers(
		ctx, req.CourseID, db.SectionType(req.SectionType), req.Semester, req.Year)
	if err != nil {
		h.logger.Error("could not get section numbers", "err", err)
		http.Error(w, http.StatusText(500), 500)
		return
	}
	sectionNumber := section.NextNumber(existingNumbers, db.SectionType(req.SectionType))

	var parentSectionID pgtype.Int8
	if req.ParentSectionID != 0 {
		parentSectionID = pgtype.Int8{Int64: req.ParentSectionID, Valid: true}
	}
	sectionID, err := store.CreateSection(ctx, db.CreateSectionParams{
		CourseID:        req.CourseID,
		SectionNumber:   sectionNumber,
		FacultyID:       pgtype.Int8{Int64: req.FacultyID, Valid: true},
		Semester:        req.Semester,
		Year:            req.Year,
		SectionType:     db.SectionType(req.SectionType),
		ParentSectionID: parentSectionID,
		ScheduleDays:    req.ScheduleDays,
		ScheduleTime:    req.ScheduleTime,
		RoomID:          pgtype.Int8{Int64: req.RoomID, Valid: true},
		Capacity:        req.Capacity,
	})
	if err != nil {
		h.logger.Error("could not create section", "err", err)
		http.Error(w, http.StatusText(500), 500)
		return
	}
	jobLogger.WithFields(log.Fields{
		"section_id":     sectionID,
		"section_number": sectionNumber,
	}).Info("section created")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(createSectionResponse{
		Valid:         true,
		SectionID:     sectionID,
		SectionNumber: sectionNumber,
	})
}

func (h *adminHandler) deleteSection(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sectionID, err := strconv.ParseInt(chi.URLParam(r, "sectionID"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid section id", http.StatusBadRequest)
		return
	}

	store := registryqueries.New(h.dbPool)
	deleted, err := store.DeleteSectionIfEmpty(ctx, sectionID)
	if err != nil {
		h.logger.Error("could not delete section", "err", err)
		http.Error(w, http.StatusText(500), 500)
		return
	}
	if deleted == 0 {
		http.Error(w, "Section has active registrations or does not exist", http.StatusConflict)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *adminHandler) getNextSectionNumber(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()
	courseID, err := strconv.ParseInt(query.Get("course_id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid course_id", http.StatusBadRequest)
		return
	}
	sectionType := db.SectionType(query.Get("section_type"))
	if sectionType != db.SectionTypeTheory && sectionType != db.SectionTypeLab {
		http.Error(w, "section_type must be theory or lab", http.StatusBadRequest)
		return
	}
	semester := query.Get("semester")
	year, err := strconv.Atoi(query.Get("year"))
	if semester == "" || err != nil {
		http.Error(w, "semester and year query params are required", http.StatusBadRequest)
		return
	}

	store := registryqueries.New(h.dbPool)
	existingNumbers, err := store.SectionNumbers(ctx, courseID, sectionType, semester, int32(year))
	if err != nil {
		h.logger.Error("could not get section numbers", "err", err)
		http.Error(w, http.StatusText(500), 500)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"next_number": section.NextNumber(existingNumbers, sectionType),
	})
}

type recordGradeRequest struct {
	StudentID int64  `json:"student_id" validate:"required"`
	CourseID  int64  `json:"course_id" validate:"required"`
	Grade     string `json:"grade" validate:"required,oneof=A+ A A- B+ B B- C+ C C- D+ D F"`
}

func (h *adminHandler) recordGrade(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req recordGradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid payload", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		http.Error(w, "Missing or invalid grade fields: "+err.Error(), http.StatusBadRequest)
		return
	}

	q := db.New(h.dbPool)
	if err := q.UpsertGrade(ctx, db.UpsertGradeParams{
		StudentID: req.StudentID,
		CourseID:  req.CourseID,
		Grade:     req.Grade,
	}); err != nil {
		h.logger.Error("could not record grade", "err", err)
		http.Error(w, http.StatusText(500), 500)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
