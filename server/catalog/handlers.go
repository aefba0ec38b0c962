package servercatalog

import (
	"encoding/json"
	"net/http"
	"strconv"

	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tahsinm/registrar/data/db"
)

type catalogHandler struct {
	dbPool *pgxpool.Pool
	logger *slog.Logger
}

func (h *catalogHandler) getCourses(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := db.New(h.dbPool)
	courseRows, err := q.ListCourses(ctx, db.ListCoursesParams{
		Offsetvalue: ctx.Value(OffsetKey).(int32),
		Limitvalue:  ctx.Value(LimitKey).(int32),
	})
	if err != nil {
		h.logger.Error("Could not get course rows", "err", err)
		http.Error(w, http.StatusText(500), 500)
		return
	}

	courses, err := json.Marshal(courseRows)
	if err != nil {
		h.logger.Error("Could not marshal course rows", "err", err)
		http.Error(w, http.StatusText(500), 500)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(courses)
}

func (h *catalogHandler) getSectionsForCourse(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	courseID, err := strconv.ParseInt(chi.URLParam(r, "courseID"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid course id", http.StatusBadRequest)
		return
	}
	semester := r.URL.Query().Get("semester")
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if semester == "" || err != nil {
		http.Error(w, "semester and year query params are required", http.StatusBadRequest)
		return
	}

	q := db.New(h.dbPool)
	sectionRows, err := q.GetSectionsForCourse(ctx, db.SectionsForCourseParams{
		CourseID:    courseID,
		Semester:    semester,
		Year:        int32(year),
		Offsetvalue: ctx.Value(OffsetKey).(int32),
		Limitvalue:  ctx.Value(LimitKey).(int32),
	})
	if err != nil {
		h.logger.Error("Could not get section rows", "err", err)
		http.Error(w, http.StatusText(500), 500)
		return
	}

	sections, err := json.Marshal(sectionRows)
	if err != nil {
		h.logger.Error("Could not marshal section rows", "err", err)
		http.Error(w, http.StatusText(500), 500)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(sections)
}
