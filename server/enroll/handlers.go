package serverenroll

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"

	"github.com/tahsinm/registrar/data/db"
	"github.com/tahsinm/registrar/data/registryqueries"
	"github.com/tahsinm/registrar/registry/enroll"
	"github.com/tahsinm/registrar/registry/schedule"
	serverauth "github.com/tahsinm/registrar/server/auth"
	serverlive "github.com/tahsinm/registrar/server/live"
)

type enrollHandler struct {
	dbPool   *pgxpool.Pool
	logger   *slog.Logger
	feed     *serverlive.Feed
	validate *validator.Validate
	limiters *studentLimiters
}

func (h *enrollHandler) newEngine() (*enroll.Engine, *registryqueries.Queries) {
	store := registryqueries.New(h.dbPool)
	checker := schedule.NewChecker(store, schedule.DefaultBufferMinutes, h.logger)
	return enroll.NewEngine(store, checker), store
}

type sectionRequest struct {
	SectionID int64 `json:"section_id" validate:"required"`
}

type registerResponse struct {
	Registered bool           `json:"registered"`
	Denial     *enroll.Denial `json:"denial,omitempty"`
	Warning    string         `json:"warning,omitempty"`
	LabAdded   bool           `json:"lab_added,omitempty"`
}

func (h *enrollHandler) register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := serverauth.UserFromContext(ctx)
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}
	if !h.limiters.allow(user.StudentID) {
		http.Error(w, "Too many registration attempts, slow down", http.StatusTooManyRequests)
		return
	}

	var req sectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid payload", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		http.Error(w, "section_id is required", http.StatusBadRequest)
		return
	}

	engine, store := h.newEngine()
	jobLogger := log.WithFields(log.Fields{
		"student_id": user.StudentID,
		"section_id": req.SectionID,
	})

	denial, err := engine.RegisterPrimary(ctx, jobLogger, user.StudentID, req.SectionID)
	if err != nil {
		h.logger.Error("registration failed", "err", err)
		http.Error(w, http.StatusText(500), 500)
		return
	}
	if denial != nil {
		writeJSON(w, h.logger, registerResponse{Registered: false, Denial: denial})
		return
	}

	response := registerResponse{Registered: true}
	h.publishSeats(ctx, store, req.SectionID)

	// the dependent lab registration runs as its own step so a capacity
	// or conflict problem there never unwinds the theory seat
	section, found, err := store.Section(ctx, req.SectionID)
	if err == nil && found && section.SectionType == db.SectionTypeTheory {
		outcome, err := engine.TryRegisterPairedLab(ctx, jobLogger, user.StudentID, req.SectionID)
		if err != nil {
			h.logger.Error("paired lab registration failed", "err", err)
		} else {
			response.Warning = outcome.Warning
			response.LabAdded = outcome.Registered
			if outcome.Registered {
				h.publishSeats(ctx, store, outcome.LabSectionID)
			}
		}
	}

	writeJSON(w, h.logger, response)
}

type dropResponse struct {
	Dropped    bool `json:"dropped"`
	LabDropped bool `json:"lab_dropped,omitempty"`
}

func (h *enrollHandler) drop(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := serverauth.UserFromContext(ctx)
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	var req sectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid payload", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		http.Error(w, "section_id is required", http.StatusBadRequest)
		return
	}

	engine, store := h.newEngine()
	jobLogger := log.WithFields(log.Fields{
		"student_id": user.StudentID,
		"section_id": req.SectionID,
	})

	result, err := engine.Drop(ctx, jobLogger, user.StudentID, req.SectionID)
	if err != nil {
		h.logger.Error("drop failed", "err", err)
		http.Error(w, http.StatusText(500), 500)
		return
	}
	if result.Dropped {
		h.publishSeats(ctx, store, req.SectionID)
	}
	if result.LabDropped {
		h.publishSeats(ctx, store, result.LabSectionID)
	}

	writeJSON(w, h.logger, dropResponse{
		Dropped:    result.Dropped,
		LabDropped: result.LabDropped,
	})
}

type scheduleResponse struct {
	Sections     any     `json:"sections"`
	TotalCredits float64 `json:"total_credits"`
}

func (h *enrollHandler) getSchedule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := serverauth.UserFromContext(ctx)
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}
	semester := r.URL.Query().Get("semester")
	yearValue, err := strconv.Atoi(r.URL.Query().Get("year"))
	if semester == "" || err != nil {
		http.Error(w, "semester and year query params are required", http.StatusBadRequest)
		return
	}
	year := int32(yearValue)

	engine, store := h.newEngine()
	sections, err := store.RegisteredSections(ctx, user.StudentID, semester, year)
	if err != nil {
		h.logger.Error("could not get registered sections", "err", err)
		http.Error(w, http.StatusText(500), 500)
		return
	}
	credits, err := engine.StudentCredits(ctx, user.StudentID, semester, year)
	if err != nil {
		h.logger.Error("could not total credits", "err", err)
		http.Error(w, http.StatusText(500), 500)
		return
	}

	writeJSON(w, h.logger, scheduleResponse{
		Sections:     sections,
		TotalCredits: credits,
	})
}

func (h *enrollHandler) publishSeats(
	ctx context.Context,
	store *registryqueries.Queries,
	sectionID int64,
) {
	section, found, err := store.Section(ctx, sectionID)
	if err != nil || !found {
		return
	}
	taken, err := store.SeatsTaken(ctx, sectionID)
	if err != nil {
		return
	}
	h.feed.Broadcast(serverlive.SeatEvent{
		SectionID:  sectionID,
		SeatsTaken: taken,
		Capacity:   section.Capacity,
	})
}
