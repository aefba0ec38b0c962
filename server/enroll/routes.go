package serverenroll

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"

	serverauth "github.com/tahsinm/registrar/server/auth"
	serverlive "github.com/tahsinm/registrar/server/live"
)

func PopulateEnrollRoutes(
	r *chi.Router,
	pool *pgxpool.Pool,
	auth *serverauth.Handler,
	feed *serverlive.Feed,
	logger *slog.Logger,
) {
	enrollHandler := enrollHandler{
		dbPool:   pool,
		logger:   logger,
		feed:     feed,
		validate: validator.New(),
		limiters: newStudentLimiters(),
	}

	(*r).Use(auth.RequireRole(serverauth.RoleStudent))
	(*r).Post("/register", enrollHandler.register)
	(*r).Post("/drop", enrollHandler.drop)
	(*r).Get("/schedule", enrollHandler.getSchedule)
}
