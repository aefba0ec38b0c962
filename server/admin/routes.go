package serveradmin

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"

	serverauth "github.com/tahsinm/registrar/server/auth"
)

func PopulateAdminRoutes(
	r *chi.Router,
	pool *pgxpool.Pool,
	auth *serverauth.Handler,
	logger *slog.Logger,
) {
	adminHandler := adminHandler{
		dbPool:   pool,
		logger:   logger,
		validate: validator.New(),
	}

	(*r).Post("/login", auth.Login)
	(*r).Post("/logout", auth.Logout)

	(*r).Group(func(r chi.Router) {
		r.Use(auth.RequireRole(serverauth.RoleAdmin))
		r.Post("/sections", adminHandler.createSection)
		r.Delete("/sections/{sectionID}", adminHandler.deleteSection)
		r.Get("/sections/next-number", adminHandler.getNextSectionNumber)
	})

	(*r).Group(func(r chi.Router) {
		r.Use(auth.RequireRole(serverauth.RoleFaculty, serverauth.RoleAdmin))
		r.Post("/grades", adminHandler.recordGrade)
	})
}
