package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"

	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/tahsinm/registrar/data"
	"github.com/tahsinm/registrar/data/logging"
	serveradmin "github.com/tahsinm/registrar/server/admin"
	serverauth "github.com/tahsinm/registrar/server/auth"
	servercatalog "github.com/tahsinm/registrar/server/catalog"
	serverenroll "github.com/tahsinm/registrar/server/enroll"
	serverlive "github.com/tahsinm/registrar/server/live"
)

func Serve() {
	logger := slog.New(logging.NewMultiHandler(
		slog.NewTextHandler(os.Stdout, nil),
	))

	r := chi.NewRouter()
	cors := cors.New(cors.Options{
		// the student portal frontend is served separately during development
		AllowedOrigins:   []string{"http://localhost:5173"},
		AllowedMethods:   []string{"GET", "POST", "DELETE"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // Maximum age for preflight requests
	})
	r.Use(cors.Handler)
	r.Use(middleware.Logger)

	dbPool, err := data.NewPool(context.Background(), false)
	if err != nil {
		logger.Error("Fatal cannot connect to main db", "err", err)
		return
	}

	auth := serverauth.NewHandler(dbPool, logger)
	feed := serverlive.NewFeed(logger)

	r.Route("/catalog", func(r chi.Router) {
		servercatalog.PopulateCatalogRoutes(&r, dbPool, logger)
	})
	r.Route("/enroll", func(r chi.Router) {
		serverenroll.PopulateEnrollRoutes(&r, dbPool, auth, feed, logger)
	})
	r.Route("/admin", func(r chi.Router) {
		serveradmin.PopulateAdminRoutes(&r, dbPool, auth, logger)
	})
	r.Get("/live/seats", feed.ServeWS)

	port := 3000
	if envPort := os.Getenv("PORT"); envPort != "" {
		if parsedPort, err := strconv.Atoi(envPort); err == nil {
			port = parsedPort
		}
	}
	logger.Info("Running server on", "port", port)
	http.ListenAndServe(fmt.Sprintf(":%d", port), r)
}
