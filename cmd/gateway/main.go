package main

import (
	"context"
	"log"
	"net/http"
	"time"

	api "github.com/studyforge/studyforge/internal/api/http"
	"github.com/studyforge/studyforge/internal/auth"
	"github.com/studyforge/studyforge/internal/config"
	"github.com/studyforge/studyforge/internal/db"
	"github.com/studyforge/studyforge/internal/exam"
	syncx "github.com/studyforge/studyforge/internal/sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
)

func main() {
	// .env is optional; real env always wins.
	_ = godotenv.Load()
	cfg := config.FromEnv()

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}
	store := exam.NewSQLStore(dbh)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins(),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	events := syncx.NewEventRepo(dbh)
	if cfg.EnableLocalAuth {
		authSvc := auth.NewService(cfg.AuthSecret, cfg.AdminUser, cfg.AdminPassHash)
		r.Post("/auth/login", auth.LoginHandler(authSvc))
		r.Group(func(pr chi.Router) {
			pr.Use(auth.JWTMiddleware(authSvc))
			api.Mount(pr, store)
			api.MountEvents(pr, events)
		})
	} else {
		api.Mount(r, store)
		api.MountEvents(r, events)
	}

	log.Printf("gateway listening on %s (mode=%s, db=%s)", cfg.HTTPAddr, cfg.Mode, cfg.DBDriver)
	if err := http.ListenAndServe(cfg.HTTPAddr, r); err != nil {
		log.Fatal(err)
	}
}
