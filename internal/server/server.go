package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jobtrackr/apiserver/config"
	"github.com/jobtrackr/apiserver/internal/auth"
	"github.com/jobtrackr/apiserver/internal/db"
	"github.com/jobtrackr/apiserver/internal/events"
	"github.com/jobtrackr/apiserver/internal/handlers"
	"github.com/jobtrackr/apiserver/internal/jobsearch"
	"github.com/jobtrackr/apiserver/internal/services"
	"github.com/jobtrackr/apiserver/internal/storage"
	"github.com/jobtrackr/apiserver/internal/store"
)

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	events     *events.Publisher
}

// New constructs a Server with basic middleware and defaults.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	if strings.TrimSpace(cfg.Auth.JWTSecret) == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	tokens := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	hasher := auth.NewPasswordHasher(cfg.Auth.BcryptCost)

	userRepo := store.NewUserRepository(dbConn)
	appRepo := store.NewApplicationRepository(dbConn)

	userService := services.NewUserService(userRepo)
	appService := services.NewApplicationService(appRepo)

	publisher, err := newEventPublisher(ctx, cfg.Events)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}
	if publisher != nil {
		appService = appService.WithEvents(publisher)
	}

	resumes, err := newResumeStore(ctx, cfg.Storage)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}
	if resumes != nil {
		appService = appService.WithResumeStore(resumes)
	}

	authHandler := handlers.NewAuthHandler(userService, hasher, tokens)
	requireAuth := handlers.RequireAuth(tokens)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
	)
	router.Get("/healthz", handlers.Healthz)
	router.Route("/api", func(r chi.Router) {
		handlers.AuthRouter(r, authHandler)

		if strings.TrimSpace(cfg.JobSearch.APIKey) != "" {
			jobsClient, err := jobsearch.NewClient(cfg.JobSearch)
			if err == nil {
				r.Get("/external-jobs", handlers.NewJobSearchHandler(jobsClient).ExternalJobs)
			}
		}

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/me", authHandler.Me)
			r.Route("/applications", func(r chi.Router) {
				handlers.ApplicationRouter(r, appService)
			})
		})
	})

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		db:         dbConn,
		events:     publisher,
	}, nil
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown attempts a graceful shutdown.
func (s *Server) Shutdown() error {
	if s.events != nil {
		_ = s.events.Close()
	}
	if s.db != nil {
		_ = s.db.Close()
	}
	return s.httpServer.Close()
}

func newEventPublisher(ctx context.Context, cfg config.EventsConfig) (*events.Publisher, error) {
	var backend events.Backend
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "":
		return nil, nil
	case "rabbitmq":
		client, err := events.NewRabbitMQBackend(cfg.RabbitMQ)
		if err != nil {
			return nil, err
		}
		backend = client
	case "pubsub":
		client, err := events.NewPubSubBackend(ctx, cfg.PubSub)
		if err != nil {
			return nil, err
		}
		backend = client
	default:
		return nil, fmt.Errorf("unknown events backend %q", cfg.Backend)
	}
	return events.NewPublisher(backend, cfg.Channel), nil
}

func newResumeStore(ctx context.Context, cfg config.StorageConfig) (*storage.ResumeStore, error) {
	var backend storage.ObjectStore
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "":
		return nil, nil
	case "minio":
		client, err := storage.NewMinioStore(cfg.Minio)
		if err != nil {
			return nil, err
		}
		backend = client
	case "gcs":
		client, err := storage.NewGCSStore(ctx, cfg.GCS)
		if err != nil {
			return nil, err
		}
		backend = client
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}

	resumes := storage.NewResumeStore(backend)
	if err := resumes.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	return resumes, nil
}
