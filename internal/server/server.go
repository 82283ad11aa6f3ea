package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/cmcs/claimserver/config"
	"github.com/cmcs/claimserver/internal/db"
	"github.com/cmcs/claimserver/internal/events"
	"github.com/cmcs/claimserver/internal/handlers"
	"github.com/cmcs/claimserver/internal/services"
	"github.com/cmcs/claimserver/internal/storage"
	"github.com/cmcs/claimserver/internal/store"
	"github.com/cmcs/claimserver/pkg/logger"
)

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	publisher  *events.Publisher
	logger     *zap.Logger
}

// New constructs a Server with all dependencies wired.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, err
	}

	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	blobs, err := newBlobStore(ctx, cfg.Blob)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}
	if err := blobs.EnsureBucket(ctx); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("prepare blob storage: %w", err)
	}

	publisher, err := newPublisher(ctx, cfg.Events, log)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	userRepo := store.NewUserRepository(dbConn)
	claimRepo := store.NewClaimRepository(dbConn)
	documentRepo := store.NewDocumentRepository(dbConn)

	userService := services.NewUserService(userRepo, log)
	claimService := services.NewClaimService(claimRepo, documentRepo, userRepo, blobs, publisher, log)
	reportService := services.NewReportService(claimRepo, userRepo)

	jwtSecret := strings.TrimSpace(os.Getenv("JWT_SECRET"))
	if jwtSecret == "" {
		_ = dbConn.Close()
		return nil, errors.New("JWT_SECRET is required")
	}

	authMiddleware := handlers.RequireAuth(jwtSecret)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
	)
	router.Get("/healthz", handlers.Healthz)
	router.Route("/auth", func(r chi.Router) {
		handlers.AuthRouter(r, userService, jwtSecret)
	})
	router.Route("/claims", func(r chi.Router) {
		handlers.ClaimRouter(r, claimService, userService, authMiddleware)
	})
	router.Route("/users", func(r chi.Router) {
		handlers.UserRouter(r, userService, authMiddleware)
	})
	router.Route("/reports", func(r chi.Router) {
		handlers.ReportRouter(r, reportService, userService, authMiddleware)
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
		publisher:  publisher,
		logger:     log,
	}, nil
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	s.logger.Info("server starting", zap.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown attempts a graceful shutdown.
func (s *Server) Shutdown() error {
	if s.publisher != nil {
		_ = s.publisher.Close()
	}
	if s.db != nil {
		_ = s.db.Close()
	}
	_ = s.logger.Sync()
	return s.httpServer.Close()
}

// newBlobStore selects the configured object storage backend and wraps
// it with encryption.
func newBlobStore(ctx context.Context, cfg config.BlobConfig) (*storage.EncryptedStore, error) {
	var backend storage.ObjectStorage
	var err error

	switch cfg.Backend {
	case "", "file":
		backend, err = storage.NewFSClient(cfg.Dir)
	case "minio":
		backend, err = storage.NewMinioClient(cfg.Minio)
	case "gcs":
		backend, err = storage.NewGCSClient(ctx, cfg.GCS)
	default:
		return nil, fmt.Errorf("unknown blob backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}

	return storage.NewEncryptedStore(backend, storage.Base64Key(cfg.EncryptionKey))
}

// newPublisher builds the optional status-change event publisher. An
// empty backend means events are disabled and a nil publisher is
// returned.
func newPublisher(ctx context.Context, cfg config.EventsConfig, log *zap.Logger) (*events.Publisher, error) {
	if cfg.Backend == "" {
		return nil, nil
	}

	backend, err := events.NewBackend(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return events.NewPublisher(backend, cfg.Channel, log), nil
}
