package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	_ "github.com/lib/pq"

	"github.com/wilber023/poust-microservicio/internal/api/handlers"
	"github.com/wilber023/poust-microservicio/internal/api/middleware"
	"github.com/wilber023/poust-microservicio/internal/api/routes"
	"github.com/wilber023/poust-microservicio/internal/config"
	"github.com/wilber023/poust-microservicio/internal/core/discover"
	"github.com/wilber023/poust-microservicio/internal/core/media"
	"github.com/wilber023/poust-microservicio/internal/core/moderation"
	"github.com/wilber023/poust-microservicio/internal/core/profiles"
	"github.com/wilber023/poust-microservicio/internal/core/publications"
	"github.com/wilber023/poust-microservicio/internal/core/timeline"
	"github.com/wilber023/poust-microservicio/internal/db/memory"
	"github.com/wilber023/poust-microservicio/internal/db/migrations"
	postgresRepo "github.com/wilber023/poust-microservicio/internal/db/postgres"
)

const mediaRoute = "/media/"

func main() {
	storage := flag.String("storage", "", "storage backend: postgres or memory (overrides STORAGE_BACKEND)")
	addr := flag.String("addr", "", "listen address (overrides PORT)")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(*storage, *addr, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(storage, addr string, logger *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if storage != "" {
		cfg.Storage = storage
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if addr == "" {
		addr = ":" + cfg.Port
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repos, db, err := openRepositories(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if db != nil {
		defer func() {
			if closeErr := db.Close(); closeErr != nil {
				logger.Error("failed to close database", "error", closeErr)
			}
		}()
	}

	uploader, closeUploader, err := newUploader(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeUploader()
	mediaService := media.NewMediaService(uploader, cfg.MediaLimits, logger)

	contentPolicy := moderation.DefaultContentPolicy()
	if cfg.ContentDenylist != nil {
		contentPolicy = moderation.NewDenylistPolicy(cfg.ContentDenylist...)
	}
	bioPolicy := moderation.DefaultBioPolicy()
	if cfg.BioDenylist != nil {
		bioPolicy = moderation.NewDenylistPolicy(cfg.BioDenylist...)
	}

	services := routes.Services{
		Publications: publications.NewPublicationService(
			repos.publications, repos.publicationQueries, mediaService, repos.profileQueries, logger,
			publications.WithModerationPolicy(contentPolicy),
		),
		Profiles: profiles.NewProfileService(repos.profiles, repos.profileQueries, logger,
			profiles.WithBioPolicy(bioPolicy),
		),
		Timeline:    timeline.NewTimelineService(repos.timeline),
		Discover:    discover.NewDiscoverService(repos.discover),
		MediaLimits: cfg.MediaLimits,
	}

	if cfg.AuthDevMode {
		logger.Warn("AUTH_DEV_MODE is on: dev tokens are accepted", "prefix", middleware.DevTokenPrefix)
	}
	authMiddleware := middleware.NewJWTAuthMiddleware(cfg.JWTSecret, cfg.AuthDevMode)

	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	if cfg.TrustProxyHeaders {
		r.Use(chiMiddleware.RealIP)
	}
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	routes.RegisterAPIRoutes(r, services, authMiddleware, routes.NewLimiter(cfg.RateLimitEnabled))

	if cfg.MediaBackend == config.MediaDisk && cfg.MediaPublicBaseURL == "" {
		r.Handle(mediaRoute+"*", http.StripPrefix(mediaRoute, http.FileServer(http.Dir(cfg.MediaDiskDir))))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			pingCtx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := db.PingContext(pingCtx); err != nil {
				logger.Error("health check failed", "error", err)
				handlers.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		handlers.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", addr, "storage", cfg.Storage, "media", cfg.MediaBackend)
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down", "timeout", cfg.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

type repositories struct {
	publications       publications.Repository
	publicationQueries publications.QueryRepository
	profiles           profiles.Repository
	profileQueries     profiles.QueryRepository
	timeline           timeline.Repository
	discover           discover.Repository
}

// openRepositories returns the database handle too when postgres is used
func openRepositories(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*repositories, *sql.DB, error) {
	if cfg.Storage == config.StorageMemory {
		logger.Warn("using in-memory storage; data is lost on restart")
		store := memory.NewStore()
		return &repositories{
			publications:       memory.NewPublicationRepository(store),
			publicationQueries: memory.NewPublicationQueryRepository(store),
			profiles:           memory.NewProfileRepository(store),
			profileQueries:     memory.NewProfileQueryRepository(store),
			timeline:           memory.NewTimelineRepository(store),
			discover:           memory.NewDiscoverRepository(store),
		}, nil, nil
	}

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("ping database: %w", err)
	}
	logger.Info("connected to database")

	if err := migrations.Up(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("migrations completed")

	return &repositories{
		publications:       postgresRepo.NewPublicationRepository(db),
		publicationQueries: postgresRepo.NewPublicationQueryRepository(db),
		profiles:           postgresRepo.NewProfileRepository(db),
		profileQueries:     postgresRepo.NewProfileQueryRepository(db),
		timeline:           postgresRepo.NewTimelineRepository(db),
		discover:           postgresRepo.NewDiscoverRepository(db),
	}, db, nil
}

func newUploader(ctx context.Context, cfg *config.Config) (media.Uploader, func(), error) {
	noop := func() {}
	switch cfg.MediaBackend {
	case config.MediaGCS:
		u, err := media.NewGCSUploader(ctx, media.GCSConfig{
			Bucket:          cfg.GCSBucket,
			CredentialsFile: cfg.GCSCredentialsFile,
			PublicBaseURL:   cfg.MediaPublicBaseURL,
		})
		if err != nil {
			return nil, noop, fmt.Errorf("create gcs uploader: %w", err)
		}
		return u, func() {
			if err := u.Close(); err != nil {
				slog.Error("failed to close gcs client", "error", err)
			}
		}, nil
	case config.MediaDisk:
		baseURL := cfg.MediaPublicBaseURL
		if baseURL == "" {
			baseURL = mediaRoute
		}
		u, err := media.NewDiskUploader(cfg.MediaDiskDir, baseURL)
		if err != nil {
			return nil, noop, err
		}
		return u, noop, nil
	default:
		return media.Unconfigured{}, noop, nil
	}
}
