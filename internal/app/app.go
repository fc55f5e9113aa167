package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"registration-service/internal/config"
	"registration-service/internal/credential"
	"registration-service/internal/db"
	"registration-service/internal/events"
	"registration-service/internal/health"
	"registration-service/internal/logger"
	"registration-service/internal/middleware"
	"registration-service/internal/student"
	"registration-service/internal/telemetry"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
)

type App struct {
	config    *config.Config
	router    chi.Router
	server    *http.Server
	logger    *slog.Logger
	db        *bun.DB
	publisher events.Publisher
	telemetry *telemetry.Telemetry
}

// New builds the application from the environment's config file.
func New() (*App, error) {
	slogLogger := logger.NewWithServiceContext(ServiceName, Version)

	// Set as default logger so slog.Info() uses the same handler
	slog.SetDefault(slogLogger)

	slogLogger.Info("initializing application", "git_commit", GitCommit, "build_time", BuildTime)

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	slogLogger.Info("config loaded", "env", cfg.Env)

	return Build(context.Background(), cfg, slogLogger)
}

// Build wires storage, telemetry, events and routes for cfg. Resources opened
// before a failure are released.
func Build(ctx context.Context, cfg *config.Config, slogLogger *slog.Logger) (_ *App, err error) {
	app := &App{
		config: cfg,
		router: chi.NewRouter(),
		logger: slogLogger,
	}
	defer func() {
		if err != nil {
			app.close(ctx)
		}
	}()

	app.telemetry, err = telemetry.Init(ctx, cfg.Telemetry, ServiceName, Version, cfg.Env, slogLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	m := app.telemetry.Metrics

	app.db, err = db.New(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	app.db.AddQueryHook(m.Database.QueryHook())

	models := append(student.Models(), credential.Models()...)
	if err := db.RunMigrations(ctx, app.db, models...); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	meter := otel.Meter(ServiceName)
	if err := m.Database.RegisterDB(app.db.DB, meter); err != nil {
		slogLogger.Warn("failed to register database metrics", "error", err)
	}
	if err := m.Health.RegisterDependencies(meter, health.DependencyDB); err != nil {
		slogLogger.Warn("failed to register dependency metrics", "error", err)
	}

	app.publisher, err = events.New(cfg.Events, slogLogger, m)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize event publisher: %w", err)
	}

	reference, err := cfg.ReferenceTime()
	if err != nil {
		return nil, err
	}
	var clock student.Clock
	if !reference.IsZero() {
		slogLogger.Info("age rule pinned to reference date", "reference_date", cfg.Validation.ReferenceDate)
		clock = student.FixedClock(reference)
	}

	app.router.Use(chimw.RequestID)
	app.router.Use(chimw.RealIP)
	app.router.Use(middleware.RequestLogger(slogLogger))
	app.router.Use(chimw.Recoverer)
	app.router.Use(middleware.CORS(cfg.Server.CORSOrigins))

	healthHandler := health.NewHandler(app.db, slogLogger, m)
	healthHandler.RegisterRoutes(app.router)

	studentRepo := student.NewRepository(app.db)
	studentService := student.NewService(studentRepo, student.NewValidator(clock), app.publisher, slogLogger, m)
	studentHandler := student.NewHandler(studentService, slogLogger)
	studentHandler.RegisterRoutes(app.router)

	slogLogger.Info("application initialized successfully")

	return app, nil
}

// Handler exposes the router, mainly for tests.
func (a *App) Handler() http.Handler {
	return a.router
}

func (a *App) Run() error {
	a.server = &http.Server{
		Addr:         fmt.Sprintf(":%s", a.config.Server.Port),
		Handler:      a.router,
		ReadTimeout:  seconds(a.config.Server.ReadTimeout),
		WriteTimeout: seconds(a.config.Server.WriteTimeout),
		IdleTimeout:  seconds(a.config.Server.IdleTimeout),
	}

	a.logger.Info("server starting", "port", a.config.Server.Port)
	if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("shutting down server")

	var err error
	if a.server != nil {
		err = a.server.Shutdown(ctx)
	}
	return errors.Join(err, a.close(ctx))
}

func (a *App) close(ctx context.Context) error {
	var errs []error
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close publisher: %w", err))
		}
	}
	db.Close(a.db)
	if err := a.telemetry.Shutdown(ctx, a.logger); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}
