package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/appdotbuilder/school-management-app/internal/attendance"
	"github.com/appdotbuilder/school-management-app/internal/config"
	"github.com/appdotbuilder/school-management-app/internal/db"
	"github.com/appdotbuilder/school-management-app/internal/event"
	"github.com/appdotbuilder/school-management-app/internal/grade"
	"github.com/appdotbuilder/school-management-app/internal/health"
	"github.com/appdotbuilder/school-management-app/internal/logger"
	"github.com/appdotbuilder/school-management-app/internal/metrics"
	"github.com/appdotbuilder/school-management-app/internal/middleware"
	"github.com/appdotbuilder/school-management-app/internal/schema"
	"github.com/appdotbuilder/school-management-app/internal/stats"
	"github.com/appdotbuilder/school-management-app/internal/student"
	"github.com/appdotbuilder/school-management-app/internal/subject"
	"github.com/appdotbuilder/school-management-app/internal/telemetry"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

type App struct {
	config        *config.Config
	router        chi.Router
	server        *http.Server
	logger        *slog.Logger
	db            *bun.DB
	publisher     event.Publisher
	metrics       *metrics.Metrics
	meterProvider *sdkmetric.MeterProvider
	checks        map[string]health.Check
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	slogLogger := logger.NewWithServiceContext(ServiceName, Version, cfg.Env)
	slog.SetDefault(slogLogger)
	slogLogger.Info("initializing application", "env", cfg.Env, "commit", GitCommit, "build_time", BuildTime)

	ctx := context.Background()

	meterProvider, err := telemetry.InitMeterProvider(ctx, cfg.Telemetry, ServiceName, Version, slogLogger)
	if err != nil {
		slogLogger.Warn("failed to initialize OTel metrics, continuing without export", "error", err)
	}

	meter := otel.Meter(ServiceName)
	m, err := metrics.New(meter)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}
	if err := m.Health.RegisterServiceInfo(meter, ServiceName, Version, cfg.Env); err != nil {
		slogLogger.Warn("failed to register service info", "error", err)
	}

	database, err := db.Open(cfg.Database)
	if err != nil {
		return nil, err
	}
	database.AddQueryHook(m.Database.QueryHook())
	if err := m.Database.RegisterDB(database.DB, meter); err != nil {
		slogLogger.Warn("failed to register database pool metrics", "error", err)
	}

	if err := schema.Migrate(ctx, database); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	publisher, brokerCheck := newPublisher(cfg.Messaging, slogLogger)
	events := event.NewEmitter(publisher, slogLogger)

	app := &App{
		config:        cfg,
		router:        chi.NewRouter(),
		logger:        slogLogger,
		db:            database,
		publisher:     publisher,
		metrics:       m,
		meterProvider: meterProvider,
		checks: map[string]health.Check{
			"database": database.PingContext,
		},
	}
	if brokerCheck != nil {
		app.checks["broker"] = brokerCheck
	}

	app.router.Use(chimw.RequestID)
	app.router.Use(chimw.Recoverer)
	app.router.Use(middleware.RequestLogger(slogLogger))
	app.router.Use(middleware.CORS(cfg.Server.CORSOrigins))

	healthHandler := health.NewHandler(app.checks, m)
	healthHandler.RegisterRoutes(app.router)

	studentRepo := student.NewRepository(database)
	subjectRepo := subject.NewRepository(database)

	studentHandler := student.NewHandler(student.NewService(studentRepo, events, slogLogger), slogLogger, m)
	subjectHandler := subject.NewHandler(subject.NewService(subjectRepo, events, slogLogger), slogLogger, m)
	attendanceHandler := attendance.NewHandler(
		attendance.NewService(attendance.NewRepository(database), studentRepo, events, slogLogger),
		slogLogger, m,
	)
	gradeHandler := grade.NewHandler(
		grade.NewService(grade.NewRepository(database), studentRepo, subjectRepo, events, slogLogger),
		slogLogger, m,
	)
	statsHandler := stats.NewHandler(stats.NewService(stats.NewRepository(database), slogLogger, nil), slogLogger, m)

	app.router.Route("/api", func(r chi.Router) {
		studentHandler.RegisterRoutes(r)
		subjectHandler.RegisterRoutes(r)
		attendanceHandler.RegisterRoutes(r)
		gradeHandler.RegisterRoutes(r)
		statsHandler.RegisterRoutes(r)
	})

	slogLogger.Info("application initialized successfully")

	return app, nil
}

func (a *App) Run() error {
	a.server = &http.Server{
		Addr:         fmt.Sprintf(":%s", a.config.Server.Port),
		Handler:      a.router,
		ReadTimeout:  seconds(a.config.Server.ReadTimeout, 15),
		WriteTimeout: seconds(a.config.Server.WriteTimeout, 15),
		IdleTimeout:  seconds(a.config.Server.IdleTimeout, 60),
	}

	a.logger.Info("server starting", "port", a.config.Server.Port)
	if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// StartHealthChecks probes every dependency on a fixed interval so the dependency.up
// gauge stays current between readiness requests. It returns when ctx is done.
func (a *App) StartHealthChecks(ctx context.Context) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		for name, check := range a.checks {
			checkCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
			start := time.Now()
			err := check(checkCtx)
			cancel()

			a.metrics.Health.RecordDependencyCheck(ctx, name, time.Since(start), err)
			if err != nil {
				a.logger.WarnContext(ctx, "dependency check failed", "dependency", name, "error", err)
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("shutting down server")

	var errs []error
	if a.server != nil {
		errs = append(errs, a.server.Shutdown(ctx))
	}
	errs = append(errs, a.publisher.Close())
	errs = append(errs, telemetry.Shutdown(ctx, a.meterProvider, a.logger))
	errs = append(errs, a.db.Close())

	return errors.Join(errs...)
}

func seconds(v, fallback int) time.Duration {
	if v <= 0 {
		v = fallback
	}
	return time.Duration(v) * time.Second
}
