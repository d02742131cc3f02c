package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"github.com/burenotti/hoops_backend/internal/adapter/api"
	"github.com/burenotti/hoops_backend/internal/adapter/i18n"
	"github.com/burenotti/hoops_backend/internal/adapter/storage"
	"github.com/burenotti/hoops_backend/internal/adapter/telemetry"
	"github.com/burenotti/hoops_backend/internal/app/auth"
	enrollmentservice "github.com/burenotti/hoops_backend/internal/app/enrollment"
	groupservice "github.com/burenotti/hoops_backend/internal/app/group"
	measurementservice "github.com/burenotti/hoops_backend/internal/app/measurement"
	"github.com/burenotti/hoops_backend/internal/app/messagebus"
	profileapp "github.com/burenotti/hoops_backend/internal/app/profile"
	trialservice "github.com/burenotti/hoops_backend/internal/app/trial"
	"github.com/burenotti/hoops_backend/internal/config"
	"github.com/burenotti/hoops_backend/internal/domain"
	"github.com/burenotti/hoops_backend/internal/domain/enrollment"
	"github.com/burenotti/hoops_backend/internal/domain/group"
	"github.com/burenotti/hoops_backend/internal/domain/measurement"
	"github.com/burenotti/hoops_backend/internal/domain/profile"
	"github.com/burenotti/hoops_backend/internal/domain/trial"
	"github.com/burenotti/hoops_backend/internal/domain/user"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/leporo/sqlf"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/crypto/bcrypt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "config/config.yaml", "path to config file")
	flag.Parse()

	cfg := config.MustLoad(configPath)
	logger := initLogger(cfg)

	bus := messagebus.New(logger)
	defer bus.Close()
	registerEventLog(bus, logger)

	sqlf.SetDialect(sqlf.PostgreSQL)

	db, err := sql.Open("pgx", cfg.DB.DSN)
	if err != nil {
		panic("failed to connect database: " + err.Error())
	}
	defer db.Close()

	location, err := cfg.Assessment.Location()
	if err != nil {
		panic(err)
	}
	constraints := cfg.Assessment.Constraints()

	presenter, err := i18n.New(cfg.Assessment.DefaultLocale)
	if err != nil {
		panic("failed to load translations: " + err.Error())
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	submissions := telemetry.NewSubmissions(reg)

	authorizer := &auth.Authorizer{
		Cost:             bcrypt.DefaultCost,
		Secret:           cfg.JWT.Secret,
		AccessTokenTTL:   cfg.JWT.AccessTokenTTL,
		AuthorizationTTL: cfg.JWT.RefreshTokenTTL,
	}

	server := api.NewServer(
		api.Addr(cfg.Server.Host, cfg.Server.Port),
		api.Logger(logger),
		api.DBContext(&storage.DB{DB: db}),
		api.MessageBus(bus),
		api.Presenter(presenter),
		api.MetricsHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})),
		api.AuthService(auth.NewService(authorizer, logger)),
		api.ProfileService(profileapp.New(logger)),
		api.GroupService(groupservice.New(logger)),
		api.EnrollmentService(enrollmentservice.New(logger)),
		api.MeasurementService(measurementservice.New(constraints, location, submissions, logger)),
		api.TrialService(trialservice.New(constraints, location, submissions, logger)),
	)

	ctx := context.Background()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error)

	go func() {
		defer close(errCh)
		errCh <- server.Start()
	}()

	logger.Info("server started",
		"addr", cfg.Server.Host, "port", cfg.Server.Port,
		"timezone", location.String(), "locale", cfg.Assessment.DefaultLocale,
	)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server was not shutdown gracefully", "error", err)
		}
	case err := <-errCh:
		if err != nil {
			if !errors.Is(err, http.ErrServerClosed) {
				logger.Error("server closed with unexpected error", "error", err)
			}
		}
	}
	logger.Info("server shutdown")
}

// registerEventLog records every domain event in the application log.
func registerEventLog(bus *messagebus.MessageBus, logger *slog.Logger) {
	handler := func(event domain.Event) error {
		logger.Info("processed event", "type", event.Type(), "event", event)
		return nil
	}
	for _, eventType := range []string{
		user.EventCreated,
		user.EventLogin,
		user.EventLogout,
		profile.EventAthleteRegistered,
		group.EventCreated,
		enrollment.EventEnrolled,
		enrollment.EventActivated,
		enrollment.EventDeactivated,
		measurement.EventRecorded,
		measurement.EventUpdated,
		trial.EventRecorded,
		trial.EventUpdated,
		trial.EventActiveSet,
	} {
		bus.Register(eventType, handler)
	}
}

func initLogger(cfg *config.Config) *slog.Logger {
	var handler slog.Handler
	switch cfg.App.Env {
	case config.Development:
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			AddSource: true,
			Level:     slog.LevelDebug,
		})
	case config.Production:
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			AddSource: false,
			Level:     slog.LevelInfo,
		})
	default:
		panic("invalid env")
	}

	return slog.New(handler)
}
