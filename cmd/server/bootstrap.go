package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/voltbridge/voltbridge/internal/api"
	"github.com/voltbridge/voltbridge/internal/app"
	"github.com/voltbridge/voltbridge/internal/app/maintenance"
	iauth "github.com/voltbridge/voltbridge/internal/auth"
	"github.com/voltbridge/voltbridge/internal/database"
	"github.com/voltbridge/voltbridge/internal/notifications"
	"github.com/voltbridge/voltbridge/internal/services"
	"github.com/voltbridge/voltbridge/pkg/logger"
	appmail "github.com/voltbridge/voltbridge/pkg/mail"
)

// application holds the assembled server and its background workers.
type application struct {
	cfg       *app.Config
	db        *gorm.DB
	engine    http.Handler
	scheduler *maintenance.Scheduler
}

// buildApplication wires configuration, storage, services, and the
// HTTP surface together.
func buildApplication(cfg *app.Config) (*application, error) {
	db, err := database.Open(cfg.Database.Storage())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	if err := database.EnsureAdminAccount(db, cfg.Admin.Email, cfg.Admin.Name, cfg.Admin.Password); err != nil {
		return nil, fmt.Errorf("seed admin account: %w", err)
	}

	jwtSvc, err := iauth.NewJWTService(iauth.JWTConfig{
		Secret:         cfg.Auth.JWTSecret,
		Issuer:         cfg.Auth.JWTIssuer,
		AccessTokenTTL: cfg.Auth.AccessTokenTTL,
	})
	if err != nil {
		return nil, err
	}

	var mailer appmail.Mailer
	if cfg.SMTP.Enabled {
		mailer, err = appmail.NewSMTPMailer(appmail.SMTPSettings{
			Enabled:  true,
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
			UseTLS:   cfg.SMTP.UseTLS,
			Timeout:  cfg.SMTP.Timeout,
		})
		if err != nil {
			return nil, fmt.Errorf("configure mailer: %w", err)
		}
	}

	hub := notifications.NewHub()

	notifier, err := services.NewNotificationService(db, hub)
	if err != nil {
		return nil, err
	}
	users, err := services.NewUserService(db, jwtSvc)
	if err != nil {
		return nil, err
	}

	hostRequestOpts := []services.HostRequestOption{
		services.WithHostRequestNotifier(notifier),
		services.WithResubmissionAllowed(cfg.Hosts.AllowResubmissionAfterDenial),
	}
	if mailer != nil {
		hostRequestOpts = append(hostRequestOpts, services.WithHostRequestMailer(mailer))
	}
	hostRequests, err := services.NewHostRequestService(db, hostRequestOpts...)
	if err != nil {
		return nil, err
	}

	chargers, err := services.NewChargerService(db)
	if err != nil {
		return nil, err
	}
	bookings, err := services.NewBookingService(db, services.WithBookingNotifier(notifier))
	if err != nil {
		return nil, err
	}
	reviews, err := services.NewReviewService(db)
	if err != nil {
		return nil, err
	}
	contact, err := services.NewContactService(db, mailer, cfg.Contact.SupportEmail)
	if err != nil {
		return nil, err
	}

	engine, err := api.NewRouter(api.Config{
		RateLimitRequests: cfg.RateLimit.Requests,
		RateLimitWindow:   cfg.RateLimit.Window,
		MetricsEnabled:    cfg.Metrics.Enabled,
	}, api.Dependencies{
		DB:            db,
		JWT:           jwtSvc,
		Hub:           hub,
		Users:         users,
		HostRequests:  hostRequests,
		Chargers:      chargers,
		Bookings:      bookings,
		Reviews:       reviews,
		Notifications: notifier,
		Contact:       contact,
	})
	if err != nil {
		return nil, err
	}

	var scheduler *maintenance.Scheduler
	if cfg.Maintenance.Enabled {
		opts := []maintenance.Option{
			maintenance.WithSchedules(maintenance.Schedules{
				BookingCompletion: cfg.Maintenance.BookingCompletionCron,
				PendingReminder:   cfg.Maintenance.PendingReminderCron,
			}),
			maintenance.WithReminderThreshold(cfg.Maintenance.PendingReminderMinCount),
		}
		if mailer != nil && cfg.Admin.Email != "" {
			opts = append(opts, maintenance.WithReminderMailer(mailer, cfg.Admin.Email))
		}
		scheduler, err = maintenance.NewScheduler(db, bookings, opts...)
		if err != nil {
			return nil, err
		}
	}

	return &application{
		cfg:       cfg,
		db:        db,
		engine:    engine,
		scheduler: scheduler,
	}, nil
}

func run(ctx context.Context, configPath string) error {
	cfg, err := app.LoadConfig(configPath)
	if err != nil {
		return err
	}

	if err := logger.Init(cfg.Log.Level); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	application, err := buildApplication(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if sqlDB, err := application.db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}()

	if application.scheduler != nil {
		if err := application.scheduler.Start(); err != nil {
			return err
		}
		defer application.scheduler.Stop()
	}

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           application.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")

	shutdownTimeout := cfg.Server.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 15 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
