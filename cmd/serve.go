package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/foodregister/regnotify/internal/api"
	"github.com/foodregister/regnotify/internal/config"
	"github.com/foodregister/regnotify/internal/dispatch"
	"github.com/foodregister/regnotify/internal/document"
	"github.com/foodregister/regnotify/internal/eventbus"
	"github.com/foodregister/regnotify/internal/logger"
	"github.com/foodregister/regnotify/internal/metrics"
	"github.com/foodregister/regnotify/internal/notification"
	"github.com/foodregister/regnotify/internal/server"
	"github.com/foodregister/regnotify/internal/service"
	"github.com/foodregister/regnotify/internal/storage"
	"github.com/foodregister/regnotify/internal/sweeper"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server and retry sweeper",
	Long:  "Start the registration API server, the notification dispatch engine and the periodic retry sweeper.",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().Int("port", 0, "HTTP server port (overrides PORT env var)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("port") {
		cfg.Port, _ = cmd.Flags().GetInt("port")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	log, err := logger.NewSystemLogger(cfg.LogDir(), cfg.SlogLevel())
	if err != nil {
		return err
	}

	councils, err := config.LoadCouncilRegister(cfg.CouncilRegisterFile)
	if err != nil {
		return fmt.Errorf("loading council register: %w", err)
	}
	templates, err := config.LoadNotifyTemplates(cfg.TemplatesFile)
	if err != nil {
		return fmt.Errorf("loading notify templates: %w", err)
	}

	db, err := storage.NewSQLiteDB(cfg.DBPath())
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close() //nolint:errcheck

	registrations := storage.NewSQLiteRegistrationStore(db)
	statuses := storage.NewSQLiteStatusStore(db)
	deliveries := storage.NewSQLiteDeliveryLogStore(db)

	bus := eventbus.New(3, log)
	defer bus.Close()
	bus.Subscribe(service.NewDeliveryRecorder(deliveries, log))

	engine := dispatch.NewEngine(dispatch.Config{
		Store: statuses,
		Transport: notification.NewTransport(notification.SMTPConfig{
			Host:       cfg.SMTPHost,
			Port:       cfg.SMTPPort,
			Username:   cfg.SMTPUsername,
			Password:   cfg.SMTPPassword,
			FromAddr:   cfg.SMTPFromAddr,
			Encryption: cfg.SMTPEncryption,
		}, nil),
		Renderer:  document.NewRenderer(),
		Templates: *templates,
		Metrics:   metrics.New(nil),
		Events:    bus,
		Logger:    log,
	})

	svc := service.NewRegistrationService(
		registrations, statuses, deliveries, councils,
		engine, service.NewLocalNumberAllocator(), log,
	)

	if cfg.SweepInterval > 0 {
		sw, err := sweeper.New(sweeper.Config{
			Resender: svc,
			Pending:  statuses,
			Interval: time.Duration(cfg.SweepInterval) * time.Minute,
			Logger:   log,
		})
		if err != nil {
			return fmt.Errorf("creating retry sweeper: %w", err)
		}
		if err := sw.Start(ctx); err != nil {
			return fmt.Errorf("starting retry sweeper: %w", err)
		}
		defer sw.Stop() //nolint:errcheck
	}

	srv := server.New(api.New(svc, log), cfg.Port, log)

	log.Info("regnotify server starting",
		"port", cfg.Port, "councils", len(councils.Slugs()), "data_dir", cfg.DataDir)
	fmt.Fprintf(os.Stderr, "regnotify listening on http://localhost:%d\n", cfg.Port)

	return srv.Run(ctx)
}
