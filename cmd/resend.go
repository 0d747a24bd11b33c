package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/foodregister/regnotify/internal/config"
	"github.com/foodregister/regnotify/internal/dispatch"
	"github.com/foodregister/regnotify/internal/document"
	"github.com/foodregister/regnotify/internal/logger"
	"github.com/foodregister/regnotify/internal/notification"
	"github.com/foodregister/regnotify/internal/service"
	"github.com/foodregister/regnotify/internal/storage"
)

var resendCmd = &cobra.Command{
	Use:   "resend <fsa-id>",
	Short: "Re-dispatch owed notifications for one registration",
	Long:  "Re-drive notification dispatch for a stored registration. Notifications already marked sent are never repeated.",
	Args:  cobra.ExactArgs(1),
	RunE:  runResend,
}

func runResend(cmd *cobra.Command, args []string) error {
	fsaID := args[0]

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.NewWriterLogger(os.Stderr, cfg.SlogLevel())

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
		Logger:    log,
	})

	svc := service.NewRegistrationService(
		registrations, statuses, deliveries, councils,
		engine, service.NewLocalNumberAllocator(), log,
	)

	if err := svc.Resend(cmd.Context(), fsaID); err != nil {
		return fmt.Errorf("resending %q: %w", fsaID, err)
	}

	fmt.Fprintf(os.Stderr, "dispatch re-driven for %s\n", fsaID)
	return nil
}
