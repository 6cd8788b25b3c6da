package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/frahmantamala/mastersight/internal/mailer"
	mailerPostgres "github.com/frahmantamala/mastersight/internal/mailer/postgres"
	"github.com/frahmantamala/mastersight/internal/metrics"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start background workers",
	Long:  `Start background workers that run next to (or instead of) the HTTP server's in-process pools.`,
}

var mailWorkerCmd = &cobra.Command{
	Use:   "mail",
	Short: "Start the mail redelivery worker",
	Long:  `Periodically resend mail deliveries left pending or failed below the attempt limit.`,
	Run: func(cmd *cobra.Command, args []string) {
		startMailWorker()
	},
}

var (
	maxWorkers    int
	jobQueueSize  int
	maxAttempts   int
	sweepInterval time.Duration
)

func startMailWorker() {
	cfg, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	log := initLogger(cfg)

	db, err := initDB(cfg.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()
	gdb, err := openGorm(db)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize gorm: %v\n", err)
		os.Exit(1)
	}

	cfg.Mail.Workers = getIntFlag(maxWorkers, cfg.Mail.Workers)
	cfg.Mail.QueueSize = getIntFlag(jobQueueSize, cfg.Mail.QueueSize)
	cfg.Mail.MaxAttempts = getIntFlag(maxAttempts, cfg.Mail.MaxAttempts)

	log.Info("starting mail worker",
		"workers", cfg.Mail.Workers,
		"queue_size", cfg.Mail.QueueSize,
		"max_attempts", cfg.Mail.MaxAttempts,
		"interval", sweepInterval)

	dispatcher, err := startMail(cfg, gdb, nil, metrics.Nop{}, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start mail dispatcher: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	redeliverer := mailer.NewRedeliverer(mailerPostgres.NewDeliveryRepository(gdb), dispatcher,
		sweepInterval, cfg.Mail.MaxAttempts, log)

	log.Info("mail worker is running. Press Ctrl+C to stop.")
	_ = redeliverer.Run(ctx)

	log.Info("shutting down mail worker")
	shutdownDone := make(chan struct{})
	go func() {
		dispatcher.Shutdown()
		close(shutdownDone)
	}()

	select {
	case <-shutdownDone:
		log.Info("mail worker pool shutdown complete")
	case <-time.After(30 * time.Second):
		log.Warn("shutdown timeout reached, forcing exit")
	}
}

func getIntFlag(flagValue, configValue int) int {
	if flagValue > 0 {
		return flagValue
	}
	return configValue
}

func init() {
	mailWorkerCmd.Flags().IntVar(&maxWorkers, "max-workers", 0, "Number of sending workers (overrides config)")
	mailWorkerCmd.Flags().IntVar(&jobQueueSize, "job-queue-size", 0, "Job queue buffer size (overrides config)")
	mailWorkerCmd.Flags().IntVar(&maxAttempts, "max-attempts", 0, "Attempts before a delivery is marked failed (overrides config)")
	mailWorkerCmd.Flags().DurationVar(&sweepInterval, "interval", time.Minute, "How often to look for undelivered mail")

	workerCmd.AddCommand(mailWorkerCmd)
}
