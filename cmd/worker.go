package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/spf13/cobra"

	"github.com/frahmantamala/saas-admin/internal"
	"github.com/frahmantamala/saas-admin/internal/core/events"
	"github.com/frahmantamala/saas-admin/internal/expense"
	expensePostgres "github.com/frahmantamala/saas-admin/internal/expense/postgres"
	"github.com/frahmantamala/saas-admin/internal/notification"
	"github.com/frahmantamala/saas-admin/internal/worker"
	"github.com/frahmantamala/saas-admin/pkg/logger"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start background workers",
	Long:  `Start background workers that run scheduled jobs off the redis queue.`,
}

var notificationWorkerCmd = &cobra.Command{
	Use:   "notifications",
	Short: "Start the expiry digest worker",
	Long:  `Process expiry digest tasks and schedule them on the configured cron.`,
	Run: func(cmd *cobra.Command, args []string) {
		startNotificationWorker()
	},
}

var digestCmd = &cobra.Command{
	Use:   "digest",
	Short: "Enqueue a one-off expiry digest",
	RunE:  enqueueDigest,
}

var (
	workerConcurrency int
	digestDate        string
)

func redisOpts(cfg internal.RedisConfig) (asynq.RedisClientOpt, error) {
	if !cfg.Enabled() {
		return asynq.RedisClientOpt{}, fmt.Errorf("redis.addr is required for workers")
	}
	return asynq.RedisClientOpt{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}, nil
}

func startNotificationWorker() {
	cfg, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	lg := logger.LoggerWrapper()

	opts, err := redisOpts(cfg.Redis)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to configure worker: %v\n", err)
		os.Exit(1)
	}

	gdb, db, err := initDB(cfg.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	// expenses are only read here, nothing is published
	expenses := expense.NewService(expensePostgres.NewExpenseRepository(gdb), events.NewEventBus(lg), lg)
	job := notification.NewDigestJob(notification.NewService(expenses, lg), lg)

	daily, err := notification.NewDigestTask(notification.DigestPayload{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build digest task: %v\n", err)
		os.Exit(1)
	}

	concurrency := getIntFlag(workerConcurrency, cfg.Worker.Concurrency)
	w, err := worker.New(worker.Config{
		RedisOpts:   opts,
		Concurrency: concurrency,
		Logger:      lg,
		Handlers: []worker.TaskHandler{
			{Type: notification.TaskExpiryDigest, Handler: job.Handle},
		},
		Cron: []worker.CronRegistration{
			{Spec: cfg.Worker.DigestCron, Task: daily, Options: []asynq.Option{asynq.Queue(worker.QueueDefault)}},
		},
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build worker: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	lg.Info("notification worker is running. Press Ctrl+C to stop.",
		"concurrency", concurrency,
		"digest_cron", cfg.Worker.DigestCron)
	if err := w.Run(ctx); err != nil {
		lg.Error("worker stopped with error", "error", err)
		os.Exit(1)
	}
}

func enqueueDigest(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	opts, err := redisOpts(cfg.Redis)
	if err != nil {
		return err
	}
	if digestDate != "" {
		if _, err := time.Parse(time.DateOnly, digestDate); err != nil {
			return fmt.Errorf("invalid --date %q: %w", digestDate, err)
		}
	}

	task, err := notification.NewDigestTask(notification.DigestPayload{Date: digestDate})
	if err != nil {
		return err
	}

	client := worker.NewClient(opts)
	defer client.Close()

	info, err := client.Enqueue(cmd.Context(), task)
	if err != nil {
		return fmt.Errorf("enqueue digest: %w", err)
	}
	logger.LoggerWrapper().Info("digest enqueued", "task_id", info.ID, "queue", info.Queue)
	return nil
}

func getIntFlag(flagValue, configValue int) int {
	if flagValue > 0 {
		return flagValue
	}
	return configValue
}

func init() {
	notificationWorkerCmd.Flags().IntVar(&workerConcurrency, "concurrency", 0, "Number of concurrent task handlers (overrides config)")
	digestCmd.Flags().StringVar(&digestDate, "date", "", "day to compute the digest for, YYYY-MM-DD (default today)")

	workerCmd.AddCommand(notificationWorkerCmd)
	workerCmd.AddCommand(digestCmd)
}
