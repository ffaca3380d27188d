package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dayflow-hq/dayflow/internal/auth"
	authpg "github.com/dayflow-hq/dayflow/internal/auth/postgres"
	"github.com/dayflow-hq/dayflow/internal/core/events"
	"github.com/dayflow-hq/dayflow/internal/notification"
	"github.com/dayflow-hq/dayflow/pkg/logger"
	"github.com/spf13/cobra"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start worker processes",
	Long:  `Start and manage background workers like the notification dispatcher.`,
}

var notificationWorkerCmd = &cobra.Command{
	Use:   "notifications",
	Short: "Start the notification worker",
	Long:  `Start a standalone event bus with the email notifier subscribed`,
	Run: func(cmd *cobra.Command, args []string) {
		startNotificationWorker()
	},
}

// reviewerDirectory resolves HR and Admin recipients straight from storage,
// without pulling in the whole auth service.
type reviewerDirectory struct {
	repo *authpg.Repository
}

func (d *reviewerDirectory) ActiveReviewers() ([]*auth.User, error) {
	return d.repo.FindActiveByRoles([]auth.Role{auth.RoleHR, auth.RoleAdmin})
}

func startNotificationWorker() {
	config, err := loadConfig(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(os.Getenv("APP_ENV"))
	lg := logger.LoggerWrapper()

	db, err := gorm.Open(gormpostgres.Open(config.Database.Source), &gorm.Config{})
	if err != nil {
		lg.Error("failed to open database", "error", err)
		os.Exit(1)
	}

	bus := events.NewEventBus(lg)
	sender := notification.NewSender(config.SMTP, lg)
	notifier := notification.NewNotifier(sender, &reviewerDirectory{repo: authpg.NewRepository(db)}, config.Server.BaseURL, lg)
	notifier.Register(bus)

	lg.Info("notification worker started, waiting for events")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	lg.Info("received signal, shutting down notification worker", "signal", sig)
}

func init() {
	workerCmd.AddCommand(notificationWorkerCmd)
}
