package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/divradar/backend/internal/scheduler"
	"github.com/divradar/backend/internal/scheduler/jobs"
)

// schedulerCmd runs only the scheduler, without the HTTP surface
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Run the job scheduler in the foreground",
	Long: `Registers all batch jobs and runs them on their cron schedules
until interrupted. Use the api command instead to also get the
operator HTTP endpoints.

Example:
  go run ./cmd/divradar scheduler`,
	RunE: runScheduler,
}

func init() {
	rootCmd.AddCommand(schedulerCmd)
}

func runScheduler(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	sched := scheduler.New(a.log)
	for _, job := range jobs.All(a.deps) {
		if err := sched.AddJob(job); err != nil {
			return fmt.Errorf("register job: %w", err)
		}
	}

	sched.Start()

	fmt.Println("Scheduler running with jobs:")
	for _, name := range sched.GetAllJobs() {
		fmt.Printf("  - %s\n", name)
	}
	fmt.Println("Press Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	sched.Stop()
	return nil
}
