package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/divradar/backend/internal/api"
	"github.com/divradar/backend/internal/api/handlers"
	"github.com/divradar/backend/internal/scheduler"
	"github.com/divradar/backend/internal/scheduler/jobs"
)

// apiCmd starts the operator API with the scheduler running alongside
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the operator API server and scheduler",
	Long: `Starts the HTTP API server with all batch jobs scheduled.

Endpoints:
  GET  /health                       - Health check
  GET  /api/jobs                     - List registered jobs
  GET  /api/jobs/stats               - Per-job run statistics
  GET  /api/jobs/{name}/history      - Recent runs for a job
  POST /api/jobs/{name}/run          - Trigger a job now (?silent=true)

Example:
  go run ./cmd/divradar api
  go run ./cmd/divradar api --port 8090`,
	RunE: runAPIServer,
}

var apiPort string

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (overrides PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if apiPort != "" {
		a.cfg.Port = apiPort
	}

	sched := scheduler.New(a.log)
	for _, job := range jobs.All(a.deps) {
		if err := sched.AddJob(job); err != nil {
			return fmt.Errorf("register job: %w", err)
		}
	}
	sched.Start()
	defer sched.Stop()

	jobHandler := handlers.NewJobHandler(sched, a.log)
	healthHandler := handlers.NewHealthHandler(a.db, a.log)
	router := api.NewRouter(jobHandler, healthHandler, a.log)
	server := api.New(a.cfg, a.log, router)

	go func() {
		if err := server.Start(); err != nil {
			a.log.WithError(err).Fatal("Failed to start server")
		}
	}()

	fmt.Printf("Server running on http://localhost:%s\n", a.cfg.Port)
	fmt.Println("Press Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	return nil
}
