package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"planner/internal/cache"
	"planner/internal/config"
	"planner/internal/controller"
	"planner/internal/database"
	"planner/internal/queue"
	"planner/internal/repository"
	"planner/internal/routes"
	"planner/internal/service"
	"planner/internal/worker"
	"planner/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:          "planner",
	Short:        "Task, project and calendar planning service",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

func main() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the cache invalidation worker",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	})
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openStore connects to the configured database and applies migrations.
func openStore(ctx context.Context) (*repository.Store, error) {
	db := database.DB(ctx)
	if db == nil {
		return nil, fmt.Errorf("database not available (check DB_DRIVER and DATABASE_URL)")
	}
	if err := database.Migrate(ctx, db); err != nil {
		return nil, fmt.Errorf("schema migration failed: %w", err)
	}
	return repository.New(db), nil
}

func serve(ctx context.Context) error {
	cfg := config.Get()
	store, err := openStore(ctx)
	if err != nil {
		return err
	}

	// Redis and Kafka are optional; without them lists are read straight from the database.
	items := cache.Default(ctx)
	queue.EnsureTopic(ctx)
	notifier := queue.DefaultNotifier(ctx)

	stopWorker := startWorker(ctx, worker.Run)
	defer stopWorker()

	h := controller.New(service.NewItems(store, notifier), service.NewCalendar(store, notifier), store, items)
	server := &http.Server{
		Addr: ":" + cfg.HTTPPort,
		Handler: routes.Router(h, routes.Options{
			Users:   service.NewUsers(store, cfg.AutoProvisionUsers),
			Secret:  config.GetJWTSecret,
			Metrics: cfg.MetricsEnabled,
		}),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		logger.Info(ctx, "HTTP server listening", "port", cfg.HTTPPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errc <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errc:
		return fmt.Errorf("server error: %w", err)
	}
	logger.Info(ctx, "Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "Server shutdown error", "error", err)
	}
	stopWorker()
	logger.Info(ctx, "Server stopped")
	return nil
}

// startWorker runs fn in its own goroutine. The returned stop cancels fn's
// context and blocks until fn has returned; calling it again is a no-op.
func startWorker(ctx context.Context, fn func(context.Context)) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		fn(ctx)
	}()
	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			<-done
		})
	}
}
