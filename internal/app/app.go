// Package app wires the refresh pipeline and the display server together.
package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/chrissnell/canalwatch/internal/charts"
	"github.com/chrissnell/canalwatch/internal/controllers"
	dashctl "github.com/chrissnell/canalwatch/internal/controllers/dashboard"
	"github.com/chrissnell/canalwatch/internal/controllers/restserver"
	ui "github.com/chrissnell/canalwatch/internal/dashboard"
	"github.com/chrissnell/canalwatch/internal/locations"
	"github.com/chrissnell/canalwatch/internal/log"
	"github.com/chrissnell/canalwatch/internal/monitor"
	"github.com/chrissnell/canalwatch/internal/scheduler"
	"github.com/chrissnell/canalwatch/pkg/config"
	"go.uber.org/zap"
)

// App represents the main application
type App struct {
	config *config.ConfigData
	logger *zap.SugaredLogger
}

// New creates a new application instance
func New(cfg *config.ConfigData, logger *zap.SugaredLogger) *App {
	return &App{
		config: cfg,
		logger: logger,
	}
}

// Run starts the application and blocks until shutdown
func (a *App) Run(ctx context.Context) error {
	var wg sync.WaitGroup

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cfg := a.config
	tz := cfg.Charts.DisplayLocation()

	client := monitor.NewClient(cfg.Service.BaseURL, controllers.NewHTTPClient(cfg.Service.Timeout))

	page := ui.NewPage(cfg.Locations)
	renderer := ui.NewRenderer(page, locations.NewResolver(cfg.Locations), tz)

	chartManager := charts.NewManager(charts.ManagerConfig{
		Locations:       cfg.Locations,
		Limit:           cfg.Service.HistoryLimit,
		Timezone:        tz,
		StrictAlignment: cfg.Charts.StrictAlignment,
	}, client, &charts.PNGLibrary{Width: cfg.Charts.Width, Height: cfg.Charts.Height}, a.logger)

	dashboard := dashctl.New(client, client, chartManager, renderer, a.logger)
	sched := scheduler.New(cfg.Refresh.Interval, dashboard.Run, a.logger)

	server, err := restserver.NewController(ctx, &wg, cfg.Web, cfg.Refresh.Interval, restserver.Sources{
		Page:      page,
		Charts:    chartManager,
		Scheduler: sched,
		Cycles:    dashboard,
		Locations: cfg.Locations,
	}, a.logger)
	if err != nil {
		return fmt.Errorf("error creating display server: %w", err)
	}
	if err := server.StartController(); err != nil {
		return fmt.Errorf("error starting display server: %w", err)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		sched.Run(ctx)
	}()

	log.Infof("Application started; polling %s every %v", cfg.Service.BaseURL, cfg.Refresh.Interval)

	// Set up signal handling
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)

	// Wait for shutdown signal
	select {
	case <-sigs:
		log.Info("shutdown signal received, initiating graceful shutdown...")
	case <-ctx.Done():
		log.Info("context cancelled, shutting down...")
	}

	// Cancel context to signal all goroutines to stop
	cancel()

	// Wait for all workers to terminate
	log.Info("waiting for all workers to terminate...")
	wg.Wait()
	log.Info("shutdown complete")

	return nil
}
