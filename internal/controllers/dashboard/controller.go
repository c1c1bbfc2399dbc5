// Package dashboard provides the controller that reconciles the monitoring
// service's data into the dashboard page and charts once per refresh cycle.
package dashboard

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/chrissnell/canalwatch/internal/charts"
	"github.com/chrissnell/canalwatch/internal/constants"
	ui "github.com/chrissnell/canalwatch/internal/dashboard"
	"github.com/chrissnell/canalwatch/internal/monitor"
	"github.com/chrissnell/canalwatch/internal/types"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SnapshotFetcher fetches the latest per-location snapshots
type SnapshotFetcher interface {
	Latest(ctx context.Context) monitor.Result[[]types.LocationSnapshot]
}

// StatusFetcher fetches the aggregate canal status
type StatusFetcher interface {
	Status(ctx context.Context) monitor.Result[types.OverallStatus]
}

// ChartRefresher refreshes both history charts
type ChartRefresher interface {
	Refresh(ctx context.Context) error
}

// Report describes one refresh cycle
type Report struct {
	ID            string          `json:"id"`
	Started       time.Time       `json:"started"`
	Duration      time.Duration   `json:"duration"`
	Latest        monitor.Outcome `json:"latest"`
	Status        monitor.Outcome `json:"status"`
	StatusSkipped bool            `json:"statusSkipped"`
	ChartsSkipped bool            `json:"chartsSkipped"`
	RenderError   string          `json:"renderError,omitempty"`
	ChartError    string          `json:"chartError,omitempty"`
}

// Controller runs the refresh cycle
type Controller struct {
	snapshots SnapshotFetcher
	status    StatusFetcher
	charts    ChartRefresher
	renderer  *ui.Renderer
	logger    *zap.SugaredLogger
	now       func() time.Time

	mu   sync.RWMutex
	last *Report
}

// New creates a controller.  It is constructed once at startup and lives for
// the process lifetime.
func New(snapshots SnapshotFetcher, status StatusFetcher, charts ChartRefresher, renderer *ui.Renderer, logger *zap.SugaredLogger) *Controller {
	return &Controller{
		snapshots: snapshots,
		status:    status,
		charts:    charts,
		renderer:  renderer,
		logger:    logger,
		now:       time.Now,
	}
}

// Run is the scheduler callback
func (c *Controller) Run(ctx context.Context) {
	c.RunCycle(ctx)
}

// RunCycle performs one refresh.  The snapshot and status fetches run in
// that order; a transport failure on the snapshot fetch skips the status
// fetch for this cycle.  The chart refresh runs last and only when neither
// fetch hit a transport failure.  Chart failures are only logged.
func (c *Controller) RunCycle(ctx context.Context) Report {
	start := c.now()
	report := Report{
		ID:      uuid.New().String(),
		Started: start,
	}

	latest := c.snapshots.Latest(ctx)
	report.Latest = latest.Outcome

	switch latest.Outcome {
	case monitor.Success:
		if err := c.renderer.RenderSnapshots(latest.Value); err != nil {
			report.RenderError = err.Error()
			c.logger.Warnf("cycle %s: skipped bindings while rendering snapshots: %v", report.ID, err)
		}
		if err := c.renderer.RenderLastUpdate(c.now()); err != nil {
			c.logger.Warnf("cycle %s: %v", report.ID, err)
		}
		c.renderer.ClearError()
	case monitor.SoftFailure:
		c.logger.Debugf("cycle %s: latest data not usable: %v", report.ID, latest.Err)
	case monitor.HardFailure:
		c.logger.Errorf("cycle %s: error fetching latest data: %v", report.ID, latest.Err)
		c.renderer.ShowError(constants.FetchErrorMessage, c.now())
		report.StatusSkipped = true
		report.ChartsSkipped = true
	}

	if !report.StatusSkipped {
		status := c.status.Status(ctx)
		report.Status = status.Outcome

		switch status.Outcome {
		case monitor.Success:
			if err := c.renderer.RenderOverallStatus(status.Value); err != nil {
				c.logger.Warnf("cycle %s: %v", report.ID, err)
			}
		case monitor.SoftFailure:
			c.logger.Debugf("cycle %s: status not usable: %v", report.ID, status.Err)
		case monitor.HardFailure:
			c.logger.Errorf("cycle %s: error fetching status: %v", report.ID, status.Err)
			c.renderer.ShowError(constants.FetchErrorMessage, c.now())
			report.ChartsSkipped = true
		}
	}

	if report.ChartsSkipped {
		c.logger.Debugf("cycle %s: chart refresh skipped after transport failure", report.ID)
	} else if err := c.charts.Refresh(ctx); err != nil {
		report.ChartError = err.Error()
		var herr *charts.HistoryError
		if errors.As(err, &herr) && herr.Outcome == monitor.SoftFailure {
			c.logger.Debugf("cycle %s: charts not updated: %v", report.ID, err)
		} else {
			c.logger.Warnf("cycle %s: charts not updated: %v", report.ID, err)
		}
	}

	report.Duration = c.now().Sub(start)
	c.logger.Debugw("refresh cycle complete",
		"cycle", report.ID,
		"latest", report.Latest.String(),
		"status", report.Status.String(),
		"statusSkipped", report.StatusSkipped,
		"chartsSkipped", report.ChartsSkipped,
		"duration", report.Duration,
	)

	c.mu.Lock()
	c.last = &report
	c.mu.Unlock()

	return report
}

// LastReport returns the report of the most recent cycle
func (c *Controller) LastReport() (Report, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.last == nil {
		return Report{}, false
	}
	return *c.last, true
}
