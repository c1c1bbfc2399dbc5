// Package restserver serves the dashboard page, its JSON/msgpack API, the
// rendered chart images and the service's own logs and health.
package restserver

import (
	"context"
	"fmt"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"github.com/chrissnell/canalwatch/internal/charts"
	"github.com/chrissnell/canalwatch/internal/constants"
	dashctl "github.com/chrissnell/canalwatch/internal/controllers/dashboard"
	ui "github.com/chrissnell/canalwatch/internal/dashboard"
	"github.com/chrissnell/canalwatch/internal/log"
	"github.com/chrissnell/canalwatch/internal/scheduler"
	"github.com/chrissnell/canalwatch/internal/types"
	"github.com/chrissnell/canalwatch/pkg/config"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// ChartSource hands out chart data and renderings
type ChartSource interface {
	Snapshot() map[string]charts.ChartData
	Image(target string) ([]byte, uint64, bool)
}

// StatsSource reports scheduler counters
type StatsSource interface {
	Stats() scheduler.Stats
}

// ReportSource reports the most recent refresh cycle
type ReportSource interface {
	LastReport() (dashctl.Report, bool)
}

// Sources are the pieces of display state the server reads
type Sources struct {
	Page      *ui.Page
	Charts    ChartSource
	Scheduler StatsSource
	Cycles    ReportSource
	Locations []types.Location
}

// Controller represents the display server controller
type Controller struct {
	ctx             context.Context
	wg              *sync.WaitGroup
	webConfig       config.WebData
	refreshInterval time.Duration
	sources         Sources
	Server          http.Server
	FS              fs.FS
	logger          *zap.SugaredLogger
	handlers        *Handlers
}

// NewController creates a new display server controller
func NewController(ctx context.Context, wg *sync.WaitGroup, wc config.WebData, refreshInterval time.Duration, sources Sources, logger *zap.SugaredLogger) (*Controller, error) {
	if sources.Page == nil {
		return nil, fmt.Errorf("display server needs a page to serve")
	}

	// If a ListenAddr was not provided, listen on all interfaces
	if wc.ListenAddr == "" {
		logger.Info("web.listen_addr not provided; defaulting to 0.0.0.0 (all interfaces)")
		wc.ListenAddr = "0.0.0.0"
	}

	// Set default HTTP port if not specified
	if wc.Port == 0 {
		logger.Infof("web.port not provided; defaulting to %d", constants.DefaultHTTPPort)
		wc.Port = constants.DefaultHTTPPort
	}

	if refreshInterval <= 0 {
		refreshInterval = constants.RefreshInterval
	}

	ctrl := &Controller{
		ctx:             ctx,
		wg:              wg,
		webConfig:       wc,
		refreshInterval: refreshInterval,
		sources:         sources,
		FS:              GetAssets(),
		logger:          logger,
	}

	ctrl.handlers = NewHandlers(ctrl)

	ctrl.Server.Addr = fmt.Sprintf("%v:%v", wc.ListenAddr, wc.Port)
	ctrl.Server.Handler = ctrl.setupRouter()
	ctrl.Server.ReadHeaderTimeout = 10 * time.Second

	return ctrl, nil
}

// StartController starts the display server
func (c *Controller) StartController() error {
	log.Infof("Starting display server on %s...", c.Server.Addr)
	c.wg.Add(1)

	go func() {
		defer c.wg.Done()

		if c.webConfig.TLSCertPath != "" && c.webConfig.TLSKeyPath != "" {
			if err := c.Server.ListenAndServeTLS(c.webConfig.TLSCertPath, c.webConfig.TLSKeyPath); err != http.ErrServerClosed {
				log.Errorf("display server error: %v", err)
			}
		} else {
			if err := c.Server.ListenAndServe(); err != http.ErrServerClosed {
				log.Errorf("display server error: %v", err)
			}
		}
	}()

	go func() {
		<-c.ctx.Done()
		log.Info("Shutting down the display server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		c.Server.Shutdown(shutdownCtx)
	}()

	return nil
}

// setupRouter configures the HTTP router with all endpoints
func (c *Controller) setupRouter() *mux.Router {
	router := mux.NewRouter()
	router.Use(c.requestLogMiddleware)

	// API endpoints
	router.HandleFunc("/api/dashboard", c.handlers.GetDashboard).Methods(http.MethodGet)
	router.HandleFunc("/api/logs", c.handlers.GetLogs).Methods(http.MethodGet)
	router.HandleFunc("/charts/{name}.png", c.handlers.GetChartImage).Methods(http.MethodGet)
	router.HandleFunc("/healthz", c.handlers.GetHealth).Methods(http.MethodGet)

	// Template endpoint
	router.HandleFunc("/", c.handlers.ServeIndexTemplate).Methods(http.MethodGet)

	// Static file serving
	router.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(http.FS(c.FS))))

	return router
}

// statusRecorder captures the status and size of a response for the request log
type statusRecorder struct {
	http.ResponseWriter
	status int
	size   int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.size += n
	return n, err
}

// requestLogMiddleware records every request in the HTTP log buffer
func (c *Controller) requestLogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}

		next.ServeHTTP(rec, r)

		if rec.status == 0 {
			rec.status = http.StatusOK
		}
		log.LogHTTPRequest(r.Method, r.URL.Path, rec.status, time.Since(start), rec.size, r.RemoteAddr, r.UserAgent())
	})
}
