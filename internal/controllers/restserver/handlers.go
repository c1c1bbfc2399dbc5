package restserver

import (
	"fmt"
	htmltemplate "html/template"
	"net/http"
	"strconv"

	"github.com/chrissnell/canalwatch/internal/charts"
	"github.com/chrissnell/canalwatch/internal/constants"
	dashctl "github.com/chrissnell/canalwatch/internal/controllers/dashboard"
	ui "github.com/chrissnell/canalwatch/internal/dashboard"
	"github.com/chrissnell/canalwatch/internal/log"
	"github.com/chrissnell/canalwatch/internal/scheduler"
	"github.com/chrissnell/canalwatch/pkg/responseformat"
	"github.com/gorilla/mux"
)

const defaultLogLimit = 100

// chartImages maps the public chart names onto their display targets
var chartImages = []struct {
	Name   string
	Target string
	Title  string
}{
	{"ice", constants.IceChartTarget, "Ice Thickness (cm)"},
	{"temperature", constants.TempChartTarget, "Surface Temperature (°C)"},
}

// Handlers contains all HTTP handlers for the display server
type Handlers struct {
	controller *Controller
	formatter  *responseformat.Formatter
}

// NewHandlers creates a new handlers instance
func NewHandlers(ctrl *Controller) *Handlers {
	return &Handlers{
		controller: ctrl,
		formatter:  responseformat.NewFormatter(),
	}
}

// DashboardResponse is the body of /api/dashboard
type DashboardResponse struct {
	Elements  map[string]ui.Element       `json:"elements"`
	Notice    *ui.Notice                  `json:"notice,omitempty"`
	Revision  uint64                      `json:"revision"`
	Charts    map[string]charts.ChartData `json:"charts"`
	Locations []LocationInfo              `json:"locations"`
}

// LocationInfo describes one canonical location for API clients
type LocationInfo struct {
	Key   string `json:"key"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// HealthResponse is the body of /healthz
type HealthResponse struct {
	Status    string           `json:"status"`
	Version   string           `json:"version"`
	Scheduler *scheduler.Stats `json:"scheduler,omitempty"`
	LastCycle *dashctl.Report  `json:"lastCycle,omitempty"`
}

// GetDashboard returns the page bindings, the notice and the chart data
func (h *Handlers) GetDashboard(w http.ResponseWriter, req *http.Request) {
	src := h.controller.sources
	state := src.Page.Snapshot()

	resp := DashboardResponse{
		Elements: state.Elements,
		Notice:   state.Notice,
		Revision: state.Revision,
		Charts:   map[string]charts.ChartData{},
	}
	if src.Charts != nil {
		resp.Charts = src.Charts.Snapshot()
	}
	for _, loc := range src.Locations {
		resp.Locations = append(resp.Locations, LocationInfo{Key: loc.Key, Name: loc.Name, Color: loc.Color})
	}

	if err := h.formatter.WriteResponse(w, req, resp, map[string]string{"Cache-Control": "no-cache"}); err != nil {
		log.Errorf("error writing dashboard response: %v", err)
	}
}

// GetChartImage serves the latest rendering of a chart as PNG
func (h *Handlers) GetChartImage(w http.ResponseWriter, req *http.Request) {
	name := mux.Vars(req)["name"]

	target := ""
	for _, c := range chartImages {
		if c.Name == name {
			target = c.Target
		}
	}
	if target == "" {
		http.Error(w, "unknown chart", http.StatusNotFound)
		return
	}

	if h.controller.sources.Charts == nil {
		http.Error(w, "chart not available yet", http.StatusNotFound)
		return
	}
	png, revision, ok := h.controller.sources.Charts.Image(target)
	if !ok {
		http.Error(w, "chart not available yet", http.StatusNotFound)
		return
	}

	etag := fmt.Sprintf(`"%s-%d"`, name, revision)
	if req.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("ETag", etag)
	w.Write(png)
}

// GetLogs returns recent application log entries, or request logs with type=http
func (h *Handlers) GetLogs(w http.ResponseWriter, req *http.Request) {
	limit := defaultLogLimit
	if l := req.URL.Query().Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n <= 0 {
			h.formatter.WriteError(w, req, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	buffer := log.GetLogBuffer()
	if req.URL.Query().Get("type") == "http" {
		buffer = log.GetHTTPLogBuffer()
	}

	resp := map[string]any{
		"logs":  buffer.GetEntries(limit),
		"total": buffer.Len(),
	}
	if err := h.formatter.WriteResponse(w, req, resp, nil); err != nil {
		log.Errorf("error writing log response: %v", err)
	}
}

// GetHealth reports scheduler counters and the last cycle
func (h *Handlers) GetHealth(w http.ResponseWriter, req *http.Request) {
	src := h.controller.sources
	resp := HealthResponse{
		Status:  "ok",
		Version: constants.Version,
	}
	if src.Scheduler != nil {
		st := src.Scheduler.Stats()
		resp.Scheduler = &st
	}
	if src.Cycles != nil {
		if r, ok := src.Cycles.LastReport(); ok {
			resp.LastCycle = &r
		}
	}

	if err := h.formatter.WriteResponse(w, req, resp, nil); err != nil {
		log.Errorf("error writing health response: %v", err)
	}
}

type cardView struct {
	Key    string
	Name   string
	Ice    string
	Temp   string
	Snow   string
	Status ui.Element
}

type chartView struct {
	Name     string
	Target   string
	Title    string
	Ready    bool
	Revision uint64
}

// ServeIndexTemplate renders the dashboard page
func (h *Handlers) ServeIndexTemplate(w http.ResponseWriter, req *http.Request) {
	view, err := htmltemplate.New("index.html.tmpl").ParseFS(h.controller.FS, "index.html.tmpl")
	if err != nil {
		log.Errorf("error parsing index template: %v", err)
		http.Error(w, "template not found", http.StatusInternalServerError)
		return
	}

	src := h.controller.sources
	state := src.Page.Snapshot()
	text := func(id string) string {
		return state.Elements[id].Text
	}

	var cards []cardView
	for _, loc := range src.Locations {
		cards = append(cards, cardView{
			Key:    loc.Key,
			Name:   loc.Name,
			Ice:    text(constants.BindingID(constants.IcePrefix, loc.Key)),
			Temp:   text(constants.BindingID(constants.TempPrefix, loc.Key)),
			Snow:   text(constants.BindingID(constants.SnowPrefix, loc.Key)),
			Status: state.Elements[constants.BindingID(constants.StatusPrefix, loc.Key)],
		})
	}

	var chartViews []chartView
	for _, c := range chartImages {
		cv := chartView{Name: c.Name, Target: c.Target, Title: c.Title}
		if src.Charts != nil {
			_, cv.Revision, cv.Ready = src.Charts.Image(c.Target)
		}
		chartViews = append(chartViews, cv)
	}

	templateData := struct {
		PageTitle      string
		Version        string
		RefreshSeconds int
		Overall        ui.Element
		LastUpdate     string
		Notice         *ui.Notice
		Cards          []cardView
		Charts         []chartView
	}{
		PageTitle:      h.controller.webConfig.PageTitle,
		Version:        constants.Version,
		RefreshSeconds: int(h.controller.refreshInterval.Seconds()),
		Overall:        state.Elements[constants.OverallStatusID],
		LastUpdate:     text(constants.LastUpdateID),
		Notice:         state.Notice,
		Cards:          cards,
		Charts:         chartViews,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := view.Execute(w, templateData); err != nil {
		log.Errorf("error executing index template: %v", err)
	}
}
