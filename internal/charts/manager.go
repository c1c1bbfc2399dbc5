package charts

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chrissnell/canalwatch/internal/constants"
	"github.com/chrissnell/canalwatch/internal/monitor"
	"github.com/chrissnell/canalwatch/internal/types"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrMisaligned is returned in strict mode when the per-location series of
// one refresh do not share the same timestamps
var ErrMisaligned = errors.New("history series are not aligned")

// HistoryFetcher fetches the most recent points for one location
type HistoryFetcher interface {
	History(ctx context.Context, key string, limit int) monitor.Result[[]types.HistoricalPoint]
}

// HistoryError reports the first location whose history could not be used
type HistoryError struct {
	Key     string
	Outcome monitor.Outcome
	Err     error
}

func (e *HistoryError) Error() string {
	return fmt.Sprintf("history for %s: %s: %v", e.Key, e.Outcome, e.Err)
}

func (e *HistoryError) Unwrap() error {
	return e.Err
}

// ManagerConfig holds the chart manager settings
type ManagerConfig struct {
	Locations       []types.Location
	Limit           int
	Timezone        *time.Location
	StrictAlignment bool
}

// Manager owns the ice thickness and temperature charts.  It is the only
// writer of chart state.
type Manager struct {
	fetcher   HistoryFetcher
	library   Library
	locations []types.Location
	limit     int
	tz        *time.Location
	strict    bool
	logger    *zap.SugaredLogger

	mu     sync.RWMutex
	charts map[string]Chart
}

// NewManager creates a chart manager.  No chart exists until the first
// successful Refresh.
func NewManager(cfg ManagerConfig, fetcher HistoryFetcher, library Library, logger *zap.SugaredLogger) *Manager {
	if cfg.Limit <= 0 {
		cfg.Limit = constants.HistoryLimit
	}
	if cfg.Timezone == nil {
		cfg.Timezone = time.Local
	}
	return &Manager{
		fetcher:   fetcher,
		library:   library,
		locations: cfg.Locations,
		limit:     cfg.Limit,
		tz:        cfg.Timezone,
		strict:    cfg.StrictAlignment,
		logger:    logger,
		charts:    make(map[string]Chart),
	}
}

// Refresh fetches history for every location concurrently and applies it to
// both charts.  Any fetch that does not succeed aborts the refresh before
// either chart is touched.
func (m *Manager) Refresh(ctx context.Context) error {
	if len(m.locations) == 0 {
		return nil
	}

	series := make([][]types.HistoricalPoint, len(m.locations))

	g, gctx := errgroup.WithContext(ctx)
	for i, loc := range m.locations {
		i, loc := i, loc
		g.Go(func() error {
			res := m.fetcher.History(gctx, loc.Key, m.limit)
			if !res.OK() {
				return &HistoryError{Key: loc.Key, Outcome: res.Outcome, Err: res.Err}
			}
			series[i] = res.Value
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if err := m.checkAlignment(series); err != nil {
		if m.strict {
			return err
		}
		m.logger.Warnf("rendering misaligned history: %v", err)
	}

	ice, temp := m.build(series)
	return m.apply(ice, temp)
}

// checkAlignment verifies every series has the first location's timestamps
func (m *Manager) checkAlignment(series [][]types.HistoricalPoint) error {
	first := series[0]
	for i := 1; i < len(series); i++ {
		s := series[i]
		if len(s) != len(first) {
			return fmt.Errorf("%w: %s has %d points, %s has %d", ErrMisaligned,
				m.locations[i].Key, len(s), m.locations[0].Key, len(first))
		}
		for j := range s {
			if !s[j].EventTime.Equal(first[j].EventTime) {
				return fmt.Errorf("%w: %s point %d is at %s, %s is at %s", ErrMisaligned,
					m.locations[i].Key, j, s[j].EventTime.Format(time.RFC3339),
					m.locations[0].Key, first[j].EventTime.Format(time.RFC3339))
			}
		}
	}
	return nil
}

// build turns the fetched series into chart data.  Labels come from the
// first location's timestamps.
func (m *Manager) build(series [][]types.HistoricalPoint) (ice, temp ChartData) {
	labels := make([]string, len(series[0]))
	for i, p := range series[0] {
		labels[i] = p.EventTime.In(m.tz).Format(constants.LabelTimeFormat)
	}
	ice.Labels = labels
	temp.Labels = append([]string(nil), labels...)

	for i, loc := range m.locations {
		iceValues := make([]float64, len(series[i]))
		tempValues := make([]float64, len(series[i]))
		for j, p := range series[i] {
			iceValues[j] = p.AvgIceThickness
			tempValues[j] = p.AvgSurfaceTemperature
		}
		ice.Datasets = append(ice.Datasets, newDataset(loc, iceValues))
		temp.Datasets = append(temp.Datasets, newDataset(loc, tempValues))
	}
	return ice, temp
}

func newDataset(loc types.Location, data []float64) Dataset {
	return Dataset{
		Label:           loc.Name,
		Data:            data,
		BorderColor:     loc.Color,
		BackgroundColor: Translucent(loc.Color),
		Tension:         0.4,
		Fill:            false,
	}
}

var (
	iceOptions = ChartOptions{
		Type:           "line",
		Title:          "Ice Thickness",
		LegendPosition: "top",
		YAxisTitle:     "Ice Thickness (cm)",
		BeginAtZero:    false,
	}
	tempOptions = ChartOptions{
		Type:           "line",
		Title:          "Surface Temperature",
		LegendPosition: "top",
		YAxisTitle:     "Surface Temperature (°C)",
	}
)

// applied records a chart changed by apply so a later failure can undo it
type applied struct {
	target  string
	chart   Chart
	created bool
	prev    ChartData
}

// apply creates each chart on first use and updates it in place afterwards.
// The two charts change together: if the second fails, the first is restored.
func (m *Manager) apply(ice, temp ChartData) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var done []applied
	for _, c := range []struct {
		target string
		data   ChartData
		opts   ChartOptions
	}{
		{constants.IceChartTarget, ice, iceOptions},
		{constants.TempChartTarget, temp, tempOptions},
	} {
		existing, ok := m.charts[c.target]
		if !ok {
			created, err := m.library.NewChart(c.target, c.data, c.opts)
			if err != nil {
				m.rollback(done)
				return fmt.Errorf("create %s: %w", c.target, err)
			}
			m.charts[c.target] = created
			done = append(done, applied{target: c.target, chart: created, created: true})
			continue
		}

		prev := existing.Data()
		next := c.data
		if err := existing.Update(func(d *ChartData) { replaceData(d, next) }); err != nil {
			m.rollback(done)
			return fmt.Errorf("update %s: %w", c.target, err)
		}
		done = append(done, applied{target: c.target, chart: existing, prev: prev})
	}
	return nil
}

// rollback undoes the changes of a failed apply.  Callers hold m.mu, so a
// chart created and removed here is never visible to readers.
func (m *Manager) rollback(done []applied) {
	for _, a := range done {
		if a.created {
			delete(m.charts, a.target)
			continue
		}
		prev := a.prev
		if err := a.chart.Update(func(d *ChartData) { *d = prev }); err != nil {
			m.logger.Warnf("restoring chart %s: %v", a.target, err)
		}
	}
}

// replaceData swaps in new labels and point values, keeping each dataset's
// styling when the dataset set is unchanged
func replaceData(d *ChartData, next ChartData) {
	d.Labels = next.Labels
	if len(d.Datasets) != len(next.Datasets) {
		d.Datasets = next.Datasets
		return
	}
	for i := range d.Datasets {
		d.Datasets[i].Label = next.Datasets[i].Label
		d.Datasets[i].Data = next.Datasets[i].Data
	}
}

// Chart returns the chart bound to target, if it has been created
func (m *Manager) Chart(target string) (Chart, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.charts[target]
	return c, ok
}

// Image returns the latest rendering of the chart bound to target
func (m *Manager) Image(target string) ([]byte, uint64, bool) {
	c, ok := m.Chart(target)
	if !ok {
		return nil, 0, false
	}
	img, ok := c.(Image)
	if !ok {
		return nil, 0, false
	}
	return img.PNG()
}

// Snapshot returns copies of the data of every created chart, keyed by target
func (m *Manager) Snapshot() map[string]ChartData {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]ChartData, len(m.charts))
	for target, c := range m.charts {
		out[target] = c.Data()
	}
	return out
}
