// Package charts keeps the two rolling history charts of the dashboard.
//
// Charts are created through a Library the first time history arrives and
// are mutated in place afterwards; a chart object is never recreated.
package charts

// Dataset is one location's series on a chart
type Dataset struct {
	Label           string    `json:"label"`
	Data            []float64 `json:"data"`
	BorderColor     string    `json:"borderColor"`
	BackgroundColor string    `json:"backgroundColor"`
	Tension         float64   `json:"tension"`
	Fill            bool      `json:"fill"`
}

// ChartData is the label sequence shared by every dataset plus the datasets
type ChartData struct {
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

// Clone returns a deep copy of d
func (d ChartData) Clone() ChartData {
	c := ChartData{
		Labels:   append([]string(nil), d.Labels...),
		Datasets: make([]Dataset, len(d.Datasets)),
	}
	for i, ds := range d.Datasets {
		ds.Data = append([]float64(nil), ds.Data...)
		c.Datasets[i] = ds
	}
	return c
}

// ChartOptions are fixed at creation
type ChartOptions struct {
	Type           string `json:"type"`
	Title          string `json:"title"`
	LegendPosition string `json:"legendPosition"`
	YAxisTitle     string `json:"yAxisTitle"`
	BeginAtZero    bool   `json:"beginAtZero"`
}

// Library creates charts bound to a display target
type Library interface {
	NewChart(target string, data ChartData, opts ChartOptions) (Chart, error)
}

// Chart is a live chart.  Update mutates the chart's data under the chart's
// own lock and redraws it.
type Chart interface {
	Update(mutate func(*ChartData)) error
	Data() ChartData
}

// Image is implemented by charts that can hand out their latest rendering
type Image interface {
	PNG() (png []byte, revision uint64, ok bool)
}
