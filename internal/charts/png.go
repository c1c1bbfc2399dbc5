package charts

import (
	"bytes"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"sync"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// PNGLibrary renders charts to PNG images with go-chart
type PNGLibrary struct {
	Width  int
	Height int
}

// NewChart creates a chart and renders it once
func (l *PNGLibrary) NewChart(target string, data ChartData, opts ChartOptions) (Chart, error) {
	if opts.Type != "" && opts.Type != "line" {
		return nil, fmt.Errorf("chart %s: unsupported chart type %q", target, opts.Type)
	}

	c := &PNGChart{
		target: target,
		width:  l.Width,
		height: l.Height,
		opts:   opts,
	}
	img, err := c.draw(data)
	if err != nil {
		return nil, err
	}
	c.data, c.png, c.revision = data.Clone(), img, 1
	return c, nil
}

// PNGChart is a chart whose latest rendering is kept as PNG bytes.  The
// revision increments on every redraw.
type PNGChart struct {
	mu       sync.RWMutex
	target   string
	width    int
	height   int
	opts     ChartOptions
	data     ChartData
	png      []byte
	revision uint64
}

// Update mutates a copy of the chart data and redraws it.  The new data and
// rendering replace the current ones only when the redraw succeeds.
func (c *PNGChart) Update(mutate func(*ChartData)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := c.data.Clone()
	mutate(&next)
	img, err := c.draw(next)
	if err != nil {
		return err
	}
	c.data, c.png = next, img
	c.revision++
	return nil
}

// Data returns a copy of the chart's current data
func (c *PNGChart) Data() ChartData {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.data.Clone()
}

// Options returns the options the chart was created with
func (c *PNGChart) Options() ChartOptions {
	return c.opts
}

// PNG returns the latest rendering.  ok is false while the chart has no points.
func (c *PNGChart) PNG() ([]byte, uint64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.png == nil {
		return nil, c.revision, false
	}
	return c.png, c.revision, true
}

// draw renders data with the chart's fixed settings.  A nil image means
// there is nothing to plot.
func (c *PNGChart) draw(data ChartData) ([]byte, error) {
	n := len(data.Labels)
	if n == 0 || len(data.Datasets) == 0 {
		return nil, nil
	}

	xs := make([]float64, n)
	ticks := make([]chart.Tick, 0, n+1)
	for i, label := range data.Labels {
		xs[i] = float64(i + 1)
		ticks = append(ticks, chart.Tick{Value: xs[i], Label: label})
	}
	// go-chart needs a non-zero range, so a single label gets a blank second tick
	minX, maxX := 0.5, float64(n)+0.5
	if n == 1 {
		maxX = 2.0
		ticks = append(ticks, chart.Tick{Value: 2, Label: ""})
	}

	minY, maxY := math.MaxFloat64, -math.MaxFloat64
	var series []chart.Series
	for _, ds := range data.Datasets {
		if len(ds.Data) == 0 {
			continue
		}
		color, err := ParseColor(ds.BorderColor)
		if err != nil {
			return nil, fmt.Errorf("chart %s: dataset %s: %w", c.target, ds.Label, err)
		}
		style := chart.Style{
			StrokeColor: color,
			StrokeWidth: 2,
			DotColor:    color,
			DotWidth:    3,
		}
		if ds.Fill {
			if bg, err := ParseColor(ds.BackgroundColor); err == nil {
				style.FillColor = bg
			}
		}

		dx := xs
		if len(ds.Data) < len(dx) {
			dx = dx[:len(ds.Data)]
		}
		dy := ds.Data[:len(dx)]
		for _, v := range dy {
			minY = math.Min(minY, v)
			maxY = math.Max(maxY, v)
		}
		if len(dx) == 1 {
			dx = []float64{dx[0], dx[0] + 1}
			dy = []float64{dy[0], dy[0]}
		}
		series = append(series, chart.ContinuousSeries{Name: ds.Label, XValues: dx, YValues: dy, Style: style})
	}
	if len(series) == 0 {
		return nil, nil
	}

	if c.opts.BeginAtZero {
		minY = math.Min(minY, 0)
	}
	if maxY <= minY {
		minY, maxY = minY-1, maxY+1
	}

	ch := chart.Chart{
		Title:      c.opts.Title,
		Width:      c.width,
		Height:     c.height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 12, Bottom: 28}},
		XAxis:      chart.XAxis{Ticks: ticks, Range: &chart.ContinuousRange{Min: minX, Max: maxX}},
		YAxis:      chart.YAxis{Name: c.opts.YAxisTitle, Range: &chart.ContinuousRange{Min: minY, Max: maxY}},
		Series:     series,
	}
	if c.opts.LegendPosition == "top" {
		ch.Elements = []chart.Renderable{chart.LegendThin(&ch)}
	} else {
		ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	}

	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart %s: render: %w", c.target, err)
	}
	return buf.Bytes(), nil
}

var rgbPattern = regexp.MustCompile(`^rgba?\(\s*(\d{1,3})\s*,\s*(\d{1,3})\s*,\s*(\d{1,3})\s*(?:,\s*([0-9.]+)\s*)?\)$`)

// ParseColor parses "rgb(r, g, b)", "rgba(r, g, b, a)", "#rrggbb" or
// "#rrggbbaa" into a drawing color
func ParseColor(s string) (drawing.Color, error) {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "#") {
		hex := s[1:]
		if len(hex) != 6 && len(hex) != 8 {
			return drawing.Color{}, fmt.Errorf("invalid color %q", s)
		}
		v, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return drawing.Color{}, fmt.Errorf("invalid color %q", s)
		}
		if len(hex) == 6 {
			return drawing.Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
		}
		return drawing.Color{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
	}

	m := rgbPattern.FindStringSubmatch(s)
	if m == nil {
		return drawing.Color{}, fmt.Errorf("invalid color %q", s)
	}
	var rgb [3]uint8
	for i := 0; i < 3; i++ {
		n, _ := strconv.Atoi(m[i+1])
		if n > 255 {
			return drawing.Color{}, fmt.Errorf("invalid color %q", s)
		}
		rgb[i] = uint8(n)
	}
	alpha := uint8(255)
	if m[4] != "" {
		a, err := strconv.ParseFloat(m[4], 64)
		if err != nil || a < 0 || a > 1 {
			return drawing.Color{}, fmt.Errorf("invalid color %q", s)
		}
		alpha = uint8(math.Round(a * 255))
	}
	return drawing.Color{R: rgb[0], G: rgb[1], B: rgb[2], A: alpha}, nil
}

// Translucent returns color with its alpha channel set to 0x33, written as
// "#rrggbbaa"
func Translucent(color string) string {
	c, err := ParseColor(color)
	if err != nil {
		return color
	}
	return fmt.Sprintf("#%02x%02x%02x33", c.R, c.G, c.B)
}
