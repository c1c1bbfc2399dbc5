package main

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/chrissnell/canalwatch/internal/types"
)

// Safety statuses in increasing order of severity
const (
	StatusSafe    = "Safe"
	StatusCaution = "Caution"
	StatusUnsafe  = "Unsafe"
)

var severity = map[string]int{StatusSafe: 0, StatusCaution: 1, StatusUnsafe: 2}

// Classify returns the safety status for one location's measurements
func Classify(iceCM, surfaceTempC float64) string {
	switch {
	case iceCM >= 30 && surfaceTempC <= -2:
		return StatusSafe
	case iceCM >= 25:
		return StatusCaution
	default:
		return StatusUnsafe
	}
}

// Worst returns the most severe of the given statuses
func Worst(statuses ...string) string {
	worst := StatusSafe
	for _, s := range statuses {
		if severity[s] > severity[worst] {
			worst = s
		}
	}
	return worst
}

type reading struct {
	at   time.Time
	ice  float64
	temp float64
	snow float64
}

type series struct {
	location types.Location
	points   []reading
}

// Generator produces a random walk of readings for each location, one
// reading per location per Advance.  All locations share timestamps.
type Generator struct {
	mu      sync.RWMutex
	rng     *rand.Rand
	series  []*series
	retain  int
	withIDs bool
}

// NewGenerator seeds every location with backfill readings spaced step apart ending at now
func NewGenerator(locations []types.Location, backfill, retain int, step time.Duration, now time.Time, seed int64, withIDs bool) *Generator {
	g := &Generator{
		rng:     rand.New(rand.NewSource(seed)),
		retain:  retain,
		withIDs: withIDs,
	}

	for i, loc := range locations {
		s := &series{location: loc}
		r := reading{
			ice:  28 + float64(i)*2 + g.rng.Float64()*4,
			temp: -4 + g.rng.Float64()*3,
			snow: g.rng.Float64() * 5,
		}
		for j := backfill - 1; j >= 0; j-- {
			r = g.walk(r)
			r.at = now.Add(-time.Duration(j) * step)
			s.points = append(s.points, r)
		}
		g.series = append(g.series, s)
	}
	return g
}

func (g *Generator) walk(r reading) reading {
	r.ice = clamp(r.ice+g.rng.NormFloat64()*0.4, 10, 45)
	r.temp = clamp(r.temp+g.rng.NormFloat64()*0.3, -20, 5)
	r.snow = clamp(r.snow+g.rng.NormFloat64()*0.5, 0, 30)
	return r
}

// Advance appends one reading at time at to every location
func (g *Generator) Advance(at time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, s := range g.series {
		var last reading
		if len(s.points) > 0 {
			last = s.points[len(s.points)-1]
		}
		next := g.walk(last)
		next.at = at
		s.points = append(s.points, next)
		if g.retain > 0 && len(s.points) > g.retain {
			s.points = s.points[len(s.points)-g.retain:]
		}
	}
}

// Latest returns the newest reading of every location
func (g *Generator) Latest() []types.LocationSnapshot {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var out []types.LocationSnapshot
	for _, s := range g.series {
		if len(s.points) == 0 {
			continue
		}
		r := s.points[len(s.points)-1]
		ice, temp := round2(r.ice), round2(r.temp)
		snap := types.LocationSnapshot{
			Location:              s.location.Name,
			AvgIceThickness:       ice,
			AvgSurfaceTemperature: temp,
			MaxSnowAccumulation:   round2(r.snow),
			SafetyStatus:          Classify(ice, temp),
		}
		if g.withIDs {
			snap.LocationID = s.location.Key
		}
		out = append(out, snap)
	}
	return out
}

// Overall returns the worst status across all locations
func (g *Generator) Overall() types.OverallStatus {
	var statuses []string
	for _, s := range g.Latest() {
		statuses = append(statuses, s.SafetyStatus)
	}
	return types.OverallStatus(Worst(statuses...))
}

// History returns up to limit of the newest readings for key, oldest first
func (g *Generator) History(key string, limit int) ([]types.HistoricalPoint, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	for _, s := range g.series {
		if s.location.Key != key {
			continue
		}
		points := s.points
		if limit > 0 && len(points) > limit {
			points = points[len(points)-limit:]
		}
		out := make([]types.HistoricalPoint, len(points))
		for i, r := range points {
			out[i] = types.HistoricalPoint{
				EventTime:             r.at.UTC(),
				AvgIceThickness:       round2(r.ice),
				AvgSurfaceTemperature: round2(r.temp),
			}
		}
		return out, true
	}
	return nil, false
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
