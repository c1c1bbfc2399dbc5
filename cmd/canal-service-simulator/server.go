package main

import (
	"math/rand"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/chrissnell/canalwatch/internal/log"
	"github.com/chrissnell/canalwatch/pkg/responseformat"
	"github.com/gorilla/mux"
)

// Faults controls injected misbehaviour
type Faults struct {
	// SoftFailureRate is the probability of answering success=false
	SoftFailureRate float64
	// ServerErrorRate is the probability of answering 503
	ServerErrorRate float64
	// Latency is added before every response
	Latency time.Duration
}

// Server speaks the monitoring service's HTTP contract
type Server struct {
	gen       *Generator
	faults    Faults
	formatter *responseformat.Formatter

	mu  sync.Mutex
	rng *rand.Rand
}

// NewServer creates a simulator server over gen
func NewServer(gen *Generator, faults Faults, seed int64) *Server {
	return &Server{
		gen:       gen,
		faults:    faults,
		formatter: responseformat.NewFormatter(),
		rng:       rand.New(rand.NewSource(seed)),
	}
}

// Router returns the HTTP routes of the simulated service
func (s *Server) Router() *mux.Router {
	router := mux.NewRouter()
	router.Use(s.faultMiddleware)

	router.HandleFunc("/api/latest", s.getLatest).Methods(http.MethodGet)
	router.HandleFunc("/api/status", s.getStatus).Methods(http.MethodGet)
	router.HandleFunc("/api/history/{key}", s.getHistory).Methods(http.MethodGet)

	return router
}

func (s *Server) roll(p float64) bool {
	if p <= 0 {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64() < p
}

func (s *Server) faultMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.faults.Latency > 0 {
			select {
			case <-time.After(s.faults.Latency):
			case <-r.Context().Done():
				return
			}
		}
		if s.roll(s.faults.ServerErrorRate) {
			log.Debugf("injecting 503 for %s", r.URL.Path)
			http.Error(w, "simulated outage", http.StatusServiceUnavailable)
			return
		}
		if s.roll(s.faults.SoftFailureRate) {
			log.Debugf("injecting success=false for %s", r.URL.Path)
			s.formatter.WriteResponse(w, r, map[string]any{"success": false, "error": "simulated failure"}, nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) getLatest(w http.ResponseWriter, r *http.Request) {
	s.formatter.WriteResponse(w, r, map[string]any{
		"success": true,
		"data":    s.gen.Latest(),
	}, nil)
}

func (s *Server) getStatus(w http.ResponseWriter, r *http.Request) {
	s.formatter.WriteResponse(w, r, map[string]any{
		"success":       true,
		"overallStatus": s.gen.Overall(),
	}, nil)
}

func (s *Server) getHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n < 0 {
			s.formatter.WriteError(w, r, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	points, ok := s.gen.History(mux.Vars(r)["key"], limit)
	if !ok {
		s.formatter.WriteError(w, r, http.StatusNotFound, "unknown location")
		return
	}
	s.formatter.WriteResponse(w, r, map[string]any{"data": points}, nil)
}
