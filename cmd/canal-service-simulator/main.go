// Command canal-service-simulator serves synthetic ice-condition data over
// the monitoring service's HTTP API for local development.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chrissnell/canalwatch/internal/log"
	"github.com/chrissnell/canalwatch/internal/types"
)

func main() {
	listen := flag.String("listen", "127.0.0.1:8081", "Address to listen on")
	step := flag.Duration("step", 30*time.Second, "Interval between generated readings")
	backfill := flag.Int("backfill", 24, "Readings generated per location at startup")
	retain := flag.Int("retain", 720, "Readings kept per location")
	seed := flag.Int64("seed", time.Now().UnixNano(), "Random seed")
	withIDs := flag.Bool("with-ids", true, "Include stable location_id values in /api/latest")
	softRate := flag.Float64("soft-failure-rate", 0, "Probability of answering success=false")
	errRate := flag.Float64("server-error-rate", 0, "Probability of answering 503")
	latency := flag.Duration("latency", 0, "Delay added before every response")
	debug := flag.Bool("debug", false, "Turn on debugging output")
	flag.Parse()

	if err := log.Init(log.Options{Debug: *debug}); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	gen := NewGenerator(types.DefaultLocations(), *backfill, *retain, *step, time.Now(), *seed, *withIDs)
	srv := NewServer(gen, Faults{SoftFailureRate: *softRate, ServerErrorRate: *errRate, Latency: *latency}, *seed)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	go func() {
		ticker := time.NewTicker(*step)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				gen.Advance(now)
				log.Debugf("generated readings at %s; overall %s", now.Format(time.RFC3339), gen.Overall())
			}
		}
	}()

	httpServer := &http.Server{
		Addr:              *listen,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		log.Info("shutting down simulator...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	log.Infof("canal service simulator listening on %s (step %v)", *listen, *step)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("simulator server error: %v", err)
	}
}
