package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/pyrochlore-sim/pyrochlore-sim/sim"
	"github.com/pyrochlore-sim/pyrochlore-sim/sim/results"
)

var (
	dbPath      string // SQLite file receiving each Result
	metricsAddr string // Listen address for /metrics
)

// runCmd executes a temperature sweep using parameters from --config and CLI flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a temperature sweep and print per-temperature results",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := resolveConfig(cmd)
		if err != nil {
			logrus.Fatalf("Invalid configuration: %v", err)
		}

		registry := prometheus.NewRegistry()
		metrics := sim.NewMetrics(registry)
		engine, err := sim.NewEngine(cfg, metrics)
		if err != nil {
			logrus.Fatalf("Unable to build engine: %v", err)
		}
		bounds := engine.Sweep.Bounds()
		logrus.Infof("Starting sweep: %d sites, T=%.3f..%.3f step %.3f (%d temperatures), seed=%d",
			engine.Geometry.SiteCount(), bounds.TempMin, bounds.TempMax, bounds.TempStep, engine.Sweep.Len(), cfg.Seed)

		var store *results.SQLiteStore
		runID := uuid.NewString()
		startTime := time.Now()
		if dbPath != "" {
			store, err = results.Open(dbPath)
			if err != nil {
				logrus.Fatalf("Unable to open results database: %v", err)
			}
			defer closeStore(store)
			if err := store.BeginRun(context.Background(), runID, cfg, startTime); err != nil {
				logrus.Fatalf("Unable to record run: %v", err)
			}
			logrus.Infof("Recording results to %s as run %s", store.Path(), runID)
		}

		var server *http.Server
		if metricsAddr != "" {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
			server = &http.Server{Addr: metricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
			go func() {
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logrus.Errorf("metrics server: %v", err)
				}
			}()
		}

		// cancellation is observed between temperatures
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		err = runSweep(ctx, engine.Sweep, results.NewTableWriter(os.Stdout), store, runID)

		if server != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			_ = server.Shutdown(shutdownCtx)
			cancel()
		}
		collected := len(engine.Sweep.Results())
		if err != nil {
			// Fatalf exits without running deferred calls
			closeStore(store)
			stop()
			logrus.Fatalf("Sweep aborted after %d of %d temperatures: %v", collected, engine.Sweep.Len(), err)
		}
		logrus.Infof("Sweep complete: %d results in %s, acceptance ratio %.4f",
			collected, time.Since(startTime).Round(time.Millisecond), metrics.AcceptanceRatio())
	},
}

// resultWriter receives each Result as it is produced.
type resultWriter interface {
	Write(r sim.Result) error
}

// runSweep runs the sweep on a producer goroutine and hands each Result to
// the consumer through a channel. store may be nil.
func runSweep(ctx context.Context, sweep *sim.Sweep, out resultWriter, store *results.SQLiteStore, runID string) error {
	g, gctx := errgroup.WithContext(ctx)
	ch := make(chan sim.Result)
	g.Go(func() error {
		return sweep.Stream(gctx, ch)
	})
	g.Go(func() error {
		for r := range ch {
			if err := out.Write(r); err != nil {
				return err
			}
			if store != nil {
				if err := store.Save(gctx, runID, r); err != nil {
					return err
				}
			}
		}
		return nil
	})
	return g.Wait()
}

// closeStore releases store, logging rather than returning a close error. A
// nil store is ignored.
func closeStore(store *results.SQLiteStore) {
	if store == nil {
		return
	}
	if err := store.Close(); err != nil {
		logrus.Errorf("Closing results database: %v", err)
	}
}

func init() {
	registerEngineFlags(runCmd)
	runCmd.Flags().StringVar(&dbPath, "db", "", "SQLite file that receives each result (disabled when empty)")
	runCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :9090 (disabled when empty)")
}
