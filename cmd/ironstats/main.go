package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/openlift/ironstats/internal/adapters/duckdb"
	"github.com/openlift/ironstats/internal/app"
	"github.com/openlift/ironstats/internal/config"
	"github.com/openlift/ironstats/internal/domain/dataset"
	"github.com/openlift/ironstats/internal/domain/model"
	"github.com/openlift/ironstats/pkg/logger"
	"github.com/openlift/ironstats/pkg/metrics"
)

func main() {
	// Disable default Go metrics collection to avoid duplicate metrics
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel))
		_ = logger.SetLevelString("info")
	}

	loadStart := time.Now()
	ds, err := dataset.Load(ctx, cfg.DataPath, cfg.SampleCap)
	if err != nil {
		log.Error(ctx, "failed to load dataset", logger.Error(err))
		os.Exit(1)
	}
	metrics.UpdateDatasetLoadTime(time.Since(loadStart).Seconds())

	engine, err := duckdb.New(ctx, ds.Path(),
		duckdb.WithThreads(cfg.SQLThreads),
		duckdb.WithMemoryLimit(cfg.SQLMemoryLimit),
		duckdb.WithMaxPageSize(cfg.MaxPageSize),
	)
	if err != nil {
		log.Error(ctx, "failed to open sql engine", logger.Error(err))
		os.Exit(1)
	}
	defer engine.Close()

	svc := app.New(ds, engine,
		app.WithBinCount(cfg.BinCount),
		app.WithCacheTTL(time.Duration(cfg.CacheTTLSeconds)*time.Second),
		app.WithCacheMaxEntries(cfg.CacheMaxEntries),
		app.WithLogger(log),
	)

	if cfg.MetricsAddr != "" {
		go serveMetrics(ctx, cfg.MetricsAddr, log)
	}

	if err := run(ctx, svc, os.Args[1:]); err != nil {
		log.Error(ctx, "run failed", logger.Error(err))
		os.Exit(1)
	}
}

// run executes the named query (default: a smoke pass over every
// surface) and prints JSON to stdout.
func run(ctx context.Context, svc *app.Service, args []string) error {
	cmd := "smoke"
	if len(args) > 0 {
		cmd = args[0]
	}

	out := json.NewEncoder(os.Stdout)
	out.SetIndent("", "  ")

	switch cmd {
	case "viz":
		res, err := svc.Visualize(ctx, model.FilterRequest{Lift: "total"})
		if err != nil {
			return err
		}
		return out.Encode(res)
	case "bands":
		res, err := svc.PercentileBands(ctx)
		if err != nil {
			return err
		}
		return out.Encode(res)
	case "leaderboard":
		res, err := svc.Leaderboard(ctx, model.LeaderboardRequest{Page: 1, PageSize: 25})
		if err != nil {
			return err
		}
		return out.Encode(res)
	case "distribution":
		res, err := svc.WeightDistribution(ctx, model.FilterRequest{Lift: "total"}, 20)
		if err != nil {
			return err
		}
		return out.Encode(res)
	case "position":
		lift, bw := 500.0, 90.0
		res, err := svc.CompetitivePosition(ctx, model.FilterRequest{
			Lift: "total", UserLift: &lift, UserBodyweight: &bw,
		})
		if err != nil {
			return err
		}
		return out.Encode(res)
	case "stats":
		return out.Encode(svc.Stats())
	default:
		viz, err := svc.Visualize(ctx, model.FilterRequest{Lift: "total"})
		if err != nil {
			return err
		}
		bands, err := svc.PercentileBands(ctx)
		if err != nil {
			return err
		}
		page, err := svc.Leaderboard(ctx, model.LeaderboardRequest{Page: 1, PageSize: 10})
		if err != nil {
			return err
		}
		return out.Encode(map[string]any{
			"rows":        viz.RowCount,
			"bands":       len(bands),
			"leaderboard": page.TotalCount,
			"stats":       svc.Stats(),
		})
	}
}

func serveMetrics(ctx context.Context, addr string, log logger.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	log.Info(ctx, "serving metrics", logger.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Warn(ctx, "metrics server stopped", logger.Error(err))
	}
}
