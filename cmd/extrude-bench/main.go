// Command extrude-bench drives an extruded polygon shape through a series of
// headless frames and reports what the tile cache did.
//
// Usage:
//
//	extrude-bench -shp buildings.shp -frames 300
//	extrude-bench -synthetic 200 -pick 400,300 -metrics-addr :9090
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/paulmach/orb"

	"github.com/beetlebugorg/extrude/internal/config"
	"github.com/beetlebugorg/extrude/internal/metrics"
	"github.com/beetlebugorg/extrude/pkg/extrude"
	"github.com/beetlebugorg/extrude/pkg/shapefile"
)

// syntheticBounds is lower Manhattan.
var syntheticBounds = orb.Bound{Min: orb.Point{-74.02, 40.70}, Max: orb.Point{-73.96, 40.76}}

// frameInterval is the simulated time between frames.
const frameInterval = time.Second / 60

// stringList is a repeatable string flag.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

type flags struct {
	config      string
	shapefiles  stringList
	synthetic   int
	frames      int
	pick        string
	metricsAddr string
	terrain     string
}

func parseFlags() flags {
	var f flags
	flag.StringVar(&f.config, "config", "", "TOML config file")
	flag.Var(&f.shapefiles, "shp", "polygon shapefile to load (repeatable)")
	flag.IntVar(&f.synthetic, "synthetic", 0, "build an N x N block grid instead of loading shapefiles")
	flag.IntVar(&f.frames, "frames", 0, "number of frames (overrides config)")
	flag.StringVar(&f.pick, "pick", "", "pick the record at screen point x,y after the last frame")
	flag.StringVar(&f.metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address (overrides config)")
	flag.StringVar(&f.terrain, "terrain", "", "sphere or flat (overrides config)")
	flag.Parse()
	return f
}

func main() {
	f := parseFlags()
	if err := run(f); err != nil {
		fmt.Fprintf(os.Stderr, "extrude-bench: %v\n", err)
		os.Exit(1)
	}
}

func run(f flags) error {
	cfg, err := config.Load(f.config, ".env")
	if err != nil {
		return err
	}
	if f.frames > 0 {
		cfg.Bench.Frames = f.frames
	}
	if f.metricsAddr != "" {
		cfg.Metrics.Addr = f.metricsAddr
	}
	if f.terrain != "" {
		cfg.Bench.Terrain = f.terrain
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := cfg.Log.NewLogger(os.Stderr)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)
	extrude.SetLogger(logger)

	var pickPoint *image.Point
	if f.pick != "" {
		var p image.Point
		if _, err := fmt.Sscanf(f.pick, "%d,%d", &p.X, &p.Y); err != nil {
			return errors.Wrapf(err, "invalid -pick %q", f.pick)
		}
		pickPoint = &p
	}

	start := time.Now()
	ds, err := loadDataset(f, cfg)
	if err != nil {
		return err
	}
	shape, err := extrude.NewShape(ds, cfg.ShapeOptions())
	if err != nil {
		return err
	}
	logger.Info("shape ready",
		"records", ds.Len(),
		"tiles", shape.Stats().Tiles,
		"elapsed", time.Since(start).Round(time.Millisecond),
	)

	b := newBench(shape, cfg.Bench)

	if cfg.Metrics.Addr != "" {
		srv := serveMetrics(cfg.Metrics.Addr, b)
		defer srv.Close()
	}

	start = time.Now()
	for i := 0; i < cfg.Bench.Frames; i++ {
		if err := b.frame(i); err != nil {
			return errors.Wrapf(err, "frame %d", i)
		}
	}
	elapsed := time.Since(start)

	if pickPoint != nil {
		if err := b.pick(*pickPoint); err != nil {
			return err
		}
	}

	b.report(os.Stdout, elapsed)

	if cfg.Metrics.Addr != "" {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		logger.Info("serving metrics until interrupted", "addr", cfg.Metrics.Addr)
		<-ctx.Done()
	}
	return nil
}

func loadDataset(f flags, cfg config.Config) (*extrude.Dataset, error) {
	if f.synthetic > 0 {
		return extrude.NewGridDataset(syntheticBounds, f.synthetic, f.synthetic, 0.7, func(col, row int) (float64, bool) {
			// Every seventh block has no height of its own.
			if (col+row)%7 == 0 {
				return 0, false
			}
			return float64(10 + (col*31+row*17)%240), true
		})
	}
	if len(f.shapefiles) == 0 {
		return nil, errors.New("no input: use -shp or -synthetic")
	}

	opts := cfg.LoaderOptions()
	opts.ErrorLog = os.Stderr
	opts.Progress = func(loaded, total int) {
		fmt.Fprintf(os.Stderr, "\rLoading: %d/%d", loaded, total)
		if loaded == total {
			fmt.Fprintln(os.Stderr)
		}
	}
	ds, errs := shapefile.LoadParallel(f.shapefiles, opts)
	if ds == nil {
		return nil, errors.Join(errs...)
	}
	if len(errs) > 0 {
		fmt.Fprintf(os.Stderr, "Skipped %d files due to errors\n", len(errs))
	}
	return ds, nil
}

func serveMetrics(addr string, b *bench) *http.Server {
	c := metrics.NewCollector(metrics.Sources{
		Shape:    b.shapeStats,
		Renderer: b.rendererStats,
		Cache:    b.cacheStats,
	})
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(c))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics server failed", "error", err)
		}
	}()
	return srv
}
