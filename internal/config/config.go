// Package config loads extrude-bench settings from a TOML file, an optional
// .env file and the process environment, in increasing precedence.
//
// Example config.toml:
//
//	[log]
//	level = "debug"
//	format = "json"
//
//	[shape]
//	tile_capacity = 5000
//	min_expiry = "2s"
//	max_expiry = "4s"
//
//	[loader]
//	height_fields = ["HEIGHT_ROOF"]
//
//	[metrics]
//	addr = ":9090"
package config

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/beetlebugorg/extrude/pkg/extrude"
	"github.com/beetlebugorg/extrude/pkg/shapefile"
)

// Environment variables read by Load.
const (
	EnvLogLevel    = "LOG_LEVEL"
	EnvLogFormat   = "LOG_FORMAT"
	EnvMetricsAddr = "EXTRUDE_METRICS_ADDR"
	EnvWorkers     = "EXTRUDE_WORKERS"
	EnvTerrain     = "EXTRUDE_TERRAIN"
)

// Config is the complete extrude-bench configuration.
type Config struct {
	Log     LogConfig     `toml:"log"`
	Shape   ShapeConfig   `toml:"shape"`
	Loader  LoaderConfig  `toml:"loader"`
	Bench   BenchConfig   `toml:"bench"`
	Metrics MetricsConfig `toml:"metrics"`
}

// LogConfig selects the log level and handler.
type LogConfig struct {
	Level  string `toml:"level"`  // debug, info, warn or error
	Format string `toml:"format"` // text or json
}

// ShapeConfig mirrors extrude.Options.
type ShapeConfig struct {
	TileCapacity     int      `toml:"tile_capacity"`
	TileMaxDepth     int      `toml:"tile_max_depth"`
	MinExpiry        Duration `toml:"min_expiry"`
	MaxExpiry        Duration `toml:"max_expiry"`
	ApproachRatio    float64  `toml:"approach_ratio"`
	BaseDepth        float64  `toml:"base_depth"`
	DefaultHeight    float64  `toml:"default_height"`
	MinTilePixels    int      `toml:"min_tile_pixels"`
	OutlinePickWidth float32  `toml:"outline_pick_width"`
}

// LoaderConfig mirrors the shapefile.Options fields that make sense in a
// file.
type LoaderConfig struct {
	HeightFields []string `toml:"height_fields"`
	Workers      int      `toml:"workers"`
	SkipErrors   bool     `toml:"skip_errors"`
}

// BenchConfig controls the frame loop.
type BenchConfig struct {
	Frames   int     `toml:"frames"`
	Width    int     `toml:"width"`
	Height   int     `toml:"height"`
	Terrain  string  `toml:"terrain"` // sphere or flat
	CacheMB  int     `toml:"cache_mb"`
	Orbit    float64 `toml:"orbit_degrees"` // camera heading change per frame
	Altitude float64 `toml:"altitude"`      // eye altitude in metres, sphere terrain only
}

// MetricsConfig controls the prometheus endpoint.
type MetricsConfig struct {
	Addr string `toml:"addr"` // empty disables the endpoint
}

// Duration is a time.Duration written as a Go duration string in TOML.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Default returns the configuration used when no file is given.
func Default() Config {
	so := extrude.DefaultOptions()
	lo := shapefile.DefaultOptions()
	return Config{
		Log: LogConfig{Level: "info", Format: "text"},
		Shape: ShapeConfig{
			TileCapacity:     so.TileCapacity,
			TileMaxDepth:     so.TileMaxDepth,
			MinExpiry:        Duration(so.MinExpiryTime),
			MaxExpiry:        Duration(so.MaxExpiryTime),
			ApproachRatio:    so.ApproachRatio,
			BaseDepth:        so.BaseDepth,
			DefaultHeight:    so.DefaultHeight,
			MinTilePixels:    so.MinTilePixels,
			OutlinePickWidth: so.OutlinePickWidth,
		},
		Loader: LoaderConfig{
			HeightFields: lo.HeightFields,
			Workers:      lo.Workers,
			SkipErrors:   lo.SkipErrors,
		},
		Bench: BenchConfig{
			Frames:   100,
			Width:    800,
			Height:   600,
			Terrain:  "sphere",
			CacheMB:  256,
			Orbit:    1,
			Altitude: 3000,
		},
	}
}

// Load reads the TOML file at path over the defaults, then applies the
// environment. An empty path skips the file. Variables found in envFiles
// apply only where the process environment does not set them; missing env
// files are ignored.
func Load(path string, envFiles ...string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, errors.Wrap(err, "read config")
		}
		if err := Decode(data, &cfg); err != nil {
			return Config{}, errors.Wrapf(err, "%s", path)
		}
	}

	env, err := readEnvFiles(envFiles)
	if err != nil {
		return Config{}, err
	}
	if err := cfg.applyEnv(env); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Decode decodes TOML over cfg. Keys that match no field are an error.
func Decode(data []byte, cfg *Config) error {
	dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return errors.Newf("unknown keys:\n%s", strict.String())
		}
		return errors.Wrap(err, "decode config")
	}
	return nil
}

// readEnvFiles merges env files, earlier files winning like godotenv.Load.
func readEnvFiles(files []string) (map[string]string, error) {
	env := map[string]string{}
	for _, f := range files {
		vars, err := godotenv.Read(f)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, errors.Wrapf(err, "read %s", f)
		}
		for k, v := range vars {
			if _, ok := env[k]; !ok {
				env[k] = v
			}
		}
	}
	return env, nil
}

func (c *Config) applyEnv(file map[string]string) error {
	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := file[key]
		return v, ok
	}

	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Log.Level = v
	}
	if v, ok := lookup(EnvLogFormat); ok && v != "" {
		c.Log.Format = v
	}
	if v, ok := lookup(EnvMetricsAddr); ok {
		c.Metrics.Addr = v
	}
	if v, ok := lookup(EnvTerrain); ok && v != "" {
		c.Bench.Terrain = v
	}
	if v, ok := lookup(EnvWorkers); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.Wrapf(err, "%s", EnvWorkers)
		}
		c.Loader.Workers = n
	}
	return nil
}

// Validate checks values that the libraries would otherwise reject later
// with less context.
func (c Config) Validate() error {
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return errors.Newf("log format %q must be text or json", c.Log.Format)
	}
	switch c.Bench.Terrain {
	case "sphere", "flat":
	default:
		return errors.Newf("terrain %q must be sphere or flat", c.Bench.Terrain)
	}
	if c.Bench.Width <= 0 || c.Bench.Height <= 0 {
		return errors.Newf("viewport %dx%d must be positive", c.Bench.Width, c.Bench.Height)
	}
	if c.Bench.Frames < 0 {
		return errors.Newf("frames %d must not be negative", c.Bench.Frames)
	}
	return nil
}

// ShapeOptions returns the configured extrude options.
func (c Config) ShapeOptions() extrude.Options {
	o := extrude.DefaultOptions()
	o.TileCapacity = c.Shape.TileCapacity
	o.TileMaxDepth = c.Shape.TileMaxDepth
	o.MinExpiryTime = time.Duration(c.Shape.MinExpiry)
	o.MaxExpiryTime = time.Duration(c.Shape.MaxExpiry)
	o.ApproachRatio = c.Shape.ApproachRatio
	o.BaseDepth = c.Shape.BaseDepth
	o.DefaultHeight = c.Shape.DefaultHeight
	o.MinTilePixels = c.Shape.MinTilePixels
	o.OutlinePickWidth = c.Shape.OutlinePickWidth
	return o
}

// LoaderOptions returns the configured shapefile options.
func (c Config) LoaderOptions() shapefile.Options {
	o := shapefile.DefaultOptions()
	o.HeightFields = c.Loader.HeightFields
	o.Workers = c.Loader.Workers
	o.SkipErrors = c.Loader.SkipErrors
	return o
}

// NewLogger returns a logger writing to w with the configured level and
// format.
func (c LogConfig) NewLogger(w io.Writer) (*slog.Logger, error) {
	lvl, err := parseLevel(c.Level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: lvl}
	var h slog.Handler
	if strings.EqualFold(c.Format, "json") {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(h), nil
}

func parseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return 0, errors.Newf("log level %q must be debug, info, warn or error", s)
	}
	return lvl, nil
}
