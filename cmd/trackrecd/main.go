// trackrecd is the sample collection daemon.
//
// It binds one ZeroMQ reply socket, collects a fixed number of samples,
// writes them to a single file and exits.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/xid"
	"github.com/tebeka/atexit"
	"github.com/xtxerr/trackrec/config"
	"github.com/xtxerr/trackrec/internal/errors"
	"github.com/xtxerr/trackrec/internal/listener"
	"github.com/xtxerr/trackrec/internal/loader"
	"github.com/xtxerr/trackrec/internal/logging"
	"github.com/xtxerr/trackrec/internal/storage"
	"github.com/xtxerr/trackrec/internal/storage/aggregate"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	// CLI flags
	cfgPath := flag.String("config", "config.yaml", "config file path")
	envPath := flag.String("env", ".env", "dotenv file loaded before the config")
	endpoint := flag.String("endpoint", "", "ZeroMQ endpoint to bind (overrides config)")
	steps := flag.Int("steps", 0, "number of samples to collect (overrides config)")
	out := flag.String("out", "", "output file path (overrides config)")
	format := flag.String("format", "", "output format: gob or parquet (overrides config)")
	logLevel := flag.String("log-level", "", "log level (overrides config)")
	logJSON := flag.Bool("log-json", false, "log as JSON")
	flag.Parse()

	if err := run(options{
		cfgPath:  *cfgPath,
		envPath:  *envPath,
		endpoint: *endpoint,
		steps:    *steps,
		out:      *out,
		format:   *format,
		logLevel: *logLevel,
		logJSON:  *logJSON,
	}); err != nil {
		logging.Error("trackrecd failed", "error", err)
		atexit.Exit(1)
	}
	atexit.Exit(0)
}

type options struct {
	cfgPath  string
	envPath  string
	endpoint string
	steps    int
	out      string
	format   string
	logLevel string
	logJSON  bool
}

func run(o options) error {
	// A missing .env is normal
	if err := godotenv.Load(o.envPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load env: %w", err)
	}

	cfg, err := loadConfig(o)
	if err != nil {
		return err
	}

	level, _ := logging.ParseLevel(cfg.Logging.Level)
	logging.Init(level, cfg.Logging.JSON)
	logging.Info("trackrecd starting", "version", Version)

	format, _ := storage.ParseFormat(cfg.Output.Format)

	runID := xid.New().String()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logging.ContextWithRunID(ctx, runID)
	ctx = logging.ContextWithEndpoint(ctx, cfg.Listen)
	log := logging.WithContext(ctx)

	// =========================================================================
	// Bind
	// =========================================================================

	l, err := listener.Listen(ctx, cfg.Listen, listener.Options{
		Dim:           cfg.Dim,
		ProgressEvery: config.DefaultProgressEvery,
	})
	if err != nil {
		return err
	}
	// Released by atexit.Exit in main on both the success and error paths.
	atexit.Register(cleanup(l, cfg.Output.Path))

	log.Info("listening", "steps", cfg.Steps, "dim", cfg.Dim)

	// =========================================================================
	// Collect
	// =========================================================================

	start := time.Now()
	m, err := l.Collect(ctx, cfg.Steps)
	if err != nil {
		return fmt.Errorf("collect: %w", err)
	}
	log.Info("collected",
		"samples", m.Steps,
		"elapsed", time.Since(start).Round(time.Millisecond))

	// =========================================================================
	// Persist
	// =========================================================================

	meta := loader.ToPersistMeta(&cfg.Output, runID)
	if err := storage.Persist(cfg.Output.Path, format, m, meta); err != nil {
		return err
	}
	log.Info("persisted", "path", cfg.Output.Path, "format", string(format))

	for _, s := range aggregate.Summarize(m, cfg.Summary.Accuracy) {
		log.Info("summary", s.LogArgs()...)
	}

	return nil
}

// cleanup returns the exit handler that releases the reply socket and
// removes output left behind under its temporary name.
func cleanup(sock io.Closer, outPath string) func() {
	return func() {
		if err := sock.Close(); err != nil {
			logging.Warn("close listener", "error", err)
		}
		tmp := outPath + ".tmp"
		if err := os.Remove(tmp); err == nil {
			logging.Warn("removed partial output", "path", tmp)
		}
	}
}

// loadConfig reads the config file, applies flag overrides and validates.
func loadConfig(o options) (*loader.Config, error) {
	cfg, err := loader.Load(o.cfgPath)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load config: %w", err)
		}
		cfg = loader.DefaultConfig()
	}

	// CLI overrides
	if o.endpoint != "" {
		cfg.Listen = o.endpoint
	}
	if o.steps != 0 {
		cfg.Steps = o.steps
	}
	if o.out != "" {
		cfg.Output.Path = o.out
		if o.format == "" {
			cfg.Output.Format = string(storage.FormatForPath(o.out))
		}
	}
	if o.format != "" {
		cfg.Output.Format = o.format
	}
	if o.logLevel != "" {
		cfg.Logging.Level = o.logLevel
	}
	if o.logJSON {
		cfg.Logging.JSON = true
	}

	if err := loader.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
