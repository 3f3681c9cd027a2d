package cli

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/roach88/gitnostr/internal/config"
	"github.com/roach88/gitnostr/internal/engine"
	"github.com/roach88/gitnostr/internal/keys"
	"github.com/roach88/gitnostr/internal/metrics"
	"github.com/roach88/gitnostr/internal/names"
	"github.com/roach88/gitnostr/internal/refcode"
	"github.com/roach88/gitnostr/internal/source"
	"github.com/roach88/gitnostr/internal/store"
)

// app is everything a command needs, built from the loaded config.
type app struct {
	cfg      config.Config
	logger   *slog.Logger
	store    *store.Store
	replicas []*store.Store // read-only fan-out sources besides store
	redis    *redis.Client
	registry *prometheus.Registry
	engine   *engine.Engine
	out      *OutputFormatter
}

func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}
}

// loadConfig loads the config and builds the logger. Errors are already
// reported through out.
func loadConfig(opts *RootOptions, cmd *cobra.Command, out *OutputFormatter) (config.Config, *slog.Logger, error) {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return config.Config{}, nil, out.Fail(ExitCommandError, ErrCodeConfig, "failed to load config", err)
	}
	level := cfg.SlogLevel()
	if opts.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: level,
	}))
	return cfg, logger, nil
}

// openApp loads the config, opens the local replica and every configured
// source, and wires the engine. The caller must Close the app.
func openApp(ctx context.Context, opts *RootOptions, cmd *cobra.Command) (*app, error) {
	out := newFormatter(opts, cmd)
	cfg, logger, err := loadConfig(opts, cmd, out)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:      cfg,
		logger:   logger,
		registry: prometheus.NewRegistry(),
		out:      out,
	}

	logger.Debug("opening database", "path", cfg.Database)
	a.store, err = store.Open(cfg.Database)
	if err != nil {
		return nil, out.Fail(ExitCommandError, ErrCodeStore, "failed to open database", err)
	}

	endpoints := []source.Endpoint{{Name: cfg.Database, Source: a.store}}
	for _, path := range cfg.Sources {
		replica, err := store.Open(path)
		if err != nil {
			a.Close()
			return nil, out.Fail(ExitCommandError, ErrCodeStore, fmt.Sprintf("failed to open source %s", path), err)
		}
		a.replicas = append(a.replicas, replica)
		endpoints = append(endpoints, source.Endpoint{Name: path, Source: replica})
	}

	var cache names.Cache = a.store.Names()
	if cfg.RedisURL != "" {
		a.redis, err = names.DialRedis(ctx, cfg.RedisURL)
		if err != nil {
			a.Close()
			return nil, out.Fail(ExitCommandError, ErrCodeConfig, "failed to connect to redis", err)
		}
		cache = names.NewRedisCache(a.redis, names.DefaultRedisTTL)
	}

	m := metrics.New(a.registry)
	multi := source.NewMulti(endpoints,
		source.WithLogger(logger),
		source.WithMetrics(m),
		source.WithTimeout(cfg.FetchTimeout),
	)
	resolver := names.NewResolver(multi, cache, names.WithLogger(logger))
	a.engine = engine.New(multi,
		engine.WithSink(a.store),
		engine.WithNames(resolver),
		engine.WithMetrics(m),
		engine.WithLogger(logger),
		engine.WithFetchTimeout(cfg.FetchTimeout),
	)
	return a, nil
}

// Close logs the collected counters at debug level and releases every
// handle.
func (a *app) Close() {
	a.logMetrics()
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Error("error closing redis client", "error", err)
		}
	}
	for _, r := range a.replicas {
		if err := r.Close(); err != nil {
			a.logger.Error("error closing source", "error", err)
		}
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Error("error closing database", "error", err)
		}
	}
}

func (a *app) logMetrics() {
	families, err := a.registry.Gather()
	if err != nil {
		a.logger.Debug("gather metrics", "error", err)
		return
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			attrs := []any{"metric", mf.GetName()}
			for _, l := range m.GetLabel() {
				attrs = append(attrs, l.GetName(), l.GetValue())
			}
			switch {
			case m.GetCounter() != nil:
				attrs = append(attrs, "value", m.GetCounter().GetValue())
			case m.GetHistogram() != nil:
				attrs = append(attrs,
					"count", m.GetHistogram().GetSampleCount(),
					"sum", m.GetHistogram().GetSampleSum(),
				)
			}
			a.logger.Debug("metric", attrs...)
		}
	}
}

// fail reports an engine error with the code matching its cause.
func (a *app) fail(what string, err error) error {
	switch {
	case engine.IsNotFound(err):
		return a.out.Fail(ExitFailure, ErrCodeNotFound, what+" not found", nil)
	case source.IsSourceError(err):
		return a.out.Fail(ExitCommandError, ErrCodeSource, "failed to fetch "+what, err)
	default:
		return a.out.Fail(ExitCommandError, ErrCodeGeneric, "failed to load "+what, err)
	}
}

// signer parses the configured secret key.
func (a *app) signer() (*keys.Signer, error) {
	if a.cfg.SecretKey == "" {
		return nil, a.out.Fail(ExitCommandError, ErrCodeNoKey,
			"no secret key configured (set secret_key or GITNOSTR_SECRET_KEY)", nil)
	}
	s, err := keys.ParseSecret(a.cfg.SecretKey)
	if err != nil {
		return nil, a.out.Fail(ExitCommandError, ErrCodeNoKey, "invalid secret key", err)
	}
	return s, nil
}

// errInvalidID reports an argument that is not a 32-byte hex event id.
var errInvalidID = errors.New("event ids are 64 hex characters")

// parseID validates an event id argument.
func parseID(out *OutputFormatter, what, arg string) (string, error) {
	raw, err := hex.DecodeString(refcode.Canonical(arg))
	if err != nil || len(raw) != 32 {
		return "", out.Fail(ExitCommandError, ErrCodeInput, fmt.Sprintf("invalid %s id %q", what, arg), errInvalidID)
	}
	return hex.EncodeToString(raw), nil
}
