// Package daemon owns the long-lived desktop session: one window registry,
// the IPC server that exposes it, and the config watcher that keeps the
// server's settings current.
package daemon

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog"

	"github.com/1broseidon/webdesk/internal/config"
	"github.com/1broseidon/webdesk/internal/ipc"
	"github.com/1broseidon/webdesk/internal/logging"
	"github.com/1broseidon/webdesk/internal/registry"
	"github.com/1broseidon/webdesk/internal/runtimepath"
)

// Options configures a daemon.
type Options struct {
	// ConfigPath is the YAML config file. Empty means the default location.
	ConfigPath string
	// SocketPath overrides both the config file and the runtime default.
	SocketPath string
	// LogOutput receives log lines. Nil means stderr.
	LogOutput io.Writer
}

// Daemon is one desktop session.
type Daemon struct {
	cfgPath    string
	socketPath string
	startCfg   *config.Config
	baseLogger zerolog.Logger
	logger     zerolog.Logger
	reg        *registry.Registry
	watcher    *ConfigWatcher

	mu     sync.Mutex
	server *ipc.Server
}

// New loads configuration and prepares a session. Nothing listens until Run.
func New(opts Options) (*Daemon, error) {
	cfgPath := opts.ConfigPath
	if cfgPath == "" {
		p, err := config.DefaultConfigPath()
		if err != nil {
			return nil, err
		}
		cfgPath = p
	}

	res, err := config.LoadFromPath(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	cfg := res.Config

	logCfg := logging.FromAppConfig(cfg.Logging)
	// Loggers are built at trace and filtered globally so reloads can
	// change verbosity of already-derived component loggers.
	zerolog.SetGlobalLevel(logCfg.Level)
	logCfg.Level = zerolog.TraceLevel
	base := logging.New(logCfg, opts.LogOutput)
	logger := base.With().Str("component", "daemon").Logger()

	socketPath := opts.SocketPath
	if socketPath == "" {
		socketPath, err = runtimepath.ResolveSocketPath(cfg.SocketPath)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve socket path: %w", err)
		}
	}

	d := &Daemon{
		cfgPath:    cfgPath,
		socketPath: socketPath,
		startCfg:   cfg,
		baseLogger: base,
		logger:     logger,
		reg: registry.New(
			registry.WithStackBase(cfg.StackBase),
			registry.WithIDPrefix(cfg.IDPrefix),
			registry.WithLogger(base.With().Str("component", "registry").Logger()),
		),
	}
	d.watcher = NewConfigWatcher(WatcherConfig{Path: cfgPath, Logger: base, Initial: cfg}, d.applyConfig)

	logger.Info().
		Str("config", cfgPath).
		Bool("config_exists", res.Exists).
		Int("stack_base", cfg.StackBase).
		Msg("configuration loaded")

	return d, nil
}

// Registry returns the session's window registry.
func (d *Daemon) Registry() *registry.Registry {
	return d.reg
}

// SocketPath returns the IPC socket the daemon serves on.
func (d *Daemon) SocketPath() string {
	return d.socketPath
}

// Config returns the configuration currently in effect.
func (d *Daemon) Config() *config.Config {
	return d.watcher.Current()
}

// Run serves the session until ctx is cancelled. The registry is bound into
// the context the IPC server and the watcher are started with.
func (d *Daemon) Run(ctx context.Context) error {
	ctx = registry.NewContext(ctx, d.reg)
	ctx = logging.WithContext(ctx, d.baseLogger)

	// applyConfig must not run between Current and the assignment.
	d.mu.Lock()
	server := ipc.NewServer(ctx, d.socketPath, d.watcher.Current(), d.watcher.ReloadNow)
	d.server = server
	d.mu.Unlock()

	defer func() {
		d.mu.Lock()
		d.server = nil
		d.mu.Unlock()
	}()

	if err := server.Start(); err != nil {
		return err
	}
	defer server.Stop()

	watchDone := make(chan struct{})
	go func() {
		defer close(watchDone)
		if err := d.watcher.Run(ctx); err != nil {
			// The daemon stays usable without hot reload; RELOAD still works.
			d.logger.Warn().Err(err).Msg("config hot reload disabled")
		}
	}()

	d.logger.Info().Str("socket", d.socketPath).Msg("webdesk daemon started")

	<-ctx.Done()
	d.logger.Info().
		Int("windows", len(d.reg.Windows())).
		Msg("shutting down webdesk daemon")
	<-watchDone
	return nil
}

// Reload re-reads the config file and applies it, as the RELOAD command does.
func (d *Daemon) Reload() error {
	_, err := d.watcher.ReloadNow()
	return err
}

// Run creates a daemon from opts and serves it until ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	d, err := New(opts)
	if err != nil {
		return err
	}
	return d.Run(ctx)
}

func (d *Daemon) applyConfig(cfg *config.Config) {
	d.mu.Lock()
	if d.server != nil {
		d.server.UpdateConfig(cfg)
	}
	d.mu.Unlock()

	logCfg := logging.FromAppConfig(cfg.Logging)
	zerolog.SetGlobalLevel(logCfg.Level)

	start := d.startCfg
	if start.StackBase != cfg.StackBase || start.IDPrefix != cfg.IDPrefix || start.SocketPath != cfg.SocketPath {
		d.logger.Warn().Msg("stack_base, id_prefix and socket_path changes take effect on the next daemon start")
	}
	d.logger.Info().Str("log_level", logCfg.Level.String()).Msg("configuration applied")
}
