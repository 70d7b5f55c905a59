package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/aevon-lab/scoring/internal/auth"
	corecfg "github.com/aevon-lab/scoring/internal/core/config"
	"github.com/aevon-lab/scoring/internal/core/storage"
	"github.com/aevon-lab/scoring/internal/method"
	"github.com/aevon-lab/scoring/internal/schema"
	"github.com/aevon-lab/scoring/internal/scoring"
	"github.com/aevon-lab/scoring/internal/server"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"
)

var (
	// overridden during build with ldflags
	version = "dev"
	commit  = "unknown"
)

func main() {
	cmd := &cli.Command{
		Name:    "scoring",
		Usage:   "Serve the scoring JSON API",
		Version: fmt.Sprintf("%s (%s)", version, commit),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Sources: cli.EnvVars("SCORING_CONFIG"),
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to listen on (overrides server.port)",
			},
			&cli.StringFlag{
				Name:    "log",
				Aliases: []string{"l"},
				Usage:   "Log file path (overrides log.file, default stdout)",
			},
		},
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	cfg, err := corecfg.Load(cmd.String("config"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cmd.IsSet("port") {
		cfg.Server.Port = int(cmd.Int("port"))
	}
	if cmd.IsSet("log") {
		cfg.Log.File = cmd.String("log")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logs, err := setupLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer logs.Close()

	slog.Info("Loaded config",
		"address", cfg.Server.Addr(),
		"mode", cfg.Server.Mode,
		"max_body_size_kb", cfg.Server.MaxBodySizeKB,
		"shutdown_timeout", cfg.Server.ShutdownTimeout,
		"log_level", cfg.Log.Level,
		"version", version,
	)

	authn := auth.New(auth.Secrets{
		Salt:      cfg.Auth.Salt,
		AdminSalt: cfg.Auth.AdminSalt,
	})
	engine := scoring.New(storage.NopStore{})
	dispatcher := method.New(schema.DefaultRegistry(), authn, engine)

	srv := server.New(server.Config{
		Addr:            cfg.Server.Addr(),
		Mode:            cfg.Server.Mode,
		MaxBodyBytes:    cfg.Server.MaxBodyBytes(),
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, server.Router{"method": dispatcher})

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(gctx)
	})
	g.Go(func() error {
		return reopenOnHangup(gctx, hup, logs)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	slog.Info("Shutdown complete")
	return nil
}

// setupLogger installs the default slog logger writing to stdout or cfg.File.
// The returned logFile is nil when logging to stdout.
func setupLogger(cfg corecfg.LogConfig) (*logFile, error) {
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, err
	}

	var out io.Writer = os.Stdout
	var lf *logFile
	if cfg.File != "" {
		lf, err = openLogFile(cfg.File)
		if err != nil {
			return nil, err
		}
		out = lf
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})))
	return lf, nil
}

// reopenOnHangup reopens the log file on every SIGHUP until ctx is done,
// so external rotation can move the old file away.
func reopenOnHangup(ctx context.Context, hup <-chan os.Signal, lf *logFile) error {
	for {
		select {
		case <-ctx.Done():
			slog.Info("Shutting down...")
			return nil
		case <-hup:
			if lf == nil {
				continue
			}
			if err := lf.Reopen(); err != nil {
				slog.Error("Failed to reopen log file", "path", lf.path, "error", err)
				continue
			}
			slog.Info("Reopened log file", "path", lf.path)
		}
	}
}

// logFile is an append-only log file that can be swapped while in use.
type logFile struct {
	mu   sync.Mutex
	path string
	f    *os.File
}

func openLogFile(path string) (*logFile, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %q: %w", path, err)
	}
	return &logFile{path: path, f: f}, nil
}

func (l *logFile) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.f.Write(p)
}

// Reopen opens path again and closes the previous handle. On failure the
// previous handle stays in use.
func (l *logFile) Reopen() error {
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file %q: %w", l.path, err)
	}
	l.mu.Lock()
	old := l.f
	l.f = f
	l.mu.Unlock()
	return old.Close()
}

func (l *logFile) Close() error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.f.Close()
}
