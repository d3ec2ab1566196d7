// Package main provides the mudload load-generator CLI: it loads
// configuration, resolves credentials, and drives the coordinator (C8)
// until the configured duration elapses, every bot has terminated, or an
// interrupt arrives (spec.md §4.8, §6).
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/mudload/internal/accounts"
	"github.com/cory-johannsen/mudload/internal/config"
	"github.com/cory-johannsen/mudload/internal/coordinator"
	"github.com/cory-johannsen/mudload/internal/observability"
)

// Exit codes per spec.md §6: 0 on success, 1 on all-connections-failed or a
// configuration error, 130 on interrupt.
const (
	exitOK           = 0
	exitConfigOrFail = 1
	exitInterrupted  = 130
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "path to YAML configuration file")
	host := flag.String("host", "", "MUD server host")
	port := flag.Int("port", 0, "MUD server port")
	tls := flag.Bool("tls", false, "wrap the connection in TLS")
	accountsPath := flag.String("accounts", "", "path to username:password accounts file")
	user := flag.String("user", "", "single-bot username (XOR with --accounts)")
	password := flag.String("password", "", "single-bot password (XOR with --accounts)")
	bots := flag.Int("bots", 0, "number of bots to run (0 = all accounts)")
	duration := flag.Duration("duration", 0, "total run duration")
	stagger := flag.Duration("stagger", 0, "delay between staggered bot spawns")
	targets := flag.String("targets", "", "comma-separated attack target whitelist")
	fleeHP := flag.Float64("flee-hp", 0, "flee threshold, percent of max HP")
	restHP := flag.Float64("rest-hp", 0, "rest threshold, percent of max HP")
	output := flag.String("output", "", "path to write the final JSON metrics report")
	logLevel := flag.String("log-level", "", "log level: debug, info, warn, error")
	verbose := flag.Bool("verbose", false, "shorthand for --log-level debug")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "mudload:", err)
		return exitConfigOrFail
	}
	applyFlags(cfg, flagOverrides{
		host: *host, port: *port, tls: *tls,
		accountsPath: *accountsPath, user: *user, password: *password,
		bots: *bots, duration: *duration, stagger: *stagger,
		targets: *targets, fleeHP: *fleeHP, restHP: *restHP,
		output: *output, logLevel: *logLevel, verbose: *verbose,
	})

	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "mudload:", err)
		return exitConfigOrFail
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintln(os.Stderr, "mudload:", err)
		return exitConfigOrFail
	}
	defer logger.Sync()

	creds, err := resolveCredentials(*cfg, logger)
	if err != nil {
		logger.Error("resolving credentials", zap.Error(err))
		return exitConfigOrFail
	}

	numBots := cfg.Run.Bots
	if numBots <= 0 || numBots > len(creds) {
		numBots = len(creds)
	}
	cfg.Run.Bots = numBots

	co, err := coordinator.New(*cfg, creds, logger)
	if err != nil {
		logger.Error("initializing coordinator", zap.Error(err))
		return exitConfigOrFail
	}
	defer co.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	var interrupted atomic.Bool
	go func() {
		sig := <-sigCh
		logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
		interrupted.Store(true)
		cancel()
	}()

	logger.Info("starting run",
		zap.String("addr", cfg.Connection.Addr()),
		zap.Int("bots", cfg.Run.Bots),
		zap.Duration("duration", cfg.Run.Duration),
	)

	co.Run(ctx)

	agg := co.Aggregator()
	fmt.Println(agg.FinalReport())

	if cfg.Metrics.OutputPath != "" {
		if err := agg.WriteJSON(cfg.Metrics.OutputPath); err != nil {
			logger.Error("writing JSON metrics", zap.Error(err))
		}
	}

	if interrupted.Load() {
		return exitInterrupted
	}
	rep := agg.Build()
	if rep.Connections.Attempts > 0 && rep.Connections.Failures >= rep.Connections.Attempts {
		return exitConfigOrFail
	}
	return exitOK
}

// loadConfig returns config.Default() when path is empty, matching the
// teacher's convention of a file-optional, flag-overridable config.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		cfg := config.Default()
		return &cfg, nil
	}
	return config.Load(path)
}

type flagOverrides struct {
	host              string
	port              int
	tls               bool
	accountsPath      string
	user, password    string
	bots              int
	duration, stagger time.Duration
	targets           string
	fleeHP, restHP    float64
	output, logLevel  string
	verbose           bool
}

// applyFlags overlays any explicitly-set CLI flag on top of the loaded
// config, per spec.md §6's flag table — flags win over the file.
func applyFlags(cfg *config.Config, f flagOverrides) {
	if f.host != "" {
		cfg.Connection.Host = f.host
	}
	if f.port != 0 {
		cfg.Connection.Port = f.port
	}
	if f.tls {
		cfg.Connection.TLS = true
	}
	if f.accountsPath != "" {
		cfg.Accounts.AccountsFile = f.accountsPath
	}
	if f.user != "" {
		cfg.Accounts.User = f.user
	}
	if f.password != "" {
		cfg.Accounts.Password = f.password
	}
	if f.bots != 0 {
		cfg.Run.Bots = f.bots
	}
	if f.duration != 0 {
		cfg.Run.Duration = f.duration
	}
	if f.stagger != 0 {
		cfg.Run.StaggerDelay = f.stagger
	}
	if f.targets != "" {
		cfg.Behavior.Targets = splitCSV(f.targets)
	}
	if f.fleeHP != 0 {
		cfg.Behavior.FleeHPPercent = f.fleeHP
	}
	if f.restHP != 0 {
		cfg.Behavior.RestHPPercent = f.restHP
	}
	if f.output != "" {
		cfg.Metrics.OutputPath = f.output
	}
	if f.logLevel != "" {
		cfg.Logging.Level = f.logLevel
	}
	if f.verbose {
		cfg.Logging.Verbose = true
	}
}

func splitCSV(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == ',' {
			if s[start:i] != "" {
				out = append(out, s[start:i])
			}
			start = i + 1
		}
	}
	if s[start:] != "" {
		out = append(out, s[start:])
	}
	return out
}

// resolveCredentials implements spec.md §6's accounts-vs-user/password XOR:
// Config.Validate has already enforced exactly one is set.
func resolveCredentials(cfg config.Config, logger *zap.Logger) ([]accounts.Credential, error) {
	if cfg.Accounts.AccountsFile != "" {
		return accounts.Load(cfg.Accounts.AccountsFile, logger)
	}
	return accounts.Single(cfg.Accounts.User, cfg.Accounts.Password), nil
}
