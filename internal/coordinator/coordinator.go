// Package coordinator implements C8: it spawns one worker per configured
// bot, staggers their startup, runs them for the configured duration, and
// periodically reports aggregate progress (spec.md §4.8, §5).
package coordinator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/mudload/internal/accounts"
	"github.com/cory-johannsen/mudload/internal/config"
	"github.com/cory-johannsen/mudload/internal/metrics"
	"github.com/cory-johannsen/mudload/internal/script"
)

// Coordinator owns the bot fleet's lifecycle: starting workers in order
// with a stagger delay between each, printing status on a fixed interval,
// and, when the run ends, cancelling every worker through one shared
// context and waiting for all of them (grounded on the teacher's
// internal/server.Lifecycle start/stop pattern).
type Coordinator struct {
	cfg   config.Config
	creds []accounts.Credential
	log   *zap.Logger

	agg       *metrics.Aggregator
	scriptMgr *script.Manager
}

// New builds a Coordinator ready to Run. creds supplies one credential per
// bot; if it has fewer entries than cfg.Run.Bots, entries are reused
// round-robin (spec.md §4.2: accounts may be shared across bots).
//
// Precondition: creds must be non-empty.
func New(cfg config.Config, creds []accounts.Credential, log *zap.Logger) (*Coordinator, error) {
	if len(creds) == 0 {
		return nil, fmt.Errorf("coordinator.New: no credentials supplied")
	}

	agg := metrics.NewAggregator(cfg.Metrics.LatencyWindow, metrics.ConfigSummary{
		Host:     cfg.Connection.Host,
		Port:     cfg.Connection.Port,
		NumBots:  cfg.Run.Bots,
		Duration: cfg.Run.Duration,
		Targets:  cfg.Behavior.Targets,
	})

	var mgr *script.Manager
	if cfg.Behavior.ScriptFile != "" {
		m, err := script.Load(cfg.Behavior.ScriptFile, log)
		if err != nil {
			return nil, fmt.Errorf("coordinator.New: %w", err)
		}
		mgr = m
	}

	return &Coordinator{cfg: cfg, creds: creds, log: log, agg: agg, scriptMgr: mgr}, nil
}

// Close releases the optional Lua script VM, if one was loaded. Safe to
// call even when no script_file was configured.
func (c *Coordinator) Close() {
	if c.scriptMgr != nil {
		c.scriptMgr.Close()
	}
}

// Aggregator exposes the metrics aggregator, for callers that want a final
// report after Run returns.
func (c *Coordinator) Aggregator() *metrics.Aggregator {
	return c.agg
}

// Run starts every configured bot staggered by Run.StaggerDelay, prints a
// status line every Run.StatusInterval, and returns once Run.Duration has
// elapsed, ctx is cancelled, or every worker has exited on its own —
// whichever comes first. Every worker is signaled to stop and Run waits
// for all of them before returning.
//
// Postcondition: every spawned worker goroutine has exited when Run returns.
func (c *Coordinator) Run(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, c.cfg.Run.Duration)
	defer cancel()

	var wg sync.WaitGroup
	for i := 0; i < c.cfg.Run.Bots; i++ {
		name := fmt.Sprintf("bot-%d", i+1)
		cred := c.creds[i%len(c.creds)]
		rec := c.agg.Register(name)
		botLog := c.log
		if botLog != nil {
			botLog = botLog.With(zap.String("bot", name), zap.String("session_id", rec.SessionID()))
		}

		wg.Add(1)
		go func(name string, cred accounts.Credential, rec *metrics.Record, log *zap.Logger) {
			defer wg.Done()
			w := newWorker(name, cred, c.cfg, rec, log, c.scriptMgr)
			w.run(runCtx)
		}(name, cred, rec, botLog)

		select {
		case <-runCtx.Done():
		case <-time.After(c.cfg.Run.StaggerDelay):
		}
	}

	// Status reporting also stops once every worker has exited.
	statusCtx, stopStatus := context.WithCancel(runCtx)
	go func() {
		wg.Wait()
		stopStatus()
	}()
	c.statusLoop(statusCtx)
	stopStatus()

	wg.Wait()
}

// statusLoop prints StatusLine() on Run.StatusInterval until ctx is done.
func (c *Coordinator) statusLoop(ctx context.Context) {
	interval := c.cfg.Run.StatusInterval
	if interval <= 0 {
		interval = 10 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			line := c.agg.StatusLine()
			if c.log != nil {
				c.log.Info(line)
			} else {
				fmt.Println(line)
			}
		}
	}
}
