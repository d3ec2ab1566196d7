package metrics

import (
	"fmt"
	"math"
	"sort"
	"sync"
	"time"
)

// ConfigSummary is the subset of run configuration the JSON report echoes
// back, per spec.md §6.
type ConfigSummary struct {
	Host     string
	Port     int
	NumBots  int
	Duration time.Duration
	Targets  []string
}

// Aggregator owns every bot's Record and reads them all under its own lock
// to build a report; each Record's own lock still guards its fields against
// the owning worker's concurrent writes (spec.md §4.9, §5).
type Aggregator struct {
	mu      sync.RWMutex
	records map[string]*Record

	start         time.Time
	latencyWindow int
	config        ConfigSummary
}

// NewAggregator creates an empty Aggregator. latencyWindow of 0 uses the
// documented default of 100.
func NewAggregator(latencyWindow int, cfg ConfigSummary) *Aggregator {
	return &Aggregator{
		records:       make(map[string]*Record),
		start:         time.Now(),
		latencyWindow: latencyWindow,
		config:        cfg,
	}
}

// Register creates and tracks a new Record for name, returning it for the
// owning worker to update.
func (a *Aggregator) Register(name string) *Record {
	r := NewRecord(name, a.latencyWindow)
	a.mu.Lock()
	defer a.mu.Unlock()
	a.records[name] = r
	return r
}

// snapshots returns a stable-ordered copy of every tracked record.
func (a *Aggregator) snapshots() []Snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()

	names := make([]string, 0, len(a.records))
	for name := range a.records {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]Snapshot, 0, len(names))
	for _, name := range names {
		out = append(out, a.records[name].Snapshot())
	}
	return out
}

// BotsReport summarizes bot lifecycle counts.
type BotsReport struct {
	Total     int `json:"total"`
	Connected int `json:"connected"`
	Playing   int `json:"playing"`
}

// ConnectionsReport summarizes connection attempts.
type ConnectionsReport struct {
	Attempts    int64   `json:"attempts"`
	Failures    int64   `json:"failures"`
	SuccessRate float64 `json:"success_rate"`
}

// ThroughputReport summarizes command/byte throughput.
type ThroughputReport struct {
	CommandsSent      int64   `json:"commands_sent"`
	CommandsPerSecond float64 `json:"commands_per_second"`
	BytesSent         int64   `json:"bytes_sent"`
	BytesReceived     int64   `json:"bytes_received"`
}

// LatencyReport summarizes the union of every bot's latency window.
type LatencyReport struct {
	AvgMs float64 `json:"avg_ms"`
	P99Ms float64 `json:"p99_ms"`
}

// GameReport summarizes in-game progress.
type GameReport struct {
	Kills          int64   `json:"kills"`
	Deaths         int64   `json:"deaths"`
	XPGained       int64   `json:"xp_gained"`
	KillsPerMinute float64 `json:"kills_per_minute"`
}

// ErrorsReport summarizes error counters.
type ErrorsReport struct {
	Parse   int64 `json:"parse"`
	Timeout int64 `json:"timeout"`
}

// PerBotReport is one bot's status snapshot.
type PerBotReport struct {
	Connected bool    `json:"connected"`
	Commands  int64   `json:"commands"`
	Kills     int64   `json:"kills"`
	HPPercent float64 `json:"hp_percent"`
	Behavior  string  `json:"behavior"`
}

// ConfigReport echoes the run configuration.
type ConfigReport struct {
	Host     string   `json:"host"`
	Port     int      `json:"port"`
	NumBots  int      `json:"num_bots"`
	Duration float64  `json:"duration"`
	Targets  []string `json:"targets"`
}

// Report is the top-level JSON document shape from spec.md §6.
type Report struct {
	DurationSeconds float64                 `json:"duration_seconds"`
	Bots            BotsReport              `json:"bots"`
	Connections     ConnectionsReport       `json:"connections"`
	Throughput      ThroughputReport        `json:"throughput"`
	Latency         LatencyReport           `json:"latency"`
	Game            GameReport              `json:"game"`
	Errors          ErrorsReport            `json:"errors"`
	PerBot          map[string]PerBotReport `json:"per_bot"`
	Config          ConfigReport            `json:"config"`
}

// Build assembles a Report from the current state of every tracked record.
func (a *Aggregator) Build() Report {
	snaps := a.snapshots()
	elapsed := time.Since(a.start)
	elapsedSeconds := elapsed.Seconds()

	var (
		connected, playing                     int
		connectAttempts, connectFailures       int64
		commandsSent, bytesSent, bytesReceived int64
		kills, deaths, xpGained                int64
		parseErrors, timeoutErrors             int64
		allLatencies                           []time.Duration
	)

	perBot := make(map[string]PerBotReport, len(snaps))
	for _, s := range snaps {
		if s.Connected {
			connected++
		}
		if s.Playing {
			playing++
		}
		connectAttempts += s.ConnectAttempts
		connectFailures += s.ConnectFailures
		commandsSent += s.CommandsSent
		bytesSent += s.BytesSent
		bytesReceived += s.BytesReceived
		kills += s.Kills
		deaths += s.Deaths
		xpGained += s.XPGained
		parseErrors += s.ParseErrors
		timeoutErrors += s.TimeoutErrors
		allLatencies = append(allLatencies, s.Latencies...)

		perBot[s.Name] = PerBotReport{
			Connected: s.Connected,
			Commands:  s.CommandsSent,
			Kills:     s.Kills,
			HPPercent: s.HPPercent,
			Behavior:  s.CurrentBehavior,
		}
	}

	successRate := 0.0
	if connectAttempts > 0 {
		successRate = 100 * float64(connectAttempts-connectFailures) / float64(connectAttempts)
	}

	cps := 0.0
	kpm := 0.0
	if elapsedSeconds > 0 {
		cps = float64(commandsSent) / elapsedSeconds
		kpm = float64(kills) / (elapsedSeconds / 60)
	}

	avgMs, p99Ms := latencyStats(allLatencies)

	return Report{
		DurationSeconds: elapsedSeconds,
		Bots: BotsReport{
			Total:     len(snaps),
			Connected: connected,
			Playing:   playing,
		},
		Connections: ConnectionsReport{
			Attempts:    connectAttempts,
			Failures:    connectFailures,
			SuccessRate: successRate,
		},
		Throughput: ThroughputReport{
			CommandsSent:      commandsSent,
			CommandsPerSecond: cps,
			BytesSent:         bytesSent,
			BytesReceived:     bytesReceived,
		},
		Latency: LatencyReport{
			AvgMs: avgMs,
			P99Ms: p99Ms,
		},
		Game: GameReport{
			Kills:          kills,
			Deaths:         deaths,
			XPGained:       xpGained,
			KillsPerMinute: kpm,
		},
		Errors: ErrorsReport{
			Parse:   parseErrors,
			Timeout: timeoutErrors,
		},
		PerBot: perBot,
		Config: ConfigReport{
			Host:     a.config.Host,
			Port:     a.config.Port,
			NumBots:  a.config.NumBots,
			Duration: a.config.Duration.Seconds(),
			Targets:  a.config.Targets,
		},
	}
}

// latencyStats computes the mean and 99th percentile (nearest-rank) of a
// set of durations, in milliseconds. Returns (0, 0) for an empty set.
func latencyStats(ds []time.Duration) (avgMs, p99Ms float64) {
	if len(ds) == 0 {
		return 0, 0
	}

	sorted := make([]time.Duration, len(ds))
	copy(sorted, ds)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var sum time.Duration
	for _, d := range sorted {
		sum += d
	}
	avgMs = float64(sum.Microseconds()) / 1000 / float64(len(sorted))

	idx := int(math.Ceil(float64(len(sorted))*0.99)) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	p99Ms = float64(sorted[idx].Microseconds()) / 1000

	return avgMs, p99Ms
}

// StatusLine renders a compact single-line summary suitable for periodic
// console output.
func (a *Aggregator) StatusLine() string {
	r := a.Build()
	return fmt.Sprintf(
		"[%.0fs] bots=%d/%d connected, %d playing | cmds=%d (%.1f/s) | kills=%d deaths=%d xp=%d | errors=%d/%d",
		r.DurationSeconds, r.Bots.Connected, r.Bots.Total, r.Bots.Playing,
		r.Throughput.CommandsSent, r.Throughput.CommandsPerSecond,
		r.Game.Kills, r.Game.Deaths, r.Game.XPGained,
		r.Errors.Parse, r.Errors.Timeout,
	)
}
