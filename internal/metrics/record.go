// Package metrics implements C9: per-session counters, a rolling
// command-to-response latency window, a lock-guarded aggregator, and the
// periodic/final/JSON reports spec.md §4.9 and §6 describe.
package metrics

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// latencyWindowDefault matches the documented default window size.
const latencyWindowDefault = 100

// Record is one bot session's counters and rolling latency window. All
// methods are safe for concurrent use; the session worker that owns a
// Record is the only writer, but the aggregator reads it from another
// goroutine while building a report.
type Record struct {
	mu sync.Mutex

	name      string
	sessionID string

	connected bool
	playing   bool

	commandsSent      int64
	responsesReceived int64
	bytesSent         int64
	bytesReceived     int64

	kills        int64
	deaths       int64
	xpGained     int64
	fleeAttempts int64

	connectAttempts int64
	connectFailures int64
	parseErrors     int64
	timeoutErrors   int64

	currentBehavior string
	hpPercent       float64

	latencyWindow int
	latencies     []time.Duration
	pendingSince  time.Time
	pendingSet    bool
}

// NewRecord constructs an empty Record for the named bot, with the latency
// window sized per windowSize (0 uses the documented default of 100).
func NewRecord(name string, windowSize int) *Record {
	if windowSize <= 0 {
		windowSize = latencyWindowDefault
	}
	return &Record{
		name:          name,
		sessionID:     uuid.NewString(),
		latencyWindow: windowSize,
		hpPercent:     100,
	}
}

// Name returns the bot name this record is scoped to.
func (r *Record) Name() string { return r.name }

// SessionID returns the unique identifier generated for this record's bot
// session, distinct from its human-readable Name (which a coordinator may
// reuse, e.g. "bot-1", across runs).
func (r *Record) SessionID() string { return r.sessionID }

// SetConnected updates the connected flag.
func (r *Record) SetConnected(v bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.connected = v
}

// SetPlaying updates the playing flag.
func (r *Record) SetPlaying(v bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.playing = v
}

// SetBehavior records the name of the currently active behavior, or "" for
// none.
func (r *Record) SetBehavior(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.currentBehavior = name
}

// SetHPPercent records the character's current HP percentage.
func (r *Record) SetHPPercent(pct float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hpPercent = pct
}

// RecordConnectAttempt increments the connection-attempt counter.
func (r *Record) RecordConnectAttempt() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.connectAttempts++
}

// RecordConnectFailure increments the connection-failure counter.
func (r *Record) RecordConnectFailure() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.connectFailures++
}

// RecordParseError increments the parse-error counter.
func (r *Record) RecordParseError() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.parseErrors++
}

// RecordTimeout increments the timeout-error counter.
func (r *Record) RecordTimeout() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.timeoutErrors++
}

// RecordKill increments the kill counter.
func (r *Record) RecordKill() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.kills++
}

// RecordDeath increments the death counter.
func (r *Record) RecordDeath() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deaths++
}

// RecordXP adds n to the experience-gained counter.
func (r *Record) RecordXP(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.xpGained += int64(n)
}

// RecordFleeAttempt increments the flee-attempt counter.
func (r *Record) RecordFleeAttempt() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fleeAttempts++
}

// RecordCommandSent records one outbound command of n bytes and starts the
// latency clock for the next inbound chunk, per spec.md §4.9.
func (r *Record) RecordCommandSent(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commandsSent++
	r.bytesSent += int64(n)
	r.pendingSince = time.Now()
	r.pendingSet = true
}

// RecordResponse records one inbound chunk of n bytes; if a command's
// latency clock is pending, it computes the delta and clears it.
func (r *Record) RecordResponse(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.responsesReceived++
	r.bytesReceived += int64(n)

	if !r.pendingSet {
		return
	}
	r.pendingSet = false
	d := time.Since(r.pendingSince)
	r.latencies = append(r.latencies, d)
	if len(r.latencies) > r.latencyWindow {
		r.latencies = r.latencies[len(r.latencies)-r.latencyWindow:]
	}
}

// Snapshot is an immutable point-in-time copy of a Record, safe to read
// without the record's lock.
type Snapshot struct {
	Name              string
	SessionID         string
	Connected         bool
	Playing           bool
	CommandsSent      int64
	ResponsesReceived int64
	BytesSent         int64
	BytesReceived     int64
	Kills             int64
	Deaths            int64
	XPGained          int64
	FleeAttempts      int64
	ConnectAttempts   int64
	ConnectFailures   int64
	ParseErrors       int64
	TimeoutErrors     int64
	CurrentBehavior   string
	HPPercent         float64
	Latencies         []time.Duration
}

// Snapshot copies the record's current state.
func (r *Record) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	latencies := make([]time.Duration, len(r.latencies))
	copy(latencies, r.latencies)

	return Snapshot{
		Name:              r.name,
		SessionID:         r.sessionID,
		Connected:         r.connected,
		Playing:           r.playing,
		CommandsSent:      r.commandsSent,
		ResponsesReceived: r.responsesReceived,
		BytesSent:         r.bytesSent,
		BytesReceived:     r.bytesReceived,
		Kills:             r.kills,
		Deaths:            r.deaths,
		XPGained:          r.xpGained,
		FleeAttempts:      r.fleeAttempts,
		ConnectAttempts:   r.connectAttempts,
		ConnectFailures:   r.connectFailures,
		ParseErrors:       r.parseErrors,
		TimeoutErrors:     r.timeoutErrors,
		CurrentBehavior:   r.currentBehavior,
		HPPercent:         r.hpPercent,
		Latencies:         latencies,
	}
}
