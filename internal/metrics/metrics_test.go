package metrics

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordCountersAccumulate(t *testing.T) {
	r := NewRecord("bot-1", 0)
	r.RecordKill()
	r.RecordKill()
	r.RecordDeath()
	r.RecordXP(150)
	r.RecordConnectAttempt()
	r.RecordParseError()
	r.SetConnected(true)
	r.SetPlaying(true)
	r.SetBehavior("Attack")
	r.SetHPPercent(87.5)

	snap := r.Snapshot()
	assert.Equal(t, int64(2), snap.Kills)
	assert.Equal(t, int64(1), snap.Deaths)
	assert.Equal(t, int64(150), snap.XPGained)
	assert.Equal(t, int64(1), snap.ConnectAttempts)
	assert.Equal(t, int64(1), snap.ParseErrors)
	assert.True(t, snap.Connected)
	assert.True(t, snap.Playing)
	assert.Equal(t, "Attack", snap.CurrentBehavior)
	assert.Equal(t, 87.5, snap.HPPercent)
}

func TestRecordLatencyWindowComputesDeltaAndBounds(t *testing.T) {
	r := NewRecord("bot-1", 3)

	for i := 0; i < 5; i++ {
		r.RecordCommandSent(10)
		time.Sleep(time.Millisecond)
		r.RecordResponse(20)
	}

	snap := r.Snapshot()
	assert.Len(t, snap.Latencies, 3, "window must bound to the configured size")
	for _, d := range snap.Latencies {
		assert.Greater(t, d, time.Duration(0))
	}
}

func TestRecordResponseWithoutPendingCommandIsNoop(t *testing.T) {
	r := NewRecord("bot-1", 0)
	r.RecordResponse(10)
	snap := r.Snapshot()
	assert.Empty(t, snap.Latencies)
	assert.Equal(t, int64(1), snap.ResponsesReceived)
}

func TestAggregatorBuildAggregatesAcrossBots(t *testing.T) {
	a := NewAggregator(0, ConfigSummary{Host: "mud.example.com", Port: 4000, NumBots: 2, Duration: time.Minute, Targets: []string{"rat"}})

	b1 := a.Register("bot-1")
	b2 := a.Register("bot-2")

	b1.SetConnected(true)
	b1.SetPlaying(true)
	b1.RecordConnectAttempt()
	b1.RecordKill()
	b1.RecordCommandSent(5)

	b2.SetConnected(true)
	b2.RecordConnectAttempt()
	b2.RecordConnectFailure()
	b2.RecordKill()
	b2.RecordKill()

	report := a.Build()
	assert.Equal(t, 2, report.Bots.Total)
	assert.Equal(t, 2, report.Bots.Connected)
	assert.Equal(t, 1, report.Bots.Playing)
	assert.Equal(t, int64(2), report.Connections.Attempts)
	assert.Equal(t, int64(1), report.Connections.Failures)
	assert.InDelta(t, 50.0, report.Connections.SuccessRate, 0.01)
	assert.Equal(t, int64(3), report.Game.Kills)
	assert.Equal(t, "mud.example.com", report.Config.Host)
	assert.Equal(t, []string{"rat"}, report.Config.Targets)
	assert.Contains(t, report.PerBot, "bot-1")
	assert.Contains(t, report.PerBot, "bot-2")
}

func TestLatencyStatsEmpty(t *testing.T) {
	avg, p99 := latencyStats(nil)
	assert.Equal(t, 0.0, avg)
	assert.Equal(t, 0.0, p99)
}

func TestLatencyStatsAvgAndP99(t *testing.T) {
	ds := []time.Duration{
		10 * time.Millisecond, 20 * time.Millisecond, 30 * time.Millisecond,
		40 * time.Millisecond, 1000 * time.Millisecond,
	}
	avg, p99 := latencyStats(ds)
	assert.InDelta(t, 220, avg, 0.5)
	assert.InDelta(t, 1000, p99, 0.5)
}

func TestAggregatorWriteJSONShape(t *testing.T) {
	a := NewAggregator(0, ConfigSummary{Host: "h", Port: 1, NumBots: 1, Duration: time.Second})
	a.Register("bot-1")

	dir := t.TempDir()
	path := filepath.Join(dir, "report.json")
	require.NoError(t, a.WriteJSON(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))

	for _, key := range []string{
		"duration_seconds", "bots", "connections", "throughput",
		"latency", "game", "errors", "per_bot", "config",
	} {
		assert.Contains(t, decoded, key)
	}
}

func TestAggregatorStatusLineAndFinalReportDoNotPanic(t *testing.T) {
	a := NewAggregator(0, ConfigSummary{Host: "h", Port: 1, NumBots: 1})
	a.Register("bot-1")
	assert.NotEmpty(t, a.StatusLine())
	assert.NotEmpty(t, a.FinalReport())
}
