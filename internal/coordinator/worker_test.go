package coordinator

import (
	"context"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/mudload/internal/accounts"
	"github.com/cory-johannsen/mudload/internal/config"
	"github.com/cory-johannsen/mudload/internal/metrics"
	"github.com/cory-johannsen/mudload/internal/session"
	"github.com/cory-johannsen/mudload/internal/telnetconn"
	"github.com/cory-johannsen/mudload/internal/testutil"
)

func testConfig(t *testing.T, addr string) config.Config {
	t.Helper()
	host, portStr, err := net.SplitHostPort(addr)
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	cfg := config.Default()
	cfg.Run.Bots = 1
	cfg.Run.Duration = 2 * time.Second
	cfg.Run.LoginTimeout = 2 * time.Second
	cfg.Run.TickInterval = 10 * time.Millisecond
	cfg.Connection.Host = host
	cfg.Connection.Port = port
	return cfg
}

func TestWorkerLoginThenPlayLoopRecordsMetrics(t *testing.T) {
	srv := testutil.NewFakeServer(t)

	cfg := testConfig(t, srv.Addr())
	rec := metrics.NewRecord("bot-1", 10)
	w := newWorker("bot-1", accounts.Credential{User: "alice", Password: "hunter2"}, cfg, rec, nil, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	done := make(chan struct{})
	go func() {
		w.run(ctx)
		close(done)
	}()

	srv.Accept()
	srv.SendLine("By what name do you wish to be known?")
	time.Sleep(50 * time.Millisecond)
	srv.SendLine("Password:")
	time.Sleep(50 * time.Millisecond)
	srv.SendLine("[Hit Return to continue]")
	time.Sleep(50 * time.Millisecond)
	srv.SendLine("Welcome to the realm")
	time.Sleep(100 * time.Millisecond)

	snap := rec.Snapshot()
	assert.True(t, snap.Connected)
	assert.Equal(t, int64(1), snap.ConnectAttempts)
	assert.Equal(t, int64(0), snap.ConnectFailures)

	cancel()
	srv.Close()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker.run did not return after context cancellation")
	}
}

func TestWorkerRecordsConnectFailureOnBadAddress(t *testing.T) {
	cfg := config.Default()
	cfg.Connection.Host = "127.0.0.1"
	cfg.Connection.Port = 1
	cfg.Connection.ConnectTimeout = 100 * time.Millisecond
	cfg.Run.LoginTimeout = 100 * time.Millisecond

	rec := metrics.NewRecord("bot-1", 10)
	w := newWorker("bot-1", accounts.Credential{User: "alice", Password: "x"}, cfg, rec, nil, nil)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	w.run(ctx)

	snap := rec.Snapshot()
	assert.False(t, snap.Connected)
	assert.Equal(t, int64(1), snap.ConnectAttempts)
	assert.Equal(t, int64(1), snap.ConnectFailures)
}

// TestRecordingCommanderRecordsCommandBytes exercises recordingCommander in
// isolation: every SendCommand call should both forward to the session and
// tally the command's byte length in the metrics record.
func TestRecordingCommanderRecordsCommandBytes(t *testing.T) {
	srv := testutil.NewFakeServer(t)
	conn, err := telnetconn.Open(srv.Addr(), false, 2*time.Second, 4096)
	require.NoError(t, err)
	defer conn.Close()
	srv.Accept()

	sess := session.New(conn, session.Credentials{User: "alice", Password: "x"}, session.CharacterDefaults{}, 0, nil)
	rec := metrics.NewRecord("bot-1", 10)
	cmd := &recordingCommander{sess: sess, rec: rec}

	require.NoError(t, cmd.SendCommand("look"))

	got := srv.ReadSome(500 * time.Millisecond)
	assert.Contains(t, string(got), "look\r\n")
	assert.Equal(t, int64(1), rec.Snapshot().CommandsSent)
}
