package coordinator

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/mudload/internal/accounts"
	"github.com/cory-johannsen/mudload/internal/behavior"
	"github.com/cory-johannsen/mudload/internal/config"
	"github.com/cory-johannsen/mudload/internal/metrics"
	"github.com/cory-johannsen/mudload/internal/script"
	"github.com/cory-johannsen/mudload/internal/session"
	"github.com/cory-johannsen/mudload/internal/telnetconn"
	"github.com/cory-johannsen/mudload/internal/textparse"
)

// recvTimeout bounds each inbound drain, per spec.md §4.8 step 4.
const recvTimeout = 200 * time.Millisecond

// recordingCommander wraps a Session so every behavior-issued command is
// also counted by the owning bot's metrics record.
type recordingCommander struct {
	sess *session.Session
	rec  *metrics.Record
}

func (c *recordingCommander) SendCommand(text string) error {
	c.rec.RecordCommandSent(len(text))
	return c.sess.SendCommand(text)
}

// worker drives exactly one bot session: connect, log in, register
// behaviors, then tick until told to stop or the session drops out of
// PLAYING (spec.md §4.8).
type worker struct {
	name      string
	cred      accounts.Credential
	cfg       config.Config
	rec       *metrics.Record
	log       *zap.Logger
	scriptMgr *script.Manager
}

func newWorker(name string, cred accounts.Credential, cfg config.Config, rec *metrics.Record, log *zap.Logger, scriptMgr *script.Manager) *worker {
	return &worker{name: name, cred: cred, cfg: cfg, rec: rec, log: log, scriptMgr: scriptMgr}
}

// run blocks until ctx is cancelled, the session errors, or login/playing
// ends. It never panics. Connect failures, login timeouts and parse errors
// are recorded in metrics; a login that ends in the ERROR state is only
// logged.
func (w *worker) run(ctx context.Context) {
	w.rec.RecordConnectAttempt()

	conn, err := telnetconn.Open(
		w.cfg.Connection.Addr(),
		w.cfg.Connection.TLS,
		w.cfg.Connection.ConnectTimeout,
		w.cfg.Connection.RecvBufferSize,
	)
	if err != nil {
		w.rec.RecordConnectFailure()
		if w.log != nil {
			w.log.Warn("worker: connect failed", zap.String("bot", w.name), zap.Error(err))
		}
		return
	}
	defer conn.Close()

	w.rec.SetConnected(true)

	sess := session.New(
		conn,
		session.Credentials{User: w.cred.User, Password: w.cred.Password},
		session.CharacterDefaults{
			Race:      w.cfg.Character.Race,
			Class:     w.cfg.Character.Class,
			Sex:       w.cfg.Character.Sex,
			Alignment: w.cfg.Character.Alignment,
			Weapon:    w.cfg.Character.Weapon,
		},
		w.cfg.Behavior.MinCommandDelay,
		w.log,
	)

	cmd := &recordingCommander{sess: sess, rec: w.rec}
	engine := behavior.NewEngine(cmd, w.log)
	registerBehaviors(engine, w.cfg, w.rec, w.scriptMgr)

	sess.AddTextListener(func(chunk string) {
		w.rec.RecordResponse(len(chunk))
		engine.ObserveText(chunk)
		observeGameEvents(chunk, w.rec)
	})

	sess.Begin()

	if !w.login(ctx, conn, sess) {
		return
	}

	w.rec.SetPlaying(true)
	w.playLoop(ctx, conn, sess, engine)
}

// login drains chunks until the session reaches PLAYING, errors, or the
// configured login_timeout elapses.
func (w *worker) login(ctx context.Context, conn *telnetconn.Conn, sess *session.Session) bool {
	deadline := time.Now().Add(w.cfg.Run.LoginTimeout)

	for sess.State() != session.StatePlaying {
		select {
		case <-ctx.Done():
			return false
		default:
		}

		if time.Now().After(deadline) {
			w.rec.RecordTimeout()
			if w.log != nil {
				w.log.Warn("worker: login timed out", zap.String("bot", w.name))
			}
			return false
		}

		data, _ := conn.Recv(recvTimeout)
		if conn.State() != telnetconn.StateConnected {
			w.rec.RecordConnectFailure()
			return false
		}
		if len(data) == 0 {
			continue
		}

		if _, _, err := sess.HandleChunk(data); err != nil {
			w.rec.RecordParseError()
			if w.log != nil {
				w.log.Warn("worker: login error", zap.String("bot", w.name), zap.Error(err))
			}
			return false
		}
		if sess.State() == session.StateError {
			if w.log != nil {
				w.log.Warn("worker: login failed", zap.String("bot", w.name), zap.Error(sess.Err()))
			}
			return false
		}
	}
	return true
}

// playLoop is the steady-state worker loop from spec.md §4.8 step 4.
func (w *worker) playLoop(ctx context.Context, conn *telnetconn.Conn, sess *session.Session, engine *behavior.Engine) {
	tickInterval := w.cfg.Run.TickInterval
	if tickInterval <= 0 {
		tickInterval = 500 * time.Millisecond
	}

	for {
		select {
		case <-ctx.Done():
			_ = sess.SendCommand("quit")
			return
		default:
		}

		if sess.State() != session.StatePlaying {
			return
		}

		data, _ := conn.Recv(recvTimeout)
		if conn.State() != telnetconn.StateConnected {
			w.rec.SetConnected(false)
			return
		}
		if len(data) > 0 {
			if _, _, err := sess.HandleChunk(data); err != nil {
				w.rec.RecordParseError()
			}
		}

		stats := sess.Stats()
		w.rec.SetHPPercent(stats.HPPercent())

		engine.Tick(stats, sess.Room(), sess.BotSnapshot())
		w.rec.SetBehavior(engine.ActiveName())

		select {
		case <-ctx.Done():
			_ = sess.SendCommand("quit")
			return
		case <-time.After(tickInterval):
		}
	}
}

// observeGameEvents scans one chunk of clean text for kill/XP lines and
// updates the bot's metrics record accordingly.
func observeGameEvents(chunk string, rec *metrics.Record) {
	for _, line := range splitLines(chunk) {
		if _, ok := textparse.ParseKill(line); ok {
			rec.RecordKill()
		}
		if n, ok := textparse.ParseXPGain(line); ok {
			rec.RecordXP(n)
		}
	}
}

func splitLines(text string) []string {
	var lines []string
	start := 0
	for i, r := range text {
		if r == '\n' {
			lines = append(lines, text[start:i])
			start = i + 1
		}
	}
	lines = append(lines, text[start:])
	return lines
}
