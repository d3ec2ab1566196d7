// Package session implements C5: the per-bot connection, login, and
// character-creation state machine, plus the command-throttled write path
// and the data fan-in that feeds C2/C3/C4 from raw socket reads.
package session

import (
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/mudload/internal/gmcp"
	"github.com/cory-johannsen/mudload/internal/msdp"
	"github.com/cory-johannsen/mudload/internal/telnet"
	"github.com/cory-johannsen/mudload/internal/telnetconn"
	"github.com/cory-johannsen/mudload/internal/textparse"
)

// State is a login/character-creation state, per spec.md §4.5.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateAwaitingName
	StateAwaitingPassword
	StateConfirmingName
	StateCreatingCharacter
	StateAwaitingMOTD
	StatePlaying
	StateError
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "DISCONNECTED"
	case StateConnecting:
		return "CONNECTING"
	case StateAwaitingName:
		return "AWAITING_NAME"
	case StateAwaitingPassword:
		return "AWAITING_PASSWORD"
	case StateConfirmingName:
		return "CONFIRMING_NAME"
	case StateCreatingCharacter:
		return "CREATING_CHARACTER"
	case StateAwaitingMOTD:
		return "AWAITING_MOTD"
	case StatePlaying:
		return "PLAYING"
	case StateError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Credentials is the username/password pair used during login.
type Credentials struct {
	User     string
	Password string
}

// CharacterDefaults supplies the answers the session sends during
// CREATING_CHARACTER prompts (race/class/sex/alignment/weapon).
type CharacterDefaults struct {
	Race      string
	Class     string
	Sex       string
	Alignment string
	Weapon    string
}

// TextListener is notified with every clean-text chunk appended to the
// session buffer.
type TextListener func(chunk string)

// Session owns one bot's Connection, telnet codec, MSDP decoder, and login
// state machine. It is exclusively owned by its session worker; none of its
// methods are safe for concurrent use from multiple goroutines except
// SendCommand, which serializes through an internal mutex.
type Session struct {
	log  *zap.Logger
	conn *telnetconn.Conn
	code *telnet.Codec
	msd  *msdp.Decoder

	creds   Credentials
	chardef CharacterDefaults

	minCommandDelay time.Duration

	mu           sync.Mutex
	state        State
	buf          strings.Builder
	listeners    []TextListener
	lastRoomVnum int
	reportSent   bool
	err          error
	bot          textparse.BotSnapshot

	// sendMu guards lastSend and serializes the throttled write path. It is
	// deliberately separate from mu: HandleChunk holds mu for the whole
	// duration of scanTriggers, and every login trigger action calls
	// SendCommand — sharing mu would self-deadlock the first time a login
	// prompt fires a send.
	sendMu   sync.Mutex
	lastSend time.Time
}

// New constructs a Session bound to an already-open Connection.
func New(conn *telnetconn.Conn, creds Credentials, chardef CharacterDefaults, minCommandDelay time.Duration, log *zap.Logger) *Session {
	return &Session{
		log:             log,
		conn:            conn,
		code:            telnet.NewCodec(),
		msd:             msdp.NewDecoder(),
		creds:           creds,
		chardef:         chardef,
		minCommandDelay: minCommandDelay,
		state:           StateConnecting,
	}
}

// State returns the current login state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Err returns the fatal error that moved the session to ERROR, if any.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Stats returns the current MSDP-derived character stats.
func (s *Session) Stats() msdp.CharacterStats {
	return s.msd.Stats()
}

// Room returns the current MSDP-derived room info.
func (s *Session) Room() msdp.RoomInfo {
	return s.msd.Room()
}

// BotSnapshot returns a copy of the current structured BOT record snapshot.
func (s *Session) BotSnapshot() textparse.BotSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bot
}

// AddTextListener registers a listener invoked with each clean-text chunk.
func (s *Session) AddTextListener(l TextListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

// SendCommand writes text followed by CRLF, throttled to minCommandDelay
// since the previous send (spec.md §4.5 "Command throttling").
//
// Postcondition: at least minCommandDelay has elapsed since the previous
// call's write before this call's write occurs.
func (s *Session) SendCommand(text string) error {
	s.sendMu.Lock()
	defer s.sendMu.Unlock()

	wait := s.minCommandDelay - time.Since(s.lastSend)
	if wait > 0 {
		time.Sleep(wait)
	}

	err := s.conn.SendLine(text)
	s.lastSend = time.Now()

	return err
}

// setState transitions the state machine, logging the edge.
func (s *Session) setState(next State) {
	if s.state == next {
		return
	}
	if s.log != nil {
		s.log.Debug("session state transition", zap.String("from", s.state.String()), zap.String("to", next.String()))
	}
	s.state = next
}

// loginTriggers maps (state, substring) to the transition/action taken when
// that substring is observed in the accumulated text buffer, per spec.md
// §4.5's table. Checked in order; the first match wins.
type loginTrigger struct {
	state     State
	substring string
	action    func(s *Session) error
}

var loginTriggers = []loginTrigger{
	{StateAwaitingName, "did i get that right", func(s *Session) error {
		s.setState(StateConfirmingName)
		return nil
	}},
	{StateAwaitingName, "password:", func(s *Session) error {
		s.setState(StateAwaitingPassword)
		return s.SendCommand(s.creds.Password)
	}},
	{StateAwaitingName, "what name", func(s *Session) error { return s.SendCommand(s.creds.User) }},
	{StateAwaitingName, "by what name", func(s *Session) error { return s.SendCommand(s.creds.User) }},
	{StateAwaitingName, "your name", func(s *Session) error { return s.SendCommand(s.creds.User) }},

	{StateAwaitingPassword, "wrong password", func(s *Session) error {
		s.setState(StateError)
		s.err = errWrongPassword
		return nil
	}},
	{StateAwaitingPassword, "reconnecting", func(s *Session) error {
		s.setState(StatePlaying)
		return nil
	}},
	{StateAwaitingPassword, "hit return", func(s *Session) error {
		s.setState(StateAwaitingMOTD)
		return nil
	}},
	{StateAwaitingPassword, "press enter", func(s *Session) error {
		s.setState(StateAwaitingMOTD)
		return nil
	}},
	{StateAwaitingPassword, "message of the day", func(s *Session) error {
		s.setState(StateAwaitingMOTD)
		return nil
	}},
	{StateAwaitingPassword, "password:", func(s *Session) error { return s.SendCommand(s.creds.Password) }},

	{StateConfirmingName, "did i get that right", func(s *Session) error {
		if err := s.SendCommand("y"); err != nil {
			return err
		}
		s.setState(StateCreatingCharacter)
		return nil
	}},

	{StateCreatingCharacter, "customize", func(s *Session) error { return s.SendCommand("n") }},
	{StateCreatingCharacter, "retype password", func(s *Session) error { return s.SendCommand(s.creds.Password) }},
	{StateCreatingCharacter, "password", func(s *Session) error { return s.SendCommand(s.creds.Password) }},
	{StateCreatingCharacter, "race", func(s *Session) error { return s.SendCommand(s.chardef.Race) }},
	{StateCreatingCharacter, "class", func(s *Session) error { return s.SendCommand(s.chardef.Class) }},
	{StateCreatingCharacter, "sex", func(s *Session) error { return s.SendCommand(s.chardef.Sex) }},
	{StateCreatingCharacter, "alignment", func(s *Session) error { return s.SendCommand(s.chardef.Alignment) }},
	{StateCreatingCharacter, "weapon", func(s *Session) error { return s.SendCommand(s.chardef.Weapon) }},

	{StateAwaitingMOTD, "press enter", enterPlaying},
	{StateAwaitingMOTD, "[hit return", enterPlaying},
	{StateAwaitingMOTD, "continue]", enterPlaying},
}

var errWrongPassword = &WrongPasswordError{}

// WrongPasswordError is fatal to the session (spec.md §7).
type WrongPasswordError struct{}

func (e *WrongPasswordError) Error() string { return "session: wrong password" }

// LoginTimeoutError is fatal to the session (spec.md §7).
type LoginTimeoutError struct{}

func (e *LoginTimeoutError) Error() string { return "session: login timed out" }

func enterPlaying(s *Session) error {
	if err := s.SendCommand(""); err != nil {
		return err
	}
	s.setState(StatePlaying)

	if s.code.State().MSDP && !s.reportSent {
		frame := msdp.BuildReport(msdp.RequiredReportVariables...)
		if err := s.conn.Send(frame); err != nil {
			return err
		}
		s.reportSent = true
	}

	return s.SendCommand("look")
}

// scanTriggers evaluates loginTriggers against the accumulated buffer for
// the current state, firing at most one action (the first match).
func (s *Session) scanTriggers() error {
	lower := strings.ToLower(s.buf.String())
	for _, t := range loginTriggers {
		if t.state != s.state {
			continue
		}
		if strings.Contains(lower, t.substring) {
			if err := t.action(s); err != nil {
				return err
			}
			// Entering AWAITING_MOTD keeps the buffer, so the prompt text
			// that caused the move is matched against the MOTD triggers on
			// the next read.
			if s.state != StateAwaitingMOTD {
				s.buf.Reset()
			}
			return nil
		}
	}
	return nil
}

// Begin transitions CONNECTING -> AWAITING_NAME, the entry point once the
// socket is open.
func (s *Session) Begin() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setState(StateAwaitingName)
}

// HandleChunk processes one raw chunk read from the Connection: it feeds C2,
// routes MSDP/GMCP payloads to C3, strips ANSI from clean text, appends it
// to the session buffer, notifies listeners, clears the BOT snapshot on
// room change and rebuilds it from any [BOT:...] lines in the chunk, and
// (while not yet PLAYING) scans the login triggers.
//
// Postcondition: returns the ANSI-stripped clean text delivered this call,
// for C4/C6 to additionally parse.
func (s *Session) HandleChunk(raw []byte) (string, []telnet.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	clean, responses, events := s.code.Decode(raw)

	if len(responses) > 0 {
		if err := s.conn.Send(responses); err != nil {
			return "", nil, err
		}
	}

	for _, ev := range events {
		switch ev.Kind {
		case telnet.EventMSDP:
			if err := s.msd.Decode(ev.Payload); err != nil {
				if s.log != nil {
					s.log.Debug("msdp decode error", zap.Error(err))
				}
			}
		case telnet.EventGMCP:
			if _, err := gmcp.Decode(ev.Payload); err != nil && s.log != nil {
				s.log.Debug("gmcp decode error", zap.Error(err))
			}
		}
	}

	text := textparse.StripANSI(string(clean))
	if text != "" {
		s.buf.WriteString(text)
		for _, l := range s.listeners {
			l(text)
		}
	}

	room := s.msd.Room()
	if room.Vnum != 0 && room.Vnum != s.lastRoomVnum {
		s.lastRoomVnum = room.Vnum
		s.bot.Clear()
	}
	if strings.Contains(text, "[BOT:") {
		s.bot.RebuildFromLines(text)
	}

	if s.state != StatePlaying && s.state != StateError {
		if err := s.scanTriggers(); err != nil {
			return text, events, err
		}
	}

	return text, events, nil
}
