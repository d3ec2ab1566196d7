// Package behavior implements C6: the priority-preemptive behavior
// scheduler. Behaviors are registered once per session; each tick the
// Engine rebuilds a Context snapshot, scans the registered behaviors in
// descending priority, and ticks at most one active behavior.
package behavior

import (
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/mudload/internal/msdp"
	"github.com/cory-johannsen/mudload/internal/textparse"
)

// TickResult is the outcome of one Behavior.Tick call.
type TickResult int

const (
	// Continue keeps the behavior active; it will be ticked again once
	// TickDelay has elapsed.
	Continue TickResult = iota
	// Waiting keeps the behavior active without otherwise signaling progress.
	Waiting
	// Completed clears the active behavior and releases control to the next
	// scan, per spec.md §4.6.
	Completed
	// Failed clears the active behavior; spec.md §4.7 "Behaviors never raise" —
	// this is the sole failure signal.
	Failed
)

func (r TickResult) String() string {
	switch r {
	case Continue:
		return "CONTINUE"
	case Waiting:
		return "WAITING"
	case Completed:
		return "COMPLETED"
	case Failed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// Context is the immutable per-tick snapshot passed to CanStart and Tick,
// per spec.md §3. It is built and discarded within one scheduler tick.
type Context struct {
	Stats msdp.CharacterStats
	Room  msdp.RoomInfo
	Bot   textparse.BotSnapshot

	IsHungry                bool
	IsThirsty               bool
	ShouldProactiveShop     bool
	ShouldFightDarkCreature bool
	LastText                string

	// Flags is a read-only snapshot of every engine flag set via SetFlag,
	// including the two mirrored above by name for convenience (e.g.
	// "flee_failed", used by Survive/Recall).
	Flags map[string]bool
}

// Commander is the narrow interface a behavior uses to act: it writes
// throttled outbound commands, per C5's send_command.
type Commander interface {
	SendCommand(text string) error
}

// Bot is the engine-provided back-reference a behavior's Tick receives: it
// can send commands and read/write the engine's persistent engagement
// flags (spec.md §9 — "no reflection, no hidden globals").
type Bot interface {
	Commander
	SetFlag(name string)
	ClearFlag(name string)
	Flag(name string) bool
	ResetNeedsState()
}

// Behavior is one unit in the scheduler (spec.md §4.7, §9).
type Behavior interface {
	Priority() int
	Name() string
	TickDelay() time.Duration
	CanStart(ctx Context) bool
	Tick(bot Bot, ctx Context) TickResult
}

// starter and stopper are optional lifecycle hooks a Behavior may implement;
// the engine calls them via type assertion when a behavior becomes (or
// stops being) active.
type starter interface{ Start(ctx Context) }
type stopper interface{ Stop() }

const defaultMaxTextLines = 200

// Engine owns the ordered behavior list, the currently active behavior, the
// rolling text buffer, and the persistent engagement flags. Exclusively
// owned by its session worker (spec.md §3); its exported methods take a
// mutex only to guard against concurrent ObserveText calls from the
// session's read path.
type Engine struct {
	cmd Commander
	log *zap.Logger

	mu         sync.Mutex
	behaviors  []Behavior
	active     Behavior
	lastTick   time.Time
	textBuf    []string
	maxLines   int
	flags      map[string]bool
	isHungry   bool
	isThirsty  bool
	lastText   string
}

// NewEngine constructs an empty Engine bound to cmd for outbound commands.
func NewEngine(cmd Commander, log *zap.Logger) *Engine {
	return &Engine{
		cmd:      cmd,
		log:      log,
		maxLines: defaultMaxTextLines,
		flags:    make(map[string]bool),
	}
}

// Register adds b to the behavior list, keeping it sorted by descending
// priority. Behaviors of equal priority keep their relative registration
// order (spec.md §4.6 "ties in priority preserve insertion order").
func (e *Engine) Register(b Behavior) {
	e.mu.Lock()
	defer e.mu.Unlock()

	idx := len(e.behaviors)
	for i, existing := range e.behaviors {
		if b.Priority() > existing.Priority() {
			idx = i
			break
		}
	}
	e.behaviors = append(e.behaviors, nil)
	copy(e.behaviors[idx+1:], e.behaviors[idx:])
	e.behaviors[idx] = b
}

// SetFlag, ClearFlag, and Flag implement the engine↔behavior back-reference
// interface from spec.md §9.
func (e *Engine) SetFlag(name string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.flags[name] = true
}

func (e *Engine) ClearFlag(name string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.flags, name)
}

func (e *Engine) Flag(name string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.flags[name]
}

// SendCommand delegates to the bound Commander, satisfying the Bot
// interface for whichever behavior is ticked.
func (e *Engine) SendCommand(text string) error {
	return e.cmd.SendCommand(text)
}

// ActiveName returns the name of the currently active behavior, or "" if
// none is active.
func (e *Engine) ActiveName() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.active == nil {
		return ""
	}
	return e.active.Name()
}

var hungerThirstPhrases = []struct {
	phrase string
	set    func(e *Engine)
}{
	{"you are no longer hungry", func(e *Engine) { e.isHungry = false }},
	{"you are no longer thirsty", func(e *Engine) { e.isThirsty = false }},
	{"you are hungry", func(e *Engine) { e.isHungry = true }},
	{"you are thirsty", func(e *Engine) { e.isThirsty = true }},
	{"you eat", func(e *Engine) { e.isHungry = false }},
	{"you drink", func(e *Engine) { e.isThirsty = false }},
}

// ObserveText appends text to the rolling buffer (bounded to maxLines) and
// updates the hunger/thirst needs flags from recognized phrases, per
// spec.md §4.6.
func (e *Engine) ObserveText(text string) {
	if text == "" {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	lower := strings.ToLower(text)
	for _, p := range hungerThirstPhrases {
		if strings.Contains(lower, p.phrase) {
			p.set(e)
		}
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}
		e.textBuf = append(e.textBuf, line)
		e.lastText = line
	}
	if len(e.textBuf) > e.maxLines {
		e.textBuf = e.textBuf[len(e.textBuf)-e.maxLines:]
	}
}

// ResetNeedsState clears the hunger/thirst flags explicitly; they otherwise
// persist across behavior changes (spec.md §4.6).
func (e *Engine) ResetNeedsState() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.isHungry = false
	e.isThirsty = false
}

// buildContext assembles the immutable per-tick snapshot from the supplied
// game state plus the engine's own persistent flags.
func (e *Engine) buildContext(stats msdp.CharacterStats, room msdp.RoomInfo, bot textparse.BotSnapshot) Context {
	e.mu.Lock()
	defer e.mu.Unlock()

	flags := make(map[string]bool, len(e.flags))
	for k, v := range e.flags {
		flags[k] = v
	}

	return Context{
		Stats:                   stats,
		Room:                    room,
		Bot:                     bot,
		IsHungry:                e.isHungry,
		IsThirsty:               e.isThirsty,
		ShouldProactiveShop:     e.flags["proactive_shop"],
		ShouldFightDarkCreature: e.flags["fight_dark_creature"],
		LastText:                e.lastText,
		Flags:                   flags,
	}
}

// Tick runs one scheduler scan-and-tick cycle, per spec.md §4.6's
// invariants:
//   - the scan picks the highest-priority behavior whose CanStart(ctx) is
//     true and whose priority strictly exceeds the active behavior's (or no
//     behavior is active); ties do not preempt.
//   - the active behavior is ticked only once tick_delay has elapsed since
//     its previous tick.
//   - COMPLETED/FAILED clears the active behavior.
func (e *Engine) Tick(stats msdp.CharacterStats, room msdp.RoomInfo, bot textparse.BotSnapshot) TickResult {
	ctx := e.buildContext(stats, room, bot)

	e.mu.Lock()
	behaviors := make([]Behavior, len(e.behaviors))
	copy(behaviors, e.behaviors)
	active := e.active
	e.mu.Unlock()

	activePriority := -1 << 31
	if active != nil {
		activePriority = active.Priority()
	}

	var next Behavior
	for _, b := range behaviors {
		if b.Priority() <= activePriority {
			continue
		}
		if b.CanStart(ctx) {
			next = b
			break
		}
	}

	if next != nil {
		if active != nil {
			if s, ok := active.(stopper); ok {
				s.Stop()
			}
		}
		if s, ok := next.(starter); ok {
			s.Start(ctx)
		}
		e.mu.Lock()
		e.active = next
		e.lastTick = time.Time{}
		e.mu.Unlock()
		active = next
	}

	if active == nil {
		return Waiting
	}

	e.mu.Lock()
	due := time.Since(e.lastTick) >= active.TickDelay()
	e.mu.Unlock()
	if !due {
		return Waiting
	}

	result := active.Tick(e, ctx)

	e.mu.Lock()
	e.lastTick = time.Now()
	if result == Completed || result == Failed {
		e.active = nil
	}
	e.mu.Unlock()

	if e.log != nil {
		e.log.Debug("behavior tick", zap.String("behavior", active.Name()), zap.String("result", result.String()))
	}

	return result
}
