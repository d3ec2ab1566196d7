package msdp

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// ParseError reports malformed MSDP framing (spec.md §7 MSDPTypeError's
// sibling for grammar violations). Decoding stops at the point of failure;
// any variables parsed before the error have already been applied.
type ParseError struct {
	Offset int
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("msdp: parse error at offset %d: %s", e.Offset, e.Reason)
}

// TypeError reports a well-known variable whose value could not be
// coerced to its expected type (e.g. a non-integer HEALTH). It is collected
// in Decoder.TypeErrors rather than returned, and does not prevent the raw
// value from being retained in the store.
type TypeError struct {
	Name string
	Err  error
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("msdp: type error for %s: %v", e.Name, e.Err)
}

func (e *TypeError) Unwrap() error { return e.Err }

// Decoder owns the variable store and the derived CharacterStats/RoomInfo
// mirrors. It is safe for concurrent reads via Store/Stats/Room while a
// single producer goroutine calls Decode.
type Decoder struct {
	mu    sync.RWMutex
	store map[string]Value
	stats CharacterStats
	room  RoomInfo

	// TypeErrors accumulates non-fatal coercion failures for diagnostics.
	TypeErrors []*TypeError
}

// NewDecoder returns an empty Decoder.
func NewDecoder() *Decoder {
	return &Decoder{store: make(map[string]Value)}
}

// Store returns a snapshot of the variable store.
func (d *Decoder) Store() map[string]Value {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make(map[string]Value, len(d.store))
	for k, v := range d.store {
		out[k] = v
	}
	return out
}

// Stats returns a copy of the current derived CharacterStats.
func (d *Decoder) Stats() CharacterStats {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.stats
}

// Room returns a copy of the current derived RoomInfo.
func (d *Decoder) Room() RoomInfo {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.room
}

// Decode parses an MSDP sub-negotiation payload (the raw bytes between
// IAC SB MSDP and IAC SE, with IAC IAC already unescaped by the telnet
// codec) and applies every VAR/VAL pair it can parse to the store and the
// typed mirrors, in order.
//
// Postcondition: each successfully parsed top-level VAR/VAL pair is applied
// before decoding continues; a grammar error at byte i does not roll back
// pairs already applied from bytes [0, i).
func (d *Decoder) Decode(payload []byte) error {
	pos := 0
	for pos < len(payload) {
		if payload[pos] != CodeVAR {
			return &ParseError{Offset: pos, Reason: "expected VAR"}
		}
		pos++

		name, next, err := readAtom(payload, pos)
		if err != nil {
			return &ParseError{Offset: pos, Reason: err.Error()}
		}
		pos = next

		if pos >= len(payload) || payload[pos] != CodeVAL {
			return &ParseError{Offset: pos, Reason: "expected VAL after VAR"}
		}
		pos++

		val, next, err := parseValue(payload, pos)
		if err != nil {
			return &ParseError{Offset: pos, Reason: err.Error()}
		}
		pos = next

		d.apply(strings.ToUpper(name), val)
	}
	return nil
}

// apply stores one top-level variable and mirrors it into the typed
// structs via explicit dispatch on the well-known name (spec.md §9).
func (d *Decoder) apply(name string, val Value) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.store[name] = val

	switch name {
	case "HEALTH":
		d.setInt(name, val, &d.stats.Health)
	case "HEALTH_MAX":
		d.setInt(name, val, &d.stats.HealthMax)
	case "MANA":
		d.setInt(name, val, &d.stats.Mana)
	case "MANA_MAX":
		d.setInt(name, val, &d.stats.ManaMax)
	case "MOVEMENT":
		d.setInt(name, val, &d.stats.Movement)
	case "MOVEMENT_MAX":
		d.setInt(name, val, &d.stats.MovementMax)
	case "LEVEL":
		d.setInt(name, val, &d.stats.Level)
	case "EXPERIENCE":
		d.setInt(name, val, &d.stats.Experience)
	case "ALIGNMENT":
		d.setInt(name, val, &d.stats.Alignment)
	case "MONEY":
		d.setInt(name, val, &d.stats.Money)
	case "IN_COMBAT":
		n, err := atomInt(val)
		if err != nil {
			d.TypeErrors = append(d.TypeErrors, &TypeError{Name: name, Err: err})
			return
		}
		d.stats.InCombat = n != 0
	case "OPPONENT_NAME":
		d.stats.OpponentName = atomString(val)
	case "OPPONENT_LEVEL":
		d.setInt(name, val, &d.stats.OpponentLevel)
	case "OPPONENT_HEALTH":
		d.setInt(name, val, &d.stats.OpponentHealth)
	case "OPPONENT_HEALTH_MAX":
		d.setInt(name, val, &d.stats.OpponentHealthMax)
	case "ROOM_VNUM":
		d.setInt(name, val, &d.room.Vnum)
	case "POSITION":
		d.stats.Position = ParsePosition(atomString(val))
	case "ROOM_EXITS":
		d.room.Exits = normalizeExits(val.StringSlice())
	}
}

func (d *Decoder) setInt(name string, val Value, dst *int) {
	n, err := atomInt(val)
	if err != nil {
		d.TypeErrors = append(d.TypeErrors, &TypeError{Name: name, Err: err})
		return
	}
	*dst = n
}

func atomInt(v Value) (int, error) {
	if v.Kind != KindAtom {
		return 0, fmt.Errorf("expected atom, got %v", v.Kind)
	}
	s := strings.TrimSuffix(strings.TrimSpace(v.Atom), "%")
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("not an integer: %q", v.Atom)
	}
	return n, nil
}

func atomString(v Value) string {
	if v.Kind != KindAtom {
		return ""
	}
	return v.Atom
}

// readAtom reads a UTF-8 byte run starting at pos, terminated by the next
// code byte (1-6) or end of input.
func readAtom(data []byte, pos int) (string, int, error) {
	start := pos
	for pos < len(data) && !isCode(data[pos]) {
		pos++
	}
	return string(data[start:pos]), pos, nil
}

func isCode(b byte) bool {
	return b >= CodeVAR && b <= CodeArrayClose
}

// parseValue parses one MSDP value (atom, table, or array) starting at pos.
func parseValue(data []byte, pos int) (Value, int, error) {
	if pos >= len(data) {
		return Value{Kind: KindAtom}, pos, nil
	}

	switch data[pos] {
	case CodeTableOpen:
		pos++
		table := make(map[string]Value)
		for pos < len(data) && data[pos] != CodeTableClose {
			if data[pos] != CodeVAR {
				return Value{}, pos, fmt.Errorf("expected VAR inside TABLE")
			}
			pos++
			name, next, err := readAtom(data, pos)
			if err != nil {
				return Value{}, pos, err
			}
			pos = next
			if pos >= len(data) || data[pos] != CodeVAL {
				return Value{}, pos, fmt.Errorf("expected VAL inside TABLE")
			}
			pos++
			val, next, err := parseValue(data, pos)
			if err != nil {
				return Value{}, pos, err
			}
			pos = next
			table[strings.ToUpper(name)] = val
		}
		if pos >= len(data) {
			return Value{}, pos, fmt.Errorf("unterminated TABLE")
		}
		pos++ // consume TABLE_CLOSE
		return Value{Kind: KindTable, Table: table}, pos, nil

	case CodeArrayOpen:
		pos++
		var arr []Value
		for pos < len(data) && data[pos] != CodeArrayClose {
			if data[pos] != CodeVAL {
				return Value{}, pos, fmt.Errorf("expected VAL inside ARRAY")
			}
			pos++
			val, next, err := parseValue(data, pos)
			if err != nil {
				return Value{}, pos, err
			}
			pos = next
			arr = append(arr, val)
		}
		if pos >= len(data) {
			return Value{}, pos, fmt.Errorf("unterminated ARRAY")
		}
		pos++ // consume ARRAY_CLOSE
		return Value{Kind: KindArray, Array: arr}, pos, nil

	default:
		atom, next, err := readAtom(data, pos)
		if err != nil {
			return Value{}, pos, err
		}
		return Value{Kind: KindAtom, Atom: atom}, next, nil
	}
}

// normalizeExits maps the ROOM_EXITS array's direction tokens to full
// direction names (spec.md §3). Unrecognized tokens pass through unchanged.
func normalizeExits(raw []string) map[string]bool {
	out := make(map[string]bool, len(raw))
	for _, dir := range raw {
		out[NormalizeDirection(dir)] = true
	}
	return out
}

var directionAliases = map[string]string{
	"n": "north", "s": "south", "e": "east", "w": "west",
	"u": "up", "d": "down",
	"north": "north", "south": "south", "east": "east", "west": "west",
	"up": "up", "down": "down",
}

// NormalizeDirection maps a single-letter or full direction token to its
// full name; unknown tokens are lower-cased and returned unchanged.
func NormalizeDirection(dir string) string {
	lower := strings.ToLower(strings.TrimSpace(dir))
	if full, ok := directionAliases[lower]; ok {
		return full
	}
	return lower
}
