// Package telnet implements C2: a synchronous telnet codec. It frames the
// IAC byte stream, negotiates options per the policy in spec.md §4.2, and
// routes MSDP/GMCP sub-negotiation payloads to the caller as events. It does
// no I/O and does not interpret text content.
package telnet

// IAC and telnet command bytes, per RFC 854.
const (
	SE   byte = 240
	NOP  byte = 241
	GA   byte = 249
	SB   byte = 250
	WILL byte = 251
	WONT byte = 252
	DO   byte = 253
	DONT byte = 254
	IAC  byte = 255
)

// Telnet option bytes.
const (
	OptEcho  byte = 1
	OptSGA   byte = 3
	OptTTYPE byte = 24
	OptEOR   byte = 25
	OptNAWS  byte = 31
	OptMSDP  byte = 69
	OptMCCP2 byte = 86
	OptGMCP  byte = 201
)

// TTYPE sub-negotiation commands.
const (
	ttypeIS   byte = 0
	ttypeSEND byte = 1
)

// EventKind classifies a routed sub-negotiation payload.
type EventKind int

const (
	// EventMSDP carries a raw MSDP sub-negotiation payload.
	EventMSDP EventKind = iota
	// EventGMCP carries a raw GMCP sub-negotiation payload.
	EventGMCP
	// EventUnknownOption reports a sub-negotiation for an option the codec
	// does not interpret; the caller may log and ignore it.
	EventUnknownOption
)

// Event is one routed sub-negotiation the caller should act on.
type Event struct {
	Kind    EventKind
	Option  byte
	Payload []byte
}

// State holds the per-peer negotiated option booleans, per spec.md §3.
type State struct {
	Echo     bool
	SGA      bool
	EOR      bool
	MSDP     bool
	GMCP     bool
	MCCP2    bool
	NAWSSent bool
}

type mode int

const (
	modeText mode = iota
	modeIAC
	modeNegotiate
	modeSBOption
	modeSBData
	modeSBIAC
)

// Codec decodes telnet byte streams incrementally. A zero-value Codec is
// not usable; construct with NewCodec. Decode may be called repeatedly with
// arbitrary chunk boundaries — a split IAC/sub-negotiation sequence carries
// correctly across calls via the Codec's internal mode and buffer.
type Codec struct {
	state State

	mode          mode
	pendingNegCmd byte
	subOption     byte
	subBuf        []byte

	// TermType is sent in reply to a server's TTYPE SEND request.
	TermType string

	// NAWSCols/NAWSRows are reported in the NAWS sub-negotiation sent when
	// the server negotiates DO NAWS.
	NAWSCols uint16
	NAWSRows uint16
}

// NewCodec constructs a Codec with the default terminal geometry from
// spec.md §8 scenario 1 (80x24).
func NewCodec() *Codec {
	return &Codec{
		mode:     modeText,
		TermType: "mudload",
		NAWSCols: 80,
		NAWSRows: 24,
	}
}

// State returns a copy of the codec's current negotiated option state.
func (c *Codec) State() State { return c.state }

// Decode processes one chunk of raw bytes read from the socket and returns
// the clean text (ANSI/game content, still containing ANSI escapes — C4
// handles stripping), the bytes the codec wants written back to the peer,
// and any routed sub-negotiation events.
//
// Postcondition: clean contains no byte equal to 255 except where an
// escaped-IAC pair (255 255) decoded to a literal 255.
func (c *Codec) Decode(chunk []byte) (clean []byte, responses []byte, events []Event) {
	cleanBuf := make([]byte, 0, len(chunk))
	var respBuf []byte

	for _, b := range chunk {
		switch c.mode {
		case modeText:
			if b == IAC {
				c.mode = modeIAC
			} else {
				cleanBuf = append(cleanBuf, b)
			}

		case modeIAC:
			switch b {
			case IAC:
				cleanBuf = append(cleanBuf, 0xFF)
				c.mode = modeText
			case WILL, WONT, DO, DONT:
				c.pendingNegCmd = b
				c.mode = modeNegotiate
			case SB:
				c.subBuf = c.subBuf[:0]
				c.mode = modeSBOption
			default:
				// SE/NOP/GA/unknown commands take no argument.
				c.mode = modeText
			}

		case modeNegotiate:
			resp := c.negotiate(c.pendingNegCmd, b)
			respBuf = append(respBuf, resp...)
			c.mode = modeText

		case modeSBOption:
			c.subOption = b
			c.mode = modeSBData

		case modeSBData:
			if b == IAC {
				c.mode = modeSBIAC
			} else {
				c.subBuf = append(c.subBuf, b)
			}

		case modeSBIAC:
			switch b {
			case SE:
				ev, resp := c.closeSubnegotiation()
				if ev != nil {
					events = append(events, *ev)
				}
				respBuf = append(respBuf, resp...)
				c.mode = modeText
			case IAC:
				c.subBuf = append(c.subBuf, 0xFF)
				c.mode = modeSBData
			default:
				// Malformed: a non-SE, non-IAC byte after IAC inside SB.
				// Resume buffering without losing the byte.
				c.subBuf = append(c.subBuf, b)
				c.mode = modeSBData
			}
		}
	}

	return cleanBuf, respBuf, events
}

// negotiate applies the policy table from spec.md §4.2 for one WILL/WONT/DO/DONT
// and returns the bytes to write back (possibly empty).
func (c *Codec) negotiate(cmd, option byte) []byte {
	switch cmd {
	case WILL:
		switch option {
		case OptEcho:
			c.state.Echo = true
			return []byte{IAC, DO, OptEcho}
		case OptSGA:
			c.state.SGA = true
			return []byte{IAC, DO, OptSGA}
		case OptEOR:
			c.state.EOR = true
			return []byte{IAC, DO, OptEOR}
		case OptMSDP:
			c.state.MSDP = true
			return []byte{IAC, DO, OptMSDP}
		case OptGMCP:
			c.state.GMCP = true
			return []byte{IAC, DO, OptGMCP}
		case OptMCCP2:
			c.state.MCCP2 = false
			return []byte{IAC, DONT, OptMCCP2}
		default:
			return []byte{IAC, DONT, option}
		}

	case WONT:
		switch option {
		case OptEcho:
			c.state.Echo = false
		case OptSGA:
			c.state.SGA = false
		case OptEOR:
			c.state.EOR = false
		case OptMSDP:
			c.state.MSDP = false
		case OptGMCP:
			c.state.GMCP = false
		}
		return nil

	case DO:
		switch option {
		case OptNAWS:
			c.state.NAWSSent = true
			resp := []byte{IAC, WILL, OptNAWS}
			resp = append(resp, c.nawsFrame()...)
			return resp
		case OptTTYPE:
			return []byte{IAC, WILL, OptTTYPE}
		default:
			return []byte{IAC, WONT, option}
		}

	case DONT:
		return nil
	}
	return nil
}

// nawsFrame builds the IAC SB NAWS <w-hi> <w-lo> <h-hi> <h-lo> IAC SE frame.
func (c *Codec) nawsFrame() []byte {
	w, h := c.NAWSCols, c.NAWSRows
	return []byte{
		IAC, SB, OptNAWS,
		byte(w >> 8), byte(w),
		byte(h >> 8), byte(h),
		IAC, SE,
	}
}

// closeSubnegotiation routes a completed sub-negotiation payload, returning
// a caller-facing event (if any) and bytes to write back (if any — used for
// the TTYPE SEND/IS exchange).
func (c *Codec) closeSubnegotiation() (*Event, []byte) {
	option := c.subOption
	payload := make([]byte, len(c.subBuf))
	copy(payload, c.subBuf)
	c.subBuf = c.subBuf[:0]

	switch option {
	case OptMSDP:
		return &Event{Kind: EventMSDP, Option: option, Payload: payload}, nil
	case OptGMCP:
		return &Event{Kind: EventGMCP, Option: option, Payload: payload}, nil
	case OptTTYPE:
		if len(payload) > 0 && payload[0] == ttypeSEND {
			resp := []byte{IAC, SB, OptTTYPE, ttypeIS}
			resp = append(resp, []byte(c.TermType)...)
			resp = append(resp, IAC, SE)
			return nil, resp
		}
		return nil, nil
	default:
		return &Event{Kind: EventUnknownOption, Option: option, Payload: payload}, nil
	}
}

// BuildSubnegotiation frames an arbitrary payload as IAC SB <option> payload
// IAC SE, escaping any literal 0xFF bytes in payload as IAC IAC. Used by C3
// to emit the MSDP REPORT frame.
func BuildSubnegotiation(option byte, payload []byte) []byte {
	out := make([]byte, 0, len(payload)+6)
	out = append(out, IAC, SB, option)
	for _, b := range payload {
		out = append(out, b)
		if b == IAC {
			out = append(out, IAC)
		}
	}
	out = append(out, IAC, SE)
	return out
}
