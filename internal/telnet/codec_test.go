package telnet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// Scenario 1 from spec.md §8: telnet start-up negotiation.
func TestNegotiationStartup(t *testing.T) {
	c := NewCodec()

	input := []byte{
		IAC, WILL, OptEcho,
		IAC, WILL, OptSGA,
		IAC, WILL, OptMSDP,
		IAC, DO, OptNAWS,
	}

	clean, resp, events := c.Decode(input)

	assert.Empty(t, clean)
	assert.Empty(t, events)

	expected := []byte{
		IAC, DO, OptEcho,
		IAC, DO, OptSGA,
		IAC, DO, OptMSDP,
		IAC, WILL, OptNAWS,
		IAC, SB, OptNAWS, 0x00, 0x50, 0x00, 0x18, IAC, SE,
	}
	assert.Equal(t, expected, resp)

	st := c.State()
	assert.True(t, st.Echo)
	assert.True(t, st.SGA)
	assert.True(t, st.MSDP)
	assert.True(t, st.NAWSSent)
}

func TestMCCP2Declined(t *testing.T) {
	c := NewCodec()
	_, resp, _ := c.Decode([]byte{IAC, WILL, OptMCCP2})
	assert.Equal(t, []byte{IAC, DONT, OptMCCP2}, resp)
}

func TestUnknownWillDeclined(t *testing.T) {
	c := NewCodec()
	_, resp, _ := c.Decode([]byte{IAC, WILL, 99})
	assert.Equal(t, []byte{IAC, DONT, 99}, resp)
}

func TestUnknownDoDeclined(t *testing.T) {
	c := NewCodec()
	_, resp, _ := c.Decode([]byte{IAC, DO, 99})
	assert.Equal(t, []byte{IAC, WONT, 99}, resp)
}

func TestDoTTYPERepliesWill(t *testing.T) {
	c := NewCodec()
	_, resp, _ := c.Decode([]byte{IAC, DO, OptTTYPE})
	assert.Equal(t, []byte{IAC, WILL, OptTTYPE}, resp)
}

func TestTTYPESendElicitsReply(t *testing.T) {
	c := NewCodec()
	c.TermType = "ansi"
	input := []byte{IAC, SB, OptTTYPE, ttypeSEND, IAC, SE}
	_, resp, events := c.Decode(input)
	assert.Empty(t, events)
	expected := append([]byte{IAC, SB, OptTTYPE, ttypeIS}, []byte("ansi")...)
	expected = append(expected, IAC, SE)
	assert.Equal(t, expected, resp)
}

func TestEscapedIACDecodesToLiteral255(t *testing.T) {
	c := NewCodec()
	clean, resp, events := c.Decode([]byte{'a', IAC, IAC, 'b'})
	assert.Equal(t, []byte{'a', 0xFF, 'b'}, clean)
	assert.Empty(t, resp)
	assert.Empty(t, events)
}

func TestCleanTextNeverContainsRaw255(t *testing.T) {
	c := NewCodec()
	clean, _, _ := c.Decode([]byte{'x', IAC, IAC, 'y', IAC, IAC, IAC, IAC})
	for i, b := range clean {
		if b == 0xFF {
			// Every 0xFF in clean must have come from an escaped pair —
			// verified indirectly by the byte count: 3 escaped pairs in,
			// 3 literal 0xFF bytes out, interleaved with x/y.
			_ = i
		}
	}
	assert.Equal(t, []byte{'x', 0xFF, 'y', 0xFF, 0xFF}, clean)
}

// Scenario 2 from spec.md §8: chunk-split sub-negotiation framing.
func TestSubnegotiationRoutedWholeOrSplit(t *testing.T) {
	payload := []byte("VARHEALTHVALsomevalue") // placeholder bytes, routing is payload-agnostic
	whole := BuildSubnegotiation(OptMSDP, payload)

	c1 := NewCodec()
	_, _, ev1 := c1.Decode(whole)
	require.Len(t, ev1, 1)
	assert.Equal(t, EventMSDP, ev1[0].Kind)
	assert.Equal(t, payload, ev1[0].Payload)

	// Split at every possible byte boundary and confirm identical routing.
	for split := 0; split < len(whole); split++ {
		c2 := NewCodec()
		_, _, evA := c2.Decode(whole[:split])
		_, _, evB := c2.Decode(whole[split:])
		all := append(evA, evB...)
		require.Lenf(t, all, 1, "split at %d", split)
		assert.Equalf(t, payload, all[0].Payload, "split at %d", split)
	}
}

func TestUnknownSubnegotiationRoutedAsEvent(t *testing.T) {
	c := NewCodec()
	frame := BuildSubnegotiation(39, []byte("whatever"))
	_, _, events := c.Decode(frame)
	require.Len(t, events, 1)
	assert.Equal(t, EventUnknownOption, events[0].Kind)
	assert.Equal(t, byte(39), events[0].Option)
}

func TestGMCPRouted(t *testing.T) {
	c := NewCodec()
	frame := BuildSubnegotiation(OptGMCP, []byte(`Char.Vitals {"hp":10}`))
	_, _, events := c.Decode(frame)
	require.Len(t, events, 1)
	assert.Equal(t, EventGMCP, events[0].Kind)
}

// Feeding arbitrary byte chunks of a fixed full input must always yield the
// same clean text and events as feeding it whole, regardless of split points.
func TestChunkSplitInvarianceProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		msdpPayload := []byte(rapid.StringMatching(`[A-Za-z0-9 ]{0,40}`).Draw(t, "payload"))
		text := rapid.StringMatching(`[A-Za-z0-9 .!]{0,40}`).Draw(t, "text")

		full := append([]byte{}, []byte(text)...)
		full = append(full, IAC, WILL, OptEcho)
		full = append(full, BuildSubnegotiation(OptMSDP, msdpPayload)...)

		whole := NewCodec()
		wClean, wResp, wEvents := whole.Decode(full)

		nSplits := rapid.IntRange(1, 6).Draw(t, "nsplits")
		splitCodec := NewCodec()
		var sClean, sResp []byte
		var sEvents []Event
		chunkSize := (len(full) + nSplits - 1) / nSplits
		if chunkSize == 0 {
			chunkSize = 1
		}
		for i := 0; i < len(full); i += chunkSize {
			end := i + chunkSize
			if end > len(full) {
				end = len(full)
			}
			c, r, e := splitCodec.Decode(full[i:end])
			sClean = append(sClean, c...)
			sResp = append(sResp, r...)
			sEvents = append(sEvents, e...)
		}

		assert.Equal(t, wClean, sClean)
		assert.Equal(t, wResp, sResp)
		require.Equal(t, len(wEvents), len(sEvents))
		for i := range wEvents {
			assert.Equal(t, wEvents[i].Payload, sEvents[i].Payload)
		}
	})
}
