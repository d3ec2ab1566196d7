package msdp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/mudload/internal/telnet"
)

func TestBuildReportFrameShape(t *testing.T) {
	frame := BuildReport("HEALTH", "HEALTH_MAX", "LEVEL")

	require.True(t, len(frame) > 5)
	assert.Equal(t, telnet.IAC, frame[0])
	assert.Equal(t, telnet.SB, frame[1])
	assert.Equal(t, telnet.OptMSDP, frame[2])
	assert.Equal(t, telnet.IAC, frame[len(frame)-2])
	assert.Equal(t, telnet.SE, frame[len(frame)-1])
}

func TestBuildReportRoundTripViaCodec(t *testing.T) {
	frame := BuildReport("HEALTH", "HEALTH_MAX", "LEVEL")

	c := telnet.NewCodec()
	_, _, events := c.Decode(frame)
	require.Len(t, events, 1)
	require.Equal(t, telnet.EventMSDP, events[0].Kind)

	payload := events[0].Payload
	require.True(t, len(payload) > 0)
	assert.Equal(t, CodeVAR, payload[0])
	assert.Equal(t, []byte("REPORT"), payload[1:7])
	assert.Equal(t, CodeVAL, payload[7])

	// Followed by exactly 3 VAL atoms in order: HEALTH, then VAL HEALTH_MAX,
	// then VAL LEVEL.
	rest := payload[8:]
	assert.Equal(t, "HEALTH", string(rest[:6]))
	rest = rest[6:]
	assert.Equal(t, CodeVAL, rest[0])
	rest = rest[1:]
	assert.Equal(t, "HEALTH_MAX", string(rest[:10]))
	rest = rest[10:]
	assert.Equal(t, CodeVAL, rest[0])
	rest = rest[1:]
	assert.Equal(t, "LEVEL", string(rest))
}
