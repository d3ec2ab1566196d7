package msdp

import "github.com/cory-johannsen/mudload/internal/telnet"

// RequiredReportVariables is the set of MSDP variables the client reports
// on once MSDP negotiates on (spec.md §4.3, §6).
var RequiredReportVariables = []string{
	"HEALTH", "HEALTH_MAX",
	"MANA", "MANA_MAX",
	"MOVEMENT", "MOVEMENT_MAX",
	"LEVEL", "EXPERIENCE", "ALIGNMENT", "MONEY",
	"ROOM_EXITS", "ROOM_VNUM",
	"POSITION", "IN_COMBAT",
	"OPPONENT_NAME", "OPPONENT_LEVEL", "OPPONENT_HEALTH", "OPPONENT_HEALTH_MAX",
}

// BuildReport produces the exact IAC SB MSDP (VAR "REPORT" (VAL name)+ )
// IAC SE frame for the given variable names, ready to write to the
// connection once MSDP negotiates on.
func BuildReport(names ...string) []byte {
	payload := []byte{CodeVAR}
	payload = append(payload, []byte("REPORT")...)
	payload = append(payload, CodeVAL)
	for i, name := range names {
		if i > 0 {
			payload = append(payload, CodeVAL)
		}
		payload = append(payload, []byte(name)...)
	}
	return telnet.BuildSubnegotiation(telnet.OptMSDP, payload)
}
