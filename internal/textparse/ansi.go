// Package textparse implements C4: a stateless parser over ANSI-stripped,
// UTF-8 server text. It extracts prompts, exits, combat events, kill lines,
// XP gains, and structured [BOT:…] records. It never mutates game state.
package textparse

import "regexp"

var ansiPattern = regexp.MustCompile("\x1b\\[[0-9;]*[A-Za-z]")

// StripANSI removes ANSI CSI escape sequences (ESC '[' digits/semicolons
// letter) from s.
//
// Postcondition: StripANSI(StripANSI(x)) == StripANSI(x).
func StripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}
