package textparse

import (
	"regexp"
	"strings"
)

var (
	bracketExitsPattern = regexp.MustCompile(`(?i)\[\s*Exits?:\s*([^\]]*)\]`)
	obviousExitsPattern = regexp.MustCompile(`(?i)Obvious exits:\s*([^.\n]*)`)
)

var directionFull = map[string]string{
	"n": "north", "s": "south", "e": "east", "w": "west", "u": "up", "d": "down",
	"north": "north", "south": "south", "east": "east", "west": "west",
	"up": "up", "down": "down",
}

// ParseExits extracts the set of obvious exits from a room description
// line, from either "[Exits: ...]" or "Obvious exits: ..." forms. An
// explicit "none" yields an empty, non-nil slice.
//
// Postcondition: returned directions are full names (north/south/...); ok
// is false if neither form is present.
func ParseExits(line string) ([]string, bool) {
	var raw string
	if m := bracketExitsPattern.FindStringSubmatch(line); m != nil {
		raw = m[1]
	} else if m := obviousExitsPattern.FindStringSubmatch(line); m != nil {
		raw = m[1]
	} else {
		return nil, false
	}

	raw = strings.TrimSpace(raw)
	if strings.EqualFold(raw, "none") || raw == "" {
		return []string{}, true
	}

	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ' ' || r == ',' || r == '\t'
	})

	exits := make([]string, 0, len(fields))
	for _, f := range fields {
		token := strings.ToLower(strings.Trim(f, "().-"))
		if token == "" {
			continue
		}
		if full, ok := directionFull[token]; ok {
			exits = append(exits, full)
		} else {
			exits = append(exits, token)
		}
	}
	return exits, true
}
