package textparse

import (
	"regexp"
	"strconv"
	"strings"
)

var botLinePattern = regexp.MustCompile(`^\[BOT:(ROOM|EXIT|MOB|OBJ)\|(.*)\]$`)

// RoomRecord is a parsed [BOT:ROOM|...] line.
type RoomRecord struct {
	Vnum   int
	Flags  []string
	Sector string
}

// ExitRecord is a parsed [BOT:EXIT|...] line.
type ExitRecord struct {
	Dir   string
	Vnum  int
	Flags []string
}

// MobRecord is a parsed [BOT:MOB|...] line.
type MobRecord struct {
	Name  string
	Vnum  int
	Level int
	Flags []string
	HP    int
	Align int
}

// ObjRecord is a parsed [BOT:OBJ|...] line.
type ObjRecord struct {
	Name  string
	Vnum  int
	Type  string
	Flags []string
	Wear  []string
}

// fields splits a BOT line's pipe-separated key=value body into a map.
func fields(body string) map[string]string {
	out := make(map[string]string)
	for _, part := range strings.Split(body, "|") {
		idx := strings.IndexByte(part, '=')
		if idx < 0 {
			continue
		}
		out[part[:idx]] = part[idx+1:]
	}
	return out
}

// flagList parses a space-separated flag list; "(none)" decodes to empty.
func flagList(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" || s == "(none)" {
		return []string{}
	}
	return strings.Fields(s)
}

func atoiOr0(s string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(s))
	return n
}

// percentOr0 strips an optional trailing '%' and parses the integer.
func percentOr0(s string) int {
	return atoiOr0(strings.TrimSuffix(strings.TrimSpace(s), "%"))
}

// ParseBotLine recognizes a single [BOT:TAG|...] line and dispatches to the
// matching typed record. ok is false if line is not a BOT line.
func ParseBotLine(line string) (tag string, room *RoomRecord, exit *ExitRecord, mob *MobRecord, obj *ObjRecord, ok bool) {
	m := botLinePattern.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return "", nil, nil, nil, nil, false
	}

	tag = m[1]
	f := fields(m[2])

	switch tag {
	case "ROOM":
		room = &RoomRecord{
			Vnum:   atoiOr0(f["vnum"]),
			Flags:  flagList(f["flags"]),
			Sector: f["sector"],
		}
	case "EXIT":
		exit = &ExitRecord{
			Dir:   f["dir"],
			Vnum:  atoiOr0(f["vnum"]),
			Flags: flagList(f["flags"]),
		}
	case "MOB":
		mob = &MobRecord{
			Name:  f["name"],
			Vnum:  atoiOr0(f["vnum"]),
			Level: atoiOr0(f["level"]),
			Flags: flagList(f["flags"]),
			HP:    percentOr0(f["hp"]),
			Align: atoiOr0(f["align"]),
		}
	case "OBJ":
		obj = &ObjRecord{
			Name:  f["name"],
			Vnum:  atoiOr0(f["vnum"]),
			Type:  f["type"],
			Flags: flagList(f["flags"]),
			Wear:  flagList(f["wear"]),
		}
	default:
		return "", nil, nil, nil, nil, false
	}

	return tag, room, exit, mob, obj, true
}

// FormatMobLine re-serializes a MobRecord back into its [BOT:MOB|...] line,
// used to verify the round-trip law in spec.md §8.
func FormatMobLine(m MobRecord) string {
	flags := "(none)"
	if len(m.Flags) > 0 {
		flags = strings.Join(m.Flags, " ")
	}
	return "[BOT:MOB|name=" + m.Name +
		"|vnum=" + strconv.Itoa(m.Vnum) +
		"|level=" + strconv.Itoa(m.Level) +
		"|flags=" + flags +
		"|hp=" + strconv.Itoa(m.HP) +
		"|align=" + strconv.Itoa(m.Align) + "]"
}
