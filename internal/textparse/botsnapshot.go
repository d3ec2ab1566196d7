package textparse

import "strings"

// BotSnapshot is the "BOT record snapshot" from spec.md §3: four lists
// rebuilt wholesale by RebuildFromLines on each look, and cleared whenever
// the owning room_vnum changes so stale entries never leak across rooms.
type BotSnapshot struct {
	Room  *RoomRecord
	Exits []ExitRecord
	Mobs  []MobRecord
	Objs  []ObjRecord

	// BotModeActive latches true the first time any [BOT:...] line is ever
	// seen on this session and never resets, including across Clear() — it
	// distinguishes "no mobs here right now" from "the server never flagged
	// this session for structured output" (spec.md §4.7, §8).
	BotModeActive bool
}

// Clear empties the per-room lists, leaving an snapshot with no known
// room/exit/mob/obj records. BotModeActive is untouched.
func (b *BotSnapshot) Clear() {
	b.Room = nil
	b.Exits = nil
	b.Mobs = nil
	b.Objs = nil
}

// RebuildFromLines scans text for [BOT:...] lines and replaces the
// snapshot's contents wholesale with what it finds (spec.md §6: "A look
// refreshes all four").
//
// Precondition: text may contain any number of lines, BOT or otherwise.
func (b *BotSnapshot) RebuildFromLines(text string) {
	var room *RoomRecord
	var exits []ExitRecord
	var mobs []MobRecord
	var objs []ObjRecord

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		tag, r, e, m, o, ok := ParseBotLine(line)
		if !ok {
			continue
		}
		switch tag {
		case "ROOM":
			room = r
		case "EXIT":
			exits = append(exits, *e)
		case "MOB":
			mobs = append(mobs, *m)
		case "OBJ":
			objs = append(objs, *o)
		}
	}

	if room == nil && exits == nil && mobs == nil && objs == nil {
		return
	}

	b.BotModeActive = true
	b.Room = room
	b.Exits = exits
	b.Mobs = mobs
	b.Objs = objs
}
