// Package feed classifies the text lines a dice server sends and keeps a
// running tally of a player's session.
package feed

import (
	"regexp"
	"strconv"
	"strings"
)

// Kind is the category of a server line.
type Kind int

const (
	KindNotice Kind = iota
	KindJoin
	KindLeave
	KindOccupancy
	KindRoll
	KindTie
	KindWin
	KindCongrats
	KindAlreadyRolled
	KindRoomFull
	KindChat
)

func (k Kind) String() string {
	switch k {
	case KindJoin:
		return "join"
	case KindLeave:
		return "leave"
	case KindOccupancy:
		return "occupancy"
	case KindRoll:
		return "roll"
	case KindTie:
		return "tie"
	case KindWin:
		return "win"
	case KindCongrats:
		return "congrats"
	case KindAlreadyRolled:
		return "already_rolled"
	case KindRoomFull:
		return "room_full"
	case KindChat:
		return "chat"
	default:
		return "notice"
	}
}

// Lines the server sends verbatim.
const (
	RoomFullText      = "Sorry, the room is full!"
	AlreadyRolledText = "You have already rolled! Wait for other player to roll!"
)

var (
	joinRe      = regexp.MustCompile(`^(.*) joined the room$`)
	leaveRe     = regexp.MustCompile(`^(.*) left the room$`)
	occupancyRe = regexp.MustCompile(`^(\d+) users connected$`)
	rollRe      = regexp.MustCompile(`^(.*) rolled ([1-6])$`)
	tieRe       = regexp.MustCompile(`^It's a tie with a roll of ([1-6])$`)
	congratsRe  = regexp.MustCompile(`^GJ (.*), you WON with a roll of ([1-6])$`)
	winRe       = regexp.MustCompile(`^(.*) won with a roll of ([1-6])$`)
)

// Event is a classified server line.
type Event struct {
	Kind Kind
	Text string

	// Name is the participant the line is about, or the chat sender.
	Name string

	// Value is the die face for roll, tie and win lines.
	Value int

	// Count is the number of connected users for occupancy lines.
	Count int

	// Message is the chat body.
	Message string
}

// Parse classifies one server line. The server prefixes chat with
// "name: ", so a game line whose name would contain ": " is chat that
// mimics a game line and is reported as chat.
func Parse(line string) Event {
	ev := Event{Kind: KindNotice, Text: line}

	switch line {
	case RoomFullText:
		ev.Kind = KindRoomFull
		return ev
	case AlreadyRolledText:
		ev.Kind = KindAlreadyRolled
		return ev
	}

	if m := congratsRe.FindStringSubmatch(line); m != nil && isName(m[1]) {
		ev.Kind, ev.Name, ev.Value = KindCongrats, m[1], atoi(m[2])
		return ev
	}
	if m := tieRe.FindStringSubmatch(line); m != nil {
		ev.Kind, ev.Value = KindTie, atoi(m[1])
		return ev
	}
	if m := occupancyRe.FindStringSubmatch(line); m != nil {
		ev.Kind, ev.Count = KindOccupancy, atoi(m[1])
		return ev
	}
	if m := winRe.FindStringSubmatch(line); m != nil && isName(m[1]) {
		ev.Kind, ev.Name, ev.Value = KindWin, m[1], atoi(m[2])
		return ev
	}
	if m := rollRe.FindStringSubmatch(line); m != nil && isName(m[1]) {
		ev.Kind, ev.Name, ev.Value = KindRoll, m[1], atoi(m[2])
		return ev
	}
	if m := joinRe.FindStringSubmatch(line); m != nil && isName(m[1]) {
		ev.Kind, ev.Name = KindJoin, m[1]
		return ev
	}
	if m := leaveRe.FindStringSubmatch(line); m != nil && isName(m[1]) {
		ev.Kind, ev.Name = KindLeave, m[1]
		return ev
	}
	if name, msg, ok := strings.Cut(line, ": "); ok {
		ev.Kind, ev.Name, ev.Message = KindChat, name, msg
	}
	return ev
}

// isName reports whether s can be the subject of a game line.
func isName(s string) bool {
	return !strings.Contains(s, ": ")
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
