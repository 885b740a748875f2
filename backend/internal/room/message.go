package room

import (
	"fmt"
	"strings"
)

// Protocol text sent to participants.
const (
	MsgRoomFull      = "Sorry, the room is full!"
	MsgNameNotFound  = "Name not found in request header"
	MsgAlreadyRolled = "You have already rolled! Wait for other player to roll!"
)

// CommandRoll is the only game command; it is matched case-insensitively.
const CommandRoll = "roll"

// IsRollCommand reports whether text asks for a roll.
func IsRollCommand(text string) bool {
	return strings.EqualFold(text, CommandRoll)
}

func joinedText(name string) string {
	return fmt.Sprintf("%s joined the room", name)
}

func leftText(name string) string {
	return fmt.Sprintf("%s left the room", name)
}

func occupancyText(n int) string {
	return fmt.Sprintf("%d users connected", n)
}

func rolledText(name string, value int) string {
	return fmt.Sprintf("%s rolled %d", name, value)
}

func chatText(name, message string) string {
	return fmt.Sprintf("%s: %s", name, message)
}

func tieText(value int) string {
	return fmt.Sprintf("It's a tie with a roll of %d", value)
}

func congratsText(name string, value int) string {
	return fmt.Sprintf("GJ %s, you WON with a roll of %d", name, value)
}

func wonText(name string, value int) string {
	return fmt.Sprintf("%s won with a roll of %d", name, value)
}

// Action is one outbound delivery produced by the room. A nil Target means
// the text goes to every open participant.
type Action struct {
	Target *Participant
	Text   string
}

// Broadcast returns an Action addressed to the whole room.
func Broadcast(text string) Action {
	return Action{Text: text}
}

// Unicast returns an Action addressed to one participant.
func Unicast(p *Participant, text string) Action {
	return Action{Target: p, Text: text}
}

// IsBroadcast reports whether the action targets the whole room.
func (a Action) IsBroadcast() bool {
	return a.Target == nil
}
