package ui

import (
	"fmt"

	"github.com/BioHazard786/diceroom/cli/internal/feed"
)

// FormatEvent renders one server line for the game feed, highlighting lines
// about the local player.
func FormatEvent(ev feed.Event, me string) string {
	switch ev.Kind {
	case feed.KindJoin:
		return MutedStyle.Render(fmt.Sprintf("%s %s", IconRoom, ev.Text))
	case feed.KindLeave:
		return WarningStyle.Render(fmt.Sprintf("%s %s", IconRoom, ev.Text))
	case feed.KindOccupancy:
		return MutedStyle.Render(fmt.Sprintf("%s %s", IconPeer, ev.Text))
	case feed.KindRoll:
		style := BoldStyle
		if ev.Name == me {
			style = SelfNameStyle
		}
		return fmt.Sprintf("%s %s", IconDice, style.Render(ev.Text))
	case feed.KindTie:
		return WarningStyle.Render(fmt.Sprintf("%s %s", IconTie, ev.Text))
	case feed.KindCongrats:
		return SuccessStyle.Render(fmt.Sprintf("%s %s", IconTrophy, ev.Text))
	case feed.KindWin:
		if ev.Name == me {
			return SuccessStyle.Render(fmt.Sprintf("%s %s", IconTrophy, ev.Text))
		}
		return ErrorStyle.Render(fmt.Sprintf("%s %s", IconTrophy, ev.Text))
	case feed.KindAlreadyRolled:
		return WarningStyle.Render(fmt.Sprintf("%s %s", IconWaiting, ev.Text))
	case feed.KindRoomFull:
		return ErrorStyle.Render(fmt.Sprintf("%s %s", IconError, ev.Text))
	case feed.KindChat:
		name := PeerNameStyle
		if ev.Name == me {
			name = SelfNameStyle
		}
		return fmt.Sprintf("%s %s %s", IconChat, name.Render(ev.Name+":"), ev.Message)
	default:
		return ev.Text
	}
}
