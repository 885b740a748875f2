package room

import (
	"time"

	"github.com/google/uuid"

	"github.com/BioHazard786/diceroom/backend/internal/game"
)

// Capacity is the number of seats in the room.
const Capacity = 2

// Admission is a validated view of an upgrade request.
type Admission struct {
	Name string

	// HasName is false when the request carried no Name header at all.
	// An empty header value still counts as present.
	HasName bool
}

// Participant is one seated client.
type Participant struct {
	// ID identifies the participant's connection. Names are not unique, so
	// the room never looks participants up by name.
	ID       uuid.UUID
	Name     string
	Conn     Conn
	JoinedAt time.Time

	// roll is zero until the participant rolls in the current round.
	roll int
}

// Roll returns the participant's roll for the current round.
func (p *Participant) Roll() (int, bool) {
	return p.roll, p.roll != 0
}

// HasRolled reports whether the participant rolled in the current round.
func (p *Participant) HasRolled() bool {
	return p.roll != 0
}

// Room is the seating and round state of the dice game. It is not safe for
// concurrent use; the Hub owns it and is its only caller.
type Room struct {
	capacity     int
	participants []*Participant
}

// New creates an empty room with the given number of seats. A non-positive
// capacity falls back to Capacity.
func New(capacity int) *Room {
	if capacity <= 0 {
		capacity = Capacity
	}
	return &Room{
		capacity:     capacity,
		participants: make([]*Participant, 0, capacity),
	}
}

// Len returns the number of seated participants.
func (r *Room) Len() int {
	return len(r.participants)
}

// Full reports whether every seat is taken.
func (r *Room) Full() bool {
	return len(r.participants) >= r.capacity
}

// Participants returns the seated participants in join order.
func (r *Room) Participants() []*Participant {
	out := make([]*Participant, len(r.participants))
	copy(out, r.participants)
	return out
}

// Get returns the participant with the given ID.
func (r *Room) Get(id uuid.UUID) (*Participant, bool) {
	for _, p := range r.participants {
		if p.ID == id {
			return p, true
		}
	}
	return nil, false
}

// Admit seats a new participant. Capacity is checked before identity.
func (r *Room) Admit(req Admission, conn Conn) (*Participant, []Action, error) {
	if r.Full() {
		return nil, nil, NewParticipantError("admit", req.Name, ErrRoomFull)
	}
	if !req.HasName {
		return nil, nil, NewError("admit", ErrMissingName)
	}

	p := &Participant{
		ID:       uuid.New(),
		Name:     req.Name,
		Conn:     conn,
		JoinedAt: time.Now(),
	}
	r.participants = append(r.participants, p)

	return p, []Action{
		Broadcast(joinedText(p.Name)),
		Broadcast(occupancyText(len(r.participants))),
	}, nil
}

// Remove unseats the participant with the given ID.
func (r *Room) Remove(id uuid.UUID) (*Participant, []Action, bool) {
	for i, p := range r.participants {
		if p.ID != id {
			continue
		}
		r.participants = append(r.participants[:i], r.participants[i+1:]...)
		return p, []Action{
			Broadcast(leftText(p.Name)),
			Broadcast(occupancyText(len(r.participants))),
		}, true
	}
	return nil, nil, false
}

// RoundComplete reports whether every seat is taken and every participant
// has rolled.
func (r *Room) RoundComplete() bool {
	if !r.Full() {
		return false
	}
	for _, p := range r.participants {
		if !p.HasRolled() {
			return false
		}
	}
	return true
}

// Handle turns one inbound text from p into the deliveries it causes.
// The only state it touches is the round's rolls.
func (r *Room) Handle(p *Participant, text string, dice game.Roller) ([]Action, error) {
	if !IsRollCommand(text) {
		return []Action{Broadcast(chatText(p.Name, text))}, nil
	}

	if p.HasRolled() {
		return []Action{Unicast(p, MsgAlreadyRolled)}, NewParticipantError("roll", p.Name, ErrAlreadyRolled)
	}

	p.roll = dice.Roll()
	actions := []Action{Broadcast(rolledText(p.Name, p.roll))}

	if r.RoundComplete() {
		actions = append(actions, r.settle()...)
	}
	return actions, nil
}

// settle adjudicates a complete round and clears every roll.
func (r *Room) settle() []Action {
	rolls := make([]int, len(r.participants))
	for i, p := range r.participants {
		rolls[i] = p.roll
	}

	var actions []Action
	if out, ok := game.Adjudicate(rolls...); ok {
		if out.Tie {
			actions = append(actions, Broadcast(tieText(out.Max)))
		} else {
			winner := r.participants[out.Winner]
			actions = append(actions,
				Unicast(winner, congratsText(winner.Name, out.Max)),
				Broadcast(wonText(winner.Name, out.Max)),
			)
		}
	}

	r.resetRolls()
	return actions
}

func (r *Room) resetRolls() {
	for _, p := range r.participants {
		p.roll = 0
	}
}
