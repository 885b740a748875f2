package room

import (
	"log/slog"
)

// ConnState is the lifecycle state of a participant's connection.
type ConnState int32

const (
	StateConnecting ConnState = iota
	StateOpen
	StateClosing
	StateClosed
)

func (s ConnState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Conn is the room's non-owning handle on a participant's connection.
type Conn interface {
	// Send queues text for delivery as a single text frame. It does not block.
	Send(text string) error
	State() ConnState
	Close() error
}

// Router delivers room output to participants' connections. Delivery is
// best effort: connections that are not open are skipped and failed sends
// are dropped.
type Router struct {
	logger *slog.Logger
}

// NewRouter creates a Router that logs skipped deliveries to logger.
func NewRouter(logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{logger: logger}
}

// Broadcast sends text to every open participant in order and returns how
// many sends were accepted.
func (rt *Router) Broadcast(participants []*Participant, text string) int {
	delivered := 0
	for _, p := range participants {
		if rt.Unicast(p, text) {
			delivered++
		}
	}
	return delivered
}

// Unicast sends text to p if its connection is open.
func (rt *Router) Unicast(p *Participant, text string) bool {
	if p == nil || p.Conn == nil {
		return false
	}
	if p.Conn.State() != StateOpen {
		return false
	}
	if err := p.Conn.Send(text); err != nil {
		rt.logger.Debug("send skipped",
			"participant", p.ID,
			"name", p.Name,
			"error", NewParticipantError("send", p.Name, err))
		return false
	}
	return true
}

// Deliver executes actions in order against the current seating.
func (rt *Router) Deliver(participants []*Participant, actions []Action) {
	for _, a := range actions {
		if a.IsBroadcast() {
			rt.Broadcast(participants, a.Text)
			continue
		}
		rt.Unicast(a.Target, a.Text)
	}
}
