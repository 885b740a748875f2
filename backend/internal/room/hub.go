package room

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/BioHazard786/diceroom/backend/internal/game"
)

type eventKind int

const (
	eventAdmit eventKind = iota
	eventText
	eventLeave
	eventSnapshot
)

// hubEvent is one unit of work for the hub. All kinds share a single queue
// so they are applied in the order they were submitted.
type hubEvent struct {
	kind eventKind

	// admit
	admission  Admission
	admitReply chan admitResult

	// text and leave
	id    uuid.UUID
	text  string
	conn  Conn
	cause error

	// snapshot
	snapshotReply chan []Participant
}

type admitResult struct {
	participant *Participant
	err         error
}

// Hub is the single goroutine that owns the Room. Admissions, inbound
// texts and departures are queued and applied one at a time.
type Hub struct {
	room   *Room
	router *Router
	dice   game.Roller
	logger *slog.Logger

	events chan hubEvent
	done   chan struct{}
}

// NewHub creates a Hub around an empty room.
func NewHub(dice game.Roller, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		room:   New(Capacity),
		router: NewRouter(logger),
		dice:   dice,
		logger: logger,
		events: make(chan hubEvent, 64),
		done:   make(chan struct{}),
	}
}

// Run processes hub events until ctx is cancelled. Remaining connections are
// closed on the way out.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case ev := <-h.events:
			switch ev.kind {
			case eventAdmit:
				h.handleAdmit(ev)
			case eventText:
				h.handleText(ev)
			case eventLeave:
				h.handleLeave(ev)
			case eventSnapshot:
				h.handleSnapshot(ev)
			}

		case <-ctx.Done():
			h.drain()
			for _, p := range h.room.Participants() {
				if p.Conn != nil {
					p.Conn.Close()
				}
			}
			h.logger.Info("Hub stopped", "participants", h.room.Len())
			return
		}
	}
}

// drain answers callers still waiting on queued events.
func (h *Hub) drain() {
	for {
		select {
		case ev := <-h.events:
			switch ev.kind {
			case eventAdmit:
				ev.admitReply <- admitResult{err: NewError("admit", ErrHubStopped)}
			case eventSnapshot:
				close(ev.snapshotReply)
			case eventLeave:
				if ev.conn != nil {
					ev.conn.Close()
				}
			}
		default:
			return
		}
	}
}

// Done is closed once Run has returned.
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

func (h *Hub) handleAdmit(ev hubEvent) {
	p, actions, err := h.room.Admit(ev.admission, ev.conn)
	if err != nil {
		h.logger.Info("Admission rejected", "name", ev.admission.Name, "error", err)
		ev.admitReply <- admitResult{err: err}
		return
	}

	h.logger.Info("Participant joined", "participant", p.ID, "name", p.Name, "occupancy", h.room.Len())
	h.router.Deliver(h.room.Participants(), actions)
	ev.admitReply <- admitResult{participant: p}
}

func (h *Hub) handleLeave(ev hubEvent) {
	p, actions, ok := h.room.Remove(ev.id)
	if ok {
		if ev.cause != nil {
			h.logger.Warn("Participant dropped", "participant", p.ID, "name", p.Name, "error", ev.cause)
		} else {
			h.logger.Info("Participant left", "participant", p.ID, "name", p.Name)
		}
		h.router.Deliver(h.room.Participants(), actions)
	}

	if ev.conn != nil {
		ev.conn.Close()
	}
}

func (h *Hub) handleText(ev hubEvent) {
	p, ok := h.room.Get(ev.id)
	if !ok {
		// The sender left before its text was processed.
		return
	}

	actions, err := h.room.Handle(p, ev.text, h.dice)
	if err != nil {
		if errors.Is(err, ErrAlreadyRolled) {
			h.logger.Debug("Duplicate roll", "participant", p.ID, "name", p.Name)
		} else {
			h.logger.Error("Handle message", "participant", p.ID, "error", err)
		}
	}
	h.router.Deliver(h.room.Participants(), actions)
}

func (h *Hub) handleSnapshot(ev hubEvent) {
	out := make([]Participant, 0, h.room.Len())
	for _, p := range h.room.Participants() {
		out = append(out, *p)
	}
	ev.snapshotReply <- out
}

// submit queues ev unless the hub has stopped.
func (h *Hub) submit(ctx context.Context, ev hubEvent) error {
	select {
	case <-h.done:
		return ErrHubStopped
	default:
	}

	select {
	case h.events <- ev:
		return nil
	case <-h.done:
		return ErrHubStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Admit asks the hub to seat a participant on conn. On success the join
// announcements have already been queued on conn.
func (h *Hub) Admit(ctx context.Context, req Admission, conn Conn) (*Participant, error) {
	reply := make(chan admitResult, 1)
	ev := hubEvent{kind: eventAdmit, admission: req, conn: conn, admitReply: reply}
	if err := h.submit(ctx, ev); err != nil {
		return nil, NewError("admit", err)
	}

	select {
	case res := <-reply:
		return res.participant, res.err
	case <-h.done:
		select {
		case res := <-reply:
			return res.participant, res.err
		default:
			return nil, NewError("admit", ErrHubStopped)
		}
	}
}

// Leave removes the participant and closes conn. cause is nil for a clean
// close and a transport error otherwise.
func (h *Hub) Leave(id uuid.UUID, conn Conn, cause error) {
	ev := hubEvent{kind: eventLeave, id: id, conn: conn, cause: cause}
	if err := h.submit(context.Background(), ev); err != nil && conn != nil {
		conn.Close()
	}
}

// Dispatch queues an inbound text from the participant with the given ID.
// The text is dropped once the hub has stopped.
func (h *Hub) Dispatch(id uuid.UUID, text string) error {
	if err := h.submit(context.Background(), hubEvent{kind: eventText, id: id, text: text}); err != nil {
		h.logger.Debug("Text dropped", "participant", id, "error", err)
		return NewError("dispatch", err)
	}
	return nil
}

// Participants returns a copy of the current seating in join order, after
// every event queued before the call has been applied.
func (h *Hub) Participants(ctx context.Context) ([]Participant, error) {
	reply := make(chan []Participant, 1)
	if err := h.submit(ctx, hubEvent{kind: eventSnapshot, snapshotReply: reply}); err != nil {
		return nil, NewError("snapshot", err)
	}

	select {
	case out, ok := <-reply:
		if !ok {
			return nil, NewError("snapshot", ErrHubStopped)
		}
		return out, nil
	case <-h.done:
		return nil, NewError("snapshot", ErrHubStopped)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
