package room

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func participantOn(name string, conn Conn) *Participant {
	return &Participant{ID: uuid.New(), Name: name, Conn: conn}
}

func TestRouter_Broadcast(t *testing.T) {
	tests := []struct {
		name          string
		setup         func() []*mockConn
		wantDelivered int
		wantReceived  []int
	}{
		{
			name: "all open",
			setup: func() []*mockConn {
				return []*mockConn{newMockConn(), newMockConn()}
			},
			wantDelivered: 2,
			wantReceived:  []int{1, 1},
		},
		{
			name: "closing connection skipped",
			setup: func() []*mockConn {
				closing := newMockConn()
				closing.setState(StateClosing)
				return []*mockConn{newMockConn(), closing}
			},
			wantDelivered: 1,
			wantReceived:  []int{1, 0},
		},
		{
			name: "connecting and closed skipped",
			setup: func() []*mockConn {
				connecting := newMockConn()
				connecting.setState(StateConnecting)
				closed := newMockConn()
				closed.setState(StateClosed)
				return []*mockConn{connecting, closed}
			},
			wantDelivered: 0,
			wantReceived:  []int{0, 0},
		},
		{
			name: "failed send skipped",
			setup: func() []*mockConn {
				broken := newMockConn()
				broken.sendErr = errBrokenPipe
				return []*mockConn{broken, newMockConn()}
			},
			wantDelivered: 1,
			wantReceived:  []int{0, 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conns := tt.setup()
			participants := make([]*Participant, len(conns))
			for i, c := range conns {
				participants[i] = participantOn("p", c)
			}

			rt := NewRouter(discardLogger())
			assert.Equal(t, tt.wantDelivered, rt.Broadcast(participants, "hello"))
			for i, c := range conns {
				assert.Len(t, c.getReceived(), tt.wantReceived[i], "conn %d", i)
			}
		})
	}
}

func TestRouter_Unicast(t *testing.T) {
	rt := NewRouter(discardLogger())

	open := newMockConn()
	assert.True(t, rt.Unicast(participantOn("a", open), "hi"))
	assert.Equal(t, []string{"hi"}, open.getReceived())

	closed := newMockConn()
	closed.setState(StateClosed)
	assert.False(t, rt.Unicast(participantOn("b", closed), "hi"))
	assert.Empty(t, closed.getReceived())

	assert.False(t, rt.Unicast(nil, "hi"))
	assert.False(t, rt.Unicast(&Participant{Name: "no conn"}, "hi"))
}

func TestRouter_DeliverKeepsOrder(t *testing.T) {
	rt := NewRouter(discardLogger())
	aliceConn, bobConn := newMockConn(), newMockConn()
	alice := participantOn("Alice", aliceConn)
	bob := participantOn("Bob", bobConn)

	rt.Deliver([]*Participant{alice, bob}, []Action{
		Broadcast("one"),
		Unicast(alice, "two"),
		Broadcast("three"),
	})

	assert.Equal(t, []string{"one", "two", "three"}, aliceConn.getReceived())
	assert.Equal(t, []string{"one", "three"}, bobConn.getReceived())
}

func TestConnState_String(t *testing.T) {
	assert.Equal(t, "connecting", StateConnecting.String())
	assert.Equal(t, "open", StateOpen.String())
	assert.Equal(t, "closing", StateClosing.String())
	assert.Equal(t, "closed", StateClosed.String())
	assert.Equal(t, "unknown", ConnState(42).String())
}
