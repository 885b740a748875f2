package server_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BioHazard786/diceroom/backend/internal/room"
	"github.com/BioHazard786/diceroom/backend/internal/server"
)

type fixedRolls struct {
	mu    sync.Mutex
	faces []int
}

func (f *fixedRolls) Roll() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	v := f.faces[0]
	if len(f.faces) > 1 {
		f.faces = f.faces[1:]
	}
	return v
}

type testServer struct {
	hub *room.Hub
	srv *httptest.Server
	url string
}

func newTestServer(t *testing.T, faces ...int) *testServer {
	t.Helper()
	if len(faces) == 0 {
		faces = []int{1}
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx, cancel := context.WithCancel(context.Background())
	hub := room.NewHub(&fixedRolls{faces: faces}, logger)
	go hub.Run(ctx)

	srv := httptest.NewServer(server.NewRouter(hub, room.DefaultOptions(), logger))
	t.Cleanup(func() {
		srv.Close()
		cancel()
		<-hub.Done()
	})

	return &testServer{
		hub: hub,
		srv: srv,
		url: "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws",
	}
}

func (ts *testServer) dial(t *testing.T, name string) *websocket.Conn {
	t.Helper()
	header := http.Header{}
	if name != "" {
		header.Set(server.NameHeader, name)
	}
	conn, _, err := websocket.DefaultDialer.Dial(ts.url, header)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func (ts *testServer) occupancy(t *testing.T) int {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	ps, err := ts.hub.Participants(ctx)
	require.NoError(t, err)
	return len(ps)
}

func expectTexts(t *testing.T, conn *websocket.Conn, want ...string) {
	t.Helper()
	for _, w := range want {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		mt, data, err := conn.ReadMessage()
		require.NoError(t, err, "waiting for %q", w)
		assert.Equal(t, websocket.TextMessage, mt)
		assert.Equal(t, w, string(data))
	}
}

func expectClose(t *testing.T, conn *websocket.Conn, code int, text string) {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := conn.ReadMessage()
	require.Error(t, err)

	var closeErr *websocket.CloseError
	require.ErrorAs(t, err, &closeErr)
	assert.Equal(t, code, closeErr.Code)
	assert.Equal(t, text, closeErr.Text)
}

func TestServeWs_JoinScenario(t *testing.T) {
	ts := newTestServer(t)

	alice := ts.dial(t, "Alice")
	expectTexts(t, alice, "Alice joined the room", "1 users connected")

	bob := ts.dial(t, "Bob")
	expectTexts(t, alice, "Bob joined the room", "2 users connected")
	expectTexts(t, bob, "Bob joined the room", "2 users connected")

	assert.Equal(t, 2, ts.occupancy(t))
}

func TestServeWs_RollAndWin(t *testing.T) {
	ts := newTestServer(t, 5, 3, 2, 6)

	alice := ts.dial(t, "Alice")
	expectTexts(t, alice, "Alice joined the room", "1 users connected")
	bob := ts.dial(t, "Bob")
	expectTexts(t, alice, "Bob joined the room", "2 users connected")
	expectTexts(t, bob, "Bob joined the room", "2 users connected")

	require.NoError(t, alice.WriteMessage(websocket.TextMessage, []byte("roll")))
	expectTexts(t, alice, "Alice rolled 5")
	expectTexts(t, bob, "Alice rolled 5")

	require.NoError(t, bob.WriteMessage(websocket.TextMessage, []byte("Roll")))
	expectTexts(t, alice, "Bob rolled 3", "GJ Alice, you WON with a roll of 5", "Alice won with a roll of 5")
	expectTexts(t, bob, "Bob rolled 3", "Alice won with a roll of 5")

	// Rolls were reset, so a second round can be played.
	require.NoError(t, alice.WriteMessage(websocket.TextMessage, []byte("ROLL")))
	expectTexts(t, bob, "Alice rolled 2")
	require.NoError(t, bob.WriteMessage(websocket.TextMessage, []byte("roll")))
	expectTexts(t, bob, "Bob rolled 6", "GJ Bob, you WON with a roll of 6", "Bob won with a roll of 6")
}

func TestServeWs_Tie(t *testing.T) {
	ts := newTestServer(t, 4, 4)

	alice := ts.dial(t, "Alice")
	expectTexts(t, alice, "Alice joined the room", "1 users connected")
	bob := ts.dial(t, "Bob")
	expectTexts(t, bob, "Bob joined the room", "2 users connected")

	require.NoError(t, alice.WriteMessage(websocket.TextMessage, []byte("roll")))
	expectTexts(t, bob, "Alice rolled 4")
	require.NoError(t, bob.WriteMessage(websocket.TextMessage, []byte("roll")))
	expectTexts(t, bob, "Bob rolled 4", "It's a tie with a roll of 4")

	// The next text proves no winner message followed the tie.
	require.NoError(t, alice.WriteMessage(websocket.TextMessage, []byte("again?")))
	expectTexts(t, bob, "Alice: again?")
}

func TestServeWs_DuplicateRoll(t *testing.T) {
	ts := newTestServer(t, 2)

	alice := ts.dial(t, "Alice")
	expectTexts(t, alice, "Alice joined the room", "1 users connected")
	bob := ts.dial(t, "Bob")
	expectTexts(t, alice, "Bob joined the room", "2 users connected")
	expectTexts(t, bob, "Bob joined the room", "2 users connected")

	require.NoError(t, alice.WriteMessage(websocket.TextMessage, []byte("roll")))
	require.NoError(t, alice.WriteMessage(websocket.TextMessage, []byte("roll")))
	expectTexts(t, alice, "Alice rolled 2", room.MsgAlreadyRolled)

	require.NoError(t, alice.WriteMessage(websocket.TextMessage, []byte("hi")))
	expectTexts(t, bob, "Alice rolled 2", "Alice: hi")
}

func TestServeWs_Chat(t *testing.T) {
	ts := newTestServer(t)

	alice := ts.dial(t, "Alice")
	expectTexts(t, alice, "Alice joined the room", "1 users connected")

	require.NoError(t, alice.WriteMessage(websocket.TextMessage, []byte("anyone here? 🎲")))
	expectTexts(t, alice, "Alice: anyone here? 🎲")
}

func TestServeWs_RoomFull(t *testing.T) {
	ts := newTestServer(t)

	alice := ts.dial(t, "Alice")
	expectTexts(t, alice, "Alice joined the room", "1 users connected")
	bob := ts.dial(t, "Bob")
	expectTexts(t, bob, "Bob joined the room", "2 users connected")

	carol := ts.dial(t, "Carol")
	expectTexts(t, carol, room.MsgRoomFull)
	expectClose(t, carol, websocket.CloseNormalClosure, room.MsgRoomFull)

	assert.Equal(t, 2, ts.occupancy(t))

	// The seated players did not hear about Carol.
	require.NoError(t, alice.WriteMessage(websocket.TextMessage, []byte("still here")))
	expectTexts(t, bob, "Alice: still here")
}

func TestServeWs_MissingName(t *testing.T) {
	ts := newTestServer(t)

	anon := ts.dial(t, "")
	expectClose(t, anon, websocket.CloseInvalidFramePayloadData, room.MsgNameNotFound)
	assert.Equal(t, 0, ts.occupancy(t))
}

func TestServeWs_PeerCloseEchoedAndBroadcast(t *testing.T) {
	ts := newTestServer(t)

	alice := ts.dial(t, "Alice")
	expectTexts(t, alice, "Alice joined the room", "1 users connected")
	bob := ts.dial(t, "Bob")
	expectTexts(t, bob, "Bob joined the room", "2 users connected")

	msg := websocket.FormatCloseMessage(4000, "gotta go")
	require.NoError(t, alice.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second)))

	// Drain Alice's remaining join texts before the echoed close.
	expectTexts(t, alice, "Bob joined the room", "2 users connected")
	expectClose(t, alice, 4000, "gotta go")

	expectTexts(t, bob, "Alice left the room", "1 users connected")
	assert.Equal(t, 1, ts.occupancy(t))
}

func TestServeWs_AbnormalDisconnect(t *testing.T) {
	ts := newTestServer(t)

	alice := ts.dial(t, "Alice")
	expectTexts(t, alice, "Alice joined the room", "1 users connected")
	bob := ts.dial(t, "Bob")
	expectTexts(t, bob, "Bob joined the room", "2 users connected")

	// Drop the TCP connection without a close frame.
	require.NoError(t, alice.NetConn().Close())

	expectTexts(t, bob, "Alice left the room", "1 users connected")

	carol := ts.dial(t, "Carol")
	expectTexts(t, carol, "Carol joined the room", "2 users connected")
}

func TestServeWs_OversizedMessageDropsParticipant(t *testing.T) {
	ts := newTestServer(t)

	alice := ts.dial(t, "Alice")
	expectTexts(t, alice, "Alice joined the room", "1 users connected")
	bob := ts.dial(t, "Bob")
	expectTexts(t, bob, "Bob joined the room", "2 users connected")

	big := strings.Repeat("x", int(room.DefaultOptions().MaxMessageSize)+1)
	require.NoError(t, alice.WriteMessage(websocket.TextMessage, []byte(big)))

	expectTexts(t, bob, "Alice left the room", "1 users connected")
}

func TestServeWs_DuplicateNames(t *testing.T) {
	ts := newTestServer(t, 3, 5)

	first := ts.dial(t, "Sam")
	expectTexts(t, first, "Sam joined the room", "1 users connected")
	second := ts.dial(t, "Sam")
	expectTexts(t, second, "Sam joined the room", "2 users connected")

	require.NoError(t, first.WriteMessage(websocket.TextMessage, []byte("roll")))
	expectTexts(t, second, "Sam rolled 3")
	require.NoError(t, second.WriteMessage(websocket.TextMessage, []byte("roll")))
	expectTexts(t, second, "Sam rolled 5", "GJ Sam, you WON with a roll of 5", "Sam won with a roll of 5")
	expectTexts(t, first, "Sam joined the room", "2 users connected", "Sam rolled 3", "Sam rolled 5", "Sam won with a roll of 5")
}

func TestServeWs_NonUpgradeRequest(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.srv.URL + "/ws")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, 0, ts.occupancy(t))
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Dice server is healthy.", string(body))
}
