package server

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/BioHazard786/diceroom/backend/internal/room"
)

// NameHeader is the request header carrying the participant's display name.
const NameHeader = "Name"

// Configure the websocket upgrader
var upgrader = websocket.Upgrader{
	ReadBufferSize:  4 * 1024,
	WriteBufferSize: 4 * 1024,

	// Any origin may play; the name header is the only identity.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// NewRouter wires the health probe and the websocket endpoint.
func NewRouter(hub *room.Hub, opts room.Options, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", healthCheckHandler)
	r.HandleFunc("/ws", ServeWs(hub, opts, logger))

	return r
}

// Health Check endpoint
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Dice server is healthy."))
}

// admissionFromRequest reads the typed admission out of an upgrade request.
// Repeated Name headers are joined with commas.
func admissionFromRequest(r *http.Request) room.Admission {
	values := r.Header.Values(NameHeader)
	return room.Admission{
		Name:    strings.Join(values, ","),
		HasName: len(values) > 0,
	}
}

// ServeWs returns an http.HandlerFunc that admits websocket players.
// It takes the hub as a dependency.
func ServeWs(hub *room.Hub, opts room.Options, logger *slog.Logger) http.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}

	return func(w http.ResponseWriter, r *http.Request) {
		// Upgrade the HTTP connection to a WebSocket. The upgrader has
		// already answered with a 4xx when this fails.
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Debug("Failed to upgrade connection", "remote", r.RemoteAddr, "error", err)
			return
		}

		client := room.NewClient(conn, opts, logger)

		p, err := hub.Admit(r.Context(), admissionFromRequest(r), client)
		if err != nil {
			rej, ok := room.RejectionFor(err)
			if !ok {
				rej = room.Rejection{Code: websocket.CloseGoingAway, Reason: "Server is shutting down"}
			}
			if rejErr := client.Reject(rej); rejErr != nil {
				logger.Debug("Reject failed", "remote", r.RemoteAddr, "error", rejErr)
			}
			return
		}

		logger.Debug("Connection admitted",
			"remote", r.RemoteAddr,
			"request_id", middleware.GetReqID(r.Context()),
			"participant", p.ID)

		// Start the client's read and write pumps in separate goroutines
		// These methods will handle the client's lifecycle
		client.Start(hub, p)
	}
}
