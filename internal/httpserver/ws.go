// internal/httpserver/ws.go
//
// WebSocket transport.
// Responsibilities:
//   - Upgrade /ws connections and run one read loop + one write pump per
//     client, bridging the wire to coordinator intents.
//   - Registry: the socket-id -> connection map behind session.Notifier.
//     Send never blocks; a client whose buffer is full loses the event.
//   - Bind a connection to (game, player) on create/join so a dropped
//     socket turns into a leave intent.
//
// Malformed frames get an error event back and the connection stays up;
// the protocol is forgiving because the client is a browser.

package httpserver

import (
	"encoding/json"
	"net/http"
	"os"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/alexdriaguine/drawly/internal/game"
	"github.com/alexdriaguine/drawly/internal/session"
)

const (
	maxFrameBytes = 16 * 1024

	// Guess throughput per connection. Draw strokes are exempt; they are
	// legitimately high-frequency.
	guessRate  = 5
	guessBurst = 10

	sendBuffer = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     checkOrigin,
}

// checkOrigin gates the handshake on CLIENT_ORIGIN. Browsers do not apply
// CORS to WebSocket upgrades, so the origin has to be checked here too.
// Requests without an Origin header (same-origin and non-browser clients)
// are allowed.
func checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	allowed := os.Getenv("CLIENT_ORIGIN")
	if allowed == "" {
		allowed = "http://localhost:5173"
	}
	return strings.EqualFold(origin, allowed)
}

// inbound is the client -> server wire envelope.
type inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Inbound message types.
const (
	msgCreateGame = "create-game"
	msgJoinGame   = "join-game"
	msgLeaveGame  = "leave-game"
	msgStartGame  = "start-game"
	msgChooseWord = "choose-word"
	msgMakeGuess  = "make-guess"
	msgDrawSend   = "draw-send"
)

type createGamePayload struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
}

type joinGamePayload struct {
	GameID   string `json:"gameId"`
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
}

type chooseWordPayload struct {
	Word string `json:"word"`
}

type makeGuessPayload struct {
	Guess string `json:"guess"`
}

// client is one live socket. gameID and playerID are written only by the
// read loop, which is the sole goroutine touching them. sendMu serializes
// enqueues against shutdown: events arrive from timer goroutines as well
// as request handlers, so the channel may only be closed once no enqueue
// can still be in flight.
type client struct {
	id       string
	conn     *websocket.Conn
	limiter  *rate.Limiter
	gameID   string
	playerID string

	sendMu sync.Mutex
	send   chan session.Event
	closed bool
}

// enqueue queues an event unless the client is shut down or the buffer is
// full. Reports whether the event was accepted.
func (c *client) enqueue(e session.Event) bool {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- e:
		return true
	default:
		return false
	}
}

// shutdown closes the send channel exactly once. Taking sendMu first means
// no concurrent enqueue can hit the closed channel.
func (c *client) shutdown() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// Registry maps socket ids to live clients and implements session.Notifier.
type Registry struct {
	mu      sync.RWMutex
	clients map[string]*client
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{clients: make(map[string]*client)}
}

// Send queues an event for one socket. Unknown ids, disconnecting clients
// and full buffers drop the event; the coordinator never blocks on a slow
// client. Safe against a concurrent remove of the same socket.
func (reg *Registry) Send(socketID string, e session.Event) {
	reg.mu.RLock()
	c, ok := reg.clients[socketID]
	reg.mu.RUnlock()
	if !ok {
		return
	}
	if !c.enqueue(e) {
		log.Warn().Str("socket", socketID).Str("event", e.Type).Msg("event dropped")
	}
}

// Count reports how many sockets are connected.
func (reg *Registry) Count() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return len(reg.clients)
}

func (reg *Registry) add(c *client) {
	reg.mu.Lock()
	reg.clients[c.id] = c
	reg.mu.Unlock()
}

func (reg *Registry) remove(id string) {
	reg.mu.Lock()
	c, ok := reg.clients[id]
	if ok {
		delete(reg.clients, id)
	}
	reg.mu.Unlock()
	if ok {
		c.shutdown()
	}
}

// handleWS upgrades the connection and runs the read loop. The write pump
// runs on its own goroutine until the registry closes the send channel.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	c := &client{
		id:      uuid.NewString(),
		conn:    conn,
		send:    make(chan session.Event, sendBuffer),
		limiter: rate.NewLimiter(guessRate, guessBurst),
	}
	s.reg.add(c)
	go c.writePump()

	log.Debug().Str("socket", c.id).Msg("socket connected")
	s.readLoop(c)

	// Disconnect: drop the socket first so no further events are queued
	// for it, then fold the departure into the session.
	s.reg.remove(c.id)
	_ = conn.Close()
	if c.gameID != "" && c.playerID != "" {
		_ = s.coord.LeaveSession("", c.gameID, c.playerID)
	}
	log.Debug().Str("socket", c.id).Msg("socket disconnected")
}

func (s *Server) readLoop(c *client) {
	c.conn.SetReadLimit(maxFrameBytes)
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug().Err(err).Str("socket", c.id).Msg("socket read error")
			}
			return
		}
		var msg inbound
		if err := json.Unmarshal(raw, &msg); err != nil {
			s.sendError(c, game.InvalidInputf("malformed message"))
			continue
		}
		s.dispatch(c, msg)
	}
}

// dispatch turns one wire message into one coordinator intent. Coordinator
// errors are already delivered to this socket as error events; here they
// only matter for binding state.
func (s *Server) dispatch(c *client, msg inbound) {
	switch msg.Type {
	case msgCreateGame:
		var p createGamePayload
		if err := json.Unmarshal(msg.Data, &p); err != nil {
			s.sendError(c, game.InvalidInputf("malformed create-game payload"))
			return
		}
		gameID, err := s.coord.CreateSession(c.id, p.PlayerID, p.Name)
		if err == nil {
			c.gameID, c.playerID = gameID, p.PlayerID
		}

	case msgJoinGame:
		var p joinGamePayload
		if err := json.Unmarshal(msg.Data, &p); err != nil {
			s.sendError(c, game.InvalidInputf("malformed join-game payload"))
			return
		}
		if err := s.coord.JoinSession(c.id, p.GameID, p.PlayerID, p.Name); err == nil {
			c.gameID, c.playerID = p.GameID, p.PlayerID
		}

	case msgLeaveGame:
		if c.gameID == "" {
			s.sendError(c, game.InvalidInputf("not in a game"))
			return
		}
		if err := s.coord.LeaveSession(c.id, c.gameID, c.playerID); err == nil {
			c.gameID, c.playerID = "", ""
		}

	case msgStartGame:
		if c.gameID == "" {
			s.sendError(c, game.InvalidInputf("not in a game"))
			return
		}
		_ = s.coord.StartSession(c.id, c.gameID, c.playerID)

	case msgChooseWord:
		var p chooseWordPayload
		if err := json.Unmarshal(msg.Data, &p); err != nil {
			s.sendError(c, game.InvalidInputf("malformed choose-word payload"))
			return
		}
		if c.gameID == "" {
			s.sendError(c, game.InvalidInputf("not in a game"))
			return
		}
		_ = s.coord.ChooseWord(c.id, c.gameID, c.playerID, p.Word)

	case msgMakeGuess:
		var p makeGuessPayload
		if err := json.Unmarshal(msg.Data, &p); err != nil {
			s.sendError(c, game.InvalidInputf("malformed make-guess payload"))
			return
		}
		if c.gameID == "" {
			s.sendError(c, game.InvalidInputf("not in a game"))
			return
		}
		if !c.limiter.Allow() {
			s.sendError(c, game.InvalidInputf("too many guesses, slow down"))
			return
		}
		_ = s.coord.SubmitGuess(c.id, c.gameID, c.playerID, p.Guess)

	case msgDrawSend:
		if c.gameID == "" {
			return // strokes from an unbound socket are noise
		}
		_ = s.coord.Draw(c.id, c.gameID, c.playerID, msg.Data)

	default:
		s.sendError(c, game.InvalidInputf("unknown message type %q", msg.Type))
	}
}

func (s *Server) sendError(c *client, err error) {
	s.reg.Send(c.id, session.Event{Type: session.EventError, Data: session.ErrorPayload{
		Kind:    game.KindOf(err),
		Message: err.Error(),
	}})
}

// writePump drains the send channel onto the wire. It exits when the
// registry closes the channel on unregister.
func (c *client) writePump() {
	defer func() { _ = c.conn.Close() }()
	for e := range c.send {
		if err := c.conn.WriteJSON(e); err != nil {
			log.Debug().Err(err).Str("socket", c.id).Msg("socket write error")
			return
		}
	}
	_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}
