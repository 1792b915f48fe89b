// internal/session/events.go
//
// The one outbound event schema. Every message to a client is an Event
// envelope; payload shapes are fixed per type and already redacted for the
// recipient by the time they get here.

package session

import (
	"encoding/json"

	"github.com/alexdriaguine/drawly/internal/game"
)

// Event is the outbound wire envelope.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Outbound event types.
const (
	EventPlayerJoined  = "player-joined"
	EventPlayerLeft    = "player-left"
	EventRoundPrepared = "round-prepared"
	EventRoundStarted  = "round-started"
	EventRoundEnded    = "round-ended"
	EventGameDone      = "game-done"
	EventGuessMade     = "guess-made"
	EventDrawReceive   = "draw-receive"
	EventError         = "error"
)

// GamePayload carries a player-scoped session view.
type GamePayload struct {
	Game game.View `json:"game"`
}

// RoundEndedPayload adds why the round stopped.
type RoundEndedPayload struct {
	Game   game.View `json:"game"`
	Reason string    `json:"reason"` // "time-up" | "all-guessed" | "drawer-left"
}

// GuessMadePayload carries one redacted guess plus the score ledger.
type GuessMadePayload struct {
	Guess  game.GuessView `json:"guess"`
	Score  map[string]int `json:"score"`
	Points int            `json:"points"`
}

// ErrorPayload is sent to the originating caller only.
type ErrorPayload struct {
	Kind    game.Kind `json:"kind"`
	Message string    `json:"message"`
}

// DrawPayload relays an opaque stroke from the drawer to the guessers.
type DrawPayload = json.RawMessage

// Notifier is the transport hook the coordinator fans events out through.
// Send must not block; implementations queue per connection and drop when
// the client cannot keep up.
type Notifier interface {
	Send(socketID string, e Event)
}

// outbound is one queued (recipient, event) pair, collected while the
// session lock is held and delivered after release.
type outbound struct {
	socketID string
	event    Event
}
