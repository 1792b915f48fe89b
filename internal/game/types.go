// internal/game/types.go
//
// Core type definitions for a drawing-and-guessing game session.
// Defines:
//   - Status: the session state machine phases.
//   - Player: a roster member (client-chosen id, durable across reconnects).
//   - Guess: one immutable text submission evaluated against the secret word.
//   - Config: per-session round configuration.
//   - Game: state for a single session.

package game

import "time"

// Status is the phase of the session state machine.
// Transitions: lobby → choosing-word → drawing → round-end → (choosing-word | done).
type Status string

const (
	StatusLobby    Status = "lobby"
	StatusChoosing Status = "choosing-word"
	StatusDrawing  Status = "drawing"
	StatusRoundEnd Status = "round-end"
	StatusDone     Status = "done"
)

// PointInterval is the scoring bucket: a correct guess earns
// ceil(secondsRemaining / PointInterval) points.
const PointInterval = 5 * time.Second

// Player is one roster member. ID is chosen by the client and survives
// reconnects; SocketID is the latest transport identity and is replaced
// whenever the same player id joins again.
type Player struct {
	ID       string
	Name     string
	SocketID string
	IsLeader bool
}

// Guess is an append-only record of one text submission during a round.
type Guess struct {
	ID          string
	PlayerID    string
	Text        string
	IsCorrect   bool
	SubmittedAt time.Time
}

// Config carries the per-session round settings.
type Config struct {
	MaxRounds  int           // total drawer turns before the game is done
	RoundTime  time.Duration // drawing window
	BreakTime  time.Duration // pause between rounds
	ChooseTime time.Duration // word-selection window before auto-pick
}

// DefaultConfig matches the original client defaults: 5 rounds of 30s,
// with a 10s break and 20s to choose a word.
func DefaultConfig() Config {
	return Config{
		MaxRounds:  5,
		RoundTime:  30 * time.Second,
		BreakTime:  10 * time.Second,
		ChooseTime: 20 * time.Second,
	}
}

// Game holds all state of a single session. It is a plain state machine:
// methods validate, then mutate all-or-nothing, and the caller provides
// mutual exclusion (see the store package's Session handle).
type Game struct {
	ID     string // short lowercase code, unique case-insensitively
	Status Status

	Players       []*Player // join order; unique by Player.ID
	DrawingQueue  []string  // rotating player-id queue, head = current drawer
	CurrentDrawer string    // empty when no round is active

	Word          string   // secret word for the active round
	WordChoices   []string // candidates offered to the current drawer
	PreviousWords []string // words already used this session

	Scores  map[string]int // keys always == roster ids
	Guesses []*Guess       // current round's log, cleared on each word choice

	CurrentRound int
	Config       Config

	// Turn increments on every status transition and is the staleness
	// token for scheduler callbacks and timer arming: a callback or arm
	// carrying turn n must no-op once the session has moved on. Every
	// transition gets its own value, so two timers armed for different
	// phases never share a turn.
	Turn int

	// RoundEndsAt is the absolute deadline of the current drawing window,
	// used for scoring and client countdowns.
	RoundEndsAt time.Time

	scoredThisRound map[string]bool // player ids whose correct guess already scored
}
