// internal/game/game.go
//
// Session construction and roster management.
// Responsibilities:
//   - Create sessions with a creator who becomes the leader.
//   - Add players (joins and reconnects) while keeping Scores keyed exactly
//     by the roster and the drawing queue a permutation of roster ids.
//   - Remove players, reassigning leadership deterministically and aborting
//     the round when the current drawer departs.

package game

import (
	"crypto/rand"
	"strings"
)

// codeAlphabet omits easily-confused characters (0/o, 1/l).
const codeAlphabet = "abcdefghijkmnpqrstuvwxyz23456789"

const codeLength = 5

// NewCode returns a short random session code. Codes are lowercase and are
// compared case-insensitively by the store.
func NewCode() string {
	var b [codeLength]byte
	_, _ = rand.Read(b[:])
	for i := range b {
		b[i] = codeAlphabet[int(b[i])%len(codeAlphabet)]
	}
	return string(b[:])
}

// New creates a session in the lobby phase. The creator joins immediately,
// is the leader, and seeds the drawing queue.
func New(id string, cfg Config, creatorID, name, socketID string) *Game {
	return &Game{
		ID:     strings.ToLower(id),
		Status: StatusLobby,
		Players: []*Player{
			{ID: creatorID, Name: name, SocketID: socketID, IsLeader: true},
		},
		DrawingQueue:    []string{creatorID},
		Scores:          map[string]int{creatorID: 0},
		Config:          cfg,
		scoredThisRound: make(map[string]bool),
	}
}

// PlayerByID returns the roster entry for id, or nil.
func (g *Game) PlayerByID(id string) *Player {
	for _, p := range g.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// Leader returns the current leader, or nil for an empty roster.
func (g *Game) Leader() *Player {
	for _, p := range g.Players {
		if p.IsLeader {
			return p
		}
	}
	return nil
}

// AddPlayer joins a player to the session, or refreshes the transport
// identity when the player id is already on the roster (a reconnect).
// Joining mid-game is allowed: the newcomer starts at zero points and is
// appended to the tail of the drawing queue.
func (g *Game) AddPlayer(id, name, socketID string) (rejoined bool, err error) {
	if id == "" || name == "" {
		return false, InvalidInputf("player id and name are required")
	}
	if g.Status == StatusDone {
		return false, InvalidInputf("game %s is over", g.ID)
	}
	if p := g.PlayerByID(id); p != nil {
		p.Name = name
		p.SocketID = socketID
		return true, nil
	}
	g.Players = append(g.Players, &Player{ID: id, Name: name, SocketID: socketID})
	g.Scores[id] = 0
	g.DrawingQueue = append(g.DrawingQueue, id)
	return false, nil
}

// Departure reports what a RemovePlayer call changed, so the coordinator
// knows which events to emit and which timers to (re)arm.
type Departure struct {
	Player       *Player
	NewLeaderID  string // set when leadership moved
	WasDrawer    bool
	RoundAborted bool // drawer left mid-round; session is now round-end
	GameOver     bool // too few players to continue; session is now done
	Empty        bool // roster is empty; session should be reclaimed
}

// RemovePlayer removes a player from the roster, queue and score ledger.
// The first remaining player in join order inherits leadership. If the
// departing player was drawing (or choosing a word), the round is aborted:
// the session moves straight to round-end and the break timer applies.
func (g *Game) RemovePlayer(id string) (Departure, error) {
	p := g.PlayerByID(id)
	if p == nil {
		return Departure{}, NotFoundf("player %s is not in game %s", id, g.ID)
	}

	var dep Departure
	dep.Player = p

	for i, q := range g.Players {
		if q.ID == id {
			g.Players = append(g.Players[:i], g.Players[i+1:]...)
			break
		}
	}
	for i, qid := range g.DrawingQueue {
		if qid == id {
			g.DrawingQueue = append(g.DrawingQueue[:i], g.DrawingQueue[i+1:]...)
			break
		}
	}
	delete(g.Scores, id)
	delete(g.scoredThisRound, id)

	if len(g.Players) == 0 {
		dep.Empty = true
		return dep, nil
	}

	if p.IsLeader {
		g.Players[0].IsLeader = true
		dep.NewLeaderID = g.Players[0].ID
	}

	if g.CurrentDrawer == id {
		dep.WasDrawer = true
		if g.Status == StatusChoosing || g.Status == StatusDrawing {
			g.abortRound()
			dep.RoundAborted = true
		}
	}

	// A drawing game with a single player has nobody left to guess; an
	// active session that shrinks below two players ends on the spot.
	if len(g.Players) < 2 && g.Status != StatusLobby && g.Status != StatusDone {
		g.Status = StatusDone
		g.CurrentDrawer = ""
		g.WordChoices = nil
		g.Turn++
		dep.GameOver = true
	}
	return dep, nil
}

// abortRound ends the active round in place after the drawer departs.
// The word (if one was chosen) stays set so it can be revealed.
func (g *Game) abortRound() {
	g.Status = StatusRoundEnd
	g.Turn++
	g.CurrentDrawer = ""
	g.WordChoices = nil
}
