// internal/game/round.go
//
// Round lifecycle: starting the game, rotating the drawing queue, choosing
// the word, and ending rounds. All transitions validate first and mutate
// all-or-nothing; the scheduler's staleness checks key off (Status, Turn).

package game

import (
	"math/rand"
	"time"
)

// Start moves the session from the lobby into the first round. Only the
// leader may start, and a drawing game needs at least one guesser, so two
// players is the floor. The drawing queue is shuffled once here; the
// resulting rotation order is fixed for the rest of the game.
func (g *Game) Start(callerID string) error {
	if g.Status != StatusLobby {
		return InvalidInputf("game %s already started", g.ID)
	}
	caller := g.PlayerByID(callerID)
	if caller == nil {
		return NotFoundf("player %s is not in game %s", callerID, g.ID)
	}
	if !caller.IsLeader {
		return Forbiddenf("only the leader can start the game")
	}
	if len(g.Players) < 2 {
		return InvalidInputf("need at least 2 players to start")
	}

	rand.Shuffle(len(g.DrawingQueue), func(i, j int) {
		g.DrawingQueue[i], g.DrawingQueue[j] = g.DrawingQueue[j], g.DrawingQueue[i]
	})
	for id := range g.Scores {
		g.Scores[id] = 0
	}
	return nil
}

// BeginTurn pops the next drawer off the queue (re-appending them at the
// tail for round-robin fairness), advances the round counter, and offers
// the candidate words. Callers fetch candidates from the word bank with
// PreviousWords excluded.
func (g *Game) BeginTurn(candidates []string) error {
	if g.Status != StatusLobby && g.Status != StatusRoundEnd {
		return Internalf("begin turn in status %s", g.Status)
	}
	if len(g.DrawingQueue) == 0 {
		// Should be unreachable: empty sessions are reclaimed before this.
		return Internalf("game %s has an empty drawing queue", g.ID)
	}
	if len(candidates) == 0 {
		return Internalf("no candidate words offered")
	}

	head := g.DrawingQueue[0]
	g.DrawingQueue = append(g.DrawingQueue[1:], head)
	g.CurrentDrawer = head

	g.CurrentRound++
	g.Turn++
	g.Status = StatusChoosing
	g.Word = ""
	g.WordChoices = candidates
	g.RoundEndsAt = time.Time{}
	return nil
}

// ChooseWord sets the secret word for the round and opens the drawing
// window. Only the current drawer may choose, and only from the offered
// candidates.
func (g *Game) ChooseWord(callerID, word string, now time.Time) error {
	if g.Status != StatusChoosing {
		return InvalidInputf("game %s is not choosing a word", g.ID)
	}
	if callerID != g.CurrentDrawer {
		return Forbiddenf("only the current drawer picks the word")
	}
	offered := false
	for _, w := range g.WordChoices {
		if w == word {
			offered = true
			break
		}
	}
	if !offered {
		return InvalidInputf("word was not offered")
	}

	g.Word = word
	g.PreviousWords = append(g.PreviousWords, word)
	g.WordChoices = nil
	g.Status = StatusDrawing
	g.Turn++
	g.RoundEndsAt = now.Add(g.Config.RoundTime)
	g.Guesses = nil
	g.scoredThisRound = make(map[string]bool)
	return nil
}

// EndRound closes the drawing window (timer expiry or every guesser done).
func (g *Game) EndRound() error {
	if g.Status != StatusDrawing {
		return Internalf("end round in status %s", g.Status)
	}
	g.Status = StatusRoundEnd
	g.Turn++
	g.CurrentDrawer = ""
	return nil
}

// AllGuessed reports whether every non-drawer on the roster has scored a
// correct guess this round.
func (g *Game) AllGuessed() bool {
	if g.Status != StatusDrawing {
		return false
	}
	guessers := 0
	for _, p := range g.Players {
		if p.ID == g.CurrentDrawer {
			continue
		}
		guessers++
		if !g.scoredThisRound[p.ID] {
			return false
		}
	}
	return guessers > 0
}

// FinishOrNext runs at the end of the break: either the game is done
// (round cap reached) or the next turn begins with fresh candidates.
func (g *Game) FinishOrNext(candidates []string) (done bool, err error) {
	if g.Status != StatusRoundEnd {
		return false, Internalf("advance round in status %s", g.Status)
	}
	if g.CurrentRound >= g.Config.MaxRounds {
		g.Status = StatusDone
		g.CurrentDrawer = ""
		g.Turn++
		return true, nil
	}
	return false, g.BeginTurn(candidates)
}
