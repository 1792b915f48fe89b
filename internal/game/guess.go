// internal/game/guess.go
//
// Guess evaluation and time-weighted scoring.
// Correctness is a case-insensitive, accent-insensitive exact match against
// the secret word. A correct guess earns ceil(secondsRemaining/5s) points,
// awarded only for a player's first correct guess of the round; repeats are
// still logged for the round audit but never re-score.

package game

import (
	"math"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// SubmitGuess evaluates a guess, appends it to the round log, and applies
// any points to the guesser's score. It returns the record and the points
// awarded. The current drawer may not guess.
func (g *Game) SubmitGuess(callerID, text string, now time.Time) (*Guess, int, error) {
	if g.Status != StatusDrawing {
		return nil, 0, InvalidInputf("game %s is not accepting guesses", g.ID)
	}
	if g.PlayerByID(callerID) == nil {
		return nil, 0, NotFoundf("player %s is not in game %s", callerID, g.ID)
	}
	if callerID == g.CurrentDrawer {
		return nil, 0, Forbiddenf("the drawer cannot guess")
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, 0, InvalidInputf("empty guess")
	}

	guess := &Guess{
		ID:          uuid.NewString(),
		PlayerID:    callerID,
		Text:        text,
		IsCorrect:   normalizeWord(text) == normalizeWord(g.Word),
		SubmittedAt: now,
	}
	g.Guesses = append(g.Guesses, guess)

	points := 0
	if guess.IsCorrect && !g.scoredThisRound[callerID] {
		points = g.pointsAt(now)
		g.Scores[callerID] += points
		g.scoredThisRound[callerID] = true
	}
	return guess, points, nil
}

// pointsAt computes the time-weighted award for a correct guess at now.
// A guess on the deadline is worth zero.
func (g *Game) pointsAt(now time.Time) int {
	remaining := g.RoundEndsAt.Sub(now)
	if remaining <= 0 {
		return 0
	}
	return int(math.Ceil(remaining.Seconds() / PointInterval.Seconds()))
}

// normalizeWord lowercases, trims, and strips diacritics so that "Árbol"
// matches "arbol".
func normalizeWord(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
