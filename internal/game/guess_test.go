package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// drawingGame returns a three-player game in the drawing phase with the
// word "arbol" chosen at t0, plus the ids of two guessers.
func drawingGame(t *testing.T, t0 time.Time) (g *Game, guessers []string) {
	t.Helper()
	g = newLobby(t, "p1", "p2", "p3")
	require.NoError(t, g.Start("p1"))
	require.NoError(t, g.BeginTurn([]string{"arbol", "dog", "sun"}))
	require.NoError(t, g.ChooseWord(g.CurrentDrawer, "arbol", t0))
	for _, p := range g.Players {
		if p.ID != g.CurrentDrawer {
			guessers = append(guessers, p.ID)
		}
	}
	require.Len(t, guessers, 2)
	return g, guessers
}

func TestSubmitGuessValidation(t *testing.T) {
	t0 := time.Now()

	t.Run("outside the drawing window", func(t *testing.T) {
		g := newLobby(t, "p1", "p2")
		_, _, err := g.SubmitGuess("p2", "cat", t0)
		assert.Equal(t, KindInvalidInput, KindOf(err))
	})

	t.Run("unknown player", func(t *testing.T) {
		g, _ := drawingGame(t, t0)
		_, _, err := g.SubmitGuess("ghost", "cat", t0)
		assert.Equal(t, KindNotFound, KindOf(err))
	})

	t.Run("the drawer cannot guess", func(t *testing.T) {
		g, _ := drawingGame(t, t0)
		_, _, err := g.SubmitGuess(g.CurrentDrawer, "arbol", t0)
		assert.Equal(t, KindForbidden, KindOf(err))
	})

	t.Run("empty guess", func(t *testing.T) {
		g, guessers := drawingGame(t, t0)
		_, _, err := g.SubmitGuess(guessers[0], "   ", t0)
		assert.Equal(t, KindInvalidInput, KindOf(err))
	})
}

func TestGuessMatchingIgnoresCaseAndAccents(t *testing.T) {
	t0 := time.Now()
	for _, text := range []string{"arbol", "ARBOL", " Árbol ", "árboL"} {
		g, guessers := drawingGame(t, t0)
		guess, _, err := g.SubmitGuess(guessers[0], text, t0)
		require.NoError(t, err)
		assert.True(t, guess.IsCorrect, "%q should match the word", text)
	}

	g, guessers := drawingGame(t, t0)
	guess, points, err := g.SubmitGuess(guessers[0], "arbole", t0)
	require.NoError(t, err)
	assert.False(t, guess.IsCorrect)
	assert.Zero(t, points)
	assert.Zero(t, g.Scores[guessers[0]])
}

func TestScoringIsTimeWeighted(t *testing.T) {
	t0 := time.Now()
	cases := []struct {
		name    string
		elapsed time.Duration
		points  int
	}{
		{"instant guess", 0, 6},
		{"a third in", 10 * time.Second, 4},
		{"inside the last bucket", 29900 * time.Millisecond, 1},
		{"on the deadline", 30 * time.Second, 0},
		{"after the deadline", 31 * time.Second, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g, guessers := drawingGame(t, t0)
			require.Equal(t, 30*time.Second, g.Config.RoundTime)
			guess, points, err := g.SubmitGuess(guessers[0], "arbol", t0.Add(tc.elapsed))
			require.NoError(t, err)
			assert.True(t, guess.IsCorrect)
			assert.Equal(t, tc.points, points)
			assert.Equal(t, tc.points, g.Scores[guessers[0]])
		})
	}
}

func TestRepeatCorrectGuessNeverRescores(t *testing.T) {
	t0 := time.Now()
	g, guessers := drawingGame(t, t0)

	_, first, err := g.SubmitGuess(guessers[0], "arbol", t0)
	require.NoError(t, err)
	require.Equal(t, 6, first)

	guess, again, err := g.SubmitGuess(guessers[0], "arbol", t0.Add(time.Second))
	require.NoError(t, err)
	assert.True(t, guess.IsCorrect, "the repeat is still logged as correct")
	assert.Zero(t, again)
	assert.Equal(t, 6, g.Scores[guessers[0]], "score unchanged by repeats")
	assert.Len(t, g.Guesses, 2, "every submission stays in the round log")
}

func TestEachGuesserScoresIndependently(t *testing.T) {
	t0 := time.Now()
	g, guessers := drawingGame(t, t0)

	_, p0, err := g.SubmitGuess(guessers[0], "arbol", t0)
	require.NoError(t, err)
	_, p1, err := g.SubmitGuess(guessers[1], "arbol", t0.Add(12*time.Second))
	require.NoError(t, err)

	assert.Equal(t, 6, p0)
	assert.Equal(t, 4, p1) // 18s left -> ceil(18/5)
	assert.Equal(t, 6, g.Scores[guessers[0]])
	assert.Equal(t, 4, g.Scores[guessers[1]])
}

func TestNormalizeWord(t *testing.T) {
	assert.Equal(t, "arbol", normalizeWord(" Árbol "))
	assert.Equal(t, "pinguino", normalizeWord("Pingüino"))
	assert.Equal(t, "cafe", normalizeWord("CAFÉ"))
	assert.Equal(t, "yo-yo", normalizeWord("yo-yo"))
}
