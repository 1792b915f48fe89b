// internal/game/view.go
//
// Player-scoped projections of session state. Views are what goes over the
// wire: the secret word and the candidate list are visible only to the
// current drawer while the round is live, the word is revealed to everyone
// once the round ends, and PreviousWords never leaves the server.

package game

import (
	"time"
	"unicode/utf8"
)

// PlayerView is the public shape of a roster member.
type PlayerView struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	IsLeader bool   `json:"isLeader"`
}

// View is the session as one player is allowed to see it.
type View struct {
	ID            string         `json:"id"`
	Status        Status         `json:"status"`
	Players       []PlayerView   `json:"players"`
	Scores        map[string]int `json:"score"`
	CurrentRound  int            `json:"currentRound"`
	MaxRounds     int            `json:"maxRounds"`
	RoundTime     int            `json:"roundTime"` // seconds
	BreakTime     int            `json:"breakTime"` // seconds
	CurrentDrawer string         `json:"currentDrawingPlayer,omitempty"`
	WordLength    int            `json:"currentWordLength,omitempty"`
	RoundEndsAt   int64          `json:"nextRoundEnd,omitempty"` // unix millis

	// Word is set for the current drawer during the round and for everyone
	// at round-end/done.
	Word string `json:"currentWord,omitempty"`
	// WordChoices is set only for the current drawer while choosing.
	WordChoices []string `json:"wordChoices,omitempty"`
}

// ViewFor projects the session for the given viewer.
func (g *Game) ViewFor(viewerID string) View {
	v := View{
		ID:            g.ID,
		Status:        g.Status,
		Players:       make([]PlayerView, 0, len(g.Players)),
		Scores:        make(map[string]int, len(g.Scores)),
		CurrentRound:  g.CurrentRound,
		MaxRounds:     g.Config.MaxRounds,
		RoundTime:     int(g.Config.RoundTime / time.Second),
		BreakTime:     int(g.Config.BreakTime / time.Second),
		CurrentDrawer: g.CurrentDrawer,
	}
	for _, p := range g.Players {
		v.Players = append(v.Players, PlayerView{ID: p.ID, Name: p.Name, IsLeader: p.IsLeader})
	}
	for id, s := range g.Scores {
		v.Scores[id] = s
	}
	if g.Word != "" {
		v.WordLength = utf8.RuneCountInString(g.Word)
	}
	if !g.RoundEndsAt.IsZero() && g.Status == StatusDrawing {
		v.RoundEndsAt = g.RoundEndsAt.UnixMilli()
	}

	isDrawer := viewerID != "" && viewerID == g.CurrentDrawer
	revealed := g.Status == StatusRoundEnd || g.Status == StatusDone
	if isDrawer || revealed {
		v.Word = g.Word
	}
	if isDrawer && g.Status == StatusChoosing {
		v.WordChoices = append([]string(nil), g.WordChoices...)
	}
	return v
}

// GuessView is a guess as one recipient is allowed to see it. Correct
// guesses are masked for everyone except the guesser so the word does not
// leak through the guess feed while the round is still running.
type GuessView struct {
	ID          string    `json:"id"`
	PlayerID    string    `json:"playerId"`
	Text        string    `json:"text"`
	IsCorrect   bool      `json:"isCorrect"`
	SubmittedAt time.Time `json:"date"`
}

const maskedGuessText = "******"

// GuessViewFor projects a guess for the given recipient.
func GuessViewFor(gs *Guess, viewerID string) GuessView {
	v := GuessView{
		ID:          gs.ID,
		PlayerID:    gs.PlayerID,
		Text:        gs.Text,
		IsCorrect:   gs.IsCorrect,
		SubmittedAt: gs.SubmittedAt,
	}
	if gs.IsCorrect && gs.PlayerID != viewerID {
		v.Text = maskedGuessText
	}
	return v
}
