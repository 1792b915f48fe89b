// internal/session/coordinator.go
//
// The coordinator is the API surface the transport layer calls into.
// Responsibilities:
//   - Validate inbound intents and run exactly one session mutation each.
//   - Compute player-scoped views and fan them out through the Notifier;
//     the secret word and candidate list never reach a non-drawer while a
//     round is live, and errors go only to the originating caller.
//   - Drive the timed phase transitions via the scheduler; every timer
//     callback re-checks (Status, Turn) under the session lock so a stale
//     firing against a superseded state is a silent no-op.
//
// Events are collected while the session lock is held and delivered after
// release; timers are likewise armed after release. The Turn token closes
// the race window that leaves.

package session

import (
	"encoding/json"
	"math/rand"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/alexdriaguine/drawly/internal/game"
	"github.com/alexdriaguine/drawly/internal/store"
	"github.com/alexdriaguine/drawly/internal/words"
)

// Coordinator wires the store, word bank, scheduler and transport together.
type Coordinator struct {
	store  *store.Store
	bank   *words.Bank
	sched  *Scheduler
	notify Notifier
	cfg    game.Config
	now    func() time.Time
}

// NewCoordinator constructs a coordinator. cfg applies to every session
// this coordinator creates.
func NewCoordinator(st *store.Store, bank *words.Bank, sched *Scheduler, notify Notifier, cfg game.Config) *Coordinator {
	return &Coordinator{
		store:  st,
		bank:   bank,
		sched:  sched,
		notify: notify,
		cfg:    cfg,
		now:    time.Now,
	}
}

// CreateSession allocates a fresh game code and puts the creator, as
// leader, into a lobby. The new code is returned so the transport can
// associate the connection with the session.
func (c *Coordinator) CreateSession(ref, playerID, name string) (string, error) {
	name = strings.TrimSpace(name)
	if playerID == "" || name == "" {
		return "", c.fail(ref, game.InvalidInputf("player id and name are required"))
	}

	var sess *store.Session
	var g *game.Game
	for attempt := 0; ; attempt++ {
		g = game.New(game.NewCode(), c.cfg, playerID, name, ref)
		var err error
		if sess, err = c.store.Create(g); err == nil {
			break
		}
		if attempt >= 4 {
			return "", c.fail(ref, game.Internalf("could not allocate a game code"))
		}
	}

	var msgs []outbound
	_ = sess.Update(func(g *game.Game) error {
		msgs = c.broadcast(g, EventPlayerJoined)
		return nil
	})
	c.deliver(msgs)
	log.Info().Str("game", g.ID).Str("player", playerID).Msg("game created")
	return g.ID, nil
}

// JoinSession adds a player to an existing game, or refreshes their
// transport identity when the id is already on the roster (reconnect).
// Everyone gets the updated view, which brings a rejoiner back in sync
// mid-game.
func (c *Coordinator) JoinSession(ref, gameID, playerID, name string) error {
	sess, err := c.store.Get(gameID)
	if err != nil {
		return c.fail(ref, err)
	}
	var msgs []outbound
	err = sess.Update(func(g *game.Game) error {
		if _, err := g.AddPlayer(playerID, strings.TrimSpace(name), ref); err != nil {
			return err
		}
		msgs = c.broadcast(g, EventPlayerJoined)
		return nil
	})
	if err != nil {
		return c.fail(ref, err)
	}
	c.deliver(msgs)
	return nil
}

// LeaveSession removes a player. Side effects depend on who left: the
// leadership moves, the round aborts when the drawer departs, the game
// ends when too few players remain, and an empty session is reclaimed
// along with its pending timer.
func (c *Coordinator) LeaveSession(ref, gameID, playerID string) error {
	sess, err := c.store.Get(gameID)
	if err != nil {
		return c.fail(ref, err)
	}
	var msgs []outbound
	var dep game.Departure
	var arm armRequest
	err = sess.Update(func(g *game.Game) error {
		dep, err = g.RemovePlayer(playerID)
		if err != nil {
			return err
		}
		if dep.Empty {
			return nil
		}
		msgs = c.broadcast(g, EventPlayerLeft)
		switch {
		case dep.GameOver:
			msgs = append(msgs, c.broadcast(g, EventGameDone)...)
		case dep.RoundAborted:
			msgs = append(msgs, c.broadcastRoundEnded(g, "drawer-left")...)
			arm = armRequest{kind: armBreak, turn: g.Turn, after: g.Config.BreakTime}
		case g.AllGuessed():
			// The leaver was the last player still guessing.
			if err := g.EndRound(); err != nil {
				return err
			}
			msgs = append(msgs, c.broadcastRoundEnded(g, "all-guessed")...)
			arm = armRequest{kind: armBreak, turn: g.Turn, after: g.Config.BreakTime}
		}
		return nil
	})
	if err != nil {
		return c.fail(ref, err)
	}
	if dep.Empty {
		c.sched.Cancel(gameID)
		c.store.Remove(gameID)
		log.Info().Str("game", gameID).Msg("last player left, game reclaimed")
		return nil
	}
	if dep.GameOver {
		c.sched.Cancel(gameID)
	}
	c.deliver(msgs)
	c.applyArm(gameID, arm)
	return nil
}

// StartSession begins the first round: leader-only, shuffles the rotation,
// zeroes scores, and offers candidate words to the first drawer.
func (c *Coordinator) StartSession(ref, gameID, playerID string) error {
	sess, err := c.store.Get(gameID)
	if err != nil {
		return c.fail(ref, err)
	}
	var msgs []outbound
	var arm armRequest
	err = sess.Update(func(g *game.Game) error {
		if err := g.Start(playerID); err != nil {
			return err
		}
		if err := g.BeginTurn(c.bank.Pick(words.DefaultCandidates, g.PreviousWords)); err != nil {
			return err
		}
		msgs = c.broadcast(g, EventRoundPrepared)
		arm = armRequest{kind: armChoose, turn: g.Turn, after: g.Config.ChooseTime}
		return nil
	})
	if err != nil {
		return c.fail(ref, err)
	}
	log.Info().Str("game", gameID).Str("player", playerID).Msg("game started")
	c.deliver(msgs)
	c.applyArm(gameID, arm)
	return nil
}

// ChooseWord sets the round's secret word (current drawer only) and opens
// the drawing window.
func (c *Coordinator) ChooseWord(ref, gameID, playerID, word string) error {
	sess, err := c.store.Get(gameID)
	if err != nil {
		return c.fail(ref, err)
	}
	var msgs []outbound
	var arm armRequest
	err = sess.Update(func(g *game.Game) error {
		if err := g.ChooseWord(playerID, word, c.now()); err != nil {
			return err
		}
		msgs = c.broadcast(g, EventRoundStarted)
		arm = armRequest{kind: armRound, turn: g.Turn, after: g.Config.RoundTime}
		return nil
	})
	if err != nil {
		return c.fail(ref, err)
	}
	c.deliver(msgs)
	c.applyArm(gameID, arm)
	return nil
}

// SubmitGuess evaluates a guess and fans the (per-recipient redacted)
// result out. When the last guesser gets it right the round ends early
// and the break timer replaces the round timer.
func (c *Coordinator) SubmitGuess(ref, gameID, playerID, text string) error {
	sess, err := c.store.Get(gameID)
	if err != nil {
		return c.fail(ref, err)
	}
	var msgs []outbound
	var arm armRequest
	err = sess.Update(func(g *game.Game) error {
		guess, points, err := g.SubmitGuess(playerID, text, c.now())
		if err != nil {
			return err
		}
		scores := scoresCopy(g)
		for _, p := range g.Players {
			msgs = append(msgs, outbound{p.SocketID, Event{
				Type: EventGuessMade,
				Data: GuessMadePayload{Guess: game.GuessViewFor(guess, p.ID), Score: scores, Points: points},
			}})
		}
		if guess.IsCorrect && g.AllGuessed() {
			if err := g.EndRound(); err != nil {
				return err
			}
			msgs = append(msgs, c.broadcastRoundEnded(g, "all-guessed")...)
			arm = armRequest{kind: armBreak, turn: g.Turn, after: g.Config.BreakTime}
		}
		return nil
	})
	if err != nil {
		return c.fail(ref, err)
	}
	c.deliver(msgs)
	c.applyArm(gameID, arm)
	return nil
}

// Draw relays a stroke from the current drawer to everyone else in the
// session. Strokes from anyone else, or outside the drawing window, are
// dropped without an error event — they race phase changes constantly.
func (c *Coordinator) Draw(ref, gameID, playerID string, stroke json.RawMessage) error {
	sess, err := c.store.Get(gameID)
	if err != nil {
		return err
	}
	var msgs []outbound
	err = sess.Update(func(g *game.Game) error {
		if g.Status != game.StatusDrawing || playerID != g.CurrentDrawer {
			return game.Forbiddenf("only the current drawer can draw")
		}
		for _, p := range g.Players {
			if p.ID != playerID {
				msgs = append(msgs, outbound{p.SocketID, Event{Type: EventDrawReceive, Data: stroke}})
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	c.deliver(msgs)
	return nil
}

// Summary is the redacted session listing for the HTTP surface.
type Summary struct {
	ID           string      `json:"id"`
	Status       game.Status `json:"status"`
	Players      int         `json:"players"`
	CurrentRound int         `json:"currentRound"`
	MaxRounds    int         `json:"maxRounds"`
}

// Summaries lists every live session without secrets.
func (c *Coordinator) Summaries() []Summary {
	out := []Summary{}
	c.store.Each(func(s *store.Session) {
		_ = s.Update(func(g *game.Game) error {
			out = append(out, Summary{
				ID:           g.ID,
				Status:       g.Status,
				Players:      len(g.Players),
				CurrentRound: g.CurrentRound,
				MaxRounds:    g.Config.MaxRounds,
			})
			return nil
		})
	})
	return out
}

// ---------------------------- timer callbacks ------------------------------

// onChooseTimeout fires when the drawer sat on the word choice too long:
// a random candidate is picked on their behalf.
func (c *Coordinator) onChooseTimeout(gameID string, turn int) {
	sess, err := c.store.Get(gameID)
	if err != nil {
		return
	}
	var msgs []outbound
	var arm armRequest
	err = sess.Update(func(g *game.Game) error {
		if g.Status != game.StatusChoosing || g.Turn != turn {
			return nil // superseded; stale timers are expected
		}
		word := g.WordChoices[rand.Intn(len(g.WordChoices))]
		if err := g.ChooseWord(g.CurrentDrawer, word, c.now()); err != nil {
			return err
		}
		log.Debug().Str("game", gameID).Msg("word auto-picked after choose timeout")
		msgs = c.broadcast(g, EventRoundStarted)
		arm = armRequest{kind: armRound, turn: g.Turn, after: g.Config.RoundTime}
		return nil
	})
	if err != nil {
		log.Error().Err(err).Str("game", gameID).Msg("choose timeout failed")
		return
	}
	c.deliver(msgs)
	c.applyArm(gameID, arm)
}

// onRoundTimeout closes the drawing window.
func (c *Coordinator) onRoundTimeout(gameID string, turn int) {
	sess, err := c.store.Get(gameID)
	if err != nil {
		return
	}
	var msgs []outbound
	var arm armRequest
	err = sess.Update(func(g *game.Game) error {
		if g.Status != game.StatusDrawing || g.Turn != turn {
			return nil
		}
		if err := g.EndRound(); err != nil {
			return err
		}
		msgs = c.broadcastRoundEnded(g, "time-up")
		arm = armRequest{kind: armBreak, turn: g.Turn, after: g.Config.BreakTime}
		return nil
	})
	if err != nil {
		log.Error().Err(err).Str("game", gameID).Msg("round timeout failed")
		return
	}
	c.deliver(msgs)
	c.applyArm(gameID, arm)
}

// onBreakTimeout either finishes the game or rotates to the next drawer.
func (c *Coordinator) onBreakTimeout(gameID string, turn int) {
	sess, err := c.store.Get(gameID)
	if err != nil {
		return
	}
	var msgs []outbound
	var arm armRequest
	err = sess.Update(func(g *game.Game) error {
		if g.Status != game.StatusRoundEnd || g.Turn != turn {
			return nil
		}
		done, err := g.FinishOrNext(c.bank.Pick(words.DefaultCandidates, g.PreviousWords))
		if err != nil {
			return err
		}
		if done {
			msgs = c.broadcast(g, EventGameDone)
			return nil
		}
		msgs = c.broadcast(g, EventRoundPrepared)
		arm = armRequest{kind: armChoose, turn: g.Turn, after: g.Config.ChooseTime}
		return nil
	})
	if err != nil {
		log.Error().Err(err).Str("game", gameID).Msg("break timeout failed")
		return
	}
	c.deliver(msgs)
	c.applyArm(gameID, arm)
}

// ------------------------------- internals ---------------------------------

type armKind int

const (
	armNone armKind = iota
	armChoose
	armRound
	armBreak
)

// armRequest is a deferred scheduler instruction, decided under the
// session lock and applied after release. The turn versions the arm: the
// scheduler discards it if a later transition already armed a timer.
type armRequest struct {
	kind  armKind
	turn  int
	after time.Duration
}

func (c *Coordinator) applyArm(gameID string, arm armRequest) {
	turn := arm.turn
	switch arm.kind {
	case armChoose:
		c.sched.Arm(gameID, turn, arm.after, func() { c.onChooseTimeout(gameID, turn) })
	case armRound:
		c.sched.Arm(gameID, turn, arm.after, func() { c.onRoundTimeout(gameID, turn) })
	case armBreak:
		c.sched.Arm(gameID, turn, arm.after, func() { c.onBreakTimeout(gameID, turn) })
	}
}

// broadcast builds one event per roster member, each carrying that
// member's own view of the session.
func (c *Coordinator) broadcast(g *game.Game, typ string) []outbound {
	out := make([]outbound, 0, len(g.Players))
	for _, p := range g.Players {
		out = append(out, outbound{p.SocketID, Event{Type: typ, Data: GamePayload{Game: g.ViewFor(p.ID)}}})
	}
	return out
}

func (c *Coordinator) broadcastRoundEnded(g *game.Game, reason string) []outbound {
	out := make([]outbound, 0, len(g.Players))
	for _, p := range g.Players {
		out = append(out, outbound{p.SocketID, Event{
			Type: EventRoundEnded,
			Data: RoundEndedPayload{Game: g.ViewFor(p.ID), Reason: reason},
		}})
	}
	return out
}

func (c *Coordinator) deliver(msgs []outbound) {
	for _, m := range msgs {
		if m.socketID != "" {
			c.notify.Send(m.socketID, m.event)
		}
	}
}

// fail reports an error to the originating caller only and passes it back
// to the transport layer.
func (c *Coordinator) fail(ref string, err error) error {
	if ref != "" {
		c.notify.Send(ref, Event{Type: EventError, Data: ErrorPayload{
			Kind:    game.KindOf(err),
			Message: err.Error(),
		}})
	}
	return err
}

func scoresCopy(g *game.Game) map[string]int {
	out := make(map[string]int, len(g.Scores))
	for id, s := range g.Scores {
		out[id] = s
	}
	return out
}
