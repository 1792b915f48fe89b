package httpserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexdriaguine/drawly/internal/game"
	"github.com/alexdriaguine/drawly/internal/session"
	"github.com/alexdriaguine/drawly/internal/store"
	"github.com/alexdriaguine/drawly/internal/words"
)

func newTestServer(t *testing.T) (*Server, *session.Coordinator) {
	t.Helper()
	bank, err := words.New("")
	require.NoError(t, err)
	reg := NewRegistry()
	sched := session.NewScheduler()
	t.Cleanup(sched.Shutdown)
	coord := session.NewCoordinator(store.NewStore(), bank, sched, reg, game.DefaultConfig())
	return New(coord, reg), coord
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
}

func TestSessionsEndpointListsLiveGames(t *testing.T) {
	srv, coord := newTestServer(t)
	id, err := coord.CreateSession("sock1", "p1", "alice")
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sessions", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var sums []session.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sums))
	require.Len(t, sums, 1)
	assert.Equal(t, id, sums[0].ID)
	assert.Equal(t, game.StatusLobby, sums[0].Status)
	assert.Equal(t, 1, sums[0].Players)
}

func TestUnknownRouteIsJSON404(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"not_found"`)
}

func TestRegistrySendDropsUnknownAndFullTargets(t *testing.T) {
	reg := NewRegistry()

	// Unknown socket: nothing to do, must not panic.
	reg.Send("ghost", session.Event{Type: session.EventError})

	c := &client{id: "s1", send: make(chan session.Event, 1)}
	reg.add(c)
	assert.Equal(t, 1, reg.Count())

	reg.Send("s1", session.Event{Type: "first"})
	reg.Send("s1", session.Event{Type: "second"}) // buffer full, dropped

	e := <-c.send
	assert.Equal(t, "first", e.Type)
	select {
	case e := <-c.send:
		t.Fatalf("expected the second event to be dropped, got %q", e.Type)
	default:
	}

	reg.remove("s1")
	assert.Zero(t, reg.Count())
	_, open := <-c.send
	assert.False(t, open, "unregister closes the send channel")

	reg.remove("s1") // removing twice is a no-op
	reg.Send("s1", session.Event{Type: "late"})
}

// Events arrive from timer goroutines while sockets disconnect; a Send
// racing the removal of the same client must drop the event, never hit
// the closed channel.
func TestRegistrySendRacingRemoveNeverPanics(t *testing.T) {
	for i := 0; i < 500; i++ {
		reg := NewRegistry()
		c := &client{id: "s1", send: make(chan session.Event, 1)}
		reg.add(c)

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				reg.Send("s1", session.Event{Type: session.EventGuessMade})
			}
		}()
		go func() {
			defer wg.Done()
			reg.remove("s1")
		}()
		wg.Wait()

		// Enqueues after shutdown are rejected, not delivered.
		assert.False(t, c.enqueue(session.Event{Type: "late"}))
	}
}

func TestCheckOriginHonorsClientOrigin(t *testing.T) {
	t.Setenv("CLIENT_ORIGIN", "https://play.example.com")

	cases := []struct {
		name   string
		origin string
		want   bool
	}{
		{"configured origin", "https://play.example.com", true},
		{"case-insensitive match", "HTTPS://PLAY.EXAMPLE.COM", true},
		{"no origin header", "", true},
		{"foreign origin", "https://evil.example.com", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/ws", nil)
			if tc.origin != "" {
				r.Header.Set("Origin", tc.origin)
			}
			assert.Equal(t, tc.want, checkOrigin(r))
		})
	}
}

func TestCheckOriginDefaultsToLocalDevClient(t *testing.T) {
	t.Setenv("CLIENT_ORIGIN", "")

	r := httptest.NewRequest(http.MethodGet, "/ws", nil)
	r.Header.Set("Origin", "http://localhost:5173")
	assert.True(t, checkOrigin(r))

	r.Header.Set("Origin", "http://localhost:9999")
	assert.False(t, checkOrigin(r))
}
