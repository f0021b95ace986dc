package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hollowpine/greybarrow/internal/config"
	"github.com/hollowpine/greybarrow/internal/database"
	"github.com/hollowpine/greybarrow/internal/entity"
	"github.com/hollowpine/greybarrow/internal/faction"
	"github.com/hollowpine/greybarrow/internal/game"
	"github.com/hollowpine/greybarrow/internal/item"
	"github.com/hollowpine/greybarrow/internal/quest"
	"github.com/hollowpine/greybarrow/internal/rules"
	"github.com/hollowpine/greybarrow/internal/world"
)

// envelope mirrors the response JSON for assertions.
type envelope struct {
	OK       bool     `json:"ok"`
	Messages []string `json:"messages"`
	State    struct {
		Player struct {
			ID       string `json:"player_id"`
			Location string `json:"location"`
		} `json:"player"`
	} `json:"state"`
	Error string `json:"error"`
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	db, err := database.Open(filepath.Join(t.TempDir(), "game.db"))
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	worldCatalog := world.NewCatalog()
	worldCatalog.AddLocation(&world.Location{
		ID: "town_square", Name: "Town Square",
		Description: "A cobblestone plaza with a fountain. People bustle about.",
		Exits:       []world.Exit{{To: "tavern", Label: "tavern"}},
	})
	worldCatalog.AddLocation(&world.Location{
		ID: "tavern", Name: "The Sooty Lantern",
		Description: "Warm light and the smell of stew.",
		Exits:       []world.Exit{{To: "town_square", Label: "out"}},
	})

	entities := entity.NewRegistry()
	cfg := config.DefaultConfig()
	cfg.WebSocket.AllowedOrigins = []string{"*"}

	engine := game.NewEngine(cfg, db,
		worldCatalog, item.NewCatalog(), faction.NewCatalog(), quest.NewRegistry(),
		entities, rules.NewEngine(db, entities, nil))

	srv := httptest.NewServer(New(cfg, engine).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func postAction(t *testing.T, srv *httptest.Server, playerID, body string) *envelope {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, srv.URL+"/action", strings.NewReader(body))
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if playerID != "" {
		req.Header.Set("X-Player-ID", playerID)
	}
	return doRequest(t, req)
}

func postCommand(t *testing.T, srv *httptest.Server, playerID, text string) *envelope {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, srv.URL+"/command", strings.NewReader(text))
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if playerID != "" {
		req.Header.Set("X-Player-ID", playerID)
	}
	return doRequest(t, req)
}

func doRequest(t *testing.T, req *http.Request) *envelope {
	t.Helper()
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q", ct)
	}
	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return &env
}

func TestActionEndpoint(t *testing.T) {
	srv := newTestServer(t)

	env := postAction(t, srv, "", `{"action":"create_player","args":{"name":"Arlen"}}`)
	if !env.OK {
		t.Fatalf("create failed: %s", env.Error)
	}
	pid := env.State.Player.ID
	if pid == "" {
		t.Fatal("no player id in state")
	}

	env = postAction(t, srv, pid, `{"action":"look"}`)
	if !env.OK {
		t.Fatalf("look failed: %s", env.Error)
	}
	if env.Messages[0] != "You are at Town Square." {
		t.Errorf("message = %q", env.Messages[0])
	}
}

func TestActionEndpointErrors(t *testing.T) {
	srv := newTestServer(t)

	env := postAction(t, srv, "", `{"action":"look"}`)
	if env.OK || env.Error != "Missing player_id (x-player-id header)." {
		t.Errorf("missing id: ok=%v error=%q", env.OK, env.Error)
	}

	env = postAction(t, srv, "ghost", `{"action":"look"}`)
	if env.OK || env.Error != "Unknown player_id." {
		t.Errorf("unknown id: ok=%v error=%q", env.OK, env.Error)
	}

	env = postAction(t, srv, "ghost", `not json`)
	if env.OK || env.Error != "Invalid action payload." {
		t.Errorf("bad payload: ok=%v error=%q", env.OK, env.Error)
	}
}

func TestCommandEndpoint(t *testing.T) {
	srv := newTestServer(t)

	env := postCommand(t, srv, "", "create Arlen")
	if !env.OK {
		t.Fatalf("create failed: %s", env.Error)
	}
	pid := env.State.Player.ID

	env = postCommand(t, srv, pid, "go tavern")
	if !env.OK {
		t.Fatalf("move failed: %s", env.Error)
	}
	if env.State.Player.Location != "tavern" {
		t.Errorf("location = %s, want tavern", env.State.Player.Location)
	}

	env = postCommand(t, srv, pid, "frobnicate")
	if env.OK || env.Error != "Unknown command: frobnicate" {
		t.Errorf("unknown command: ok=%v error=%q", env.OK, env.Error)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/action")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", resp.StatusCode)
	}
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
}
