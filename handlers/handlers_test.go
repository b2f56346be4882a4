package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"dream-league-engine/metrics"
	"dream-league-engine/middleware"
	"dream-league-engine/services"
	"dream-league-engine/storage"
	"dream-league-engine/utils"

	"github.com/gofiber/fiber/v2"
)

type fakeStore struct {
	keys []string
}

func (f *fakeStore) PutObject(_ context.Context, key, _ string, _ []byte) (string, error) {
	f.keys = append(f.keys, key)
	return "https://cdn.test/" + key, nil
}

func newTestApp(t *testing.T, store utils.ObjectStore) *fiber.App {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := storage.Open(storage.DriverSQLite, "file:"+name+"?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := storage.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	rec := metrics.NewRecorder()
	app := fiber.New()
	app.Use(middleware.RequestMetrics(rec))
	app.Use(middleware.UserContextMiddleware())
	SetupRoutes(app, Deps{
		Athletes:    services.NewAthleteService(db, rec),
		Teams:       services.NewTeamService(db, rec, false),
		Tournaments: services.NewTournamentService(db, rec),
		Creators:    services.NewCreatorService(db, rec),
		Store:       store,
		Metrics:     rec,
	})
	return app
}

type caller struct {
	id    string
	roles string
}

func call(t *testing.T, app *fiber.App, who caller, method, path string, body any) (int, map[string]any) {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	return send(t, app, who, req)
}

func send(t *testing.T, app *fiber.App, who caller, req *http.Request) (int, map[string]any) {
	t.Helper()
	if who.id != "" {
		req.Header.Set("X-User-ID", who.id)
	}
	if who.roles != "" {
		req.Header.Set("X-User-Roles", who.roles)
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	out := map[string]any{}
	raw, _ := io.ReadAll(resp.Body)
	_ = json.Unmarshal(raw, &out)
	return resp.StatusCode, out
}

func listLen(v any) int {
	list, _ := v.([]any)
	return len(list)
}

var (
	alice = caller{id: "alice"}
	bob   = caller{id: "bob"}
	admin = caller{id: "ops", roles: "admin"}
)

func TestHealthAndMetrics(t *testing.T) {
	app := newTestApp(t, nil)

	if status, body := call(t, app, caller{}, http.MethodGet, "/healthz", nil); status != http.StatusOK || body["status"] != "ok" {
		t.Fatalf("healthz = %d %v", status, body)
	}

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}
	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(raw), "dream_league_http_requests_total") {
		t.Fatalf("metrics = %d, missing request counter", resp.StatusCode)
	}
}

func TestAthleteRoutes(t *testing.T) {
	app := newTestApp(t, nil)

	if status, _ := call(t, app, caller{}, http.MethodPost, "/athletes", map[string]any{"name": "Ace"}); status != http.StatusUnauthorized {
		t.Fatalf("anonymous create = %d, want 401", status)
	}

	status, created := call(t, app, alice, http.MethodPost, "/athletes", map[string]any{
		"name": "Ace", "position": "entry", "game_specific_data": map[string]any{"main": "jett"},
	})
	if status != http.StatusCreated {
		t.Fatalf("create = %d %v", status, created)
	}
	id := created["id"].(string)
	if created["owner_id"] != "alice" || created["rarity"] == "" {
		t.Fatalf("unexpected athlete: %v", created)
	}

	if status, got := call(t, app, caller{}, http.MethodGet, "/athletes/"+id, nil); status != http.StatusOK || got["name"] != "Ace" {
		t.Fatalf("get = %d %v", status, got)
	}
	if status, got := call(t, app, caller{}, http.MethodGet, "/athletes/missing", nil); status != http.StatusNotFound || got["code"] != "NotFound" {
		t.Fatalf("get missing = %d %v", status, got)
	}

	if status, got := call(t, app, alice, http.MethodPost, "/athletes/"+id+"/train", map[string]any{"training_type": "cardio", "intensity": 50}); status != http.StatusBadRequest || got["code"] != "InvalidParameters" {
		t.Fatalf("bad training = %d %v", status, got)
	}
	if status, got := call(t, app, bob, http.MethodPost, "/athletes/"+id+"/train", map[string]any{"training_type": "mechanical", "intensity": 50}); status != http.StatusForbidden || got["code"] != "Unauthorized" {
		t.Fatalf("foreign training = %d %v", status, got)
	}
	if status, _ := call(t, app, alice, http.MethodPost, "/athletes/"+id+"/train", map[string]any{"training_type": "mechanical", "intensity": 50}); status != http.StatusOK {
		t.Fatalf("train = %d", status)
	}

	status, got := call(t, app, alice, http.MethodPost, "/athletes/"+id+"/matches", map[string]any{
		"match_id": "m1", "win": true, "mvp": true, "exp_gained": 120, "attribute_deltas": []int{1, 0, 0, 0, -1}, "form_delta": 3,
	})
	if status != http.StatusOK || got["matches_played"] != float64(1) || got["mvp_count"] != float64(1) {
		t.Fatalf("record match = %d %v", status, got)
	}

	if status, _ := call(t, app, alice, http.MethodPost, "/athletes/"+id+"/abilities", map[string]any{"name": "Lurker", "value": 10}); status != http.StatusOK {
		t.Fatalf("grant = %d", status)
	}
	if status, got := call(t, app, alice, http.MethodPost, "/athletes/"+id+"/abilities", map[string]any{"name": "Lurker", "value": 10}); status != http.StatusConflict || got["code"] != "DuplicateAbility" {
		t.Fatalf("duplicate grant = %d %v", status, got)
	}
}

func TestAthleteDuplicateCollectible(t *testing.T) {
	app := newTestApp(t, nil)

	if status, _ := call(t, app, alice, http.MethodPost, "/athletes", map[string]any{"name": "Ace", "collectible_id": "nft-1"}); status != http.StatusCreated {
		t.Fatalf("first create = %d", status)
	}
	status, got := call(t, app, bob, http.MethodPost, "/athletes", map[string]any{"name": "Copy", "collectible_id": "nft-1"})
	if status != http.StatusConflict || got["code"] != "AlreadyExists" {
		t.Fatalf("duplicate collectible = %d %v", status, got)
	}
}

func TestAthleteMetadataUpload(t *testing.T) {
	store := &fakeStore{}
	app := newTestApp(t, store)

	_, created := call(t, app, alice, http.MethodPost, "/athletes", map[string]any{"name": "Ace"})
	id := created["id"].(string)

	req := httptest.NewRequest(http.MethodPost, "/athletes/"+id+"/metadata", strings.NewReader("not json"))
	if status, _ := send(t, app, alice, req); status != http.StatusBadRequest {
		t.Fatalf("invalid metadata = %d, want 400", status)
	}

	req = httptest.NewRequest(http.MethodPost, "/athletes/"+id+"/metadata", strings.NewReader(`{"image":"x.png"}`))
	if status, _ := send(t, app, bob, req); status != http.StatusForbidden {
		t.Fatalf("foreign metadata = %d, want 403", status)
	}

	req = httptest.NewRequest(http.MethodPost, "/athletes/"+id+"/metadata", strings.NewReader(`{"image":"x.png"}`))
	status, got := send(t, app, alice, req)
	if status != http.StatusOK {
		t.Fatalf("metadata = %d %v", status, got)
	}
	if len(store.keys) != 1 || !strings.HasPrefix(store.keys[0], "athletes/metadata/ace-") {
		t.Fatalf("stored keys = %v", store.keys)
	}
	if got["uri"] != "https://cdn.test/"+store.keys[0] {
		t.Fatalf("uri = %v", got["uri"])
	}
}

func TestUploadsWithoutStore(t *testing.T) {
	app := newTestApp(t, nil)
	_, created := call(t, app, alice, http.MethodPost, "/athletes", map[string]any{"name": "Ace"})

	req := httptest.NewRequest(http.MethodPost, "/athletes/"+created["id"].(string)+"/metadata", strings.NewReader(`{}`))
	if status, _ := send(t, app, alice, req); status != http.StatusServiceUnavailable {
		t.Fatalf("metadata without store = %d, want 503", status)
	}
}

func TestTeamRoutes(t *testing.T) {
	store := &fakeStore{}
	app := newTestApp(t, store)

	_, team := call(t, app, alice, http.MethodPost, "/teams", map[string]any{"name": "Night Owls"})
	teamID := team["id"].(string)
	if team["slug"] != "night-owls" {
		t.Fatalf("slug = %v", team["slug"])
	}
	if status, got := call(t, app, alice, http.MethodPost, "/teams", map[string]any{"name": "Night Owls"}); status != http.StatusConflict || got["code"] != "AlreadyExists" {
		t.Fatalf("duplicate team = %d %v", status, got)
	}

	_, a1 := call(t, app, alice, http.MethodPost, "/athletes", map[string]any{"name": "One"})
	_, a2 := call(t, app, alice, http.MethodPost, "/athletes", map[string]any{"name": "Two"})

	status, got := call(t, app, alice, http.MethodPost, "/teams/"+teamID+"/roster", map[string]any{"athlete_id": a1["id"], "position": "igl"})
	if status != http.StatusOK || listLen(got["roster"]) != 1 {
		t.Fatalf("add = %d %v", status, got)
	}
	if status, got := call(t, app, alice, http.MethodPost, "/teams/"+teamID+"/roster", map[string]any{"athlete_id": a2["id"], "position": "igl"}); status != http.StatusConflict || got["code"] != "PositionFilled" {
		t.Fatalf("filled position = %d %v", status, got)
	}

	if status, got := call(t, app, caller{}, http.MethodGet, "/teams/"+teamID+"/performance", nil); status != http.StatusOK || got["synergy"] != float64(60) {
		t.Fatalf("performance = %d %v", status, got)
	}

	if status, got := call(t, app, alice, http.MethodPost, "/teams/"+teamID+"/matches", map[string]any{"match_id": "scrim-1", "opponent_id": "rivals", "win": true, "score": []int{2, 1}}); status != http.StatusOK {
		t.Fatalf("friendly = %d %v", status, got)
	}

	if status, got := call(t, app, alice, http.MethodDelete, "/teams/"+teamID+"/roster/"+a1["id"].(string), nil); status != http.StatusOK || listLen(got["roster"]) != 0 {
		t.Fatalf("remove = %d %v", status, got)
	}
	if status, got := call(t, app, alice, http.MethodDelete, "/teams/"+teamID+"/roster/"+a1["id"].(string), nil); status != http.StatusConflict || got["code"] != "NotOnTeam" {
		t.Fatalf("remove again = %d %v", status, got)
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, _ := mw.CreateFormFile("logo", "owl.png")
	fw.Write([]byte("\x89PNG"))
	mw.Close()
	req := httptest.NewRequest(http.MethodPost, "/teams/"+teamID+"/logo", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	status, got = send(t, app, alice, req)
	if status != http.StatusOK {
		t.Fatalf("logo = %d %v", status, got)
	}
	if len(store.keys) != 1 || !strings.HasPrefix(store.keys[0], "teams/logos/night-owls-") || !strings.HasSuffix(store.keys[0], ".png") {
		t.Fatalf("stored keys = %v", store.keys)
	}
	if got["logo_uri"] != "https://cdn.test/"+store.keys[0] {
		t.Fatalf("logo_uri = %v", got["logo_uri"])
	}
}

func TestTournamentRoutes(t *testing.T) {
	app := newTestApp(t, nil)

	_, teamA := call(t, app, alice, http.MethodPost, "/teams", map[string]any{"name": "Alpha"})
	_, teamB := call(t, app, bob, http.MethodPost, "/teams", map[string]any{"name": "Bravo"})

	status, tour := call(t, app, admin, http.MethodPost, "/tournaments", map[string]any{
		"name": "Spring Cup", "entry_fee": 100, "start_time": time.Now().Add(time.Hour).Unix(), "max_teams": 2,
	})
	if status != http.StatusCreated {
		t.Fatalf("create = %d %v", status, tour)
	}
	tourID := tour["id"].(string)

	if status, got := call(t, app, alice, http.MethodPost, "/tournaments", map[string]any{"name": "Bad", "start_time": 1, "max_teams": 2}); status != http.StatusBadRequest || got["code"] != "InvalidParameters" {
		t.Fatalf("past start = %d %v", status, got)
	}

	if status, _ := call(t, app, bob, http.MethodPost, "/tournaments/"+tourID+"/register", map[string]any{"team_id": teamA["id"]}); status != http.StatusForbidden {
		t.Fatalf("register foreign team = %d, want 403", status)
	}
	call(t, app, alice, http.MethodPost, "/tournaments/"+tourID+"/register", map[string]any{"team_id": teamA["id"]})
	status, got := call(t, app, bob, http.MethodPost, "/tournaments/"+tourID+"/register", map[string]any{"team_id": teamB["id"]})
	if status != http.StatusOK || got["status"] != "in_progress" || got["prize_pool"] != float64(200) {
		t.Fatalf("register = %d %v", status, got)
	}

	outcome := map[string]any{"match_id": "R1_M1", "winner_id": teamB["id"], "loser_id": teamA["id"], "score": []int{2, 0}}
	if status, _ := call(t, app, alice, http.MethodPost, "/tournaments/"+tourID+"/results", outcome); status != http.StatusForbidden {
		t.Fatalf("result by non-authority = %d, want 403", status)
	}
	status, got = call(t, app, admin, http.MethodPost, "/tournaments/"+tourID+"/results", outcome)
	if status != http.StatusOK || got["status"] != "completed" {
		t.Fatalf("result = %d %v", status, got)
	}
	if status, got := call(t, app, admin, http.MethodPost, "/tournaments/"+tourID+"/results", outcome); status != http.StatusConflict || got["code"] != "WrongStatus" {
		t.Fatalf("result after completion = %d %v", status, got)
	}

	_, champ := call(t, app, caller{}, http.MethodGet, "/teams/"+teamB["id"].(string), nil)
	stats := champ["statistics"].(map[string]any)
	if stats["tournament_wins"] != float64(1) || stats["wins"] != float64(1) {
		t.Fatalf("champion stats = %v", stats)
	}
}

func TestTournamentCancelRequiresAdmin(t *testing.T) {
	app := newTestApp(t, nil)

	_, tour := call(t, app, alice, http.MethodPost, "/tournaments", map[string]any{
		"name": "Weekly", "start_time": time.Now().Add(time.Hour).Unix(), "max_teams": 4,
	})
	path := "/admin/tournaments/" + tour["id"].(string) + "/cancel"

	if status, _ := call(t, app, alice, http.MethodPost, path, nil); status != http.StatusForbidden {
		t.Fatalf("cancel without role = %d, want 403", status)
	}
	if status, got := call(t, app, admin, http.MethodPost, path, nil); status != http.StatusOK || got["status"] != "canceled" {
		t.Fatalf("cancel = %d %v", status, got)
	}
	if status, got := call(t, app, admin, http.MethodPost, path, nil); status != http.StatusConflict || got["code"] != "WrongStatus" {
		t.Fatalf("cancel twice = %d %v", status, got)
	}
}

func TestCreatorRoutes(t *testing.T) {
	app := newTestApp(t, nil)

	if status, got := call(t, app, alice, http.MethodPost, "/creators", map[string]any{"name": "Studio", "fee_basis_points": 1001}); status != http.StatusBadRequest || got["code"] != "InvalidFeeBasisPoints" {
		t.Fatalf("bad fee = %d %v", status, got)
	}
	status, cr := call(t, app, alice, http.MethodPost, "/creators", map[string]any{"name": "Studio", "fee_basis_points": 250})
	if status != http.StatusCreated || cr["verified"] != false {
		t.Fatalf("register = %d %v", status, cr)
	}
	creatorID := cr["id"].(string)

	mint := map[string]any{"name": "Legend", "collection_id": "genesis", "predefined_stats": map[string]any{
		"mechanical": 95, "game_knowledge": 90, "team_communication": 88, "adaptability": 92, "consistency": 91, "potential": 97, "form": 80,
	}}
	if status, got := call(t, app, alice, http.MethodPost, "/creators/"+creatorID+"/athletes", mint); status != http.StatusConflict || got["code"] != "CreatorNotVerified" {
		t.Fatalf("mint unverified = %d %v", status, got)
	}

	if status, _ := call(t, app, alice, http.MethodPost, "/admin/creators/"+creatorID+"/verify", nil); status != http.StatusForbidden {
		t.Fatalf("self verify = %d, want 403", status)
	}
	if status, got := call(t, app, admin, http.MethodPost, "/admin/creators/"+creatorID+"/verify", nil); status != http.StatusOK || got["verified"] != true {
		t.Fatalf("verify = %d %v", status, got)
	}

	if status, _ := call(t, app, bob, http.MethodPost, "/creators/"+creatorID+"/athletes", mint); status != http.StatusForbidden {
		t.Fatalf("mint by stranger = %d, want 403", status)
	}
	status, a := call(t, app, alice, http.MethodPost, "/creators/"+creatorID+"/athletes", mint)
	if status != http.StatusCreated || a["is_exclusive"] != true || a["rarity"] != "legendary" || a["mechanical"] != float64(95) {
		t.Fatalf("mint = %d %v", status, a)
	}

	_, cr = call(t, app, caller{}, http.MethodGet, "/creators/"+creatorID, nil)
	if cr["total_athletes_created"] != float64(1) || listLen(cr["collections_created"]) != 1 {
		t.Fatalf("creator after mint = %v", cr)
	}
}
