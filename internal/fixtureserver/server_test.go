package fixtureserver_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/raysh454/addrmeta/internal/dataset"
	"github.com/raysh454/addrmeta/internal/fetch"
	"github.com/raysh454/addrmeta/internal/fixture"
	"github.com/raysh454/addrmeta/internal/fixtureserver"
	"github.com/raysh454/addrmeta/internal/httpfetch"
	"github.com/raysh454/addrmeta/internal/testutil"
)

func newTestServer(t *testing.T) *fixtureserver.Server {
	t.Helper()

	ds, err := dataset.Embedded()
	if err != nil {
		t.Fatalf("Embedded: %v", err)
	}
	logger := &testutil.DummyLogger{}
	f, err := fixture.New(fetch.FixtureConfig{}, ds, logger)
	if err != nil {
		t.Fatalf("fixture.New: %v", err)
	}
	s, err := fixtureserver.New(fixtureserver.Config{ListenAddr: ":0", Logger: logger}, f)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func doGet(t *testing.T, s http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("decode JSON response: %v (body: %s)", err, rec.Body.String())
	}
}

// ─── Middleware ────────────────────────────────────────────────────────

func TestServer_CORS_HeaderPresent(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	rec := doGet(t, s, "/healthz")

	if origin := rec.Header().Get("Access-Control-Allow-Origin"); origin != "*" {
		t.Errorf("expected CORS origin *, got %q", origin)
	}
}

func TestServer_RequestID(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	rec := doGet(t, s, "/healthz")
	if rec.Header().Get(fixtureserver.RequestIDHeader) == "" {
		t.Error("expected a generated request id")
	}

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(fixtureserver.RequestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if got := rec.Header().Get(fixtureserver.RequestIDHeader); got != "abc-123" {
		t.Errorf("expected client request id echoed, got %q", got)
	}
}

func TestNew_NilFetcher(t *testing.T) {
	t.Parallel()
	if _, err := fixtureserver.New(fixtureserver.DefaultConfig(), nil); err == nil {
		t.Fatal("expected error for nil fetcher")
	}
}

// ─── Records ───────────────────────────────────────────────────────────

func TestServer_Health(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	rec := doGet(t, s, "/healthz")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body fixtureserver.HealthResponse
	decodeJSON(t, rec, &body)
	if body.Status != "ok" || body.Records == 0 {
		t.Errorf("unexpected health: %+v", body)
	}
}

func TestServer_PlainRecord(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	rec := doGet(t, s, "/plain/data/CH")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q", ct)
	}
	body := rec.Body.String()
	if !strings.HasPrefix(body, `{"id":"data/CH"`) || !strings.HasSuffix(body, `"}`) {
		t.Errorf("unexpected record: %s", body)
	}
}

func TestServer_AggregateRecord(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	rec := doGet(t, s, "/aggregate/data/US")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.HasPrefix(body, `{"data/US`) || !strings.HasSuffix(body, `"}}`) {
		t.Errorf("unexpected aggregate: %s", body)
	}
}

func TestServer_MissingKeysAnswerEmptyDictionary(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	for _, path := range []string{"/plain/junk", "/aggregate/junk", "/plain/", "/aggregate/"} {
		rec := doGet(t, s, path)
		if rec.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", path, rec.Code)
		}
		if rec.Body.String() != "{}" {
			t.Errorf("%s: expected {}, got %q", path, rec.Body.String())
		}
	}
}

// ─── Fetch ─────────────────────────────────────────────────────────────

func TestServer_Fetch(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	rec := doGet(t, s, "/fetch?url="+fetch.DefaultAggregateDataURL+"data/CH")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var frame fixtureserver.OutcomeFrame
	decodeJSON(t, rec, &frame)
	if !frame.Success || frame.URL != fetch.DefaultAggregateDataURL+"data/CH" {
		t.Errorf("unexpected frame: %+v", frame)
	}
	if !strings.HasPrefix(frame.Data, `{"data/CH`) {
		t.Errorf("unexpected data: %s", frame.Data)
	}
}

func TestServer_Fetch_Unroutable(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	rec := doGet(t, s, "/fetch?url=http://www.example.com/")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	var frame fixtureserver.OutcomeFrame
	decodeJSON(t, rec, &frame)
	if frame.Success || frame.Data != "" || frame.Error == "" {
		t.Errorf("unexpected frame: %+v", frame)
	}
	if frame.URL != "http://www.example.com/" {
		t.Errorf("url not echoed: %q", frame.URL)
	}
}

func TestServer_Fetch_MissingURL(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	rec := doGet(t, s, "/fetch")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

// ─── Enumeration ───────────────────────────────────────────────────────

func TestServer_KeysAndRegions(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	rec := doGet(t, s, "/keys")
	var keys fixtureserver.KeysResponse
	decodeJSON(t, rec, &keys)
	if len(keys.Keys) == 0 || keys.Keys[0] != "data" {
		t.Errorf("unexpected keys: %v", keys.Keys)
	}

	rec = doGet(t, s, "/regions")
	var regions fixtureserver.RegionsResponse
	decodeJSON(t, rec, &regions)
	found := false
	for _, r := range regions.Regions {
		if r == "CH" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected CH among regions: %v", regions.Regions)
	}
}

func TestServer_SwaggerDoc(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	rec := doGet(t, s, "/swagger/doc.json")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var doc map[string]any
	decodeJSON(t, rec, &doc)
	info, _ := doc["info"].(map[string]any)
	if info["title"] != "addrmeta fixture API" {
		t.Errorf("unexpected swagger info: %v", info)
	}
	paths, _ := doc["paths"].(map[string]any)
	if _, ok := paths["/fetch"]; !ok {
		t.Error("expected /fetch in swagger paths")
	}
}

// ─── WebSocket ─────────────────────────────────────────────────────────

func TestServer_FetchWS(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(newTestServer(t))
	t.Cleanup(srv.Close)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/fetch"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	urls := []string{
		fetch.DefaultDataURL + "data/CH",
		fetch.DefaultDataURL + "junk",
		"http://www.example.com/",
	}
	for _, u := range urls {
		if err := conn.WriteJSON(fixtureserver.FetchRequest{URL: u}); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	var frames []fixtureserver.OutcomeFrame
	for range urls {
		var f fixtureserver.OutcomeFrame
		if err := conn.ReadJSON(&f); err != nil {
			t.Fatalf("read: %v", err)
		}
		frames = append(frames, f)
	}

	for i, f := range frames {
		if f.URL != urls[i] {
			t.Errorf("frame %d: url %q, want %q", i, f.URL, urls[i])
		}
	}
	if !frames[0].Success || !strings.HasPrefix(frames[0].Data, `{"id":"data/CH"`) {
		t.Errorf("unexpected first frame: %+v", frames[0])
	}
	if !frames[1].Success || frames[1].Data != "{}" {
		t.Errorf("unexpected second frame: %+v", frames[1])
	}
	if frames[2].Success || frames[2].Data != "" {
		t.Errorf("unexpected third frame: %+v", frames[2])
	}
}

func TestServer_FetchWS_InvalidFrame(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(newTestServer(t))
	t.Cleanup(srv.Close)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/fetch"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	if err := conn.WriteMessage(websocket.TextMessage, []byte("{invalid")); err != nil {
		t.Fatalf("write: %v", err)
	}
	var f fixtureserver.OutcomeFrame
	if err := conn.ReadJSON(&f); err != nil {
		t.Fatalf("read: %v", err)
	}
	if f.Success || f.Error == "" {
		t.Errorf("expected error frame, got %+v", f)
	}
}

// ─── Network round trip ────────────────────────────────────────────────

func TestServer_HTTPFetcherRoundTrip(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(newTestServer(t))
	t.Cleanup(srv.Close)

	hf := httpfetch.New(fetch.DefaultConfig().HTTP, &testutil.DummyLogger{}, srv.Client())

	o := fetch.Resolve(context.Background(), hf, srv.URL+"/aggregate/data/CH")
	if !o.Success {
		t.Fatalf("expected success, got %v", o.Err)
	}
	if !strings.HasPrefix(string(o.Data), `{"data/CH`) || !strings.HasSuffix(string(o.Data), `"}}`) {
		t.Errorf("unexpected body: %s", o.Data)
	}

	o = fetch.Resolve(context.Background(), hf, srv.URL+"/plain/junk")
	if !o.Success || string(o.Data) != "{}" {
		t.Errorf("expected {} for missing key, got %+v", o)
	}
}
