package api

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/starford/slidesmith/internal/deckservice"
	"github.com/starford/slidesmith/internal/ident"
	"github.com/starford/slidesmith/internal/testutil"
)

// testEnv sets up a temp store, SQLite DB, service, and router for testing.
// An empty authToken means disabled mode.
func testEnv(t *testing.T, authToken string) (*deckservice.Service, http.Handler) {
	t.Helper()
	return testEnvWithSSE(t, authToken != "", authToken, nil)
}

func testEnvWithSSE(t *testing.T, authEnabled bool, token string, sseHandler http.Handler) (*deckservice.Service, http.Handler) {
	t.Helper()
	_, store := testutil.TestStore(t)
	db := testutil.TestDB(t)
	svc := deckservice.NewService(store, db,
		deckservice.WithIDSource(ident.Sequence()),
		deckservice.WithLogger(testutil.QuietLogger()),
	)
	return svc, NewRouter(svc, authEnabled, token, sseHandler)
}

func do(t *testing.T, router http.Handler, method, path string, body any, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		rd = bytes.NewReader(data)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func createDeck(t *testing.T, router http.Handler, id, text string) DeckDetail {
	t.Helper()
	w := do(t, router, http.MethodPost, "/decks", CreateDeckRequest{ID: id, Text: text})
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", w.Code, w.Body.String())
	}
	var d DeckDetail
	if err := json.Unmarshal(w.Body.Bytes(), &d); err != nil {
		t.Fatal(err)
	}
	return d
}

func TestCreateAndGetDeck(t *testing.T) {
	_, router := testEnv(t, "")
	created := createDeck(t, router, "q3", testutil.SampleText)
	if len(created.Deck.Slides) != 2 {
		t.Fatalf("slides = %d", len(created.Deck.Slides))
	}

	w := do(t, router, http.MethodGet, "/decks/q3", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}
	if etag := w.Header().Get("ETag"); etag != `"`+created.Checksum+`"` {
		t.Errorf("ETag = %s", etag)
	}
	if !strings.Contains(w.Body.String(), `"highlights":[{"label":"Net ROI","value":"340%"}]`) {
		t.Errorf("legacy highlights missing: %s", w.Body.String())
	}
}

func TestCreateDeck_Errors(t *testing.T) {
	_, router := testEnv(t, "")
	createDeck(t, router, "dup", "")

	if w := do(t, router, http.MethodPost, "/decks", CreateDeckRequest{ID: "dup"}); w.Code != http.StatusConflict {
		t.Errorf("duplicate create = %d, want 409", w.Code)
	}
	if w := do(t, router, http.MethodPost, "/decks", CreateDeckRequest{ID: "../evil"}); w.Code != http.StatusBadRequest {
		t.Errorf("bad id = %d, want 400", w.Code)
	}
	req := httptest.NewRequest(http.MethodPost, "/decks", strings.NewReader("{"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad json = %d, want 400", w.Code)
	}
}

func TestPutDeck_OptimisticLocking(t *testing.T) {
	_, router := testEnv(t, "")
	created := createDeck(t, router, "lock", testutil.SampleText)

	deck := created.Deck.Clone()
	deck.Slides[0].Title = "Year Two"
	w := do(t, router, http.MethodPut, "/decks/lock", deck, "If-Match", `"`+created.Checksum+`"`)
	if w.Code != http.StatusOK {
		t.Fatalf("update with correct checksum = %d, body = %s", w.Code, w.Body.String())
	}

	// Stale checksum → 409.
	w = do(t, router, http.MethodPut, "/decks/lock", deck, "If-Match", created.Checksum)
	if w.Code != http.StatusConflict {
		t.Errorf("stale update = %d, want 409", w.Code)
	}

	// Without If-Match → last write wins.
	w = do(t, router, http.MethodPut, "/decks/lock", deck)
	if w.Code != http.StatusOK {
		t.Errorf("update without If-Match = %d", w.Code)
	}

	deck.Slides[0].Type = "poster"
	if w = do(t, router, http.MethodPut, "/decks/lock", deck); w.Code != http.StatusBadRequest {
		t.Errorf("invalid slide type = %d, want 400", w.Code)
	}
	if w = do(t, router, http.MethodPut, "/decks/missing", created.Deck); w.Code != http.StatusNotFound {
		t.Errorf("missing deck = %d, want 404", w.Code)
	}
}

func TestDeleteDeck(t *testing.T) {
	_, router := testEnv(t, "")
	createDeck(t, router, "del", "")

	if w := do(t, router, http.MethodDelete, "/decks/del", nil); w.Code != http.StatusNoContent {
		t.Fatalf("delete = %d", w.Code)
	}
	if w := do(t, router, http.MethodGet, "/decks/del", nil); w.Code != http.StatusNotFound {
		t.Errorf("get after delete = %d, want 404", w.Code)
	}
	if w := do(t, router, http.MethodDelete, "/decks/del", nil); w.Code != http.StatusNotFound {
		t.Errorf("second delete = %d, want 404", w.Code)
	}
}

func TestListAndSearch(t *testing.T) {
	_, router := testEnv(t, "")
	createDeck(t, router, "a", testutil.SampleText)
	createDeck(t, router, "b", "")

	w := do(t, router, http.MethodGet, "/decks?sort=id&limit=1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list = %d", w.Code)
	}
	var list DeckListResponse
	_ = json.Unmarshal(w.Body.Bytes(), &list)
	if list.Total != 2 || len(list.Decks) != 1 || list.Decks[0].ID != "a" {
		t.Errorf("list = %+v", list)
	}
	if w = do(t, router, http.MethodGet, "/decks?sort=size", nil); w.Code != http.StatusBadRequest {
		t.Errorf("bad sort = %d, want 400", w.Code)
	}

	w = do(t, router, http.MethodGet, "/search?q=markets", nil)
	var res SearchResponse
	_ = json.Unmarshal(w.Body.Bytes(), &res)
	if len(res.Results) != 1 || res.Results[0].ID != "a" {
		t.Errorf("search = %+v", res)
	}
	if w = do(t, router, http.MethodGet, "/search", nil); w.Code != http.StatusBadRequest {
		t.Errorf("missing q = %d, want 400", w.Code)
	}
}

func TestSlideEditingRoutes(t *testing.T) {
	_, router := testEnv(t, "")
	created := createDeck(t, router, "deck", testutil.SampleText)
	first := created.Deck.Slides[0].ID

	w := do(t, router, http.MethodPost, "/decks/deck/slides", map[string]any{"slide": map[string]any{"title": "Intro"}, "position": 0})
	if w.Code != http.StatusCreated {
		t.Fatalf("add slide = %d, body = %s", w.Code, w.Body.String())
	}

	w = do(t, router, http.MethodPut, "/decks/deck/slides/"+first, map[string]any{"title": "Renamed"})
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"title":"Renamed"`) {
		t.Errorf("update slide = %d, body = %s", w.Code, w.Body.String())
	}

	if w = do(t, router, http.MethodPost, "/decks/deck/slides/"+first+"/duplicate", nil); w.Code != http.StatusCreated {
		t.Errorf("duplicate = %d", w.Code)
	}
	if w = do(t, router, http.MethodPost, "/decks/deck/slides/"+first+"/move", map[string]any{"to": 0}); w.Code != http.StatusOK {
		t.Errorf("move = %d, body = %s", w.Code, w.Body.String())
	}
	if w = do(t, router, http.MethodPost, "/decks/deck/slides/"+first+"/move", map[string]any{}); w.Code != http.StatusBadRequest {
		t.Errorf("move without to = %d, want 400", w.Code)
	}
	if w = do(t, router, http.MethodDelete, "/decks/deck/slides/ghost", nil); w.Code != http.StatusNotFound {
		t.Errorf("delete missing slide = %d, want 404", w.Code)
	}
	if w = do(t, router, http.MethodPut, "/decks/deck/theme", ThemeRequest{Theme: "neon"}); w.Code != http.StatusBadRequest {
		t.Errorf("unknown theme = %d, want 400", w.Code)
	}
	if w = do(t, router, http.MethodPut, "/decks/deck/theme", ThemeRequest{Theme: "pure-minimal"}); w.Code != http.StatusOK {
		t.Errorf("set theme = %d", w.Code)
	}
}

func TestReviewRoutes(t *testing.T) {
	_, router := testEnv(t, "")
	createDeck(t, router, "deck", testutil.SampleText)

	w := do(t, router, http.MethodGet, "/decks/deck/violations", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"count":1`) {
		t.Errorf("violations = %d %s", w.Code, w.Body.String())
	}

	if w = do(t, router, http.MethodPost, "/decks/deck/clean", nil); w.Code != http.StatusOK {
		t.Fatalf("clean = %d", w.Code)
	}
	w = do(t, router, http.MethodGet, "/decks/deck/violations", nil)
	if !strings.Contains(w.Body.String(), `"count":0`) {
		t.Errorf("violations after clean = %s", w.Body.String())
	}

	w = do(t, router, http.MethodGet, "/decks/deck/validation", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"valid":true`) {
		t.Errorf("validation = %d %s", w.Code, w.Body.String())
	}

	if w = do(t, router, http.MethodPost, "/decks/deck/approve", nil); w.Code != http.StatusCreated {
		t.Fatalf("approve = %d, body = %s", w.Code, w.Body.String())
	}
	w = do(t, router, http.MethodGet, "/decks/deck/drift", nil)
	if !strings.Contains(w.Body.String(), `"drifted":false`) {
		t.Errorf("drift = %s", w.Body.String())
	}
	w = do(t, router, http.MethodGet, "/decks/deck/snapshots", nil)
	if !strings.Contains(w.Body.String(), `"version":1`) {
		t.Errorf("snapshots = %s", w.Body.String())
	}

	w = do(t, router, http.MethodGet, "/decks/deck/export", nil)
	if w.Code != http.StatusOK || !strings.HasPrefix(w.Header().Get("Content-Type"), "text/plain") {
		t.Errorf("export = %d %s", w.Code, w.Header().Get("Content-Type"))
	}
	if !strings.Contains(w.Body.String(), "=== SLIDE ===") {
		t.Errorf("export body = %q", w.Body.String())
	}
	if w = do(t, router, http.MethodGet, "/decks/deck/export?format=pdf", nil); w.Code != http.StatusBadRequest {
		t.Errorf("bad format = %d, want 400", w.Code)
	}
}

func TestApprove_InvalidDeckListsErrors(t *testing.T) {
	_, router := testEnv(t, "")
	createDeck(t, router, "empty", "")

	w := do(t, router, http.MethodPost, "/decks/empty/approve", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("approve = %d, want 400", w.Code)
	}
	var body errResponse
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if len(body.Errors) != 1 || body.Errors[0] != "No slides found in content" {
		t.Errorf("errors = %+v", body)
	}
}

func TestDiagramRoutes(t *testing.T) {
	_, router := testEnv(t, "")
	created := createDeck(t, router, "deck", testutil.SampleText)
	slideID := created.Deck.Slides[0].ID

	if w := do(t, router, http.MethodPost, "/decks/deck/diagrams", map[string]any{"id": "wheel", "type": "flywheel", "spec": map[string]any{}}); w.Code != http.StatusCreated {
		t.Fatalf("add diagram = %d, body = %s", w.Code, w.Body.String())
	}
	visuals := map[string]any{"visuals": []map[string]any{{"kind": "diagram", "diagramId": "wheel", "placement": "left"}}}
	if w := do(t, router, http.MethodPut, "/decks/deck/slides/"+slideID, visuals); w.Code != http.StatusOK {
		t.Fatalf("attach = %d, body = %s", w.Code, w.Body.String())
	}

	w := do(t, router, http.MethodGet, "/decks/deck/diagrams/wheel/usage", nil)
	var usage UsageResponse
	_ = json.Unmarshal(w.Body.Bytes(), &usage)
	if len(usage.Slides) != 1 || usage.Slides[0] != slideID {
		t.Errorf("usage = %+v", usage)
	}

	if w = do(t, router, http.MethodDelete, "/decks/deck/diagrams/wheel", nil); w.Code != http.StatusConflict {
		t.Errorf("delete referenced = %d, want 409", w.Code)
	}
	if w = do(t, router, http.MethodDelete, "/decks/deck/diagrams/wheel?force=true", nil); w.Code != http.StatusOK {
		t.Errorf("forced delete = %d", w.Code)
	}
}

func TestThemesAndGenerate(t *testing.T) {
	_, router := testEnv(t, "")

	w := do(t, router, http.MethodGet, "/themes", nil)
	var themes ThemesResponse
	_ = json.Unmarshal(w.Body.Bytes(), &themes)
	if len(themes.Themes) != 3 || themes.Default != "mono-gradient-v1" {
		t.Errorf("themes = %+v", themes)
	}

	if w = do(t, router, http.MethodPost, "/generate", GenerateRequest{Description: "Retail"}); w.Code != http.StatusServiceUnavailable {
		t.Errorf("generate without provider = %d, want 503", w.Code)
	}
	if w = do(t, router, http.MethodPost, "/generate", GenerateRequest{}); w.Code != http.StatusBadRequest {
		t.Errorf("generate without description = %d, want 400", w.Code)
	}
}

// Auth middleware tests.

func TestAuthMiddleware_ValidToken(t *testing.T) {
	_, router := testEnv(t, "secret123")
	w := do(t, router, http.MethodGet, "/decks", nil, "Authorization", "Bearer secret123")
	if w.Code != http.StatusOK {
		t.Errorf("valid token = %d, want 200", w.Code)
	}
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	_, router := testEnv(t, "secret123")
	if w := do(t, router, http.MethodGet, "/decks", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("no token = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_WrongToken(t *testing.T) {
	_, router := testEnv(t, "secret123")
	if w := do(t, router, http.MethodGet, "/decks", nil, "Authorization", "Bearer wrong"); w.Code != http.StatusUnauthorized {
		t.Errorf("wrong token = %d, want 401", w.Code)
	}
}

// SSE endpoint auth tests.

// blockingSSE writes headers and blocks until the request context is done.
var blockingSSE = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.WriteHeader(http.StatusOK)
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
	<-r.Context().Done()
})

func TestSSEEvents_AuthProtected(t *testing.T) {
	_, router := testEnvWithSSE(t, true, "secret", blockingSSE)
	if w := do(t, router, http.MethodGet, "/events", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("SSE no auth = %d, want 401", w.Code)
	}
}

func TestSSEEvents_ValidToken(t *testing.T) {
	_, router := testEnvWithSSE(t, true, "tok", blockingSSE)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)
	req.Header.Set("Authorization", "Bearer tok")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code == http.StatusUnauthorized {
		t.Error("SSE with valid token should not 401")
	}
}

// Asset tests.

func uploadFile(t *testing.T, router http.Handler, field, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	if err != nil {
		t.Fatal(err)
	}
	_, _ = fw.Write(content)
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/assets", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestUploadAndServeAsset(t *testing.T) {
	_, router := testEnv(t, "")
	png, _ := base64.StdEncoding.DecodeString(testutil.PixelPNG)

	w := uploadFile(t, router, "file", "pixel.png", png)
	if w.Code != http.StatusCreated {
		t.Fatalf("upload = %d, body = %s", w.Code, w.Body.String())
	}
	var asset deckservice.Asset
	_ = json.Unmarshal(w.Body.Bytes(), &asset)
	if !strings.HasSuffix(asset.ID, ".png") || asset.Size != len(png) {
		t.Errorf("asset = %+v", asset)
	}

	w = do(t, router, http.MethodGet, "/assets/"+asset.ID, nil)
	if w.Code != http.StatusOK || w.Header().Get("Content-Type") != "image/png" {
		t.Fatalf("serve = %d %s", w.Code, w.Header().Get("Content-Type"))
	}
	if !bytes.Equal(w.Body.Bytes(), png) {
		t.Error("served bytes differ")
	}
}

func TestUploadAsset_Rejected(t *testing.T) {
	_, router := testEnv(t, "")

	if w := uploadFile(t, router, "file", "notes.png", []byte("plain text")); w.Code != http.StatusBadRequest {
		t.Errorf("mismatched content = %d, want 400", w.Code)
	}
	if w := uploadFile(t, router, "other", "x.png", []byte("x")); w.Code != http.StatusBadRequest {
		t.Errorf("missing file field = %d, want 400", w.Code)
	}
	if w := do(t, router, http.MethodGet, "/assets/missing.png", nil); w.Code != http.StatusNotFound {
		t.Errorf("missing asset = %d, want 404", w.Code)
	}
	if w := do(t, router, http.MethodGet, "/assets/..%2Fdeck.json", nil); w.Code == http.StatusOK {
		t.Error("traversal must not be served")
	}
}

func TestAuthMiddleware_QueryToken(t *testing.T) {
	_, router := testEnv(t, "secret123")
	if w := do(t, router, http.MethodGet, "/decks?access_token=secret123", nil); w.Code != http.StatusOK {
		t.Errorf("GET with query token = %d, want 200", w.Code)
	}
	w := do(t, router, http.MethodPost, "/decks?access_token=secret123", CreateDeckRequest{ID: "x"})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("POST with query token = %d, want 401", w.Code)
	}
	if w.Header().Get("WWW-Authenticate") == "" {
		t.Error("401 should carry a WWW-Authenticate challenge")
	}
}
