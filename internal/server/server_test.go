package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/lattice/pkg/cache"
	"github.com/matzehuels/lattice/pkg/errors"
	"github.com/matzehuels/lattice/pkg/observability"
	"github.com/matzehuels/lattice/pkg/pipeline"
	"github.com/matzehuels/lattice/pkg/scene"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runner := pipeline.NewRunner(c, nil, nil)
	s := New(runner, Options{})
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		ts.Close()
		runner.Close()
	})
	return s, ts
}

func toolbarScene(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile("../../pkg/scene/testdata/toolbar.toml")
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func post(t *testing.T, ts *httptest.Server, path, contentType, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(ts.URL+path, contentType, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func get(t *testing.T, ts *httptest.Server, path string) *http.Response {
	t.Helper()
	resp, err := http.Get(ts.URL + path)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func TestHealth(t *testing.T) {
	_, ts := newTestServer(t)
	resp := get(t, ts, "/healthz")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	body := decode[map[string]any](t, resp)
	if body["status"] != "ok" {
		t.Errorf("status = %v, want ok", body["status"])
	}
}

func TestCreateAndGet(t *testing.T) {
	_, ts := newTestServer(t)

	resp := post(t, ts, "/scenes", "application/toml", toolbarScene(t))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("POST status = %d, want 201", resp.StatusCode)
	}
	c := decode[created](t, resp)
	if c.Scene != "toolbar" || c.Nodes != 5 || c.Frames != 4 {
		t.Errorf("created = %+v, want toolbar with 5 nodes and 4 frames", c)
	}
	if got := resp.Header.Get("Location"); got != "/scenes/"+c.ID {
		t.Errorf("Location = %q, want /scenes/%s", got, c.ID)
	}

	resp = get(t, ts, c.Location)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET status = %d, want 200", resp.StatusCode)
	}
	sess := decode[Session](t, resp)
	if sess.ID != c.ID || sess.Report == nil {
		t.Fatalf("session = %+v", sess)
	}
	if got := len(sess.Report.Frames); got != 4 {
		t.Errorf("frames = %d, want 4", got)
	}
	if n := sess.Report.Snapshot.Root.Find("button"); n == nil {
		t.Error("snapshot missing button")
	}

	// The same scene again hits the report cache but gets its own id.
	resp = post(t, ts, "/scenes", "application/toml", toolbarScene(t))
	again := decode[created](t, resp)
	if again.ID == c.ID {
		t.Error("second POST reused the session id")
	}
	if !again.Cached {
		t.Error("second POST should reuse the cached report")
	}
}

func TestCreateFormats(t *testing.T) {
	_, ts := newTestServer(t)

	sc, err := scene.Load("../../pkg/scene/testdata/toolbar.toml")
	if err != nil {
		t.Fatal(err)
	}
	var yaml, js strings.Builder
	if err := sc.Encode(&yaml, scene.FormatYAML); err != nil {
		t.Fatal(err)
	}
	if err := sc.Encode(&js, scene.FormatJSON); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name, path, contentType, body string
	}{
		{name: "yaml content type", path: "/scenes", contentType: "application/yaml", body: yaml.String()},
		{name: "json content type", path: "/scenes", contentType: "application/json; charset=utf-8", body: js.String()},
		{name: "format query", path: "/scenes?format=yaml", contentType: "application/octet-stream", body: yaml.String()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, ts, tt.path, tt.contentType, tt.body)
			if resp.StatusCode != http.StatusCreated {
				t.Fatalf("status = %d, want 201", resp.StatusCode)
			}
			if c := decode[created](t, resp); c.Frames != 4 {
				t.Errorf("frames = %d, want 4", c.Frames)
			}
		})
	}
}

func TestCreateErrors(t *testing.T) {
	_, ts := newTestServer(t)
	tests := []struct {
		name        string
		path        string
		contentType string
		body        string
		status      int
		code        errors.Code
	}{
		{name: "empty", path: "/scenes", contentType: "application/toml", body: "", status: 400, code: errors.ErrCodeInvalidInput},
		{name: "bad toml", path: "/scenes", contentType: "application/toml", body: "[root", status: 400, code: errors.ErrCodeInvalidScene},
		{name: "bad content type", path: "/scenes", contentType: "image/png", body: "x", status: 400, code: errors.ErrCodeInvalidFormat},
		{name: "bad format query", path: "/scenes?format=xml", contentType: "", body: "x", status: 400, code: errors.ErrCodeInvalidFormat},
		{
			name:        "missing node",
			path:        "/scenes",
			contentType: "application/toml",
			body:        "[root]\nname = \"a\"\n[[frames]]\nsteps = [{ op = \"content\", node = \"ghost\", content = { width = 1, height = 1 } }]\n",
			status:      422,
			code:        errors.ErrCodeNodeNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, ts, tt.path, tt.contentType, tt.body)
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			body := decode[errorBody](t, resp)
			if body.Error.Code != tt.code {
				t.Errorf("code = %s, want %s", body.Error.Code, tt.code)
			}
		})
	}
}

func TestCreateTooLarge(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	s := New(pipeline.NewRunner(c, nil, nil), Options{MaxSceneBytes: 16})
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	resp := post(t, ts, "/scenes", "application/toml", toolbarScene(t))
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestGetErrors(t *testing.T) {
	_, ts := newTestServer(t)
	tests := []struct {
		path   string
		status int
	}{
		{"/scenes/not-a-uuid", http.StatusBadRequest},
		{"/scenes/6f1c2a34-3f6e-4c55-9a55-5d3f0b8a9c11", http.StatusNotFound},
		{"/scenes/6f1c2a34-3f6e-4c55-9a55-5d3f0b8a9c11/dot", http.StatusNotFound},
		{"/nowhere", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if resp := get(t, ts, tt.path); resp.StatusCode != tt.status {
				t.Errorf("GET %s status = %d, want %d", tt.path, resp.StatusCode, tt.status)
			}
		})
	}
}

func TestDiagram(t *testing.T) {
	_, ts := newTestServer(t)
	c := decode[created](t, post(t, ts, "/scenes", "application/toml", toolbarScene(t)))

	resp := get(t, ts, c.Location+"/dot?geometry=1")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("dot status = %d, want 200", resp.StatusCode)
	}
	dot := readBody(t, resp)
	if !strings.HasPrefix(dot, "digraph G {") || !strings.Contains(dot, "52x16") {
		t.Errorf("dot = %q, want a digraph with the button size", dot)
	}

	resp = get(t, ts, c.Location+"/svg")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("svg status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("Content-Type = %q, want image/svg+xml", ct)
	}
	if !strings.Contains(readBody(t, resp), "<svg") {
		t.Error("svg body has no <svg element")
	}
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

func TestDelete(t *testing.T) {
	_, ts := newTestServer(t)
	c := decode[created](t, post(t, ts, "/scenes", "application/toml", toolbarScene(t)))

	req, _ := http.NewRequest(http.MethodDelete, ts.URL+c.Location, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("DELETE status = %d, want 204", resp.StatusCode)
	}
	if resp := get(t, ts, c.Location); resp.StatusCode != http.StatusNotFound {
		t.Errorf("GET after DELETE status = %d, want 404", resp.StatusCode)
	}
}

func TestStoreExpiry(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	st := NewStore(c, nil)
	ctx := context.Background()

	sess := NewSession(&scene.Report{Scene: "s"}, "h", time.Hour)
	sess.ExpiresAt = time.Now().Add(-time.Minute)
	// Write directly with no backend TTL so only the session check applies.
	data, _ := json.Marshal(sess)
	if err := c.Set(ctx, cache.NewDefaultKeyer().SessionKey(sess.ID), data, 0); err != nil {
		t.Fatal(err)
	}
	if _, err := st.Get(ctx, sess.ID); !errors.Is(err, errors.ErrCodeSceneNotFound) {
		t.Errorf("Get(expired) = %v, want %s", err, errors.ErrCodeSceneNotFound)
	}
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		code errors.Code
		want int
	}{
		{errors.ErrCodeInvalidScene, 400},
		{errors.ErrCodeSceneNotFound, 404},
		{errors.ErrCodeNotConverged, 422},
		{errors.ErrCodePlaceOrder, 422},
		{errors.ErrCodeTimeout, 504},
		{errors.ErrCodeCache, 503},
		{errors.ErrCodeInternal, 500},
	}
	for _, tt := range tests {
		if got := statusOf(tt.code); got != tt.want {
			t.Errorf("statusOf(%s) = %d, want %d", tt.code, got, tt.want)
		}
	}
}

type recordingHTTPHooks struct {
	observability.NoopHTTPHooks
	mu       sync.Mutex
	statuses []int
}

func (h *recordingHTTPHooks) OnResponse(_ context.Context, _, _ string, status int, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.statuses = append(h.statuses, status)
}

func TestHTTPHooks(t *testing.T) {
	h := &recordingHTTPHooks{}
	observability.SetHTTPHooks(h)
	defer observability.Reset()

	_, ts := newTestServer(t)
	get(t, ts, "/healthz")
	get(t, ts, "/scenes/not-a-uuid")

	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.statuses) != 2 || h.statuses[0] != 200 || h.statuses[1] != 400 {
		t.Errorf("statuses = %v, want [200 400]", h.statuses)
	}
}
