package web

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Ravikk-web/AURALIS-Ultra/internal/app"
	"github.com/Ravikk-web/AURALIS-Ultra/internal/audio"
	"github.com/Ravikk-web/AURALIS-Ultra/internal/params"
)

type fakeController struct {
	store   *params.Store
	source  string
	openErr error
	saved   int
}

func newFakeController() *fakeController {
	return &fakeController{store: params.NewStore(params.Defaults(), 1), source: "idle"}
}

func (f *fakeController) Status() app.Status {
	snap := f.store.Snapshot()
	return app.Status{Visualizer: snap.Visualizer, Source: f.source, Config: snap.Config}
}

func (f *fakeController) Store() *params.Store { return f.store }

func (f *fakeController) OpenSource(kind audio.SourceKind) error {
	if f.openErr != nil {
		return f.openErr
	}
	f.source = kind.String()
	return nil
}

func (f *fakeController) CloseSource() error {
	f.source = "idle"
	return nil
}

func (f *fakeController) SaveSettings() (string, error) {
	f.saved++
	return "/tmp/auralis.yaml", nil
}

func post(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func get(t *testing.T, h http.Handler, path string, v any) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("GET %s: %d", path, rec.Code)
	}
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
}

func TestCatalogEndpoints(t *testing.T) {
	s := NewServer(newFakeController(), nil)

	var vis []struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	}
	get(t, s.Handler(), "/api/visualizers", &vis)
	if len(vis) != 18 || vis[0].ID != 1 || vis[17].Name != "Block Matrix" {
		t.Fatalf("unexpected visualizers %+v", vis)
	}

	var pals []struct {
		ID       string   `json:"id"`
		Colors   []string `json:"colors"`
		Category string   `json:"category"`
	}
	get(t, s.Handler(), "/api/palettes", &pals)
	if len(pals) != 16 || pals[1].Category != "dynamic" || pals[0].Colors[0] != "#f0f" {
		t.Fatalf("unexpected palettes %+v", pals[:2])
	}
}

func TestUpdateTargetsSelectedVisualizer(t *testing.T) {
	ctrl := newFakeController()
	s := NewServer(ctrl, nil)

	rec := post(t, s.Handler(), "/api/update", `{"visualizer": 7, "settings": {"density": 128}, "palette": "rainbow"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update: %d %s", rec.Code, rec.Body)
	}
	var st app.Status
	if err := json.Unmarshal(rec.Body.Bytes(), &st); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if st.Visualizer != 7 || st.Config.Density != 128 || st.Config.Palette != "rainbow" {
		t.Fatalf("unexpected status %+v", st)
	}

	ctrl.store.SetVisualizer(1)
	if cfg := ctrl.store.Snapshot().Config; cfg.Density != params.DefaultDensity {
		t.Fatalf("visualizer 1 should keep its own density, got %d", cfg.Density)
	}
}

func TestUpdateUnknownVisualizerFallsBack(t *testing.T) {
	ctrl := newFakeController()
	s := NewServer(ctrl, nil)
	post(t, s.Handler(), "/api/update", `{"visualizer": 99}`)
	if got := ctrl.store.Snapshot().Visualizer; got != 1 {
		t.Fatalf("expected fallback to 1, got %d", got)
	}
}

func TestUpdateRejectsBadRequests(t *testing.T) {
	s := NewServer(newFakeController(), nil)
	if rec := post(t, s.Handler(), "/api/update", `{nope`); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad json: %d", rec.Code)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/update", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("GET update: %d", rec.Code)
	}
}

func TestSourceSwitching(t *testing.T) {
	ctrl := newFakeController()
	s := NewServer(ctrl, nil)

	if rec := post(t, s.Handler(), "/api/source", `{"source": "system"}`); rec.Code != http.StatusOK || ctrl.source != "system-output" {
		t.Fatalf("open system: %d %q", rec.Code, ctrl.source)
	}
	if rec := post(t, s.Handler(), "/api/source", `{"source": "none"}`); rec.Code != http.StatusOK || ctrl.source != "idle" {
		t.Fatalf("close: %d %q", rec.Code, ctrl.source)
	}
	if rec := post(t, s.Handler(), "/api/source", `{"source": "radio"}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown source: %d", rec.Code)
	}
}

func TestSourceErrorsMapToStatus(t *testing.T) {
	cases := []struct {
		err  error
		code int
		kind string
	}{
		{&audio.CaptureError{Kind: audio.ErrPermissionDenied, Source: audio.Microphone, Err: fmt.Errorf("denied")}, http.StatusForbidden, "permission-denied"},
		{&audio.CaptureError{Kind: audio.ErrUnsupportedSource, Source: audio.SystemOutput}, http.StatusNotImplemented, "unsupported-source"},
		{&audio.CaptureError{Kind: audio.ErrDeviceUnavailable, Source: audio.Microphone}, http.StatusServiceUnavailable, "device-unavailable"},
	}
	for _, c := range cases {
		ctrl := newFakeController()
		ctrl.openErr = c.err
		rec := post(t, NewServer(ctrl, nil).Handler(), "/api/source", `{"source": "mic"}`)
		var body errorResponse
		_ = json.Unmarshal(rec.Body.Bytes(), &body)
		if rec.Code != c.code || body.Kind != c.kind {
			t.Fatalf("%v: got %d %q", c.err, rec.Code, body.Kind)
		}
	}
}

func TestSave(t *testing.T) {
	ctrl := newFakeController()
	rec := post(t, NewServer(ctrl, nil).Handler(), "/api/save", ``)
	if rec.Code != http.StatusOK || ctrl.saved != 1 || !bytes.Contains(rec.Body.Bytes(), []byte("auralis.yaml")) {
		t.Fatalf("save: %d %s", rec.Code, rec.Body)
	}
}

func TestWebSocketStatusAndUpdates(t *testing.T) {
	ctrl := newFakeController()
	s := NewServer(ctrl, nil)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.broadcastLoop(ctx)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for s.clientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("client never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	if err := conn.WriteJSON(UpdateRequest{Visualizer: params.Ptr(12)}); err != nil {
		t.Fatalf("write: %v", err)
	}
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var st app.Status
	if err := conn.ReadJSON(&st); err != nil {
		t.Fatalf("read: %v", err)
	}
	if st.Visualizer != 12 {
		t.Fatalf("status visualizer = %d", st.Visualizer)
	}
}
