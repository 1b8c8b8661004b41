package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/cjeanneret/photobridge/gphoto"
	"github.com/cjeanneret/photobridge/native/simulator"
)

func newTestServer(t *testing.T) (*Server, *Handlers, string) {
	t.Helper()
	cam := gphoto.New(simulator.NewDefault())
	t.Cleanup(func() { cam.Close() })
	dir := t.TempDir()
	h := NewHandlers(cam, NewStatusBroadcaster(), dir, zerolog.Nop())
	return NewServer("127.0.0.1:0", h), h, dir
}

func TestHandleConfig(t *testing.T) {
	srv, _, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.Mux().ServeHTTP(rec, httptest.NewRequest("GET", "/config", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var entries []ConfigEntry
	if err := json.Unmarshal(rec.Body.Bytes(), &entries); err != nil {
		t.Fatal(err)
	}
	var target *ConfigEntry
	for i := range entries {
		if entries[i].Name == "capturetarget" {
			target = &entries[i]
		}
	}
	if target == nil {
		t.Fatal("capturetarget missing from config dump")
	}
	if target.Kind != "selection" || len(target.Choices) != 2 {
		t.Errorf("capturetarget entry = %+v", target)
	}
}

func TestHandleFiles(t *testing.T) {
	srv, _, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.Mux().ServeHTTP(rec, httptest.NewRequest("GET", "/files", nil))

	var entries []FileEntry
	if err := json.Unmarshal(rec.Body.Bytes(), &entries); err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("files = %+v", entries)
	}
	if !strings.HasSuffix(entries[0].Path, "IMG_0001.JPG") || entries[0].Size == 0 {
		t.Errorf("first entry = %+v", entries[0])
	}
}

func TestHandlePreview(t *testing.T) {
	srv, _, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.Mux().ServeHTTP(rec, httptest.NewRequest("GET", "/preview", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/jpeg" {
		t.Errorf("content type = %q", ct)
	}
	if rec.Body.Len() == 0 {
		t.Error("empty preview body")
	}
}

func TestHandleCapture_DownloadsFile(t *testing.T) {
	srv, h, dir := newTestServer(t)

	ch, unsub := h.Broadcaster.Subscribe()
	defer unsub()

	rec := httptest.NewRecorder()
	srv.Mux().ServeHTTP(rec, httptest.NewRequest("POST", "/capture", strings.NewReader(`{}`)))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	select {
	case msg := <-ch:
		if !strings.Contains(msg, "Downloaded") {
			t.Fatalf("broadcast = %q", msg)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no completion broadcast")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || filepath.Ext(entries[0].Name()) != ".jpg" {
		t.Fatalf("download dir = %v", entries)
	}
}

func TestHandleCapture_Conflict(t *testing.T) {
	srv, h, _ := newTestServer(t)
	h.running = true

	rec := httptest.NewRecorder()
	srv.Mux().ServeHTTP(rec, httptest.NewRequest("POST", "/capture", nil))
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
}

func TestHandleCapture_BadJSON(t *testing.T) {
	srv, _, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.Mux().ServeHTTP(rec, httptest.NewRequest("POST", "/capture", strings.NewReader("{not json")))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestMux_MethodRouting(t *testing.T) {
	srv, _, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Mux().ServeHTTP(rec, httptest.NewRequest("GET", "/capture", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET /capture = %d, want 405", rec.Code)
	}

	rec = httptest.NewRecorder()
	srv.Mux().ServeHTTP(rec, httptest.NewRequest("GET", "/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("GET /nope = %d, want 404", rec.Code)
	}
}
