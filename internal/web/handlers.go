package web

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/cjeanneret/photobridge/gphoto"
)

// CaptureRequest holds the parameters of a POST /capture call.
type CaptureRequest struct {
	// Keep shoots to the memory card and leaves the file on the camera;
	// otherwise the frame is downloaded into the download directory.
	Keep bool `json:"keep"`
}

// ConfigEntry is the JSON shape of one configuration entry.
type ConfigEntry struct {
	Name     string   `json:"name"`
	Label    string   `json:"label"`
	Kind     string   `json:"kind"`
	Value    any      `json:"value"`
	ReadOnly bool     `json:"read_only,omitempty"`
	Choices  []string `json:"choices,omitempty"`
}

// FileEntry is the JSON shape of one remote file.
type FileEntry struct {
	Path string `json:"path"`
	Size uint64 `json:"size,omitempty"`
}

// Handlers holds dependencies for HTTP handlers.
type Handlers struct {
	Camera      *gphoto.Camera
	Broadcaster *StatusBroadcaster
	DownloadDir string
	Log         zerolog.Logger

	runningMu sync.Mutex
	running   bool
}

// NewHandlers creates handlers around one camera. A single capture runs at a
// time; concurrent POST /capture calls get 409.
func NewHandlers(cam *gphoto.Camera, broadcaster *StatusBroadcaster, downloadDir string, log zerolog.Logger) *Handlers {
	return &Handlers{
		Camera:      cam,
		Broadcaster: broadcaster,
		DownloadDir: downloadDir,
		Log:         log,
	}
}

// HandleConfig returns the camera configuration tree, flattened, as JSON.
func (h *Handlers) HandleConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.Camera.Config()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	var entries []ConfigEntry
	cfg.Walk(func(it *gphoto.Item) {
		e := ConfigEntry{
			Name:     it.Name(),
			Label:    it.Label(),
			Kind:     it.Kind().String(),
			ReadOnly: it.Readonly(),
			Choices:  it.Choices(),
		}
		// *bool flattens to true/false/null in JSON.
		if b, ok := it.Value().(*bool); ok {
			if b != nil {
				e.Value = *b
			}
		} else {
			e.Value = it.Value()
		}
		entries = append(entries, e)
	})
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(entries)
}

// HandleFiles returns every file on the camera as JSON.
func (h *Handlers) HandleFiles(w http.ResponseWriter, r *http.Request) {
	files, err := h.Camera.ListAllFiles()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	entries := make([]FileEntry, 0, len(files))
	for _, f := range files {
		e := FileEntry{Path: f.Path()}
		if info, err := f.Info(); err == nil {
			e.Size = info.Size
		}
		entries = append(entries, e)
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(entries)
}

// HandlePreview returns one live-view frame as JPEG.
func (h *Handlers) HandlePreview(w http.ResponseWriter, r *http.Request) {
	data, err := h.Camera.Preview()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	w.Header().Set("Content-Type", "image/jpeg")
	w.Write(data)
}

// HandleCapture handles POST /capture to shoot one frame.
func (h *Handlers) HandleCapture(w http.ResponseWriter, r *http.Request) {
	var req CaptureRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid JSON", http.StatusBadRequest)
			return
		}
	}

	h.runningMu.Lock()
	if h.running {
		h.runningMu.Unlock()
		http.Error(w, "capture already in progress", http.StatusConflict)
		return
	}
	h.running = true
	h.runningMu.Unlock()

	// Run in goroutine; clear running when done
	go func() {
		defer func() {
			h.runningMu.Lock()
			h.running = false
			h.runningMu.Unlock()
		}()
		if err := h.runCapture(context.Background(), req); err != nil {
			h.Broadcaster.Broadcast("error", "Capture failed: "+err.Error())
			h.Log.Error().Err(err).Msg("capture failed")
		}
	}()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]string{"status": "started"})
}

func (h *Handlers) runCapture(ctx context.Context, req CaptureRequest) error {
	if req.Keep {
		f, err := h.Camera.CaptureToStorage(ctx)
		if err != nil {
			return err
		}
		h.Broadcaster.BroadcastMsg("Captured to " + f.Path())
		return nil
	}
	data, err := h.Camera.Capture(ctx)
	if err != nil {
		return err
	}
	name := time.Now().Format("20060102-150405") + ".jpg"
	path := filepath.Join(h.DownloadDir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	h.Broadcaster.BroadcastMsg("Downloaded " + path)
	return nil
}

// HandleStatusStream handles GET /status/stream for SSE.
func (h *Handlers) HandleStatusStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // nginx

	ch, unsub := h.Broadcaster.Subscribe()
	defer unsub()

	// Send initial comment to establish connection
	w.Write([]byte(": connected\n\n"))
	flusher.Flush()

	// Heartbeat while idle
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			w.Write([]byte("data: " + msg + "\n\n"))
			flusher.Flush()

		case <-ticker.C:
			w.Write([]byte(": heartbeat\n\n"))
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}
