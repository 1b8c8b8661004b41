package gphoto

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cjeanneret/photobridge/native"
	"github.com/cjeanneret/photobridge/native/simulator"
)

func TestLazyInitAndClose(t *testing.T) {
	sim := simulator.NewDefault()
	cam := New(sim)

	if got := sim.Calls("gp_camera_init"); got != 0 {
		t.Fatalf("camera connected before first use: %d init calls", got)
	}
	if _, err := cam.Model(); err != nil {
		t.Fatal(err)
	}
	if got := sim.Calls("gp_camera_init"); got != 1 {
		t.Errorf("init calls = %d, want 1", got)
	}

	// Repeated use does not reconnect.
	if _, err := cam.Abilities(); err != nil {
		t.Fatal(err)
	}
	if got := sim.Calls("gp_camera_init"); got != 1 {
		t.Errorf("second use reconnected: %d init calls", got)
	}

	if err := cam.Close(); err != nil {
		t.Fatal(err)
	}
	if err := cam.Close(); err != nil {
		t.Errorf("second close: %v", err)
	}
	if sim.Calls("gp_camera_exit") != 1 || sim.Calls("gp_camera_unref") != 1 {
		t.Error("close did not release the native handle exactly once")
	}
	if _, err := cam.Model(); err == nil {
		t.Error("use after close accepted")
	}
}

func TestCaptureDownloadsAndCleansUp(t *testing.T) {
	sim := simulator.NewDefault()
	cam := New(sim)
	defer cam.Close()

	data, err := cam.Capture(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte{0xff, 0xd8}) {
		t.Errorf("capture returned non-JPEG bytes %x", data[:2])
	}

	if got := sim.Calls("gp_camera_trigger_capture"); got != 1 {
		t.Errorf("trigger calls = %d, want 1", got)
	}
	if got := sim.Calls("gp_camera_file_get"); got != 1 {
		t.Errorf("download calls = %d, want 1", got)
	}
	if got := sim.Calls("gp_camera_file_delete"); got != 1 {
		t.Errorf("delete calls = %d, want 1", got)
	}
	// The default device already points at RAM; no write needed.
	if got := sim.Calls("gp_widget_set_value"); got != 0 {
		t.Errorf("capture target rewritten %d times for a matching target", got)
	}

	// The transient file must be gone from the camera.
	files, err := cam.ListAllFiles()
	if err != nil {
		t.Fatal(err)
	}
	for _, f := range files {
		if strings.HasPrefix(f.Name(), "capt") {
			t.Errorf("transient capture file %s left on camera", f.Path())
		}
	}
}

func TestCaptureToStorageSwitchesTargetOnce(t *testing.T) {
	sim := simulator.NewDefault()
	cam := New(sim)
	defer cam.Close()

	f, err := cam.CaptureToStorage(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if f.Folder() != sim.CaptureFolder || f.Name() == "" {
		t.Errorf("stored file = %s", f.Path())
	}

	// Exactly one native write: the capturetarget selection.
	if got := sim.Calls("gp_widget_set_value"); got != 1 {
		t.Errorf("set_value calls = %d, want 1", got)
	}
	if got := len(sim.CommitTargets()); got != 1 {
		t.Errorf("commits = %d, want 1", got)
	}
	if got := sim.Calls("gp_camera_file_get"); got != 0 {
		t.Errorf("capture-to-storage downloaded the file (%d gets)", got)
	}
	if got := sim.Calls("gp_camera_file_delete"); got != 0 {
		t.Errorf("capture-to-storage deleted the file (%d deletes)", got)
	}

	// The file must exist on the camera.
	if _, err := f.Info(); err != nil {
		t.Errorf("stored file not found: %v", err)
	}

	// A second capture finds the target already set.
	if _, err := cam.CaptureToStorage(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := sim.Calls("gp_widget_set_value"); got != 1 {
		t.Errorf("second capture rewrote the target (%d writes)", got)
	}
}

func TestCaptureToleratesLostTransientFile(t *testing.T) {
	sim := simulator.NewDefault()
	cam := New(sim)
	defer cam.Close()

	// Some cameras drop the RAM file on their own after the download.
	sim.FailWith("gp_camera_file_delete", native.ErrFileNotFound)
	if _, err := cam.Capture(context.Background()); err != nil {
		t.Fatalf("capture failed on a benign delete error: %v", err)
	}

	// A real failure still surfaces.
	sim.FailWith("gp_camera_file_delete", native.ErrCameraBusy)
	if _, err := cam.Capture(context.Background()); err == nil {
		t.Error("busy camera on delete went unnoticed")
	}
}

func TestCaptureWaitSkipsIntermediateEvents(t *testing.T) {
	sim := simulator.NewDefault()
	cam := New(sim)
	defer cam.Close()

	// Queue noise ahead of the trigger; the wait loop must work through
	// timeouts and completion events until the file shows up.
	sim.PushEvent(native.Event{Type: native.EventTimeout})
	sim.PushEvent(native.Event{Type: native.EventCaptureComplete})

	f, err := cam.CaptureToStorage(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if f.Name() == "" {
		t.Error("no file resolved")
	}
	if got := sim.Calls("gp_camera_wait_for_event"); got < 3 {
		t.Errorf("wait calls = %d, want at least 3", got)
	}
}

func TestCaptureTimesOutWithoutFile(t *testing.T) {
	sim := simulator.NewDefault()
	cam := New(sim, WithCaptureTimeout(20*time.Millisecond))
	defer cam.Close()

	// Recording stops but the camera never reports a file.
	if _, err := cam.RecordVideo(context.Background(), time.Millisecond); err == nil {
		t.Fatal("want timeout error")
	}
}

func TestCaptureHonorsContext(t *testing.T) {
	sim := simulator.NewDefault()
	cam := New(sim)
	defer cam.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := cam.Capture(ctx); err != context.Canceled {
		t.Fatalf("want context.Canceled, got %v", err)
	}
	// A cancelled capture must not have fired the shutter or retargeted.
	if got := sim.Calls("gp_camera_trigger_capture"); got != 0 {
		t.Errorf("trigger calls = %d, want 0", got)
	}
	if got := sim.Calls("gp_widget_set_value"); got != 0 {
		t.Errorf("set_value calls = %d, want 0", got)
	}
}

func TestConcurrentOperationsAreSerialized(t *testing.T) {
	sim := simulator.NewDefault()
	cam := New(sim)
	defer cam.Close()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 5; i++ {
			if _, err := cam.Capture(context.Background()); err != nil {
				t.Errorf("capture: %v", err)
				return
			}
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 5; i++ {
			cfg, err := cam.Config()
			if err != nil {
				t.Errorf("config: %v", err)
				return
			}
			it, ok := cfg.Find("artist")
			if !ok {
				t.Error("artist entry missing")
				return
			}
			if err := it.Set("somebody"); err != nil {
				t.Errorf("set: %v", err)
				return
			}
			if _, err := cam.Preview(); err != nil {
				t.Errorf("preview: %v", err)
				return
			}
		}
	}()
	wg.Wait()

	if got := sim.Calls("gp_camera_trigger_capture"); got != 5 {
		t.Errorf("trigger calls = %d, want 5", got)
	}
}

func TestPreview(t *testing.T) {
	sim := simulator.NewDefault()
	cam := New(sim)
	defer cam.Close()

	data, err := cam.Preview()
	if err != nil {
		t.Fatal(err)
	}
	if len(data) == 0 {
		t.Error("empty preview frame")
	}
	if got := sim.Calls("gp_camera_capture_preview"); got != 1 {
		t.Errorf("preview calls = %d", got)
	}
	if got := sim.Calls("gp_camera_trigger_capture"); got != 0 {
		t.Error("preview fired the shutter")
	}
}

func TestUSBAddressBinding(t *testing.T) {
	sim := simulator.NewDefault() // detected at usb:001,005

	cam := New(sim, WithUSBAddress(1, 5))
	if err := cam.Init(); err != nil {
		t.Fatalf("binding the detected address: %v", err)
	}
	cam.Close()
	if got := sim.Calls("gp_camera_set_port_info"); got != 1 {
		t.Errorf("port info set %d times, want 1", got)
	}
	if got := sim.Calls("gp_port_info_list_free"); got != 1 {
		t.Errorf("port list freed %d times, want 1", got)
	}

	wrong := New(sim, WithUSBAddress(9, 9))
	defer wrong.Close()
	if err := wrong.Init(); err == nil {
		t.Error("nonexistent USB address accepted")
	}
}

func TestStorageInfo(t *testing.T) {
	sim := simulator.NewDefault()
	cam := New(sim)
	defer cam.Close()

	media, err := cam.StorageInfo()
	if err != nil {
		t.Fatal(err)
	}
	if len(media) != 1 || media[0].BaseDir != "/store_00010001" {
		t.Fatalf("media = %+v", media)
	}
	if media[0].Fields&native.StorageFieldCapacity == 0 {
		t.Error("capacity field not flagged")
	}
}

func TestSettingsAndStatusViews(t *testing.T) {
	sim := simulator.NewDefault()
	sim.Root = simulator.Window("main",
		simulator.Section("capturesettings",
			simulator.Selection("iso", "100", "100", "200"),
			simulator.ReadOnlyW(simulator.Text("lensname", "50mm")),
		),
		simulator.Section("other",
			simulator.Text("artist", "nobody"),
		),
		simulator.Section("actions",
			simulator.Toggle("movie", 0),
		),
		simulator.Section("status",
			simulator.Text("serialnumber", "X100"),
			simulator.Text("d01c", "7"),
		),
	)
	cam := New(sim)
	defer cam.Close()

	settings, err := cam.Settings()
	if err != nil {
		t.Fatal(err)
	}
	if len(settings) != 2 {
		t.Fatalf("settings sections = %v", settings)
	}
	if got := settings["capturesettings"]; len(got) != 1 || got[0].Name() != "iso" {
		t.Errorf("capturesettings = %v", got)
	}
	if got := settings["other"]; len(got) != 1 || got[0].Name() != "artist" {
		t.Errorf("other = %v", got)
	}
	if _, ok := settings["actions"]; ok {
		t.Error("actions section leaked into settings view")
	}

	status, err := cam.Status()
	if err != nil {
		t.Fatal(err)
	}
	if v, ok := status["lensname"]; !ok || v != "50mm" {
		t.Errorf("lensname = %v (%v)", v, ok)
	}
	if v, ok := status["serialnumber"]; !ok || v != "X100" {
		t.Errorf("serialnumber = %v (%v)", v, ok)
	}
	if _, ok := status["d01c"]; ok {
		t.Error("hex register included in status")
	}
	if _, ok := status["movie"]; ok {
		t.Error("writable entry included in status")
	}
}
