package simulator

import (
	"testing"
	"time"

	"github.com/cjeanneret/photobridge/gperr"
	"github.com/cjeanneret/photobridge/native"
)

func TestCallCounters(t *testing.T) {
	s := NewDefault()
	cam, _ := s.NewCamera()
	ctx := s.NewContext()

	if err := s.InitCamera(cam, ctx); err != nil {
		t.Fatal(err)
	}
	if got := s.Calls("gp_camera_init"); got != 1 {
		t.Errorf("gp_camera_init counted %d times, want 1", got)
	}

	s.ResetCalls()
	if got := s.Calls("gp_camera_init"); got != 0 {
		t.Errorf("counter survived reset: %d", got)
	}
}

func TestInjectedFailure(t *testing.T) {
	s := NewDefault()
	cam, _ := s.NewCamera()
	ctx := s.NewContext()

	s.FailWith("gp_camera_trigger_capture", native.ErrCameraBusy)
	err := s.TriggerCapture(cam, ctx)
	if !gperr.IsKind(err, gperr.KindCameraBusy) {
		t.Fatalf("want camera-busy error, got %v", err)
	}
	if got := s.Calls("gp_camera_trigger_capture"); got != 1 {
		t.Errorf("failed call not counted: %d", got)
	}

	s.ClearFailure("gp_camera_trigger_capture")
	if err := s.TriggerCapture(cam, ctx); err != nil {
		t.Fatalf("cleared failure still fires: %v", err)
	}
}

func TestTriggerCaptureQueuesEvents(t *testing.T) {
	s := NewDefault()
	cam, _ := s.NewCamera()
	ctx := s.NewContext()

	if err := s.TriggerCapture(cam, ctx); err != nil {
		t.Fatal(err)
	}

	ev, err := s.WaitForEvent(cam, time.Second, ctx)
	if err != nil {
		t.Fatal(err)
	}
	if ev.Type != native.EventCaptureComplete {
		t.Fatalf("first event = %v, want capture complete", ev.Type)
	}

	ev, err = s.WaitForEvent(cam, time.Second, ctx)
	if err != nil {
		t.Fatal(err)
	}
	if ev.Type != native.EventFileAdded {
		t.Fatalf("second event = %v, want file added", ev.Type)
	}
	if ev.Folder != s.CaptureFolder || ev.Name == "" {
		t.Errorf("file-added event incomplete: %+v", ev)
	}

	// The new file must actually be in the tree.
	if _, err := s.FileInfo(cam, ev.Folder, ev.Name, ctx); err != nil {
		t.Errorf("captured file not on filesystem: %v", err)
	}

	// Drained queue yields timeouts.
	ev, err = s.WaitForEvent(cam, time.Second, ctx)
	if err != nil || ev.Type != native.EventTimeout {
		t.Fatalf("drained queue: got %v, %v; want timeout", ev, err)
	}
}

func TestFilesystemErrors(t *testing.T) {
	s := NewDefault()
	cam, _ := s.NewCamera()
	ctx := s.NewContext()

	if err := s.MakeDir(cam, "/", "store_00010001", ctx); !gperr.IsKind(err, gperr.KindDirectoryExists) {
		t.Errorf("duplicate mkdir: got %v", err)
	}
	if err := s.RemoveDir(cam, "/", "nope", ctx); !gperr.IsKind(err, gperr.KindDirectoryNotFound) {
		t.Errorf("rmdir missing: got %v", err)
	}
	if _, err := s.FileGet(cam, "/store_00010001/DCIM/100SIMUL", "nope.jpg", native.ViewNormal, ctx); !gperr.IsKind(err, gperr.KindFileNotFound) {
		t.Errorf("get missing file: got %v", err)
	}
	if err := s.PutFile(cam, "/store_00010001/DCIM/100SIMUL", "IMG_0001.JPG", native.ViewNormal, nil, ctx); !gperr.IsKind(err, gperr.KindFileExists) {
		t.Errorf("duplicate upload: got %v", err)
	}
}

func TestCommitTargetsRecorded(t *testing.T) {
	s := NewDefault()
	cam, _ := s.NewCamera()
	ctx := s.NewContext()

	root, err := s.ConfigRoot(cam, ctx)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.CommitConfig(cam, root, ctx); err != nil {
		t.Fatal(err)
	}
	targets := s.CommitTargets()
	if len(targets) != 1 || targets[0] != root {
		t.Fatalf("commit targets = %v, want the fetched root once", targets)
	}
}
