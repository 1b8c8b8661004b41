package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// run executes the CLI against the simulator backend and returns stdout.
func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--backend", "simulator"}, args...))
	if err := cmd.Execute(); err != nil {
		t.Fatalf("photobridge %s: %v\n%s", strings.Join(args, " "), err, out.String())
	}
	return out.String()
}

func TestVersionCommand(t *testing.T) {
	out := run(t, "version")
	if !strings.Contains(out, "libgphoto2 2.5.31-sim") {
		t.Errorf("version output: %q", out)
	}
}

func TestListCommand(t *testing.T) {
	out := run(t, "list")
	if !strings.Contains(out, "Simulated DSLR") || !strings.Contains(out, "usb:001,005") {
		t.Errorf("list output: %q", out)
	}
}

func TestConfigGetAndSet(t *testing.T) {
	out := run(t, "config", "get", "capturetarget")
	if !strings.Contains(out, "Internal RAM") {
		t.Errorf("get output: %q", out)
	}
	if !strings.Contains(out, "Memory card") {
		t.Errorf("choices missing: %q", out)
	}

	// Each invocation talks to a fresh simulator, so only the error path
	// is observable here.
	var errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&errOut)
	cmd.SetErr(&errOut)
	cmd.SetArgs([]string{"--backend", "simulator", "config", "set", "capturetarget", "Cloud"})
	if err := cmd.Execute(); err == nil {
		t.Error("setting an unknown choice succeeded")
	}
}

func TestConfigDump(t *testing.T) {
	out := run(t, "config", "dump")
	for _, want := range []string{"settings", "capturetarget", "batterylevel", "[ro]"} {
		if !strings.Contains(out, want) {
			t.Errorf("dump misses %q:\n%s", want, out)
		}
	}
}

func TestConfigSettingsAndStatus(t *testing.T) {
	out := run(t, "config", "settings")
	if !strings.Contains(out, "capturetarget = Internal RAM") {
		t.Errorf("settings output: %q", out)
	}
	if strings.Contains(out, "batterylevel") {
		t.Errorf("read-only entry in settings view: %q", out)
	}

	out = run(t, "config", "status")
	if !strings.Contains(out, "batterylevel = 82%") {
		t.Errorf("status output: %q", out)
	}
	if strings.Contains(out, "capturetarget") {
		t.Errorf("writable entry in status view: %q", out)
	}
}

func TestCaptureCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shot.jpg")
	out := run(t, "capture", "-o", path)
	if !strings.Contains(out, path) {
		t.Errorf("capture output: %q", out)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) == 0 || data[0] != 0xff {
		t.Errorf("captured file is not a JPEG: %x", data)
	}
}

func TestFilesLsCommand(t *testing.T) {
	out := run(t, "files", "ls")
	if !strings.Contains(out, "IMG_0001.JPG") || !strings.Contains(out, "IMG_0002.JPG") {
		t.Errorf("ls output: %q", out)
	}

	out = run(t, "files", "ls", "-l", "/store_00010001/DCIM/100SIMUL")
	if !strings.Contains(out, "image/jpeg") {
		t.Errorf("long ls output: %q", out)
	}
}

func TestStorageCommand(t *testing.T) {
	out := run(t, "storage")
	if !strings.Contains(out, "/store_00010001") || !strings.Contains(out, "SDCARD") {
		t.Errorf("storage output: %q", out)
	}
}
