//go:build linux || darwin

package libgphoto2

import (
	"testing"

	"github.com/cjeanneret/photobridge/gperr"
	"github.com/cjeanneret/photobridge/native"
)

func noResolve(int) string { return "" }

func TestCheckStatus_Success(t *testing.T) {
	got, err := checkStatus("gp_camera_init", 0, noResolve)
	if err != nil || got != 0 {
		t.Fatalf("got %d, %v", got, err)
	}
	// Positive values are semantic output (indexes, byte counts).
	got, err = checkStatus("gp_widget_count_children", 7, noResolve)
	if err != nil || got != 7 {
		t.Fatalf("got %d, %v", got, err)
	}
}

func TestCheckStatus_NegativeBecomesError(t *testing.T) {
	_, err := checkStatus("gp_camera_file_get", int32(native.ErrFileNotFound), noResolve)
	if !gperr.IsKind(err, gperr.KindFileNotFound) {
		t.Fatalf("want file-not-found, got %v", err)
	}
	if gperr.CodeOf(err) != native.ErrFileNotFound {
		t.Errorf("native code not preserved: %d", gperr.CodeOf(err))
	}
}

func TestCheckStatus_ResolvedMessageForGeneric(t *testing.T) {
	_, err := checkStatus("gp_camera_init", int32(native.ErrIO),
		func(code int) string { return "I/O report" })
	if err == nil || err.Error() != "gphoto2: I/O report (code -7)" {
		t.Fatalf("got %v", err)
	}
}

// Exempt calls return raw values: handles, counts and string pointers come
// back as negative or arbitrary integers and must never be mistaken for
// status codes.
func TestCheckStatus_ExemptCalls(t *testing.T) {
	for _, name := range []string{
		"gp_log_add_func",
		"gp_context_new",
		"gp_list_count",
		"gp_result_as_string",
		"gp_library_version",
	} {
		got, err := checkStatus(name, -77, noResolve)
		if err != nil || got != -77 {
			t.Errorf("%s: got %d, %v; want raw passthrough", name, got, err)
		}
	}
}
