package native

import "testing"

// The numeric values below are fixed by the shared library's headers; a
// renumbering here would silently corrupt every native call.

func TestResultCodeValues(t *testing.T) {
	cases := map[string]struct{ got, want int }{
		"OK":                   {OK, 0},
		"ErrGeneric":           {ErrGeneric, -1},
		"ErrTimeout":           {ErrTimeout, -10},
		"ErrCorruptedData":     {ErrCorruptedData, -102},
		"ErrModelNotFound":     {ErrModelNotFound, -105},
		"ErrDirectoryNotFound": {ErrDirectoryNotFound, -107},
		"ErrFileNotFound":      {ErrFileNotFound, -108},
		"ErrCameraBusy":        {ErrCameraBusy, -110},
		"ErrNoSpace":           {ErrNoSpace, -115},
	}
	for name, tc := range cases {
		if tc.got != tc.want {
			t.Errorf("%s = %d, want %d", name, tc.got, tc.want)
		}
	}
}

func TestWidgetAndEventValues(t *testing.T) {
	if WidgetWindow != 0 || WidgetSection != 1 || WidgetText != 2 ||
		WidgetRange != 3 || WidgetToggle != 4 || WidgetRadio != 5 ||
		WidgetMenu != 6 || WidgetButton != 7 || WidgetDate != 8 {
		t.Error("widget type values diverged from the header ordering")
	}
	if EventUnknown != 0 || EventTimeout != 1 || EventFileAdded != 2 ||
		EventFolderAdded != 3 || EventCaptureComplete != 4 {
		t.Error("event type values diverged from the header ordering")
	}
}

func TestViewNamesRoundTrip(t *testing.T) {
	for view, name := range ViewNames {
		got, ok := ViewByName(name)
		if !ok || got != view {
			t.Errorf("ViewByName(%q) = %v, %v; want %v", name, got, ok, view)
		}
	}
	if _, ok := ViewByName("thumbnail"); ok {
		t.Error("ViewByName accepted an unknown name")
	}
}
