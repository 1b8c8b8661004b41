package gphoto

import (
	"testing"

	"github.com/cjeanneret/photobridge/native"
	"github.com/cjeanneret/photobridge/native/simulator"
)

func TestLibraryVersion(t *testing.T) {
	sim := simulator.NewDefault()
	if got := LibraryVersion(sim); got != sim.Version {
		t.Errorf("LibraryVersion = %q", got)
	}
}

func TestListCameras(t *testing.T) {
	sim := simulator.NewDefault()
	sim.Detected = append(sim.Detected,
		simulator.Detected{Model: "Pocket Player", Port: "usb:002,007"},
		simulator.Detected{Model: "Old Serial Cam", Port: "serial:/dev/ttyS0"},
	)
	sim.Supported = append(sim.Supported, native.Abilities{
		Model:      "Pocket Player",
		DeviceType: native.DeviceAudioPlayer,
	})

	cams, err := ListCameras(sim)
	if err != nil {
		t.Fatal(err)
	}
	// The audio player and the non-USB port entry are filtered out.
	if len(cams) != 1 {
		t.Fatalf("cameras = %+v, want just the DSLR", cams)
	}
	got := cams[0]
	if got.Model != "Simulated DSLR" || got.Port != "usb:001,005" {
		t.Errorf("unexpected camera %+v", got)
	}
	if got.Bus != 1 || got.Device != 5 {
		t.Errorf("parsed address = %d/%d, want 1/5", got.Bus, got.Device)
	}

	// Detection releases every native list it allocated.
	for _, call := range []string{"gp_abilities_list_free", "gp_port_info_list_free", "gp_list_free"} {
		if got := sim.Calls(call); got != 1 {
			t.Errorf("%s called %d times, want 1", call, got)
		}
	}
}

func TestListCamerasKeepsUnknownModels(t *testing.T) {
	sim := simulator.NewDefault()
	sim.Detected = append(sim.Detected,
		simulator.Detected{Model: "Mystery Cam", Port: "usb:003,002"})

	cams, err := ListCameras(sim)
	if err != nil {
		t.Fatal(err)
	}
	// A model absent from the driver database is kept rather than guessed
	// to be an audio player.
	if len(cams) != 2 {
		t.Fatalf("cameras = %+v, want 2", cams)
	}
}

func TestSupportedCameras(t *testing.T) {
	sim := simulator.NewDefault()
	sim.Supported = []native.Abilities{
		{Model: "B Cam", Library: "camlibs/ptp2"},
		{Model: "A Cam", Library: "camlibs/ptp2"},
		{Model: "Z Cam", Library: "camlibs/canon"},
	}

	byDriver, err := SupportedCameras(sim)
	if err != nil {
		t.Fatal(err)
	}
	if len(byDriver) != 2 {
		t.Fatalf("drivers = %v", byDriver)
	}
	ptp := byDriver["ptp2"]
	if len(ptp) != 2 || ptp[0] != "A Cam" || ptp[1] != "B Cam" {
		t.Errorf("ptp2 models not sorted: %v", ptp)
	}
	if len(byDriver["canon"]) != 1 {
		t.Errorf("canon models = %v", byDriver["canon"])
	}
	if got := sim.Calls("gp_abilities_list_free"); got != 1 {
		t.Errorf("abilities list freed %d times, want 1", got)
	}
}
