// Package gphoto is the high-level camera API: discovery, per-camera
// configuration, capture and remote filesystem access, written against the
// native backend interface so the same code drives real hardware and the
// in-memory simulator.
package gphoto

import (
	gopath "path"
	"regexp"
	"sort"
	"strconv"

	"github.com/cjeanneret/photobridge/native"
)

var usbPortRe = regexp.MustCompile(`^usb:(\d+),(\d+)$`)

// Info describes one detected camera.
type Info struct {
	Model  string
	Port   string
	Bus    int
	Device int
}

// LibraryVersion returns the native library's dotted version string.
func LibraryVersion(api native.API) string {
	return api.LibraryVersion()
}

// ListCameras autodetects connected still cameras on USB. Audio players the
// driver database also knows are filtered out.
func ListCameras(api native.API) ([]Info, error) {
	ctx := api.NewContext()

	abilities, err := api.NewAbilitiesList()
	if err != nil {
		return nil, err
	}
	defer api.FreeAbilitiesList(abilities)
	if err := api.LoadAbilitiesList(abilities, ctx); err != nil {
		return nil, err
	}
	ports, err := api.NewPortInfoList()
	if err != nil {
		return nil, err
	}
	defer api.FreePortInfoList(ports)
	if err := api.LoadPortInfoList(ports); err != nil {
		return nil, err
	}

	lst, err := api.NewList()
	if err != nil {
		return nil, err
	}
	defer api.FreeList(lst)
	if err := api.DetectCameras(abilities, ports, lst, ctx); err != nil {
		return nil, err
	}

	var out []Info
	for i := 0; i < api.ListCount(lst); i++ {
		model, err := api.ListName(lst, i)
		if err != nil {
			return nil, err
		}
		port, err := api.ListValue(lst, i)
		if err != nil {
			return nil, err
		}
		m := usbPortRe.FindStringSubmatch(port)
		if m == nil {
			// Pseudo-entries like "usb:" or serial ports.
			continue
		}
		if still, err := isStillCamera(api, abilities, model); err != nil {
			return nil, err
		} else if !still {
			continue
		}
		bus, _ := strconv.Atoi(m[1])
		dev, _ := strconv.Atoi(m[2])
		out = append(out, Info{Model: model, Port: port, Bus: bus, Device: dev})
	}
	return out, nil
}

func isStillCamera(api native.API, abilities native.AbilitiesList, model string) (bool, error) {
	idx, err := api.LookupModel(abilities, model)
	if err != nil {
		// Not in the driver database; keep it rather than guess.
		return true, nil
	}
	ab, err := api.AbilitiesAt(abilities, idx)
	if err != nil {
		return false, err
	}
	return ab.DeviceType == native.DeviceStillCamera, nil
}

// SupportedCameras returns every model the driver database knows, grouped by
// driver name, each group sorted.
func SupportedCameras(api native.API) (map[string][]string, error) {
	ctx := api.NewContext()
	abilities, err := api.NewAbilitiesList()
	if err != nil {
		return nil, err
	}
	defer api.FreeAbilitiesList(abilities)
	if err := api.LoadAbilitiesList(abilities, ctx); err != nil {
		return nil, err
	}
	n, err := api.AbilitiesCount(abilities)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]string)
	for i := 0; i < n; i++ {
		ab, err := api.AbilitiesAt(abilities, i)
		if err != nil {
			return nil, err
		}
		driver := gopath.Base(ab.Library)
		out[driver] = append(out[driver], ab.Model)
	}
	for _, models := range out {
		sort.Strings(models)
	}
	return out, nil
}
