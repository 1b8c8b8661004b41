//go:build linux || darwin

// Package libgphoto2 is the runtime-loaded backend: it dlopens the shared
// library, binds the gp_* symbols, translates every status-code return
// through the gperr taxonomy, and bridges the native logging callback into
// zerolog.
package libgphoto2

import (
	"fmt"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/ebitengine/purego"
	"github.com/rs/zerolog"

	"github.com/cjeanneret/photobridge/gperr"
	"github.com/cjeanneret/photobridge/native"
)

// Options configure the loader.
type Options struct {
	// Path overrides the default shared-library search names.
	Path string
	// Logger receives the records the native library emits through its
	// logging callback.
	Logger zerolog.Logger
}

var defaultNames = []string{
	"libgphoto2.so.6",
	"libgphoto2.so",
	"libgphoto2.6.dylib",
	"libgphoto2.dylib",
}

// Calls whose integer return value is semantic output (a handle, a count,
// a string pointer), never a status code.
var statusExempt = map[string]struct{}{
	"gp_log_add_func":     {},
	"gp_context_new":      {},
	"gp_list_count":       {},
	"gp_result_as_string": {},
	"gp_library_version":  {},
}

// checkStatus interprets a native return value for the named call: exempt
// calls pass through unchanged, negative values become translated errors.
func checkStatus(name string, rv int32, resolve func(int) string) (int, error) {
	if _, exempt := statusExempt[name]; exempt {
		return int(rv), nil
	}
	if rv < 0 {
		return 0, gperr.FromCode(int(rv), resolve(int(rv)))
	}
	return int(rv), nil
}

// Lib is the loaded library. There is exactly one per process; Open returns
// the same instance to every caller.
type Lib struct {
	log    zerolog.Logger
	handle uintptr

	free func(unsafe.Pointer) // libc free, for library-malloc'd event data

	libraryVersion func(int32) uintptr
	resultAsString func(int32) string
	contextNew     func() uintptr
	logAddFunc     func(int32, uintptr, uintptr) int32

	cameraNew          func(unsafe.Pointer) int32
	cameraInit         func(uintptr, uintptr) int32
	cameraExit         func(uintptr, uintptr) int32
	cameraUnref        func(uintptr) int32
	cameraGetAbilities func(uintptr, unsafe.Pointer) int32
	cameraSetPortInfo  func(uintptr, uintptr) int32

	portInfoListNew        func(unsafe.Pointer) int32
	portInfoListLoad       func(uintptr) int32
	portInfoListLookupPath func(uintptr, string) int32
	portInfoListGetInfo    func(uintptr, int32, unsafe.Pointer) int32
	portInfoListFree       func(uintptr) int32

	abilitiesListNew          func(unsafe.Pointer) int32
	abilitiesListLoad         func(uintptr, uintptr) int32
	abilitiesListDetect       func(uintptr, uintptr, uintptr, uintptr) int32
	abilitiesListLookupModel  func(uintptr, string) int32
	abilitiesListGetAbilities func(uintptr, int32, unsafe.Pointer) int32
	abilitiesListCount        func(uintptr) int32
	abilitiesListFree         func(uintptr) int32

	listNew      func(unsafe.Pointer) int32
	listCount    func(uintptr) int32
	listGetName  func(uintptr, int32, unsafe.Pointer) int32
	listGetValue func(uintptr, int32, unsafe.Pointer) int32
	listFree     func(uintptr) int32

	cameraGetConfig      func(uintptr, unsafe.Pointer, uintptr) int32
	cameraSetConfig      func(uintptr, uintptr, uintptr) int32
	widgetFree           func(uintptr) int32
	widgetCountChildren  func(uintptr) int32
	widgetGetChild       func(uintptr, int32, unsafe.Pointer) int32
	widgetGetChildByName func(uintptr, string, unsafe.Pointer) int32
	widgetGetName        func(uintptr, unsafe.Pointer) int32
	widgetGetType        func(uintptr, unsafe.Pointer) int32
	widgetGetLabel       func(uintptr, unsafe.Pointer) int32
	widgetGetInfo        func(uintptr, unsafe.Pointer) int32
	widgetGetReadonly    func(uintptr, unsafe.Pointer) int32
	widgetGetValue       func(uintptr, unsafe.Pointer) int32
	widgetSetValue       func(uintptr, unsafe.Pointer) int32
	widgetGetRange       func(uintptr, unsafe.Pointer, unsafe.Pointer, unsafe.Pointer) int32
	widgetCountChoices   func(uintptr) int32
	widgetGetChoice      func(uintptr, int32, unsafe.Pointer) int32

	folderListFiles   func(uintptr, string, uintptr, uintptr) int32
	folderListFolders func(uintptr, string, uintptr, uintptr) int32
	folderMakeDir     func(uintptr, string, string, uintptr) int32
	folderRemoveDir   func(uintptr, string, string, uintptr) int32
	folderPutFile     func(uintptr, string, string, int32, uintptr, uintptr) int32
	cameraFileGetInfo func(uintptr, string, string, unsafe.Pointer, uintptr) int32
	cameraFileGet     func(uintptr, string, string, int32, uintptr, uintptr) int32
	cameraFileRead    func(uintptr, string, string, int32, uint64, unsafe.Pointer, unsafe.Pointer, uintptr) int32
	cameraFileDelete  func(uintptr, string, string, uintptr) int32

	fileNew            func(unsafe.Pointer) int32
	fileNewFromFd      func(unsafe.Pointer, int32) int32
	fileGetDataAndSize func(uintptr, unsafe.Pointer, unsafe.Pointer) int32
	fileFree           func(uintptr) int32

	cameraTriggerCapture func(uintptr, uintptr) int32
	cameraCapturePreview func(uintptr, uintptr, uintptr) int32
	cameraWaitForEvent   func(uintptr, int32, unsafe.Pointer, unsafe.Pointer, uintptr) int32
	cameraGetStorageinfo func(uintptr, unsafe.Pointer, unsafe.Pointer, uintptr) int32
}

var (
	loadMu sync.Mutex
	loaded atomic.Pointer[Lib]
)

// Open loads the shared library. The load happens at most once per process;
// later calls return the same *Lib regardless of options (double-checked
// under the load mutex).
func Open(opts Options) (*Lib, error) {
	if l := loaded.Load(); l != nil {
		return l, nil
	}
	loadMu.Lock()
	defer loadMu.Unlock()
	if l := loaded.Load(); l != nil {
		return l, nil
	}
	l, err := load(opts)
	if err != nil {
		return nil, err
	}
	loaded.Store(l)
	return l, nil
}

func load(opts Options) (*Lib, error) {
	names := defaultNames
	if opts.Path != "" {
		names = []string{opts.Path}
	}
	var (
		handle  uintptr
		lastErr error
	)
	for _, name := range names {
		h, err := purego.Dlopen(name, purego.RTLD_NOW|purego.RTLD_GLOBAL)
		if err == nil {
			handle = h
			break
		}
		lastErr = err
	}
	if handle == 0 {
		return nil, fmt.Errorf("load libgphoto2: %w", lastErr)
	}

	l := &Lib{log: opts.Logger, handle: handle}
	l.register(handle)
	if addr, err := purego.Dlsym(purego.RTLD_DEFAULT, "free"); err == nil {
		purego.RegisterFunc(&l.free, addr)
	}
	l.registerLogBridge()
	l.log.Debug().Str("version", l.LibraryVersion()).Msg("libgphoto2 loaded")
	return l, nil
}

func (l *Lib) register(h uintptr) {
	for _, sym := range []struct {
		fn   any
		name string
	}{
		{&l.libraryVersion, "gp_library_version"},
		{&l.resultAsString, "gp_result_as_string"},
		{&l.contextNew, "gp_context_new"},
		{&l.logAddFunc, "gp_log_add_func"},

		{&l.cameraNew, "gp_camera_new"},
		{&l.cameraInit, "gp_camera_init"},
		{&l.cameraExit, "gp_camera_exit"},
		{&l.cameraUnref, "gp_camera_unref"},
		{&l.cameraGetAbilities, "gp_camera_get_abilities"},
		{&l.cameraSetPortInfo, "gp_camera_set_port_info"},

		{&l.portInfoListNew, "gp_port_info_list_new"},
		{&l.portInfoListLoad, "gp_port_info_list_load"},
		{&l.portInfoListLookupPath, "gp_port_info_list_lookup_path"},
		{&l.portInfoListGetInfo, "gp_port_info_list_get_info"},
		{&l.portInfoListFree, "gp_port_info_list_free"},

		{&l.abilitiesListNew, "gp_abilities_list_new"},
		{&l.abilitiesListLoad, "gp_abilities_list_load"},
		{&l.abilitiesListDetect, "gp_abilities_list_detect"},
		{&l.abilitiesListLookupModel, "gp_abilities_list_lookup_model"},
		{&l.abilitiesListGetAbilities, "gp_abilities_list_get_abilities"},
		{&l.abilitiesListCount, "gp_abilities_list_count"},
		{&l.abilitiesListFree, "gp_abilities_list_free"},

		{&l.listNew, "gp_list_new"},
		{&l.listCount, "gp_list_count"},
		{&l.listGetName, "gp_list_get_name"},
		{&l.listGetValue, "gp_list_get_value"},
		{&l.listFree, "gp_list_free"},

		{&l.cameraGetConfig, "gp_camera_get_config"},
		{&l.cameraSetConfig, "gp_camera_set_config"},
		{&l.widgetFree, "gp_widget_free"},
		{&l.widgetCountChildren, "gp_widget_count_children"},
		{&l.widgetGetChild, "gp_widget_get_child"},
		{&l.widgetGetChildByName, "gp_widget_get_child_by_name"},
		{&l.widgetGetName, "gp_widget_get_name"},
		{&l.widgetGetType, "gp_widget_get_type"},
		{&l.widgetGetLabel, "gp_widget_get_label"},
		{&l.widgetGetInfo, "gp_widget_get_info"},
		{&l.widgetGetReadonly, "gp_widget_get_readonly"},
		{&l.widgetGetValue, "gp_widget_get_value"},
		{&l.widgetSetValue, "gp_widget_set_value"},
		{&l.widgetGetRange, "gp_widget_get_range"},
		{&l.widgetCountChoices, "gp_widget_count_choices"},
		{&l.widgetGetChoice, "gp_widget_get_choice"},

		{&l.folderListFiles, "gp_camera_folder_list_files"},
		{&l.folderListFolders, "gp_camera_folder_list_folders"},
		{&l.folderMakeDir, "gp_camera_folder_make_dir"},
		{&l.folderRemoveDir, "gp_camera_folder_remove_dir"},
		{&l.folderPutFile, "gp_camera_folder_put_file"},
		{&l.cameraFileGetInfo, "gp_camera_file_get_info"},
		{&l.cameraFileGet, "gp_camera_file_get"},
		{&l.cameraFileRead, "gp_camera_file_read"},
		{&l.cameraFileDelete, "gp_camera_file_delete"},

		{&l.fileNew, "gp_file_new"},
		{&l.fileNewFromFd, "gp_file_new_from_fd"},
		{&l.fileGetDataAndSize, "gp_file_get_data_and_size"},
		{&l.fileFree, "gp_file_free"},

		{&l.cameraTriggerCapture, "gp_camera_trigger_capture"},
		{&l.cameraCapturePreview, "gp_camera_capture_preview"},
		{&l.cameraWaitForEvent, "gp_camera_wait_for_event"},
		{&l.cameraGetStorageinfo, "gp_camera_get_storageinfo"},
	} {
		purego.RegisterLibFunc(sym.fn, h, sym.name)
	}
}

// registerLogBridge forwards native log records into zerolog. The native
// "data" level has no host mapping and is dropped.
func (l *Lib) registerLogBridge() {
	cb := purego.NewCallback(func(level, domain, message, _ uintptr) uintptr {
		logger := l.log.With().Str("domain", goString(domain)).Logger()
		msg := goString(message)
		switch native.LogLevel(level) {
		case native.LogError:
			logger.Error().Msg(msg)
		case native.LogVerbose:
			logger.Info().Msg(msg)
		case native.LogDebug:
			logger.Debug().Msg(msg)
		}
		return 0
	})
	l.logAddFunc(int32(native.LogData), cb, 0)
}

// status runs the generic status-code check for the named call.
func (l *Lib) status(name string, rv int32) (int, error) {
	return checkStatus(name, rv, l.ResultString)
}

// construct normalizes the allocate-double-pointer/construct/dereference
// pattern for the native handle constructors. An unregistered type name is
// a programming error, not a device condition.
func (l *Lib) construct(typename string) (uintptr, error) {
	ctors := map[string]struct {
		cname string
		fn    func(unsafe.Pointer) int32
	}{
		"Camera":              {"gp_camera_new", l.cameraNew},
		"CameraList":          {"gp_list_new", l.listNew},
		"GPPortInfoList":      {"gp_port_info_list_new", l.portInfoListNew},
		"CameraAbilitiesList": {"gp_abilities_list_new", l.abilitiesListNew},
		"CameraFile":          {"gp_file_new", l.fileNew},
	}
	ctor, ok := ctors[typename]
	if !ok {
		return 0, fmt.Errorf("libgphoto2: no constructor registered for type %q", typename)
	}
	var out uintptr
	if _, err := l.status(ctor.cname, ctor.fn(unsafe.Pointer(&out))); err != nil {
		return 0, err
	}
	return out, nil
}
