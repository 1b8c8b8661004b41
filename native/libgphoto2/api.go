//go:build linux || darwin

package libgphoto2

import (
	"os"
	"strings"
	"time"
	"unsafe"

	"github.com/cjeanneret/photobridge/gperr"
	"github.com/cjeanneret/photobridge/native"
)

// Typed wrappers so handle kinds cannot be mixed up behind the opaque
// interface types.
type (
	cameraHandle   uintptr
	contextHandle  uintptr
	widgetHandle   uintptr
	listHandle     uintptr
	portInfoHandle uintptr
	portListHandle uintptr
	abilListHandle uintptr
)

func camPtr(c native.Camera) uintptr          { return uintptr(c.(cameraHandle)) }
func ctxPtr(c native.Context) uintptr         { return uintptr(c.(contextHandle)) }
func widPtr(w native.Widget) uintptr          { return uintptr(w.(widgetHandle)) }
func listPtr(l native.List) uintptr           { return uintptr(l.(listHandle)) }
func portPtr(p native.PortInfo) uintptr       { return uintptr(p.(portInfoHandle)) }
func plistPtr(p native.PortInfoList) uintptr  { return uintptr(p.(portListHandle)) }
func alistPtr(a native.AbilitiesList) uintptr { return uintptr(a.(abilListHandle)) }

// --- library level ---

func (l *Lib) LibraryVersion() string {
	// gp_library_version returns a char** whose first entry is the
	// dotted version string.
	pp := l.libraryVersion(0)
	if pp == 0 {
		return ""
	}
	return goString(*(*uintptr)(unsafe.Pointer(pp)))
}

func (l *Lib) ResultString(code int) string {
	return l.resultAsString(int32(code))
}

func (l *Lib) NewContext() native.Context {
	return contextHandle(l.contextNew())
}

// --- camera lifecycle ---

func (l *Lib) NewCamera() (native.Camera, error) {
	p, err := l.construct("Camera")
	if err != nil {
		return nil, err
	}
	return cameraHandle(p), nil
}

func (l *Lib) InitCamera(cam native.Camera, ctx native.Context) error {
	_, err := l.status("gp_camera_init", l.cameraInit(camPtr(cam), ctxPtr(ctx)))
	return err
}

func (l *Lib) ExitCamera(cam native.Camera, ctx native.Context) error {
	_, err := l.status("gp_camera_exit", l.cameraExit(camPtr(cam), ctxPtr(ctx)))
	return err
}

func (l *Lib) FreeCamera(cam native.Camera) error {
	_, err := l.status("gp_camera_unref", l.cameraUnref(camPtr(cam)))
	return err
}

func decodeAbilities(a *cameraAbilities) native.Abilities {
	return native.Abilities{
		Model:            cString(a.Model[:]),
		Library:          cString(a.Library[:]),
		DeviceType:       native.DeviceType(a.DeviceType),
		Operations:       native.CameraOperation(a.Operations),
		FileOperations:   native.FileOperation(a.FileOperations),
		FolderOperations: native.FolderOperation(a.FolderOperations),
		USBVendor:        int(a.USBVendor),
		USBProduct:       int(a.USBProduct),
		USBClass:         int(a.USBClass),
		USBSubclass:      int(a.USBSubclass),
		USBProtocol:      int(a.USBProtocol),
	}
}

func (l *Lib) CameraAbilities(cam native.Camera) (native.Abilities, error) {
	var a cameraAbilities
	_, err := l.status("gp_camera_get_abilities",
		l.cameraGetAbilities(camPtr(cam), unsafe.Pointer(&a)))
	if err != nil {
		return native.Abilities{}, err
	}
	return decodeAbilities(&a), nil
}

func (l *Lib) SetPortInfo(cam native.Camera, info native.PortInfo) error {
	_, err := l.status("gp_camera_set_port_info",
		l.cameraSetPortInfo(camPtr(cam), portPtr(info)))
	return err
}

// --- port enumeration ---

func (l *Lib) NewPortInfoList() (native.PortInfoList, error) {
	p, err := l.construct("GPPortInfoList")
	if err != nil {
		return nil, err
	}
	return portListHandle(p), nil
}

func (l *Lib) LoadPortInfoList(pl native.PortInfoList) error {
	_, err := l.status("gp_port_info_list_load", l.portInfoListLoad(plistPtr(pl)))
	return err
}

// LookupPortPath overloads its return value: a zero-based index on success,
// a negative status code on failure. It is not run through the generic
// status interpretation; callers branch on the returned error explicitly.
func (l *Lib) LookupPortPath(pl native.PortInfoList, path string) (int, error) {
	rv := l.portInfoListLookupPath(plistPtr(pl), path)
	if rv < 0 {
		return 0, l.translate(int(rv))
	}
	return int(rv), nil
}

func (l *Lib) PortInfoAt(pl native.PortInfoList, idx int) (native.PortInfo, error) {
	var info uintptr
	_, err := l.status("gp_port_info_list_get_info",
		l.portInfoListGetInfo(plistPtr(pl), int32(idx), unsafe.Pointer(&info)))
	if err != nil {
		return nil, err
	}
	return portInfoHandle(info), nil
}

func (l *Lib) FreePortInfoList(pl native.PortInfoList) error {
	_, err := l.status("gp_port_info_list_free", l.portInfoListFree(plistPtr(pl)))
	return err
}

// --- abilities enumeration ---

func (l *Lib) NewAbilitiesList() (native.AbilitiesList, error) {
	p, err := l.construct("CameraAbilitiesList")
	if err != nil {
		return nil, err
	}
	return abilListHandle(p), nil
}

func (l *Lib) LoadAbilitiesList(al native.AbilitiesList, ctx native.Context) error {
	_, err := l.status("gp_abilities_list_load",
		l.abilitiesListLoad(alistPtr(al), ctxPtr(ctx)))
	return err
}

func (l *Lib) DetectCameras(al native.AbilitiesList, pl native.PortInfoList, out native.List, ctx native.Context) error {
	_, err := l.status("gp_abilities_list_detect",
		l.abilitiesListDetect(alistPtr(al), plistPtr(pl), listPtr(out), ctxPtr(ctx)))
	return err
}

// LookupModel has the same index-or-error overload as LookupPortPath.
func (l *Lib) LookupModel(al native.AbilitiesList, model string) (int, error) {
	rv := l.abilitiesListLookupModel(alistPtr(al), model)
	if rv < 0 {
		return 0, l.translate(int(rv))
	}
	return int(rv), nil
}

func (l *Lib) AbilitiesAt(al native.AbilitiesList, idx int) (native.Abilities, error) {
	var a cameraAbilities
	_, err := l.status("gp_abilities_list_get_abilities",
		l.abilitiesListGetAbilities(alistPtr(al), int32(idx), unsafe.Pointer(&a)))
	if err != nil {
		return native.Abilities{}, err
	}
	return decodeAbilities(&a), nil
}

func (l *Lib) AbilitiesCount(al native.AbilitiesList) (int, error) {
	return l.status("gp_abilities_list_count", l.abilitiesListCount(alistPtr(al)))
}

func (l *Lib) FreeAbilitiesList(al native.AbilitiesList) error {
	_, err := l.status("gp_abilities_list_free", l.abilitiesListFree(alistPtr(al)))
	return err
}

// --- lists ---

func (l *Lib) NewList() (native.List, error) {
	p, err := l.construct("CameraList")
	if err != nil {
		return nil, err
	}
	return listHandle(p), nil
}

func (l *Lib) ListCount(lst native.List) int {
	n, _ := l.status("gp_list_count", l.listCount(listPtr(lst)))
	return n
}

func (l *Lib) ListName(lst native.List, idx int) (string, error) {
	var p uintptr
	_, err := l.status("gp_list_get_name",
		l.listGetName(listPtr(lst), int32(idx), unsafe.Pointer(&p)))
	if err != nil {
		return "", err
	}
	return goString(p), nil
}

func (l *Lib) ListValue(lst native.List, idx int) (string, error) {
	var p uintptr
	_, err := l.status("gp_list_get_value",
		l.listGetValue(listPtr(lst), int32(idx), unsafe.Pointer(&p)))
	if err != nil {
		return "", err
	}
	return goString(p), nil
}

func (l *Lib) FreeList(lst native.List) error {
	_, err := l.status("gp_list_free", l.listFree(listPtr(lst)))
	return err
}

// --- widget tree ---

func (l *Lib) ConfigRoot(cam native.Camera, ctx native.Context) (native.Widget, error) {
	var w uintptr
	_, err := l.status("gp_camera_get_config",
		l.cameraGetConfig(camPtr(cam), unsafe.Pointer(&w), ctxPtr(ctx)))
	if err != nil {
		return nil, err
	}
	return widgetHandle(w), nil
}

func (l *Lib) CommitConfig(cam native.Camera, root native.Widget, ctx native.Context) error {
	_, err := l.status("gp_camera_set_config",
		l.cameraSetConfig(camPtr(cam), widPtr(root), ctxPtr(ctx)))
	return err
}

func (l *Lib) FreeWidget(w native.Widget) error {
	_, err := l.status("gp_widget_free", l.widgetFree(widPtr(w)))
	return err
}

func (l *Lib) WidgetChildCount(w native.Widget) (int, error) {
	return l.status("gp_widget_count_children", l.widgetCountChildren(widPtr(w)))
}

func (l *Lib) WidgetChild(w native.Widget, idx int) (native.Widget, error) {
	var child uintptr
	_, err := l.status("gp_widget_get_child",
		l.widgetGetChild(widPtr(w), int32(idx), unsafe.Pointer(&child)))
	if err != nil {
		return nil, err
	}
	return widgetHandle(child), nil
}

func (l *Lib) WidgetChildByName(w native.Widget, name string) (native.Widget, error) {
	var child uintptr
	_, err := l.status("gp_widget_get_child_by_name",
		l.widgetGetChildByName(widPtr(w), name, unsafe.Pointer(&child)))
	if err != nil {
		return nil, err
	}
	return widgetHandle(child), nil
}

func (l *Lib) widgetString(call string, fn func(uintptr, unsafe.Pointer) int32, w native.Widget) (string, error) {
	var p uintptr
	if _, err := l.status(call, fn(widPtr(w), unsafe.Pointer(&p))); err != nil {
		return "", err
	}
	return goString(p), nil
}

func (l *Lib) WidgetName(w native.Widget) (string, error) {
	return l.widgetString("gp_widget_get_name", l.widgetGetName, w)
}

func (l *Lib) WidgetType(w native.Widget) (native.WidgetType, error) {
	var t int32
	_, err := l.status("gp_widget_get_type",
		l.widgetGetType(widPtr(w), unsafe.Pointer(&t)))
	return native.WidgetType(t), err
}

func (l *Lib) WidgetLabel(w native.Widget) (string, error) {
	return l.widgetString("gp_widget_get_label", l.widgetGetLabel, w)
}

func (l *Lib) WidgetInfo(w native.Widget) (string, error) {
	return l.widgetString("gp_widget_get_info", l.widgetGetInfo, w)
}

func (l *Lib) WidgetReadonly(w native.Widget) (bool, error) {
	var ro int32
	_, err := l.status("gp_widget_get_readonly",
		l.widgetGetReadonly(widPtr(w), unsafe.Pointer(&ro)))
	return ro != 0, err
}

func (l *Lib) WidgetString(w native.Widget) (string, error) {
	return l.widgetString("gp_widget_get_value", l.widgetGetValue, w)
}

func (l *Lib) WidgetFloat(w native.Widget) (float32, error) {
	var f float32
	_, err := l.status("gp_widget_get_value",
		l.widgetGetValue(widPtr(w), unsafe.Pointer(&f)))
	return f, err
}

func (l *Lib) WidgetInt(w native.Widget) (int, error) {
	var v int32
	_, err := l.status("gp_widget_get_value",
		l.widgetGetValue(widPtr(w), unsafe.Pointer(&v)))
	return int(v), err
}

func (l *Lib) WidgetRange(w native.Widget) (float32, float32, float32, error) {
	var min, max, step float32
	_, err := l.status("gp_widget_get_range",
		l.widgetGetRange(widPtr(w),
			unsafe.Pointer(&min), unsafe.Pointer(&max), unsafe.Pointer(&step)))
	return min, max, step, err
}

func (l *Lib) WidgetChoiceCount(w native.Widget) (int, error) {
	return l.status("gp_widget_count_choices", l.widgetCountChoices(widPtr(w)))
}

func (l *Lib) WidgetChoice(w native.Widget, idx int) (string, error) {
	var p uintptr
	_, err := l.status("gp_widget_get_choice",
		l.widgetGetChoice(widPtr(w), int32(idx), unsafe.Pointer(&p)))
	if err != nil {
		return "", err
	}
	return goString(p), nil
}

func (l *Lib) SetWidgetString(w native.Widget, v string) error {
	buf := append([]byte(v), 0)
	_, err := l.status("gp_widget_set_value",
		l.widgetSetValue(widPtr(w), unsafe.Pointer(&buf[0])))
	return err
}

func (l *Lib) SetWidgetFloat(w native.Widget, v float32) error {
	_, err := l.status("gp_widget_set_value",
		l.widgetSetValue(widPtr(w), unsafe.Pointer(&v)))
	return err
}

func (l *Lib) SetWidgetInt(w native.Widget, v int) error {
	val := int32(v)
	_, err := l.status("gp_widget_set_value",
		l.widgetSetValue(widPtr(w), unsafe.Pointer(&val)))
	return err
}

// --- remote filesystem ---

func (l *Lib) ListFiles(cam native.Camera, folder string, out native.List, ctx native.Context) error {
	_, err := l.status("gp_camera_folder_list_files",
		l.folderListFiles(camPtr(cam), folder, listPtr(out), ctxPtr(ctx)))
	return err
}

func (l *Lib) ListFolders(cam native.Camera, folder string, out native.List, ctx native.Context) error {
	_, err := l.status("gp_camera_folder_list_folders",
		l.folderListFolders(camPtr(cam), folder, listPtr(out), ctxPtr(ctx)))
	return err
}

func (l *Lib) MakeDir(cam native.Camera, parent, name string, ctx native.Context) error {
	_, err := l.status("gp_camera_folder_make_dir",
		l.folderMakeDir(camPtr(cam), parent, name, ctxPtr(ctx)))
	return err
}

func (l *Lib) RemoveDir(cam native.Camera, parent, name string, ctx native.Context) error {
	_, err := l.status("gp_camera_folder_remove_dir",
		l.folderRemoveDir(camPtr(cam), parent, name, ctxPtr(ctx)))
	return err
}

// PutFile stages the payload in a temporary file because the native upload
// call consumes a file descriptor.
func (l *Lib) PutFile(cam native.Camera, folder, name string, view native.FileView, data []byte, ctx native.Context) error {
	tmp, err := os.CreateTemp("", "photobridge-upload-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()
	if _, err := tmp.Write(data); err != nil {
		return err
	}
	if _, err := tmp.Seek(0, 0); err != nil {
		return err
	}

	var fp uintptr
	if _, err := l.status("gp_file_new_from_fd",
		l.fileNewFromFd(unsafe.Pointer(&fp), int32(tmp.Fd()))); err != nil {
		return err
	}
	defer l.fileFree(fp)

	if !strings.HasSuffix(folder, "/") {
		folder += "/"
	}
	_, err = l.status("gp_camera_folder_put_file",
		l.folderPutFile(camPtr(cam), folder, name, int32(view), fp, ctxPtr(ctx)))
	return err
}

func (l *Lib) FileInfo(cam native.Camera, folder, name string, ctx native.Context) (native.FileInfo, error) {
	var info cameraFileInfo
	_, err := l.status("gp_camera_file_get_info",
		l.cameraFileGetInfo(camPtr(cam), folder, name, unsafe.Pointer(&info), ctxPtr(ctx)))
	if err != nil {
		return native.FileInfo{}, err
	}
	return native.FileInfo{
		Size:        info.File.Size,
		MIMEType:    cString(info.File.Type[:]),
		Width:       info.File.Width,
		Height:      info.File.Height,
		Permissions: native.FilePermission(info.File.Permissions),
		Modified:    time.Unix(info.File.Mtime, 0),
	}, nil
}

func (l *Lib) FileGet(cam native.Camera, folder, name string, view native.FileView, ctx native.Context) ([]byte, error) {
	fp, err := l.construct("CameraFile")
	if err != nil {
		return nil, err
	}
	// Native camera files must be freed on every exit path.
	defer l.fileFree(fp)

	if _, err := l.status("gp_camera_file_get",
		l.cameraFileGet(camPtr(cam), folder, name, int32(view), fp, ctxPtr(ctx))); err != nil {
		return nil, err
	}
	var (
		dataP  uintptr
		length uint64
	)
	if _, err := l.status("gp_file_get_data_and_size",
		l.fileGetDataAndSize(fp, unsafe.Pointer(&dataP), unsafe.Pointer(&length))); err != nil {
		return nil, err
	}
	out := make([]byte, length)
	if dataP != 0 && length > 0 {
		copy(out, unsafe.Slice((*byte)(unsafe.Pointer(dataP)), length))
	}
	return out, nil
}

func (l *Lib) FileRead(cam native.Camera, folder, name string, view native.FileView, offset uint64, buf []byte, ctx native.Context) (int, error) {
	if len(buf) == 0 {
		return 0, nil
	}
	size := uint64(len(buf))
	_, err := l.status("gp_camera_file_read",
		l.cameraFileRead(camPtr(cam), folder, name, int32(view), offset,
			unsafe.Pointer(&buf[0]), unsafe.Pointer(&size), ctxPtr(ctx)))
	if err != nil {
		return 0, err
	}
	return int(size), nil
}

func (l *Lib) DeleteFile(cam native.Camera, folder, name string, ctx native.Context) error {
	_, err := l.status("gp_camera_file_delete",
		l.cameraFileDelete(camPtr(cam), folder, name, ctxPtr(ctx)))
	return err
}

// --- capture and events ---

func (l *Lib) TriggerCapture(cam native.Camera, ctx native.Context) error {
	_, err := l.status("gp_camera_trigger_capture",
		l.cameraTriggerCapture(camPtr(cam), ctxPtr(ctx)))
	return err
}

func (l *Lib) CapturePreview(cam native.Camera, ctx native.Context) ([]byte, error) {
	fp, err := l.construct("CameraFile")
	if err != nil {
		return nil, err
	}
	defer l.fileFree(fp)

	if _, err := l.status("gp_camera_capture_preview",
		l.cameraCapturePreview(camPtr(cam), fp, ctxPtr(ctx))); err != nil {
		return nil, err
	}
	var (
		dataP  uintptr
		length uint64
	)
	if _, err := l.status("gp_file_get_data_and_size",
		l.fileGetDataAndSize(fp, unsafe.Pointer(&dataP), unsafe.Pointer(&length))); err != nil {
		return nil, err
	}
	out := make([]byte, length)
	if dataP != 0 && length > 0 {
		copy(out, unsafe.Slice((*byte)(unsafe.Pointer(dataP)), length))
	}
	return out, nil
}

func (l *Lib) WaitForEvent(cam native.Camera, timeout time.Duration, ctx native.Context) (native.Event, error) {
	var (
		evType int32
		data   uintptr
	)
	_, err := l.status("gp_camera_wait_for_event",
		l.cameraWaitForEvent(camPtr(cam), int32(timeout/time.Millisecond),
			unsafe.Pointer(&evType), unsafe.Pointer(&data), ctxPtr(ctx)))
	if err != nil {
		return native.Event{}, err
	}
	ev := native.Event{Type: native.EventType(evType)}
	if data != 0 {
		switch ev.Type {
		case native.EventFileAdded, native.EventFolderAdded:
			// Event data is a CameraFilePath: name[128] then folder[1024].
			ev.Name = goStringN(data, filePathNameSize)
			ev.Folder = goStringN(data+filePathNameSize, filePathFolderSize)
		}
		if l.free != nil {
			l.free(unsafe.Pointer(data))
		}
	}
	return ev, nil
}

// --- storage ---

func (l *Lib) StorageInfo(cam native.Camera, ctx native.Context) ([]native.StorageInfo, error) {
	var (
		infoP uintptr
		num   int32
	)
	_, err := l.status("gp_camera_get_storageinfo",
		l.cameraGetStorageinfo(camPtr(cam), unsafe.Pointer(&infoP), unsafe.Pointer(&num), ctxPtr(ctx)))
	if err != nil {
		return nil, err
	}
	if infoP != 0 && l.free != nil {
		defer l.free(unsafe.Pointer(infoP))
	}
	out := make([]native.StorageInfo, 0, num)
	recSize := unsafe.Sizeof(cameraStorageInformation{})
	for i := 0; i < int(num); i++ {
		rec := (*cameraStorageInformation)(unsafe.Pointer(infoP + uintptr(i)*recSize))
		out = append(out, native.StorageInfo{
			Fields:      native.StorageFields(rec.Fields),
			BaseDir:     cString(rec.Basedir[:]),
			Label:       cString(rec.Label[:]),
			Description: cString(rec.Description[:]),
			Type:        native.StorageType(rec.Type),
			Access:      native.StorageAccess(rec.Access),
			CapacityKB:  rec.CapacityKBytes,
			FreeKB:      rec.FreeKBytes,
			FreeImages:  rec.FreeImages,
		})
	}
	return out, nil
}

// translate converts a raw negative code without the exemption machinery.
func (l *Lib) translate(code int) error {
	return gperr.FromCode(code, l.ResultString(code))
}

var _ native.API = (*Lib)(nil)
