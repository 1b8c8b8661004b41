// Package native declares the libgphoto2 ABI surface consumed by the rest of
// the module: the numeric constants fixed by the library, the opaque handle
// types, and the API interface implemented by the runtime-loaded backend
// (native/libgphoto2) and the in-memory backend (native/simulator).
package native

import "time"

// Result codes. Negative values are status codes, GP_OK means success.
// These values are fixed by the libgphoto2 ABI and must not be renumbered.
const (
	OK = 0

	// Port-level errors (gphoto2-port-result.h).
	ErrGeneric            = -1
	ErrBadParameters      = -2
	ErrNoMemory           = -3
	ErrLibrary            = -4
	ErrUnknownPort        = -5
	ErrNotSupported       = -6
	ErrIO                 = -7
	ErrFixedLimitExceeded = -8
	ErrTimeout            = -10

	// Camera-level errors (gphoto2-result.h).
	ErrCorruptedData     = -102
	ErrFileExists        = -103
	ErrModelNotFound     = -105
	ErrDirectoryNotFound = -107
	ErrFileNotFound      = -108
	ErrDirectoryExists   = -109
	ErrCameraBusy        = -110
	ErrPathNotAbsolute   = -111
	ErrCancel            = -112
	ErrCameraError       = -113
	ErrOSFailure         = -114
	ErrNoSpace           = -115
)

// WidgetType is the native configuration widget type tag (CameraWidgetType).
type WidgetType int32

const (
	WidgetWindow  WidgetType = 0
	WidgetSection WidgetType = 1
	WidgetText    WidgetType = 2
	WidgetRange   WidgetType = 3
	WidgetToggle  WidgetType = 4
	WidgetRadio   WidgetType = 5
	WidgetMenu    WidgetType = 6
	WidgetButton  WidgetType = 7
	WidgetDate    WidgetType = 8
)

// EventType is the native camera event type (CameraEventType).
type EventType int32

const (
	EventUnknown         EventType = 0
	EventTimeout         EventType = 1
	EventFileAdded       EventType = 2
	EventFolderAdded     EventType = 3
	EventCaptureComplete EventType = 4
)

// FileView selects which representation of a remote file a transfer
// operation reads (CameraFileType).
type FileView int32

const (
	ViewPreview  FileView = 0
	ViewNormal   FileView = 1
	ViewRaw      FileView = 2
	ViewAudio    FileView = 3
	ViewExif     FileView = 4
	ViewMetadata FileView = 5
)

// ViewNames maps file views to the names used on CLI and API surfaces.
var ViewNames = map[FileView]string{
	ViewPreview:  "preview",
	ViewNormal:   "normal",
	ViewRaw:      "raw",
	ViewAudio:    "audio",
	ViewExif:     "exif",
	ViewMetadata: "metadata",
}

// ViewByName is the inverse of ViewNames.
func ViewByName(name string) (FileView, bool) {
	for v, n := range ViewNames {
		if n == name {
			return v, true
		}
	}
	return 0, false
}

// FilePermission is the native file permission bit field.
type FilePermission int32

const (
	PermRead   FilePermission = 1 << 0
	PermDelete FilePermission = 1 << 1
)

// LogLevel is the native logging level (GPLogLevel).
type LogLevel int32

const (
	LogError   LogLevel = 0
	LogVerbose LogLevel = 1
	LogDebug   LogLevel = 2
	LogData    LogLevel = 3
)

// CameraOperation is the bit field of operations a camera driver advertises.
type CameraOperation int32

const (
	OpCaptureImage   CameraOperation = 1 << 0
	OpCaptureVideo   CameraOperation = 1 << 1
	OpCaptureAudio   CameraOperation = 1 << 2
	OpCapturePreview CameraOperation = 1 << 3
	OpConfig         CameraOperation = 1 << 4
	OpTriggerCapture CameraOperation = 1 << 5
)

// FileOperation is the bit field of per-file operations a driver advertises.
type FileOperation int32

const (
	FileOpDelete  FileOperation = 1 << 1
	FileOpPreview FileOperation = 1 << 3
	FileOpRaw     FileOperation = 1 << 4
	FileOpAudio   FileOperation = 1 << 5
	FileOpExif    FileOperation = 1 << 6
)

// FolderOperation is the bit field of per-folder operations a driver
// advertises.
type FolderOperation int32

const (
	FolderOpDeleteAll FolderOperation = 1 << 0
	FolderOpPutFile   FolderOperation = 1 << 1
	FolderOpMakeDir   FolderOperation = 1 << 2
	FolderOpRemoveDir FolderOperation = 1 << 3
)

// DeviceType discriminates still cameras from audio players.
type DeviceType int32

const (
	DeviceStillCamera DeviceType = 0
	DeviceAudioPlayer DeviceType = 1
)

// StorageFields is the bit field saying which members of a storage
// information record are populated.
type StorageFields int32

const (
	StorageFieldBase        StorageFields = 1 << 0
	StorageFieldLabel       StorageFields = 1 << 1
	StorageFieldDescription StorageFields = 1 << 2
	StorageFieldAccess      StorageFields = 1 << 3
	StorageFieldType        StorageFields = 1 << 4
	StorageFieldFSType      StorageFields = 1 << 5
	StorageFieldCapacity    StorageFields = 1 << 6
	StorageFieldFreeKBytes  StorageFields = 1 << 7
	StorageFieldFreeImages  StorageFields = 1 << 8
)

// StorageType enumerates the physical kind of a storage medium.
type StorageType int32

const (
	StorageUnknown      StorageType = 0
	StorageFixedROM     StorageType = 1
	StorageRemovableROM StorageType = 2
	StorageFixedRAM     StorageType = 3
	StorageRemovableRAM StorageType = 4
)

// StorageAccess enumerates the access capability of a storage medium.
type StorageAccess int32

const (
	AccessReadWrite          StorageAccess = 0
	AccessReadOnly           StorageAccess = 1
	AccessReadOnlyWithDelete StorageAccess = 2
)

// Opaque handles. The concrete value depends on the backend: the libgphoto2
// backend stores raw pointers, the simulator stores its own structs. Every
// handle is exclusively owned by the adapter object that created it.
type (
	Camera        interface{}
	Context       interface{}
	Widget        interface{}
	List          interface{}
	PortInfo      interface{}
	PortInfoList  interface{}
	AbilitiesList interface{}
)

// Abilities is the decoded CameraAbilities record for one driver/model.
type Abilities struct {
	Model            string
	Library          string
	DeviceType       DeviceType
	Operations       CameraOperation
	FileOperations   FileOperation
	FolderOperations FolderOperation
	USBVendor        int
	USBProduct       int
	USBClass         int
	USBSubclass      int
	USBProtocol      int
}

// FileInfo is the decoded CameraFileInfoFile record for one remote file.
type FileInfo struct {
	Size        uint64
	MIMEType    string
	Width       uint32
	Height      uint32
	Permissions FilePermission
	Modified    time.Time
}

// StorageInfo is the decoded CameraStorageInformation record. Fields says
// which members the device actually populated.
type StorageInfo struct {
	Fields      StorageFields
	BaseDir     string
	Label       string
	Description string
	Type        StorageType
	Access      StorageAccess
	CapacityKB  uint64
	FreeKB      uint64
	FreeImages  uint64
}

// Event is one decoded camera event. Folder and Name are populated for
// EventFileAdded and EventFolderAdded.
type Event struct {
	Type   EventType
	Folder string
	Name   string
}

// API is the native function surface the adapter layers are written against.
// The libgphoto2 backend translates every status-code return into a
// *gperr.Error before it crosses this interface; the simulator constructs
// the same errors directly.
type API interface {
	// Library-level calls. LibraryVersion and ResultString return semantic
	// output, not status codes, and are never error-checked.
	LibraryVersion() string
	ResultString(code int) string
	NewContext() Context

	// Camera handle lifecycle.
	NewCamera() (Camera, error)
	InitCamera(cam Camera, ctx Context) error
	ExitCamera(cam Camera, ctx Context) error
	FreeCamera(cam Camera) error
	CameraAbilities(cam Camera) (Abilities, error)
	SetPortInfo(cam Camera, info PortInfo) error

	// Port enumeration. LookupPortPath overloads its return value: a
	// zero-based index on success, a negative status code on failure.
	NewPortInfoList() (PortInfoList, error)
	LoadPortInfoList(l PortInfoList) error
	LookupPortPath(l PortInfoList, path string) (int, error)
	PortInfoAt(l PortInfoList, idx int) (PortInfo, error)
	FreePortInfoList(l PortInfoList) error

	// Abilities enumeration. LookupModel has the same index-or-error
	// overload as LookupPortPath.
	NewAbilitiesList() (AbilitiesList, error)
	LoadAbilitiesList(l AbilitiesList, ctx Context) error
	DetectCameras(abilities AbilitiesList, ports PortInfoList, out List, ctx Context) error
	LookupModel(l AbilitiesList, model string) (int, error)
	AbilitiesAt(l AbilitiesList, idx int) (Abilities, error)
	AbilitiesCount(l AbilitiesList) (int, error)
	FreeAbilitiesList(l AbilitiesList) error

	// Name/value list enumeration. ListCount returns a count, not a status.
	NewList() (List, error)
	ListCount(l List) int
	ListName(l List, idx int) (string, error)
	ListValue(l List, idx int) (string, error)
	FreeList(l List) error

	// Widget tree navigation and typed value access.
	ConfigRoot(cam Camera, ctx Context) (Widget, error)
	CommitConfig(cam Camera, root Widget, ctx Context) error
	FreeWidget(w Widget) error
	WidgetChildCount(w Widget) (int, error)
	WidgetChild(w Widget, idx int) (Widget, error)
	WidgetChildByName(w Widget, name string) (Widget, error)
	WidgetName(w Widget) (string, error)
	WidgetType(w Widget) (WidgetType, error)
	WidgetLabel(w Widget) (string, error)
	WidgetInfo(w Widget) (string, error)
	WidgetReadonly(w Widget) (bool, error)
	WidgetString(w Widget) (string, error)
	WidgetFloat(w Widget) (float32, error)
	WidgetInt(w Widget) (int, error)
	WidgetRange(w Widget) (min, max, step float32, err error)
	WidgetChoiceCount(w Widget) (int, error)
	WidgetChoice(w Widget, idx int) (string, error)
	SetWidgetString(w Widget, v string) error
	SetWidgetFloat(w Widget, v float32) error
	SetWidgetInt(w Widget, v int) error

	// Remote filesystem.
	ListFiles(cam Camera, folder string, out List, ctx Context) error
	ListFolders(cam Camera, folder string, out List, ctx Context) error
	MakeDir(cam Camera, parent, name string, ctx Context) error
	RemoveDir(cam Camera, parent, name string, ctx Context) error
	PutFile(cam Camera, folder, name string, view FileView, data []byte, ctx Context) error
	FileInfo(cam Camera, folder, name string, ctx Context) (FileInfo, error)
	FileGet(cam Camera, folder, name string, view FileView, ctx Context) ([]byte, error)
	FileRead(cam Camera, folder, name string, view FileView, offset uint64, buf []byte, ctx Context) (int, error)
	DeleteFile(cam Camera, folder, name string, ctx Context) error

	// Capture and events. WaitForEvent blocks for at most timeout.
	TriggerCapture(cam Camera, ctx Context) error
	CapturePreview(cam Camera, ctx Context) ([]byte, error)
	WaitForEvent(cam Camera, timeout time.Duration, ctx Context) (Event, error)

	// Storage enumeration.
	StorageInfo(cam Camera, ctx Context) ([]StorageInfo, error)
}
