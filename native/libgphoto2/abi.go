//go:build linux || darwin

package libgphoto2

import "unsafe"

// C struct mirrors. Layouts are fixed by the libgphoto2 ABI; field order,
// buffer sizes and padding must match the headers exactly.

// CameraAbilities (gphoto2-abilities-list.h).
type cameraAbilities struct {
	Model            [128]byte
	Status           int32
	Port             int32
	Speed            [64]int32
	Operations       int32
	FileOperations   int32
	FolderOperations int32
	USBVendor        int32
	USBProduct       int32
	USBClass         int32
	USBSubclass      int32
	USBProtocol      int32
	Library          [1024]byte
	ID               [1024]byte
	DeviceType       int32
	Reserved         [7]int32
}

// CameraFileInfo (gphoto2-filesys.h): preview, audio, file - in that order.
type cameraFileInfoPreview struct {
	Fields int32
	Status int32
	Size   uint64
	Type   [64]byte
	Width  uint32
	Height uint32
}

type cameraFileInfoAudio struct {
	Fields int32
	Status int32
	Size   uint64
	Type   [64]byte
}

type cameraFileInfoFile struct {
	Fields      int32
	Status      int32
	Size        uint64
	Type        [64]byte
	Width       uint32
	Height      uint32
	Permissions int32
	_           [4]byte
	Mtime       int64
}

type cameraFileInfo struct {
	Preview cameraFileInfoPreview
	Audio   cameraFileInfoAudio
	File    cameraFileInfoFile
}

// CameraStorageInformation (gphoto2-filesys.h).
type cameraStorageInformation struct {
	Fields         int32
	Basedir        [256]byte
	Label          [256]byte
	Description    [256]byte
	Type           int32
	Fstype         int32
	Access         int32
	CapacityKBytes uint64
	FreeKBytes     uint64
	FreeImages     uint64
}

// CameraFilePath (gphoto2-camera.h): name[128] then folder[1024].
const (
	filePathNameSize   = 128
	filePathFolderSize = 1024
)

// goString reads a NUL-terminated C string at p.
func goString(p uintptr) string {
	if p == 0 {
		return ""
	}
	var b []byte
	for i := uintptr(0); ; i++ {
		c := *(*byte)(unsafe.Pointer(p + i))
		if c == 0 {
			break
		}
		b = append(b, c)
	}
	return string(b)
}

// goStringN reads a NUL-terminated C string from a fixed-size buffer at p.
func goStringN(p uintptr, max int) string {
	if p == 0 {
		return ""
	}
	b := unsafe.Slice((*byte)(unsafe.Pointer(p)), max)
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}

// cString returns the buffer contents up to the first NUL.
func cString(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}
