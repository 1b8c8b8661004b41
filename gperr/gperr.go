// Package gperr maps libgphoto2 status codes onto a closed error taxonomy.
//
// Every negative return value that crosses the native boundary becomes an
// *Error with a Kind from the fixed set below and the original code
// preserved. Codes without a dedicated kind become KindGeneric, carrying the
// message the native library resolves for them.
package gperr

import (
	"errors"
	"fmt"

	"github.com/cjeanneret/photobridge/native"
)

// Kind classifies a native error.
type Kind int

const (
	KindGeneric Kind = iota
	KindCorruptedData
	KindFileExists
	KindFileNotFound
	KindDirectoryNotFound
	KindDirectoryExists
	KindNoSpace
	KindUnsupportedDevice
	KindCameraBusy
	KindInvalidPath
	KindOperationCancelled
	KindCameraError
	KindOSFailure
)

var kindNames = map[Kind]string{
	KindGeneric:            "generic",
	KindCorruptedData:      "corrupted data",
	KindFileExists:         "file exists",
	KindFileNotFound:       "file not found",
	KindDirectoryNotFound:  "directory not found",
	KindDirectoryExists:    "directory exists",
	KindNoSpace:            "no space",
	KindUnsupportedDevice:  "unsupported device",
	KindCameraBusy:         "camera busy",
	KindInvalidPath:        "invalid path",
	KindOperationCancelled: "operation cancelled",
	KindCameraError:        "camera error",
	KindOSFailure:          "os failure",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error is a translated native error.
type Error struct {
	Kind    Kind
	Code    int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("gphoto2: %s (code %d)", e.Message, e.Code)
}

// Is makes errors.Is match two *Error values by kind, so callers can compare
// against sentinels like &Error{Kind: KindCameraBusy}.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// Fixed code-to-kind mapping with the messages the original binding used.
var codeKinds = map[int]struct {
	kind Kind
	msg  string
}{
	native.ErrCorruptedData:     {KindCorruptedData, "corrupted data received"},
	native.ErrFileExists:        {KindFileExists, "file already exists"},
	native.ErrFileNotFound:      {KindFileNotFound, "file not found"},
	native.ErrDirectoryNotFound: {KindDirectoryNotFound, "directory not found"},
	native.ErrDirectoryExists:   {KindDirectoryExists, "directory already exists"},
	native.ErrNoSpace:           {KindNoSpace, "not enough space"},
	native.ErrModelNotFound:     {KindUnsupportedDevice, "camera model not found"},
	native.ErrCameraBusy:        {KindCameraBusy, "camera is busy"},
	native.ErrPathNotAbsolute:   {KindInvalidPath, "specified path is not absolute"},
	native.ErrCancel:            {KindOperationCancelled, "operation cancelled"},
	native.ErrCameraError:       {KindCameraError, "unspecified camera error"},
	native.ErrOSFailure:         {KindOSFailure, "unspecified failure of the operating system"},
}

// FromCode translates a native status code. resolved is the message the
// native library resolves for the code (gp_result_as_string); it is used
// only when the code has no dedicated kind.
func FromCode(code int, resolved string) *Error {
	if m, ok := codeKinds[code]; ok {
		return &Error{Kind: m.kind, Code: code, Message: m.msg}
	}
	if resolved == "" {
		resolved = fmt.Sprintf("unknown error %d", code)
	}
	return &Error{Kind: KindGeneric, Code: code, Message: resolved}
}

// KindOf returns the kind of err if it is (or wraps) an *Error, and whether
// it was one.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// CodeOf returns the preserved native code, or 0 when err is not native.
func CodeOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return 0
}

// IsKind reports whether err is (or wraps) an *Error of the given kind.
func IsKind(err error, k Kind) bool {
	got, ok := KindOf(err)
	return ok && got == k
}

// IsIO reports whether err is one of the camera I/O kinds. The capture path
// tolerates these when deleting a just-downloaded RAM file that is already
// gone.
func IsIO(err error) bool {
	k, ok := KindOf(err)
	if !ok {
		return false
	}
	switch k {
	case KindCorruptedData, KindFileExists, KindFileNotFound,
		KindDirectoryNotFound, KindDirectoryExists, KindNoSpace:
		return true
	}
	return false
}
