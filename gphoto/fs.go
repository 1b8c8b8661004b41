package gphoto

import (
	"fmt"
	"io"
	"os"
	gopath "path"

	"github.com/cjeanneret/photobridge/gperr"
	"github.com/cjeanneret/photobridge/native"
)

// ErrNotFound matches any native file-not-found error via errors.Is.
var ErrNotFound = &gperr.Error{
	Kind:    gperr.KindFileNotFound,
	Code:    native.ErrFileNotFound,
	Message: "file not found",
}

// readerChunk is how much Reader pulls from the camera per native read.
const readerChunk = 64 << 10

// Directory is one folder on the camera's filesystem. It holds no native
// state; every listing talks to the camera.
type Directory struct {
	cam  *Camera
	path string
}

func (d *Directory) Path() string { return d.path }

// Name returns the last path element.
func (d *Directory) Name() string {
	if d.path == "/" {
		return "/"
	}
	return gopath.Base(d.path)
}

// Parent returns the containing directory, or false at the root.
func (d *Directory) Parent() (*Directory, bool) {
	if d.path == "/" {
		return nil, false
	}
	return &Directory{cam: d.cam, path: gopath.Dir(d.path)}, true
}

// Child returns the named subdirectory without checking it exists.
func (d *Directory) Child(name string) *Directory {
	return &Directory{cam: d.cam, path: gopath.Join(d.path, name)}
}

func (d *Directory) list(kind string) ([]string, error) {
	d.cam.ops.Lock()
	defer d.cam.ops.Unlock()
	cam, ctx, err := d.cam.ensure()
	if err != nil {
		return nil, err
	}
	lst, err := d.cam.api.NewList()
	if err != nil {
		return nil, err
	}
	defer d.cam.api.FreeList(lst)

	if kind == "files" {
		err = d.cam.api.ListFiles(cam, d.path, lst, ctx)
	} else {
		err = d.cam.api.ListFolders(cam, d.path, lst, ctx)
	}
	if err != nil {
		return nil, err
	}
	n := d.cam.api.ListCount(lst)
	names := make([]string, 0, n)
	for i := 0; i < n; i++ {
		name, err := d.cam.api.ListName(lst, i)
		if err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, nil
}

// Files lists the files directly in this folder.
func (d *Directory) Files() ([]*File, error) {
	names, err := d.list("files")
	if err != nil {
		return nil, err
	}
	out := make([]*File, 0, len(names))
	for _, name := range names {
		out = append(out, &File{cam: d.cam, folder: d.path, name: name})
	}
	return out, nil
}

// Dirs lists the subdirectories directly in this folder.
func (d *Directory) Dirs() ([]*Directory, error) {
	names, err := d.list("folders")
	if err != nil {
		return nil, err
	}
	out := make([]*Directory, 0, len(names))
	for _, name := range names {
		out = append(out, d.Child(name))
	}
	return out, nil
}

// File returns the named file in this folder without checking it exists;
// Info confirms existence.
func (d *Directory) File(name string) *File {
	return &File{cam: d.cam, folder: d.path, name: name}
}

// SupportedOps reports the folder operations the driver advertises. Drivers
// that do not flag an operation usually fail it with a not-supported error
// rather than silently ignoring it.
func (d *Directory) SupportedOps() (native.FolderOperation, error) {
	ab, err := d.cam.Abilities()
	if err != nil {
		return 0, err
	}
	return ab.FolderOperations, nil
}

// Create makes this directory on the camera. Fails with a directory-exists
// error when it is already there.
func (d *Directory) Create() error {
	if d.path == "/" {
		return fmt.Errorf("camera fs: cannot create the root")
	}
	d.cam.ops.Lock()
	defer d.cam.ops.Unlock()
	cam, ctx, err := d.cam.ensure()
	if err != nil {
		return err
	}
	return d.cam.api.MakeDir(cam, gopath.Dir(d.path), d.Name(), ctx)
}

// Remove deletes this directory. The camera rejects non-empty directories.
func (d *Directory) Remove() error {
	if d.path == "/" {
		return fmt.Errorf("camera fs: cannot remove the root")
	}
	d.cam.ops.Lock()
	defer d.cam.ops.Unlock()
	cam, ctx, err := d.cam.ensure()
	if err != nil {
		return err
	}
	return d.cam.api.RemoveDir(cam, gopath.Dir(d.path), d.Name(), ctx)
}

// Upload writes data as a new file in this folder.
func (d *Directory) Upload(name string, data []byte) error {
	d.cam.ops.Lock()
	defer d.cam.ops.Unlock()
	cam, ctx, err := d.cam.ensure()
	if err != nil {
		return err
	}
	return d.cam.api.PutFile(cam, d.path, name, native.ViewNormal, data, ctx)
}

// File is one file on the camera's filesystem.
type File struct {
	cam    *Camera
	folder string
	name   string

	info    native.FileInfo
	hasInfo bool
}

func (f *File) Name() string   { return f.name }
func (f *File) Folder() string { return f.folder }
func (f *File) Path() string   { return gopath.Join(f.folder, f.name) }

// SupportedOps reports the per-file operations the driver advertises.
func (f *File) SupportedOps() (native.FileOperation, error) {
	ab, err := f.cam.Abilities()
	if err != nil {
		return 0, err
	}
	return ab.FileOperations, nil
}

// Info fetches the file's metadata. The result is cached; a second call
// does not talk to the camera. Any fetch failure reports as ErrNotFound:
// whatever the driver's reason, the file is not usable at this path.
func (f *File) Info() (native.FileInfo, error) {
	if f.hasInfo {
		return f.info, nil
	}
	f.cam.ops.Lock()
	defer f.cam.ops.Unlock()
	cam, ctx, err := f.cam.ensure()
	if err != nil {
		return native.FileInfo{}, err
	}
	info, err := f.cam.api.FileInfo(cam, f.folder, f.name, ctx)
	if err != nil {
		return native.FileInfo{}, fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	f.info, f.hasInfo = info, true
	return info, nil
}

// Size returns the file size from its metadata.
func (f *File) Size() (uint64, error) {
	info, err := f.Info()
	if err != nil {
		return 0, err
	}
	return info.Size, nil
}

// checkView rejects representations the driver does not advertise. The
// normal and metadata views are always worth asking for.
func (f *File) checkView(view native.FileView) error {
	ab, err := f.cam.driverAbilities()
	if err != nil {
		return err
	}
	var need native.FileOperation
	switch view {
	case native.ViewNormal, native.ViewMetadata:
		return nil
	case native.ViewPreview:
		need = native.FileOpPreview
	case native.ViewRaw:
		need = native.FileOpRaw
	case native.ViewAudio:
		need = native.FileOpAudio
	case native.ViewExif:
		need = native.FileOpExif
	default:
		return fmt.Errorf("camera fs: unknown view %d", view)
	}
	if ab.FileOperations&need == 0 {
		return fmt.Errorf("camera fs: driver does not support the %s view", native.ViewNames[view])
	}
	return nil
}

// Data downloads the requested representation of the file in one piece.
func (f *File) Data(view native.FileView) ([]byte, error) {
	f.cam.ops.Lock()
	defer f.cam.ops.Unlock()
	return f.data(view)
}

// data is Data without the operation lock, for composed camera operations
// that already hold it.
func (f *File) data(view native.FileView) ([]byte, error) {
	if err := f.checkView(view); err != nil {
		return nil, err
	}
	cam, ctx, err := f.cam.ensure()
	if err != nil {
		return nil, err
	}
	return f.cam.api.FileGet(cam, f.folder, f.name, view, ctx)
}

// Save downloads the normal view to the local path.
func (f *File) Save(path string) error {
	data, err := f.Data(native.ViewNormal)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Reader streams the requested representation in fixed-size chunks, for
// files too large to hold in memory.
func (f *File) Reader(view native.FileView) (io.Reader, error) {
	f.cam.ops.Lock()
	defer f.cam.ops.Unlock()
	if err := f.checkView(view); err != nil {
		return nil, err
	}
	if _, _, err := f.cam.ensure(); err != nil {
		return nil, err
	}
	return &fileReader{file: f, view: view}, nil
}

// Remove deletes the file from the camera.
func (f *File) Remove() error {
	f.cam.ops.Lock()
	defer f.cam.ops.Unlock()
	return f.remove()
}

func (f *File) remove() error {
	cam, ctx, err := f.cam.ensure()
	if err != nil {
		return err
	}
	return f.cam.api.DeleteFile(cam, f.folder, f.name, ctx)
}

type fileReader struct {
	file   *File
	view   native.FileView
	offset uint64
	done   bool
}

func (r *fileReader) Read(p []byte) (int, error) {
	if r.done {
		return 0, io.EOF
	}
	if len(p) > readerChunk {
		p = p[:readerChunk]
	}
	r.file.cam.ops.Lock()
	defer r.file.cam.ops.Unlock()
	cam, ctx, err := r.file.cam.ensure()
	if err != nil {
		return 0, err
	}
	n, err := r.file.cam.api.FileRead(cam, r.file.folder, r.file.name, r.view, r.offset, p, ctx)
	if err != nil {
		return 0, err
	}
	r.offset += uint64(n)
	if n < len(p) {
		// Short read means the camera ran out of data.
		r.done = true
		if n == 0 {
			return 0, io.EOF
		}
	}
	return n, nil
}
