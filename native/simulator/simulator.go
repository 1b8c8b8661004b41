// Package simulator implements native.API against an in-memory device.
//
// It plays the same role the mock GPIO driver plays for the panorama rig:
// a backend selectable from configuration so the rest of the stack can run
// without hardware. On top of that it records per-call counters and commit
// targets so tests can assert exact native call sequences.
package simulator

import (
	"fmt"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/cjeanneret/photobridge/gperr"
	"github.com/cjeanneret/photobridge/native"
)

// Widget is a scripted configuration tree node.
type Widget struct {
	Name     string
	Label    string
	Info     string
	Type     native.WidgetType
	ReadOnly bool

	// Value slots; which one is meaningful depends on Type.
	Str   string
	Float float32
	Int   int

	Min, Max, Step float32
	Choices        []string

	Children []*Widget
	parent   *Widget
}

// Tree-building helpers for tests and the default device.

func Window(name string, children ...*Widget) *Widget {
	return &Widget{Name: name, Label: name, Type: native.WidgetWindow, Children: children}
}

func Section(name string, children ...*Widget) *Widget {
	return &Widget{Name: name, Label: name, Type: native.WidgetSection, Children: children}
}

func Text(name, value string) *Widget {
	return &Widget{Name: name, Label: name, Type: native.WidgetText, Str: value}
}

func Range(name string, value, min, max, step float32) *Widget {
	return &Widget{Name: name, Label: name, Type: native.WidgetRange, Float: value, Min: min, Max: max, Step: step}
}

func Toggle(name string, value int) *Widget {
	return &Widget{Name: name, Label: name, Type: native.WidgetToggle, Int: value}
}

func Date(name string, value int) *Widget {
	return &Widget{Name: name, Label: name, Type: native.WidgetDate, Int: value}
}

func Selection(name, value string, choices ...string) *Widget {
	return &Widget{Name: name, Label: name, Type: native.WidgetRadio, Str: value, Choices: choices}
}

func Button(name string) *Widget {
	return &Widget{Name: name, Label: name, Type: native.WidgetButton}
}

// ReadOnlyW marks a widget read-only and returns it.
func ReadOnlyW(w *Widget) *Widget {
	w.ReadOnly = true
	return w
}

// File is a scripted remote file.
type File struct {
	Name  string
	Data  []byte
	Views map[native.FileView][]byte
	Info  native.FileInfo
	// NoInfo makes gp_camera_file_get_info fail for this file.
	NoInfo bool
}

// Dir is a scripted remote directory.
type Dir struct {
	Name  string
	Dirs  []*Dir
	Files []*File
}

// Detected describes one device the autodetect call reports.
type Detected struct {
	Model string
	Port  string // e.g. "usb:001,005"
}

// Sim is the in-memory backend.
type Sim struct {
	mu sync.Mutex

	Root      *Widget
	FS        *Dir
	Abilities native.Abilities
	Storage   []native.StorageInfo
	Detected  []Detected
	Supported []native.Abilities
	Version   string

	// CaptureFolder is where TriggerCapture places new files.
	CaptureFolder string

	calls   map[string]int
	fail    map[string]int
	events  []native.Event
	commits []native.Widget
	capSeq  int
}

// New returns an empty simulator; populate Root, FS and Abilities before use.
func New() *Sim {
	return &Sim{
		Root:          Window("main"),
		FS:            &Dir{Name: "/"},
		Version:       "2.5.31-sim",
		CaptureFolder: "/store_00010001",
		calls:         make(map[string]int),
		fail:          make(map[string]int),
	}
}

// NewDefault returns a simulator populated with a plausible camera: a config
// tree with settings/status sections, one storage card with two images, and
// full capture abilities. Used by the CLI's simulator backend.
func NewDefault() *Sim {
	s := New()
	s.Root = Window("main",
		Section("settings",
			Selection("capturetarget", "Internal RAM", "Internal RAM", "Memory card"),
			Selection("imageformat", "JPEG Fine", "JPEG Basic", "JPEG Fine", "NEF (Raw)"),
			Text("artist", ""),
			Range("burstnumber", 1, 1, 100, 1),
		),
		Section("actions",
			Toggle("movie", 0),
			Button("autofocusdrive"),
		),
		Section("status",
			ReadOnlyW(Text("batterylevel", "82%")),
			ReadOnlyW(Text("cameramodel", "Simulated DSLR")),
		),
	)
	jpeg := []byte{0xff, 0xd8, 0xff, 0xe0, 0x00, 0x10, 'J', 'F', 'I', 'F'}
	s.FS = &Dir{Name: "/", Dirs: []*Dir{{
		Name: "store_00010001",
		Dirs: []*Dir{{
			Name: "DCIM",
			Dirs: []*Dir{{
				Name: "100SIMUL",
				Files: []*File{
					{Name: "IMG_0001.JPG", Data: jpeg, Info: native.FileInfo{
						Size: uint64(len(jpeg)), MIMEType: "image/jpeg",
						Width: 6000, Height: 4000,
						Permissions: native.PermRead | native.PermDelete,
						Modified:    time.Unix(1700000000, 0),
					}},
					{Name: "IMG_0002.JPG", Data: jpeg, Info: native.FileInfo{
						Size: uint64(len(jpeg)), MIMEType: "image/jpeg",
						Width: 6000, Height: 4000,
						Permissions: native.PermRead | native.PermDelete,
						Modified:    time.Unix(1700003600, 0),
					}},
				},
			}},
		}},
	}}}
	s.Abilities = native.Abilities{
		Model:      "Simulated DSLR",
		Library:    "camlibs/ptp2",
		DeviceType: native.DeviceStillCamera,
		Operations: native.OpCaptureImage | native.OpCapturePreview |
			native.OpConfig | native.OpTriggerCapture | native.OpCaptureVideo,
		FileOperations: native.FileOpDelete | native.FileOpPreview |
			native.FileOpRaw | native.FileOpExif,
		FolderOperations: native.FolderOpPutFile | native.FolderOpMakeDir |
			native.FolderOpRemoveDir | native.FolderOpDeleteAll,
		USBVendor:  0x04b0,
		USBProduct: 0x0443,
	}
	s.Storage = []native.StorageInfo{{
		Fields: native.StorageFieldBase | native.StorageFieldLabel |
			native.StorageFieldDescription | native.StorageFieldType |
			native.StorageFieldAccess | native.StorageFieldCapacity |
			native.StorageFieldFreeKBytes | native.StorageFieldFreeImages,
		BaseDir:     "/store_00010001",
		Label:       "SDCARD",
		Description: "Simulated SD card",
		Type:        native.StorageRemovableRAM,
		Access:      native.AccessReadWrite,
		CapacityKB:  31254528,
		FreeKB:      29855744,
		FreeImages:  4213,
	}}
	s.Detected = []Detected{{Model: "Simulated DSLR", Port: "usb:001,005"}}
	s.Supported = []native.Abilities{s.Abilities}
	return s
}

// Calls returns how many times the named native call ran.
func (s *Sim) Calls(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[name]
}

// ResetCalls clears the call counters.
func (s *Sim) ResetCalls() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = make(map[string]int)
}

// FailWith makes the named call return the given native code until cleared.
func (s *Sim) FailWith(name string, code int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail[name] = code
}

// ClearFailure removes an injected failure.
func (s *Sim) ClearFailure(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.fail, name)
}

// CommitTargets returns the widgets gp_camera_set_config was called with.
func (s *Sim) CommitTargets() []native.Widget {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]native.Widget, len(s.commits))
	copy(out, s.commits)
	return out
}

// PushEvent queues an event for WaitForEvent to return.
func (s *Sim) PushEvent(ev native.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

// enter counts the call and returns an injected failure, if any.
func (s *Sim) enter(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[name]++
	if code, ok := s.fail[name]; ok {
		return gperr.FromCode(code, s.resultString(code))
	}
	return nil
}

var resultStrings = map[int]string{
	native.OK:             "No error",
	native.ErrGeneric:     "Unspecified error",
	native.ErrIO:          "I/O problem",
	native.ErrTimeout:     "Timeout reading from or writing to the port",
	native.ErrNoMemory:    "Out of memory",
	native.ErrUnknownPort: "Unknown port",
}

func (s *Sim) resultString(code int) string {
	if msg, ok := resultStrings[code]; ok {
		return msg
	}
	return fmt.Sprintf("Unknown error %d", code)
}

// --- handle types ---

type simCamera struct {
	inited bool
	port   string
}

type simContext struct{}

type simList struct {
	names  []string
	values []string
	freed  bool
}

type simPortInfo struct{ port string }

type simPortList struct{ ports []string }

type simAbilitiesList struct{ loaded bool }

// --- library level ---

func (s *Sim) LibraryVersion() string { _ = s.enter("gp_library_version"); return s.Version }

func (s *Sim) ResultString(code int) string {
	_ = s.enter("gp_result_as_string")
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resultString(code)
}

func (s *Sim) NewContext() native.Context {
	_ = s.enter("gp_context_new")
	return &simContext{}
}

// --- camera lifecycle ---

func (s *Sim) NewCamera() (native.Camera, error) {
	if err := s.enter("gp_camera_new"); err != nil {
		return nil, err
	}
	return &simCamera{}, nil
}

func (s *Sim) InitCamera(cam native.Camera, _ native.Context) error {
	if err := s.enter("gp_camera_init"); err != nil {
		return err
	}
	cam.(*simCamera).inited = true
	return nil
}

func (s *Sim) ExitCamera(native.Camera, native.Context) error {
	return s.enter("gp_camera_exit")
}

func (s *Sim) FreeCamera(native.Camera) error {
	return s.enter("gp_camera_unref")
}

func (s *Sim) CameraAbilities(native.Camera) (native.Abilities, error) {
	if err := s.enter("gp_camera_get_abilities"); err != nil {
		return native.Abilities{}, err
	}
	return s.Abilities, nil
}

func (s *Sim) SetPortInfo(cam native.Camera, info native.PortInfo) error {
	if err := s.enter("gp_camera_set_port_info"); err != nil {
		return err
	}
	cam.(*simCamera).port = info.(*simPortInfo).port
	return nil
}

// --- port enumeration ---

func (s *Sim) NewPortInfoList() (native.PortInfoList, error) {
	if err := s.enter("gp_port_info_list_new"); err != nil {
		return nil, err
	}
	return &simPortList{}, nil
}

func (s *Sim) LoadPortInfoList(l native.PortInfoList) error {
	if err := s.enter("gp_port_info_list_load"); err != nil {
		return err
	}
	pl := l.(*simPortList)
	pl.ports = pl.ports[:0]
	for _, d := range s.Detected {
		pl.ports = append(pl.ports, d.Port)
	}
	return nil
}

func (s *Sim) LookupPortPath(l native.PortInfoList, path string) (int, error) {
	if err := s.enter("gp_port_info_list_lookup_path"); err != nil {
		return 0, err
	}
	for i, p := range l.(*simPortList).ports {
		if p == path {
			return i, nil
		}
	}
	return 0, gperr.FromCode(native.ErrUnknownPort, s.ResultString(native.ErrUnknownPort))
}

func (s *Sim) PortInfoAt(l native.PortInfoList, idx int) (native.PortInfo, error) {
	if err := s.enter("gp_port_info_list_get_info"); err != nil {
		return nil, err
	}
	ports := l.(*simPortList).ports
	if idx < 0 || idx >= len(ports) {
		return nil, gperr.FromCode(native.ErrBadParameters, s.ResultString(native.ErrBadParameters))
	}
	return &simPortInfo{port: ports[idx]}, nil
}

func (s *Sim) FreePortInfoList(native.PortInfoList) error {
	return s.enter("gp_port_info_list_free")
}

// --- abilities enumeration ---

func (s *Sim) NewAbilitiesList() (native.AbilitiesList, error) {
	if err := s.enter("gp_abilities_list_new"); err != nil {
		return nil, err
	}
	return &simAbilitiesList{}, nil
}

func (s *Sim) LoadAbilitiesList(l native.AbilitiesList, _ native.Context) error {
	if err := s.enter("gp_abilities_list_load"); err != nil {
		return err
	}
	l.(*simAbilitiesList).loaded = true
	return nil
}

func (s *Sim) DetectCameras(_ native.AbilitiesList, _ native.PortInfoList, out native.List, _ native.Context) error {
	if err := s.enter("gp_abilities_list_detect"); err != nil {
		return err
	}
	lst := out.(*simList)
	for _, d := range s.Detected {
		lst.names = append(lst.names, d.Model)
		lst.values = append(lst.values, d.Port)
	}
	return nil
}

func (s *Sim) LookupModel(_ native.AbilitiesList, model string) (int, error) {
	if err := s.enter("gp_abilities_list_lookup_model"); err != nil {
		return 0, err
	}
	for i, a := range s.Supported {
		if a.Model == model {
			return i, nil
		}
	}
	return 0, gperr.FromCode(native.ErrModelNotFound, s.ResultString(native.ErrModelNotFound))
}

func (s *Sim) AbilitiesAt(_ native.AbilitiesList, idx int) (native.Abilities, error) {
	if err := s.enter("gp_abilities_list_get_abilities"); err != nil {
		return native.Abilities{}, err
	}
	if idx < 0 || idx >= len(s.Supported) {
		return native.Abilities{}, gperr.FromCode(native.ErrBadParameters, s.resultString(native.ErrBadParameters))
	}
	return s.Supported[idx], nil
}

func (s *Sim) AbilitiesCount(native.AbilitiesList) (int, error) {
	if err := s.enter("gp_abilities_list_count"); err != nil {
		return 0, err
	}
	return len(s.Supported), nil
}

func (s *Sim) FreeAbilitiesList(native.AbilitiesList) error {
	return s.enter("gp_abilities_list_free")
}

// --- lists ---

func (s *Sim) NewList() (native.List, error) {
	if err := s.enter("gp_list_new"); err != nil {
		return nil, err
	}
	return &simList{}, nil
}

func (s *Sim) ListCount(l native.List) int {
	_ = s.enter("gp_list_count")
	lst := l.(*simList)
	if lst.freed {
		return 0
	}
	return len(lst.names)
}

func (s *Sim) ListName(l native.List, idx int) (string, error) {
	if err := s.enter("gp_list_get_name"); err != nil {
		return "", err
	}
	lst := l.(*simList)
	if lst.freed || idx < 0 || idx >= len(lst.names) {
		return "", gperr.FromCode(native.ErrBadParameters, s.resultString(native.ErrBadParameters))
	}
	return lst.names[idx], nil
}

func (s *Sim) ListValue(l native.List, idx int) (string, error) {
	if err := s.enter("gp_list_get_value"); err != nil {
		return "", err
	}
	lst := l.(*simList)
	if lst.freed || idx < 0 || idx >= len(lst.values) {
		return "", gperr.FromCode(native.ErrBadParameters, s.resultString(native.ErrBadParameters))
	}
	return lst.values[idx], nil
}

func (s *Sim) FreeList(l native.List) error {
	if err := s.enter("gp_list_free"); err != nil {
		return err
	}
	l.(*simList).freed = true
	return nil
}

// --- widget tree ---

func (s *Sim) ConfigRoot(_ native.Camera, _ native.Context) (native.Widget, error) {
	if err := s.enter("gp_camera_get_config"); err != nil {
		return nil, err
	}
	link(s.Root, nil)
	return s.Root, nil
}

func link(w *Widget, parent *Widget) {
	w.parent = parent
	for _, c := range w.Children {
		link(c, w)
	}
}

func (s *Sim) CommitConfig(_ native.Camera, root native.Widget, _ native.Context) error {
	if err := s.enter("gp_camera_set_config"); err != nil {
		return err
	}
	s.mu.Lock()
	s.commits = append(s.commits, root)
	s.mu.Unlock()
	return nil
}

func (s *Sim) FreeWidget(native.Widget) error {
	return s.enter("gp_widget_free")
}

func (s *Sim) WidgetChildCount(w native.Widget) (int, error) {
	if err := s.enter("gp_widget_count_children"); err != nil {
		return 0, err
	}
	return len(w.(*Widget).Children), nil
}

func (s *Sim) WidgetChild(w native.Widget, idx int) (native.Widget, error) {
	if err := s.enter("gp_widget_get_child"); err != nil {
		return nil, err
	}
	kids := w.(*Widget).Children
	if idx < 0 || idx >= len(kids) {
		return nil, gperr.FromCode(native.ErrBadParameters, s.resultString(native.ErrBadParameters))
	}
	return kids[idx], nil
}

func (s *Sim) WidgetChildByName(w native.Widget, name string) (native.Widget, error) {
	if err := s.enter("gp_widget_get_child_by_name"); err != nil {
		return nil, err
	}
	for _, c := range w.(*Widget).Children {
		if c.Name == name {
			return c, nil
		}
	}
	return nil, gperr.FromCode(native.ErrBadParameters, s.resultString(native.ErrBadParameters))
}

func (s *Sim) WidgetName(w native.Widget) (string, error) {
	if err := s.enter("gp_widget_get_name"); err != nil {
		return "", err
	}
	return w.(*Widget).Name, nil
}

func (s *Sim) WidgetType(w native.Widget) (native.WidgetType, error) {
	if err := s.enter("gp_widget_get_type"); err != nil {
		return 0, err
	}
	return w.(*Widget).Type, nil
}

func (s *Sim) WidgetLabel(w native.Widget) (string, error) {
	if err := s.enter("gp_widget_get_label"); err != nil {
		return "", err
	}
	return w.(*Widget).Label, nil
}

func (s *Sim) WidgetInfo(w native.Widget) (string, error) {
	if err := s.enter("gp_widget_get_info"); err != nil {
		return "", err
	}
	return w.(*Widget).Info, nil
}

func (s *Sim) WidgetReadonly(w native.Widget) (bool, error) {
	if err := s.enter("gp_widget_get_readonly"); err != nil {
		return false, err
	}
	return w.(*Widget).ReadOnly, nil
}

func (s *Sim) WidgetString(w native.Widget) (string, error) {
	if err := s.enter("gp_widget_get_value"); err != nil {
		return "", err
	}
	return w.(*Widget).Str, nil
}

func (s *Sim) WidgetFloat(w native.Widget) (float32, error) {
	if err := s.enter("gp_widget_get_value"); err != nil {
		return 0, err
	}
	return w.(*Widget).Float, nil
}

func (s *Sim) WidgetInt(w native.Widget) (int, error) {
	if err := s.enter("gp_widget_get_value"); err != nil {
		return 0, err
	}
	return w.(*Widget).Int, nil
}

func (s *Sim) WidgetRange(w native.Widget) (float32, float32, float32, error) {
	if err := s.enter("gp_widget_get_range"); err != nil {
		return 0, 0, 0, err
	}
	sw := w.(*Widget)
	return sw.Min, sw.Max, sw.Step, nil
}

func (s *Sim) WidgetChoiceCount(w native.Widget) (int, error) {
	if err := s.enter("gp_widget_count_choices"); err != nil {
		return 0, err
	}
	return len(w.(*Widget).Choices), nil
}

func (s *Sim) WidgetChoice(w native.Widget, idx int) (string, error) {
	if err := s.enter("gp_widget_get_choice"); err != nil {
		return "", err
	}
	choices := w.(*Widget).Choices
	if idx < 0 || idx >= len(choices) {
		return "", gperr.FromCode(native.ErrBadParameters, s.resultString(native.ErrBadParameters))
	}
	return choices[idx], nil
}

func (s *Sim) SetWidgetString(w native.Widget, v string) error {
	if err := s.enter("gp_widget_set_value"); err != nil {
		return err
	}
	w.(*Widget).Str = v
	return nil
}

func (s *Sim) SetWidgetFloat(w native.Widget, v float32) error {
	if err := s.enter("gp_widget_set_value"); err != nil {
		return err
	}
	w.(*Widget).Float = v
	return nil
}

func (s *Sim) SetWidgetInt(w native.Widget, v int) error {
	if err := s.enter("gp_widget_set_value"); err != nil {
		return err
	}
	w.(*Widget).Int = v
	return nil
}

// --- remote filesystem ---

func (s *Sim) dir(p string) (*Dir, error) {
	cur := s.FS
	p = path.Clean(p)
	if p == "/" || p == "." {
		return cur, nil
	}
	for _, part := range strings.Split(strings.TrimPrefix(p, "/"), "/") {
		var next *Dir
		for _, d := range cur.Dirs {
			if d.Name == part {
				next = d
				break
			}
		}
		if next == nil {
			return nil, gperr.FromCode(native.ErrDirectoryNotFound, s.resultString(native.ErrDirectoryNotFound))
		}
		cur = next
	}
	return cur, nil
}

func (s *Sim) file(folder, name string) (*Dir, *File, error) {
	d, err := s.dir(folder)
	if err != nil {
		return nil, nil, err
	}
	for _, f := range d.Files {
		if f.Name == name {
			return d, f, nil
		}
	}
	return nil, nil, gperr.FromCode(native.ErrFileNotFound, s.resultString(native.ErrFileNotFound))
}

func (s *Sim) ListFiles(_ native.Camera, folder string, out native.List, _ native.Context) error {
	if err := s.enter("gp_camera_folder_list_files"); err != nil {
		return err
	}
	d, err := s.dir(folder)
	if err != nil {
		return err
	}
	lst := out.(*simList)
	for _, f := range d.Files {
		lst.names = append(lst.names, f.Name)
		lst.values = append(lst.values, "")
	}
	return nil
}

func (s *Sim) ListFolders(_ native.Camera, folder string, out native.List, _ native.Context) error {
	if err := s.enter("gp_camera_folder_list_folders"); err != nil {
		return err
	}
	d, err := s.dir(folder)
	if err != nil {
		return err
	}
	lst := out.(*simList)
	for _, sub := range d.Dirs {
		lst.names = append(lst.names, sub.Name)
		lst.values = append(lst.values, "")
	}
	return nil
}

func (s *Sim) MakeDir(_ native.Camera, parent, name string, _ native.Context) error {
	if err := s.enter("gp_camera_folder_make_dir"); err != nil {
		return err
	}
	d, err := s.dir(parent)
	if err != nil {
		return err
	}
	for _, sub := range d.Dirs {
		if sub.Name == name {
			return gperr.FromCode(native.ErrDirectoryExists, s.resultString(native.ErrDirectoryExists))
		}
	}
	d.Dirs = append(d.Dirs, &Dir{Name: name})
	return nil
}

func (s *Sim) RemoveDir(_ native.Camera, parent, name string, _ native.Context) error {
	if err := s.enter("gp_camera_folder_remove_dir"); err != nil {
		return err
	}
	d, err := s.dir(parent)
	if err != nil {
		return err
	}
	for i, sub := range d.Dirs {
		if sub.Name == name {
			d.Dirs = append(d.Dirs[:i], d.Dirs[i+1:]...)
			return nil
		}
	}
	return gperr.FromCode(native.ErrDirectoryNotFound, s.resultString(native.ErrDirectoryNotFound))
}

func (s *Sim) PutFile(_ native.Camera, folder, name string, _ native.FileView, data []byte, _ native.Context) error {
	if err := s.enter("gp_camera_folder_put_file"); err != nil {
		return err
	}
	d, err := s.dir(folder)
	if err != nil {
		return err
	}
	for _, f := range d.Files {
		if f.Name == name {
			return gperr.FromCode(native.ErrFileExists, s.resultString(native.ErrFileExists))
		}
	}
	d.Files = append(d.Files, &File{Name: name, Data: data, Info: native.FileInfo{
		Size:        uint64(len(data)),
		Permissions: native.PermRead | native.PermDelete,
		Modified:    time.Now(),
	}})
	return nil
}

func (s *Sim) FileInfo(_ native.Camera, folder, name string, _ native.Context) (native.FileInfo, error) {
	if err := s.enter("gp_camera_file_get_info"); err != nil {
		return native.FileInfo{}, err
	}
	_, f, err := s.file(folder, name)
	if err != nil {
		return native.FileInfo{}, err
	}
	if f.NoInfo {
		return native.FileInfo{}, gperr.FromCode(native.ErrNotSupported, s.resultString(native.ErrNotSupported))
	}
	return f.Info, nil
}

func (s *Sim) viewData(f *File, view native.FileView) []byte {
	if data, ok := f.Views[view]; ok {
		return data
	}
	return f.Data
}

func (s *Sim) FileGet(_ native.Camera, folder, name string, view native.FileView, _ native.Context) ([]byte, error) {
	if err := s.enter("gp_camera_file_get"); err != nil {
		return nil, err
	}
	_, f, err := s.file(folder, name)
	if err != nil {
		return nil, err
	}
	data := s.viewData(f, view)
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (s *Sim) FileRead(_ native.Camera, folder, name string, view native.FileView, offset uint64, buf []byte, _ native.Context) (int, error) {
	if err := s.enter("gp_camera_file_read"); err != nil {
		return 0, err
	}
	_, f, err := s.file(folder, name)
	if err != nil {
		return 0, err
	}
	data := s.viewData(f, view)
	if offset >= uint64(len(data)) {
		return 0, nil
	}
	return copy(buf, data[offset:]), nil
}

func (s *Sim) DeleteFile(_ native.Camera, folder, name string, _ native.Context) error {
	if err := s.enter("gp_camera_file_delete"); err != nil {
		return err
	}
	d, _, err := s.file(folder, name)
	if err != nil {
		return err
	}
	for i, f := range d.Files {
		if f.Name == name {
			d.Files = append(d.Files[:i], d.Files[i+1:]...)
			return nil
		}
	}
	return nil
}

// --- capture and events ---

func (s *Sim) TriggerCapture(_ native.Camera, _ native.Context) error {
	if err := s.enter("gp_camera_trigger_capture"); err != nil {
		return err
	}
	s.mu.Lock()
	s.capSeq++
	name := fmt.Sprintf("capt%04d.jpg", s.capSeq)
	s.mu.Unlock()

	folder := s.CaptureFolder
	d, err := s.dir(folder)
	if err != nil {
		return err
	}
	data := []byte{0xff, 0xd8, 0xff, 0xdb}
	d.Files = append(d.Files, &File{Name: name, Data: data, Info: native.FileInfo{
		Size:        uint64(len(data)),
		MIMEType:    "image/jpeg",
		Permissions: native.PermRead | native.PermDelete,
		Modified:    time.Now(),
	}})

	s.mu.Lock()
	s.events = append(s.events,
		native.Event{Type: native.EventCaptureComplete},
		native.Event{Type: native.EventFileAdded, Folder: folder, Name: name},
	)
	s.mu.Unlock()
	return nil
}

func (s *Sim) CapturePreview(_ native.Camera, _ native.Context) ([]byte, error) {
	if err := s.enter("gp_camera_capture_preview"); err != nil {
		return nil, err
	}
	return []byte{0xff, 0xd8, 0xff, 0xe0}, nil
}

func (s *Sim) WaitForEvent(_ native.Camera, _ time.Duration, _ native.Context) (native.Event, error) {
	if err := s.enter("gp_camera_wait_for_event"); err != nil {
		return native.Event{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.events) == 0 {
		return native.Event{Type: native.EventTimeout}, nil
	}
	ev := s.events[0]
	s.events = s.events[1:]
	return ev, nil
}

// --- storage ---

func (s *Sim) StorageInfo(_ native.Camera, _ native.Context) ([]native.StorageInfo, error) {
	if err := s.enter("gp_camera_get_storageinfo"); err != nil {
		return nil, err
	}
	out := make([]native.StorageInfo, len(s.Storage))
	copy(out, s.Storage)
	return out, nil
}

var _ native.API = (*Sim)(nil)
