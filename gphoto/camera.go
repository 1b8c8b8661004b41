package gphoto

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/cjeanneret/photobridge/gperr"
	"github.com/cjeanneret/photobridge/native"
)

// Storage targets for capture. The names match the choices cameras expose on
// their capturetarget entry.
const (
	targetRAM  = "Internal RAM"
	targetCard = "Memory card"
)

// eventPoll is the per-call timeout handed to the native event wait. Capture
// waits in short polls so the overall deadline stays responsive.
const eventPoll = time.Second

// Camera drives one physical camera through a native backend. Public
// operations are serialized on an internal mutex; the native handle itself
// is not safe for concurrent use.
type Camera struct {
	api native.API
	log zerolog.Logger

	usbBus    int
	usbDevice int
	hasPort   bool

	captureTimeout time.Duration

	// ops serializes every operation that talks to the native handle.
	// Composed operations (capture, video) hold it across their whole
	// native call sequence; their helpers must not re-acquire it.
	ops sync.Mutex

	mu        sync.Mutex
	ctx       native.Context
	cam       native.Camera
	abilities native.Abilities
	ready     bool
	closed    bool
}

// Option configures a Camera.
type Option func(*Camera)

// WithUSBAddress pins the camera to a specific USB bus/device address
// instead of the first device the driver claims.
func WithUSBAddress(bus, device int) Option {
	return func(c *Camera) {
		c.usbBus, c.usbDevice, c.hasPort = bus, device, true
	}
}

// WithLogger routes the camera's log records through the given logger.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Camera) { c.log = log }
}

// WithCaptureTimeout bounds how long a capture waits for the camera to
// report the new file. Default one minute.
func WithCaptureTimeout(d time.Duration) Option {
	return func(c *Camera) { c.captureTimeout = d }
}

// New returns an unconnected Camera. The connection is established lazily on
// first use, or eagerly via Init.
func New(api native.API, opts ...Option) *Camera {
	c := &Camera{
		api:            api,
		log:            zerolog.Nop(),
		captureTimeout: time.Minute,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Init connects to the camera: allocates the native handles, binds the USB
// port when one was pinned, and caches the driver abilities. Calling Init on
// a connected camera is a no-op.
func (c *Camera) Init() error {
	c.ops.Lock()
	defer c.ops.Unlock()
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.initLocked()
}

func (c *Camera) initLocked() error {
	if c.ready {
		return nil
	}
	if c.closed {
		return fmt.Errorf("camera: already closed")
	}

	c.ctx = c.api.NewContext()
	cam, err := c.api.NewCamera()
	if err != nil {
		return err
	}

	if c.hasPort {
		if err := c.bindPort(cam); err != nil {
			c.api.FreeCamera(cam)
			return err
		}
	}

	if err := c.api.InitCamera(cam, c.ctx); err != nil {
		c.api.FreeCamera(cam)
		return err
	}
	ab, err := c.api.CameraAbilities(cam)
	if err != nil {
		c.api.ExitCamera(cam, c.ctx)
		c.api.FreeCamera(cam)
		return err
	}

	c.cam = cam
	c.abilities = ab
	c.ready = true
	c.log.Debug().Str("model", ab.Model).Str("driver", ab.Library).Msg("camera initialized")
	return nil
}

func (c *Camera) bindPort(cam native.Camera) error {
	ports, err := c.api.NewPortInfoList()
	if err != nil {
		return err
	}
	defer c.api.FreePortInfoList(ports)
	if err := c.api.LoadPortInfoList(ports); err != nil {
		return err
	}
	path := fmt.Sprintf("usb:%03d,%03d", c.usbBus, c.usbDevice)
	idx, err := c.api.LookupPortPath(ports, path)
	if err != nil {
		return fmt.Errorf("no camera at %s: %w", path, err)
	}
	info, err := c.api.PortInfoAt(ports, idx)
	if err != nil {
		return err
	}
	return c.api.SetPortInfo(cam, info)
}

// ensure connects lazily and returns the native handles.
func (c *Camera) ensure() (native.Camera, native.Context, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.initLocked(); err != nil {
		return nil, nil, err
	}
	return c.cam, c.ctx, nil
}

// Close releases the camera. Safe to call multiple times; waits for an
// operation in flight.
func (c *Camera) Close() error {
	c.ops.Lock()
	defer c.ops.Unlock()
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	if !c.ready {
		return nil
	}
	c.ready = false
	err := c.api.ExitCamera(c.cam, c.ctx)
	if ferr := c.api.FreeCamera(c.cam); err == nil {
		err = ferr
	}
	c.cam = nil
	return err
}

// Abilities returns the driver abilities record. Connects if necessary.
func (c *Camera) Abilities() (native.Abilities, error) {
	c.ops.Lock()
	defer c.ops.Unlock()
	return c.driverAbilities()
}

// driverAbilities is Abilities without the operation lock.
func (c *Camera) driverAbilities() (native.Abilities, error) {
	if _, _, err := c.ensure(); err != nil {
		return native.Abilities{}, err
	}
	return c.abilities, nil
}

// Model returns the driver's model string.
func (c *Camera) Model() (string, error) {
	ab, err := c.Abilities()
	if err != nil {
		return "", err
	}
	return ab.Model, nil
}

// Config fetches the configuration tree. The returned tree is a snapshot;
// Set on any entry writes through and commits the whole window.
func (c *Camera) Config() (*Section, error) {
	c.ops.Lock()
	defer c.ops.Unlock()
	return c.config()
}

// config is Config without the operation lock, for composed operations that
// already hold it.
func (c *Camera) config() (*Section, error) {
	cam, ctx, err := c.ensure()
	if err != nil {
		return nil, err
	}
	root, err := c.api.ConfigRoot(cam, ctx)
	if err != nil {
		return nil, err
	}
	defer c.api.FreeWidget(root)
	return buildTree(c, root, nil)
}

// Settings returns the writable configuration entries grouped by section.
// Only sections whose name contains "settings", plus the catch-all "other"
// section, hold user-adjustable parameters on gphoto2 drivers.
func (c *Camera) Settings() (map[string][]*Item, error) {
	c.ops.Lock()
	defer c.ops.Unlock()
	root, err := c.config()
	if err != nil {
		return nil, err
	}
	out := make(map[string][]*Item)
	for _, sec := range root.Sections() {
		if !strings.Contains(sec.Name(), "settings") && sec.Name() != "other" {
			continue
		}
		for _, it := range sec.Items() {
			if !it.Readonly() {
				out[sec.Name()] = append(out[sec.Name()], it)
			}
		}
	}
	return out, nil
}

// Status reports read-only state values keyed by entry name. Entries in a
// section named "status" count even when writable. Four-digit hex names are
// vendor-internal PTP registers and are skipped.
func (c *Camera) Status() (map[string]any, error) {
	c.ops.Lock()
	defer c.ops.Unlock()
	root, err := c.config()
	if err != nil {
		return nil, err
	}
	out := make(map[string]any)
	for _, sec := range root.Sections() {
		inStatus := sec.Name() == "status"
		for _, it := range sec.Items() {
			if (it.Readonly() || inStatus) && !hexName(it.Name()) {
				out[it.Name()] = it.Value()
			}
		}
	}
	return out, nil
}

func hexName(name string) bool {
	if len(name) != 4 {
		return false
	}
	for _, r := range name {
		if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
			return false
		}
	}
	return true
}

// setConfigValue re-fetches the configuration window, navigates to the entry
// at path, applies the typed value and commits the root. Fetching fresh
// guarantees the handle is valid and released no matter how long ago the
// snapshot was taken. The caller holds the operation lock.
func (c *Camera) setConfigValue(path []string, kind Kind, v any) error {
	cam, ctx, err := c.ensure()
	if err != nil {
		return err
	}
	root, err := c.api.ConfigRoot(cam, ctx)
	if err != nil {
		return err
	}
	defer c.api.FreeWidget(root)

	w := root
	for _, name := range path {
		if w, err = c.api.WidgetChildByName(w, name); err != nil {
			return err
		}
	}

	switch kind {
	case KindText, KindSelection:
		err = c.api.SetWidgetString(w, v.(string))
	case KindRange:
		err = c.api.SetWidgetFloat(w, v.(float32))
	case KindToggle:
		n := 0
		if v.(bool) {
			n = 1
		}
		err = c.api.SetWidgetInt(w, n)
	case KindDate:
		err = c.api.SetWidgetInt(w, int(v.(time.Time).Unix()))
	default:
		err = fmt.Errorf("config: cannot set kind %s", kind)
	}
	if err != nil {
		return err
	}
	return c.api.CommitConfig(cam, root, ctx)
}

// setCaptureTarget points the capturetarget entry at the given destination.
// Cameras without the entry store wherever their driver defaults to; that is
// not an error. The caller holds the operation lock.
func (c *Camera) setCaptureTarget(target string) error {
	cfg, err := c.config()
	if err != nil {
		return err
	}
	it, ok := cfg.Find("capturetarget")
	if !ok {
		c.log.Debug().Msg("camera exposes no capturetarget entry")
		return nil
	}
	if cur, _ := it.Value().(string); cur == target {
		return nil
	}
	return it.set(target)
}

// waitForNewFile polls the event queue until the camera reports the file a
// trigger produced. Capture-complete events are progress, timeouts keep the
// loop alive until the deadline.
func (c *Camera) waitForNewFile(ctx context.Context, cam native.Camera, nctx native.Context) (folder, name string, err error) {
	deadline := time.Now().Add(c.captureTimeout)
	for {
		if err := ctx.Err(); err != nil {
			return "", "", err
		}
		ev, err := c.api.WaitForEvent(cam, eventPoll, nctx)
		if err != nil {
			return "", "", err
		}
		switch ev.Type {
		case native.EventFileAdded:
			return ev.Folder, ev.Name, nil
		case native.EventCaptureComplete:
			c.log.Debug().Msg("capture complete, waiting for file")
		case native.EventFolderAdded:
			c.log.Debug().Str("folder", ev.Folder).Str("name", ev.Name).Msg("folder added")
		}
		if time.Now().After(deadline) {
			return "", "", fmt.Errorf("capture: no file within %s", c.captureTimeout)
		}
	}
}

// trigger points the capture target, fires the shutter and waits for the
// resulting file. The caller holds the operation lock.
func (c *Camera) trigger(ctx context.Context, target string) (*File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cam, nctx, err := c.ensure()
	if err != nil {
		return nil, err
	}
	if err := c.setCaptureTarget(target); err != nil {
		return nil, err
	}
	if err := c.api.TriggerCapture(cam, nctx); err != nil {
		return nil, err
	}
	folder, name, err := c.waitForNewFile(ctx, cam, nctx)
	if err != nil {
		return nil, err
	}
	c.log.Info().Str("folder", folder).Str("name", name).Msg("captured")
	return &File{cam: c, folder: folder, name: name}, nil
}

// Capture shoots one frame to the camera's RAM, downloads it and removes the
// transient file. The camera often drops the RAM file on its own once read;
// a not-found on delete is not an error.
func (c *Camera) Capture(ctx context.Context) ([]byte, error) {
	c.ops.Lock()
	defer c.ops.Unlock()
	f, err := c.trigger(ctx, targetRAM)
	if err != nil {
		return nil, err
	}
	data, err := f.data(native.ViewNormal)
	if err != nil {
		return nil, err
	}
	if err := f.remove(); err != nil && !gperr.IsIO(err) {
		return nil, err
	}
	return data, nil
}

// CaptureToStorage shoots one frame to the memory card and returns the
// stored file without downloading it.
func (c *Camera) CaptureToStorage(ctx context.Context) (*File, error) {
	c.ops.Lock()
	defer c.ops.Unlock()
	return c.trigger(ctx, targetCard)
}

// Preview grabs a live-view frame without triggering the shutter.
func (c *Camera) Preview() ([]byte, error) {
	c.ops.Lock()
	defer c.ops.Unlock()
	cam, nctx, err := c.ensure()
	if err != nil {
		return nil, err
	}
	return c.api.CapturePreview(cam, nctx)
}

// RecordVideo toggles movie recording on for the given duration, then off,
// and returns the file the camera reports. Requires a driver with a movie
// toggle entry.
func (c *Camera) RecordVideo(ctx context.Context, length time.Duration) (*File, error) {
	c.ops.Lock()
	defer c.ops.Unlock()
	cam, nctx, err := c.ensure()
	if err != nil {
		return nil, err
	}
	if err := c.setCaptureTarget(targetCard); err != nil {
		return nil, err
	}
	if err := c.setMovie(true); err != nil {
		return nil, err
	}
	select {
	case <-ctx.Done():
		c.setMovie(false)
		return nil, ctx.Err()
	case <-time.After(length):
	}
	if err := c.setMovie(false); err != nil {
		return nil, err
	}
	folder, name, err := c.waitForNewFile(ctx, cam, nctx)
	if err != nil {
		return nil, err
	}
	return &File{cam: c, folder: folder, name: name}, nil
}

// setMovie flips the movie toggle. The caller holds the operation lock.
func (c *Camera) setMovie(on bool) error {
	cfg, err := c.config()
	if err != nil {
		return err
	}
	it, ok := cfg.Find("movie")
	if !ok {
		return fmt.Errorf("camera exposes no movie toggle")
	}
	return it.set(on)
}

// StorageInfo lists the camera's storage media.
func (c *Camera) StorageInfo() ([]native.StorageInfo, error) {
	c.ops.Lock()
	defer c.ops.Unlock()
	cam, nctx, err := c.ensure()
	if err != nil {
		return nil, err
	}
	return c.api.StorageInfo(cam, nctx)
}

// Root returns the top of the camera's filesystem.
func (c *Camera) Root() *Directory {
	return &Directory{cam: c, path: "/"}
}

// Dir returns the directory at the given absolute path. The path is not
// checked against the camera until it is listed.
func (c *Camera) Dir(path string) (*Directory, error) {
	if len(path) == 0 || path[0] != '/' {
		return nil, fmt.Errorf("camera: path %q is not absolute", path)
	}
	return &Directory{cam: c, path: path}, nil
}

// ListAllFiles walks the whole camera filesystem and returns every file.
func (c *Camera) ListAllFiles() ([]*File, error) {
	var out []*File
	err := walkFiles(c.Root(), &out)
	return out, err
}

func walkFiles(d *Directory, out *[]*File) error {
	files, err := d.Files()
	if err != nil {
		return err
	}
	*out = append(*out, files...)
	subs, err := d.Dirs()
	if err != nil {
		return err
	}
	for _, sub := range subs {
		if err := walkFiles(sub, out); err != nil {
			return err
		}
	}
	return nil
}
