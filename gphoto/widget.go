package gphoto

import (
	"fmt"
	"math"
	"time"

	"github.com/cjeanneret/photobridge/native"
)

// Kind classifies a configuration entry for callers that do not care about
// the native widget type tags.
type Kind int

const (
	KindSection Kind = iota // container (native window or section)
	KindText
	KindRange
	KindToggle
	KindSelection // native radio or menu
	KindDate
	KindButton
)

var kindNames = map[Kind]string{
	KindSection:   "section",
	KindText:      "text",
	KindRange:     "range",
	KindToggle:    "toggle",
	KindSelection: "selection",
	KindDate:      "date",
	KindButton:    "button",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

func kindOf(t native.WidgetType) Kind {
	switch t {
	case native.WidgetWindow, native.WidgetSection:
		return KindSection
	case native.WidgetText:
		return KindText
	case native.WidgetRange:
		return KindRange
	case native.WidgetToggle:
		return KindToggle
	case native.WidgetRadio, native.WidgetMenu:
		return KindSelection
	case native.WidgetDate:
		return KindDate
	case native.WidgetButton:
		return KindButton
	}
	return KindText
}

// Range is the admissible interval of a range entry.
type Range struct {
	Min  float32
	Max  float32
	Step float32
}

// Validate reports whether v lies in the interval and on the step grid.
func (r Range) Validate(v float32) error {
	if v < r.Min || v > r.Max {
		return fmt.Errorf("value %g out of range [%g, %g]", v, r.Min, r.Max)
	}
	if r.Step > 0 {
		steps := float64(v-r.Min) / float64(r.Step)
		if math.Abs(steps-math.Round(steps)) > 1e-6 {
			return fmt.Errorf("value %g not a multiple of step %g from %g", v, r.Step, r.Min)
		}
	}
	return nil
}

// Section is a container node of the configuration tree. The tree is a
// snapshot: values reflect the camera state at the time Config was called.
type Section struct {
	name     string
	label    string
	sections []*Section
	items    []*Item
}

func (s *Section) Name() string  { return s.name }
func (s *Section) Label() string { return s.label }

// Sections returns the child containers in camera order.
func (s *Section) Sections() []*Section { return s.sections }

// Items returns the leaf entries of this container in camera order.
func (s *Section) Items() []*Item { return s.items }

// Section returns the direct child container with the given name.
func (s *Section) Section(name string) (*Section, bool) {
	for _, c := range s.sections {
		if c.name == name {
			return c, true
		}
	}
	return nil, false
}

// Item returns the direct child entry with the given name.
func (s *Section) Item(name string) (*Item, bool) {
	for _, it := range s.items {
		if it.name == name {
			return it, true
		}
	}
	return nil, false
}

// Find returns the first entry with the given name anywhere under s,
// depth-first. Cameras keep well-known entries like "capturetarget" in
// driver-dependent sections, so callers search rather than hardcode paths.
func (s *Section) Find(name string) (*Item, bool) {
	if it, ok := s.Item(name); ok {
		return it, true
	}
	for _, c := range s.sections {
		if it, ok := c.Find(name); ok {
			return it, true
		}
	}
	return nil, false
}

// Walk calls fn for every entry under s, depth-first.
func (s *Section) Walk(fn func(*Item)) {
	for _, it := range s.items {
		fn(it)
	}
	for _, c := range s.sections {
		c.Walk(fn)
	}
}

// Item is one leaf configuration entry. Reads return the snapshot taken when
// the tree was built; Set writes through to the camera and refreshes the
// snapshot on success.
type Item struct {
	cam      *Camera
	path     []string // widget names from below the root down to this entry
	name     string
	label    string
	info     string
	kind     Kind
	readonly bool
	value    any
	rng      Range
	choices  []string
}

func (it *Item) Name() string   { return it.name }
func (it *Item) Label() string  { return it.label }
func (it *Item) Info() string   { return it.info }
func (it *Item) Kind() Kind     { return it.kind }
func (it *Item) Readonly() bool { return it.readonly }

// Value returns the snapshot value: string for text and selection entries,
// float32 for ranges, *bool for toggles (nil when the camera reports the
// indeterminate state), time.Time for dates, nil for buttons.
func (it *Item) Value() any { return it.value }

// Range returns the admissible interval of a range entry.
func (it *Item) Range() (Range, bool) {
	if it.kind != KindRange {
		return Range{}, false
	}
	return it.rng, true
}

// Choices returns the admissible values of a selection entry.
func (it *Item) Choices() []string { return it.choices }

// validate checks v against the entry's own constraints and normalizes it to
// the value the native setter expects.
func (it *Item) validate(v any) (any, error) {
	if it.readonly {
		return nil, fmt.Errorf("config %q: entry is read-only", it.name)
	}
	switch it.kind {
	case KindSection:
		return nil, fmt.Errorf("config %q: cannot set a section", it.name)
	case KindButton:
		return nil, fmt.Errorf("config %q: buttons are pressed, not set", it.name)
	case KindText:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("config %q: want string, got %T", it.name, v)
		}
		return s, nil
	case KindRange:
		f, ok := toFloat32(v)
		if !ok {
			return nil, fmt.Errorf("config %q: want number, got %T", it.name, v)
		}
		if err := it.rng.Validate(f); err != nil {
			return nil, fmt.Errorf("config %q: %w", it.name, err)
		}
		return f, nil
	case KindToggle:
		b, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("config %q: want bool, got %T", it.name, v)
		}
		return b, nil
	case KindSelection:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("config %q: want string, got %T", it.name, v)
		}
		for _, c := range it.choices {
			if c == s {
				return s, nil
			}
		}
		return nil, fmt.Errorf("config %q: %q is not one of %v", it.name, s, it.choices)
	case KindDate:
		t, ok := v.(time.Time)
		if !ok {
			return nil, fmt.Errorf("config %q: want time.Time, got %T", it.name, v)
		}
		return t, nil
	}
	return nil, fmt.Errorf("config %q: unsupported kind %s", it.name, it.kind)
}

func toFloat32(v any) (float32, bool) {
	switch n := v.(type) {
	case float32:
		return n, true
	case float64:
		return float32(n), true
	case int:
		return float32(n), true
	case int64:
		return float32(n), true
	}
	return 0, false
}

// Set validates v, writes it through to the camera and refreshes the
// snapshot. The whole tree is committed from its root: the native library
// only applies changes reliably when the commit spans the full window.
func (it *Item) Set(v any) error {
	it.cam.ops.Lock()
	defer it.cam.ops.Unlock()
	return it.set(v)
}

// set is Set without the operation lock, for composed camera operations
// that already hold it.
func (it *Item) set(v any) error {
	norm, err := it.validate(v)
	if err != nil {
		return err
	}
	if err := it.cam.setConfigValue(it.path, it.kind, norm); err != nil {
		return err
	}
	if it.kind == KindToggle {
		b := norm.(bool)
		it.value = &b
	} else {
		it.value = norm
	}
	return nil
}

// buildTree materializes the native widget tree reachable from w. The native
// handles are only touched during the build; the caller frees the root.
func buildTree(cam *Camera, w native.Widget, path []string) (*Section, error) {
	api := cam.api
	name, err := api.WidgetName(w)
	if err != nil {
		return nil, err
	}
	label, err := api.WidgetLabel(w)
	if err != nil {
		return nil, err
	}
	sec := &Section{name: name, label: label}

	n, err := api.WidgetChildCount(w)
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		child, err := api.WidgetChild(w, i)
		if err != nil {
			return nil, err
		}
		t, err := api.WidgetType(child)
		if err != nil {
			return nil, err
		}
		childName, err := api.WidgetName(child)
		if err != nil {
			return nil, err
		}
		childPath := append(append([]string(nil), path...), childName)

		if kindOf(t) == KindSection {
			sub, err := buildTree(cam, child, childPath)
			if err != nil {
				return nil, err
			}
			sec.sections = append(sec.sections, sub)
			continue
		}
		it, err := buildItem(cam, child, t, childPath)
		if err != nil {
			return nil, err
		}
		sec.items = append(sec.items, it)
	}
	return sec, nil
}

func buildItem(cam *Camera, w native.Widget, t native.WidgetType, path []string) (*Item, error) {
	api := cam.api
	it := &Item{cam: cam, path: path, kind: kindOf(t)}

	var err error
	if it.name, err = api.WidgetName(w); err != nil {
		return nil, err
	}
	if it.label, err = api.WidgetLabel(w); err != nil {
		return nil, err
	}
	if it.info, err = api.WidgetInfo(w); err != nil {
		return nil, err
	}
	if it.readonly, err = api.WidgetReadonly(w); err != nil {
		return nil, err
	}

	switch it.kind {
	case KindText:
		if it.value, err = api.WidgetString(w); err != nil {
			return nil, err
		}
	case KindRange:
		var v float32
		if v, err = api.WidgetFloat(w); err != nil {
			return nil, err
		}
		it.value = v
		if it.rng.Min, it.rng.Max, it.rng.Step, err = api.WidgetRange(w); err != nil {
			return nil, err
		}
	case KindToggle:
		var v int
		if v, err = api.WidgetInt(w); err != nil {
			return nil, err
		}
		// Some cameras report 2 for toggles whose state does not apply,
		// e.g. a record switch while no card is present.
		if v == 0 || v == 1 {
			b := v == 1
			it.value = &b
		} else {
			it.value = (*bool)(nil)
		}
	case KindSelection:
		if it.value, err = api.WidgetString(w); err != nil {
			return nil, err
		}
		var n int
		if n, err = api.WidgetChoiceCount(w); err != nil {
			return nil, err
		}
		for i := 0; i < n; i++ {
			c, err := api.WidgetChoice(w, i)
			if err != nil {
				return nil, err
			}
			it.choices = append(it.choices, c)
		}
	case KindDate:
		var v int
		if v, err = api.WidgetInt(w); err != nil {
			return nil, err
		}
		it.value = time.Unix(int64(v), 0)
	case KindButton:
		it.value = nil
	}
	return it, nil
}
