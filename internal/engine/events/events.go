// Package events is the viewer's message table: a closed set of event
// kinds and the handlers registered for each.
package events

import "fmt"

// Kind identifies an event.
type Kind int

const (
	Quit Kind = iota
	Resize
	CameraRotate
	CameraZoom
	CameraReset
	ReloadSkybox
	ToggleDebug

	kindCount
)

var kindNames = [kindCount]string{
	Quit:         "quit",
	Resize:       "resize",
	CameraRotate: "camera_rotate",
	CameraZoom:   "camera_zoom",
	CameraReset:  "camera_reset",
	ReloadSkybox: "reload_skybox",
	ToggleDebug:  "toggle_debug",
}

func (k Kind) String() string {
	if k >= 0 && k < kindCount {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Event is one message. Only the fields of its Kind are set.
type Event struct {
	Kind Kind

	// Resize
	Width  int
	Height int

	// CameraRotate, in pixels of mouse travel
	DX float32
	DY float32

	// CameraZoom, in wheel steps
	Zoom float32

	// ReloadSkybox; empty reloads the current file
	Path string
}

// Handler reacts to an event.
type Handler func(Event)

// Dispatcher routes events to the handlers registered for their kind.
// It is used from the main thread only.
type Dispatcher struct {
	handlers [kindCount][]Handler
}

// NewDispatcher creates an empty table.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

// On registers h for kind. Handlers run in registration order.
func (d *Dispatcher) On(kind Kind, h Handler) {
	if kind < 0 || kind >= kindCount {
		panic(fmt.Sprintf("events: unknown %v", kind))
	}
	d.handlers[kind] = append(d.handlers[kind], h)
}

// Dispatch runs the handlers for e and reports whether any ran.
func (d *Dispatcher) Dispatch(e Event) bool {
	if e.Kind < 0 || e.Kind >= kindCount {
		return false
	}
	hs := d.handlers[e.Kind]
	for _, h := range hs {
		h(e)
	}
	return len(hs) > 0
}

// DispatchAll dispatches events in order.
func (d *Dispatcher) DispatchAll(evs []Event) {
	for _, e := range evs {
		d.Dispatch(e)
	}
}
