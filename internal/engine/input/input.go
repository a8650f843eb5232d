// Package input turns SDL2 events into viewer events.
package input

import (
	"github.com/veandco/go-sdl2/sdl"

	"github.com/Faultbox/prism/internal/engine/events"
)

// Bindings maps keys to viewer actions.
var Bindings = map[sdl.Scancode]events.Kind{
	sdl.SCANCODE_ESCAPE: events.Quit,
	sdl.SCANCODE_R:      events.CameraReset,
	sdl.SCANCODE_F5:     events.ReloadSkybox,
	sdl.SCANCODE_F1:     events.ToggleDebug,
	sdl.SCANCODE_GRAVE:  events.ToggleDebug,
}

// Input polls SDL and keeps the drag state between frames.
type Input struct {
	events   []events.Event
	dragging bool
}

// New creates a new input handler.
func New() *Input {
	return &Input{
		events: make([]events.Event, 0, 16),
	}
}

// Update polls SDL events and converts them to viewer events.
// Returns true if the viewer should quit.
func (i *Input) Update() bool {
	i.events = i.events[:0]

	quit := false
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		if e, ok := i.translate(event); ok {
			i.events = append(i.events, e)
			quit = quit || e.Kind == events.Quit
		}
	}
	return quit
}

// Events returns the events from the last Update.
func (i *Input) Events() []events.Event {
	return i.events
}

func (i *Input) translate(event sdl.Event) (events.Event, bool) {
	switch e := event.(type) {
	case *sdl.QuitEvent:
		return events.Event{Kind: events.Quit}, true

	case *sdl.WindowEvent:
		if e.Event == sdl.WINDOWEVENT_RESIZED || e.Event == sdl.WINDOWEVENT_SIZE_CHANGED {
			return events.Event{
				Kind:   events.Resize,
				Width:  int(e.Data1),
				Height: int(e.Data2),
			}, true
		}

	case *sdl.KeyboardEvent:
		if e.Type != sdl.KEYDOWN || e.Repeat != 0 {
			break
		}
		if kind, ok := Bindings[e.Keysym.Scancode]; ok {
			return events.Event{Kind: kind}, true
		}

	case *sdl.MouseButtonEvent:
		if e.Button == sdl.BUTTON_LEFT {
			i.dragging = e.Type == sdl.MOUSEBUTTONDOWN
		}

	case *sdl.MouseMotionEvent:
		if i.dragging && (e.XRel != 0 || e.YRel != 0) {
			return events.Event{
				Kind: events.CameraRotate,
				DX:   float32(e.XRel),
				DY:   float32(e.YRel),
			}, true
		}

	case *sdl.MouseWheelEvent:
		y := float32(e.Y)
		if e.Direction == sdl.MOUSEWHEEL_FLIPPED {
			y = -y
		}
		if y != 0 {
			return events.Event{Kind: events.CameraZoom, Zoom: y}, true
		}

	case *sdl.DropEvent:
		if e.Type == sdl.DROPFILE && e.File != "" {
			return events.Event{Kind: events.ReloadSkybox, Path: e.File}, true
		}
	}
	return events.Event{}, false
}
