// Package debugview collects read-only snapshots of the scene for the
// debug overlay. It never mutates the scene and knows nothing about how
// the overlay is drawn.
package debugview

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/google/uuid"

	"github.com/Faultbox/prism/internal/engine/renderer"
	"github.com/Faultbox/prism/internal/engine/scene"
	"github.com/Faultbox/prism/internal/engine/sh"
	"github.com/Faultbox/prism/pkg/math"
)

// ObjectInfo is the overlay's view of one object.
type ObjectInfo struct {
	ID          uuid.UUID
	Name        string
	Position    math.Vec3
	Rotation    math.Vec3
	Scale       math.Vec3
	Meshes      int
	Material    string
	Transparent bool
}

// Snapshot is everything the overlay shows for one frame.
type Snapshot struct {
	FPS       float64
	FrameTime float64 // ms
	HeapAlloc uint64

	Stats renderer.Stats

	Objects           []ObjectInfo
	DirectionalLights int
	PointLights       int
	Materials         int

	CameraPosition math.Vec3
	CameraRadius   float32

	Skybox string
	SH     sh.Coefficients
}

// Capture copies the overlay fields out of s. The frame timing fields are
// left for the caller's FrameTimer to fill.
func Capture(s *scene.Scene, stats renderer.Stats) Snapshot {
	snap := Snapshot{
		Stats:     stats,
		Materials: s.Materials.Len(),
	}

	for _, obj := range s.Objects() {
		info := ObjectInfo{
			ID:       obj.ID,
			Name:     obj.Name,
			Position: obj.Transform.Position,
			Rotation: obj.Transform.Rotation,
			Scale:    obj.Transform.Scale,
			Meshes:   len(obj.Meshes),
		}
		if mat, ok := s.Materials.Get(obj.Material); ok {
			info.Material = mat.Name
			info.Transparent = mat.Transparent()
		}
		snap.Objects = append(snap.Objects, info)
	}

	for _, l := range s.Lights() {
		switch l.(type) {
		case *scene.DirectionalLight:
			snap.DirectionalLights++
		case *scene.PointLight:
			snap.PointLights++
		}
	}

	if s.Camera != nil {
		snap.CameraPosition = s.Camera.Position()
		snap.CameraRadius = s.Camera.Radius
	}
	if env := s.Environment(); env != nil {
		snap.Skybox = env.Source
		snap.SH = env.SH
	}
	return snap
}

// Title is the one-line summary shown in the window title.
func (s Snapshot) Title() string {
	return fmt.Sprintf("%.0f fps | %d draws | %d switches | %d objects",
		s.FPS, s.Stats.Draws, s.Stats.ProgramSwitches, len(s.Objects))
}

// Lines renders the snapshot as overlay text.
func (s Snapshot) Lines() []string {
	lines := []string{
		fmt.Sprintf("FPS: %.0f (%.2f ms)", s.FPS, s.FrameTime),
		fmt.Sprintf("Heap: %.1f MB", float64(s.HeapAlloc)/(1<<20)),
		fmt.Sprintf("Draws: %d  Switches: %d  Binds: %d  Skipped: %d",
			s.Stats.Draws, s.Stats.ProgramSwitches, s.Stats.TextureBinds, s.Stats.Skipped),
		fmt.Sprintf("Objects: %d  Materials: %d", len(s.Objects), s.Materials),
		fmt.Sprintf("Lights: %d directional, %d point", s.DirectionalLights, s.PointLights),
		fmt.Sprintf("Camera: (%.2f, %.2f, %.2f) r=%.2f",
			s.CameraPosition.X, s.CameraPosition.Y, s.CameraPosition.Z, s.CameraRadius),
	}

	if s.Skybox == "" {
		lines = append(lines, "Skybox: none")
	} else {
		lines = append(lines, "Skybox: "+s.Skybox)
		for i, c := range s.SH {
			lines = append(lines, fmt.Sprintf("  SH[%d]: %.3f %.3f %.3f", i, c[0], c[1], c[2]))
		}
	}

	for _, o := range s.Objects {
		var flags []string
		if o.Transparent {
			flags = append(flags, "blend")
		}
		lines = append(lines, fmt.Sprintf("  %s [%s] meshes=%d pos=(%.2f, %.2f, %.2f) %s",
			o.Name, o.Material, o.Meshes, o.Position.X, o.Position.Y, o.Position.Z, strings.Join(flags, ",")))
	}
	return lines
}

// FrameTimer averages frame rate over half-second windows.
type FrameTimer struct {
	fps        float64
	frameTime  float64
	accum      float64
	frames     int
	memAccum   float64
	heapAlloc  uint64
	readMemory func() uint64
}

// NewFrameTimer creates a timer that samples the Go heap every two seconds.
func NewFrameTimer() *FrameTimer {
	return &FrameTimer{readMemory: heapAlloc}
}

func heapAlloc() uint64 {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return m.HeapAlloc
}

// Tick records one frame of deltaMs milliseconds.
func (t *FrameTimer) Tick(deltaMs float64) {
	t.frameTime = deltaMs
	t.frames++
	t.accum += deltaMs / 1000

	// FPS every 0.5 seconds
	if t.accum >= 0.5 {
		t.fps = float64(t.frames) / t.accum
		t.frames = 0
		t.accum = 0
	}

	t.memAccum += deltaMs / 1000
	if t.memAccum >= 2 || t.heapAlloc == 0 {
		t.heapAlloc = t.readMemory()
		t.memAccum = 0
	}
}

// Fill copies the timing fields into snap.
func (t *FrameTimer) Fill(snap *Snapshot) {
	snap.FPS = t.fps
	snap.FrameTime = t.frameTime
	snap.HeapAlloc = t.heapAlloc
}
