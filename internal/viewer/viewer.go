// Package viewer wires the engine together and runs the frame loop:
// events, update, shadow pass, draw, present.
package viewer

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/prism/internal/assets"
	"github.com/Faultbox/prism/internal/config"
	"github.com/Faultbox/prism/internal/debugview"
	"github.com/Faultbox/prism/internal/engine/camera"
	"github.com/Faultbox/prism/internal/engine/envbake"
	"github.com/Faultbox/prism/internal/engine/events"
	"github.com/Faultbox/prism/internal/engine/gfx"
	"github.com/Faultbox/prism/internal/engine/lighting"
	"github.com/Faultbox/prism/internal/engine/renderer"
	"github.com/Faultbox/prism/internal/engine/scene"
	"github.com/Faultbox/prism/internal/engine/shaders"
	"github.com/Faultbox/prism/internal/engine/shadow"
	"github.com/Faultbox/prism/internal/engine/texture"
	"github.com/Faultbox/prism/internal/importer"
	"github.com/Faultbox/prism/pkg/math"
)

// PBRShader is the shader pool name imported materials use.
const PBRShader = "pbr"

// EventSource yields the events of one frame.
type EventSource interface {
	// Update polls pending events and reports whether a quit was requested.
	Update() bool
	Events() []events.Event
}

// Surface is the window the frame is presented to.
type Surface interface {
	SwapBuffers()
	DrawableSize() (int, int)
	SetTitle(title string)
}

// viewportSetter is implemented by devices that draw to a resizable
// default framebuffer.
type viewportSetter interface {
	SetViewport(width, height int)
}

// Viewer owns the scene and every pass that draws it.
type Viewer struct {
	cfg     *config.Config
	log     *zap.Logger
	dev     gfx.Device
	surface Surface
	input   EventSource

	assets   *assets.Manager
	scene    *scene.Scene
	renderer *renderer.Renderer
	shadows  *shadow.Pass
	baker    *envbake.Baker
	importer *importer.Importer
	dispatch *events.Dispatcher

	timer      *debugview.FrameTimer
	debug      bool
	titleAccum float64
	lastStats  renderer.Stats
	skybox     string
	quit       bool
}

// New builds the scene described by cfg on dev. Models and the skybox that
// fail to load are logged and skipped; only engine setup failures are
// returned.
func New(cfg *config.Config, dev gfx.Device, surface Surface, input EventSource, log *zap.Logger) (*Viewer, error) {
	if log == nil {
		log = zap.NewNop()
	}
	v := &Viewer{
		cfg:      cfg,
		log:      log.Named("viewer"),
		dev:      dev,
		surface:  surface,
		input:    input,
		assets:   assets.NewManager(),
		dispatch: events.NewDispatcher(),
		timer:    debugview.NewFrameTimer(),
	}

	for _, root := range cfg.Scene.AssetRoots {
		if err := v.assets.AddRoot(root); err != nil {
			v.log.Warn("asset root unavailable", zap.String("root", root), zap.Error(err))
		}
	}

	v.scene = scene.New(dev, newCamera(cfg.Scene.Camera), log)
	w, h := surface.DrawableSize()
	v.resize(w, h)

	// A broken PBR program is not fatal: objects using it are skipped.
	pbr, err := v.scene.Shaders.Compile(dev, PBRShader, shaders.PBRVertex, shaders.PBRFragment)
	if err != nil {
		v.log.Error("PBR shader unavailable, objects will not draw", zap.Error(err))
	}

	if err := v.initPasses(log); err != nil {
		v.Close()
		return nil, err
	}

	images := texture.NewLoader(v.assets)
	v.baker, err = envbake.New(dev, bakeConfig(cfg.Render), images, log)
	if err != nil {
		v.Close()
		return nil, fmt.Errorf("environment baker: %w", err)
	}
	v.importer = importer.New(dev, v.scene, v.assets, images, pbr, log)

	v.addLights(cfg.Scene.Lights)
	for _, m := range cfg.Scene.Models {
		if err := v.LoadModel(m); err != nil {
			v.log.Error("model not loaded", zap.String("path", m.Path), zap.Error(err))
		}
	}
	if cfg.Scene.Skybox != "" {
		if err := v.LoadSkybox(cfg.Scene.Skybox); err != nil {
			v.log.Error("skybox not loaded", zap.Error(err))
		}
	}

	v.registerHandlers()

	v.log.Info("viewer ready",
		zap.Int("objects", len(v.scene.Objects())),
		zap.Int("lights", len(v.scene.Lights())),
		zap.String("skybox", v.skybox))
	return v, nil
}

func (v *Viewer) initPasses(log *zap.Logger) error {
	var err error
	v.renderer, err = renderer.New(v.dev, log)
	if err != nil {
		return fmt.Errorf("renderer: %w", err)
	}
	v.shadows, err = shadow.NewPass(v.dev, shadowConfig(v.cfg.Render), log)
	if err != nil {
		return fmt.Errorf("shadow pass: %w", err)
	}
	return nil
}

func newCamera(c config.CameraConfig) *camera.OrbitCamera {
	cam := camera.NewOrbitCamera(c.Radius, c.Theta, c.Phi)
	cam.FOV, cam.Near, cam.Far = c.FOV, c.Near, c.Far
	return cam
}

func shadowConfig(r config.RenderConfig) shadow.Config {
	return shadow.Config{
		Resolution: r.ShadowResolution,
		MaxLights:  min(r.MaxShadowLights, gfx.MaxShadowMaps),
		Box: shadow.Box{
			HalfExtent: r.ShadowBox.HalfExtent,
			Near:       r.ShadowBox.Near,
			Far:        r.ShadowBox.Far,
			Distance:   r.ShadowBox.Distance,
		},
	}
}

func bakeConfig(r config.RenderConfig) envbake.Config {
	return envbake.Config{
		CubeSize:      r.EnvCubeSize,
		PrefilterSize: r.PrefilterSize,
		PrefilterMips: r.PrefilterMips,
		BRDFSize:      r.BRDFSize,
		SHClamp:       r.SHClamp,
	}
}

func (v *Viewer) addLights(lights []config.LightConfig) {
	for _, l := range lights {
		color := math.V3(l.Color)
		intensity := l.Intensity
		if intensity == 0 {
			intensity = 1
		}

		switch l.Type {
		case config.LightDirectional:
			dir := math.V3(l.Direction)
			if dir == (math.Vec3{}) {
				dir = lighting.LightDirection(l.Azimuth, l.Elevation)
			}
			dl := scene.NewDirectionalLight(dir, color)
			dl.Intensity = intensity
			dl.SpinDegPerSec = l.SpinDegPerSec
			v.scene.AddLight(dl)
		case config.LightPoint:
			pl := scene.NewPointLight(math.V3(l.Position), color, l.Radius)
			pl.Intensity = intensity
			v.scene.AddLight(pl)
		}
	}
}

// LoadModel imports a scene file and places its objects with the model's
// transform. Nothing is added when any object is rejected.
func (v *Viewer) LoadModel(m config.ModelConfig) error {
	objs, err := v.importer.ImportScene(m.Path)
	if err != nil {
		return err
	}

	placement := modelMatrix(m)
	for _, obj := range objs {
		place(obj, m, placement)
	}

	for i, obj := range objs {
		if err := v.scene.AddObject(obj); err != nil {
			for _, added := range objs[:i] {
				v.scene.RemoveObject(added.ID)
			}
			for _, rest := range objs[i:] {
				rest.Destroy(v.dev)
			}
			return err
		}
	}
	v.log.Info("model loaded", zap.String("path", m.Path), zap.Int("objects", len(objs)))
	return nil
}

func modelScale(m config.ModelConfig) math.Vec3 {
	s := math.V3(m.Scale)
	if s == (math.Vec3{}) {
		return math.Vec3{X: 1, Y: 1, Z: 1}
	}
	return s
}

// modelMatrix is T·Rx·Ry·Rz·S for the configured placement.
func modelMatrix(m config.ModelConfig) math.Mat4 {
	t := scene.Transform{
		Position: math.V3(m.Position),
		Rotation: math.V3(m.Rotation),
		Scale:    modelScale(m),
	}
	return t.ModelMatrix()
}

// place moves an object whose transform holds its center in file space so
// that its vertices end up at placement·v.
func place(obj *scene.Object, m config.ModelConfig, placement math.Mat4) {
	center := obj.Transform.Position.Array()
	obj.Transform.Position = math.V3(placement.TransformPoint(center))
	obj.Transform.Rotation = math.V3(m.Rotation)
	obj.Transform.Scale = modelScale(m)
}

// LoadSkybox bakes path and binds it. On failure the current environment
// stays bound.
func (v *Viewer) LoadSkybox(path string) error {
	v.assets.Forget(path)
	env, err := v.baker.Bake(path)
	if err != nil {
		return err
	}
	v.scene.SetEnvironment(env)
	v.skybox = path
	return nil
}

func (v *Viewer) registerHandlers() {
	cam := v.scene.Camera

	v.dispatch.On(events.Quit, func(events.Event) { v.quit = true })
	v.dispatch.On(events.Resize, func(events.Event) {
		// Event sizes are in screen coordinates; the viewport needs pixels.
		v.resize(v.surface.DrawableSize())
	})
	v.dispatch.On(events.CameraRotate, func(e events.Event) { cam.Rotate(e.DX, e.DY) })
	v.dispatch.On(events.CameraZoom, func(e events.Event) { cam.Zoom(e.Zoom) })
	v.dispatch.On(events.CameraReset, func(events.Event) { cam.Reset() })
	v.dispatch.On(events.ReloadSkybox, func(e events.Event) {
		path := e.Path
		if path == "" {
			path = v.skybox
		}
		if path == "" {
			v.log.Warn("no skybox to reload")
			return
		}
		if err := v.LoadSkybox(path); err != nil {
			v.log.Error("skybox reload failed, keeping current environment", zap.Error(err))
		}
	})
	v.dispatch.On(events.ToggleDebug, func(events.Event) { v.toggleDebug() })
}

func (v *Viewer) resize(w, h int) {
	if vs, ok := v.dev.(viewportSetter); ok {
		vs.SetViewport(w, h)
	}
	v.scene.Camera.SetViewport(w, h)
}

func (v *Viewer) toggleDebug() {
	v.debug = !v.debug
	if !v.debug {
		v.surface.SetTitle(v.cfg.Window.Title)
		return
	}
	snap := v.Snapshot()
	for _, line := range snap.Lines() {
		v.log.Info(line)
	}
	v.surface.SetTitle(snap.Title())
}

// Snapshot captures the debug overlay data for the last frame.
func (v *Viewer) Snapshot() debugview.Snapshot {
	snap := debugview.Capture(v.scene, v.lastStats)
	v.timer.Fill(&snap)
	return snap
}

// Scene returns the viewer's scene.
func (v *Viewer) Scene() *scene.Scene {
	return v.scene
}

// Frame dispatches events and draws one frame of dt seconds. It reports
// false once a quit was requested.
func (v *Viewer) Frame(dt float64) bool {
	quit := v.input.Update()
	v.dispatch.DispatchAll(v.input.Events())
	if quit || v.quit {
		return false
	}

	v.scene.Update(float32(dt))
	out := v.shadows.Render(v.scene)
	v.lastStats = v.renderer.Render(v.scene, out)
	v.surface.SwapBuffers()

	v.timer.Tick(dt * 1000)
	if v.debug {
		v.titleAccum += dt
		if v.titleAccum >= 0.5 {
			v.surface.SetTitle(v.Snapshot().Title())
			v.titleAccum = 0
		}
	}
	return true
}

// Run loops until a quit is requested.
func (v *Viewer) Run() error {
	v.log.Info("starting frame loop")

	last := time.Now()
	frames := 0
	for {
		now := time.Now()
		dt := now.Sub(last).Seconds()
		last = now

		if !v.Frame(dt) {
			break
		}
		frames++
	}

	v.log.Info("frame loop stopped", zap.Int("frames", frames))
	return nil
}

// Close releases every GPU resource the viewer created.
func (v *Viewer) Close() {
	v.log.Info("closing viewer")

	if v.scene != nil {
		v.scene.Destroy()
	}
	if v.shadows != nil {
		v.shadows.Destroy()
	}
	if v.renderer != nil {
		v.renderer.Close()
	}
	if v.baker != nil {
		v.baker.Close()
	}
	v.assets.Close()
}
