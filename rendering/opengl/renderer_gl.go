package opengl

import (
	"fmt"
	"runtime"

	"github.com/go-gl/gl/v4.3-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"grassrenderer/core"
	"grassrenderer/rendering/opengl/overlay"
)

// WindowConfig describes the window created by NewRenderer
type WindowConfig struct {
	Width  int
	Height int
	Title  string
	VSync  bool
}

// Renderer owns the window and GL context. It is the render side of the
// frame scheduler: camera uniforms, the memory barrier and the indirect draw.
type Renderer struct {
	window *glfw.Window
	log    *zap.Logger

	camera *Camera
	grass  *GrassStage
	ground *Ground

	// Render settings
	width, height int

	// Mouse state for camera control
	mouseDown  bool
	lastMouseX float64
	lastMouseY float64

	// Stats overlay
	statsOverlay *overlay.StatsOverlay
	showStats    bool

	// Simulation control (public for main.go access)
	Paused bool
}

// NewRenderer creates the window and a 4.3 core context. Must be called from
// the main goroutine; the OS thread stays locked for the life of the context.
func NewRenderer(cfg WindowConfig, camera *Camera, log *zap.Logger) (*Renderer, error) {
	runtime.LockOSThread()

	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize GLFW: %w", err)
	}

	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 3)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	window, err := glfw.CreateWindow(cfg.Width, cfg.Height, cfg.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	window.MakeContextCurrent()

	if cfg.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}

	if err := gl.Init(); err != nil {
		window.Destroy()
		glfw.Terminate()
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	log.Info("OpenGL context ready",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))))

	fbWidth, fbHeight := window.GetFramebufferSize()
	r := &Renderer{
		window:    window,
		log:       log,
		camera:    camera,
		width:     fbWidth,
		height:    fbHeight,
		showStats: true,
	}

	gl.Enable(gl.DEPTH_TEST)
	gl.ClearColor(0.2, 0.3, 0.3, 1.0)
	gl.Viewport(0, 0, int32(fbWidth), int32(fbHeight))

	window.SetFramebufferSizeCallback(func(w *glfw.Window, width, height int) {
		r.onResize(width, height)
	})

	window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		r.onKey(key, scancode, action, mods)
	})

	window.SetScrollCallback(func(w *glfw.Window, xoff, yoff float64) {
		r.onScroll(xoff, yoff)
	})

	window.SetMouseButtonCallback(func(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
		r.onMouseButton(button, action, mods)
	})

	window.SetCursorPosCallback(func(w *glfw.Window, xpos, ypos float64) {
		r.onMouseMove(xpos, ypos)
	})

	return r, nil
}

// Attach hands the renderer the stages it draws each frame. The renderer
// releases them on Terminate.
func (r *Renderer) Attach(grass *GrassStage, ground *Ground, stats *overlay.StatsOverlay) {
	r.grass = grass
	r.ground = ground
	r.statsOverlay = stats
	if stats != nil {
		stats.UpdateSize(r.width, r.height)
	}
}

// SetCamera uploads the camera to every stage
func (r *Renderer) SetCamera(camera core.CameraState) {
	if r.ground != nil {
		r.ground.SetCamera(camera)
	}
	r.grass.SetCamera(camera)
}

// MemoryBarrier makes compute writes visible to the draw
func (r *Renderer) MemoryBarrier(bits uint32) {
	gl.MemoryBarrier(bits)
}

// DrawIndirect draws the ground and then the blades in buffer
func (r *Renderer) DrawIndirect(buffer int) {
	if r.ground != nil {
		r.ground.Draw()
	}
	r.grass.Draw(buffer)
}

// CameraState snapshots the camera for the current framebuffer
func (r *Renderer) CameraState() core.CameraState {
	return r.camera.State(r.Aspect())
}

// Aspect is the framebuffer aspect ratio
func (r *Renderer) Aspect() float32 {
	if r.height == 0 {
		return 1
	}
	return float32(r.width) / float32(r.height)
}

// BeginFrame applies held movement keys and clears the framebuffer. It
// returns false when there is nothing to draw into, e.g. while minimized.
func (r *Renderer) BeginFrame(dt float32) bool {
	if r.window.GetAttrib(glfw.Iconified) == glfw.True || r.width == 0 || r.height == 0 {
		return false
	}

	movement := map[glfw.Key]Movement{
		glfw.KeyW: MoveForward,
		glfw.KeyS: MoveBackward,
		glfw.KeyA: MoveLeft,
		glfw.KeyD: MoveRight,
	}
	for key, m := range movement {
		if r.window.GetKey(key) == glfw.Press {
			r.camera.Move(m, dt)
		}
	}

	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	return true
}

// EndFrame draws the overlay and presents
func (r *Renderer) EndFrame(stats overlay.Stats) {
	if r.showStats && r.statsOverlay != nil {
		r.statsOverlay.UpdateStats(stats)
		r.statsOverlay.Render()
	}
	r.window.SwapBuffers()
}

// Event handlers
func (r *Renderer) onResize(width, height int) {
	r.width = width
	r.height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	if r.statsOverlay != nil {
		r.statsOverlay.UpdateSize(width, height)
	}
}

func (r *Renderer) onKey(key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	if action != glfw.Press {
		return
	}

	switch key {
	case glfw.KeyEscape:
		r.window.SetShouldClose(true)
	case glfw.KeyF1:
		r.showStats = !r.showStats
		r.log.Debug("stats overlay toggled", zap.Bool("visible", r.showStats))
	case glfw.KeyP:
		r.Paused = !r.Paused
		r.log.Info("simulation pause toggled", zap.Bool("paused", r.Paused))
	case glfw.KeyR:
		pos := r.camera.Position()
		r.log.Info("camera",
			zap.Float32s("position", pos[:]),
			zap.Float32("yaw", r.camera.Yaw()),
			zap.Float32("pitch", r.camera.Pitch()),
			zap.Float32("zoom", r.camera.Zoom()))
	}
}

func (r *Renderer) onScroll(xoff, yoff float64) {
	r.camera.Scroll(float32(yoff))
}

// onMouseButton starts and stops mouse look
func (r *Renderer) onMouseButton(button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
	if button != glfw.MouseButtonLeft {
		return
	}
	switch action {
	case glfw.Press:
		r.mouseDown = true
		r.lastMouseX, r.lastMouseY = r.window.GetCursorPos()
	case glfw.Release:
		r.mouseDown = false
	}
}

// onMouseMove turns the camera while the left button is held
func (r *Renderer) onMouseMove(xpos, ypos float64) {
	if !r.mouseDown {
		return
	}
	dx := float32(xpos - r.lastMouseX)
	// window y grows downwards
	dy := float32(r.lastMouseY - ypos)
	r.lastMouseX = xpos
	r.lastMouseY = ypos
	r.camera.Look(dx, dy)
}

// ShouldClose returns true if the window should close
func (r *Renderer) ShouldClose() bool {
	return r.window.ShouldClose()
}

// Close asks the window to close at the end of the frame
func (r *Renderer) Close() {
	r.window.SetShouldClose(true)
}

// PollEvents processes window events
func (r *Renderer) PollEvents() {
	glfw.PollEvents()
}

// Time is the GLFW clock in seconds
func (r *Renderer) Time() float64 {
	return glfw.GetTime()
}

// Terminate cleans up OpenGL resources
func (r *Renderer) Terminate() {
	if r.statsOverlay != nil {
		r.statsOverlay.Release()
	}
	if r.grass != nil {
		r.grass.Release()
	}
	if r.ground != nil {
		r.ground.Release()
	}
	r.window.Destroy()
	glfw.Terminate()
}

// DefaultCamera matches the starting view over a field centred on the origin
func DefaultCamera() *Camera {
	return NewCamera(mgl32.Vec3{0, 1, 6})
}
