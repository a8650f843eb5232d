// Package framebuffer provides the OpenGL framebuffer used for off-screen
// captures: cube faces, mip levels, shadow depth maps and lookup tables.
package framebuffer

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// Attachment names one texture image to render into.
type Attachment struct {
	Texture uint32
	// Target is gl.TEXTURE_2D or gl.TEXTURE_CUBE_MAP_POSITIVE_X+face.
	Target uint32
	Mip    int32
	// Depth attaches the texture as the depth buffer with no color output.
	Depth  bool
	Width  int32
	Height int32
}

// Capture is one reusable framebuffer object. Color attachments get a depth
// renderbuffer sized to match. Binds must not nest.
type Capture struct {
	fbo      uint32
	depthRBO uint32
	rboW     int32
	rboH     int32
}

// New creates the framebuffer object.
func New() *Capture {
	c := &Capture{}
	gl.GenFramebuffers(1, &c.fbo)
	gl.GenRenderbuffers(1, &c.depthRBO)
	return c
}

// Bind attaches a and sets the viewport to its size, saving previous state.
// Returns a restore function to restore the previous framebuffer and viewport.
func (c *Capture) Bind(a Attachment) (func(), error) {
	var prevFBO int32
	var prevViewport [4]int32
	gl.GetIntegerv(gl.FRAMEBUFFER_BINDING, &prevFBO)
	gl.GetIntegerv(gl.VIEWPORT, &prevViewport[0])

	restore := func() {
		gl.BindFramebuffer(gl.FRAMEBUFFER, uint32(prevFBO))
		gl.Viewport(prevViewport[0], prevViewport[1], prevViewport[2], prevViewport[3])
	}

	gl.BindFramebuffer(gl.FRAMEBUFFER, c.fbo)
	if a.Depth {
		gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, 0, 0)
		gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, a.Target, a.Texture, a.Mip)
		gl.DrawBuffer(gl.NONE)
		gl.ReadBuffer(gl.NONE)
	} else {
		c.ensureDepth(a.Width, a.Height)
		gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.RENDERBUFFER, c.depthRBO)
		gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, a.Target, a.Texture, a.Mip)
		gl.DrawBuffer(gl.COLOR_ATTACHMENT0)
		gl.ReadBuffer(gl.COLOR_ATTACHMENT0)
	}

	// Check framebuffer completeness
	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	if status != gl.FRAMEBUFFER_COMPLETE {
		restore()
		return nil, fmt.Errorf("framebuffer incomplete: 0x%x", status)
	}

	gl.Viewport(0, 0, a.Width, a.Height)
	return restore, nil
}

// ensureDepth grows or shrinks the depth renderbuffer to width x height.
func (c *Capture) ensureDepth(width, height int32) {
	if width == c.rboW && height == c.rboH {
		return
	}
	gl.BindRenderbuffer(gl.RENDERBUFFER, c.depthRBO)
	gl.RenderbufferStorage(gl.RENDERBUFFER, gl.DEPTH_COMPONENT24, width, height)
	c.rboW, c.rboH = width, height
}

// Destroy releases all OpenGL resources.
func (c *Capture) Destroy() {
	if c.fbo != 0 {
		gl.DeleteFramebuffers(1, &c.fbo)
		c.fbo = 0
	}
	if c.depthRBO != 0 {
		gl.DeleteRenderbuffers(1, &c.depthRBO)
		c.depthRBO = 0
	}
}
