package render

import (
	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Whoisraeen/Odyssey-sub002/internal/config"
	"github.com/Whoisraeen/Odyssey-sub002/internal/world"
)

const (
	nearClipPlane = 0.1
	farClipPlane  = 350.0
)

var skyColor = mgl32.Vec3{0.53, 0.81, 0.92}

// Renderer draws the visible chunk set with the block shader. One instance
// per window, owner-thread only.
type Renderer struct {
	prog  uint32
	atlas uint32

	modelLoc    int32
	viewLoc     int32
	projLoc     int32
	sunLoc      int32
	fogColorLoc int32
	fogStartLoc int32
	fogEndLoc   int32
	cameraLoc   int32

	projection mgl32.Mat4
}

func NewRenderer(cfg config.WindowConfig, atlasPath string) (*Renderer, error) {
	gl.Enable(gl.CULL_FACE)
	gl.CullFace(gl.BACK)
	gl.FrontFace(gl.CCW)
	gl.Enable(gl.DEPTH_TEST)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)

	prog, err := linkProgram("shaders/block.vert", "shaders/block.frag")
	if err != nil {
		return nil, err
	}
	atlas, err := LoadAtlas(atlasPath)
	if err != nil {
		gl.DeleteProgram(prog)
		return nil, err
	}

	r := &Renderer{
		prog:        prog,
		atlas:       atlas,
		modelLoc:    uniform(prog, "model"),
		viewLoc:     uniform(prog, "view"),
		projLoc:     uniform(prog, "projection"),
		sunLoc:      uniform(prog, "sunDir"),
		fogColorLoc: uniform(prog, "fogColor"),
		fogStartLoc: uniform(prog, "fogStart"),
		fogEndLoc:   uniform(prog, "fogEnd"),
		cameraLoc:   uniform(prog, "cameraPos"),
	}
	r.SetViewport(cfg.Width, cfg.Height, cfg.FOV)

	gl.UseProgram(prog)
	gl.Uniform1i(uniform(prog, "atlas"), 0)
	sun := mgl32.Vec3{0.4, 0.8, 0.3}.Normalize()
	gl.Uniform3f(r.sunLoc, sun.X(), sun.Y(), sun.Z())
	gl.Uniform3f(r.fogColorLoc, skyColor.X(), skyColor.Y(), skyColor.Z())
	gl.Uniform1f(r.fogStartLoc, farClipPlane*0.5)
	gl.Uniform1f(r.fogEndLoc, farClipPlane*0.9)

	gl.ClearColor(skyColor.X(), skyColor.Y(), skyColor.Z(), 1)
	return r, nil
}

// SetViewport recomputes the projection matrix after a resize.
func (r *Renderer) SetViewport(width, height int, fov float32) {
	aspect := float32(width) / float32(height)
	r.projection = mgl32.Perspective(mgl32.DegToRad(fov), aspect, nearClipPlane, farClipPlane)
}

// Draw renders every chunk with geometry. Chunks whose mesh built empty are
// skipped entirely.
func (r *Renderer) Draw(cam *Camera, chunks []*world.Chunk) {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	gl.Enable(gl.CULL_FACE)
	gl.Enable(gl.DEPTH_TEST)

	gl.UseProgram(r.prog)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, r.atlas)

	view := cam.View()
	gl.UniformMatrix4fv(r.viewLoc, 1, false, &view[0])
	gl.UniformMatrix4fv(r.projLoc, 1, false, &r.projection[0])
	gl.Uniform3f(r.cameraLoc, cam.Position.X(), cam.Position.Y(), cam.Position.Z())

	for _, ch := range chunks {
		if !ch.HasGeometry() {
			continue
		}
		model := ch.Model()
		gl.UniformMatrix4fv(r.modelLoc, 1, false, &model[0])
		gl.BindVertexArray(ch.VAO())
		gl.DrawElements(gl.TRIANGLES, ch.TriCount()*3, gl.UNSIGNED_INT, nil)
	}
	gl.BindVertexArray(0)
}
