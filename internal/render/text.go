package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"os"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/golang/freetype"
	"golang.org/x/image/font"
)

const (
	overlayCanvas   = 512
	overlayFontSize = 18
	overlayLineGap  = 22
)

// Overlay renders debug text into an RGBA canvas with freetype and blits it
// as a single textured quad each frame.
type Overlay struct {
	prog    uint32
	vao     uint32
	texture uint32

	ctx *freetype.Context
	dst *image.RGBA

	projLoc  int32
	modelLoc int32
}

func NewOverlay(fontPath string, winWidth, winHeight int) (*Overlay, error) {
	fontData, err := os.ReadFile(fontPath)
	if err != nil {
		return nil, fmt.Errorf("read font %s: %w", fontPath, err)
	}
	parsed, err := freetype.ParseFont(fontData)
	if err != nil {
		return nil, fmt.Errorf("parse font %s: %w", fontPath, err)
	}

	dst := image.NewRGBA(image.Rect(0, 0, overlayCanvas, overlayCanvas))
	draw.Draw(dst, dst.Bounds(), &image.Uniform{C: color.Transparent}, image.Point{}, draw.Src)
	ctx := freetype.NewContext()
	ctx.SetFont(parsed)
	ctx.SetDst(dst)
	ctx.SetClip(dst.Bounds())
	ctx.SetSrc(image.White)
	ctx.SetFontSize(overlayFontSize)
	ctx.SetHinting(font.HintingFull)

	prog, err := linkProgram("shaders/text.vert", "shaders/text.frag")
	if err != nil {
		return nil, err
	}

	o := &Overlay{
		prog:     prog,
		ctx:      ctx,
		dst:      dst,
		projLoc:  uniform(prog, "projection"),
		modelLoc: uniform(prog, "model"),
	}
	o.initQuad()
	o.initTexture()

	gl.UseProgram(prog)
	gl.Uniform1i(uniform(prog, "glyphs"), 0)
	ortho := mgl32.Ortho(0, float32(winWidth), float32(winHeight), 0, -1, 1)
	gl.UniformMatrix4fv(o.projLoc, 1, false, &ortho[0])
	return o, nil
}

func (o *Overlay) initQuad() {
	vertices := []float32{
		0.0, 1.0, 0.0, 0.0, 1.0, // Top-left
		0.0, 0.0, 0.0, 0.0, 0.0, // Bottom-left
		1.0, 0.0, 0.0, 1.0, 0.0, // Bottom-right

		0.0, 1.0, 0.0, 0.0, 1.0, // Top-left
		1.0, 0.0, 0.0, 1.0, 0.0, // Bottom-right
		1.0, 1.0, 0.0, 1.0, 1.0,
	}

	gl.GenVertexArrays(1, &o.vao)
	gl.BindVertexArray(o.vao)

	var vbo uint32
	gl.GenBuffers(1, &vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, gl.Ptr(vertices), gl.STATIC_DRAW)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, 5*4, nil)
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointerWithOffset(1, 2, gl.FLOAT, false, 5*4, uintptr(3*4))
	gl.BindVertexArray(0)
}

func (o *Overlay) initTexture() {
	gl.GenTextures(1, &o.texture)
	gl.BindTexture(gl.TEXTURE_2D, o.texture)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA,
		overlayCanvas, overlayCanvas,
		0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(o.dst.Pix))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
}

// Draw re-renders the lines into the canvas and blits it at the top-left
// corner. Call after the 3D pass.
func (o *Overlay) Draw(lines []string) {
	for i := range o.dst.Pix {
		o.dst.Pix[i] = 0
	}
	for i, line := range lines {
		pt := freetype.Pt(8, overlayLineGap*(i+1))
		if _, err := o.ctx.DrawString(line, pt); err != nil {
			break
		}
	}

	gl.Disable(gl.DEPTH_TEST)
	gl.Disable(gl.CULL_FACE)

	gl.UseProgram(o.prog)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, o.texture)
	gl.TexSubImage2D(gl.TEXTURE_2D, 0, 0, 0,
		overlayCanvas, overlayCanvas,
		gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(o.dst.Pix))

	model := mgl32.Scale3D(overlayCanvas, overlayCanvas, 1)
	gl.UniformMatrix4fv(o.modelLoc, 1, false, &model[0])
	gl.BindVertexArray(o.vao)
	gl.DrawArrays(gl.TRIANGLES, 0, 6)
	gl.BindVertexArray(0)

	gl.Enable(gl.DEPTH_TEST)
	gl.Enable(gl.CULL_FACE)
}
