// Package render owns everything that touches the OpenGL context: geometry
// upload, shaders, the texture atlas, the camera and the debug overlay. All
// of it must run on the thread that created the window.
package render

import (
	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Whoisraeen/Odyssey-sub002/internal/mesh"
	"github.com/Whoisraeen/Odyssey-sub002/internal/world"
)

// GL uploads chunk meshes to the GPU. Handles are allocated on first upload
// and reused on every rebuild.
type GL struct{}

func (GL) Upload(state *world.GPUState, m *mesh.Mesh) {
	if !state.Allocated() {
		gl.GenVertexArrays(1, &state.VAO)
		gl.GenBuffers(1, &state.VBO)
		gl.GenBuffers(1, &state.EBO)
	}
	state.TriCount = m.TriangleCount()

	gl.BindVertexArray(state.VAO)

	gl.BindBuffer(gl.ARRAY_BUFFER, state.VBO)
	if len(m.Vertices) > 0 {
		gl.BufferData(gl.ARRAY_BUFFER, 4*len(m.Vertices), gl.Ptr(m.Vertices), gl.STATIC_DRAW)
	} else {
		gl.BufferData(gl.ARRAY_BUFFER, 0, nil, gl.STATIC_DRAW)
	}

	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, state.EBO)
	if len(m.Indices) > 0 {
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, 4*len(m.Indices), gl.Ptr(m.Indices), gl.STATIC_DRAW)
	} else {
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, 0, nil, gl.STATIC_DRAW)
	}

	stride := int32(mesh.VertexStride * 4)

	//position
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, stride, nil)

	//normal
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, stride, uintptr(3*4))

	//texture coordinate
	gl.EnableVertexAttribArray(2)
	gl.VertexAttribPointerWithOffset(2, 2, gl.FLOAT, false, stride, uintptr(6*4))

	gl.BindVertexArray(0)
}

func (GL) Release(state *world.GPUState) {
	gl.DeleteVertexArrays(1, &state.VAO)
	gl.DeleteBuffers(1, &state.VBO)
	gl.DeleteBuffers(1, &state.EBO)
	*state = world.GPUState{}
}
