// Package mesh turns chunk voxel content into renderable geometry. It is a
// pure transform over CPU data and never touches GPU state, so it is safe to
// run on worker goroutines.
package mesh

import (
	"github.com/Whoisraeen/Odyssey-sub002/internal/block"
)

// VertexStride is the number of float32s per vertex: position (3),
// normal (3), texture coordinate (2), tightly interleaved.
const VertexStride = 8

// atlasTiles is the texture atlas grid dimension; tile coordinates from the
// block table are normalized against it.
const atlasTiles = 16

// Mesh holds one chunk's surface geometry. An empty mesh (no indices) is a
// valid result for a chunk with no visible faces.
type Mesh struct {
	Vertices []float32
	Indices  []uint32
}

func (m *Mesh) TriangleCount() int32 {
	return int32(len(m.Indices) / 3)
}

type faceDef struct {
	dx, dy, dz int           // neighbor offset
	normal     [3]float32
	corners    [4][3]float32 // CCW seen from outside
}

// Corner order matches gl.FrontFace(CCW) with back-face culling.
var faces = [block.FaceCount]faceDef{
	block.FaceTop: {0, 1, 0, [3]float32{0, 1, 0},
		[4][3]float32{{0, 1, 0}, {0, 1, 1}, {1, 1, 1}, {1, 1, 0}}},
	block.FaceBottom: {0, -1, 0, [3]float32{0, -1, 0},
		[4][3]float32{{0, 0, 0}, {1, 0, 0}, {1, 0, 1}, {0, 0, 1}}},
	block.FaceNorth: {0, 0, 1, [3]float32{0, 0, 1},
		[4][3]float32{{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1}}},
	block.FaceSouth: {0, 0, -1, [3]float32{0, 0, -1},
		[4][3]float32{{0, 0, 0}, {0, 1, 0}, {1, 1, 0}, {1, 0, 0}}},
	block.FaceEast: {1, 0, 0, [3]float32{1, 0, 0},
		[4][3]float32{{1, 0, 0}, {1, 1, 0}, {1, 1, 1}, {1, 0, 1}}},
	block.FaceWest: {-1, 0, 0, [3]float32{-1, 0, 0},
		[4][3]float32{{0, 0, 0}, {0, 0, 1}, {0, 1, 1}, {0, 1, 0}}},
}

// uvCorners parallels faceDef.corners within the face's atlas tile.
var uvCorners = [4][2]float32{{0, 1}, {1, 1}, {1, 0}, {0, 0}}

// Build produces the visible-surface mesh for a chunk volume of
// width x height x width voxels in x-fastest order (see world.Dims). Faces
// against air or the chunk boundary are emitted; faces between two solid
// voxels are culled. Identical input always yields byte-identical output.
func Build(width, height int, voxels []block.ID) *Mesh {
	m := &Mesh{}
	if width <= 0 || height <= 0 || len(voxels) != width*width*height {
		return m
	}

	at := func(x, y, z int) block.ID {
		return voxels[(y*width+z)*width+x]
	}

	for y := 0; y < height; y++ {
		for z := 0; z < width; z++ {
			for x := 0; x < width; x++ {
				self := at(x, y, z)
				if self == block.Air {
					continue
				}
				for f := 0; f < block.FaceCount; f++ {
					face := &faces[f]
					nx, ny, nz := x+face.dx, y+face.dy, z+face.dz
					var neighbor block.ID
					outside := nx < 0 || nx >= width || ny < 0 || ny >= height || nz < 0 || nz >= width
					if !outside {
						neighbor = at(nx, ny, nz)
					}
					if !faceVisible(self, neighbor, outside) {
						continue
					}
					m.emitFace(x, y, z, f, self, face)
				}
			}
		}
	}
	return m
}

// faceVisible decides whether a face contributes geometry. Liquids only show
// their surface against air; solids show against anything non-solid.
func faceVisible(self, neighbor block.ID, boundary bool) bool {
	if boundary {
		return true
	}
	if block.Liquid(self) {
		return neighbor == block.Air
	}
	return !block.Solid(neighbor)
}

func (m *Mesh) emitFace(x, y, z, faceIdx int, id block.ID, face *faceDef) {
	tile := block.TileFor(id, faceIdx)
	base := uint32(len(m.Vertices) / VertexStride)

	for c := 0; c < 4; c++ {
		corner := face.corners[c]
		m.Vertices = append(m.Vertices,
			float32(x)+corner[0],
			float32(y)+corner[1],
			float32(z)+corner[2],
			face.normal[0], face.normal[1], face.normal[2],
			(float32(tile.U)+uvCorners[c][0])/atlasTiles,
			(float32(tile.V)+uvCorners[c][1])/atlasTiles,
		)
	}
	m.Indices = append(m.Indices,
		base, base+1, base+2,
		base+2, base+3, base,
	)
}
