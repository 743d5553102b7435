package mesh

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/Whoisraeen/Odyssey-sub002/internal/block"
)

func flatVoxels(width, height int) []block.ID {
	return make([]block.ID, width*width*height)
}

func setVoxel(voxels []block.ID, width, x, y, z int, id block.ID) {
	voxels[(y*width+z)*width+x] = id
}

func TestEmptyContentYieldsEmptyMesh(t *testing.T) {
	m := Build(4, 4, flatVoxels(4, 4))
	if len(m.Vertices) != 0 || len(m.Indices) != 0 {
		t.Fatalf("empty chunk produced %d verts, %d indices", len(m.Vertices), len(m.Indices))
	}
	if m.TriangleCount() != 0 {
		t.Fatalf("triangle count = %d, want 0", m.TriangleCount())
	}
}

func TestLoneCubeEmitsSixFaces(t *testing.T) {
	voxels := flatVoxels(4, 4)
	setVoxel(voxels, 4, 1, 1, 1, block.Stone)

	m := Build(4, 4, voxels)
	// 6 faces, 4 vertices and 6 indices each.
	if got := len(m.Vertices) / VertexStride; got != 24 {
		t.Fatalf("vertex count = %d, want 24", got)
	}
	if got := m.TriangleCount(); got != 12 {
		t.Fatalf("triangle count = %d, want 12", got)
	}
}

func TestSharedFacesAreCulled(t *testing.T) {
	voxels := flatVoxels(4, 4)
	setVoxel(voxels, 4, 1, 1, 1, block.Stone)
	setVoxel(voxels, 4, 2, 1, 1, block.Dirt)

	m := Build(4, 4, voxels)
	// Two cubes sharing one face: 10 faces total instead of 12.
	if got := len(m.Vertices) / VertexStride; got != 40 {
		t.Fatalf("vertex count = %d, want 40", got)
	}
}

func TestBoundaryFacesAreEmitted(t *testing.T) {
	voxels := flatVoxels(2, 2)
	setVoxel(voxels, 2, 0, 0, 0, block.Stone)

	m := Build(2, 2, voxels)
	if got := len(m.Vertices) / VertexStride; got != 24 {
		t.Fatalf("corner voxel vertex count = %d, want 24 (all faces visible)", got)
	}
}

func TestSolidFaceAgainstLiquidIsEmitted(t *testing.T) {
	voxels := flatVoxels(4, 4)
	setVoxel(voxels, 4, 1, 1, 1, block.Stone)
	setVoxel(voxels, 4, 2, 1, 1, block.Water)

	m := Build(4, 4, voxels)
	// Stone keeps all 6 faces because water is not solid. Assert the
	// stone-water interface was not culled by comparing against the
	// two-solids case.
	twoSolid := flatVoxels(4, 4)
	setVoxel(twoSolid, 4, 1, 1, 1, block.Stone)
	setVoxel(twoSolid, 4, 2, 1, 1, block.Dirt)
	culled := Build(4, 4, twoSolid)
	if len(m.Vertices) <= len(culled.Vertices) {
		t.Fatalf("stone|water mesh (%d floats) should exceed stone|dirt mesh (%d floats)",
			len(m.Vertices), len(culled.Vertices))
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	voxels := flatVoxels(8, 8)
	for x := 0; x < 8; x++ {
		for z := 0; z < 8; z++ {
			setVoxel(voxels, 8, x, 0, z, block.Stone)
			setVoxel(voxels, 8, x, 1, z, block.Dirt)
			if (x+z)%3 == 0 {
				setVoxel(voxels, 8, x, 2, z, block.Grass)
			}
		}
	}

	a := Build(8, 8, voxels)
	b := Build(8, 8, voxels)

	if !bytes.Equal(encode(t, a.Vertices), encode(t, b.Vertices)) {
		t.Fatal("vertex buffers differ between identical builds")
	}
	if !bytes.Equal(encode(t, a.Indices), encode(t, b.Indices)) {
		t.Fatal("index buffers differ between identical builds")
	}
}

func encode(t *testing.T, v any) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, v); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}
