package world

import (
	"testing"

	"github.com/Whoisraeen/Odyssey-sub002/internal/block"
	"github.com/Whoisraeen/Odyssey-sub002/internal/mesh"
)

// fakeUploader mimics the GL uploader's handle bookkeeping without a GL
// context.
type fakeUploader struct {
	uploads  int
	releases int
	nextName uint32
}

func (f *fakeUploader) Upload(state *GPUState, m *mesh.Mesh) {
	f.uploads++
	if !state.Allocated() {
		f.nextName++
		state.VAO = f.nextName
		f.nextName++
		state.VBO = f.nextName
		f.nextName++
		state.EBO = f.nextName
	}
	state.TriCount = m.TriangleCount()
}

func (f *fakeUploader) Release(state *GPUState) {
	f.releases++
	*state = GPUState{}
}

func testDims() Dims {
	return Dims{Width: 8, Height: 8}
}

func TestVoxelRoundTrip(t *testing.T) {
	c := NewChunk(ChunkCoord{}, testDims())
	d := testDims()
	for x := 0; x < d.Width; x++ {
		for y := 0; y < d.Height; y++ {
			for z := 0; z < d.Width; z++ {
				want := block.ID((x + y + z) % 4)
				if err := c.SetVoxel(x, y, z, want); err != nil {
					t.Fatalf("set (%d,%d,%d): %v", x, y, z, err)
				}
				if got := c.GetVoxel(x, y, z); got != want {
					t.Fatalf("get (%d,%d,%d) = %v, want %v", x, y, z, got, want)
				}
			}
		}
	}
}

func TestOutOfBoundsAccess(t *testing.T) {
	c := NewChunk(ChunkCoord{}, testDims())
	probes := [][3]int{{-1, 0, 0}, {8, 0, 0}, {0, -1, 0}, {0, 8, 0}, {0, 0, -1}, {0, 0, 8}, {100, 100, 100}}
	for _, p := range probes {
		if err := c.SetVoxel(p[0], p[1], p[2], block.Stone); err != nil {
			t.Fatalf("oob write (%v) errored: %v", p, err)
		}
		if got := c.GetVoxel(p[0], p[1], p[2]); got != block.Air {
			t.Fatalf("oob read (%v) = %v, want air", p, got)
		}
	}
}

func TestEditBumpsVersionAndStale(t *testing.T) {
	c := NewChunk(ChunkCoord{}, testDims())
	v0 := c.Version()
	if err := c.SetVoxel(1, 1, 1, block.Dirt); err != nil {
		t.Fatalf("set: %v", err)
	}
	if c.Version() <= v0 {
		t.Fatalf("version did not advance: %d -> %d", v0, c.Version())
	}
	if !c.Stale() {
		t.Fatal("edit must mark the mesh stale")
	}
	// Writing an identical value is not an edit.
	v1 := c.Version()
	if err := c.SetVoxel(1, 1, 1, block.Dirt); err != nil {
		t.Fatalf("set: %v", err)
	}
	if c.Version() != v1 {
		t.Fatal("no-op write must not bump version")
	}
}

func TestAttachMeshUploadAndRelease(t *testing.T) {
	c := NewChunk(ChunkCoord{X: 2, Z: -1}, testDims())
	up := &fakeUploader{}

	if err := c.SetVoxel(3, 3, 3, block.Stone); err != nil {
		t.Fatalf("set: %v", err)
	}
	types, _ := c.Snapshot()
	m := mesh.Build(8, 8, types)

	c.AttachMesh(m, up)
	if c.Stale() {
		t.Fatal("attach must clear stale flag")
	}
	if !c.HasGeometry() {
		t.Fatal("chunk with a cube must have renderable geometry")
	}
	vao := c.VAO()
	if vao == 0 {
		t.Fatal("upload must allocate handles")
	}

	// Re-upload keeps the same handles.
	c.AttachMesh(m, up)
	if c.VAO() != vao {
		t.Fatalf("re-upload changed VAO: %d -> %d", vao, c.VAO())
	}
	if up.uploads != 2 {
		t.Fatalf("uploads = %d, want 2", up.uploads)
	}

	c.Release(up)
	c.Release(up)
	if up.releases != 1 {
		t.Fatalf("releases = %d, want 1 (idempotent release)", up.releases)
	}
	if c.VAO() != 0 {
		t.Fatal("release must zero the handles")
	}
}

func TestEmptyMeshIsValid(t *testing.T) {
	c := NewChunk(ChunkCoord{}, testDims())
	up := &fakeUploader{}
	types, _ := c.Snapshot()
	c.AttachMesh(mesh.Build(8, 8, types), up)
	if c.TriCount() != 0 {
		t.Fatalf("tri count = %d, want 0", c.TriCount())
	}
	if c.HasGeometry() {
		t.Fatal("all-air chunk must not report renderable geometry")
	}
}

func TestModelTransform(t *testing.T) {
	c := NewChunk(ChunkCoord{X: 2, Y: -1, Z: 3}, testDims())
	m := c.Model()
	// Translation column of a mgl32.Mat4.
	if m[12] != 16 || m[13] != -8 || m[14] != 24 {
		t.Fatalf("translation = (%v, %v, %v), want (16, -8, 24)", m[12], m[13], m[14])
	}
}

func TestChunkCoordAtFloorDivision(t *testing.T) {
	d := Dims{Width: 16, Height: 16}
	cases := []struct {
		wx, wy, wz int
		want       ChunkCoord
	}{
		{0, 0, 0, ChunkCoord{0, 0, 0}},
		{15, 15, 15, ChunkCoord{0, 0, 0}},
		{16, 0, 0, ChunkCoord{1, 0, 0}},
		{-1, 0, 0, ChunkCoord{-1, 0, 0}},
		{-16, -17, 31, ChunkCoord{-1, -2, 1}},
	}
	for _, tc := range cases {
		if got := ChunkCoordAt(tc.wx, tc.wy, tc.wz, d); got != tc.want {
			t.Errorf("ChunkCoordAt(%d,%d,%d) = %v, want %v", tc.wx, tc.wy, tc.wz, got, tc.want)
		}
	}
}
