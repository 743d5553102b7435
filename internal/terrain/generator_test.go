package terrain

import (
	"testing"

	"github.com/Whoisraeen/Odyssey-sub002/internal/block"
	"github.com/Whoisraeen/Odyssey-sub002/internal/world"
)

func testDims() world.Dims {
	return world.Dims{Width: 16, Height: 16}
}

func TestGenerateIsDeterministic(t *testing.T) {
	coords := []world.ChunkCoord{
		{X: 0, Y: 0, Z: 0},
		{X: -3, Y: -1, Z: 7},
		{X: 12, Y: -2, Z: -12},
	}
	for _, coord := range coords {
		a, err := New(12, testDims()).Generate(coord)
		if err != nil {
			t.Fatalf("generate %v: %v", coord, err)
		}
		b, err := New(12, testDims()).Generate(coord)
		if err != nil {
			t.Fatalf("generate %v: %v", coord, err)
		}

		va, _ := a.Snapshot()
		vb, _ := b.Snapshot()
		if len(va) != len(vb) {
			t.Fatalf("%v: snapshot lengths differ: %d vs %d", coord, len(va), len(vb))
		}
		for i := range va {
			if va[i] != vb[i] {
				t.Fatalf("%v: voxel %d differs: %v vs %v", coord, i, va[i], vb[i])
			}
		}
	}
}

func TestGenerateDiffersAcrossSeeds(t *testing.T) {
	// A deep chunk: fully solid modulo carving, and the cave fields are
	// seeded off the world seed, so the content must diverge.
	coord := world.ChunkCoord{X: 1, Y: -3, Z: 1}
	a, err := New(12, testDims()).Generate(coord)
	if err != nil {
		t.Fatal(err)
	}
	b, err := New(13, testDims()).Generate(coord)
	if err != nil {
		t.Fatal(err)
	}
	va, _ := a.Snapshot()
	vb, _ := b.Snapshot()
	for i := range va {
		if va[i] != vb[i] {
			return
		}
	}
	t.Fatal("different seeds produced identical chunk content")
}

func TestColumnsMatchHeightField(t *testing.T) {
	g := New(12, testDims())
	d := testDims()

	// A chunk straddling the surface: every column voxel above the height
	// field must be air or water, the heights themselves come from HeightAt.
	coord := world.ChunkCoord{X: 2, Y: 0, Z: -1}
	ch, err := g.Generate(coord)
	if err != nil {
		t.Fatal(err)
	}

	for z := 0; z < d.Width; z++ {
		for x := 0; x < d.Width; x++ {
			wx := int(coord.X)*d.Width + x
			wz := int(coord.Z)*d.Width + z
			surface := g.HeightAt(wx, wz)
			for y := 0; y < d.Height; y++ {
				wy := int(coord.Y)*d.Height + y
				if wy <= surface {
					continue
				}
				if got := ch.GetVoxel(x, y, z); got != block.Air {
					t.Fatalf("voxel above surface at (%d,%d,%d) = %v", wx, wy, wz, got)
				}
			}
		}
	}
}

func TestSurfaceCapMaterial(t *testing.T) {
	g := New(12, testDims())
	d := testDims()
	coord := world.ChunkCoord{X: 0, Y: 0, Z: 0}
	ch, err := g.Generate(coord)
	if err != nil {
		t.Fatal(err)
	}

	for z := 0; z < d.Width; z++ {
		for x := 0; x < d.Width; x++ {
			surface := g.HeightAt(x, z)
			if surface < 0 || surface >= d.Height {
				continue
			}
			got := ch.GetVoxel(x, surface, z)
			want := block.Grass
			if surface <= seaLevel+1 {
				want = block.Sand
			}
			if surface >= snowLine {
				want = block.Snow
			}
			if got != want {
				t.Errorf("surface cap at (%d,%d,%d) = %v, want %v", x, surface, z, got, want)
			}
		}
	}
}

func TestCarvingStaysBelowSurfaceAndPoolsRestOnSolid(t *testing.T) {
	g := New(12, testDims())
	d := testDims()

	// Deep chunks are where the cave fields are active.
	for _, coord := range []world.ChunkCoord{{X: 0, Y: -2, Z: 0}, {X: 5, Y: -3, Z: 5}} {
		ch, err := g.Generate(coord)
		if err != nil {
			t.Fatal(err)
		}
		for z := 0; z < d.Width; z++ {
			for x := 0; x < d.Width; x++ {
				for y := 1; y < d.Height; y++ {
					if ch.GetVoxel(x, y, z) != block.Water {
						continue
					}
					below := ch.GetVoxel(x, y-1, z)
					if !block.Solid(below) {
						t.Fatalf("pool voxel at (%d,%d,%d) in %v rests on %v", x, y, z, coord, below)
					}
				}
			}
		}
	}
}

func TestHeightCachePrune(t *testing.T) {
	g := New(12, testDims())
	g.columnHeights(0, 0)
	g.columnHeights(50, 50)
	if len(g.heights) != 2 {
		t.Fatalf("cached columns = %d, want 2", len(g.heights))
	}

	g.PruneHeightCache(func(cx, cz int32) bool { return cx < 10 })

	g.mu.RLock()
	_, near := g.heights[[2]int32{0, 0}]
	_, far := g.heights[[2]int32{50, 50}]
	g.mu.RUnlock()
	if !near {
		t.Error("column inside the keep radius was pruned")
	}
	if far {
		t.Error("column outside the keep radius survived")
	}
}
