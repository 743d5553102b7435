// Package terrain synthesizes chunk content from a world seed. Generation is
// a pure function of (seed, chunk coordinate): the world has no persistence,
// so an evicted chunk must regenerate bit-identically.
package terrain

import (
	"math/rand"
	"sync"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/Whoisraeen/Odyssey-sub002/internal/block"
	"github.com/Whoisraeen/Odyssey-sub002/internal/world"
)

const (
	heightAmplitude   = 24
	heightOctaves     = 3
	heightLacunarity  = 1.5
	heightPersistence = 0.5
	heightScale       = 180

	// strataScale drives the dirt-layer thickness fluctuation. It must come
	// from noise rather than the per-chunk rng so the layer lines up across
	// chunk borders.
	strataScale = 31

	seaLevel = 0
	snowLine = 30

	caveScale     = 15
	caveThreshold = 0.34
	caveMinDepth  = 4

	tunnelScale     = 48
	tunnelThreshold = 0.62
	tunnelLayerStep = 8

	// poolChance is the per-carved-voxel probability of an embedded water
	// pocket where the cave floor is solid.
	poolChance = 0.02
)

// Generator implements the manager's Generator interface. Safe for
// concurrent use by the generation pool.
type Generator struct {
	seed int64
	dims world.Dims

	height opensimplex.Noise32
	cave   opensimplex.Noise32
	tunnel opensimplex.Noise32

	mu      sync.RWMutex
	heights map[[2]int32][]int
}

func New(seed int64, dims world.Dims) *Generator {
	return &Generator{
		seed:    seed,
		dims:    dims,
		height:  opensimplex.New32(seed),
		cave:    opensimplex.New32(seed + 1),
		tunnel:  opensimplex.New32(seed + 2),
		heights: make(map[[2]int32][]int),
	}
}

// fractalNoise sums octaves of 2D noise into a clamped terrain height.
func (g *Generator) fractalNoise(x, z int, amplitude float32, octaves int, lacunarity, persistence, scale float32) int {
	val := float32(0)
	x1 := float32(x)
	z1 := float32(z)

	for i := 0; i < octaves; i++ {
		val += g.height.Eval2(x1/scale, z1/scale) * amplitude
		x1 *= lacunarity
		z1 *= lacunarity
		amplitude *= persistence
	}
	if val < -128 {
		return -128
	}
	if val > 128 {
		return 128
	}
	return int(val)
}

// HeightAt returns the surface height of a world column.
func (g *Generator) HeightAt(wx, wz int) int {
	return g.fractalNoise(wx, wz, heightAmplitude, heightOctaves, heightLacunarity, heightPersistence, heightScale)
}

// columnHeights returns the memoized height grid of one chunk column.
func (g *Generator) columnHeights(cx, cz int32) []int {
	key := [2]int32{cx, cz}
	g.mu.RLock()
	grid, ok := g.heights[key]
	g.mu.RUnlock()
	if ok {
		return grid
	}

	w := g.dims.Width
	grid = make([]int, w*w)
	baseX := int(cx) * w
	baseZ := int(cz) * w
	for z := 0; z < w; z++ {
		for x := 0; x < w; x++ {
			grid[z*w+x] = g.HeightAt(baseX+x, baseZ+z)
		}
	}

	g.mu.Lock()
	g.heights[key] = grid
	g.mu.Unlock()
	return grid
}

// PruneHeightCache drops memoized columns the keep predicate rejects; wired
// to the manager's housekeeping pass.
func (g *Generator) PruneHeightCache(keep func(cx, cz int32) bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for key := range g.heights {
		if !keep(key[0], key[1]) {
			delete(g.heights, key)
		}
	}
}

// coordHash folds a chunk coordinate into the accent rng seed.
func coordHash(c world.ChunkCoord) int64 {
	h := int64(c.X)*73856093 ^ int64(c.Y)*19349663 ^ int64(c.Z)*83492791
	return h
}

// Generate populates one chunk. The accent rng is seeded per chunk so its
// draw sequence never depends on generation order across chunks.
func (g *Generator) Generate(coord world.ChunkCoord) (*world.Chunk, error) {
	ch := world.NewChunk(coord, g.dims)
	heights := g.columnHeights(coord.X, coord.Z)
	rng := rand.New(rand.NewSource(g.seed ^ coordHash(coord)))

	w := g.dims.Width
	baseX := int(coord.X) * w
	baseY := int(coord.Y) * g.dims.Height
	baseZ := int(coord.Z) * w

	for z := 0; z < w; z++ {
		for x := 0; x < w; x++ {
			wx := baseX + x
			wz := baseZ + z
			surface := heights[z*w+x]
			dirtDepth := g.dirtDepth(wx, wz)

			for y := 0; y < g.dims.Height; y++ {
				wy := baseY + y
				if wy > surface {
					continue
				}

				id := g.strataFor(wy, surface, dirtDepth)
				if g.carved(wx, wy, wz, surface) {
					// Carving removes solid material only; a carved voxel
					// over solid ground occasionally becomes a pool.
					if !g.carved(wx, wy-1, wz, surface) && wy-1 <= surface && rng.Float32() < poolChance {
						id = block.Water
					} else {
						continue
					}
				}
				if err := ch.SetVoxel(x, y, z, id); err != nil {
					return nil, err
				}
			}
		}
	}
	return ch, nil
}

// dirtDepth is the transition-layer thickness of a column, 3 to 6 voxels.
func (g *Generator) dirtDepth(wx, wz int) int {
	n := g.height.Eval2(float32(wx)/strataScale, float32(wz)/strataScale)
	return 3 + int((n+1)*1.5)
}

// strataFor picks the material stack for a solid voxel: surface cap,
// transition layer, then stone.
func (g *Generator) strataFor(wy, surface, dirtDepth int) block.ID {
	if wy == surface {
		switch {
		case surface >= snowLine:
			return block.Snow
		case surface <= seaLevel+1:
			return block.Sand
		default:
			return block.Grass
		}
	}
	if wy > surface-dirtDepth {
		if surface <= seaLevel+1 {
			return block.Sand
		}
		return block.Dirt
	}
	return block.Stone
}

// carved reports whether the cave or tunnel field removes the voxel. Both
// are gated by depth so they never break the surface open.
func (g *Generator) carved(wx, wy, wz, surface int) bool {
	if wy > surface-caveMinDepth {
		return false
	}
	cave := g.cave.Eval3(float32(wx)/caveScale, float32(wy)/caveScale, float32(wz)/caveScale)
	if cave > caveThreshold {
		return true
	}
	// Tunnel bands sweep across horizontal layers at fixed intervals,
	// linking cave pockets.
	band := wy % tunnelLayerStep
	if band < 0 {
		band += tunnelLayerStep
	}
	if band < 2 {
		t := g.tunnel.Eval3(float32(wx)/tunnelScale, float32(wy)/tunnelScale, float32(wz)/tunnelScale)
		if t > tunnelThreshold {
			return true
		}
	}
	return false
}
