package world

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Whoisraeen/Odyssey-sub002/internal/block"
	"github.com/Whoisraeen/Odyssey-sub002/internal/mesh"
)

// GPUState holds the GL object names backing one chunk's geometry. The
// handles are either all set or all zero; Uploader implementations keep that
// invariant.
type GPUState struct {
	VAO      uint32
	VBO      uint32
	EBO      uint32
	TriCount int32
}

func (g *GPUState) Allocated() bool {
	return g.VAO != 0
}

// Uploader moves finished meshes into GPU buffers and releases them. Every
// call must come from the thread owning the rendering context; workers only
// ever produce the CPU-side mesh.
type Uploader interface {
	// Upload allocates the buffer objects on first use and repopulates their
	// contents on every call, recording the triangle count.
	Upload(state *GPUState, m *mesh.Mesh)
	// Release frees the buffer objects and zeroes the state. Must be safe to
	// call when nothing is allocated.
	Release(state *GPUState)
}

// Chunk owns one volume's palette-compressed voxel data plus its derived
// mesh and GPU resources.
type Chunk struct {
	Coord ChunkCoord

	mu      sync.RWMutex
	dims    Dims
	voxels  []uint8
	palette *Palette
	stale   bool
	version uint64

	mesh *mesh.Mesh
	gpu  GPUState
}

// NewChunk constructs an empty (all-air) chunk for the given coordinate.
func NewChunk(coord ChunkCoord, dims Dims) *Chunk {
	return &Chunk{
		Coord:   coord,
		dims:    dims,
		voxels:  make([]uint8, dims.Volume()),
		palette: NewPalette(),
		stale:   true,
		version: 1,
	}
}

func (c *Chunk) Dims() Dims {
	return c.dims
}

// SetVoxel stores a block type at local coordinates. Out-of-bounds writes
// are silently ignored; that is a boundary-safety convention, not an error.
// The only failure mode is palette overflow.
func (c *Chunk) SetVoxel(x, y, z int, id block.ID) error {
	if !c.dims.contains(x, y, z) {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	idx, err := c.palette.GetOrAdd(id)
	if err != nil {
		return err
	}
	at := c.dims.index(x, y, z)
	if c.voxels[at] == idx {
		return nil
	}
	c.voxels[at] = idx
	c.stale = true
	c.version++
	return nil
}

// GetVoxel resolves the block type at local coordinates. Out-of-bounds
// reads return air.
func (c *Chunk) GetVoxel(x, y, z int) block.ID {
	if !c.dims.contains(x, y, z) {
		return block.Air
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.palette.Resolve(c.voxels[c.dims.index(x, y, z)])
}

// Stale reports whether the GPU geometry no longer reflects voxel content.
func (c *Chunk) Stale() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stale
}

// MarkStale bumps the version so in-flight mesh builds get discarded.
func (c *Chunk) MarkStale() {
	c.mu.Lock()
	c.stale = true
	c.version++
	c.mu.Unlock()
}

// Version is the monotonic edit counter used to fence mesh results.
func (c *Chunk) Version() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.version
}

// Snapshot copies the voxel content as resolved block types, for handing to
// a mesh worker. Returns the version the copy corresponds to.
func (c *Chunk) Snapshot() ([]block.ID, uint64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	types := make([]block.ID, len(c.voxels))
	for i, idx := range c.voxels {
		types[i] = c.palette.Resolve(idx)
	}
	return types, c.version
}

// AttachMesh stores a finished mesh, clears the stale flag and uploads the
// geometry. Owner thread only.
func (c *Chunk) AttachMesh(m *mesh.Mesh, up Uploader) {
	c.mu.Lock()
	c.mesh = m
	c.stale = false
	c.mu.Unlock()
	up.Upload(&c.gpu, m)
}

// Release frees the chunk's GPU resources. Idempotent.
func (c *Chunk) Release(up Uploader) {
	if !c.gpu.Allocated() {
		return
	}
	up.Release(&c.gpu)
}

// VAO exposes the vertex array handle for the render pass.
func (c *Chunk) VAO() uint32 {
	return c.gpu.VAO
}

func (c *Chunk) TriCount() int32 {
	return c.gpu.TriCount
}

// HasGeometry reports whether the chunk contributes anything to rendering.
func (c *Chunk) HasGeometry() bool {
	c.mu.RLock()
	m := c.mesh
	c.mu.RUnlock()
	return m != nil && c.gpu.TriCount > 0
}

// Model returns the world transform placing this chunk's local origin.
func (c *Chunk) Model() mgl32.Mat4 {
	return mgl32.Translate3D(
		float32(int(c.Coord.X)*c.dims.Width),
		float32(int(c.Coord.Y)*c.dims.Height),
		float32(int(c.Coord.Z)*c.dims.Width),
	)
}
