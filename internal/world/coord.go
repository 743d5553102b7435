package world

// ChunkCoord identifies one chunk volume. Map keys throughout the pipeline.
type ChunkCoord struct {
	X, Y, Z int32
}

// Dims describes the chunk volume: Width x Height x Width voxels.
type Dims struct {
	Width  int
	Height int
}

func (d Dims) Volume() int {
	return d.Width * d.Width * d.Height
}

// index flattens local coordinates. The x-fastest order is relied on by the
// mesher's determinism guarantees; do not change it.
func (d Dims) index(x, y, z int) int {
	return (y*d.Width+z)*d.Width + x
}

func (d Dims) contains(x, y, z int) bool {
	return x >= 0 && x < d.Width &&
		y >= 0 && y < d.Height &&
		z >= 0 && z < d.Width
}

// floorDiv divides rounding toward negative infinity, so block -1 lands in
// chunk -1 rather than chunk 0.
func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// ChunkCoordAt maps a world-space voxel position to its owning chunk.
func ChunkCoordAt(wx, wy, wz int, d Dims) ChunkCoord {
	return ChunkCoord{
		X: int32(floorDiv(wx, d.Width)),
		Y: int32(floorDiv(wy, d.Height)),
		Z: int32(floorDiv(wz, d.Width)),
	}
}

// localOf translates a world-space voxel position into coordinates local to
// its owning chunk.
func localOf(wx, wy, wz int, d Dims) (int, int, int) {
	lx := wx - floorDiv(wx, d.Width)*d.Width
	ly := wy - floorDiv(wy, d.Height)*d.Height
	lz := wz - floorDiv(wz, d.Width)*d.Width
	return lx, ly, lz
}
