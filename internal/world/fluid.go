package world

import (
	"github.com/Whoisraeen/Odyssey-sub002/internal/block"
)

// VoxelReader is the narrow world view the propagation systems get instead
// of a back-reference to the manager.
type VoxelReader interface {
	VoxelAt(wx, wy, wz int) block.ID
}

// VoxelWriter additionally allows raw voxel writes: the write marks the
// owning chunk's mesh stale but does not re-enter the change hooks, since
// the simulations schedule their own follow-up work.
type VoxelWriter interface {
	VoxelReader
	SetVoxelRaw(wx, wy, wz int, id block.ID)
}

var horizontals = [4][3]int{
	{1, 0, 0}, {-1, 0, 0}, {0, 0, 1}, {0, 0, -1},
}

// FluidSim settles liquid voxels: down first, then sideways onto supported
// ground. Work arrives through OnVoxelChanged and is drained with a
// per-frame budget so a large edit cannot stall a frame.
type FluidSim struct {
	world VoxelWriter
	queue *updateQueue
}

func NewFluidSim(w VoxelWriter) *FluidSim {
	return &FluidSim{
		world: w,
		queue: newUpdateQueue(),
	}
}

// OnVoxelChanged inspects an edit and schedules any liquid follow-up work:
// a created or removed liquid voxel schedules its own position, and a
// removed solid additionally wakes the neighbors so adjacent liquid can
// flow into the gap.
func (f *FluidSim) OnVoxelChanged(p VoxelPos, oldType, newType block.ID) {
	if block.Liquid(newType) {
		f.queue.push(p)
		return
	}
	if block.Liquid(oldType) {
		f.queue.push(p)
		f.scheduleNeighbors(p)
		return
	}
	if block.Solid(oldType) && !block.Solid(newType) {
		// A solid was removed; liquid above or beside may now move.
		if f.adjacentToLiquid(p) {
			f.queue.push(p)
		}
		f.scheduleNeighbors(p)
	}
}

func (f *FluidSim) scheduleNeighbors(p VoxelPos) {
	f.queue.push(p.offset(0, 1, 0))
	for _, d := range horizontals {
		f.queue.push(p.offset(d[0], d[1], d[2]))
	}
}

func (f *FluidSim) adjacentToLiquid(p VoxelPos) bool {
	if block.Liquid(f.world.VoxelAt(p.X, p.Y+1, p.Z)) {
		return true
	}
	for _, d := range horizontals {
		if block.Liquid(f.world.VoxelAt(p.X+d[0], p.Y, p.Z+d[2])) {
			return true
		}
	}
	return false
}

// Pending reports the queued position count, for stats.
func (f *FluidSim) Pending() int {
	return f.queue.Len()
}

// ProcessPending drains up to maxPerFrame scheduled positions. Per liquid
// voxel: if the cell directly below is empty the liquid falls one cell and
// the new cell is rescheduled; otherwise it spreads into at most three of
// the four horizontal neighbors that are empty and rest on solid ground.
// Returns how many positions were processed.
func (f *FluidSim) ProcessPending(maxPerFrame int) int {
	processed := 0
	for processed < maxPerFrame {
		p, ok := f.queue.pop()
		if !ok {
			break
		}
		processed++

		if !block.Liquid(f.world.VoxelAt(p.X, p.Y, p.Z)) {
			continue
		}

		below := p.offset(0, -1, 0)
		if f.world.VoxelAt(below.X, below.Y, below.Z) == block.Air {
			f.world.SetVoxelRaw(p.X, p.Y, p.Z, block.Air)
			f.world.SetVoxelRaw(below.X, below.Y, below.Z, block.Water)
			f.queue.push(below)
			continue
		}

		spread := 0
		for _, d := range horizontals {
			if spread >= 3 {
				break
			}
			n := p.offset(d[0], d[1], d[2])
			if f.world.VoxelAt(n.X, n.Y, n.Z) != block.Air {
				continue
			}
			if !block.Solid(f.world.VoxelAt(n.X, n.Y-1, n.Z)) {
				continue
			}
			f.world.SetVoxelRaw(n.X, n.Y, n.Z, block.Water)
			f.queue.push(n)
			spread++
		}
	}
	return processed
}
