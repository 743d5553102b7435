package world

import (
	"sync"

	"github.com/Whoisraeen/Odyssey-sub002/internal/block"
)

// LightSim tracks per-column sunlight exposure. Edits queue their position;
// processing rescans the affected column from the top of the world and, when
// the surface height changed, tells the owner so the column's chunk meshes
// get rebuilt with the new exposure.
type LightSim struct {
	world VoxelReader
	queue *updateQueue

	minY, maxY int

	mu      sync.Mutex
	surface map[[2]int]int

	// onChange is invoked with the column whose surface height moved.
	onChange func(wx, wz int)
}

func NewLightSim(w VoxelReader, minY, maxY int, onChange func(wx, wz int)) *LightSim {
	return &LightSim{
		world:    w,
		queue:    newUpdateQueue(),
		minY:     minY,
		maxY:     maxY,
		surface:  make(map[[2]int]int),
		onChange: onChange,
	}
}

// OnVoxelChanged schedules a relight when the edit could move the column's
// surface: any solid added or removed qualifies.
func (l *LightSim) OnVoxelChanged(p VoxelPos, oldType, newType block.ID) {
	if block.Solid(oldType) == block.Solid(newType) {
		return
	}
	l.queue.push(p)
}

func (l *LightSim) Pending() int {
	return l.queue.Len()
}

// SurfaceHeight returns the cached surface Y of a column, scanning it on
// first use. Columns with no solid voxels report minY-1.
func (l *LightSim) SurfaceHeight(wx, wz int) int {
	key := [2]int{wx, wz}
	l.mu.Lock()
	h, ok := l.surface[key]
	l.mu.Unlock()
	if ok {
		return h
	}
	h = l.scanColumn(wx, wz)
	l.mu.Lock()
	l.surface[key] = h
	l.mu.Unlock()
	return h
}

func (l *LightSim) scanColumn(wx, wz int) int {
	for y := l.maxY; y >= l.minY; y-- {
		if block.Solid(l.world.VoxelAt(wx, y, wz)) {
			return y
		}
	}
	return l.minY - 1
}

// ProcessPending drains up to maxPerFrame scheduled positions, rescanning
// each one's column. Returns how many were processed.
func (l *LightSim) ProcessPending(maxPerFrame int) int {
	processed := 0
	for processed < maxPerFrame {
		p, ok := l.queue.pop()
		if !ok {
			break
		}
		processed++

		key := [2]int{p.X, p.Z}
		h := l.scanColumn(p.X, p.Z)
		l.mu.Lock()
		prev, seen := l.surface[key]
		l.surface[key] = h
		l.mu.Unlock()
		if seen && prev == h {
			continue
		}
		if l.onChange != nil {
			l.onChange(p.X, p.Z)
		}
	}
	return processed
}

// Forget drops cached columns outside a horizontal chunk radius; called by
// housekeeping alongside chunk eviction.
func (l *LightSim) Forget(keep func(wx, wz int) bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for key := range l.surface {
		if !keep(key[0], key[1]) {
			delete(l.surface, key)
		}
	}
}
