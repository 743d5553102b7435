package world

import "sync"

// VoxelPos is a world-space voxel position used by the propagation queues.
type VoxelPos struct {
	X, Y, Z int
}

func (p VoxelPos) offset(dx, dy, dz int) VoxelPos {
	return VoxelPos{p.X + dx, p.Y + dy, p.Z + dz}
}

// updateQueue is a FIFO of pending voxel positions with a companion
// scheduled-set so a position is never queued twice concurrently.
type updateQueue struct {
	mu        sync.Mutex
	pending   []VoxelPos
	scheduled map[VoxelPos]struct{}
}

func newUpdateQueue() *updateQueue {
	return &updateQueue{
		scheduled: make(map[VoxelPos]struct{}),
	}
}

// push enqueues p unless it is already scheduled. Reports whether it was
// added.
func (q *updateQueue) push(p VoxelPos) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if _, ok := q.scheduled[p]; ok {
		return false
	}
	q.scheduled[p] = struct{}{}
	q.pending = append(q.pending, p)
	return true
}

// pop dequeues the oldest position and clears its scheduled mark, so it may
// be re-queued by the processing it triggers.
func (q *updateQueue) pop() (VoxelPos, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.pending) == 0 {
		return VoxelPos{}, false
	}
	p := q.pending[0]
	q.pending = q.pending[1:]
	delete(q.scheduled, p)
	return p, true
}

func (q *updateQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}
