package world

import (
	"fmt"
	"log/slog"
	"math"
	"sync/atomic"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Whoisraeen/Odyssey-sub002/internal/block"
	"github.com/Whoisraeen/Odyssey-sub002/internal/config"
	"github.com/Whoisraeen/Odyssey-sub002/internal/mesh"
)

// Generator produces a fully populated chunk for a coordinate. It must be
// deterministic for a fixed seed: the world has no persistence and relies on
// regeneration after eviction.
type Generator interface {
	Generate(coord ChunkCoord) (*Chunk, error)
}

// heightCachePruner is implemented by generators that memoize column data.
type heightCachePruner interface {
	PruneHeightCache(keep func(cx, cz int32) bool)
}

type genResult struct {
	coord ChunkCoord
	chunk *Chunk
	err   error
}

type meshJob struct {
	coord   ChunkCoord
	version uint64
	width   int
	height  int
	voxels  []block.ID
}

type meshResult struct {
	coord   ChunkCoord
	version uint64
	mesh    *mesh.Mesh
	err     error
}

// Stats is a point-in-time snapshot of the pipeline, for the debug HUD and
// the housekeeping log.
type Stats struct {
	Loaded        int
	PendingLoads  int
	PendingMeshes int
	FluidPending  int
	LightPending  int

	SubmittedGenerations uint64
	DroppedGenerations   uint64
	DroppedMeshes        uint64
}

const (
	jobQueueSize    = 32768
	resultQueueSize = 4096

	// evictionMargin widens the eviction radius past the admission radius so
	// an observer oscillating on the boundary does not thrash load/unload.
	evictionMargin = 2

	housekeepInterval = 5 * time.Second
)

// Manager owns every chunk and drives the load -> mesh -> upload -> evict
// lifecycle from the observer's position. Worker pools produce CPU-side data
// only; all GPU traffic happens on the thread calling Update.
type Manager struct {
	cfg      config.WorldConfig
	dims     Dims
	log      *slog.Logger
	gen      Generator
	uploader Uploader

	minChunkY int32
	maxChunkY int32

	loaded      atomicMap // ChunkCoord -> *Chunk
	pendingLoad atomicMap // ChunkCoord -> struct{}
	pendingMesh atomicMap // ChunkCoord -> uint64 (version at submission)

	genJobs     chan ChunkCoord
	genResults  chan genResult
	meshJobs    chan meshJob
	meshResults chan meshResult

	fluid *FluidSim
	light *LightSim

	submittedGens atomic.Uint64
	droppedGens   atomic.Uint64
	droppedMeshes atomic.Uint64

	center atomic.Value // ChunkCoord of the last observed position
	stop   chan struct{}
}

// NewManager wires the pipeline and starts the generation pool, the meshing
// pool and the housekeeping ticker.
func NewManager(cfg config.WorldConfig, gen Generator, up Uploader, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	dims := Dims{Width: cfg.ChunkWidth, Height: cfg.ChunkHeight}
	minChunkY := int32(-cfg.VerticalChunks / 2)

	m := &Manager{
		cfg:         cfg,
		dims:        dims,
		log:         logger,
		gen:         gen,
		uploader:    up,
		minChunkY:   minChunkY,
		maxChunkY:   minChunkY + int32(cfg.VerticalChunks) - 1,
		genJobs:     make(chan ChunkCoord, jobQueueSize),
		genResults:  make(chan genResult, resultQueueSize),
		meshJobs:    make(chan meshJob, jobQueueSize),
		meshResults: make(chan meshResult, resultQueueSize),
		stop:        make(chan struct{}),
	}
	m.center.Store(ChunkCoord{})

	m.fluid = NewFluidSim(m)
	minY := int(m.minChunkY) * dims.Height
	maxY := (int(m.maxChunkY)+1)*dims.Height - 1
	m.light = NewLightSim(m, minY, maxY, m.onColumnLightChanged)

	for i := 0; i < cfg.GenWorkers; i++ {
		go m.genWorker()
	}
	for i := 0; i < cfg.MeshWorkers; i++ {
		go m.meshWorker()
	}
	go m.housekeeping()

	return m
}

// Update runs one frame of the lifecycle state machine. Must be called from
// the thread owning the rendering context.
func (m *Manager) Update(observer mgl32.Vec3) {
	center := ChunkCoordAt(
		int(math.Floor(float64(observer.X()))),
		int(math.Floor(float64(observer.Y()))),
		int(math.Floor(float64(observer.Z()))),
		m.dims,
	)
	m.center.Store(center)

	m.drainGenResults()
	m.drainMeshResults()
	m.admit(center)
	m.remeshStale()
	m.evict(center)

	m.fluid.ProcessPending(m.cfg.FluidBudget)
	m.light.ProcessPending(m.cfg.LightBudget)
}

// admit submits generation for every untracked coordinate in range.
func (m *Manager) admit(center ChunkCoord) {
	r := int32(m.cfg.RenderRadius)
	for dx := -r; dx <= r; dx++ {
		for dz := -r; dz <= r; dz++ {
			for cy := m.minChunkY; cy <= m.maxChunkY; cy++ {
				coord := ChunkCoord{X: center.X + dx, Y: cy, Z: center.Z + dz}
				if _, ok := m.loaded.Load(coord); ok {
					continue
				}
				if _, ok := m.pendingMesh.Load(coord); ok {
					continue
				}
				if _, tracked := m.pendingLoad.LoadOrStore(coord, struct{}{}); tracked {
					continue
				}
				select {
				case m.genJobs <- coord:
					m.submittedGens.Add(1)
				default:
					// Queue full; untrack so a later frame retries.
					m.pendingLoad.Delete(coord)
				}
			}
		}
	}
}

// drainGenResults absorbs finished generations into the loaded set and hands
// each one straight to the meshing pool. Failures are logged and dropped so
// the coordinate self-heals by re-admission.
func (m *Manager) drainGenResults() {
	for {
		select {
		case r := <-m.genResults:
			m.pendingLoad.Delete(r.coord)
			if r.err != nil {
				m.droppedGens.Add(1)
				m.log.Error("chunk generation failed",
					"coord", fmt.Sprintf("%d,%d,%d", r.coord.X, r.coord.Y, r.coord.Z),
					"error", r.err)
				continue
			}
			m.loaded.Store(r.coord, r.chunk)
			m.submitMesh(r.chunk)
		default:
			return
		}
	}
}

// drainMeshResults applies finished meshes. Results for evicted coordinates
// are discarded; results older than the chunk's current version are
// discarded and the build resubmitted.
func (m *Manager) drainMeshResults() {
	for {
		select {
		case r := <-m.meshResults:
			m.pendingMesh.Delete(r.coord)
			if r.err != nil {
				m.droppedMeshes.Add(1)
				m.log.Error("chunk meshing failed",
					"coord", fmt.Sprintf("%d,%d,%d", r.coord.X, r.coord.Y, r.coord.Z),
					"error", r.err)
				continue
			}
			v, ok := m.loaded.Load(r.coord)
			if !ok {
				continue
			}
			ch := v.(*Chunk)
			if ch.Version() != r.version {
				m.submitMesh(ch)
				continue
			}
			ch.AttachMesh(r.mesh, m.uploader)
		default:
			return
		}
	}
}

// submitMesh snapshots the chunk and queues a build unless one is already in
// flight for the coordinate.
func (m *Manager) submitMesh(ch *Chunk) {
	coord := ch.Coord
	if _, inFlight := m.pendingMesh.Load(coord); inFlight {
		return
	}
	voxels, version := ch.Snapshot()
	m.pendingMesh.Store(coord, version)
	select {
	case m.meshJobs <- meshJob{coord: coord, version: version, width: m.dims.Width, height: m.dims.Height, voxels: voxels}:
	default:
		// Queue full; the chunk stays stale and remeshStale retries.
		m.pendingMesh.Delete(coord)
	}
}

// remeshStale resubmits builds for chunks whose content changed since their
// last mesh.
func (m *Manager) remeshStale() {
	m.loaded.Range(func(_, v any) bool {
		ch := v.(*Chunk)
		if ch.Stale() {
			m.submitMesh(ch)
		}
		return true
	})
}

// evict releases chunks whose horizontal distance from the observer exceeds
// the render radius plus the hysteresis margin. A chunk at exactly the limit
// is retained.
func (m *Manager) evict(center ChunkCoord) {
	limit := m.cfg.RenderRadius + evictionMargin
	limitSq := limit * limit
	m.loaded.Range(func(k, v any) bool {
		coord := k.(ChunkCoord)
		dx := int(coord.X - center.X)
		dz := int(coord.Z - center.Z)
		if dx*dx+dz*dz <= limitSq {
			return true
		}
		ch := v.(*Chunk)
		ch.Release(m.uploader)
		m.loaded.Delete(coord)
		return true
	})
}

// Visible returns every loaded chunk; the render pass filters by
// HasGeometry.
func (m *Manager) Visible() []*Chunk {
	var out []*Chunk
	m.loaded.Range(func(_, v any) bool {
		out = append(out, v.(*Chunk))
		return true
	})
	return out
}

// Loaded fetches a chunk when present.
func (m *Manager) Loaded(coord ChunkCoord) (*Chunk, bool) {
	v, ok := m.loaded.Load(coord)
	if !ok {
		return nil, false
	}
	return v.(*Chunk), true
}

// VoxelAt reads a voxel by world coordinate. Unloaded regions read as air.
func (m *Manager) VoxelAt(wx, wy, wz int) block.ID {
	v, ok := m.loaded.Load(ChunkCoordAt(wx, wy, wz, m.dims))
	if !ok {
		return block.Air
	}
	lx, ly, lz := localOf(wx, wy, wz, m.dims)
	return v.(*Chunk).GetVoxel(lx, ly, lz)
}

// SetVoxelRaw writes a voxel by world coordinate without firing the change
// hooks; the propagation systems use it for their own moves. Writes into
// unloaded regions are dropped.
func (m *Manager) SetVoxelRaw(wx, wy, wz int, id block.ID) {
	coord := ChunkCoordAt(wx, wy, wz, m.dims)
	v, ok := m.loaded.Load(coord)
	if !ok {
		return
	}
	ch := v.(*Chunk)
	lx, ly, lz := localOf(wx, wy, wz, m.dims)
	if err := ch.SetVoxel(lx, ly, lz, id); err != nil {
		m.log.Warn("voxel write rejected",
			"coord", fmt.Sprintf("%d,%d,%d", coord.X, coord.Y, coord.Z),
			"error", err)
		return
	}
	m.markBorderNeighbors(coord, lx, ly, lz)
}

// markBorderNeighbors keeps adjacent chunk meshes in sync when an edit sits
// on a shared face.
func (m *Manager) markBorderNeighbors(coord ChunkCoord, lx, ly, lz int) {
	mark := func(c ChunkCoord) {
		if v, ok := m.loaded.Load(c); ok {
			v.(*Chunk).MarkStale()
		}
	}
	if lx == 0 {
		mark(ChunkCoord{coord.X - 1, coord.Y, coord.Z})
	}
	if lx == m.dims.Width-1 {
		mark(ChunkCoord{coord.X + 1, coord.Y, coord.Z})
	}
	if ly == 0 {
		mark(ChunkCoord{coord.X, coord.Y - 1, coord.Z})
	}
	if ly == m.dims.Height-1 {
		mark(ChunkCoord{coord.X, coord.Y + 1, coord.Z})
	}
	if lz == 0 {
		mark(ChunkCoord{coord.X, coord.Y, coord.Z - 1})
	}
	if lz == m.dims.Width-1 {
		mark(ChunkCoord{coord.X, coord.Y, coord.Z + 1})
	}
}

// SetVoxel is the gameplay edit path: it writes the voxel, marks meshes
// stale and feeds the fluid and light queues. Reports whether the write
// landed in a loaded chunk.
func (m *Manager) SetVoxel(wx, wy, wz int, id block.ID) bool {
	if _, ok := m.loaded.Load(ChunkCoordAt(wx, wy, wz, m.dims)); !ok {
		return false
	}
	old := m.VoxelAt(wx, wy, wz)
	if old == id {
		return true
	}
	m.SetVoxelRaw(wx, wy, wz, id)
	pos := VoxelPos{wx, wy, wz}
	m.fluid.OnVoxelChanged(pos, old, id)
	m.light.OnVoxelChanged(pos, old, id)
	return true
}

// Fluid exposes the fluid simulation to gameplay collaborators.
func (m *Manager) Fluid() *FluidSim {
	return m.fluid
}

// Light exposes the sunlight column tracker.
func (m *Manager) Light() *LightSim {
	return m.light
}

// onColumnLightChanged marks every loaded chunk of a column stale so its
// shading gets rebuilt.
func (m *Manager) onColumnLightChanged(wx, wz int) {
	cx := int32(floorDiv(wx, m.dims.Width))
	cz := int32(floorDiv(wz, m.dims.Width))
	for cy := m.minChunkY; cy <= m.maxChunkY; cy++ {
		if v, ok := m.loaded.Load(ChunkCoord{cx, cy, cz}); ok {
			v.(*Chunk).MarkStale()
		}
	}
}

func (m *Manager) Stats() Stats {
	return Stats{
		Loaded:               m.loaded.Len(),
		PendingLoads:         m.pendingLoad.Len(),
		PendingMeshes:        m.pendingMesh.Len(),
		FluidPending:         m.fluid.Pending(),
		LightPending:         m.light.Pending(),
		SubmittedGenerations: m.submittedGens.Load(),
		DroppedGenerations:   m.droppedGens.Load(),
		DroppedMeshes:        m.droppedMeshes.Load(),
	}
}

// Close stops the workers and releases every GPU resource. Call from the
// context-owning thread after the last Update.
func (m *Manager) Close() {
	close(m.stop)
	close(m.genJobs)
	close(m.meshJobs)

	// Unblock any worker mid-send; the results themselves are discarded.
	for drained := false; !drained; {
		select {
		case <-m.genResults:
		case <-m.meshResults:
		default:
			drained = true
		}
	}

	m.loaded.Range(func(k, v any) bool {
		ch := v.(*Chunk)
		ch.Release(m.uploader)
		m.loaded.Delete(k.(ChunkCoord))
		return true
	})
}

func (m *Manager) genWorker() {
	for coord := range m.genJobs {
		ch, err := safeGenerate(m.gen, coord)
		select {
		case m.genResults <- genResult{coord: coord, chunk: ch, err: err}:
		case <-m.stop:
			return
		}
	}
}

func (m *Manager) meshWorker() {
	for job := range m.meshJobs {
		built, err := safeBuild(job)
		select {
		case m.meshResults <- meshResult{coord: job.coord, version: job.version, mesh: built, err: err}:
		case <-m.stop:
			return
		}
	}
}

// safeGenerate converts generator panics into task failures so one bad
// coordinate cannot take down the pool.
func safeGenerate(g Generator, coord ChunkCoord) (ch *Chunk, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("generator panic: %v", r)
		}
	}()
	return g.Generate(coord)
}

func safeBuild(job meshJob) (built *mesh.Mesh, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("mesher panic: %v", r)
		}
	}()
	return mesh.Build(job.width, job.height, job.voxels), nil
}

// housekeeping is the low-frequency scheduled work: stats logging plus
// pruning of the caches that accumulate outside the streamed region.
func (m *Manager) housekeeping() {
	ticker := time.NewTicker(housekeepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			center := m.center.Load().(ChunkCoord)
			keep := m.cfg.RenderRadius + evictionMargin
			keepSq := keep * keep

			if pruner, ok := m.gen.(heightCachePruner); ok {
				pruner.PruneHeightCache(func(cx, cz int32) bool {
					dx := int(cx - center.X)
					dz := int(cz - center.Z)
					return dx*dx+dz*dz <= keepSq
				})
			}
			m.light.Forget(func(wx, wz int) bool {
				dx := floorDiv(wx, m.dims.Width) - int(center.X)
				dz := floorDiv(wz, m.dims.Width) - int(center.Z)
				return dx*dx+dz*dz <= keepSq
			})

			s := m.Stats()
			m.log.Info("chunk pipeline",
				"loaded", s.Loaded,
				"pendingLoads", s.PendingLoads,
				"pendingMeshes", s.PendingMeshes,
				"fluidQueue", s.FluidPending,
				"lightQueue", s.LightPending,
				"droppedGens", s.DroppedGenerations,
				"droppedMeshes", s.DroppedMeshes)
		}
	}
}
