package main

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"runtime"
	"time"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Whoisraeen/Odyssey-sub002/internal/block"
	"github.com/Whoisraeen/Odyssey-sub002/internal/config"
	"github.com/Whoisraeen/Odyssey-sub002/internal/render"
	"github.com/Whoisraeen/Odyssey-sub002/internal/terrain"
	"github.com/Whoisraeen/Odyssey-sub002/internal/world"
)

const (
	atlasPath = "assets/textures/atlas.png"
	fontPath  = "assets/fonts/Mojang-Regular.ttf"

	reachDistance = 6.0
)

func init() {
	// The GL context and every handle it owns are bound to this thread.
	runtime.LockOSThread()
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load("config.yaml")
	if err != nil {
		logger.Error("config load failed", "error", err)
		os.Exit(1)
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	window, err := render.NewWindow(cfg.Window)
	if err != nil {
		return err
	}
	defer glfw.Terminate()

	renderer, err := render.NewRenderer(cfg.Window, atlasPath)
	if err != nil {
		return err
	}

	// The HUD is best-effort: a missing font just disables it.
	overlay, err := render.NewOverlay(fontPath, cfg.Window.Width, cfg.Window.Height)
	if err != nil {
		logger.Warn("debug overlay disabled", "error", err)
		overlay = nil
	}

	dims := world.Dims{Width: cfg.World.ChunkWidth, Height: cfg.World.ChunkHeight}
	gen := terrain.New(cfg.World.Seed, dims)
	mgr := world.NewManager(cfg.World, gen, render.GL{}, logger)
	defer mgr.Close()

	spawnHeight := float32(gen.HeightAt(0, 0) + 12)
	cam := render.NewCamera(mgl32.Vec3{0, spawnHeight, 0})

	showDebug := true
	window.SetInputMode(glfw.CursorMode, glfw.CursorDisabled)
	window.SetCursorPosCallback(cam.HandleMouse)
	window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		if action != glfw.Press {
			return
		}
		switch key {
		case glfw.KeyF3:
			showDebug = !showDebug
		case glfw.KeyEscape:
			w.SetShouldClose(true)
		}
	})
	window.SetMouseButtonCallback(func(_ *glfw.Window, button glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) {
		if action != glfw.Press {
			return
		}
		switch button {
		case glfw.MouseButtonLeft:
			breakBlock(mgr, cam)
		case glfw.MouseButtonRight:
			placeBlock(mgr, cam, block.Stone)
		}
	})

	var (
		previousFrame = time.Now()
		frameCount    int
		fpsWindow     = time.Now()
		fps           float64
	)

	for !window.ShouldClose() {
		dt := float32(time.Since(previousFrame).Seconds())
		previousFrame = time.Now()

		glfw.PollEvents()
		cam.Move(window, dt)
		mgr.Update(cam.Position)

		renderer.Draw(cam, mgr.Visible())
		if showDebug && overlay != nil {
			overlay.Draw(debugLines(mgr, cam, fps))
		}
		window.SwapBuffers()

		frameCount++
		if elapsed := time.Since(fpsWindow); elapsed >= 500*time.Millisecond {
			fps = float64(frameCount) / elapsed.Seconds()
			frameCount = 0
			fpsWindow = time.Now()
		}
	}
	return nil
}

func debugLines(mgr *world.Manager, cam *render.Camera, fps float64) []string {
	s := mgr.Stats()
	return []string{
		fmt.Sprintf("FPS: %.1f", fps),
		fmt.Sprintf("Pos: %.1f %.1f %.1f", cam.Position.X(), cam.Position.Y(), cam.Position.Z()),
		fmt.Sprintf("Chunks: %d loaded, %d loading, %d meshing", s.Loaded, s.PendingLoads, s.PendingMeshes),
		fmt.Sprintf("Queues: fluid %d, light %d", s.FluidPending, s.LightPending),
		fmt.Sprintf("Dropped: gen %d, mesh %d", s.DroppedGenerations, s.DroppedMeshes),
	}
}

func breakBlock(mgr *world.Manager, cam *render.Camera) {
	hit, _, ok := raycastVoxel(mgr, cam.Position, cam.Front(), reachDistance)
	if !ok {
		return
	}
	mgr.SetVoxel(hit.X, hit.Y, hit.Z, block.Air)
}

func placeBlock(mgr *world.Manager, cam *render.Camera, id block.ID) {
	_, before, ok := raycastVoxel(mgr, cam.Position, cam.Front(), reachDistance)
	if !ok {
		return
	}
	if mgr.VoxelAt(before.X, before.Y, before.Z) != block.Air {
		return
	}
	mgr.SetVoxel(before.X, before.Y, before.Z, id)
}

// raycastVoxel walks the voxel grid along a ray and returns the first solid
// voxel plus the empty cell in front of it.
func raycastVoxel(mgr *world.Manager, origin, dir mgl32.Vec3, maxDist float32) (hit, before world.VoxelPos, ok bool) {
	if dir.Len() == 0 {
		return hit, before, false
	}
	dir = dir.Normalize()

	x := int(math.Floor(float64(origin.X())))
	y := int(math.Floor(float64(origin.Y())))
	z := int(math.Floor(float64(origin.Z())))

	stepX, tMaxX, tDeltaX := axisInit(origin.X(), dir.X())
	stepY, tMaxY, tDeltaY := axisInit(origin.Y(), dir.Y())
	stepZ, tMaxZ, tDeltaZ := axisInit(origin.Z(), dir.Z())

	prev := world.VoxelPos{X: x, Y: y, Z: z}
	for {
		cur := world.VoxelPos{X: x, Y: y, Z: z}
		if block.Solid(mgr.VoxelAt(cur.X, cur.Y, cur.Z)) {
			return cur, prev, true
		}
		prev = cur

		switch {
		case tMaxX <= tMaxY && tMaxX <= tMaxZ:
			if tMaxX > maxDist {
				return hit, before, false
			}
			x += stepX
			tMaxX += tDeltaX
		case tMaxY <= tMaxZ:
			if tMaxY > maxDist {
				return hit, before, false
			}
			y += stepY
			tMaxY += tDeltaY
		default:
			if tMaxZ > maxDist {
				return hit, before, false
			}
			z += stepZ
			tMaxZ += tDeltaZ
		}
	}
}

// axisInit computes the grid-marching step, initial boundary distance and
// per-cell distance for one axis.
func axisInit(origin, dir float32) (step int, tMax, tDelta float32) {
	const inf = float32(math.MaxFloat32)
	if dir > 0 {
		step = 1
		cell := float32(math.Floor(float64(origin)))
		tMax = (cell + 1 - origin) / dir
		tDelta = 1 / dir
	} else if dir < 0 {
		step = -1
		cell := float32(math.Floor(float64(origin)))
		tMax = (origin - cell) / -dir
		tDelta = 1 / -dir
	} else {
		step = 0
		tMax = inf
		tDelta = inf
	}
	return step, tMax, tDelta
}
