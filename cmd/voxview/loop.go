package main

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"

	"voxcore/internal/config"
	"voxcore/internal/graphics"
	"voxcore/internal/input"
	"voxcore/internal/interaction"
	"voxcore/internal/meshing"
	"voxcore/internal/metrics"
	"voxcore/internal/physics"
	"voxcore/internal/profiling"
	"voxcore/internal/storage"
	"voxcore/internal/world"
)

const (
	flySpeed      = 10.0 // blocks per second
	sprintFactor  = 2.5
	evictInterval = 750 * time.Millisecond
)

func runLoop(window *glfw.Window, v *Viewer) {
	limiter := &fpsLimiter{limit: v.cfg.Render.FPSLimit}
	start := time.Now()
	lastTime := start
	lastEvict := start
	lastFPS := start
	frames := 0

	var results []meshing.MeshResult
	var nearby []*world.Chunk

	for !window.ShouldClose() {
		now := time.Now()
		dt := now.Sub(lastTime).Seconds()
		lastTime = now

		v.handleActions(window)
		if !v.paused {
			v.fly(dt)
		}
		v.storePose()

		center := world.BlockPosFromWorld(v.camera.Position).Chunk()
		func() {
			defer profiling.Track("world.StreamAroundAsync")()
			v.streamer.StreamAroundAsync(center, config.GetChunkLoadRadius())
		}()
		if now.Sub(lastEvict) > evictInterval {
			v.evict(center)
			lastEvict = now
		}

		nearby = v.submitDirty(center, nearby[:0])
		results = v.pool.Collect(results[:0])
		for _, res := range results {
			v.renderer.Upload(res.Mesh)
		}

		if v.paused {
			v.miner.Reset()
			v.signal.Clear()
		} else {
			v.interact(dt)
		}

		fc := v.pipeline.FogColor
		gl.ClearColor(fc.X(), fc.Y(), fc.Z(), 1)
		gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
		v.renderer.Draw(graphics.Frame{
			View:   v.camera.GetViewMatrix(),
			Proj:   v.camera.GetProjectionMatrix(),
			Camera: v.camera.Position,
			Time:   float32(now.Sub(start).Seconds()),
			Signal: v.signal.Frame(),
		})

		v.input.PostUpdate()
		func() { defer profiling.Track("glfw.SwapBuffers")(); window.SwapBuffers() }()
		func() { defer profiling.Track("glfw.PollEvents")(); glfw.PollEvents() }()

		totals := profiling.EndFrame()
		frames++
		if time.Since(lastFPS) >= time.Second {
			log.Printf("[frame] %d fps, %d chunks loaded, %d drawn buffers, top: %s",
				frames, v.chunks.Len(), v.renderer.Len(), profiling.TopN(totals, 3))
			frames = 0
			lastFPS = time.Now()
		}

		limiter.Wait(v.paused)
	}
}

// handleActions applies the one-shot actions of this frame.
func (v *Viewer) handleActions(window *glfw.Window) {
	in := v.input
	if in.JustPressed(input.ActionPause) {
		v.paused = !v.paused
		if v.paused {
			window.SetInputMode(glfw.CursorMode, glfw.CursorNormal)
			in.ReleaseAll()
		} else {
			window.SetInputMode(glfw.CursorMode, glfw.CursorDisabled)
			v.camera.ResetMouse()
		}
	}
	if v.paused {
		return
	}

	for i := 0; i < storage.HotbarSlots; i++ {
		if in.JustPressed(input.HotbarAction(i)) {
			v.selectSlot(i)
		}
	}
	if in.JustPressed(input.ActionDistanceUp) {
		config.SetRenderDistance(config.GetRenderDistance() + 1)
		log.Printf("[render] distance %d", config.GetRenderDistance())
	}
	if in.JustPressed(input.ActionDistanceDown) {
		config.SetRenderDistance(config.GetRenderDistance() - 1)
		log.Printf("[render] distance %d", config.GetRenderDistance())
	}
	if in.JustPressed(input.ActionSave) {
		n, err := v.saver.Flush(context.Background())
		if err != nil {
			log.Printf("[save] %v", err)
		} else {
			log.Printf("[save] wrote %d chunks", n)
		}
	}
}

func (v *Viewer) selectSlot(i int) {
	v.slot = (i%storage.HotbarSlots + storage.HotbarSlots) % storage.HotbarSlots
	item := v.hotbar[v.slot]
	if item == storage.NoItem {
		item = "-"
	}
	log.Printf("[hotbar] slot %d: %s", v.slot+1, item)
}

func (v *Viewer) fly(dt float64) {
	in := v.input
	speed := float32(flySpeed * dt)
	if in.IsActive(input.ActionSprint) {
		speed *= sprintFactor
	}
	v.camera.Move(
		in.Axis(input.ActionMoveForward, input.ActionMoveBackward)*speed,
		in.Axis(input.ActionMoveRight, input.ActionMoveLeft)*speed,
		in.Axis(input.ActionMoveUp, input.ActionMoveDown)*speed,
	)
}

// evict unloads far chunks and drops their GPU buffers and in-flight encodes.
func (v *Viewer) evict(center world.ChunkCoord) {
	defer profiling.Track("world.Evict")()
	if _, err := v.streamer.Evict(context.Background(), center, config.GetChunkEvictRadius()); err != nil {
		log.Printf("[stream] evict: %v", err)
	}
	for _, coord := range v.renderer.Coords() {
		if !v.chunks.HasChunk(coord) {
			v.renderer.Remove(coord)
			v.pool.Invalidate(coord)
		}
	}
	metrics.LoadedChunks.Set(float64(v.chunks.Len()))
}

// submitDirty queues an encode for every dirty chunk in range. A chunk whose job is
// refused stays dirty and is retried next frame.
func (v *Viewer) submitDirty(center world.ChunkCoord, buf []*world.Chunk) []*world.Chunk {
	defer profiling.Track("meshing.Submit")()
	buf = v.chunks.AppendChunksInRadius(center, config.GetChunkLoadRadius(), buf)
	for _, c := range buf {
		if !c.IsDirty() {
			continue
		}
		// Clear first so an edit racing with the snapshot marks it dirty again.
		c.SetClean()
		nb, ok := v.chunks.Neighborhood(c.Coord)
		if !ok {
			continue
		}
		if _, ok := v.pool.SubmitJob(nb); !ok {
			c.MarkDirty()
		}
	}
	return buf
}

// interact resolves the targeted voxel, advances mining and handles placement, then
// publishes the frame's signal.
func (v *Viewer) interact(dt float64) {
	defer profiling.Track("interaction.Update")()

	target, _ := interaction.FindTarget(v.chunks, v.camera.Position, v.camera.Front(), physics.MaxReachDistance)
	hardness := float32(1)
	if target != nil {
		hardness = v.reg.Hardness(v.chunks.Get(target.Block))
	}

	sig, broken := v.miner.Update(dt, target, v.input.IsActive(input.ActionBreak), hardness)
	if broken {
		v.breakBlock(target.Block)
		sig = interaction.Signal{}
	} else if target != nil && v.input.JustPressed(input.ActionPlace) {
		v.placeBlock(target.Place)
	}
	v.signal.Publish(sig)
}

func (v *Viewer) breakBlock(pos world.BlockPos) {
	b := v.chunks.Get(pos)
	if !v.chunks.Set(pos, world.BlockTypeAir) {
		return
	}
	item := storage.ItemID(v.reg.Name(b))
	if _, err := v.store.AdjustInventory(context.Background(), item, 1); err != nil {
		log.Printf("[inventory] %s: %v", item, err)
	}
}

func (v *Viewer) placeBlock(pos world.BlockPos) {
	item := v.hotbar[v.slot]
	if item == storage.NoItem {
		return
	}
	b, err := v.reg.Lookup(string(item))
	if err != nil || !b.IsSolid() {
		return
	}
	if pos == world.BlockPosFromWorld(v.camera.Position) {
		return
	}

	ctx := context.Background()
	if _, err := v.store.AdjustInventory(ctx, item, -1); err != nil {
		if errors.Is(err, storage.ErrInsufficientItems) {
			log.Printf("[inventory] no %s left", item)
		} else {
			log.Printf("[inventory] %s: %v", item, err)
		}
		return
	}
	if !v.chunks.Set(pos, b) {
		// Chunk not loaded: hand the item back.
		if _, err := v.store.AdjustInventory(ctx, item, 1); err != nil {
			log.Printf("[inventory] refund %s: %v", item, err)
		}
	}
}
