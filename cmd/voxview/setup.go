package main

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"

	"voxcore/internal/config"
	"voxcore/internal/graphics"
	"voxcore/internal/input"
	"voxcore/internal/interaction"
	"voxcore/internal/meshing"
	"voxcore/internal/metrics"
	"voxcore/internal/registry"
	"voxcore/internal/shading"
	"voxcore/internal/storage"
	"voxcore/internal/world"
)

const (
	windowWidth  = 900
	windowHeight = 600

	textureSize  = 16
	saveInterval = 250 * time.Millisecond
)

func setupWindow() (*glfw.Window, error) {
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)

	window, err := glfw.CreateWindow(windowWidth, windowHeight, "voxview", nil, nil)
	if err != nil {
		return nil, err
	}
	window.MakeContextCurrent()

	// Initialize OpenGL bindings
	if err := gl.Init(); err != nil {
		return nil, err
	}

	// The frame limiter paces the loop, not V-Sync.
	glfw.SwapInterval(0)
	window.SetInputMode(glfw.CursorMode, glfw.CursorDisabled)

	gl.Enable(gl.DEPTH_TEST)
	gl.Enable(gl.CULL_FACE)
	gl.CullFace(gl.BACK)
	gl.FrontFace(gl.CCW)
	return window, nil
}

// Viewer holds every component of a running viewer.
type Viewer struct {
	cfg config.Config

	store    storage.Store
	reg      *registry.Registry
	chunks   *world.ChunkStore
	streamer *world.ChunkStreamer
	pool     *meshing.WorkerPool
	renderer *graphics.ChunkRenderer
	pipeline *shading.Pipeline
	camera   *graphics.Camera
	input    *input.Manager

	signal interaction.Channel
	miner  interaction.Miner

	hotbar [storage.HotbarSlots]storage.ItemID
	slot   int
	paused bool

	// pose is the player state the saver persists; the main thread refreshes it.
	poseMu sync.Mutex
	pose   storage.PlayerState

	saver      *world.Saver
	saveCancel context.CancelFunc
	saveDone   chan struct{}
}

func setupViewer(window *glfw.Window, cfg config.Config) (v *Viewer, err error) {
	layout, err := cfg.Layout()
	if err != nil {
		return nil, err
	}
	variant, err := cfg.Variant()
	if err != nil {
		return nil, err
	}

	metrics.Serve(cfg.MetricsAddr)
	config.SetRenderDistance(cfg.Render.Distance)

	v = &Viewer{
		cfg:    cfg,
		reg:    registry.Default(),
		chunks: world.NewChunkStore(),
		input:  input.NewManager(),
	}
	defer func() {
		if err != nil {
			v.Close()
			v = nil
		}
	}()

	v.store, err = storage.Open(cfg.Store)
	if err != nil {
		return nil, err
	}
	ctx := context.Background()
	pose, err := v.store.Player(ctx)
	if err != nil {
		return nil, err
	}
	v.hotbar, err = v.store.Hotbar(ctx)
	if err != nil {
		return nil, err
	}
	v.pose = pose
	v.slot = min(max(pose.Slot, 0), storage.HotbarSlots-1)

	w, h := window.GetFramebufferSize()
	v.camera = graphics.NewCamera(w, h)
	v.camera.Position = pose.Position
	if pose.Rotation != (mgl32.Vec3{}) {
		v.camera.Pitch = pose.Rotation.Y()
		v.camera.Yaw = pose.Rotation.Z()
	}

	textures, destroy, err := buildTextures(cfg.Render.Textures, variant, v.reg)
	if err != nil {
		return nil, err
	}
	v.pipeline, err = shading.NewPipeline(variant, layout, textures, destroy)
	if err != nil {
		return nil, err
	}
	v.pipeline.FogStart = cfg.Render.FogStart
	v.pipeline.FogEnd = cfg.Render.FogEnd
	v.pipeline.FogColor = mgl32.Vec3(cfg.Render.FogColor)

	v.renderer, err = graphics.NewChunkRenderer(v.pipeline, cfg.Render.FlipV)
	if err != nil {
		return nil, err
	}

	v.streamer = world.NewChunkStreamer(v.chunks, v.store, 0)
	v.pool = meshing.NewWorkerPool(cfg.Mesh.Workers, cfg.Mesh.QueueSize, layout, v.reg)

	// Load the spawn area before the first frame.
	center := world.BlockPosFromWorld(v.camera.Position).Chunk()
	loaded, err := v.streamer.Stream(ctx, center, 2)
	if err != nil {
		log.Printf("[stream] spawn area: %v", err)
	}
	log.Printf("[voxview] layout %s, variant %s, %d spawn chunks", layout.Name, variant.Name, loaded)

	v.saver = &world.Saver{Chunks: v.chunks, Source: v.store, Extra: v.savePose}
	saveCtx, cancel := context.WithCancel(context.Background())
	v.saveCancel = cancel
	v.saveDone = make(chan struct{})
	go func() {
		defer close(v.saveDone)
		v.saver.Run(saveCtx, saveInterval)
	}()

	return v, nil
}

// buildTextures loads the texture layers named by the registry from dir. A missing
// directory falls back to generated solid-color layers. Flat-color variants get none.
func buildTextures(dir string, variant shading.Variant, reg *registry.Registry) (textures, destroy *shading.TextureArray, err error) {
	if variant.Interaction {
		destroy, err = shading.DestroyOverlay(textureSize)
		if err != nil {
			return nil, nil, err
		}
	}
	if variant.FlatColor {
		return nil, destroy, nil
	}

	if dir != "" {
		textures, err = shading.LoadTextureArray(dir, reg.TextureNames)
		if err == nil {
			return textures, destroy, nil
		}
		log.Printf("[textures] %v; using generated colors", err)
	}

	colors, alphas := layerColors(reg)
	textures, err = shading.SolidTextures(colors, alphas, textureSize)
	if err != nil {
		return nil, nil, fmt.Errorf("generate textures: %w", err)
	}
	return textures, destroy, nil
}

// layerColors picks, for every texture layer, the color of the lowest block id that uses
// it. Transparent blocks get a semi-transparent alpha.
func layerColors(reg *registry.Registry) (colors []uint32, alphas []uint8) {
	colors = make([]uint32, len(reg.TextureNames))
	alphas = make([]uint8, len(reg.TextureNames))
	set := make([]bool, len(reg.TextureNames))

	ids := make([]world.BlockType, 0, len(reg.Blocks))
	for id := range reg.Blocks {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		def := reg.Blocks[id]
		for _, name := range []string{def.TextureTop, def.TextureSide, def.TextureBot} {
			layer, ok := reg.TextureMap[name]
			if !ok || set[layer] {
				continue
			}
			set[layer] = true
			colors[layer] = def.Color
			if def.IsTransparent {
				alphas[layer] = 128
			}
		}
	}
	return colors, alphas
}

// savePose is the saver's extra step: it persists the latest player pose.
func (v *Viewer) savePose(ctx context.Context) error {
	v.poseMu.Lock()
	p := v.pose
	v.poseMu.Unlock()
	return v.store.SetPlayer(ctx, p)
}

func (v *Viewer) storePose() {
	v.poseMu.Lock()
	v.pose = storage.PlayerState{
		Position: v.camera.Position,
		Rotation: mgl32.Vec3{0, v.camera.Pitch, v.camera.Yaw},
		Slot:     v.slot,
	}
	v.poseMu.Unlock()
}

// Close stops the background workers, flushes unsaved edits and the pose, then releases
// GL objects and the store. It is safe on a partly built viewer.
func (v *Viewer) Close() {
	if v.pool != nil {
		v.pool.Shutdown()
	}
	if v.streamer != nil {
		v.streamer.Close()
	}
	if v.saveCancel != nil {
		if v.camera != nil {
			v.storePose()
		}
		v.saveCancel()
		<-v.saveDone
	}
	if v.renderer != nil {
		v.renderer.Dispose()
	}
	if v.store != nil {
		if err := v.store.Close(); err != nil {
			log.Printf("[store] close: %v", err)
		}
	}
}
