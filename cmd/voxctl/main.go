// Command voxctl inspects and edits a voxel store from the shell.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"strconv"

	"voxcore/internal/config"
	"voxcore/internal/meshing"
	"voxcore/internal/packing"
	"voxcore/internal/registry"
	"voxcore/internal/shading"
	"voxcore/internal/storage"
	"voxcore/internal/world"
)

const usage = `usage: voxctl [-config file] <command> [args]

commands:
  get X Y Z              summarise the stored chunk at chunk coordinate X Y Z
  fill X Y Z BLOCK H     store a chunk whose lowest H layers are BLOCK
  mesh X Y Z             encode the stored chunk and report its packed words
  player                 print the stored player pose
  hotbar                 print the hotbar slots
  inventory              print the inventory
  give ITEM N            add N of ITEM (negative N removes)
  slot I ITEM            put ITEM in hotbar slot I ("-" clears it)
  layouts                list packed layouts and shading variants
`

func main() {
	configPath := flag.String("config", "", "YAML config file")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "voxctl: config: %v\n", err)
		os.Exit(1)
	}

	if err := run(context.Background(), cfg, flag.Arg(0), flag.Args()[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "voxctl: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, cmd string, args []string) error {
	if cmd == "layouts" {
		return listLayouts()
	}

	store, err := storage.Open(cfg.Store)
	if err != nil {
		return err
	}
	defer store.Close()
	reg := registry.Default()

	switch cmd {
	case "get":
		coord, err := chunkArgs(args, 3)
		if err != nil {
			return err
		}
		return getChunk(ctx, store, reg, coord)
	case "fill":
		coord, err := chunkArgs(args, 5)
		if err != nil {
			return err
		}
		block, err := reg.Lookup(args[3])
		if err != nil {
			return err
		}
		height, err := strconv.Atoi(args[4])
		if err != nil {
			return fmt.Errorf("height: %w", err)
		}
		return fillChunk(ctx, store, coord, block, height)
	case "mesh":
		coord, err := chunkArgs(args, 3)
		if err != nil {
			return err
		}
		layout, err := cfg.Layout()
		if err != nil {
			return err
		}
		return meshChunk(ctx, store, reg, layout, coord)
	case "player":
		p, err := store.Player(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("position %.2f %.2f %.2f\n", p.Position.X(), p.Position.Y(), p.Position.Z())
		fmt.Printf("rotation roll %.2f pitch %.2f yaw %.2f\n", p.Rotation.X(), p.Rotation.Y(), p.Rotation.Z())
		fmt.Printf("slot %d\n", p.Slot)
		return nil
	case "hotbar":
		bar, err := store.Hotbar(ctx)
		if err != nil {
			return err
		}
		for i, item := range bar {
			if item == storage.NoItem {
				item = "-"
			}
			fmt.Printf("%d %s\n", i, item)
		}
		return nil
	case "inventory":
		inv, err := store.Inventory(ctx)
		if err != nil {
			return err
		}
		items := make([]string, 0, len(inv))
		for item := range inv {
			items = append(items, string(item))
		}
		sort.Strings(items)
		for _, item := range items {
			fmt.Printf("%s %d\n", item, inv[storage.ItemID(item)])
		}
		return nil
	case "give":
		if len(args) != 2 {
			return fmt.Errorf("give needs ITEM N")
		}
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("count: %w", err)
		}
		total, err := store.AdjustInventory(ctx, storage.ItemID(args[0]), n)
		if err != nil {
			return err
		}
		fmt.Printf("%s %d\n", args[0], total)
		return nil
	case "slot":
		if len(args) != 2 {
			return fmt.Errorf("slot needs I ITEM")
		}
		slot, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("slot: %w", err)
		}
		item := storage.ItemID(args[1])
		if item == "-" {
			item = storage.NoItem
		}
		return store.SetHotbarSlot(ctx, slot, item)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func chunkArgs(args []string, want int) (world.ChunkCoord, error) {
	if len(args) != want {
		return world.ChunkCoord{}, fmt.Errorf("want %d arguments, got %d", want, len(args))
	}
	var v [3]int
	for i := range v {
		n, err := strconv.Atoi(args[i])
		if err != nil {
			return world.ChunkCoord{}, fmt.Errorf("coordinate %q: %w", args[i], err)
		}
		v[i] = n
	}
	return world.ChunkCoord{X: v[0], Y: v[1], Z: v[2]}, nil
}

func getChunk(ctx context.Context, store storage.Store, reg *registry.Registry, coord world.ChunkCoord) error {
	g, ok, err := store.GetChunk(ctx, coord)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Printf("chunk %v not generated\n", coord)
		return nil
	}
	counts := map[world.BlockType]int{}
	for _, b := range g {
		counts[b]++
	}
	types := make([]world.BlockType, 0, len(counts))
	for b := range counts {
		types = append(types, b)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	fmt.Printf("chunk %v: %d solid of %d\n", coord, g.SolidCount(), world.ChunkVolume)
	for _, b := range types {
		fmt.Printf("  %-8s %d\n", reg.Name(b), counts[b])
	}
	return nil
}

func fillChunk(ctx context.Context, store storage.Store, coord world.ChunkCoord, block world.BlockType, height int) error {
	height = min(max(height, 0), world.ChunkSize)
	g := new(world.Grid)
	for y := 0; y < height; y++ {
		for z := 0; z < world.ChunkSize; z++ {
			for x := 0; x < world.ChunkSize; x++ {
				g.Set(x, y, z, block)
			}
		}
	}
	if err := store.PutChunk(ctx, coord, g); err != nil {
		return err
	}
	fmt.Printf("chunk %v: %d layers written\n", coord, height)
	return nil
}

func meshChunk(ctx context.Context, store storage.Store, reg *registry.Registry, layout packing.Layout, coord world.ChunkCoord) error {
	chunks := world.NewChunkStore()
	streamer := world.NewChunkStreamer(chunks, store, 1)
	defer streamer.Close()
	if _, err := streamer.Stream(ctx, coord, 1); err != nil {
		return err
	}

	nb, ok := chunks.Neighborhood(coord)
	if !ok {
		fmt.Printf("chunk %v not generated\n", coord)
		return nil
	}
	loaded := 0
	for _, n := range nb.Neighbors {
		if n != nil {
			loaded++
		}
	}

	m, err := meshing.Encode(layout, &nb, reg)
	if err != nil {
		return err
	}
	fmt.Printf("chunk %v layout %s: %d faces, %d words, %d of 6 neighbours loaded\n",
		coord, layout.Name, m.Faces, len(m.Words), loaded)
	for i := 0; i < len(m.Words) && i < 4*packing.CornersPerQuad; i++ {
		v := layout.Unpack(m.Words[i])
		fmt.Printf("  %08x  xyz=%d,%d,%d corner=%d face=%s ao=%d tex=%d\n",
			m.Words[i], v.X, v.Y, v.Z, v.Corner, world.BlockFace(v.Face), v.AO, v.Texture)
	}
	return nil
}

func listLayouts() error {
	for _, name := range packing.Names() {
		l, err := packing.Lookup(name)
		if err != nil {
			return err
		}
		fmt.Printf("layout  %-28s %d bits, %d textures\n", l.String(), l.Bits(), l.TextureCapacity())
	}
	for _, name := range shading.VariantNames() {
		fmt.Printf("variant %s\n", name)
	}
	return nil
}
