// Command voxview streams a stored world around a free camera and draws it with the
// configured layout and shading variant.
package main

import (
	"flag"
	"log"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"

	"voxcore/internal/config"
)

func init() {
	// GLFW and GL calls must stay on the main thread.
	runtime.LockOSThread()
}

func main() {
	configPath := flag.String("config", "", "YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("[config] %v", err)
	}
	if err := run(cfg); err != nil {
		log.Fatalf("[voxview] %v", err)
	}
}

func run(cfg config.Config) error {
	if err := glfw.Init(); err != nil {
		return err
	}
	defer glfw.Terminate()

	window, err := setupWindow()
	if err != nil {
		return err
	}
	defer window.Destroy()

	v, err := setupViewer(window, cfg)
	if err != nil {
		return err
	}
	defer v.Close()

	setupInputHandlers(window, v)
	runLoop(window, v)
	return nil
}
