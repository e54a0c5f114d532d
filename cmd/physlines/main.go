package main

import (
	"flag"
	"log"
	"runtime"

	"github.com/gekko3d/physlines"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	configDir := flag.String("config", "config", "Directory holding display.yaml, input.yaml and scene.yaml")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	cfg, err := physlines.LoadConfig(*configDir)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	axes, err := cfg.Input.Bindings()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	app := physlines.NewAppBuilder().
		UseStates(physlines.StateRunning, physlines.StateQuit).
		UseModule(
			physlines.LoggingModule{Prefix: "physlines", Debug: *debug},
			physlines.TimeModule{},
			physlines.PlatformWindowModule{Display: cfg.Display},
			physlines.InputModule{Axes: axes},
			physlines.LifecycleModule{},
			physlines.PhysicsModule{},
			physlines.SceneModule{Scene: cfg.Scene},
			physlines.FlyCameraModule{
				Speed:       cfg.Scene.Camera.Speed,
				Sensitivity: cfg.Scene.Camera.Sensitivity,
			},
			physlines.OverlayModule{},
			physlines.RendererModule{Display: cfg.Display},
		).
		Build()

	app.Run()
}
