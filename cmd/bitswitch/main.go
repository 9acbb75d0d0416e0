package main

import (
	"fmt"
	"io/fs"
	"os"
	"runtime/debug"

	"github.com/gdamore/tcell/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/lixenwraith/bitswitch/audio"
	"github.com/lixenwraith/bitswitch/config"
	"github.com/lixenwraith/bitswitch/event"
	"github.com/lixenwraith/bitswitch/game"
	"github.com/lixenwraith/bitswitch/input"
	"github.com/lixenwraith/bitswitch/level"
	"github.com/lixenwraith/bitswitch/levels"
	"github.com/lixenwraith/bitswitch/logging"
	"github.com/lixenwraith/bitswitch/render"
	"github.com/lixenwraith/bitswitch/status"
)

func main() {
	var screen tcell.Screen

	// Panic Recovery: restore the terminal before printing the crash
	defer func() {
		if r := recover(); r != nil {
			if screen != nil {
				screen.Fini()
			}
			fmt.Fprintf(os.Stderr, "\n\x1b[31mBITSWITCH CRASHED: %v\x1b[0m\n", r)
			fmt.Fprintf(os.Stderr, "Stack Trace:\n%s\n", debug.Stack())
			os.Exit(1)
		}
	}()

	cfg, err := config.Parse()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	log, err := logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logging: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	keys, err := input.NewKeyMap(cfg.Keys)
	if err != nil {
		fatal(log, nil, "invalid key map", err)
	}

	lvl, err := loadLevel(cfg.LevelFile)
	if err != nil {
		fatal(log, nil, "level load failed", err)
	}

	ctrl := game.New(game.Options{
		MaxBits:      cfg.MaxBits,
		MaxHealth:    cfg.MaxHealth,
		InitialLevel: cfg.InitialLevel,
		Logger:       log.Logger,
	})
	bus := ctrl.Bus()

	reg := status.NewRegistry()
	bus.Register(status.NewTracker(reg, ctrl.MaxBits()))
	if len(cfg.TraceEvents) > 0 {
		bus.Register(event.NewTracer(log.Logger, cfg.TraceEvents))
	}

	if cfg.Audio {
		sound := audio.NewSoundManager(log.Logger)
		if err := sound.Initialize(); err == nil {
			bus.Register(sound)
			defer sound.Cleanup()
		} else {
			log.Warn("continuing without audio", zap.Error(err))
		}
	}

	// Completion rebuilds the scene from the main loop, not from inside the dispatch
	rebuild := false
	bus.Subscribe(func(event.GameEvent) { rebuild = true }, event.EventLevelCompleted)

	inst, err := lvl.Build(ctrl, log.Logger)
	if err != nil {
		fatal(log, nil, "level build failed", err)
	}

	screen, err = tcell.NewScreen()
	if err != nil {
		fatal(log, nil, "failed to create screen", err)
	}
	if err := screen.Init(); err != nil {
		fatal(log, nil, "failed to initialize screen", err)
	}
	defer screen.Fini()

	hud := render.NewHUD(ctrl, reg, keys)
	hud.SetInstance(inst)
	keysIn := input.NewHandler(keys, ctrl, log.Logger)

	log.Info("session started",
		zap.String("level", lvl.Name),
		zap.Int("width", ctrl.MaxBits()),
		zap.Bool("audio", cfg.Audio),
	)

	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				close(eventChan)
				return
			}
			eventChan <- ev
		}
	}()

	hud.Draw(screen)
	for ev := range eventChan {
		switch ev := ev.(type) {
		case *tcell.EventKey:
			if !keysIn.HandleKey(ev) {
				log.Info("session ended", zap.Int("level", ctrl.Level()))
				return
			}
		case *tcell.EventResize:
			screen.Sync()
		}

		if rebuild {
			rebuild = false
			inst.Teardown()
			ctrl.SetMask(0)
			if inst, err = lvl.Build(ctrl, log.Logger); err != nil {
				fatal(log, screen, "level rebuild failed", err)
			}
			hud.SetInstance(inst)
		}
		hud.Draw(screen)
	}
}

// exit is replaced in tests
var exit = os.Exit

// fatal restores the terminal and flushes the log before exiting, deferred calls do not run past os.Exit
func fatal(log *logging.Logger, screen tcell.Screen, msg string, err error) {
	if screen != nil {
		screen.Fini()
	}
	log.Error(msg, zap.Error(err))
	_ = log.Close()
	exit(1)
}

// loadLevel reads path, or the built-in default when path is empty
func loadLevel(path string) (*level.Level, error) {
	if path != "" {
		return level.LoadFile(path)
	}
	data, err := fs.ReadFile(levels.FS(), levels.Default)
	if err != nil {
		return nil, errors.Wrap(err, "built-in level")
	}
	return level.Parse(data)
}
