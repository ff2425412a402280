package main

import (
	"flag"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/rs/zerolog"
)

func main() {
	debug := flag.Bool("debug", false, "enable debug mode (physics overlay, free fly)")
	baseMonitor := flag.Bool("m", false, "use base monitor instead of primary (for multi-monitor setups)")
	levelName := flag.String("level", "village", "level name in levels/ (basename, .yaml optional)")
	savePath := flag.String("save", "", "sqlite save file; empty keeps saves in memory")
	slot := flag.Int("slot", 0, "save slot")
	watch := flag.Bool("watch", false, "reload prefab tables and trigger scripts when they change on disk")
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		With().Timestamp().Logger()
	if *debug {
		logger = logger.Level(zerolog.DebugLevel)
	} else {
		logger = logger.Level(zerolog.InfoLevel)
	}

	if *baseMonitor {
		ebiten.SetMonitor(ebiten.AppendMonitors(nil)[0])
	}

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(baseWidth, baseHeight)
	ebiten.SetWindowTitle("perspective")
	ebiten.SetTPS(60)

	game, err := NewGame(GameOptions{
		Level:    *levelName,
		Debug:    *debug,
		SavePath: *savePath,
		Slot:     *slot,
		Watch:    *watch,
		Log:      logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to start")
	}
	defer game.Close()

	if err := ebiten.RunGame(game); err != nil {
		logger.Fatal().Err(err).Msg("game exited")
	}
}
