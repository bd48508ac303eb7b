package main

import (
	"context"
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/lao-tseu-is-alive/go-boids-flock/internal/app"
	"github.com/lao-tseu-is-alive/go-boids-flock/internal/viewer"
)

func main() {
	ctx := context.Background()

	opts, err := app.ParseFlags("flock", os.Args[1:], 1280, 720)
	if err != nil {
		log.Fatal(err)
	}
	state, err := opts.NewState()
	if err != nil {
		log.Fatalf("cannot initialize flock: %v", err)
	}
	logger, err := app.NewLogger(opts.LogLevel, os.Stderr)
	if err != nil {
		log.Fatal(err)
	}
	system, err := app.StartActorSystem(ctx, logger)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = system.Stop(ctx) }()

	game, err := viewer.NewGame(ctx, system, state)
	if err != nil {
		log.Fatal(err)
	}

	ebiten.SetWindowSize(opts.Width, opts.Height)
	ebiten.SetWindowTitle("Boids: Flocking toward a target")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
