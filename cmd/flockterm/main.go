package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"

	"github.com/gdamore/tcell/v2"

	"github.com/lao-tseu-is-alive/go-boids-flock/internal/app"
	"github.com/lao-tseu-is-alive/go-boids-flock/internal/termview"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	opts, err := app.ParseFlags("flockterm", os.Args[1:], 800, 600)
	if err != nil {
		log.Fatal(err)
	}
	state, err := opts.NewState()
	if err != nil {
		log.Fatalf("cannot initialize flock: %v", err)
	}
	// the terminal is the display: actor logs would corrupt it
	logger, err := app.NewLogger(opts.LogLevel, nil)
	if err != nil {
		log.Fatal(err)
	}
	system, err := app.StartActorSystem(ctx, logger)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = system.Stop(context.Background()) }()

	screen, err := tcell.NewScreen()
	if err != nil {
		log.Fatal(err)
	}
	if err := screen.Init(); err != nil {
		log.Fatal(err)
	}

	view, err := termview.New(ctx, system, state, screen)
	if err != nil {
		screen.Fini()
		log.Fatal(err)
	}
	err = view.Run()
	screen.Fini()
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal(err)
	}
}
