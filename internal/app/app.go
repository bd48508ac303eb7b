// Package app holds the start-up plumbing shared by the flock binaries:
// flags, configuration loading and the actor system.
package app

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/tochemey/goakt/v3/actor"
	golog "github.com/tochemey/goakt/v3/log"

	"github.com/lao-tseu-is-alive/go-boids-flock/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-boids-flock/pkg/simulation"
)

// Options are the command-line settings common to every front end.
type Options struct {
	ConfigFile string
	SchemaFile string
	Width      int
	Height     int
	LogLevel   string
	Seed       int64
}

// ParseFlags reads Options from args.
func ParseFlags(name string, args []string, width, height int) (*Options, error) {
	opts := &Options{}
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.StringVar(&opts.ConfigFile, "config", "", "JSON config file, defaults are used when empty")
	fs.StringVar(&opts.SchemaFile, "schema", "configs/flock.schema.json", "JSON schema the config file must satisfy")
	fs.IntVar(&opts.Width, "width", width, "domain width")
	fs.IntVar(&opts.Height, "height", height, "domain height")
	fs.StringVar(&opts.LogLevel, "log-level", "info", "debug, info, warn or error")
	fs.Int64Var(&opts.Seed, "seed", 0, "placement seed, 0 keeps the configured one")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("%w: window %dx%d", simulation.ErrInvalidDomain, opts.Width, opts.Height)
	}
	return opts, nil
}

// Domain is the initial simulation extent.
func (o *Options) Domain() geometry.Vector2D {
	return geometry.Vector2D{X: float64(o.Width), Y: float64(o.Height)}
}

// LoadConfig returns the configured simulation parameters.
func (o *Options) LoadConfig() (*simulation.Config, error) {
	cfg := simulation.DefaultConfig()
	if o.ConfigFile != "" {
		var err error
		if cfg, err = simulation.LoadConfig(o.ConfigFile, o.SchemaFile); err != nil {
			return nil, err
		}
	}
	if o.Seed != 0 {
		cfg.Seed = o.Seed
	}
	return cfg, nil
}

// ParseLevel maps a level name onto the actor system log level.
func ParseLevel(name string) (golog.Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return golog.DebugLevel, nil
	case "info", "":
		return golog.InfoLevel, nil
	case "warn", "warning":
		return golog.WarningLevel, nil
	case "error":
		return golog.ErrorLevel, nil
	}
	return golog.InfoLevel, fmt.Errorf("unknown log level %q", name)
}

// NewLogger builds the logger used by the actor system. A nil writer
// discards everything.
func NewLogger(level string, w io.Writer) (golog.Logger, error) {
	if w == nil {
		return golog.DiscardLogger, nil
	}
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	return golog.New(lvl, w), nil
}

// StartActorSystem creates and starts the actor system hosting the world.
func StartActorSystem(ctx context.Context, logger golog.Logger) (actor.ActorSystem, error) {
	system, err := actor.NewActorSystem("FlockWorld", actor.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create actor system: %w", err)
	}
	if err := system.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start actor system: %w", err)
	}
	return system, nil
}

// NewState loads the configuration and places the flock.
func (o *Options) NewState() (*simulation.State, error) {
	cfg, err := o.LoadConfig()
	if err != nil {
		return nil, err
	}
	return simulation.Initialize(cfg, o.Domain())
}
