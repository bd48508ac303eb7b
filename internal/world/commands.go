package world

import (
	"errors"
	"fmt"
	"time"

	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/lao-tseu-is-alive/go-boids-flock/pkg/geometry"
)

// ErrUnknownCommand is returned when a command struct cannot be decoded.
var ErrUnknownCommand = errors.New("unknown world command")

const (
	kindSetTarget = "setTarget"
	kindResize    = "resize"
)

// Command is a decoded control message for the world actor.
type Command struct {
	Kind  string
	Point geometry.Vector2D // target position or new domain size
}

// NewTick wraps a frame delta as a message the world actor understands.
func NewTick(dt time.Duration) *durationpb.Duration {
	return durationpb.New(dt)
}

// NewSetTargetCommand asks the world to move the flock target to p.
func NewSetTargetCommand(p geometry.Vector2D) *structpb.Struct {
	return newCommand(kindSetTarget, p)
}

// NewResizeCommand tells the world that the visible domain changed size.
func NewResizeCommand(size geometry.Vector2D) *structpb.Struct {
	return newCommand(kindResize, size)
}

func newCommand(kind string, p geometry.Vector2D) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"kind": structpb.NewStringValue(kind),
		"x":    structpb.NewNumberValue(p.X),
		"y":    structpb.NewNumberValue(p.Y),
	}}
}

// DecodeCommand turns a command struct back into a Command.
func DecodeCommand(s *structpb.Struct) (Command, error) {
	fields := s.GetFields()
	kind := fields["kind"].GetStringValue()
	switch kind {
	case kindSetTarget, kindResize:
	default:
		return Command{}, fmt.Errorf("%w: %q", ErrUnknownCommand, kind)
	}

	x, okX := fields["x"].GetKind().(*structpb.Value_NumberValue)
	y, okY := fields["y"].GetKind().(*structpb.Value_NumberValue)
	if !okX || !okY {
		return Command{}, fmt.Errorf("%w: %s without numeric x and y", ErrUnknownCommand, kind)
	}
	return Command{Kind: kind, Point: geometry.Vector2D{X: x.NumberValue, Y: y.NumberValue}}, nil
}
