package app

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	golog "github.com/tochemey/goakt/v3/log"

	"github.com/lao-tseu-is-alive/go-boids-flock/pkg/simulation"
)

func TestParseFlags(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		opts, err := ParseFlags("flock", nil, 1280, 720)
		if err != nil {
			t.Fatalf("ParseFlags: %v", err)
		}
		if opts.Width != 1280 || opts.Height != 720 || opts.LogLevel != "info" || opts.ConfigFile != "" {
			t.Errorf("unexpected defaults %+v", opts)
		}
		if d := opts.Domain(); d.X != 1280 || d.Y != 720 {
			t.Errorf("Domain() = %v", d)
		}
	})

	t.Run("overrides", func(t *testing.T) {
		opts, err := ParseFlags("flock", []string{"-width", "300", "-height", "200", "-seed", "9", "-log-level", "debug"}, 1280, 720)
		if err != nil {
			t.Fatalf("ParseFlags: %v", err)
		}
		if opts.Width != 300 || opts.Height != 200 || opts.Seed != 9 || opts.LogLevel != "debug" {
			t.Errorf("unexpected options %+v", opts)
		}
	})

	t.Run("rejects empty window", func(t *testing.T) {
		_, err := ParseFlags("flock", []string{"-width", "0"}, 1280, 720)
		if !errors.Is(err, simulation.ErrInvalidDomain) {
			t.Errorf("err = %v; want ErrInvalidDomain", err)
		}
	})

	t.Run("rejects unknown flag", func(t *testing.T) {
		if _, err := ParseFlags("flock", []string{"-bogus"}, 1280, 720); err == nil {
			t.Error("expected an error")
		}
	})
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name    string
		want    golog.Level
		wantErr bool
	}{
		{"debug", golog.DebugLevel, false},
		{"INFO", golog.InfoLevel, false},
		{"", golog.InfoLevel, false},
		{"warn", golog.WarningLevel, false},
		{"error", golog.ErrorLevel, false},
		{"chatty", golog.InfoLevel, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.name)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) err = %v; wantErr %v", tt.name, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseLevel(%q) = %v; want %v", tt.name, got, tt.want)
		}
	}
}

func TestNewLogger(t *testing.T) {
	if l, err := NewLogger("debug", nil); err != nil || l == nil {
		t.Errorf("NewLogger(nil writer) = %v, %v; want the discard logger", l, err)
	}
	var buf bytes.Buffer
	if _, err := NewLogger("loud", &buf); err == nil {
		t.Error("expected an error for an unknown level")
	}
	if _, err := NewLogger("info", &buf); err != nil {
		t.Errorf("NewLogger: %v", err)
	}
}

func TestOptions_NewState(t *testing.T) {
	t.Run("defaults with seed override", func(t *testing.T) {
		opts := &Options{Width: 400, Height: 300, Seed: 42}
		cfg, err := opts.LoadConfig()
		if err != nil {
			t.Fatalf("LoadConfig: %v", err)
		}
		if cfg.Seed != 42 {
			t.Errorf("Seed = %d; want 42", cfg.Seed)
		}
		st, err := opts.NewState()
		if err != nil {
			t.Fatalf("NewState: %v", err)
		}
		if st.Domain().X != 400 || st.Domain().Y != 300 {
			t.Errorf("Domain() = %v", st.Domain())
		}
	})

	t.Run("config file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "flock.json")
		if err := os.WriteFile(path, []byte(`{"maxEntities": 10, "noiseThreshold": -1}`), 0o600); err != nil {
			t.Fatal(err)
		}
		opts := &Options{ConfigFile: path, SchemaFile: "../../configs/flock.schema.json", Width: 400, Height: 300}
		st, err := opts.NewState()
		if err != nil {
			t.Fatalf("NewState: %v", err)
		}
		if st.Config().MaxEntities != 10 {
			t.Errorf("MaxEntities = %d; want 10", st.Config().MaxEntities)
		}
	})

	t.Run("invalid config file", func(t *testing.T) {
		opts := &Options{ConfigFile: filepath.Join(t.TempDir(), "missing.json"), SchemaFile: "../../configs/flock.schema.json", Width: 400, Height: 300}
		if _, err := opts.NewState(); err == nil {
			t.Error("expected an error")
		}
	})
}
