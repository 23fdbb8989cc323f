package logging

import (
	"log/slog"
	"testing"

	"github.com/nerrad567/gray-logic-assistant/internal/infrastructure/config"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"ERROR", slog.LevelError},
		{"", slog.LevelInfo},
		{"nonsense", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.input); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestNew(t *testing.T) {
	t.Run("creates a usable logger", func(t *testing.T) {
		log := New(config.LoggingConfig{Level: "debug", Format: "text", Output: "stderr"}, "test")
		if log == nil || log.Logger == nil {
			t.Fatal("New() returned nil logger")
		}
		// Must not panic
		log.Debug("debug message", "key", "value")
	})

	t.Run("with adds attributes without sharing state", func(t *testing.T) {
		log := Default()
		child := log.With("component", "test")
		if child == log {
			t.Error("With() returned the same logger")
		}
		child.Info("child message")
	})
}
