package logging

import (
	"bytes"
	"log"
	"os"
	"strings"
	"testing"
)

// capture redirects the standard logger during a test and returns its output.
func capture(t *testing.T, fn func()) string {
	t.Helper()
	var buf bytes.Buffer
	log.SetOutput(&buf)
	flags := log.Flags()
	log.SetFlags(0)
	defer func() {
		log.SetOutput(os.Stderr)
		log.SetFlags(flags)
	}()
	fn()
	return buf.String()
}

func TestLevelFiltering(t *testing.T) {
	prev := GetLevel()
	defer SetLevel(prev)

	SetLevel(LevelWarn)
	out := capture(t, func() {
		Debug("debug message")
		Info("info message")
		Warn("warn message")
		Error("error message")
	})

	if strings.Contains(out, "[DEBUG]") || strings.Contains(out, "[INFO]") {
		t.Errorf("levels below warn were logged: %q", out)
	}
	if !strings.Contains(out, "[WARN] warn message") {
		t.Errorf("warn message missing from output: %q", out)
	}
	if !strings.Contains(out, "[ERROR] error message") {
		t.Errorf("error message missing from output: %q", out)
	}
}

func TestIsDebugEnabled(t *testing.T) {
	prev := GetLevel()
	defer SetLevel(prev)

	SetLevel(LevelDebug)
	if !IsDebugEnabled() {
		t.Error("IsDebugEnabled() = false at debug level")
	}
	SetLevel(LevelInfo)
	if IsDebugEnabled() {
		t.Error("IsDebugEnabled() = true at info level")
	}
}

func TestLevelFromEnv(t *testing.T) {
	tests := []struct {
		name     string
		debug    string
		logLevel string
		want     Level
	}{
		{"default", "", "", LevelInfo},
		{"debug flag", "true", "", LevelDebug},
		{"debug flag numeric", "1", "", LevelDebug},
		{"debug flag wins over level", "yes", "error", LevelDebug},
		{"level debug", "", "debug", LevelDebug},
		{"level warn", "", "warn", LevelWarn},
		{"level warning alias", "", "warning", LevelWarn},
		{"level error", "", "ERROR", LevelError},
		{"unknown level", "", "verbose", LevelInfo},
		{"debug flag off", "false", "", LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DEBUG", tt.debug)
			t.Setenv("LOG_LEVEL", tt.logLevel)
			if got := levelFromEnv(); got != tt.want {
				t.Errorf("levelFromEnv() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLevelString(t *testing.T) {
	tests := []struct {
		level Level
		want  string
	}{
		{LevelDebug, "debug"},
		{LevelInfo, "info"},
		{LevelWarn, "warn"},
		{LevelError, "error"},
		{Level(42), "unknown(42)"},
	}

	for _, tt := range tests {
		if got := tt.level.String(); got != tt.want {
			t.Errorf("Level(%d).String() = %q, want %q", tt.level, got, tt.want)
		}
	}
}
