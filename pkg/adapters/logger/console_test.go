package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/user/zonecam/pkg/ports"
)

func TestConsoleLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriter(ports.LevelWarn, &buf)

	log.Debug("debug %d", 1)
	log.Info("info %d", 2)
	log.Warn("warn %d", 3)
	log.Error("error %d", 4)

	out := buf.String()
	if strings.Contains(out, "debug 1") || strings.Contains(out, "info 2") {
		t.Errorf("messages below warn should be filtered, got %q", out)
	}
	if !strings.Contains(out, "warn 3") || !strings.Contains(out, "error 4") {
		t.Errorf("expected warn and error lines, got %q", out)
	}
}

func TestConsoleLogger_Component(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriter(ports.LevelDebug, &buf).WithComponent("zones")

	log.Info("zone %d initialised", 2)

	if got := strings.TrimSpace(buf.String()); got != "[zones] zone 2 initialised" {
		t.Errorf("unexpected line %q", got)
	}
}

func TestOr(t *testing.T) {
	if _, ok := Or(nil).(*NoopLogger); !ok {
		t.Error("expected NoopLogger for nil")
	}
	var buf bytes.Buffer
	l := NewWriter(ports.LevelInfo, &buf)
	if Or(l) != l {
		t.Error("expected the given logger back")
	}
}
