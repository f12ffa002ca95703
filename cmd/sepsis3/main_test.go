package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/halfer53/sepsis3-mimic/internal/config"
)

func TestNewLogger_FormatFollowsConfig(t *testing.T) {
	var buf bytes.Buffer

	prod := newLogger(&config.Config{Env: "production"}, &buf)
	prod.Info().Msg("ready")
	if !strings.Contains(buf.String(), `"message":"ready"`) {
		t.Errorf("expected JSON output in production, got %s", buf.String())
	}

	buf.Reset()
	dev := newLogger(&config.Config{Env: "development"}, &buf)
	dev.Info().Msg("ready")
	if strings.Contains(buf.String(), `"message"`) {
		t.Errorf("expected console output in development, got %s", buf.String())
	}
}
