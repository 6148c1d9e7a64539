package log

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestNewJSONLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, zerolog.InfoLevel)

	logger.Debug("hidden")
	logger.Info("client started", String("session", "abc"), Int("steps", 3), Err(errors.New("boom")))

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug line written at info level: %s", out)
	}
	for _, want := range []string{`"message":"client started"`, `"session":"abc"`, `"steps":3`, `"error":"boom"`} {
		if !strings.Contains(out, want) {
			t.Errorf("output %s missing %s", out, want)
		}
	}
}

func TestNewNoopLogger(t *testing.T) {
	logger := NewNoopLogger()
	logger.Error("ignored", Bool("flag", true))
}
