package logger

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestZerologLoggerMethods(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	l := NewZerologLogger("test")
	if l == nil {
		t.Fatalf("nil logger")
	}
	l.Debugf("debug %d", 1)
	l.Debugw("debug", map[string]any{"k": 1})
	l.Infof("info %s", "test")
	l.Warnf("warn")
	l.Errorf("error")
}

func TestLevelFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	if got := levelFromEnv(); got != zerolog.DebugLevel {
		t.Errorf("level = %v, want debug", got)
	}
	t.Setenv("LOG_LEVEL", "nonsense")
	if got := levelFromEnv(); got != zerolog.InfoLevel {
		t.Errorf("level = %v, want info fallback", got)
	}
	t.Setenv("LOG_LEVEL", "")
	if got := levelFromEnv(); got != zerolog.InfoLevel {
		t.Errorf("level = %v, want info default", got)
	}
}

func TestNew(t *testing.T) {
	assert.NotNil(t, New("component"))
}

func TestNopLogger(t *testing.T) {
	var l Logger = NopLogger{}
	l.Debugf("d")
	l.Debugw("d", nil)
	l.Infof("i")
	l.Warnf("w")
	l.Errorf("e")
}
