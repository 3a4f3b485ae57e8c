package logger

import (
	"bytes"
	"log"
	"strings"
	"testing"
)

func newTestLogger(buf *bytes.Buffer, level Level) *standardLogger {
	return &standardLogger{logger: log.New(buf, "", 0), level: level}
}

func TestWithPhase_TagsMessages(t *testing.T) {
	var buf bytes.Buffer
	base := newTestLogger(&buf, InfoLevel)
	base.WithPhase("verify").Info("cohort narrowed to %d", 20)

	got := buf.String()
	if !strings.Contains(got, "[verify]") {
		t.Errorf("expected phase tag in output, got %q", got)
	}
	if !strings.Contains(got, "cohort narrowed to 20") {
		t.Errorf("expected message in output, got %q", got)
	}
}

func TestWithPhase_UntaggedLoggerOmitsBrackets(t *testing.T) {
	var buf bytes.Buffer
	base := newTestLogger(&buf, InfoLevel)
	base.Info("hello")

	if strings.Count(buf.String(), "[") != 1 {
		t.Errorf("expected only the level tag, got %q", buf.String())
	}
}

func TestWithPhase_InheritsLevel(t *testing.T) {
	var buf bytes.Buffer
	base := newTestLogger(&buf, WarnLevel)
	phased := base.WithPhase("gap_fill")
	phased.Info("should be suppressed")
	if buf.Len() != 0 {
		t.Errorf("expected Info suppressed at WarnLevel, got %q", buf.String())
	}
	phased.Warn("should appear")
	if buf.Len() == 0 {
		t.Error("expected Warn to be logged")
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]Level{
		"debug":   DebugLevel,
		"info":    InfoLevel,
		"warn":    WarnLevel,
		"warning": WarnLevel,
		"error":   ErrorLevel,
		"fatal":   FatalLevel,
		"bogus":   InfoLevel,
	}
	for in, want := range tests {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
