package scratchlog

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, LevelWarn, "test")
	l.Info("should not appear")
	l.Warn("should appear")
	out := buf.String()
	if strings.Contains(out, "should not appear") {
		t.Fatal("expected Info to be filtered out below LevelWarn")
	}
	if !strings.Contains(out, "should appear") {
		t.Fatal("expected Warn line to be logged")
	}
}

func TestWithScopesPrefix(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, LevelDebug, "scratchrt")
	sub := l.With("scratchrt/SpriteA")
	sub.Debug("hello")
	if !strings.Contains(buf.String(), "scratchrt/SpriteA") {
		t.Fatalf("expected scoped prefix in output, got %q", buf.String())
	}
}

func TestTimestampIsFormatted(t *testing.T) {
	orig := nowFn
	defer func() { nowFn = orig }()
	nowFn = func() time.Time { return time.Date(2026, 7, 31, 12, 0, 0, 0, time.UTC) }

	var buf bytes.Buffer
	l := New(&buf, LevelInfo, "")
	l.Info("tick")
	if !strings.Contains(buf.String(), "2026-07-31 12:00:00") {
		t.Fatalf("expected formatted timestamp, got %q", buf.String())
	}
}


