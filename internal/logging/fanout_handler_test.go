package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestNewFanoutHandlerNilHandlers(t *testing.T) {
	h := newFanoutHandler(nil, nil, nil)
	if _, ok := h.(NoopHandler); !ok {
		t.Errorf("expected NoopHandler for all nil handlers, got %T", h)
	}
}

func TestNewFanoutHandlerSingleHandler(t *testing.T) {
	var buf bytes.Buffer
	inner := slog.NewJSONHandler(&buf, nil)

	if h := newFanoutHandler(nil, inner, nil); h != inner {
		t.Error("expected single non-nil handler to be returned unwrapped")
	}
}

func TestFanoutHandlerEnabled(t *testing.T) {
	var buf1, buf2 bytes.Buffer
	h1 := slog.NewJSONHandler(&buf1, &slog.HandlerOptions{Level: slog.LevelWarn})
	h2 := slog.NewJSONHandler(&buf2, &slog.HandlerOptions{Level: slog.LevelDebug})

	h := newFanoutHandler(h1, h2)
	if !h.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("expected fanout to be enabled for debug")
	}

	h = newFanoutHandler(h1, slog.NewJSONHandler(&buf2, &slog.HandlerOptions{Level: slog.LevelError}))
	if h.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("expected fanout to be disabled for info")
	}
}

func TestFanoutHandlerRespectsPerHandlerLevel(t *testing.T) {
	var warnBuf, debugBuf bytes.Buffer
	h1 := slog.NewJSONHandler(&warnBuf, &slog.HandlerOptions{Level: slog.LevelWarn})
	h2 := slog.NewJSONHandler(&debugBuf, &slog.HandlerOptions{Level: slog.LevelDebug})

	logger := slog.New(newFanoutHandler(h1, h2))
	logger.Info("info only")

	if warnBuf.Len() != 0 {
		t.Errorf("warn handler should skip info: %q", warnBuf.String())
	}
	if !strings.Contains(debugBuf.String(), "info only") {
		t.Errorf("debug handler missing record: %q", debugBuf.String())
	}
}

func TestTeeLoggerPropagatesAttrs(t *testing.T) {
	var base, extra bytes.Buffer
	baseLogger := slog.New(slog.NewJSONHandler(&base, nil))
	tee := TeeLogger(baseLogger, slog.NewJSONHandler(&extra, nil)).With("run_id", "abc")
	tee.Info("hello")

	for name, buf := range map[string]*bytes.Buffer{"base": &base, "extra": &extra} {
		if !strings.Contains(buf.String(), `"run_id":"abc"`) {
			t.Errorf("%s missing attr: %q", name, buf.String())
		}
	}
}
