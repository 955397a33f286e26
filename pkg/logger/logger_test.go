package logger

import (
	"context"
	"testing"

	"github.com/go-logr/logr"
)

const testLogLevel int8 = 0 // zapcore.InfoLevel

func TestGetReturnsStableInstance(t *testing.T) {
	logger1 := Get(testLogLevel)
	if logger1 == nil {
		t.Fatal("Get should return a non-nil logger")
	}
	logger2 := Get(testLogLevel)
	if logger1 != logger2 {
		t.Error("Get should return the same logger instance on subsequent calls")
	}
}

func TestWithLoggerRoundTrip(t *testing.T) {
	logger := Get(testLogLevel)
	ctx := WithLogger(context.Background(), logger)

	if got := FromContext(ctx); got != logger {
		t.Error("FromContext should return the logger stored by WithLogger")
	}
	if again := WithLogger(ctx, logger); again != ctx {
		t.Error("WithLogger should return the same context when the logger is already set")
	}
}

func TestWithLoggerReplacesDifferentLogger(t *testing.T) {
	logger1 := Get(testLogLevel)
	logger2 := logr.Discard()
	ctx := WithLogger(context.Background(), logger1)

	ctx = WithLogger(ctx, &logger2)
	if got := FromContext(ctx); got != &logger2 {
		t.Error("WithLogger should replace a different logger in context")
	}
}

func TestFromContextFallbacks(t *testing.T) {
	globalLogger := Get(testLogLevel)
	if got := FromContext(context.Background()); got != globalLogger {
		t.Error("FromContext should fall back to the global logger")
	}

	orig := globalLogrLogger
	globalLogrLogger = nil
	defer func() { globalLogrLogger = orig }()

	if got := FromContext(context.Background()); got != &defaultNoopLogger {
		t.Error("FromContext should fall back to the noop logger when nothing is configured")
	}
}

func TestSyncWithoutBackendDoesNotPanic(t *testing.T) {
	orig := globalZapLogger
	globalZapLogger = nil
	defer func() { globalZapLogger = orig }()

	defer func() {
		if r := recover(); r != nil {
			t.Errorf("Sync should not panic when no backend is configured, got: %v", r)
		}
	}()
	Sync()
}

func TestGetGlobalLoggerFallsBackToNoop(t *testing.T) {
	orig := globalLogrLogger
	globalLogrLogger = nil
	defer func() { globalLogrLogger = orig }()

	if got := GetGlobalLogger(); got != &defaultNoopLogger {
		t.Error("GetGlobalLogger should return the noop logger when unset")
	}
}

func TestGetNoopLoggerDiscards(t *testing.T) {
	logger := GetNoopLogger()
	if logger != &defaultNoopLogger {
		t.Fatal("GetNoopLogger should return the shared noop logger")
	}
	logger.Info("discarded")
}

func TestWithValuesReturnsNewLogger(t *testing.T) {
	logger := Get(testLogLevel)
	augmented := WithValues(logger, "table", "receipts")
	if augmented == nil {
		t.Fatal("WithValues should return a non-nil logger")
	}
	if augmented == logger {
		t.Error("WithValues should not return the original logger")
	}
}
