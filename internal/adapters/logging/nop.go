package logging

import (
	"context"

	"github.com/felixgeelhaar/rig/internal/ports"
)

// NopLogger discards all log messages. Useful in tests.
type NopLogger struct{}

// NewNopLogger creates a new NopLogger.
func NewNopLogger() *NopLogger {
	return &NopLogger{}
}

// Debug discards the message.
func (l *NopLogger) Debug(_ context.Context, _ string, _ ...ports.Field) {}

// Info discards the message.
func (l *NopLogger) Info(_ context.Context, _ string, _ ...ports.Field) {}

// Warn discards the message.
func (l *NopLogger) Warn(_ context.Context, _ string, _ ...ports.Field) {}

// Error discards the message.
func (l *NopLogger) Error(_ context.Context, _ string, _ ...ports.Field) {}

// With returns the logger unchanged.
func (l *NopLogger) With(_ ...ports.Field) ports.Logger { return l }

// Ensure NopLogger implements Logger.
var _ ports.Logger = (*NopLogger)(nil)
