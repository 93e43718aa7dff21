// Package logger provides structured logging functionality.
// It wraps the standard log/slog package for consistent logging across the dashboard.
//
// This package provides context helpers for consistent request and render logging,
// including helpers for render start/end and dataset load logging. All helpers use
// structured logging with consistent field names (snake_case).
//
// The package supports two output formats:
//   - JSON (default): Machine-readable structured logging
//   - Human: Human-readable console output with timestamp and level prefixes
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// Logger is the default logger instance.
var Logger *slog.Logger

func init() {
	// Initialize with JSON handler for structured logging
	Logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

// SetLevel configures the logging level.
func SetLevel(level slog.Level) {
	Logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
}

// Info logs an informational message.
func Info(msg string, args ...any) {
	Logger.Info(msg, args...)
}

// Debug logs a debug message.
func Debug(msg string, args ...any) {
	Logger.Debug(msg, args...)
}

// Warn logs a warning message.
func Warn(msg string, args ...any) {
	Logger.Warn(msg, args...)
}

// Error logs an error message.
func Error(msg string, args ...any) {
	Logger.Error(msg, args...)
}

// WithRequest returns a logger with HTTP request context.
func WithRequest(requestID, method, path string) *slog.Logger {
	return Logger.With("request_id", requestID, "method", method, "path", path)
}

// WithDataset returns a logger with dataset context.
func WithDataset(path string) *slog.Logger {
	return Logger.With("dataset_path", path)
}

// RenderContext contains context information for render logging.
// Use this struct with LogRenderStart and LogRenderEnd.
type RenderContext struct {
	// RequestID is the identifier of the triggering request (empty for CLI renders)
	RequestID string
	// Country is the selected country filter (empty means unconstrained)
	Country string
	// AchievementType is the selected achievement type filter (empty means unconstrained)
	AchievementType string
	// Where is the optional expression predicate source
	Where string
}

// LogRenderStart logs the start of a render invocation.
func LogRenderStart(ctx RenderContext) {
	Logger.Debug("render started", renderAttrs(ctx)...)
}

// LogRenderEnd logs the completion of a render invocation with the emitted row
// count and duration. Sentinel results report zero matched rows.
func LogRenderEnd(ctx RenderContext, rows int, sentinel bool, duration time.Duration) {
	attrs := renderAttrs(ctx)
	attrs = append(attrs,
		slog.Int("rows", rows),
		slog.Bool("sentinel", sentinel),
		slog.Duration("duration", duration),
	)
	Logger.Info("render completed", attrs...)
}

// renderAttrs builds slog attributes from a RenderContext.
// Only non-empty fields are included.
func renderAttrs(ctx RenderContext) []any {
	attrs := make([]any, 0, 4)
	if ctx.RequestID != "" {
		attrs = append(attrs, slog.String("request_id", ctx.RequestID))
	}
	if ctx.Country != "" {
		attrs = append(attrs, slog.String("country", ctx.Country))
	}
	if ctx.AchievementType != "" {
		attrs = append(attrs, slog.String("achievement_type", ctx.AchievementType))
	}
	if ctx.Where != "" {
		attrs = append(attrs, slog.String("where", ctx.Where))
	}
	return attrs
}

// OutputFormat represents the log output format
type OutputFormat int

const (
	// FormatJSON is the default machine-readable JSON format
	FormatJSON OutputFormat = iota
	// FormatHuman is a human-readable console format with level prefixes
	FormatHuman
)

// SetLevelAndFormat sets both the log level and format.
func SetLevelAndFormat(level slog.Level, format OutputFormat) {
	switch format {
	case FormatHuman:
		Logger = slog.New(NewHumanHandler(os.Stdout, level))
	default:
		Logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		}))
	}
}

// HumanHandler is a slog handler that outputs compact human-readable log lines:
//
//	15:04:05 INFO  render completed country=US rows=42
type HumanHandler struct {
	level  slog.Level
	writer io.Writer
	attrs  []slog.Attr
}

// NewHumanHandler creates a new human-readable log handler.
func NewHumanHandler(w io.Writer, level slog.Level) *HumanHandler {
	return &HumanHandler{level: level, writer: w}
}

// Enabled returns true if the handler is enabled for the given level.
func (h *HumanHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

// Handle outputs a log record in human-readable format.
func (h *HumanHandler) Handle(_ context.Context, r slog.Record) error {
	var sb strings.Builder

	sb.WriteString(r.Time.Format("15:04:05"))
	sb.WriteString(" ")
	sb.WriteString(fmt.Sprintf("%-5s", r.Level.String()))
	sb.WriteString(" ")
	sb.WriteString(r.Message)

	for _, a := range h.attrs {
		sb.WriteString(" ")
		sb.WriteString(formatAttr(a))
	}
	r.Attrs(func(a slog.Attr) bool {
		sb.WriteString(" ")
		sb.WriteString(formatAttr(a))
		return true
	})

	sb.WriteString("\n")
	_, err := h.writer.Write([]byte(sb.String()))
	return err
}

// WithAttrs returns a new handler with the given attributes added.
func (h *HumanHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &HumanHandler{level: h.level, writer: h.writer, attrs: merged}
}

// WithGroup returns the handler unchanged; groups are flattened in human output.
func (h *HumanHandler) WithGroup(_ string) slog.Handler {
	return h
}

func formatAttr(a slog.Attr) string {
	return fmt.Sprintf("%s=%v", a.Key, a.Value.Any())
}
