// Package common holds shared service plumbing: logger setup with secret
// redaction and build version information.
package common

import (
	"log/slog"
	"os"
	"regexp"
)

// LoggingOpts configures the service logger.
type LoggingOpts struct {
	// Debug enables debug-level logging.
	Debug bool

	// JSON switches the handler to JSON output.
	JSON bool

	// Service is added as a "service" tag to all log lines.
	Service string

	// Version is added as a "version" tag to all log lines.
	Version string
}

var (
	// A bare 64-hex string is treated as key material and never logged.
	// Attestation UIDs are 0x-prefixed and unaffected.
	privateKeyPattern = regexp.MustCompile(`^[0-9a-fA-F]{64}$`)

	addressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)
)

// SetupLogger creates a structured logger for the service. String attributes
// that look like private keys are redacted and addresses are shortened to
// their first-6/last-4 display form before they reach the handler.
func SetupLogger(opts *LoggingOpts) (log *slog.Logger) {
	logLevel := slog.LevelInfo
	if opts.Debug {
		logLevel = slog.LevelDebug
	}

	handlerOpts := &slog.HandlerOptions{
		Level:       logLevel,
		ReplaceAttr: redactAttr,
	}

	if opts.JSON {
		log = slog.New(slog.NewJSONHandler(os.Stderr, handlerOpts))
	} else {
		log = slog.New(slog.NewTextHandler(os.Stderr, handlerOpts))
	}

	if opts.Service != "" {
		log = log.With("service", opts.Service)
	}
	if opts.Version != "" {
		log = log.With("version", opts.Version)
	}
	return log
}

// redactAttr rewrites sensitive string attribute values.
func redactAttr(groups []string, a slog.Attr) slog.Attr {
	if a.Value.Kind() != slog.KindString {
		return a
	}

	s := a.Value.String()
	switch {
	case privateKeyPattern.MatchString(s):
		a.Value = slog.StringValue("[redacted]")
	case addressPattern.MatchString(s):
		a.Value = slog.StringValue(s[:6] + "..." + s[len(s)-4:])
	}
	return a
}
