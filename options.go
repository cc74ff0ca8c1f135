package a109

import "log/slog"

type encodeConfig struct {
	logger *slog.Logger
}

type EncodeOption func(*encodeConfig)

// WithLogger sets the logger truncation warnings are reported to. Warnings
// are collected in FileSet.Warnings either way.
func WithLogger(l *slog.Logger) EncodeOption {
	return func(c *encodeConfig) { c.logger = l }
}

type decodeConfig struct {
	logger *slog.Logger
}

type DecodeOption func(*decodeConfig)

// WithDecodeLogger sets the logger skipped records and dropped route
// points are reported to.
func WithDecodeLogger(l *slog.Logger) DecodeOption {
	return func(c *decodeConfig) { c.logger = l }
}

type bundleConfig struct {
	limits Limits
}

type BundleOption func(*bundleConfig)

func WithBundleLimits(l Limits) BundleOption {
	return func(c *bundleConfig) { c.limits = l }
}

func orDiscard(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.New(slog.DiscardHandler)
	}
	return l
}
