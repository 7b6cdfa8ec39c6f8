// Package logging builds the structured logger used for non-fatal,
// operational messages — schema-load warnings, cache staleness, and CLI
// diagnostics that do not themselves abort compilation (spec.md §4.A's
// load failure semantics; spec.md §7's distinction between a diagnosable
// user error and an operational warning). Compile errors always go through
// internal/diag, never through this logger.
package logging

import "go.uber.org/zap"

// New builds a zap logger for CLI use: a development config gated to warn
// level unless verbose is set, grounded on codenerd's own
// PersistentPreRunE logger setup (cmd/nerd/main.go in the pack: a
// zap.Config built per-invocation, with --verbose lowering the level).
// The teacher itself has no zap dependency and logs CLI output with plain
// fmt.Fprintf/Fprintln on cobra's own streams.
func New(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.DisableStacktrace = true
	if !verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	return cfg.Build()
}

// Nop returns a logger that discards everything, for callers (tests,
// library embedders) that don't want schema-load warnings on stderr.
func Nop() *zap.Logger { return zap.NewNop() }
