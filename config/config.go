// Package config holds the compile-time constants of the skip-list index,
// expressed as a validated runtime struct rather than literal #define-style
// constants, so a caller embedding the index can tune them per instance
// (e.g. a smaller MaxLevel for a test fixture) without a recompile.
package config

import (
	"fmt"

	"github.com/larkdb/skiplistindex/xlog"
)

const (
	// DefaultInitialHeight is the number of levels materialized when a
	// List is constructed.
	DefaultInitialHeight = 10
	// DefaultMaxLevel is the hard cap on tower height.
	DefaultMaxLevel = 2000
	// DefaultMaxInsertRetries bounds per-level CAS retries during insert.
	DefaultMaxInsertRetries = 100
	// DefaultArrSize is the number of keys carried per node slot array.
	// The implementation only supports the single-key-per-node shape; this
	// constant documents the spec's stated extension point.
	DefaultArrSize = 1
	// DefaultAssumedCacheLineSize is the padding hint for node layout.
	DefaultAssumedCacheLineSize = 64
	// MinLevel is the lowest valid level index (the bottom, key->value level).
	MinLevel = 0
)

// Config carries the tunables spec.md §6 lists as compile-time options.
type Config struct {
	// InitialHeight is the number of levels (0..InitialHeight-1) built when
	// the list is constructed.
	InitialHeight int
	// MaxLevel caps sampled tower heights and AddLevel growth.
	MaxLevel int
	// MaxInsertRetries bounds the per-level CAS retry loop during insert
	// and the per-level unlink retry loop during delete.
	MaxInsertRetries int
	// ArrSize is the number of keys per node slot array; only 1 is
	// implemented.
	ArrSize int
	// AssumedCacheLineSize pads node[K] so two adjacent nodes' hot fields
	// don't share a cache line.
	AssumedCacheLineSize int
	// UniqueKeys rejects inserts of an already-present key instead of
	// chaining duplicates.
	UniqueKeys bool
	// Logger receives retry/truncation/fatal diagnostics. Defaults to
	// xlog.Discard via Default().
	Logger xlog.Logger
}

// Default returns spec.md's default configuration: initial height 10, max
// level 2000, 100 insert retries per level, single-key nodes, 64-byte
// assumed cache line, non-unique keys, logging discarded.
func Default() Config {
	return Config{
		InitialHeight:        DefaultInitialHeight,
		MaxLevel:             DefaultMaxLevel,
		MaxInsertRetries:     DefaultMaxInsertRetries,
		ArrSize:              DefaultArrSize,
		AssumedCacheLineSize: DefaultAssumedCacheLineSize,
		UniqueKeys:           false,
		Logger:               xlog.Discard,
	}
}

// Validate rejects out-of-range configuration. It does not mutate c.
func (c Config) Validate() error {
	if c.InitialHeight < 1 {
		return fmt.Errorf("config: InitialHeight must be >= 1, got %d", c.InitialHeight)
	}
	if c.MaxLevel < c.InitialHeight {
		return fmt.Errorf("config: MaxLevel (%d) must be >= InitialHeight (%d)", c.MaxLevel, c.InitialHeight)
	}
	if c.MaxLevel > 1<<20 {
		return fmt.Errorf("config: MaxLevel (%d) is unreasonably large", c.MaxLevel)
	}
	if c.MaxInsertRetries < 1 {
		return fmt.Errorf("config: MaxInsertRetries must be >= 1, got %d", c.MaxInsertRetries)
	}
	if c.ArrSize != 1 {
		return fmt.Errorf("config: ArrSize %d unsupported, only 1 is implemented", c.ArrSize)
	}
	if c.AssumedCacheLineSize < 8 {
		return fmt.Errorf("config: AssumedCacheLineSize must be >= 8, got %d", c.AssumedCacheLineSize)
	}
	return nil
}

// WithLogger returns a copy of c with Logger set; a nil/typed-nil logger is
// replaced by xlog.OrDefault's WARN-level stderr logger.
func (c Config) WithLogger(l xlog.Logger) Config {
	c.Logger = xlog.OrDefault(l)
	return c
}

// logger returns c.Logger, defaulting to Discard if unset.
func (c Config) logger() xlog.Logger {
	if xlog.IsNil(c.Logger) {
		return xlog.Discard
	}
	return c.Logger
}

// Log returns the configured logger, never nil.
func (c Config) Log() xlog.Logger {
	return c.logger()
}
