// Package config provides configuration and validation for the engine.
package config

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is returned when the engine is opened with thresholds
// outside their valid ranges.
var ErrInvalidConfig = errors.New("invalid configuration")

const (
	defaultMemtableLimit = 1024
	defaultMaxSegments   = 5
)

// Config holds the engine's tunable parameters. Both thresholds are
// fixed for the engine's lifetime.
type Config struct {
	// MemtableLimit is the memtable entry count that triggers a flush.
	// Zero is valid and means "flush after every insert".
	MemtableLimit int
	// MaxSegments is the segment count above which a full compaction
	// runs. Must be at least 1.
	MaxSegments int
}

// DefaultConfig returns a Config populated with default values.
func DefaultConfig() *Config {
	return &Config{
		MemtableLimit: defaultMemtableLimit,
		MaxSegments:   defaultMaxSegments,
	}
}

// FillDefaults sets MaxSegments to its default when unset. MemtableLimit
// is left alone because zero is a meaningful value for it.
func (c *Config) FillDefaults() {
	if c.MaxSegments == 0 {
		c.MaxSegments = defaultMaxSegments
	}
}

// Validate rejects out-of-range thresholds eagerly, before the engine
// accepts any writes.
func (c *Config) Validate() error {
	if c.MemtableLimit < 0 {
		return fmt.Errorf("%w: memtable limit must be >= 0, got %d", ErrInvalidConfig, c.MemtableLimit)
	}
	if c.MaxSegments < 1 {
		return fmt.Errorf("%w: max segments must be >= 1, got %d", ErrInvalidConfig, c.MaxSegments)
	}
	return nil
}
