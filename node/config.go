// Package node wires the submission pipeline: decoder, validators, pool,
// state gateway and metrics, behind a single service facade.
package node

import (
	"fmt"
	"time"

	"github.com/c2h5oh/datasize"

	"github.com/ahwlsqja/eth-mempool/mempool"
)

// Config holds configuration for a mempool node.
type Config struct {
	// State gateway. An empty StateAddr runs against an in-memory ledger
	// seeded with DevChainID and DevBaseFee, for development and tests.
	StateAddr    string
	StateTimeout time.Duration
	DevChainID   uint64
	DevBaseFee   uint64

	// Submission limits
	MaxTxBytes      datasize.ByteSize // raw envelope size cap
	SenderCacheSize int               // recovered-sender cache entries

	// Pool limits
	Pool *mempool.Config

	// Prometheus metrics
	MetricsEnabled bool
	MetricsAddr    string

	// Logging
	LogLevel string
}

// DefaultConfig returns a default configuration.
func DefaultConfig() *Config {
	return &Config{
		StateAddr:       "",
		StateTimeout:    5 * time.Second,
		DevChainID:      1,
		DevBaseFee:      1_000_000_000, // 1 gwei
		MaxTxBytes:      256 * datasize.KB,
		SenderCacheSize: 4096,
		Pool:            mempool.DefaultConfig(),
		MetricsEnabled:  true,
		MetricsAddr:     "0.0.0.0:26660",
		LogLevel:        "info",
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.MaxTxBytes == 0 {
		return ErrZeroMaxTxBytes
	}
	if c.SenderCacheSize <= 0 {
		return ErrZeroSenderCache
	}
	if c.Pool == nil {
		return ErrNilPoolConfig
	}
	if err := c.Pool.Validate(); err != nil {
		return fmt.Errorf("pool config: %w", err)
	}
	if c.MetricsEnabled && c.MetricsAddr == "" {
		return ErrEmptyMetricsAddr
	}
	return nil
}

// Custom errors
type configError string

func (e configError) Error() string {
	return string(e)
}

const (
	ErrZeroMaxTxBytes   = configError("max tx bytes must be positive")
	ErrZeroSenderCache  = configError("sender cache size must be positive")
	ErrNilPoolConfig    = configError("pool configuration is required")
	ErrEmptyMetricsAddr = configError("metrics address is required when metrics are enabled")
)
