// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"runtime"
	"time"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/ava-labs/avalanchego/utils/profiler"

	"github.com/ava-labs/vaultvm/pebble"
)

const (
	PebbleDatabase = "pebble"
	MemoryDatabase = "memdb"
)

const (
	defaultHTTPAddress                 = "127.0.0.1:9650"
	defaultDataDir                     = ".vaultvm"
	defaultBuildInterval               = 250 * time.Millisecond
	defaultMaxBatchSize                = 512
	defaultMempoolSize                 = 4_096
	defaultMempoolSponsorSize          = 32
	defaultLogMaxSize                  = 8 // MB
	defaultLogMaxFiles                 = 5
	defaultLogMaxAge                   = 7 // days
	defaultContinuousProfilerFrequency = 1 * time.Minute
	defaultContinuousProfilerMaxFiles  = 10
)

var (
	ErrInvalidDatabase  = errors.New("invalid database")
	ErrInvalidBatchSize = errors.New("invalid batch size")
	ErrInvalidInterval  = errors.New("invalid build interval")
)

type Config struct {
	// Chain
	ChainID     ids.ID `json:"chainID"`
	GenesisPath string `json:"genesisPath"`

	// Storage
	DataDir  string        `json:"dataDir"`
	Database string        `json:"database"`
	Pebble   pebble.Config `json:"pebble"`

	// Builder
	BuildInterval time.Duration `json:"buildInterval"`
	MaxBatchSize  int           `json:"maxBatchSize"`
	MempoolSize   int           `json:"mempoolSize"`
	// MempoolSponsorSize caps the pending transactions of one signer.
	MempoolSponsorSize int `json:"mempoolSponsorSize"`
	ExecutionCores     int `json:"executionCores"`

	// API
	HTTPAddress    string   `json:"httpAddress"`
	AllowedOrigins []string `json:"allowedOrigins"`

	// Faucet
	FaucetEnabled     bool   `json:"faucetEnabled"`
	FaucetAmount      uint64 `json:"faucetAmount"`
	FaucetTokenAmount uint64 `json:"faucetTokenAmount"`

	// Logging
	LogLevel        logging.Level `json:"logLevel"`
	LogDisplayLevel logging.Level `json:"logDisplayLevel"`
	LogDir          string        `json:"logDir"`
	LogMaxSize      int           `json:"logMaxSize"`
	LogMaxFiles     int           `json:"logMaxFiles"`
	LogMaxAge       int           `json:"logMaxAge"`
	LogCompress     bool          `json:"logCompress"`

	// Profiling
	ContinuousProfilerDir string `json:"continuousProfilerDir"`
}

// New decodes [b] over the defaults. An empty [b] yields the defaults.
func New(b []byte) (*Config, error) {
	c := &Config{}
	c.setDefault()
	if len(b) > 0 {
		if err := json.Unmarshal(b, c); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config %s: %w", string(b), err)
		}
	}
	return c, c.Verify()
}

func (c *Config) setDefault() {
	c.DataDir = defaultDataDir
	c.Database = PebbleDatabase
	c.Pebble = pebble.NewDefaultConfig()
	c.BuildInterval = defaultBuildInterval
	c.MaxBatchSize = defaultMaxBatchSize
	c.MempoolSize = defaultMempoolSize
	c.MempoolSponsorSize = defaultMempoolSponsorSize
	c.ExecutionCores = runtime.NumCPU()
	c.HTTPAddress = defaultHTTPAddress
	c.AllowedOrigins = []string{"*"}
	c.LogLevel = logging.Info
	c.LogDisplayLevel = logging.Info
	c.LogMaxSize = defaultLogMaxSize
	c.LogMaxFiles = defaultLogMaxFiles
	c.LogMaxAge = defaultLogMaxAge
}

func (c *Config) Verify() error {
	switch c.Database {
	case PebbleDatabase, MemoryDatabase:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidDatabase, c.Database)
	}
	if c.MaxBatchSize <= 0 || c.MempoolSize < c.MaxBatchSize {
		return fmt.Errorf("%w: batch=%d mempool=%d", ErrInvalidBatchSize, c.MaxBatchSize, c.MempoolSize)
	}
	if c.MempoolSponsorSize <= 0 {
		return fmt.Errorf("%w: sponsor=%d", ErrInvalidBatchSize, c.MempoolSponsorSize)
	}
	if c.BuildInterval <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidInterval, c.BuildInterval)
	}
	if c.ExecutionCores <= 0 {
		c.ExecutionCores = 1
	}
	return nil
}

func (c *Config) GetLogDir() string {
	if len(c.LogDir) > 0 {
		return c.LogDir
	}
	return path.Join(c.DataDir, "logs")
}

func (c *Config) GetContinuousProfilerConfig() *profiler.Config {
	if len(c.ContinuousProfilerDir) == 0 {
		return &profiler.Config{Enabled: false}
	}
	return &profiler.Config{
		Enabled:     true,
		Dir:         c.ContinuousProfilerDir,
		Freq:        defaultContinuousProfilerFrequency,
		MaxNumFiles: defaultContinuousProfilerMaxFiles,
	}
}
