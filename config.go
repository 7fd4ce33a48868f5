package raptorq

import (
	"fmt"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"
)

// MaxESI is the largest encoding symbol id the 24-bit payload id can carry.
const MaxESI = 1<<24 - 1

type Config struct {
	// MaxRepairPerBlock bounds the repair symbols Encode may queue per block.
	MaxRepairPerBlock uint32 `yaml:"max_repair_per_block"`
	// Parallelism is a number of blocks processed concurrently, 0 means GOMAXPROCS.
	Parallelism int `yaml:"parallelism"`
	// RankTrackingLimit is the largest L of a block for which the decoder
	// tracks the rank of received rows, bigger blocks attempt to solve as
	// soon as K symbols are known.
	RankTrackingLimit uint32 `yaml:"rank_tracking_limit"`
	// MatrixCacheBytes bounds memory of constraint matrices kept by the process.
	MatrixCacheBytes int64 `yaml:"matrix_cache_bytes"`
}

var DefaultConfig = Config{
	MaxRepairPerBlock: 1 << 16,
	Parallelism:       0,
	RankTrackingLimit: 4096,
	MatrixCacheBytes:  64 << 20,
}

func (c Config) Validate() error {
	if c.MaxRepairPerBlock > MaxESI {
		return fmt.Errorf("%w: max repair per block %d is more than %d", ErrInvalidParameters, c.MaxRepairPerBlock, MaxESI)
	}
	if c.Parallelism < 0 {
		return fmt.Errorf("%w: negative parallelism", ErrInvalidParameters)
	}
	if c.MatrixCacheBytes <= 0 {
		return fmt.Errorf("%w: matrix cache limit should be positive", ErrInvalidParameters)
	}
	return nil
}

func (c Config) workers() int {
	if c.Parallelism > 0 {
		return c.Parallelism
	}
	return runtime.GOMAXPROCS(0)
}

// ParseConfig decodes yaml over DefaultConfig, absent keys keep default values.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}
	return ParseConfig(data)
}

func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
