package latency

import (
	"encoding/json"
	"fmt"
	"os"
)

// TimingConfig holds latency values for different instruction classes and
// the data cache geometry.
type TimingConfig struct {
	// ALULatency is the execution latency for single-cycle operations
	// (MOV, ADD, SUB, logic, shifts, rotates, CMP). Default: 1 cycle.
	ALULatency uint64 `json:"alu_latency"`

	// MultiplyLatency is the latency for MUL. Default: 3 cycles.
	MultiplyLatency uint64 `json:"multiply_latency"`

	// BranchLatency is the base execution latency for jumps.
	// This does not include misprediction penalty. Default: 1 cycle.
	BranchLatency uint64 `json:"branch_latency"`

	// BranchMispredictPenalty is the additional cycles lost on branch misprediction.
	// Default: 2 cycles (fetch and decode are refilled).
	BranchMispredictPenalty uint64 `json:"branch_mispredict_penalty"`

	// LoadLatency is the latency for LOAD when no data cache is modelled.
	// Default: 2 cycles.
	LoadLatency uint64 `json:"load_latency"`

	// StoreLatency is the latency for STORE when no data cache is modelled.
	// Default: 1 cycle.
	StoreLatency uint64 `json:"store_latency"`

	// StackLatency is the latency for PUSH and POP. Default: 1 cycle.
	StackLatency uint64 `json:"stack_latency"`

	// BHTSize is the number of 2-bit counters in the branch predictor.
	// Must be a power of 2. Default: 64.
	BHTSize uint32 `json:"bht_size"`

	// DCache configures the data cache. A zero Size disables it.
	DCache CacheConfig `json:"dcache"`
}

// CacheConfig describes a set-associative cache.
type CacheConfig struct {
	Size          int    `json:"size"`
	Associativity int    `json:"associativity"`
	BlockSize     int    `json:"block_size"`
	HitLatency    uint64 `json:"hit_latency"`
	MissLatency   uint64 `json:"miss_latency"`
}

// DefaultTimingConfig returns a TimingConfig for a simple in-order core.
func DefaultTimingConfig() *TimingConfig {
	return &TimingConfig{
		ALULatency:              1,
		MultiplyLatency:         3,
		BranchLatency:           1,
		BranchMispredictPenalty: 2,
		LoadLatency:             2,
		StoreLatency:            1,
		StackLatency:            1,
		BHTSize:                 64,
		DCache: CacheConfig{
			Size:          64,
			Associativity: 2,
			BlockSize:     8,
			HitLatency:    1,
			MissLatency:   10,
		},
	}
}

// LoadConfig loads a TimingConfig from a JSON file. Fields missing from the
// file keep their default values.
func LoadConfig(path string) (*TimingConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read timing config file: %w", err)
	}

	config := DefaultTimingConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse timing config: %w", err)
	}

	return config, nil
}

// SaveConfig writes a TimingConfig to a JSON file.
func (c *TimingConfig) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize timing config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write timing config file: %w", err)
	}

	return nil
}

// Validate checks that all latency values are valid (> 0) and that the
// cache geometry divides evenly.
func (c *TimingConfig) Validate() error {
	if c.ALULatency == 0 {
		return fmt.Errorf("alu_latency must be > 0")
	}
	if c.MultiplyLatency == 0 {
		return fmt.Errorf("multiply_latency must be > 0")
	}
	if c.BranchLatency == 0 {
		return fmt.Errorf("branch_latency must be > 0")
	}
	if c.LoadLatency == 0 {
		return fmt.Errorf("load_latency must be > 0")
	}
	if c.StoreLatency == 0 {
		return fmt.Errorf("store_latency must be > 0")
	}
	if c.StackLatency == 0 {
		return fmt.Errorf("stack_latency must be > 0")
	}
	if c.BHTSize == 0 || c.BHTSize&(c.BHTSize-1) != 0 {
		return fmt.Errorf("bht_size must be a power of 2")
	}
	return c.DCache.Validate()
}

// Enabled reports whether the cache should be modelled.
func (c CacheConfig) Enabled() bool {
	return c.Size > 0
}

// Validate checks the cache geometry. A disabled cache is always valid.
func (c CacheConfig) Validate() error {
	if !c.Enabled() {
		return nil
	}
	if c.Associativity <= 0 || c.BlockSize <= 0 {
		return fmt.Errorf("dcache associativity and block_size must be > 0")
	}
	if c.Size%(c.Associativity*c.BlockSize) != 0 {
		return fmt.Errorf("dcache size must be a multiple of associativity * block_size")
	}
	if c.HitLatency == 0 || c.MissLatency < c.HitLatency {
		return fmt.Errorf("dcache hit_latency must be > 0 and <= miss_latency")
	}
	return nil
}

// Clone returns a deep copy of the TimingConfig.
func (c *TimingConfig) Clone() *TimingConfig {
	clone := *c
	return &clone
}
