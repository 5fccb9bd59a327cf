// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package config holds the emulator configuration, stored as JSON.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/xyproto/env/v2"

	"github.com/ezrec/mipsim/cpu"
)

// Config describes the machine to emulate.
type Config struct {
	// ICacheCapacity is the number of instruction cache entries.
	// Default: 12.
	ICacheCapacity int `json:"icache_capacity"`

	// DCacheCapacity is the number of data cache entries.
	// Default: 12.
	DCacheCapacity int `json:"dcache_capacity"`

	// MemorySize is the size of memory in bytes. Default: 4096.
	MemorySize int `json:"memory_size"`

	// DataStart and DataLimit bound the .data image. Default: 0x000 to 0x0fc.
	DataStart uint32 `json:"data_start"`
	DataLimit uint32 `json:"data_limit"`

	// TextStart is the address of the first instruction. Default: 0x100.
	TextStart uint32 `json:"text_start"`

	// Mode is "reference" or "canonical". Default: "reference".
	Mode string `json:"mode"`

	// HardZero discards writes to $zero. Default: false.
	HardZero bool `json:"hard_zero"`

	// MaxTicks stops a run after this many instructions; zero is unlimited.
	MaxTicks int `json:"max_ticks"`

	Verbose bool `json:"verbose"`
}

// Default returns the reference machine configuration.
func Default() *Config {
	return &Config{
		ICacheCapacity: cpu.CACHE_CAPACITY,
		DCacheCapacity: cpu.CACHE_CAPACITY,
		MemorySize:     cpu.MEMORY_SIZE,
		DataStart:      cpu.DATA_START,
		DataLimit:      cpu.DATA_LIMIT,
		TextStart:      cpu.TEXT_START,
		Mode:           cpu.MODE_REFERENCE.String(),
	}
}

// Load reads a configuration file. Fields missing from the file keep
// their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// Save writes the configuration to a file.
func (c *Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// FromEnv applies MIPSIM_* environment variable overrides.
func (c *Config) FromEnv() {
	c.Mode = env.Str("MIPSIM_MODE", c.Mode)
	c.ICacheCapacity = env.Int("MIPSIM_ICACHE", c.ICacheCapacity)
	c.DCacheCapacity = env.Int("MIPSIM_DCACHE", c.DCacheCapacity)
	c.MaxTicks = env.Int("MIPSIM_MAX_TICKS", c.MaxTicks)
	if env.Has("MIPSIM_HARD_ZERO") {
		c.HardZero = env.Bool("MIPSIM_HARD_ZERO")
	}
	if env.Has("MIPSIM_VERBOSE") {
		c.Verbose = env.Bool("MIPSIM_VERBOSE")
	}
}

// Validate checks that the configuration describes a usable machine,
// reporting every problem found.
func (c *Config) Validate() error {
	var errs []error

	if _, err := cpu.ParseMode(c.Mode); err != nil {
		errs = append(errs, err)
	}
	if c.ICacheCapacity < 0 {
		errs = append(errs, fmt.Errorf("icache_capacity must be >= 0"))
	}
	if c.DCacheCapacity < 0 {
		errs = append(errs, fmt.Errorf("dcache_capacity must be >= 0"))
	}
	if c.MemorySize <= 0 || c.MemorySize%cpu.WORD_SIZE != 0 {
		errs = append(errs, fmt.Errorf("memory_size must be a positive multiple of %d", cpu.WORD_SIZE))
	}
	if c.DataStart > c.DataLimit {
		errs = append(errs, fmt.Errorf("data_start must be <= data_limit"))
	}
	if c.DataLimit > c.TextStart {
		errs = append(errs, fmt.Errorf("data_limit must be <= text_start"))
	}
	if c.TextStart%cpu.WORD_SIZE != 0 {
		errs = append(errs, fmt.Errorf("text_start must be word aligned"))
	}
	if c.MemorySize > 0 && uint64(c.TextStart) >= uint64(c.MemorySize) {
		errs = append(errs, fmt.Errorf("text_start must be inside memory_size"))
	}
	if c.MaxTicks < 0 {
		errs = append(errs, fmt.Errorf("max_ticks must be >= 0"))
	}

	return errors.Join(errs...)
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// CpuMode returns the parsed Mode.
func (c *Config) CpuMode() (cpu.Mode, error) {
	return cpu.ParseMode(c.Mode)
}
