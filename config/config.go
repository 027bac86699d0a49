// Package config loads the JSON configuration for a reaction system:
// identity, genesis supplies, cooldown thresholds, journal location
// and solver settings.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/221-V/NIICHAVO/token"
)

// Config is the root configuration document.
type Config struct {
	System   string          `json:"system"`
	Owner    string          `json:"owner"`
	Genesis  *GenesisConfig  `json:"genesis,omitempty"`
	Cooldown *CooldownConfig `json:"cooldown,omitempty"`
	Journal  *JournalConfig  `json:"journal,omitempty"`
	Solver   *SolverConfig   `json:"solver,omitempty"`
}

// GenesisConfig names the account seeded at startup and its
// per-species initial supplies.
type GenesisConfig struct {
	Account  string            `json:"account"`
	Supplies map[string]uint64 `json:"supplies,omitempty"`
}

// CooldownConfig holds signal thresholds in seconds. Zero values fall
// back to the gate defaults.
type CooldownConfig struct {
	DaySeconds   int `json:"daySeconds,omitempty"`
	NightSeconds int `json:"nightSeconds,omitempty"`
}

// JournalConfig locates the event journal. An empty path selects the
// in-memory store.
type JournalConfig struct {
	Path   string `json:"path,omitempty"`
	Stream string `json:"stream,omitempty"`
}

// SolverConfig selects the kinetics method and time span.
type SolverConfig struct {
	Method string             `json:"method,omitempty"` // tsit5, rk45, rk4, euler
	Tspan  [2]float64         `json:"tspan,omitempty"`
	Rates  map[string]float64 `json:"rates,omitempty"`
}

// Default returns a runnable configuration with an in-memory journal.
func Default() *Config {
	return &Config{
		System: "ppchain",
		Owner:  "0x1000000000000000000000000000000000000001",
		Genesis: &GenesisConfig{
			Account:  "0x1000000000000000000000000000000000000001",
			Supplies: map[string]uint64{"proton": 1000},
		},
		Cooldown: &CooldownConfig{},
		Journal:  &JournalConfig{},
		Solver: &SolverConfig{
			Method: "tsit5",
			Tspan:  [2]float64{0, 10},
		},
	}
}

// Load reads and validates a configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var c Config
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks the parts every command needs.
func (c *Config) Validate() error {
	if c.System == "" {
		return fmt.Errorf("config: system name is required")
	}
	if token.Address(c.Owner).IsZero() {
		return fmt.Errorf("config: owner address is required")
	}
	if c.Genesis != nil && len(c.Genesis.Supplies) > 0 && token.Address(c.Genesis.Account).IsZero() {
		return fmt.Errorf("config: genesis account is required when supplies are set")
	}
	if c.Cooldown != nil {
		if c.Cooldown.DaySeconds < 0 || c.Cooldown.NightSeconds < 0 {
			return fmt.Errorf("config: cooldown thresholds must not be negative")
		}
	}
	if c.Solver != nil && c.Solver.Tspan[1] < c.Solver.Tspan[0] {
		return fmt.Errorf("config: solver tspan end before start")
	}
	return nil
}

// OwnerAddress returns the owner as a ledger address.
func (c *Config) OwnerAddress() token.Address {
	return token.Address(c.Owner)
}
