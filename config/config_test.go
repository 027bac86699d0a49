package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultValidates(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("Default() invalid: %v", err)
	}
}

func TestLoad(t *testing.T) {
	doc := `{
		"system": "ppchain",
		"owner": "0x1000000000000000000000000000000000000001",
		"genesis": {
			"account": "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
			"supplies": {"proton": 500, "deuterium": 10}
		},
		"cooldown": {"daySeconds": 30, "nightSeconds": 90},
		"journal": {"path": "events.db", "stream": "reactor"},
		"solver": {"method": "rk45", "tspan": [0, 100], "rates": {"bind": 2.0}}
	}`
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.System != "ppchain" {
		t.Errorf("system = %q", c.System)
	}
	if c.Genesis.Supplies["proton"] != 500 {
		t.Errorf("proton supply = %d", c.Genesis.Supplies["proton"])
	}
	if c.Cooldown.DaySeconds != 30 || c.Cooldown.NightSeconds != 90 {
		t.Errorf("cooldown = %+v", c.Cooldown)
	}
	if c.Journal.Path != "events.db" {
		t.Errorf("journal path = %q", c.Journal.Path)
	}
	if c.Solver.Method != "rk45" || c.Solver.Rates["bind"] != 2.0 {
		t.Errorf("solver = %+v", c.Solver)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"default", func(c *Config) {}, false},
		{"missing system", func(c *Config) { c.System = "" }, true},
		{"missing owner", func(c *Config) { c.Owner = "" }, true},
		{"zero owner", func(c *Config) { c.Owner = "0x0000000000000000000000000000000000000000" }, true},
		{"supplies without account", func(c *Config) { c.Genesis.Account = "" }, true},
		{"negative cooldown", func(c *Config) { c.Cooldown.DaySeconds = -1 }, true},
		{"inverted tspan", func(c *Config) { c.Solver.Tspan = [2]float64{5, 1} }, true},
		{"no optional sections", func(c *Config) { c.Genesis, c.Cooldown, c.Journal, c.Solver = nil, nil, nil, nil }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(c)
			err := c.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
