package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/221-V/NIICHAVO/config"
	"github.com/221-V/NIICHAVO/cooldown"
	"github.com/221-V/NIICHAVO/journal"
	"github.com/221-V/NIICHAVO/reaction"
	"github.com/221-V/NIICHAVO/stoich"
	"github.com/221-V/NIICHAVO/token"
)

const defaultConfigPath = "ppchain.json"

// loadConfig reads the config flag's file, or falls back to defaults
// when the default path does not exist.
func loadConfig(path string) (*config.Config, error) {
	if path == defaultConfigPath {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return config.Default(), nil
		}
	}
	return config.Load(path)
}

// netForSystem maps a configured system name to its canonical net.
func netForSystem(name string) (*stoich.Net, error) {
	switch name {
	case "ppchain":
		return stoich.PPChain(), nil
	case "hydrogen":
		return stoich.HydrogenEquilibrium(), nil
	default:
		return nil, fmt.Errorf("unknown system %q (want ppchain or hydrogen)", name)
	}
}

func openStore(cfg *config.Config) (journal.Store, string, error) {
	stream := reaction.DefaultStream
	if cfg.Journal != nil && cfg.Journal.Stream != "" {
		stream = cfg.Journal.Stream
	}
	if cfg.Journal == nil || cfg.Journal.Path == "" {
		return journal.NewMemoryStore(), stream, nil
	}
	store, err := journal.OpenSQLite(cfg.Journal.Path)
	if err != nil {
		return nil, "", err
	}
	return store, stream, nil
}

// loadSystem rebuilds the coordinator from the configured journal.
// The caller owns the returned store.
func loadSystem(configPath string) (*config.Config, journal.Store, *reaction.Coordinator, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, nil, nil, err
	}
	net, err := netForSystem(cfg.System)
	if err != nil {
		return nil, nil, nil, err
	}
	store, stream, err := openStore(cfg)
	if err != nil {
		return nil, nil, nil, err
	}

	var opts []reaction.Option
	if cfg.Cooldown != nil && (cfg.Cooldown.DaySeconds > 0 || cfg.Cooldown.NightSeconds > 0) {
		gate := cooldown.NewGate(
			time.Duration(cfg.Cooldown.DaySeconds)*time.Second,
			time.Duration(cfg.Cooldown.NightSeconds)*time.Second,
		)
		opts = append(opts, reaction.WithCooldown(gate))
	}

	coord, err := reaction.Replay(context.Background(), net, cfg.OwnerAddress(), store, stream, opts...)
	if err != nil {
		store.Close()
		return nil, nil, nil, err
	}
	if err := seedGenesis(context.Background(), cfg, store, stream, coord); err != nil {
		store.Close()
		return nil, nil, nil, err
	}
	return cfg, store, coord, nil
}

// seedGenesis mints the configured genesis supplies on first start.
// The seed is journaled, so a stream with any events has either been
// seeded already or was started without a genesis block.
func seedGenesis(ctx context.Context, cfg *config.Config, store journal.Store, stream string, coord *reaction.Coordinator) error {
	if cfg.Genesis == nil || len(cfg.Genesis.Supplies) == 0 {
		return nil
	}
	events, err := store.Read(ctx, stream, 0)
	if err != nil {
		return err
	}
	if len(events) > 0 {
		return nil
	}
	return coord.Seed(ctx, cfg.OwnerAddress(), token.Address(cfg.Genesis.Account), cfg.Genesis.Supplies)
}

// parsePairs parses "key=1,key2=2" into a map.
func parsePairs(s string) (map[string]uint64, error) {
	out := make(map[string]uint64)
	if s == "" {
		return out, nil
	}
	for _, part := range strings.Split(s, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 || kv[0] == "" {
			return nil, fmt.Errorf("invalid pair %q (want key=value)", part)
		}
		v, err := strconv.ParseUint(kv[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid value in %q: %w", part, err)
		}
		out[kv[0]] = v
	}
	return out, nil
}
