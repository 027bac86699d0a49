package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/221-V/NIICHAVO/stoich"
)

func check(args []string) error {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "Config file")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: ppchain check [options]

Validate the configured net and verify that every reaction conserves
baryon number, charge and lepton number.

Options:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	net, err := netForSystem(cfg.System)
	if err != nil {
		return err
	}

	if err := net.Validate(); err != nil {
		return fmt.Errorf("net invalid: %w", err)
	}
	fmt.Printf("Net %s: %d species, %d reactions\n",
		net.Name, len(net.Species), len(net.Reactions))

	quantities := []stoich.Quantity{stoich.Baryon, stoich.Charge, stoich.Lepton}
	for _, r := range net.Reactions {
		fmt.Printf("  %-20s", r.ID)
		for _, q := range quantities {
			in, out := net.Balance(&r, q)
			mark := "ok"
			if in != out {
				mark = fmt.Sprintf("VIOLATED (%d != %d)", in, out)
			}
			fmt.Printf("  %s=%s", q, mark)
		}
		fmt.Println()
	}

	if err := net.CheckConservation(); err != nil {
		return err
	}
	fmt.Printf("All conservation laws hold (fingerprint %s)\n", net.Fingerprint())
	return nil
}
