package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/221-V/NIICHAVO/token"
)

func react(args []string) error {
	fs := flag.NewFlagSet("react", flag.ExitOnError)
	caller := fs.String("caller", "", "Caller address (required)")
	configPath := fs.String("config", defaultConfigPath, "Config file")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: ppchain react <reaction-id> [options]

Fire one reaction for a caller. Inputs are burned from and outputs
minted to the caller's accounts in the declared proportions.

Options:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		fs.Usage()
		return fmt.Errorf("reaction id required")
	}
	if *caller == "" {
		fs.Usage()
		return fmt.Errorf("--caller is required")
	}

	reactionID := fs.Arg(0)
	_, store, coord, err := loadSystem(*configPath)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := coord.Fire(context.Background(), reactionID, token.Address(*caller)); err != nil {
		return err
	}

	r := coord.Net().ReactionByID(reactionID)
	fmt.Printf("Fired %s (+%d MeV)\n", reactionID, r.EnergyMeV)
	for id, b := range coord.UserBalances(token.Address(*caller)) {
		if !b.IsZero() {
			fmt.Printf("  %-12s %s\n", id, b.Dec())
		}
	}
	return nil
}

func seed(args []string) error {
	fs := flag.NewFlagSet("seed", flag.ExitOnError)
	to := fs.String("to", "", "Account to seed (required)")
	amounts := fs.String("amounts", "", `Per-species amounts, e.g. "proton=1000" (required)`)
	configPath := fs.String("config", defaultConfigPath, "Config file")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: ppchain seed [options]

Mint genesis supplies to an account. Only the configured owner may
seed; the operation is recorded to the journal like any other.

Options:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *to == "" || *amounts == "" {
		fs.Usage()
		return fmt.Errorf("--to and --amounts are required")
	}

	supplies, err := parsePairs(*amounts)
	if err != nil {
		return err
	}

	cfg, store, coord, err := loadSystem(*configPath)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := coord.Seed(context.Background(), cfg.OwnerAddress(), token.Address(*to), supplies); err != nil {
		return err
	}
	fmt.Printf("Seeded %s\n", *to)
	for id, n := range supplies {
		fmt.Printf("  %-12s %d\n", id, n)
	}
	return nil
}

func signal(args []string) error {
	fs := flag.NewFlagSet("signal", flag.ExitOnError)
	caller := fs.String("caller", "", "Caller address (required)")
	note := fs.String("note", "", "Signal note")
	configPath := fs.String("config", defaultConfigPath, "Config file")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: ppchain signal [options]

Send a status signal. Repeat signals from the same caller are gated
by the configured cooldown thresholds.

Options:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *caller == "" {
		fs.Usage()
		return fmt.Errorf("--caller is required")
	}

	_, store, coord, err := loadSystem(*configPath)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := coord.Signal(context.Background(), token.Address(*caller), *note); err != nil {
		return err
	}
	fmt.Println("Signal recorded")
	return nil
}
