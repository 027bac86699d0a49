package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/221-V/NIICHAVO/token"
)

func balances(args []string) error {
	fs := flag.NewFlagSet("balances", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "Config file")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: ppchain balances <address> [options]\n\nOptions:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		fs.Usage()
		return fmt.Errorf("address required")
	}

	_, store, coord, err := loadSystem(*configPath)
	if err != nil {
		return err
	}
	defer store.Close()

	addr := token.Address(fs.Arg(0))
	fmt.Printf("Balances of %s:\n", addr)
	for _, id := range coord.Net().SpeciesIDs() {
		b := coord.UserBalances(addr)[id]
		ledger, _ := coord.Ledger(id)
		fmt.Printf("  %-12s %8s %s\n", id, b.Dec(), ledger.Symbol())
	}
	return nil
}

func stats(args []string) error {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "Config file")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: ppchain stats [options]\n\nOptions:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	_, store, coord, err := loadSystem(*configPath)
	if err != nil {
		return err
	}
	defer store.Close()

	s := coord.Stats()
	fmt.Printf("Net: %s\n", coord.Net().Name)
	fmt.Printf("Total fired: %d, energy released: %d MeV, signals: %d\n",
		s.TotalFired, s.TotalEnergyMeV, s.Signals)

	fmt.Println("Reactions:")
	for _, id := range coord.Net().ReactionIDs() {
		fmt.Printf("  %-20s %d\n", id, s.Reactions[id])
	}
	fmt.Println("Supplies:")
	for _, id := range coord.Net().SpeciesIDs() {
		fmt.Printf("  %-12s %s\n", id, s.Supplies[id].Dec())
	}
	return nil
}

func events(args []string) error {
	fs := flag.NewFlagSet("events", flag.ExitOnError)
	fromSeq := fs.Uint64("from", 0, "First sequence number to show")
	configPath := fs.String("config", defaultConfigPath, "Config file")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: ppchain events [options]\n\nOptions:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	store, stream, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.Read(context.Background(), stream, *fromSeq)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("No events")
		return nil
	}
	for _, e := range records {
		fmt.Printf("%4d  %s  %-16s %-44s %s\n",
			e.Seq, e.Time.Format("2006-01-02 15:04:05"), e.Type, e.Actor, e.Description)
	}
	return nil
}
