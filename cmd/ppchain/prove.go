package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/221-V/NIICHAVO/zkproof"
)

func prove(args []string) error {
	fs := flag.NewFlagSet("prove", flag.ExitOnError)
	preFlag := fs.String("pre", "", `Pre-state balances, e.g. "hydrogen=1000" (required)`)
	countsFlag := fs.String("counts", "", `Firing counts, e.g. "bind=2,dissociate=1" (required)`)
	outPath := fs.String("output", "", "Write the serialized proof to a file")
	configPath := fs.String("config", defaultConfigPath, "Config file")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: ppchain prove [options]

Prove that a batch of reaction firings transforms the given pre-state
into its resulting post-state, without revealing the firing counts.
The proof exposes only the two balance vectors.

Options:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *preFlag == "" || *countsFlag == "" {
		fs.Usage()
		return fmt.Errorf("--pre and --counts are required")
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	net, err := netForSystem(cfg.System)
	if err != nil {
		return err
	}

	preMap, err := parsePairs(*preFlag)
	if err != nil {
		return err
	}
	countMap, err := parsePairs(*countsFlag)
	if err != nil {
		return err
	}

	pre := make([]uint64, len(net.Species))
	for id, n := range preMap {
		sp := net.SpeciesByID(id)
		if sp == nil {
			return fmt.Errorf("unknown species %q", id)
		}
		for i := range net.Species {
			if net.Species[i].ID == id {
				pre[i] = n
			}
		}
	}
	counts := make([]uint64, len(net.Reactions))
	for id, n := range countMap {
		if net.ReactionByID(id) == nil {
			return fmt.Errorf("unknown reaction %q", id)
		}
		for i := range net.Reactions {
			if net.Reactions[i].ID == id {
				counts[i] = n
			}
		}
	}

	post, err := zkproof.ExpectedPost(net, pre, counts)
	if err != nil {
		return err
	}

	fmt.Println("Compiling circuit and running setup...")
	prover, err := zkproof.NewProver(net)
	if err != nil {
		return err
	}
	fmt.Printf("Circuit has %d constraints\n", prover.Constraints())

	proof, err := prover.Prove(pre, post, counts)
	if err != nil {
		return err
	}
	if err := prover.Verify(proof); err != nil {
		return fmt.Errorf("proof did not verify: %w", err)
	}

	fmt.Println("Proof verified. Public state transition:")
	for i, sp := range net.Species {
		if pre[i] != 0 || post[i] != 0 {
			fmt.Printf("  %-12s %d -> %d\n", sp.ID, pre[i], post[i])
		}
	}

	if *outPath != "" {
		data, err := proof.Bytes()
		if err != nil {
			return err
		}
		if err := os.WriteFile(*outPath, data, 0o644); err != nil {
			return fmt.Errorf("write proof: %w", err)
		}
		fmt.Printf("Proof written to %s (%d bytes)\n", *outPath, len(data))
	}
	return nil
}
