package main

import (
	"fmt"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "react":
		if err := react(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "seed":
		if err := seed(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "balances":
		if err := balances(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "stats":
		if err := stats(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "events":
		if err := events(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "signal":
		if err := signal(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "simulate":
		if err := simulate(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "check":
		if err := check(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "prove":
		if err := prove(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "help", "-h", "--help":
		printUsage()
	case "version", "-v", "--version":
		fmt.Println("ppchain version 1.0.0")
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`ppchain - stoichiometric token reaction ledger

Usage:
  ppchain <command> [options]

Commands:
  react      Fire a reaction for a caller
  seed       Mint genesis supplies (owner only)
  balances   Show per-species balances of an account
  stats      Show reaction counters, energy and supplies
  events     Show the event journal
  signal     Send a cooldown-gated status signal
  simulate   Run mass-action kinetics over the declared net
  check      Validate the net and its conservation laws
  prove      Prove a batch of firings in zero knowledge
  help       Show this help message
  version    Show version information

Examples:
  # Seed an account and fire pp-fusion
  ppchain seed --to 0xaaaa...aaaa --amounts "proton=1000"
  ppchain react pp-fusion --caller 0xaaaa...aaaa

  # Inspect the system
  ppchain balances 0xaaaa...aaaa
  ppchain stats
  ppchain events

  # Simulate hydrogen equilibrium kinetics
  ppchain simulate --config hydrogen.json --time 100

  # Prove two binds and a dissociate without revealing the counts
  ppchain prove --pre "hydrogen=1000" --counts "bind=2,dissociate=1"`)
}
