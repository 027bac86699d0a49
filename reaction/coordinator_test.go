package reaction

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/holiman/uint256"

	"github.com/221-V/NIICHAVO/cooldown"
	"github.com/221-V/NIICHAVO/journal"
	"github.com/221-V/NIICHAVO/stoich"
	"github.com/221-V/NIICHAVO/token"
)

const (
	owner = token.Address("0x1000000000000000000000000000000000000001")
	alice = token.Address("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	bob   = token.Address("0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")
)

func newPPChain(t *testing.T, opts ...Option) *Coordinator {
	t.Helper()
	c, err := NewCoordinator(stoich.PPChain(), owner, opts...)
	if err != nil {
		t.Fatalf("NewCoordinator: %v", err)
	}
	return c
}

func newHydrogen(t *testing.T, opts ...Option) *Coordinator {
	t.Helper()
	c, err := NewCoordinator(stoich.HydrogenEquilibrium(), owner, opts...)
	if err != nil {
		t.Fatalf("NewCoordinator: %v", err)
	}
	return c
}

func seed(t *testing.T, c *Coordinator, to token.Address, amounts map[string]uint64) {
	t.Helper()
	if err := c.Seed(context.Background(), owner, to, amounts); err != nil {
		t.Fatalf("Seed: %v", err)
	}
}

func balance(t *testing.T, c *Coordinator, addr token.Address, species string) uint64 {
	t.Helper()
	b, ok := c.UserBalances(addr)[species]
	if !ok {
		t.Fatalf("no ledger for species %q", species)
	}
	return b.Uint64()
}

func checkConservation(t *testing.T, c *Coordinator) {
	t.Helper()
	for _, id := range c.Net().SpeciesIDs() {
		ledger, _ := c.Ledger(id)
		if sum, supply := ledger.SumOfBalances(), ledger.TotalSupply(); !sum.Eq(supply) {
			t.Errorf("%s: sum of balances %s != total supply %s", id, sum.Dec(), supply.Dec())
		}
	}
}

func TestNewCoordinatorRejectsZeroOwner(t *testing.T) {
	_, err := NewCoordinator(stoich.PPChain(), token.ZeroAddress)
	if !errors.Is(err, token.ErrInvalidAddress) {
		t.Errorf("err = %v, want ErrInvalidAddress", err)
	}
}

func TestHydrogenEquilibriumScenario(t *testing.T) {
	ctx := context.Background()
	c := newHydrogen(t)
	seed(t, c, alice, map[string]uint64{stoich.Hydrogen1: 1000})

	if err := c.Fire(ctx, stoich.Bind, alice); err != nil {
		t.Fatalf("first bind: %v", err)
	}
	if err := c.Fire(ctx, stoich.Bind, alice); err != nil {
		t.Fatalf("second bind: %v", err)
	}
	if h := balance(t, c, alice, stoich.Hydrogen1); h != 996 {
		t.Errorf("hydrogen after two binds = %d, want 996", h)
	}
	if h2 := balance(t, c, alice, stoich.Hydrogen2); h2 != 2 {
		t.Errorf("h2 after two binds = %d, want 2", h2)
	}

	if err := c.Fire(ctx, stoich.Dissociate, alice); err != nil {
		t.Fatalf("dissociate: %v", err)
	}
	if h := balance(t, c, alice, stoich.Hydrogen1); h != 998 {
		t.Errorf("hydrogen after dissociate = %d, want 998", h)
	}
	if h2 := balance(t, c, alice, stoich.Hydrogen2); h2 != 1 {
		t.Errorf("h2 after dissociate = %d, want 1", h2)
	}
	checkConservation(t, c)
}

func TestFireConvertsInDeclaredRatios(t *testing.T) {
	ctx := context.Background()
	c := newPPChain(t)
	seed(t, c, alice, map[string]uint64{stoich.Proton: 10})

	if err := c.PPFusion(ctx, alice); err != nil {
		t.Fatalf("PPFusion: %v", err)
	}
	want := map[string]uint64{
		stoich.Proton:   8,
		stoich.Deuteron: 1,
		stoich.Positron: 1,
		stoich.Neutrino: 1,
	}
	for species, n := range want {
		if got := balance(t, c, alice, species); got != n {
			t.Errorf("%s = %d, want %d", species, got, n)
		}
	}
	checkConservation(t, c)
}

func TestFireIsNotIdempotent(t *testing.T) {
	ctx := context.Background()
	c := newPPChain(t)
	seed(t, c, alice, map[string]uint64{stoich.Proton: 10})

	if err := c.PPFusion(ctx, alice); err != nil {
		t.Fatal(err)
	}
	if err := c.PPFusion(ctx, alice); err != nil {
		t.Fatal(err)
	}
	if got := balance(t, c, alice, stoich.Proton); got != 6 {
		t.Errorf("protons after two fires = %d, want 6", got)
	}
	if got := balance(t, c, alice, stoich.Deuteron); got != 2 {
		t.Errorf("deuterium after two fires = %d, want 2", got)
	}
	if stats := c.Stats(); stats.Reactions[stoich.PPFusion] != 2 {
		t.Errorf("pp-fusion counter = %d, want 2", stats.Reactions[stoich.PPFusion])
	}
}

func TestCompletePPChainAccounting(t *testing.T) {
	ctx := context.Background()
	c := newPPChain(t)
	seed(t, c, alice, map[string]uint64{stoich.Proton: 4})

	if err := c.CompletePPChain(ctx, alice); err != nil {
		t.Fatalf("CompletePPChain: %v", err)
	}

	if got := balance(t, c, alice, stoich.Proton); got != 0 {
		t.Errorf("protons = %d, want 0", got)
	}
	if got := balance(t, c, alice, stoich.Helium4); got != 1 {
		t.Errorf("helium4 = %d, want 1", got)
	}
	if got := balance(t, c, alice, stoich.Positron); got != 2 {
		t.Errorf("positrons = %d, want 2", got)
	}

	stats := c.Stats()
	if stats.TotalEnergyMeV != 26 {
		t.Errorf("energy = %d, want 26", stats.TotalEnergyMeV)
	}
	if stats.Reactions[stoich.CompletePPChain] != 1 {
		t.Errorf("complete-pp-chain counter = %d, want 1", stats.Reactions[stoich.CompletePPChain])
	}
	for _, sub := range []string{stoich.PPFusion, stoich.PDFusion, stoich.He3Fusion} {
		if stats.Reactions[sub] != 0 {
			t.Errorf("%s counter = %d, want 0", sub, stats.Reactions[sub])
		}
	}
	checkConservation(t, c)
}

func TestStepwiseEnergyAccumulates(t *testing.T) {
	ctx := context.Background()
	c := newPPChain(t)
	seed(t, c, alice, map[string]uint64{stoich.Proton: 6})

	// 2 pp-fusion, 2 pd-fusion, 1 he3-fusion: 4p in, 1he4 out via the
	// stepwise path.
	for i := 0; i < 2; i++ {
		if err := c.PPFusion(ctx, alice); err != nil {
			t.Fatal(err)
		}
		if err := c.PDFusion(ctx, alice); err != nil {
			t.Fatal(err)
		}
	}
	if err := c.He3Fusion(ctx, alice); err != nil {
		t.Fatal(err)
	}

	stats := c.Stats()
	if want := uint64(2*1 + 2*5 + 12); stats.TotalEnergyMeV != want {
		t.Errorf("energy = %d, want %d", stats.TotalEnergyMeV, want)
	}
	if stats.TotalFired != 5 {
		t.Errorf("total fired = %d, want 5", stats.TotalFired)
	}
	if got := balance(t, c, alice, stoich.Helium4); got != 1 {
		t.Errorf("helium4 = %d, want 1", got)
	}
	checkConservation(t, c)
}

func TestFireInsufficientReactant(t *testing.T) {
	ctx := context.Background()
	c := newPPChain(t)
	seed(t, c, alice, map[string]uint64{stoich.Proton: 1})

	err := c.PPFusion(ctx, alice)
	var reactantErr *InsufficientReactantError
	if !errors.As(err, &reactantErr) {
		t.Fatalf("err = %v, want InsufficientReactantError", err)
	}
	if reactantErr.Species != stoich.Proton {
		t.Errorf("species = %q, want %q", reactantErr.Species, stoich.Proton)
	}
	if reactantErr.Required.Uint64() != 2 || reactantErr.Held.Uint64() != 1 {
		t.Errorf("required/held = %s/%s, want 2/1", reactantErr.Required.Dec(), reactantErr.Held.Dec())
	}

	// Nothing mutated.
	if got := balance(t, c, alice, stoich.Proton); got != 1 {
		t.Errorf("protons = %d, want 1", got)
	}
	if stats := c.Stats(); stats.TotalFired != 0 || stats.TotalEnergyMeV != 0 {
		t.Errorf("stats mutated on failure: %+v", stats)
	}
}

func TestFireChecksAllInputsBeforeMutating(t *testing.T) {
	ctx := context.Background()
	c := newPPChain(t)
	// Enough deuterium, no protons: pd-fusion must fail without
	// touching the deuterium ledger.
	seed(t, c, alice, map[string]uint64{stoich.Deuteron: 5})

	err := c.PDFusion(ctx, alice)
	var reactantErr *InsufficientReactantError
	if !errors.As(err, &reactantErr) {
		t.Fatalf("err = %v, want InsufficientReactantError", err)
	}
	if got := balance(t, c, alice, stoich.Deuteron); got != 5 {
		t.Errorf("deuterium = %d, want 5", got)
	}
}

func TestFireAggregatesRepeatedConsumeTerms(t *testing.T) {
	ctx := context.Background()
	net := stoich.NewNet("dimer")
	net.AddSpecies(stoich.Species{ID: "monomer", Name: "Monomer", Symbol: "M", MassNumber: 1}).
		AddSpecies(stoich.Species{ID: "dimer", Name: "Dimer", Symbol: "DM", MassNumber: 2})
	net.AddReaction(stoich.Reaction{
		ID:          "pair",
		Description: "4 m -> 2 dm",
		Consumes:    []stoich.Term{{Species: "monomer", Amount: 2}, {Species: "monomer", Amount: 2}},
		Produces:    []stoich.Term{{Species: "dimer", Amount: 2}},
		Rate:        1.0,
	})
	c, err := NewCoordinator(net, owner)
	if err != nil {
		t.Fatalf("NewCoordinator: %v", err)
	}
	seed(t, c, alice, map[string]uint64{"monomer": 3})

	// The two monomer terms require 4 in total, not 2.
	err = c.Fire(ctx, "pair", alice)
	var reactantErr *InsufficientReactantError
	if !errors.As(err, &reactantErr) {
		t.Fatalf("err = %v, want InsufficientReactantError", err)
	}
	if reactantErr.Required.Uint64() != 4 || reactantErr.Held.Uint64() != 3 {
		t.Errorf("required/held = %s/%s, want 4/3", reactantErr.Required.Dec(), reactantErr.Held.Dec())
	}
	if got := balance(t, c, alice, "monomer"); got != 3 {
		t.Errorf("monomer after failed fire = %d, want 3", got)
	}
	if got := balance(t, c, alice, "dimer"); got != 0 {
		t.Errorf("dimer after failed fire = %d, want 0", got)
	}

	seed(t, c, alice, map[string]uint64{"monomer": 1})
	if err := c.Fire(ctx, "pair", alice); err != nil {
		t.Fatalf("Fire with 4 monomer: %v", err)
	}
	if got := balance(t, c, alice, "monomer"); got != 0 {
		t.Errorf("monomer = %d, want 0", got)
	}
	if got := balance(t, c, alice, "dimer"); got != 2 {
		t.Errorf("dimer = %d, want 2", got)
	}
	checkConservation(t, c)
}

func TestFireUnknownReaction(t *testing.T) {
	c := newPPChain(t)
	err := c.Fire(context.Background(), "cold-fusion", alice)
	if !errors.Is(err, ErrUnknownReaction) {
		t.Errorf("err = %v, want ErrUnknownReaction", err)
	}
}

func TestFireGuard(t *testing.T) {
	ctx := context.Background()
	c := newHydrogen(t, WithGuard(stoich.Bind, `balances["hydrogen"] >= 100`))
	seed(t, c, alice, map[string]uint64{stoich.Hydrogen1: 4})
	seed(t, c, bob, map[string]uint64{stoich.Hydrogen1: 100})

	err := c.Fire(ctx, stoich.Bind, alice)
	if !errors.Is(err, ErrGuardNotSatisfied) {
		t.Fatalf("err = %v, want ErrGuardNotSatisfied", err)
	}
	if got := balance(t, c, alice, stoich.Hydrogen1); got != 4 {
		t.Errorf("hydrogen = %d, want 4", got)
	}

	if err := c.Fire(ctx, stoich.Bind, bob); err != nil {
		t.Fatalf("bind for bob: %v", err)
	}
	if got := balance(t, c, bob, stoich.Hydrogen2); got != 1 {
		t.Errorf("h2 = %d, want 1", got)
	}
}

func TestNewCoordinatorRejectsGuardForUnknownReaction(t *testing.T) {
	_, err := NewCoordinator(stoich.PPChain(), owner, WithGuard("cold-fusion", "true"))
	if !errors.Is(err, ErrUnknownReaction) {
		t.Errorf("err = %v, want ErrUnknownReaction", err)
	}
}

func TestSeedUnauthorized(t *testing.T) {
	c := newPPChain(t)
	err := c.Seed(context.Background(), alice, alice, map[string]uint64{stoich.Proton: 10})
	if !errors.Is(err, token.ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
	if got := balance(t, c, alice, stoich.Proton); got != 0 {
		t.Errorf("protons = %d, want 0", got)
	}
}

func TestSeedUnknownSpecies(t *testing.T) {
	c := newPPChain(t)
	err := c.Seed(context.Background(), owner, alice, map[string]uint64{"unobtainium": 1})
	if !errors.Is(err, stoich.ErrUnknownSpecies) {
		t.Errorf("err = %v, want ErrUnknownSpecies", err)
	}
}

func TestSignalCooldown(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(8*3600, 0) // day bucket, 60s threshold
	gate := cooldown.NewGate(0, 0)
	gate.SetClock(func() time.Time { return now })

	c := newPPChain(t, WithCooldown(gate))

	if err := c.Signal(ctx, alice, "first"); err != nil {
		t.Fatalf("first signal: %v", err)
	}

	now = now.Add(30 * time.Second)
	err := c.Signal(ctx, alice, "too soon")
	if !errors.Is(err, cooldown.ErrCooldownActive) {
		t.Fatalf("err = %v, want ErrCooldownActive", err)
	}

	// Another caller is unaffected.
	if err := c.Signal(ctx, bob, "hello"); err != nil {
		t.Fatalf("signal from bob: %v", err)
	}

	now = now.Add(30 * time.Second)
	if err := c.Signal(ctx, alice, "after threshold"); err != nil {
		t.Fatalf("signal at threshold: %v", err)
	}

	if stats := c.Stats(); stats.Signals != 3 {
		t.Errorf("signals = %d, want 3", stats.Signals)
	}
}

func TestJournalAndReplay(t *testing.T) {
	ctx := context.Background()
	store := journal.NewMemoryStore()
	defer store.Close()

	c := newPPChain(t, WithJournal(store, ""))
	seed(t, c, alice, map[string]uint64{stoich.Proton: 10})
	if err := c.PPFusion(ctx, alice); err != nil {
		t.Fatal(err)
	}
	if err := c.PDFusion(ctx, alice); err != nil {
		t.Fatal(err)
	}
	if err := c.Signal(ctx, alice, "checkpoint"); err != nil {
		t.Fatal(err)
	}

	events, err := store.Read(ctx, DefaultStream, 0)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(events) != 4 {
		t.Fatalf("journal has %d events, want 4", len(events))
	}
	if events[0].Type != EventSeed || events[1].Type != EventFired || events[3].Type != EventSignal {
		t.Errorf("unexpected event types: %s %s %s %s",
			events[0].Type, events[1].Type, events[2].Type, events[3].Type)
	}

	replayed, err := Replay(ctx, stoich.PPChain(), owner, store, "")
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}

	want := c.UserBalances(alice)
	got := replayed.UserBalances(alice)
	for species, n := range want {
		if !got[species].Eq(n) {
			t.Errorf("%s = %s, want %s", species, got[species].Dec(), n.Dec())
		}
	}

	origStats, replayStats := c.Stats(), replayed.Stats()
	if replayStats.TotalFired != origStats.TotalFired {
		t.Errorf("replayed fired = %d, want %d", replayStats.TotalFired, origStats.TotalFired)
	}
	if replayStats.TotalEnergyMeV != origStats.TotalEnergyMeV {
		t.Errorf("replayed energy = %d, want %d", replayStats.TotalEnergyMeV, origStats.TotalEnergyMeV)
	}
	if replayStats.Signals != origStats.Signals {
		t.Errorf("replayed signals = %d, want %d", replayStats.Signals, origStats.Signals)
	}
	checkConservation(t, replayed)
}

func TestFailedJournalAppendLeavesStateUntouched(t *testing.T) {
	ctx := context.Background()
	store := journal.NewMemoryStore()
	c := newHydrogen(t, WithJournal(store, ""))
	seed(t, c, alice, map[string]uint64{stoich.Hydrogen1: 1000})
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if err := c.Fire(ctx, stoich.Bind, alice); !errors.Is(err, journal.ErrClosed) {
		t.Fatalf("Fire with closed store: err = %v, want ErrClosed", err)
	}
	if got := balance(t, c, alice, stoich.Hydrogen1); got != 1000 {
		t.Errorf("hydrogen = %d, want 1000", got)
	}
	if got := balance(t, c, alice, stoich.Hydrogen2); got != 0 {
		t.Errorf("h2 = %d, want 0", got)
	}
	if stats := c.Stats(); stats.TotalFired != 0 || stats.Reactions[stoich.Bind] != 0 || stats.TotalEnergyMeV != 0 {
		t.Errorf("stats mutated on failed append: %+v", stats)
	}

	if err := c.Seed(ctx, owner, bob, map[string]uint64{stoich.Hydrogen1: 5}); !errors.Is(err, journal.ErrClosed) {
		t.Fatalf("Seed with closed store: err = %v, want ErrClosed", err)
	}
	if got := balance(t, c, bob, stoich.Hydrogen1); got != 0 {
		t.Errorf("bob hydrogen = %d, want 0", got)
	}

	if err := c.Signal(ctx, alice, "checkpoint"); !errors.Is(err, journal.ErrClosed) {
		t.Fatalf("Signal with closed store: err = %v, want ErrClosed", err)
	}
	if got := c.Stats().Signals; got != 0 {
		t.Errorf("signals = %d, want 0", got)
	}
}

func TestStatsSupplies(t *testing.T) {
	c := newPPChain(t)
	seed(t, c, alice, map[string]uint64{stoich.Proton: 10})
	seed(t, c, bob, map[string]uint64{stoich.Proton: 5})

	stats := c.Stats()
	if got := stats.Supplies[stoich.Proton]; !got.Eq(uint256.NewInt(15)) {
		t.Errorf("proton supply = %s, want 15", got.Dec())
	}
	if got := stats.Supplies[stoich.Helium4]; !got.IsZero() {
		t.Errorf("helium4 supply = %s, want 0", got.Dec())
	}
}

func TestLedgerSymbols(t *testing.T) {
	c := newHydrogen(t)
	syms := c.LedgerSymbols()
	if len(syms) != 2 || syms[0] != "H" || syms[1] != "H2" {
		t.Errorf("symbols = %v, want [H H2]", syms)
	}
}
