// Package reaction coordinates atomic fixed-ratio conversions between
// species ledgers, driven by a declared stoichiometric net. Every
// species gets its own token ledger; firing a reaction burns the
// caller's inputs and mints the outputs in the declared proportions,
// with counters, an energy accumulator, and journal records along the
// way.
package reaction

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/holiman/uint256"

	"github.com/221-V/NIICHAVO/cooldown"
	"github.com/221-V/NIICHAVO/guard"
	"github.com/221-V/NIICHAVO/journal"
	"github.com/221-V/NIICHAVO/stoich"
	"github.com/221-V/NIICHAVO/token"
)

// DefaultStream is the journal stream coordinators write to unless
// WithJournal names another.
const DefaultStream = "reactor"

// conservation is checked on every touched ledger after a fire.
const conservationExpr = `sum(balances) == totalSupply`

// Event types written to the journal.
const (
	EventSeed   = "seed"
	EventFired  = "reaction.fired"
	EventSignal = "signal"
)

type firedPayload struct {
	Reaction  string `json:"reaction"`
	Caller    string `json:"caller"`
	EnergyMeV uint64 `json:"energy_mev"`
	Count     uint64 `json:"count"`
}

type seedPayload struct {
	To      string            `json:"to"`
	Amounts map[string]uint64 `json:"amounts"`
}

type signalPayload struct {
	Note string `json:"note"`
}

// Coordinator owns one token ledger per species of a stoichiometric
// net and applies reactions atomically across them.
type Coordinator struct {
	mu sync.Mutex

	net   *stoich.Net
	owner token.Address

	ledgers map[string]*token.Ledger

	counters    map[string]uint64
	totalFired  uint64
	totalEnergy uint64
	signals     uint64

	rawGuards map[string]string
	guards    map[string]*guard.Compiled
	check     *guard.Compiled

	gate   *cooldown.Gate
	store  journal.Store
	stream string
}

// Option configures a Coordinator at construction.
type Option func(*Coordinator)

// WithJournal records coordinator activity to the given store and
// stream. An empty stream uses DefaultStream.
func WithJournal(store journal.Store, stream string) Option {
	return func(c *Coordinator) {
		c.store = store
		if stream != "" {
			c.stream = stream
		}
	}
}

// WithCooldown replaces the default signal cooldown gate.
func WithCooldown(gate *cooldown.Gate) Option {
	return func(c *Coordinator) {
		c.gate = gate
	}
}

// WithGuard attaches a guard expression to a reaction. The expression
// is compiled by NewCoordinator; bindings are "caller" plus a
// "balances" map of the caller's per-species holdings.
func WithGuard(reactionID, expr string) Option {
	return func(c *Coordinator) {
		if c.rawGuards == nil {
			c.rawGuards = make(map[string]string)
		}
		c.rawGuards[reactionID] = expr
	}
}

// NewCoordinator validates the net, checks its conservation laws and
// builds one ledger per species, all owned by owner.
func NewCoordinator(net *stoich.Net, owner token.Address, opts ...Option) (*Coordinator, error) {
	if owner.IsZero() {
		return nil, token.ErrInvalidAddress
	}
	if err := net.Validate(); err != nil {
		return nil, fmt.Errorf("invalid net: %w", err)
	}
	if err := net.CheckConservation(); err != nil {
		return nil, err
	}

	c := &Coordinator{
		net:      net,
		owner:    owner,
		ledgers:  make(map[string]*token.Ledger),
		counters: make(map[string]uint64),
		stream:   DefaultStream,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.gate == nil {
		c.gate = cooldown.NewGate(0, 0)
	}

	for _, sp := range net.Species {
		ledger, err := token.NewLedger(sp.Name, sp.Symbol, owner)
		if err != nil {
			return nil, fmt.Errorf("ledger for %s: %w", sp.ID, err)
		}
		c.ledgers[sp.ID] = ledger
	}

	c.guards = make(map[string]*guard.Compiled)
	for id, expr := range c.rawGuards {
		if net.ReactionByID(id) == nil {
			return nil, fmt.Errorf("%w: %s", ErrUnknownReaction, id)
		}
		compiled, err := guard.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("guard for %s: %w", id, err)
		}
		c.guards[id] = compiled
	}
	c.rawGuards = nil

	compiled, err := guard.Compile(conservationExpr)
	if err != nil {
		return nil, fmt.Errorf("conservation constraint: %w", err)
	}
	c.check = compiled

	return c, nil
}

// Net returns the coordinator's stoichiometric net.
func (c *Coordinator) Net() *stoich.Net { return c.net }

// Owner returns the coordinator's owner address.
func (c *Coordinator) Owner() token.Address { return c.owner }

// Ledger returns the ledger of one species.
func (c *Coordinator) Ledger(speciesID string) (*token.Ledger, bool) {
	l, ok := c.ledgers[speciesID]
	return l, ok
}

// Ledgers returns all species ledgers keyed by species ID.
func (c *Coordinator) Ledgers() map[string]*token.Ledger {
	out := make(map[string]*token.Ledger, len(c.ledgers))
	for id, l := range c.ledgers {
		out[id] = l
	}
	return out
}

// LedgerSymbols returns the ledger symbols in declared species order.
func (c *Coordinator) LedgerSymbols() []string {
	syms := make([]string, 0, len(c.net.Species))
	for _, sp := range c.net.Species {
		syms = append(syms, c.ledgers[sp.ID].Symbol())
	}
	return syms
}

// Seed mints initial supplies to an account. Only the owner can seed.
func (c *Coordinator) Seed(ctx context.Context, caller, to token.Address, amounts map[string]uint64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if caller != c.owner {
		return token.ErrUnauthorized
	}
	if to.IsZero() {
		return token.ErrInvalidAddress
	}
	for id := range amounts {
		if _, ok := c.ledgers[id]; !ok {
			return fmt.Errorf("%w: %s", stoich.ErrUnknownSpecies, id)
		}
	}

	if err := c.record(ctx, EventSeed, string(caller), "genesis supply",
		seedPayload{To: string(to), Amounts: amounts}); err != nil {
		return err
	}
	return c.applySeed(to, amounts)
}

func (c *Coordinator) applySeed(to token.Address, amounts map[string]uint64) error {
	ids := make([]string, 0, len(amounts))
	for id := range amounts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if amounts[id] == 0 {
			continue
		}
		if err := c.ledgers[id].Mint(c.owner, to, uint256.NewInt(amounts[id])); err != nil {
			return err
		}
	}
	return nil
}

// Fire applies one firing of a reaction for caller: inputs are burned
// from and outputs minted to the caller's accounts in the declared
// proportions. All checks run before any mutation, so a failed fire
// changes nothing. Fires are not idempotent; each call converts again.
func (c *Coordinator) Fire(ctx context.Context, reactionID string, caller token.Address) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	r := c.net.ReactionByID(reactionID)
	if r == nil {
		return fmt.Errorf("%w: %s", ErrUnknownReaction, reactionID)
	}
	if caller.IsZero() {
		return token.ErrInvalidAddress
	}

	if compiled := c.guards[reactionID]; compiled != nil {
		ok, err := guard.EvalCompiled(compiled, c.guardBindings(caller), nil)
		if err != nil {
			return fmt.Errorf("guard for %s: %w", reactionID, err)
		}
		if !ok {
			return fmt.Errorf("%w: %s", ErrGuardNotSatisfied, reactionID)
		}
	}

	if err := c.checkReactants(r, caller); err != nil {
		return err
	}

	// The journal is the source of truth for Replay, so the record is
	// appended before any ledger moves; apply cannot fail once the
	// reactant checks pass.
	if err := c.record(ctx, EventFired, string(caller), r.Description, firedPayload{
		Reaction:  r.ID,
		Caller:    string(caller),
		EnergyMeV: r.EnergyMeV,
		Count:     c.counters[r.ID] + 1,
	}); err != nil {
		return err
	}
	if err := c.apply(r, caller); err != nil {
		return err
	}
	return c.checkConstraints(r)
}

func (c *Coordinator) checkReactants(r *stoich.Reaction, caller token.Address) error {
	// A species may appear in more than one consume term, so the
	// required amounts are summed per species before checking.
	required := make(map[string]*uint256.Int)
	order := make([]string, 0, len(r.Consumes))
	for _, t := range r.Consumes {
		total, ok := required[t.Species]
		if !ok {
			total = uint256.NewInt(0)
			required[t.Species] = total
			order = append(order, t.Species)
		}
		total.Add(total, uint256.NewInt(t.Amount))
	}
	for _, species := range order {
		held := c.ledgers[species].BalanceOf(caller)
		if held.Lt(required[species]) {
			return &InsufficientReactantError{
				Species:  species,
				Required: required[species],
				Held:     held,
			}
		}
	}
	return nil
}

func (c *Coordinator) apply(r *stoich.Reaction, caller token.Address) error {
	for _, t := range r.Consumes {
		if err := c.ledgers[t.Species].Burn(c.owner, caller, uint256.NewInt(t.Amount)); err != nil {
			return err
		}
	}
	for _, t := range r.Produces {
		if err := c.ledgers[t.Species].Mint(c.owner, caller, uint256.NewInt(t.Amount)); err != nil {
			return err
		}
	}
	c.counters[r.ID]++
	c.totalFired++
	c.totalEnergy += r.EnergyMeV
	return nil
}

func (c *Coordinator) checkConstraints(r *stoich.Reaction) error {
	seen := make(map[string]bool)
	for _, side := range [][]stoich.Term{r.Consumes, r.Produces} {
		for _, t := range side {
			if seen[t.Species] {
				continue
			}
			seen[t.Species] = true
			ledger := c.ledgers[t.Species]
			holders := ledger.Holders()
			balances := make(map[string]*uint256.Int, holders)
			for addr, b := range ledger.Balances() {
				balances[string(addr)] = b
			}
			ok, err := guard.EvalCompiled(c.check, map[string]interface{}{
				"balances":    balances,
				"totalSupply": ledger.TotalSupply(),
			}, nil)
			if err != nil {
				return fmt.Errorf("constraint on %s: %w", t.Species, err)
			}
			if !ok {
				return &ConstraintError{Constraint: conservationExpr, Species: t.Species}
			}
		}
	}
	return nil
}

func (c *Coordinator) guardBindings(caller token.Address) map[string]interface{} {
	balances := make(map[string]*uint256.Int, len(c.ledgers))
	for id, ledger := range c.ledgers {
		balances[id] = ledger.BalanceOf(caller)
	}
	return map[string]interface{}{
		"caller":   string(caller),
		"balances": balances,
	}
}

// PPFusion fires pp-fusion for caller.
func (c *Coordinator) PPFusion(ctx context.Context, caller token.Address) error {
	return c.Fire(ctx, stoich.PPFusion, caller)
}

// PDFusion fires pd-fusion for caller.
func (c *Coordinator) PDFusion(ctx context.Context, caller token.Address) error {
	return c.Fire(ctx, stoich.PDFusion, caller)
}

// He3Fusion fires he3-fusion for caller.
func (c *Coordinator) He3Fusion(ctx context.Context, caller token.Address) error {
	return c.Fire(ctx, stoich.He3Fusion, caller)
}

// CompletePPChain fires the complete-pp-chain shortcut for caller. It
// keeps its own counter and energy accounting, separate from the three
// sub-reactions.
func (c *Coordinator) CompletePPChain(ctx context.Context, caller token.Address) error {
	return c.Fire(ctx, stoich.CompletePPChain, caller)
}

// AlphaDecay fires alpha-decay for caller.
func (c *Coordinator) AlphaDecay(ctx context.Context, caller token.Address) error {
	return c.Fire(ctx, stoich.AlphaDecay, caller)
}

// Signal records a status signal from caller, subject to the cooldown
// gate: a second signal before the caller's threshold elapses fails
// with a cooldown error.
func (c *Coordinator) Signal(ctx context.Context, caller token.Address, note string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if caller.IsZero() {
		return token.ErrInvalidAddress
	}
	if err := c.gate.Check(string(caller)); err != nil {
		return err
	}
	if err := c.record(ctx, EventSignal, string(caller), note, signalPayload{Note: note}); err != nil {
		return err
	}
	c.gate.Start(string(caller))
	c.signals++
	return nil
}

// UserBalances returns addr's holdings of every species, keyed by
// species ID. Zero balances are included.
func (c *Coordinator) UserBalances(addr token.Address) map[string]*uint256.Int {
	out := make(map[string]*uint256.Int, len(c.ledgers))
	for id, ledger := range c.ledgers {
		out[id] = ledger.BalanceOf(addr)
	}
	return out
}

// Stats is a snapshot of coordinator activity.
type Stats struct {
	Reactions      map[string]uint64
	TotalFired     uint64
	TotalEnergyMeV uint64
	Signals        uint64
	Supplies       map[string]*uint256.Int
}

// Stats returns a snapshot of counters, totals and per-species supply.
func (c *Coordinator) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Stats{
		Reactions:      make(map[string]uint64, len(c.counters)),
		TotalFired:     c.totalFired,
		TotalEnergyMeV: c.totalEnergy,
		Signals:        c.signals,
		Supplies:       make(map[string]*uint256.Int, len(c.ledgers)),
	}
	for id, n := range c.counters {
		s.Reactions[id] = n
	}
	for id, ledger := range c.ledgers {
		s.Supplies[id] = ledger.TotalSupply()
	}
	return s
}

func (c *Coordinator) record(ctx context.Context, eventType, actor, description string, payload any) error {
	if c.store == nil {
		return nil
	}
	e, err := journal.NewEvent(eventType, actor, description, payload)
	if err != nil {
		return err
	}
	if _, err := c.store.Append(ctx, c.stream, e); err != nil {
		return fmt.Errorf("journal append: %w", err)
	}
	return nil
}

// Replay rebuilds a coordinator by replaying a journal stream against
// a fresh net. The returned coordinator keeps writing to the same
// store and stream.
func Replay(ctx context.Context, net *stoich.Net, owner token.Address, store journal.Store, stream string, opts ...Option) (*Coordinator, error) {
	if stream == "" {
		stream = DefaultStream
	}
	events, err := store.Read(ctx, stream, 0)
	if err != nil {
		return nil, fmt.Errorf("read journal: %w", err)
	}

	opts = append(opts, WithJournal(store, stream))
	c, err := NewCoordinator(net, owner, opts...)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range events {
		switch e.Type {
		case EventSeed:
			var p seedPayload
			if err := e.Decode(&p); err != nil {
				return nil, fmt.Errorf("event %d: %w", e.Seq, err)
			}
			if err := c.applySeed(token.Address(p.To), p.Amounts); err != nil {
				return nil, fmt.Errorf("event %d: %w", e.Seq, err)
			}
		case EventFired:
			var p firedPayload
			if err := e.Decode(&p); err != nil {
				return nil, fmt.Errorf("event %d: %w", e.Seq, err)
			}
			r := c.net.ReactionByID(p.Reaction)
			if r == nil {
				return nil, fmt.Errorf("event %d: %w: %s", e.Seq, ErrUnknownReaction, p.Reaction)
			}
			if err := c.apply(r, token.Address(p.Caller)); err != nil {
				return nil, fmt.Errorf("event %d: %w", e.Seq, err)
			}
		case EventSignal:
			c.signals++
		}
	}
	return c, nil
}
