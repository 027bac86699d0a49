// Package token implements a named fungible-unit account book: balances,
// allowances, transfers, and an owner-gated mint/burn capability.
//
// Every public operation is atomic: all checks run before any mutation,
// so a failed call leaves the ledger untouched. Units are indivisible
// (decimals is fixed at zero) and amounts are 256-bit unsigned integers.
package token

import (
	"fmt"
	"sync"

	"github.com/holiman/uint256"
)

// Address identifies an account. The empty string and ZeroAddress are
// both treated as the zero identity.
type Address string

// ZeroAddress is the null identity. Transfers and mints to it are rejected.
const ZeroAddress Address = "0x0000000000000000000000000000000000000000"

// IsZero returns true for the null identity.
func (a Address) IsZero() bool {
	return a == "" || a == ZeroAddress
}

// Op identifies the kind of a ledger mutation.
type Op string

const (
	OpTransfer     Op = "transfer"
	OpApprove      Op = "approve"
	OpTransferFrom Op = "transferFrom"
	OpMint         Op = "mint"
	OpBurn         Op = "burn"
)

// Event describes a successful ledger mutation, delivered to the
// ledger's notify hook.
type Event struct {
	Op     Op
	Symbol string
	From   Address
	To     Address
	Amount *uint256.Int
}

// Ledger is a fungible-token account book for one species.
// The owner identity is fixed at construction and is the only caller
// allowed to mint and burn.
type Ledger struct {
	name     string
	symbol   string
	decimals uint8
	owner    Address

	mu          sync.RWMutex
	totalSupply *uint256.Int
	balances    map[Address]*uint256.Int
	allowances  map[Address]map[Address]*uint256.Int

	notify func(Event)
}

// NewLedger creates an empty ledger owned by owner. Decimals is zero:
// units are indivisible.
func NewLedger(name, symbol string, owner Address) (*Ledger, error) {
	if owner.IsZero() {
		return nil, fmt.Errorf("%w: owner", ErrInvalidAddress)
	}
	return &Ledger{
		name:        name,
		symbol:      symbol,
		owner:       owner,
		totalSupply: uint256.NewInt(0),
		balances:    make(map[Address]*uint256.Int),
		allowances:  make(map[Address]map[Address]*uint256.Int),
	}, nil
}

// SetNotify installs a hook invoked after every successful mutation.
// Pass nil to remove it. The hook runs outside the ledger lock.
func (l *Ledger) SetNotify(fn func(Event)) {
	l.mu.Lock()
	l.notify = fn
	l.mu.Unlock()
}

// Name returns the ledger's display name.
func (l *Ledger) Name() string { return l.name }

// Symbol returns the ledger's short symbol.
func (l *Ledger) Symbol() string { return l.symbol }

// Decimals returns the unit precision. Always zero.
func (l *Ledger) Decimals() uint8 { return l.decimals }

// Owner returns the identity authorized to mint and burn.
func (l *Ledger) Owner() Address { return l.owner }

// TotalSupply returns a copy of the current total supply.
func (l *Ledger) TotalSupply() *uint256.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.totalSupply.Clone()
}

// BalanceOf returns a copy of the balance of addr. Unknown accounts
// hold zero.
func (l *Ledger) BalanceOf(addr Address) *uint256.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if b, ok := l.balances[addr]; ok {
		return b.Clone()
	}
	return uint256.NewInt(0)
}

// Allowance returns a copy of the amount spender may transfer on
// behalf of owner.
func (l *Ledger) Allowance(owner, spender Address) *uint256.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if m, ok := l.allowances[owner]; ok {
		if a, ok := m[spender]; ok {
			return a.Clone()
		}
	}
	return uint256.NewInt(0)
}

// Holders returns the number of accounts with a recorded balance.
func (l *Ledger) Holders() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.balances)
}

// Balances returns a snapshot of every non-zero balance.
func (l *Ledger) Balances() map[Address]*uint256.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make(map[Address]*uint256.Int, len(l.balances))
	for addr, b := range l.balances {
		out[addr] = b.Clone()
	}
	return out
}

// SumOfBalances returns the sum over all recorded balances. It always
// equals TotalSupply; exposed for invariant checking.
func (l *Ledger) SumOfBalances() *uint256.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	sum := uint256.NewInt(0)
	for _, b := range l.balances {
		sum.Add(sum, b)
	}
	return sum
}

// Transfer moves amount from the caller to `to`. Fails with
// ErrInvalidAddress for a zero destination and ErrInsufficientBalance
// when the caller holds less than amount.
func (l *Ledger) Transfer(caller, to Address, amount *uint256.Int) error {
	if to.IsZero() {
		return fmt.Errorf("%w: transfer to zero address", ErrInvalidAddress)
	}

	l.mu.Lock()
	from := l.balances[caller]
	if from == nil || from.Lt(amount) {
		l.mu.Unlock()
		return fmt.Errorf("%w: %s has %s of %s, need %s",
			ErrInsufficientBalance, caller, balanceString(from), l.symbol, amount.Dec())
	}
	l.debit(caller, amount)
	l.credit(to, amount)
	notify := l.notify
	l.mu.Unlock()

	if notify != nil {
		notify(Event{Op: OpTransfer, Symbol: l.symbol, From: caller, To: to, Amount: amount.Clone()})
	}
	return nil
}

// Approve sets (overwrites, never adds to) the allowance of spender
// over the caller's balance.
func (l *Ledger) Approve(caller, spender Address, amount *uint256.Int) error {
	if spender.IsZero() {
		return fmt.Errorf("%w: approve zero address", ErrInvalidAddress)
	}

	l.mu.Lock()
	m, ok := l.allowances[caller]
	if !ok {
		m = make(map[Address]*uint256.Int)
		l.allowances[caller] = m
	}
	m[spender] = amount.Clone()
	notify := l.notify
	l.mu.Unlock()

	if notify != nil {
		notify(Event{Op: OpApprove, Symbol: l.symbol, From: caller, To: spender, Amount: amount.Clone()})
	}
	return nil
}

// TransferFrom moves amount from `from` to `to` on the caller's
// allowance. Balance is checked before allowance, matching the
// ledger's error precedence.
func (l *Ledger) TransferFrom(caller, from, to Address, amount *uint256.Int) error {
	if to.IsZero() {
		return fmt.Errorf("%w: transfer to zero address", ErrInvalidAddress)
	}

	l.mu.Lock()
	src := l.balances[from]
	if src == nil || src.Lt(amount) {
		l.mu.Unlock()
		return fmt.Errorf("%w: %s has %s of %s, need %s",
			ErrInsufficientBalance, from, balanceString(src), l.symbol, amount.Dec())
	}
	allowance := l.allowanceLocked(from, caller)
	if allowance.Lt(amount) {
		l.mu.Unlock()
		return fmt.Errorf("%w: %s allowed %s of %s, need %s",
			ErrInsufficientAllowance, caller, allowance.Dec(), l.symbol, amount.Dec())
	}
	l.debit(from, amount)
	l.credit(to, amount)
	l.allowances[from][caller] = new(uint256.Int).Sub(allowance, amount)
	notify := l.notify
	l.mu.Unlock()

	if notify != nil {
		notify(Event{Op: OpTransferFrom, Symbol: l.symbol, From: from, To: to, Amount: amount.Clone()})
	}
	return nil
}

// Mint creates amount new units credited to `to`. Only the ledger owner
// may call it.
func (l *Ledger) Mint(caller, to Address, amount *uint256.Int) error {
	if caller != l.owner {
		return fmt.Errorf("%w: mint by %s", ErrUnauthorized, caller)
	}
	if to.IsZero() {
		return fmt.Errorf("%w: mint to zero address", ErrInvalidAddress)
	}

	l.mu.Lock()
	l.totalSupply = new(uint256.Int).Add(l.totalSupply, amount)
	l.credit(to, amount)
	notify := l.notify
	l.mu.Unlock()

	if notify != nil {
		notify(Event{Op: OpMint, Symbol: l.symbol, To: to, Amount: amount.Clone()})
	}
	return nil
}

// Burn destroys amount units held by `from`. Only the ledger owner may
// call it.
func (l *Ledger) Burn(caller, from Address, amount *uint256.Int) error {
	if caller != l.owner {
		return fmt.Errorf("%w: burn by %s", ErrUnauthorized, caller)
	}

	l.mu.Lock()
	src := l.balances[from]
	if src == nil || src.Lt(amount) {
		l.mu.Unlock()
		return fmt.Errorf("%w: %s has %s of %s, need %s",
			ErrInsufficientBalance, from, balanceString(src), l.symbol, amount.Dec())
	}
	l.debit(from, amount)
	l.totalSupply = new(uint256.Int).Sub(l.totalSupply, amount)
	notify := l.notify
	l.mu.Unlock()

	if notify != nil {
		notify(Event{Op: OpBurn, Symbol: l.symbol, From: from, Amount: amount.Clone()})
	}
	return nil
}

// debit subtracts amount from addr's balance. Caller holds the lock and
// has already verified sufficiency. Zeroed accounts are removed so
// Holders reflects live accounts only.
func (l *Ledger) debit(addr Address, amount *uint256.Int) {
	b := new(uint256.Int).Sub(l.balances[addr], amount)
	if b.IsZero() {
		delete(l.balances, addr)
	} else {
		l.balances[addr] = b
	}
}

// credit adds amount to addr's balance. Caller holds the lock.
func (l *Ledger) credit(addr Address, amount *uint256.Int) {
	if b, ok := l.balances[addr]; ok {
		l.balances[addr] = new(uint256.Int).Add(b, amount)
	} else {
		l.balances[addr] = amount.Clone()
	}
}

func (l *Ledger) allowanceLocked(owner, spender Address) *uint256.Int {
	if m, ok := l.allowances[owner]; ok {
		if a, ok := m[spender]; ok {
			return a
		}
	}
	return uint256.NewInt(0)
}

func balanceString(b *uint256.Int) string {
	if b == nil {
		return "0"
	}
	return b.Dec()
}
