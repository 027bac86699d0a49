package token

import "errors"

var (
	// ErrUnauthorized is returned when a caller other than the ledger
	// owner invokes an owner-gated operation.
	ErrUnauthorized = errors.New("token: caller is not the ledger owner")

	// ErrInsufficientBalance is returned when a debit exceeds the
	// source balance.
	ErrInsufficientBalance = errors.New("token: insufficient balance")

	// ErrInsufficientAllowance is returned when a delegated transfer
	// exceeds the spender's allowance.
	ErrInsufficientAllowance = errors.New("token: insufficient allowance")

	// ErrInvalidAddress is returned when the zero address is supplied
	// where a real identity is required.
	ErrInvalidAddress = errors.New("token: invalid address")
)
