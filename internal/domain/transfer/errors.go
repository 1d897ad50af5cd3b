package transfer

import "errors"

var (
	// ErrInvalidParams signals a transfer request missing fields or with a
	// non-positive amount.
	ErrInvalidParams = errors.New("transfer requires sender account, shareable id and a positive amount")

	// ErrInvalidShareableID signals a shareable id that does not decrypt.
	ErrInvalidShareableID = errors.New("invalid shareable id")

	// ErrReceiverNotFound signals a shareable id pointing at no linked account.
	ErrReceiverNotFound = errors.New("receiving account not found")

	// ErrSameAccount signals a transfer from an account to itself.
	ErrSameAccount = errors.New("cannot transfer to the same account")

	// ErrLedgerInconsistent signals a transfer that moved money on the rail
	// but could not be recorded locally. The feeds are missing an entry
	// until it is reconciled by hand.
	ErrLedgerInconsistent = errors.New("transfer completed but could not be recorded")
)
