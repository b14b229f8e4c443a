package domain

import "errors"

var (
	// Identifier errors
	ErrClientIDTooLarge   = errors.New("client id exceeds 35-bit budget")
	ErrCurrencyIDTooLarge = errors.New("currency id exceeds 16-bit budget")
	ErrAccountNumTooLarge = errors.New("account number exceeds 8-bit budget")
	ErrCheckDigitMismatch = errors.New("account id check digit mismatch")

	// Ledger errors (recoverable: state is fully rolled back before return)
	ErrUnknownAccount            = errors.New("account does not exist")
	ErrUnknownDestinationAccount = errors.New("destination account does not exist")
	ErrInsufficientFunds         = errors.New("insufficient funds or unknown account")

	// Transfer errors
	ErrSameAccount   = errors.New("cannot transfer to same account")
	ErrInvalidAmount = errors.New("amount must be positive")
	ErrBadSignature  = errors.New("transfer signature mismatch")
	ErrUnknownRate   = errors.New("no conversion rate for currency pair")
)
