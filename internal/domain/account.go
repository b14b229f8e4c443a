package domain

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// Bit layout of an AccountID:
//
//	(clientID << 28) | (currencyID << 12) | (accountNum << 4) | checkDigit
//
// clientID occupies 35 bits, currencyID 16 bits, accountNum 8 bits and the
// check digit the low 4 bits, so a valid identifier always fits in a positive
// int64 and is never zero (zero is the ledger's "no entry" sentinel).
const (
	MaxClientID   = 1<<35 - 1
	MaxCurrencyID = 1<<16 - 1
	MaxAccountNum = 1<<8 - 1

	clientIDShift   = 28
	currencyIDShift = 12
	accountNumShift = 4
	checkDigitMask  = 0xF
)

// AccountID is a packed 64-bit account identifier. It is the only form in
// which accounts are referenced across the pipeline boundary.
type AccountID int64

// NewAccountID packs a client id, currency id and sub-account number into an
// identifier with a self-checking digit. It fails if any field exceeds its
// bit budget.
func NewAccountID(clientID int64, currencyID, accountNum int) (AccountID, error) {
	if clientID < 0 || clientID > MaxClientID {
		return 0, ErrClientIDTooLarge
	}
	if currencyID < 0 || currencyID > MaxCurrencyID {
		return 0, ErrCurrencyIDTooLarge
	}
	if accountNum < 0 || accountNum > MaxAccountNum {
		return 0, ErrAccountNumTooLarge
	}

	raw := clientID<<clientIDShift | int64(currencyID)<<currencyIDShift | int64(accountNum)<<accountNumShift
	return AccountID(raw | checkDigit(raw)), nil
}

// Currency extracts the currency id from bits [12:27] without any lookup.
func (a AccountID) Currency() uint16 {
	return uint16(a >> currencyIDShift)
}

// ClientID extracts the owning client id.
func (a AccountID) ClientID() int64 {
	return int64(a) >> clientIDShift
}

// AccountNum extracts the sub-account number.
func (a AccountID) AccountNum() uint8 {
	return uint8(a >> accountNumShift)
}

// Verify recomputes the check digit and reports whether the identifier is
// intact. The digit is a corruption detector, not a cryptographic signature;
// consumers receiving identifiers from untrusted channels should reject
// mismatches before using them as ledger keys.
func (a AccountID) Verify() error {
	raw := int64(a) &^ checkDigitMask
	if int64(a)&checkDigitMask != checkDigit(raw) {
		return ErrCheckDigitMismatch
	}
	return nil
}

func checkDigit(raw int64) int64 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(raw))
	return int64(xxhash.Sum64(buf[:]) & checkDigitMask)
}
