// Package ledger implements the in-memory accounting core: a single mapping
// from account identifier to an encoded signed balance, plus a parallel
// secret store populated at account-open time.
//
// A balance b is stored as e = -1 - b, so that the map's natural "missing"
// value 0 doubles as "account not opened" and every valid entry satisfies
// e <= -1. Existence checks, insufficient-funds detection and overflow
// detection all collapse into one sign test on the result of a single
// add-to-value step, with no read-then-write race window.
package ledger

import (
	"github.com/rs/zerolog"

	"github.com/iho/gopayments/internal/domain"
)

// MaxBalance is the documented safe bound for any single balance or
// operation amount. Amounts at or below this bound leave enough headroom in
// the encoded int64 domain that a legitimate credit can never wrap the
// encoded value past the 0 boundary.
const MaxBalance = 1 << 62

// Ledger owns the balance and secret maps. It is a single-writer structure:
// the surrounding pipeline serializes all access, so no internal locking is
// performed. Callers that want concurrent writers must wrap it themselves.
type Ledger struct {
	balances map[domain.AccountID]int64
	secrets  map[domain.AccountID]int64
	log      zerolog.Logger
}

// New creates an empty ledger.
func New(log zerolog.Logger) *Ledger {
	return &Ledger{
		balances: make(map[domain.AccountID]int64),
		secrets:  make(map[domain.AccountID]int64),
		log:      log,
	}
}

// addToValue adds delta to the stored value for account, treating an absent
// key as 0, and returns the resulting value. A zero result deletes the key,
// keeping "value 0" and "absent" the same observable state.
func (l *Ledger) addToValue(account domain.AccountID, delta int64) int64 {
	v := l.balances[account] + delta
	if v == 0 {
		delete(l.balances, account)
	} else {
		l.balances[account] = v
	}
	return v
}

// OpenAccount unconditionally sets the encoded balance to -1 (balance 0) and
// records the secret, overwriting any prior entry. Callers must not reuse
// identifiers while still open.
func (l *Ledger) OpenAccount(account domain.AccountID, secret int64) {
	l.balances[account] = -1
	l.secrets[account] = secret
}

// Deposit credits amount (expected > 0) to the account.
// Returns ErrUnknownAccount, with the phantom entry removed, if the account
// was never opened. Panics with InvariantViolation if the credit wrapped the
// encoded value out of its valid range: crediting can only produce an
// invalid state through arithmetic overflow.
func (l *Ledger) Deposit(account domain.AccountID, amount int64) error {
	encoded := l.addToValue(account, -amount)

	if encoded >= 0 {
		panic(&domain.InvariantViolation{Op: "deposit", Account: account, Amount: amount, Encoded: encoded})
	}

	// previous value was the missing sentinel 0
	if encoded == -amount {
		l.log.Debug().Int64("account", int64(account)).Msg("deposit failed: unknown account")
		delete(l.balances, account)
		return domain.ErrUnknownAccount
	}

	return nil
}

// Withdraw debits amount (expected > 0) from the account.
// A non-negative encoded result means either the account does not exist or
// funds are insufficient; the two are indistinguishable from the result
// alone by design. The add is reverted and ErrInsufficientFunds returned.
func (l *Ledger) Withdraw(account domain.AccountID, amount int64) error {
	encoded := l.addToValue(account, amount)

	if encoded >= 0 {
		l.log.Debug().
			Int64("account", int64(account)).
			Int64("amount", amount).
			Int64("balance", -1-l.balances[account]).
			Msg("withdrawal failed: NSF or unknown account")

		l.addToValue(account, -amount)
		return domain.ErrInsufficientFunds
	}

	return nil
}

// BalanceCorrection applies a trusted, pre-validated administrative
// adjustment using the same delta convention as Deposit, but with no
// unknown-account rollback branch: the caller is responsible for invoking it
// only on existing accounts within overflow-safe ranges. A violated
// post-condition panics.
func (l *Ledger) BalanceCorrection(account domain.AccountID, amount int64) {
	encoded := l.addToValue(account, -amount)

	if encoded >= 0 {
		panic(&domain.InvariantViolation{Op: "balanceCorrection", Account: account, Amount: amount, Encoded: encoded})
	}
}

// TransferLocally composes a withdrawal-shaped debit of amountSrc on src
// with a deposit-shaped credit of amountDst on dst. The two amounts may
// differ by an exchange rate applied upstream.
//
// On any recoverable failure the pre-call state is restored exactly: a debit
// that fails aborts before dst is touched, and an unknown destination rolls
// back both the phantom dst entry and the committed src debit. Money is
// never debited without being credited except via the panic path, which by
// contract is a crash-worthy invariant breach, not a business error.
func (l *Ledger) TransferLocally(src, dst domain.AccountID, amountSrc, amountDst int64) error {
	encodedSrc := l.addToValue(src, amountSrc)

	if encodedSrc >= 0 {
		l.log.Debug().
			Int64("src", int64(src)).
			Int64("amount", amountSrc).
			Msg("transfer debit failed: NSF or unknown account")

		l.addToValue(src, -amountSrc)
		return domain.ErrInsufficientFunds
	}

	encodedDst := l.addToValue(dst, -amountDst)

	if encodedDst >= 0 {
		// The src debit has already committed and no safe automatic
		// remedy exists at this layer.
		panic(&domain.InvariantViolation{Op: "transferLocally", Account: dst, Amount: amountDst, Encoded: encodedDst})
	}

	if encodedDst == -amountDst {
		l.log.Debug().Int64("dst", int64(dst)).Msg("transfer credit failed: unknown account")

		delete(l.balances, dst)
		l.addToValue(src, -amountSrc)
		return domain.ErrUnknownDestinationAccount
	}

	return nil
}

// Transfer is the deprecated equal-currency convenience operation. It
// composes a withdrawal and a deposit with no rollback asymmetry handling
// beyond what each primitive already provides.
//
// Deprecated: use TransferLocally with upstream-converted amounts.
func (l *Ledger) Transfer(from, to domain.AccountID, amount int64) error {
	if err := l.Withdraw(from, amount); err != nil {
		return err
	}

	if err := l.Deposit(to, amount); err != nil {
		l.addToValue(from, -amount)
		return err
	}

	return nil
}

// Balance returns the true balance, or ErrUnknownAccount when no entry
// exists.
func (l *Ledger) Balance(account domain.AccountID) (int64, error) {
	encoded := l.balances[account]
	if encoded == 0 {
		return 0, domain.ErrUnknownAccount
	}
	return -1 - encoded, nil
}

// Exists reports whether the account has an entry.
func (l *Ledger) Exists(account domain.AccountID) bool {
	return l.balances[account] != 0
}

// HasZeroBalance reports whether the account is open with a zero balance.
func (l *Ledger) HasZeroBalance(account domain.AccountID) bool {
	return l.balances[account] == -1
}

// CloseAccount deletes the ledger entry. It does not validate zero balance
// (callers must check HasZeroBalance first if closing with a non-zero
// balance must be disallowed) and does not remove the secret: that is the
// closing orchestration's job, via DeleteSecret.
func (l *Ledger) CloseAccount(account domain.AccountID) {
	delete(l.balances, account)
}

// DeleteSecret removes the credential for a closed account.
func (l *Ledger) DeleteSecret(account domain.AccountID) {
	delete(l.secrets, account)
}

// Secret returns the credential recorded at account-open time. The zero
// value is assumed never to be handed out as a valid secret.
func (l *Ledger) Secret(account domain.AccountID) int64 {
	return l.secrets[account]
}

// Size returns the number of open accounts.
func (l *Ledger) Size() int {
	return len(l.balances)
}
