package ledger

import (
	"errors"
	"math"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/gopayments/internal/domain"
)

func newTestLedger() *Ledger {
	return New(zerolog.Nop())
}

func mustAccount(t *testing.T, clientID int64, currencyID int) domain.AccountID {
	t.Helper()
	id, err := domain.NewAccountID(clientID, currencyID, 0)
	require.NoError(t, err)
	return id
}

func TestOpenAccountRoundTrip(t *testing.T) {
	t.Parallel()

	l := newTestLedger()
	acc := mustAccount(t, 1, 1)

	l.OpenAccount(acc, 424242)

	assert.True(t, l.Exists(acc))
	assert.True(t, l.HasZeroBalance(acc))
	assert.EqualValues(t, 424242, l.Secret(acc))

	balance, err := l.Balance(acc)
	require.NoError(t, err)
	assert.Zero(t, balance)
}

func TestDepositUnknownAccount(t *testing.T) {
	t.Parallel()

	l := newTestLedger()
	acc := mustAccount(t, 2, 1)

	require.False(t, l.Exists(acc))

	err := l.Deposit(acc, 500)
	assert.ErrorIs(t, err, domain.ErrUnknownAccount)

	// no spurious balance may be left behind
	assert.False(t, l.Exists(acc))
	_, err = l.Balance(acc)
	assert.ErrorIs(t, err, domain.ErrUnknownAccount)
}

func TestWithdrawNeverGoesNegative(t *testing.T) {
	t.Parallel()

	l := newTestLedger()
	acc := mustAccount(t, 3, 1)

	l.OpenAccount(acc, 1)
	require.NoError(t, l.Deposit(acc, 100))

	err := l.Withdraw(acc, 150)
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)

	balance, err := l.Balance(acc)
	require.NoError(t, err)
	assert.EqualValues(t, 100, balance)
}

func TestWithdrawUnknownAccount(t *testing.T) {
	t.Parallel()

	l := newTestLedger()
	acc := mustAccount(t, 4, 1)

	err := l.Withdraw(acc, 10)
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)
	assert.False(t, l.Exists(acc))
}

// The concrete open/deposit/withdraw scenario from the design review.
func TestDepositWithdrawScenario(t *testing.T) {
	t.Parallel()

	l := newTestLedger()
	acc := mustAccount(t, 5, 1)

	l.OpenAccount(acc, 99)

	require.NoError(t, l.Deposit(acc, 100))
	balance, err := l.Balance(acc)
	require.NoError(t, err)
	assert.EqualValues(t, 100, balance)

	assert.ErrorIs(t, l.Withdraw(acc, 150), domain.ErrInsufficientFunds)
	balance, err = l.Balance(acc)
	require.NoError(t, err)
	assert.EqualValues(t, 100, balance)

	require.NoError(t, l.Withdraw(acc, 100))
	balance, err = l.Balance(acc)
	require.NoError(t, err)
	assert.Zero(t, balance)
	assert.True(t, l.HasZeroBalance(acc))
}

func TestTransferLocallyConservation(t *testing.T) {
	t.Parallel()

	l := newTestLedger()
	src := mustAccount(t, 6, 1)
	dst := mustAccount(t, 7, 2)

	l.OpenAccount(src, 1)
	l.OpenAccount(dst, 2)
	require.NoError(t, l.Deposit(src, 1000))
	require.NoError(t, l.Deposit(dst, 50))

	require.NoError(t, l.TransferLocally(src, dst, 300, 300))

	srcBalance, err := l.Balance(src)
	require.NoError(t, err)
	dstBalance, err := l.Balance(dst)
	require.NoError(t, err)

	assert.EqualValues(t, 700, srcBalance)
	assert.EqualValues(t, 350, dstBalance)
	assert.EqualValues(t, 1050, srcBalance+dstBalance, "total must be conserved")
}

func TestTransferLocallyNSFLeavesDestinationUntouched(t *testing.T) {
	t.Parallel()

	l := newTestLedger()
	src := mustAccount(t, 8, 1)
	dst := mustAccount(t, 9, 1)

	l.OpenAccount(src, 1)
	l.OpenAccount(dst, 2)
	require.NoError(t, l.Deposit(src, 100))

	err := l.TransferLocally(src, dst, 500, 500)
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)

	srcBalance, err := l.Balance(src)
	require.NoError(t, err)
	assert.EqualValues(t, 100, srcBalance)
	assert.True(t, l.HasZeroBalance(dst))
}

func TestTransferLocallyUnknownDestinationFullRollback(t *testing.T) {
	t.Parallel()

	l := newTestLedger()
	src := mustAccount(t, 10, 1)
	dst := mustAccount(t, 11, 1)

	l.OpenAccount(src, 1)
	require.NoError(t, l.Deposit(src, 400))

	err := l.TransferLocally(src, dst, 250, 250)
	assert.ErrorIs(t, err, domain.ErrUnknownDestinationAccount)

	srcBalance, err := l.Balance(src)
	require.NoError(t, err)
	assert.EqualValues(t, 400, srcBalance, "source debit must be rolled back exactly")
	assert.False(t, l.Exists(dst), "phantom destination entry must be deleted")
}

func TestTransferDeprecated(t *testing.T) {
	t.Parallel()

	l := newTestLedger()
	from := mustAccount(t, 12, 1)
	to := mustAccount(t, 13, 1)

	l.OpenAccount(from, 1)
	l.OpenAccount(to, 2)
	require.NoError(t, l.Deposit(from, 100))

	require.NoError(t, l.Transfer(from, to, 60))

	fromBalance, err := l.Balance(from)
	require.NoError(t, err)
	toBalance, err := l.Balance(to)
	require.NoError(t, err)
	assert.EqualValues(t, 40, fromBalance)
	assert.EqualValues(t, 60, toBalance)

	t.Run("unknown destination rolls back withdrawal", func(t *testing.T) {
		ghost := mustAccount(t, 14, 1)

		err := l.Transfer(from, ghost, 10)
		assert.ErrorIs(t, err, domain.ErrUnknownAccount)

		fromBalance, err := l.Balance(from)
		require.NoError(t, err)
		assert.EqualValues(t, 40, fromBalance)
		assert.False(t, l.Exists(ghost))
	})
}

func TestBalanceCorrection(t *testing.T) {
	t.Parallel()

	l := newTestLedger()
	acc := mustAccount(t, 15, 1)

	l.OpenAccount(acc, 1)
	l.BalanceCorrection(acc, 777)

	balance, err := l.Balance(acc)
	require.NoError(t, err)
	assert.EqualValues(t, 777, balance)

	// negative corrections are allowed down to zero
	l.BalanceCorrection(acc, -777)
	assert.True(t, l.HasZeroBalance(acc))
}

func TestDepositOverflowPanics(t *testing.T) {
	t.Parallel()

	l := newTestLedger()
	acc := mustAccount(t, 16, 1)

	l.OpenAccount(acc, 1)
	require.NoError(t, l.Deposit(acc, math.MaxInt64/2))

	defer func() {
		r := recover()
		require.NotNil(t, r, "expected InvariantViolation panic")

		var violation *domain.InvariantViolation
		require.True(t, errors.As(r.(error), &violation))
		assert.Equal(t, "deposit", violation.Op)
	}()

	// second huge credit wraps the encoded value past the valid range
	_ = l.Deposit(acc, math.MaxInt64/2+2)
}

func TestBalanceCorrectionOnUnknownAccountPanics(t *testing.T) {
	t.Parallel()

	l := newTestLedger()
	acc := mustAccount(t, 17, 1)

	defer func() {
		r := recover()
		require.NotNil(t, r, "expected InvariantViolation panic")
	}()

	// a negative correction on a missing entry leaves encoded >= 0
	l.BalanceCorrection(acc, -5)
}

func TestCloseAccount(t *testing.T) {
	t.Parallel()

	l := newTestLedger()
	acc := mustAccount(t, 18, 1)

	l.OpenAccount(acc, 31337)
	require.True(t, l.Exists(acc))

	l.CloseAccount(acc)
	assert.False(t, l.Exists(acc))

	// secret survives until the orchestration removes it
	assert.EqualValues(t, 31337, l.Secret(acc))
	l.DeleteSecret(acc)
	assert.Zero(t, l.Secret(acc))
}

func TestConservationAcrossMixedOperations(t *testing.T) {
	t.Parallel()

	l := newTestLedger()

	accounts := make([]domain.AccountID, 8)
	var seeded int64
	for i := range accounts {
		accounts[i] = mustAccount(t, int64(100+i), 1+i%3)
		l.OpenAccount(accounts[i], int64(i))
		require.NoError(t, l.Deposit(accounts[i], int64(1000*(i+1))))
		seeded += int64(1000 * (i + 1))
	}

	// a deterministic mix of transfers, some of which fail on NSF
	for i := 0; i < 100; i++ {
		src := accounts[i%len(accounts)]
		dst := accounts[(i*3+1)%len(accounts)]
		if src == dst {
			continue
		}
		amount := int64(1 + i*37)

		err := l.TransferLocally(src, dst, amount, amount)
		if err != nil {
			require.ErrorIs(t, err, domain.ErrInsufficientFunds)
		}
	}

	var total int64
	for _, acc := range accounts {
		balance, err := l.Balance(acc)
		require.NoError(t, err)
		require.GreaterOrEqual(t, balance, int64(0))
		total += balance
	}
	assert.Equal(t, seeded, total, "closed system must conserve the seed total")
}
