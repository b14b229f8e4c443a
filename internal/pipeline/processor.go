package pipeline

import (
	"strconv"

	"github.com/rs/zerolog"

	"github.com/iho/gopayments/internal/domain"
	"github.com/iho/gopayments/internal/infrastructure/metrics"
	"github.com/iho/gopayments/internal/ledger"
	"github.com/iho/gopayments/internal/rates"
	"github.com/iho/gopayments/internal/sign"
)

// Processor applies commands against the ledger, rate table and fee
// schedule. It runs on the pipeline's single processing goroutine and owns
// the per-currency treasury of collected fees.
type Processor struct {
	ledger           *ledger.Ledger
	rates            *rates.RateTable
	fees             *rates.FeeSchedule
	treasury         map[uint16]int64
	verifySignatures bool
	log              zerolog.Logger
	metrics          *metrics.Metrics
}

// NewProcessor wires a processor over its owned state.
func NewProcessor(
	l *ledger.Ledger,
	rateTable *rates.RateTable,
	fees *rates.FeeSchedule,
	verifySignatures bool,
	log zerolog.Logger,
	m *metrics.Metrics,
) *Processor {
	return &Processor{
		ledger:           l,
		rates:            rateTable,
		fees:             fees,
		treasury:         make(map[uint16]int64),
		verifySignatures: verifySignatures,
		log:              log,
		metrics:          m,
	}
}

func (pr *Processor) apply(cmd *Command, h ResponseHandler) ResultCode {
	code := pr.applyCommand(cmd, h)

	pr.metrics.CommandsProcessed.WithLabelValues(cmd.kind.String(), code.String()).Inc()
	if code != ResultSuccess {
		pr.metrics.CommandErrors.WithLabelValues(code.String()).Inc()
	}

	return code
}

func (pr *Processor) applyCommand(cmd *Command, h ResponseHandler) ResultCode {
	switch cmd.kind {
	case CmdOpenAccount:
		pr.ledger.OpenAccount(cmd.account, cmd.secret)
		pr.metrics.AccountsOpened.Inc()
		return ResultSuccess

	case CmdDeposit:
		if err := pr.ledger.Deposit(cmd.account, cmd.amount); err != nil {
			return resultCodeOf(err)
		}
		pr.emitBalanceUpdate(h, cmd.account, cmd.amount)
		return ResultSuccess

	case CmdWithdrawal:
		if err := pr.ledger.Withdraw(cmd.account, cmd.amount); err != nil {
			return resultCodeOf(err)
		}
		pr.emitBalanceUpdate(h, cmd.account, -cmd.amount)
		return ResultSuccess

	case CmdBalanceCorrection:
		pr.ledger.BalanceCorrection(cmd.account, cmd.amount)
		pr.emitBalanceUpdate(h, cmd.account, cmd.amount)
		return ResultSuccess

	case CmdTransferLocally:
		if err := pr.ledger.TransferLocally(cmd.account, cmd.account2, cmd.amount, cmd.amount2); err != nil {
			return resultCodeOf(err)
		}
		pr.emitBalanceUpdate(h, cmd.account, -cmd.amount)
		pr.emitBalanceUpdate(h, cmd.account2, cmd.amount2)
		return ResultSuccess

	case CmdTransfer:
		if err := pr.ledger.Transfer(cmd.account, cmd.account2, cmd.amount); err != nil {
			return resultCodeOf(err)
		}
		pr.emitBalanceUpdate(h, cmd.account, -cmd.amount)
		pr.emitBalanceUpdate(h, cmd.account2, cmd.amount)
		return ResultSuccess

	case CmdTransferOrder:
		return pr.applyTransferOrder(cmd, h)

	case CmdCloseAccount:
		pr.ledger.CloseAccount(cmd.account)
		pr.ledger.DeleteSecret(cmd.account)
		pr.metrics.AccountsClosed.Inc()
		return ResultSuccess

	case CmdAdjustFee:
		pr.fees.Adjust(cmd.rate, cmd.feeLimits)
		return ResultSuccess

	case CmdAdjustRate:
		pr.rates.Update(cmd.currency, uint16(cmd.data), cmd.rate)
		return ResultSuccess

	case CmdControl:
		// no ledger effect: completion implies completion of all
		// prior commands
		return ResultSuccess

	default:
		pr.log.Error().Uint8("kind", uint8(cmd.kind)).Msg("unknown command kind dropped")
		return ResultInvalidAmount
	}
}

// applyTransferOrder converts a signed order into two concrete amounts and
// commits them through TransferLocally. The order amount may be denominated
// in a currency different from both accounts; fees are charged in the
// destination currency and accumulated in the treasury.
func (pr *Processor) applyTransferOrder(cmd *Command, h ResponseHandler) ResultCode {
	order := &domain.TransferOrder{
		Source:      cmd.account,
		Destination: cmd.account2,
		Amount:      cmd.amount,
		Currency:    cmd.currency,
		Type:        cmd.transferType,
		Signature:   cmd.signature,
	}

	if err := order.Validate(); err != nil {
		return resultCodeOf(err)
	}

	if pr.verifySignatures {
		if err := sign.Verify(order, pr.ledger.Secret(order.Source)); err != nil {
			pr.log.Warn().Int64("src", int64(order.Source)).Msg("transfer order rejected: bad signature")
			return ResultBadSignature
		}
	}

	srcCurrency := order.Source.Currency()
	dstCurrency := order.Destination.Currency()

	var amountSrc, amountDst, fee int64

	switch order.Type {
	case domain.SourceExact:
		// amount denominates what leaves the source; the fee comes
		// out of what the destination receives
		var err error
		amountSrc, err = pr.rates.Convert(order.Amount, order.Currency, srcCurrency)
		if err != nil {
			return resultCodeOf(err)
		}

		gross, err := pr.rates.Convert(order.Amount, order.Currency, dstCurrency)
		if err != nil {
			return resultCodeOf(err)
		}

		fee = pr.fees.Fee(dstCurrency, gross)
		amountDst = gross - fee

	case domain.DestinationExact:
		// amount denominates what the destination must receive; the
		// source covers it plus the fee
		var err error
		amountDst, err = pr.rates.Convert(order.Amount, order.Currency, dstCurrency)
		if err != nil {
			return resultCodeOf(err)
		}

		fee = pr.fees.Fee(dstCurrency, amountDst)

		amountSrc, err = pr.rates.Convert(amountDst+fee, dstCurrency, srcCurrency)
		if err != nil {
			return resultCodeOf(err)
		}

	default:
		return ResultInvalidAmount
	}

	if amountSrc <= 0 || amountDst <= 0 {
		return ResultInvalidAmount
	}

	if err := pr.ledger.TransferLocally(order.Source, order.Destination, amountSrc, amountDst); err != nil {
		return resultCodeOf(err)
	}

	pr.treasury[dstCurrency] += fee
	pr.metrics.TransfersProcessed.Inc()
	pr.metrics.FeesCollected.WithLabelValues(strconv.Itoa(int(dstCurrency))).Add(float64(fee))

	pr.emitBalanceUpdate(h, order.Source, -amountSrc)
	pr.emitBalanceUpdate(h, order.Destination, amountDst)

	return ResultSuccess
}

func (pr *Processor) emitBalanceUpdate(h ResponseHandler, account domain.AccountID, diff int64) {
	newBalance, err := pr.ledger.Balance(account)
	if err != nil {
		// the operation just committed, the entry must exist
		panic(&domain.InvariantViolation{Op: "balanceUpdateEvent", Account: account, Amount: diff})
	}
	h.BalanceUpdateEvent(account, diff, newBalance)
}

// CollectedFees returns the treasury balance for one currency. Only safe on
// the processing goroutine; external readers use Pipeline.CollectedFees.
func (pr *Processor) CollectedFees(currency uint16) int64 {
	return pr.treasury[currency]
}

func resultCodeOf(err error) ResultCode {
	switch err {
	case domain.ErrInsufficientFunds:
		return ResultInsufficientFunds
	case domain.ErrUnknownAccount:
		return ResultUnknownAccount
	case domain.ErrUnknownDestinationAccount:
		return ResultUnknownDestinationAccount
	case domain.ErrSameAccount:
		return ResultSameAccount
	case domain.ErrInvalidAmount:
		return ResultInvalidAmount
	case domain.ErrBadSignature:
		return ResultBadSignature
	case domain.ErrUnknownRate:
		return ResultUnknownRate
	default:
		return ResultInvalidAmount
	}
}
