// Package pipeline is the order-preserving command engine between drivers
// and the ledger. All commands are applied by one processing goroutine in
// submission order, and results are delivered to a single response handler
// in application order. Those two guarantees are what the correlation
// barrier and every rollback argument in the ledger are built on: no
// reordering, no speculative execution of later commands before earlier ones
// complete.
package pipeline

import (
	"github.com/rs/zerolog"

	"github.com/iho/gopayments/internal/domain"
	"github.com/iho/gopayments/internal/infrastructure/metrics"
	"github.com/iho/gopayments/internal/ledger"
	"github.com/iho/gopayments/internal/rates"
)

// Config assembles a pipeline.
type Config struct {
	Ledger           *ledger.Ledger
	Rates            *rates.RateTable
	Fees             *rates.FeeSchedule
	Handler          ResponseHandler
	Logger           zerolog.Logger
	Metrics          *metrics.Metrics
	BufferSize       int
	VerifySignatures bool
}

// Pipeline accepts commands from any goroutine and applies them on exactly
// one processing goroutine.
type Pipeline struct {
	commands  chan Command
	processor *Processor
	handler   ResponseHandler
	log       zerolog.Logger
	metrics   *metrics.Metrics
	done      chan struct{}
}

// New creates a stopped pipeline; call Start before submitting.
func New(cfg Config) *Pipeline {
	if cfg.BufferSize == 0 {
		cfg.BufferSize = 1 << 16
	}

	return &Pipeline{
		commands:  make(chan Command, cfg.BufferSize),
		processor: NewProcessor(cfg.Ledger, cfg.Rates, cfg.Fees, cfg.VerifySignatures, cfg.Logger, cfg.Metrics),
		handler:   cfg.Handler,
		log:       cfg.Logger,
		metrics:   cfg.Metrics,
		done:      make(chan struct{}),
	}
}

// Start launches the processing goroutine.
func (p *Pipeline) Start() {
	go p.run()
}

// Stop closes the intake and waits until every already-submitted command has
// been applied and its result delivered.
func (p *Pipeline) Stop() {
	close(p.commands)
	<-p.done
}

func (p *Pipeline) run() {
	defer close(p.done)

	for cmd := range p.commands {
		p.metrics.PipelineDepth.Set(float64(len(p.commands)))

		if cmd.kind == cmdQuery {
			cmd.reply <- p.answerQuery(&cmd)
			continue
		}

		code := p.processor.apply(&cmd, p.handler)
		p.handler.CommandResult(cmd.timestamp, cmd.correlationID, code, &cmd)
	}
}

func (p *Pipeline) answerQuery(cmd *Command) queryReply {
	switch cmd.query {
	case queryBalance:
		balance, err := p.processor.ledger.Balance(cmd.account)
		return queryReply{value: balance, err: err}
	case queryExists:
		return queryReply{exists: p.processor.ledger.Exists(cmd.account)}
	case querySecret:
		return queryReply{value: p.processor.ledger.Secret(cmd.account)}
	case queryFees:
		return queryReply{value: p.processor.CollectedFees(cmd.currency)}
	default:
		return queryReply{err: domain.ErrInvalidAmount}
	}
}

// OpenAccount submits an account-open command.
func (p *Pipeline) OpenAccount(timestamp, correlationID int64, account domain.AccountID, secret int64) {
	p.commands <- Command{kind: CmdOpenAccount, timestamp: timestamp, correlationID: correlationID, account: account, secret: secret}
}

// Deposit submits a credit of amount to account.
func (p *Pipeline) Deposit(timestamp, correlationID int64, account domain.AccountID, amount int64) {
	p.commands <- Command{kind: CmdDeposit, timestamp: timestamp, correlationID: correlationID, account: account, amount: amount}
}

// Withdrawal submits a debit of amount from account.
func (p *Pipeline) Withdrawal(timestamp, correlationID int64, account domain.AccountID, amount int64) {
	p.commands <- Command{kind: CmdWithdrawal, timestamp: timestamp, correlationID: correlationID, account: account, amount: amount}
}

// BalanceCorrection submits a trusted administrative adjustment.
func (p *Pipeline) BalanceCorrection(timestamp, correlationID int64, account domain.AccountID, amount int64) {
	p.commands <- Command{kind: CmdBalanceCorrection, timestamp: timestamp, correlationID: correlationID, account: account, amount: amount}
}

// TransferLocally submits a pre-converted two-leg transfer.
func (p *Pipeline) TransferLocally(timestamp, correlationID int64, src, dst domain.AccountID, amountSrc, amountDst int64) {
	p.commands <- Command{kind: CmdTransferLocally, timestamp: timestamp, correlationID: correlationID, account: src, account2: dst, amount: amountSrc, amount2: amountDst}
}

// Transfer submits the deprecated equal-currency transfer.
//
// Deprecated: use SubmitTransferOrder or TransferLocally.
func (p *Pipeline) Transfer(timestamp, correlationID int64, from, to domain.AccountID, amount int64) {
	p.commands <- Command{kind: CmdTransfer, timestamp: timestamp, correlationID: correlationID, account: from, account2: to, amount: amount}
}

// SubmitTransferOrder submits a signed, possibly cross-currency order.
func (p *Pipeline) SubmitTransferOrder(timestamp, correlationID int64, order *domain.TransferOrder) {
	p.commands <- Command{
		kind:          CmdTransferOrder,
		timestamp:     timestamp,
		correlationID: correlationID,
		account:       order.Source,
		account2:      order.Destination,
		amount:        order.Amount,
		currency:      order.Currency,
		transferType:  order.Type,
		signature:     order.Signature,
	}
}

// CloseAccount submits an account-close command.
func (p *Pipeline) CloseAccount(timestamp, correlationID int64, account domain.AccountID) {
	p.commands <- Command{kind: CmdCloseAccount, timestamp: timestamp, correlationID: correlationID, account: account}
}

// AdjustFee submits a fee-schedule replacement.
func (p *Pipeline) AdjustFee(timestamp, correlationID int64, feeRate float64, limits map[uint16]rates.FeeBounds) {
	p.commands <- Command{kind: CmdAdjustFee, timestamp: timestamp, correlationID: correlationID, rate: feeRate, feeLimits: limits}
}

// AdjustCurrencyRate submits a conversion-rate update for one pair.
func (p *Pipeline) AdjustCurrencyRate(timestamp, correlationID int64, from, to uint16, rate float64) {
	p.commands <- Command{kind: CmdAdjustRate, timestamp: timestamp, correlationID: correlationID, currency: from, data: int64(to), rate: rate}
}

// Control submits a barrier checkpoint command carrying an opaque
// instruction. Its result is delivered only after every previously submitted
// command has been fully applied.
func (p *Pipeline) Control(timestamp, correlationID, instruction int64) {
	p.commands <- Command{kind: CmdControl, timestamp: timestamp, correlationID: correlationID, data: instruction}
}

// Balance answers a read query in submission order.
func (p *Pipeline) Balance(account domain.AccountID) (int64, error) {
	reply := p.ask(Command{kind: cmdQuery, query: queryBalance, account: account})
	return reply.value, reply.err
}

// AccountExists answers a read query in submission order.
func (p *Pipeline) AccountExists(account domain.AccountID) bool {
	return p.ask(Command{kind: cmdQuery, query: queryExists, account: account}).exists
}

// Secret answers a read query in submission order.
func (p *Pipeline) Secret(account domain.AccountID) int64 {
	return p.ask(Command{kind: cmdQuery, query: querySecret, account: account}).value
}

// CollectedFees answers the treasury balance for one currency.
func (p *Pipeline) CollectedFees(currency uint16) int64 {
	return p.ask(Command{kind: cmdQuery, query: queryFees, currency: currency}).value
}

func (p *Pipeline) ask(cmd Command) queryReply {
	cmd.reply = make(chan queryReply, 1)
	p.commands <- cmd
	return <-cmd.reply
}
