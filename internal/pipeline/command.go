package pipeline

import (
	"github.com/iho/gopayments/internal/domain"
	"github.com/iho/gopayments/internal/rates"
)

// CommandKind identifies an inbound command.
type CommandKind uint8

const (
	CmdOpenAccount CommandKind = iota + 1
	CmdDeposit
	CmdWithdrawal
	CmdBalanceCorrection
	CmdTransferLocally
	CmdTransfer
	CmdTransferOrder
	CmdCloseAccount
	CmdAdjustFee
	CmdAdjustRate
	CmdControl
	cmdQuery
)

func (k CommandKind) String() string {
	switch k {
	case CmdOpenAccount:
		return "open_account"
	case CmdDeposit:
		return "deposit"
	case CmdWithdrawal:
		return "withdrawal"
	case CmdBalanceCorrection:
		return "balance_correction"
	case CmdTransferLocally:
		return "transfer_locally"
	case CmdTransfer:
		return "transfer"
	case CmdTransferOrder:
		return "transfer_order"
	case CmdCloseAccount:
		return "close_account"
	case CmdAdjustFee:
		return "adjust_fee"
	case CmdAdjustRate:
		return "adjust_rate"
	case CmdControl:
		return "control"
	default:
		return "unknown"
	}
}

// ResultCode distinguishes success, recoverable business failures and
// validation failures in delivered results. Fatal invariant violations are
// never reported as a code; they panic out of the processing goroutine.
type ResultCode int32

const (
	ResultSuccess ResultCode = iota
	ResultInsufficientFunds
	ResultUnknownAccount
	ResultUnknownDestinationAccount
	ResultSameAccount
	ResultInvalidAmount
	ResultBadSignature
	ResultUnknownRate
)

func (c ResultCode) String() string {
	switch c {
	case ResultSuccess:
		return "success"
	case ResultInsufficientFunds:
		return "insufficient_funds"
	case ResultUnknownAccount:
		return "unknown_account"
	case ResultUnknownDestinationAccount:
		return "unknown_destination_account"
	case ResultSameAccount:
		return "same_account"
	case ResultInvalidAmount:
		return "invalid_amount"
	case ResultBadSignature:
		return "bad_signature"
	case ResultUnknownRate:
		return "unknown_rate"
	default:
		return "unknown"
	}
}

// Command is the pipeline's wire unit. Fields are interpreted per kind; the
// same slots carry (account, amount) for single-account operations and
// (source, destination, amountSrc, amountDst) for transfers.
type Command struct {
	kind          CommandKind
	timestamp     int64
	correlationID int64
	account       domain.AccountID
	account2      domain.AccountID
	amount        int64
	amount2       int64
	secret        int64
	data          int64
	rate          float64
	feeLimits     map[uint16]rates.FeeBounds
	currency      uint16
	transferType  domain.TransferType
	signature     [32]byte
	query         queryKind
	reply         chan queryReply
}

// RequestAccessor exposes the originating request alongside its result.
type RequestAccessor interface {
	Kind() CommandKind
	Account() domain.AccountID
	Amount() int64
}

// ControlAccessor additionally carries the opaque instruction of a control
// command, letting the response handler route it to the barrier instead of
// the sampler.
type ControlAccessor interface {
	RequestAccessor
	Instruction() int64
}

// Kind implements RequestAccessor.
func (c *Command) Kind() CommandKind { return c.kind }

// Account implements RequestAccessor. For transfers it is the source.
func (c *Command) Account() domain.AccountID { return c.account }

// Amount implements RequestAccessor. For transfers it is the source leg.
func (c *Command) Amount() int64 { return c.amount }

// Instruction implements ControlAccessor.
func (c *Command) Instruction() int64 { return c.data }

type queryKind uint8

const (
	queryBalance queryKind = iota + 1
	queryExists
	querySecret
	queryFees
)

type queryReply struct {
	value  int64
	exists bool
	err    error
}
