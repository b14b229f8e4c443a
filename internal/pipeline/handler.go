package pipeline

//go:generate mockgen -source=handler.go -destination=mocks/mock_handler.go -package=mocks

import "github.com/iho/gopayments/internal/domain"

// ResponseHandler consumes command outcomes from the pipeline's single
// processing goroutine. Delivery order equals application order equals
// submission order; the handler must not assume it runs on the submitter's
// goroutine.
type ResponseHandler interface {
	// CommandResult delivers one command's outcome. The timestamp and
	// correlation id echo the submitted values; request gives access to
	// the originating command and, for control commands, satisfies
	// ControlAccessor.
	CommandResult(timestamp, correlationID int64, resultCode ResultCode, request RequestAccessor)

	// BalanceUpdateEvent notifies observers of a committed balance
	// change, independent of the command-result channel.
	BalanceUpdateEvent(account domain.AccountID, diff, newBalance int64)
}
