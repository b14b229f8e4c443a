package domain

import "fmt"

// InvariantViolation signals a broken ledger precondition or postcondition:
// an arithmetic overflow during a credit, or a correction applied to state a
// prior bug already corrupted. It is raised as a panic, never returned as an
// ordinary error, so it cannot be silently swallowed by callers that only
// handle the business-failure path. Processing units must let it halt them.
type InvariantViolation struct {
	Op      string
	Account AccountID
	Amount  int64
	Encoded int64
}

func (v *InvariantViolation) Error() string {
	return fmt.Sprintf("invariant violation in %s: account=%d amount=%d encodedBalance=%d balance=%d",
		v.Op, v.Account, v.Amount, v.Encoded, -1-v.Encoded)
}
