package domain

// TransferType selects which side of a cross-currency transfer the order
// amount denominates.
type TransferType uint8

const (
	// SourceExact means the amount denominates what leaves the source;
	// fees are subtracted from what the destination receives.
	SourceExact TransferType = iota
	// DestinationExact means the amount denominates what the destination
	// must receive; the source covers amount plus fee.
	DestinationExact
)

func (t TransferType) String() string {
	switch t {
	case SourceExact:
		return "SOURCE_EXACT"
	case DestinationExact:
		return "DESTINATION_EXACT"
	default:
		return "UNKNOWN"
	}
}

// TransferOrder is a signed request to move money between two accounts,
// possibly across currencies. Amount is denominated in Currency, which may
// differ from both the source and the destination currency.
type TransferOrder struct {
	Source      AccountID
	Destination AccountID
	Amount      int64
	Currency    uint16
	Type        TransferType
	Signature   [32]byte
}

// Validate rejects orders that are malformed regardless of ledger state.
func (o *TransferOrder) Validate() error {
	if o.Source == o.Destination {
		return ErrSameAccount
	}
	if o.Amount <= 0 {
		return ErrInvalidAmount
	}
	return nil
}
