package domain

import (
	"errors"
	"testing"
)

func TestNewAccountID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		clientID   int64
		currencyID int
		accountNum int
		wantErr    error
	}{
		{name: "minimal", clientID: 1, currencyID: 1, accountNum: 0},
		{name: "max fields", clientID: MaxClientID, currencyID: MaxCurrencyID, accountNum: MaxAccountNum},
		{name: "client id too large", clientID: MaxClientID + 1, currencyID: 1, accountNum: 0, wantErr: ErrClientIDTooLarge},
		{name: "negative client id", clientID: -1, currencyID: 1, accountNum: 0, wantErr: ErrClientIDTooLarge},
		{name: "currency id too large", clientID: 1, currencyID: MaxCurrencyID + 1, accountNum: 0, wantErr: ErrCurrencyIDTooLarge},
		{name: "account num too large", clientID: 1, currencyID: 1, accountNum: MaxAccountNum + 1, wantErr: ErrAccountNumTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := NewAccountID(tt.clientID, tt.currencyID, tt.accountNum)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if id == 0 {
				t.Fatal("identifier must never be the all-zero value")
			}
			if id < 0 {
				t.Fatalf("identifier must be positive, got %d", id)
			}
		})
	}
}

func TestAccountID_Deterministic(t *testing.T) {
	t.Parallel()

	a, err := NewAccountID(12345, 7, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := NewAccountID(12345, 7, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if a != b {
		t.Fatalf("same inputs must yield same identifier: %d != %d", a, b)
	}
}

func TestAccountID_CurrencyRoundTrip(t *testing.T) {
	t.Parallel()

	currencies := []int{0, 1, 2, 15, 255, 4096, MaxCurrencyID}
	clients := []int64{1, 40, 99999, MaxClientID}

	for _, cur := range currencies {
		for _, client := range clients {
			id, err := NewAccountID(client, cur, 5)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got := id.Currency(); got != uint16(cur) {
				t.Errorf("currencyOf(encode(%d, %d, 5)) = %d, want %d", client, cur, got, cur)
			}
			if got := id.ClientID(); got != client {
				t.Errorf("clientID round-trip: got %d, want %d", got, client)
			}
			if got := id.AccountNum(); got != 5 {
				t.Errorf("accountNum round-trip: got %d, want 5", got)
			}
		}
	}
}

func TestAccountID_Verify(t *testing.T) {
	t.Parallel()

	id, err := NewAccountID(777, 3, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := id.Verify(); err != nil {
		t.Fatalf("freshly encoded identifier must verify, got %v", err)
	}

	// Flipping an upper bit invalidates the check digit.
	corrupted := AccountID(int64(id) ^ (1 << 40))
	if err := corrupted.Verify(); !errors.Is(err, ErrCheckDigitMismatch) {
		t.Fatalf("expected ErrCheckDigitMismatch, got %v", err)
	}
}

func TestTransferOrder_Validate(t *testing.T) {
	t.Parallel()

	src, _ := NewAccountID(1, 1, 0)
	dst, _ := NewAccountID(2, 1, 0)

	t.Run("valid order", func(t *testing.T) {
		o := &TransferOrder{Source: src, Destination: dst, Amount: 100, Currency: 1}
		if err := o.Validate(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("same account rejected", func(t *testing.T) {
		o := &TransferOrder{Source: src, Destination: src, Amount: 100, Currency: 1}
		if err := o.Validate(); !errors.Is(err, ErrSameAccount) {
			t.Fatalf("expected ErrSameAccount, got %v", err)
		}
	})

	t.Run("non-positive amount rejected", func(t *testing.T) {
		o := &TransferOrder{Source: src, Destination: dst, Amount: 0, Currency: 1}
		if err := o.Validate(); !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("expected ErrInvalidAmount, got %v", err)
		}
	})
}
