package gen

import (
	"testing"

	"github.com/iho/gopayments/internal/rates"
	"github.com/iho/gopayments/internal/sign"
)

func TestRandomRatesDeterministic(t *testing.T) {
	t.Parallel()

	currencies := RandomCurrencies(10)

	a := RandomRates(currencies, 2.2, 1)
	b := RandomRates(currencies, 2.2, 1)

	for _, currency := range currencies {
		if a[currency] != b[currency] {
			t.Fatalf("same seed must yield same rates: %v != %v", a[currency], b[currency])
		}
		if a[currency] < 1/2.2 || a[currency] > 2.2 {
			t.Errorf("rate %v outside [1/spread, spread]", a[currency])
		}
	}
}

func TestFillRateTableConsistency(t *testing.T) {
	t.Parallel()

	currencies := RandomCurrencies(5)
	baseRates := RandomRates(currencies, 2.0, 7)

	table := rates.NewRateTable()
	FillRateTable(table, baseRates)

	forward, err := table.Rate(1, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	backward, err := table.Rate(2, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	product := forward * backward
	if product < 0.999999 || product > 1.000001 {
		t.Errorf("rate(1,2)*rate(2,1) = %v, want ~1", product)
	}
}

func TestGenerateAccounts(t *testing.T) {
	t.Parallel()

	currencies := RandomCurrencies(8)

	accounts, err := GenerateAccounts(1000, currencies, 40, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(accounts) != 1000 {
		t.Fatalf("expected 1000 accounts, got %d", len(accounts))
	}

	seen := make(map[int64]struct{}, len(accounts))
	for _, account := range accounts {
		if err := account.Verify(); err != nil {
			t.Fatalf("generated account failed verification: %v", err)
		}
		if account.Currency() < 1 || int(account.Currency()) > len(currencies) {
			t.Errorf("account currency %d outside generated set", account.Currency())
		}
		if _, dup := seen[int64(account)]; dup {
			t.Fatalf("duplicate account id %d", account)
		}
		seen[int64(account)] = struct{}{}
	}
}

func TestGenerateTransfersSignedAndDistinct(t *testing.T) {
	t.Parallel()

	currencies := RandomCurrencies(4)
	baseRates := RandomRates(currencies, 2.0, 3)

	table := rates.NewRateTable()
	FillRateTable(table, baseRates)
	limits := FeeLimits(baseRates)

	accounts, err := GenerateAccounts(100, currencies, 10, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	secrets := Secrets(accounts, 3)

	orders, err := GenerateTransfers(500, accounts, limits, table, secrets, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(orders) != 500 {
		t.Fatalf("expected 500 orders, got %d", len(orders))
	}

	for _, order := range orders {
		if order.Source == order.Destination {
			t.Fatal("order source and destination must differ")
		}
		if order.Amount <= 0 {
			t.Fatalf("order amount must be positive, got %d", order.Amount)
		}
		if err := sign.Verify(order, secrets[order.Source]); err != nil {
			t.Fatalf("generated order failed signature verification: %v", err)
		}
	}
}

func TestMaxBalancesCoverSources(t *testing.T) {
	t.Parallel()

	currencies := RandomCurrencies(3)
	baseRates := RandomRates(currencies, 2.0, 5)

	table := rates.NewRateTable()
	FillRateTable(table, baseRates)
	limits := FeeLimits(baseRates)

	accounts, err := GenerateAccounts(50, currencies, 5, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	secrets := Secrets(accounts, 5)

	orders, err := GenerateTransfers(200, accounts, limits, table, secrets, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	balances := MaxBalances(orders, table)
	for _, order := range orders {
		if balances[order.Source] <= 0 {
			t.Fatalf("source %d has no seed balance", order.Source)
		}
	}
}
