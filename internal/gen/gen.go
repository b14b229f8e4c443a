// Package gen produces deterministic synthetic workloads for the benchmark
// driver: currency sets with conversion rates, account populations and
// signed transfer orders sized so that a seeded ledger can absorb them.
package gen

import (
	"math"
	"math/rand"

	"github.com/iho/gopayments/internal/domain"
	"github.com/iho/gopayments/internal/rates"
	"github.com/iho/gopayments/internal/sign"
)

// RandomCurrencies returns n distinct currency ids starting at 1.
func RandomCurrencies(n int) []uint16 {
	currencies := make([]uint16, n)
	for i := range currencies {
		currencies[i] = uint16(i + 1)
	}
	return currencies
}

// RandomRates assigns each currency a random rate against a common base,
// log-uniform in [1/spread, spread]. The same seed always yields the same
// rates.
func RandomRates(currencies []uint16, spread float64, seed int64) map[uint16]float64 {
	random := rand.New(rand.NewSource(seed))

	result := make(map[uint16]float64, len(currencies))
	for _, currency := range currencies {
		// uniform exponent in [-1, 1] mapped through the spread
		exponent := random.Float64()*2 - 1
		result[currency] = math.Pow(spread, exponent)
	}
	return result
}

// FillRateTable derives every directed pair rate from the per-currency base
// rates: converting from A to B multiplies by rate(A)/rate(B).
func FillRateTable(table *rates.RateTable, baseRates map[uint16]float64) {
	for from, rateFrom := range baseRates {
		for to, rateTo := range baseRates {
			if from >= to {
				continue
			}
			table.Update(from, to, rateFrom/rateTo)
		}
	}
}

// FeeLimits derives per-currency fee bounds from the base rates, mirroring
// the economics of the conversion: cheaper currencies get wider bounds.
func FeeLimits(baseRates map[uint16]float64) map[uint16]rates.FeeBounds {
	limits := make(map[uint16]rates.FeeBounds, len(baseRates))
	for currency, rate := range baseRates {
		limits[currency] = rates.FeeBounds{
			MinFee: 1 + int64(100.0/rate),
			MaxFee: 10 + int64(1000.0/rate),
		}
	}
	return limits
}

// GenerateAccounts builds a population of total accounts spread over
// sequential clients, each holding up to maxPerClient sub-accounts in random
// currencies. Identifiers come from the codec, so every one carries a valid
// check digit.
func GenerateAccounts(total int, currencies []uint16, maxPerClient int, seed int64) ([]domain.AccountID, error) {
	random := rand.New(rand.NewSource(seed))

	accounts := make([]domain.AccountID, 0, total)
	clientID := int64(1)

	for len(accounts) < total {
		perClient := 1 + random.Intn(maxPerClient)

		for num := 0; num < perClient && len(accounts) < total; num++ {
			currency := currencies[random.Intn(len(currencies))]

			id, err := domain.NewAccountID(clientID, int(currency), num)
			if err != nil {
				return nil, err
			}
			accounts = append(accounts, id)
		}

		clientID++
	}

	return accounts, nil
}

// Secrets assigns a random non-zero secret to every account.
func Secrets(accounts []domain.AccountID, seed int64) map[domain.AccountID]int64 {
	random := rand.New(rand.NewSource(seed))

	secrets := make(map[domain.AccountID]int64, len(accounts))
	for _, account := range accounts {
		secrets[account] = random.Int63() + 1
	}
	return secrets
}

// GenerateTransfers produces n signed transfer orders between distinct
// random accounts. Order amounts stay above the minimum that survives
// conversion and fee subtraction, so a well-seeded ledger rejects none of
// them for being structurally too small.
func GenerateTransfers(
	n int,
	accounts []domain.AccountID,
	feeLimits map[uint16]rates.FeeBounds,
	table *rates.RateTable,
	secrets map[domain.AccountID]int64,
	seed int64,
) ([]*domain.TransferOrder, error) {
	random := rand.New(rand.NewSource(seed))

	orders := make([]*domain.TransferOrder, 0, n)

	for i := 0; i < n; i++ {
		idxFrom := random.Intn(len(accounts))
		idxTo := random.Intn(len(accounts) - 1)
		if idxTo >= idxFrom {
			idxTo++
		}

		src := accounts[idxFrom]
		dst := accounts[idxTo]
		dstCurrency := dst.Currency()

		// pick the order currency with the same distribution as the
		// account population
		orderCurrency := accounts[random.Intn(len(accounts))].Currency()

		transferType := domain.SourceExact
		if random.Intn(2) == 0 {
			transferType = domain.DestinationExact
		}

		rate, err := table.Rate(dstCurrency, orderCurrency)
		if err != nil {
			return nil, err
		}

		var minAmount int64
		switch transferType {
		case domain.DestinationExact:
			minAmount = int64(rate)
		case domain.SourceExact:
			// the fee is subtracted from the destination amount, so
			// the order must cover it after ORD->DST conversion
			minAmount = int64(float64(feeLimits[dstCurrency].MaxFee) * rate)
		}

		order := &domain.TransferOrder{
			Source:      src,
			Destination: dst,
			Amount:      minAmount + int64(random.Intn(100_000)) + 1,
			Currency:    orderCurrency,
			Type:        transferType,
		}
		order.Signature = sign.Transfer(order, secrets[src])

		orders = append(orders, order)
	}

	return orders, nil
}

// MaxBalances sums, per source account, the amounts its orders may debit,
// giving a seed balance that makes the whole batch feasible.
func MaxBalances(orders []*domain.TransferOrder, table *rates.RateTable) map[domain.AccountID]int64 {
	balances := make(map[domain.AccountID]int64)

	for _, order := range orders {
		amountSrc, err := table.Convert(order.Amount, order.Currency, order.Source.Currency())
		if err != nil || amountSrc <= 0 {
			amountSrc = order.Amount
		}
		// headroom for fees charged on top of destination-exact orders
		balances[order.Source] += amountSrc * 2
	}

	return balances
}
