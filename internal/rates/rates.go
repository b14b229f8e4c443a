// Package rates holds the currency-rate table and fee schedule used to
// convert and validate cross-currency transfer orders. It moves no money
// itself; the ledger only ever sees pre-converted integer amounts.
package rates

import (
	"math"

	"github.com/iho/gopayments/internal/domain"
)

// RateTable maps ordered currency pairs to multiplicative exchange rates.
// Updating (A,B) also stores the reciprocal under (B,A), so the two
// directions stay mutually consistent. Single-writer, like the ledger.
type RateTable struct {
	rates map[uint32]float64
}

// NewRateTable creates an empty rate table.
func NewRateTable() *RateTable {
	return &RateTable{rates: make(map[uint32]float64)}
}

func pairKey(from, to uint16) uint32 {
	return uint32(from)<<16 | uint32(to)
}

// Update sets the rate for converting from -> to and its reciprocal.
func (t *RateTable) Update(from, to uint16, rate float64) {
	t.rates[pairKey(from, to)] = rate
	t.rates[pairKey(to, from)] = 1.0 / rate
}

// Rate returns the multiplier converting an amount in from-currency into
// to-currency. The identical-currency rate is always 1.
func (t *RateTable) Rate(from, to uint16) (float64, error) {
	if from == to {
		return 1.0, nil
	}

	rate, ok := t.rates[pairKey(from, to)]
	if !ok {
		return 0, domain.ErrUnknownRate
	}
	return rate, nil
}

// Convert converts amount from one currency to another, rounding half away
// from zero. The rounding rule is this table's contract with the ledger: both
// legs of a transfer are converted here, never inside the ledger.
func (t *RateTable) Convert(amount int64, from, to uint16) (int64, error) {
	rate, err := t.Rate(from, to)
	if err != nil {
		return 0, err
	}
	return int64(math.Round(float64(amount) * rate)), nil
}

// ForEach visits every stored directed pair.
func (t *RateTable) ForEach(fn func(from, to uint16, rate float64)) {
	for key, rate := range t.rates {
		fn(uint16(key>>16), uint16(key), rate)
	}
}

// FeeBounds bound the fee charged on a transfer in one currency.
type FeeBounds struct {
	MinFee int64
	MaxFee int64
}

// FeeSchedule combines per-currency fee bounds with a single global fee-rate
// scalar shared across all currencies.
type FeeSchedule struct {
	FeeRate float64
	Limits  map[uint16]FeeBounds
}

// NewFeeSchedule creates a schedule with the given global rate.
func NewFeeSchedule(feeRate float64) *FeeSchedule {
	return &FeeSchedule{FeeRate: feeRate, Limits: make(map[uint16]FeeBounds)}
}

// Adjust replaces the global rate and per-currency bounds in one step.
func (s *FeeSchedule) Adjust(feeRate float64, limits map[uint16]FeeBounds) {
	s.FeeRate = feeRate
	for currency, bounds := range limits {
		s.Limits[currency] = bounds
	}
}

// Fee computes the fee for a gross amount in the given currency: the global
// rate applied to the amount, clamped into the currency's bounds.
func (s *FeeSchedule) Fee(currency uint16, amount int64) int64 {
	fee := int64(math.Round(float64(amount) * s.FeeRate))

	bounds, ok := s.Limits[currency]
	if !ok {
		return fee
	}

	if fee < bounds.MinFee {
		return bounds.MinFee
	}
	if fee > bounds.MaxFee {
		return bounds.MaxFee
	}
	return fee
}
