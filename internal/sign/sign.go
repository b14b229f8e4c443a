// Package sign produces and checks integrity signatures for transfer orders.
// The signature is an HMAC-SHA256 over the order's canonical encoding, keyed
// by the source account's secret. It guards against corrupted or replayed
// synthetic orders in the pipeline; it is not an account-security mechanism.
package sign

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"

	"github.com/iho/gopayments/internal/domain"
)

// Transfer signs the order fields with the source account's secret.
func Transfer(order *domain.TransferOrder, secret int64) [32]byte {
	mac := hmac.New(sha256.New, encodeInt64(secret))

	mac.Write(encodeInt64(int64(order.Source)))
	mac.Write(encodeInt64(int64(order.Destination)))
	mac.Write(encodeInt64(order.Amount))

	var tail [3]byte
	binary.LittleEndian.PutUint16(tail[:2], order.Currency)
	tail[2] = byte(order.Type)
	mac.Write(tail[:])

	var signature [32]byte
	copy(signature[:], mac.Sum(nil))
	return signature
}

// Verify recomputes the order's signature and reports a mismatch as
// ErrBadSignature.
func Verify(order *domain.TransferOrder, secret int64) error {
	expected := Transfer(order, secret)
	if !hmac.Equal(expected[:], order.Signature[:]) {
		return domain.ErrBadSignature
	}
	return nil
}

func encodeInt64(v int64) []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, uint64(v))
	return buf
}
