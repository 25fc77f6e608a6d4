package receipts

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"time"
)

// Item is a receipt of a single payment from a payment processor.
//
// ItemID must identify an individual charge, not the subscription as a
// whole, and must be unique within its processor. Processors guarantee a
// given item id is returned at most once per subscription cycle, which is
// what lets the ledger enforce one credential per payment.
type Item struct {
	ItemID string
	PaidAt time.Time
	Level  int64
}

// Ledger records which payment items have already been exchanged for a
// receipt credential.
type Ledger interface {
	// RecordIssuance conditionally inserts an issuance record keyed by
	// (processor, itemID). The first insert for a key wins. A repeat call
	// with the same request is a no-op so interrupted clients can retry;
	// a repeat call with a different request returns ErrAlreadyRecorded.
	// The recorded fingerprint for a key never changes.
	RecordIssuance(ctx context.Context, itemID string, processor string, req Request, now time.Time) error
}

// fingerprint derives the stored identifier for a credential request. The
// raw request is never persisted, only its keyed hash, so the ledger learns
// nothing about the credential being issued.
func fingerprint(key []byte, req Request) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write(req.Bytes())
	return mac.Sum(nil)
}
