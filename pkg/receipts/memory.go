package receipts

import (
	"context"
	"crypto/hmac"
	"sync"
	"time"
)

// MemoryLedger is an in-process Ledger for tests and single-node setups.
type MemoryLedger struct {
	mu             sync.Mutex
	fingerprintKey []byte
	entries        map[string]memoryEntry
}

type memoryEntry struct {
	fingerprint []byte
	issuedAt    time.Time
}

// NewMemoryLedger creates an in-memory issuance ledger. The fingerprint key
// is the HMAC key under which credential requests are hashed before being
// stored.
func NewMemoryLedger(fingerprintKey []byte) (*MemoryLedger, error) {
	if len(fingerprintKey) == 0 {
		return nil, ErrMissingFingerprintKey
	}
	return &MemoryLedger{
		fingerprintKey: fingerprintKey,
		entries:        make(map[string]memoryEntry),
	}, nil
}

func (l *MemoryLedger) RecordIssuance(ctx context.Context, itemID string, processor string, req Request, now time.Time) error {
	fp := fingerprint(l.fingerprintKey, req)
	key := processor + ":" + itemID

	l.mu.Lock()
	defer l.mu.Unlock()

	if existing, ok := l.entries[key]; ok {
		if hmac.Equal(existing.fingerprint, fp) {
			return nil
		}
		return ErrAlreadyRecorded
	}
	l.entries[key] = memoryEntry{fingerprint: fp, issuedAt: now}
	return nil
}
