package receipts

import (
	"context"
	"crypto/hmac"
	"encoding/hex"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLedgerConfig holds configuration for the Redis-backed issuance ledger.
type RedisLedgerConfig struct {
	KeyPrefix      string        `env:"RECEIPTS_LEDGER_KEY_PREFIX" envDefault:"issued-receipts"` // KeyPrefix namespaces ledger keys within the Redis keyspace.
	Retention      time.Duration `env:"RECEIPTS_LEDGER_RETENTION" envDefault:"2160h"`            // Retention must exceed the longest subscription cycle so an item id cannot recur while its record is live.
	FingerprintKey string        `env:"RECEIPTS_LEDGER_FINGERPRINT_KEY,required"`                // FingerprintKey is the HMAC key for hashing credential requests before storage.
}

// RedisLedger implements Ledger on top of Redis. The conditional insert maps
// onto SET NX: the first writer for a key wins, later writers observe the
// stored fingerprint. Values are never overwritten, so the SET NX / GET pair
// needs no transaction.
type RedisLedger struct {
	client *redis.Client
	cfg    RedisLedgerConfig
}

// NewRedisLedger creates a Redis-backed issuance ledger using an already
// connected client. The caller owns the client lifecycle.
func NewRedisLedger(client *redis.Client, cfg RedisLedgerConfig) (*RedisLedger, error) {
	if client == nil {
		panic("receipts: redis client is required")
	}
	if cfg.FingerprintKey == "" {
		return nil, ErrMissingFingerprintKey
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "issued-receipts"
	}
	return &RedisLedger{client: client, cfg: cfg}, nil
}

func (l *RedisLedger) RecordIssuance(ctx context.Context, itemID string, processor string, req Request, now time.Time) error {
	fp := fingerprint([]byte(l.cfg.FingerprintKey), req)
	key := l.cfg.KeyPrefix + ":" + processor + ":" + itemID

	set, err := l.client.SetNX(ctx, key, hex.EncodeToString(fp), l.cfg.Retention).Result()
	if err != nil {
		return errors.Join(ErrLedgerUnavailable, err)
	}
	if set {
		return nil
	}

	stored, err := l.client.Get(ctx, key).Result()
	if err != nil {
		// The key can only disappear between SET NX and GET by expiring,
		// which means the retention window is shorter than a billing cycle.
		return errors.Join(ErrLedgerUnavailable, err)
	}
	storedFP, err := hex.DecodeString(stored)
	if err != nil {
		return errors.Join(ErrLedgerUnavailable, err)
	}
	if hmac.Equal(storedFP, fp) {
		// Same request retried, keep the record alive for the client to
		// finish its exchange.
		if err := l.client.Expire(ctx, key, l.cfg.Retention).Err(); err != nil {
			return errors.Join(ErrLedgerUnavailable, err)
		}
		return nil
	}
	return ErrAlreadyRecorded
}
