// Package receipts holds the issuance-side primitives for anonymous
// subscription receipts: the receipt item fetched from a payment processor,
// the blinded credential request submitted by a subscriber, the issuance
// ledger that guarantees a payment item is consumed at most once, and the
// opaque credential issuer.
//
// The ledger is the single source of truth for "was this payment item
// already exchanged for a credential". Implementations must perform a
// conditional insert: the first write for an (processor, item) key wins and
// the recorded request fingerprint is never overwritten. Retrying with the
// same request is allowed so that a client that lost a response can recover
// its credential; retrying with a different request is rejected with
// ErrAlreadyRecorded.
//
// Two ledger implementations ship with the package: MemoryLedger for tests
// and single-process use, and RedisLedger which maps the conditional insert
// onto SET NX.
//
// Credential issuance itself is deliberately out of scope: the Issuer
// interface treats the zero-knowledge signing operation as an opaque
// collaborator provided by the environment.
package receipts
