package receipts

import "errors"

var (
	ErrInvalidRequest     = errors.New("receipts: invalid credential request")
	ErrVerificationFailed = errors.New("receipts: credential request failed verification")

	ErrAlreadyRecorded   = errors.New("receipts: payment item already recorded with a different request")
	ErrLedgerUnavailable = errors.New("receipts: issuance ledger unavailable")

	ErrMissingFingerprintKey = errors.New("receipts: ledger fingerprint key is required")
)
