// Package subscription implements the orchestration core for anonymous paid
// subscriptions: it reconciles a locally persisted subscriber record with
// the state held by an external payment processor and exchanges paid
// subscription periods for blinded receipt credentials.
//
// The package never talks to a network or database directly. Every effectful
// step goes through one of four collaborators:
//
//   - Store: the subscriber record table, with conditional writes
//   - Processor / CustomerProcessor: one adapter per payment provider
//   - receipts.Ledger: the at-most-once issuance record
//   - receipts.Issuer: the opaque credential signing operation
//
// # Operations
//
// Manager exposes the subscriber lifecycle:
//
//   - UpdateSubscriber: register, or refresh the access time of, a subscriber
//   - GetSubscriber: authenticated record lookup
//   - DeleteSubscriber: cancel remote subscriptions, then mark the record canceled
//   - AddPaymentMethodToCustomer: bind a subscriber to a processor customer
//     and hand off to a provider-specific payment method setup step
//   - UpdateSubscriptionLevelForCustomer: create or change the recurring
//     subscription, idempotent when the requested level and currency already match
//   - CreateReceiptCredentials: exchange the latest paid period for a signed
//     receipt credential, guarded by the issuance ledger
//
// # Concurrency
//
// The Manager holds no locks. Concurrent requests for the same subscriber
// are serialized by the Store's conditional writes (a lost race surfaces as
// ErrUpdateConflict for the caller to retry) and by the ledger's conditional
// insert. Completed remote effects are never rolled back; a remote
// subscription or customer that was created but never persisted locally is
// an accepted cost corrected by operator reconciliation.
//
// # Errors
//
// Collaborator failures are classified at the Manager boundary into the
// package sentinels (ErrNotFound, ErrForbidden, ErrInvalidArguments,
// ErrInvalidLevel, ErrProcessorConflict, ErrPaymentRequiresAction). Any
// other processor failure propagates unchanged, typically as a
// *ProcessorError carrying the provider-defined reason code.
package subscription
