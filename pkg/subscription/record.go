package subscription

import "time"

// PaymentProvider identifies an external payment provider integration.
type PaymentProvider string

const (
	ProviderStripe            PaymentProvider = "stripe"
	ProviderBraintree         PaymentProvider = "braintree"
	ProviderGooglePlayBilling PaymentProvider = "google-play-billing"
	ProviderAppleAppStore     PaymentProvider = "apple-app-store"
)

// ClientPlatform is the platform of the client making a request. Some
// providers need it when creating a customer.
type ClientPlatform string

const (
	PlatformAndroid ClientPlatform = "android"
	PlatformIOS     ClientPlatform = "ios"
	PlatformDesktop ClientPlatform = "desktop"
)

// ProcessorCustomer is the reference from a subscriber record to the
// customer object held by a payment provider. Once set on a record it is
// immutable for the life of the record; a mismatch is a conflict, never a
// silent overwrite.
type ProcessorCustomer struct {
	Provider   PaymentProvider
	CustomerID string
}

// Record is a persisted subscriber. SubscriberID is the primary key.
//
// SubscriptionID and SubscriptionLevel are set together by the Store: a
// record either has no subscription (SubscriptionID == "") or both fields
// are meaningful. Cancellation is logical, CanceledAt is set and the record
// remains queryable.
type Record struct {
	SubscriberID          []byte
	Tag                   []byte
	CreatedAt             time.Time
	AccessedAt            time.Time
	CanceledAt            *time.Time
	ProcessorCustomer     *ProcessorCustomer
	SubscriptionID        string
	SubscriptionLevel     int64
	SubscriptionCreatedAt *time.Time
}

// HasSubscription reports whether the record references an active remote
// subscription.
func (r Record) HasSubscription() bool {
	return r.SubscriptionID != ""
}

// IsCanceled reports whether the subscriber has been logically deleted.
func (r Record) IsCanceled() bool {
	return r.CanceledAt != nil
}
