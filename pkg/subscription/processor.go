package subscription

import (
	"context"
	"strings"

	"github.com/hushpay/subkit/pkg/receipts"
)

// RemoteSubscription is a subscription object fetched from or created with
// a payment provider. ID is the provider's subscription identifier;
// ProviderData carries whatever the adapter needs to pass between its own
// calls (for example the full SDK object) and is opaque to the Manager.
type RemoteSubscription struct {
	ID           string
	ProviderData any
}

// LevelAndCurrency is the pair that defines what a subscription currently
// charges for. Equality of the pair is the sole criterion for treating a
// level update as a no-op.
type LevelAndCurrency struct {
	Level    int64
	Currency string // lowercase ISO 4217
}

// NewLevelAndCurrency normalizes the currency code before comparison.
func NewLevelAndCurrency(level int64, currency string) LevelAndCurrency {
	return LevelAndCurrency{Level: level, Currency: strings.ToLower(currency)}
}

// Processor is the minimal adapter every payment provider integration
// implements.
type Processor interface {
	// Provider identifies the payment provider this adapter talks to.
	Provider() PaymentProvider

	// GetReceiptItem retrieves the canonical receipt item for the current
	// paid period of the given subscription.
	GetReceiptItem(ctx context.Context, subscriptionID string) (receipts.Item, error)

	// CancelAllActiveSubscriptions cancels every active subscription for
	// the customer within the provider. A customer that does not exist
	// remotely is treated as already satisfied, not an error: it means the
	// subscriber never finished adding a payment method.
	CancelAllActiveSubscriptions(ctx context.Context, customerID string) error
}

// CustomerProcessor is a payment provider with a notion of server-managed
// customers and subscriptions. Not every provider supports this (app-store
// style providers manage the subscription on the client), so operations
// that need it take a CustomerProcessor explicitly.
type CustomerProcessor interface {
	Processor

	// CreateCustomer creates a customer object within the provider bound
	// to the subscriber identity. The idempotency key deduplicates retried
	// creations within the provider.
	CreateCustomer(ctx context.Context, subscriberID []byte, platform ClientPlatform, idempotencyKey string) (ProcessorCustomer, error)

	// GetSubscription fetches the remote subscription by provider id.
	GetSubscription(ctx context.Context, subscriptionID string) (RemoteSubscription, error)

	// GetLevelAndCurrency derives the current level and currency pair from
	// a previously fetched subscription.
	GetLevelAndCurrency(ctx context.Context, sub RemoteSubscription) (LevelAndCurrency, error)

	// CreateSubscription starts a recurring subscription for the customer.
	// lastSubscriptionCreatedAt is the Unix time of the subscriber's
	// previous subscription creation (0 if none) and is used by the
	// provider for replay protection.
	CreateSubscription(ctx context.Context, customerID, templateID string, level int64, lastSubscriptionCreatedAt int64) (RemoteSubscription, error)

	// UpdateSubscription moves an existing subscription to the product
	// identified by templateID at the given level.
	UpdateSubscription(ctx context.Context, sub RemoteSubscription, templateID string, level int64, idempotencyKey string) (RemoteSubscription, error)
}

// TransitionValidator gates which level changes are permitted. It receives
// the level currently charged by the provider and the requested level.
type TransitionValidator func(oldLevel, newLevel int64) bool

// PaymentSetupFunc begins adding a payment method for a resolved processor
// customer. Its result is opaque to the Manager and returned to the caller
// as-is, typically a payment method setup token for the client.
type PaymentSetupFunc[R any] func(ctx context.Context, processor CustomerProcessor, customerID string) (R, error)
