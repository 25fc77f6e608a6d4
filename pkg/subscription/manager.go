package subscription

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hushpay/subkit/pkg/receipts"
)

// Manager orchestrates subscriber records, payment processors and receipt
// credential issuance. It is safe for concurrent use; all per-subscriber
// safety comes from the Store's conditional writes and the ledger's
// conditional insert.
type Manager struct {
	store      Store
	processors map[PaymentProvider]Processor
	issuer     receipts.Issuer
	ledger     receipts.Ledger
	logger     *slog.Logger
}

// ManagerOption configures a Manager during construction.
type ManagerOption func(*Manager)

// WithLogger configures the logger for the Manager.
func WithLogger(l *slog.Logger) ManagerOption {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// NewManager creates a subscription Manager. Panics if a required
// collaborator is nil or a provider is registered twice, to fail fast
// during initialization. The processor registry is resolved once here and
// never changes afterwards.
func NewManager(store Store, processors []Processor, issuer receipts.Issuer, ledger receipts.Ledger, opts ...ManagerOption) *Manager {
	if store == nil {
		panic("subscription: Store is required")
	}
	if issuer == nil {
		panic("subscription: receipts.Issuer is required")
	}
	if ledger == nil {
		panic("subscription: receipts.Ledger is required")
	}

	registry := make(map[PaymentProvider]Processor, len(processors))
	for _, p := range processors {
		if p == nil {
			panic("subscription: nil Processor")
		}
		if _, exists := registry[p.Provider()]; exists {
			panic("subscription: processor for provider " + string(p.Provider()) + " registered twice")
		}
		registry[p.Provider()] = p
	}

	m := &Manager{
		store:      store,
		processors: registry,
		issuer:     issuer,
		ledger:     ledger,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) processor(provider PaymentProvider) (Processor, error) {
	p, ok := m.processors[provider]
	if !ok {
		return nil, errors.Join(ErrProviderNotConfigured, fmt.Errorf("provider %s", provider))
	}
	return p, nil
}

// UpdateSubscriber creates the subscriber record on first registration or
// refreshes its last-access time on subsequent calls. Exactly one store
// mutation happens per call, so retries are harmless.
func (m *Manager) UpdateSubscriber(ctx context.Context, creds Credentials) error {
	_, err := m.store.Get(ctx, creds.SubscriberID, creds.Tag)
	switch {
	case err == nil:
		return m.store.TouchAccessedAt(ctx, creds.SubscriberID, creds.Now)
	case errors.Is(err, ErrTagMismatch):
		return errors.Join(ErrForbidden, err)
	case errors.Is(err, ErrSubscriberNotFound):
		if _, err := m.store.Create(ctx, creds.SubscriberID, creds.Tag, creds.Now); err != nil {
			if errors.Is(err, ErrTagMismatch) {
				// Lost a create race against a different tag.
				return errors.Join(ErrForbidden, err)
			}
			return err
		}
		m.logger.InfoContext(ctx, "subscriber registered")
		return nil
	default:
		return err
	}
}

// GetSubscriber returns the record for correct credentials, ErrForbidden on
// a tag mismatch and ErrNotFound when no record exists.
func (m *Manager) GetSubscriber(ctx context.Context, creds Credentials) (Record, error) {
	record, err := m.store.Get(ctx, creds.SubscriberID, creds.Tag)
	switch {
	case err == nil:
		return record, nil
	case errors.Is(err, ErrTagMismatch):
		return Record{}, errors.Join(ErrForbidden, err)
	case errors.Is(err, ErrSubscriberNotFound):
		return Record{}, errors.Join(ErrNotFound, err)
	default:
		return Record{}, err
	}
}

// DeleteSubscriber cancels all of the subscriber's active subscriptions
// with its payment provider and then marks the record canceled.
//
// The remote cancellation is attempted first on purpose: a crash between
// the two steps leaves the record not-yet-canceled and the operation
// retryable, instead of canceled locally while still billing remotely.
func (m *Manager) DeleteSubscriber(ctx context.Context, creds Credentials) error {
	record, err := m.store.Get(ctx, creds.SubscriberID, creds.Tag)
	if err != nil {
		if errors.Is(err, ErrTagMismatch) || errors.Is(err, ErrSubscriberNotFound) {
			return errors.Join(ErrNotFound, err)
		}
		return err
	}

	if pc := record.ProcessorCustomer; pc != nil {
		processor, err := m.processor(pc.Provider)
		if err != nil {
			return err
		}
		if err := processor.CancelAllActiveSubscriptions(ctx, pc.CustomerID); err != nil {
			return err
		}
		m.logger.InfoContext(ctx, "canceled remote subscriptions",
			slog.String("provider", string(pc.Provider)))
	}

	return m.store.MarkCanceledAt(ctx, creds.SubscriberID, creds.Now)
}

// AddPaymentMethodToCustomer resolves (creating if needed) the processor
// customer for a subscriber and invokes setup with the resolved customer id
// to begin the provider-specific payment method setup step.
//
// A subscriber never switches providers: if the record already references a
// different provider the call fails with ErrProcessorConflict and the
// record is untouched. When two concurrent calls race to create the
// customer, the Store's compare-and-set picks a winner; the loser's remote
// customer is orphaned within the provider, which is an accepted cost.
func AddPaymentMethodToCustomer[R any](
	ctx context.Context,
	m *Manager,
	creds Credentials,
	processor CustomerProcessor,
	platform ClientPlatform,
	setup PaymentSetupFunc[R],
) (R, error) {
	var zero R

	record, err := m.GetSubscriber(ctx, creds)
	if err != nil {
		return zero, err
	}

	if pc := record.ProcessorCustomer; pc != nil {
		if pc.Provider != processor.Provider() {
			return zero, errors.Join(ErrProcessorConflict,
				fmt.Errorf("subscriber is bound to %s, requested %s", pc.Provider, processor.Provider()))
		}
	} else {
		customer, err := processor.CreateCustomer(ctx, creds.SubscriberID, platform, uuid.NewString())
		if err != nil {
			return zero, err
		}
		record, err = m.store.SetProcessorCustomer(ctx, record, customer, creds.Now)
		if err != nil {
			return zero, err
		}
		m.logger.InfoContext(ctx, "processor customer created",
			slog.String("provider", string(customer.Provider)))
	}

	pc := record.ProcessorCustomer
	if pc == nil || pc.Provider != processor.Provider() {
		return zero, ErrMissingProcessorCustomer
	}
	return setup(ctx, processor, pc.CustomerID)
}

// UpdateSubscriptionLevelForCustomer creates or changes the recurring
// subscription for a subscriber. The caller supplies the previously fetched
// record (see GetSubscriber) to avoid a redundant read.
//
// With no existing subscription, one is created with the provider and its
// id and level are persisted; a provider response demanding further
// customer interaction is reported as ErrPaymentRequiresAction. With an
// existing subscription, the call is a no-op when the requested level and
// currency already match, otherwise the transition is checked against
// validator before the provider is contacted at all.
func (m *Manager) UpdateSubscriptionLevelForCustomer(
	ctx context.Context,
	creds Credentials,
	record Record,
	processor CustomerProcessor,
	level int64,
	currency string,
	idempotencyKey string,
	templateID string,
	validator TransitionValidator,
) error {
	if !record.HasSubscription() {
		if record.ProcessorCustomer == nil {
			return ErrMissingProcessorCustomer
		}

		var lastCreatedAt int64
		if record.SubscriptionCreatedAt != nil {
			lastCreatedAt = record.SubscriptionCreatedAt.Unix()
		}

		sub, err := processor.CreateSubscription(ctx, record.ProcessorCustomer.CustomerID, templateID, level, lastCreatedAt)
		if err != nil {
			return translateCreateSubscriptionError(processor.Provider(), err)
		}
		m.logger.InfoContext(ctx, "subscription created",
			slog.String("provider", string(processor.Provider())),
			slog.Int64("level", level))
		return m.store.SubscriptionCreated(ctx, creds.SubscriberID, sub.ID, creds.Now, level)
	}

	sub, err := processor.GetSubscription(ctx, record.SubscriptionID)
	if err != nil {
		return err
	}
	current, err := processor.GetLevelAndCurrency(ctx, sub)
	if err != nil {
		return err
	}

	// Idempotent short-circuit: retried level updates stop here.
	if current == NewLevelAndCurrency(level, currency) {
		return nil
	}

	if !validator(current.Level, level) {
		return ErrInvalidLevel
	}

	updated, err := processor.UpdateSubscription(ctx, sub, templateID, level, idempotencyKey)
	if err != nil {
		return err
	}
	m.logger.InfoContext(ctx, "subscription level changed",
		slog.String("provider", string(processor.Provider())),
		slog.Int64("from", current.Level),
		slog.Int64("to", level))
	return m.store.SubscriptionLevelChanged(ctx, creds.SubscriberID, creds.Now, level, updated.ID)
}

// ReceiptResult is the outcome of a successful credential issuance.
type ReceiptResult struct {
	Credential receipts.Credential
	Item       receipts.Item
	Provider   PaymentProvider
}

// CreateReceiptCredentials exchanges the subscriber's latest paid
// subscription period for a signed receipt credential.
//
// Before signing, an issuance record keyed by (receipt item, provider) is
// inserted into the ledger. The ledger is the single source of truth for
// whether a payment item was already consumed: a retry with the same
// blinded request passes and re-signs (the credential is derived from the
// request, so no second distinct credential can result), while a different
// request for an already consumed item fails with
// receipts.ErrAlreadyRecorded.
func (m *Manager) CreateReceiptCredentials(
	ctx context.Context,
	creds Credentials,
	requestBytes []byte,
	expiration func(receipts.Item) time.Time,
) (ReceiptResult, error) {
	record, err := m.GetSubscriber(ctx, creds)
	if err != nil {
		return ReceiptResult{}, err
	}
	if !record.HasSubscription() {
		return ReceiptResult{}, ErrNotFound
	}

	request, err := receipts.ParseRequest(requestBytes)
	if err != nil {
		return ReceiptResult{}, errors.Join(ErrInvalidArguments, err)
	}

	if record.ProcessorCustomer == nil {
		return ReceiptResult{}, ErrMissingProcessorCustomer
	}
	processor, err := m.processor(record.ProcessorCustomer.Provider)
	if err != nil {
		return ReceiptResult{}, err
	}

	item, err := processor.GetReceiptItem(ctx, record.SubscriptionID)
	if err != nil {
		return ReceiptResult{}, err
	}

	if err := m.ledger.RecordIssuance(ctx, item.ItemID, string(processor.Provider()), request, creds.Now); err != nil {
		return ReceiptResult{}, err
	}

	credential, err := m.issuer.Issue(request, expiration(item).Unix(), item.Level)
	if err != nil {
		if errors.Is(err, receipts.ErrVerificationFailed) {
			return ReceiptResult{}, errors.Join(ErrInvalidArguments, err)
		}
		return ReceiptResult{}, err
	}

	m.logger.InfoContext(ctx, "receipt credential issued",
		slog.String("provider", string(processor.Provider())),
		slog.Int64("level", item.Level))

	return ReceiptResult{
		Credential: credential,
		Item:       item,
		Provider:   processor.Provider(),
	}, nil
}
