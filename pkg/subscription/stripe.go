package subscription

import (
	"errors"

	stripe "github.com/stripe/stripe-go/v74"
)

// Stripe declines a new subscription with this code when the payment intent
// needs a confirmation step from the customer (e.g. 3-D Secure).
const stripeCodePaymentIntentRequiresAction = "subscription_payment_intent_requires_action"

// translateCreateSubscriptionError classifies failures from
// CustomerProcessor.CreateSubscription. Only the requires-action condition
// is translated; every other processor failure propagates unchanged so the
// caller can inspect the provider-specific detail.
func translateCreateSubscriptionError(provider PaymentProvider, err error) error {
	if err == nil {
		return nil
	}

	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) && string(stripeErr.Code) == stripeCodePaymentIntentRequiresAction {
		return errors.Join(ErrPaymentRequiresAction, err)
	}

	var procErr *ProcessorError
	if errors.As(err, &procErr) && procErr.Code == stripeCodePaymentIntentRequiresAction {
		return errors.Join(ErrPaymentRequiresAction, err)
	}

	return err
}

// WrapStripeError normalizes a Stripe SDK failure into a *ProcessorError
// carrying the Stripe error code. Adapter implementations use it so callers
// of the Manager can match on reason codes without importing the SDK.
// Non-Stripe errors are returned unchanged.
func WrapStripeError(err error) error {
	if err == nil {
		return nil
	}
	var stripeErr *stripe.Error
	if !errors.As(err, &stripeErr) {
		return err
	}
	return &ProcessorError{
		Provider: ProviderStripe,
		Code:     string(stripeErr.Code),
		Err:      err,
	}
}
