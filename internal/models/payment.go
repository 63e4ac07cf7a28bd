package models

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"
)

// PaymentRequest asks a provider for a payment link.
type PaymentRequest struct {
	// OrderID is the donation id; providers echo it back in webhooks.
	OrderID     int64
	Amount      decimal.Decimal
	Currency    string
	Description string
	ReturnURL   string
}

// PaymentResult is a payment link issued by a provider.
type PaymentResult struct {
	Provider   PaymentProvider
	PaymentID  string
	PaymentURL string
}

// PaymentGateway issues payment links.
type PaymentGateway interface {
	InitPayment(ctx context.Context, req PaymentRequest) (*PaymentResult, error)
}

// WebhookOutcome is the normalized meaning of a provider notification.
type WebhookOutcome string

const (
	WebhookSucceeded WebhookOutcome = "succeeded"
	WebhookFailed    WebhookOutcome = "failed"
	WebhookCancelled WebhookOutcome = "cancelled"
	// WebhookIgnored is an event that does not affect settlement.
	WebhookIgnored WebhookOutcome = "ignored"
)

// WebhookEvent is a verified, provider-independent settlement notification.
type WebhookEvent struct {
	Provider              PaymentProvider
	OrderID               int64
	ProviderTransactionID string
	Outcome               WebhookOutcome
}

// WebhookVerifier checks a webhook signature and decodes its payload.
// It fails closed with ErrInvalidSignature.
type WebhookVerifier interface {
	Parse(provider PaymentProvider, body []byte, header http.Header) (*WebhookEvent, error)
}
