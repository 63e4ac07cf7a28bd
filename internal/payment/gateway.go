// Package payment issues payment links and verifies settlement webhooks
// for the supported providers.
package payment

import (
	"context"
	"fmt"

	"github.com/sadaqapass/sadaqa/internal/config"
	"github.com/sadaqapass/sadaqa/internal/models"
	"github.com/sadaqapass/sadaqa/pkg/logger"
)

// Provider is a single payment backend.
type Provider interface {
	Name() models.PaymentProvider
	InitPayment(ctx context.Context, req models.PaymentRequest) (*models.PaymentResult, error)
}

// Fallback tries its providers in order and returns the first link issued.
type Fallback struct {
	logger    *logger.Logger
	providers []Provider
}

func NewFallback(logger *logger.Logger, providers ...Provider) *Fallback {
	return &Fallback{logger: logger, providers: providers}
}

// NewGateway wires the providers configured in cfg: YooKassa first, then
// CloudPayments. Development mode appends the stub.
func NewGateway(cfg *config.Config, logger *logger.Logger) *Fallback {
	var providers []Provider
	if cfg.YooKassaShopID != "" && cfg.YooKassaSecretKey != "" {
		providers = append(providers, NewYooKassa(cfg.YooKassaShopID, cfg.YooKassaSecretKey, cfg.PaymentTimeout))
	}
	if cfg.CloudPaymentsPublicID != "" && cfg.CloudPaymentsAPISecret != "" {
		providers = append(providers, NewCloudPayments(cfg.CloudPaymentsPublicID, cfg.CloudPaymentsAPISecret, cfg.PaymentTimeout))
	}
	if cfg.Development {
		providers = append(providers, Stub{})
	}
	if len(providers) == 0 {
		logger.Warn("No payment provider configured")
	}
	return NewFallback(logger, providers...)
}

func (f *Fallback) InitPayment(ctx context.Context, req models.PaymentRequest) (*models.PaymentResult, error) {
	for _, p := range f.providers {
		res, err := p.InitPayment(ctx, req)
		if err == nil {
			return res, nil
		}
		f.logger.Error("Payment provider failed", "provider", p.Name(), "order_id", req.OrderID, "error", err)
		if ctx.Err() != nil {
			break
		}
	}
	return nil, fmt.Errorf("no payment provider available: %w", models.ErrUpstreamUnavailable)
}
