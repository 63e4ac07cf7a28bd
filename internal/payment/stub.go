package payment

import (
	"context"
	"fmt"

	"github.com/sadaqapass/sadaqa/internal/models"
)

// Stub issues fake test-mode links. It is only wired in development.
type Stub struct{}

func (Stub) Name() models.PaymentProvider {
	return models.ProviderStub
}

func (Stub) InitPayment(ctx context.Context, req models.PaymentRequest) (*models.PaymentResult, error) {
	paymentID := fmt.Sprintf("yk_%d", req.OrderID)
	return &models.PaymentResult{
		Provider:   models.ProviderStub,
		PaymentID:  paymentID,
		PaymentURL: fmt.Sprintf("https://yookassa.ru/payment/%s?test=true", paymentID),
	}, nil
}
