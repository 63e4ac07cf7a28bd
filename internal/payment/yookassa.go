package payment

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"

	"github.com/sadaqapass/sadaqa/internal/models"
)

const yooKassaAPIURL = "https://api.yookassa.ru/v3"

type Amount struct {
	Value    string `json:"value"`
	Currency string `json:"currency"`
}

type Confirmation struct {
	Type            string `json:"type"`
	ReturnURL       string `json:"return_url,omitempty"`
	ConfirmationURL string `json:"confirmation_url,omitempty"`
}

type CreatePaymentRequest struct {
	Amount       Amount            `json:"amount"`
	Capture      bool              `json:"capture"`
	Confirmation Confirmation      `json:"confirmation"`
	Description  string            `json:"description,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

type PaymentResponse struct {
	ID           string            `json:"id"`
	Status       string            `json:"status"`
	Paid         bool              `json:"paid"`
	Amount       Amount            `json:"amount"`
	Confirmation Confirmation      `json:"confirmation"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// YooKassa creates redirect payments through the YooKassa REST API.
type YooKassa struct {
	ShopID     string
	SecretKey  string
	APIURL     string
	HTTPClient *http.Client
}

func NewYooKassa(shopID, secretKey string, timeout time.Duration) *YooKassa {
	return &YooKassa{
		ShopID:    shopID,
		SecretKey: secretKey,
		APIURL:    yooKassaAPIURL,
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *YooKassa) Name() models.PaymentProvider {
	return models.ProviderYooKassa
}

func (c *YooKassa) InitPayment(ctx context.Context, p models.PaymentRequest) (*models.PaymentResult, error) {
	reqBody := CreatePaymentRequest{
		Amount: Amount{
			Value:    p.Amount.StringFixed(2),
			Currency: p.Currency,
		},
		Capture: true,
		Confirmation: Confirmation{
			Type:      "redirect",
			ReturnURL: p.ReturnURL,
		},
		Description: p.Description,
		Metadata:    map[string]string{"order_id": strconv.FormatInt(p.OrderID, 10)},
	}

	jsonBody, err := sonic.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s/payments", c.APIURL), bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Idempotence-Key", uuid.New().String())
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.ShopID, c.SecretKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("api error: %s (status: %d)", string(respBody), resp.StatusCode)
	}

	var paymentResponse PaymentResponse
	if err := sonic.Unmarshal(respBody, &paymentResponse); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if paymentResponse.Confirmation.ConfirmationURL == "" {
		return nil, fmt.Errorf("payment %s has no confirmation url", paymentResponse.ID)
	}

	return &models.PaymentResult{
		Provider:   models.ProviderYooKassa,
		PaymentID:  paymentResponse.ID,
		PaymentURL: paymentResponse.Confirmation.ConfirmationURL,
	}, nil
}
