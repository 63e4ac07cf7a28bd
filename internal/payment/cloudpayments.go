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

	"github.com/sadaqapass/sadaqa/internal/models"
)

const cloudPaymentsAPIURL = "https://api.cloudpayments.ru"

type cloudOrderRequest struct {
	Amount      float64 `json:"Amount"`
	Currency    string  `json:"Currency"`
	InvoiceID   string  `json:"InvoiceId"`
	Description string  `json:"Description"`
	ReturnURL   string  `json:"ReturnUrl,omitempty"`
}

type cloudOrderResponse struct {
	Success bool   `json:"Success"`
	Message string `json:"Message"`
	Model   struct {
		ID  string `json:"Id"`
		URL string `json:"Url"`
	} `json:"Model"`
}

// CloudPayments creates payment links through the CloudPayments orders API.
type CloudPayments struct {
	PublicID   string
	APISecret  string
	APIURL     string
	HTTPClient *http.Client
}

func NewCloudPayments(publicID, apiSecret string, timeout time.Duration) *CloudPayments {
	return &CloudPayments{
		PublicID:  publicID,
		APISecret: apiSecret,
		APIURL:    cloudPaymentsAPIURL,
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *CloudPayments) Name() models.PaymentProvider {
	return models.ProviderCloudPayments
}

func (c *CloudPayments) InitPayment(ctx context.Context, p models.PaymentRequest) (*models.PaymentResult, error) {
	amount, _ := p.Amount.Round(2).Float64()
	jsonBody, err := sonic.Marshal(cloudOrderRequest{
		Amount:      amount,
		Currency:    p.Currency,
		InvoiceID:   strconv.FormatInt(p.OrderID, 10),
		Description: p.Description,
		ReturnURL:   p.ReturnURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.APIURL+"/orders/create", bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.PublicID, c.APISecret)

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

	var order cloudOrderResponse
	if err := sonic.Unmarshal(respBody, &order); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if !order.Success || order.Model.URL == "" {
		return nil, fmt.Errorf("order rejected: %s", order.Message)
	}

	return &models.PaymentResult{
		Provider:   models.ProviderCloudPayments,
		PaymentID:  order.Model.ID,
		PaymentURL: order.Model.URL,
	}, nil
}
