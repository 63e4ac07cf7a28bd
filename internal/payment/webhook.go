package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"

	"github.com/sadaqapass/sadaqa/internal/models"
)

const (
	YooKassaSignatureHeader      = "X-Yookassa-Signature"
	CloudPaymentsSignatureHeader = "Content-HMAC"
)

// WebhookNotification is the YooKassa notification envelope.
type WebhookNotification struct {
	Type   string        `json:"type"`
	Event  string        `json:"event"`
	Object WebhookObject `json:"object"`
}

type WebhookObject struct {
	ID       string            `json:"id"`
	Status   string            `json:"status"`
	Paid     bool              `json:"paid"`
	Amount   Amount            `json:"amount"`
	Metadata map[string]string `json:"metadata"`
}

// CloudNotification is the CloudPayments pay/fail notification body.
type CloudNotification struct {
	TransactionID int64  `json:"TransactionId"`
	InvoiceID     string `json:"InvoiceId"`
	Status        string `json:"Status"`
}

// Webhooks verifies and decodes provider notifications.
type Webhooks struct {
	YooKassaSecret      string
	CloudPaymentsSecret string
}

func NewWebhooks(yooKassaSecret, cloudPaymentsSecret string) *Webhooks {
	return &Webhooks{YooKassaSecret: yooKassaSecret, CloudPaymentsSecret: cloudPaymentsSecret}
}

// Parse fails closed: a missing secret, a missing header or a mismatch all
// return models.ErrInvalidSignature before the body is decoded.
func (w *Webhooks) Parse(provider models.PaymentProvider, body []byte, header http.Header) (*models.WebhookEvent, error) {
	switch provider {
	case models.ProviderYooKassa:
		if !verifyHex(body, header.Get(YooKassaSignatureHeader), w.YooKassaSecret) {
			return nil, fmt.Errorf("yookassa webhook: %w", models.ErrInvalidSignature)
		}
		return parseYooKassa(body)
	case models.ProviderCloudPayments:
		if !verifyBase64(body, header.Get(CloudPaymentsSignatureHeader), w.CloudPaymentsSecret) {
			return nil, fmt.Errorf("cloudpayments webhook: %w", models.ErrInvalidSignature)
		}
		return parseCloudPayments(body)
	}
	return nil, fmt.Errorf("webhook for provider %q: %w", provider, models.ErrValidation)
}

func parseYooKassa(body []byte) (*models.WebhookEvent, error) {
	var n WebhookNotification
	if err := sonic.Unmarshal(body, &n); err != nil {
		return nil, fmt.Errorf("%w: decode yookassa webhook: %v", models.ErrValidation, err)
	}

	event := &models.WebhookEvent{
		Provider:              models.ProviderYooKassa,
		ProviderTransactionID: n.Object.ID,
	}
	switch n.Event {
	case "payment.succeeded":
		event.Outcome = models.WebhookSucceeded
	case "payment.canceled":
		event.Outcome = models.WebhookCancelled
	default:
		event.Outcome = models.WebhookIgnored
		return event, nil
	}

	orderID, err := parseOrderID(n.Object.Metadata["order_id"])
	if err != nil {
		return nil, err
	}
	event.OrderID = orderID
	return event, nil
}

func parseCloudPayments(body []byte) (*models.WebhookEvent, error) {
	var n CloudNotification
	if err := sonic.Unmarshal(body, &n); err != nil {
		return nil, fmt.Errorf("%w: decode cloudpayments webhook: %v", models.ErrValidation, err)
	}

	event := &models.WebhookEvent{Provider: models.ProviderCloudPayments}
	if n.TransactionID != 0 {
		event.ProviderTransactionID = strconv.FormatInt(n.TransactionID, 10)
	}
	switch n.Status {
	case "Completed":
		event.Outcome = models.WebhookSucceeded
	case "Declined":
		event.Outcome = models.WebhookFailed
	case "Cancelled":
		event.Outcome = models.WebhookCancelled
	default:
		event.Outcome = models.WebhookIgnored
		return event, nil
	}

	orderID, err := parseOrderID(n.InvoiceID)
	if err != nil {
		return nil, err
	}
	event.OrderID = orderID
	return event, nil
}

func parseOrderID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: bad order id %q", models.ErrValidation, raw)
	}
	return id, nil
}

func mac(body []byte, secret string) []byte {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write(body)
	return h.Sum(nil)
}

func verifyHex(body []byte, signature, secret string) bool {
	if secret == "" || signature == "" {
		return false
	}
	got, err := hex.DecodeString(strings.TrimSpace(signature))
	if err != nil {
		return false
	}
	return hmac.Equal(got, mac(body, secret))
}

func verifyBase64(body []byte, signature, secret string) bool {
	if secret == "" || signature == "" {
		return false
	}
	got, err := base64.StdEncoding.DecodeString(strings.TrimSpace(signature))
	if err != nil {
		return false
	}
	return hmac.Equal(got, mac(body, secret))
}

// SignHex returns the X-Yookassa-Signature value for body.
func SignHex(body []byte, secret string) string {
	return hex.EncodeToString(mac(body, secret))
}

// SignBase64 returns the Content-HMAC value for body.
func SignBase64(body []byte, secret string) string {
	return base64.StdEncoding.EncodeToString(mac(body, secret))
}
