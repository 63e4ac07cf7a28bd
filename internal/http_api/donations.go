package http_api

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/sadaqapass/sadaqa/internal/models"
)

// InitDonationRequest is the body of POST /donations/init.
type InitDonationRequest struct {
	FundID       *int64          `json:"fund_id" binding:"omitempty,gt=0"`
	CampaignID   *int64          `json:"campaign_id" binding:"omitempty,gt=0"`
	Amount       decimal.Decimal `json:"amount" binding:"decimal_gt0"`
	Currency     string          `json:"currency" binding:"omitempty,currency"`
	DonationType string          `json:"donation_type" binding:"omitempty,oneof=sadaqa zakat campaign quick"`
	ReturnURL    string          `json:"return_url" binding:"omitempty,url"`
}

func (s *HTTPServer) initDonation(c *gin.Context) {
	var req InitDonationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondBindError(c, err)
		return
	}

	input := models.DonationInput{
		FundID:       req.FundID,
		Amount:       req.Amount,
		Currency:     req.Currency,
		DonationType: req.DonationType,
		ReturnURL:    req.ReturnURL,
	}
	var (
		donation *models.Donation
		err      error
	)
	if req.CampaignID != nil {
		donation, err = s.sadaqa.DonateToCampaign(c.Request.Context(), currentUser(c), *req.CampaignID, input)
	} else {
		donation, err = s.sadaqa.InitDonation(c.Request.Context(), currentUser(c), input)
	}
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, donation)
}

func (s *HTTPServer) getDonation(c *gin.Context) {
	id, ok := s.pathID(c, "id")
	if !ok {
		return
	}
	donation, err := s.sadaqa.GetDonation(c.Request.Context(), id, currentUser(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, donation)
}

// webhook settles donations from provider notifications. Every failure is
// answered with a 400 so that provider retries stay bounded.
func (s *HTTPServer) webhook(provider models.PaymentProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
		if err != nil {
			s.logger.Warn("Failed to read webhook body", "provider", provider, "error", err)
			c.JSON(http.StatusBadRequest, gin.H{"detail": "Webhook processing error"})
			return
		}

		if err := s.sadaqa.ReconcileWebhook(c.Request.Context(), provider, body, c.Request.Header); err != nil {
			if errors.Is(err, models.ErrInvalidSignature) {
				s.logger.Warn("Webhook signature rejected", "provider", provider, "request_id", c.GetString(requestIDKey))
				c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid signature"})
				return
			}
			s.logger.Error("Webhook processing failed", "provider", provider, "request_id", c.GetString(requestIDKey), "error", err)
			c.JSON(http.StatusBadRequest, gin.H{"detail": "Webhook processing error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
