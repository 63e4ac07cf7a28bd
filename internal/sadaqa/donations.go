package sadaqa

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/sadaqapass/sadaqa/internal/models"
	"github.com/sadaqapass/sadaqa/pkg/validation"
)

// InitDonation stores a pending donation and asks the payment gateway for a
// link. The gateway call runs outside any transaction; on failure the row is
// left pending and ErrUpstreamUnavailable is returned.
func (s *Sadaqa) InitDonation(ctx context.Context, user *models.User, input models.DonationInput) (*models.Donation, error) {
	if !input.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", models.ErrValidation)
	}
	currency := input.Currency
	if currency == "" {
		currency = models.DefaultCurrency
	}
	if err := validation.ValidateCurrency(currency); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrValidation, err)
	}
	donationType := input.DonationType
	if donationType == "" {
		donationType = models.DonationTypeSadaqa
	}
	if input.FundID != nil && input.CampaignID == nil {
		if _, err := s.repo.GetFund(ctx, *input.FundID); err != nil {
			return nil, err
		}
	}

	donation := &models.Donation{
		UserID:       user.ID,
		FundID:       input.FundID,
		CampaignID:   input.CampaignID,
		Amount:       input.Amount,
		Currency:     currency,
		Status:       models.DonationPending,
		DonationType: donationType,
	}
	if err := s.repo.CreateDonation(ctx, donation); err != nil {
		return nil, err
	}

	returnURL := input.ReturnURL
	if returnURL == "" {
		returnURL = s.config.PaymentReturnURL
	}
	description := input.Description
	if description == "" {
		description = fmt.Sprintf("Пожертвование #%d", donation.ID)
	}

	payCtx, cancel := s.paymentContext(ctx)
	defer cancel()
	result, err := s.gateway.InitPayment(payCtx, models.PaymentRequest{
		OrderID:     donation.ID,
		Amount:      donation.Amount,
		Currency:    donation.Currency,
		Description: description,
		ReturnURL:   returnURL,
	})
	if err != nil {
		s.logger.Error("Payment init failed", "donation_id", donation.ID, "error", err)
		return nil, fmt.Errorf("payment init for donation %d: %w", donation.ID, models.ErrUpstreamUnavailable)
	}

	if err := s.repo.MarkDonationProcessing(ctx, donation.ID, result.Provider, result.PaymentID, result.PaymentURL); err != nil {
		if !errors.Is(err, models.ErrInvalidState) {
			return nil, err
		}
		// A webhook settled the donation while the gateway call was in flight.
		current, getErr := s.repo.GetDonation(ctx, donation.ID)
		if getErr != nil {
			return nil, getErr
		}
		s.logger.Warn("Donation settled before payment init returned",
			"donation_id", donation.ID,
			"status", current.Status,
			"provider", result.Provider)
		return current, nil
	}
	donation.Status = models.DonationProcessing
	donation.Provider = result.Provider
	donation.PaymentID = result.PaymentID
	donation.PaymentURL = result.PaymentURL

	s.logger.Info("Donation initialized",
		"donation_id", donation.ID,
		"user_id", user.ID,
		"amount", donation.Amount.String(),
		"provider", result.Provider)
	s.syncDonation(donation)
	return donation, nil
}

func (s *Sadaqa) paymentContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.config.PaymentTimeout > 0 {
		return context.WithTimeout(ctx, s.config.PaymentTimeout)
	}
	return context.WithCancel(ctx)
}

// DonateToCampaign starts a donation to an active campaign.
func (s *Sadaqa) DonateToCampaign(ctx context.Context, user *models.User, campaignID int64, input models.DonationInput) (*models.Donation, error) {
	campaign, err := s.repo.GetCampaign(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if campaign.Status != models.CampaignActive {
		return nil, fmt.Errorf("campaign %d is %s, not active: %w", campaignID, campaign.Status, models.ErrInvalidState)
	}

	fundID := campaign.FundID
	input.CampaignID = &campaign.ID
	input.FundID = &fundID
	input.DonationType = models.DonationTypeCampaign
	if input.Currency == "" {
		input.Currency = campaign.Currency
	}
	return s.InitDonation(ctx, user, input)
}

// GetDonation returns the caller's donation. Foreign donations are reported
// as not found.
func (s *Sadaqa) GetDonation(ctx context.Context, id int64, user *models.User) (*models.Donation, error) {
	donation, err := s.repo.GetDonation(ctx, id)
	if err != nil {
		return nil, err
	}
	if donation.UserID != user.ID {
		return nil, fmt.Errorf("donation %d: %w", id, models.ErrNotFound)
	}
	return donation, nil
}

var webhookStatuses = map[models.WebhookOutcome]models.DonationStatus{
	models.WebhookSucceeded: models.DonationCompleted,
	models.WebhookFailed:    models.DonationFailed,
	models.WebhookCancelled: models.DonationCancelled,
}

// ReconcileWebhook verifies a provider notification and settles the
// donation it names. Settling is guarded on the donation being open, so a
// redelivered event changes nothing and credits no campaign twice.
func (s *Sadaqa) ReconcileWebhook(ctx context.Context, provider models.PaymentProvider, body []byte, header http.Header) error {
	event, err := s.webhooks.Parse(provider, body, header)
	if err != nil {
		return err
	}
	status, ok := webhookStatuses[event.Outcome]
	if !ok {
		s.logger.Debug("Webhook event ignored", "provider", provider, "order_id", event.OrderID)
		return nil
	}

	result, err := s.repo.SettleDonation(ctx, models.DonationSettlement{
		DonationID:            event.OrderID,
		Status:                status,
		ProviderTransactionID: event.ProviderTransactionID,
		At:                    s.now(),
	})
	if err != nil {
		return err
	}
	if !result.Applied {
		s.logger.Info("Webhook for settled donation ignored",
			"provider", provider,
			"donation_id", event.OrderID,
			"status", result.Donation.Status)
		return nil
	}

	s.logger.Info("Donation settled",
		"provider", provider,
		"donation_id", result.Donation.ID,
		"status", result.Donation.Status,
		"transaction_id", event.ProviderTransactionID)
	s.syncDonation(result.Donation)
	if result.Progress != nil {
		s.campaignCredited(ctx, result.Progress, result.Donation.Amount)
	}
	return nil
}
