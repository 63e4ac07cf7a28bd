package sadaqa

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sadaqapass/sadaqa/internal/models"
	"github.com/sadaqapass/sadaqa/pkg/validation"
)

// CreateCampaign submits a campaign for moderation. The country defaults to
// the fund's country.
func (s *Sadaqa) CreateCampaign(ctx context.Context, owner *models.User, input models.CampaignInput) (*models.Campaign, error) {
	now := s.now()
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", models.ErrValidation)
	}
	if !input.GoalAmount.IsPositive() {
		return nil, fmt.Errorf("%w: goal_amount must be positive", models.ErrValidation)
	}
	if !input.EndDate.After(now) {
		return nil, fmt.Errorf("%w: end_date must be in the future", models.ErrValidation)
	}
	currency := input.Currency
	if currency == "" {
		currency = models.DefaultCurrency
	}
	if err := validation.ValidateCurrency(currency); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrValidation, err)
	}

	fund, err := s.repo.GetFund(ctx, input.FundID)
	if err != nil {
		return nil, err
	}

	country := input.CountryCode
	if country != nil {
		code, err := validation.ValidateAndNormalizeCountryCode(*country)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", models.ErrValidation, err)
		}
		country = &code
	} else if fund.CountryCode != "" {
		code := fund.CountryCode
		country = &code
	}

	campaign := &models.Campaign{
		OwnerID:         owner.ID,
		FundID:          fund.ID,
		Title:           title,
		Description:     input.Description,
		Category:        input.Category,
		GoalAmount:      input.GoalAmount,
		CollectedAmount: decimal.Zero,
		Currency:        currency,
		CountryCode:     country,
		BannerURL:       input.BannerURL,
		StartDate:       now,
		EndDate:         input.EndDate,
		Status:          models.CampaignPending,
	}
	if err := s.repo.CreateCampaign(ctx, campaign); err != nil {
		return nil, err
	}
	s.logger.Info("Campaign created", "campaign_id", campaign.ID, "owner_id", owner.ID, "fund_id", fund.ID)
	s.syncCampaign(campaign)
	return campaign, nil
}

// ListCampaigns applies the filter as given; a nil status lists every status.
func (s *Sadaqa) ListCampaigns(ctx context.Context, filter models.CampaignFilter) ([]*models.Campaign, error) {
	if filter.Sort == "" {
		filter.Sort = models.SortNewest
	}
	if filter.CountryCode != nil {
		code, err := validation.ValidateAndNormalizeCountryCode(*filter.CountryCode)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", models.ErrValidation, err)
		}
		filter.CountryCode = &code
	}
	filter.Offset = clampOffset(filter.Offset)
	filter.Limit = clampLimit(filter.Limit, defaultListLimit, maxListLimit)
	return s.repo.ListCampaigns(ctx, filter)
}

func (s *Sadaqa) GetCampaign(ctx context.Context, id int64) (*models.Campaign, error) {
	return s.repo.GetCampaign(ctx, id)
}

// ListPendingCampaigns is the moderation queue, oldest first.
func (s *Sadaqa) ListPendingCampaigns(ctx context.Context, offset, limit int) ([]*models.Campaign, error) {
	status := models.CampaignPending
	return s.repo.ListCampaigns(ctx, models.CampaignFilter{
		Status: &status,
		Sort:   models.SortOldest,
		Offset: clampOffset(offset),
		Limit:  clampLimit(limit, defaultListLimit, maxListLimit),
	})
}

// ModerateCampaign approves or rejects a pending campaign.
func (s *Sadaqa) ModerateCampaign(ctx context.Context, id int64, moderator *models.User, action models.ModerationAction, reason string) (*models.Campaign, error) {
	campaign, err := s.repo.GetCampaign(ctx, id)
	if err != nil {
		return nil, err
	}
	if campaign.Status != models.CampaignPending {
		return nil, fmt.Errorf("campaign %d is %s, not pending: %w", id, campaign.Status, models.ErrInvalidState)
	}

	now := s.now()
	changes := models.CampaignChanges{ModeratedBy: &moderator.ID, ModeratedAt: &now}
	var to models.CampaignStatus
	switch action {
	case models.ModerationApprove:
		to = models.CampaignActive
	case models.ModerationReject:
		to = models.CampaignRejected
		if reason = strings.TrimSpace(reason); reason != "" {
			changes.RejectionReason = &reason
		}
	default:
		return nil, fmt.Errorf("%w: unknown moderation action %q", models.ErrValidation, action)
	}

	ok, err := s.repo.TransitionCampaign(ctx, id, []models.CampaignStatus{models.CampaignPending}, to, changes)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("campaign %d was moderated concurrently: %w", id, models.ErrInvalidState)
	}

	campaign, err = s.repo.GetCampaign(ctx, id)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Campaign moderated", "campaign_id", id, "status", campaign.Status, "moderator_id", moderator.ID)
	if chatID := s.ownerChat(ctx, campaign); chatID != 0 {
		s.notificator.CampaignModerated(chatID, campaign)
	}
	s.syncCampaign(campaign)
	return campaign, nil
}

// SetCampaignStatus lets the owner withdraw a pending or active campaign.
func (s *Sadaqa) SetCampaignStatus(ctx context.Context, id int64, owner *models.User, status models.CampaignStatus) (*models.Campaign, error) {
	campaign, err := s.repo.GetCampaign(ctx, id)
	if err != nil {
		return nil, err
	}
	if campaign.OwnerID != owner.ID {
		return nil, fmt.Errorf("campaign %d belongs to another user: %w", id, models.ErrForbidden)
	}
	if status != models.CampaignCancelled {
		return nil, fmt.Errorf("owner cannot move campaign to %q: %w", status, models.ErrInvalidState)
	}

	ok, err := s.repo.TransitionCampaign(ctx, id,
		[]models.CampaignStatus{models.CampaignPending, models.CampaignActive},
		models.CampaignCancelled, models.CampaignChanges{})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("campaign %d is %s: %w", id, campaign.Status, models.ErrInvalidState)
	}

	campaign, err = s.repo.GetCampaign(ctx, id)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Campaign cancelled by owner", "campaign_id", id)
	s.syncCampaign(campaign)
	return campaign, nil
}

// RecordCompletedDonation credits a completed donation to the campaign.
// Webhook settlement credits campaigns inside its own transaction; this is
// the standalone form of the same step.
func (s *Sadaqa) RecordCompletedDonation(ctx context.Context, campaignID int64, amount decimal.Decimal) (*models.CampaignProgress, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", models.ErrValidation)
	}
	progress, err := s.repo.AddCampaignProgress(ctx, campaignID, amount)
	if err != nil {
		return nil, err
	}
	s.campaignCredited(ctx, progress, amount)
	return progress, nil
}

// campaignCredited fans out the side effects of a campaign credit.
func (s *Sadaqa) campaignCredited(ctx context.Context, progress *models.CampaignProgress, amount decimal.Decimal) {
	campaign := progress.Campaign
	s.logger.Info("Campaign credited",
		"campaign_id", campaign.ID,
		"amount", amount.String(),
		"collected", campaign.CollectedAmount.String(),
		"goal_reached", progress.GoalReached)

	if chatID := s.ownerChat(ctx, campaign); chatID != 0 {
		s.notificator.CampaignDonation(chatID, campaign, amount)
		if progress.GoalReached {
			s.notificator.CampaignCompleted(chatID, campaign)
		}
	}
	s.syncCampaign(campaign)
}

// SweepExpired expires every active campaign whose end date is before now
// and returns the campaigns this call expired.
func (s *Sadaqa) SweepExpired(ctx context.Context, now time.Time) ([]*models.Campaign, error) {
	candidates, err := s.repo.ListExpirableCampaigns(ctx, now)
	if err != nil {
		return nil, err
	}

	expired := make([]*models.Campaign, 0, len(candidates))
	for _, c := range candidates {
		ok, err := s.repo.TransitionCampaign(ctx, c.ID,
			[]models.CampaignStatus{models.CampaignActive},
			models.CampaignExpired, models.CampaignChanges{EndedBefore: &now})
		if err != nil {
			s.logger.Error("Failed to expire campaign", "campaign_id", c.ID, "error", err)
			continue
		}
		if !ok {
			// Completed or cancelled since it was listed.
			continue
		}
		c.Status = models.CampaignExpired
		expired = append(expired, c)

		if chatID := s.ownerChat(ctx, c); chatID != 0 {
			s.notificator.CampaignExpired(chatID, c)
		}
		s.syncCampaign(c)
	}
	if len(expired) > 0 {
		s.logger.Info("Expired campaigns", "count", len(expired))
	}
	return expired, nil
}

// ListCampaignDonations lists a campaign's completed donations, newest first.
func (s *Sadaqa) ListCampaignDonations(ctx context.Context, campaignID int64, offset, limit int) ([]*models.Donation, error) {
	if _, err := s.repo.GetCampaign(ctx, campaignID); err != nil {
		return nil, err
	}
	return s.repo.ListCampaignDonations(ctx, campaignID, clampOffset(offset), clampLimit(limit, defaultListLimit, maxListLimit))
}

func (s *Sadaqa) CampaignReport(ctx context.Context, campaignID int64) (*models.CampaignReport, error) {
	campaign, err := s.repo.GetCampaign(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	count, sum, err := s.repo.CampaignDonationTotals(ctx, campaignID)
	if err != nil {
		return nil, err
	}

	average := decimal.Zero
	if count > 0 {
		average = sum.Div(decimal.NewFromInt(count)).Round(2)
	}
	return &models.CampaignReport{
		CampaignID:        campaign.ID,
		Title:             campaign.Title,
		Status:            campaign.Status,
		GoalAmount:        campaign.GoalAmount,
		CollectedAmount:   campaign.CollectedAmount,
		Currency:          campaign.Currency,
		ProgressPercent:   campaign.ProgressPercent(),
		ParticipantsCount: campaign.ParticipantsCount,
		DonationsCount:    count,
		AverageDonation:   average,
		DaysLeft:          daysLeft(campaign, s.now()),
	}, nil
}

// daysLeft rounds the remaining time up to whole days.
func daysLeft(c *models.Campaign, now time.Time) int {
	if c.Status.Terminal() || !c.EndDate.After(now) {
		return 0
	}
	return int(math.Ceil(c.EndDate.Sub(now).Hours() / 24))
}

// ownerChat returns the owner's Telegram chat, or 0 when it cannot be resolved.
func (s *Sadaqa) ownerChat(ctx context.Context, campaign *models.Campaign) int64 {
	owner, err := s.repo.GetUser(ctx, campaign.OwnerID)
	if err != nil {
		s.logger.Warn("Campaign owner not resolved", "campaign_id", campaign.ID, "owner_id", campaign.OwnerID, "error", err)
		return 0
	}
	return owner.TgID
}
