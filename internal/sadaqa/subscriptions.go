package sadaqa

import (
	"context"
	"fmt"

	"github.com/sadaqapass/sadaqa/internal/models"
	"github.com/sadaqapass/sadaqa/internal/tariffs"
)

// InitSubscription prices a subscription from the tariff table and starts it.
// Recurring charges are not captured here.
func (s *Sadaqa) InitSubscription(ctx context.Context, user *models.User, input models.SubscriptionInput) (*models.Subscription, error) {
	tariff, err := tariffs.Lookup(input.Plan, input.Period)
	if err != nil {
		return nil, err
	}
	if input.FundID != nil {
		if _, err := s.repo.GetFund(ctx, *input.FundID); err != nil {
			return nil, err
		}
	}

	now := s.now()
	expires := tariff.ExpiresAt(now)
	nextCharge := tariff.NextChargeAt(now)
	subscription := &models.Subscription{
		UserID:         user.ID,
		FundID:         input.FundID,
		Plan:           tariff.Plan,
		Period:         tariff.Period,
		Amount:         tariff.Amount,
		Currency:       tariff.Currency,
		CharityPercent: tariff.CharityPercent,
		Status:         models.SubscriptionActive,
		StartedAt:      now,
		NextChargeAt:   &nextCharge,
		ExpiresAt:      &expires,
	}
	if err := s.repo.CreateSubscription(ctx, subscription); err != nil {
		return nil, err
	}
	s.logger.Info("Subscription started",
		"subscription_id", subscription.ID,
		"user_id", user.ID,
		"plan", tariff.Plan,
		"period", tariff.Period)
	return subscription, nil
}

func (s *Sadaqa) ListSubscriptions(ctx context.Context, user *models.User, status *models.SubscriptionStatus) ([]*models.Subscription, error) {
	return s.repo.ListSubscriptions(ctx, user.ID, status, 0)
}

// CancelSubscription ends an active or paused subscription.
func (s *Sadaqa) CancelSubscription(ctx context.Context, id int64, user *models.User) (*models.Subscription, error) {
	return s.transitionSubscription(ctx, id, user,
		[]models.SubscriptionStatus{models.SubscriptionActive, models.SubscriptionPaused},
		models.SubscriptionCancelled)
}

func (s *Sadaqa) PauseSubscription(ctx context.Context, id int64, user *models.User) (*models.Subscription, error) {
	return s.transitionSubscription(ctx, id, user,
		[]models.SubscriptionStatus{models.SubscriptionActive},
		models.SubscriptionPaused)
}

// ResumeSubscription reactivates a paused subscription that has not expired.
func (s *Sadaqa) ResumeSubscription(ctx context.Context, id int64, user *models.User) (*models.Subscription, error) {
	subscription, err := s.ownSubscription(ctx, id, user)
	if err != nil {
		return nil, err
	}
	if subscription.ExpiresAt != nil && !subscription.ExpiresAt.After(s.now()) {
		return nil, fmt.Errorf("subscription %d expired at %s: %w", id, subscription.ExpiresAt.Format("2006-01-02"), models.ErrInvalidState)
	}
	return s.transitionSubscription(ctx, id, user,
		[]models.SubscriptionStatus{models.SubscriptionPaused},
		models.SubscriptionActive)
}

func (s *Sadaqa) transitionSubscription(ctx context.Context, id int64, user *models.User, from []models.SubscriptionStatus, to models.SubscriptionStatus) (*models.Subscription, error) {
	subscription, err := s.ownSubscription(ctx, id, user)
	if err != nil {
		return nil, err
	}
	ok, err := s.repo.TransitionSubscription(ctx, id, from, to, s.now())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("subscription %d is %s, cannot become %s: %w", id, subscription.Status, to, models.ErrInvalidState)
	}
	s.logger.Info("Subscription updated", "subscription_id", id, "from", subscription.Status, "to", to)
	return s.repo.GetSubscription(ctx, id)
}

// ownSubscription loads the caller's subscription. Foreign ones are not found.
func (s *Sadaqa) ownSubscription(ctx context.Context, id int64, user *models.User) (*models.Subscription, error) {
	subscription, err := s.repo.GetSubscription(ctx, id)
	if err != nil {
		return nil, err
	}
	if subscription.UserID != user.ID {
		return nil, fmt.Errorf("subscription %d: %w", id, models.ErrNotFound)
	}
	return subscription, nil
}
