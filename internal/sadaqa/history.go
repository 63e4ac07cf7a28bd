package sadaqa

import (
	"context"
	"sort"

	"github.com/sadaqapass/sadaqa/internal/models"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 100
)

// MyHistory merges the caller's donations and subscriptions, newest first.
func (s *Sadaqa) MyHistory(ctx context.Context, user *models.User, limit int) ([]*models.HistoryItem, error) {
	limit = clampLimit(limit, defaultHistoryLimit, maxHistoryLimit)

	donations, err := s.repo.ListUserDonations(ctx, user.ID, limit)
	if err != nil {
		return nil, err
	}
	subscriptions, err := s.repo.ListSubscriptions(ctx, user.ID, nil, limit)
	if err != nil {
		return nil, err
	}

	items := make([]*models.HistoryItem, 0, len(donations)+len(subscriptions))
	for _, d := range donations {
		items = append(items, &models.HistoryItem{
			Type:      models.HistoryDonation,
			ID:        d.ID,
			Title:     d.DonationType,
			Amount:    d.Amount,
			Currency:  d.Currency,
			Status:    string(d.Status),
			CreatedAt: d.CreatedAt,
		})
	}
	for _, sub := range subscriptions {
		items = append(items, &models.HistoryItem{
			Type:      models.HistorySubscription,
			ID:        sub.ID,
			Title:     string(sub.Plan),
			Amount:    sub.Amount,
			Currency:  sub.Currency,
			Status:    string(sub.Status),
			CreatedAt: sub.CreatedAt,
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *Sadaqa) MyStats(ctx context.Context, user *models.User) (*models.UserStats, error) {
	return s.repo.UserStats(ctx, user.ID)
}
