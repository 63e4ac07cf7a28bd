package models

import (
	"context"

	"github.com/shopspring/decimal"
)

// NotificationService pushes human-readable messages to users. Every
// method returns immediately; delivery is best-effort and at most once.
type NotificationService interface {
	CampaignDonation(chatID int64, campaign *Campaign, amount decimal.Decimal)
	CampaignCompleted(chatID int64, campaign *Campaign)
	CampaignExpired(chatID int64, campaign *Campaign)
	CampaignModerated(chatID int64, campaign *Campaign)
	PartnerReviewed(app *PartnerApplication)
}

// Dispatcher runs side tasks off the request path. Submit never blocks and
// returns false when the task was dropped.
type Dispatcher interface {
	Submit(name string, task func(ctx context.Context)) bool
}

// StatisticsMirror is the external analytics service.
type StatisticsMirror interface {
	// Statistics returns the raw JSON document for the kind and window.
	Statistics(ctx context.Context, kind StatisticsKind, query StatisticsQuery) ([]byte, error)
	SyncDonation(ctx context.Context, donation *Donation) error
	SyncCampaign(ctx context.Context, campaign *Campaign) error
	SyncUser(ctx context.Context, user *User) error
}
