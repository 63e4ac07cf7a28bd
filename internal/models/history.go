package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// HistoryItemType tells apart the entries of a user's history.
type HistoryItemType string

const (
	HistoryDonation     HistoryItemType = "donation"
	HistorySubscription HistoryItemType = "subscription"
)

// HistoryItem is one row of the merged donation/subscription history.
type HistoryItem struct {
	Type      HistoryItemType `json:"type"`
	ID        int64           `json:"id"`
	Title     string          `json:"title"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
	Status    string          `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
}

// UserStats aggregates a user's giving.
type UserStats struct {
	TotalDonated        decimal.Decimal `json:"total_donated"`
	DonationsCount      int64           `json:"donations_count"`
	CampaignsSupported  int64           `json:"campaigns_supported"`
	ActiveSubscriptions int64           `json:"active_subscriptions"`
	TotalZakatPaid      decimal.Decimal `json:"total_zakat_paid"`
}

// StatisticsKind selects a statistics endpoint of the analytics mirror.
type StatisticsKind string

const (
	StatisticsOverview  StatisticsKind = "overview"
	StatisticsDonations StatisticsKind = "donations"
	StatisticsCampaigns StatisticsKind = "campaigns"
	StatisticsUsers     StatisticsKind = "users"
)

// StatisticsQuery is the date window of a statistics request.
type StatisticsQuery struct {
	StartDate string
	EndDate   string
	GroupBy   string
}
