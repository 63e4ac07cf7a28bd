package models

import (
	"context"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sadaqapass/sadaqa/internal/zakat"
)

// SadaqaI is the business layer served by the HTTP API.
type SadaqaI interface {
	// Start launches background work such as the expiry sweeper.
	Start()
	// Stop waits for background work to finish.
	Stop()

	// Authenticate finds or creates the user behind a verified identity.
	Authenticate(ctx context.Context, identity TelegramIdentity) (*User, error)
	GetUser(ctx context.Context, id int64) (*User, error)

	ListFunds(ctx context.Context, filter FundFilter) ([]*Fund, error)
	GetFund(ctx context.Context, id int64) (*Fund, error)
	CreateFund(ctx context.Context, fund *Fund) (*Fund, error)

	CreateCampaign(ctx context.Context, owner *User, input CampaignInput) (*Campaign, error)
	ListCampaigns(ctx context.Context, filter CampaignFilter) ([]*Campaign, error)
	GetCampaign(ctx context.Context, id int64) (*Campaign, error)
	ListPendingCampaigns(ctx context.Context, offset, limit int) ([]*Campaign, error)
	ModerateCampaign(ctx context.Context, id int64, moderator *User, action ModerationAction, reason string) (*Campaign, error)
	SetCampaignStatus(ctx context.Context, id int64, owner *User, status CampaignStatus) (*Campaign, error)
	RecordCompletedDonation(ctx context.Context, campaignID int64, amount decimal.Decimal) (*CampaignProgress, error)
	SweepExpired(ctx context.Context, now time.Time) ([]*Campaign, error)
	ListCampaignDonations(ctx context.Context, campaignID int64, offset, limit int) ([]*Donation, error)
	CampaignReport(ctx context.Context, campaignID int64) (*CampaignReport, error)

	InitDonation(ctx context.Context, user *User, input DonationInput) (*Donation, error)
	DonateToCampaign(ctx context.Context, user *User, campaignID int64, input DonationInput) (*Donation, error)
	GetDonation(ctx context.Context, id int64, user *User) (*Donation, error)
	ReconcileWebhook(ctx context.Context, provider PaymentProvider, body []byte, header http.Header) error

	CalculateZakat(ctx context.Context, user *User, payload zakat.Payload) (*ZakatCalc, error)
	PayZakat(ctx context.Context, user *User, calcID int64, returnURL string) (*Donation, error)
	ZakatHistory(ctx context.Context, user *User, limit int) ([]*ZakatCalc, error)

	InitSubscription(ctx context.Context, user *User, input SubscriptionInput) (*Subscription, error)
	ListSubscriptions(ctx context.Context, user *User, status *SubscriptionStatus) ([]*Subscription, error)
	CancelSubscription(ctx context.Context, id int64, user *User) (*Subscription, error)
	PauseSubscription(ctx context.Context, id int64, user *User) (*Subscription, error)
	ResumeSubscription(ctx context.Context, id int64, user *User) (*Subscription, error)

	MyHistory(ctx context.Context, user *User, limit int) ([]*HistoryItem, error)
	MyStats(ctx context.Context, user *User) (*UserStats, error)

	SubmitPartnerApplication(ctx context.Context, app *PartnerApplication) (*PartnerApplication, error)
	ListPartnerApplications(ctx context.Context, status *PartnerApplicationStatus, offset, limit int) ([]*PartnerApplication, error)
	GetPartnerApplication(ctx context.Context, id int64) (*PartnerApplication, error)
	ReviewPartnerApplication(ctx context.Context, id int64, reviewer *User, status PartnerApplicationStatus, reason string) (*PartnerApplication, error)
	ListPartnerFunds(ctx context.Context) ([]*Fund, error)

	Statistics(ctx context.Context, kind StatisticsKind, query StatisticsQuery) ([]byte, error)
}

// APIServer is the HTTP front of the application.
type APIServer interface {
	Start()
	Shutdown() error
}
