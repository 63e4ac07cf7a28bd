package models

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Repository is the relational store. Lookups of absent rows return an
// error wrapping ErrNotFound. Guarded transitions report whether the row
// was in one of the expected source states.
type Repository interface {
	Close() error

	// FindOrCreateUser upserts by TgID and returns the stored row.
	FindOrCreateUser(ctx context.Context, user *User) (*User, error)
	GetUser(ctx context.Context, id int64) (*User, error)

	ListFunds(ctx context.Context, filter FundFilter) ([]*Fund, error)
	GetFund(ctx context.Context, id int64) (*Fund, error)
	CreateFund(ctx context.Context, fund *Fund) error

	CreateCampaign(ctx context.Context, campaign *Campaign) error
	GetCampaign(ctx context.Context, id int64) (*Campaign, error)
	ListCampaigns(ctx context.Context, filter CampaignFilter) ([]*Campaign, error)
	// TransitionCampaign moves the campaign to `to` only if its current status is in `from`.
	TransitionCampaign(ctx context.Context, id int64, from []CampaignStatus, to CampaignStatus, changes CampaignChanges) (bool, error)
	// AddCampaignProgress atomically credits amount and one participant and
	// completes an active campaign whose goal is now covered.
	AddCampaignProgress(ctx context.Context, id int64, amount decimal.Decimal) (*CampaignProgress, error)
	// ListExpirableCampaigns returns active campaigns whose end date is before now.
	ListExpirableCampaigns(ctx context.Context, now time.Time) ([]*Campaign, error)
	ListCampaignDonations(ctx context.Context, campaignID int64, offset, limit int) ([]*Donation, error)
	CampaignDonationTotals(ctx context.Context, campaignID int64) (count int64, sum decimal.Decimal, err error)

	CreateDonation(ctx context.Context, donation *Donation) error
	GetDonation(ctx context.Context, id int64) (*Donation, error)
	// MarkDonationProcessing records the payment link on a pending donation.
	MarkDonationProcessing(ctx context.Context, id int64, provider PaymentProvider, paymentID, paymentURL string) error
	// SettleDonation applies a terminal status to a pending or processing
	// donation and, for completions, credits its campaign in the same transaction.
	SettleDonation(ctx context.Context, settlement DonationSettlement) (*SettlementResult, error)
	ListUserDonations(ctx context.Context, userID int64, limit int) ([]*Donation, error)
	UserStats(ctx context.Context, userID int64) (*UserStats, error)

	CreateSubscription(ctx context.Context, subscription *Subscription) error
	GetSubscription(ctx context.Context, id int64) (*Subscription, error)
	ListSubscriptions(ctx context.Context, userID int64, status *SubscriptionStatus, limit int) ([]*Subscription, error)
	TransitionSubscription(ctx context.Context, id int64, from []SubscriptionStatus, to SubscriptionStatus, at time.Time) (bool, error)

	CreateZakatCalc(ctx context.Context, calc *ZakatCalc) error
	GetZakatCalc(ctx context.Context, id int64) (*ZakatCalc, error)
	ListZakatCalcs(ctx context.Context, userID int64, limit int) ([]*ZakatCalc, error)
	LinkZakatDonation(ctx context.Context, calcID, donationID int64) error

	CreatePartnerApplication(ctx context.Context, app *PartnerApplication) error
	GetPartnerApplication(ctx context.Context, id int64) (*PartnerApplication, error)
	ListPartnerApplications(ctx context.Context, status *PartnerApplicationStatus, offset, limit int) ([]*PartnerApplication, error)
	// ReviewPartnerApplication decides a pending application.
	ReviewPartnerApplication(ctx context.Context, id int64, review PartnerReview) (bool, error)
}

// CampaignChanges are the extra columns written by a campaign transition.
type CampaignChanges struct {
	ModeratedBy     *int64
	ModeratedAt     *time.Time
	RejectionReason *string
	// EndedBefore additionally requires end_date < EndedBefore.
	EndedBefore *time.Time
}
