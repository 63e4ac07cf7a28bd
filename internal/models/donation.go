package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Donation is a single payment attempt towards a fund or a campaign.
type Donation struct {
	ID     int64 `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	UserID int64 `json:"user_id" gorm:"column:user_id;not null;index"`
	// FundID is set for direct donations and copied from the campaign otherwise.
	FundID *int64 `json:"fund_id,omitempty" gorm:"column:fund_id;index"`
	// CampaignID is set for campaign-scoped donations.
	CampaignID *int64          `json:"campaign_id,omitempty" gorm:"column:campaign_id;index"`
	Amount     decimal.Decimal `json:"amount" gorm:"column:amount;type:numeric(12,2);not null"`
	Currency   string          `json:"currency" gorm:"column:currency;size:3;default:RUB"`
	Status     DonationStatus  `json:"status" gorm:"column:status;size:16;not null;index"`
	// Provider is the payment backend that issued PaymentURL.
	Provider  PaymentProvider `json:"provider,omitempty" gorm:"column:provider;size:32"`
	PaymentID string          `json:"payment_id,omitempty" gorm:"column:payment_id;index"`
	// PaymentURL is where the client is redirected to pay.
	PaymentURL string `json:"payment_url,omitempty" gorm:"column:payment_url"`
	// ProviderTransactionID is reported by the settlement webhook.
	ProviderTransactionID string `json:"provider_transaction_id,omitempty" gorm:"column:provider_transaction_id"`
	// DonationType is a free-form tag: sadaqa, zakat, campaign or quick.
	DonationType string    `json:"donation_type" gorm:"column:donation_type;size:32;index"`
	CreatedAt    time.Time `json:"created_at" gorm:"column:created_at;index"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"column:updated_at"`
	// CompletedAt is set iff Status is completed.
	CompletedAt *time.Time `json:"completed_at,omitempty" gorm:"column:completed_at"`
}

// DonationInput carries the fields needed to start a donation.
type DonationInput struct {
	FundID       *int64
	CampaignID   *int64
	Amount       decimal.Decimal
	Currency     string
	DonationType string
	ReturnURL    string
	Description  string
}

// DonationSettlement asks to move a donation to a terminal status.
type DonationSettlement struct {
	DonationID            int64
	Status                DonationStatus
	ProviderTransactionID string
	At                    time.Time
}

// SettlementResult is what a settlement changed.
type SettlementResult struct {
	Donation *Donation
	// Applied is false when the donation was already terminal.
	Applied bool
	// Progress is set when a completed donation credited a campaign.
	Progress *CampaignProgress
}
