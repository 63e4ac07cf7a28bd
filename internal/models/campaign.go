package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Campaign is a fund-linked, time-boxed fundraising goal.
type Campaign struct {
	ID int64 `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	// OwnerID is the user who created the campaign.
	OwnerID int64 `json:"owner_id" gorm:"column:owner_id;not null;index"`
	// FundID is the fund that receives the money.
	FundID      int64  `json:"fund_id" gorm:"column:fund_id;not null;index"`
	Title       string `json:"title" gorm:"column:title;not null"`
	Description string `json:"description" gorm:"column:description;type:text"`
	Category    string `json:"category,omitempty" gorm:"column:category;index"`
	// GoalAmount is the target sum.
	GoalAmount decimal.Decimal `json:"goal_amount" gorm:"column:goal_amount;type:numeric(12,2);not null"`
	// CollectedAmount only grows, and only when a donation to this campaign completes.
	CollectedAmount decimal.Decimal `json:"collected_amount" gorm:"column:collected_amount;type:numeric(12,2);not null;default:0"`
	Currency        string          `json:"currency" gorm:"column:currency;size:3;default:RUB"`
	// CountryCode defaults to the fund's country on creation.
	CountryCode *string   `json:"country_code,omitempty" gorm:"column:country_code;size:2;index"`
	BannerURL   string    `json:"banner_url,omitempty" gorm:"column:banner_url"`
	StartDate   time.Time `json:"start_date" gorm:"column:start_date"`
	EndDate     time.Time `json:"end_date" gorm:"column:end_date;index"`
	// Status is the lifecycle position.
	Status CampaignStatus `json:"status" gorm:"column:status;size:16;not null;index"`
	// Moderation stamps, set when an administrator approves or rejects.
	ModeratedBy       *int64     `json:"moderated_by,omitempty" gorm:"column:moderated_by"`
	ModeratedAt       *time.Time `json:"moderated_at,omitempty" gorm:"column:moderated_at"`
	RejectionReason   *string    `json:"rejection_reason,omitempty" gorm:"column:rejection_reason;type:text"`
	ParticipantsCount int64      `json:"participants_count" gorm:"column:participants_count;not null;default:0"`
	CreatedAt         time.Time  `json:"created_at" gorm:"column:created_at;index"`
	UpdatedAt         time.Time  `json:"updated_at" gorm:"column:updated_at"`
}

// Progress returns collected/goal, or zero when the goal is not positive.
func (c *Campaign) Progress() decimal.Decimal {
	if !c.GoalAmount.IsPositive() {
		return decimal.Zero
	}
	return c.CollectedAmount.Div(c.GoalAmount)
}

// ProgressPercent returns the progress as a percentage rounded to 2 places.
func (c *Campaign) ProgressPercent() decimal.Decimal {
	return c.Progress().Mul(decimal.NewFromInt(100)).Round(2)
}

// GoalReached reports whether the collected amount covers the goal.
func (c *Campaign) GoalReached() bool {
	return c.GoalAmount.IsPositive() && c.CollectedAmount.GreaterThanOrEqual(c.GoalAmount)
}

// CampaignSort selects the ordering of a campaign listing.
type CampaignSort string

const (
	SortNewest     CampaignSort = "newest"
	SortOldest     CampaignSort = "oldest"
	SortPopularity CampaignSort = "popularity"
	SortProgress   CampaignSort = "progress"
)

func ParseCampaignSort(s string) (CampaignSort, error) {
	switch sort := CampaignSort(s); sort {
	case "":
		return SortNewest, nil
	case SortNewest, SortOldest, SortPopularity, SortProgress:
		return sort, nil
	}
	return "", ErrValidation
}

// CampaignFilter narrows a campaign listing. A nil Status lists all statuses.
type CampaignFilter struct {
	CountryCode *string
	Category    *string
	Status      *CampaignStatus
	Sort        CampaignSort
	Offset      int
	Limit       int
}

// CampaignInput carries the fields a user supplies when creating a campaign.
type CampaignInput struct {
	FundID      int64
	Title       string
	Description string
	Category    string
	GoalAmount  decimal.Decimal
	Currency    string
	CountryCode *string
	BannerURL   string
	EndDate     time.Time
}

// CampaignProgress is the outcome of crediting a completed donation.
type CampaignProgress struct {
	Campaign *Campaign
	// GoalReached is true only for the credit that moved the campaign to completed.
	GoalReached bool
}

// CampaignReport summarizes a campaign's fundraising.
type CampaignReport struct {
	CampaignID        int64           `json:"campaign_id"`
	Title             string          `json:"title"`
	Status            CampaignStatus  `json:"status"`
	GoalAmount        decimal.Decimal `json:"goal_amount"`
	CollectedAmount   decimal.Decimal `json:"collected_amount"`
	Currency          string          `json:"currency"`
	ProgressPercent   decimal.Decimal `json:"progress_percent"`
	ParticipantsCount int64           `json:"participants_count"`
	DonationsCount    int64           `json:"donations_count"`
	AverageDonation   decimal.Decimal `json:"average_donation"`
	DaysLeft          int             `json:"days_left"`
}
