package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Subscription is a recurring pledge priced from the tariff table.
type Subscription struct {
	ID     int64              `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	UserID int64              `json:"user_id" gorm:"column:user_id;not null;index"`
	FundID *int64             `json:"fund_id,omitempty" gorm:"column:fund_id;index"`
	Plan   SubscriptionPlan   `json:"plan" gorm:"column:plan;size:16;not null"`
	Period SubscriptionPeriod `json:"period" gorm:"column:period;size:8;not null"`
	// Amount is the price of one period.
	Amount   decimal.Decimal `json:"amount" gorm:"column:amount;type:numeric(12,2);not null"`
	Currency string          `json:"currency" gorm:"column:currency;size:3;default:RUB"`
	// CharityPercent is the share of the amount passed on to charity.
	CharityPercent int                `json:"charity_percent" gorm:"column:charity_percent;not null"`
	Status         SubscriptionStatus `json:"status" gorm:"column:status;size:16;not null;index"`
	// PaymentToken and PaymentProvider identify the saved recurring payment method.
	PaymentToken    string          `json:"-" gorm:"column:payment_token"`
	PaymentProvider PaymentProvider `json:"payment_provider,omitempty" gorm:"column:payment_provider;size:32"`
	StartedAt       time.Time       `json:"started_at" gorm:"column:started_at"`
	NextChargeAt    *time.Time      `json:"next_charge_at,omitempty" gorm:"column:next_charge_at"`
	ExpiresAt       *time.Time      `json:"expires_at,omitempty" gorm:"column:expires_at"`
	CancelledAt     *time.Time      `json:"cancelled_at,omitempty" gorm:"column:cancelled_at"`
	CreatedAt       time.Time       `json:"created_at" gorm:"column:created_at;index"`
	UpdatedAt       time.Time       `json:"updated_at" gorm:"column:updated_at"`
}

// SubscriptionInput carries the parameters of a new subscription.
type SubscriptionInput struct {
	FundID *int64
	Plan   SubscriptionPlan
	Period SubscriptionPeriod
}
