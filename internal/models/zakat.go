package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"github.com/sadaqapass/sadaqa/internal/zakat"
)

// ZakatCalc is a persisted zakat calculation. Only DonationID changes after creation.
type ZakatCalc struct {
	ID     int64 `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	UserID int64 `json:"user_id" gorm:"column:user_id;not null;index"`
	// Payload is the declared input as submitted.
	Payload     datatypes.JSONType[zakat.Payload] `json:"payload" gorm:"column:payload_json"`
	TotalWealth decimal.Decimal                   `json:"total_wealth" gorm:"column:total_wealth;type:numeric(14,2);not null"`
	NisabValue  decimal.Decimal                   `json:"nisab_value" gorm:"column:nisab_value;type:numeric(14,2);not null"`
	ZakatDue    decimal.Decimal                   `json:"zakat_due" gorm:"column:zakat_due;type:numeric(14,2);not null"`
	// DonationID links the donation created to pay this calculation.
	DonationID *int64    `json:"donation_id,omitempty" gorm:"column:donation_id"`
	CreatedAt  time.Time `json:"created_at" gorm:"column:created_at;index"`
}

// TableName keeps the historical table name.
func (ZakatCalc) TableName() string {
	return "zakat_calcs"
}
