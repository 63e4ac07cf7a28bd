package models

import "time"

// User is a mini-app user identified by the Telegram account.
type User struct {
	// ID is the internal identifier.
	ID int64 `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	// TgID is the Telegram user id. One row per Telegram account.
	TgID int64 `json:"tg_id" gorm:"column:tg_id;uniqueIndex;not null"`
	// FirstName is the Telegram first name.
	FirstName string `json:"first_name" gorm:"column:first_name"`
	// LastName is the Telegram last name.
	LastName string `json:"last_name,omitempty" gorm:"column:last_name"`
	// Username is the Telegram @handle without the at sign.
	Username string `json:"username,omitempty" gorm:"column:username"`
	// Locale is the preferred interface language.
	Locale    string    `json:"locale" gorm:"column:locale;default:ru"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at"`
}

// TelegramIdentity is the verified identity carried by mini-app initData.
type TelegramIdentity struct {
	ID           int64  `json:"id"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Username     string `json:"username"`
	LanguageCode string `json:"language_code"`
}
