package models

import (
	"time"

	"github.com/lib/pq"
)

// Fund is a charitable organization donations can be directed to.
type Fund struct {
	ID          int64  `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	Name        string `json:"name" gorm:"column:name;not null;index"`
	Description string `json:"description,omitempty" gorm:"column:description;type:text"`
	// CountryCode is an ISO-3166 alpha-2 code.
	CountryCode string `json:"country_code,omitempty" gorm:"column:country_code;size:2;index"`
	// Categories are free-form tags such as "orphans" or "water".
	Categories pq.StringArray `json:"categories" gorm:"column:categories;type:text[]"`
	// Verified funds are shown in the public directory.
	Verified   bool      `json:"verified" gorm:"column:verified;default:false;index"`
	LogoURL    string    `json:"logo_url,omitempty" gorm:"column:logo_url"`
	WebsiteURL string    `json:"website_url,omitempty" gorm:"column:website_url"`
	CreatedAt  time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt  time.Time `json:"updated_at" gorm:"column:updated_at"`
}

// HasCategory reports whether the fund is tagged with category.
func (f *Fund) HasCategory(category string) bool {
	for _, c := range f.Categories {
		if c == category {
			return true
		}
	}
	return false
}

// FundFilter narrows a fund listing. Nil fields are not applied.
type FundFilter struct {
	CountryCode *string
	Category    *string
	Verified    *bool
	Offset      int
	Limit       int
}
