package models

import "time"

// PartnerApplication is an organization's request to be listed as a fund.
type PartnerApplication struct {
	ID               int64  `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	OrganizationName string `json:"organization_name" gorm:"column:organization_name;not null"`
	ContactEmail     string `json:"contact_email" gorm:"column:contact_email;not null"`
	ContactPhone     string `json:"contact_phone,omitempty" gorm:"column:contact_phone"`
	Category         string `json:"category,omitempty" gorm:"column:category"`
	CountryCode      string `json:"country_code,omitempty" gorm:"column:country_code;size:2"`
	Description      string `json:"description,omitempty" gorm:"column:description;type:text"`
	WebsiteURL       string `json:"website_url,omitempty" gorm:"column:website_url"`
	// Status starts pending and is decided once by an administrator.
	Status          PartnerApplicationStatus `json:"status" gorm:"column:status;size:16;not null;index"`
	ReviewedBy      *int64                   `json:"reviewed_by,omitempty" gorm:"column:reviewed_by"`
	ReviewedAt      *time.Time               `json:"reviewed_at,omitempty" gorm:"column:reviewed_at"`
	RejectionReason *string                  `json:"rejection_reason,omitempty" gorm:"column:rejection_reason;type:text"`
	CreatedAt       time.Time                `json:"created_at" gorm:"column:created_at;index"`
	UpdatedAt       time.Time                `json:"updated_at" gorm:"column:updated_at"`
}

// PartnerReview is an administrator's decision on an application.
type PartnerReview struct {
	Status     PartnerApplicationStatus
	ReviewerID int64
	Reason     *string
	At         time.Time
}
