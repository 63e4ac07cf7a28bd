package models

import "fmt"

// CampaignStatus is the position of a campaign in its lifecycle.
type CampaignStatus string

const (
	CampaignDraft     CampaignStatus = "draft"
	CampaignPending   CampaignStatus = "pending"
	CampaignActive    CampaignStatus = "active"
	CampaignCompleted CampaignStatus = "completed"
	CampaignExpired   CampaignStatus = "expired"
	CampaignRejected  CampaignStatus = "rejected"
	CampaignCancelled CampaignStatus = "cancelled"
)

func (s CampaignStatus) Valid() bool {
	switch s {
	case CampaignDraft, CampaignPending, CampaignActive, CampaignCompleted,
		CampaignExpired, CampaignRejected, CampaignCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transition is possible.
func (s CampaignStatus) Terminal() bool {
	switch s {
	case CampaignCompleted, CampaignExpired, CampaignRejected, CampaignCancelled:
		return true
	}
	return false
}

func ParseCampaignStatus(s string) (CampaignStatus, error) {
	status := CampaignStatus(s)
	if !status.Valid() {
		return "", fmt.Errorf("%w: unknown campaign status %q", ErrValidation, s)
	}
	return status, nil
}

// DonationStatus is the settlement state of a donation.
type DonationStatus string

const (
	DonationPending    DonationStatus = "pending"
	DonationProcessing DonationStatus = "processing"
	DonationCompleted  DonationStatus = "completed"
	DonationFailed     DonationStatus = "failed"
	DonationCancelled  DonationStatus = "cancelled"
)

func (s DonationStatus) Valid() bool {
	switch s {
	case DonationPending, DonationProcessing, DonationCompleted, DonationFailed, DonationCancelled:
		return true
	}
	return false
}

func (s DonationStatus) Terminal() bool {
	switch s {
	case DonationCompleted, DonationFailed, DonationCancelled:
		return true
	}
	return false
}

// SubscriptionStatus is the state of a recurring pledge.
type SubscriptionStatus string

const (
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionPaused    SubscriptionStatus = "paused"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
	SubscriptionExpired   SubscriptionStatus = "expired"
)

func (s SubscriptionStatus) Valid() bool {
	switch s {
	case SubscriptionActive, SubscriptionPaused, SubscriptionCancelled, SubscriptionExpired:
		return true
	}
	return false
}

func ParseSubscriptionStatus(s string) (SubscriptionStatus, error) {
	status := SubscriptionStatus(s)
	if !status.Valid() {
		return "", fmt.Errorf("%w: unknown subscription status %q", ErrValidation, s)
	}
	return status, nil
}

// PartnerApplicationStatus is the review state of a partner application.
type PartnerApplicationStatus string

const (
	PartnerPending  PartnerApplicationStatus = "pending"
	PartnerApproved PartnerApplicationStatus = "approved"
	PartnerRejected PartnerApplicationStatus = "rejected"
)

func (s PartnerApplicationStatus) Valid() bool {
	switch s {
	case PartnerPending, PartnerApproved, PartnerRejected:
		return true
	}
	return false
}

func ParsePartnerApplicationStatus(s string) (PartnerApplicationStatus, error) {
	status := PartnerApplicationStatus(s)
	if !status.Valid() {
		return "", fmt.Errorf("%w: unknown application status %q", ErrValidation, s)
	}
	return status, nil
}

// SubscriptionPlan is a subscription tier.
type SubscriptionPlan string

const (
	PlanBasic   SubscriptionPlan = "basic"
	PlanPro     SubscriptionPlan = "pro"
	PlanPremium SubscriptionPlan = "premium"
)

func ParseSubscriptionPlan(s string) (SubscriptionPlan, error) {
	switch plan := SubscriptionPlan(s); plan {
	case PlanBasic, PlanPro, PlanPremium:
		return plan, nil
	}
	return "", fmt.Errorf("%w: unknown plan %q", ErrValidation, s)
}

// SubscriptionPeriod is a billing period in ISO-8601 duration notation.
type SubscriptionPeriod string

const (
	PeriodOneMonth    SubscriptionPeriod = "P1M"
	PeriodThreeMonths SubscriptionPeriod = "P3M"
	PeriodSixMonths   SubscriptionPeriod = "P6M"
	PeriodYear        SubscriptionPeriod = "P12M"
)

func ParseSubscriptionPeriod(s string) (SubscriptionPeriod, error) {
	switch period := SubscriptionPeriod(s); period {
	case PeriodOneMonth, PeriodThreeMonths, PeriodSixMonths, PeriodYear:
		return period, nil
	}
	return "", fmt.Errorf("%w: unknown period %q", ErrValidation, s)
}

// PaymentProvider names the payment backend that issued a payment.
type PaymentProvider string

const (
	ProviderYooKassa      PaymentProvider = "yookassa"
	ProviderCloudPayments PaymentProvider = "cloudpayments"
	ProviderStub          PaymentProvider = "stub"
)

func ParsePaymentProvider(s string) (PaymentProvider, error) {
	switch provider := PaymentProvider(s); provider {
	case ProviderYooKassa, ProviderCloudPayments:
		return provider, nil
	}
	return "", fmt.Errorf("%w: unknown payment provider %q", ErrValidation, s)
}

// ModerationAction is an administrator's decision on a pending campaign.
type ModerationAction string

const (
	ModerationApprove ModerationAction = "approve"
	ModerationReject  ModerationAction = "reject"
)

// Donation type tags.
const (
	DonationTypeSadaqa   = "sadaqa"
	DonationTypeZakat    = "zakat"
	DonationTypeCampaign = "campaign"
	DonationTypeQuick    = "quick"
)

// DefaultCurrency is used wherever a currency is not supplied.
const DefaultCurrency = "RUB"
