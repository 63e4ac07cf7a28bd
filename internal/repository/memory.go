package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sadaqapass/sadaqa/internal/models"
)

// MemoryDB is an in-process models.Repository. It mirrors the guarded
// updates of PostgresDB under a single mutex and keeps nothing on restart.
type MemoryDB struct {
	mu  sync.Mutex
	ids map[string]int64

	users         map[int64]*models.User
	funds         map[int64]*models.Fund
	campaigns     map[int64]*models.Campaign
	donations     map[int64]*models.Donation
	subscriptions map[int64]*models.Subscription
	zakatCalcs    map[int64]*models.ZakatCalc
	partnerApps   map[int64]*models.PartnerApplication
}

var _ models.Repository = (*MemoryDB)(nil)

func NewMemoryDB() *MemoryDB {
	return &MemoryDB{
		ids:           make(map[string]int64),
		users:         make(map[int64]*models.User),
		funds:         make(map[int64]*models.Fund),
		campaigns:     make(map[int64]*models.Campaign),
		donations:     make(map[int64]*models.Donation),
		subscriptions: make(map[int64]*models.Subscription),
		zakatCalcs:    make(map[int64]*models.ZakatCalc),
		partnerApps:   make(map[int64]*models.PartnerApplication),
	}
}

func (m *MemoryDB) Close() error { return nil }

func (m *MemoryDB) nextID(table string) int64 {
	m.ids[table]++
	return m.ids[table]
}

func clone[T any](v *T) *T {
	c := *v
	return &c
}

func notFound(what string, id int64) error {
	return fmt.Errorf("%s %d: %w", what, id, models.ErrNotFound)
}

// window applies offset and limit to an already ordered slice.
func window[T any](items []*T, offset, limit int) []*T {
	if offset > 0 {
		if offset >= len(items) {
			return []*T{}
		}
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

func (m *MemoryDB) FindOrCreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	for _, u := range m.users {
		if u.TgID == user.TgID {
			u.FirstName, u.LastName, u.Username = user.FirstName, user.LastName, user.Username
			u.UpdatedAt = now
			return clone(u), nil
		}
	}
	stored := clone(user)
	stored.ID = m.nextID("users")
	if stored.Locale == "" {
		stored.Locale = "ru"
	}
	stored.CreatedAt, stored.UpdatedAt = now, now
	m.users[stored.ID] = stored
	return clone(stored), nil
}

func (m *MemoryDB) GetUser(ctx context.Context, id int64) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return nil, notFound("user", id)
	}
	return clone(u), nil
}

func (m *MemoryDB) ListFunds(ctx context.Context, filter models.FundFilter) ([]*models.Fund, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*models.Fund
	for _, f := range m.funds {
		if filter.Verified != nil && f.Verified != *filter.Verified {
			continue
		}
		if filter.CountryCode != nil && f.CountryCode != *filter.CountryCode {
			continue
		}
		if filter.Category != nil && !f.HasCategory(*filter.Category) {
			continue
		}
		out = append(out, clone(f))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return window(out, filter.Offset, filter.Limit), nil
}

func (m *MemoryDB) GetFund(ctx context.Context, id int64) (*models.Fund, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	f, ok := m.funds[id]
	if !ok {
		return nil, notFound("fund", id)
	}
	return clone(f), nil
}

func (m *MemoryDB) CreateFund(ctx context.Context, fund *models.Fund) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	fund.ID = m.nextID("funds")
	fund.CreatedAt = time.Now()
	fund.UpdatedAt = fund.CreatedAt
	m.funds[fund.ID] = clone(fund)
	return nil
}

func (m *MemoryDB) CreateCampaign(ctx context.Context, campaign *models.Campaign) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	campaign.ID = m.nextID("campaigns")
	if campaign.CreatedAt.IsZero() {
		campaign.CreatedAt = time.Now()
	}
	campaign.UpdatedAt = campaign.CreatedAt
	m.campaigns[campaign.ID] = clone(campaign)
	return nil
}

func (m *MemoryDB) GetCampaign(ctx context.Context, id int64) (*models.Campaign, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.campaigns[id]
	if !ok {
		return nil, notFound("campaign", id)
	}
	return clone(c), nil
}

func (m *MemoryDB) campaignCountry(c *models.Campaign) string {
	if c.CountryCode != nil {
		return *c.CountryCode
	}
	if f, ok := m.funds[c.FundID]; ok {
		return f.CountryCode
	}
	return ""
}

func (m *MemoryDB) ListCampaigns(ctx context.Context, filter models.CampaignFilter) ([]*models.Campaign, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*models.Campaign
	for _, c := range m.campaigns {
		if filter.Status != nil && c.Status != *filter.Status {
			continue
		}
		if filter.Category != nil && c.Category != *filter.Category {
			continue
		}
		if filter.CountryCode != nil && m.campaignCountry(c) != *filter.CountryCode {
			continue
		}
		out = append(out, clone(c))
	}

	newer := func(a, b *models.Campaign) bool {
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		switch filter.Sort {
		case models.SortPopularity:
			if a.ParticipantsCount != b.ParticipantsCount {
				return a.ParticipantsCount > b.ParticipantsCount
			}
		case models.SortProgress:
			if pa, pb := a.Progress(), b.Progress(); !pa.Equal(pb) {
				return pa.GreaterThan(pb)
			}
		case models.SortOldest:
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.Before(b.CreatedAt)
			}
			return a.ID < b.ID
		}
		return newer(a, b)
	})
	return window(out, filter.Offset, filter.Limit), nil
}

func (m *MemoryDB) TransitionCampaign(ctx context.Context, id int64, from []models.CampaignStatus, to models.CampaignStatus, changes models.CampaignChanges) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.campaigns[id]
	if !ok {
		return false, notFound("campaign", id)
	}
	if !containsStatus(from, c.Status) {
		return false, nil
	}
	if changes.EndedBefore != nil && !c.EndDate.Before(*changes.EndedBefore) {
		return false, nil
	}
	c.Status = to
	if changes.ModeratedBy != nil {
		c.ModeratedBy = changes.ModeratedBy
	}
	if changes.ModeratedAt != nil {
		c.ModeratedAt = changes.ModeratedAt
	}
	if changes.RejectionReason != nil {
		c.RejectionReason = changes.RejectionReason
	}
	c.UpdatedAt = time.Now()
	return true, nil
}

func containsStatus[S comparable](set []S, s S) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}

func (m *MemoryDB) AddCampaignProgress(ctx context.Context, id int64, amount decimal.Decimal) (*models.CampaignProgress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.addCampaignProgress(id, amount)
}

func (m *MemoryDB) addCampaignProgress(id int64, amount decimal.Decimal) (*models.CampaignProgress, error) {
	c, ok := m.campaigns[id]
	if !ok {
		return nil, notFound("campaign", id)
	}
	c.CollectedAmount = c.CollectedAmount.Add(amount)
	c.ParticipantsCount++
	c.UpdatedAt = time.Now()

	reached := false
	if c.Status == models.CampaignActive && c.CollectedAmount.GreaterThanOrEqual(c.GoalAmount) {
		c.Status = models.CampaignCompleted
		reached = true
	}
	return &models.CampaignProgress{Campaign: clone(c), GoalReached: reached}, nil
}

func (m *MemoryDB) ListExpirableCampaigns(ctx context.Context, now time.Time) ([]*models.Campaign, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*models.Campaign
	for _, c := range m.campaigns {
		if c.Status == models.CampaignActive && c.EndDate.Before(now) {
			out = append(out, clone(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EndDate.Before(out[j].EndDate) })
	return out, nil
}

func (m *MemoryDB) ListCampaignDonations(ctx context.Context, campaignID int64, offset, limit int) ([]*models.Donation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*models.Donation
	for _, d := range m.donations {
		if d.CampaignID != nil && *d.CampaignID == campaignID && d.Status == models.DonationCompleted {
			out = append(out, clone(d))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CompletedAt.Equal(*out[j].CompletedAt) {
			return out[i].CompletedAt.After(*out[j].CompletedAt)
		}
		return out[i].ID > out[j].ID
	})
	return window(out, offset, limit), nil
}

func (m *MemoryDB) CampaignDonationTotals(ctx context.Context, campaignID int64) (int64, decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var count int64
	total := decimal.Zero
	for _, d := range m.donations {
		if d.CampaignID != nil && *d.CampaignID == campaignID && d.Status == models.DonationCompleted {
			count++
			total = total.Add(d.Amount)
		}
	}
	return count, total, nil
}

func (m *MemoryDB) CreateDonation(ctx context.Context, donation *models.Donation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	donation.ID = m.nextID("donations")
	donation.CreatedAt = time.Now()
	donation.UpdatedAt = donation.CreatedAt
	m.donations[donation.ID] = clone(donation)
	return nil
}

func (m *MemoryDB) GetDonation(ctx context.Context, id int64) (*models.Donation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	d, ok := m.donations[id]
	if !ok {
		return nil, notFound("donation", id)
	}
	return clone(d), nil
}

func (m *MemoryDB) MarkDonationProcessing(ctx context.Context, id int64, provider models.PaymentProvider, paymentID, paymentURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	d, ok := m.donations[id]
	if !ok {
		return notFound("donation", id)
	}
	if d.Status != models.DonationPending {
		return fmt.Errorf("donation %d is not pending: %w", id, models.ErrInvalidState)
	}
	d.Status = models.DonationProcessing
	d.Provider, d.PaymentID, d.PaymentURL = provider, paymentID, paymentURL
	d.UpdatedAt = time.Now()
	return nil
}

func (m *MemoryDB) SettleDonation(ctx context.Context, s models.DonationSettlement) (*models.SettlementResult, error) {
	if !s.Status.Terminal() {
		return nil, fmt.Errorf("settle donation to %q: %w", s.Status, models.ErrInvalidState)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	d, ok := m.donations[s.DonationID]
	if !ok {
		return nil, notFound("donation", s.DonationID)
	}
	if !containsStatus(openDonationStatuses, d.Status) {
		return &models.SettlementResult{Donation: clone(d)}, nil
	}

	d.Status = s.Status
	if s.ProviderTransactionID != "" {
		d.ProviderTransactionID = s.ProviderTransactionID
	}
	if s.Status == models.DonationCompleted {
		at := s.At
		d.CompletedAt = &at
	}
	d.UpdatedAt = time.Now()

	result := &models.SettlementResult{Donation: clone(d), Applied: true}
	if s.Status == models.DonationCompleted && d.CampaignID != nil {
		progress, err := m.addCampaignProgress(*d.CampaignID, d.Amount)
		if err != nil {
			return nil, err
		}
		result.Progress = progress
	}
	return result, nil
}

func (m *MemoryDB) ListUserDonations(ctx context.Context, userID int64, limit int) ([]*models.Donation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*models.Donation
	for _, d := range m.donations {
		if d.UserID == userID {
			out = append(out, clone(d))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return window(out, 0, limit), nil
}

func (m *MemoryDB) UserStats(ctx context.Context, userID int64) (*models.UserStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stats := &models.UserStats{TotalDonated: decimal.Zero, TotalZakatPaid: decimal.Zero}
	campaigns := make(map[int64]struct{})
	for _, d := range m.donations {
		if d.UserID != userID || d.Status != models.DonationCompleted {
			continue
		}
		stats.DonationsCount++
		stats.TotalDonated = stats.TotalDonated.Add(d.Amount)
		if d.DonationType == models.DonationTypeZakat {
			stats.TotalZakatPaid = stats.TotalZakatPaid.Add(d.Amount)
		}
		if d.CampaignID != nil {
			campaigns[*d.CampaignID] = struct{}{}
		}
	}
	stats.CampaignsSupported = int64(len(campaigns))
	for _, s := range m.subscriptions {
		if s.UserID == userID && s.Status == models.SubscriptionActive {
			stats.ActiveSubscriptions++
		}
	}
	return stats, nil
}

func (m *MemoryDB) CreateSubscription(ctx context.Context, subscription *models.Subscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	subscription.ID = m.nextID("subscriptions")
	subscription.CreatedAt = time.Now()
	subscription.UpdatedAt = subscription.CreatedAt
	m.subscriptions[subscription.ID] = clone(subscription)
	return nil
}

func (m *MemoryDB) GetSubscription(ctx context.Context, id int64) (*models.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.subscriptions[id]
	if !ok {
		return nil, notFound("subscription", id)
	}
	return clone(s), nil
}

func (m *MemoryDB) ListSubscriptions(ctx context.Context, userID int64, status *models.SubscriptionStatus, limit int) ([]*models.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*models.Subscription
	for _, s := range m.subscriptions {
		if s.UserID != userID || (status != nil && s.Status != *status) {
			continue
		}
		out = append(out, clone(s))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return window(out, 0, limit), nil
}

func (m *MemoryDB) TransitionSubscription(ctx context.Context, id int64, from []models.SubscriptionStatus, to models.SubscriptionStatus, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.subscriptions[id]
	if !ok {
		return false, notFound("subscription", id)
	}
	if !containsStatus(from, s.Status) {
		return false, nil
	}
	s.Status = to
	if to == models.SubscriptionCancelled {
		s.CancelledAt = &at
	}
	s.UpdatedAt = time.Now()
	return true, nil
}

func (m *MemoryDB) CreateZakatCalc(ctx context.Context, calc *models.ZakatCalc) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	calc.ID = m.nextID("zakat_calcs")
	calc.CreatedAt = time.Now()
	m.zakatCalcs[calc.ID] = clone(calc)
	return nil
}

func (m *MemoryDB) GetZakatCalc(ctx context.Context, id int64) (*models.ZakatCalc, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.zakatCalcs[id]
	if !ok {
		return nil, notFound("zakat calculation", id)
	}
	return clone(c), nil
}

func (m *MemoryDB) ListZakatCalcs(ctx context.Context, userID int64, limit int) ([]*models.ZakatCalc, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*models.ZakatCalc
	for _, c := range m.zakatCalcs {
		if c.UserID == userID {
			out = append(out, clone(c))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return window(out, 0, limit), nil
}

func (m *MemoryDB) LinkZakatDonation(ctx context.Context, calcID, donationID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.zakatCalcs[calcID]
	if !ok {
		return notFound("zakat calculation", calcID)
	}
	c.DonationID = &donationID
	return nil
}

func (m *MemoryDB) CreatePartnerApplication(ctx context.Context, app *models.PartnerApplication) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	app.ID = m.nextID("partner_applications")
	app.CreatedAt = time.Now()
	app.UpdatedAt = app.CreatedAt
	m.partnerApps[app.ID] = clone(app)
	return nil
}

func (m *MemoryDB) GetPartnerApplication(ctx context.Context, id int64) (*models.PartnerApplication, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.partnerApps[id]
	if !ok {
		return nil, notFound("partner application", id)
	}
	return clone(a), nil
}

func (m *MemoryDB) ListPartnerApplications(ctx context.Context, status *models.PartnerApplicationStatus, offset, limit int) ([]*models.PartnerApplication, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*models.PartnerApplication
	for _, a := range m.partnerApps {
		if status != nil && a.Status != *status {
			continue
		}
		out = append(out, clone(a))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return window(out, offset, limit), nil
}

func (m *MemoryDB) ReviewPartnerApplication(ctx context.Context, id int64, review models.PartnerReview) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.partnerApps[id]
	if !ok {
		return false, notFound("partner application", id)
	}
	if a.Status != models.PartnerPending {
		return false, nil
	}
	a.Status = review.Status
	reviewer, at := review.ReviewerID, review.At
	a.ReviewedBy, a.ReviewedAt = &reviewer, &at
	if review.Reason != nil {
		a.RejectionReason = review.Reason
	}
	a.UpdatedAt = time.Now()
	return true, nil
}
