// Package replika talks to the e-replika analytics service: it reads
// aggregated statistics and mirrors donations, campaigns and users.
package replika

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/bytedance/sonic"
	"github.com/shopspring/decimal"

	"github.com/sadaqapass/sadaqa/internal/models"
	"github.com/sadaqapass/sadaqa/pkg/logger"
)

const (
	dateLayout     = "2006-01-02"
	defaultWindow  = 30 * 24 * time.Hour
	defaultGroupBy = "day"
	cachePrefix    = "replika:stats"
)

var _ models.StatisticsMirror = (*Client)(nil)

var statisticsPaths = map[models.StatisticsKind]string{
	models.StatisticsOverview:  "/statistics",
	models.StatisticsDonations: "/statistics/donations",
	models.StatisticsCampaigns: "/statistics/campaigns",
	models.StatisticsUsers:     "/statistics/users",
}

// Client is the e-replika HTTP client. With an empty base URL it is
// disabled: statistics are unavailable and sync calls do nothing.
type Client struct {
	logger  *logger.Logger
	baseURL string
	token   string
	client  *http.Client

	cache    Cache
	cacheTTL time.Duration

	now func() time.Time
}

// NewClient creates the client. cache may be nil.
func NewClient(logger *logger.Logger, baseURL, token string, cache Cache, cacheTTL time.Duration) *Client {
	return &Client{
		logger:   logger,
		baseURL:  baseURL,
		token:    token,
		cache:    cache,
		cacheTTL: cacheTTL,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		now: time.Now,
	}
}

func (c *Client) Enabled() bool {
	return c.baseURL != ""
}

// Statistics returns the raw JSON document, served from the cache when a
// fresh copy is there.
func (c *Client) Statistics(ctx context.Context, kind models.StatisticsKind, query models.StatisticsQuery) ([]byte, error) {
	path, ok := statisticsPaths[kind]
	if !ok {
		return nil, fmt.Errorf("%w: unknown statistics kind %q", models.ErrValidation, kind)
	}
	query, err := c.normalize(query)
	if err != nil {
		return nil, err
	}
	if !c.Enabled() {
		return nil, fmt.Errorf("statistics mirror is not configured: %w", models.ErrUpstreamUnavailable)
	}

	key := CacheKey(kind, query)
	if c.cache != nil {
		cached, err := c.cache.Get(ctx, key)
		if err != nil {
			c.logger.Warn("Statistics cache read failed", "key", key, "error", err)
		} else if cached != nil {
			return cached, nil
		}
	}

	params := url.Values{}
	params.Set("start_date", query.StartDate)
	params.Set("end_date", query.EndDate)
	params.Set("group_by", query.GroupBy)

	body, err := c.do(ctx, http.MethodGet, path+"?"+params.Encode(), nil)
	if err != nil {
		c.logger.Error("Statistics request failed", "kind", kind, "error", err)
		return nil, fmt.Errorf("statistics %s: %w", kind, models.ErrUpstreamUnavailable)
	}
	if !sonic.Valid(body) {
		c.logger.Error("Statistics response is not JSON", "kind", kind)
		return nil, fmt.Errorf("statistics %s: %w", kind, models.ErrUpstreamUnavailable)
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, key, body, c.cacheTTL); err != nil {
			c.logger.Warn("Statistics cache write failed", "key", key, "error", err)
		}
	}
	return body, nil
}

// CacheKey is the cache key of a normalized query.
func CacheKey(kind models.StatisticsKind, q models.StatisticsQuery) string {
	return fmt.Sprintf("%s:%s:%s:%s:%s", cachePrefix, kind, q.StartDate, q.EndDate, q.GroupBy)
}

func (c *Client) normalize(q models.StatisticsQuery) (models.StatisticsQuery, error) {
	now := c.now().UTC()
	if q.EndDate == "" {
		q.EndDate = now.Format(dateLayout)
	}
	if q.StartDate == "" {
		q.StartDate = now.Add(-defaultWindow).Format(dateLayout)
	}
	if q.GroupBy == "" {
		q.GroupBy = defaultGroupBy
	}

	start, err := time.Parse(dateLayout, q.StartDate)
	if err != nil {
		return q, fmt.Errorf("%w: start_date must be YYYY-MM-DD", models.ErrValidation)
	}
	end, err := time.Parse(dateLayout, q.EndDate)
	if err != nil {
		return q, fmt.Errorf("%w: end_date must be YYYY-MM-DD", models.ErrValidation)
	}
	if end.Before(start) {
		return q, fmt.Errorf("%w: end_date is before start_date", models.ErrValidation)
	}
	switch q.GroupBy {
	case "day", "week", "month":
	default:
		return q, fmt.Errorf("%w: group_by must be day, week or month", models.ErrValidation)
	}
	return q, nil
}

type donationRecord struct {
	ExternalID   int64           `json:"external_id"`
	UserID       int64           `json:"user_id"`
	FundID       *int64          `json:"fund_id,omitempty"`
	CampaignID   *int64          `json:"campaign_id,omitempty"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency"`
	Status       string          `json:"status"`
	DonationType string          `json:"donation_type"`
	CreatedAt    time.Time       `json:"created_at"`
	CompletedAt  *time.Time      `json:"completed_at,omitempty"`
}

type campaignRecord struct {
	ExternalID        int64           `json:"external_id"`
	FundID            int64           `json:"fund_id"`
	Title             string          `json:"title"`
	Status            string          `json:"status"`
	GoalAmount        decimal.Decimal `json:"goal_amount"`
	CollectedAmount   decimal.Decimal `json:"collected_amount"`
	Currency          string          `json:"currency"`
	ParticipantsCount int64           `json:"participants_count"`
	EndDate           time.Time       `json:"end_date"`
}

type userRecord struct {
	ExternalID int64     `json:"external_id"`
	TgID       int64     `json:"tg_id"`
	Username   string    `json:"username,omitempty"`
	Locale     string    `json:"locale"`
	CreatedAt  time.Time `json:"created_at"`
}

func (c *Client) SyncDonation(ctx context.Context, d *models.Donation) error {
	return c.sync(ctx, "/donations/sync", donationRecord{
		ExternalID:   d.ID,
		UserID:       d.UserID,
		FundID:       d.FundID,
		CampaignID:   d.CampaignID,
		Amount:       d.Amount,
		Currency:     d.Currency,
		Status:       string(d.Status),
		DonationType: d.DonationType,
		CreatedAt:    d.CreatedAt,
		CompletedAt:  d.CompletedAt,
	})
}

func (c *Client) SyncCampaign(ctx context.Context, cp *models.Campaign) error {
	return c.sync(ctx, "/campaigns/sync", campaignRecord{
		ExternalID:        cp.ID,
		FundID:            cp.FundID,
		Title:             cp.Title,
		Status:            string(cp.Status),
		GoalAmount:        cp.GoalAmount,
		CollectedAmount:   cp.CollectedAmount,
		Currency:          cp.Currency,
		ParticipantsCount: cp.ParticipantsCount,
		EndDate:           cp.EndDate,
	})
}

func (c *Client) SyncUser(ctx context.Context, u *models.User) error {
	return c.sync(ctx, "/users/sync", userRecord{
		ExternalID: u.ID,
		TgID:       u.TgID,
		Username:   u.Username,
		Locale:     u.Locale,
		CreatedAt:  u.CreatedAt,
	})
}

func (c *Client) sync(ctx context.Context, path string, record interface{}) error {
	if !c.Enabled() {
		return nil
	}
	payload, err := sonic.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal sync record: %w", err)
	}
	if _, err := c.do(ctx, http.MethodPost, path, payload); err != nil {
		return fmt.Errorf("sync %s: %w", path, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, string(respBody))
	}
	return respBody, nil
}
