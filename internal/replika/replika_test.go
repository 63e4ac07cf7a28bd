package replika

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadaqapass/sadaqa/internal/models"
	"github.com/sadaqapass/sadaqa/pkg/logger"
)

type memCache struct {
	mu     sync.Mutex
	values map[string][]byte
	ttl    time.Duration
	fail   bool
}

func (m *memCache) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return nil, errors.New("cache down")
	}
	return m.values[key], nil
}

func (m *memCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errors.New("cache down")
	}
	if m.values == nil {
		m.values = map[string][]byte{}
	}
	m.values[key] = value
	m.ttl = ttl
	return nil
}

func fixedNow() time.Time {
	return time.Date(2026, 3, 31, 12, 0, 0, 0, time.UTC)
}

func TestStatisticsDefaultsAndCache(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		assert.Equal(t, "/statistics/donations", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "2026-03-01", r.URL.Query().Get("start_date"))
		assert.Equal(t, "2026-03-31", r.URL.Query().Get("end_date"))
		assert.Equal(t, "day", r.URL.Query().Get("group_by"))
		_, _ = w.Write([]byte(`{"total":3}`))
	}))
	defer srv.Close()

	cache := &memCache{}
	c := NewClient(logger.NewNop(), srv.URL, "tok", cache, 5*time.Minute)
	c.now = fixedNow

	body, err := c.Statistics(context.Background(), models.StatisticsDonations, models.StatisticsQuery{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"total":3}`, string(body))

	body, err = c.Statistics(context.Background(), models.StatisticsDonations, models.StatisticsQuery{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"total":3}`, string(body))

	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
	assert.Equal(t, 5*time.Minute, cache.ttl)
	assert.Contains(t, cache.values, "replika:stats:donations:2026-03-01:2026-03-31:day")
}

func TestStatisticsCacheFailureFallsThrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := NewClient(logger.NewNop(), srv.URL, "", &memCache{fail: true}, time.Minute)
	body, err := c.Statistics(context.Background(), models.StatisticsOverview, models.StatisticsQuery{GroupBy: "week"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(body))
}

func TestStatisticsErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(logger.NewNop(), srv.URL, "", nil, time.Minute)
	_, err := c.Statistics(context.Background(), models.StatisticsUsers, models.StatisticsQuery{})
	assert.True(t, errors.Is(err, models.ErrUpstreamUnavailable))

	_, err = c.Statistics(context.Background(), models.StatisticsUsers, models.StatisticsQuery{GroupBy: "year"})
	assert.True(t, errors.Is(err, models.ErrValidation))

	_, err = c.Statistics(context.Background(), models.StatisticsUsers, models.StatisticsQuery{StartDate: "2026-04-02", EndDate: "2026-04-01"})
	assert.True(t, errors.Is(err, models.ErrValidation))

	_, err = c.Statistics(context.Background(), "revenue", models.StatisticsQuery{})
	assert.True(t, errors.Is(err, models.ErrValidation))

	disabled := NewClient(logger.NewNop(), "", "", nil, time.Minute)
	_, err = disabled.Statistics(context.Background(), models.StatisticsOverview, models.StatisticsQuery{})
	assert.True(t, errors.Is(err, models.ErrUpstreamUnavailable))
}

func TestSync(t *testing.T) {
	var gotPath, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		raw, _ := io.ReadAll(r.Body)
		gotBody = string(raw)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(logger.NewNop(), srv.URL, "tok", nil, time.Minute)
	err := c.SyncDonation(context.Background(), &models.Donation{
		ID:           9,
		UserID:       2,
		Amount:       decimal.RequireFromString("150.50"),
		Currency:     "RUB",
		Status:       models.DonationCompleted,
		DonationType: "sadaqa",
	})
	require.NoError(t, err)
	assert.Equal(t, "/donations/sync", gotPath)
	assert.Contains(t, gotBody, `"external_id":9`)
	assert.Contains(t, gotBody, `"amount":"150.5"`)

	require.NoError(t, c.SyncCampaign(context.Background(), &models.Campaign{ID: 1}))
	assert.Equal(t, "/campaigns/sync", gotPath)
	require.NoError(t, c.SyncUser(context.Background(), &models.User{ID: 1, TgID: 5}))
	assert.Equal(t, "/users/sync", gotPath)

	disabled := NewClient(logger.NewNop(), "", "", nil, time.Minute)
	assert.NoError(t, disabled.SyncUser(context.Background(), &models.User{ID: 1}))
}
