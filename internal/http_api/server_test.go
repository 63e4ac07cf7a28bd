package http_api

import (
	"context"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadaqapass/sadaqa/internal/auth"
	"github.com/sadaqapass/sadaqa/internal/config"
	"github.com/sadaqapass/sadaqa/internal/models"
	"github.com/sadaqapass/sadaqa/internal/payment"
	"github.com/sadaqapass/sadaqa/internal/repository"
	"github.com/sadaqapass/sadaqa/internal/sadaqa"
	"github.com/sadaqapass/sadaqa/pkg/logger"
	"github.com/sadaqapass/sadaqa/pkg/validation"
)

const (
	botToken      = "123456:TEST-token"
	yooKassaHook  = "yk-secret"
	adminTgID     = 900
	ownerTgID     = 1
	donorTgID     = 2
	apiPrefix     = "/api/v1"
	jwtTestSecret = "jwt-secret"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	if err := validation.RegisterGin(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

type nopNotifier struct{}

func (nopNotifier) CampaignDonation(int64, *models.Campaign, decimal.Decimal) {}
func (nopNotifier) CampaignCompleted(int64, *models.Campaign)                 {}
func (nopNotifier) CampaignExpired(int64, *models.Campaign)                   {}
func (nopNotifier) CampaignModerated(int64, *models.Campaign)                 {}
func (nopNotifier) PartnerReviewed(*models.PartnerApplication)                {}

// offlineMirror behaves like an unconfigured analytics mirror.
type offlineMirror struct{}

func (offlineMirror) Statistics(context.Context, models.StatisticsKind, models.StatisticsQuery) ([]byte, error) {
	return nil, models.ErrUpstreamUnavailable
}
func (offlineMirror) SyncDonation(context.Context, *models.Donation) error { return nil }
func (offlineMirror) SyncCampaign(context.Context, *models.Campaign) error { return nil }
func (offlineMirror) SyncUser(context.Context, *models.User) error         { return nil }

type inlineDispatcher struct{}

func (inlineDispatcher) Submit(name string, fn func(ctx context.Context)) bool {
	fn(context.Background())
	return true
}

type testServer struct {
	t   *testing.T
	srv *HTTPServer
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	cfg := &config.Config{
		Development:       true,
		APIPort:           8000,
		APIPrefix:         apiPrefix,
		TelegramSecretKey: botToken,
		InitDataMaxAge:    time.Hour,
		AdminTelegramIDs:  []int64{adminTgID},
		PaymentReturnURL:  "https://t.me/your_bot",
		PaymentTimeout:    time.Second,
	}
	log := logger.NewNop()
	svc := sadaqa.NewSadaqa(
		repository.NewMemoryDB(),
		payment.NewFallback(log, payment.Stub{}),
		payment.NewWebhooks(yooKassaHook, "cp-secret"),
		nopNotifier{},
		offlineMirror{},
		inlineDispatcher{},
		log,
		cfg,
	)
	return &testServer{t: t, srv: newHTTPServer(svc, cfg, auth.NewTokens(jwtTestSecret, time.Hour), log)}
}

func initData(tgID int64) string {
	values := url.Values{}
	values.Set("auth_date", strconv.FormatInt(time.Now().Unix(), 10))
	values.Set("user", fmt.Sprintf(`{"id":%d,"first_name":"User %d"}`, tgID, tgID))
	values.Set("hash", hex.EncodeToString(auth.Sign(values, botToken)))
	return values.Encode()
}

func (ts *testServer) do(method, path, body string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	ts.srv.router.ServeHTTP(w, req)
	return w
}

// as sends the request authenticated as the telegram user tgID.
func (ts *testServer) as(tgID int64, method, path, body string) *httptest.ResponseRecorder {
	header := http.Header{}
	header.Set(InitDataHeader, initData(tgID))
	return ts.do(method, apiPrefix+path, body, header)
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func decodeList(t *testing.T, w *httptest.ResponseRecorder) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func id(t *testing.T, body map[string]interface{}) int64 {
	t.Helper()
	v, ok := body["id"].(float64)
	require.True(t, ok, "missing id in %v", body)
	return int64(v)
}

func (ts *testServer) createFund(t *testing.T) int64 {
	t.Helper()
	w := ts.as(adminTgID, http.MethodPost, "/funds", `{"name":"Rahma","country_code":"RU","verified":true}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return id(t, decode(t, w))
}

func (ts *testServer) activeCampaign(t *testing.T, fundID int64, goal string) int64 {
	t.Helper()
	end := time.Now().Add(72 * time.Hour).UTC().Format(time.RFC3339)
	w := ts.as(ownerTgID, http.MethodPost, "/campaigns",
		fmt.Sprintf(`{"fund_id":%d,"title":"Колодец","description":"вода","goal_amount":%s,"end_date":%q}`, fundID, goal, end))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	campaign := decode(t, w)
	assert.Equal(t, "pending", campaign["status"])

	campaignID := id(t, campaign)
	w = ts.as(adminTgID, http.MethodPost, fmt.Sprintf("/admin/campaigns/%d/approve", campaignID), "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return campaignID
}

func (ts *testServer) yooKassaSucceeded(donationID int64, secret string) *httptest.ResponseRecorder {
	body := fmt.Sprintf(`{"type":"notification","event":"payment.succeeded","object":{"id":"tx-%d","metadata":{"order_id":"%d"}}}`, donationID, donationID)
	header := http.Header{}
	header.Set(payment.YooKassaSignatureHeader, payment.SignHex([]byte(body), secret))
	return ts.do(http.MethodPost, apiPrefix+"/payments/webhook/yookassa", body, header)
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
}

func TestRequestIDIsPropagated(t *testing.T) {
	ts := newTestServer(t)
	header := http.Header{}
	header.Set(RequestIDHeader, "req-42")
	w := ts.do(http.MethodGet, "/health", "", header)
	assert.Equal(t, "req-42", w.Header().Get(RequestIDHeader))
}

func TestAuthentication(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodGet, apiPrefix+"/me/stats", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	header := http.Header{}
	header.Set(InitDataHeader, initData(donorTgID)+"x")
	w = ts.do(http.MethodGet, apiPrefix+"/me/stats", "", header)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = ts.as(donorTgID, http.MethodGet, "/me/stats", "")
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "0", decode(t, w)["total_donated"])
}

func TestBearerToken(t *testing.T) {
	ts := newTestServer(t)

	w := ts.as(donorTgID, http.MethodPost, "/auth/token", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	token, ok := decode(t, w)["access_token"].(string)
	require.True(t, ok)

	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)
	w = ts.do(http.MethodGet, apiPrefix+"/me/history", "", header)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	header.Set("Authorization", "Bearer not-a-token")
	w = ts.do(http.MethodGet, apiPrefix+"/me/history", "", header)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminRoutesRequireAllowList(t *testing.T) {
	ts := newTestServer(t)

	w := ts.as(donorTgID, http.MethodGet, "/admin/campaigns/pending", "")
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = ts.as(donorTgID, http.MethodPost, "/funds", `{"name":"X"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = ts.as(adminTgID, http.MethodGet, "/admin/campaigns/pending", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCampaignDonationSettledByWebhook(t *testing.T) {
	ts := newTestServer(t)
	fundID := ts.createFund(t)
	campaignID := ts.activeCampaign(t, fundID, "1000")

	w := ts.as(donorTgID, http.MethodPost, fmt.Sprintf("/campaigns/%d/donate", campaignID), `{"amount":1000}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	donation := decode(t, w)
	assert.Equal(t, "processing", donation["status"])
	assert.Contains(t, donation["payment_url"], "yookassa.ru/payment/")
	donationID := id(t, donation)

	w = ts.yooKassaSucceeded(donationID, "wrong")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"detail":"Invalid signature"}`, w.Body.String())

	for i := 0; i < 2; i++ {
		w = ts.yooKassaSucceeded(donationID, yooKassaHook)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	}

	w = ts.do(http.MethodGet, fmt.Sprintf("%s/campaigns/%d", apiPrefix, campaignID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	campaign := decode(t, w)
	assert.Equal(t, "completed", campaign["status"])
	assert.Equal(t, "1000", campaign["collected_amount"])
	assert.Equal(t, float64(1), campaign["participants_count"])

	w = ts.as(donorTgID, http.MethodGet, fmt.Sprintf("/donations/%d", donationID), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "completed", decode(t, w)["status"])

	w = ts.as(ownerTgID, http.MethodGet, fmt.Sprintf("/donations/%d", donationID), "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Default listing shows active campaigns only.
	w = ts.do(http.MethodGet, apiPrefix+"/campaigns", "", nil)
	assert.Empty(t, decodeList(t, w))
	w = ts.do(http.MethodGet, apiPrefix+"/campaigns?status=all", "", nil)
	assert.Len(t, decodeList(t, w), 1)

	w = ts.do(http.MethodGet, fmt.Sprintf("%s/campaigns/%d/report", apiPrefix, campaignID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	report := decode(t, w)
	assert.Equal(t, float64(1), report["donations_count"])
	assert.Equal(t, float64(0), report["days_left"])
}

func TestWebhookUnknownOrderIsRejected(t *testing.T) {
	ts := newTestServer(t)
	w := ts.yooKassaSucceeded(404, yooKassaHook)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"detail":"Webhook processing error"}`, w.Body.String())
}

func TestCreateCampaignValidation(t *testing.T) {
	ts := newTestServer(t)
	fundID := ts.createFund(t)
	past := time.Now().Add(-time.Hour).UTC().Format(time.RFC3339)

	w := ts.as(ownerTgID, http.MethodPost, "/campaigns",
		fmt.Sprintf(`{"fund_id":%d,"title":"T","goal_amount":0,"end_date":%q}`, fundID, past))
	require.Equal(t, http.StatusBadRequest, w.Code)
	fields, ok := decode(t, w)["fields"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "decimal_gt0", fields["GoalAmount"])
	assert.Equal(t, "future", fields["EndDate"])

	future := time.Now().Add(time.Hour).UTC().Format(time.RFC3339)
	w = ts.as(ownerTgID, http.MethodPost, "/campaigns",
		fmt.Sprintf(`{"fund_id":999,"title":"T","goal_amount":10,"end_date":%q}`, future))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestModerationTwiceIsRejected(t *testing.T) {
	ts := newTestServer(t)
	campaignID := ts.activeCampaign(t, ts.createFund(t), "500")

	w := ts.as(adminTgID, http.MethodPost, fmt.Sprintf("/admin/campaigns/%d/reject", campaignID), `{"reason":"late"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.as(adminTgID, http.MethodPost, fmt.Sprintf("/admin/campaigns/%d/reject", campaignID), `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOwnerCancelsCampaign(t *testing.T) {
	ts := newTestServer(t)
	campaignID := ts.activeCampaign(t, ts.createFund(t), "500")
	path := fmt.Sprintf("/campaigns/%d/status", campaignID)

	w := ts.as(donorTgID, http.MethodPatch, path, `{"status":"cancelled"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = ts.as(ownerTgID, http.MethodPatch, path, `{"status":"bogus"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = ts.as(ownerTgID, http.MethodPatch, path, `{"status":"cancelled"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "cancelled", decode(t, w)["status"])
}

func TestCheckExpired(t *testing.T) {
	ts := newTestServer(t)
	w := ts.as(adminTgID, http.MethodPost, "/admin/campaigns/check-expired", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(0), decode(t, w)["expired_count"])
}

func TestPathAndQueryValidation(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodGet, apiPrefix+"/campaigns/abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = ts.do(http.MethodGet, apiPrefix+"/campaigns/999", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = ts.do(http.MethodGet, apiPrefix+"/campaigns?sort=random", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = ts.do(http.MethodGet, apiPrefix+"/campaigns?status=nope", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = ts.do(http.MethodGet, apiPrefix+"/funds?country_code=XYZ", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubscriptionRoutes(t *testing.T) {
	ts := newTestServer(t)

	w := ts.as(donorTgID, http.MethodPost, "/subscriptions/init", `{"plan":"pro","period":"P6M"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	sub := decode(t, w)
	assert.Equal(t, "4800", sub["amount"])
	assert.Equal(t, float64(5), sub["charity_percent"])
	subID := id(t, sub)

	w = ts.as(donorTgID, http.MethodPost, "/subscriptions/init", `{"plan":"gold","period":"P6M"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	for _, step := range []struct {
		action string
		code   int
	}{
		{"pause", http.StatusOK},
		{"pause", http.StatusBadRequest},
		{"resume", http.StatusOK},
		{"cancel", http.StatusOK},
		{"cancel", http.StatusBadRequest},
	} {
		w = ts.as(donorTgID, http.MethodPost, fmt.Sprintf("/subscriptions/%d/%s", subID, step.action), "")
		assert.Equal(t, step.code, w.Code, "%s: %s", step.action, w.Body.String())
	}

	w = ts.as(ownerTgID, http.MethodPost, fmt.Sprintf("/subscriptions/%d/cancel", subID), "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.as(donorTgID, http.MethodGet, "/subscriptions?status=cancelled", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeList(t, w), 1)
}

func TestZakatRoutes(t *testing.T) {
	ts := newTestServer(t)

	w := ts.as(donorTgID, http.MethodPost, "/zakat/calc", `{"cash":"500000"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	calc := decode(t, w)
	assert.Equal(t, "12500", calc["zakat_due"])

	w = ts.as(donorTgID, http.MethodPost, "/zakat/calc", `{"cash":-1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.as(ownerTgID, http.MethodPost, "/zakat/pay", fmt.Sprintf(`{"calculation_id":%d}`, id(t, calc)))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.as(donorTgID, http.MethodPost, "/zakat/pay", fmt.Sprintf(`{"calculation_id":%d}`, id(t, calc)))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	donation := decode(t, w)
	assert.Equal(t, "zakat", donation["donation_type"])
	assert.Equal(t, "12500", donation["amount"])

	w = ts.as(donorTgID, http.MethodGet, "/zakat/history?limit=500", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = ts.as(donorTgID, http.MethodGet, "/zakat/history", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeList(t, w), 1)
}

func TestPartnerRoutes(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodPost, apiPrefix+"/partners/applications",
		`{"organization_name":"Nur","contact_email":"hello@nur.org","country_code":"KZ"}`, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	appID := id(t, decode(t, w))

	w = ts.do(http.MethodPost, apiPrefix+"/partners/applications",
		`{"organization_name":"Nur","contact_email":"not-an-email"}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	path := fmt.Sprintf("/partners/applications/%d/status", appID)
	w = ts.as(donorTgID, http.MethodPatch, path, `{"status":"approved"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = ts.as(adminTgID, http.MethodPatch, path, `{"status":"approved"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "approved", decode(t, w)["status"])
	w = ts.as(adminTgID, http.MethodPatch, path, `{"status":"rejected","rejection_reason":"x"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.as(adminTgID, http.MethodGet, "/partners/applications?status=approved", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeList(t, w), 1)
}

func TestStatisticsUpstreamFailureIsGeneric(t *testing.T) {
	ts := newTestServer(t)
	w := ts.as(donorTgID, http.MethodGet, "/statistics/donations", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Upstream service unavailable", decode(t, w)["error"])

	w = ts.as(donorTgID, http.MethodGet, "/statistics?group_by=year", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{models.ErrNotFound, http.StatusNotFound},
		{models.ErrInvalidState, http.StatusBadRequest},
		{models.ErrValidation, http.StatusBadRequest},
		{models.ErrInvalidSignature, http.StatusBadRequest},
		{models.ErrUnauthorized, http.StatusUnauthorized},
		{models.ErrForbidden, http.StatusForbidden},
		{models.ErrUpstreamUnavailable, http.StatusInternalServerError},
		{fmt.Errorf("wrapped: %w", models.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}
