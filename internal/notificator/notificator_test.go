package notificator

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
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

func TestDispatcherDropsWhenFull(t *testing.T) {
	d := NewDispatcher(logger.NewNop(), 1)

	var ran int32
	assert.True(t, d.Submit("first", func(ctx context.Context) { atomic.AddInt32(&ran, 1) }))

	done := make(chan bool)
	go func() { done <- d.Submit("second", func(ctx context.Context) { atomic.AddInt32(&ran, 1) }) }()
	select {
	case ok := <-done:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("Submit blocked on a full queue")
	}

	d.Start()
	d.Stop(context.Background())
	assert.Equal(t, int32(1), atomic.LoadInt32(&ran))
	assert.False(t, d.Submit("late", func(ctx context.Context) {}))
}

func TestDispatcherRecoversPanics(t *testing.T) {
	d := NewDispatcher(logger.NewNop(), 4)
	d.Start()

	var ran int32
	d.Submit("boom", func(ctx context.Context) { panic("boom") })
	d.Submit("after", func(ctx context.Context) { atomic.AddInt32(&ran, 1) })
	d.Stop(context.Background())

	assert.Equal(t, int32(1), atomic.LoadInt32(&ran))
}

func TestDispatcherStopHonoursContext(t *testing.T) {
	d := NewDispatcher(logger.NewNop(), 1)
	d.Start()

	release := make(chan struct{})
	d.Submit("slow", func(ctx context.Context) {
		select {
		case <-release:
		case <-ctx.Done():
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	start := time.Now()
	d.Stop(ctx)
	assert.Less(t, time.Since(start), time.Second)
	close(release)
}

type fakeMessenger struct {
	mu   sync.Mutex
	sent map[int64][]string
}

func (f *fakeMessenger) Send(ctx context.Context, chatID int64, html string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sent == nil {
		f.sent = map[int64][]string{}
	}
	f.sent[chatID] = append(f.sent[chatID], html)
	return nil
}

type fakeMailer struct {
	to, subject, body string
}

func (f *fakeMailer) Send(to, subject, body string) error {
	f.to, f.subject, f.body = to, subject, body
	return nil
}

// inline runs tasks synchronously.
type inline struct{}

func (inline) Submit(name string, fn func(ctx context.Context)) bool {
	fn(context.Background())
	return true
}

func campaign() *models.Campaign {
	return &models.Campaign{
		ID:                1,
		Title:             "Колодец <в деревне>",
		GoalAmount:        decimal.NewFromInt(1000),
		CollectedAmount:   decimal.NewFromInt(400),
		Currency:          "RUB",
		Status:            models.CampaignActive,
		ParticipantsCount: 3,
	}
}

func TestNotificatorTelegramMessages(t *testing.T) {
	tg := &fakeMessenger{}
	n := NewNotificator(logger.NewNop(), inline{}, tg, &fakeMailer{})

	c := campaign()
	n.CampaignDonation(42, c, decimal.NewFromInt(400))
	n.CampaignCompleted(42, c)
	n.CampaignExpired(42, c)
	n.CampaignDonation(0, c, decimal.NewFromInt(1))

	require.Len(t, tg.sent[42], 3)
	assert.Contains(t, tg.sent[42][0], "Новое пожертвование")
	assert.Contains(t, tg.sent[42][0], "400 / 1 000 RUB")
	assert.Contains(t, tg.sent[42][0], "40.0% от цели")
	assert.Contains(t, tg.sent[42][0], "Колодец &lt;в деревне&gt;")
	assert.Contains(t, tg.sent[42][1], "Кампания успешно завершена")
	assert.Contains(t, tg.sent[42][2], "Срок кампании истёк")
	assert.NotContains(t, tg.sent, int64(0))
}

func TestModeratedMessage(t *testing.T) {
	c := campaign()
	assert.Contains(t, moderatedMessage(c), "одобрена")

	reason := "нет документов"
	c.Status = models.CampaignRejected
	c.RejectionReason = &reason
	msg := moderatedMessage(c)
	assert.Contains(t, msg, "отклонена")
	assert.Contains(t, msg, "нет документов")
}

func TestPartnerReviewedEmail(t *testing.T) {
	mail := &fakeMailer{}
	n := NewNotificator(logger.NewNop(), inline{}, &fakeMessenger{}, mail)

	reason := "incomplete"
	n.PartnerReviewed(&models.PartnerApplication{
		ID:               3,
		OrganizationName: "Rahma",
		ContactEmail:     "info@rahma.org",
		Status:           models.PartnerRejected,
		RejectionReason:  &reason,
	})
	assert.Equal(t, "info@rahma.org", mail.to)
	assert.Contains(t, mail.subject, "отклонена")
	assert.Contains(t, mail.body, "incomplete")
}

func TestEmailNotificator(t *testing.T) {
	e := NewEmailNotificator(logger.NewNop(), "smtp.example.org", 587, "user", "pw", "noreply@example.org")

	var gotAddr string
	var gotMsg []byte
	e.sendMail = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotMsg = addr, msg
		return nil
	}
	require.NoError(t, e.Send("to@example.org", "Тема", "body"))
	assert.Equal(t, "smtp.example.org:587", gotAddr)
	assert.True(t, strings.Contains(string(gotMsg), "To: to@example.org\r\n"))
	assert.True(t, strings.HasSuffix(string(gotMsg), "\r\n\r\nbody"))

	e.sendMail = func(string, smtp.Auth, string, []string, []byte) error { return errors.New("refused") }
	assert.Error(t, e.Send("to@example.org", "s", "b"))

	disabled := NewEmailNotificator(logger.NewNop(), "", 0, "", "", "")
	assert.NoError(t, disabled.Send("to@example.org", "s", "b"))
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "0", formatAmount(decimal.Zero))
	assert.Equal(t, "999", formatAmount(decimal.NewFromInt(999)))
	assert.Equal(t, "1 000", formatAmount(decimal.NewFromInt(1000)))
	assert.Equal(t, "12 500", formatAmount(decimal.RequireFromString("12499.6")))
	assert.Equal(t, "1 234 567", formatAmount(decimal.NewFromInt(1234567)))
}

func TestTelegramDisabledWithoutToken(t *testing.T) {
	tg, err := NewTelegramNotificator(logger.NewNop(), "")
	require.NoError(t, err)
	assert.False(t, tg.Enabled())
	assert.NoError(t, tg.Send(context.Background(), 1, "hi"))
	tg.Start()
	tg.Stop()
}
