package sadaqa

import (
	"context"
	"sync"
	"time"

	"github.com/sadaqapass/sadaqa/internal/config"
	"github.com/sadaqapass/sadaqa/internal/models"
	"github.com/sadaqapass/sadaqa/pkg/logger"
)

const (
	defaultListLimit = 100
	maxListLimit     = 100
)

// Sadaqa is the main struct of the application.
// It holds every collaborator the business operations need
// and serves all business logic
type Sadaqa struct {
	logger *logger.Logger
	config *config.Config

	repo        models.Repository
	gateway     models.PaymentGateway
	webhooks    models.WebhookVerifier
	notificator models.NotificationService
	mirror      models.StatisticsMirror
	dispatcher  models.Dispatcher

	now func() time.Time

	// Sweeper lifecycle
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSadaqa creates a new Sadaqa instance
func NewSadaqa(
	repo models.Repository,
	gateway models.PaymentGateway,
	webhooks models.WebhookVerifier,
	notificator models.NotificationService,
	mirror models.StatisticsMirror,
	dispatcher models.Dispatcher,
	logger *logger.Logger,
	config *config.Config,
) models.SadaqaI {
	return newSadaqa(repo, gateway, webhooks, notificator, mirror, dispatcher, logger, config)
}

func newSadaqa(
	repo models.Repository,
	gateway models.PaymentGateway,
	webhooks models.WebhookVerifier,
	notificator models.NotificationService,
	mirror models.StatisticsMirror,
	dispatcher models.Dispatcher,
	logger *logger.Logger,
	config *config.Config,
) *Sadaqa {
	ctx, cancel := context.WithCancel(context.Background())
	return &Sadaqa{
		logger:      logger,
		config:      config,
		repo:        repo,
		gateway:     gateway,
		webhooks:    webhooks,
		notificator: notificator,
		mirror:      mirror,
		dispatcher:  dispatcher,
		now:         time.Now,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Start launches the expiry sweeper
func (s *Sadaqa) Start() {
	s.startSweeper(s.config.ExpirySweepInterval)
}

// Stop waits for the sweeper to finish
func (s *Sadaqa) Stop() {
	s.cancel()
	s.wg.Wait()
}

// Authenticate finds or creates the user behind a verified Telegram identity.
func (s *Sadaqa) Authenticate(ctx context.Context, identity models.TelegramIdentity) (*models.User, error) {
	locale := identity.LanguageCode
	if locale == "" {
		locale = "ru"
	}
	user, err := s.repo.FindOrCreateUser(ctx, &models.User{
		TgID:      identity.ID,
		FirstName: identity.FirstName,
		LastName:  identity.LastName,
		Username:  identity.Username,
		Locale:    locale,
	})
	if err != nil {
		return nil, err
	}
	// A fresh row has never been updated.
	if user.CreatedAt.Equal(user.UpdatedAt) {
		s.syncUser(user)
	}
	return user, nil
}

func (s *Sadaqa) GetUser(ctx context.Context, id int64) (*models.User, error) {
	return s.repo.GetUser(ctx, id)
}

func (s *Sadaqa) syncUser(user *models.User) {
	u := *user
	s.dispatcher.Submit("sync_user", func(ctx context.Context) {
		if err := s.mirror.SyncUser(ctx, &u); err != nil {
			s.logger.Warn("Failed to sync user", "user_id", u.ID, "error", err)
		}
	})
}

func (s *Sadaqa) syncCampaign(campaign *models.Campaign) {
	c := *campaign
	s.dispatcher.Submit("sync_campaign", func(ctx context.Context) {
		if err := s.mirror.SyncCampaign(ctx, &c); err != nil {
			s.logger.Warn("Failed to sync campaign", "campaign_id", c.ID, "error", err)
		}
	})
}

func (s *Sadaqa) syncDonation(donation *models.Donation) {
	d := *donation
	s.dispatcher.Submit("sync_donation", func(ctx context.Context) {
		if err := s.mirror.SyncDonation(ctx, &d); err != nil {
			s.logger.Warn("Failed to sync donation", "donation_id", d.ID, "error", err)
		}
	})
}

func clampLimit(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}

func clampOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}
