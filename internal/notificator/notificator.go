// Package notificator delivers user-facing messages off the request path.
package notificator

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/sadaqapass/sadaqa/internal/models"
	"github.com/sadaqapass/sadaqa/pkg/logger"
)

var _ models.NotificationService = (*Notificator)(nil)

// Messenger sends an HTML chat message.
type Messenger interface {
	Send(ctx context.Context, chatID int64, html string) error
}

// Mailer sends a plain-text email.
type Mailer interface {
	Send(to, subject, body string) error
}

// Notificator renders notifications and queues their delivery on the
// dispatcher. Every method returns immediately.
type Notificator struct {
	logger     *logger.Logger
	dispatcher models.Dispatcher

	telegram Messenger
	email    Mailer
}

func NewNotificator(logger *logger.Logger, dispatcher models.Dispatcher, telegram Messenger, email Mailer) *Notificator {
	return &Notificator{logger: logger, dispatcher: dispatcher, telegram: telegram, email: email}
}

func (n *Notificator) CampaignDonation(chatID int64, campaign *models.Campaign, amount decimal.Decimal) {
	n.sendTelegram("campaign_donation", chatID, donationMessage(campaign, amount))
}

func (n *Notificator) CampaignCompleted(chatID int64, campaign *models.Campaign) {
	n.sendTelegram("campaign_completed", chatID, completedMessage(campaign))
}

func (n *Notificator) CampaignExpired(chatID int64, campaign *models.Campaign) {
	n.sendTelegram("campaign_expired", chatID, expiredMessage(campaign))
}

func (n *Notificator) CampaignModerated(chatID int64, campaign *models.Campaign) {
	n.sendTelegram("campaign_moderated", chatID, moderatedMessage(campaign))
}

func (n *Notificator) PartnerReviewed(app *models.PartnerApplication) {
	if app.ContactEmail == "" {
		return
	}
	to := app.ContactEmail
	subject, body := partnerReviewedEmail(app)
	n.dispatcher.Submit("partner_reviewed", func(ctx context.Context) {
		if err := n.email.Send(to, subject, body); err != nil {
			n.logger.Error("Failed to send partner review email", "application_id", app.ID, "error", err)
		}
	})
}

func (n *Notificator) sendTelegram(name string, chatID int64, message string) {
	if chatID == 0 {
		return
	}
	n.dispatcher.Submit(name, func(ctx context.Context) {
		if err := n.telegram.Send(ctx, chatID, message); err != nil {
			n.logger.Error("Failed to send telegram notification", "kind", name, "chat_id", chatID, "error", err)
		}
	})
}
