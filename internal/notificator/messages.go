package notificator

import (
	"fmt"
	"html"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/sadaqapass/sadaqa/internal/models"
)

func donationMessage(c *models.Campaign, amount decimal.Decimal) string {
	return fmt.Sprintf(`🎉 <b>Новое пожертвование в вашу кампанию!</b>

📋 <b>Кампания:</b> %s
💰 <b>Сумма:</b> %s %s

📊 <b>Прогресс:</b> %s / %s %s
📈 %s%% от цели

Спасибо за вашу инициативу! 🙏`,
		html.EscapeString(c.Title),
		formatAmount(amount), c.Currency,
		formatAmount(c.CollectedAmount), formatAmount(c.GoalAmount), c.Currency,
		c.ProgressPercent().StringFixed(1),
	)
}

func completedMessage(c *models.Campaign) string {
	return fmt.Sprintf(`✅ <b>Кампания успешно завершена!</b>

📋 <b>Кампания:</b> %s

💰 <b>Собрано:</b> %s %s
🎯 <b>Цель:</b> %s %s
👥 <b>Участников:</b> %d

Отчёт о расходовании средств будет опубликован фондом-получателем.

Благодарим вас за инициативу! 🙏`,
		html.EscapeString(c.Title),
		formatAmount(c.CollectedAmount), c.Currency,
		formatAmount(c.GoalAmount), c.Currency,
		c.ParticipantsCount,
	)
}

func expiredMessage(c *models.Campaign) string {
	return fmt.Sprintf(`⏰ <b>Срок кампании истёк</b>

📋 <b>Кампания:</b> %s

💰 <b>Собрано:</b> %s %s
🎯 <b>Цель:</b> %s %s
👥 <b>Участников:</b> %d

Средства будут перечислены фонду-получателю. Отчёт будет опубликован в ближайшее время.

Спасибо за вашу инициативу! 🙏`,
		html.EscapeString(c.Title),
		formatAmount(c.CollectedAmount), c.Currency,
		formatAmount(c.GoalAmount), c.Currency,
		c.ParticipantsCount,
	)
}

func moderatedMessage(c *models.Campaign) string {
	if c.Status == models.CampaignActive {
		return fmt.Sprintf(`✅ <b>Кампания одобрена</b>

📋 <b>Кампания:</b> %s

Кампания опубликована и уже принимает пожертвования.`,
			html.EscapeString(c.Title),
		)
	}

	reason := "не указана"
	if c.RejectionReason != nil && *c.RejectionReason != "" {
		reason = *c.RejectionReason
	}
	return fmt.Sprintf(`❌ <b>Кампания отклонена</b>

📋 <b>Кампания:</b> %s
📝 <b>Причина:</b> %s

Вы можете исправить кампанию и отправить её повторно.`,
		html.EscapeString(c.Title),
		html.EscapeString(reason),
	)
}

func partnerReviewedEmail(app *models.PartnerApplication) (subject, body string) {
	if app.Status == models.PartnerApproved {
		return "Заявка на партнёрство одобрена", fmt.Sprintf(
			"Здравствуйте!\n\nЗаявка организации «%s» одобрена. Мы свяжемся с вами, чтобы добавить фонд в каталог.\n",
			app.OrganizationName,
		)
	}
	reason := "не указана"
	if app.RejectionReason != nil && *app.RejectionReason != "" {
		reason = *app.RejectionReason
	}
	return "Заявка на партнёрство отклонена", fmt.Sprintf(
		"Здравствуйте!\n\nЗаявка организации «%s» отклонена.\nПричина: %s\n",
		app.OrganizationName, reason,
	)
}

// formatAmount renders a whole-unit amount with space-separated thousands: 12 500.
func formatAmount(d decimal.Decimal) string {
	s := d.Round(0).StringFixed(0)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	if len(s) <= 3 {
		return sign + s
	}
	var b strings.Builder
	head := len(s) % 3
	if head > 0 {
		b.WriteString(s[:head])
	}
	for i := head; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(s[i : i+3])
	}
	return sign + b.String()
}
