package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sadaqapass/sadaqa/internal/models"
)

var openDonationStatuses = []models.DonationStatus{models.DonationPending, models.DonationProcessing}

func (db *PostgresDB) CreateDonation(ctx context.Context, donation *models.Donation) error {
	if err := db.Conn.WithContext(ctx).Create(donation).Error; err != nil {
		return wrap("create donation", err)
	}
	return nil
}

func (db *PostgresDB) GetDonation(ctx context.Context, id int64) (*models.Donation, error) {
	var donation models.Donation
	if err := db.Conn.WithContext(ctx).First(&donation, id).Error; err != nil {
		return nil, wrap("get donation", err)
	}
	return &donation, nil
}

func (db *PostgresDB) MarkDonationProcessing(ctx context.Context, id int64, provider models.PaymentProvider, paymentID, paymentURL string) error {
	res := db.Conn.WithContext(ctx).Model(&models.Donation{}).
		Where("id = ? AND status = ?", id, models.DonationPending).
		Updates(map[string]interface{}{
			"status":      models.DonationProcessing,
			"provider":    provider,
			"payment_id":  paymentID,
			"payment_url": paymentURL,
		})
	if res.Error != nil {
		return wrap("mark donation processing", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("donation %d is not pending: %w", id, models.ErrInvalidState)
	}
	return nil
}

// SettleDonation guards on the open statuses, so a redelivered webhook finds
// nothing to update and the campaign is credited exactly once.
func (db *PostgresDB) SettleDonation(ctx context.Context, s models.DonationSettlement) (*models.SettlementResult, error) {
	if !s.Status.Terminal() {
		return nil, fmt.Errorf("settle donation to %q: %w", s.Status, models.ErrInvalidState)
	}

	result := &models.SettlementResult{}
	err := db.Conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{"status": s.Status}
		if s.ProviderTransactionID != "" {
			updates["provider_transaction_id"] = s.ProviderTransactionID
		}
		if s.Status == models.DonationCompleted {
			updates["completed_at"] = s.At
		}
		res := tx.Model(&models.Donation{}).
			Where("id = ? AND status IN ?", s.DonationID, openDonationStatuses).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}

		var donation models.Donation
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&donation, s.DonationID).Error; err != nil {
			return err
		}
		result.Donation = &donation
		if res.RowsAffected == 0 {
			return nil
		}
		result.Applied = true

		if s.Status == models.DonationCompleted && donation.CampaignID != nil {
			progress, err := addCampaignProgress(tx, *donation.CampaignID, donation.Amount)
			if err != nil {
				return err
			}
			result.Progress = progress
		}
		return nil
	})
	if err != nil {
		return nil, wrap("settle donation", err)
	}
	return result, nil
}

func (db *PostgresDB) ListUserDonations(ctx context.Context, userID int64, limit int) ([]*models.Donation, error) {
	q := db.Conn.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Order("id DESC")

	var donations []*models.Donation
	if err := page(q, 0, limit).Find(&donations).Error; err != nil {
		return nil, wrap("list user donations", err)
	}
	return donations, nil
}

func (db *PostgresDB) UserStats(ctx context.Context, userID int64) (*models.UserStats, error) {
	conn := db.Conn.WithContext(ctx)

	var stats models.UserStats
	err := conn.Model(&models.Donation{}).
		Select(`COALESCE(SUM(amount), 0) AS total_donated,
			COUNT(*) AS donations_count,
			COUNT(DISTINCT campaign_id) AS campaigns_supported,
			COALESCE(SUM(amount) FILTER (WHERE donation_type = ?), 0) AS total_zakat_paid`, models.DonationTypeZakat).
		Where("user_id = ? AND status = ?", userID, models.DonationCompleted).
		Scan(&stats).Error
	if err != nil {
		return nil, wrap("aggregate user donations", err)
	}

	err = conn.Model(&models.Subscription{}).
		Where("user_id = ? AND status = ?", userID, models.SubscriptionActive).
		Count(&stats.ActiveSubscriptions).Error
	if err != nil {
		return nil, wrap("count user subscriptions", err)
	}
	return &stats, nil
}
