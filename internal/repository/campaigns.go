package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/sadaqapass/sadaqa/internal/models"
)

const progressOrder = "CASE WHEN campaigns.goal_amount > 0 THEN campaigns.collected_amount / campaigns.goal_amount ELSE 0 END DESC"

func (db *PostgresDB) CreateCampaign(ctx context.Context, campaign *models.Campaign) error {
	if err := db.Conn.WithContext(ctx).Create(campaign).Error; err != nil {
		return wrap("create campaign", err)
	}
	return nil
}

func (db *PostgresDB) GetCampaign(ctx context.Context, id int64) (*models.Campaign, error) {
	var campaign models.Campaign
	if err := db.Conn.WithContext(ctx).First(&campaign, id).Error; err != nil {
		return nil, wrap("get campaign", err)
	}
	return &campaign, nil
}

// ListCampaigns matches the country against the campaign first and falls
// back to the fund's country for campaigns without one.
func (db *PostgresDB) ListCampaigns(ctx context.Context, filter models.CampaignFilter) ([]*models.Campaign, error) {
	q := db.Conn.WithContext(ctx).Model(&models.Campaign{}).Select("campaigns.*")
	if filter.Status != nil {
		q = q.Where("campaigns.status = ?", *filter.Status)
	}
	if filter.Category != nil {
		q = q.Where("campaigns.category = ?", *filter.Category)
	}
	if filter.CountryCode != nil {
		q = q.Joins("JOIN funds ON funds.id = campaigns.fund_id").
			Where("campaigns.country_code = ? OR (campaigns.country_code IS NULL AND funds.country_code = ?)",
				*filter.CountryCode, *filter.CountryCode)
	}

	switch filter.Sort {
	case models.SortPopularity:
		q = q.Order("campaigns.participants_count DESC").Order("campaigns.created_at DESC")
	case models.SortProgress:
		q = q.Order(progressOrder).Order("campaigns.created_at DESC")
	case models.SortOldest:
		q = q.Order("campaigns.created_at ASC")
	default:
		q = q.Order("campaigns.created_at DESC")
	}

	var campaigns []*models.Campaign
	if err := page(q.Order("campaigns.id DESC"), filter.Offset, filter.Limit).Find(&campaigns).Error; err != nil {
		return nil, wrap("list campaigns", err)
	}
	return campaigns, nil
}

func (db *PostgresDB) TransitionCampaign(ctx context.Context, id int64, from []models.CampaignStatus, to models.CampaignStatus, changes models.CampaignChanges) (bool, error) {
	updates := map[string]interface{}{"status": to}
	if changes.ModeratedBy != nil {
		updates["moderated_by"] = *changes.ModeratedBy
	}
	if changes.ModeratedAt != nil {
		updates["moderated_at"] = *changes.ModeratedAt
	}
	if changes.RejectionReason != nil {
		updates["rejection_reason"] = *changes.RejectionReason
	}

	conn := db.Conn.WithContext(ctx)
	q := conn.Model(&models.Campaign{}).Where("id = ? AND status IN ?", id, from)
	if changes.EndedBefore != nil {
		q = q.Where("end_date < ?", *changes.EndedBefore)
	}
	res := q.Updates(updates)
	if res.Error != nil {
		return false, wrap("transition campaign", res.Error)
	}
	if res.RowsAffected == 1 {
		return true, nil
	}

	found, err := exists(conn, &models.Campaign{}, id)
	if err != nil {
		return false, wrap("check campaign", err)
	}
	if !found {
		return false, wrap("transition campaign", gorm.ErrRecordNotFound)
	}
	return false, nil
}

func (db *PostgresDB) AddCampaignProgress(ctx context.Context, id int64, amount decimal.Decimal) (*models.CampaignProgress, error) {
	var progress *models.CampaignProgress
	err := db.Conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		progress, err = addCampaignProgress(tx, id, amount)
		return err
	})
	if err != nil {
		return nil, wrap("add campaign progress", err)
	}
	return progress, nil
}

// addCampaignProgress must run inside a transaction. Both statements are
// atomic increments or guarded updates, so concurrent credits never lose an update.
func addCampaignProgress(tx *gorm.DB, id int64, amount decimal.Decimal) (*models.CampaignProgress, error) {
	res := tx.Model(&models.Campaign{}).Where("id = ?", id).Updates(map[string]interface{}{
		"collected_amount":   gorm.Expr("collected_amount + ?", amount),
		"participants_count": gorm.Expr("participants_count + 1"),
	})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}

	completed := tx.Model(&models.Campaign{}).
		Where("id = ? AND status = ? AND collected_amount >= goal_amount", id, models.CampaignActive).
		Update("status", models.CampaignCompleted)
	if completed.Error != nil {
		return nil, completed.Error
	}

	var campaign models.Campaign
	if err := tx.First(&campaign, id).Error; err != nil {
		return nil, err
	}
	return &models.CampaignProgress{Campaign: &campaign, GoalReached: completed.RowsAffected == 1}, nil
}

func (db *PostgresDB) ListExpirableCampaigns(ctx context.Context, now time.Time) ([]*models.Campaign, error) {
	var campaigns []*models.Campaign
	err := db.Conn.WithContext(ctx).
		Where("status = ? AND end_date < ?", models.CampaignActive, now).
		Order("end_date ASC").
		Find(&campaigns).Error
	if err != nil {
		return nil, wrap("list expirable campaigns", err)
	}
	return campaigns, nil
}

func (db *PostgresDB) ListCampaignDonations(ctx context.Context, campaignID int64, offset, limit int) ([]*models.Donation, error) {
	q := db.Conn.WithContext(ctx).
		Where("campaign_id = ? AND status = ?", campaignID, models.DonationCompleted).
		Order("completed_at DESC").Order("id DESC")

	var donations []*models.Donation
	if err := page(q, offset, limit).Find(&donations).Error; err != nil {
		return nil, wrap("list campaign donations", err)
	}
	return donations, nil
}

func (db *PostgresDB) CampaignDonationTotals(ctx context.Context, campaignID int64) (int64, decimal.Decimal, error) {
	var row struct {
		Count int64
		Total decimal.Decimal
	}
	err := db.Conn.WithContext(ctx).Model(&models.Donation{}).
		Select("COUNT(*) AS count, COALESCE(SUM(amount), 0) AS total").
		Where("campaign_id = ? AND status = ?", campaignID, models.DonationCompleted).
		Scan(&row).Error
	if err != nil {
		return 0, decimal.Zero, wrap("sum campaign donations", err)
	}
	return row.Count, row.Total, nil
}
