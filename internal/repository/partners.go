package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/sadaqapass/sadaqa/internal/models"
)

func (db *PostgresDB) CreatePartnerApplication(ctx context.Context, app *models.PartnerApplication) error {
	if err := db.Conn.WithContext(ctx).Create(app).Error; err != nil {
		return wrap("create partner application", err)
	}
	return nil
}

func (db *PostgresDB) GetPartnerApplication(ctx context.Context, id int64) (*models.PartnerApplication, error) {
	var app models.PartnerApplication
	if err := db.Conn.WithContext(ctx).First(&app, id).Error; err != nil {
		return nil, wrap("get partner application", err)
	}
	return &app, nil
}

func (db *PostgresDB) ListPartnerApplications(ctx context.Context, status *models.PartnerApplicationStatus, offset, limit int) ([]*models.PartnerApplication, error) {
	q := db.Conn.WithContext(ctx).Model(&models.PartnerApplication{})
	if status != nil {
		q = q.Where("status = ?", *status)
	}

	var apps []*models.PartnerApplication
	if err := page(q.Order("created_at DESC").Order("id DESC"), offset, limit).Find(&apps).Error; err != nil {
		return nil, wrap("list partner applications", err)
	}
	return apps, nil
}

func (db *PostgresDB) ReviewPartnerApplication(ctx context.Context, id int64, review models.PartnerReview) (bool, error) {
	updates := map[string]interface{}{
		"status":      review.Status,
		"reviewed_by": review.ReviewerID,
		"reviewed_at": review.At,
	}
	if review.Reason != nil {
		updates["rejection_reason"] = *review.Reason
	}

	conn := db.Conn.WithContext(ctx)
	res := conn.Model(&models.PartnerApplication{}).
		Where("id = ? AND status = ?", id, models.PartnerPending).
		Updates(updates)
	if res.Error != nil {
		return false, wrap("review partner application", res.Error)
	}
	if res.RowsAffected == 1 {
		return true, nil
	}

	found, err := exists(conn, &models.PartnerApplication{}, id)
	if err != nil {
		return false, wrap("check partner application", err)
	}
	if !found {
		return false, wrap("review partner application", gorm.ErrRecordNotFound)
	}
	return false, nil
}
