package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/sadaqapass/sadaqa/internal/models"
)

func (db *PostgresDB) CreateSubscription(ctx context.Context, subscription *models.Subscription) error {
	if err := db.Conn.WithContext(ctx).Create(subscription).Error; err != nil {
		return wrap("create subscription", err)
	}
	return nil
}

func (db *PostgresDB) GetSubscription(ctx context.Context, id int64) (*models.Subscription, error) {
	var subscription models.Subscription
	if err := db.Conn.WithContext(ctx).First(&subscription, id).Error; err != nil {
		return nil, wrap("get subscription", err)
	}
	return &subscription, nil
}

func (db *PostgresDB) ListSubscriptions(ctx context.Context, userID int64, status *models.SubscriptionStatus, limit int) ([]*models.Subscription, error) {
	q := db.Conn.WithContext(ctx).Where("user_id = ?", userID)
	if status != nil {
		q = q.Where("status = ?", *status)
	}

	var subscriptions []*models.Subscription
	if err := page(q.Order("created_at DESC").Order("id DESC"), 0, limit).Find(&subscriptions).Error; err != nil {
		return nil, wrap("list subscriptions", err)
	}
	return subscriptions, nil
}

func (db *PostgresDB) TransitionSubscription(ctx context.Context, id int64, from []models.SubscriptionStatus, to models.SubscriptionStatus, at time.Time) (bool, error) {
	updates := map[string]interface{}{"status": to}
	if to == models.SubscriptionCancelled {
		updates["cancelled_at"] = at
	}

	conn := db.Conn.WithContext(ctx)
	res := conn.Model(&models.Subscription{}).Where("id = ? AND status IN ?", id, from).Updates(updates)
	if res.Error != nil {
		return false, wrap("transition subscription", res.Error)
	}
	if res.RowsAffected == 1 {
		return true, nil
	}

	found, err := exists(conn, &models.Subscription{}, id)
	if err != nil {
		return false, wrap("check subscription", err)
	}
	if !found {
		return false, wrap("transition subscription", gorm.ErrRecordNotFound)
	}
	return false, nil
}
