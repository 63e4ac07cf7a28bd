package repository

import (
	"context"

	"gorm.io/gorm/clause"

	"github.com/sadaqapass/sadaqa/internal/models"
)

// FindOrCreateUser inserts the user or refreshes the Telegram profile fields
// of the existing row. The unique tg_id index makes concurrent first logins safe.
func (db *PostgresDB) FindOrCreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	err := db.Conn.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "tg_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"first_name", "last_name", "username", "updated_at"}),
	}).Create(user).Error
	if err != nil {
		return nil, wrap("upsert user", err)
	}

	var stored models.User
	if err := db.Conn.WithContext(ctx).Where("tg_id = ?", user.TgID).First(&stored).Error; err != nil {
		return nil, wrap("get user by tg_id", err)
	}
	return &stored, nil
}

func (db *PostgresDB) GetUser(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	if err := db.Conn.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, wrap("get user", err)
	}
	return &user, nil
}
