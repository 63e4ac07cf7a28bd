package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/sadaqapass/sadaqa/internal/models"
)

func (db *PostgresDB) CreateZakatCalc(ctx context.Context, calc *models.ZakatCalc) error {
	if err := db.Conn.WithContext(ctx).Create(calc).Error; err != nil {
		return wrap("create zakat calculation", err)
	}
	return nil
}

func (db *PostgresDB) GetZakatCalc(ctx context.Context, id int64) (*models.ZakatCalc, error) {
	var calc models.ZakatCalc
	if err := db.Conn.WithContext(ctx).First(&calc, id).Error; err != nil {
		return nil, wrap("get zakat calculation", err)
	}
	return &calc, nil
}

func (db *PostgresDB) ListZakatCalcs(ctx context.Context, userID int64, limit int) ([]*models.ZakatCalc, error) {
	q := db.Conn.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Order("id DESC")

	var calcs []*models.ZakatCalc
	if err := page(q, 0, limit).Find(&calcs).Error; err != nil {
		return nil, wrap("list zakat calculations", err)
	}
	return calcs, nil
}

func (db *PostgresDB) LinkZakatDonation(ctx context.Context, calcID, donationID int64) error {
	res := db.Conn.WithContext(ctx).Model(&models.ZakatCalc{}).
		Where("id = ?", calcID).
		Update("donation_id", donationID)
	if res.Error != nil {
		return wrap("link zakat donation", res.Error)
	}
	if res.RowsAffected == 0 {
		return wrap("link zakat donation", gorm.ErrRecordNotFound)
	}
	return nil
}
