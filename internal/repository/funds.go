package repository

import (
	"context"

	"github.com/sadaqapass/sadaqa/internal/models"
)

func (db *PostgresDB) ListFunds(ctx context.Context, filter models.FundFilter) ([]*models.Fund, error) {
	q := db.Conn.WithContext(ctx).Model(&models.Fund{})
	if filter.Verified != nil {
		q = q.Where("verified = ?", *filter.Verified)
	}
	if filter.CountryCode != nil {
		q = q.Where("country_code = ?", *filter.CountryCode)
	}
	if filter.Category != nil {
		q = q.Where("? = ANY(categories)", *filter.Category)
	}

	var funds []*models.Fund
	err := page(q.Order("name ASC").Order("id ASC"), filter.Offset, filter.Limit).
		Find(&funds).Error
	if err != nil {
		return nil, wrap("list funds", err)
	}
	return funds, nil
}

func (db *PostgresDB) GetFund(ctx context.Context, id int64) (*models.Fund, error) {
	var fund models.Fund
	if err := db.Conn.WithContext(ctx).First(&fund, id).Error; err != nil {
		return nil, wrap("get fund", err)
	}
	return &fund, nil
}

func (db *PostgresDB) CreateFund(ctx context.Context, fund *models.Fund) error {
	if err := db.Conn.WithContext(ctx).Create(fund).Error; err != nil {
		return wrap("create fund", err)
	}
	return nil
}
