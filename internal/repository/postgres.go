package repository

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/sadaqapass/sadaqa/internal/models"
	"github.com/sadaqapass/sadaqa/pkg/logger"
)

const (
	maxOpenConns    = 20
	maxIdleConns    = 10
	connMaxIdleTime = 60 * time.Second
	connMaxLifetime = 10 * time.Minute
)

type PostgresDB struct {
	logger *logger.Logger

	Conn *gorm.DB
}

var _ models.Repository = (*PostgresDB)(nil)

// allModels lists every table managed by AutoMigrate.
var allModels = []interface{}{
	&models.User{},
	&models.Fund{},
	&models.Campaign{},
	&models.Donation{},
	&models.Subscription{},
	&models.ZakatCalc{},
	&models.PartnerApplication{},
}

func NewPostgresDB(user, password, dbname, host string, port int, logger *logger.Logger) (*PostgresDB, error) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable",
		host, user, password, dbname, port)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: NewGormLogger(logger)})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database connection: %w", err)
	}
	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)

	logger.Info("Successfully connected to PostgreSQL", "host", host, "db", dbname)
	return &PostgresDB{Conn: db, logger: logger}, nil
}

// Migrate creates or updates the schema.
func (db *PostgresDB) Migrate() error {
	if err := db.Conn.AutoMigrate(allModels...); err != nil {
		return fmt.Errorf("failed to auto-migrate models: %w", err)
	}
	db.logger.Info("Database schema migrated", "tables", len(allModels))
	return nil
}

func (db *PostgresDB) Close() error {
	sqlDB, err := db.Conn.DB()
	if err != nil {
		return fmt.Errorf("failed to get database connection: %w", err)
	}
	return sqlDB.Close()
}

// wrap annotates err and maps a missing row to models.ErrNotFound.
func wrap(op string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

// exists distinguishes "guard did not match" from "row is missing" after a
// guarded update touched nothing.
func exists(tx *gorm.DB, model interface{}, id int64) (bool, error) {
	var count int64
	if err := tx.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// page applies offset and limit when they are positive.
func page(q *gorm.DB, offset, limit int) *gorm.DB {
	if offset > 0 {
		q = q.Offset(offset)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	return q
}
