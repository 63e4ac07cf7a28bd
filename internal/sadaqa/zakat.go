package sadaqa

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/datatypes"

	"github.com/sadaqapass/sadaqa/internal/models"
	"github.com/sadaqapass/sadaqa/internal/zakat"
)

const (
	defaultZakatHistory = 50
	maxZakatHistory     = 100
)

// CalculateZakat computes and stores a zakat calculation.
func (s *Sadaqa) CalculateZakat(ctx context.Context, user *models.User, payload zakat.Payload) (*models.ZakatCalc, error) {
	if err := payload.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrValidation, err)
	}
	result := zakat.Calculate(payload)
	calc := &models.ZakatCalc{
		UserID:      user.ID,
		Payload:     datatypes.NewJSONType(payload),
		TotalWealth: result.TotalWealth,
		NisabValue:  result.Nisab,
		ZakatDue:    result.ZakatDue,
	}
	if err := s.repo.CreateZakatCalc(ctx, calc); err != nil {
		return nil, err
	}
	return calc, nil
}

// PayZakat starts the donation that pays a calculation and links it back.
func (s *Sadaqa) PayZakat(ctx context.Context, user *models.User, calcID int64, returnURL string) (*models.Donation, error) {
	calc, err := s.repo.GetZakatCalc(ctx, calcID)
	if err != nil {
		return nil, err
	}
	if calc.UserID != user.ID {
		return nil, fmt.Errorf("zakat calculation %d: %w", calcID, models.ErrNotFound)
	}
	if !calc.ZakatDue.IsPositive() {
		return nil, fmt.Errorf("zakat calculation %d has nothing due: %w", calcID, models.ErrInvalidState)
	}
	if calc.DonationID != nil {
		prev, err := s.repo.GetDonation(ctx, *calc.DonationID)
		switch {
		case err == nil && prev.Status == models.DonationCompleted:
			return nil, fmt.Errorf("zakat calculation %d is already paid: %w", calcID, models.ErrInvalidState)
		case err != nil && !errors.Is(err, models.ErrNotFound):
			return nil, err
		}
	}

	donation, err := s.InitDonation(ctx, user, models.DonationInput{
		Amount:       calc.ZakatDue,
		Currency:     models.DefaultCurrency,
		DonationType: models.DonationTypeZakat,
		ReturnURL:    returnURL,
	})
	if err != nil {
		return nil, err
	}
	if err := s.repo.LinkZakatDonation(ctx, calc.ID, donation.ID); err != nil {
		return nil, err
	}
	return donation, nil
}

// ZakatHistory lists the caller's calculations, newest first.
func (s *Sadaqa) ZakatHistory(ctx context.Context, user *models.User, limit int) ([]*models.ZakatCalc, error) {
	return s.repo.ListZakatCalcs(ctx, user.ID, clampLimit(limit, defaultZakatHistory, maxZakatHistory))
}
