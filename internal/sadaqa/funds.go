package sadaqa

import (
	"context"
	"fmt"
	"strings"

	"github.com/sadaqapass/sadaqa/internal/models"
	"github.com/sadaqapass/sadaqa/pkg/validation"
)

// ListFunds lists funds ordered by name. Only verified funds are listed
// unless the filter says otherwise.
func (s *Sadaqa) ListFunds(ctx context.Context, filter models.FundFilter) ([]*models.Fund, error) {
	if filter.Verified == nil {
		verified := true
		filter.Verified = &verified
	}
	if filter.CountryCode != nil {
		code, err := validation.ValidateAndNormalizeCountryCode(*filter.CountryCode)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", models.ErrValidation, err)
		}
		filter.CountryCode = &code
	}
	filter.Offset = clampOffset(filter.Offset)
	filter.Limit = clampLimit(filter.Limit, defaultListLimit, maxListLimit)
	return s.repo.ListFunds(ctx, filter)
}

func (s *Sadaqa) GetFund(ctx context.Context, id int64) (*models.Fund, error) {
	return s.repo.GetFund(ctx, id)
}

// CreateFund adds a fund to the directory. Callers gate it to administrators.
func (s *Sadaqa) CreateFund(ctx context.Context, fund *models.Fund) (*models.Fund, error) {
	fund.Name = strings.TrimSpace(fund.Name)
	if fund.Name == "" {
		return nil, fmt.Errorf("%w: fund name is required", models.ErrValidation)
	}
	if fund.CountryCode != "" {
		code, err := validation.ValidateAndNormalizeCountryCode(fund.CountryCode)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", models.ErrValidation, err)
		}
		fund.CountryCode = code
	}
	if err := s.repo.CreateFund(ctx, fund); err != nil {
		return nil, err
	}
	s.logger.Info("Fund created", "fund_id", fund.ID, "name", fund.Name)
	return fund, nil
}

// ListPartnerFunds lists the verified funds shown as partners.
func (s *Sadaqa) ListPartnerFunds(ctx context.Context) ([]*models.Fund, error) {
	verified := true
	return s.repo.ListFunds(ctx, models.FundFilter{Verified: &verified, Limit: maxListLimit})
}
