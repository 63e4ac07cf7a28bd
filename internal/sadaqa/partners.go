package sadaqa

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"github.com/sadaqapass/sadaqa/internal/models"
	"github.com/sadaqapass/sadaqa/pkg/validation"
)

// SubmitPartnerApplication records an organization's request to be listed.
func (s *Sadaqa) SubmitPartnerApplication(ctx context.Context, app *models.PartnerApplication) (*models.PartnerApplication, error) {
	app.OrganizationName = strings.TrimSpace(app.OrganizationName)
	if app.OrganizationName == "" {
		return nil, fmt.Errorf("%w: organization_name is required", models.ErrValidation)
	}
	if _, err := mail.ParseAddress(app.ContactEmail); err != nil {
		return nil, fmt.Errorf("%w: contact_email is invalid", models.ErrValidation)
	}
	if app.CountryCode != "" {
		code, err := validation.ValidateAndNormalizeCountryCode(app.CountryCode)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", models.ErrValidation, err)
		}
		app.CountryCode = code
	}

	app.ID = 0
	app.Status = models.PartnerPending
	app.ReviewedBy, app.ReviewedAt, app.RejectionReason = nil, nil, nil
	if err := s.repo.CreatePartnerApplication(ctx, app); err != nil {
		return nil, err
	}
	s.logger.Info("Partner application submitted", "application_id", app.ID, "organization", app.OrganizationName)
	return app, nil
}

// ListPartnerApplications lists applications newest first. A nil status lists all.
func (s *Sadaqa) ListPartnerApplications(ctx context.Context, status *models.PartnerApplicationStatus, offset, limit int) ([]*models.PartnerApplication, error) {
	return s.repo.ListPartnerApplications(ctx, status, clampOffset(offset), clampLimit(limit, defaultListLimit, maxListLimit))
}

func (s *Sadaqa) GetPartnerApplication(ctx context.Context, id int64) (*models.PartnerApplication, error) {
	return s.repo.GetPartnerApplication(ctx, id)
}

// ReviewPartnerApplication decides a pending application once and emails
// the decision to the organization.
func (s *Sadaqa) ReviewPartnerApplication(ctx context.Context, id int64, reviewer *models.User, status models.PartnerApplicationStatus, reason string) (*models.PartnerApplication, error) {
	if status != models.PartnerApproved && status != models.PartnerRejected {
		return nil, fmt.Errorf("%w: review status must be approved or rejected", models.ErrValidation)
	}
	app, err := s.repo.GetPartnerApplication(ctx, id)
	if err != nil {
		return nil, err
	}
	if app.Status != models.PartnerPending {
		return nil, fmt.Errorf("application %d is already %s: %w", id, app.Status, models.ErrInvalidState)
	}

	review := models.PartnerReview{Status: status, ReviewerID: reviewer.ID, At: s.now()}
	if reason = strings.TrimSpace(reason); status == models.PartnerRejected && reason != "" {
		review.Reason = &reason
	}
	ok, err := s.repo.ReviewPartnerApplication(ctx, id, review)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("application %d was reviewed concurrently: %w", id, models.ErrInvalidState)
	}

	app, err = s.repo.GetPartnerApplication(ctx, id)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Partner application reviewed", "application_id", id, "status", status, "reviewer_id", reviewer.ID)
	s.notificator.PartnerReviewed(app)
	return app, nil
}
