package http_api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sadaqapass/sadaqa/internal/models"
)

// PartnerApplicationRequest is the public body of POST /partners/applications.
type PartnerApplicationRequest struct {
	OrganizationName string `json:"organization_name" binding:"required,max=255"`
	ContactEmail     string `json:"contact_email" binding:"required,email"`
	ContactPhone     string `json:"contact_phone" binding:"max=32"`
	Category         string `json:"category" binding:"max=64"`
	CountryCode      string `json:"country_code" binding:"omitempty,country"`
	Description      string `json:"description"`
	WebsiteURL       string `json:"website_url" binding:"omitempty,url"`
}

// ReviewRequest is the admin body of PATCH /partners/applications/:id/status.
type ReviewRequest struct {
	Status          string `json:"status" binding:"required,oneof=approved rejected"`
	RejectionReason string `json:"rejection_reason" binding:"max=1000"`
}

type applicationListQuery struct {
	pageQuery
	Status string `form:"status"`
}

func (s *HTTPServer) submitPartnerApplication(c *gin.Context) {
	var req PartnerApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondBindError(c, err)
		return
	}

	app, err := s.sadaqa.SubmitPartnerApplication(c.Request.Context(), &models.PartnerApplication{
		OrganizationName: req.OrganizationName,
		ContactEmail:     req.ContactEmail,
		ContactPhone:     req.ContactPhone,
		Category:         req.Category,
		CountryCode:      req.CountryCode,
		Description:      req.Description,
		WebsiteURL:       req.WebsiteURL,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, app)
}

func (s *HTTPServer) listPartnerApplications(c *gin.Context) {
	var q applicationListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		s.respondBindError(c, err)
		return
	}
	var status *models.PartnerApplicationStatus
	if q.Status != "" {
		parsed, err := models.ParsePartnerApplicationStatus(q.Status)
		if err != nil {
			s.respondError(c, err)
			return
		}
		status = &parsed
	}

	apps, err := s.sadaqa.ListPartnerApplications(c.Request.Context(), status, q.Offset, q.Limit)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, apps)
}

func (s *HTTPServer) getPartnerApplication(c *gin.Context) {
	id, ok := s.pathID(c, "id")
	if !ok {
		return
	}
	app, err := s.sadaqa.GetPartnerApplication(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, app)
}

func (s *HTTPServer) reviewPartnerApplication(c *gin.Context) {
	id, ok := s.pathID(c, "id")
	if !ok {
		return
	}
	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondBindError(c, err)
		return
	}

	app, err := s.sadaqa.ReviewPartnerApplication(c.Request.Context(), id, currentUser(c),
		models.PartnerApplicationStatus(req.Status), req.RejectionReason)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, app)
}
