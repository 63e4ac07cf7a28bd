package http_api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sadaqapass/sadaqa/internal/models"
)

type fundListQuery struct {
	pageQuery
	Verified *bool `form:"verified"`
}

// CreateFundRequest is the admin body for adding a fund.
type CreateFundRequest struct {
	Name        string   `json:"name" binding:"required,max=255"`
	Description string   `json:"description"`
	CountryCode string   `json:"country_code" binding:"omitempty,country"`
	Categories  []string `json:"categories" binding:"omitempty,dive,required"`
	Verified    bool     `json:"verified"`
	LogoURL     string   `json:"logo_url" binding:"omitempty,url"`
	WebsiteURL  string   `json:"website_url" binding:"omitempty,url"`
}

func (s *HTTPServer) listFunds(c *gin.Context) {
	var q fundListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		s.respondBindError(c, err)
		return
	}

	funds, err := s.sadaqa.ListFunds(c.Request.Context(), models.FundFilter{
		CountryCode: queryString(c, "country_code"),
		Category:    queryString(c, "category"),
		Verified:    q.Verified,
		Offset:      q.Offset,
		Limit:       q.Limit,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, funds)
}

func (s *HTTPServer) getFund(c *gin.Context) {
	id, ok := s.pathID(c, "id")
	if !ok {
		return
	}
	fund, err := s.sadaqa.GetFund(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, fund)
}

func (s *HTTPServer) createFund(c *gin.Context) {
	var req CreateFundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondBindError(c, err)
		return
	}

	fund, err := s.sadaqa.CreateFund(c.Request.Context(), &models.Fund{
		Name:        req.Name,
		Description: req.Description,
		CountryCode: req.CountryCode,
		Categories:  req.Categories,
		Verified:    req.Verified,
		LogoURL:     req.LogoURL,
		WebsiteURL:  req.WebsiteURL,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, fund)
}

func (s *HTTPServer) listPartnerFunds(c *gin.Context) {
	funds, err := s.sadaqa.ListPartnerFunds(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, funds)
}
