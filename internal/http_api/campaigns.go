package http_api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/sadaqapass/sadaqa/internal/models"
)

// statusAll disables the campaign status filter.
const statusAll = "all"

type campaignListQuery struct {
	pageQuery
	Status string `form:"status"`
	Sort   string `form:"sort"`
}

// CreateCampaignRequest is the body of POST /campaigns.
type CreateCampaignRequest struct {
	FundID      int64           `json:"fund_id" binding:"required,gt=0"`
	Title       string          `json:"title" binding:"required,max=255"`
	Description string          `json:"description"`
	Category    string          `json:"category" binding:"max=64"`
	GoalAmount  decimal.Decimal `json:"goal_amount" binding:"decimal_gt0"`
	Currency    string          `json:"currency" binding:"omitempty,currency"`
	CountryCode *string         `json:"country_code" binding:"omitempty,country"`
	BannerURL   string          `json:"banner_url" binding:"omitempty,url"`
	EndDate     time.Time       `json:"end_date" binding:"required,future"`
}

// DonateRequest is the body of POST /campaigns/:id/donate.
type DonateRequest struct {
	Amount    decimal.Decimal `json:"amount" binding:"decimal_gt0"`
	Currency  string          `json:"currency" binding:"omitempty,currency"`
	ReturnURL string          `json:"return_url" binding:"omitempty,url"`
}

// CampaignStatusRequest is the body of PATCH /campaigns/:id/status.
type CampaignStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// RejectRequest carries the reason of a moderation rejection.
type RejectRequest struct {
	Reason string `json:"reason" binding:"required,max=1000"`
}

func (s *HTTPServer) listCampaigns(c *gin.Context) {
	var q campaignListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		s.respondBindError(c, err)
		return
	}
	sort, err := models.ParseCampaignSort(q.Sort)
	if err != nil {
		s.respondError(c, fmt.Errorf("%w: unknown sort %q", err, q.Sort))
		return
	}

	filter := models.CampaignFilter{
		CountryCode: queryString(c, "country_code"),
		Category:    queryString(c, "category"),
		Sort:        sort,
		Offset:      q.Offset,
		Limit:       q.Limit,
	}
	switch q.Status {
	case statusAll:
	case "":
		active := models.CampaignActive
		filter.Status = &active
	default:
		status, err := models.ParseCampaignStatus(q.Status)
		if err != nil {
			s.respondError(c, err)
			return
		}
		filter.Status = &status
	}

	campaigns, err := s.sadaqa.ListCampaigns(c.Request.Context(), filter)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, campaigns)
}

func (s *HTTPServer) getCampaign(c *gin.Context) {
	id, ok := s.pathID(c, "id")
	if !ok {
		return
	}
	campaign, err := s.sadaqa.GetCampaign(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, campaign)
}

func (s *HTTPServer) createCampaign(c *gin.Context) {
	var req CreateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondBindError(c, err)
		return
	}

	campaign, err := s.sadaqa.CreateCampaign(c.Request.Context(), currentUser(c), models.CampaignInput{
		FundID:      req.FundID,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		GoalAmount:  req.GoalAmount,
		Currency:    req.Currency,
		CountryCode: req.CountryCode,
		BannerURL:   req.BannerURL,
		EndDate:     req.EndDate,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, campaign)
}

func (s *HTTPServer) donateToCampaign(c *gin.Context) {
	id, ok := s.pathID(c, "id")
	if !ok {
		return
	}
	var req DonateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondBindError(c, err)
		return
	}

	donation, err := s.sadaqa.DonateToCampaign(c.Request.Context(), currentUser(c), id, models.DonationInput{
		Amount:    req.Amount,
		Currency:  req.Currency,
		ReturnURL: req.ReturnURL,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, donation)
}

func (s *HTTPServer) listCampaignDonations(c *gin.Context) {
	id, ok := s.pathID(c, "id")
	if !ok {
		return
	}
	var q pageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		s.respondBindError(c, err)
		return
	}

	donations, err := s.sadaqa.ListCampaignDonations(c.Request.Context(), id, q.Offset, q.Limit)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, donations)
}

func (s *HTTPServer) campaignReport(c *gin.Context) {
	id, ok := s.pathID(c, "id")
	if !ok {
		return
	}
	report, err := s.sadaqa.CampaignReport(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *HTTPServer) setCampaignStatus(c *gin.Context) {
	id, ok := s.pathID(c, "id")
	if !ok {
		return
	}
	var req CampaignStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondBindError(c, err)
		return
	}
	status, err := models.ParseCampaignStatus(req.Status)
	if err != nil {
		s.respondError(c, err)
		return
	}

	campaign, err := s.sadaqa.SetCampaignStatus(c.Request.Context(), id, currentUser(c), status)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, campaign)
}

func (s *HTTPServer) pendingCampaigns(c *gin.Context) {
	var q pageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		s.respondBindError(c, err)
		return
	}
	campaigns, err := s.sadaqa.ListPendingCampaigns(c.Request.Context(), q.Offset, q.Limit)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, campaigns)
}

func (s *HTTPServer) approveCampaign(c *gin.Context) {
	id, ok := s.pathID(c, "id")
	if !ok {
		return
	}
	campaign, err := s.sadaqa.ModerateCampaign(c.Request.Context(), id, currentUser(c), models.ModerationApprove, "")
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, campaign)
}

func (s *HTTPServer) rejectCampaign(c *gin.Context) {
	id, ok := s.pathID(c, "id")
	if !ok {
		return
	}
	var req RejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondBindError(c, err)
		return
	}
	campaign, err := s.sadaqa.ModerateCampaign(c.Request.Context(), id, currentUser(c), models.ModerationReject, req.Reason)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, campaign)
}

// checkExpired runs the expiry sweep on demand.
func (s *HTTPServer) checkExpired(c *gin.Context) {
	expired, err := s.sadaqa.SweepExpired(c.Request.Context(), s.now())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"expired_count": len(expired),
		"campaigns":     expired,
	})
}
