package http_api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sadaqapass/sadaqa/internal/models"
)

// InitSubscriptionRequest is the body of POST /subscriptions/init.
type InitSubscriptionRequest struct {
	FundID *int64 `json:"fund_id" binding:"omitempty,gt=0"`
	Plan   string `json:"plan" binding:"required,oneof=basic pro premium"`
	Period string `json:"period" binding:"required,oneof=P1M P3M P6M P12M"`
}

func (s *HTTPServer) initSubscription(c *gin.Context) {
	var req InitSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondBindError(c, err)
		return
	}

	subscription, err := s.sadaqa.InitSubscription(c.Request.Context(), currentUser(c), models.SubscriptionInput{
		FundID: req.FundID,
		Plan:   models.SubscriptionPlan(req.Plan),
		Period: models.SubscriptionPeriod(req.Period),
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, subscription)
}

func (s *HTTPServer) listSubscriptions(c *gin.Context) {
	var status *models.SubscriptionStatus
	if raw := c.Query("status"); raw != "" {
		parsed, err := models.ParseSubscriptionStatus(raw)
		if err != nil {
			s.respondError(c, err)
			return
		}
		status = &parsed
	}

	subscriptions, err := s.sadaqa.ListSubscriptions(c.Request.Context(), currentUser(c), status)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, subscriptions)
}

type subscriptionAction func(ctx context.Context, id int64, user *models.User) (*models.Subscription, error)

func (s *HTTPServer) subscriptionTransition(c *gin.Context, action subscriptionAction) {
	id, ok := s.pathID(c, "id")
	if !ok {
		return
	}
	subscription, err := action(c.Request.Context(), id, currentUser(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, subscription)
}

func (s *HTTPServer) cancelSubscription(c *gin.Context) {
	s.subscriptionTransition(c, s.sadaqa.CancelSubscription)
}

func (s *HTTPServer) pauseSubscription(c *gin.Context) {
	s.subscriptionTransition(c, s.sadaqa.PauseSubscription)
}

func (s *HTTPServer) resumeSubscription(c *gin.Context) {
	s.subscriptionTransition(c, s.sadaqa.ResumeSubscription)
}
