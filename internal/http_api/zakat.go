package http_api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sadaqapass/sadaqa/internal/zakat"
)

// PayZakatRequest is the body of POST /zakat/pay.
type PayZakatRequest struct {
	CalculationID int64  `json:"calculation_id" binding:"required,gt=0"`
	ReturnURL     string `json:"return_url" binding:"omitempty,url"`
}

type limitQuery struct {
	Limit int `form:"limit" binding:"gte=0,lte=100"`
}

func (s *HTTPServer) calculateZakat(c *gin.Context) {
	var payload zakat.Payload
	if err := c.ShouldBindJSON(&payload); err != nil {
		s.respondBindError(c, err)
		return
	}

	calc, err := s.sadaqa.CalculateZakat(c.Request.Context(), currentUser(c), payload)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, calc)
}

func (s *HTTPServer) payZakat(c *gin.Context) {
	var req PayZakatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondBindError(c, err)
		return
	}

	donation, err := s.sadaqa.PayZakat(c.Request.Context(), currentUser(c), req.CalculationID, req.ReturnURL)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, donation)
}

func (s *HTTPServer) zakatHistory(c *gin.Context) {
	var q limitQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		s.respondBindError(c, err)
		return
	}

	calcs, err := s.sadaqa.ZakatHistory(c.Request.Context(), currentUser(c), q.Limit)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, calcs)
}
