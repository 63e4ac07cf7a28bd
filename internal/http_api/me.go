package http_api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sadaqapass/sadaqa/internal/models"
)

type statisticsQuery struct {
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
	GroupBy   string `form:"group_by" binding:"omitempty,oneof=day week month"`
}

func (s *HTTPServer) myHistory(c *gin.Context) {
	var q limitQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		s.respondBindError(c, err)
		return
	}

	items, err := s.sadaqa.MyHistory(c.Request.Context(), currentUser(c), q.Limit)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (s *HTTPServer) myStats(c *gin.Context) {
	stats, err := s.sadaqa.MyStats(c.Request.Context(), currentUser(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// statistics proxies the analytics mirror and passes its JSON through.
func (s *HTTPServer) statistics(kind models.StatisticsKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		var q statisticsQuery
		if err := c.ShouldBindQuery(&q); err != nil {
			s.respondBindError(c, err)
			return
		}

		body, err := s.sadaqa.Statistics(c.Request.Context(), kind, models.StatisticsQuery{
			StartDate: q.StartDate,
			EndDate:   q.EndDate,
			GroupBy:   q.GroupBy,
		})
		if err != nil {
			s.respondError(c, err)
			return
		}
		c.Data(http.StatusOK, "application/json; charset=utf-8", body)
	}
}
