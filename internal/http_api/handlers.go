package http_api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sadaqapass/sadaqa/internal/auth"
	"github.com/sadaqapass/sadaqa/internal/models"
)

// pageQuery is the offset/limit pair shared by list endpoints.
type pageQuery struct {
	Offset int `form:"offset" binding:"gte=0"`
	Limit  int `form:"limit" binding:"gte=0"`
}

// TokenResponse is returned by /auth/token.
type TokenResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresAt   int64        `json:"expires_at"`
	User        *models.User `json:"user"`
}

func (s *HTTPServer) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// issueToken exchanges verified initData for a bearer token usable by the
// web client.
func (s *HTTPServer) issueToken(c *gin.Context) {
	raw := c.GetHeader(InitDataHeader)
	if raw == "" {
		s.respondError(c, fmt.Errorf("%w: %s header is required", models.ErrUnauthorized, InitDataHeader))
		return
	}
	data, err := auth.ValidateInitData(raw, s.config.TelegramSecretKey, s.config.InitDataMaxAge)
	if err != nil {
		s.logger.Debug("Invalid initData", "error", err)
		s.respondError(c, err)
		return
	}
	user, err := s.sadaqa.Authenticate(c.Request.Context(), data.User)
	if err != nil {
		s.respondError(c, err)
		return
	}

	token, expires, err := s.tokens.Issue(user)
	if err != nil {
		s.logger.Error("Failed to issue token", "user_id", user.ID, "error", err)
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresAt:   expires.Unix(),
		User:        user,
	})
}

// pathID parses a positive integer path parameter. It writes the 400 itself
// and reports false when the parameter is malformed.
func (s *HTTPServer) pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   fmt.Sprintf("invalid %s", name),
		})
		return 0, false
	}
	return id, true
}

// queryString returns nil for an absent or empty query parameter.
func queryString(c *gin.Context, key string) *string {
	v := c.Query(key)
	if v == "" {
		return nil
	}
	return &v
}

func (s *HTTPServer) now() time.Time {
	return time.Now()
}
