package http_api

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sadaqapass/sadaqa/internal/auth"
	"github.com/sadaqapass/sadaqa/internal/models"
	"github.com/sadaqapass/sadaqa/pkg/logger"
)

const (
	RequestIDHeader = "X-Request-ID"
	InitDataHeader  = "X-Telegram-Init-Data"

	requestIDKey = "request_id"
	userKey      = "user"
)

// recoveryMiddleware turns a handler panic into a 500 and logs the stack.
func recoveryMiddleware(logger *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("Handler panicked",
					"path", c.Request.URL.Path,
					"request_id", c.GetString(requestIDKey),
					"panic", fmt.Sprint(r),
					"stack", string(debug.Stack()))
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"success": false,
					"error":   "Internal server error",
				})
			}
		}()
		c.Next()
	}
}

// requestIDMiddleware propagates X-Request-ID, generating one when absent.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Writer.Header().Set(RequestIDHeader, id)
		c.Next()
	}
}

func accessLogMiddleware(logger *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("HTTP request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start).String(),
			"request_id", c.GetString(requestIDKey))
	}
}

// corsMiddleware adds CORS headers to all responses
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID, X-Telegram-Init-Data")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, PATCH, DELETE")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// authMiddleware resolves the caller from initData or, failing that, a
// bearer token, and stores the user in the context.
func (s *HTTPServer) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := s.authenticate(c)
		if err != nil {
			s.logger.Debug("Authentication failed", "path", c.Request.URL.Path, "error", err)
			s.abortWithError(c, err)
			return
		}
		c.Set(userKey, user)
		c.Next()
	}
}

func (s *HTTPServer) authenticate(c *gin.Context) (*models.User, error) {
	if raw := c.GetHeader(InitDataHeader); raw != "" {
		data, err := auth.ValidateInitData(raw, s.config.TelegramSecretKey, s.config.InitDataMaxAge)
		if err != nil {
			return nil, err
		}
		return s.sadaqa.Authenticate(c.Request.Context(), data.User)
	}

	if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
		userID, _, err := s.tokens.Parse(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			return nil, err
		}
		user, err := s.sadaqa.GetUser(c.Request.Context(), userID)
		if err != nil {
			return nil, fmt.Errorf("%w: token user: %v", models.ErrUnauthorized, err)
		}
		return user, nil
	}

	return nil, fmt.Errorf("%w: missing credentials", models.ErrUnauthorized)
}

// adminMiddleware must run after authMiddleware.
func (s *HTTPServer) adminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil || !s.config.IsAdmin(user.TgID) {
			s.logger.Warn("Admin access denied", "path", c.Request.URL.Path)
			s.abortWithError(c, models.ErrForbidden)
			return
		}
		c.Next()
	}
}

func currentUser(c *gin.Context) *models.User {
	v, ok := c.Get(userKey)
	if !ok {
		return nil
	}
	user, _ := v.(*models.User)
	return user
}
