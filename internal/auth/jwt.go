package auth

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/sadaqapass/sadaqa/internal/models"
)

// Claims are the bearer token claims. Subject holds the internal user id.
type Claims struct {
	TgID int64 `json:"tg"`
	jwt.RegisteredClaims
}

// Tokens issues and verifies HS256 bearer tokens.
type Tokens struct {
	secret []byte
	ttl    time.Duration
}

func NewTokens(secret string, ttl time.Duration) *Tokens {
	return &Tokens{secret: []byte(secret), ttl: ttl}
}

// Enabled reports whether a signing secret is configured.
func (t *Tokens) Enabled() bool {
	return len(t.secret) > 0
}

func (t *Tokens) Issue(user *models.User) (string, time.Time, error) {
	if !t.Enabled() {
		return "", time.Time{}, fmt.Errorf("jwt secret is not configured: %w", models.ErrUnauthorized)
	}
	now := time.Now()
	expires := now.Add(t.ttl)
	claims := Claims{
		TgID: user.TgID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expires, nil
}

// Parse verifies the token and returns the user id it was issued for.
func (t *Tokens) Parse(token string) (int64, *Claims, error) {
	if !t.Enabled() {
		return 0, nil, fmt.Errorf("jwt secret is not configured: %w", models.ErrUnauthorized)
	}
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", tok.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil || !parsed.Valid {
		return 0, nil, fmt.Errorf("%w: invalid token", models.ErrUnauthorized)
	}
	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return 0, nil, fmt.Errorf("%w: invalid token subject", models.ErrUnauthorized)
	}
	return userID, claims, nil
}
