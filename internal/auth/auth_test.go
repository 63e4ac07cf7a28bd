package auth

import (
	"encoding/hex"
	"errors"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadaqapass/sadaqa/internal/models"
)

const botToken = "123456:TEST-token"

func signedInitData(t *testing.T, authDate time.Time) string {
	t.Helper()
	values := url.Values{}
	values.Set("query_id", "AAH")
	values.Set("auth_date", strconv.FormatInt(authDate.Unix(), 10))
	values.Set("user", `{"id":777,"first_name":"Amina","username":"amina","language_code":"ru"}`)
	values.Set("hash", hex.EncodeToString(Sign(values, botToken)))
	return values.Encode()
}

func TestValidateInitDataRoundTrip(t *testing.T) {
	now := time.Now()
	data, err := validateInitData(signedInitData(t, now), botToken, time.Hour, now)
	require.NoError(t, err)
	assert.Equal(t, int64(777), data.User.ID)
	assert.Equal(t, "Amina", data.User.FirstName)
	assert.Equal(t, "AAH", data.QueryID)
	assert.Equal(t, now.Unix(), data.AuthDate.Unix())
}

func TestValidateInitDataRejects(t *testing.T) {
	now := time.Now()
	raw := signedInitData(t, now)

	tampered, err := url.ParseQuery(raw)
	require.NoError(t, err)
	tampered.Set("user", `{"id":1,"first_name":"Mallory"}`)

	noHash, err := url.ParseQuery(raw)
	require.NoError(t, err)
	noHash.Del("hash")

	tests := []struct {
		name  string
		raw   string
		token string
		now   time.Time
	}{
		{"tampered user", tampered.Encode(), botToken, now},
		{"missing hash", noHash.Encode(), botToken, now},
		{"wrong token", raw, "other-token", now},
		{"expired", raw, botToken, now.Add(2 * time.Hour)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := validateInitData(tt.raw, tt.token, time.Hour, tt.now)
			assert.True(t, errors.Is(err, models.ErrUnauthorized), err)
		})
	}
}

func TestValidateInitDataWithoutTokenSkipsHash(t *testing.T) {
	raw := url.Values{"user": {`{"id":5,"first_name":"Dev"}`}}.Encode()
	data, err := ValidateInitData(raw, "", 0)
	require.NoError(t, err)
	assert.Equal(t, int64(5), data.User.ID)

	_, err = ValidateInitData("auth_date=1", "", 0)
	assert.True(t, errors.Is(err, models.ErrUnauthorized))
}

func TestDataCheckStringIsSorted(t *testing.T) {
	values := url.Values{"user": {"u"}, "auth_date": {"1"}, "query_id": {"q"}}
	assert.Equal(t, "auth_date=1\nquery_id=q\nuser=u", DataCheckString(values))
}

func TestTokens(t *testing.T) {
	tokens := NewTokens("secret", time.Hour)
	signed, expires, err := tokens.Issue(&models.User{ID: 12, TgID: 777})
	require.NoError(t, err)
	assert.True(t, expires.After(time.Now()))

	userID, claims, err := tokens.Parse(signed)
	require.NoError(t, err)
	assert.Equal(t, int64(12), userID)
	assert.Equal(t, int64(777), claims.TgID)

	_, _, err = NewTokens("other", time.Hour).Parse(signed)
	assert.True(t, errors.Is(err, models.ErrUnauthorized))

	expired := NewTokens("secret", -time.Minute)
	old, _, err := expired.Issue(&models.User{ID: 12})
	require.NoError(t, err)
	_, _, err = tokens.Parse(old)
	assert.True(t, errors.Is(err, models.ErrUnauthorized))

	_, _, err = NewTokens("", time.Hour).Issue(&models.User{ID: 1})
	assert.True(t, errors.Is(err, models.ErrUnauthorized))
}
