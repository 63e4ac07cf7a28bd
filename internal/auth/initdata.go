// Package auth verifies Telegram mini-app initData and issues bearer tokens
// for web clients.
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"

	"github.com/sadaqapass/sadaqa/internal/models"
)

const webAppDataKey = "WebAppData"

// InitData is the verified content of a Telegram WebApp initData string.
type InitData struct {
	User     models.TelegramIdentity
	AuthDate time.Time
	QueryID  string
}

// ValidateInitData checks the initData signature against botToken and
// decodes the user. An empty botToken skips the signature check; callers
// only allow that in development. A positive maxAge rejects data whose
// auth_date is older than maxAge.
func ValidateInitData(raw, botToken string, maxAge time.Duration) (*InitData, error) {
	return validateInitData(raw, botToken, maxAge, time.Now())
}

func validateInitData(raw, botToken string, maxAge time.Duration, now time.Time) (*InitData, error) {
	values, err := url.ParseQuery(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed init data", models.ErrUnauthorized)
	}

	if botToken != "" {
		received := values.Get("hash")
		if received == "" {
			return nil, fmt.Errorf("%w: init data hash missing", models.ErrUnauthorized)
		}
		values.Del("hash")

		got, err := hex.DecodeString(received)
		if err != nil || !hmac.Equal(got, Sign(values, botToken)) {
			return nil, fmt.Errorf("%w: init data signature mismatch", models.ErrUnauthorized)
		}
	}

	data := &InitData{QueryID: values.Get("query_id")}
	if s := values.Get("auth_date"); s != "" {
		sec, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: bad auth_date", models.ErrUnauthorized)
		}
		data.AuthDate = time.Unix(sec, 0)
		if maxAge > 0 && now.Sub(data.AuthDate) > maxAge {
			return nil, fmt.Errorf("%w: init data expired", models.ErrUnauthorized)
		}
	}

	userJSON := values.Get("user")
	if userJSON == "" {
		return nil, fmt.Errorf("%w: init data has no user", models.ErrUnauthorized)
	}
	if err := sonic.UnmarshalString(userJSON, &data.User); err != nil {
		return nil, fmt.Errorf("%w: bad user payload", models.ErrUnauthorized)
	}
	if data.User.ID == 0 {
		return nil, fmt.Errorf("%w: init data user has no id", models.ErrUnauthorized)
	}
	return data, nil
}

// DataCheckString joins the sorted key=value pairs with newlines. The hash
// field must already be removed.
func DataCheckString(values url.Values) string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+values.Get(k))
	}
	return strings.Join(pairs, "\n")
}

// Sign returns the raw initData hash of values for botToken.
func Sign(values url.Values, botToken string) []byte {
	secret := hmac.New(sha256.New, []byte(webAppDataKey))
	secret.Write([]byte(botToken))

	h := hmac.New(sha256.New, secret.Sum(nil))
	h.Write([]byte(DataCheckString(values)))
	return h.Sum(nil)
}
