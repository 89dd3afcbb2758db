package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/deppfellow/tg-miniapp/internal/model"
)

// InitDataResolver verifies the Mini App initData string signed by Telegram.
// See https://core.telegram.org/bots/webapps#validating-data-received-via-the-mini-app
type InitDataResolver struct {
	BotToken string
	// MaxAge rejects initData whose auth_date is older than this. Zero disables the check.
	MaxAge time.Duration
	// Now is overridable in tests.
	Now func() time.Time
}

func (v *InitDataResolver) Resolve(r *http.Request) (*model.TelegramIdentity, error) {
	raw := strings.TrimSpace(r.Header.Get(HeaderTelegramInitData))
	if raw == "" {
		return nil, unauthorized("missing " + HeaderTelegramInitData)
	}

	values, err := url.ParseQuery(raw)
	if err != nil {
		return nil, unauthorized("malformed init data")
	}

	hash := values.Get("hash")
	if hash == "" {
		return nil, unauthorized("init data is not signed")
	}
	expected := Sign(values, v.BotToken)
	if !hmac.Equal([]byte(hash), []byte(expected)) {
		return nil, unauthorized("init data signature mismatch")
	}

	if v.MaxAge > 0 {
		authDate, err := strconv.ParseInt(values.Get("auth_date"), 10, 64)
		if err != nil {
			return nil, unauthorized("init data has no auth_date")
		}
		now := time.Now
		if v.Now != nil {
			now = v.Now
		}
		if now().Sub(time.Unix(authDate, 0)) > v.MaxAge {
			return nil, unauthorized("init data expired")
		}
	}

	return decodeIdentity(values.Get("user"))
}

// Sign computes the hex HMAC-SHA256 Telegram expects in the hash field: the
// key is HMAC("WebAppData", botToken) and the message is every other field
// as sorted "key=value" lines.
func Sign(values url.Values, botToken string) string {
	keys := make([]string, 0, len(values))
	for k := range values {
		if k == "hash" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, k+"="+values.Get(k))
	}

	secret := hmac.New(sha256.New, []byte("WebAppData"))
	secret.Write([]byte(botToken))

	mac := hmac.New(sha256.New, secret.Sum(nil))
	mac.Write([]byte(strings.Join(lines, "\n")))
	return hex.EncodeToString(mac.Sum(nil))
}
