package auth

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/deppfellow/tg-miniapp/internal/model"
)

// HeaderResolver reads the identity from the X-Telegram-User header as-is.
// Nothing is verified, so anyone who can reach the API can claim any id.
type HeaderResolver struct{}

func (HeaderResolver) Resolve(r *http.Request) (*model.TelegramIdentity, error) {
	raw := strings.TrimSpace(r.Header.Get(HeaderTelegramUser))
	if raw == "" {
		return nil, unauthorized("missing " + HeaderTelegramUser)
	}
	return decodeIdentity(raw)
}

// identityWire accepts the id as a JSON number or a numeric string.
type identityWire struct {
	model.TelegramIdentity
	ID json.Number `json:"id"`
}

func decodeIdentity(raw string) (*model.TelegramIdentity, error) {
	var wire identityWire
	if err := json.Unmarshal([]byte(raw), &wire); err != nil {
		return nil, unauthorized("malformed identity")
	}
	id, err := strconv.ParseInt(wire.ID.String(), 10, 64)
	if err != nil || id == 0 {
		return nil, unauthorized("identity has no id")
	}
	identity := wire.TelegramIdentity
	identity.ID = id
	return &identity, nil
}
