// Package auth resolves the Telegram identity behind an API request.
//
// The routing layer depends only on IdentityResolver. Two strategies exist:
// HeaderResolver trusts a JSON identity injected by the client platform, and
// InitDataResolver verifies the signed Mini App initData with the bot token.
package auth

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/deppfellow/tg-miniapp/internal/config"
	"github.com/deppfellow/tg-miniapp/internal/model"
)

const (
	HeaderTelegramUser     = "X-Telegram-User"
	HeaderTelegramInitData = "X-Telegram-Init-Data"
)

// ErrUnauthorized is returned (possibly wrapped) for any identity failure.
var ErrUnauthorized = errors.New("unauthorized: telegram user not found")

// IdentityResolver extracts the caller's identity from a request.
type IdentityResolver interface {
	Resolve(r *http.Request) (*model.TelegramIdentity, error)
}

// NewResolver returns the resolver for the configured strategy.
func NewResolver(cfg config.AuthConfig) (IdentityResolver, error) {
	switch cfg.Strategy {
	case "", config.AuthStrategyHeader:
		return HeaderResolver{}, nil
	case config.AuthStrategyInitData:
		if cfg.BotToken == "" {
			return nil, fmt.Errorf("auth strategy %q needs a bot token", cfg.Strategy)
		}
		return &InitDataResolver{
			BotToken: cfg.BotToken,
			MaxAge:   time.Duration(cfg.InitDataMaxAge) * time.Second,
		}, nil
	default:
		return nil, fmt.Errorf("unknown auth strategy %q", cfg.Strategy)
	}
}

func unauthorized(reason string) error {
	return fmt.Errorf("%w (%s)", ErrUnauthorized, reason)
}
