package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/deppfellow/tg-miniapp/internal/errs"
	"github.com/deppfellow/tg-miniapp/internal/model"
)

type UserService struct {
	users UserStore
}

func NewUserService(users UserStore) *UserService {
	return &UserService{users: users}
}

// Init registers the caller or refreshes their profile.
func (s *UserService) Init(ctx context.Context, identity *model.TelegramIdentity) (*model.User, error) {
	return s.users.Upsert(ctx, identity)
}

// Resolve maps a Telegram id to the internal user id. Callers that never
// ran Init get a 404 telling the Mini App to initialize first.
func (s *UserService) Resolve(ctx context.Context, telegramID int64) (uuid.UUID, error) {
	id, found, err := s.users.GetIDByTelegramID(ctx, telegramID)
	if err != nil {
		return uuid.Nil, err
	}
	if !found {
		return uuid.Nil, errs.NewNotFoundError("User not found", true, nil).
			WithAction(&errs.Action{Type: errs.ActionTypeReinit, Message: "call user/init first", Value: "user/init"})
	}
	return id, nil
}

func parseID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errs.NewBadRequestError("Invalid id", true, nil,
			[]errs.FieldError{{Field: "id", Error: "must be a valid UUID"}}, nil)
	}
	return id, nil
}
