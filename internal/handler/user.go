package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/deppfellow/tg-miniapp/internal/middleware"
	"github.com/deppfellow/tg-miniapp/internal/model"
	"github.com/deppfellow/tg-miniapp/internal/server"
	"github.com/deppfellow/tg-miniapp/internal/service"
)

type UserHandler struct {
	Handler
	users *service.UserService
}

func NewUserHandler(s *server.Server, users *service.UserService) *UserHandler {
	return &UserHandler{Handler: NewHandler(s), users: users}
}

// InitUser creates the caller's profile or refreshes it from the identity
// header. Repeating it is harmless.
func (h *UserHandler) InitUser(c echo.Context) error {
	return Handle(
		h.Handler,
		func(c echo.Context, _ *model.InitUserRequest) (*model.User, error) {
			return h.users.Init(c.Request().Context(), middleware.GetIdentity(c))
		},
		http.StatusOK,
		&model.InitUserRequest{},
	)(c)
}
