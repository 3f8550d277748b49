package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	dto "todo-items.com/todo-items/internal/data_models"
	apperrors "todo-items.com/todo-items/internal/errors"
	middleware "todo-items.com/todo-items/internal/http/middlewares"
	"todo-items.com/todo-items/internal/security"
	"todo-items.com/todo-items/internal/services"
)

type LoginHandler struct {
	userService *services.UserService
	tokens      *security.TokenCodec
}

func NewLoginHandler(userService *services.UserService, tokens *security.TokenCodec) *LoginHandler {
	return &LoginHandler{
		userService: userService,
		tokens:      tokens,
	}
}

// AccessToken exchanges form encoded credentials for a bearer token.
func (h *LoginHandler) AccessToken(c echo.Context) error {
	var req dto.LoginRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.Validation("invalid form payload")
	}

	user, err := h.userService.GetByCredentialsVerified(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return err
	}
	if user == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "incorrect username or password")
	}

	token, err := h.tokens.Encode(user.ID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.TokenResponse{AccessToken: token, TokenType: security.TokenType})
}

func (h *LoginHandler) WhoAmI(c echo.Context) error {
	return c.JSON(http.StatusOK, dto.NewUserResponse(middleware.CurrentUser(c)))
}
