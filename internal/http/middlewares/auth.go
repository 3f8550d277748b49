package middleware

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"

	apperrors "todo-items.com/todo-items/internal/errors"
	model "todo-items.com/todo-items/internal/models"
)

const currentUserKey = "current_user"

type TokenDecoder interface {
	Decode(token string) (uint, error)
}

type UserLoader interface {
	GetByIDOrException(ctx context.Context, id uint) (*model.User, error)
}

// Authenticate resolves the bearer token of the request to a user and
// stores it on the context for CurrentUser.
func Authenticate(tokens TokenDecoder, users UserLoader) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
				return apperrors.AccessTokenMalformed("not authenticated")
			}

			userID, err := tokens.Decode(token)
			if err != nil {
				c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
				return err
			}

			user, err := users.GetByIDOrException(c.Request().Context(), userID)
			if err != nil {
				return err
			}

			c.Set(currentUserKey, user)
			return next(c)
		}
	}
}

// CurrentUser returns the user stored by Authenticate, or nil.
func CurrentUser(c echo.Context) *model.User {
	user, _ := c.Get(currentUserKey).(*model.User)
	return user
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
