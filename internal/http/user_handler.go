package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	dto "todo-items.com/todo-items/internal/data_models"
	apperrors "todo-items.com/todo-items/internal/errors"
	middleware "todo-items.com/todo-items/internal/http/middlewares"
	"todo-items.com/todo-items/internal/http/validators"
	"todo-items.com/todo-items/internal/services"
)

type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func (h *UserHandler) Register(c echo.Context) error {
	var req dto.UserCreateRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.Validation("invalid JSON payload")
	}
	if err := validators.ValidateUserCreateRequest(&req); err != nil {
		return err
	}

	user, err := h.userService.Create(c.Request().Context(), req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.NewUserResponse(user))
}

func (h *UserHandler) Current(c echo.Context) error {
	return c.JSON(http.StatusOK, dto.NewUserResponse(middleware.CurrentUser(c)))
}

func (h *UserHandler) UpdateCurrent(c echo.Context) error {
	var req dto.UserUpdateRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.Validation("invalid JSON payload")
	}
	if err := validators.ValidateUserUpdateRequest(&req); err != nil {
		return err
	}

	user := middleware.CurrentUser(c)
	if err := h.userService.Update(c.Request().Context(), user, req); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.NewUserResponse(user))
}

func (h *UserHandler) DeleteCurrent(c echo.Context) error {
	if err := h.userService.Delete(c.Request().Context(), middleware.CurrentUser(c)); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
