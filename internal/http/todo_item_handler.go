package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"todo-items.com/todo-items/internal/constants"
	dto "todo-items.com/todo-items/internal/data_models"
	apperrors "todo-items.com/todo-items/internal/errors"
	middleware "todo-items.com/todo-items/internal/http/middlewares"
	"todo-items.com/todo-items/internal/http/validators"
	model "todo-items.com/todo-items/internal/models"
	"todo-items.com/todo-items/internal/services"
)

type TodoItemHandler struct {
	todoItemService  *services.TodoItemService
	listLimitDefault int
	now              func() time.Time
}

func NewTodoItemHandler(todoItemService *services.TodoItemService, listLimitDefault int) *TodoItemHandler {
	return &TodoItemHandler{
		todoItemService:  todoItemService,
		listLimitDefault: listLimitDefault,
		now:              time.Now,
	}
}

func (h *TodoItemHandler) Create(c echo.Context) error {
	var req dto.TodoItemCreateRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.Validation("invalid JSON payload")
	}
	if err := validators.ValidateTodoItemCreateRequest(&req, h.now()); err != nil {
		return err
	}

	item, err := h.todoItemService.CreateForUser(c.Request().Context(), req, middleware.CurrentUser(c))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.NewTodoItemResponse(item))
}

func (h *TodoItemHandler) List(c echo.Context) error {
	query, err := h.bindListQuery(c)
	if err != nil {
		return err
	}

	items, err := h.todoItemService.ListByUser(
		c.Request().Context(),
		middleware.CurrentUser(c),
		query.Visibility,
		query.Offset,
		query.Limit,
	)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.NewTodoItemResponses(items))
}

// bindListQuery reads visibility, offset and limit, applying the configured
// default limit when none is given.
func (h *TodoItemHandler) bindListQuery(c echo.Context) (dto.TodoItemListQuery, error) {
	query := dto.TodoItemListQuery{Limit: h.listLimitDefault}

	var visibility string
	err := echo.QueryParamsBinder(c).
		String("visibility", &visibility).
		Int("offset", &query.Offset).
		Int("limit", &query.Limit).
		BindError()
	if err != nil {
		return query, apperrors.Validation("invalid query parameters")
	}

	if visibility != "" {
		v := constants.TodoItemVisibility(visibility)
		query.Visibility = &v
	}
	return query, nil
}

func (h *TodoItemHandler) Get(c echo.Context) error {
	id, err := itemID(c)
	if err != nil {
		return err
	}

	item, err := h.todoItemService.GetForUser(c.Request().Context(), id, middleware.CurrentUser(c))
	if err != nil {
		return err
	}
	if item == nil {
		return apperrors.NotFound("todo item %d not found", id)
	}

	return c.JSON(http.StatusOK, dto.NewTodoItemResponse(item))
}

func (h *TodoItemHandler) Update(c echo.Context) error {
	var req dto.TodoItemUpdateRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.Validation("invalid JSON payload")
	}
	if err := validators.ValidateTodoItemUpdateRequest(&req); err != nil {
		return err
	}

	return h.withItem(c, func(item *model.TodoItem) error {
		return h.todoItemService.Update(c.Request().Context(), item, req)
	})
}

func (h *TodoItemHandler) Resolve(c echo.Context) error {
	return h.withItem(c, func(item *model.TodoItem) error {
		return h.todoItemService.Resolve(c.Request().Context(), item)
	})
}

func (h *TodoItemHandler) Reopen(c echo.Context) error {
	return h.withItem(c, func(item *model.TodoItem) error {
		return h.todoItemService.Reopen(c.Request().Context(), item)
	})
}

func (h *TodoItemHandler) Delete(c echo.Context) error {
	id, err := itemID(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	item, err := h.todoItemService.GetForUserOrException(ctx, id, middleware.CurrentUser(c))
	if err != nil {
		return err
	}
	if err := h.todoItemService.Delete(ctx, item); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

// withItem loads the current user's item from the path, applies action and
// responds with the resulting state.
func (h *TodoItemHandler) withItem(c echo.Context, action func(item *model.TodoItem) error) error {
	id, err := itemID(c)
	if err != nil {
		return err
	}

	item, err := h.todoItemService.GetForUserOrException(c.Request().Context(), id, middleware.CurrentUser(c))
	if err != nil {
		return err
	}
	if err := action(item); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.NewTodoItemResponse(item))
}

func itemID(c echo.Context) (uint, error) {
	var id uint
	if err := echo.PathParamsBinder(c).MustUint("id", &id).BindError(); err != nil {
		return 0, apperrors.Validation("todo item id must be a positive integer")
	}
	return id, nil
}
