package validators

import (
	"strings"
	"time"

	"todo-items.com/todo-items/internal/constants"
	dto "todo-items.com/todo-items/internal/data_models"
	apperrors "todo-items.com/todo-items/internal/errors"
)

func ValidateTodoItemCreateRequest(r *dto.TodoItemCreateRequest, now time.Time) error {
	if strings.TrimSpace(r.Subject) == "" {
		return apperrors.Validation("subject is required")
	}
	if r.Deadline != nil && !r.Deadline.After(now) {
		return apperrors.Validation("deadline must be in the future")
	}
	return nil
}

// ValidateTodoItemUpdateRequest defaults an omitted visibility to visible.
func ValidateTodoItemUpdateRequest(r *dto.TodoItemUpdateRequest) error {
	if strings.TrimSpace(r.Subject) == "" {
		return apperrors.Validation("subject is required")
	}
	if r.Visibility == "" {
		r.Visibility = constants.VisibilityVisible
	}
	if !r.Visibility.Valid() {
		return apperrors.Validation("visibility must be one of '%s', '%s'", constants.VisibilityVisible, constants.VisibilityArchived)
	}
	return nil
}
