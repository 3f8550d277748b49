package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"todo-items.com/todo-items/internal/constants"
	dto "todo-items.com/todo-items/internal/data_models"
	apperrors "todo-items.com/todo-items/internal/errors"
	model "todo-items.com/todo-items/internal/models"
	repository "todo-items.com/todo-items/internal/repositories"
)

type TodoItemService struct {
	repo *repository.TodoItemRepository
	now  func() time.Time
}

func NewTodoItemService(repo *repository.TodoItemRepository) *TodoItemService {
	return &TodoItemService{
		repo: repo,
		now:  time.Now,
	}
}

// GetForUser returns nil and no error when the todo item does not exist.
// An existing item owned by someone else is an owner access violation.
func (s *TodoItemService) GetForUser(ctx context.Context, id uint, owner *model.User) (*model.TodoItem, error) {
	item, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := checkIsOwner(item, owner); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *TodoItemService) GetForUserOrException(ctx context.Context, id uint, owner *model.User) (*model.TodoItem, error) {
	item, err := s.GetForUser(ctx, id, owner)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, apperrors.NotFound("todo item %d not found", id)
	}
	return item, nil
}

func (s *TodoItemService) ListByUser(
	ctx context.Context,
	owner *model.User,
	visibility *constants.TodoItemVisibility,
	offset int,
	limit int,
) ([]model.TodoItem, error) {
	if offset < 0 {
		return nil, apperrors.Validation("offset must not be negative")
	}
	if limit <= 0 {
		return nil, apperrors.Validation("limit must be positive")
	}
	if visibility != nil && !visibility.Valid() {
		return nil, apperrors.Validation("invalid visibility %q", *visibility)
	}

	return s.repo.ListByUser(ctx, owner.ID, visibility, offset, limit)
}

// CreateForUser stores a new open, visible todo item owned by owner. The
// deadline is validated by the request validator, not here.
func (s *TodoItemService) CreateForUser(ctx context.Context, data dto.TodoItemCreateRequest, owner *model.User) (*model.TodoItem, error) {
	if strings.TrimSpace(data.Subject) == "" {
		return nil, apperrors.Validation("subject is required")
	}

	item := &model.TodoItem{
		UserID:     owner.ID,
		Subject:    data.Subject,
		Deadline:   utc(data.Deadline),
		Status:     constants.StatusOpen,
		Visibility: constants.VisibilityVisible,
	}

	if err := s.repo.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("create todo item: %w", err)
	}
	return item, nil
}

// Update overwrites subject, deadline and visibility. A deadline in the past
// is rejected only while the item is open.
func (s *TodoItemService) Update(ctx context.Context, item *model.TodoItem, data dto.TodoItemUpdateRequest) error {
	if strings.TrimSpace(data.Subject) == "" {
		return apperrors.Validation("subject is required")
	}
	if !data.Visibility.Valid() {
		return apperrors.Validation("invalid visibility %q", data.Visibility)
	}

	return s.mutate(ctx, item, func(current *model.TodoItem) error {
		if current.Status == constants.StatusOpen && data.Deadline != nil && data.Deadline.Before(s.now()) {
			return apperrors.Validation("deadline can not be set in the past")
		}

		current.Subject = data.Subject
		current.Deadline = utc(data.Deadline)
		current.Visibility = data.Visibility
		return nil
	})
}

func (s *TodoItemService) Resolve(ctx context.Context, item *model.TodoItem) error {
	return s.mutate(ctx, item, func(current *model.TodoItem) error {
		if current.Status != constants.StatusOpen {
			return apperrors.StateConflict("can resolve todo items only in status '%s'", constants.StatusOpen)
		}

		resolvedAt := s.now().UTC()
		current.Status = constants.StatusResolved
		current.ResolveTime = &resolvedAt
		return nil
	})
}

func (s *TodoItemService) Reopen(ctx context.Context, item *model.TodoItem) error {
	return s.mutate(ctx, item, func(current *model.TodoItem) error {
		if current.Status != constants.StatusResolved {
			return apperrors.StateConflict("can reopen todo items only in status '%s'", constants.StatusResolved)
		}

		current.Status = constants.StatusOpen
		current.ResolveTime = nil
		return nil
	})
}

// MarkAsOverdue is driven by the housekeeping sweep only.
func (s *TodoItemService) MarkAsOverdue(ctx context.Context, item *model.TodoItem) error {
	return s.mutate(ctx, item, func(current *model.TodoItem) error {
		if current.Status != constants.StatusOpen {
			return apperrors.StateConflict("can mark todo items as overdue only in status '%s'", constants.StatusOpen)
		}

		current.Status = constants.StatusOverdue
		return nil
	})
}

func (s *TodoItemService) MoveToArchive(ctx context.Context, item *model.TodoItem) error {
	return s.mutate(ctx, item, func(current *model.TodoItem) error {
		if current.Visibility != constants.VisibilityVisible {
			return apperrors.StateConflict("can archive todo items only with visibility '%s'", constants.VisibilityVisible)
		}

		current.Visibility = constants.VisibilityArchived
		return nil
	})
}

func (s *TodoItemService) Delete(ctx context.Context, item *model.TodoItem) error {
	err := s.repo.Delete(ctx, item.ID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NotFound("todo item %d not found", item.ID)
	}
	return err
}

// ListOpenOverdue returns open todo items whose deadline has passed.
func (s *TodoItemService) ListOpenOverdue(ctx context.Context) ([]model.TodoItem, error) {
	return s.repo.ListOpenPastDeadline(ctx, s.now())
}

// ListVisibleDangling returns visible todo items that have been resolved, or
// overdue past their deadline, for longer than hoursInStatus.
func (s *TodoItemService) ListVisibleDangling(ctx context.Context, hoursInStatus int) ([]model.TodoItem, error) {
	threshold := s.now().Add(-time.Duration(hoursInStatus) * time.Hour)
	return s.repo.ListVisibleDangling(ctx, threshold)
}

// mutate applies change to the stored row of item in one transaction and,
// on success, refreshes item with the persisted state. On failure item is
// left as it was.
func (s *TodoItemService) mutate(ctx context.Context, item *model.TodoItem, change func(current *model.TodoItem) error) error {
	updated, err := s.repo.Mutate(ctx, item.ID, change)
	switch {
	case err == nil:
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperrors.NotFound("todo item %d not found", item.ID)
	case errors.Is(err, repository.ErrOptimisticLock):
		return apperrors.StateConflict("todo item %d was modified concurrently", item.ID)
	default:
		return err
	}

	owner := item.User
	*item = *updated
	item.User = owner
	return nil
}

func checkIsOwner(item *model.TodoItem, user *model.User) error {
	if item.UserID != user.ID {
		return apperrors.OwnerAccessViolation("only a todo item's owner may have access to it")
	}
	return nil
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
