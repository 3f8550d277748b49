package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"todo-items.com/todo-items/internal/constants"
	model "todo-items.com/todo-items/internal/models"
)

type TodoItemRepository struct {
	db *gorm.DB
}

var ErrOptimisticLock = errors.New("optimistic locking conflict")

func NewTodoItemRepository(db *gorm.DB) *TodoItemRepository {
	return &TodoItemRepository{db: db}
}

func (r *TodoItemRepository) Create(ctx context.Context, item *model.TodoItem) error {
	item.Version = 1
	item.CreateTime = time.Now().UTC()
	return r.db.WithContext(ctx).Create(item).Error
}

// FindByID returns gorm.ErrRecordNotFound when no row has the given id.
func (r *TodoItemRepository) FindByID(ctx context.Context, id uint) (*model.TodoItem, error) {
	var item model.TodoItem
	if err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *TodoItemRepository) ListByUser(
	ctx context.Context,
	userID uint,
	visibility *constants.TodoItemVisibility,
	offset int,
	limit int,
) ([]model.TodoItem, error) {
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if visibility != nil {
		query = query.Where("visibility = ?", *visibility)
	}

	var items []model.TodoItem
	err := query.Order("id asc").Offset(offset).Limit(limit).Find(&items).Error
	return items, err
}

// ListOpenPastDeadline selects open items whose deadline is before now,
// with their owners preloaded.
func (r *TodoItemRepository) ListOpenPastDeadline(ctx context.Context, now time.Time) ([]model.TodoItem, error) {
	var items []model.TodoItem
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("status = ? AND deadline IS NOT NULL AND deadline < ?", constants.StatusOpen, now.UTC()).
		Order("id asc").
		Find(&items).Error
	return items, err
}

// ListVisibleDangling selects visible items that stayed resolved or overdue
// since before threshold.
func (r *TodoItemRepository) ListVisibleDangling(ctx context.Context, threshold time.Time) ([]model.TodoItem, error) {
	threshold = threshold.UTC()

	var items []model.TodoItem
	err := r.db.WithContext(ctx).
		Where("visibility = ?", constants.VisibilityVisible).
		Where(
			r.db.Where("status = ? AND resolve_time IS NOT NULL AND resolve_time < ?", constants.StatusResolved, threshold).
				Or("status = ? AND deadline IS NOT NULL AND deadline < ?", constants.StatusOverdue, threshold),
		).
		Order("id asc").
		Find(&items).Error
	return items, err
}

// Mutate reloads the item inside a transaction, lets mutate check its
// preconditions and change fields, then writes the result guarded by the
// version read. Returning an error from mutate aborts without writing.
func (r *TodoItemRepository) Mutate(
	ctx context.Context,
	id uint,
	mutate func(item *model.TodoItem) error,
) (*model.TodoItem, error) {
	var item model.TodoItem

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&item, "id = ?", id).Error; err != nil {
			return err
		}

		version := item.Version
		if err := mutate(&item); err != nil {
			return err
		}

		updatedAt := time.Now().UTC()
		res := tx.Model(&model.TodoItem{}).
			Where("id = ? AND version = ?", item.ID, version).
			Updates(map[string]interface{}{
				"subject":      item.Subject,
				"deadline":     item.Deadline,
				"status":       item.Status,
				"visibility":   item.Visibility,
				"resolve_time": item.ResolveTime,
				"update_time":  updatedAt,
				"version":      gorm.Expr("version + 1"),
			})

		if res.Error != nil {
			return res.Error
		}

		if res.RowsAffected == 0 {
			return ErrOptimisticLock
		}

		item.Version = version + 1
		item.UpdateTime = &updatedAt
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &item, nil
}

func (r *TodoItemRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&model.TodoItem{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
