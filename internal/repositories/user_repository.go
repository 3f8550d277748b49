package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	model "todo-items.com/todo-items/internal/models"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	user.Version = 1
	user.CreateTime = time.Now().UTC()
	return r.db.WithContext(ctx).Create(user).Error
}

// FindByID returns gorm.ErrRecordNotFound when no row has the given id.
func (r *UserRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindBy looks a user up by the non-empty filters given. It returns nil and
// no error when nothing matches.
func (r *UserRepository) FindBy(ctx context.Context, username, email string) (*model.User, error) {
	if username == "" && email == "" {
		return nil, nil
	}

	query := r.db.WithContext(ctx)
	if username != "" {
		query = query.Where("username = ?", username)
	}
	if email != "" {
		query = query.Where("email = ?", email)
	}

	var users []model.User
	if err := query.Order("id asc").Limit(1).Find(&users).Error; err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, nil
	}
	return &users[0], nil
}

func (r *UserRepository) Update(ctx context.Context, user *model.User) error {
	updatedAt := time.Now().UTC()
	res := r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ? AND version = ?", user.ID, user.Version).
		Updates(map[string]interface{}{
			"username":        user.Username,
			"email":           user.Email,
			"full_name":       user.FullName,
			"hashed_password": user.HashedPassword,
			"update_time":     updatedAt,
			"version":         gorm.Expr("version + 1"),
		})

	if res.Error != nil {
		return res.Error
	}

	if res.RowsAffected == 0 {
		return ErrOptimisticLock
	}

	user.Version++
	user.UpdateTime = &updatedAt
	return nil
}

// Delete removes the user together with all of their todo items.
func (r *UserRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&model.TodoItem{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.User{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
