package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	dto "todo-items.com/todo-items/internal/data_models"
	apperrors "todo-items.com/todo-items/internal/errors"
	model "todo-items.com/todo-items/internal/models"
	repository "todo-items.com/todo-items/internal/repositories"
	"todo-items.com/todo-items/internal/security"
)

type UserService struct {
	repo           *repository.UserRepository
	notifier       Notifier
	verifyPassword func(password, hashed string) bool
}

func NewUserService(repo *repository.UserRepository, notifier Notifier) *UserService {
	return &UserService{
		repo:           repo,
		notifier:       notifier,
		verifyPassword: security.VerifyPassword,
	}
}

// Create registers a new user and queues the welcome email.
func (s *UserService) Create(ctx context.Context, data dto.UserCreateRequest) (*model.User, error) {
	if err := s.checkUsernameNotExists(ctx, data.Username); err != nil {
		return nil, err
	}
	if err := s.checkEmailNotExists(ctx, data.Email); err != nil {
		return nil, err
	}

	hashed, err := security.HashPassword(data.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Username:       data.Username,
		Email:          data.Email,
		FullName:       data.FullName,
		HashedPassword: hashed,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.UniqueConstraintViolation("username or email already in use")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.notifier.UserRegistered(user)
	return user, nil
}

// GetByID returns nil and no error when the user does not exist.
func (s *UserService) GetByID(ctx context.Context, id uint) (*model.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return user, err
}

func (s *UserService) GetByIDOrException(ctx context.Context, id uint) (*model.User, error) {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperrors.NotFound("user %d not found", id)
	}
	return user, nil
}

// GetByCredentialsVerified returns nil when the username is unknown or the
// password does not match.
func (s *UserService) GetByCredentialsVerified(ctx context.Context, username, password string) (*model.User, error) {
	user, err := s.repo.FindBy(ctx, username, "")
	if err != nil {
		return nil, err
	}
	if user == nil {
		s.verifyPassword(password, security.DummyHash())
		return nil, nil
	}
	if !s.verifyPassword(password, user.HashedPassword) {
		return nil, nil
	}
	return user, nil
}

func (s *UserService) Update(ctx context.Context, user *model.User, data dto.UserUpdateRequest) error {
	if data.Username != user.Username {
		if err := s.checkUsernameNotExists(ctx, data.Username); err != nil {
			return err
		}
	}

	updated := *user
	updated.Username = data.Username
	updated.FullName = data.FullName

	if err := s.save(ctx, &updated); err != nil {
		return err
	}
	*user = updated
	return nil
}

func (s *UserService) ChangePassword(ctx context.Context, user *model.User, password string) error {
	hashed, err := security.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	updated := *user
	updated.HashedPassword = hashed

	if err := s.save(ctx, &updated); err != nil {
		return err
	}
	*user = updated
	return nil
}

// Delete removes the user and every todo item they own.
func (s *UserService) Delete(ctx context.Context, user *model.User) error {
	err := s.repo.Delete(ctx, user.ID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NotFound("user %d not found", user.ID)
	}
	return err
}

func (s *UserService) save(ctx context.Context, user *model.User) error {
	err := s.repo.Update(ctx, user)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrOptimisticLock):
		return apperrors.StateConflict("user %d was modified concurrently", user.ID)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperrors.UniqueConstraintViolation("username already in use")
	}
	return fmt.Errorf("update user: %w", err)
}

func (s *UserService) checkUsernameNotExists(ctx context.Context, username string) error {
	existing, err := s.repo.FindBy(ctx, username, "")
	if err != nil {
		return err
	}
	if existing != nil {
		return apperrors.UniqueConstraintViolation("username already in use")
	}
	return nil
}

func (s *UserService) checkEmailNotExists(ctx context.Context, email string) error {
	existing, err := s.repo.FindBy(ctx, "", email)
	if err != nil {
		return err
	}
	if existing != nil {
		return apperrors.UniqueConstraintViolation("email already in use")
	}
	return nil
}
