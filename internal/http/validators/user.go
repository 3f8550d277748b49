package validators

import (
	"net/mail"
	"regexp"

	dto "todo-items.com/todo-items/internal/data_models"
	apperrors "todo-items.com/todo-items/internal/errors"
)

const (
	usernameMinLength = 2
	passwordMinLength = 8
)

var usernamePattern = regexp.MustCompile(`^[a-z0-9_.-]+$`)

func ValidateUserCreateRequest(r *dto.UserCreateRequest) error {
	if err := validateUsername(r.Username); err != nil {
		return err
	}
	if err := validateEmail(r.Email); err != nil {
		return err
	}
	if len(r.Password) < passwordMinLength {
		return apperrors.Validation("password must be at least %d characters", passwordMinLength)
	}
	return nil
}

func ValidateUserUpdateRequest(r *dto.UserUpdateRequest) error {
	return validateUsername(r.Username)
}

func validateUsername(username string) error {
	if len(username) < usernameMinLength {
		return apperrors.Validation("username must be at least %d characters", usernameMinLength)
	}
	if !usernamePattern.MatchString(username) {
		return apperrors.Validation("username may contain only lowercase letters, digits, '_', '.' and '-'")
	}
	return nil
}

// validateEmail accepts a bare address only, so display name forms such as
// "Name <user@host>" cannot register a second account for one mailbox.
func validateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return apperrors.Validation("email is not a valid email address")
	}
	return nil
}
