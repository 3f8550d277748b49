package errors

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindNotFound Kind = iota + 1
	KindValidation
	KindUniqueConstraintViolation
	KindAccessViolation
	KindOwnerAccessViolation
	KindStateConflict
	KindAccessTokenMalformed
)

// parents lists the kind each kind specializes, so that a predicate for a
// general kind also matches its subtypes.
var parents = map[Kind]Kind{
	KindUniqueConstraintViolation: KindValidation,
	KindOwnerAccessViolation:      KindAccessViolation,
}

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindValidation:
		return "validation"
	case KindUniqueConstraintViolation:
		return "unique constraint violation"
	case KindAccessViolation:
		return "access violation"
	case KindOwnerAccessViolation:
		return "owner access violation"
	case KindStateConflict:
		return "state conflict"
	case KindAccessTokenMalformed:
		return "access token malformed"
	}
	return "unknown"
}

type Exception struct {
	Kind    Kind
	Message string
}

func (e *Exception) Error() string {
	return e.Message
}

// Is reports whether target is an *Exception of the same kind or of a kind
// e specializes. Messages are not compared.
func (e *Exception) Is(target error) bool {
	t, ok := target.(*Exception)
	if !ok {
		return false
	}
	return e.isKind(t.Kind)
}

func (e *Exception) isKind(kind Kind) bool {
	for k := e.Kind; k != 0; k = parents[k] {
		if k == kind {
			return true
		}
	}
	return false
}

func New(kind Kind, format string, args ...any) *Exception {
	return &Exception{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) error {
	return New(KindNotFound, format, args...)
}

func Validation(format string, args ...any) error {
	return New(KindValidation, format, args...)
}

func UniqueConstraintViolation(format string, args ...any) error {
	return New(KindUniqueConstraintViolation, format, args...)
}

func OwnerAccessViolation(format string, args ...any) error {
	return New(KindOwnerAccessViolation, format, args...)
}

func StateConflict(format string, args ...any) error {
	return New(KindStateConflict, format, args...)
}

func AccessTokenMalformed(format string, args ...any) error {
	return New(KindAccessTokenMalformed, format, args...)
}

func IsKind(err error, kind Kind) bool {
	var e *Exception
	if !errors.As(err, &e) {
		return false
	}
	return e.isKind(kind)
}

func IsNotFound(err error) bool { return IsKind(err, KindNotFound) }

func IsValidation(err error) bool { return IsKind(err, KindValidation) }

func IsUniqueConstraintViolation(err error) bool {
	return IsKind(err, KindUniqueConstraintViolation)
}

func IsAccessViolation(err error) bool { return IsKind(err, KindAccessViolation) }

func IsOwnerAccessViolation(err error) bool {
	return IsKind(err, KindOwnerAccessViolation)
}

func IsStateConflict(err error) bool { return IsKind(err, KindStateConflict) }

func IsAccessTokenMalformed(err error) bool {
	return IsKind(err, KindAccessTokenMalformed)
}

// Message returns the message of the outermost *Exception in err's chain.
func Message(err error) string {
	var e *Exception
	if errors.As(err, &e) {
		return e.Message
	}
	return ""
}
