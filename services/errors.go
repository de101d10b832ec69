package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrNotFound             = errors.New("not found")
	ErrNotEnrolled          = errors.New("not enrolled")
	ErrTaskLocked           = errors.New("task locked")
	ErrAttemptLimitExceeded = errors.New("attempt limit exceeded")
	ErrAlreadyEnrolled      = errors.New("already enrolled")
	ErrValidation           = errors.New("validation failed")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrConflict             = errors.New("conflict")
)

func notFound(entity string, id uuid.UUID) error {
	return fmt.Errorf("%w: %s %s", ErrNotFound, entity, id)
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func conflict(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}

// translate maps GORM errors onto the workflow taxonomy.
func translate(err error, entity string, id uuid.UUID) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return notFound(entity, id)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: duplicate %s", ErrConflict, entity)
	default:
		return err
	}
}
