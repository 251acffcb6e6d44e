package repository

import (
	"errors"
	"fmt"
)

// Common errors for user store operations.
var (
	ErrUserNotFound = errors.New("user not found")
	ErrDuplicateKey = errors.New("duplicate key")
)

// Unique fields of the users table.
const (
	FieldEmail    = "email"
	FieldUsername = "username"
)

// DuplicateKeyError reports an insert rejected by a uniqueness constraint.
// Field is empty when the colliding column could not be determined.
type DuplicateKeyError struct {
	Field string
}

func (e *DuplicateKeyError) Error() string {
	if e.Field == "" {
		return ErrDuplicateKey.Error()
	}
	return fmt.Sprintf("%s: %s already exists", ErrDuplicateKey, e.Field)
}

// Is makes errors.Is(err, ErrDuplicateKey) match any DuplicateKeyError.
func (e *DuplicateKeyError) Is(target error) bool {
	return target == ErrDuplicateKey
}
