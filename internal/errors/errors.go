// internal/errors/errors.go
package appErrors

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConfigured is returned when the user has no Acumbamail auth token.
	ErrNotConfigured = errors.New("acumbamail is not configured")
	// ErrSyncInProgress is returned when a sync for the same user is already running.
	ErrSyncInProgress = errors.New("a sync is already running for this user")
	// ErrDuplicate is returned when a unique key already exists in the store.
	ErrDuplicate = errors.New("record already exists")
)

// NotFoundError is returned when a record does not exist for the user.
type NotFoundError struct {
	Entity string
	ID     any
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %v not found", e.Entity, e.ID)
}

// Helper constructor
func NewNotFound(entity string, id any) error {
	return &NotFoundError{Entity: entity, ID: id}
}

func NewCampaignNotFound(id int) error { return NewNotFound("campaign", id) }
func NewListNotFound(id int) error     { return NewNotFound("list", id) }
func NewTemplateNotFound(id int) error { return NewNotFound("template", id) }
func NewUserNotFound(id int) error     { return NewNotFound("user", id) }

// ValidationError rejects input before any remote call is made.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidation(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
