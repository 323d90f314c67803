package core

import (
	"errors"
	"fmt"
)

// Error taxonomy for the analytics engine. Callers are expected to
// distinguish these with errors.As; everything else is treated as an
// internal failure whose cause is logged but not exposed.

// ValidationError marks malformed caller input (dates, amounts, enums).
// Always recoverable by correcting the input.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation: " + e.Msg
	}
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Msg)
}

func NewValidationError(field, msg string) error {
	return &ValidationError{Field: field, Msg: msg}
}

// NotFoundError marks an unknown user, budget, goal, or report id.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return e.Entity + " not found"
	}
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

func NewNotFoundError(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// AuthorizationError marks an entity that exists but is not owned by the
// requesting user. Responses must render it exactly like NotFoundError so
// ownership probing cannot distinguish the two.
type AuthorizationError struct {
	Entity string
	ID     string
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("%s %s not owned by requesting user", e.Entity, e.ID)
}

func NewAuthorizationError(entity, id string) error {
	return &AuthorizationError{Entity: entity, ID: id}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNotFound reports whether err is (or wraps) a NotFoundError or an
// AuthorizationError. The two are deliberately indistinguishable here.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	var ae *AuthorizationError
	return errors.As(err, &nf) || errors.As(err, &ae)
}
