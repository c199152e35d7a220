package model

import (
	"fmt"
	"strings"
)

// ValidationError holds a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation failure on a named field.
type FieldError struct {
	Field   string
	Message string
}

// Error formats the validation error as a semicolon-separated list of field messages.
func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// HasErrors reports whether the validation error contains any field errors.
func (e *ValidationError) HasErrors() bool {
	return len(e.Errors) > 0
}

// ValidateEvent checks an incoming Event for constraint violations before it
// is persisted. It returns a *ValidationError if any rules fail.
func ValidateEvent(ev *Event) error {
	var ve ValidationError

	if strings.TrimSpace(ev.TenantID) == "" {
		ve.Errors = append(ve.Errors, FieldError{Field: "tenant_id", Message: "is required"})
	}
	if strings.TrimSpace(ev.EventType) == "" {
		ve.Errors = append(ve.Errors, FieldError{Field: "event_type", Message: "is required"})
	}
	if !ev.EntityType.IsValid() {
		ve.Errors = append(ve.Errors, FieldError{
			Field:   "entity_type",
			Message: fmt.Sprintf("invalid value %q", ev.EntityType),
		})
	}
	if strings.TrimSpace(ev.EntityID) == "" {
		ve.Errors = append(ve.Errors, FieldError{Field: "entity_id", Message: "is required"})
	}
	for i, u := range ev.BroadcastToUsers {
		if strings.TrimSpace(u) == "" {
			ve.Errors = append(ve.Errors, FieldError{
				Field:   fmt.Sprintf("broadcast_to_users[%d]", i),
				Message: "must not be empty",
			})
		}
	}

	if ve.HasErrors() {
		return &ve
	}
	return nil
}
