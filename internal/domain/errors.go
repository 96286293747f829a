package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrSessionNotFound = errors.New("edit session not found or expired")
	ErrSessionBusy     = errors.New("edit session is being committed")
	ErrUploadFailed    = errors.New("upload failed")
)

// ValidationError is a failed precondition on admin input. It is always
// raised before any gateway call is made.
type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// CapacityError is the validation failure of adding to a full gallery.
// errors.As matches it as both *CapacityError and *ValidationError.
type CapacityError struct {
	Max int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("gallery already holds the maximum of %d images", e.Max)
}

func (e *CapacityError) Unwrap() error {
	return &ValidationError{Field: "images", Message: e.Error()}
}

// GatewayError wraps a failed persistence call with the entity and operation
// it targeted, so a commit can be retried by hand.
type GatewayError struct {
	Op     string
	Entity string
	ID     int64
	Err    error
}

func (e *GatewayError) Error() string {
	if e.ID != 0 {
		return fmt.Sprintf("%s %s %d: %v", e.Op, e.Entity, e.ID, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Entity, e.Err)
}

func (e *GatewayError) Unwrap() error { return e.Err }

// CommitStep records one gateway call that took effect during a commit.
type CommitStep struct {
	Op     string `json:"op"`
	Entity string `json:"entity"`
	ID     int64  `json:"id"`
}

func (s CommitStep) String() string {
	return fmt.Sprintf("%s %s %d", s.Op, s.Entity, s.ID)
}

// PartialCommitError reports a commit that failed after some of its calls
// were applied. The persisted catalog then matches neither the pre-edit nor
// the intended state; Completed lists what has to be reconciled by hand.
type PartialCommitError struct {
	Completed []CommitStep
	Err       error
}

func (e *PartialCommitError) Error() string {
	steps := make([]string, len(e.Completed))
	for i, s := range e.Completed {
		steps[i] = s.String()
	}
	return fmt.Sprintf("commit failed after %d applied steps [%s]: %v",
		len(e.Completed), strings.Join(steps, ", "), e.Err)
}

func (e *PartialCommitError) Unwrap() error { return e.Err }

// Gateway operation names.
const (
	OpCreate    = "create"
	OpUpdate    = "update"
	OpDelete    = "delete"
	OpBulkOrder = "bulk_order"
	OpList      = "list"
	OpCommit    = "commit"
)

// Entities touched by the gateway.
const (
	EntityVariant = "variant"
	EntityImage   = "image"
	EntityProduct = "product"
)
