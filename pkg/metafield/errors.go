// Package metafield implements type-safe metafield writes against the Shopify
// Admin GraphQL API: type resolution, value coercion, and mutation handling.
package metafield

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidValue indicates a value that cannot be coerced to the target
	// type's string encoding.
	ErrInvalidValue = errors.New("metafield: invalid value")

	// ErrTypeUndeterminable indicates that no type could be established from
	// cache, schema definition, existing value, or caller override.
	ErrTypeUndeterminable = errors.New("metafield: type undeterminable")

	// ErrRejected indicates the platform accepted the request but reported
	// field-level user errors.
	ErrRejected = errors.New("metafield: write rejected")

	// ErrTransport indicates a network or protocol level failure after the
	// transport's own retry policy was exhausted.
	ErrTransport = errors.New("metafield: transport failure")
)

// TypeParseError reports an invalid metafield type name.
type TypeParseError struct {
	Name   string
	Reason string
}

func (e *TypeParseError) Error() string {
	return fmt.Sprintf("metafield: invalid type %q: %s", e.Name, e.Reason)
}

// InvalidValueError reports a value that could not be coerced under the
// transformation rules for its target type.
type InvalidValueError struct {
	Type   Type
	Reason string
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("metafield: cannot transform value to %s: %s", e.Type, e.Reason)
}

func (e *InvalidValueError) Unwrap() error { return ErrInvalidValue }

// UndeterminableError reports that type resolution exhausted every source.
type UndeterminableError struct {
	Namespace string
	Key       string
}

func (e *UndeterminableError) Error() string {
	return fmt.Sprintf(
		"metafield: cannot determine type for %s.%s: provide an explicit type or create a definition",
		e.Namespace, e.Key)
}

func (e *UndeterminableError) Unwrap() error { return ErrTypeUndeterminable }

// RejectedError carries the ordered user errors the platform reported for a
// write that was transported successfully.
type RejectedError struct {
	OwnerID string
	Errors  []UserError
}

func (e *RejectedError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, ue := range e.Errors {
		field := strings.TrimSpace(ue.Field)
		if field == "" {
			parts = append(parts, ue.Message)
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", field, ue.Message))
	}
	if len(parts) == 0 {
		return fmt.Sprintf("metafield: write to %s rejected", e.OwnerID)
	}
	return fmt.Sprintf("metafield: write to %s rejected: %s", e.OwnerID, strings.Join(parts, "; "))
}

func (e *RejectedError) Unwrap() error { return ErrRejected }

// TransportError wraps a network or protocol fault raised by the transport
// collaborator while submitting a mutation.
type TransportError struct {
	OwnerID   string
	Namespace string
	Key       string
	Cause     error
}

func (e *TransportError) Error() string {
	where := e.OwnerID
	if e.Namespace != "" {
		where = fmt.Sprintf("%s.%s on %s", e.Namespace, e.Key, e.OwnerID)
	}
	return fmt.Sprintf("metafield: write to %s failed: %v", where, e.Cause)
}

func (e *TransportError) Unwrap() []error { return []error{ErrTransport, e.Cause} }

// AsRejected unwraps err into a RejectedError when the write failed with
// platform-reported user errors.
func AsRejected(err error) (*RejectedError, bool) {
	var typed *RejectedError
	if errors.As(err, &typed) {
		return typed, true
	}
	return nil, false
}
