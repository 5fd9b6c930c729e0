// Package shopify implements the Admin API transport: an authenticated
// GraphQL client with request pacing and retry on transient failures.
package shopify

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingCredentials indicates a client configured without a shop
	// domain or access token.
	ErrMissingCredentials = errors.New("shopify: shop domain and access token are required")

	// ErrRetriesExhausted indicates a request that kept failing transiently
	// after the full retry budget.
	ErrRetriesExhausted = errors.New("shopify: retries exhausted")
)

// HTTPError reports a non-success HTTP status from the Admin API.
type HTTPError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("shopify: request failed: %s", e.Status)
	}
	return fmt.Sprintf("shopify: request failed: %s: %s", e.Status, e.Body)
}

// ProtocolError reports top-level GraphQL errors returned alongside a 200
// response, e.g. a malformed document or an unknown field.
type ProtocolError struct {
	Messages []string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("shopify: graphql errors: %s", strings.Join(e.Messages, "; "))
}
