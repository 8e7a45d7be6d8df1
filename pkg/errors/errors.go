package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound is returned when a resource is not found
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrUnauthorized is returned when authentication fails
type ErrUnauthorized struct {
	Message string
}

func (e *ErrUnauthorized) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "unauthorized"
}

// ErrConflict is returned when there's a conflict (e.g., idempotency)
type ErrConflict struct {
	Message string
}

func (e *ErrConflict) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "conflict"
}

// ErrValidation is returned when validation fails
type ErrValidation struct {
	Message string
	Fields  map[string]string
}

func (e *ErrValidation) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "validation failed"
}

// ErrUpstream is returned when Shopify, Mailchimp or Strapi answer with a non-success status
type ErrUpstream struct {
	Service string
	Status  int
	Body    string
}

func (e *ErrUpstream) Error() string {
	return fmt.Sprintf("%s API error: status %d, body: %s", e.Service, e.Status, e.Body)
}

// ErrNotConfigured is returned when an optional integration has no credentials
type ErrNotConfigured struct {
	Service string
}

func (e *ErrNotConfigured) Error() string {
	return e.Service + " not configured"
}

// HTTPStatus maps an error chain to the HTTP status a handler should answer with
func HTTPStatus(err error) int {
	var (
		notFound      *ErrNotFound
		unauthorized  *ErrUnauthorized
		conflict      *ErrConflict
		validation    *ErrValidation
		upstream      *ErrUpstream
		notConfigured *ErrNotConfigured
	)
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &unauthorized):
		return http.StatusUnauthorized
	case errors.As(err, &conflict):
		return http.StatusConflict
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &notConfigured):
		return http.StatusServiceUnavailable
	case errors.As(err, &upstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
