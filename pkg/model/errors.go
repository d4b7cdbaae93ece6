package model

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
)

// ServiceErrorKind classifies a failed transcription call.
type ServiceErrorKind string

const (
	ServiceErrorKindClient  ServiceErrorKind = "client"
	ServiceErrorKindService ServiceErrorKind = "service"
	ServiceErrorKindNetwork ServiceErrorKind = "network"
)

// ServiceError is returned by transcription providers when the upstream call fails.
type ServiceError struct {
	Provider   string
	Kind       ServiceErrorKind
	StatusCode int
	Message    string
	Cause      error
}

// NewServiceError builds a ServiceError whose kind is derived from the HTTP status.
// A zero status means the request never produced a response.
func NewServiceError(provider string, statusCode int, message string, cause error) *ServiceError {
	return &ServiceError{
		Provider:   provider,
		Kind:       ClassifyStatus(statusCode),
		StatusCode: statusCode,
		Message:    message,
		Cause:      cause,
	}
}

// NewNetworkError builds a ServiceError for a request that never reached the service.
func NewNetworkError(provider string, cause error) *ServiceError {
	message := "request failed"
	if cause != nil {
		message = cause.Error()
	}
	return &ServiceError{
		Provider: provider,
		Kind:     ServiceErrorKindNetwork,
		Message:  message,
		Cause:    cause,
	}
}

func (e *ServiceError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s error (status %d): %s", e.Provider, e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s %s error: %s", e.Provider, e.Kind, e.Message)
}

func (e *ServiceError) Unwrap() error {
	return e.Cause
}

func ClassifyStatus(statusCode int) ServiceErrorKind {
	switch {
	case statusCode == 0:
		return ServiceErrorKindNetwork
	case statusCode >= http.StatusBadRequest && statusCode < http.StatusInternalServerError:
		return ServiceErrorKindClient
	default:
		return ServiceErrorKindService
	}
}

// IsNetworkError reports whether err originates from the transport rather than the service.
func IsNetworkError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
