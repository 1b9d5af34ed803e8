package scraper

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// ErrTimeout indicates the request exceeded the configured timeout.
type ErrTimeout struct {
	Err error
}

func (e ErrTimeout) Error() string {
	return fmt.Errorf("timeout: %w", e.Err).Error()
}

func (e ErrTimeout) Unwrap() error {
	return e.Err
}

// ErrConnection indicates a network connectivity failure.
type ErrConnection struct {
	Err error
}

func (e ErrConnection) Error() string {
	return fmt.Errorf("connection: %w", e.Err).Error()
}

func (e ErrConnection) Unwrap() error {
	return e.Err
}

// ErrBadStatus indicates a non-success HTTP response.
type ErrBadStatus struct {
	Code int
	Err  error
}

func (e ErrBadStatus) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("http status %d: %v", e.Code, e.Err)
	}
	return fmt.Sprintf("http status %d", e.Code)
}

func (e ErrBadStatus) Unwrap() error {
	return e.Err
}

// classifyError folds a raw fetch error and observed status code into the
// error taxonomy. Transport failures and non-success statuses are the two
// distinguishable classes.
func classifyError(err error, statusCode int) error {
	if err == nil && statusCode == 0 {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout{Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrTimeout{Err: err}
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return ErrConnection{Err: err}
	}

	if statusCode >= http.StatusMultipleChoices || (statusCode > 0 && statusCode < http.StatusOK) {
		return ErrBadStatus{Code: statusCode, Err: err}
	}

	return err
}

// errorTypeLabel maps a classified error to its metrics label.
func errorTypeLabel(err error) string {
	if err == nil {
		return "unknown"
	}
	var timeout ErrTimeout
	if errors.As(err, &timeout) {
		return "timeout"
	}
	var conn ErrConnection
	if errors.As(err, &conn) {
		return "connection"
	}
	var status ErrBadStatus
	if errors.As(err, &status) {
		switch status.Code {
		case http.StatusForbidden:
			return "forbidden"
		case http.StatusNotFound:
			return "not_found"
		case http.StatusTooManyRequests:
			return "rate_limited"
		}
		return "bad_status"
	}
	return "other"
}
