package httperr

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/finstream/finstream/backend/go-services/pkg/logger"
	"github.com/finstream/finstream/backend/go-services/pkg/metrics"
)

// Failure categories mirror the wire-level "error" field of the envelope.
const (
	CategoryRequest    = "Request Error"
	CategoryDatabase   = "Database Error"
	CategoryValidation = "Invalid Input"
	CategoryInternal   = "Internal Server Error"
)

// Fixed messages for categories that must never leak internals.
const (
	msgDatabase = "Service temporarily unavailable"
	msgInternal = "An unexpected error occurred"
)

// RequestError is an explicit failure raised by handler logic with a status
// and a caller-visible message (e.g. Not-Found from "get current user").
type RequestError struct {
	Status  int
	Message string
}

func (e *RequestError) Error() string { return e.Message }

// NotFound builds a 404 RequestError.
func NotFound(message string) *RequestError {
	return &RequestError{Status: http.StatusNotFound, Message: message}
}

// PersistenceError wraps a store-layer failure. The underlying error is kept
// for logging but never reaches the wire.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string { return "persistence: " + e.Err.Error() }
func (e *PersistenceError) Unwrap() error { return e.Err }

// Persistence wraps err as a PersistenceError. Returns nil for nil.
func Persistence(err error) error {
	if err == nil {
		return nil
	}
	return &PersistenceError{Err: err}
}

// ValidationError marks malformed or illegal input. Its message is echoed to
// the caller.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Validation builds a ValidationError from any error's message.
func Validation(err error) *ValidationError {
	return &ValidationError{Message: err.Error()}
}

// Envelope is the uniform two-field error body returned for every failure.
type Envelope struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Map translates a failure into an HTTP status and response envelope. The
// mapping is total: the most specific matching kind wins and anything
// uncategorized falls through to a generic 500.
func Map(err error) (int, Envelope) {
	var re *RequestError
	if errors.As(err, &re) {
		return re.Status, Envelope{Error: CategoryRequest, Message: re.Message}
	}
	var pe *PersistenceError
	if errors.As(err, &pe) {
		return http.StatusServiceUnavailable, Envelope{Error: CategoryDatabase, Message: msgDatabase}
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return http.StatusBadRequest, Envelope{Error: CategoryValidation, Message: ve.Message}
	}
	return http.StatusInternalServerError, Envelope{Error: CategoryInternal, Message: msgInternal}
}

// Middleware converts errors recorded on the gin context into the envelope
// response. Handlers do not write failure responses themselves; they attach
// the error via c.Error and return. Each failure is logged exactly once here,
// at warning level for validation and error level otherwise.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err
		status, body := Map(err)

		switch body.Error {
		case CategoryValidation:
			logger.Warnf("invalid argument: %v", err)
		case CategoryDatabase:
			logger.Errorf("database error: %v", err)
		case CategoryRequest:
			logger.Errorf("request error (status %d): %v", status, err)
		default:
			logger.Errorf("unhandled error: %v", err)
		}
		metrics.RequestFailures.WithLabelValues(body.Error).Inc()

		if !c.Writer.Written() {
			c.JSON(status, body)
		}
	}
}
