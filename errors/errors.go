// Package errors holds the sentinel errors shared by every layer and the
// single place where an error is turned into a kind, a wire code, an HTTP
// status or a log line.
package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"
)

var (
	ErrWorkerPanic     = fmt.Errorf("worker panic")
	ErrTokenGeneration = fmt.Errorf("token generation failed")

	// Authentication
	ErrInvalidToken        = fmt.Errorf("invalid or expired token")
	ErrParticipantNotFound = fmt.Errorf("participant not found for project")
	ErrMissingCredentials  = fmt.Errorf("missing credentials")
	ErrInvalidCredentials  = fmt.Errorf("invalid credentials")

	// Authorization
	ErrForbidden    = fmt.Errorf("forbidden")
	ErrChatInactive = fmt.Errorf("chat is inactive")

	// Lookup
	ErrNotFound          = fmt.Errorf("not found")
	ErrChatNotFound      = fmt.Errorf("chat %w", ErrNotFound)
	ErrProjectNotFound   = fmt.Errorf("project %w", ErrNotFound)
	ErrAdminNotFound     = fmt.Errorf("admin %w", ErrNotFound)
	ErrNoSuchParticipant = fmt.Errorf("participant %w", ErrNotFound)

	// Conflicts
	ErrDuplicateParticipant = fmt.Errorf("participant uid already used in project")
	ErrDuplicateProject     = fmt.Errorf("project unique id already used")
	ErrUserAlreadyExists    = fmt.Errorf("user already exists")

	// Validation
	ErrInvalidPassword      = fmt.Errorf("password does not meet complexity requirements")
	ErrContentEmpty         = fmt.Errorf("message content is empty")
	ErrContentTooLong       = fmt.Errorf("message content is too long")
	ErrUnsupportedMediaType = fmt.Errorf("unsupported media type")
	ErrInvalidMessageType   = fmt.Errorf("invalid message type")
	ErrMalformedPayload     = fmt.Errorf("malformed payload")

	// Storage
	ErrPersistence = fmt.Errorf("persistence failure")
)

type Kind int

const (
	KindInternal Kind = iota
	KindAuthentication
	KindForbidden
	KindValidation
	KindConflict
	KindNotFound
	KindPersistence
)

func (k Kind) String() string {
	switch k {
	case KindAuthentication:
		return "AUTHENTICATION"
	case KindForbidden:
		return "FORBIDDEN"
	case KindValidation:
		return "VALIDATION"
	case KindConflict:
		return "CONFLICT"
	case KindNotFound:
		return "NOT_FOUND"
	case KindPersistence:
		return "PERSISTENCE"
	default:
		return "INTERNAL"
	}
}

// ValidationError carries a field-level reason on top of a sentinel.
type ValidationError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%v: %s", e.Err, e.Reason)
	}
	return fmt.Sprintf("%v: %s: %s", e.Err, e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return e.Err }

func Invalid(sentinel error, field, reason string) error {
	return &ValidationError{Field: field, Reason: reason, Err: sentinel}
}

// Persistence wraps a storage failure so that callers see ErrPersistence
// while the original cause is kept in the chain.
func Persistence(err error) error {
	if err == nil {
		return nil
	}
	if Is(err, ErrPersistence) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrPersistence, err)
}

func Is(err, target error) bool { return stderrors.Is(err, target) }

func As(err error, target any) bool { return stderrors.As(err, target) }

func New(text string) error { return stderrors.New(text) }

// KindOf classifies an error. Unknown errors are internal.
func KindOf(err error) Kind {
	var validation *ValidationError
	switch {
	case err == nil:
		return KindInternal
	case Is(err, ErrInvalidToken), Is(err, ErrParticipantNotFound),
		Is(err, ErrMissingCredentials), Is(err, ErrInvalidCredentials):
		return KindAuthentication
	case Is(err, ErrForbidden), Is(err, ErrChatInactive):
		return KindForbidden
	case Is(err, ErrNotFound):
		return KindNotFound
	case Is(err, ErrDuplicateParticipant), Is(err, ErrDuplicateProject), Is(err, ErrUserAlreadyExists):
		return KindConflict
	case As(err, &validation), Is(err, ErrInvalidPassword), Is(err, ErrContentEmpty),
		Is(err, ErrContentTooLong), Is(err, ErrUnsupportedMediaType),
		Is(err, ErrInvalidMessageType), Is(err, ErrMalformedPayload):
		return KindValidation
	case Is(err, ErrPersistence), Is(err, context.DeadlineExceeded):
		return KindPersistence
	default:
		return KindInternal
	}
}

// Code is the machine readable reason sent back to clients.
func Code(err error) string {
	switch {
	case Is(err, ErrUnsupportedMediaType):
		return "UNSUPPORTED_MEDIA_TYPE"
	case Is(err, ErrContentTooLong):
		return "CONTENT_TOO_LONG"
	case Is(err, ErrContentEmpty):
		return "CONTENT_EMPTY"
	case Is(err, ErrDuplicateParticipant):
		return "DUPLICATE_PARTICIPANT"
	case Is(err, ErrChatInactive):
		return "CHAT_INACTIVE"
	case Is(err, ErrInvalidToken):
		return "INVALID_TOKEN"
	case Is(err, ErrParticipantNotFound):
		return "PARTICIPANT_NOT_FOUND"
	}
	return KindOf(err).String()
}

func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindValidation:
		if Is(err, ErrUnsupportedMediaType) {
			return http.StatusUnsupportedMediaType
		}
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	case KindPersistence:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Log writes err at the level its kind deserves. Client mistakes stay
// quiet, storage and unknown failures are errors.
func Log(log *slog.Logger, err error, msg string, args ...any) {
	if err == nil {
		return
	}
	kind := KindOf(err)
	args = append(args, "kind", kind.String(), "error", err.Error())
	switch kind {
	case KindValidation, KindNotFound:
		log.Debug(msg, args...)
	case KindAuthentication, KindConflict:
		log.Info(msg, args...)
	case KindForbidden:
		log.Warn(msg, args...)
	case KindPersistence, KindInternal:
		log.Error(msg, args...)
	}
}
