package errors

import (
	"errors"
	"net/http"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrForbidden       = errors.New("forbidden")
	ErrBadRequest      = errors.New("bad request")
	ErrConflict        = errors.New("conflict")
	ErrInternalServer  = errors.New("internal server error")
	ErrInvalidToken    = errors.New("invalid token")
	ErrTokenExpired    = errors.New("token expired")
	ErrUserNotFound    = errors.New("user not found")
	ErrUserDisabled    = errors.New("user account is disabled")
	ErrListingNotFound = errors.New("listing not found")
	ErrRoomNotFound    = errors.New("chat room not found")
	ErrMessageNotFound = errors.New("message not found")
	ErrNotParticipant  = errors.New("access denied")
	ErrNotSender       = errors.New("only the sender can modify this message")
	ErrSelfChat        = errors.New("cannot chat with yourself")
	ErrBlocked         = errors.New("chat blocked between users")
	ErrSelfBlock       = errors.New("cannot block yourself")
	ErrAlreadyBlocked  = errors.New("user already blocked")
	ErrNotBlocked      = errors.New("user not blocked")
	ErrEmptyContent    = errors.New("message content is empty")
	ErrInvalidReaction = errors.New("invalid reaction")
	ErrFileTooLarge    = errors.New("file too large")
	ErrRateLimited     = errors.New("rate limit exceeded")
)

type APIError struct {
	Message string `json:"error"`
	Code    int    `json:"code"`
}

func (e *APIError) Error() string {
	return e.Message
}

func NewAPIError(message string, code int) *APIError {
	return &APIError{
		Message: message,
		Code:    code,
	}
}

func HTTPStatusFromError(err error) int {
	var apiErr *APIError
	switch {
	case errors.As(err, &apiErr):
		return apiErr.Code
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrUserNotFound), errors.Is(err, ErrListingNotFound),
		errors.Is(err, ErrRoomNotFound), errors.Is(err, ErrMessageNotFound), errors.Is(err, ErrNotBlocked):
		return http.StatusNotFound
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrInvalidToken), errors.Is(err, ErrTokenExpired),
		errors.Is(err, ErrUserDisabled):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden), errors.Is(err, ErrNotParticipant), errors.Is(err, ErrNotSender),
		errors.Is(err, ErrBlocked):
		return http.StatusForbidden
	case errors.Is(err, ErrConflict), errors.Is(err, ErrAlreadyBlocked):
		return http.StatusConflict
	case errors.Is(err, ErrBadRequest), errors.Is(err, ErrSelfChat), errors.Is(err, ErrSelfBlock),
		errors.Is(err, ErrEmptyContent), errors.Is(err, ErrInvalidReaction):
		return http.StatusBadRequest
	case errors.Is(err, ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// IsClientError reports whether err was caused by the caller rather than
// by the store or the runtime. Chat frames failing this way are dropped
// without closing the connection.
func IsClientError(err error) bool {
	if err == nil {
		return false
	}
	return HTTPStatusFromError(err) < http.StatusInternalServerError
}
