package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatusFromError(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{ErrMessageNotFound, http.StatusNotFound},
		{fmt.Errorf("get room: %w", ErrRoomNotFound), http.StatusNotFound},
		{ErrNotBlocked, http.StatusNotFound},
		{fmt.Errorf("%w: unknown subject", ErrInvalidToken), http.StatusUnauthorized},
		{ErrTokenExpired, http.StatusUnauthorized},
		{ErrNotSender, http.StatusForbidden},
		{ErrBlocked, http.StatusForbidden},
		{ErrAlreadyBlocked, http.StatusConflict},
		{ErrSelfBlock, http.StatusBadRequest},
		{ErrEmptyContent, http.StatusBadRequest},
		{ErrFileTooLarge, http.StatusRequestEntityTooLarge},
		{ErrRateLimited, http.StatusTooManyRequests},
		{NewAPIError("teapot", http.StatusTeapot), http.StatusTeapot},
		{errors.New("connection reset"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, HTTPStatusFromError(tc.err), tc.err.Error())
	}
}

func TestIsClientError(t *testing.T) {
	assert.False(t, IsClientError(nil))
	assert.True(t, IsClientError(ErrEmptyContent))
	assert.True(t, IsClientError(fmt.Errorf("wrapped: %w", ErrMessageNotFound)))
	assert.False(t, IsClientError(errors.New("deadlock detected")))
}
