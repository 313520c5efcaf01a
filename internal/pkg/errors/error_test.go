package errors

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewAndIs(t *testing.T) {
	err := New(ErrRelocationDuplicate)
	assert.True(t, Is(err, ErrRelocationDuplicate))
	assert.False(t, Is(err, ErrRelocationNotFound))
	assert.Equal(t, http.StatusConflict, err.HTTPStatus())
	assert.Equal(t, "An in-progress relocation already exists for this owner", err.Message)
}

func TestWrapKeepsExistingCode(t *testing.T) {
	inner := New(ErrRelocationDuplicate)
	wrapped := Wrap(inner, ErrRelocationPersistence)
	assert.True(t, Is(wrapped, ErrRelocationDuplicate), "wrapping must not overwrite an existing code")
}

func TestWrapNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrInternalServer))
}

func TestExtractCode(t *testing.T) {
	assert.Equal(t, ErrRelocationOwnerNotFound, ExtractCode(New(ErrRelocationOwnerNotFound)))
	assert.Equal(t, ErrInternalServer, ExtractCode(errors.New("plain error")))
}

func TestGetDetailsHidesInternalCauses(t *testing.T) {
	cause := errors.New("dial tcp 10.0.0.1:5432: connection refused")

	internal := Wrap(cause, ErrRelocationPersistence)
	assert.Empty(t, GetDetails(internal), "server errors must not leak their cause")

	client := Wrap(cause, ErrRelocationInvalidRequest)
	assert.Equal(t, cause.Error(), GetDetails(client))

	detailed := New(ErrRelocationInvalidRequest, "owner is required")
	assert.Equal(t, "owner is required", GetDetails(detailed))
}

func TestHTTPStatusMapping(t *testing.T) {
	tests := []struct {
		code int
		want int
	}{
		{ErrRelocationInvalidRequest, http.StatusBadRequest},
		{ErrRelocationOwnerNotFound, http.StatusBadRequest},
		{ErrRelocationDuplicate, http.StatusConflict},
		{ErrRelocationCapacityExceeded, http.StatusRequestEntityTooLarge},
		{ErrRelocationStorageFailed, http.StatusInternalServerError},
		{ErrRelocationDisabled, http.StatusForbidden},
		{ErrRelocationUploadTimeout, http.StatusRequestTimeout},
		{ErrRelocationNotFound, http.StatusNotFound},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, GetHTTPStatus(tt.code), "code %d", tt.code)
	}
}
