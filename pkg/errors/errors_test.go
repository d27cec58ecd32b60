package errors

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSentinelCodesAreDistinct(t *testing.T) {
	sentinels := []*Error{
		ErrValidation, ErrCredentialRejected, ErrAuthenticationFail, ErrAccountLocked,
		ErrTokenInvalid, ErrTokenSuperseded, ErrNotFound, ErrUnauthorized, ErrForbidden,
		ErrPayloadTooLarge, ErrInternal, ErrCacheMiss, ErrInvalidResetLink, ErrInvalidResetCode,
		ErrProfileIncomplete, ErrProfileExists, ErrProfileImageMissing,
	}
	seen := map[string]bool{}
	for _, e := range sentinels {
		assert.False(t, seen[e.Code], "code %s reused", e.Code)
		seen[e.Code] = true
	}
}

func TestIsDoesNotConfuseValidationWithDomainErrors(t *testing.T) {
	validation := WithMessages(ErrValidation, "Invalid birth date")

	assert.True(t, errors.Is(validation, ErrValidation))
	assert.False(t, errors.Is(validation, ErrInvalidResetLink))
	assert.False(t, errors.Is(validation, ErrProfileIncomplete))
	assert.False(t, errors.Is(validation, ErrProfileExists))
	assert.False(t, errors.Is(validation, ErrProfileImageMissing))
	assert.False(t, errors.Is(WithMessages(ErrCredentialRejected, "weak"), ErrInvalidResetCode))

	assert.True(t, errors.Is(ErrProfileExists, ErrProfileExists))
	assert.False(t, errors.Is(ErrProfileExists, ErrValidation))
	assert.Equal(t, http.StatusBadRequest, ErrProfileExists.Status)
}
