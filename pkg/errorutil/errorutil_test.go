package errorutil_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk/pkg/errorutil"
)

func TestToDomainErrorKeepsWrappedDomainError(t *testing.T) {
	notFound := errorutil.NewNotFound("ticket", map[string]any{"id": int64(7)})
	wrapped := fmt.Errorf("lookup: %w", notFound)

	domainErr := errorutil.ToDomainError(wrapped)
	require.NotNil(t, domainErr)
	assert.Equal(t, errorutil.CodeNotFound, domainErr.Code)
	assert.Equal(t, http.StatusNotFound, domainErr.HTTPStatus)
	assert.Equal(t, "ticket not found", domainErr.Message)
	assert.True(t, errorutil.IsNotFound(wrapped))
	assert.False(t, errorutil.IsConflict(wrapped))
}

func TestToDomainErrorMasksUnknownErrors(t *testing.T) {
	cause := errors.New("connection refused")

	domainErr := errorutil.ToDomainError(cause)
	require.NotNil(t, domainErr)
	assert.Equal(t, errorutil.CodeInternal, domainErr.Code)
	assert.Equal(t, http.StatusInternalServerError, domainErr.HTTPStatus)
	assert.Equal(t, "internal server error", domainErr.Message)
	assert.ErrorIs(t, domainErr, cause)
}

func TestToDomainErrorNil(t *testing.T) {
	assert.Nil(t, errorutil.ToDomainError(nil))
}

func TestUpstreamUnavailableRendersAsServerError(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := errorutil.NewUpstreamUnavailable("user-service", cause, map[string]any{"status": 503})

	domainErr := errorutil.ToDomainError(err)
	assert.Equal(t, http.StatusInternalServerError, domainErr.HTTPStatus)
	assert.Equal(t, "user-service", domainErr.Details["peer"])
	assert.Equal(t, 503, domainErr.Details["status"])
	assert.True(t, errorutil.IsUpstreamUnavailable(err))
	assert.ErrorIs(t, err, cause)
}
