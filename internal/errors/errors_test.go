package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapErrorToHTTP(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{name: "post not found", err: ErrPostNotFound, wantStatus: http.StatusNotFound, wantCode: "POST_NOT_FOUND"},
		{name: "wrapped page not found", err: fmt.Errorf("get page: %w", ErrPageNotFound), wantStatus: http.StatusNotFound, wantCode: "PAGE_NOT_FOUND"},
		{name: "no featured post", err: ErrNoFeaturedPost, wantStatus: http.StatusNotFound, wantCode: "NO_FEATURED_POST"},
		{name: "invalid input", err: fmt.Errorf("%w: publishedAt", ErrInvalidInput), wantStatus: http.StatusBadRequest, wantCode: "INVALID_INPUT"},
		{name: "conflict", err: fmt.Errorf("%w: slug", ErrConflict), wantStatus: http.StatusConflict, wantCode: "CONFLICT"},
		{name: "credentials", err: ErrInvalidCredentials, wantStatus: http.StatusUnauthorized, wantCode: "INVALID_CREDENTIALS"},
		{name: "forbidden", err: ErrForbidden, wantStatus: http.StatusForbidden, wantCode: "FORBIDDEN"},
		{name: "unknown", err: errors.New("dial tcp: connection refused"), wantStatus: http.StatusInternalServerError, wantCode: "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			httpErr := MapErrorToHTTP(tt.err)
			assert.Equal(t, tt.wantStatus, httpErr.StatusCode)
			assert.Equal(t, tt.wantCode, httpErr.Code)
		})
	}
}

func TestMapErrorToHTTP_HidesInternalDetails(t *testing.T) {
	httpErr := MapErrorToHTTP(errors.New("Error 1045: Access denied for user 'root'"))
	assert.Equal(t, "internal server error", httpErr.ToErrorResponse().Error)
}

func TestMapErrorToHTTP_InvalidInputKeepsFieldDetail(t *testing.T) {
	httpErr := MapErrorToHTTP(fmt.Errorf("%w: featured must be a boolean", ErrInvalidInput))
	assert.Equal(t, "invalid input: featured must be a boolean", httpErr.Message)
}
