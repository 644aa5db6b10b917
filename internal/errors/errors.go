package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrPostNotFound is returned when a post id or slug does not resolve.
	ErrPostNotFound = errors.New("post not found")
	// ErrNoFeaturedPost is returned when there are no posts to feature.
	ErrNoFeaturedPost = errors.New("no featured post found")
	// ErrCategoryNotFound is returned when a category does not resolve.
	ErrCategoryNotFound = errors.New("category not found")
	// ErrUserNotFound is returned when a user does not resolve.
	ErrUserNotFound = errors.New("user not found")
	// ErrPageNotFound is returned when a page id is unknown.
	ErrPageNotFound = errors.New("page not found")
	// ErrInvalidInput is returned when a payload cannot be normalized.
	ErrInvalidInput = errors.New("invalid input")
	// ErrConflict is returned when a unique slug or username is already taken.
	ErrConflict = errors.New("resource already exists")
	// ErrInvalidCredentials is returned when username or password is incorrect.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrInvalidRefreshToken is returned when a refresh token is invalid or expired.
	ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")
	// ErrUnauthorized is returned when a request carries no valid session.
	ErrUnauthorized = errors.New("authentication required")
	// ErrForbidden is returned when the session is not an admin.
	ErrForbidden = errors.New("admin access required")
	// ErrRegistrationClosed is returned when self-registration is disabled.
	ErrRegistrationClosed = errors.New("registration is disabled")
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

var notFound = []struct {
	err  error
	code string
}{
	{ErrPostNotFound, "POST_NOT_FOUND"},
	{ErrNoFeaturedPost, "NO_FEATURED_POST"},
	{ErrCategoryNotFound, "CATEGORY_NOT_FOUND"},
	{ErrUserNotFound, "USER_NOT_FOUND"},
	{ErrPageNotFound, "PAGE_NOT_FOUND"},
}

// MapErrorToHTTP maps domain errors to HTTP errors. Wrapped errors are
// matched with errors.Is; anything unknown becomes a generic 500.
func MapErrorToHTTP(err error) *HTTPError {
	for _, nf := range notFound {
		if errors.Is(err, nf.err) {
			return NewHTTPError(http.StatusNotFound, nf.err.Error(), nf.code)
		}
	}

	switch {
	case errors.Is(err, ErrInvalidInput):
		// wrapped messages name the offending field
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INVALID_INPUT")
	case errors.Is(err, ErrConflict):
		return NewHTTPError(http.StatusConflict, err.Error(), "CONFLICT")
	case errors.Is(err, ErrInvalidCredentials):
		return NewHTTPError(http.StatusUnauthorized, ErrInvalidCredentials.Error(), "INVALID_CREDENTIALS")
	case errors.Is(err, ErrInvalidRefreshToken):
		return NewHTTPError(http.StatusUnauthorized, ErrInvalidRefreshToken.Error(), "INVALID_REFRESH_TOKEN")
	case errors.Is(err, ErrUnauthorized):
		return NewHTTPError(http.StatusUnauthorized, ErrUnauthorized.Error(), "UNAUTHORIZED")
	case errors.Is(err, ErrForbidden):
		return NewHTTPError(http.StatusForbidden, ErrForbidden.Error(), "FORBIDDEN")
	case errors.Is(err, ErrRegistrationClosed):
		return NewHTTPError(http.StatusForbidden, ErrRegistrationClosed.Error(), "REGISTRATION_CLOSED")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
