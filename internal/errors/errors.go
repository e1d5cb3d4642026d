package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrProjectNotFound is returned when a project id does not exist.
	ErrProjectNotFound = errors.New("project not found")
	// ErrTaskNotFound is returned when a task id does not exist.
	ErrTaskNotFound = errors.New("task not found")
	// ErrUserNotFound is returned when a user referenced by a session no longer exists.
	ErrUserNotFound = errors.New("user not found")
	// ErrProjectAccessDenied is returned when a project exists but belongs to another user.
	ErrProjectAccessDenied = errors.New("unauthorized access to project")
	// ErrTaskAccessDenied is returned when a task exists but its project belongs to another user.
	ErrTaskAccessDenied = errors.New("unauthorized access to task")
	// ErrTargetProjectAccessDenied is returned when a task reassignment names a project owned by someone else.
	ErrTargetProjectAccessDenied = errors.New("unauthorized access to target project")
	// ErrUnauthenticated is returned when no valid session is bound to the request.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrEmailTaken is returned when registering with an email that already exists.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidSortField is returned when a filter names a field outside the sortable set.
	ErrInvalidSortField = errors.New("invalid sort field")
	// ErrTitleRequired is returned when a title is missing or blank.
	ErrTitleRequired = errors.New("title is required")
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

// MapErrorToHTTP maps domain errors to HTTP errors. NotFound is reported
// before any ownership outcome; services only return an access-denied error
// for resources that were actually fetched.
func MapErrorToHTTP(err error) *HTTPError {
	switch err {
	case ErrProjectNotFound:
		return NewHTTPError(http.StatusNotFound, err.Error(), "PROJECT_NOT_FOUND")
	case ErrTaskNotFound:
		return NewHTTPError(http.StatusNotFound, err.Error(), "TASK_NOT_FOUND")
	case ErrUserNotFound:
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "USER_NOT_FOUND")
	case ErrProjectAccessDenied:
		return NewHTTPError(http.StatusForbidden, err.Error(), "PROJECT_ACCESS_DENIED")
	case ErrTaskAccessDenied:
		return NewHTTPError(http.StatusForbidden, err.Error(), "TASK_ACCESS_DENIED")
	case ErrTargetProjectAccessDenied:
		return NewHTTPError(http.StatusForbidden, err.Error(), "TARGET_PROJECT_ACCESS_DENIED")
	case ErrUnauthenticated:
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "UNAUTHENTICATED")
	case ErrEmailTaken:
		return NewHTTPError(http.StatusConflict, err.Error(), "EMAIL_TAKEN")
	case ErrInvalidSortField:
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INVALID_SORT_FIELD")
	case ErrTitleRequired:
		return NewHTTPError(http.StatusBadRequest, err.Error(), "TITLE_REQUIRED")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
