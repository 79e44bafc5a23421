package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/orgboard/orgboard/internal/identity"
	orgdomain "github.com/orgboard/orgboard/internal/organization/domain"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

// problemPayload is the wire shape for every non-2xx response.
type problemPayload struct {
	Title  string            `json:"title"`
	Detail string            `json:"detail,omitempty"`
	Status int               `json:"status"`
	Errors []ValidationError `json:"errors,omitempty"`
}

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
)

// ErrorHandlingMiddleware converts errors recorded on the gin context into a
// problem payload. Handlers never write error bodies themselves.
func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.AbortWithStatusJSON(status, payload)
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, problemPayload) {
	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, problemPayload{
			Title:  "Validation failed",
			Detail: "one or more fields are invalid",
			Status: http.StatusBadRequest,
			Errors: vErr.Errors,
		}
	}

	if isValidationError(err) {
		code := err.Error()
		return http.StatusBadRequest, problemPayload{
			Title:  "Validation failed",
			Detail: "one or more fields are invalid",
			Status: http.StatusBadRequest,
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: "invalid value",
				},
			},
		}
	}

	switch {
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, identity.ErrInvalidToken),
		errors.Is(err, identity.ErrExpiredToken):
		return http.StatusUnauthorized, problemPayload{
			Title:  "Unauthorized",
			Detail: "a valid bearer token is required",
			Status: http.StatusUnauthorized,
		}
	case errors.Is(err, ErrForbidden),
		errors.Is(err, orgdomain.ErrForbidden),
		errors.Is(err, identity.ErrMissingSubject),
		errors.Is(err, identity.ErrMissingScope):
		return http.StatusForbidden, problemPayload{
			Title:  "Forbidden",
			Detail: "caller is not permitted to perform this operation",
			Status: http.StatusForbidden,
		}
	case isNotFoundError(err):
		return http.StatusNotFound, problemPayload{
			Title:  "Not found",
			Status: http.StatusNotFound,
		}
	case errors.Is(err, orgdomain.ErrMemberExists):
		return http.StatusConflict, problemPayload{
			Title:  "Conflict",
			Detail: "the user is already a member of this organization",
			Status: http.StatusConflict,
		}
	case errors.Is(err, orgdomain.ErrLastOwner):
		return http.StatusConflict, problemPayload{
			Title:  "Conflict",
			Detail: "an organization must retain at least one Owner",
			Status: http.StatusConflict,
		}
	default:
		// Store failures carry the driver's message so operators can see
		// the underlying error code.
		return http.StatusInternalServerError, problemPayload{
			Title:  "Internal server error",
			Detail: err.Error(),
			Status: http.StatusInternalServerError,
		}
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, orgdomain.ErrInvalidName),
		errors.Is(err, orgdomain.ErrInvalidRole),
		errors.Is(err, orgdomain.ErrInvalidUserSub),
		errors.Is(err, orgdomain.ErrInvalidUserName):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, orgdomain.ErrOrganizationNotFound),
		errors.Is(err, orgdomain.ErrMemberNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func validationErrorField(code string) string {
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	return ""
}
