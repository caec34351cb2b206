package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	auditdomain "github.com/koomyhq/koomy/internal/audit/domain"
	"github.com/koomyhq/koomy/internal/authorization"
	communitydomain "github.com/koomyhq/koomy/internal/community/domain"
	fullaccessdomain "github.com/koomyhq/koomy/internal/fullaccess/domain"
	membershipdomain "github.com/koomyhq/koomy/internal/membership/domain"
	plandomain "github.com/koomyhq/koomy/internal/plan/domain"
	quotadomain "github.com/koomyhq/koomy/internal/quota/domain"
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

type errorPayload struct {
	Type    string            `json:"type"`
	Code    string            `json:"code,omitempty"`
	Message string            `json:"message"`
	Details map[string]any    `json:"details,omitempty"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrConflict       = errors.New("conflict")
	ErrInternal       = errors.New("internal_error")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
	ErrTooManyJoins   = errors.New("too_many_joins")
)

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
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
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

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if payload, ok := asQuotaConflict(err); ok {
		return http.StatusConflict, payload
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if isValidationError(err) {
		code := err.Error()
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
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
		errors.Is(err, authorization.ErrInvalidActor):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, ErrForbidden),
		errors.Is(err, authorization.ErrForbidden),
		errors.Is(err, authorization.ErrInvalidDomain):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "forbidden",
		}
	case errors.Is(err, ErrConflict),
		errors.Is(err, communitydomain.ErrSlugTaken),
		errors.Is(err, membershipdomain.ErrAlreadyMember):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Code:    err.Error(),
			Message: "conflict",
		}
	case errors.Is(err, ErrTooManyJoins):
		return http.StatusTooManyRequests, errorPayload{
			Type:    "rate_limited",
			Message: "too many join requests, retry later",
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, ErrInternal):
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

// asQuotaConflict maps the payload-carrying quota rejections to 409 bodies
// the dashboard renders verbatim.
func asQuotaConflict(err error) (errorPayload, bool) {
	var limitErr *quotadomain.MemberLimitReachedError
	if errors.As(err, &limitErr) {
		return errorPayload{
			Type:    "conflict",
			Code:    "MEMBER_LIMIT_REACHED",
			Message: limitErr.Error(),
			Details: map[string]any{
				"current":   limitErr.Current,
				"max":       limitErr.Max,
				"plan_name": limitErr.PlanName,
			},
		}, true
	}

	var planErr *quotadomain.PlanLimitExceededError
	if errors.As(err, &planErr) {
		return errorPayload{
			Type:    "conflict",
			Code:    "PLAN_LIMIT_EXCEEDED",
			Message: planErr.Error(),
			Details: map[string]any{
				"current":   planErr.Current,
				"max":       planErr.Max,
				"plan_name": planErr.PlanName,
			},
		}, true
	}

	return errorPayload{}, false
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
		errors.Is(err, plandomain.ErrInvalidID),
		errors.Is(err, plandomain.ErrInvalidCode),
		errors.Is(err, communitydomain.ErrInvalidID),
		errors.Is(err, communitydomain.ErrInvalidName),
		errors.Is(err, communitydomain.ErrInvalidSlug),
		errors.Is(err, membershipdomain.ErrInvalidID),
		errors.Is(err, membershipdomain.ErrInvalidUser),
		errors.Is(err, membershipdomain.ErrInvalidName),
		errors.Is(err, membershipdomain.ErrInvalidEmail),
		errors.Is(err, membershipdomain.ErrInvalidRole),
		errors.Is(err, fullaccessdomain.ErrInvalidReason),
		errors.Is(err, fullaccessdomain.ErrInvalidGrantedBy),
		errors.Is(err, fullaccessdomain.ErrInvalidExpiry),
		errors.Is(err, auditdomain.ErrInvalidPageToken),
		errors.Is(err, auditdomain.ErrInvalidTimeRange):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, plandomain.ErrNotFound),
		errors.Is(err, communitydomain.ErrNotFound),
		errors.Is(err, membershipdomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

// classifyErrorForLog feeds the request logger the same taxonomy the wire
// payload uses.
func classifyErrorForLog(err error) (string, string) {
	_, payload := mapError(err)
	return payload.Type, payload.Code
}

func validationErrorField(code string) string {
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	return ""
}
