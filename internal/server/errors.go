package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	parkingspotdomain "github.com/smallbiznis/parkingcontrol/internal/parkingspot/domain"
	"github.com/smallbiznis/parkingcontrol/pkg/db/pagination"
	"github.com/smallbiznis/parkingcontrol/pkg/lock"
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
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrConflict           = errors.New("conflict")
	ErrInternal           = errors.New("internal_error")
	ErrNotFound           = errors.New("not_found")
	ErrInvalidRequest     = errors.New("invalid_request")
	ErrServiceUnavailable = errors.New("service_unavailable")
)

const (
	msgLicensePlateInUse   = "Conflict: License Plate Car is already in use!"
	msgParkingSpotInUse    = "Conflict: Parking Spot is already in use!"
	msgApartmentBlockInUse = "Conflict: Parking Spot already registered for this apartment/block!"
	msgParkingSpotNotFound = "Parking Spot not found."
	msgParkingSpotDeleted  = "Parking Spot deleted successfully."
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

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if isValidationError(err) {
		code := validationErrorCode(err)
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: validationErrorMessage(code),
				},
			},
		}
	}

	switch {
	case errors.Is(err, parkingspotdomain.ErrLicensePlateInUse):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: msgLicensePlateInUse,
		}
	case errors.Is(err, parkingspotdomain.ErrParkingSpotInUse):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: msgParkingSpotInUse,
		}
	case errors.Is(err, parkingspotdomain.ErrApartmentBlockInUse):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: msgApartmentBlockInUse,
		}
	case errors.Is(err, ErrConflict),
		errors.Is(err, parkingspotdomain.ErrConflict):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: "conflict",
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: msgParkingSpotNotFound,
		}
	case errors.Is(err, ErrServiceUnavailable),
		errors.Is(err, lock.ErrNotAcquired):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "service_unavailable",
			Message: "service unavailable",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

// classifyErrorForLog feeds the request logger the same type and code the
// client receives.
func classifyErrorForLog(err error) (string, string) {
	status, payload := mapError(err)
	if len(payload.Errors) > 0 {
		return payload.Type, payload.Errors[0].Code
	}
	if status >= http.StatusInternalServerError {
		return payload.Type, "internal_error"
	}
	return payload.Type, payload.Type
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
		errors.Is(err, pagination.ErrInvalidPageRequest),
		errors.Is(err, parkingspotdomain.ErrInvalidID),
		errors.Is(err, parkingspotdomain.ErrInvalidParkingSpot),
		errors.Is(err, parkingspotdomain.ErrInvalidSortField):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, parkingspotdomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func validationErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return "invalid_request"
	case errors.Is(err, pagination.ErrInvalidPageRequest):
		return "invalid_page_request"
	case errors.Is(err, parkingspotdomain.ErrInvalidID):
		return "invalid_id"
	case errors.Is(err, parkingspotdomain.ErrInvalidParkingSpot):
		return "invalid_parking_spot"
	case errors.Is(err, parkingspotdomain.ErrInvalidSortField):
		return "invalid_sort_field"
	default:
		return err.Error()
	}
}

func validationErrorField(code string) string {
	switch code {
	case "invalid_request":
		return "request"
	case "invalid_page_request":
		return "page"
	case "invalid_sort_field":
		return "sort"
	}
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	return ""
}

func validationErrorMessage(code string) string {
	switch code {
	case "invalid_request":
		return "invalid request"
	case "invalid_page_request":
		return "invalid page request"
	case "invalid_id":
		return "invalid id"
	default:
		return "invalid value"
	}
}
