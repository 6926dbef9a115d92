package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "equiptrack/pkg/errors"
)

type Response[T any] struct {
	Status   bool     `json:"status"`
	Message  string   `json:"message"`
	Body     T        `json:"body,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

type ListBody[T any] struct {
	List       []T             `json:"list"`
	Pagination *PaginationMeta `json:"pagination"`
}

type PaginationMeta struct {
	TotalCount uint64 `json:"total_count"`
	TotalPages int    `json:"total_pages"`
	Page       int    `json:"page"`
	Limit      int    `json:"limit"`
}

// SuccessOne returns a single object.
func SuccessOne[T any](c echo.Context, code int, message string, data T) error {
	return c.JSON(code, Response[T]{
		Status:  true,
		Message: message,
		Body:    data,
	})
}

// SuccessWithWarnings is SuccessOne plus non-fatal sync warnings: the
// operation succeeded locally but the durable write lagged behind.
func SuccessWithWarnings[T any](c echo.Context, code int, message string, data T, warnings []string) error {
	return c.JSON(code, Response[T]{
		Status:   true,
		Message:  message,
		Body:     data,
		Warnings: warnings,
	})
}

func SuccessList[T any](c echo.Context, message string, list []T, total uint64, page, limit int) error {
	totalPages := 0
	if limit > 0 {
		totalPages = int((total + uint64(limit) - 1) / uint64(limit))
	}

	if list == nil {
		list = make([]T, 0)
	}

	body := ListBody[T]{
		List: list,
		Pagination: &PaginationMeta{
			TotalCount: total,
			TotalPages: totalPages,
			Page:       page,
			Limit:      limit,
		},
	}

	return c.JSON(http.StatusOK, Response[ListBody[T]]{
		Status:  true,
		Message: message,
		Body:    body,
	})
}

// statusByError maps sentinel errors to HTTP status codes.
var statusByError = map[error]int{
	apperrors.ErrNotFound:                http.StatusNotFound,
	apperrors.ErrBadRequest:              http.StatusBadRequest,
	apperrors.ErrUnauthorized:            http.StatusUnauthorized,
	apperrors.ErrEmptyAuthHeader:         http.StatusUnauthorized,
	apperrors.ErrInvalidAuthHeader:       http.StatusUnauthorized,
	apperrors.ErrInvalidToken:            http.StatusUnauthorized,
	apperrors.ErrTokenExpired:            http.StatusUnauthorized,
	apperrors.ErrTokenIsNotRefresh:       http.StatusUnauthorized,
	apperrors.ErrTokenIsNotAccess:        http.StatusUnauthorized,
	apperrors.ErrForbidden:               http.StatusForbidden,
	apperrors.ErrRequestAlreadyFinal:     http.StatusConflict,
	apperrors.ErrInvalidTransition:       http.StatusUnprocessableEntity,
	apperrors.ErrUserIDNotFoundInContext: http.StatusUnauthorized,
}

func ErrorResponse(c echo.Context, err error) error {
	code := http.StatusInternalServerError
	msg := err.Error()

	var httpErr *apperrors.HttpError
	var inputErr *apperrors.InvalidInputError

	switch {
	case errors.As(err, &httpErr):
		// Only the user-facing message leaves the server.
		code = httpErr.Code
		msg = httpErr.Message
	case errors.As(err, &inputErr):
		code = http.StatusBadRequest
		msg = inputErr.Message
	default:
		for sentinel, statusCode := range statusByError {
			if errors.Is(err, sentinel) {
				code = statusCode
				msg = sentinel.Error()
				break
			}
		}
	}

	return c.JSON(code, Response[any]{
		Status:  false,
		Message: msg,
	})
}
