package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/avoronin/go-taskhub/internal/services"
)

var errInvalidRequestBody = errors.New("invalid request body")

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func newAPIError(code int, message string) apiError {
	return apiError{
		Code:    code,
		Message: message,
	}
}

func (e apiError) Error() string {
	return e.Message
}

func abort(c *gin.Context, err apiError) {
	c.AbortWithStatusJSON(err.Code, envelope{
		Success: false,
		Message: err.Message,
		Data:    nil,
	})
}

func newStatusTextError(status int) apiError {
	return newAPIError(status, http.StatusText(status))
}

func newBadRequestError(message string) apiError {
	return newAPIError(http.StatusBadRequest, message)
}

func newUnauthorizedError(message string) apiError {
	return newAPIError(http.StatusUnauthorized, message)
}

func newNotFoundError(message string) apiError {
	return newAPIError(http.StatusNotFound, message)
}

func newConflictError(message string) apiError {
	return newAPIError(http.StatusConflict, message)
}

// abortServiceError maps the service error taxonomy to HTTP statuses.
// Anything outside the taxonomy is an internal failure and is returned
// as a generic 500 without leaking the underlying error.
func (h *handlerImpl) abortServiceError(c *gin.Context, err error) {
	var validationErr *services.ValidationError
	switch {
	case errors.As(err, &validationErr):
		abort(c, newBadRequestError(validationErr.Error()))
	case errors.Is(err, services.ErrInvalidCredentials):
		abort(c, newUnauthorizedError(services.ErrInvalidCredentials.Error()))
	case errors.Is(err, services.ErrEmailTaken):
		abort(c, newConflictError(services.ErrEmailTaken.Error()))
	case errors.Is(err, services.ErrTaskNotFound):
		abort(c, newNotFoundError(services.ErrTaskNotFound.Error()))
	case errors.Is(err, services.ErrUserNotFound):
		abort(c, newNotFoundError(services.ErrUserNotFound.Error()))
	default:
		h.logger.Error().
			Err(err).
			Str("path", c.FullPath()).
			Msg("internal error")
		abort(c, newStatusTextError(http.StatusInternalServerError))
	}
}
