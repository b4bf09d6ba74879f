package util

import (
	"errors"
	"net/http"

	"assesspro_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Response is the JSON envelope every endpoint replies with.
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// PageResponse wraps paginated listings.
type PageResponse struct {
	List  interface{} `json:"list"`
	Total int64       `json:"total"`
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    http.StatusOK,
		Message: "success",
		Data:    data,
	})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    http.StatusCreated,
		Message: "created",
		Data:    data,
	})
}

func Error(c *gin.Context, code int, message string) {
	c.JSON(code, Response{
		Code:    code,
		Message: message,
	})
}

func Unauthorized(c *gin.Context) {
	Error(c, http.StatusUnauthorized, "Unauthorized")
}

func Forbidden(c *gin.Context) {
	Error(c, http.StatusForbidden, "Forbidden")
}

func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

func NotFound(c *gin.Context) {
	Error(c, http.StatusNotFound, "Resource not found")
}

func InternalServerError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, "Internal server error")
}

func LogInternalError(c *gin.Context, err error) {
	logger.Log.Error("Internal server error", zap.Error(err))
	InternalServerError(c)
}

// RespondError maps a service error onto the HTTP taxonomy. A cooldown
// rejection carries nextAvailableAt so the frontend can show a countdown.
func RespondError(c *gin.Context, err error) {
	var cooldownErr *CooldownError
	switch {
	case errors.As(err, &cooldownErr):
		c.JSON(http.StatusConflict, Response{
			Code:    http.StatusConflict,
			Message: cooldownErr.Error(),
			Data:    gin.H{"nextAvailableAt": cooldownErr.NextAvailableAt},
		})
	case errors.Is(err, ErrTestNotFound),
		errors.Is(err, ErrAttemptNotFound),
		errors.Is(err, ErrQuestionNotFound),
		errors.Is(err, ErrAnswerOptionNotFound),
		errors.Is(err, ErrUserNotFound):
		Error(c, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrPermissionDenied):
		Forbidden(c)
	case errors.Is(err, ErrAttemptFinished):
		Error(c, http.StatusConflict, err.Error())
	case errors.Is(err, ErrQuestionNotInTest),
		errors.Is(err, ErrOptionNotInQuestion),
		errors.Is(err, ErrTestNotPublishable),
		errors.Is(err, ErrUsernameTaken),
		errors.Is(err, ErrEmailRegistered):
		BadRequest(c, err.Error())
	case errors.Is(err, ErrInvalidCredentials):
		Unauthorized(c)
	default:
		LogInternalError(c, err)
	}
}
