package errors

import (
	"net/http"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

// ErrorResponse 표준 에러 응답 구조
type ErrorResponse struct {
	Error   string `json:"error"`   // 에러 코드 (프론트엔드에서 매핑용)
	Message string `json:"message"` // 사용자 메시지
}

// ValidationErrorResponse 필드별 검증 오류 포함
type ValidationErrorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

var exposeInternal atomic.Bool

// SetExposeInternal controls whether 500 responses carry the underlying message.
// Enabled only in development.
func SetExposeInternal(expose bool) {
	exposeInternal.Store(expose)
}

// RespondWithError 에러 응답 헬퍼
func RespondWithError(c *gin.Context, statusCode int, errorCode string, message string) {
	c.JSON(statusCode, ErrorResponse{
		Error:   errorCode,
		Message: message,
	})
}

// 자주 사용하는 에러 응답 단축 함수들

func Unauthorized(c *gin.Context, code, message string) {
	if code == "" {
		code = AuthUnauthorized
	}
	if message == "" {
		message = "authentication required"
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: code, Message: message})
}

func BadRequest(c *gin.Context, errorCode string, message string) {
	RespondWithError(c, http.StatusBadRequest, errorCode, message)
}

func NotFound(c *gin.Context, errorCode string, message string) {
	RespondWithError(c, http.StatusNotFound, errorCode, message)
}

func Conflict(c *gin.Context, errorCode string, message string) {
	RespondWithError(c, http.StatusConflict, errorCode, message)
}

func InternalError(c *gin.Context, err error) {
	message := "internal server error, please try again later"
	if exposeInternal.Load() && err != nil {
		message = err.Error()
	}
	RespondWithError(c, http.StatusInternalServerError, InternalServerError, message)
}

// RespondWithValidationError 검증 에러 응답 (status: 400 body / 422 query, checkout)
func RespondWithValidationError(c *gin.Context, status int, code string, fields map[string]string) {
	if code == "" {
		code = ValidationInvalidInput
	}
	c.JSON(status, ValidationErrorResponse{
		Error:   code,
		Message: "request validation failed",
		Fields:  fields,
	})
}

// StatusFor maps an error kind to its HTTP status. Validation defaults to 400;
// callers that must answer 422 use RespondWithValidationError directly.
func StatusFor(kind Kind) int {
	switch kind {
	case KindValidation, KindCartEmpty:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Respond writes err using its kind. Internal messages stay hidden outside development.
func Respond(c *gin.Context, err error) {
	appErr := As(err)
	if appErr.Kind == KindInternal {
		InternalError(c, err)
		return
	}
	RespondWithError(c, StatusFor(appErr.Kind), appErr.Code, appErr.Message)
}
