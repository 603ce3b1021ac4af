package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"resumaker/internal/api/middleware"
	"resumaker/internal/editor"
	"resumaker/internal/resume"
	"resumaker/internal/store"
)

func Error(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"error": msg})
}

func BadRequest(c *gin.Context, msg string) { Error(c, http.StatusBadRequest, msg) }
func Forbidden(c *gin.Context, msg string)  { Error(c, http.StatusForbidden, msg) }
func NotFound(c *gin.Context, msg string)   { Error(c, http.StatusNotFound, msg) }
func Conflict(c *gin.Context, msg string)   { Error(c, http.StatusConflict, msg) }
func Internal(c *gin.Context, msg string)   { Error(c, http.StatusInternalServerError, msg) }

// DomainError 将 store/resume/editor 的错误映射为 HTTP 状态码。
func DomainError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	switch {
	case errors.Is(err, store.ErrResumeNotFound):
		NotFound(c, "resume not found")
	case errors.Is(err, resume.ErrSectionNotFound):
		NotFound(c, "section not found")
	case errors.Is(err, editor.ErrItemNotFound):
		NotFound(c, "item not found")
	case errors.Is(err, store.ErrResumeLimit):
		Forbidden(c, "resume limit reached")
	case errors.Is(err, resume.ErrDuplicateSectionID),
		errors.Is(err, resume.ErrDuplicateBasicInfo):
		Conflict(c, err.Error())
	case errors.Is(err, resume.ErrPageOutOfRange),
		errors.Is(err, resume.ErrPageNotRemovable),
		errors.Is(err, resume.ErrBasicInfoLocked),
		errors.Is(err, resume.ErrInvalidContent),
		errors.Is(err, resume.ErrInvalidTitle),
		errors.Is(err, resume.ErrInvalidEditorType),
		errors.Is(err, resume.ErrInvalidDateFormat),
		errors.Is(err, resume.ErrDuplicateOrder),
		errors.Is(err, resume.ErrInvalidLayout),
		errors.Is(err, editor.ErrUnknownField),
		errors.Is(err, editor.ErrInvalidDate),
		errors.Is(err, editor.ErrWrongKind),
		errors.As(err, &verrs):
		BadRequest(c, err.Error())
	default:
		middleware.LoggerFromContext(c).Error("request failed", "error", err)
		Internal(c, "internal error")
	}
}
