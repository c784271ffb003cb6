package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"unicode"
	"unicode/utf8"

	"catering/config"
	"catering/logger"
	"catering/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	mysqldriver "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// APIError an error carrying its HTTP status and client-facing message
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string { return e.Message }

func errBadRequest(msg string) *APIError {
	return &APIError{Status: http.StatusBadRequest, Message: msg}
}

func errNotFound(msg string) *APIError {
	return &APIError{Status: http.StatusNotFound, Message: msg}
}

var errUnauthorized = &APIError{Status: http.StatusUnauthorized, Message: "Unauthorized"}

// SafeErrorMessage hides internal error details from clients in release mode
func SafeErrorMessage(err error, fallback string) string {
	return config.SafeErrorMessage(err, fallback)
}

// HandleError maps err to a status and message and writes the error envelope
func HandleError(c *gin.Context, err error) {
	status, msg := translateError(err)
	if status >= http.StatusInternalServerError {
		logger.L().Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		_ = c.Error(err)
	}
	Error(c, status, msg)
}

func translateError(err error) (int, string) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status, apiErr.Message
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return http.StatusBadRequest, validationMessage(verrs)
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) ||
		errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return http.StatusBadRequest, "Validation error: invalid request body"
	}

	var ruleErr *service.RuleError
	if errors.As(err, &ruleErr) {
		return http.StatusBadRequest, sentenceCase(ruleErr.Error())
	}
	if errors.Is(err, service.ErrParentCategoryMissing) {
		return http.StatusNotFound, "Parent category not found"
	}
	if errors.Is(err, service.ErrEmailDisabled) {
		return http.StatusBadRequest, "Email sharing is not enabled"
	}
	if errors.Is(err, service.ErrStorageDisabled) {
		return http.StatusServiceUnavailable, "Image storage is not configured"
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound, "Record not found"
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return http.StatusConflict, "A record with this value already exists"
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return http.StatusBadRequest, "Referenced record does not exist"
	}

	var myErr *mysqldriver.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case 1062:
			return http.StatusConflict, "A record with this value already exists"
		case 1451, 1452:
			return http.StatusBadRequest, "Referenced record does not exist"
		}
	}

	return http.StatusInternalServerError, SafeErrorMessage(err, "Internal server error")
}

func sentenceCase(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[n:]
}
