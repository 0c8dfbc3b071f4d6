package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ogurasousui/codex-shift-clean-arch/internal/core/concept"
	"github.com/ogurasousui/codex-shift-clean-arch/internal/core/employee"
	"github.com/ogurasousui/codex-shift-clean-arch/internal/core/shift"
)

const internalErrorMessage = "Error interno del servidor."

// errorResponse はクライアントへ返すエラー本文です。
type errorResponse struct {
	StatusCode int    `json:"Status Code"`
	Message    string `json:"Mensaje"`
}

func toStatusCode(err error) int {
	switch {
	case errors.Is(err, concept.ErrConceptNotFound),
		errors.Is(err, shift.ErrEmployeeNotFound),
		errors.Is(err, shift.ErrDocumentNotFound),
		errors.Is(err, employee.ErrEmployeeNotFound):
		return http.StatusNotFound
	case errors.Is(err, shift.ErrRejected),
		errors.Is(err, shift.ErrInvalidDateRange),
		errors.Is(err, shift.ErrInvalidEmployee),
		errors.Is(err, shift.ErrInvalidConcept),
		errors.Is(err, shift.ErrMissingDate),
		errors.Is(err, concept.ErrInvalidID),
		errors.Is(err, employee.ErrInvalidID),
		errors.Is(err, employee.ErrInvalidFirstName),
		errors.Is(err, employee.ErrInvalidLastName),
		errors.Is(err, employee.ErrInvalidEmail),
		errors.Is(err, employee.ErrInvalidDocumentNumber),
		errors.Is(err, employee.ErrMissingBirthDate),
		errors.Is(err, employee.ErrMissingHireDate),
		errors.Is(err, employee.ErrUnderage),
		errors.Is(err, employee.ErrHireDateInFuture),
		errors.Is(err, employee.ErrHasShifts),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, employee.ErrDocumentAlreadyExists),
		errors.Is(err, employee.ErrEmailAlreadyExists):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeError はエラー種別に応じたステータスで応答します。分類できないエラーは内容を返しません。
func writeError(c *gin.Context, logger *zap.Logger, err error) {
	code := toStatusCode(err)
	message := err.Error()
	if code == http.StatusInternalServerError {
		logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		message = internalErrorMessage
	}
	c.AbortWithStatusJSON(code, errorResponse{StatusCode: code, Message: message})
}

var errBadRequest = errors.New("bad request")

// badRequest は入力形式の誤りを表すエラーを生成します。
func badRequest(message string) error {
	return &requestError{message: message}
}

type requestError struct {
	message string
}

func (e *requestError) Error() string { return e.message }
func (e *requestError) Unwrap() error { return errBadRequest }
