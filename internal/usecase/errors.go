package usecase

import (
	"errors"
	"fmt"
	"net/http"

	"ordermanagement/internal/domain/model"
)

const CodeInternal = "internal_error"

// AppError はhandlerでそのままJSONにするエラー。
type AppError struct {
	Status  int
	Code    string
	Message string

	//500のときだけ入る。レスポンスには出さない
	cause error
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.Status, e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.cause
}

func NewAppError(status int, code string, message string) error {
	return &AppError{
		Status:  status,
		Code:    code,
		Message: message,
	}
}

func AsAppError(err error) (*AppError, bool) {
	var ae *AppError
	ok := errors.As(err, &ae)
	return ae, ok
}

func internalError(cause error) error {
	return &AppError{
		Status:  http.StatusInternalServerError,
		Code:    CodeInternal,
		Message: "internal error",
		cause:   cause,
	}
}

func validationError(format string, args ...any) error {
	return toAppError(model.NewDomainError(model.KindValidation, format, args...))
}

func statusForKind(kind model.ErrorKind) int {
	switch kind {
	case model.KindValidation, model.KindInvalidOrder:
		return http.StatusBadRequest
	case model.KindCustomerNotFound, model.KindProductNotFound, model.KindOrderNotFound:
		return http.StatusNotFound
	case model.KindCustomerInactive:
		return http.StatusUnprocessableEntity
	case model.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// toAppError はドメインエラーを AppError に変換する。それ以外は500扱い。
func toAppError(err error) error {
	if err == nil {
		return nil
	}
	if ae, ok := AsAppError(err); ok {
		return ae
	}
	var de *model.DomainError
	if errors.As(err, &de) {
		return NewAppError(statusForKind(de.Kind), string(de.Kind), de.Message)
	}
	return internalError(err)
}
