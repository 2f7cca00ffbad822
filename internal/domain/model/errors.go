package model

import (
	"errors"
	"fmt"
)

// エラーの種類。値はそのままAPIのエラーコードになる。
type ErrorKind string

const (
	KindValidation       ErrorKind = "validation_error"
	KindCustomerNotFound ErrorKind = "customer_not_found"
	KindCustomerInactive ErrorKind = "customer_inactive"
	KindProductNotFound  ErrorKind = "product_not_found"
	KindOrderNotFound    ErrorKind = "order_not_found"
	KindInvalidOrder     ErrorKind = "invalid_order"
	KindConflict         ErrorKind = "conflict"
)

type DomainError struct {
	Kind    ErrorKind
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func NewDomainError(kind ErrorKind, format string, args ...any) error {
	return &DomainError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf は err の中の DomainError の種類を返す。
func KindOf(err error) (ErrorKind, bool) {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind, true
	}
	return "", false
}

func IsKind(err error, kind ErrorKind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
