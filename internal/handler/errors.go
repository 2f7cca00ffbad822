package handler

import (
	"errors"
	"net/http"

	"ordermanagement/internal/domain/model"
	"ordermanagement/internal/middleware"
	"ordermanagement/internal/usecase"

	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if ae, ok := usecase.AsAppError(err); ok {
		if ae.Status >= http.StatusInternalServerError {
			return c.JSON(ae.Status, ErrorResponse{Error: usecase.CodeInternal, Message: "internal error"})
		}
		return c.JSON(ae.Status, ErrorResponse{Error: ae.Code, Message: ae.Message})
	}

	//500
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: usecase.CodeInternal, Message: "internal error"})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: string(model.KindValidation), Message: msg})
}

// HTTPErrorHandler はルーティングやbindで出たechoのエラーも同じ形のJSONにする。
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code, msg := codeForHTTPStatus(he.Code), http.StatusText(he.Code)
		if s, ok := he.Message.(string); ok && s != "" {
			msg = s
		}
		if he.Code >= http.StatusInternalServerError {
			code, msg = usecase.CodeInternal, "internal error"
		}
		_ = c.JSON(he.Code, ErrorResponse{Error: code, Message: msg})
		return
	}

	_ = writeError(c, err)
}

func codeForHTTPStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return string(model.KindValidation)
	case http.StatusUnauthorized:
		return "unauthorized"
	case http.StatusForbidden:
		return "forbidden"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusMethodNotAllowed:
		return "method_not_allowed"
	default:
		return usecase.CodeInternal
	}
}

// JWTが無効な構成ではactorは空になり、usecase側でanonymous扱いになる。
func getActorFromContext(c echo.Context) string {
	v, ok := c.Get(middleware.CtxActorIDKey).(string)
	if !ok {
		return ""
	}
	return v
}
