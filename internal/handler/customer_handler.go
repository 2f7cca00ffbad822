package handler

import (
	"net/http"

	"ordermanagement/internal/usecase"

	"github.com/labstack/echo/v4"
)

type CustomerHandler struct {
	uc *usecase.CustomerUsecase
}

func NewCustomerHandler(uc *usecase.CustomerUsecase) *CustomerHandler {
	return &CustomerHandler{uc: uc}
}

func (h *CustomerHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/customers/:id", h.detail)
}

func (h *CustomerHandler) detail(c echo.Context) error {
	cu, err := h.uc.GetCustomer(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, cu)
}
