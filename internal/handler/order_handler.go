package handler

import (
	"net/http"

	"ordermanagement/internal/usecase"

	"github.com/labstack/echo/v4"
)

const headerIdempotencyKey = "X-Idempotency-Key"

type OrderHandler struct {
	uc *usecase.OrderUsecase
}

func NewOrderHandler(uc *usecase.OrderUsecase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

type OrderItemRequest struct {
	ProductID      string `json:"product_id"`
	ProductName    string `json:"product_name"`
	Quantity       int64  `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
}

type OrderCreateRequest struct {
	CustomerID string             `json:"customer_id"`
	Items      []OrderItemRequest `json:"items"`
}

type OrderStatusUpdateRequest struct {
	Status string `json:"status"`
}

// statusGuards は PATCH /orders/:id/status にだけ掛ける（JWT_SECRET設定時の認証など）。
func (h *OrderHandler) RegisterRoutes(e *echo.Echo, statusGuards ...echo.MiddlewareFunc) {
	g := e.Group("/orders")

	g.POST("", h.create)
	g.GET("", h.list)
	g.GET("/:id", h.detail)
	g.GET("/:id/events", h.events)
	g.PATCH("/:id/status", h.updateStatus, statusGuards...)
}

func (h *OrderHandler) create(c echo.Context) error {
	var req OrderCreateRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	items := make([]usecase.CreateOrderItemInput, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, usecase.CreateOrderItemInput{
			ProductID:      it.ProductID,
			ProductName:    it.ProductName,
			Quantity:       it.Quantity,
			UnitPriceCents: it.UnitPriceCents,
		})
	}

	//二重送信防止キーはヘッダーから受け取る（bodyには入れない）
	out, err := h.uc.CreateOrder(c.Request().Context(), usecase.CreateOrderInput{
		CustomerID:     req.CustomerID,
		Items:          items,
		IdempotencyKey: c.Request().Header.Get(headerIdempotencyKey),
		ActorID:        getActorFromContext(c),
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) list(c echo.Context) error {
	page, err := queryInt(c, "page", defaultPage)
	if err != nil {
		return badRequest(c, err.Error())
	}
	limit, err := queryInt(c, "limit", defaultLimit)
	if err != nil {
		return badRequest(c, err.Error())
	}

	out, err := h.uc.ListOrders(c.Request().Context(), usecase.ListOrdersInput{
		CustomerID: c.QueryParam("customer_id"),
		Status:     c.QueryParam("status"),
		Page:       page,
		Limit:      limit,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) detail(c echo.Context) error {
	out, err := h.uc.GetOrder(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) updateStatus(c echo.Context) error {
	var req OrderStatusUpdateRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	// 操作者IDは監査ログ用
	out, err := h.uc.UpdateOrderStatus(c.Request().Context(), getActorFromContext(c), c.Param("id"), req.Status)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) events(c echo.Context) error {
	out, err := h.uc.ListOrderEvents(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
