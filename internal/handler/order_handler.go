package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"drinkshop/internal/config"
	"drinkshop/internal/middleware"
	"drinkshop/internal/usecase"
)

// /orders と /delivery のHTTP
type OrderHandler struct {
	orderUC *usecase.OrderUsecase
	slotUC  *usecase.SlotUsecase
	cfg     config.Config
}

// DI
func NewOrderHandler(orderUC *usecase.OrderUsecase, slotUC *usecase.SlotUsecase, cfg config.Config) *OrderHandler {
	return &OrderHandler{orderUC: orderUC, slotUC: slotUC, cfg: cfg}
}

type CheckoutRequest struct {
	DeliveryType    string `json:"delivery_type"`
	AddressID       *int64 `json:"address_id"`
	StoreAddressID  *int64 `json:"store_address_id"`
	DeliveryDate    string `json:"delivery_date"`
	TimeSlotID      *int64 `json:"time_slot_id"`
	DeliveryComment string `json:"delivery_comment"`
	CustomerName    string `json:"customer_name"`
	CustomerPhone   string `json:"customer_phone"`
}

func (h *OrderHandler) RegisterRoutes(e *echo.Echo, auth middleware.Authenticator) {
	// 配達枠の一覧は未ログインでも見られる
	e.GET("/delivery/slots", h.listSlots)

	g := e.Group("/orders")
	g.Use(middleware.AuthRequired(auth, h.cfg))
	g.POST("", h.checkout)
	g.GET("/my", h.listMyOrders)
	g.GET("/my/drinks", h.myDrinks)
	g.GET("/:id/items", h.orderItems)
	g.DELETE("/:id", h.deleteOrder)
}

func (h *OrderHandler) listSlots(c echo.Context) error {
	date := c.QueryParam("date")
	if date == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "date is required"})
	}

	slots, err := h.slotUC.ListSlots(c.Request().Context(), date)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, slots)
}

func (h *OrderHandler) checkout(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	resp, err := h.orderUC.Checkout(c.Request().Context(), userID, usecase.CheckoutInput{
		DeliveryType:    req.DeliveryType,
		AddressID:       req.AddressID,
		StoreAddressID:  req.StoreAddressID,
		DeliveryDate:    req.DeliveryDate,
		TimeSlotID:      req.TimeSlotID,
		DeliveryComment: req.DeliveryComment,
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.CustomerPhone,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, resp)
}

func (h *OrderHandler) listMyOrders(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	resp, err := h.orderUC.ListMyOrders(c.Request().Context(), userID, page, limit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *OrderHandler) myDrinks(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	drinks, err := h.orderUC.MyDrinks(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, drinks)
}

func orderID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, usecase.NewHTTPError(http.StatusBadRequest, "invalid order id")
	}
	return id, nil
}

func (h *OrderHandler) orderItems(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	id, err := orderID(c)
	if err != nil {
		return writeError(c, err)
	}

	items, err := h.orderUC.GetOrderItems(c.Request().Context(), userID, getRoleFromContext(c), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *OrderHandler) deleteOrder(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	id, err := orderID(c)
	if err != nil {
		return writeError(c, err)
	}

	if err := h.orderUC.DeleteOrder(c.Request().Context(), userID, getRoleFromContext(c), id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "order deleted"})
}
