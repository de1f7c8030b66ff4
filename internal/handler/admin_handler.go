package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"drinkshop/internal/config"
	"drinkshop/internal/domain/model"
	"drinkshop/internal/middleware"
	repo "drinkshop/internal/repository"
	"drinkshop/internal/usecase"
)

// 管理者向け：注文・店舗・配達枠・監査ログ
type AdminHandler struct {
	adminUC *usecase.AdminUsecase
	slotUC  *usecase.SlotUsecase
	cfg     config.Config
}

// DI
func NewAdminHandler(adminUC *usecase.AdminUsecase, slotUC *usecase.SlotUsecase, cfg config.Config) *AdminHandler {
	return &AdminHandler{adminUC: adminUC, slotUC: slotUC, cfg: cfg}
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status"`
}

type StoreRequest struct {
	Street       string `json:"street"`
	House        string `json:"house"`
	Floor        string `json:"floor"`
	OpeningHours string `json:"opening_hours"`
	Phone        string `json:"phone"`
	IsActive     bool   `json:"is_active"`
}

func (h *AdminHandler) RegisterRoutes(e *echo.Echo, auth middleware.Authenticator) {
	g := e.Group("/admin")
	g.Use(middleware.AuthRequired(auth, h.cfg))
	g.Use(middleware.RequireAdmin())

	g.GET("/orders", h.listOrders)
	g.PATCH("/orders/:id/status", h.updateOrderStatus)

	g.GET("/audit-logs", h.listAuditLogs)

	g.POST("/stores", h.createStore)
	g.PATCH("/stores/:id", h.updateStore)
	g.DELETE("/stores/:id", h.deleteStore)

	g.POST("/delivery/slots/regenerate", h.regenerateSlots)
}

func (h *AdminHandler) listOrders(c echo.Context) error {
	f := repo.AdminOrderListFilter{
		Status: c.QueryParam("status"),
	}
	f.Page, _ = strconv.Atoi(c.QueryParam("page"))
	f.Limit, _ = strconv.Atoi(c.QueryParam("limit"))
	if v := c.QueryParam("user_id"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			f.UserID = &id
		}
	}
	if v := c.QueryParam("from"); v != "" {
		if t, err := time.ParseInLocation("2006-01-02", v, time.UTC); err == nil {
			f.From = &t
		}
	}
	if v := c.QueryParam("to"); v != "" {
		if t, err := time.ParseInLocation("2006-01-02", v, time.UTC); err == nil {
			f.To = &t
		}
	}

	resp, err := h.adminUC.ListOrders(c.Request().Context(), f)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *AdminHandler) updateOrderStatus(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	id, err := orderID(c)
	if err != nil {
		return writeError(c, err)
	}

	var req UpdateOrderStatusRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	order, err := h.adminUC.UpdateOrderStatus(c.Request().Context(), adminID, id, req.Status)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, order)
}

func (h *AdminHandler) listAuditLogs(c echo.Context) error {
	f := repo.AuditLogFilter{}
	f.Limit, _ = strconv.Atoi(c.QueryParam("limit"))
	f.Offset, _ = strconv.Atoi(c.QueryParam("offset"))
	if v := c.QueryParam("actor_user_id"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			f.ActorUserID = &id
		}
	}
	if v := c.QueryParam("action"); v != "" {
		a := model.AuditAction(v)
		f.Action = &a
	}
	if v := c.QueryParam("resource_type"); v != "" {
		rt := model.AuditResourceType(v)
		f.ResourceType = &rt
	}
	if v := c.QueryParam("resource_id"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			f.ResourceID = &id
		}
	}

	logs, err := h.adminUC.ListAuditLogs(c.Request().Context(), f)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, logs)
}

func (h *AdminHandler) bindStore(c echo.Context) (usecase.StoreInput, error) {
	var req StoreRequest
	if err := c.Bind(&req); err != nil {
		return usecase.StoreInput{}, usecase.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	return usecase.StoreInput{
		Street:       req.Street,
		House:        req.House,
		Floor:        req.Floor,
		OpeningHours: req.OpeningHours,
		Phone:        req.Phone,
		IsActive:     req.IsActive,
	}, nil
}

func (h *AdminHandler) createStore(c echo.Context) error {
	in, err := h.bindStore(c)
	if err != nil {
		return writeError(c, err)
	}

	store, err := h.adminUC.CreateStore(c.Request().Context(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, store)
}

func (h *AdminHandler) updateStore(c echo.Context) error {
	id, err := pathID(c, "store")
	if err != nil {
		return writeError(c, err)
	}

	in, err := h.bindStore(c)
	if err != nil {
		return writeError(c, err)
	}

	store, err := h.adminUC.UpdateStore(c.Request().Context(), id, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, store)
}

func (h *AdminHandler) deleteStore(c echo.Context) error {
	id, err := pathID(c, "store")
	if err != nil {
		return writeError(c, err)
	}

	if err := h.adminUC.DeleteStore(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "store deleted"})
}

// 予約が乗った枠も消えるので管理者専用
func (h *AdminHandler) regenerateSlots(c echo.Context) error {
	date := c.QueryParam("date")
	if date == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "date is required"})
	}

	slots, err := h.slotUC.RegenerateSlots(c.Request().Context(), date)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, slots)
}
