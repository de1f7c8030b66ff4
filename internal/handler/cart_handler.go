package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"drinkshop/internal/config"
	"drinkshop/internal/middleware"
	"drinkshop/internal/usecase"
)

// /cartのHTTP。ゲストでも使えるのでOptionalAuthを噛ませる。
type CartHandler struct {
	uc  *usecase.CartUsecase
	cfg config.Config
}

// DI
func NewCartHandler(uc *usecase.CartUsecase, cfg config.Config) *CartHandler {
	return &CartHandler{uc: uc, cfg: cfg}
}

type AddCartItemRequest struct {
	VariantID int64 `json:"variant_id"`
	Quantity  int64 `json:"quantity"`
}

func (h *CartHandler) RegisterRoutes(e *echo.Echo, auth middleware.Authenticator) {
	g := e.Group("/cart")
	g.Use(middleware.OptionalAuth(auth, h.cfg))

	g.GET("", h.getCart)
	g.POST("/items", h.addItem)
	g.PUT("/items/:id/decrement", h.decrementItem)
	g.DELETE("/items/:id", h.removeItem)
	g.DELETE("", h.clearCart)
}

// usecaseが返したCookie指示を反映してからJSONを書く
func (h *CartHandler) respond(c echo.Context, resp usecase.CartResponse, ck usecase.CartCookie, err error) error {
	if err != nil {
		return writeError(c, err)
	}
	middleware.ApplyCartCookie(c, h.cfg, ck)
	return c.JSON(http.StatusOK, resp)
}

func (h *CartHandler) getCart(c echo.Context) error {
	resp, ck, err := h.uc.GetCart(c.Request().Context(), cartIdentity(c))
	return h.respond(c, resp, ck, err)
}

func (h *CartHandler) addItem(c echo.Context) error {
	var req AddCartItemRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	resp, ck, err := h.uc.AddItem(c.Request().Context(), cartIdentity(c), usecase.AddCartItemInput{
		VariantID: req.VariantID,
		Quantity:  req.Quantity,
	})
	return h.respond(c, resp, ck, err)
}

func cartItemID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, usecase.NewHTTPError(http.StatusBadRequest, "invalid cart item id")
	}
	return id, nil
}

func (h *CartHandler) decrementItem(c echo.Context) error {
	id, err := cartItemID(c)
	if err != nil {
		return writeError(c, err)
	}

	resp, ck, err := h.uc.DecrementItem(c.Request().Context(), cartIdentity(c), id)
	return h.respond(c, resp, ck, err)
}

func (h *CartHandler) removeItem(c echo.Context) error {
	id, err := cartItemID(c)
	if err != nil {
		return writeError(c, err)
	}

	resp, ck, err := h.uc.RemoveItem(c.Request().Context(), cartIdentity(c), id)
	return h.respond(c, resp, ck, err)
}

func (h *CartHandler) clearCart(c echo.Context) error {
	resp, ck, err := h.uc.ClearCart(c.Request().Context(), cartIdentity(c))
	return h.respond(c, resp, ck, err)
}
