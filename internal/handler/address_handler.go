package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"drinkshop/internal/config"
	"drinkshop/internal/middleware"
	"drinkshop/internal/usecase"
)

// /addresses と /stores のHTTP
type AddressHandler struct {
	uc  *usecase.AddressUsecase
	cfg config.Config
}

// DI
func NewAddressHandler(uc *usecase.AddressUsecase, cfg config.Config) *AddressHandler {
	return &AddressHandler{uc: uc, cfg: cfg}
}

type CreateAddressRequest struct {
	Street    string `json:"street"`
	House     string `json:"house"`
	Entrance  *int   `json:"entrance"`
	Intercom  string `json:"intercom"`
	Floor     *int   `json:"floor"`
	Apartment *int   `json:"apartment"`
	IsDefault bool   `json:"is_default"`
}

type UpdateAddressRequest struct {
	Street    *string `json:"street"`
	House     *string `json:"house"`
	Entrance  *int    `json:"entrance"`
	Intercom  *string `json:"intercom"`
	Floor     *int    `json:"floor"`
	Apartment *int    `json:"apartment"`
	IsDefault *bool   `json:"is_default"`
}

func (h *AddressHandler) RegisterRoutes(e *echo.Echo, auth middleware.Authenticator) {
	e.GET("/stores", h.listStores)

	g := e.Group("/addresses")
	g.Use(middleware.AuthRequired(auth, h.cfg))
	g.GET("", h.list)
	g.POST("", h.create)
	g.PATCH("/:id", h.update)
	g.DELETE("/:id", h.remove)
}

func (h *AddressHandler) listStores(c echo.Context) error {
	stores, err := h.uc.ListStores(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, stores)
}

func (h *AddressHandler) list(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	addresses, err := h.uc.List(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, addresses)
}

func (h *AddressHandler) create(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req CreateAddressRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	address, err := h.uc.Create(c.Request().Context(), userID, usecase.CreateAddressInput{
		Street:    req.Street,
		House:     req.House,
		Entrance:  req.Entrance,
		Intercom:  req.Intercom,
		Floor:     req.Floor,
		Apartment: req.Apartment,
		IsDefault: req.IsDefault,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, address)
}

func addressID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, usecase.NewHTTPError(http.StatusBadRequest, "invalid address id")
	}
	return id, nil
}

func (h *AddressHandler) update(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	id, err := addressID(c)
	if err != nil {
		return writeError(c, err)
	}

	var req UpdateAddressRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	address, err := h.uc.Update(c.Request().Context(), userID, id, usecase.UpdateAddressInput{
		Street:    req.Street,
		House:     req.House,
		Entrance:  req.Entrance,
		Intercom:  req.Intercom,
		Floor:     req.Floor,
		Apartment: req.Apartment,
		IsDefault: req.IsDefault,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, address)
}

func (h *AddressHandler) remove(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	id, err := addressID(c)
	if err != nil {
		return writeError(c, err)
	}

	if err := h.uc.Delete(c.Request().Context(), userID, id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "address deleted"})
}
