package handler

import (
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"drinkshop/internal/config"
	"drinkshop/internal/middleware"
	"drinkshop/internal/usecase"
)

// カタログの公開API + 管理API
type CatalogHandler struct {
	uc  *usecase.CatalogUsecase
	cfg config.Config
}

// DI
func NewCatalogHandler(uc *usecase.CatalogUsecase, cfg config.Config) *CatalogHandler {
	return &CatalogHandler{uc: uc, cfg: cfg}
}

type CreateSectionRequest struct {
	Title  string `json:"title"`
	ImgSrc string `json:"img_src"`
}

type CreateDrinkRequest struct {
	SectionID   string `json:"section_id"`
	Name        string `json:"name"`
	ImgSrc      string `json:"img_src"`
	Ingredients string `json:"ingredients"`
	Description string `json:"description"`
	GlobalSale  *int   `json:"global_sale"`
}

type UpdateDrinkRequest struct {
	Name        *string `json:"name"`
	ImgSrc      *string `json:"img_src"`
	Ingredients *string `json:"ingredients"`
	Description *string `json:"description"`
	// global_saleを消したいときはnullを明示的に送るので、キーの有無で区別する
	GlobalSale    *int `json:"global_sale"`
	SetGlobalSale bool `json:"set_global_sale"`
}

type VariantRequest struct {
	Volume   int    `json:"volume"`
	Price    int64  `json:"price"`
	Quantity int64  `json:"quantity"`
	Sale     *int   `json:"sale"`
	ImgSrc   string `json:"img_src"`
}

type SetStockRequest struct {
	Quantity int64 `json:"quantity"`
}

func (h *CatalogHandler) RegisterRoutes(e *echo.Echo, auth middleware.Authenticator) {
	e.GET("/sections", h.listSections)
	e.GET("/sections/:id/drinks", h.listSectionDrinks)
	e.GET("/drinks/:id", h.getDrink)

	g := e.Group("/admin")
	g.Use(middleware.AuthRequired(auth, h.cfg))
	g.Use(middleware.RequireAdmin())

	g.POST("/images", h.uploadImage)

	g.POST("/sections", h.createSection)
	g.PATCH("/sections/:id", h.updateSection)
	g.DELETE("/sections/:id", h.deleteSection)

	g.POST("/drinks", h.createDrink)
	g.PATCH("/drinks/:id", h.updateDrink)
	g.DELETE("/drinks/:id", h.deleteDrink)

	g.POST("/drinks/:id/variants", h.createVariant)
	g.PATCH("/variants/:id", h.updateVariant)
	g.DELETE("/variants/:id", h.deleteVariant)
	g.PUT("/variants/:id/stock", h.setStock)
}

func (h *CatalogHandler) listSections(c echo.Context) error {
	sections, err := h.uc.ListSections(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, sections)
}

func (h *CatalogHandler) listSectionDrinks(c echo.Context) error {
	drinks, err := h.uc.ListSectionDrinks(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, drinks)
}

func pathID(c echo.Context, what string) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, usecase.NewHTTPError(http.StatusBadRequest, "invalid "+what+" id")
	}
	return id, nil
}

func (h *CatalogHandler) getDrink(c echo.Context) error {
	id, err := pathID(c, "drink")
	if err != nil {
		return writeError(c, err)
	}

	drink, err := h.uc.GetDrink(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, drink)
}

// multipart/form-data: file + kind(sections|drinks|variants)
func (h *CatalogHandler) uploadImage(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "file is required"})
	}

	f, err := fh.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "could not read file"})
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "could not read file"})
	}

	url, err := h.uc.UploadImage(
		c.Request().Context(),
		c.FormValue("kind"),
		fh.Filename,
		data,
		fh.Header.Get("Content-Type"),
	)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, map[string]string{"url": url})
}

func (h *CatalogHandler) createSection(c echo.Context) error {
	var req CreateSectionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	section, err := h.uc.CreateSection(c.Request().Context(), usecase.CreateSectionInput{
		Title:  req.Title,
		ImgSrc: req.ImgSrc,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, section)
}

func (h *CatalogHandler) updateSection(c echo.Context) error {
	var req CreateSectionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	section, err := h.uc.UpdateSection(c.Request().Context(), c.Param("id"), req.Title, req.ImgSrc)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, section)
}

func (h *CatalogHandler) deleteSection(c echo.Context) error {
	if err := h.uc.DeleteSection(c.Request().Context(), c.Param("id")); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "section deleted"})
}

func (h *CatalogHandler) createDrink(c echo.Context) error {
	var req CreateDrinkRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	drink, err := h.uc.CreateDrink(c.Request().Context(), usecase.CreateDrinkInput{
		SectionID:   req.SectionID,
		Name:        req.Name,
		ImgSrc:      req.ImgSrc,
		Ingredients: req.Ingredients,
		Description: req.Description,
		GlobalSale:  req.GlobalSale,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, drink)
}

func (h *CatalogHandler) updateDrink(c echo.Context) error {
	id, err := pathID(c, "drink")
	if err != nil {
		return writeError(c, err)
	}

	var req UpdateDrinkRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	drink, err := h.uc.UpdateDrink(c.Request().Context(), id, usecase.UpdateDrinkInput{
		Name:          req.Name,
		ImgSrc:        req.ImgSrc,
		Ingredients:   req.Ingredients,
		Description:   req.Description,
		GlobalSale:    req.GlobalSale,
		SetGlobalSale: req.SetGlobalSale || req.GlobalSale != nil,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, drink)
}

func (h *CatalogHandler) deleteDrink(c echo.Context) error {
	id, err := pathID(c, "drink")
	if err != nil {
		return writeError(c, err)
	}

	if err := h.uc.DeleteDrink(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "drink deleted"})
}

func (h *CatalogHandler) bindVariant(c echo.Context) (usecase.VariantInput, error) {
	var req VariantRequest
	if err := c.Bind(&req); err != nil {
		return usecase.VariantInput{}, usecase.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	return usecase.VariantInput{
		Volume:   req.Volume,
		Price:    req.Price,
		Quantity: req.Quantity,
		Sale:     req.Sale,
		ImgSrc:   req.ImgSrc,
	}, nil
}

func (h *CatalogHandler) createVariant(c echo.Context) error {
	drinkID, err := pathID(c, "drink")
	if err != nil {
		return writeError(c, err)
	}

	in, err := h.bindVariant(c)
	if err != nil {
		return writeError(c, err)
	}

	variant, err := h.uc.CreateVariant(c.Request().Context(), drinkID, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, variant)
}

func (h *CatalogHandler) updateVariant(c echo.Context) error {
	id, err := pathID(c, "variant")
	if err != nil {
		return writeError(c, err)
	}

	in, err := h.bindVariant(c)
	if err != nil {
		return writeError(c, err)
	}

	variant, err := h.uc.UpdateVariant(c.Request().Context(), id, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, variant)
}

func (h *CatalogHandler) deleteVariant(c echo.Context) error {
	id, err := pathID(c, "variant")
	if err != nil {
		return writeError(c, err)
	}

	if err := h.uc.DeleteVariant(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "variant deleted"})
}

func (h *CatalogHandler) setStock(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	id, err := pathID(c, "variant")
	if err != nil {
		return writeError(c, err)
	}

	var req SetStockRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	variant, err := h.uc.SetStock(c.Request().Context(), adminID, id, req.Quantity)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, variant)
}
