package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"drinkshop/internal/domain/model"
	"drinkshop/internal/infra/storage"
	"drinkshop/internal/infra/translate"
	repo "drinkshop/internal/repository"
)

// Usecase層のエラーはHTTPのステータスを添えて返す。
// ハンドラはAsHTTPErrorで取り出してそのまま書くだけ。
type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

type VariantResponse struct {
	ID       int64  `json:"id"`
	Volume   int    `json:"volume"`
	Price    int64  `json:"price"`
	Final    int64  `json:"price_final"`
	Sale     int    `json:"sale"`
	Quantity int64  `json:"quantity"`
	ImgSrc   string `json:"img_src"`
}

type DrinkResponse struct {
	ID          int64             `json:"id"`
	SectionID   string            `json:"section_id"`
	Name        string            `json:"name"`
	ImgSrc      string            `json:"img_src"`
	Ingredients string            `json:"ingredients"`
	Description string            `json:"description"`
	GlobalSale  *int              `json:"global_sale"`
	Variants    []VariantResponse `json:"variants"`
}

type CreateSectionInput struct {
	Title  string
	ImgSrc string
}

type CreateDrinkInput struct {
	SectionID   string
	Name        string
	ImgSrc      string
	Ingredients string
	Description string
	GlobalSale  *int
}

type UpdateDrinkInput struct {
	Name          *string
	ImgSrc        *string
	Ingredients   *string
	Description   *string
	GlobalSale    *int
	SetGlobalSale bool
}

type VariantInput struct {
	Volume   int
	Price    int64
	Quantity int64
	Sale     *int
	ImgSrc   string
}

type CatalogUsecase struct {
	sectionRepo repo.SectionRepository
	drinkRepo   repo.DrinkRepository
	variantRepo repo.VariantRepository
	tm          repo.TransactionManager
	storage     storage.ObjectStorage
	translator  translate.Translator
}

func NewCatalogUsecase(
	sectionRepo repo.SectionRepository,
	drinkRepo repo.DrinkRepository,
	variantRepo repo.VariantRepository,
	tm repo.TransactionManager,
	st storage.ObjectStorage,
	tr translate.Translator,
) *CatalogUsecase {
	return &CatalogUsecase{
		sectionRepo: sectionRepo,
		drinkRepo:   drinkRepo,
		variantRepo: variantRepo,
		tm:          tm,
		storage:     st,
		translator:  tr,
	}
}

func (u *CatalogUsecase) ListSections(ctx context.Context) ([]model.Section, error) {
	sections, err := u.sectionRepo.List(ctx)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return sections, nil
}

func (u *CatalogUsecase) buildDrinkResponse(ctx context.Context, d model.Drink) (DrinkResponse, error) {
	variants, err := u.variantRepo.ListByDrinkID(ctx, d.ID)
	if err != nil {
		return DrinkResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	resp := DrinkResponse{
		ID:          d.ID,
		SectionID:   d.SectionID,
		Name:        d.Name,
		ImgSrc:      d.ImgSrc,
		Ingredients: d.Ingredients,
		Description: d.Description,
		GlobalSale:  d.GlobalSale,
		Variants:    make([]VariantResponse, 0, len(variants)),
	}
	for _, v := range variants {
		sale := discountFor(d, v)
		resp.Variants = append(resp.Variants, VariantResponse{
			ID:       v.ID,
			Volume:   v.Volume,
			Price:    v.Price,
			Final:    finalUnitPrice(v.Price, sale),
			Sale:     sale,
			Quantity: v.Quantity,
			ImgSrc:   v.ImgSrc,
		})
	}
	return resp, nil
}

// ListSectionDrinks は区分内の商品一覧（容量・割引後価格つき）
func (u *CatalogUsecase) ListSectionDrinks(ctx context.Context, sectionID string) ([]DrinkResponse, error) {
	if _, err := u.sectionRepo.FindByID(ctx, sectionID); err != nil {
		return nil, NewHTTPError(http.StatusNotFound, "section not found")
	}
	drinks, err := u.drinkRepo.ListBySection(ctx, sectionID)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	resp := make([]DrinkResponse, 0, len(drinks))
	for _, d := range drinks {
		dr, err := u.buildDrinkResponse(ctx, d)
		if err != nil {
			return nil, err
		}
		resp = append(resp, dr)
	}
	return resp, nil
}

func (u *CatalogUsecase) GetDrink(ctx context.Context, drinkID int64) (DrinkResponse, error) {
	d, err := u.drinkRepo.FindByID(ctx, drinkID)
	if err != nil {
		return DrinkResponse{}, NewHTTPError(http.StatusNotFound, "drink not found")
	}
	return u.buildDrinkResponse(ctx, d)
}

// UploadImage は管理画面からの画像アップロード。公開URLを返す。
func (u *CatalogUsecase) UploadImage(ctx context.Context, kind, filename string, data []byte, contentType string) (string, error) {
	if kind != "sections" && kind != "drinks" && kind != "variants" {
		return "", NewHTTPError(http.StatusBadRequest, "invalid image kind")
	}
	if len(data) == 0 {
		return "", NewHTTPError(http.StatusBadRequest, "empty file")
	}
	key := fmt.Sprintf("%s/%s-%s", kind, uuid.NewString(), filename)
	url, err := u.storage.Put(ctx, key, data, contentType)
	if err != nil {
		return "", NewHTTPError(http.StatusInternalServerError, "storage error")
	}
	return url, nil
}

// CreateSection はタイトルを翻訳してラテン文字スラッグをIDにする。
// 翻訳APIが落ちていればローカル翻字で代用する。
func (u *CatalogUsecase) CreateSection(ctx context.Context, in CreateSectionInput) (model.Section, error) {
	if in.Title == "" {
		return model.Section{}, NewHTTPError(http.StatusBadRequest, "title is required")
	}

	slug, err := u.translator.ToSlug(ctx, in.Title)
	if err != nil || slug == "" {
		return model.Section{}, NewHTTPError(http.StatusBadRequest, "could not derive section id")
	}

	if _, err := u.sectionRepo.FindByID(ctx, slug); err == nil {
		return model.Section{}, NewHTTPError(http.StatusConflict, "section already exists")
	}

	section, err := u.sectionRepo.Create(ctx, model.Section{ID: slug, Title: in.Title, ImgSrc: in.ImgSrc})
	if err != nil {
		if errors.Is(err, repo.ErrConflict) {
			return model.Section{}, NewHTTPError(http.StatusConflict, "section already exists")
		}
		return model.Section{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return section, nil
}

func (u *CatalogUsecase) UpdateSection(ctx context.Context, sectionID, title, imgSrc string) (model.Section, error) {
	section, err := u.sectionRepo.FindByID(ctx, sectionID)
	if err != nil {
		return model.Section{}, NewHTTPError(http.StatusNotFound, "section not found")
	}
	if title != "" {
		section.Title = title
	}
	if imgSrc != "" {
		section.ImgSrc = imgSrc
	}
	if err := u.sectionRepo.Update(ctx, section); err != nil {
		return model.Section{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return section, nil
}

// DeleteSection は商品が残っている区分は消させない
func (u *CatalogUsecase) DeleteSection(ctx context.Context, sectionID string) error {
	if _, err := u.sectionRepo.FindByID(ctx, sectionID); err != nil {
		return NewHTTPError(http.StatusNotFound, "section not found")
	}
	drinks, err := u.drinkRepo.ListBySection(ctx, sectionID)
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if len(drinks) > 0 {
		return NewHTTPError(http.StatusConflict, "section is not empty")
	}
	if err := u.sectionRepo.Delete(ctx, sectionID); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

func (u *CatalogUsecase) CreateDrink(ctx context.Context, in CreateDrinkInput) (model.Drink, error) {
	if in.Name == "" {
		return model.Drink{}, NewHTTPError(http.StatusBadRequest, "name is required")
	}
	if _, err := u.sectionRepo.FindByID(ctx, in.SectionID); err != nil {
		return model.Drink{}, NewHTTPError(http.StatusNotFound, "section not found")
	}
	if in.GlobalSale != nil && (*in.GlobalSale < 0 || *in.GlobalSale > 100) {
		return model.Drink{}, NewHTTPError(http.StatusBadRequest, "invalid global_sale")
	}

	drink, err := u.drinkRepo.Create(ctx, model.Drink{
		SectionID:   in.SectionID,
		Name:        in.Name,
		ImgSrc:      in.ImgSrc,
		Ingredients: in.Ingredients,
		Description: in.Description,
		GlobalSale:  in.GlobalSale,
	})
	if err != nil {
		return model.Drink{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return drink, nil
}

func (u *CatalogUsecase) UpdateDrink(ctx context.Context, drinkID int64, in UpdateDrinkInput) (DrinkResponse, error) {
	if _, err := u.drinkRepo.FindByID(ctx, drinkID); err != nil {
		return DrinkResponse{}, NewHTTPError(http.StatusNotFound, "drink not found")
	}
	if in.SetGlobalSale && in.GlobalSale != nil && (*in.GlobalSale < 0 || *in.GlobalSale > 100) {
		return DrinkResponse{}, NewHTTPError(http.StatusBadRequest, "invalid global_sale")
	}

	upd := repo.DrinkUpdate{
		Name:          in.Name,
		ImgSrc:        in.ImgSrc,
		Ingredients:   in.Ingredients,
		Description:   in.Description,
		GlobalSale:    in.GlobalSale,
		SetGlobalSale: in.SetGlobalSale,
	}
	if err := u.drinkRepo.Update(ctx, drinkID, upd); err != nil {
		return DrinkResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return u.GetDrink(ctx, drinkID)
}

// DeleteDrink は容量単位も一緒に消す（1トランザクション）
func (u *CatalogUsecase) DeleteDrink(ctx context.Context, drinkID int64) error {
	if _, err := u.drinkRepo.FindByID(ctx, drinkID); err != nil {
		return NewHTTPError(http.StatusNotFound, "drink not found")
	}
	return u.tm.WithinTx(ctx, func(r repo.TxRepos) error {
		if err := r.Variants().DeleteByDrinkID(ctx, drinkID); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if err := r.Drinks().Delete(ctx, drinkID); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		return nil
	})
}

func validateVariantInput(in VariantInput) error {
	if in.Volume <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid volume")
	}
	if in.Price < 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid price")
	}
	if in.Quantity < 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}
	if in.Sale != nil && (*in.Sale < 0 || *in.Sale > 100) {
		return NewHTTPError(http.StatusBadRequest, "invalid sale")
	}
	return nil
}

func (u *CatalogUsecase) CreateVariant(ctx context.Context, drinkID int64, in VariantInput) (model.DrinkVariant, error) {
	if _, err := u.drinkRepo.FindByID(ctx, drinkID); err != nil {
		return model.DrinkVariant{}, NewHTTPError(http.StatusNotFound, "drink not found")
	}
	if err := validateVariantInput(in); err != nil {
		return model.DrinkVariant{}, err
	}

	variant, err := u.variantRepo.Create(ctx, model.DrinkVariant{
		DrinkID:  drinkID,
		Volume:   in.Volume,
		Price:    in.Price,
		Quantity: in.Quantity,
		Sale:     in.Sale,
		ImgSrc:   in.ImgSrc,
	})
	if err != nil {
		return model.DrinkVariant{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return variant, nil
}

func (u *CatalogUsecase) UpdateVariant(ctx context.Context, variantID int64, in VariantInput) (model.DrinkVariant, error) {
	variant, err := u.variantRepo.FindByID(ctx, variantID)
	if err != nil {
		return model.DrinkVariant{}, NewHTTPError(http.StatusNotFound, "variant not found")
	}
	if err := validateVariantInput(in); err != nil {
		return model.DrinkVariant{}, err
	}

	variant.Volume = in.Volume
	variant.Price = in.Price
	variant.Sale = in.Sale
	if in.ImgSrc != "" {
		variant.ImgSrc = in.ImgSrc
	}
	// 在庫はここでは触らない。SetStockが監査ログ込みで扱う。
	if err := u.variantRepo.Update(ctx, variant); err != nil {
		return model.DrinkVariant{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return variant, nil
}

func (u *CatalogUsecase) DeleteVariant(ctx context.Context, variantID int64) error {
	if _, err := u.variantRepo.FindByID(ctx, variantID); err != nil {
		return NewHTTPError(http.StatusNotFound, "variant not found")
	}
	if err := u.variantRepo.Delete(ctx, variantID); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

// SetStock は管理者による在庫の直接設定。前後の値を監査ログに残す。
func (u *CatalogUsecase) SetStock(ctx context.Context, adminID, variantID, newStock int64) (model.DrinkVariant, error) {
	if newStock < 0 {
		return model.DrinkVariant{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}

	var updated model.DrinkVariant
	err := u.tm.WithinTx(ctx, func(r repo.TxRepos) error {
		variant, err := r.Variants().FindByID(ctx, variantID)
		if err != nil {
			return NewHTTPError(http.StatusNotFound, "variant not found")
		}
		before := variant.Quantity

		if err := r.Variants().SetStock(ctx, variantID, newStock); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  adminID,
			Action:       model.AuditActionUpdateStock,
			ResourceType: model.AuditResourceVariant,
			ResourceID:   variantID,
			BeforeJSON:   fmt.Sprintf(`{"quantity":%d}`, before),
			AfterJSON:    fmt.Sprintf(`{"quantity":%d}`, newStock),
			CreatedAt:    nowUTC(),
		}); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		variant.Quantity = newStock
		updated = variant
		return nil
	})
	return updated, err
}
