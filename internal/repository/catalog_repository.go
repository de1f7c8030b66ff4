package repository

import (
	"context"
	"errors"

	"drinkshop/internal/domain/model"
)

var ErrNotFound = errors.New("not found")

type SectionRepository interface {
	List(ctx context.Context) ([]model.Section, error)
	FindByID(ctx context.Context, sectionID string) (model.Section, error)
	Create(ctx context.Context, s model.Section) (model.Section, error)
	Update(ctx context.Context, s model.Section) error
	Delete(ctx context.Context, sectionID string) error
}

// 商品更新で触ってよいフィールド。nilは更新しない。
// GlobalSaleだけは「明示的にnilへ戻す」があり得るので設定フラグを分ける。
type DrinkUpdate struct {
	Name          *string
	ImgSrc        *string
	Ingredients   *string
	Description   *string
	GlobalSale    *int
	SetGlobalSale bool
}

type DrinkRepository interface {
	ListBySection(ctx context.Context, sectionID string) ([]model.Drink, error)
	ListByIDs(ctx context.Context, ids []int64) ([]model.Drink, error)
	FindByID(ctx context.Context, drinkID int64) (model.Drink, error)
	Create(ctx context.Context, d model.Drink) (model.Drink, error)
	Update(ctx context.Context, drinkID int64, upd DrinkUpdate) error
	Delete(ctx context.Context, drinkID int64) error
}
