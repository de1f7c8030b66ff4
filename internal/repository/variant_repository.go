package repository

import (
	"context"

	"drinkshop/internal/domain/model"
)

// 容量単位（在庫の台帳もここ）
type VariantRepository interface {
	FindByID(ctx context.Context, variantID int64) (model.DrinkVariant, error)
	ListByDrinkID(ctx context.Context, drinkID int64) ([]model.DrinkVariant, error)
	Create(ctx context.Context, v model.DrinkVariant) (model.DrinkVariant, error)
	Update(ctx context.Context, v model.DrinkVariant) error
	Delete(ctx context.Context, variantID int64) error
	DeleteByDrinkID(ctx context.Context, drinkID int64) error

	// 在庫が足りるときだけ減算する。足りなければ false（在庫は変えない）
	ReserveStock(ctx context.Context, variantID int64, qty int64) (bool, error)

	// 在庫戻し（明細削除・数量減・カートクリア）
	ReleaseStock(ctx context.Context, variantID int64, qty int64) error

	// 管理者が在庫の現在値を直接設定
	SetStock(ctx context.Context, variantID int64, newStock int64) error
}
