package repository

import (
	"context"

	"drinkshop/internal/domain/model"
)

// 住所更新で触ってよいフィールドだけを列挙。nilは更新しない。
type AddressUpdate struct {
	FullAddress *string
	Street      *string
	House       *string
	Entrance    *int
	Intercom    *string
	Floor       *int
	Apartment   *int
	IsDefault   *bool
}

// 住所(Address)を保存・取得する窓口
type AddressRepository interface {
	Create(ctx context.Context, address model.Address) (model.Address, error)
	ListByUserID(ctx context.Context, userID int64) ([]model.Address, error)
	FindByID(ctx context.Context, addressID int64) (model.Address, error)
	Update(ctx context.Context, addressID int64, upd AddressUpdate) error
	Delete(ctx context.Context, addressID int64) error
	DeleteAllByUserID(ctx context.Context, userID int64) error

	//同じ（通り・番地・部屋）の住所が既にあるか
	ExistsDuplicate(ctx context.Context, userID int64, street, house string, apartment *int) (bool, error)

	//デフォルト住所の取得・切り替え
	FindDefaultByUserID(ctx context.Context, userID int64) (model.Address, error)
	//一番新しく作られた住所（デフォルト削除時の昇格先）
	FindLatestByUserID(ctx context.Context, userID int64) (model.Address, error)
	ClearDefault(ctx context.Context, userID int64) error
	SetDefault(ctx context.Context, userID, addressID int64) error
}

type StoreAddressRepository interface {
	ListActive(ctx context.Context) ([]model.StoreAddress, error)
	FindByID(ctx context.Context, storeID int64) (model.StoreAddress, error)
	Create(ctx context.Context, s model.StoreAddress) (model.StoreAddress, error)
	Update(ctx context.Context, s model.StoreAddress) error
	Delete(ctx context.Context, storeID int64) error
}
