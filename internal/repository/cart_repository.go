package repository

import (
	"context"

	"drinkshop/internal/domain/model"
)

type CartRepository interface {
	FindByUserID(ctx context.Context, userID int64) (model.Cart, error)
	//user_idがNULLのカートだけを対象にする
	FindGuestBySessionKey(ctx context.Context, sessionKey string) (model.Cart, error)
	FindByID(ctx context.Context, cartID int64) (model.Cart, error)
	Create(ctx context.Context, cart model.Cart) (model.Cart, error)

	//ゲストカートをユーザーに付け替える（session_keyはNULLにする）
	AttachToUser(ctx context.Context, cartID, userID int64) error

	UpdateTotals(ctx context.Context, cartID int64, subtotal, discount, total int64) error
	Delete(ctx context.Context, cartID int64) error
	DeleteByUserID(ctx context.Context, userID int64) error
}

type CartItemRepository interface {
	ListByCartID(ctx context.Context, cartID int64) ([]model.CartItem, error)
	FindByID(ctx context.Context, cartItemID int64) (model.CartItem, error)
	FindByCartAndVariant(ctx context.Context, cartID, variantID int64) (model.CartItem, error)
	Create(ctx context.Context, item model.CartItem) (model.CartItem, error)

	//数量とキャッシュ金額をまとめて更新
	UpdateAmounts(ctx context.Context, cartItemID int64, qty, subtotal, discount, total int64) error

	//マージで明細を別カートへ移す
	MoveToCart(ctx context.Context, cartItemID, cartID int64) error

	DeleteByID(ctx context.Context, cartItemID int64) error
	DeleteByCartID(ctx context.Context, cartID int64) error
}
