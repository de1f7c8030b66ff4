package repository

import (
	"context"
	"errors"

	"drinkshop/internal/domain/model"
	repo "drinkshop/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type cartGormRepository struct {
	db *gorm.DB
}

// DI
func NewCartGormRepository(db *gorm.DB) repo.CartRepository {
	return &cartGormRepository{db: db}
}

// ユーザーのカートを取得
func (r *cartGormRepository) FindByUserID(ctx context.Context, userID int64) (model.Cart, error) {
	var cart model.Cart

	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id desc").
		First(&cart).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Cart{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Cart{}, err
	}
	return cart, nil
}

// ゲストカートを取得（user_idがNULLのものだけ）
func (r *cartGormRepository) FindGuestBySessionKey(ctx context.Context, sessionKey string) (model.Cart, error) {
	var cart model.Cart

	err := r.db.WithContext(ctx).
		Where("session_key = ? AND user_id IS NULL", sessionKey).
		First(&cart).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Cart{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Cart{}, err
	}
	return cart, nil
}

func (r *cartGormRepository) FindByID(ctx context.Context, cartID int64) (model.Cart, error) {
	var cart model.Cart

	err := r.db.WithContext(ctx).First(&cart, cartID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Cart{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Cart{}, err
	}
	return cart, nil
}

func (r *cartGormRepository) Create(ctx context.Context, cart model.Cart) (model.Cart, error) {
	if err := r.db.WithContext(ctx).Create(&cart).Error; err != nil {
		if isUniqueViolation(err) {
			return model.Cart{}, repo.ErrConflict
		}
		return model.Cart{}, err
	}
	return cart, nil
}

// ゲストカートをユーザーへ付け替え。持ち主が曖昧にならないよう session_key は消す
func (r *cartGormRepository) AttachToUser(ctx context.Context, cartID, userID int64) error {
	res := r.db.WithContext(ctx).
		Model(&model.Cart{}).
		Where("id = ?", cartID).
		Updates(map[string]interface{}{
			"user_id":     userID,
			"session_key": nil,
		})

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// キャッシュ済み合計を更新
func (r *cartGormRepository) UpdateTotals(ctx context.Context, cartID int64, subtotal, discount, total int64) error {
	res := r.db.WithContext(ctx).
		Model(&model.Cart{}).
		Where("id = ?", cartID).
		Updates(map[string]interface{}{
			"subtotal": subtotal,
			"discount": discount,
			"total":    total,
		})

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// カート本体を削除（明細→本体の順は呼び出し側のトランザクションで守る）
func (r *cartGormRepository) Delete(ctx context.Context, cartID int64) error {
	res := r.db.WithContext(ctx).Delete(&model.Cart{}, cartID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *cartGormRepository) DeleteByUserID(ctx context.Context, userID int64) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&model.Cart{}).Error
}

type cartItemGormRepository struct {
	db *gorm.DB
}

func NewCartItemGormRepository(db *gorm.DB) repo.CartItemRepository {
	return &cartItemGormRepository{db: db}
}

// カート明細を一覧取得
func (r *cartItemGormRepository) ListByCartID(ctx context.Context, cartID int64) ([]model.CartItem, error) {
	var items []model.CartItem

	if err := r.db.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Order("id asc").
		Find(&items).Error; err != nil {
		return []model.CartItem{}, err
	}

	return items, nil
}

func (r *cartItemGormRepository) FindByID(ctx context.Context, cartItemID int64) (model.CartItem, error) {
	var item model.CartItem

	err := r.db.WithContext(ctx).First(&item, cartItemID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.CartItem{}, repo.ErrNotFound
	}
	if err != nil {
		return model.CartItem{}, err
	}
	return item, nil
}

// 同一カート・同一容量の明細を行ロック付きで取る（数量加算の競合対策）
func (r *cartItemGormRepository) FindByCartAndVariant(ctx context.Context, cartID, variantID int64) (model.CartItem, error) {
	var item model.CartItem

	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("cart_id = ? AND variant_id = ?", cartID, variantID).
		First(&item).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.CartItem{}, repo.ErrNotFound
	}
	if err != nil {
		return model.CartItem{}, err
	}
	return item, nil
}

func (r *cartItemGormRepository) Create(ctx context.Context, item model.CartItem) (model.CartItem, error) {
	if err := r.db.WithContext(ctx).Create(&item).Error; err != nil {
		return model.CartItem{}, err
	}
	return item, nil
}

// 数量とキャッシュ金額をまとめて更新
func (r *cartItemGormRepository) UpdateAmounts(ctx context.Context, cartItemID int64, qty, subtotal, discount, total int64) error {
	res := r.db.WithContext(ctx).
		Model(&model.CartItem{}).
		Where("id = ?", cartItemID).
		Updates(map[string]interface{}{
			"quantity":      qty,
			"item_subtotal": subtotal,
			"item_discount": discount,
			"item_total":    total,
		})

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// マージで明細を別カートへ移す
func (r *cartItemGormRepository) MoveToCart(ctx context.Context, cartItemID, cartID int64) error {
	res := r.db.WithContext(ctx).
		Model(&model.CartItem{}).
		Where("id = ?", cartItemID).
		Update("cart_id", cartID)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 明細を削除
func (r *cartItemGormRepository) DeleteByID(ctx context.Context, cartItemID int64) error {
	res := r.db.WithContext(ctx).Delete(&model.CartItem{}, cartItemID)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *cartItemGormRepository) DeleteByCartID(ctx context.Context, cartID int64) error {
	return r.db.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Delete(&model.CartItem{}).Error
}
