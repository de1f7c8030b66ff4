package repository

import (
	"context"

	repo "drinkshop/internal/repository"

	"gorm.io/gorm"
)

type txReposGorm struct {
	carts      repo.CartRepository
	cartItems  repo.CartItemRepository
	drinks     repo.DrinkRepository
	variants   repo.VariantRepository
	orders     repo.OrderRepository
	orderItems repo.OrderItemRepository
	delivery   repo.DeliveryInfoRepository
	slots      repo.DeliverySlotRepository
	addresses  repo.AddressRepository
	stores     repo.StoreAddressRepository
	users      repo.UserRepository
	sessions   repo.SessionRepository
	auditLogs  repo.AuditLogRepository
}

func (r *txReposGorm) Carts() repo.CartRepository            { return r.carts }
func (r *txReposGorm) CartItems() repo.CartItemRepository    { return r.cartItems }
func (r *txReposGorm) Drinks() repo.DrinkRepository          { return r.drinks }
func (r *txReposGorm) Variants() repo.VariantRepository      { return r.variants }
func (r *txReposGorm) Orders() repo.OrderRepository          { return r.orders }
func (r *txReposGorm) OrderItems() repo.OrderItemRepository  { return r.orderItems }
func (r *txReposGorm) Delivery() repo.DeliveryInfoRepository { return r.delivery }
func (r *txReposGorm) Slots() repo.DeliverySlotRepository    { return r.slots }
func (r *txReposGorm) Addresses() repo.AddressRepository     { return r.addresses }
func (r *txReposGorm) Stores() repo.StoreAddressRepository   { return r.stores }
func (r *txReposGorm) Users() repo.UserRepository            { return r.users }
func (r *txReposGorm) Sessions() repo.SessionRepository      { return r.sessions }
func (r *txReposGorm) AuditLogs() repo.AuditLogRepository    { return r.auditLogs }

type TxManagerGorm struct {
	db *gorm.DB
}

func NewTxManagerGorm(db *gorm.DB) *TxManagerGorm {
	return &TxManagerGorm{db: db}
}

func (tm *TxManagerGorm) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		//repoはtxを持ったDBで作り直す
		r := &txReposGorm{
			carts:      NewCartGormRepository(tx),
			cartItems:  NewCartItemGormRepository(tx),
			drinks:     NewDrinkGormRepository(tx),
			variants:   NewVariantGormRepository(tx),
			orders:     NewOrderGormRepository(tx),
			orderItems: NewOrderItemGormRepository(tx),
			delivery:   NewDeliveryInfoGormRepository(tx),
			slots:      NewDeliverySlotGormRepository(tx),
			addresses:  NewAddressGormRepository(tx),
			stores:     NewStoreAddressGormRepository(tx),
			users:      NewUserGormRepository(tx),
			sessions:   NewSessionGormRepository(tx),
			auditLogs:  NewAuditLogGormRepository(tx),
		}
		return fn(r)
	})
}
