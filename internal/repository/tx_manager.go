package repository

import "context"

// トランザクション内で使う約束
type TxRepos interface {
	Carts() CartRepository
	CartItems() CartItemRepository
	Drinks() DrinkRepository
	Variants() VariantRepository
	Orders() OrderRepository
	OrderItems() OrderItemRepository
	Delivery() DeliveryInfoRepository
	Slots() DeliverySlotRepository
	Addresses() AddressRepository
	Stores() StoreAddressRepository
	Users() UserRepository
	Sessions() SessionRepository
	AuditLogs() AuditLogRepository
}

// UsecaseからTxの開始/commit/rollbackを隠す。
// fnがエラーを返したら全てロールバックする。
type TransactionManager interface {
	WithinTx(ctx context.Context, fn func(r TxRepos) error) error
}
