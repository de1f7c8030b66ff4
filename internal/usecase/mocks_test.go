package usecase

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"drinkshop/internal/domain/model"
	repo "drinkshop/internal/repository"
)

// =====================
// Mocks
// =====================

type CartRepoMock struct{ mock.Mock }

func (m *CartRepoMock) FindByUserID(ctx context.Context, userID int64) (model.Cart, error) {
	args := m.Called(ctx, userID)
	c, _ := args.Get(0).(model.Cart)
	return c, args.Error(1)
}

func (m *CartRepoMock) FindGuestBySessionKey(ctx context.Context, sessionKey string) (model.Cart, error) {
	args := m.Called(ctx, sessionKey)
	c, _ := args.Get(0).(model.Cart)
	return c, args.Error(1)
}

func (m *CartRepoMock) FindByID(ctx context.Context, cartID int64) (model.Cart, error) {
	args := m.Called(ctx, cartID)
	c, _ := args.Get(0).(model.Cart)
	return c, args.Error(1)
}

func (m *CartRepoMock) Create(ctx context.Context, cart model.Cart) (model.Cart, error) {
	args := m.Called(ctx, cart)
	c, _ := args.Get(0).(model.Cart)
	return c, args.Error(1)
}

func (m *CartRepoMock) AttachToUser(ctx context.Context, cartID, userID int64) error {
	args := m.Called(ctx, cartID, userID)
	return args.Error(0)
}

func (m *CartRepoMock) UpdateTotals(ctx context.Context, cartID int64, subtotal, discount, total int64) error {
	args := m.Called(ctx, cartID, subtotal, discount, total)
	return args.Error(0)
}

func (m *CartRepoMock) Delete(ctx context.Context, cartID int64) error {
	args := m.Called(ctx, cartID)
	return args.Error(0)
}

func (m *CartRepoMock) DeleteByUserID(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type CartItemRepoMock struct{ mock.Mock }

func (m *CartItemRepoMock) ListByCartID(ctx context.Context, cartID int64) ([]model.CartItem, error) {
	args := m.Called(ctx, cartID)
	items, _ := args.Get(0).([]model.CartItem)
	return items, args.Error(1)
}

func (m *CartItemRepoMock) FindByID(ctx context.Context, cartItemID int64) (model.CartItem, error) {
	args := m.Called(ctx, cartItemID)
	it, _ := args.Get(0).(model.CartItem)
	return it, args.Error(1)
}

func (m *CartItemRepoMock) FindByCartAndVariant(ctx context.Context, cartID, variantID int64) (model.CartItem, error) {
	args := m.Called(ctx, cartID, variantID)
	it, _ := args.Get(0).(model.CartItem)
	return it, args.Error(1)
}

func (m *CartItemRepoMock) Create(ctx context.Context, item model.CartItem) (model.CartItem, error) {
	args := m.Called(ctx, item)
	it, _ := args.Get(0).(model.CartItem)
	return it, args.Error(1)
}

func (m *CartItemRepoMock) UpdateAmounts(ctx context.Context, cartItemID int64, qty, subtotal, discount, total int64) error {
	args := m.Called(ctx, cartItemID, qty, subtotal, discount, total)
	return args.Error(0)
}

func (m *CartItemRepoMock) MoveToCart(ctx context.Context, cartItemID, cartID int64) error {
	args := m.Called(ctx, cartItemID, cartID)
	return args.Error(0)
}

func (m *CartItemRepoMock) DeleteByID(ctx context.Context, cartItemID int64) error {
	args := m.Called(ctx, cartItemID)
	return args.Error(0)
}

func (m *CartItemRepoMock) DeleteByCartID(ctx context.Context, cartID int64) error {
	args := m.Called(ctx, cartID)
	return args.Error(0)
}

type SectionRepoMock struct{ mock.Mock }

func (m *SectionRepoMock) List(ctx context.Context) ([]model.Section, error) {
	args := m.Called(ctx)
	sections, _ := args.Get(0).([]model.Section)
	return sections, args.Error(1)
}

func (m *SectionRepoMock) FindByID(ctx context.Context, sectionID string) (model.Section, error) {
	args := m.Called(ctx, sectionID)
	s, _ := args.Get(0).(model.Section)
	return s, args.Error(1)
}

func (m *SectionRepoMock) Create(ctx context.Context, s model.Section) (model.Section, error) {
	args := m.Called(ctx, s)
	created, _ := args.Get(0).(model.Section)
	return created, args.Error(1)
}

func (m *SectionRepoMock) Update(ctx context.Context, s model.Section) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *SectionRepoMock) Delete(ctx context.Context, sectionID string) error {
	args := m.Called(ctx, sectionID)
	return args.Error(0)
}

type DrinkRepoMock struct{ mock.Mock }

func (m *DrinkRepoMock) ListBySection(ctx context.Context, sectionID string) ([]model.Drink, error) {
	args := m.Called(ctx, sectionID)
	drinks, _ := args.Get(0).([]model.Drink)
	return drinks, args.Error(1)
}

func (m *DrinkRepoMock) ListByIDs(ctx context.Context, ids []int64) ([]model.Drink, error) {
	args := m.Called(ctx, ids)
	drinks, _ := args.Get(0).([]model.Drink)
	return drinks, args.Error(1)
}

func (m *DrinkRepoMock) FindByID(ctx context.Context, drinkID int64) (model.Drink, error) {
	args := m.Called(ctx, drinkID)
	d, _ := args.Get(0).(model.Drink)
	return d, args.Error(1)
}

func (m *DrinkRepoMock) Create(ctx context.Context, d model.Drink) (model.Drink, error) {
	args := m.Called(ctx, d)
	created, _ := args.Get(0).(model.Drink)
	return created, args.Error(1)
}

func (m *DrinkRepoMock) Update(ctx context.Context, drinkID int64, upd repo.DrinkUpdate) error {
	args := m.Called(ctx, drinkID, upd)
	return args.Error(0)
}

func (m *DrinkRepoMock) Delete(ctx context.Context, drinkID int64) error {
	args := m.Called(ctx, drinkID)
	return args.Error(0)
}

type VariantRepoMock struct{ mock.Mock }

func (m *VariantRepoMock) FindByID(ctx context.Context, variantID int64) (model.DrinkVariant, error) {
	args := m.Called(ctx, variantID)
	v, _ := args.Get(0).(model.DrinkVariant)
	return v, args.Error(1)
}

func (m *VariantRepoMock) ListByDrinkID(ctx context.Context, drinkID int64) ([]model.DrinkVariant, error) {
	args := m.Called(ctx, drinkID)
	vs, _ := args.Get(0).([]model.DrinkVariant)
	return vs, args.Error(1)
}

func (m *VariantRepoMock) Create(ctx context.Context, v model.DrinkVariant) (model.DrinkVariant, error) {
	args := m.Called(ctx, v)
	created, _ := args.Get(0).(model.DrinkVariant)
	return created, args.Error(1)
}

func (m *VariantRepoMock) Update(ctx context.Context, v model.DrinkVariant) error {
	args := m.Called(ctx, v)
	return args.Error(0)
}

func (m *VariantRepoMock) Delete(ctx context.Context, variantID int64) error {
	args := m.Called(ctx, variantID)
	return args.Error(0)
}

func (m *VariantRepoMock) DeleteByDrinkID(ctx context.Context, drinkID int64) error {
	args := m.Called(ctx, drinkID)
	return args.Error(0)
}

func (m *VariantRepoMock) ReserveStock(ctx context.Context, variantID int64, qty int64) (bool, error) {
	args := m.Called(ctx, variantID, qty)
	return args.Bool(0), args.Error(1)
}

func (m *VariantRepoMock) ReleaseStock(ctx context.Context, variantID int64, qty int64) error {
	args := m.Called(ctx, variantID, qty)
	return args.Error(0)
}

func (m *VariantRepoMock) SetStock(ctx context.Context, variantID int64, newStock int64) error {
	args := m.Called(ctx, variantID, newStock)
	return args.Error(0)
}

type OrderRepoMock struct{ mock.Mock }

func (m *OrderRepoMock) Create(ctx context.Context, order model.Order) (int64, error) {
	args := m.Called(ctx, order)
	return args.Get(0).(int64), args.Error(1)
}

func (m *OrderRepoMock) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) ListByUserID(ctx context.Context, userID int64, page, limit int) ([]model.Order, int64, error) {
	args := m.Called(ctx, userID, page, limit)
	orders, _ := args.Get(0).([]model.Order)
	return orders, args.Get(1).(int64), args.Error(2)
}

func (m *OrderRepoMock) UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error {
	args := m.Called(ctx, orderID, status)
	return args.Error(0)
}

func (m *OrderRepoMock) Delete(ctx context.Context, orderID int64) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

func (m *OrderRepoMock) DeleteAllByUserID(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *OrderRepoMock) ListAdmin(ctx context.Context, f repo.AdminOrderListFilter) ([]model.Order, int64, error) {
	args := m.Called(ctx, f)
	orders, _ := args.Get(0).([]model.Order)
	return orders, args.Get(1).(int64), args.Error(2)
}

type OrderItemRepoMock struct{ mock.Mock }

func (m *OrderItemRepoMock) CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error {
	args := m.Called(ctx, orderID, items)
	return args.Error(0)
}

func (m *OrderItemRepoMock) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	args := m.Called(ctx, orderID)
	items, _ := args.Get(0).([]model.OrderItem)
	return items, args.Error(1)
}

func (m *OrderItemRepoMock) DeleteByOrderID(ctx context.Context, orderID int64) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

func (m *OrderItemRepoMock) ListDistinctDrinkIDsByUserID(ctx context.Context, userID int64) ([]int64, error) {
	args := m.Called(ctx, userID)
	ids, _ := args.Get(0).([]int64)
	return ids, args.Error(1)
}

type DeliveryInfoRepoMock struct{ mock.Mock }

func (m *DeliveryInfoRepoMock) Create(ctx context.Context, info model.DeliveryInfo) (model.DeliveryInfo, error) {
	args := m.Called(ctx, info)
	created, _ := args.Get(0).(model.DeliveryInfo)
	return created, args.Error(1)
}

func (m *DeliveryInfoRepoMock) FindByOrderID(ctx context.Context, orderID int64) (model.DeliveryInfo, error) {
	args := m.Called(ctx, orderID)
	info, _ := args.Get(0).(model.DeliveryInfo)
	return info, args.Error(1)
}

func (m *DeliveryInfoRepoMock) DeleteByOrderID(ctx context.Context, orderID int64) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

type SlotRepoMock struct{ mock.Mock }

func (m *SlotRepoMock) ListByDate(ctx context.Context, date time.Time) ([]model.DeliverySlot, error) {
	args := m.Called(ctx, date)
	slots, _ := args.Get(0).([]model.DeliverySlot)
	return slots, args.Error(1)
}

func (m *SlotRepoMock) FindByID(ctx context.Context, slotID int64) (model.DeliverySlot, error) {
	args := m.Called(ctx, slotID)
	s, _ := args.Get(0).(model.DeliverySlot)
	return s, args.Error(1)
}

func (m *SlotRepoMock) CreateBulk(ctx context.Context, slots []model.DeliverySlot) ([]model.DeliverySlot, error) {
	args := m.Called(ctx, slots)
	created, _ := args.Get(0).([]model.DeliverySlot)
	return created, args.Error(1)
}

func (m *SlotRepoMock) DeleteByDate(ctx context.Context, date time.Time) error {
	args := m.Called(ctx, date)
	return args.Error(0)
}

func (m *SlotRepoMock) Reserve(ctx context.Context, slotID int64) (bool, error) {
	args := m.Called(ctx, slotID)
	return args.Bool(0), args.Error(1)
}

type AddressRepoMock struct{ mock.Mock }

func (m *AddressRepoMock) Create(ctx context.Context, address model.Address) (model.Address, error) {
	args := m.Called(ctx, address)
	created, _ := args.Get(0).(model.Address)
	return created, args.Error(1)
}

func (m *AddressRepoMock) ListByUserID(ctx context.Context, userID int64) ([]model.Address, error) {
	args := m.Called(ctx, userID)
	addresses, _ := args.Get(0).([]model.Address)
	return addresses, args.Error(1)
}

func (m *AddressRepoMock) FindByID(ctx context.Context, addressID int64) (model.Address, error) {
	args := m.Called(ctx, addressID)
	a, _ := args.Get(0).(model.Address)
	return a, args.Error(1)
}

func (m *AddressRepoMock) Update(ctx context.Context, addressID int64, upd repo.AddressUpdate) error {
	args := m.Called(ctx, addressID, upd)
	return args.Error(0)
}

func (m *AddressRepoMock) Delete(ctx context.Context, addressID int64) error {
	args := m.Called(ctx, addressID)
	return args.Error(0)
}

func (m *AddressRepoMock) DeleteAllByUserID(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *AddressRepoMock) ExistsDuplicate(ctx context.Context, userID int64, street, house string, apartment *int) (bool, error) {
	args := m.Called(ctx, userID, street, house, apartment)
	return args.Bool(0), args.Error(1)
}

func (m *AddressRepoMock) FindDefaultByUserID(ctx context.Context, userID int64) (model.Address, error) {
	args := m.Called(ctx, userID)
	a, _ := args.Get(0).(model.Address)
	return a, args.Error(1)
}

func (m *AddressRepoMock) FindLatestByUserID(ctx context.Context, userID int64) (model.Address, error) {
	args := m.Called(ctx, userID)
	a, _ := args.Get(0).(model.Address)
	return a, args.Error(1)
}

func (m *AddressRepoMock) ClearDefault(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *AddressRepoMock) SetDefault(ctx context.Context, userID, addressID int64) error {
	args := m.Called(ctx, userID, addressID)
	return args.Error(0)
}

type StoreRepoMock struct{ mock.Mock }

func (m *StoreRepoMock) ListActive(ctx context.Context) ([]model.StoreAddress, error) {
	args := m.Called(ctx)
	stores, _ := args.Get(0).([]model.StoreAddress)
	return stores, args.Error(1)
}

func (m *StoreRepoMock) FindByID(ctx context.Context, storeID int64) (model.StoreAddress, error) {
	args := m.Called(ctx, storeID)
	s, _ := args.Get(0).(model.StoreAddress)
	return s, args.Error(1)
}

func (m *StoreRepoMock) Create(ctx context.Context, s model.StoreAddress) (model.StoreAddress, error) {
	args := m.Called(ctx, s)
	created, _ := args.Get(0).(model.StoreAddress)
	return created, args.Error(1)
}

func (m *StoreRepoMock) Update(ctx context.Context, s model.StoreAddress) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *StoreRepoMock) Delete(ctx context.Context, storeID int64) error {
	args := m.Called(ctx, storeID)
	return args.Error(0)
}

type UserRepoMock struct{ mock.Mock }

func (m *UserRepoMock) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserRepoMock) FindByID(ctx context.Context, userID int64) (*model.User, error) {
	args := m.Called(ctx, userID)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *UserRepoMock) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *UserRepoMock) UpdateProfile(ctx context.Context, userID int64, upd repo.ProfileUpdate) error {
	args := m.Called(ctx, userID, upd)
	return args.Error(0)
}

func (m *UserRepoMock) UpdatePassword(ctx context.Context, userID int64, passwordHash string) error {
	args := m.Called(ctx, userID, passwordHash)
	return args.Error(0)
}

func (m *UserRepoMock) UpdateLastLogin(ctx context.Context, userID int64, at time.Time) error {
	args := m.Called(ctx, userID, at)
	return args.Error(0)
}

func (m *UserRepoMock) CountAdminsExcept(ctx context.Context, userID int64) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *UserRepoMock) Delete(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type SessionRepoMock struct{ mock.Mock }

func (m *SessionRepoMock) Create(ctx context.Context, s *model.Session) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *SessionRepoMock) FindByTokenHash(ctx context.Context, tokenHash string) (*model.Session, error) {
	args := m.Called(ctx, tokenHash)
	s, _ := args.Get(0).(*model.Session)
	return s, args.Error(1)
}

func (m *SessionRepoMock) ExtendExpiry(ctx context.Context, sessionID string, until time.Time) error {
	args := m.Called(ctx, sessionID, until)
	return args.Error(0)
}

func (m *SessionRepoMock) DeleteByID(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

func (m *SessionRepoMock) DeleteByTokenHash(ctx context.Context, tokenHash string) error {
	args := m.Called(ctx, tokenHash)
	return args.Error(0)
}

func (m *SessionRepoMock) DeleteAllByUserID(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type AuditRepoMock struct{ mock.Mock }

func (m *AuditRepoMock) Create(ctx context.Context, log model.AuditLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *AuditRepoMock) List(ctx context.Context, filter repo.AuditLogFilter) ([]model.AuditLog, error) {
	args := m.Called(ctx, filter)
	logs, _ := args.Get(0).([]model.AuditLog)
	return logs, args.Error(1)
}

type VerificationRepoMock struct{ mock.Mock }

func (m *VerificationRepoMock) CreateUnverified(ctx context.Context, u *model.UnverifiedUser) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *VerificationRepoMock) FindUnverifiedByEmail(ctx context.Context, email string) (*model.UnverifiedUser, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*model.UnverifiedUser)
	return u, args.Error(1)
}

func (m *VerificationRepoMock) FindUnverifiedByToken(ctx context.Context, token string) (*model.UnverifiedUser, error) {
	args := m.Called(ctx, token)
	u, _ := args.Get(0).(*model.UnverifiedUser)
	return u, args.Error(1)
}

func (m *VerificationRepoMock) DeleteUnverifiedByID(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *VerificationRepoMock) CreateResetToken(ctx context.Context, t *model.PasswordResetToken) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *VerificationRepoMock) FindResetToken(ctx context.Context, token string) (*model.PasswordResetToken, error) {
	args := m.Called(ctx, token)
	t, _ := args.Get(0).(*model.PasswordResetToken)
	return t, args.Error(1)
}

func (m *VerificationRepoMock) MarkResetTokenUsed(ctx context.Context, tokenID int64) error {
	args := m.Called(ctx, tokenID)
	return args.Error(0)
}

// =====================
// Tx（テストではコールバックを即実行するだけ）
// =====================

type stubTxRepos struct {
	carts      *CartRepoMock
	cartItems  *CartItemRepoMock
	drinks     *DrinkRepoMock
	variants   *VariantRepoMock
	orders     *OrderRepoMock
	orderItems *OrderItemRepoMock
	delivery   *DeliveryInfoRepoMock
	slots      *SlotRepoMock
	addresses  *AddressRepoMock
	stores     *StoreRepoMock
	users      *UserRepoMock
	sessions   *SessionRepoMock
	auditLogs  *AuditRepoMock
}

func newStubTxRepos() *stubTxRepos {
	return &stubTxRepos{
		carts:      new(CartRepoMock),
		cartItems:  new(CartItemRepoMock),
		drinks:     new(DrinkRepoMock),
		variants:   new(VariantRepoMock),
		orders:     new(OrderRepoMock),
		orderItems: new(OrderItemRepoMock),
		delivery:   new(DeliveryInfoRepoMock),
		slots:      new(SlotRepoMock),
		addresses:  new(AddressRepoMock),
		stores:     new(StoreRepoMock),
		users:      new(UserRepoMock),
		sessions:   new(SessionRepoMock),
		auditLogs:  new(AuditRepoMock),
	}
}

func (s *stubTxRepos) Carts() repo.CartRepository              { return s.carts }
func (s *stubTxRepos) CartItems() repo.CartItemRepository      { return s.cartItems }
func (s *stubTxRepos) Drinks() repo.DrinkRepository            { return s.drinks }
func (s *stubTxRepos) Variants() repo.VariantRepository        { return s.variants }
func (s *stubTxRepos) Orders() repo.OrderRepository            { return s.orders }
func (s *stubTxRepos) OrderItems() repo.OrderItemRepository    { return s.orderItems }
func (s *stubTxRepos) Delivery() repo.DeliveryInfoRepository   { return s.delivery }
func (s *stubTxRepos) Slots() repo.DeliverySlotRepository      { return s.slots }
func (s *stubTxRepos) Addresses() repo.AddressRepository       { return s.addresses }
func (s *stubTxRepos) Stores() repo.StoreAddressRepository     { return s.stores }
func (s *stubTxRepos) Users() repo.UserRepository              { return s.users }
func (s *stubTxRepos) Sessions() repo.SessionRepository        { return s.sessions }
func (s *stubTxRepos) AuditLogs() repo.AuditLogRepository      { return s.auditLogs }

type stubTxManager struct {
	repos *stubTxRepos
}

func (m *stubTxManager) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return fn(m.repos)
}

// =====================
// helpers
// =====================

func assertErrContains(t *testing.T, err error, wantSubstr string) {
	t.Helper()
	if assert.Error(t, err) {
		assert.True(t, strings.Contains(err.Error(), wantSubstr), "err=%q want contains %q", err.Error(), wantSubstr)
	}
}

func assertHTTPStatus(t *testing.T, err error, status int) {
	t.Helper()
	he, ok := AsHTTPError(err)
	if assert.True(t, ok, "expected *HTTPError, got %v", err) {
		assert.Equal(t, status, he.Status)
	}
}

func intPtr(v int) *int       { return &v }
func boolPtr(v bool) *bool    { return &v }
func int64Ptr(v int64) *int64 { return &v }
func strPtr(v string) *string { return &v }
