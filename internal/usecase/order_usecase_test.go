package usecase

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"drinkshop/internal/domain/model"
	repo "drinkshop/internal/repository"
)

type mailerStub struct{}

func (mailerStub) Send(to, subject, htmlBody string) error { return nil }

func newOrderTestEnv() (*OrderUsecase, *stubTxRepos) {
	r := newStubTxRepos()
	u := NewOrderUsecase(r.orders, r.orderItems, r.delivery, r.drinks, &stubTxManager{repos: r}, mailerStub{}, 300)
	return u, r
}

// =====================
// Checkout
// =====================

func TestOrderUsecase_Checkout_InvalidDeliveryType(t *testing.T) {
	u, _ := newOrderTestEnv()
	_, err := u.Checkout(context.Background(), 1, CheckoutInput{DeliveryType: "drone"})
	assertErrContains(t, err, "invalid delivery_type")
}

func TestOrderUsecase_Checkout_EmptyCart(t *testing.T) {
	u, r := newOrderTestEnv()

	userID := int64(1)
	cart := model.Cart{ID: 10, UserID: &userID}
	r.carts.On("FindByUserID", mock.Anything, int64(1)).Return(cart, nil)
	r.cartItems.On("ListByCartID", mock.Anything, int64(10)).Return([]model.CartItem{}, nil)

	_, err := u.Checkout(context.Background(), 1, CheckoutInput{DeliveryType: "pickup", StoreAddressID: int64Ptr(1)})

	assertErrContains(t, err, "cart is empty")
	assertHTTPStatus(t, err, http.StatusBadRequest)
	r.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestOrderUsecase_Checkout_SlotFull(t *testing.T) {
	u, r := newOrderTestEnv()

	userID := int64(1)
	cart := model.Cart{ID: 10, UserID: &userID}
	items := []model.CartItem{{ID: 1, CartID: 10, DrinkID: 2, VariantID: 5, Quantity: 1, ItemSubtotal: 200, ItemTotal: 200}}
	slotDate := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	slot := model.DeliverySlot{ID: 3, Date: slotDate, TimeSlot: "10:00-12:00", MaxOrders: 5, CurrentOrders: 5}

	r.carts.On("FindByUserID", mock.Anything, int64(1)).Return(cart, nil)
	r.cartItems.On("ListByCartID", mock.Anything, int64(10)).Return(items, nil)
	r.addresses.On("FindDefaultByUserID", mock.Anything, int64(1)).Return(model.Address{ID: 4, UserID: 1, FullAddress: "Main st 1"}, nil)
	r.slots.On("FindByID", mock.Anything, int64(3)).Return(slot, nil)
	r.slots.On("Reserve", mock.Anything, int64(3)).Return(false, nil)

	_, err := u.Checkout(context.Background(), 1, CheckoutInput{
		DeliveryType: "courier",
		DeliveryDate: "2026-09-01",
		TimeSlotID:   int64Ptr(3),
	})

	assertErrContains(t, err, "time slot is full")
	assertHTTPStatus(t, err, http.StatusConflict)
	// 注文もカートの掃除も走らない
	r.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	r.cartItems.AssertNotCalled(t, "DeleteByCartID", mock.Anything, mock.Anything)
}

func TestOrderUsecase_Checkout_SlotDateMismatch(t *testing.T) {
	u, r := newOrderTestEnv()

	userID := int64(1)
	cart := model.Cart{ID: 10, UserID: &userID}
	items := []model.CartItem{{ID: 1, CartID: 10, VariantID: 5, Quantity: 1, ItemSubtotal: 200, ItemTotal: 200}}
	slot := model.DeliverySlot{ID: 3, Date: time.Date(2026, 9, 2, 0, 0, 0, 0, time.UTC), TimeSlot: "10:00-12:00"}

	r.carts.On("FindByUserID", mock.Anything, int64(1)).Return(cart, nil)
	r.cartItems.On("ListByCartID", mock.Anything, int64(10)).Return(items, nil)
	r.addresses.On("FindDefaultByUserID", mock.Anything, int64(1)).Return(model.Address{ID: 4, UserID: 1}, nil)
	r.slots.On("FindByID", mock.Anything, int64(3)).Return(slot, nil)

	_, err := u.Checkout(context.Background(), 1, CheckoutInput{
		DeliveryType: "courier",
		DeliveryDate: "2026-09-01",
		TimeSlotID:   int64Ptr(3),
	})

	assertErrContains(t, err, "does not match")
	r.slots.AssertNotCalled(t, "Reserve", mock.Anything, mock.Anything)
}

func TestOrderUsecase_Checkout_Courier_NoDefaultAddress(t *testing.T) {
	u, r := newOrderTestEnv()

	userID := int64(1)
	cart := model.Cart{ID: 10, UserID: &userID}
	items := []model.CartItem{{ID: 1, CartID: 10, VariantID: 5, Quantity: 1, ItemSubtotal: 200, ItemTotal: 200}}

	r.carts.On("FindByUserID", mock.Anything, int64(1)).Return(cart, nil)
	r.cartItems.On("ListByCartID", mock.Anything, int64(10)).Return(items, nil)
	r.addresses.On("FindDefaultByUserID", mock.Anything, int64(1)).Return(model.Address{}, repo.ErrNotFound)

	_, err := u.Checkout(context.Background(), 1, CheckoutInput{DeliveryType: "courier", DeliveryDate: "2026-09-01", TimeSlotID: int64Ptr(3)})

	assertErrContains(t, err, "delivery address is required")
}

func TestOrderUsecase_Checkout_Courier_ForeignAddress(t *testing.T) {
	u, r := newOrderTestEnv()

	userID := int64(1)
	cart := model.Cart{ID: 10, UserID: &userID}
	items := []model.CartItem{{ID: 1, CartID: 10, VariantID: 5, Quantity: 1, ItemSubtotal: 200, ItemTotal: 200}}

	r.carts.On("FindByUserID", mock.Anything, int64(1)).Return(cart, nil)
	r.cartItems.On("ListByCartID", mock.Anything, int64(10)).Return(items, nil)
	r.addresses.On("FindByID", mock.Anything, int64(9)).Return(model.Address{ID: 9, UserID: 777}, nil)

	_, err := u.Checkout(context.Background(), 1, CheckoutInput{DeliveryType: "courier", AddressID: int64Ptr(9), DeliveryDate: "2026-09-01", TimeSlotID: int64Ptr(3)})

	assertHTTPStatus(t, err, http.StatusForbidden)
}

func TestOrderUsecase_Checkout_Pickup_InactiveStore(t *testing.T) {
	u, r := newOrderTestEnv()

	userID := int64(1)
	cart := model.Cart{ID: 10, UserID: &userID}
	items := []model.CartItem{{ID: 1, CartID: 10, VariantID: 5, Quantity: 1, ItemSubtotal: 200, ItemTotal: 200}}

	r.carts.On("FindByUserID", mock.Anything, int64(1)).Return(cart, nil)
	r.cartItems.On("ListByCartID", mock.Anything, int64(10)).Return(items, nil)
	r.stores.On("FindByID", mock.Anything, int64(2)).Return(model.StoreAddress{ID: 2, IsActive: false}, nil)

	_, err := u.Checkout(context.Background(), 1, CheckoutInput{DeliveryType: "pickup", StoreAddressID: int64Ptr(2)})

	assertErrContains(t, err, "store is not active")
}

func TestOrderUsecase_Checkout_Courier_Success(t *testing.T) {
	u, r := newOrderTestEnv()

	userID := int64(1)
	cart := model.Cart{ID: 10, UserID: &userID}
	items := []model.CartItem{
		{ID: 1, CartID: 10, DrinkID: 2, VariantID: 5, Quantity: 3, ItemSubtotal: 600, ItemDiscount: 60, ItemTotal: 540},
	}
	slotDate := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	slot := model.DeliverySlot{ID: 3, Date: slotDate, TimeSlot: "10:00-12:00", MaxOrders: 5, CurrentOrders: 1}
	variant := model.DrinkVariant{ID: 5, DrinkID: 2, Volume: 500, Price: 200, Sale: intPtr(10)}
	drink := model.Drink{ID: 2, Name: "cola"}

	r.carts.On("FindByUserID", mock.Anything, int64(1)).Return(cart, nil)
	r.cartItems.On("ListByCartID", mock.Anything, int64(10)).Return(items, nil)
	r.addresses.On("FindDefaultByUserID", mock.Anything, int64(1)).Return(model.Address{ID: 4, UserID: 1, FullAddress: "Main st 1"}, nil)
	r.slots.On("FindByID", mock.Anything, int64(3)).Return(slot, nil)
	r.slots.On("Reserve", mock.Anything, int64(3)).Return(true, nil)

	r.orders.On("Create", mock.Anything, mock.MatchedBy(func(o model.Order) bool {
		// 合計 = 小計 - 割引 + 配送料
		return o.UserID == 1 &&
			o.Status == model.OrderStatusNew &&
			o.DeliveryType == model.DeliveryTypeCourier &&
			o.Subtotal == 600 && o.Discount == 60 && o.Total == 540+300
	})).Return(int64(77), nil)

	r.variants.On("FindByID", mock.Anything, int64(5)).Return(variant, nil)
	r.drinks.On("FindByID", mock.Anything, int64(2)).Return(drink, nil)
	r.orderItems.On("CreateBulk", mock.Anything, int64(77), mock.MatchedBy(func(ois []model.OrderItem) bool {
		if len(ois) != 1 {
			return false
		}
		oi := ois[0]
		return oi.PriceOriginal == 200 && oi.PriceFinal == 180 && oi.Sale == 10 && oi.Volume == 500 && oi.ItemTotal == 540
	})).Return(nil)

	r.delivery.On("Create", mock.Anything, mock.MatchedBy(func(info model.DeliveryInfo) bool {
		return info.OrderID == 77 &&
			info.FullAddress == "Main st 1" &&
			info.DeliveryTime == "10:00-12:00" &&
			info.DeliveryPrice == 300
	})).Return(model.DeliveryInfo{ID: 1}, nil)

	r.cartItems.On("DeleteByCartID", mock.Anything, int64(10)).Return(nil)
	r.carts.On("UpdateTotals", mock.Anything, int64(10), int64(0), int64(0), int64(0)).Return(nil)
	r.users.On("FindByID", mock.Anything, int64(1)).Return((*model.User)(nil), repo.ErrUserNotFound)

	resp, err := u.Checkout(context.Background(), 1, CheckoutInput{
		DeliveryType: "courier",
		DeliveryDate: "2026-09-01",
		TimeSlotID:   int64Ptr(3),
	})

	assert.NoError(t, err)
	assert.Equal(t, int64(77), resp.ID)
	assert.Equal(t, int64(840), resp.OrderTotal)
	assert.Equal(t, "new", resp.Status)
	r.orders.AssertExpectations(t)
	r.orderItems.AssertExpectations(t)
	r.delivery.AssertExpectations(t)
	r.carts.AssertExpectations(t)
	r.slots.AssertExpectations(t)
}

func TestOrderUsecase_Checkout_Pickup_NoDeliveryPrice(t *testing.T) {
	u, r := newOrderTestEnv()

	userID := int64(1)
	cart := model.Cart{ID: 10, UserID: &userID}
	items := []model.CartItem{{ID: 1, CartID: 10, DrinkID: 2, VariantID: 5, Quantity: 1, ItemSubtotal: 200, ItemTotal: 200}}
	store := model.StoreAddress{ID: 2, FullAddress: "Shop st 5", IsActive: true}
	variant := model.DrinkVariant{ID: 5, DrinkID: 2, Volume: 330, Price: 200}

	r.carts.On("FindByUserID", mock.Anything, int64(1)).Return(cart, nil)
	r.cartItems.On("ListByCartID", mock.Anything, int64(10)).Return(items, nil)
	r.stores.On("FindByID", mock.Anything, int64(2)).Return(store, nil)
	r.orders.On("Create", mock.Anything, mock.MatchedBy(func(o model.Order) bool {
		return o.DeliveryType == model.DeliveryTypePickup && o.Total == 200 && o.StoreAddressID != nil && *o.StoreAddressID == 2
	})).Return(int64(78), nil)
	r.variants.On("FindByID", mock.Anything, int64(5)).Return(variant, nil)
	r.drinks.On("FindByID", mock.Anything, int64(2)).Return(model.Drink{ID: 2}, nil)
	r.orderItems.On("CreateBulk", mock.Anything, int64(78), mock.Anything).Return(nil)
	r.delivery.On("Create", mock.Anything, mock.MatchedBy(func(info model.DeliveryInfo) bool {
		return info.OrderID == 78 && info.FullAddress == "Shop st 5" && info.DeliveryPrice == 0
	})).Return(model.DeliveryInfo{ID: 2}, nil)
	r.cartItems.On("DeleteByCartID", mock.Anything, int64(10)).Return(nil)
	r.carts.On("UpdateTotals", mock.Anything, int64(10), int64(0), int64(0), int64(0)).Return(nil)
	r.users.On("FindByID", mock.Anything, int64(1)).Return((*model.User)(nil), repo.ErrUserNotFound)

	resp, err := u.Checkout(context.Background(), 1, CheckoutInput{DeliveryType: "pickup", StoreAddressID: int64Ptr(2)})

	assert.NoError(t, err)
	assert.Equal(t, int64(200), resp.OrderTotal)
	r.delivery.AssertExpectations(t)
}

// =====================
// 一覧・明細・削除
// =====================

func TestOrderUsecase_GetOrderItems_Forbidden(t *testing.T) {
	u, r := newOrderTestEnv()

	r.orders.On("FindByID", mock.Anything, int64(7)).Return(model.Order{ID: 7, UserID: 999}, nil)

	_, err := u.GetOrderItems(context.Background(), 1, model.RoleUser, 7)

	assertHTTPStatus(t, err, http.StatusForbidden)
	r.orderItems.AssertNotCalled(t, "ListByOrderID", mock.Anything, mock.Anything)
}

func TestOrderUsecase_GetOrderItems_AdminCanSeeAny(t *testing.T) {
	u, r := newOrderTestEnv()

	r.orders.On("FindByID", mock.Anything, int64(7)).Return(model.Order{ID: 7, UserID: 999}, nil)
	r.orderItems.On("ListByOrderID", mock.Anything, int64(7)).Return([]model.OrderItem{{ID: 1}}, nil)

	items, err := u.GetOrderItems(context.Background(), 1, model.RoleAdmin, 7)

	assert.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestOrderUsecase_DeleteOrder_OwnerCannotDeleteProcessed(t *testing.T) {
	u, r := newOrderTestEnv()

	r.orders.On("FindByID", mock.Anything, int64(7)).Return(model.Order{ID: 7, UserID: 1, Status: model.OrderStatusProcessing}, nil)

	err := u.DeleteOrder(context.Background(), 1, model.RoleUser, 7)

	assertErrContains(t, err, "only new orders can be deleted")
	assertHTTPStatus(t, err, http.StatusConflict)
	r.orders.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestOrderUsecase_DeleteOrder_Owner_Success(t *testing.T) {
	u, r := newOrderTestEnv()

	r.orders.On("FindByID", mock.Anything, int64(7)).Return(model.Order{ID: 7, UserID: 1, Status: model.OrderStatusNew}, nil)
	r.delivery.On("DeleteByOrderID", mock.Anything, int64(7)).Return(nil)
	r.orderItems.On("DeleteByOrderID", mock.Anything, int64(7)).Return(nil)
	r.orders.On("Delete", mock.Anything, int64(7)).Return(nil)

	err := u.DeleteOrder(context.Background(), 1, model.RoleUser, 7)

	assert.NoError(t, err)
	r.orders.AssertExpectations(t)
	r.delivery.AssertExpectations(t)
	r.orderItems.AssertExpectations(t)
}

func TestOrderUsecase_ListMyOrders_ClampsPaging(t *testing.T) {
	u, r := newOrderTestEnv()

	r.orders.On("ListByUserID", mock.Anything, int64(1), 1, 20).Return([]model.Order{}, int64(0), nil)

	resp, err := u.ListMyOrders(context.Background(), 1, 0, 1000)

	assert.NoError(t, err)
	assert.Equal(t, 1, resp.Page)
	assert.Equal(t, 20, resp.Limit)
	r.orders.AssertExpectations(t)
}

func TestOrderUsecase_MyDrinks_EmptyWithoutOrders(t *testing.T) {
	u, r := newOrderTestEnv()

	r.orderItems.On("ListDistinctDrinkIDsByUserID", mock.Anything, int64(1)).Return([]int64{}, nil)

	drinks, err := u.MyDrinks(context.Background(), 1)

	assert.NoError(t, err)
	assert.Empty(t, drinks)
	r.drinks.AssertNotCalled(t, "ListByIDs", mock.Anything, mock.Anything)
}
