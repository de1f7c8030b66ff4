package usecase

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"drinkshop/internal/domain/model"
	"drinkshop/internal/infra/mail"
	repo "drinkshop/internal/repository"
)

const dateLayout = "2006-01-02"

type CheckoutInput struct {
	DeliveryType    string
	AddressID       *int64
	StoreAddressID  *int64
	DeliveryDate    string
	TimeSlotID      *int64
	DeliveryComment string
	CustomerName    string
	CustomerPhone   string
}

type CheckoutResponse struct {
	ID           int64     `json:"id"`
	OrderTotal   int64     `json:"order_total"`
	Status       string    `json:"status"`
	DeliveryType string    `json:"delivery_type"`
	CreatedAt    time.Time `json:"created_at"`
}

type OrderResponse struct {
	ID           int64               `json:"id"`
	Subtotal     int64               `json:"order_subtotal"`
	Discount     int64               `json:"order_discount"`
	Total        int64               `json:"order_total"`
	Status       string              `json:"status"`
	DeliveryType string              `json:"delivery_type"`
	CreatedAt    time.Time           `json:"created_at"`
	Items        []model.OrderItem   `json:"items"`
	Delivery     *model.DeliveryInfo `json:"delivery_info"`
}

type OrderListResponse struct {
	Orders []OrderResponse `json:"orders"`
	Total  int64           `json:"total"`
	Page   int             `json:"page"`
	Limit  int             `json:"limit"`
}

type OrderUsecase struct {
	orderRepo     repo.OrderRepository
	orderItemRepo repo.OrderItemRepository
	deliveryRepo  repo.DeliveryInfoRepository
	drinkRepo     repo.DrinkRepository
	tm            repo.TransactionManager
	mailer        mail.Mailer
	deliveryPrice int64
}

func NewOrderUsecase(
	orderRepo repo.OrderRepository,
	orderItemRepo repo.OrderItemRepository,
	deliveryRepo repo.DeliveryInfoRepository,
	drinkRepo repo.DrinkRepository,
	tm repo.TransactionManager,
	mailer mail.Mailer,
	deliveryPrice int64,
) *OrderUsecase {
	return &OrderUsecase{
		orderRepo:     orderRepo,
		orderItemRepo: orderItemRepo,
		deliveryRepo:  deliveryRepo,
		drinkRepo:     drinkRepo,
		tm:            tm,
		mailer:        mailer,
		deliveryPrice: deliveryPrice,
	}
}

// Checkout はカートから注文を1トランザクションで組み立てる。
// スロット予約を含めて途中で失敗したら全部巻き戻す。在庫はカート投入時に
// 引き当て済みなので、ここでは触らない。
func (u *OrderUsecase) Checkout(ctx context.Context, userID int64, in CheckoutInput) (CheckoutResponse, error) {
	deliveryType := model.DeliveryType(in.DeliveryType)
	if deliveryType != model.DeliveryTypeCourier && deliveryType != model.DeliveryTypePickup {
		return CheckoutResponse{}, NewHTTPError(http.StatusBadRequest, "invalid delivery_type")
	}

	var resp CheckoutResponse
	var userEmail string

	err := u.tm.WithinTx(ctx, func(r repo.TxRepos) error {
		cart, err := r.Carts().FindByUserID(ctx, userID)
		if err != nil {
			return NewHTTPError(http.StatusBadRequest, "cart is empty")
		}
		items, err := r.CartItems().ListByCartID(ctx, cart.ID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if len(items) == 0 {
			return NewHTTPError(http.StatusBadRequest, "cart is empty")
		}

		var subtotal, discount int64
		for _, it := range items {
			subtotal += it.ItemSubtotal
			discount += it.ItemDiscount
		}

		order := model.Order{
			UserID:       userID,
			Status:       model.OrderStatusNew,
			DeliveryType: deliveryType,
		}
		info := model.DeliveryInfo{
			DeliveryComment: in.DeliveryComment,
			CustomerName:    in.CustomerName,
			CustomerPhone:   in.CustomerPhone,
		}
		var deliveryPrice int64

		switch deliveryType {
		case model.DeliveryTypeCourier:
			address, err := u.resolveCourierAddress(ctx, r, userID, in.AddressID)
			if err != nil {
				return err
			}
			order.AddressID = &address.ID
			info.FullAddress = address.FullAddress

			if in.DeliveryDate == "" || in.TimeSlotID == nil {
				return NewHTTPError(http.StatusBadRequest, "delivery date and time slot are required")
			}
			date, err := time.ParseInLocation(dateLayout, in.DeliveryDate, time.UTC)
			if err != nil {
				return NewHTTPError(http.StatusBadRequest, "invalid delivery date")
			}

			slot, err := r.Slots().FindByID(ctx, *in.TimeSlotID)
			if err != nil {
				return NewHTTPError(http.StatusNotFound, "time slot not found")
			}
			if slot.Date.Format(dateLayout) != in.DeliveryDate {
				return NewHTTPError(http.StatusBadRequest, "time slot does not match the requested date")
			}
			ok, err := r.Slots().Reserve(ctx, slot.ID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if !ok {
				return NewHTTPError(http.StatusConflict, "time slot is full")
			}

			info.DeliveryDate = &date
			info.DeliveryTime = slot.TimeSlot
			info.TimeSlotID = &slot.ID
			deliveryPrice = u.deliveryPrice

		case model.DeliveryTypePickup:
			if in.StoreAddressID == nil {
				return NewHTTPError(http.StatusBadRequest, "store_address_id is required")
			}
			store, err := r.Stores().FindByID(ctx, *in.StoreAddressID)
			if err != nil {
				return NewHTTPError(http.StatusNotFound, "store not found")
			}
			if !store.IsActive {
				return NewHTTPError(http.StatusBadRequest, "store is not active")
			}
			order.StoreAddressID = &store.ID
			info.FullAddress = store.FullAddress
		}

		order.Subtotal = subtotal
		order.Discount = discount
		order.Total = subtotal - discount + deliveryPrice
		info.DeliveryPrice = deliveryPrice

		orderID, err := r.Orders().Create(ctx, order)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		orderItems, err := snapshotCartLines(ctx, r, items)
		if err != nil {
			return err
		}
		if err := r.OrderItems().CreateBulk(ctx, orderID, orderItems); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		info.OrderID = orderID
		if _, err := r.Delivery().Create(ctx, info); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		// カートは空にするが行自体は残す
		if err := r.CartItems().DeleteByCartID(ctx, cart.ID); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if err := r.Carts().UpdateTotals(ctx, cart.ID, 0, 0, 0); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if user, err := r.Users().FindByID(ctx, userID); err == nil {
			userEmail = user.Email
		}

		resp = CheckoutResponse{
			ID:           orderID,
			OrderTotal:   order.Total,
			Status:       string(order.Status),
			DeliveryType: string(order.DeliveryType),
			CreatedAt:    nowUTC(),
		}
		return nil
	})
	if err != nil {
		return CheckoutResponse{}, err
	}

	// 確認メールはコミット後に投げっぱなし。失敗してもログだけ。
	if userEmail != "" {
		go func(email string, orderID, total int64) {
			body := fmt.Sprintf("<p>Your order #%d has been placed. Total: %d.</p>", orderID, total)
			if err := u.mailer.Send(email, fmt.Sprintf("Order #%d confirmed", orderID), body); err != nil {
				log.Printf("order confirmation mail: %v", err)
			}
		}(userEmail, resp.ID, resp.OrderTotal)
	}

	return resp, nil
}

// 指定があればその住所（持ち主確認つき）、無ければデフォルト住所
func (u *OrderUsecase) resolveCourierAddress(ctx context.Context, r repo.TxRepos, userID int64, addressID *int64) (model.Address, error) {
	if addressID != nil {
		address, err := r.Addresses().FindByID(ctx, *addressID)
		if err != nil {
			return model.Address{}, NewHTTPError(http.StatusNotFound, "address not found")
		}
		if address.UserID != userID {
			return model.Address{}, NewHTTPError(http.StatusForbidden, "forbidden")
		}
		return address, nil
	}
	address, err := r.Addresses().FindDefaultByUserID(ctx, userID)
	if err != nil {
		return model.Address{}, NewHTTPError(http.StatusBadRequest, "delivery address is required")
	}
	return address, nil
}

// カート明細を注文明細に写す。金額キャッシュはそのままコピーし、
// 価格・割引・容量は現在のカタログ値をスナップショットとして固める。
func snapshotCartLines(ctx context.Context, r repo.TxRepos, items []model.CartItem) ([]model.OrderItem, error) {
	out := make([]model.OrderItem, 0, len(items))
	for _, it := range items {
		variant, err := r.Variants().FindByID(ctx, it.VariantID)
		if err != nil {
			return nil, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		drink, err := r.Drinks().FindByID(ctx, variant.DrinkID)
		if err != nil {
			return nil, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		sale := discountFor(drink, variant)
		out = append(out, model.OrderItem{
			DrinkID:       it.DrinkID,
			VariantID:     it.VariantID,
			Quantity:      it.Quantity,
			PriceOriginal: variant.Price,
			PriceFinal:    finalUnitPrice(variant.Price, sale),
			Sale:          sale,
			Volume:        variant.Volume,
			ItemSubtotal:  it.ItemSubtotal,
			ItemDiscount:  it.ItemDiscount,
			ItemTotal:     it.ItemTotal,
		})
	}
	return out, nil
}

// ListMyOrders は自分の注文一覧。新しい順・ページング。
func (u *OrderUsecase) ListMyOrders(ctx context.Context, userID int64, page, limit int) (OrderListResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	orders, total, err := u.orderRepo.ListByUserID(ctx, userID, page, limit)
	if err != nil {
		return OrderListResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	resp := OrderListResponse{Orders: make([]OrderResponse, 0, len(orders)), Total: total, Page: page, Limit: limit}
	for _, o := range orders {
		or, err := u.buildOrderResponse(ctx, o)
		if err != nil {
			return OrderListResponse{}, err
		}
		resp.Orders = append(resp.Orders, or)
	}
	return resp, nil
}

func (u *OrderUsecase) buildOrderResponse(ctx context.Context, o model.Order) (OrderResponse, error) {
	items, err := u.orderItemRepo.ListByOrderID(ctx, o.ID)
	if err != nil {
		return OrderResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	resp := OrderResponse{
		ID:           o.ID,
		Subtotal:     o.Subtotal,
		Discount:     o.Discount,
		Total:        o.Total,
		Status:       string(o.Status),
		DeliveryType: string(o.DeliveryType),
		CreatedAt:    o.CreatedAt,
		Items:        items,
	}
	if info, err := u.deliveryRepo.FindByOrderID(ctx, o.ID); err == nil {
		resp.Delivery = &info
	}
	return resp, nil
}

// GetOrderItems は注文の明細。持ち主か管理者だけが見られる。
func (u *OrderUsecase) GetOrderItems(ctx context.Context, userID int64, role model.Role, orderID int64) ([]model.OrderItem, error) {
	order, err := u.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, NewHTTPError(http.StatusNotFound, "order not found")
	}
	if order.UserID != userID && role != model.RoleAdmin {
		return nil, NewHTTPError(http.StatusForbidden, "forbidden")
	}
	items, err := u.orderItemRepo.ListByOrderID(ctx, orderID)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return items, nil
}

// DeleteOrder は持ち主ならnewの注文だけ、管理者ならどれでも消せる。
// 明細・配送情報・注文本体を1トランザクションで消す。
func (u *OrderUsecase) DeleteOrder(ctx context.Context, userID int64, role model.Role, orderID int64) error {
	return u.tm.WithinTx(ctx, func(r repo.TxRepos) error {
		order, err := r.Orders().FindByID(ctx, orderID)
		if err != nil {
			return NewHTTPError(http.StatusNotFound, "order not found")
		}
		if role != model.RoleAdmin {
			if order.UserID != userID {
				return NewHTTPError(http.StatusForbidden, "forbidden")
			}
			if order.Status != model.OrderStatusNew {
				return NewHTTPError(http.StatusConflict, "only new orders can be deleted")
			}
		}

		if err := r.Delivery().DeleteByOrderID(ctx, orderID); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if err := r.OrderItems().DeleteByOrderID(ctx, orderID); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if err := r.Orders().Delete(ctx, orderID); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		return nil
	})
}

// MyDrinks は注文したことのある商品の一覧（再注文用）
func (u *OrderUsecase) MyDrinks(ctx context.Context, userID int64) ([]model.Drink, error) {
	ids, err := u.orderItemRepo.ListDistinctDrinkIDsByUserID(ctx, userID)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if len(ids) == 0 {
		return []model.Drink{}, nil
	}
	drinks, err := u.drinkRepo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return drinks, nil
}
