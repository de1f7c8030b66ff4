package usecase

import (
	"context"
	"math"
	"net/http"

	"github.com/google/uuid"

	"drinkshop/internal/domain/model"
	repo "drinkshop/internal/repository"
)

// リクエストの持ち主。ログイン済みなら UserID、ゲストならCookieのセッションキー。
type CartIdentity struct {
	UserID     *int64
	SessionKey string
}

// ハンドラへのCookie指示。SetKeyが空でなければ cart_session_key を発行、
// Clearならマージ・付け替え済みなので削除する。
type CartCookie struct {
	SetKey string
	Clear  bool
}

type CartItemResponse struct {
	ID           int64  `json:"id"`
	DrinkID      int64  `json:"drink_id"`
	VariantID    int64  `json:"variant_id"`
	Name         string `json:"name"`
	Volume       int    `json:"volume"`
	Quantity     int64  `json:"quantity"`
	ItemSubtotal int64  `json:"item_subtotal"`
	ItemDiscount int64  `json:"item_discount"`
	ItemTotal    int64  `json:"item_total"`
}

type CartResponse struct {
	Items    []CartItemResponse `json:"items"`
	Subtotal int64              `json:"cart_subtotal"`
	Discount int64              `json:"cart_discount"`
	Total    int64              `json:"cart_total"`
}

type AddCartItemInput struct {
	VariantID int64
	Quantity  int64
}

type CartUsecase struct {
	tm repo.TransactionManager
}

func NewCartUsecase(tm repo.TransactionManager) *CartUsecase {
	return &CartUsecase{tm: tm}
}

// 割引率の優先順位：容量単位のsaleが非nilならそれ（0も有効）、
// 次に商品全体のglobal_sale、どちらも無ければ0。
func discountFor(d model.Drink, v model.DrinkVariant) int {
	if v.Sale != nil {
		return *v.Sale
	}
	if d.GlobalSale != nil {
		return *d.GlobalSale
	}
	return 0
}

// 割引後の単価。丸めはここの1箇所だけ（四捨五入・5は0から遠い方へ）。
func finalUnitPrice(price int64, sale int) int64 {
	return int64(math.Round(float64(price) * float64(100-sale) / 100))
}

func lineAmounts(price int64, sale int, qty int64) (subtotal, discount, total int64) {
	final := finalUnitPrice(price, sale)
	return price * qty, (price - final) * qty, final * qty
}

// resolveCart は持ち主のカートを特定して返す。無ければ作る。
// ログイン済みでゲストカートも残っている場合はここでマージする。
func resolveCart(ctx context.Context, r repo.TxRepos, id CartIdentity) (model.Cart, CartCookie, error) {
	var cookie CartCookie

	if id.UserID != nil {
		userID := *id.UserID

		userCart, userErr := r.Carts().FindByUserID(ctx, userID)

		if id.SessionKey != "" {
			guestCart, guestErr := r.Carts().FindGuestBySessionKey(ctx, id.SessionKey)
			if guestErr == nil {
				if userErr == nil {
					if err := mergeCarts(ctx, r, guestCart, userCart); err != nil {
						return model.Cart{}, cookie, err
					}
					cookie.Clear = true
					return userCart, cookie, nil
				}
				// ユーザーカートが無ければゲストカートをそのまま付け替える
				if err := r.Carts().AttachToUser(ctx, guestCart.ID, userID); err != nil {
					return model.Cart{}, cookie, NewHTTPError(http.StatusInternalServerError, "db error")
				}
				guestCart.UserID = &userID
				guestCart.SessionKey = nil
				cookie.Clear = true
				return guestCart, cookie, nil
			}
			cookie.Clear = true
		}

		if userErr == nil {
			return userCart, cookie, nil
		}

		created, err := r.Carts().Create(ctx, model.Cart{UserID: &userID})
		if err != nil {
			return model.Cart{}, cookie, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		return created, cookie, nil
	}

	if id.SessionKey != "" {
		cart, err := r.Carts().FindGuestBySessionKey(ctx, id.SessionKey)
		if err == nil {
			return cart, cookie, nil
		}
	}

	key := uuid.NewString()
	created, err := r.Carts().Create(ctx, model.Cart{SessionKey: &key})
	if err != nil {
		return model.Cart{}, cookie, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	cookie.SetKey = key
	return created, cookie, nil
}

// mergeCarts はゲストカートの明細をユーザーカートへ移し、ゲストカートを消す。
// 同じ容量の明細は数量を合算して現在価格で金額を引き直す。
func mergeCarts(ctx context.Context, r repo.TxRepos, guest, user model.Cart) error {
	items, err := r.CartItems().ListByCartID(ctx, guest.ID)
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	for _, gi := range items {
		existing, err := r.CartItems().FindByCartAndVariant(ctx, user.ID, gi.VariantID)
		if err != nil {
			if err := r.CartItems().MoveToCart(ctx, gi.ID, user.ID); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			continue
		}

		variant, err := r.Variants().FindByID(ctx, gi.VariantID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		drink, err := r.Drinks().FindByID(ctx, variant.DrinkID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		qty := existing.Quantity + gi.Quantity
		sub, disc, total := lineAmounts(variant.Price, discountFor(drink, variant), qty)
		if err := r.CartItems().UpdateAmounts(ctx, existing.ID, qty, sub, disc, total); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if err := r.CartItems().DeleteByID(ctx, gi.ID); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
	}

	if err := r.Carts().Delete(ctx, guest.ID); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return recomputeCartTotals(ctx, r, user.ID)
}

// 明細のキャッシュ金額を合算してカート側のキャッシュを更新する
func recomputeCartTotals(ctx context.Context, r repo.TxRepos, cartID int64) error {
	items, err := r.CartItems().ListByCartID(ctx, cartID)
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	var subtotal, discount, total int64
	for _, it := range items {
		subtotal += it.ItemSubtotal
		discount += it.ItemDiscount
		total += it.ItemTotal
	}
	if err := r.Carts().UpdateTotals(ctx, cartID, subtotal, discount, total); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

func buildCartResponse(ctx context.Context, r repo.TxRepos, cartID int64) (CartResponse, error) {
	items, err := r.CartItems().ListByCartID(ctx, cartID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	drinkIDs := make([]int64, 0, len(items))
	for _, it := range items {
		drinkIDs = append(drinkIDs, it.DrinkID)
	}
	drinks, err := r.Drinks().ListByIDs(ctx, drinkIDs)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	names := make(map[int64]string, len(drinks))
	for _, d := range drinks {
		names[d.ID] = d.Name
	}

	resp := CartResponse{Items: make([]CartItemResponse, 0, len(items))}
	for _, it := range items {
		volume := 0
		if v, err := r.Variants().FindByID(ctx, it.VariantID); err == nil {
			volume = v.Volume
		}
		resp.Items = append(resp.Items, CartItemResponse{
			ID:           it.ID,
			DrinkID:      it.DrinkID,
			VariantID:    it.VariantID,
			Name:         names[it.DrinkID],
			Volume:       volume,
			Quantity:     it.Quantity,
			ItemSubtotal: it.ItemSubtotal,
			ItemDiscount: it.ItemDiscount,
			ItemTotal:    it.ItemTotal,
		})
		resp.Subtotal += it.ItemSubtotal
		resp.Discount += it.ItemDiscount
		resp.Total += it.ItemTotal
	}
	return resp, nil
}

// GetCart はカート取得（無ければ作って空を返す）。マージもここで起こり得る。
func (u *CartUsecase) GetCart(ctx context.Context, id CartIdentity) (CartResponse, CartCookie, error) {
	var resp CartResponse
	var cookie CartCookie

	err := u.tm.WithinTx(ctx, func(r repo.TxRepos) error {
		cart, ck, err := resolveCart(ctx, r, id)
		if err != nil {
			return err
		}
		cookie = ck
		resp, err = buildCartResponse(ctx, r, cart.ID)
		return err
	})
	return resp, cookie, err
}

// AddItem はカートに追加。同じ容量は数量を加算する。
// 在庫の引き当てに失敗したら409で、在庫は変えない。
func (u *CartUsecase) AddItem(ctx context.Context, id CartIdentity, in AddCartItemInput) (CartResponse, CartCookie, error) {
	if in.VariantID <= 0 {
		return CartResponse{}, CartCookie{}, NewHTTPError(http.StatusBadRequest, "invalid variant_id")
	}
	if in.Quantity < 1 {
		return CartResponse{}, CartCookie{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}

	var resp CartResponse
	var cookie CartCookie

	err := u.tm.WithinTx(ctx, func(r repo.TxRepos) error {
		cart, ck, err := resolveCart(ctx, r, id)
		if err != nil {
			return err
		}
		cookie = ck

		variant, err := r.Variants().FindByID(ctx, in.VariantID)
		if err != nil {
			return NewHTTPError(http.StatusNotFound, "variant not found")
		}
		drink, err := r.Drinks().FindByID(ctx, variant.DrinkID)
		if err != nil {
			return NewHTTPError(http.StatusNotFound, "drink not found")
		}

		ok, err := r.Variants().ReserveStock(ctx, variant.ID, in.Quantity)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if !ok {
			return NewHTTPError(http.StatusConflict, "insufficient stock")
		}

		sale := discountFor(drink, variant)
		existing, err := r.CartItems().FindByCartAndVariant(ctx, cart.ID, variant.ID)
		if err == nil {
			qty := existing.Quantity + in.Quantity
			sub, disc, total := lineAmounts(variant.Price, sale, qty)
			if err := r.CartItems().UpdateAmounts(ctx, existing.ID, qty, sub, disc, total); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
		} else {
			sub, disc, total := lineAmounts(variant.Price, sale, in.Quantity)
			if _, err := r.CartItems().Create(ctx, model.CartItem{
				CartID:       cart.ID,
				DrinkID:      drink.ID,
				VariantID:    variant.ID,
				Quantity:     in.Quantity,
				ItemSubtotal: sub,
				ItemDiscount: disc,
				ItemTotal:    total,
			}); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
		}

		if err := recomputeCartTotals(ctx, r, cart.ID); err != nil {
			return err
		}
		resp, err = buildCartResponse(ctx, r, cart.ID)
		return err
	})
	return resp, cookie, err
}

// 持ち主のカートの明細であることを確認して返す
func findOwnedItem(ctx context.Context, r repo.TxRepos, cartID, cartItemID int64) (model.CartItem, error) {
	item, err := r.CartItems().FindByID(ctx, cartItemID)
	if err != nil {
		return model.CartItem{}, NewHTTPError(http.StatusNotFound, "cart item not found")
	}
	if item.CartID != cartID {
		return model.CartItem{}, NewHTTPError(http.StatusForbidden, "forbidden")
	}
	return item, nil
}

// DecrementItem は数量を1減らす。0になったら明細ごと消す。減らした分の在庫は戻す。
func (u *CartUsecase) DecrementItem(ctx context.Context, id CartIdentity, cartItemID int64) (CartResponse, CartCookie, error) {
	var resp CartResponse
	var cookie CartCookie

	err := u.tm.WithinTx(ctx, func(r repo.TxRepos) error {
		cart, ck, err := resolveCart(ctx, r, id)
		if err != nil {
			return err
		}
		cookie = ck

		item, err := findOwnedItem(ctx, r, cart.ID, cartItemID)
		if err != nil {
			return err
		}

		if err := r.Variants().ReleaseStock(ctx, item.VariantID, 1); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if item.Quantity <= 1 {
			if err := r.CartItems().DeleteByID(ctx, item.ID); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
		} else {
			qty := item.Quantity - 1
			// 単価は変えず、キャッシュ金額を数量比で引き直す
			unitSub := item.ItemSubtotal / item.Quantity
			unitDisc := item.ItemDiscount / item.Quantity
			unitTotal := item.ItemTotal / item.Quantity
			if err := r.CartItems().UpdateAmounts(ctx, item.ID, qty, unitSub*qty, unitDisc*qty, unitTotal*qty); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
		}

		if err := recomputeCartTotals(ctx, r, cart.ID); err != nil {
			return err
		}
		resp, err = buildCartResponse(ctx, r, cart.ID)
		return err
	})
	return resp, cookie, err
}

// RemoveItem は明細を丸ごと消して、引き当てていた在庫を全量戻す。
func (u *CartUsecase) RemoveItem(ctx context.Context, id CartIdentity, cartItemID int64) (CartResponse, CartCookie, error) {
	var resp CartResponse
	var cookie CartCookie

	err := u.tm.WithinTx(ctx, func(r repo.TxRepos) error {
		cart, ck, err := resolveCart(ctx, r, id)
		if err != nil {
			return err
		}
		cookie = ck

		item, err := findOwnedItem(ctx, r, cart.ID, cartItemID)
		if err != nil {
			return err
		}

		if err := r.Variants().ReleaseStock(ctx, item.VariantID, item.Quantity); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if err := r.CartItems().DeleteByID(ctx, item.ID); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if err := recomputeCartTotals(ctx, r, cart.ID); err != nil {
			return err
		}
		resp, err = buildCartResponse(ctx, r, cart.ID)
		return err
	})
	return resp, cookie, err
}

// ClearCart は全明細を消して在庫を戻す。カート自体は残る。
func (u *CartUsecase) ClearCart(ctx context.Context, id CartIdentity) (CartResponse, CartCookie, error) {
	var resp CartResponse
	var cookie CartCookie

	err := u.tm.WithinTx(ctx, func(r repo.TxRepos) error {
		cart, ck, err := resolveCart(ctx, r, id)
		if err != nil {
			return err
		}
		cookie = ck

		items, err := r.CartItems().ListByCartID(ctx, cart.ID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		for _, it := range items {
			if err := r.Variants().ReleaseStock(ctx, it.VariantID, it.Quantity); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
		}
		if err := r.CartItems().DeleteByCartID(ctx, cart.ID); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if err := r.Carts().UpdateTotals(ctx, cart.ID, 0, 0, 0); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		resp = CartResponse{Items: []CartItemResponse{}}
		return nil
	})
	return resp, cookie, err
}
