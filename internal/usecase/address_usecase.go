package usecase

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"drinkshop/internal/domain/model"
	repo "drinkshop/internal/repository"
)

type CreateAddressInput struct {
	Street    string
	House     string
	Entrance  *int
	Intercom  string
	Floor     *int
	Apartment *int
	IsDefault bool
}

type UpdateAddressInput struct {
	Street    *string
	House     *string
	Entrance  *int
	Intercom  *string
	Floor     *int
	Apartment *int
	IsDefault *bool
}

type AddressUsecase struct {
	addressRepo repo.AddressRepository
	storeRepo   repo.StoreAddressRepository
	tm          repo.TransactionManager
}

func NewAddressUsecase(
	addressRepo repo.AddressRepository,
	storeRepo repo.StoreAddressRepository,
	tm repo.TransactionManager,
) *AddressUsecase {
	return &AddressUsecase{
		addressRepo: addressRepo,
		storeRepo:   storeRepo,
		tm:          tm,
	}
}

// 表示用住所の組み立て（通り 番地, 部屋）
func buildFullAddress(street, house string, apartment *int) string {
	full := fmt.Sprintf("%s %s", street, house)
	if apartment != nil {
		full = fmt.Sprintf("%s, %d", full, *apartment)
	}
	return full
}

func (u *AddressUsecase) List(ctx context.Context, userID int64) ([]model.Address, error) {
	addresses, err := u.addressRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return addresses, nil
}

// Create は住所追加。最初の1件は自動でデフォルトになる。
// 同じ（通り・番地・部屋）が既にあれば409。
func (u *AddressUsecase) Create(ctx context.Context, userID int64, in CreateAddressInput) (model.Address, error) {
	street := strings.TrimSpace(in.Street)
	house := strings.TrimSpace(in.House)
	if street == "" || house == "" {
		return model.Address{}, NewHTTPError(http.StatusBadRequest, "street and house are required")
	}

	dup, err := u.addressRepo.ExistsDuplicate(ctx, userID, street, house, in.Apartment)
	if err != nil {
		return model.Address{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if dup {
		return model.Address{}, NewHTTPError(http.StatusConflict, "address already exists")
	}

	existing, err := u.addressRepo.ListByUserID(ctx, userID)
	if err != nil {
		return model.Address{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	makeDefault := in.IsDefault || len(existing) == 0

	var created model.Address
	err = u.tm.WithinTx(ctx, func(r repo.TxRepos) error {
		if makeDefault {
			if err := r.Addresses().ClearDefault(ctx, userID); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
		}
		address := model.Address{
			UserID:      userID,
			FullAddress: buildFullAddress(street, house, in.Apartment),
			Street:      street,
			House:       house,
			Entrance:    in.Entrance,
			Intercom:    in.Intercom,
			Floor:       in.Floor,
			Apartment:   in.Apartment,
			IsDefault:   makeDefault,
		}
		var err error
		created, err = r.Addresses().Create(ctx, address)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		return nil
	})
	return created, err
}

func (u *AddressUsecase) findOwned(ctx context.Context, userID, addressID int64) (model.Address, error) {
	address, err := u.addressRepo.FindByID(ctx, addressID)
	if err != nil {
		return model.Address{}, NewHTTPError(http.StatusNotFound, "address not found")
	}
	if address.UserID != userID {
		return model.Address{}, NewHTTPError(http.StatusForbidden, "forbidden")
	}
	return address, nil
}

// Update は部分更新。is_defaultをtrueにすると他のデフォルトは外れる。
func (u *AddressUsecase) Update(ctx context.Context, userID, addressID int64, in UpdateAddressInput) (model.Address, error) {
	address, err := u.findOwned(ctx, userID, addressID)
	if err != nil {
		return model.Address{}, err
	}

	street := address.Street
	if in.Street != nil {
		street = strings.TrimSpace(*in.Street)
	}
	house := address.House
	if in.House != nil {
		house = strings.TrimSpace(*in.House)
	}
	apartment := address.Apartment
	if in.Apartment != nil {
		apartment = in.Apartment
	}
	if street == "" || house == "" {
		return model.Address{}, NewHTTPError(http.StatusBadRequest, "street and house are required")
	}

	full := buildFullAddress(street, house, apartment)
	upd := repo.AddressUpdate{
		FullAddress: &full,
		Street:      &street,
		House:       &house,
		Entrance:    in.Entrance,
		Intercom:    in.Intercom,
		Floor:       in.Floor,
		Apartment:   in.Apartment,
	}

	err = u.tm.WithinTx(ctx, func(r repo.TxRepos) error {
		if err := r.Addresses().Update(ctx, addressID, upd); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if in.IsDefault != nil && *in.IsDefault && !address.IsDefault {
			if err := r.Addresses().SetDefault(ctx, userID, addressID); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
		}
		return nil
	})
	if err != nil {
		return model.Address{}, err
	}

	updated, err := u.addressRepo.FindByID(ctx, addressID)
	if err != nil {
		return model.Address{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return updated, nil
}

// Delete はデフォルトを消したとき、一番新しい残りをデフォルトに昇格させる
func (u *AddressUsecase) Delete(ctx context.Context, userID, addressID int64) error {
	address, err := u.findOwned(ctx, userID, addressID)
	if err != nil {
		return err
	}

	return u.tm.WithinTx(ctx, func(r repo.TxRepos) error {
		if err := r.Addresses().Delete(ctx, addressID); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if address.IsDefault {
			latest, err := r.Addresses().FindLatestByUserID(ctx, userID)
			if err != nil {
				// 残りが無いなら昇格もしない
				return nil
			}
			if err := r.Addresses().SetDefault(ctx, userID, latest.ID); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
		}
		return nil
	})
}

// ListStores は受け取り可能な店舗一覧（公開）
func (u *AddressUsecase) ListStores(ctx context.Context) ([]model.StoreAddress, error) {
	stores, err := u.storeRepo.ListActive(ctx)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return stores, nil
}
