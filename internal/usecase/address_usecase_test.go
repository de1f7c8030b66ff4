package usecase

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"drinkshop/internal/domain/model"
	repo "drinkshop/internal/repository"
)

func newAddressTestEnv() (*AddressUsecase, *AddressRepoMock, *StoreRepoMock, *stubTxRepos) {
	r := newStubTxRepos()
	addresses := new(AddressRepoMock)
	stores := new(StoreRepoMock)
	u := NewAddressUsecase(addresses, stores, &stubTxManager{repos: r})
	return u, addresses, stores, r
}

func TestBuildFullAddress(t *testing.T) {
	assert.Equal(t, "Main st 12", buildFullAddress("Main st", "12", nil))
	assert.Equal(t, "Main st 12, 34", buildFullAddress("Main st", "12", intPtr(34)))
}

func TestAddressUsecase_Create_RequiredFields(t *testing.T) {
	u, _, _, _ := newAddressTestEnv()

	_, err := u.Create(context.Background(), 1, CreateAddressInput{Street: "  ", House: "12"})

	assertErrContains(t, err, "street and house are required")
}

func TestAddressUsecase_Create_Duplicate(t *testing.T) {
	u, addresses, _, _ := newAddressTestEnv()

	addresses.On("ExistsDuplicate", mock.Anything, int64(1), "Main st", "12", (*int)(nil)).Return(true, nil)

	_, err := u.Create(context.Background(), 1, CreateAddressInput{Street: "Main st", House: "12"})

	assertErrContains(t, err, "address already exists")
	assertHTTPStatus(t, err, http.StatusConflict)
}

func TestAddressUsecase_Create_FirstAddressBecomesDefault(t *testing.T) {
	u, addresses, _, r := newAddressTestEnv()

	addresses.On("ExistsDuplicate", mock.Anything, int64(1), "Main st", "12", (*int)(nil)).Return(false, nil)
	addresses.On("ListByUserID", mock.Anything, int64(1)).Return([]model.Address{}, nil)
	r.addresses.On("ClearDefault", mock.Anything, int64(1)).Return(nil)
	r.addresses.On("Create", mock.Anything, mock.MatchedBy(func(a model.Address) bool {
		return a.UserID == 1 && a.IsDefault && a.FullAddress == "Main st 12"
	})).Return(model.Address{ID: 5, UserID: 1, IsDefault: true}, nil)

	created, err := u.Create(context.Background(), 1, CreateAddressInput{Street: "Main st", House: "12"})

	assert.NoError(t, err)
	assert.True(t, created.IsDefault)
	r.addresses.AssertExpectations(t)
}

func TestAddressUsecase_Create_SecondAddressNotDefault(t *testing.T) {
	u, addresses, _, r := newAddressTestEnv()

	existing := []model.Address{{ID: 1, UserID: 1, IsDefault: true}}
	addresses.On("ExistsDuplicate", mock.Anything, int64(1), "Side st", "3", intPtr(7)).Return(false, nil)
	addresses.On("ListByUserID", mock.Anything, int64(1)).Return(existing, nil)
	r.addresses.On("Create", mock.Anything, mock.MatchedBy(func(a model.Address) bool {
		return !a.IsDefault && a.FullAddress == "Side st 3, 7"
	})).Return(model.Address{ID: 2, UserID: 1}, nil)

	_, err := u.Create(context.Background(), 1, CreateAddressInput{Street: "Side st", House: "3", Apartment: intPtr(7)})

	assert.NoError(t, err)
	// デフォルトの付け替えは起こらない
	r.addresses.AssertNotCalled(t, "ClearDefault", mock.Anything, mock.Anything)
}

func TestAddressUsecase_Update_Forbidden(t *testing.T) {
	u, addresses, _, _ := newAddressTestEnv()

	addresses.On("FindByID", mock.Anything, int64(5)).Return(model.Address{ID: 5, UserID: 999}, nil)

	_, err := u.Update(context.Background(), 1, 5, UpdateAddressInput{})

	assertHTTPStatus(t, err, http.StatusForbidden)
}

func TestAddressUsecase_Update_SetDefaultClearsOthers(t *testing.T) {
	u, addresses, _, r := newAddressTestEnv()

	address := model.Address{ID: 5, UserID: 1, Street: "Main st", House: "12", IsDefault: false}
	addresses.On("FindByID", mock.Anything, int64(5)).Return(address, nil).Once()
	r.addresses.On("Update", mock.Anything, int64(5), mock.Anything).Return(nil)
	r.addresses.On("SetDefault", mock.Anything, int64(1), int64(5)).Return(nil)
	addresses.On("FindByID", mock.Anything, int64(5)).Return(model.Address{ID: 5, UserID: 1, IsDefault: true}, nil)

	updated, err := u.Update(context.Background(), 1, 5, UpdateAddressInput{IsDefault: boolPtr(true)})

	assert.NoError(t, err)
	assert.True(t, updated.IsDefault)
	r.addresses.AssertExpectations(t)
}

func TestAddressUsecase_Delete_PromotesLatestToDefault(t *testing.T) {
	u, addresses, _, r := newAddressTestEnv()

	addresses.On("FindByID", mock.Anything, int64(5)).Return(model.Address{ID: 5, UserID: 1, IsDefault: true}, nil)
	r.addresses.On("Delete", mock.Anything, int64(5)).Return(nil)
	r.addresses.On("FindLatestByUserID", mock.Anything, int64(1)).Return(model.Address{ID: 9, UserID: 1}, nil)
	r.addresses.On("SetDefault", mock.Anything, int64(1), int64(9)).Return(nil)

	err := u.Delete(context.Background(), 1, 5)

	assert.NoError(t, err)
	r.addresses.AssertExpectations(t)
}

func TestAddressUsecase_Delete_LastAddressLeavesNoDefault(t *testing.T) {
	u, addresses, _, r := newAddressTestEnv()

	addresses.On("FindByID", mock.Anything, int64(5)).Return(model.Address{ID: 5, UserID: 1, IsDefault: true}, nil)
	r.addresses.On("Delete", mock.Anything, int64(5)).Return(nil)
	r.addresses.On("FindLatestByUserID", mock.Anything, int64(1)).Return(model.Address{}, repo.ErrNotFound)

	err := u.Delete(context.Background(), 1, 5)

	assert.NoError(t, err)
	r.addresses.AssertNotCalled(t, "SetDefault", mock.Anything, mock.Anything, mock.Anything)
}

func TestAddressUsecase_Delete_NonDefaultSkipsPromotion(t *testing.T) {
	u, addresses, _, r := newAddressTestEnv()

	addresses.On("FindByID", mock.Anything, int64(5)).Return(model.Address{ID: 5, UserID: 1, IsDefault: false}, nil)
	r.addresses.On("Delete", mock.Anything, int64(5)).Return(nil)

	err := u.Delete(context.Background(), 1, 5)

	assert.NoError(t, err)
	r.addresses.AssertNotCalled(t, "FindLatestByUserID", mock.Anything, mock.Anything)
}

func TestAddressUsecase_ListStores(t *testing.T) {
	u, _, stores, _ := newAddressTestEnv()

	stores.On("ListActive", mock.Anything).Return([]model.StoreAddress{{ID: 1, IsActive: true}}, nil)

	list, err := u.ListStores(context.Background())

	assert.NoError(t, err)
	assert.Len(t, list, 1)
}
