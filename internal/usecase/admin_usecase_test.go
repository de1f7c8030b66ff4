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

func newAdminTestEnv() (*AdminUsecase, *OrderRepoMock, *AuditRepoMock, *StoreRepoMock, *stubTxRepos) {
	r := newStubTxRepos()
	orders := new(OrderRepoMock)
	audit := new(AuditRepoMock)
	stores := new(StoreRepoMock)
	u := NewAdminUsecase(orders, audit, stores, &stubTxManager{repos: r})
	return u, orders, audit, stores, r
}

// =====================
// ステータス遷移
// =====================

func TestStatusTransitionAllowed(t *testing.T) {
	assert.True(t, statusTransitionAllowed(model.OrderStatusNew, model.OrderStatusProcessing))
	assert.True(t, statusTransitionAllowed(model.OrderStatusNew, model.OrderStatusCancelled))
	assert.True(t, statusTransitionAllowed(model.OrderStatusProcessing, model.OrderStatusDelivering))
	assert.True(t, statusTransitionAllowed(model.OrderStatusDelivering, model.OrderStatusCompleted))

	// 飛び級と逆行は不可
	assert.False(t, statusTransitionAllowed(model.OrderStatusNew, model.OrderStatusCompleted))
	assert.False(t, statusTransitionAllowed(model.OrderStatusProcessing, model.OrderStatusNew))
	assert.False(t, statusTransitionAllowed(model.OrderStatusProcessing, model.OrderStatusCancelled))
	assert.False(t, statusTransitionAllowed(model.OrderStatusCompleted, model.OrderStatusDelivering))
}

func TestAdminUsecase_UpdateOrderStatus_InvalidStatus(t *testing.T) {
	u, _, _, _, _ := newAdminTestEnv()

	_, err := u.UpdateOrderStatus(context.Background(), 1, 7, "shipped")

	assertErrContains(t, err, "invalid status")
}

func TestAdminUsecase_UpdateOrderStatus_ForbiddenTransition(t *testing.T) {
	u, _, _, _, r := newAdminTestEnv()

	r.orders.On("FindByID", mock.Anything, int64(7)).Return(model.Order{ID: 7, Status: model.OrderStatusNew}, nil)

	_, err := u.UpdateOrderStatus(context.Background(), 1, 7, "completed")

	assertErrContains(t, err, "cannot change status from new to completed")
	assertHTTPStatus(t, err, http.StatusBadRequest)
	r.orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestAdminUsecase_UpdateOrderStatus_WritesAuditLog(t *testing.T) {
	u, _, _, _, r := newAdminTestEnv()

	r.orders.On("FindByID", mock.Anything, int64(7)).Return(model.Order{ID: 7, Status: model.OrderStatusNew}, nil)
	r.orders.On("UpdateStatus", mock.Anything, int64(7), model.OrderStatusProcessing).Return(nil)
	r.auditLogs.On("Create", mock.Anything, mock.MatchedBy(func(l model.AuditLog) bool {
		return l.ActorUserID == 1 &&
			l.Action == model.AuditActionUpdateOrderStatus &&
			l.ResourceType == model.AuditResourceOrder &&
			l.ResourceID == 7 &&
			l.BeforeJSON == `{"status":"new"}` &&
			l.AfterJSON == `{"status":"processing"}`
	})).Return(nil)

	updated, err := u.UpdateOrderStatus(context.Background(), 1, 7, "processing")

	assert.NoError(t, err)
	assert.Equal(t, model.OrderStatusProcessing, updated.Status)
	r.auditLogs.AssertExpectations(t)
}

// =====================
// 一覧・店舗
// =====================

func TestAdminUsecase_ListOrders_ClampsPaging(t *testing.T) {
	u, orders, _, _, _ := newAdminTestEnv()

	orders.On("ListAdmin", mock.Anything, mock.MatchedBy(func(f repo.AdminOrderListFilter) bool {
		return f.Page == 1 && f.Limit == 20
	})).Return([]model.Order{}, int64(0), nil)

	resp, err := u.ListOrders(context.Background(), repo.AdminOrderListFilter{Page: -3, Limit: 9999})

	assert.NoError(t, err)
	assert.Equal(t, 1, resp.Page)
	assert.Equal(t, 20, resp.Limit)
}

func TestAdminUsecase_ListAuditLogs_DefaultLimit(t *testing.T) {
	u, _, audit, _, _ := newAdminTestEnv()

	audit.On("List", mock.Anything, mock.MatchedBy(func(f repo.AuditLogFilter) bool {
		return f.Limit == 50
	})).Return([]model.AuditLog{}, nil)

	_, err := u.ListAuditLogs(context.Background(), repo.AuditLogFilter{})

	assert.NoError(t, err)
	audit.AssertExpectations(t)
}

func TestAdminUsecase_CreateStore_RequiredFields(t *testing.T) {
	u, _, _, _, _ := newAdminTestEnv()

	_, err := u.CreateStore(context.Background(), StoreInput{Street: "", House: "5"})

	assertErrContains(t, err, "street and house are required")
}

func TestAdminUsecase_CreateStore_Success(t *testing.T) {
	u, _, _, stores, _ := newAdminTestEnv()

	stores.On("Create", mock.Anything, mock.MatchedBy(func(s model.StoreAddress) bool {
		return s.FullAddress == "Shop st 5" && s.IsActive
	})).Return(model.StoreAddress{ID: 1, FullAddress: "Shop st 5", IsActive: true}, nil)

	store, err := u.CreateStore(context.Background(), StoreInput{Street: "Shop st", House: "5", IsActive: true})

	assert.NoError(t, err)
	assert.Equal(t, int64(1), store.ID)
	stores.AssertExpectations(t)
}

func TestAdminUsecase_DeleteStore_NotFound(t *testing.T) {
	u, _, _, stores, _ := newAdminTestEnv()

	stores.On("FindByID", mock.Anything, int64(9)).Return(model.StoreAddress{}, repo.ErrNotFound)

	err := u.DeleteStore(context.Background(), 9)

	assertHTTPStatus(t, err, http.StatusNotFound)
	stores.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}
