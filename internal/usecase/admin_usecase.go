package usecase

import (
	"context"
	"fmt"
	"net/http"

	"drinkshop/internal/domain/model"
	repo "drinkshop/internal/repository"
)

// 許される遷移だけを列挙する。new→processing→delivering→completed、newからだけcancelledへ。
var allowedStatusTransitions = map[model.OrderStatus][]model.OrderStatus{
	model.OrderStatusNew:        {model.OrderStatusProcessing, model.OrderStatusCancelled},
	model.OrderStatusProcessing: {model.OrderStatusDelivering},
	model.OrderStatusDelivering: {model.OrderStatusCompleted},
}

func statusTransitionAllowed(from, to model.OrderStatus) bool {
	for _, s := range allowedStatusTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

type StoreInput struct {
	Street       string
	House        string
	Floor        string
	OpeningHours string
	Phone        string
	IsActive     bool
}

type AdminUsecase struct {
	orderRepo repo.OrderRepository
	auditRepo repo.AuditLogRepository
	storeRepo repo.StoreAddressRepository
	tm        repo.TransactionManager
}

func NewAdminUsecase(
	orderRepo repo.OrderRepository,
	auditRepo repo.AuditLogRepository,
	storeRepo repo.StoreAddressRepository,
	tm repo.TransactionManager,
) *AdminUsecase {
	return &AdminUsecase{
		orderRepo: orderRepo,
		auditRepo: auditRepo,
		storeRepo: storeRepo,
		tm:        tm,
	}
}

type AdminOrderListResponse struct {
	Orders []model.Order `json:"orders"`
	Total  int64         `json:"total"`
	Page   int           `json:"page"`
	Limit  int           `json:"limit"`
}

func (u *AdminUsecase) ListOrders(ctx context.Context, f repo.AdminOrderListFilter) (AdminOrderListResponse, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 20
	}

	orders, total, err := u.orderRepo.ListAdmin(ctx, f)
	if err != nil {
		return AdminOrderListResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return AdminOrderListResponse{Orders: orders, Total: total, Page: f.Page, Limit: f.Limit}, nil
}

// UpdateOrderStatus はライフサイクルに沿った遷移だけ許す。前後を監査ログに残す。
func (u *AdminUsecase) UpdateOrderStatus(ctx context.Context, adminID, orderID int64, statusStr string) (model.Order, error) {
	status := model.OrderStatus(statusStr)
	switch status {
	case model.OrderStatusNew, model.OrderStatusProcessing, model.OrderStatusDelivering,
		model.OrderStatusCompleted, model.OrderStatusCancelled:
	default:
		return model.Order{}, NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	var updated model.Order
	err := u.tm.WithinTx(ctx, func(r repo.TxRepos) error {
		order, err := r.Orders().FindByID(ctx, orderID)
		if err != nil {
			return NewHTTPError(http.StatusNotFound, "order not found")
		}
		if !statusTransitionAllowed(order.Status, status) {
			return NewHTTPError(http.StatusBadRequest,
				fmt.Sprintf("cannot change status from %s to %s", order.Status, status))
		}

		if err := r.Orders().UpdateStatus(ctx, orderID, status); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  adminID,
			Action:       model.AuditActionUpdateOrderStatus,
			ResourceType: model.AuditResourceOrder,
			ResourceID:   orderID,
			BeforeJSON:   fmt.Sprintf(`{"status":%q}`, order.Status),
			AfterJSON:    fmt.Sprintf(`{"status":%q}`, status),
			CreatedAt:    nowUTC(),
		}); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		order.Status = status
		updated = order
		return nil
	})
	return updated, err
}

func (u *AdminUsecase) ListAuditLogs(ctx context.Context, f repo.AuditLogFilter) ([]model.AuditLog, error) {
	if f.Limit < 1 || f.Limit > 200 {
		f.Limit = 50
	}
	logs, err := u.auditRepo.List(ctx, f)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return logs, nil
}

func (u *AdminUsecase) CreateStore(ctx context.Context, in StoreInput) (model.StoreAddress, error) {
	if in.Street == "" || in.House == "" {
		return model.StoreAddress{}, NewHTTPError(http.StatusBadRequest, "street and house are required")
	}
	store, err := u.storeRepo.Create(ctx, model.StoreAddress{
		FullAddress:  fmt.Sprintf("%s %s", in.Street, in.House),
		Street:       in.Street,
		House:        in.House,
		Floor:        in.Floor,
		OpeningHours: in.OpeningHours,
		Phone:        in.Phone,
		IsActive:     in.IsActive,
	})
	if err != nil {
		return model.StoreAddress{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return store, nil
}

func (u *AdminUsecase) UpdateStore(ctx context.Context, storeID int64, in StoreInput) (model.StoreAddress, error) {
	store, err := u.storeRepo.FindByID(ctx, storeID)
	if err != nil {
		return model.StoreAddress{}, NewHTTPError(http.StatusNotFound, "store not found")
	}
	if in.Street != "" {
		store.Street = in.Street
	}
	if in.House != "" {
		store.House = in.House
	}
	store.FullAddress = fmt.Sprintf("%s %s", store.Street, store.House)
	store.Floor = in.Floor
	store.OpeningHours = in.OpeningHours
	store.Phone = in.Phone
	store.IsActive = in.IsActive

	if err := u.storeRepo.Update(ctx, store); err != nil {
		return model.StoreAddress{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return store, nil
}

func (u *AdminUsecase) DeleteStore(ctx context.Context, storeID int64) error {
	if _, err := u.storeRepo.FindByID(ctx, storeID); err != nil {
		return NewHTTPError(http.StatusNotFound, "store not found")
	}
	if err := u.storeRepo.Delete(ctx, storeID); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}
