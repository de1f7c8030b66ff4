package usecase

import (
	"context"
	"net/http"
	"time"

	"drinkshop/internal/domain/model"
	repo "drinkshop/internal/repository"
)

// 配達枠の固定ウィンドウ。2時間枠・30分空け・最終は22:00まで。
var slotWindows = []string{
	"10:00-12:00",
	"12:30-14:30",
	"15:00-17:00",
	"17:30-19:30",
	"20:00-22:00",
}

const slotCapacity = 5

type SlotResponse struct {
	ID        int64  `json:"id"`
	Date      string `json:"date"`
	TimeSlot  string `json:"time_slot"`
	Remaining int    `json:"remaining"`
	Status    string `json:"status"`
}

type SlotUsecase struct {
	slotRepo repo.DeliverySlotRepository
}

func NewSlotUsecase(slotRepo repo.DeliverySlotRepository) *SlotUsecase {
	return &SlotUsecase{slotRepo: slotRepo}
}

// ListSlots は日付の枠一覧。その日の枠がまだ無ければ固定ウィンドウで作る。
func (u *SlotUsecase) ListSlots(ctx context.Context, dateStr string) ([]SlotResponse, error) {
	date, err := time.ParseInLocation(dateLayout, dateStr, time.UTC)
	if err != nil {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid date")
	}

	slots, err := u.slotRepo.ListByDate(ctx, date)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if len(slots) == 0 {
		fresh := make([]model.DeliverySlot, 0, len(slotWindows))
		for _, w := range slotWindows {
			fresh = append(fresh, model.DeliverySlot{
				Date:      date,
				TimeSlot:  w,
				MaxOrders: slotCapacity,
				Status:    model.SlotStatusAvailable,
			})
		}
		slots, err = u.slotRepo.CreateBulk(ctx, fresh)
		if err != nil {
			return nil, NewHTTPError(http.StatusInternalServerError, "db error")
		}
	}

	resp := make([]SlotResponse, 0, len(slots))
	for _, s := range slots {
		remaining := s.MaxOrders - s.CurrentOrders
		if remaining < 0 {
			remaining = 0
		}
		resp = append(resp, SlotResponse{
			ID:        s.ID,
			Date:      s.Date.Format(dateLayout),
			TimeSlot:  s.TimeSlot,
			Remaining: remaining,
			Status:    string(s.Status),
		})
	}
	return resp, nil
}

// RegenerateSlots は日付の枠を作り直す（管理者用）。
// 既存の予約ごと消えるので使いどころは限られる。
func (u *SlotUsecase) RegenerateSlots(ctx context.Context, dateStr string) ([]SlotResponse, error) {
	date, err := time.ParseInLocation(dateLayout, dateStr, time.UTC)
	if err != nil {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid date")
	}
	if err := u.slotRepo.DeleteByDate(ctx, date); err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return u.ListSlots(ctx, dateStr)
}
