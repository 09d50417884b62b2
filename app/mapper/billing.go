package mapper

import (
	"time"

	"github.com/campuspay/ms-go-billing/app/entity"
	"github.com/campuspay/ms-go-billing/app/service"
	"github.com/campuspay/ms-go-billing/app/types"
)

func InstallmentToResponse(item *entity.Installment) *types.Installment {
	if item == nil {
		return nil
	}

	return &types.Installment{
		Id:               item.ID,
		StudentId:        item.StudentID,
		Period:           item.Period,
		Amount:           item.Amount,
		DueDate:          item.DueDate.UTC().Format("2006-01-02"),
		RemainingBalance: item.Outstanding(),
		Status:           item.StatusName,
	}
}

func InstallmentsToResponse(items []*entity.Installment) []*types.Installment {
	result := make([]*types.Installment, 0, len(items))
	for _, item := range items {
		result = append(result, InstallmentToResponse(item))
	}
	return result
}

func CouponToResponse(item *entity.Coupon) *types.Coupon {
	if item == nil {
		return nil
	}

	return &types.Coupon{
		Id:          item.ID,
		StudentId:   item.StudentID,
		TotalAmount: item.TotalAmount,
		IsPartial:   item.IsPartial,
		GeneratedAt: item.GeneratedAt.UTC().Format(time.RFC3339),
		DueDate:     item.DueDate.UTC().Format("2006-01-02"),
		Status:      item.StatusName,
		Gateway:     item.GatewayName,
		GatewayRef:  derefString(item.GatewayRef),
		DocumentUrl: derefString(item.DocumentURL),
		VoidReason:  derefString(item.VoidReason),
	}
}

func CouponsToResponse(items []*entity.Coupon) []*types.Coupon {
	result := make([]*types.Coupon, 0, len(items))
	for _, item := range items {
		result = append(result, CouponToResponse(item))
	}
	return result
}

func PartialPaymentToResponse(item *entity.PartialPayment) *types.PartialPayment {
	if item == nil {
		return nil
	}

	return &types.PartialPayment{
		Id:            item.ID,
		InstallmentId: item.InstallmentID,
		Amount:        item.Amount,
		Channel:       item.Channel,
		CreatedAt:     item.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func PartialPaymentsToResponse(items []*entity.PartialPayment) []*types.PartialPayment {
	result := make([]*types.PartialPayment, 0, len(items))
	for _, item := range items {
		result = append(result, PartialPaymentToResponse(item))
	}
	return result
}

func CouponStatusToResponse(item *entity.CouponStatus) *types.CouponStatus {
	if item == nil {
		return nil
	}

	return &types.CouponStatus{
		Id:          item.ID,
		Name:        item.Name,
		Description: derefString(item.Description),
	}
}

func CouponStatusesToResponse(items []*entity.CouponStatus) []*types.CouponStatus {
	result := make([]*types.CouponStatus, 0, len(items))
	for _, item := range items {
		result = append(result, CouponStatusToResponse(item))
	}
	return result
}

func GatewayToResponse(item *entity.PaymentGateway) *types.PaymentGateway {
	if item == nil {
		return nil
	}

	return &types.PaymentGateway{
		Id:          item.ID,
		Name:        item.Name,
		Description: derefString(item.Description),
	}
}

func GatewaysToResponse(items []*entity.PaymentGateway) []*types.PaymentGateway {
	result := make([]*types.PaymentGateway, 0, len(items))
	for _, item := range items {
		result = append(result, GatewayToResponse(item))
	}
	return result
}

func OverviewToResponse(item *service.CouponOverview) *types.CouponOverview {
	if item == nil {
		return nil
	}

	counts := make(map[string]int64, len(item.Counts))
	for name, count := range item.Counts {
		counts[name] = count
	}

	return &types.CouponOverview{
		Coupons:  CouponsToResponse(item.Coupons),
		Counts:   counts,
		Statuses: CouponStatusesToResponse(item.Statuses),
	}
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
