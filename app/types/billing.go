package types

import "github.com/shopspring/decimal"

// Wire DTOs for the billing HTTP surface. Nil-safe getters keep handler
// and service code free of pointer checks.

type Installment struct {
	Id               uint64          `json:"id"`
	StudentId        uint64          `json:"student_id"`
	Period           string          `json:"period"`
	Amount           decimal.Decimal `json:"amount"`
	DueDate          string          `json:"due_date"`
	RemainingBalance decimal.Decimal `json:"remaining_balance"`
	Status           string          `json:"status"`
}

type Coupon struct {
	Id             uint64          `json:"id"`
	StudentId      uint64          `json:"student_id"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	IsPartial      bool            `json:"is_partial"`
	GeneratedAt    string          `json:"generated_at"`
	DueDate        string          `json:"due_date"`
	Status         string          `json:"status"`
	Gateway        string          `json:"gateway"`
	GatewayRef     string          `json:"gateway_ref,omitempty"`
	DocumentUrl    string          `json:"document_url,omitempty"`
	VoidReason     string          `json:"void_reason,omitempty"`
	InstallmentIds []uint64        `json:"installment_ids,omitempty"`
}

type CouponStatus struct {
	Id          uint64 `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type PaymentGateway struct {
	Id          uint64 `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type CouponOverview struct {
	Coupons  []*Coupon        `json:"coupons"`
	Counts   map[string]int64 `json:"counts"`
	Statuses []*CouponStatus  `json:"statuses"`
}

type IssueCouponRequest struct {
	InstallmentIds []uint64        `json:"installment_ids"`
	IdempotencyKey string          `json:"idempotency_key"`
	GatewayId      uint64          `json:"gateway_id"`
	PartialAmount  decimal.Decimal `json:"partial_amount"`
}

func (r *IssueCouponRequest) GetInstallmentIds() []uint64 {
	if r == nil {
		return nil
	}
	return r.InstallmentIds
}

func (r *IssueCouponRequest) GetIdempotencyKey() string {
	if r == nil {
		return ""
	}
	return r.IdempotencyKey
}

func (r *IssueCouponRequest) GetGatewayId() uint64 {
	if r == nil {
		return 0
	}
	return r.GatewayId
}

func (r *IssueCouponRequest) GetPartialAmount() decimal.Decimal {
	if r == nil {
		return decimal.Zero
	}
	return r.PartialAmount
}

type GetCouponRequest struct {
	Id uint64 `json:"id"`
}

func (r *GetCouponRequest) GetId() uint64 {
	if r == nil {
		return 0
	}
	return r.Id
}

type UpdateCouponStatusRequest struct {
	Id       uint64 `json:"-"`
	StatusId uint64 `json:"status_id"`
}

func (r *UpdateCouponStatusRequest) GetId() uint64 {
	if r == nil {
		return 0
	}
	return r.Id
}

func (r *UpdateCouponStatusRequest) GetStatusId() uint64 {
	if r == nil {
		return 0
	}
	return r.StatusId
}

type VoidCouponRequest struct {
	Id     uint64 `json:"-"`
	Reason string `json:"reason"`
}

func (r *VoidCouponRequest) GetId() uint64 {
	if r == nil {
		return 0
	}
	return r.Id
}

func (r *VoidCouponRequest) GetReason() string {
	if r == nil {
		return ""
	}
	return r.Reason
}

type PartialPaymentRequest struct {
	InstallmentId uint64          `json:"-"`
	Amount        decimal.Decimal `json:"amount"`
}

func (r *PartialPaymentRequest) GetInstallmentId() uint64 {
	if r == nil {
		return 0
	}
	return r.InstallmentId
}

func (r *PartialPaymentRequest) GetAmount() decimal.Decimal {
	if r == nil {
		return decimal.Zero
	}
	return r.Amount
}

type PartialPayment struct {
	Id            uint64          `json:"id"`
	InstallmentId uint64          `json:"installment_id"`
	Amount        decimal.Decimal `json:"amount"`
	Channel       string          `json:"channel"`
	CreatedAt     string          `json:"created_at"`
}

type GetInstallmentRequest struct {
	Id uint64 `json:"id"`
}

func (r *GetInstallmentRequest) GetId() uint64 {
	if r == nil {
		return 0
	}
	return r.Id
}

type CreateCatalogItemRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (r *CreateCatalogItemRequest) GetName() string {
	if r == nil {
		return ""
	}
	return r.Name
}

func (r *CreateCatalogItemRequest) GetDescription() string {
	if r == nil {
		return ""
	}
	return r.Description
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type ConflictResponse struct {
	Error             string  `json:"error"`
	ConflictingCoupon *Coupon `json:"conflicting_coupon,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type HealthResponse struct {
	Status string `json:"status"`
}
