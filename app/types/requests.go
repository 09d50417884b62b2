package types

import (
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func NewIssueCouponRequestFromContext(ctx echo.Context) (*IssueCouponRequest, error) {
	var body IssueCouponRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}

	body.IdempotencyKey = strings.TrimSpace(body.IdempotencyKey)
	if body.IdempotencyKey == "" {
		body.IdempotencyKey = strings.TrimSpace(ctx.Request().Header.Get("Idempotency-Key"))
	}

	return &body, nil
}

func (r *IssueCouponRequest) Validate() error {
	if len(r.GetInstallmentIds()) == 0 {
		return errors.New("installment_ids is required")
	}
	for _, id := range r.GetInstallmentIds() {
		if id == 0 {
			return errors.New("installment_ids must be positive")
		}
	}
	if r.GetGatewayId() == 0 {
		return errors.New("gateway_id is required")
	}
	if key := r.GetIdempotencyKey(); key != "" {
		if _, err := uuid.Parse(key); err != nil {
			return errors.New("idempotency_key must be a UUID")
		}
	}
	if r.GetPartialAmount().IsNegative() {
		return errors.New("partial_amount must be >= 0")
	}
	return nil
}

func NewGetCouponRequestFromContext(ctx echo.Context) (*GetCouponRequest, error) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		return nil, err
	}
	return &GetCouponRequest{Id: id}, nil
}

func (r *GetCouponRequest) Validate() error {
	if r.GetId() == 0 {
		return errors.New("invalid coupon id")
	}
	return nil
}

func NewUpdateCouponStatusRequestFromContext(ctx echo.Context) (*UpdateCouponStatusRequest, error) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		return nil, err
	}

	var body UpdateCouponStatusRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}
	body.Id = id

	return &body, nil
}

func (r *UpdateCouponStatusRequest) Validate() error {
	if r.GetId() == 0 {
		return errors.New("invalid coupon id")
	}
	if r.GetStatusId() == 0 {
		return errors.New("status_id is required")
	}
	return nil
}

func NewVoidCouponRequestFromContext(ctx echo.Context) (*VoidCouponRequest, error) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		return nil, err
	}

	var body VoidCouponRequest
	if err = ctx.Bind(&body); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	body.Id = id
	body.Reason = strings.TrimSpace(body.Reason)

	return &body, nil
}

func (r *VoidCouponRequest) Validate() error {
	if r.GetId() == 0 {
		return errors.New("invalid coupon id")
	}
	return nil
}

func NewGetInstallmentRequestFromContext(ctx echo.Context) (*GetInstallmentRequest, error) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		return nil, err
	}
	return &GetInstallmentRequest{Id: id}, nil
}

func (r *GetInstallmentRequest) Validate() error {
	if r.GetId() == 0 {
		return errors.New("invalid installment id")
	}
	return nil
}

func NewPartialPaymentRequestFromContext(ctx echo.Context) (*PartialPaymentRequest, error) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		return nil, err
	}

	var body PartialPaymentRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}
	body.InstallmentId = id

	return &body, nil
}

func (r *PartialPaymentRequest) Validate() error {
	if r.GetInstallmentId() == 0 {
		return errors.New("invalid installment id")
	}
	if !r.GetAmount().IsPositive() {
		return errors.New("amount must be > 0")
	}
	return nil
}

func NewCreateCatalogItemRequestFromContext(ctx echo.Context) (*CreateCatalogItemRequest, error) {
	var body CreateCatalogItemRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}
	body.Name = strings.TrimSpace(body.Name)
	body.Description = strings.TrimSpace(body.Description)

	return &body, nil
}

func (r *CreateCatalogItemRequest) Validate() error {
	if r.GetName() == "" {
		return errors.New("name is required")
	}
	return nil
}
