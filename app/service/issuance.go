package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/campuspay/ms-go-billing/app/auth"
	"github.com/campuspay/ms-go-billing/app/entity"
	"github.com/campuspay/ms-go-billing/app/repository"
	"github.com/shopspring/decimal"
)

type issueCouponRequest interface {
	GetInstallmentIds() []uint64
	GetIdempotencyKey() string
	GetGatewayId() uint64
	GetPartialAmount() decimal.Decimal
}

// IssueCoupon creates a payment coupon covering the requested installments.
// The boolean result reports whether a new coupon was created; false means
// the idempotency key matched a previous issuance and that coupon is
// returned unchanged.
//
// The whole read-validate-write sequence runs in one transaction with the
// installment rows locked, so two concurrent issuances over a shared
// installment serialize and the loser observes the winner's active coupon.
func (s *BillingService) IssueCoupon(ctx context.Context, principal auth.Principal, req issueCouponRequest) (*entity.Coupon, bool, error) {
	installmentIDs := dedupeIDs(req.GetInstallmentIds())
	if len(installmentIDs) == 0 {
		return nil, false, fmt.Errorf("%w: at least one installment is required", ErrInvalidRequest)
	}

	var (
		coupon  *entity.Coupon
		created bool
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if key := req.GetIdempotencyKey(); key != "" {
			existing, err := s.couponRepo.FindByIdempotencyKey(ctx, key)
			if err != nil {
				return err
			}
			if existing != nil {
				coupon = existing
				created = false
				return nil
			}
		}

		installments, err := s.installmentRepo.FindByIDsForStudentForUpdate(ctx, installmentIDs, principal.StudentID)
		if err != nil {
			return err
		}
		if len(installments) != len(installmentIDs) {
			return ErrInstallmentNotFound
		}

		activeStatus, err := s.catalogRepo.FindCouponStatusByName(ctx, entity.CouponStatusActive)
		if err != nil {
			return err
		}
		if activeStatus == nil {
			return ErrCouponCatalogMisconfigured
		}

		gateway, err := s.catalogRepo.FindGatewayByID(ctx, req.GetGatewayId())
		if err != nil {
			return err
		}
		if gateway == nil {
			return ErrGatewayNotFound
		}

		conflicting, err := s.couponRepo.FindActiveByInstallmentIDs(ctx, installmentIDs, activeStatus.ID)
		if err != nil {
			return err
		}
		if conflicting != nil {
			return &BookingConflictError{Coupon: conflicting}
		}

		balanceTotal := decimal.Zero
		for _, installment := range installments {
			balanceTotal = balanceTotal.Add(installment.Outstanding())
		}

		total := balanceTotal
		isPartial := false
		if partial := req.GetPartialAmount(); partial.IsPositive() {
			if partial.LessThan(balanceTotal) {
				total = partial
				isPartial = true
			}
		}
		if !total.IsPositive() {
			return fmt.Errorf("%w: coupon total must be positive, outstanding balance is %s", ErrInvalidRequest, balanceTotal.StringFixed(2))
		}

		now := time.Now().UTC()
		coupon = &entity.Coupon{
			StudentID:   principal.StudentID,
			StatusID:    activeStatus.ID,
			GatewayID:   gateway.ID,
			TotalAmount: total,
			IsPartial:   isPartial,
			GeneratedAt: now,
			DueDate:     now.AddDate(0, 0, s.couponTTLDays()),
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if key := req.GetIdempotencyKey(); key != "" {
			coupon.IdempotencyKey = &key
		}

		if err := s.couponRepo.Create(ctx, coupon); err != nil {
			if errors.Is(err, repository.ErrCouponAlreadyExists) && req.GetIdempotencyKey() != "" {
				winner, readErr := s.couponRepo.FindByIdempotencyKey(ctx, req.GetIdempotencyKey())
				if readErr != nil {
					return readErr
				}
				if winner != nil {
					coupon = winner
					created = false
					return nil
				}
				return ErrIdempotencyConflict
			}
			return err
		}

		for _, installment := range installments {
			item := &entity.CouponLineItem{
				CouponID:      coupon.ID,
				InstallmentID: installment.ID,
				Amount:        installment.Amount,
			}
			if err := s.lineItemRepo.Create(ctx, item); err != nil {
				return err
			}
		}

		gatewayRef := fmt.Sprintf("%03d-%010d", gateway.ID, coupon.ID)
		documentURL := fmt.Sprintf("/coupons/%d/download", coupon.ID)
		coupon.GatewayRef = &gatewayRef
		coupon.DocumentURL = &documentURL
		coupon.UpdatedAt = time.Now().UTC()
		if err := s.couponRepo.Update(ctx, coupon); err != nil {
			return err
		}

		coupon.StatusName = activeStatus.Name
		coupon.GatewayName = gateway.Name
		created = true
		return nil
	})
	if err != nil {
		s.audit(ctx, actorRef(principal.StudentID), entity.ActionCouponFail, fmt.Sprintf("issuance failed: %v", err))
		return nil, false, err
	}

	if created {
		s.audit(ctx, actorRef(principal.StudentID), entity.ActionCouponIssue, fmt.Sprintf("coupon %d issued for %s", coupon.ID, coupon.TotalAmount.StringFixed(2)))
	} else {
		s.audit(ctx, actorRef(principal.StudentID), entity.ActionCouponIssue, fmt.Sprintf("coupon %d returned for repeated idempotency key", coupon.ID))
	}
	return coupon, created, nil
}

func (s *BillingService) couponTTLDays() int {
	if s.billingCfg.CouponTTLDays > 0 {
		return s.billingCfg.CouponTTLDays
	}
	return 7
}

func dedupeIDs(ids []uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(ids))
	out := make([]uint64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
