package service

import (
	"context"
	"fmt"
	"time"

	"github.com/campuspay/ms-go-billing/app/auth"
	"github.com/campuspay/ms-go-billing/app/entity"
	"github.com/shopspring/decimal"
)

type updateCouponStatusRequest interface {
	GetStatusId() uint64
}

type partialPaymentRequest interface {
	GetAmount() decimal.Decimal
}

// TransitionCouponStatus moves a coupon to the given status. Reserved for
// back-office reconciliation: when the new status is Paid, the coupon's
// installments are settled in the same transaction.
//
// A full coupon zeroes every covered installment. A partial coupon
// subtracts the coupon total from each covered installment's balance,
// clamped at zero.
func (s *BillingService) TransitionCouponStatus(ctx context.Context, principal auth.Principal, couponID uint64, req updateCouponStatusRequest) (*entity.Coupon, error) {
	if !principal.IsAdmin {
		return nil, ErrForbidden
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		coupon, err := s.couponRepo.FindByIDForUpdate(ctx, couponID)
		if err != nil {
			return err
		}
		if coupon == nil {
			return ErrCouponNotFound
		}

		status, err := s.catalogRepo.FindCouponStatusByID(ctx, req.GetStatusId())
		if err != nil {
			return err
		}
		if status == nil {
			return ErrStatusNotFound
		}

		coupon.StatusID = status.ID
		coupon.UpdatedAt = time.Now().UTC()
		if err := s.couponRepo.Update(ctx, coupon); err != nil {
			return err
		}

		if status.Name != entity.CouponStatusPaid {
			return nil
		}
		return s.settleCoupon(ctx, coupon)
	})
	if err != nil {
		s.audit(ctx, actorRef(principal.StudentID), entity.ActionCouponFail, fmt.Sprintf("status update failed for coupon %d: %v", couponID, err))
		return nil, err
	}

	coupon, err := s.couponRepo.FindByID(ctx, couponID)
	if err != nil {
		return nil, err
	}
	if coupon == nil {
		return nil, ErrCouponNotFound
	}

	s.audit(ctx, actorRef(principal.StudentID), entity.ActionCouponStatus, fmt.Sprintf("coupon %d moved to %s", coupon.ID, coupon.StatusName))
	return coupon, nil
}

// settleCoupon applies a paid coupon against its installments. Runs inside
// the caller's transaction with the coupon row already locked.
func (s *BillingService) settleCoupon(ctx context.Context, coupon *entity.Coupon) error {
	paidStatus, err := s.catalogRepo.FindInstallmentStatusByName(ctx, entity.InstallmentStatusPaid)
	if err != nil {
		return err
	}
	if paidStatus == nil {
		return ErrInstallmentCatalogMisconfigured
	}

	items, err := s.lineItemRepo.ListByCoupon(ctx, coupon.ID)
	if err != nil {
		return err
	}
	installmentIDs := make([]uint64, 0, len(items))
	for _, item := range items {
		installmentIDs = append(installmentIDs, item.InstallmentID)
	}

	installments, err := s.installmentRepo.FindByIDsForUpdate(ctx, installmentIDs)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	for _, installment := range installments {
		if coupon.IsPartial {
			balance := installment.Outstanding().Sub(coupon.TotalAmount)
			if balance.IsPositive() {
				installment.RemainingBalance = &balance
			} else {
				zero := decimal.Zero
				installment.RemainingBalance = &zero
				installment.StatusID = paidStatus.ID
			}
		} else {
			zero := decimal.Zero
			installment.RemainingBalance = &zero
			installment.StatusID = paidStatus.ID
		}
		installment.UpdatedAt = now
		if err := s.installmentRepo.Update(ctx, installment); err != nil {
			return err
		}
	}
	return nil
}

// RegisterPartialPayment applies an amount directly against one
// installment, outside the coupon flow. The installment row is locked for
// the read-decrement-write, so concurrent payments serialize and the
// balance can never go negative.
func (s *BillingService) RegisterPartialPayment(ctx context.Context, principal auth.Principal, installmentID uint64, req partialPaymentRequest) (*entity.Installment, error) {
	amount := req.GetAmount()
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: payment amount must be positive", ErrInvalidRequest)
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		installment, err := s.installmentRepo.FindByIDForUpdate(ctx, installmentID)
		if err != nil {
			return err
		}
		if installment == nil {
			return ErrInstallmentNotFound
		}
		if installment.StudentID != principal.StudentID && !principal.IsAdmin {
			return ErrForbidden
		}

		outstanding := installment.Outstanding()
		if amount.GreaterThan(outstanding) {
			return fmt.Errorf("%w: payment of %s exceeds outstanding balance of %s", ErrInvalidRequest, amount.StringFixed(2), outstanding.StringFixed(2))
		}

		now := time.Now().UTC()
		payment := &entity.PartialPayment{
			InstallmentID: installment.ID,
			Amount:        amount,
			Channel:       s.billingCfg.PartialPaymentChannel,
			CreatedAt:     now,
		}
		if err := s.paymentRepo.Create(ctx, payment); err != nil {
			return err
		}

		balance := outstanding.Sub(amount)
		installment.RemainingBalance = &balance
		if balance.IsZero() {
			paidStatus, err := s.catalogRepo.FindInstallmentStatusByName(ctx, entity.InstallmentStatusPaid)
			if err != nil {
				return err
			}
			if paidStatus != nil {
				installment.StatusID = paidStatus.ID
			} else {
				// Keep the balance update even when the Paid row is missing;
				// only the status change is skipped.
				s.logger.WithField("installment_id", installment.ID).Warn("Paid installment status missing, balance updated without status change")
			}
		}
		installment.UpdatedAt = now
		return s.installmentRepo.Update(ctx, installment)
	})
	if err != nil {
		return nil, err
	}

	installment, err := s.installmentRepo.FindByID(ctx, installmentID)
	if err != nil {
		return nil, err
	}
	if installment == nil {
		return nil, ErrInstallmentNotFound
	}

	s.audit(ctx, actorRef(principal.StudentID), entity.ActionPartialPayment, fmt.Sprintf("payment of %s applied to installment %d", amount.StringFixed(2), installment.ID))
	return installment, nil
}
