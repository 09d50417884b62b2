package service

import (
	"context"
	"fmt"
	"time"

	"github.com/campuspay/ms-go-billing/app/auth"
	"github.com/campuspay/ms-go-billing/app/entity"
)

const studentVoidReason = "Voided by student"

// StudentVoid lets a coupon's owner void it to free the booked
// installments. Only Active coupons can be voided; voiding an already
// voided coupon is a no-op reported through the boolean result.
func (s *BillingService) StudentVoid(ctx context.Context, principal auth.Principal, couponID uint64) (*entity.Coupon, bool, error) {
	return s.voidCoupon(ctx, principal, couponID, studentVoidReason, false)
}

// AdminVoid voids any student's coupon with an operator-supplied reason.
// Paid coupons are protected: money already reconciled cannot be undone
// here.
func (s *BillingService) AdminVoid(ctx context.Context, principal auth.Principal, couponID uint64, reason string) (*entity.Coupon, bool, error) {
	if !principal.IsAdmin {
		return nil, false, ErrForbidden
	}
	if reason == "" {
		return nil, false, fmt.Errorf("%w: a void reason is required", ErrInvalidRequest)
	}
	return s.voidCoupon(ctx, principal, couponID, reason, true)
}

func (s *BillingService) voidCoupon(ctx context.Context, principal auth.Principal, couponID uint64, reason string, asAdmin bool) (*entity.Coupon, bool, error) {
	var alreadyVoided bool
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		coupon, err := s.couponRepo.FindByIDForUpdate(ctx, couponID)
		if err != nil {
			return err
		}
		if coupon == nil {
			return ErrCouponNotFound
		}
		if !asAdmin && coupon.StudentID != principal.StudentID {
			return ErrForbidden
		}

		voidedStatus, err := s.catalogRepo.FindCouponStatusByName(ctx, entity.CouponStatusVoided)
		if err != nil {
			return err
		}
		activeStatus, err := s.catalogRepo.FindCouponStatusByName(ctx, entity.CouponStatusActive)
		if err != nil {
			return err
		}
		if voidedStatus == nil || activeStatus == nil {
			return ErrCouponCatalogMisconfigured
		}

		if coupon.StatusID == voidedStatus.ID {
			alreadyVoided = true
			return nil
		}

		if coupon.StatusID != activeStatus.ID {
			current, err := s.catalogRepo.FindCouponStatusByID(ctx, coupon.StatusID)
			if err != nil {
				return err
			}
			name := "unknown"
			if current != nil {
				name = current.Name
			}
			if asAdmin && name != entity.CouponStatusPaid {
				// Operators may also void Expired coupons to clean up.
				coupon.StatusID = voidedStatus.ID
				coupon.VoidReason = &reason
				coupon.UpdatedAt = time.Now().UTC()
				return s.couponRepo.Update(ctx, coupon)
			}
			return fmt.Errorf("%w: coupon %d is %s and cannot be voided", ErrInvalidStatus, coupon.ID, name)
		}

		coupon.StatusID = voidedStatus.ID
		coupon.VoidReason = &reason
		coupon.UpdatedAt = time.Now().UTC()
		return s.couponRepo.Update(ctx, coupon)
	})
	if err != nil {
		s.audit(ctx, actorRef(principal.StudentID), entity.ActionCouponFail, fmt.Sprintf("void failed for coupon %d: %v", couponID, err))
		return nil, false, err
	}

	coupon, err := s.couponRepo.FindByID(ctx, couponID)
	if err != nil {
		return nil, false, err
	}
	if coupon == nil {
		return nil, false, ErrCouponNotFound
	}

	if !alreadyVoided {
		s.audit(ctx, actorRef(principal.StudentID), entity.ActionCouponCancel, fmt.Sprintf("coupon %d voided: %s", coupon.ID, reason))
	}
	return coupon, alreadyVoided, nil
}
