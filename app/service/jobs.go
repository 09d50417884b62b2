package service

import (
	"context"
	"time"

	"github.com/campuspay/ms-go-billing/app/entity"
)

// RunExpireCouponsBatch moves Active coupons past their due date to
// Expired, one batch per call. Returns how many coupons were expired. A
// failed coupon does not stop the batch; the first error is reported once
// the batch finishes.
func (s *BillingService) RunExpireCouponsBatch(ctx context.Context, now time.Time) (int, error) {
	activeStatus, err := s.catalogRepo.FindCouponStatusByName(ctx, entity.CouponStatusActive)
	if err != nil {
		return 0, err
	}
	expiredStatus, err := s.catalogRepo.FindCouponStatusByName(ctx, entity.CouponStatusExpired)
	if err != nil {
		return 0, err
	}
	if activeStatus == nil || expiredStatus == nil {
		return 0, ErrCouponCatalogMisconfigured
	}

	coupons, err := s.couponRepo.ListActiveDueBefore(ctx, activeStatus.ID, now, s.batchSize())
	if err != nil {
		return 0, err
	}

	expired := 0
	var firstErr error
	for _, coupon := range coupons {
		coupon.StatusID = expiredStatus.ID
		coupon.UpdatedAt = time.Now().UTC()
		if err := s.couponRepo.Update(ctx, coupon); err != nil {
			s.logger.WithError(err).WithField("coupon_id", coupon.ID).Error("failed to expire coupon")
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		expired++
	}

	if expired > 0 {
		s.logger.WithField("expired", expired).Info("expired overdue coupons")
	}
	return expired, firstErr
}
