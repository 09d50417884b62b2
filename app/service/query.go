package service

import (
	"context"
	"strconv"

	"github.com/campuspay/ms-go-billing/app/auth"
	"github.com/campuspay/ms-go-billing/app/document"
	"github.com/campuspay/ms-go-billing/app/entity"
)

// CouponOverview is the admin dashboard payload: every coupon plus
// per-status counts.
type CouponOverview struct {
	Coupons  []*entity.Coupon
	Counts   map[string]int64
	Statuses []*entity.CouponStatus
}

// VoucherResult is the outcome of a voucher download. Exactly one of PDF
// and RedirectURL is set.
type VoucherResult struct {
	PDF         []byte
	RedirectURL string
	Filename    string
}

// ListPendingInstallments returns the caller's unpaid installments,
// ordered by due date. Pending and Overdue both count as unpaid.
func (s *BillingService) ListPendingInstallments(ctx context.Context, principal auth.Principal) ([]*entity.Installment, error) {
	statuses, err := s.catalogRepo.FindInstallmentStatusesByNames(ctx, []string{
		entity.InstallmentStatusPending,
		entity.InstallmentStatusOverdue,
	})
	if err != nil {
		return nil, err
	}
	if len(statuses) == 0 {
		return nil, ErrInstallmentCatalogMisconfigured
	}

	statusIDs := make([]uint64, 0, len(statuses))
	for _, status := range statuses {
		statusIDs = append(statusIDs, status.ID)
	}
	return s.installmentRepo.ListByStudentAndStatusIDs(ctx, principal.StudentID, statusIDs)
}

func (s *BillingService) ListGateways(ctx context.Context) ([]*entity.PaymentGateway, error) {
	return s.catalogRepo.ListGateways(ctx)
}

// ListInstallmentPayments returns the direct payments recorded against one
// installment, oldest first.
func (s *BillingService) ListInstallmentPayments(ctx context.Context, principal auth.Principal, installmentID uint64) ([]*entity.PartialPayment, error) {
	installment, err := s.installmentRepo.FindByID(ctx, installmentID)
	if err != nil {
		return nil, err
	}
	if installment == nil {
		return nil, ErrInstallmentNotFound
	}
	if installment.StudentID != principal.StudentID && !principal.IsAdmin {
		return nil, ErrForbidden
	}
	return s.paymentRepo.ListByInstallment(ctx, installmentID)
}

// CouponHistory returns every coupon the caller ever generated, newest
// first, regardless of status.
func (s *BillingService) CouponHistory(ctx context.Context, principal auth.Principal) ([]*entity.Coupon, error) {
	return s.couponRepo.ListByStudent(ctx, principal.StudentID)
}

func (s *BillingService) AdminCouponOverview(ctx context.Context, principal auth.Principal) (*CouponOverview, error) {
	if !principal.IsAdmin {
		return nil, ErrForbidden
	}

	coupons, err := s.couponRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	counts, err := s.couponRepo.CountByStatusName(ctx)
	if err != nil {
		return nil, err
	}
	statuses, err := s.catalogRepo.ListCouponStatuses(ctx)
	if err != nil {
		return nil, err
	}

	return &CouponOverview{Coupons: coupons, Counts: counts, Statuses: statuses}, nil
}

// GetCouponVoucher resolves the downloadable document for a coupon. When
// the coupon's gateway has a registered renderer the PDF is produced
// inline; otherwise the caller is redirected to the placeholder document.
func (s *BillingService) GetCouponVoucher(ctx context.Context, principal auth.Principal, couponID uint64) (*VoucherResult, error) {
	coupon, err := s.couponRepo.FindByID(ctx, couponID)
	if err != nil {
		return nil, err
	}
	if coupon == nil {
		return nil, ErrCouponNotFound
	}
	if coupon.StudentID != principal.StudentID && !principal.IsAdmin {
		return nil, ErrForbidden
	}

	renderer, ok := s.docRegistry.Get(coupon.GatewayName)
	if !ok {
		return &VoucherResult{RedirectURL: s.billingCfg.PlaceholderVoucherURL}, nil
	}

	items, err := s.lineItemRepo.ListByCoupon(ctx, coupon.ID)
	if err != nil {
		return nil, err
	}
	installments := make([]*entity.Installment, 0, len(items))
	for _, item := range items {
		installment, err := s.installmentRepo.FindByID(ctx, item.InstallmentID)
		if err != nil {
			return nil, err
		}
		if installment != nil {
			installments = append(installments, installment)
		}
	}
	profile, err := s.profileRepo.FindByStudentID(ctx, coupon.StudentID)
	if err != nil {
		return nil, err
	}

	pdf, err := renderer.Render(&document.VoucherData{
		Coupon:             coupon,
		LineItems:          items,
		Installments:       installments,
		Profile:            profile,
		InstitutionName:    s.billingCfg.InstitutionName,
		InstitutionAddress: s.billingCfg.InstitutionAddress,
	})
	if err != nil {
		return nil, err
	}

	return &VoucherResult{
		PDF:      pdf,
		Filename: voucherFilename(coupon.ID),
	}, nil
}

func voucherFilename(couponID uint64) string {
	return "voucher_" + strconv.FormatUint(couponID, 10) + ".pdf"
}
