package service

import (
	"context"
	"time"

	"github.com/campuspay/ms-go-billing/app/document"
	"github.com/campuspay/ms-go-billing/app/entity"
	"github.com/campuspay/ms-go-billing/app/factory"
	"github.com/campuspay/ms-go-billing/config"
	"github.com/sirupsen/logrus"
)

type installmentRepository interface {
	FindByID(ctx context.Context, id uint64) (*entity.Installment, error)
	FindByIDForUpdate(ctx context.Context, id uint64) (*entity.Installment, error)
	FindByIDsForStudentForUpdate(ctx context.Context, ids []uint64, studentID uint64) ([]*entity.Installment, error)
	FindByIDsForUpdate(ctx context.Context, ids []uint64) ([]*entity.Installment, error)
	ListByStudentAndStatusIDs(ctx context.Context, studentID uint64, statusIDs []uint64) ([]*entity.Installment, error)
	Update(ctx context.Context, installment *entity.Installment) error
}

type couponRepository interface {
	Create(ctx context.Context, coupon *entity.Coupon) error
	Update(ctx context.Context, coupon *entity.Coupon) error
	FindByID(ctx context.Context, id uint64) (*entity.Coupon, error)
	FindByIDForUpdate(ctx context.Context, id uint64) (*entity.Coupon, error)
	FindByIdempotencyKey(ctx context.Context, key string) (*entity.Coupon, error)
	FindActiveByInstallmentIDs(ctx context.Context, installmentIDs []uint64, activeStatusID uint64) (*entity.Coupon, error)
	ListByStudent(ctx context.Context, studentID uint64) ([]*entity.Coupon, error)
	ListAll(ctx context.Context) ([]*entity.Coupon, error)
	ListActiveDueBefore(ctx context.Context, activeStatusID uint64, before time.Time, limit int32) ([]*entity.Coupon, error)
	CountByStatusName(ctx context.Context) (map[string]int64, error)
}

type lineItemRepository interface {
	Create(ctx context.Context, item *entity.CouponLineItem) error
	ListByCoupon(ctx context.Context, couponID uint64) ([]*entity.CouponLineItem, error)
}

type partialPaymentRepository interface {
	Create(ctx context.Context, payment *entity.PartialPayment) error
	ListByInstallment(ctx context.Context, installmentID uint64) ([]*entity.PartialPayment, error)
}

type catalogRepository interface {
	FindCouponStatusByID(ctx context.Context, id uint64) (*entity.CouponStatus, error)
	FindCouponStatusByName(ctx context.Context, name string) (*entity.CouponStatus, error)
	ListCouponStatuses(ctx context.Context) ([]*entity.CouponStatus, error)
	CreateCouponStatus(ctx context.Context, status *entity.CouponStatus) error
	DeleteCouponStatus(ctx context.Context, id uint64) error
	FindInstallmentStatusByName(ctx context.Context, name string) (*entity.InstallmentStatus, error)
	FindInstallmentStatusesByNames(ctx context.Context, names []string) ([]*entity.InstallmentStatus, error)
	FindGatewayByID(ctx context.Context, id uint64) (*entity.PaymentGateway, error)
	ListGateways(ctx context.Context) ([]*entity.PaymentGateway, error)
	CreateGateway(ctx context.Context, gateway *entity.PaymentGateway) error
	DeleteGateway(ctx context.Context, id uint64) error
}

type auditRepository interface {
	Create(ctx context.Context, record *entity.AuditLog) error
}

type profileRepository interface {
	FindByStudentID(ctx context.Context, studentID uint64) (*entity.StudentProfile, error)
}

// txRunner wraps a function in one database transaction. Every multi-step
// mutation in this service runs through it.
type txRunner interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type BillingService struct {
	installmentRepo installmentRepository
	couponRepo      couponRepository
	lineItemRepo    lineItemRepository
	paymentRepo     partialPaymentRepository
	catalogRepo     catalogRepository
	auditRepo       auditRepository
	profileRepo     profileRepository
	tx              txRunner
	docRegistry     *document.Registry
	billingCfg      config.BillingConfig
	logger          logrus.FieldLogger
}

func NewBillingService(
	installmentRepo installmentRepository,
	couponRepo couponRepository,
	lineItemRepo lineItemRepository,
	paymentRepo partialPaymentRepository,
	catalogRepo catalogRepository,
	auditRepo auditRepository,
	profileRepo profileRepository,
	tx txRunner,
	docRegistry *document.Registry,
	billingCfg config.BillingConfig,
) *BillingService {
	return &BillingService{
		installmentRepo: installmentRepo,
		couponRepo:      couponRepo,
		lineItemRepo:    lineItemRepo,
		paymentRepo:     paymentRepo,
		catalogRepo:     catalogRepo,
		auditRepo:       auditRepo,
		profileRepo:     profileRepo,
		tx:              tx,
		docRegistry:     docRegistry,
		billingCfg:      billingCfg,
		logger:          factory.NewModuleLogger("billing-service"),
	}
}

// audit writes one action record. Best-effort: a sink failure is logged
// and swallowed, never surfaced to the caller. Always invoked outside of
// the primary transaction.
func (s *BillingService) audit(ctx context.Context, actorID *uint64, action, detail string) {
	record := &entity.AuditLog{
		ActorID:   actorID,
		Action:    action,
		Detail:    detail,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.auditRepo.Create(ctx, record); err != nil {
		s.logger.WithError(err).WithField("action", action).Warn("audit write failed")
	}
}

func (s *BillingService) batchSize() int32 {
	if s.billingCfg.JobBatchSize > 0 {
		return s.billingCfg.JobBatchSize
	}
	return 100
}

func actorRef(id uint64) *uint64 {
	return &id
}
