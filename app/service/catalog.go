package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/campuspay/ms-go-billing/app/auth"
	"github.com/campuspay/ms-go-billing/app/entity"
	"github.com/campuspay/ms-go-billing/app/repository"
)

// Catalog administration. All operations are admin-only; the engines
// depend on the seeded status names, so deleting a referenced row is
// rejected rather than cascaded.

func (s *BillingService) ListCouponStatuses(ctx context.Context, principal auth.Principal) ([]*entity.CouponStatus, error) {
	if !principal.IsAdmin {
		return nil, ErrForbidden
	}
	return s.catalogRepo.ListCouponStatuses(ctx)
}

func (s *BillingService) CreateCouponStatus(ctx context.Context, principal auth.Principal, name string, description *string) (*entity.CouponStatus, error) {
	if !principal.IsAdmin {
		return nil, ErrForbidden
	}
	if name == "" {
		return nil, fmt.Errorf("%w: status name is required", ErrInvalidRequest)
	}

	status := &entity.CouponStatus{Name: name, Description: description}
	if err := s.catalogRepo.CreateCouponStatus(ctx, status); err != nil {
		return nil, mapCatalogError(err)
	}
	return status, nil
}

func (s *BillingService) DeleteCouponStatus(ctx context.Context, principal auth.Principal, id uint64) error {
	if !principal.IsAdmin {
		return ErrForbidden
	}
	if err := s.catalogRepo.DeleteCouponStatus(ctx, id); err != nil {
		return mapCatalogError(err)
	}
	return nil
}

func (s *BillingService) ListPaymentGateways(ctx context.Context, principal auth.Principal) ([]*entity.PaymentGateway, error) {
	if !principal.IsAdmin {
		return nil, ErrForbidden
	}
	return s.catalogRepo.ListGateways(ctx)
}

func (s *BillingService) CreatePaymentGateway(ctx context.Context, principal auth.Principal, name string, description *string) (*entity.PaymentGateway, error) {
	if !principal.IsAdmin {
		return nil, ErrForbidden
	}
	if name == "" {
		return nil, fmt.Errorf("%w: gateway name is required", ErrInvalidRequest)
	}

	gateway := &entity.PaymentGateway{Name: name, Description: description}
	if err := s.catalogRepo.CreateGateway(ctx, gateway); err != nil {
		return nil, mapCatalogError(err)
	}
	return gateway, nil
}

func (s *BillingService) DeletePaymentGateway(ctx context.Context, principal auth.Principal, id uint64) error {
	if !principal.IsAdmin {
		return ErrForbidden
	}
	if err := s.catalogRepo.DeleteGateway(ctx, id); err != nil {
		return mapCatalogError(err)
	}
	return nil
}

func mapCatalogError(err error) error {
	switch {
	case errors.Is(err, repository.ErrCatalogNotFound):
		return ErrStatusNotFound
	case errors.Is(err, repository.ErrCatalogDuplicate):
		return ErrCatalogDuplicate
	case errors.Is(err, repository.ErrCatalogInUse):
		return ErrCatalogInUse
	default:
		return err
	}
}
