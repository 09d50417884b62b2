package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/campuspay/ms-go-billing/app/auth"
	"github.com/campuspay/ms-go-billing/app/factory"
	"github.com/campuspay/ms-go-billing/app/mapper"
	"github.com/campuspay/ms-go-billing/app/service"
	"github.com/campuspay/ms-go-billing/app/types"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// AdminController serves the back-office surface: reconciliation, voids on
// behalf of students, and catalog management. Routes are mounted behind
// the admin middleware; the service layer re-checks the role anyway.
type AdminController struct {
	billingService *service.BillingService
	logger         logrus.FieldLogger
}

func NewAdminController(billingService *service.BillingService) *AdminController {
	return &AdminController{
		billingService: billingService,
		logger:         factory.NewModuleLogger("admin-controller"),
	}
}

func (c *AdminController) CouponOverview(ctx echo.Context) error {
	principal, ok := auth.PrincipalFromContext(ctx)
	if !ok {
		return writeError(ctx, http.StatusUnauthorized, "missing or invalid identity")
	}

	overview, err := c.billingService.AdminCouponOverview(ctx.Request().Context(), principal)
	if err != nil {
		if errors.Is(err, service.ErrForbidden) {
			return writeError(ctx, http.StatusForbidden, "administrator role required")
		}
		c.logger.WithError(err).Error("Coupon overview failed")
		return writeError(ctx, http.StatusInternalServerError, "internal server error")
	}

	return ctx.JSON(http.StatusOK, mapper.OverviewToResponse(overview))
}

func (c *AdminController) UpdateCouponStatus(ctx echo.Context) error {
	principal, ok := auth.PrincipalFromContext(ctx)
	if !ok {
		return writeError(ctx, http.StatusUnauthorized, "missing or invalid identity")
	}

	req, err := types.NewUpdateCouponStatusRequestFromContext(ctx)
	if err != nil {
		return writeError(ctx, http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return writeError(ctx, http.StatusBadRequest, err.Error())
	}

	coupon, err := c.billingService.TransitionCouponStatus(ctx.Request().Context(), principal, req.GetId(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrForbidden):
			return writeError(ctx, http.StatusForbidden, "administrator role required")
		case errors.Is(err, service.ErrCouponNotFound):
			return writeError(ctx, http.StatusNotFound, "coupon not found")
		case errors.Is(err, service.ErrStatusNotFound):
			return writeError(ctx, http.StatusNotFound, "status not found")
		case errors.Is(err, service.ErrInstallmentCatalogMisconfigured):
			c.logger.WithError(err).Error("Update coupon status failed")
			return writeError(ctx, http.StatusInternalServerError, err.Error())
		default:
			c.logger.WithError(err).Error("Update coupon status failed")
			return writeError(ctx, http.StatusInternalServerError, "internal server error")
		}
	}

	return ctx.JSON(http.StatusOK, mapper.CouponToResponse(coupon))
}

func (c *AdminController) VoidCoupon(ctx echo.Context) error {
	principal, ok := auth.PrincipalFromContext(ctx)
	if !ok {
		return writeError(ctx, http.StatusUnauthorized, "missing or invalid identity")
	}

	req, err := types.NewVoidCouponRequestFromContext(ctx)
	if err != nil {
		return writeError(ctx, http.StatusBadRequest, "invalid request")
	}
	if err := req.Validate(); err != nil {
		return writeError(ctx, http.StatusBadRequest, err.Error())
	}

	coupon, alreadyVoided, err := c.billingService.AdminVoid(ctx.Request().Context(), principal, req.GetId(), req.GetReason())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrForbidden):
			return writeError(ctx, http.StatusForbidden, "administrator role required")
		case errors.Is(err, service.ErrCouponNotFound):
			return writeError(ctx, http.StatusNotFound, "coupon not found")
		case errors.Is(err, service.ErrInvalidStatus):
			return writeError(ctx, http.StatusConflict, err.Error())
		case errors.Is(err, service.ErrInvalidRequest):
			return writeError(ctx, http.StatusBadRequest, err.Error())
		default:
			c.logger.WithError(err).Error("Admin void failed")
			return writeError(ctx, http.StatusInternalServerError, "internal server error")
		}
	}

	if alreadyVoided {
		return ctx.JSON(http.StatusOK, &types.MessageResponse{Message: "coupon is already voided"})
	}
	return ctx.JSON(http.StatusOK, mapper.CouponToResponse(coupon))
}

func (c *AdminController) ListCouponStatuses(ctx echo.Context) error {
	principal, ok := auth.PrincipalFromContext(ctx)
	if !ok {
		return writeError(ctx, http.StatusUnauthorized, "missing or invalid identity")
	}

	statuses, err := c.billingService.ListCouponStatuses(ctx.Request().Context(), principal)
	if err != nil {
		if errors.Is(err, service.ErrForbidden) {
			return writeError(ctx, http.StatusForbidden, "administrator role required")
		}
		c.logger.WithError(err).Error("List coupon statuses failed")
		return writeError(ctx, http.StatusInternalServerError, "internal server error")
	}

	return ctx.JSON(http.StatusOK, mapper.CouponStatusesToResponse(statuses))
}

func (c *AdminController) CreateCouponStatus(ctx echo.Context) error {
	principal, ok := auth.PrincipalFromContext(ctx)
	if !ok {
		return writeError(ctx, http.StatusUnauthorized, "missing or invalid identity")
	}

	req, err := types.NewCreateCatalogItemRequestFromContext(ctx)
	if err != nil {
		return writeError(ctx, http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return writeError(ctx, http.StatusBadRequest, err.Error())
	}

	status, err := c.billingService.CreateCouponStatus(ctx.Request().Context(), principal, req.GetName(), optionalString(req.GetDescription()))
	if err != nil {
		return c.writeCatalogError(ctx, err, "Create coupon status failed")
	}

	return ctx.JSON(http.StatusCreated, mapper.CouponStatusToResponse(status))
}

func (c *AdminController) DeleteCouponStatus(ctx echo.Context) error {
	principal, ok := auth.PrincipalFromContext(ctx)
	if !ok {
		return writeError(ctx, http.StatusUnauthorized, "missing or invalid identity")
	}

	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return writeError(ctx, http.StatusBadRequest, "invalid status id")
	}

	if err := c.billingService.DeleteCouponStatus(ctx.Request().Context(), principal, id); err != nil {
		return c.writeCatalogError(ctx, err, "Delete coupon status failed")
	}

	return ctx.NoContent(http.StatusNoContent)
}

func (c *AdminController) ListGateways(ctx echo.Context) error {
	principal, ok := auth.PrincipalFromContext(ctx)
	if !ok {
		return writeError(ctx, http.StatusUnauthorized, "missing or invalid identity")
	}

	gateways, err := c.billingService.ListPaymentGateways(ctx.Request().Context(), principal)
	if err != nil {
		if errors.Is(err, service.ErrForbidden) {
			return writeError(ctx, http.StatusForbidden, "administrator role required")
		}
		c.logger.WithError(err).Error("List gateways failed")
		return writeError(ctx, http.StatusInternalServerError, "internal server error")
	}

	return ctx.JSON(http.StatusOK, mapper.GatewaysToResponse(gateways))
}

func (c *AdminController) CreateGateway(ctx echo.Context) error {
	principal, ok := auth.PrincipalFromContext(ctx)
	if !ok {
		return writeError(ctx, http.StatusUnauthorized, "missing or invalid identity")
	}

	req, err := types.NewCreateCatalogItemRequestFromContext(ctx)
	if err != nil {
		return writeError(ctx, http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return writeError(ctx, http.StatusBadRequest, err.Error())
	}

	gateway, err := c.billingService.CreatePaymentGateway(ctx.Request().Context(), principal, req.GetName(), optionalString(req.GetDescription()))
	if err != nil {
		return c.writeCatalogError(ctx, err, "Create gateway failed")
	}

	return ctx.JSON(http.StatusCreated, mapper.GatewayToResponse(gateway))
}

func (c *AdminController) DeleteGateway(ctx echo.Context) error {
	principal, ok := auth.PrincipalFromContext(ctx)
	if !ok {
		return writeError(ctx, http.StatusUnauthorized, "missing or invalid identity")
	}

	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return writeError(ctx, http.StatusBadRequest, "invalid gateway id")
	}

	if err := c.billingService.DeletePaymentGateway(ctx.Request().Context(), principal, id); err != nil {
		return c.writeCatalogError(ctx, err, "Delete gateway failed")
	}

	return ctx.NoContent(http.StatusNoContent)
}

func (c *AdminController) writeCatalogError(ctx echo.Context, err error, logMessage string) error {
	switch {
	case errors.Is(err, service.ErrForbidden):
		return writeError(ctx, http.StatusForbidden, "administrator role required")
	case errors.Is(err, service.ErrStatusNotFound):
		return writeError(ctx, http.StatusNotFound, "catalog row not found")
	case errors.Is(err, service.ErrCatalogDuplicate):
		return writeError(ctx, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrCatalogInUse):
		return writeError(ctx, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrInvalidRequest):
		return writeError(ctx, http.StatusBadRequest, err.Error())
	default:
		c.logger.WithError(err).Error(logMessage)
		return writeError(ctx, http.StatusInternalServerError, "internal server error")
	}
}

func optionalString(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
