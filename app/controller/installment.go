package controller

import (
	"errors"
	"net/http"

	"github.com/campuspay/ms-go-billing/app/auth"
	"github.com/campuspay/ms-go-billing/app/factory"
	"github.com/campuspay/ms-go-billing/app/mapper"
	"github.com/campuspay/ms-go-billing/app/service"
	"github.com/campuspay/ms-go-billing/app/types"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type InstallmentController struct {
	billingService *service.BillingService
	logger         logrus.FieldLogger
}

func NewInstallmentController(billingService *service.BillingService) *InstallmentController {
	return &InstallmentController{
		billingService: billingService,
		logger:         factory.NewModuleLogger("installment-controller"),
	}
}

func (c *InstallmentController) ListPending(ctx echo.Context) error {
	principal, ok := auth.PrincipalFromContext(ctx)
	if !ok {
		return writeError(ctx, http.StatusUnauthorized, "missing or invalid identity")
	}

	installments, err := c.billingService.ListPendingInstallments(ctx.Request().Context(), principal)
	if err != nil {
		c.logger.WithError(err).Error("List pending installments failed")
		return writeError(ctx, http.StatusInternalServerError, "internal server error")
	}

	return ctx.JSON(http.StatusOK, mapper.InstallmentsToResponse(installments))
}

func (c *InstallmentController) ListGateways(ctx echo.Context) error {
	gateways, err := c.billingService.ListGateways(ctx.Request().Context())
	if err != nil {
		c.logger.WithError(err).Error("List gateways failed")
		return writeError(ctx, http.StatusInternalServerError, "internal server error")
	}

	return ctx.JSON(http.StatusOK, mapper.GatewaysToResponse(gateways))
}

func (c *InstallmentController) ListPayments(ctx echo.Context) error {
	principal, ok := auth.PrincipalFromContext(ctx)
	if !ok {
		return writeError(ctx, http.StatusUnauthorized, "missing or invalid identity")
	}

	req, err := types.NewGetInstallmentRequestFromContext(ctx)
	if err != nil {
		return writeError(ctx, http.StatusBadRequest, "invalid request")
	}
	if err := req.Validate(); err != nil {
		return writeError(ctx, http.StatusBadRequest, err.Error())
	}

	payments, err := c.billingService.ListInstallmentPayments(ctx.Request().Context(), principal, req.GetId())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInstallmentNotFound):
			return writeError(ctx, http.StatusNotFound, "installment not found")
		case errors.Is(err, service.ErrForbidden):
			return writeError(ctx, http.StatusForbidden, "installment belongs to another student")
		default:
			c.logger.WithError(err).Error("List installment payments failed")
			return writeError(ctx, http.StatusInternalServerError, "internal server error")
		}
	}

	return ctx.JSON(http.StatusOK, mapper.PartialPaymentsToResponse(payments))
}

func (c *InstallmentController) RegisterPartialPayment(ctx echo.Context) error {
	principal, ok := auth.PrincipalFromContext(ctx)
	if !ok {
		return writeError(ctx, http.StatusUnauthorized, "missing or invalid identity")
	}

	req, err := types.NewPartialPaymentRequestFromContext(ctx)
	if err != nil {
		return writeError(ctx, http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return writeError(ctx, http.StatusBadRequest, err.Error())
	}

	installment, err := c.billingService.RegisterPartialPayment(ctx.Request().Context(), principal, req.GetInstallmentId(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInstallmentNotFound):
			return writeError(ctx, http.StatusNotFound, "installment not found")
		case errors.Is(err, service.ErrForbidden):
			return writeError(ctx, http.StatusForbidden, "installment belongs to another student")
		case errors.Is(err, service.ErrInvalidRequest):
			return writeError(ctx, http.StatusBadRequest, err.Error())
		default:
			c.logger.WithError(err).Error("Register partial payment failed")
			return writeError(ctx, http.StatusInternalServerError, "internal server error")
		}
	}

	return ctx.JSON(http.StatusCreated, mapper.InstallmentToResponse(installment))
}
