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

type CouponController struct {
	billingService *service.BillingService
	logger         logrus.FieldLogger
}

func NewCouponController(billingService *service.BillingService) *CouponController {
	return &CouponController{
		billingService: billingService,
		logger:         factory.NewModuleLogger("coupon-controller"),
	}
}

func (c *CouponController) Health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, &types.HealthResponse{Status: "ok"})
}

func (c *CouponController) IssueCoupon(ctx echo.Context) error {
	principal, ok := auth.PrincipalFromContext(ctx)
	if !ok {
		return writeError(ctx, http.StatusUnauthorized, "missing or invalid identity")
	}

	req, err := types.NewIssueCouponRequestFromContext(ctx)
	if err != nil {
		return writeError(ctx, http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return writeError(ctx, http.StatusBadRequest, err.Error())
	}

	coupon, created, err := c.billingService.IssueCoupon(ctx.Request().Context(), principal, req)
	if err != nil {
		var conflict *service.BookingConflictError
		switch {
		case errors.As(err, &conflict):
			return ctx.JSON(http.StatusConflict, &types.ConflictResponse{
				Error:             conflict.Error(),
				ConflictingCoupon: mapper.CouponToResponse(conflict.Coupon),
			})
		case errors.Is(err, service.ErrIdempotencyConflict):
			return writeError(ctx, http.StatusConflict, err.Error())
		case errors.Is(err, service.ErrInstallmentNotFound):
			return writeError(ctx, http.StatusNotFound, "installment not found")
		case errors.Is(err, service.ErrGatewayNotFound):
			return writeError(ctx, http.StatusNotFound, "gateway not found")
		case errors.Is(err, service.ErrInvalidRequest):
			return writeError(ctx, http.StatusBadRequest, err.Error())
		default:
			c.logger.WithError(err).Error("Issue coupon failed")
			return writeError(ctx, http.StatusInternalServerError, "internal server error")
		}
	}

	statusCode := http.StatusCreated
	if !created {
		statusCode = http.StatusOK
	}
	return ctx.JSON(statusCode, mapper.CouponToResponse(coupon))
}

func (c *CouponController) CouponHistory(ctx echo.Context) error {
	principal, ok := auth.PrincipalFromContext(ctx)
	if !ok {
		return writeError(ctx, http.StatusUnauthorized, "missing or invalid identity")
	}

	coupons, err := c.billingService.CouponHistory(ctx.Request().Context(), principal)
	if err != nil {
		c.logger.WithError(err).Error("Coupon history failed")
		return writeError(ctx, http.StatusInternalServerError, "internal server error")
	}

	return ctx.JSON(http.StatusOK, mapper.CouponsToResponse(coupons))
}

func (c *CouponController) DownloadVoucher(ctx echo.Context) error {
	principal, ok := auth.PrincipalFromContext(ctx)
	if !ok {
		return writeError(ctx, http.StatusUnauthorized, "missing or invalid identity")
	}

	req, err := types.NewGetCouponRequestFromContext(ctx)
	if err != nil {
		return writeError(ctx, http.StatusBadRequest, "invalid request")
	}
	if err := req.Validate(); err != nil {
		return writeError(ctx, http.StatusBadRequest, err.Error())
	}

	result, err := c.billingService.GetCouponVoucher(ctx.Request().Context(), principal, req.GetId())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCouponNotFound):
			return writeError(ctx, http.StatusNotFound, "coupon not found")
		case errors.Is(err, service.ErrForbidden):
			return writeError(ctx, http.StatusForbidden, "coupon belongs to another student")
		default:
			c.logger.WithError(err).Error("Download voucher failed")
			return writeError(ctx, http.StatusInternalServerError, "internal server error")
		}
	}

	if result.RedirectURL != "" {
		return ctx.Redirect(http.StatusSeeOther, result.RedirectURL)
	}

	ctx.Response().Header().Set(echo.HeaderContentDisposition, `inline; filename="`+result.Filename+`"`)
	return ctx.Blob(http.StatusOK, "application/pdf", result.PDF)
}

func (c *CouponController) StudentVoid(ctx echo.Context) error {
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

	_, alreadyVoided, err := c.billingService.StudentVoid(ctx.Request().Context(), principal, req.GetId())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCouponNotFound):
			return writeError(ctx, http.StatusNotFound, "coupon not found")
		case errors.Is(err, service.ErrForbidden):
			return writeError(ctx, http.StatusForbidden, "coupon belongs to another student")
		case errors.Is(err, service.ErrInvalidStatus):
			return writeError(ctx, http.StatusConflict, err.Error())
		default:
			c.logger.WithError(err).Error("Void coupon failed")
			return writeError(ctx, http.StatusInternalServerError, "internal server error")
		}
	}

	if alreadyVoided {
		return ctx.JSON(http.StatusOK, &types.MessageResponse{Message: "coupon is already voided"})
	}
	return ctx.NoContent(http.StatusNoContent)
}

func writeError(ctx echo.Context, statusCode int, message string) error {
	return ctx.JSON(statusCode, &types.ErrorResponse{Error: message})
}
