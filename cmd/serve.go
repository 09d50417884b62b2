package cmd

import (
	"context"
	"database/sql"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/campuspay/ms-go-billing/app/auth"
	"github.com/campuspay/ms-go-billing/app/controller"
	"github.com/campuspay/ms-go-billing/app/document"
	"github.com/campuspay/ms-go-billing/app/repository"
	"github.com/campuspay/ms-go-billing/app/service"
	"github.com/campuspay/ms-go-billing/config"

	_ "github.com/go-sql-driver/mysql"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  "Start the HTTP (Echo) server for the billing service.",
	Run:   runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) {
	cfg, billingService, cleanup := mustCreateBillingService()
	defer cleanup()

	couponController := controller.NewCouponController(billingService)
	installmentController := controller.NewInstallmentController(billingService)
	adminController := controller.NewAdminController(billingService)

	e := setupHTTPServer(couponController, installmentController, adminController)

	go func() {
		httpAddr := net.JoinHostPort(cfg.HTTP.Host, cfg.HTTP.Port)
		logrus.WithField("addr", httpAddr).Info("Starting HTTP server")
		if err := e.Start(httpAddr); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Fatal("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Warn("HTTP shutdown error")
	}

	logrus.Info("Server stopped")
}

func setupHTTPServer(
	couponController *controller.CouponController,
	installmentController *controller.InstallmentController,
	adminController *controller.AdminController,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogRemoteIP:  true,
		LogLatency:   true,
		LogUserAgent: true,
		LogError:     true,
		HandleError:  true,
		LogRequestID: true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			fields := logrus.Fields{
				"remote_ip":  v.RemoteIP,
				"host":       v.Host,
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency":    v.Latency.String(),
				"latency_ns": v.Latency.Nanoseconds(),
				"user_agent": v.UserAgent,
			}
			entry := logrus.WithFields(fields)
			if v.Error != nil {
				entry = entry.WithError(v.Error)
			}
			entry.Info("http_request")
			return nil
		},
	}))
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())

	e.GET("/health", couponController.Health)

	api := e.Group("", auth.RequirePrincipal())

	api.GET("/installments/pending", installmentController.ListPending)
	api.GET("/installments/:id/payments", installmentController.ListPayments)
	api.POST("/installments/:id/payments", installmentController.RegisterPartialPayment)
	api.GET("/gateways", installmentController.ListGateways)

	coupons := api.Group("/coupons")
	coupons.POST("", couponController.IssueCoupon)
	coupons.GET("", couponController.CouponHistory)
	coupons.GET("/:id/download", couponController.DownloadVoucher)
	coupons.POST("/:id/void", couponController.StudentVoid)

	admin := api.Group("/admin", auth.RequireAdmin())
	admin.GET("/coupons", adminController.CouponOverview)
	admin.PATCH("/coupons/:id/status", adminController.UpdateCouponStatus)
	admin.POST("/coupons/:id/void", adminController.VoidCoupon)
	admin.GET("/catalog/coupon-statuses", adminController.ListCouponStatuses)
	admin.POST("/catalog/coupon-statuses", adminController.CreateCouponStatus)
	admin.DELETE("/catalog/coupon-statuses/:id", adminController.DeleteCouponStatus)
	admin.GET("/catalog/gateways", adminController.ListGateways)
	admin.POST("/catalog/gateways", adminController.CreateGateway)
	admin.DELETE("/catalog/gateways/:id", adminController.DeleteGateway)

	return e
}

func mustCreateBillingService() (*config.Config, *service.BillingService, func()) {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	if err := configureLogging(cfg); err != nil {
		logrus.WithError(err).Fatal("Failed to configure logging")
	}

	db, err := sql.Open("mysql", cfg.MySQL.DSN)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}

	db.SetMaxOpenConns(cfg.MySQL.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MySQL.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.MySQL.ConnMaxLifetime)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		logrus.WithError(err).Fatal("Failed to ping database")
	}

	installmentRepo := repository.NewInstallmentRepository(db)
	couponRepo := repository.NewCouponRepository(db)
	lineItemRepo := repository.NewLineItemRepository(db)
	paymentRepo := repository.NewPartialPaymentRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	txManager := repository.NewTxManager(db)

	docRegistry := document.NewRegistry(
		document.NewVoucherRenderer(cfg.Billing.RenderedGatewayName),
	)

	billingService := service.NewBillingService(
		installmentRepo,
		couponRepo,
		lineItemRepo,
		paymentRepo,
		catalogRepo,
		auditRepo,
		profileRepo,
		txManager,
		docRegistry,
		cfg.Billing,
	)

	cleanup := func() {
		if err := db.Close(); err != nil {
			logrus.WithError(err).Warn("Failed to close database")
		}
	}

	return cfg, billingService, cleanup
}

func configureLogging(cfg *config.Config) error {
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.JSONFormatter{})
	return nil
}
