package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App     AppConfig
	HTTP    ServerConfig
	MySQL   MySQLConfig
	Log     LogConfig
	Billing BillingConfig
	Jobs    JobsConfig
}

type AppConfig struct {
	ServiceName string
}

type ServerConfig struct {
	Host string
	Port string
}

type MySQLConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type LogConfig struct {
	Level string
}

type BillingConfig struct {
	// Coupons expire this many days after generation.
	CouponTTLDays int
	// Gateway whose coupons get an inline rendered voucher. Coupons for
	// any other gateway redirect to PlaceholderVoucherURL on download.
	RenderedGatewayName   string
	PlaceholderVoucherURL string
	// Channel label stamped on direct partial-payment records.
	PartialPaymentChannel string
	InstitutionName       string
	InstitutionAddress    string
	JobBatchSize          int32
}

type JobsConfig struct {
	ExpireCouponsInterval time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	mysqlDSN := os.Getenv("MYSQL_DSN")
	if mysqlDSN == "" {
		return nil, errors.New("MYSQL_DSN environment variable is required")
	}

	return &Config{
		App: AppConfig{
			ServiceName: getEnv("APP_SERVICE_NAME", "billing-service"),
		},
		HTTP: ServerConfig{
			Host: getEnv("HTTP_HOST", "0.0.0.0"),
			Port: getEnv("HTTP_PORT", "8080"),
		},
		MySQL: MySQLConfig{
			DSN:             mysqlDSN,
			MaxOpenConns:    getIntEnv("MYSQL_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getIntEnv("MYSQL_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getMinutesEnv("MYSQL_CONN_MAX_LIFETIME_MINUTES", 30*time.Minute),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Billing: BillingConfig{
			CouponTTLDays:         getIntEnv("BILLING_COUPON_TTL_DAYS", 7),
			RenderedGatewayName:   getEnv("BILLING_RENDERED_GATEWAY_NAME", "Easy Pay"),
			PlaceholderVoucherURL: getEnv("BILLING_PLACEHOLDER_VOUCHER_URL", "https://static.campuspay.example/voucher_sample.pdf"),
			PartialPaymentChannel: getEnv("BILLING_PARTIAL_PAYMENT_CHANNEL", "Macro Click"),
			InstitutionName:       getEnv("BILLING_INSTITUTION_NAME", "Instituto Superior del Milagro N 8207"),
			InstitutionAddress:    getEnv("BILLING_INSTITUTION_ADDRESS", "Alvarado 951, Salta"),
			JobBatchSize:          int32(getIntEnv("BILLING_JOB_BATCH_SIZE", 100)),
		},
		Jobs: JobsConfig{
			ExpireCouponsInterval: getMinutesEnv("BILLING_EXPIRE_COUPONS_INTERVAL_MINUTES", 60*time.Minute),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getMinutesEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if minutes, err := strconv.Atoi(value); err == nil {
			return time.Duration(minutes) * time.Minute
		}
	}
	return defaultValue
}
