package repository

import (
	"context"
	"database/sql"

	"github.com/campuspay/ms-go-billing/app/entity"
)

// Schema statements, applied in order by the migrate command. Installments
// and catalog rows are referenced with ON DELETE RESTRICT: a status,
// gateway or installment cannot be deleted while a coupon points at it.
// Line items cascade with their coupon header.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS installment_statuses (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(50) NOT NULL,
		description TEXT NULL,
		UNIQUE KEY uq_installment_statuses_name (name)
	)`,
	`CREATE TABLE IF NOT EXISTS coupon_statuses (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(50) NOT NULL,
		description TEXT NULL,
		UNIQUE KEY uq_coupon_statuses_name (name)
	)`,
	`CREATE TABLE IF NOT EXISTS payment_gateways (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(100) NOT NULL,
		description TEXT NULL,
		UNIQUE KEY uq_payment_gateways_name (name)
	)`,
	`CREATE TABLE IF NOT EXISTS student_profiles (
		student_id BIGINT UNSIGNED NOT NULL PRIMARY KEY,
		full_name VARCHAR(255) NULL,
		document_number VARCHAR(20) NULL,
		enrollment_number VARCHAR(20) NULL,
		program VARCHAR(100) NULL,
		UNIQUE KEY uq_student_profiles_document (document_number),
		UNIQUE KEY uq_student_profiles_enrollment (enrollment_number)
	)`,
	`CREATE TABLE IF NOT EXISTS installments (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		student_id BIGINT UNSIGNED NOT NULL,
		status_id BIGINT UNSIGNED NOT NULL,
		period VARCHAR(100) NOT NULL,
		amount DECIMAL(10,2) NOT NULL,
		due_date DATE NOT NULL,
		remaining_balance DECIMAL(10,2) NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		KEY idx_installments_student (student_id),
		CONSTRAINT fk_installments_status
			FOREIGN KEY (status_id) REFERENCES installment_statuses (id)
			ON DELETE RESTRICT
	)`,
	`CREATE TABLE IF NOT EXISTS coupons (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		student_id BIGINT UNSIGNED NOT NULL,
		status_id BIGINT UNSIGNED NOT NULL,
		gateway_id BIGINT UNSIGNED NOT NULL,
		total_amount DECIMAL(10,2) NOT NULL,
		is_partial TINYINT(1) NOT NULL DEFAULT 0,
		generated_at DATETIME NOT NULL,
		due_date DATE NOT NULL,
		gateway_ref VARCHAR(255) NULL,
		document_url VARCHAR(500) NULL,
		idempotency_key CHAR(36) NULL,
		void_reason TEXT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		UNIQUE KEY uq_coupons_idempotency_key (idempotency_key),
		KEY idx_coupons_student (student_id),
		KEY idx_coupons_gateway_ref (gateway_ref),
		CONSTRAINT fk_coupons_status
			FOREIGN KEY (status_id) REFERENCES coupon_statuses (id)
			ON DELETE RESTRICT,
		CONSTRAINT fk_coupons_gateway
			FOREIGN KEY (gateway_id) REFERENCES payment_gateways (id)
			ON DELETE RESTRICT
	)`,
	`CREATE TABLE IF NOT EXISTS coupon_line_items (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		coupon_id BIGINT UNSIGNED NOT NULL,
		installment_id BIGINT UNSIGNED NOT NULL,
		amount DECIMAL(10,2) NOT NULL,
		UNIQUE KEY uq_line_items_coupon_installment (coupon_id, installment_id),
		CONSTRAINT fk_line_items_coupon
			FOREIGN KEY (coupon_id) REFERENCES coupons (id)
			ON DELETE CASCADE,
		CONSTRAINT fk_line_items_installment
			FOREIGN KEY (installment_id) REFERENCES installments (id)
			ON DELETE RESTRICT
	)`,
	`CREATE TABLE IF NOT EXISTS partial_payments (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		installment_id BIGINT UNSIGNED NOT NULL,
		amount DECIMAL(10,2) NOT NULL,
		channel VARCHAR(100) NOT NULL,
		created_at DATETIME NOT NULL,
		KEY idx_partial_payments_installment (installment_id),
		CONSTRAINT fk_partial_payments_installment
			FOREIGN KEY (installment_id) REFERENCES installments (id)
			ON DELETE RESTRICT
	)`,
	`CREATE TABLE IF NOT EXISTS audit_logs (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		actor_id BIGINT UNSIGNED NULL,
		action VARCHAR(64) NOT NULL,
		detail TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		KEY idx_audit_logs_action (action)
	)`,
}

// Migrate applies the schema and seeds the catalog rows the engines match
// by name. Seeding is idempotent; existing rows are left untouched.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return seedCatalogs(ctx, db)
}

func seedCatalogs(ctx context.Context, db *sql.DB) error {
	couponStatuses := []string{
		entity.CouponStatusActive,
		entity.CouponStatusPaid,
		entity.CouponStatusExpired,
		entity.CouponStatusVoided,
	}
	for _, name := range couponStatuses {
		if _, err := db.ExecContext(ctx,
			`INSERT IGNORE INTO coupon_statuses (name) VALUES (?)`, name); err != nil {
			return err
		}
	}

	installmentStatuses := []string{
		entity.InstallmentStatusPending,
		entity.InstallmentStatusOverdue,
		entity.InstallmentStatusPaid,
		entity.InstallmentStatusVoided,
	}
	for _, name := range installmentStatuses {
		if _, err := db.ExecContext(ctx,
			`INSERT IGNORE INTO installment_statuses (name) VALUES (?)`, name); err != nil {
			return err
		}
	}

	gateways := []string{
		entity.PaymentGatewayEasyPay,
		entity.PaymentGatewayMacroClick,
	}
	for _, name := range gateways {
		if _, err := db.ExecContext(ctx,
			`INSERT IGNORE INTO payment_gateways (name) VALUES (?)`, name); err != nil {
			return err
		}
	}

	return nil
}
