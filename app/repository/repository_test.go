package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	mysqlDriver "github.com/go-sql-driver/mysql"
	"github.com/campuspay/ms-go-billing/app/entity"
	"github.com/shopspring/decimal"
)

func newMockDB(t *testing.T) (DBTX, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock setup failed: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
	})
	return db, mock
}

func TestCouponCreateMapsDuplicateKey(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCouponRepository(db)

	mock.ExpectExec("INSERT INTO coupons").
		WillReturnError(&mysqlDriver.MySQLError{Number: 1062, Message: "duplicate entry"})

	key := "a2f7c1e0-0000-4000-8000-000000000001"
	err := repo.Create(context.Background(), &entity.Coupon{
		StudentID:      10,
		StatusID:       1,
		GatewayID:      1,
		TotalAmount:    decimal.RequireFromString("300.00"),
		IdempotencyKey: &key,
	})
	if !errors.Is(err, ErrCouponAlreadyExists) {
		t.Fatalf("expected ErrCouponAlreadyExists, got %v", err)
	}
}

func TestCouponCreateAssignsID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCouponRepository(db)

	mock.ExpectExec("INSERT INTO coupons").
		WillReturnResult(sqlmock.NewResult(12, 1))

	coupon := &entity.Coupon{
		StudentID:   10,
		StatusID:    1,
		GatewayID:   1,
		TotalAmount: decimal.RequireFromString("300.00"),
	}
	if err := repo.Create(context.Background(), coupon); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if coupon.ID != 12 {
		t.Fatalf("expected assigned id 12, got %d", coupon.ID)
	}
}

func couponRowColumns() []string {
	return []string{
		"id", "student_id", "status_id", "gateway_id", "total_amount",
		"is_partial", "generated_at", "due_date", "gateway_ref", "document_url",
		"idempotency_key", "void_reason", "created_at", "updated_at",
		"status_name", "gateway_name",
	}
}

func TestCouponFindByIDJoinsNames(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCouponRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(couponRowColumns()).
		AddRow(12, 10, 1, 1, "300.00", false, now, now, "001-0000000012", "/coupons/12/download", nil, nil, now, now, "Active", "Easy Pay")
	mock.ExpectQuery("SELECT (.+) FROM coupons c").
		WithArgs(12).
		WillReturnRows(rows)

	coupon, err := repo.FindByID(context.Background(), 12)
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if coupon.StatusName != "Active" || coupon.GatewayName != "Easy Pay" {
		t.Fatalf("expected joined names, got %q / %q", coupon.StatusName, coupon.GatewayName)
	}
	if coupon.IdempotencyKey != nil {
		t.Fatal("expected nil idempotency key")
	}
	if got := coupon.TotalAmount.StringFixed(2); got != "300.00" {
		t.Fatalf("unexpected total %s", got)
	}
}

func TestCouponFindByIDReturnsNilWhenMissing(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCouponRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM coupons c").
		WithArgs(99).
		WillReturnRows(sqlmock.NewRows(couponRowColumns()))

	coupon, err := repo.FindByID(context.Background(), 99)
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if coupon != nil {
		t.Fatalf("expected nil coupon, got %+v", coupon)
	}
}

func TestInstallmentUpdateMissingRow(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewInstallmentRepository(db)

	mock.ExpectExec("UPDATE installments SET").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &entity.Installment{ID: 99, StatusID: 1})
	if !errors.Is(err, ErrInstallmentNotFound) {
		t.Fatalf("expected ErrInstallmentNotFound, got %v", err)
	}
}

func TestInstallmentScanNullableBalance(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewInstallmentRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "student_id", "status_id", "period", "amount", "due_date",
		"remaining_balance", "created_at", "updated_at", "status_name",
	}).AddRow(3, 10, 1, "2026-03", "150.00", now, "90.00", now, now, "Pending")
	mock.ExpectQuery("SELECT (.+) FROM installments i").
		WithArgs(3).
		WillReturnRows(rows)

	item, err := repo.FindByID(context.Background(), 3)
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if item.RemainingBalance == nil || item.RemainingBalance.StringFixed(2) != "90.00" {
		t.Fatalf("unexpected balance %v", item.RemainingBalance)
	}
	if got := item.Outstanding().StringFixed(2); got != "90.00" {
		t.Fatalf("outstanding must follow the tracked balance, got %s", got)
	}
}

func TestCatalogDeleteMapsReferencedRow(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCatalogRepository(db)

	mock.ExpectExec("DELETE FROM payment_gateways").
		WithArgs(1).
		WillReturnError(&mysqlDriver.MySQLError{Number: 1451, Message: "row is referenced"})

	err := repo.DeleteGateway(context.Background(), 1)
	if !errors.Is(err, ErrCatalogInUse) {
		t.Fatalf("expected ErrCatalogInUse, got %v", err)
	}
}

func TestCatalogDeleteMapsMissingRow(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCatalogRepository(db)

	mock.ExpectExec("DELETE FROM coupon_statuses").
		WithArgs(99).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.DeleteCouponStatus(context.Background(), 99)
	if !errors.Is(err, ErrCatalogNotFound) {
		t.Fatalf("expected ErrCatalogNotFound, got %v", err)
	}
}

func TestCatalogCreateMapsDuplicateName(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCatalogRepository(db)

	mock.ExpectExec("INSERT INTO payment_gateways").
		WillReturnError(&mysqlDriver.MySQLError{Number: 1062, Message: "duplicate entry"})

	err := repo.CreateGateway(context.Background(), &entity.PaymentGateway{Name: "Easy Pay"})
	if !errors.Is(err, ErrCatalogDuplicate) {
		t.Fatalf("expected ErrCatalogDuplicate, got %v", err)
	}
}

func TestLineItemCreateMapsDuplicate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewLineItemRepository(db)

	mock.ExpectExec("INSERT INTO coupon_line_items").
		WillReturnError(&mysqlDriver.MySQLError{Number: 1062, Message: "duplicate entry"})

	err := repo.Create(context.Background(), &entity.CouponLineItem{
		CouponID:      1,
		InstallmentID: 2,
		Amount:        decimal.RequireFromString("150.00"),
	})
	if !errors.Is(err, ErrLineItemDuplicate) {
		t.Fatalf("expected ErrLineItemDuplicate, got %v", err)
	}
}

func TestTxManagerCommitsOnSuccess(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock setup failed: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE coupons SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	manager := NewTxManager(db)
	repo := NewCouponRepository(db)

	err = manager.WithinTx(context.Background(), func(ctx context.Context) error {
		return repo.Update(ctx, &entity.Coupon{ID: 1, StatusID: 2, TotalAmount: decimal.Zero})
	})
	if err != nil {
		t.Fatalf("transaction failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTxManagerRollsBackOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock setup failed: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectRollback()

	manager := NewTxManager(db)
	wantErr := errors.New("boom")

	err = manager.WithinTx(context.Background(), func(ctx context.Context) error {
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTxManagerReusesOpenTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock setup failed: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectCommit()

	manager := NewTxManager(db)
	calls := 0

	err = manager.WithinTx(context.Background(), func(ctx context.Context) error {
		return manager.WithinTx(ctx, func(ctx context.Context) error {
			calls++
			if TxFromContext(ctx) == nil {
				t.Fatal("expected transaction on context")
			}
			return nil
		})
	})
	if err != nil {
		t.Fatalf("nested transaction failed: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected inner fn to run once, ran %d", calls)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSeedCatalogsInsertsAllThreeCatalogs(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock setup failed: %v", err)
	}
	defer db.Close()

	for _, name := range []string{
		entity.CouponStatusActive, entity.CouponStatusPaid,
		entity.CouponStatusExpired, entity.CouponStatusVoided,
	} {
		mock.ExpectExec("INSERT IGNORE INTO coupon_statuses").
			WithArgs(name).
			WillReturnResult(sqlmock.NewResult(1, 1))
	}
	for _, name := range []string{
		entity.InstallmentStatusPending, entity.InstallmentStatusOverdue,
		entity.InstallmentStatusPaid, entity.InstallmentStatusVoided,
	} {
		mock.ExpectExec("INSERT IGNORE INTO installment_statuses").
			WithArgs(name).
			WillReturnResult(sqlmock.NewResult(1, 1))
	}
	for _, name := range []string{entity.PaymentGatewayEasyPay, entity.PaymentGatewayMacroClick} {
		mock.ExpectExec("INSERT IGNORE INTO payment_gateways").
			WithArgs(name).
			WillReturnResult(sqlmock.NewResult(1, 1))
	}

	if err := seedCatalogs(context.Background(), db); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
