package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/campuspay/ms-go-billing/app/entity"
)

var (
	ErrCouponNotFound      = errors.New("coupon not found")
	ErrCouponAlreadyExists = errors.New("coupon already exists")
)

type CouponRepository struct {
	db DBTX
}

func NewCouponRepository(db DBTX) *CouponRepository {
	return &CouponRepository{db: db}
}

const couponColumns = `
	c.id, c.student_id, c.status_id, c.gateway_id, c.total_amount,
	c.is_partial, c.generated_at, c.due_date, c.gateway_ref, c.document_url,
	c.idempotency_key, c.void_reason, c.created_at, c.updated_at
`

const couponJoinedColumns = couponColumns + `, cs.name, pg.name`

const couponJoins = `
	JOIN coupon_statuses cs ON cs.id = c.status_id
	JOIN payment_gateways pg ON pg.id = c.gateway_id
`

func (r *CouponRepository) Create(ctx context.Context, coupon *entity.Coupon) error {
	query := `
		INSERT INTO coupons (
			student_id, status_id, gateway_id, total_amount, is_partial,
			generated_at, due_date, gateway_ref, document_url,
			idempotency_key, void_reason, created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	result, err := dbtx(ctx, r.db).ExecContext(ctx, query,
		coupon.StudentID,
		coupon.StatusID,
		coupon.GatewayID,
		coupon.TotalAmount.StringFixed(2),
		coupon.IsPartial,
		coupon.GeneratedAt,
		coupon.DueDate,
		nullableStringValue(coupon.GatewayRef),
		nullableStringValue(coupon.DocumentURL),
		nullableStringValue(coupon.IdempotencyKey),
		nullableStringValue(coupon.VoidReason),
		coupon.CreatedAt,
		coupon.UpdatedAt,
	)
	if err != nil {
		if isDuplicateEntryError(err) {
			return ErrCouponAlreadyExists
		}
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	coupon.ID = uint64(id)
	return nil
}

func (r *CouponRepository) Update(ctx context.Context, coupon *entity.Coupon) error {
	query := `
		UPDATE coupons SET
			status_id = ?,
			gateway_ref = ?,
			document_url = ?,
			void_reason = ?,
			updated_at = ?
		WHERE id = ?
	`
	result, err := dbtx(ctx, r.db).ExecContext(ctx, query,
		coupon.StatusID,
		nullableStringValue(coupon.GatewayRef),
		nullableStringValue(coupon.DocumentURL),
		nullableStringValue(coupon.VoidReason),
		coupon.UpdatedAt,
		coupon.ID,
	)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrCouponNotFound
	}
	return nil
}

func (r *CouponRepository) FindByID(ctx context.Context, id uint64) (*entity.Coupon, error) {
	query := `
		SELECT ` + couponJoinedColumns + `
		FROM coupons c ` + couponJoins + `
		WHERE c.id = ?
	`
	item, err := scanCoupon(dbtx(ctx, r.db).QueryRowContext(ctx, query, id), true)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return item, err
}

// FindByIDForUpdate locks the coupon row for the surrounding transaction.
func (r *CouponRepository) FindByIDForUpdate(ctx context.Context, id uint64) (*entity.Coupon, error) {
	query := `
		SELECT ` + couponColumns + `
		FROM coupons c
		WHERE c.id = ?
		FOR UPDATE
	`
	item, err := scanCoupon(dbtx(ctx, r.db).QueryRowContext(ctx, query, id), false)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return item, err
}

func (r *CouponRepository) FindByIdempotencyKey(ctx context.Context, key string) (*entity.Coupon, error) {
	query := `
		SELECT ` + couponJoinedColumns + `
		FROM coupons c ` + couponJoins + `
		WHERE c.idempotency_key = ?
		LIMIT 1
	`
	item, err := scanCoupon(dbtx(ctx, r.db).QueryRowContext(ctx, query, key), true)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return item, err
}

// FindActiveByInstallmentIDs returns a coupon in the given status covering
// any of the installments, system-wide. At most one such coupon can exist
// per installment; the first match is enough to report a booking conflict.
func (r *CouponRepository) FindActiveByInstallmentIDs(ctx context.Context, installmentIDs []uint64, activeStatusID uint64) (*entity.Coupon, error) {
	if len(installmentIDs) == 0 {
		return nil, nil
	}

	query := `
		SELECT DISTINCT ` + couponJoinedColumns + `
		FROM coupons c ` + couponJoins + `
		JOIN coupon_line_items li ON li.coupon_id = c.id
		WHERE c.status_id = ? AND li.installment_id IN (` + placeholders(len(installmentIDs)) + `)
		LIMIT 1
	`
	args := make([]interface{}, 0, len(installmentIDs)+1)
	args = append(args, activeStatusID)
	for _, id := range installmentIDs {
		args = append(args, id)
	}

	item, err := scanCoupon(dbtx(ctx, r.db).QueryRowContext(ctx, query, args...), true)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return item, err
}

func (r *CouponRepository) ListByStudent(ctx context.Context, studentID uint64) ([]*entity.Coupon, error) {
	query := `
		SELECT ` + couponJoinedColumns + `
		FROM coupons c ` + couponJoins + `
		WHERE c.student_id = ?
		ORDER BY c.generated_at DESC
	`
	return r.queryCoupons(ctx, query, studentID)
}

func (r *CouponRepository) ListAll(ctx context.Context) ([]*entity.Coupon, error) {
	query := `
		SELECT ` + couponJoinedColumns + `
		FROM coupons c ` + couponJoins + `
		ORDER BY c.generated_at DESC
	`
	return r.queryCoupons(ctx, query)
}

// ListActiveDueBefore feeds the expiry job: coupons still in the given
// status whose due date has passed.
func (r *CouponRepository) ListActiveDueBefore(ctx context.Context, activeStatusID uint64, before time.Time, limit int32) ([]*entity.Coupon, error) {
	query := `
		SELECT ` + couponColumns + `
		FROM coupons c
		WHERE c.status_id = ? AND c.due_date < ?
		ORDER BY c.due_date
		LIMIT ?
	`
	rows, err := dbtx(ctx, r.db).QueryContext(ctx, query, activeStatusID, before, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	coupons := make([]*entity.Coupon, 0)
	for rows.Next() {
		item, err := scanCoupon(rows, false)
		if err != nil {
			return nil, err
		}
		coupons = append(coupons, item)
	}
	return coupons, rows.Err()
}

func (r *CouponRepository) CountByStatusName(ctx context.Context) (map[string]int64, error) {
	query := `
		SELECT cs.name, COUNT(c.id)
		FROM coupons c
		JOIN coupon_statuses cs ON cs.id = c.status_id
		GROUP BY cs.name
	`
	rows, err := dbtx(ctx, r.db).QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var name string
		var count int64
		if err := rows.Scan(&name, &count); err != nil {
			return nil, err
		}
		counts[name] = count
	}
	return counts, rows.Err()
}

func (r *CouponRepository) queryCoupons(ctx context.Context, query string, args ...interface{}) ([]*entity.Coupon, error) {
	rows, err := dbtx(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	coupons := make([]*entity.Coupon, 0)
	for rows.Next() {
		item, err := scanCoupon(rows, true)
		if err != nil {
			return nil, err
		}
		coupons = append(coupons, item)
	}
	return coupons, rows.Err()
}

func scanCoupon(scan rowScanner, withNames bool) (*entity.Coupon, error) {
	item := &entity.Coupon{}
	var gatewayRef sql.NullString
	var documentURL sql.NullString
	var idempotencyKey sql.NullString
	var voidReason sql.NullString

	dest := []interface{}{
		&item.ID,
		&item.StudentID,
		&item.StatusID,
		&item.GatewayID,
		&item.TotalAmount,
		&item.IsPartial,
		&item.GeneratedAt,
		&item.DueDate,
		&gatewayRef,
		&documentURL,
		&idempotencyKey,
		&voidReason,
		&item.CreatedAt,
		&item.UpdatedAt,
	}
	if withNames {
		dest = append(dest, &item.StatusName, &item.GatewayName)
	}

	if err := scan.Scan(dest...); err != nil {
		return nil, err
	}

	item.GatewayRef = stringPtrFromNull(gatewayRef)
	item.DocumentURL = stringPtrFromNull(documentURL)
	item.IdempotencyKey = stringPtrFromNull(idempotencyKey)
	item.VoidReason = stringPtrFromNull(voidReason)
	return item, nil
}
