package repository

import (
	"context"
	"errors"

	"github.com/campuspay/ms-go-billing/app/entity"
)

// ErrLineItemDuplicate signals the (coupon, installment) uniqueness
// constraint: an installment cannot appear twice on the same coupon.
var ErrLineItemDuplicate = errors.New("line item already exists")

type LineItemRepository struct {
	db DBTX
}

func NewLineItemRepository(db DBTX) *LineItemRepository {
	return &LineItemRepository{db: db}
}

func (r *LineItemRepository) Create(ctx context.Context, item *entity.CouponLineItem) error {
	query := `
		INSERT INTO coupon_line_items (coupon_id, installment_id, amount)
		VALUES (?, ?, ?)
	`
	result, err := dbtx(ctx, r.db).ExecContext(ctx, query,
		item.CouponID,
		item.InstallmentID,
		item.Amount.StringFixed(2),
	)
	if err != nil {
		if isDuplicateEntryError(err) {
			return ErrLineItemDuplicate
		}
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	item.ID = uint64(id)
	return nil
}

func (r *LineItemRepository) ListByCoupon(ctx context.Context, couponID uint64) ([]*entity.CouponLineItem, error) {
	query := `
		SELECT id, coupon_id, installment_id, amount
		FROM coupon_line_items
		WHERE coupon_id = ?
		ORDER BY id
	`
	rows, err := dbtx(ctx, r.db).QueryContext(ctx, query, couponID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]*entity.CouponLineItem, 0)
	for rows.Next() {
		item := &entity.CouponLineItem{}
		if err := rows.Scan(&item.ID, &item.CouponID, &item.InstallmentID, &item.Amount); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
