package repository

import (
	"context"

	"github.com/campuspay/ms-go-billing/app/entity"
)

type PartialPaymentRepository struct {
	db DBTX
}

func NewPartialPaymentRepository(db DBTX) *PartialPaymentRepository {
	return &PartialPaymentRepository{db: db}
}

func (r *PartialPaymentRepository) Create(ctx context.Context, payment *entity.PartialPayment) error {
	query := `
		INSERT INTO partial_payments (installment_id, amount, channel, created_at)
		VALUES (?, ?, ?, ?)
	`
	result, err := dbtx(ctx, r.db).ExecContext(ctx, query,
		payment.InstallmentID,
		payment.Amount.StringFixed(2),
		payment.Channel,
		payment.CreatedAt,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	payment.ID = uint64(id)
	return nil
}

func (r *PartialPaymentRepository) ListByInstallment(ctx context.Context, installmentID uint64) ([]*entity.PartialPayment, error) {
	query := `
		SELECT id, installment_id, amount, channel, created_at
		FROM partial_payments
		WHERE installment_id = ?
		ORDER BY created_at
	`
	rows, err := dbtx(ctx, r.db).QueryContext(ctx, query, installmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	payments := make([]*entity.PartialPayment, 0)
	for rows.Next() {
		item := &entity.PartialPayment{}
		if err := rows.Scan(&item.ID, &item.InstallmentID, &item.Amount, &item.Channel, &item.CreatedAt); err != nil {
			return nil, err
		}
		payments = append(payments, item)
	}
	return payments, rows.Err()
}
