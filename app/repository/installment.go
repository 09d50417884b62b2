package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/campuspay/ms-go-billing/app/entity"
)

var ErrInstallmentNotFound = errors.New("installment not found")

type InstallmentRepository struct {
	db DBTX
}

func NewInstallmentRepository(db DBTX) *InstallmentRepository {
	return &InstallmentRepository{db: db}
}

const installmentColumns = `
	i.id, i.student_id, i.status_id, i.period, i.amount, i.due_date,
	i.remaining_balance, i.created_at, i.updated_at
`

func (r *InstallmentRepository) FindByID(ctx context.Context, id uint64) (*entity.Installment, error) {
	query := `
		SELECT ` + installmentColumns + `, s.name
		FROM installments i
		JOIN installment_statuses s ON s.id = i.status_id
		WHERE i.id = ?
	`
	item, err := scanInstallment(dbtx(ctx, r.db).QueryRowContext(ctx, query, id), true)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return item, err
}

// FindByIDForUpdate locks the installment row for the duration of the
// surrounding transaction. Both balance writers go through this.
func (r *InstallmentRepository) FindByIDForUpdate(ctx context.Context, id uint64) (*entity.Installment, error) {
	query := `
		SELECT ` + installmentColumns + `
		FROM installments i
		WHERE i.id = ?
		FOR UPDATE
	`
	item, err := scanInstallment(dbtx(ctx, r.db).QueryRowContext(ctx, query, id), false)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return item, err
}

// FindByIDsForStudentForUpdate loads and locks the requested installments,
// restricted to the given owner. Callers compare the result count against
// the requested id count to detect foreign or missing ids.
func (r *InstallmentRepository) FindByIDsForStudentForUpdate(ctx context.Context, ids []uint64, studentID uint64) ([]*entity.Installment, error) {
	if len(ids) == 0 {
		return []*entity.Installment{}, nil
	}

	query := `
		SELECT ` + installmentColumns + `
		FROM installments i
		WHERE i.id IN (` + placeholders(len(ids)) + `) AND i.student_id = ?
		ORDER BY i.id
		FOR UPDATE
	`
	args := make([]interface{}, 0, len(ids)+1)
	for _, id := range ids {
		args = append(args, id)
	}
	args = append(args, studentID)

	return r.queryInstallments(ctx, query, false, args...)
}

// FindByIDsForUpdate loads and locks installments regardless of owner.
// Used by the settlement loop, which walks a coupon's line items.
func (r *InstallmentRepository) FindByIDsForUpdate(ctx context.Context, ids []uint64) ([]*entity.Installment, error) {
	if len(ids) == 0 {
		return []*entity.Installment{}, nil
	}

	query := `
		SELECT ` + installmentColumns + `
		FROM installments i
		WHERE i.id IN (` + placeholders(len(ids)) + `)
		ORDER BY i.id
		FOR UPDATE
	`
	args := make([]interface{}, 0, len(ids))
	for _, id := range ids {
		args = append(args, id)
	}

	return r.queryInstallments(ctx, query, false, args...)
}

func (r *InstallmentRepository) ListByStudentAndStatusIDs(ctx context.Context, studentID uint64, statusIDs []uint64) ([]*entity.Installment, error) {
	if len(statusIDs) == 0 {
		return []*entity.Installment{}, nil
	}

	query := `
		SELECT ` + installmentColumns + `, s.name
		FROM installments i
		JOIN installment_statuses s ON s.id = i.status_id
		WHERE i.student_id = ? AND i.status_id IN (` + placeholders(len(statusIDs)) + `)
		ORDER BY i.due_date
	`
	args := make([]interface{}, 0, len(statusIDs)+1)
	args = append(args, studentID)
	for _, id := range statusIDs {
		args = append(args, id)
	}

	return r.queryInstallments(ctx, query, true, args...)
}

func (r *InstallmentRepository) Update(ctx context.Context, installment *entity.Installment) error {
	query := `
		UPDATE installments SET
			status_id = ?,
			remaining_balance = ?,
			updated_at = ?
		WHERE id = ?
	`
	result, err := dbtx(ctx, r.db).ExecContext(ctx, query,
		installment.StatusID,
		nullableDecimalValue(installment.RemainingBalance),
		installment.UpdatedAt,
		installment.ID,
	)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrInstallmentNotFound
	}
	return nil
}

func (r *InstallmentRepository) queryInstallments(ctx context.Context, query string, withStatusName bool, args ...interface{}) ([]*entity.Installment, error) {
	rows, err := dbtx(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	installments := make([]*entity.Installment, 0)
	for rows.Next() {
		item, err := scanInstallment(rows, withStatusName)
		if err != nil {
			return nil, err
		}
		installments = append(installments, item)
	}
	return installments, rows.Err()
}

func scanInstallment(scan rowScanner, withStatusName bool) (*entity.Installment, error) {
	item := &entity.Installment{}
	var remaining sql.NullString
	var dueDate time.Time

	dest := []interface{}{
		&item.ID,
		&item.StudentID,
		&item.StatusID,
		&item.Period,
		&item.Amount,
		&dueDate,
		&remaining,
		&item.CreatedAt,
		&item.UpdatedAt,
	}
	if withStatusName {
		dest = append(dest, &item.StatusName)
	}

	if err := scan.Scan(dest...); err != nil {
		return nil, err
	}

	item.DueDate = dueDate
	balance, err := decimalPtrFromNull(remaining)
	if err != nil {
		return nil, err
	}
	item.RemainingBalance = balance
	return item, nil
}
