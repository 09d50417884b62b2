package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/campuspay/ms-go-billing/app/entity"
)

var (
	ErrCatalogNotFound  = errors.New("catalog row not found")
	ErrCatalogDuplicate = errors.New("catalog row already exists")
	// ErrCatalogInUse is returned when deleting a catalog row that is
	// still referenced by a coupon or installment.
	ErrCatalogInUse = errors.New("catalog row is in use")
)

// CatalogRepository serves the admin-managed lookup tables: coupon
// statuses, installment statuses and payment gateways. The engines match
// these rows by name, so reads return nil (not an error) when a row is
// missing and callers decide how severe that is.
type CatalogRepository struct {
	db DBTX
}

func NewCatalogRepository(db DBTX) *CatalogRepository {
	return &CatalogRepository{db: db}
}

func (r *CatalogRepository) FindCouponStatusByID(ctx context.Context, id uint64) (*entity.CouponStatus, error) {
	query := `SELECT id, name, description FROM coupon_statuses WHERE id = ?`
	return scanCouponStatus(dbtx(ctx, r.db).QueryRowContext(ctx, query, id))
}

func (r *CatalogRepository) FindCouponStatusByName(ctx context.Context, name string) (*entity.CouponStatus, error) {
	query := `SELECT id, name, description FROM coupon_statuses WHERE name = ?`
	return scanCouponStatus(dbtx(ctx, r.db).QueryRowContext(ctx, query, name))
}

func (r *CatalogRepository) ListCouponStatuses(ctx context.Context) ([]*entity.CouponStatus, error) {
	query := `SELECT id, name, description FROM coupon_statuses ORDER BY id`
	rows, err := dbtx(ctx, r.db).QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	statuses := make([]*entity.CouponStatus, 0)
	for rows.Next() {
		item := &entity.CouponStatus{}
		var description sql.NullString
		if err := rows.Scan(&item.ID, &item.Name, &description); err != nil {
			return nil, err
		}
		item.Description = stringPtrFromNull(description)
		statuses = append(statuses, item)
	}
	return statuses, rows.Err()
}

func (r *CatalogRepository) CreateCouponStatus(ctx context.Context, status *entity.CouponStatus) error {
	query := `INSERT INTO coupon_statuses (name, description) VALUES (?, ?)`
	result, err := dbtx(ctx, r.db).ExecContext(ctx, query, status.Name, nullableStringValue(status.Description))
	if err != nil {
		if isDuplicateEntryError(err) {
			return ErrCatalogDuplicate
		}
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	status.ID = uint64(id)
	return nil
}

func (r *CatalogRepository) DeleteCouponStatus(ctx context.Context, id uint64) error {
	return r.deleteCatalogRow(ctx, `DELETE FROM coupon_statuses WHERE id = ?`, id)
}

func (r *CatalogRepository) FindInstallmentStatusByName(ctx context.Context, name string) (*entity.InstallmentStatus, error) {
	query := `SELECT id, name, description FROM installment_statuses WHERE name = ?`
	return scanInstallmentStatus(dbtx(ctx, r.db).QueryRowContext(ctx, query, name))
}

func (r *CatalogRepository) FindInstallmentStatusesByNames(ctx context.Context, names []string) ([]*entity.InstallmentStatus, error) {
	if len(names) == 0 {
		return []*entity.InstallmentStatus{}, nil
	}

	query := `SELECT id, name, description FROM installment_statuses WHERE name IN (` + placeholders(len(names)) + `)`
	args := make([]interface{}, 0, len(names))
	for _, name := range names {
		args = append(args, name)
	}

	rows, err := dbtx(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	statuses := make([]*entity.InstallmentStatus, 0, len(names))
	for rows.Next() {
		item := &entity.InstallmentStatus{}
		var description sql.NullString
		if err := rows.Scan(&item.ID, &item.Name, &description); err != nil {
			return nil, err
		}
		item.Description = stringPtrFromNull(description)
		statuses = append(statuses, item)
	}
	return statuses, rows.Err()
}

func (r *CatalogRepository) FindGatewayByID(ctx context.Context, id uint64) (*entity.PaymentGateway, error) {
	query := `SELECT id, name, description FROM payment_gateways WHERE id = ?`
	return scanGateway(dbtx(ctx, r.db).QueryRowContext(ctx, query, id))
}

func (r *CatalogRepository) ListGateways(ctx context.Context) ([]*entity.PaymentGateway, error) {
	query := `SELECT id, name, description FROM payment_gateways ORDER BY name`
	rows, err := dbtx(ctx, r.db).QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	gateways := make([]*entity.PaymentGateway, 0)
	for rows.Next() {
		item := &entity.PaymentGateway{}
		var description sql.NullString
		if err := rows.Scan(&item.ID, &item.Name, &description); err != nil {
			return nil, err
		}
		item.Description = stringPtrFromNull(description)
		gateways = append(gateways, item)
	}
	return gateways, rows.Err()
}

func (r *CatalogRepository) CreateGateway(ctx context.Context, gateway *entity.PaymentGateway) error {
	query := `INSERT INTO payment_gateways (name, description) VALUES (?, ?)`
	result, err := dbtx(ctx, r.db).ExecContext(ctx, query, gateway.Name, nullableStringValue(gateway.Description))
	if err != nil {
		if isDuplicateEntryError(err) {
			return ErrCatalogDuplicate
		}
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	gateway.ID = uint64(id)
	return nil
}

func (r *CatalogRepository) DeleteGateway(ctx context.Context, id uint64) error {
	return r.deleteCatalogRow(ctx, `DELETE FROM payment_gateways WHERE id = ?`, id)
}

func (r *CatalogRepository) deleteCatalogRow(ctx context.Context, query string, id uint64) error {
	result, err := dbtx(ctx, r.db).ExecContext(ctx, query, id)
	if err != nil {
		if isReferencedRowError(err) {
			return ErrCatalogInUse
		}
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrCatalogNotFound
	}
	return nil
}

func scanCouponStatus(row rowScanner) (*entity.CouponStatus, error) {
	item := &entity.CouponStatus{}
	var description sql.NullString
	if err := row.Scan(&item.ID, &item.Name, &description); err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	item.Description = stringPtrFromNull(description)
	return item, nil
}

func scanInstallmentStatus(row rowScanner) (*entity.InstallmentStatus, error) {
	item := &entity.InstallmentStatus{}
	var description sql.NullString
	if err := row.Scan(&item.ID, &item.Name, &description); err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	item.Description = stringPtrFromNull(description)
	return item, nil
}

func scanGateway(row rowScanner) (*entity.PaymentGateway, error) {
	item := &entity.PaymentGateway{}
	var description sql.NullString
	if err := row.Scan(&item.ID, &item.Name, &description); err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	item.Description = stringPtrFromNull(description)
	return item, nil
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	out := make([]byte, 0, n*2-1)
	for i := 0; i < n; i++ {
		if i > 0 {
			out = append(out, ',')
		}
		out = append(out, '?')
	}
	return string(out)
}
