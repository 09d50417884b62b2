package repository

import (
	"context"
	"database/sql"
)

type txContextKey struct{}

// TxManager runs multi-repository mutations inside one database
// transaction. The open *sql.Tx travels in the context; repositories pick
// it up via their dbtx helper, so the same repository values work inside
// and outside a transaction.
type TxManager struct {
	db *sql.DB
}

func NewTxManager(db *sql.DB) *TxManager {
	return &TxManager{db: db}
}

func (m *TxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if TxFromContext(ctx) != nil {
		return fn(ctx)
	}

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(context.WithValue(ctx, txContextKey{}, tx)); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func TxFromContext(ctx context.Context) *sql.Tx {
	tx, _ := ctx.Value(txContextKey{}).(*sql.Tx)
	return tx
}

// dbtx resolves the executor for this call: the transaction carried by the
// context when present, the repository's own handle otherwise.
func dbtx(ctx context.Context, db DBTX) DBTX {
	if tx := TxFromContext(ctx); tx != nil {
		return tx
	}
	return db
}
