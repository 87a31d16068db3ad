package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lvidela/facturador-api/internal/application/billing"
	"github.com/lvidela/facturador-api/internal/domain/repository"
)

var _ billing.BillingTxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// RunBilling inicia una transacción con los repos de ventas y comprobantes.
// Si fn retorna error se hace Rollback; si no, Commit.
func (r *TxRunner) RunBilling(ctx context.Context, fn func(
	ventaRepo repository.VentaRepository,
	comprobanteRepo repository.ComprobanteRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	ventaRepo := NewVentaRepository(tx)
	comprobanteRepo := NewComprobanteRepository(tx)

	if err := fn(ventaRepo, comprobanteRepo); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
