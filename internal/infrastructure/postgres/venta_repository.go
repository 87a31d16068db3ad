package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/lvidela/facturador-api/internal/domain/entity"
	"github.com/lvidela/facturador-api/internal/domain/repository"
)

var _ repository.VentaRepository = (*VentaRepo)(nil)

// VentaRepo implementación de VentaRepository (usable con pool o tx).
type VentaRepo struct {
	q Querier
}

// NewVentaRepository construye el adaptador. Pasar pool o tx (Querier).
func NewVentaRepository(q Querier) *VentaRepo {
	return &VentaRepo{q: q}
}

// Create persiste la venta y sus líneas.
func (r *VentaRepo) Create(v *entity.Venta) error {
	if v.ID == "" {
		v.ID = uuid.New().String()
	}
	query := `
		INSERT INTO ventas (id, cliente_id, vendedor_id, fecha, costo_envio, comprobante_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(context.Background(), query,
		v.ID, nullIfEmpty(v.Cliente.ID()), nullIfEmpty(v.VendedorID), v.Fecha, v.CostoEnvio,
		nullIfEmpty(v.ComprobanteID), v.CreatedAt, v.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert venta: %w", err)
	}
	for i, item := range v.Items {
		itemQuery := `
			INSERT INTO venta_items (id, venta_id, posicion, descripcion, cantidad, precio_unitario, alicuota_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`
		if _, err := r.q.Exec(context.Background(), itemQuery,
			uuid.New().String(), v.ID, i, item.Descripcion, item.Cantidad, item.PrecioUnitario, item.AlicuotaID,
		); err != nil {
			return fmt.Errorf("insert venta item %d: %w", i, err)
		}
	}
	return nil
}

// GetByID obtiene una venta con sus líneas. El cliente queda como referencia
// por ID; el caller la resuelve si necesita el perfil.
func (r *VentaRepo) GetByID(id string) (*entity.Venta, error) {
	query := `
		SELECT id, COALESCE(cliente_id, ''), COALESCE(vendedor_id, ''), fecha, costo_envio,
		       COALESCE(comprobante_id, ''), created_at, updated_at
		FROM ventas WHERE id = $1`
	var v entity.Venta
	var clienteID string
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&v.ID, &clienteID, &v.VendedorID, &v.Fecha, &v.CostoEnvio,
		&v.ComprobanteID, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get venta: %w", err)
	}
	v.Cliente = entity.RefByID[entity.Cliente](clienteID)

	items, err := r.itemsByVenta(id)
	if err != nil {
		return nil, err
	}
	v.Items = items
	return &v, nil
}

func (r *VentaRepo) itemsByVenta(ventaID string) ([]entity.ItemVenta, error) {
	query := `
		SELECT descripcion, cantidad, precio_unitario, alicuota_id
		FROM venta_items WHERE venta_id = $1 ORDER BY posicion`
	rows, err := r.q.Query(context.Background(), query, ventaID)
	if err != nil {
		return nil, fmt.Errorf("list venta items: %w", err)
	}
	defer rows.Close()
	var items []entity.ItemVenta
	for rows.Next() {
		var it entity.ItemVenta
		if err := rows.Scan(&it.Descripcion, &it.Cantidad, &it.PrecioUnitario, &it.AlicuotaID); err != nil {
			return nil, fmt.Errorf("scan venta item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// SetComprobante asocia el comprobante emitido a la venta.
func (r *VentaRepo) SetComprobante(ventaID, comprobanteID string) error {
	query := `UPDATE ventas SET comprobante_id = $2, updated_at = now() WHERE id = $1 AND comprobante_id IS NULL`
	tag, err := r.q.Exec(context.Background(), query, ventaID, comprobanteID)
	if err != nil {
		return fmt.Errorf("set comprobante en venta: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("la venta %s no existe o ya tiene comprobante", ventaID)
	}
	return nil
}

// List lista ventas ordenadas por fecha descendente, con sus líneas.
func (r *VentaRepo) List(limit, offset int) ([]*entity.Venta, error) {
	query := `
		SELECT id, COALESCE(cliente_id, ''), COALESCE(vendedor_id, ''), fecha, costo_envio,
		       COALESCE(comprobante_id, ''), created_at, updated_at
		FROM ventas ORDER BY fecha DESC LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(context.Background(), query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list ventas: %w", err)
	}
	defer rows.Close()
	var list []*entity.Venta
	for rows.Next() {
		var v entity.Venta
		var clienteID string
		if err := rows.Scan(&v.ID, &clienteID, &v.VendedorID, &v.Fecha, &v.CostoEnvio,
			&v.ComprobanteID, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan venta: %w", err)
		}
		v.Cliente = entity.RefByID[entity.Cliente](clienteID)
		list = append(list, &v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, v := range list {
		items, err := r.itemsByVenta(v.ID)
		if err != nil {
			return nil, err
		}
		v.Items = items
	}
	return list, nil
}
