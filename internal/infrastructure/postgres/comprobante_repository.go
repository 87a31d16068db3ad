package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/lvidela/facturador-api/internal/domain"
	"github.com/lvidela/facturador-api/internal/domain/entity"
	"github.com/lvidela/facturador-api/internal/domain/repository"
)

var _ repository.ComprobanteRepository = (*ComprobanteRepo)(nil)

// ComprobanteRepo implementación de ComprobanteRepository (usable con pool o tx).
type ComprobanteRepo struct {
	q Querier
}

// NewComprobanteRepository construye el adaptador. Pasar pool o tx (Querier).
func NewComprobanteRepository(q Querier) *ComprobanteRepo {
	return &ComprobanteRepo{q: q}
}

// Create persiste la cabecera del comprobante.
func (r *ComprobanteRepo) Create(c *entity.Comprobante) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	query := `
		INSERT INTO comprobantes (id, kind, cbte_tipo, punto_venta, numero, concepto, fecha_emision,
		       receptor_condicion, receptor_tipo_doc, receptor_nro_doc, receptor_razon_social,
		       neto, iva, exento, no_gravado, otros_tributos, total,
		       moneda, cotizacion, estado, cae, cae_vencimiento, error_detalle,
		       venta_id, origen_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17,
		        $18, $19, $20, $21, $22, $23, $24, $25, $26, $27)`
	_, err := r.q.Exec(context.Background(), query,
		c.ID, c.Kind, c.CbteTipo, c.PuntoVenta, c.Numero, c.Concepto, c.FechaEmision,
		string(c.Receptor.Condicion), string(c.Receptor.TipoDoc), nullIfEmpty(c.Receptor.NroDoc), nullIfEmpty(c.Receptor.RazonSocial),
		c.Desglose.Neto, c.Desglose.IVA, c.Desglose.Exento, c.Desglose.NoGravado, c.Desglose.OtrosTributos, c.Desglose.Total,
		c.Moneda, c.Cotizacion, c.Estado, nullIfEmpty(c.CAE), c.CAEVencimiento, nullIfEmpty(c.ErrorDetalle),
		nullIfEmpty(c.VentaID), nullIfEmpty(c.OrigenID), c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, uqComprobantesVenta) {
			return fmt.Errorf("%w: la venta ya tiene comprobante", domain.ErrDuplicate)
		}
		return fmt.Errorf("insert comprobante: %w", err)
	}
	return nil
}

// CreateItem persiste una línea del comprobante.
func (r *ComprobanteRepo) CreateItem(item *entity.ItemComprobante) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	query := `
		INSERT INTO comprobante_items (id, comprobante_id, descripcion, cantidad, precio_unitario, alicuota_id, base_imponible, importe_iva)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(context.Background(), query,
		item.ID, item.ComprobanteID, item.Descripcion, item.Cantidad, item.PrecioUnitario,
		item.AlicuotaID, item.BaseImponible, item.ImporteIVA,
	)
	if err != nil {
		return fmt.Errorf("insert comprobante item: %w", err)
	}
	return nil
}

// UpdateEstado actualiza los campos del ciclo de autorización.
func (r *ComprobanteRepo) UpdateEstado(c *entity.Comprobante) error {
	query := `
		UPDATE comprobantes
		SET estado          = $2,
		    numero          = $3,
		    cae             = $4,
		    cae_vencimiento = $5,
		    error_detalle   = $6,
		    updated_at      = $7
		WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query,
		c.ID, c.Estado, c.Numero, nullIfEmpty(c.CAE), c.CAEVencimiento, nullIfEmpty(c.ErrorDetalle), c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update estado comprobante: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("comprobante %s no existe", c.ID)
	}
	return nil
}

const comprobanteColumns = `
	id, kind, cbte_tipo, punto_venta, numero, concepto, fecha_emision,
	receptor_condicion, receptor_tipo_doc, COALESCE(receptor_nro_doc, ''), COALESCE(receptor_razon_social, ''),
	neto, iva, exento, no_gravado, otros_tributos, total,
	moneda, cotizacion, estado, COALESCE(cae, ''), cae_vencimiento, COALESCE(error_detalle, ''),
	COALESCE(venta_id, ''), COALESCE(origen_id, ''), created_at, updated_at`

func scanComprobante(row pgx.Row) (*entity.Comprobante, error) {
	var c entity.Comprobante
	var condicion, tipoDoc string
	err := row.Scan(
		&c.ID, &c.Kind, &c.CbteTipo, &c.PuntoVenta, &c.Numero, &c.Concepto, &c.FechaEmision,
		&condicion, &tipoDoc, &c.Receptor.NroDoc, &c.Receptor.RazonSocial,
		&c.Desglose.Neto, &c.Desglose.IVA, &c.Desglose.Exento, &c.Desglose.NoGravado, &c.Desglose.OtrosTributos, &c.Desglose.Total,
		&c.Moneda, &c.Cotizacion, &c.Estado, &c.CAE, &c.CAEVencimiento, &c.ErrorDetalle,
		&c.VentaID, &c.OrigenID, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.Receptor.Condicion = entity.CondicionIVA(condicion)
	c.Receptor.TipoDoc = entity.TipoDocumento(tipoDoc)
	return &c, nil
}

// GetByID obtiene un comprobante por ID (sin sus líneas).
func (r *ComprobanteRepo) GetByID(id string) (*entity.Comprobante, error) {
	query := `SELECT ` + comprobanteColumns + ` FROM comprobantes WHERE id = $1`
	c, err := scanComprobante(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get comprobante: %w", err)
	}
	return c, nil
}

// GetItemsByComprobanteID obtiene todas las líneas de un comprobante.
func (r *ComprobanteRepo) GetItemsByComprobanteID(comprobanteID string) ([]*entity.ItemComprobante, error) {
	query := `
		SELECT id, comprobante_id, descripcion, cantidad, precio_unitario, alicuota_id, base_imponible, importe_iva
		FROM comprobante_items WHERE comprobante_id = $1 ORDER BY id`
	rows, err := r.q.Query(context.Background(), query, comprobanteID)
	if err != nil {
		return nil, fmt.Errorf("list comprobante items: %w", err)
	}
	defer rows.Close()
	var list []*entity.ItemComprobante
	for rows.Next() {
		var it entity.ItemComprobante
		if err := rows.Scan(&it.ID, &it.ComprobanteID, &it.Descripcion, &it.Cantidad, &it.PrecioUnitario,
			&it.AlicuotaID, &it.BaseImponible, &it.ImporteIVA); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		list = append(list, &it)
	}
	return list, rows.Err()
}

// List lista comprobantes ordenados por fecha de creación descendente.
func (r *ComprobanteRepo) List(limit, offset int) ([]*entity.Comprobante, error) {
	query := `SELECT ` + comprobanteColumns + ` FROM comprobantes ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(context.Background(), query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list comprobantes: %w", err)
	}
	defer rows.Close()
	var list []*entity.Comprobante
	for rows.Next() {
		c, err := scanComprobante(rows)
		if err != nil {
			return nil, fmt.Errorf("scan comprobante: %w", err)
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

// ListByOrigen devuelve las notas emitidas contra un comprobante de origen.
func (r *ComprobanteRepo) ListByOrigen(origenID string) ([]*entity.Comprobante, error) {
	query := `SELECT ` + comprobanteColumns + ` FROM comprobantes WHERE origen_id = $1 ORDER BY created_at`
	rows, err := r.q.Query(context.Background(), query, origenID)
	if err != nil {
		return nil, fmt.Errorf("list notas por origen: %w", err)
	}
	defer rows.Close()
	var list []*entity.Comprobante
	for rows.Next() {
		c, err := scanComprobante(rows)
		if err != nil {
			return nil, fmt.Errorf("scan nota: %w", err)
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
