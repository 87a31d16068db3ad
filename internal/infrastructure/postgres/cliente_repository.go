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

var _ repository.ClienteRepository = (*ClienteRepo)(nil)

// ClienteRepo implementación de ClienteRepository sobre PostgreSQL.
type ClienteRepo struct {
	q Querier
}

// NewClienteRepository construye el adaptador. Pasar pool o tx (Querier).
func NewClienteRepository(q Querier) *ClienteRepo {
	return &ClienteRepo{q: q}
}

const clienteColumns = `
	id, nombre, condicion_iva, tipo_doc, COALESCE(nro_doc, ''), COALESCE(razon_social, ''),
	COALESCE(email, ''), COALESCE(telefono, ''), created_at, updated_at`

func scanCliente(row pgx.Row) (*entity.Cliente, error) {
	var c entity.Cliente
	var condicion, tipoDoc string
	err := row.Scan(
		&c.ID, &c.Nombre, &condicion, &tipoDoc, &c.Perfil.NroDoc, &c.Perfil.RazonSocial,
		&c.Email, &c.Telefono, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.Perfil.Condicion = entity.CondicionIVA(condicion)
	c.Perfil.TipoDoc = entity.TipoDocumento(tipoDoc)
	return &c, nil
}

// Create persiste un cliente nuevo.
func (r *ClienteRepo) Create(c *entity.Cliente) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	query := `
		INSERT INTO clientes (id, nombre, condicion_iva, tipo_doc, nro_doc, razon_social, email, telefono, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(context.Background(), query,
		c.ID, c.Nombre, string(c.Perfil.Condicion), string(c.Perfil.TipoDoc),
		nullIfEmpty(c.Perfil.NroDoc), nullIfEmpty(c.Perfil.RazonSocial),
		nullIfEmpty(c.Email), nullIfEmpty(c.Telefono), c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, uqClientesDocumento) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert cliente: %w", err)
	}
	return nil
}

// GetByID obtiene un cliente por ID.
func (r *ClienteRepo) GetByID(id string) (*entity.Cliente, error) {
	query := `SELECT ` + clienteColumns + ` FROM clientes WHERE id = $1`
	c, err := scanCliente(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cliente: %w", err)
	}
	return c, nil
}

// GetByDocumento busca un cliente por tipo y número de documento.
func (r *ClienteRepo) GetByDocumento(tipoDoc entity.TipoDocumento, nroDoc string) (*entity.Cliente, error) {
	query := `SELECT ` + clienteColumns + ` FROM clientes WHERE tipo_doc = $1 AND nro_doc = $2`
	c, err := scanCliente(r.q.QueryRow(context.Background(), query, string(tipoDoc), nroDoc))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cliente por documento: %w", err)
	}
	return c, nil
}

// List lista clientes ordenados por nombre.
func (r *ClienteRepo) List(limit, offset int) ([]*entity.Cliente, error) {
	query := `SELECT ` + clienteColumns + ` FROM clientes ORDER BY nombre LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(context.Background(), query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list clientes: %w", err)
	}
	defer rows.Close()
	var list []*entity.Cliente
	for rows.Next() {
		c, err := scanCliente(rows)
		if err != nil {
			return nil, fmt.Errorf("scan cliente: %w", err)
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

// Update actualiza los datos del cliente.
func (r *ClienteRepo) Update(c *entity.Cliente) error {
	query := `
		UPDATE clientes
		SET nombre = $2, condicion_iva = $3, tipo_doc = $4, nro_doc = $5,
		    razon_social = $6, email = $7, telefono = $8, updated_at = $9
		WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query,
		c.ID, c.Nombre, string(c.Perfil.Condicion), string(c.Perfil.TipoDoc),
		nullIfEmpty(c.Perfil.NroDoc), nullIfEmpty(c.Perfil.RazonSocial),
		nullIfEmpty(c.Email), nullIfEmpty(c.Telefono), c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update cliente: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina un cliente.
func (r *ClienteRepo) Delete(id string) error {
	tag, err := r.q.Exec(context.Background(), `DELETE FROM clientes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete cliente: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
