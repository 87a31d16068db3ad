package postgres

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// Constraints únicos del esquema que los repos traducen a errores de dominio.
const (
	uqClientesDocumento = "clientes_tipo_doc_nro_doc_key" // un cliente por documento
	uqUsuariosEmail     = "usuarios_email_key"            // un usuario por email
	uqComprobantesVenta = "comprobantes_venta_id_key"     // un comprobante por venta
)

// isUniqueViolation verifica si un error es una violación de constraint único
// (23505). Si se pasan nombres de constraint, solo matchea esos.
func isUniqueViolation(err error, constraints ...string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return strings.Contains(err.Error(), "23505")
	}
	if pgErr.Code != "23505" { // unique_violation
		return false
	}
	if len(constraints) == 0 {
		return true
	}
	for _, name := range constraints {
		if pgErr.ConstraintName == name {
			return true
		}
	}
	return false
}
