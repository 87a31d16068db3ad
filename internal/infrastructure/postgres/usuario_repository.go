package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/lvidela/facturador-api/internal/domain"
	"github.com/lvidela/facturador-api/internal/domain/entity"
	"github.com/lvidela/facturador-api/internal/domain/repository"
)

var _ repository.UsuarioRepository = (*UsuarioRepo)(nil)

// UsuarioRepo implementación del puerto UsuarioRepository sobre PostgreSQL.
type UsuarioRepo struct {
	q Querier
}

// NewUsuarioRepository construye el adaptador de persistencia para usuarios.
func NewUsuarioRepository(q Querier) *UsuarioRepo {
	return &UsuarioRepo{q: q}
}

// Create persiste un nuevo usuario.
func (r *UsuarioRepo) Create(u *entity.Usuario) error {
	query := `
		INSERT INTO usuarios (id, email, password_hash, nombre, role, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(context.Background(), query,
		u.ID, u.Email, u.PasswordHash, u.Nombre, u.Role, u.Status, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, uqUsuariosEmail) {
			return domain.ErrEmailAlreadyExists
		}
		return fmt.Errorf("insert usuario: %w", err)
	}
	return nil
}

const usuarioColumns = `id, email, password_hash, nombre, role, status, created_at, updated_at`

func scanUsuario(row pgx.Row) (*entity.Usuario, error) {
	var u entity.Usuario
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Nombre, &u.Role, &u.Status, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByID obtiene un usuario por ID.
func (r *UsuarioRepo) GetByID(id string) (*entity.Usuario, error) {
	query := `SELECT ` + usuarioColumns + ` FROM usuarios WHERE id = $1`
	u, err := scanUsuario(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get usuario: %w", err)
	}
	return u, nil
}

// GetByEmail obtiene un usuario por email.
func (r *UsuarioRepo) GetByEmail(email string) (*entity.Usuario, error) {
	query := `SELECT ` + usuarioColumns + ` FROM usuarios WHERE email = $1`
	u, err := scanUsuario(r.q.QueryRow(context.Background(), query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get usuario por email: %w", err)
	}
	return u, nil
}

// Update actualiza nombre, role y status del usuario.
func (r *UsuarioRepo) Update(u *entity.Usuario) error {
	query := `
		UPDATE usuarios
		SET nombre = $2, role = $3, status = $4, updated_at = $5
		WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query, u.ID, u.Nombre, u.Role, u.Status, u.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update usuario: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}
