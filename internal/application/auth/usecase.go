package auth

import (
	"time"

	"github.com/google/uuid"
	"github.com/lvidela/facturador-api/internal/application/dto"
	"github.com/lvidela/facturador-api/internal/domain"
	"github.com/lvidela/facturador-api/internal/domain/entity"
	"github.com/lvidela/facturador-api/internal/domain/repository"
	"github.com/lvidela/facturador-api/pkg/jwt"
	"golang.org/x/crypto/bcrypt"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// AuthUseCase casos de uso de autenticación: registro y login.
type AuthUseCase struct {
	usuarioRepo repository.UsuarioRepository
	jwtCfg      JWTConfig
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(usuarioRepo repository.UsuarioRepository, jwtCfg JWTConfig) *AuthUseCase {
	return &AuthUseCase{usuarioRepo: usuarioRepo, jwtCfg: jwtCfg}
}

// RegisterUser crea un usuario: hashea password con bcrypt y persiste.
// Devuelve ErrEmailAlreadyExists si el email ya existe.
func (uc *AuthUseCase) RegisterUser(in dto.RegisterRequest) (*dto.UserResponse, error) {
	existing, _ := uc.usuarioRepo.GetByEmail(in.Email)
	if existing != nil {
		return nil, domain.ErrEmailAlreadyExists
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	nombre := in.Nombre
	if nombre == "" {
		nombre = in.Email
	}
	role := in.Role
	if role == "" {
		role = entity.RoleVendedor
	}
	usuario := &entity.Usuario{
		ID:           uuid.New().String(),
		Email:        in.Email,
		PasswordHash: string(hash),
		Nombre:       nombre,
		Role:         role,
		Status:       "active",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.usuarioRepo.Create(usuario); err != nil {
		return nil, err
	}
	return toUserResponse(usuario), nil
}

// Login verifica email/password, genera JWT y retorna token + usuario.
func (uc *AuthUseCase) Login(in dto.LoginRequest) (*dto.LoginResponse, error) {
	usuario, err := uc.usuarioRepo.GetByEmail(in.Email)
	if err != nil {
		return nil, err
	}
	if usuario == nil {
		return nil, domain.ErrUserNotFound
	}
	if err := bcrypt.CompareHashAndPassword([]byte(usuario.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	if usuario.Status != "active" {
		return nil, domain.ErrForbidden
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, usuario.ID, usuario.Role, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		Token: token,
		User:  *toUserResponse(usuario),
	}, nil
}

func toUserResponse(u *entity.Usuario) *dto.UserResponse {
	if u == nil {
		return nil
	}
	return &dto.UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Nombre:    u.Nombre,
		Role:      u.Role,
		Status:    u.Status,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
