package users

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rayz-store/tienda-backend/pkg/db/models"
	"github.com/rayz-store/tienda-backend/pkg/enums"
)

// Repository exposes profile persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a users repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create inserts a new profile.
func (r *Repository) Create(ctx context.Context, user *models.Usuario) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// FindByAuthUID retrieves the profile linked to the identity-provider subject.
func (r *Repository) FindByAuthUID(ctx context.Context, authUID string) (*models.Usuario, error) {
	var user models.Usuario
	if err := r.db.WithContext(ctx).Where("auth_uid = ?", authUID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindUnlinkedByEmail retrieves a profile created before its subject was known.
func (r *Repository) FindUnlinkedByEmail(ctx context.Context, email string) (*models.Usuario, error) {
	var user models.Usuario
	err := r.db.WithContext(ctx).
		Where("lower(correo) = ? AND auth_uid IS NULL", strings.ToLower(email)).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// LinkAuthUID stores the subject on an existing profile.
func (r *Repository) LinkAuthUID(ctx context.Context, id uuid.UUID, authUID string) error {
	return r.db.WithContext(ctx).
		Model(&models.Usuario{}).
		Where("id = ?", id).
		UpdateColumn("auth_uid", authUID).Error
}

// AssignCompany sets the tenant and role of a profile.
func (r *Repository) AssignCompany(ctx context.Context, id, empresaID uuid.UUID, role enums.UserRole) error {
	return r.db.WithContext(ctx).
		Model(&models.Usuario{}).
		Where("id = ?", id).
		Updates(map[string]any{"empresa_id": empresaID, "rol": role}).Error
}

// FindCompany loads a tenant row.
func (r *Repository) FindCompany(ctx context.Context, id uuid.UUID) (*models.Empresa, error) {
	var empresa models.Empresa
	if err := r.db.WithContext(ctx).First(&empresa, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &empresa, nil
}
