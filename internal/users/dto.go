package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/rayz-store/tienda-backend/pkg/db/models"
	"github.com/rayz-store/tienda-backend/pkg/enums"
)

// Identity is what a verified access token tells us about the caller.
type Identity struct {
	Subject string
	Email   string
	Name    string
}

// ProfileDTO is the caller's profile as returned by the session endpoint.
type ProfileDTO struct {
	ID        uuid.UUID      `json:"id"`
	Nombre    *string        `json:"nombre,omitempty"`
	Correo    string         `json:"correo"`
	Rol       enums.UserRole `json:"rol"`
	EmpresaID *uuid.UUID     `json:"empresa_id"`
}

// CompanyDTO is the public shape of a tenant.
type CompanyDTO struct {
	ID          uuid.UUID `json:"id"`
	Nombre      string    `json:"nombre"`
	Descripcion *string   `json:"descripcion,omitempty"`
	CreadoEn    time.Time `json:"creado_en"`
}

// SessionDTO bundles profile and tenant.
type SessionDTO struct {
	Usuario ProfileDTO  `json:"usuario"`
	Empresa *CompanyDTO `json:"empresa"`
}

// FromModel maps a profile row.
func FromModel(u models.Usuario) ProfileDTO {
	return ProfileDTO{
		ID:        u.ID,
		Nombre:    u.Nombre,
		Correo:    u.Correo,
		Rol:       u.Rol,
		EmpresaID: u.EmpresaID,
	}
}

// CompanyFromModel maps a tenant row.
func CompanyFromModel(e models.Empresa) CompanyDTO {
	return CompanyDTO{
		ID:          e.ID,
		Nombre:      e.Nombre,
		Descripcion: e.Descripcion,
		CreadoEn:    e.CreadoEn,
	}
}
