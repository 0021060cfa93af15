package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rayz-store/tienda-backend/pkg/enums"
)

// Usuario is the application profile linked to an identity-provider subject.
type Usuario struct {
	ID        uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	AuthUID   *string        `gorm:"column:auth_uid"`
	Nombre    *string        `gorm:"column:nombre"`
	Correo    string         `gorm:"column:correo;not null"`
	Rol       enums.UserRole `gorm:"column:rol;not null;default:user"`
	EmpresaID *uuid.UUID     `gorm:"column:empresa_id;type:uuid"`
	CreadoEn  time.Time      `gorm:"column:creado_en;autoCreateTime"`
}

func (Usuario) TableName() string { return "usuario" }

func (u *Usuario) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
