package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductoVariante is a per-size stock row of a product.
type ProductoVariante struct {
	ID            uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	EmpresaID     uuid.UUID `gorm:"column:empresa_id;type:uuid;not null"`
	ProductoID    uuid.UUID `gorm:"column:producto_id;type:uuid;not null"`
	Talle         string    `gorm:"column:talle;not null"`
	Stock         int       `gorm:"column:stock;not null;default:0"`
	Activo        bool      `gorm:"column:activo;not null"`
	CreadoEn      time.Time `gorm:"column:creado_en;autoCreateTime"`
	ActualizadoEn time.Time `gorm:"column:actualizado_en;autoUpdateTime"`
}

func (ProductoVariante) TableName() string { return "producto_variante" }

func (v *ProductoVariante) BeforeCreate(*gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}
