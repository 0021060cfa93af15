package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/rayz-store/tienda-backend/pkg/enums"
)

// Producto is a tenant-owned catalogue entry. Stock is the legacy counter and
// is informational once UsaVariantes is set.
type Producto struct {
	ID                 uuid.UUID              `gorm:"column:id;type:uuid;primaryKey"`
	EmpresaID          uuid.UUID              `gorm:"column:empresa_id;type:uuid;not null"`
	CategoriaID        *uuid.UUID             `gorm:"column:categoria_id;type:uuid"`
	Nombre             string                 `gorm:"column:nombre;not null"`
	Descripcion        *string                `gorm:"column:descripcion"`
	Precio             decimal.Decimal        `gorm:"column:precio;type:numeric(12,2);not null"`
	Stock              *int                   `gorm:"column:stock"`
	Tipo               *string                `gorm:"column:tipo"`
	Estado             enums.ProductState     `gorm:"column:estado;not null;default:draft"`
	UsaVariantes       bool                   `gorm:"column:usa_variantes;not null;default:false"`
	MigracionVariantes enums.VariantMigration `gorm:"column:migracion_variantes;not null;default:legacy"`
	CreadoEn           time.Time              `gorm:"column:creado_en;autoCreateTime"`
	ActualizadoEn      time.Time              `gorm:"column:actualizado_en;autoUpdateTime"`
}

func (Producto) TableName() string { return "producto" }

func (p *Producto) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// LegacyStock returns the legacy counter, treating NULL as zero.
func (p Producto) LegacyStock() int {
	if p.Stock == nil {
		return 0
	}
	return *p.Stock
}
