package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Categoria struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	EmpresaID   uuid.UUID `gorm:"column:empresa_id;type:uuid;not null"`
	Nombre      string    `gorm:"column:nombre;not null"`
	Slug        string    `gorm:"column:slug;not null"`
	Descripcion *string   `gorm:"column:descripcion"`
	Orden       *int      `gorm:"column:orden"`
	CreadoEn    time.Time `gorm:"column:creado_en;autoCreateTime"`
}

func (Categoria) TableName() string { return "categoria" }

func (c *Categoria) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
