package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Empresa struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Nombre      string    `gorm:"column:nombre;not null"`
	Descripcion *string   `gorm:"column:descripcion"`
	CreadoEn    time.Time `gorm:"column:creado_en;autoCreateTime"`
}

func (Empresa) TableName() string { return "empresa" }

func (e *Empresa) BeforeCreate(*gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
