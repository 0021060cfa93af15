package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ImagenProducto points at an object in the private bucket. Path is canonical;
// URLImagen holds the same value for older readers.
type ImagenProducto struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	EmpresaID   uuid.UUID `gorm:"column:empresa_id;type:uuid;not null"`
	ProductoID  uuid.UUID `gorm:"column:producto_id;type:uuid;not null"`
	Path        *string   `gorm:"column:path"`
	URLImagen   *string   `gorm:"column:url_imagen"`
	Orden       int       `gorm:"column:orden;not null;default:0"`
	EsPrincipal bool      `gorm:"column:es_principal;not null;default:false"`
	Descripcion *string   `gorm:"column:descripcion"`
	CreadoEn    time.Time `gorm:"column:creado_en;autoCreateTime"`
}

func (ImagenProducto) TableName() string { return "imagen_producto" }

func (i *ImagenProducto) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// ObjectKey returns the storage key, preferring the canonical path.
func (i ImagenProducto) ObjectKey() string {
	if i.Path != nil && *i.Path != "" {
		return *i.Path
	}
	if i.URLImagen != nil {
		return *i.URLImagen
	}
	return ""
}
