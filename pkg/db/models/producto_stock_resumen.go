package models

import "github.com/google/uuid"

// ProductoStockResumen is a row of the producto_stock_resumen view. StockTotal
// sums every variant, active or not, and falls back to the legacy counter when
// the product has no variants.
type ProductoStockResumen struct {
	ProductoID     uuid.UUID `gorm:"column:producto_id;type:uuid"`
	EmpresaID      uuid.UUID `gorm:"column:empresa_id;type:uuid"`
	UsaVariantes   bool      `gorm:"column:usa_variantes"`
	StockTotal     int64     `gorm:"column:stock_total"`
	VariantesCount int64     `gorm:"column:variantes_count"`
}

func (ProductoStockResumen) TableName() string { return "producto_stock_resumen" }
