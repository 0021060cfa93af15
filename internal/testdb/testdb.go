// Package testdb opens isolated in-memory sqlite databases carrying the panel
// schema, for repository and service tests.
package testdb

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/rayz-store/tienda-backend/pkg/db/models"
	"github.com/rayz-store/tienda-backend/pkg/enums"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS empresa (
  id TEXT PRIMARY KEY,
  nombre TEXT NOT NULL,
  descripcion TEXT,
  creado_en DATETIME
);`,
	`CREATE TABLE IF NOT EXISTS usuario (
  id TEXT PRIMARY KEY,
  auth_uid TEXT UNIQUE,
  nombre TEXT,
  correo TEXT NOT NULL,
  rol TEXT NOT NULL DEFAULT 'user',
  empresa_id TEXT,
  creado_en DATETIME
);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_usuario_correo_lower ON usuario (lower(correo));`,
	`CREATE TABLE IF NOT EXISTS categoria (
  id TEXT PRIMARY KEY,
  empresa_id TEXT NOT NULL,
  nombre TEXT NOT NULL,
  slug TEXT NOT NULL,
  descripcion TEXT,
  orden INTEGER,
  creado_en DATETIME,
  CONSTRAINT categoria_empresa_slug_key UNIQUE (empresa_id, slug)
);`,
	`CREATE TABLE IF NOT EXISTS producto (
  id TEXT PRIMARY KEY,
  empresa_id TEXT NOT NULL,
  categoria_id TEXT,
  nombre TEXT NOT NULL,
  descripcion TEXT,
  precio NUMERIC NOT NULL DEFAULT 0,
  stock INTEGER,
  tipo TEXT,
  estado TEXT NOT NULL DEFAULT 'draft',
  usa_variantes INTEGER NOT NULL DEFAULT 0,
  migracion_variantes TEXT NOT NULL DEFAULT 'legacy',
  creado_en DATETIME,
  actualizado_en DATETIME
);`,
	`CREATE TABLE IF NOT EXISTS producto_variante (
  id TEXT PRIMARY KEY,
  empresa_id TEXT NOT NULL,
  producto_id TEXT NOT NULL,
  talle TEXT NOT NULL,
  stock INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
  activo INTEGER NOT NULL DEFAULT 1,
  creado_en DATETIME,
  actualizado_en DATETIME
);`,
	`CREATE TABLE IF NOT EXISTS imagen_producto (
  id TEXT PRIMARY KEY,
  empresa_id TEXT NOT NULL,
  producto_id TEXT NOT NULL,
  path TEXT,
  url_imagen TEXT,
  orden INTEGER NOT NULL DEFAULT 0,
  es_principal INTEGER NOT NULL DEFAULT 0,
  descripcion TEXT,
  creado_en DATETIME
);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_imagen_producto_principal ON imagen_producto (producto_id) WHERE es_principal = 1;`,
	`CREATE VIEW IF NOT EXISTS producto_stock_resumen AS
SELECT
  p.id AS producto_id,
  p.empresa_id,
  p.usa_variantes,
  CASE WHEN COUNT(v.id) > 0 THEN COALESCE(SUM(v.stock), 0) ELSE COALESCE(p.stock, 0) END AS stock_total,
  COUNT(v.id) AS variantes_count
FROM producto p
LEFT JOIN producto_variante v ON v.producto_id = p.id AND v.empresa_id = p.empresa_id
GROUP BY p.id, p.empresa_id, p.usa_variantes, p.stock;`,
}

// Open returns a fresh database private to the calling test.
func Open(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	for _, stmt := range schema {
		require.NoError(t, conn.Exec(stmt).Error)
	}
	return conn
}

// CreateEmpresa inserts a tenant.
func CreateEmpresa(t *testing.T, conn *gorm.DB) *models.Empresa {
	t.Helper()
	empresa := &models.Empresa{Nombre: "Rayz " + uuid.NewString()[:8]}
	require.NoError(t, conn.Create(empresa).Error)
	return empresa
}

// ProductoOption tweaks a product before insert.
type ProductoOption func(*models.Producto)

func WithStock(stock int) ProductoOption {
	return func(p *models.Producto) { p.Stock = &stock }
}

func WithVariantes() ProductoOption {
	return func(p *models.Producto) {
		p.UsaVariantes = true
		p.MigracionVariantes = enums.VariantMigrationVariantMode
	}
}

func WithEstado(estado enums.ProductState) ProductoOption {
	return func(p *models.Producto) { p.Estado = estado }
}

func WithCreadoEn(at time.Time) ProductoOption {
	return func(p *models.Producto) { p.CreadoEn = at }
}

// CreateProducto inserts a draft legacy product for the tenant.
func CreateProducto(t *testing.T, conn *gorm.DB, empresaID uuid.UUID, nombre string, opts ...ProductoOption) *models.Producto {
	t.Helper()
	producto := &models.Producto{
		EmpresaID:          empresaID,
		Nombre:             nombre,
		Precio:             decimal.RequireFromString("1999.90"),
		Estado:             enums.ProductStateDraft,
		MigracionVariantes: enums.VariantMigrationLegacy,
	}
	for _, opt := range opts {
		opt(producto)
	}
	require.NoError(t, conn.Create(producto).Error)
	return producto
}

// CreateVariante inserts a variant row.
func CreateVariante(t *testing.T, conn *gorm.DB, producto *models.Producto, talle string, stock int, activo bool) *models.ProductoVariante {
	t.Helper()
	variante := &models.ProductoVariante{
		EmpresaID:  producto.EmpresaID,
		ProductoID: producto.ID,
		Talle:      talle,
		Stock:      stock,
		Activo:     activo,
	}
	require.NoError(t, conn.Create(variante).Error)
	return variante
}

// CreateUsuario inserts a profile.
func CreateUsuario(t *testing.T, conn *gorm.DB, authUID, correo string, rol enums.UserRole, empresaID *uuid.UUID) *models.Usuario {
	t.Helper()
	usuario := &models.Usuario{Correo: correo, Rol: rol, EmpresaID: empresaID}
	if authUID != "" {
		usuario.AuthUID = &authUID
	}
	require.NoError(t, conn.Create(usuario).Error)
	return usuario
}
