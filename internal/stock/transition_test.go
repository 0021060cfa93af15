package stock

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/rayz-store/tienda-backend/internal/testdb"
	"github.com/rayz-store/tienda-backend/pkg/db"
	"github.com/rayz-store/tienda-backend/pkg/db/models"
	"github.com/rayz-store/tienda-backend/pkg/enums"
	pkgerrors "github.com/rayz-store/tienda-backend/pkg/errors"
	"github.com/rayz-store/tienda-backend/pkg/logger"
	"github.com/rayz-store/tienda-backend/pkg/redis"
)

type memoryLocker struct {
	mu   sync.Mutex
	held map[string]string
}

func newMemoryLocker() *memoryLocker {
	return &memoryLocker{held: map[string]string{}}
}

func (m *memoryLocker) AcquireLock(_ context.Context, name string, _ time.Duration) (*redis.Lock, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.held[name]; ok {
		return nil, redis.ErrLockHeld
	}
	token := uuid.NewString()
	m.held[name] = token
	return &redis.Lock{Key: name, Token: token}, nil
}

func (m *memoryLocker) ReleaseLock(_ context.Context, lock *redis.Lock) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.held[lock.Key] == lock.Token {
		delete(m.held, lock.Key)
	}
	return nil
}

func httpStatus(err error) int {
	return pkgerrors.HTTPStatus(err)
}

func newTransitioner(t *testing.T, conn *gorm.DB, locks locker) *Transitioner {
	t.Helper()
	repo := NewRepository(conn)
	resolver, err := NewResolver(repo, logger.Nop(), nil)
	require.NoError(t, err)
	tr, err := NewTransitioner(repo, db.FromGorm(conn), resolver, locks, time.Second, logger.Nop(), nil)
	require.NoError(t, err)
	return tr
}

func loadProducto(t *testing.T, conn *gorm.DB, id uuid.UUID) models.Producto {
	t.Helper()
	var p models.Producto
	require.NoError(t, conn.Where("id = ?", id).First(&p).Error)
	return p
}

func countVariants(t *testing.T, conn *gorm.DB, productID uuid.UUID) int64 {
	t.Helper()
	var n int64
	require.NoError(t, conn.Model(&models.ProductoVariante{}).Where("producto_id = ?", productID).Count(&n).Error)
	return n
}

func TestTransitionMigratesLegacyStock(t *testing.T) {
	conn := testdb.Open(t)
	ctx := context.Background()
	empresa := testdb.CreateEmpresa(t, conn)
	product := testdb.CreateProducto(t, conn, empresa.ID, "Campera", testdb.WithStock(12))
	tr := newTransitioner(t, conn, newMemoryLocker())

	result, err := tr.Transition(ctx, empresa.ID, product.ID, TransitionInput{Confirm: true, MigrateStock: true})
	require.NoError(t, err)

	assert.True(t, result.VarianteCreada)
	assert.Equal(t, enums.VariantMigrationVariantMode, result.Estado)
	require.Len(t, result.Variantes, 1)
	assert.Equal(t, MigrationVariantLabel, result.Variantes[0].Talle)
	assert.Equal(t, 12, result.Variantes[0].Stock)
	assert.True(t, result.Variantes[0].Activo)

	assert.Equal(t, Resolution{
		ProductoID:   product.ID,
		UsaVariantes: true,
		StockTotal:   12,
		StockBase:    12,
		Source:       enums.StockSourceView,
	}, result.Resolution)

	stored := loadProducto(t, conn, product.ID)
	assert.True(t, stored.UsaVariantes)
	assert.Equal(t, enums.VariantMigrationVariantMode, stored.MigracionVariantes)
}

func TestTransitionIsIdempotent(t *testing.T) {
	conn := testdb.Open(t)
	ctx := context.Background()
	empresa := testdb.CreateEmpresa(t, conn)
	product := testdb.CreateProducto(t, conn, empresa.ID, "Pantalon", testdb.WithStock(5))
	tr := newTransitioner(t, conn, newMemoryLocker())

	_, err := tr.Transition(ctx, empresa.ID, product.ID, TransitionInput{Confirm: true, MigrateStock: true})
	require.NoError(t, err)

	second, err := tr.Transition(ctx, empresa.ID, product.ID, TransitionInput{Confirm: true, MigrateStock: true})
	require.NoError(t, err)
	assert.True(t, second.YaEnVariantes)
	assert.False(t, second.VarianteCreada)
	assert.Equal(t, int64(1), countVariants(t, conn, product.ID))
}

func TestTransitionResumesAfterVariantCreated(t *testing.T) {
	conn := testdb.Open(t)
	ctx := context.Background()
	empresa := testdb.CreateEmpresa(t, conn)
	product := testdb.CreateProducto(t, conn, empresa.ID, "Short", testdb.WithStock(8))

	// crash after the first step: variant exists, flag still false
	testdb.CreateVariante(t, conn, product, MigrationVariantLabel, 8, true)
	require.NoError(t, conn.Model(&models.Producto{}).Where("id = ?", product.ID).
		Update("migracion_variantes", enums.VariantMigrationVariantCreated).Error)

	tr := newTransitioner(t, conn, newMemoryLocker())
	result, err := tr.Transition(ctx, empresa.ID, product.ID, TransitionInput{Confirm: true, MigrateStock: true})
	require.NoError(t, err)

	assert.False(t, result.VarianteCreada)
	assert.Equal(t, int64(1), countVariants(t, conn, product.ID))
	assert.Equal(t, int64(8), result.Resolution.StockTotal)
	assert.True(t, loadProducto(t, conn, product.ID).UsaVariantes)
}

func TestTransitionGenericVariantGuard(t *testing.T) {
	conn := testdb.Open(t)
	ctx := context.Background()
	empresa := testdb.CreateEmpresa(t, conn)
	product := testdb.CreateProducto(t, conn, empresa.ID, "Medias", testdb.WithStock(3))
	testdb.CreateVariante(t, conn, product, "General", 2, true)

	tr := newTransitioner(t, conn, newMemoryLocker())
	result, err := tr.Transition(ctx, empresa.ID, product.ID, TransitionInput{Confirm: true, MigrateStock: true})
	require.NoError(t, err)
	assert.False(t, result.VarianteCreada)
	assert.Equal(t, int64(1), countVariants(t, conn, product.ID))
}

func TestTransitionWithoutMigration(t *testing.T) {
	conn := testdb.Open(t)
	ctx := context.Background()
	empresa := testdb.CreateEmpresa(t, conn)
	product := testdb.CreateProducto(t, conn, empresa.ID, "Bolso", testdb.WithStock(4))

	tr := newTransitioner(t, conn, newMemoryLocker())
	result, err := tr.Transition(ctx, empresa.ID, product.ID, TransitionInput{Confirm: true, MigrateStock: false})
	require.NoError(t, err)
	assert.Empty(t, result.Variantes)
	assert.Equal(t, int64(0), countVariants(t, conn, product.ID))
	assert.True(t, result.Resolution.UsaVariantes)
	assert.Equal(t, int64(4), result.Resolution.StockTotal)
}

func TestTransitionErrors(t *testing.T) {
	conn := testdb.Open(t)
	ctx := context.Background()
	empresa := testdb.CreateEmpresa(t, conn)
	other := testdb.CreateEmpresa(t, conn)
	product := testdb.CreateProducto(t, conn, empresa.ID, "Cinto", testdb.WithStock(2))

	t.Run("requires confirmation", func(t *testing.T) {
		tr := newTransitioner(t, conn, newMemoryLocker())
		_, err := tr.Transition(ctx, empresa.ID, product.ID, TransitionInput{Confirm: false, MigrateStock: true})
		require.Error(t, err)
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
		assert.False(t, loadProducto(t, conn, product.ID).UsaVariantes)
	})

	t.Run("other tenant gets not found", func(t *testing.T) {
		tr := newTransitioner(t, conn, newMemoryLocker())
		_, err := tr.Transition(ctx, other.ID, product.ID, TransitionInput{Confirm: true})
		require.Error(t, err)
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	})

	t.Run("held lock conflicts", func(t *testing.T) {
		locks := newMemoryLocker()
		_, err := locks.AcquireLock(ctx, "producto:"+product.ID.String()+":variantes", time.Second)
		require.NoError(t, err)

		tr := newTransitioner(t, conn, locks)
		_, err = tr.Transition(ctx, empresa.ID, product.ID, TransitionInput{Confirm: true})
		require.Error(t, err)
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))
	})
}
