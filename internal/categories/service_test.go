package categories

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rayz-store/tienda-backend/internal/testdb"
	pkgerrors "github.com/rayz-store/tienda-backend/pkg/errors"
)

func TestMakeSlug(t *testing.T) {
	cases := map[string]string{
		"Remeras Oversize":   "remeras-oversize",
		"  Pantalones  ":     "pantalones",
		"Camperas & Buzos":   "camperas-and-buzos",
		"Ñandú Edición 2025": "nandu-edicion-2025",
	}
	for in, want := range cases {
		assert.Equal(t, want, MakeSlug(in), in)
	}
}

func TestCategoryCRUD(t *testing.T) {
	conn := testdb.Open(t)
	svc, err := NewService(NewRepository(conn))
	require.NoError(t, err)
	ctx := context.Background()
	empresa := testdb.CreateEmpresa(t, conn)

	two, one := 2, 1
	buzos, err := svc.Create(ctx, empresa.ID, CategoryInput{Nombre: "Buzos", Orden: &two})
	require.NoError(t, err)
	assert.Equal(t, "buzos", buzos.Slug)
	_, err = svc.Create(ctx, empresa.ID, CategoryInput{Nombre: "Remeras", Orden: &one})
	require.NoError(t, err)
	_, err = svc.Create(ctx, empresa.ID, CategoryInput{Nombre: "Accesorios", Slug: "Extras Varios"})
	require.NoError(t, err)

	list, err := svc.List(ctx, empresa.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"extras-varios", "remeras", "buzos"}, []string{list[0].Slug, list[1].Slug, list[2].Slug})

	_, err = svc.Create(ctx, empresa.ID, CategoryInput{Nombre: "BUZOS"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict), "slug unique per tenant")

	other := testdb.CreateEmpresa(t, conn)
	_, err = svc.Create(ctx, other.ID, CategoryInput{Nombre: "Buzos"})
	assert.NoError(t, err, "slug reusable across tenants")

	updated, err := svc.Update(ctx, empresa.ID, buzos.ID, CategoryInput{Nombre: "Buzos de invierno"})
	require.NoError(t, err)
	assert.Equal(t, "buzos-de-invierno", updated.Slug)
	assert.Nil(t, updated.Orden)

	_, err = svc.Update(ctx, other.ID, buzos.ID, CategoryInput{Nombre: "X"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	_, err = svc.Create(ctx, empresa.ID, CategoryInput{Nombre: "  "})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestDeleteCategoryInUse(t *testing.T) {
	conn := testdb.Open(t)
	svc, err := NewService(NewRepository(conn))
	require.NoError(t, err)
	ctx := context.Background()
	empresa := testdb.CreateEmpresa(t, conn)

	cat, err := svc.Create(ctx, empresa.ID, CategoryInput{Nombre: "Gorras"})
	require.NoError(t, err)
	product := testdb.CreateProducto(t, conn, empresa.ID, "Gorra", testdb.WithStock(1))
	require.NoError(t, conn.Exec("UPDATE producto SET categoria_id = ? WHERE id = ?", cat.ID, product.ID).Error)

	err = svc.Delete(ctx, empresa.ID, cat.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))

	require.NoError(t, conn.Exec("UPDATE producto SET categoria_id = NULL WHERE id = ?", product.ID).Error)
	require.NoError(t, svc.Delete(ctx, empresa.ID, cat.ID))

	err = svc.Delete(ctx, empresa.ID, uuid.New())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}
