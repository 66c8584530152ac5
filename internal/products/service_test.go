package products

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/greenbasket/greenbasket-backend/pkg/enums"
	pkgerrors "github.com/greenbasket/greenbasket-backend/pkg/errors"
)

func setupProductsDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.Exec(`CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  description TEXT,
  category TEXT NOT NULL,
  price NUMERIC NOT NULL,
  unit TEXT NOT NULL DEFAULT 'each',
  image_path TEXT,
  is_active BOOLEAN NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`).Error)
	return db
}

func newProductsService(t *testing.T) Service {
	t.Helper()
	svc, err := NewService(NewRepository(setupProductsDB(t)))
	require.NoError(t, err)
	return svc
}

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

func decimalFromString(t *testing.T, raw string) decimal.Decimal {
	t.Helper()
	value, err := decimal.NewFromString(raw)
	require.NoError(t, err)
	return value
}

func TestCreateProductDefaultsUnitAndActivates(t *testing.T) {
	svc := newProductsService(t)

	product, err := svc.Create(context.Background(), CreateProductInput{
		Name:     "Organic Spinach",
		Category: "vegetables",
		Price:    "35.00",
	})
	require.NoError(t, err)
	assert.Equal(t, "each", product.Unit)
	assert.True(t, product.IsActive)
	assert.Equal(t, enums.ProductCategoryVegetables, product.Category)
	assert.True(t, product.Price.Equal(decimalFromString(t, "35.00")))
}

func TestCreateProductRejectsBadCategory(t *testing.T) {
	svc := newProductsService(t)

	_, err := svc.Create(context.Background(), CreateProductInput{
		Name:     "Mystery Box",
		Category: "electronics",
		Price:    "199.00",
	})
	require.Error(t, err)

	var typed *pkgerrors.Error
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestCreateProductRejectsNonPositivePrice(t *testing.T) {
	svc := newProductsService(t)

	for _, price := range []string{"0", "-10", "abc"} {
		_, err := svc.Create(context.Background(), CreateProductInput{
			Name:     "Milk",
			Category: "dairy",
			Price:    price,
		})
		require.Error(t, err, "price %q", price)

		var typed *pkgerrors.Error
		require.ErrorAs(t, err, &typed)
		assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	}
}

func TestListHidesInactiveByDefault(t *testing.T) {
	svc := newProductsService(t)

	visible, err := svc.Create(context.Background(), CreateProductInput{
		Name: "Bananas", Category: "fruits", Price: "49.00",
	})
	require.NoError(t, err)
	hidden, err := svc.Create(context.Background(), CreateProductInput{
		Name: "Bread", Category: "bakery", Price: "40.00",
	})
	require.NoError(t, err)
	require.NoError(t, svc.Deactivate(context.Background(), hidden.ID))

	items, err := svc.List(context.Background(), ListFilters{})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, visible.ID, items[0].ID)

	all, err := svc.List(context.Background(), ListFilters{IncludeHidden: true})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestListFiltersByCategory(t *testing.T) {
	svc := newProductsService(t)

	_, err := svc.Create(context.Background(), CreateProductInput{
		Name: "Apples", Category: "fruits", Price: "120.00",
	})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), CreateProductInput{
		Name: "Yogurt", Category: "dairy", Price: "30.00",
	})
	require.NoError(t, err)

	dairy := enums.ProductCategoryDairy
	items, err := svc.List(context.Background(), ListFilters{Category: &dairy})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Yogurt", items[0].Name)
}

func TestUpdateProductPartialEdit(t *testing.T) {
	svc := newProductsService(t)

	product, err := svc.Create(context.Background(), CreateProductInput{
		Name: "Brown Rice", Category: "grains", Price: "89.00", Unit: "kg",
	})
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), product.ID, UpdateProductInput{
		Price:    strPtr("95.50"),
		IsActive: boolPtr(false),
	})
	require.NoError(t, err)
	assert.Equal(t, "Brown Rice", updated.Name)
	assert.Equal(t, "kg", updated.Unit)
	assert.True(t, updated.Price.Equal(decimalFromString(t, "95.50")))
	assert.False(t, updated.IsActive)
}

func TestUpdateProductRejectsBadPrice(t *testing.T) {
	svc := newProductsService(t)

	product, err := svc.Create(context.Background(), CreateProductInput{
		Name: "Oats", Category: "grains", Price: "60.00",
	})
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), product.ID, UpdateProductInput{Price: strPtr("-5")})
	require.Error(t, err)

	var typed *pkgerrors.Error
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestGetUnknownProductIsNotFound(t *testing.T) {
	svc := newProductsService(t)

	_, err := svc.Get(context.Background(), uuid.New())
	require.Error(t, err)

	var typed *pkgerrors.Error
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestDeactivateUnknownProductIsNotFound(t *testing.T) {
	svc := newProductsService(t)

	err := svc.Deactivate(context.Background(), uuid.New())
	require.Error(t, err)

	var typed *pkgerrors.Error
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}
