package cart

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

	"github.com/greenbasket/greenbasket-backend/internal/products"
	"github.com/greenbasket/greenbasket-backend/pkg/db/models"
	"github.com/greenbasket/greenbasket-backend/pkg/enums"
	pkgerrors "github.com/greenbasket/greenbasket-backend/pkg/errors"
)

func setupCartDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	for _, stmt := range []string{
		`CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  description TEXT,
  category TEXT NOT NULL,
  price TEXT NOT NULL,
  unit TEXT NOT NULL DEFAULT 'each',
  image_path TEXT,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS cart_items (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  quantity INTEGER NOT NULL DEFAULT 1,
  plan TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (user_id, product_id)
);`,
	} {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func newCartService(t *testing.T, db *gorm.DB) Service {
	t.Helper()

	svc, err := NewService(NewRepository(db), products.NewRepository(db))
	require.NoError(t, err)
	return svc
}

func seedCatalogItem(t *testing.T, db *gorm.DB, price string, active bool) *models.Product {
	t.Helper()

	product := &models.Product{
		ID:       uuid.New(),
		Name:     "Veggie Basket",
		Category: enums.ProductCategoryVegetables,
		Price:    decimal.RequireFromString(price),
		Unit:     "basket",
		IsActive: active,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func TestAddItemAndSubtotal(t *testing.T) {
	db := setupCartDB(t)
	svc := newCartService(t, db)
	userID := uuid.New()

	product := seedCatalogItem(t, db, "899", true)

	view, err := svc.AddItem(context.Background(), userID, AddItemInput{
		ProductID: product.ID,
		Quantity:  2,
		Plan:      "weekly",
	})
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.True(t, view.Subtotal.Equal(decimal.NewFromInt(1798)))
}

func TestAddItemTwiceReplacesQuantity(t *testing.T) {
	db := setupCartDB(t)
	svc := newCartService(t, db)
	userID := uuid.New()
	ctx := context.Background()

	product := seedCatalogItem(t, db, "100", true)

	_, err := svc.AddItem(ctx, userID, AddItemInput{ProductID: product.ID, Quantity: 1, Plan: "weekly"})
	require.NoError(t, err)
	view, err := svc.AddItem(ctx, userID, AddItemInput{ProductID: product.ID, Quantity: 3, Plan: "monthly"})
	require.NoError(t, err)

	require.Len(t, view.Items, 1, "same product upserts, not duplicates")
	assert.Equal(t, 3, view.Items[0].Quantity)
	assert.Equal(t, enums.SubscriptionPlanMonthly, view.Items[0].Plan)
}

func TestAddItemRejectsInactiveProduct(t *testing.T) {
	db := setupCartDB(t)
	svc := newCartService(t, db)

	product := seedCatalogItem(t, db, "100", false)

	_, err := svc.AddItem(context.Background(), uuid.New(), AddItemInput{
		ProductID: product.ID,
		Quantity:  1,
		Plan:      "weekly",
	})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeStateConflict, typed.Code())
}

func TestUpdateQuantityScopedToOwner(t *testing.T) {
	db := setupCartDB(t)
	svc := newCartService(t, db)
	ctx := context.Background()

	owner := uuid.New()
	product := seedCatalogItem(t, db, "100", true)
	view, err := svc.AddItem(ctx, owner, AddItemInput{ProductID: product.ID, Quantity: 1, Plan: "weekly"})
	require.NoError(t, err)
	itemID := view.Items[0].ID

	_, err = svc.UpdateQuantity(ctx, uuid.New(), itemID, 5)
	require.Error(t, err, "another user's row must look like not-found")

	view, err = svc.UpdateQuantity(ctx, owner, itemID, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, view.Items[0].Quantity)
}

func TestRemoveItem(t *testing.T) {
	db := setupCartDB(t)
	svc := newCartService(t, db)
	ctx := context.Background()

	userID := uuid.New()
	product := seedCatalogItem(t, db, "100", true)
	view, err := svc.AddItem(ctx, userID, AddItemInput{ProductID: product.ID, Quantity: 1, Plan: "weekly"})
	require.NoError(t, err)

	view, err = svc.RemoveItem(ctx, userID, view.Items[0].ID)
	require.NoError(t, err)
	assert.Empty(t, view.Items)
	assert.True(t, view.Subtotal.IsZero())
}
