package settings

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	pkgerrors "github.com/greenbasket/greenbasket-backend/pkg/errors"
)

func setupSettingsDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.Exec(`CREATE TABLE IF NOT EXISTS settings (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updated_at DATETIME
);`).Error)
	return db
}

func TestShippingChargeDefaultsToZero(t *testing.T) {
	svc, err := NewService(NewRepository(setupSettingsDB(t)))
	require.NoError(t, err)

	charge, err := svc.ShippingCharge(context.Background())
	require.NoError(t, err)
	assert.True(t, charge.IsZero())
}

func TestSetShippingChargeRoundTrips(t *testing.T) {
	svc, err := NewService(NewRepository(setupSettingsDB(t)))
	require.NoError(t, err)

	require.NoError(t, svc.SetShippingCharge(context.Background(), decimal.NewFromInt(50)))

	charge, err := svc.ShippingCharge(context.Background())
	require.NoError(t, err)
	assert.True(t, charge.Equal(decimal.NewFromInt(50)))

	// Second write replaces the first.
	require.NoError(t, svc.SetShippingCharge(context.Background(), decimal.RequireFromString("35.50")))
	charge, err = svc.ShippingCharge(context.Background())
	require.NoError(t, err)
	assert.True(t, charge.Equal(decimal.RequireFromString("35.50")))
}

func TestSetShippingChargeRejectsNegative(t *testing.T) {
	svc, err := NewService(NewRepository(setupSettingsDB(t)))
	require.NoError(t, err)

	err = svc.SetShippingCharge(context.Background(), decimal.NewFromInt(-1))
	require.Error(t, err)

	var typed *pkgerrors.Error
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestShippingChargeMalformedValueFallsBack(t *testing.T) {
	db := setupSettingsDB(t)
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)

	require.NoError(t, db.Exec(`INSERT INTO settings (key, value) VALUES (?, ?)`, KeyShippingCharge, `"not-a-number"`).Error)

	charge, err := svc.ShippingCharge(context.Background())
	require.NoError(t, err)
	assert.True(t, charge.IsZero())
}
