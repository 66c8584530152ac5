package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	pkgerrors "github.com/greenbasket/greenbasket-backend/pkg/errors"
)

// KeyShippingCharge is the settings key backing the checkout shipping fee.
const KeyShippingCharge = "shipping_charge"

// Service exposes the admin-tunable runtime settings.
type Service interface {
	ShippingCharge(ctx context.Context) (decimal.Decimal, error)
	SetShippingCharge(ctx context.Context, amount decimal.Decimal) error
}

type service struct {
	repo *Repository
}

func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("settings repository required")
	}
	return &service{repo: repo}, nil
}

// ShippingCharge returns the configured flat fee, or zero when unset.
func (s *service) ShippingCharge(ctx context.Context) (decimal.Decimal, error) {
	setting, err := s.repo.Get(ctx, KeyShippingCharge)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, nil
		}
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load shipping charge")
	}

	raw := strings.Trim(strings.TrimSpace(string(setting.Value)), `"`)
	amount, err := decimal.NewFromString(raw)
	if err != nil || amount.IsNegative() {
		return decimal.Zero, nil
	}
	return amount, nil
}

func (s *service) SetShippingCharge(ctx context.Context, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "shipping charge cannot be negative")
	}
	value, err := json.Marshal(amount.StringFixed(2))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode shipping charge")
	}
	if err := s.repo.Upsert(ctx, KeyShippingCharge, value); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save shipping charge")
	}
	return nil
}
