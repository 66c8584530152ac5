package payments

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/greenbasket/greenbasket-backend/pkg/config"
)

// UPILink builds upi:// deep links customers open in their payment app.
// Settlement happens out of band; the backend only renders the link.
type UPILink struct {
	payeeAddress string
	payeeName    string
}

// NewUPILink validates the payee configuration.
func NewUPILink(cfg config.UPIConfig) (*UPILink, error) {
	if strings.TrimSpace(cfg.PayeeAddress) == "" {
		return nil, errors.New("upi payee address is required")
	}
	if strings.TrimSpace(cfg.PayeeName) == "" {
		return nil, errors.New("upi payee name is required")
	}
	return &UPILink{
		payeeAddress: strings.TrimSpace(cfg.PayeeAddress),
		payeeName:    strings.TrimSpace(cfg.PayeeName),
	}, nil
}

// ForOrder renders the payment link for an order total.
func (u *UPILink) ForOrder(orderNumber int64, amount decimal.Decimal) (string, error) {
	if orderNumber <= 0 {
		return "", errors.New("order number is required")
	}
	if amount.IsNegative() || amount.IsZero() {
		return "", fmt.Errorf("amount must be positive, got %s", amount)
	}

	query := url.Values{}
	query.Set("pa", u.payeeAddress)
	query.Set("pn", u.payeeName)
	query.Set("am", amount.StringFixed(2))
	query.Set("cu", "INR")
	query.Set("tn", fmt.Sprintf("Order %d", orderNumber))
	query.Set("tr", fmt.Sprintf("GB%d", orderNumber))

	return "upi://pay?" + query.Encode(), nil
}
