package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/greenbasket/greenbasket-backend/api/middleware"
	"github.com/greenbasket/greenbasket-backend/api/responses"
	"github.com/greenbasket/greenbasket-backend/api/validators"
	areasvc "github.com/greenbasket/greenbasket-backend/internal/areas"
	fulfillmentsvc "github.com/greenbasket/greenbasket-backend/internal/fulfillment"
	orderssvc "github.com/greenbasket/greenbasket-backend/internal/orders"
	settingssvc "github.com/greenbasket/greenbasket-backend/internal/settings"
	userssvc "github.com/greenbasket/greenbasket-backend/internal/users"
	"github.com/greenbasket/greenbasket-backend/pkg/db/models"
	pkgerrors "github.com/greenbasket/greenbasket-backend/pkg/errors"
	"github.com/greenbasket/greenbasket-backend/pkg/logger"
	"github.com/greenbasket/greenbasket-backend/pkg/payments"
	"github.com/greenbasket/greenbasket-backend/pkg/types"
)

type areaResponse struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	City     string    `json:"city"`
	Pincodes []string  `json:"pincodes,omitempty"`
}

func newAreaResponse(area *models.ServiceableArea) areaResponse {
	return areaResponse{
		ID:       area.ID,
		Name:     area.Name,
		City:     area.City,
		Pincodes: area.Pincodes,
	}
}

func newAreaListResponse(rows []models.ServiceableArea) []areaResponse {
	out := make([]areaResponse, 0, len(rows))
	for i := range rows {
		out = append(out, newAreaResponse(&rows[i]))
	}
	return out
}

// CheckoutAreas lists the active delivery zones customers can pick from.
func CheckoutAreas(svc areasvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := svc.List(r.Context(), false)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newAreaListResponse(rows))
	}
}

// CheckoutQuote returns the current shipping charge so clients can show
// the order total before placing it.
func CheckoutQuote(svc settingssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		charge, err := svc.ShippingCharge(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"shipping_charge": charge.StringFixed(2)})
	}
}

type placeOrderRequest struct {
	DeliveryAddress *types.DeliveryAddress `json:"delivery_address"`
}

type placeOrderResponse struct {
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber int64     `json:"order_number"`
	Total       string    `json:"total"`
	Assigned    bool      `json:"assigned"`
	PaymentLink string    `json:"payment_link,omitempty"`
}

// CheckoutPlaceOrder converts the caller's cart into an order and, when
// UPI is configured, attaches the payment deep link. An order without an
// explicit address falls back to the caller's saved default.
func CheckoutPlaceOrder(svc fulfillmentsvc.Service, users userssvc.Service, upi *payments.UPILink, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload placeOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		userID := middleware.UserIDFromContext(r.Context())
		address := payload.DeliveryAddress
		if address == nil {
			profile, err := users.Profile(r.Context(), userID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			if profile.DefaultAddress == nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeValidation, "delivery address required"))
				return
			}
			address = profile.DefaultAddress
		}

		result, err := svc.CreateOrder(r.Context(), fulfillmentsvc.CreateOrderInput{
			UserID:          userID,
			DeliveryAddress: *address,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp := placeOrderResponse{
			OrderID:     result.OrderID,
			OrderNumber: result.OrderNumber,
			Total:       result.Total,
			Assigned:    result.Assigned,
		}
		if upi != nil {
			if amount, parseErr := decimal.NewFromString(result.Total); parseErr == nil {
				if link, linkErr := upi.ForOrder(result.OrderNumber, amount); linkErr == nil {
					resp.PaymentLink = link
				}
			}
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, resp)
	}
}

// CheckoutPaymentLink re-renders the UPI link for an existing order, for
// the confirmation screen.
func CheckoutPaymentLink(svc orderssvc.Service, upi *payments.UPILink, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if upi == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeDependency, "payments not configured"))
			return
		}

		orderID, err := parseUUIDParam(r, "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		detail, err := svc.GetForUser(r.Context(), middleware.UserIDFromContext(r.Context()), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		amount, err := decimal.NewFromString(detail.Total)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "parse order total"))
			return
		}
		link, err := upi.ForOrder(detail.OrderNumber, amount)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build payment link"))
			return
		}

		responses.WriteSuccess(w, map[string]string{"payment_link": link})
	}
}
