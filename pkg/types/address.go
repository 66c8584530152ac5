package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// DeliveryAddress is the snapshot of where an order is delivered,
// persisted as JSONB.
type DeliveryAddress struct {
	Street         string    `json:"street"`
	AreaID         uuid.UUID `json:"area_id"`
	AreaName       string    `json:"area_name,omitempty"`
	City           string    `json:"city"`
	State          string    `json:"state"`
	Pincode        string    `json:"pincode"`
	Landmark       *string   `json:"landmark,omitempty"`
	DeliveryWindow string    `json:"delivery_window,omitempty"`
}

// Validate checks the fields a deliverable address must carry.
func (d DeliveryAddress) Validate() error {
	if d.Street == "" {
		return fmt.Errorf("street is required")
	}
	if d.City == "" {
		return fmt.Errorf("city is required")
	}
	if d.Pincode == "" {
		return fmt.Errorf("pincode is required")
	}
	return nil
}

// Value serializes the address to JSON.
func (d DeliveryAddress) Value() (driver.Value, error) {
	return json.Marshal(d)
}

// Scan decodes JSONB into the address.
func (d *DeliveryAddress) Scan(value interface{}) error {
	if value == nil {
		*d = DeliveryAddress{}
		return nil
	}
	raw, err := asJSON(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, d)
}

func asJSON(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case string:
		return []byte(v), nil
	case []byte:
		return v, nil
	default:
		return nil, fmt.Errorf("unsupported scan type %T", value)
	}
}
