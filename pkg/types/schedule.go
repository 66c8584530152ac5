package types

import (
	"database/sql/driver"
	"encoding/json"

	"github.com/greenbasket/greenbasket-backend/pkg/enums"
)

// DeliveryDate is one dated entry on an order's delivery schedule.
type DeliveryDate struct {
	Date   CivilDate            `json:"date"`
	Status enums.DeliveryStatus `json:"status"`
}

// DeliverySchedule is the ordered list of planned deliveries, persisted
// as JSONB on the order row.
type DeliverySchedule []DeliveryDate

// Value serializes the schedule to JSON.
func (s DeliverySchedule) Value() (driver.Value, error) {
	if s == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s)
}

// Scan decodes JSONB into the schedule.
func (s *DeliverySchedule) Scan(value interface{}) error {
	if value == nil {
		*s = nil
		return nil
	}
	raw, err := asJSON(value)
	if err != nil {
		return err
	}
	var decoded DeliverySchedule
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return err
	}
	*s = decoded
	return nil
}

// PendingOn returns the indexes of entries still pending on the given date.
func (s DeliverySchedule) PendingOn(date CivilDate) []int {
	var idx []int
	for i, entry := range s {
		if entry.Status == enums.DeliveryStatusPending && entry.Date.Equal(date) {
			idx = append(idx, i)
		}
	}
	return idx
}

// AllDelivered reports whether every entry has been delivered.
func (s DeliverySchedule) AllDelivered() bool {
	if len(s) == 0 {
		return false
	}
	for _, entry := range s {
		if entry.Status != enums.DeliveryStatusDelivered {
			return false
		}
	}
	return true
}
