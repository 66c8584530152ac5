package types

import (
	"database/sql/driver"
	"encoding/json"
)

// JSONValue is a raw JSONB column. Unlike a bare json.RawMessage it
// scans cleanly whether the driver hands back a string or []byte.
type JSONValue json.RawMessage

// Value serializes the payload for the driver.
func (v JSONValue) Value() (driver.Value, error) {
	if len(v) == 0 {
		return nil, nil
	}
	return string(v), nil
}

// Scan accepts string or []byte column data.
func (v *JSONValue) Scan(value interface{}) error {
	if value == nil {
		*v = nil
		return nil
	}
	raw, err := asJSON(value)
	if err != nil {
		return err
	}
	*v = append((*v)[:0], raw...)
	return nil
}

func (v JSONValue) MarshalJSON() ([]byte, error) {
	return json.RawMessage(v).MarshalJSON()
}

func (v *JSONValue) UnmarshalJSON(data []byte) error {
	return (*json.RawMessage)(v).UnmarshalJSON(data)
}
