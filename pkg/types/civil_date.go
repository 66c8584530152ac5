package types

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

const civilDateLayout = "2006-01-02"

// CivilDate is a calendar date without a time component, always UTC.
type CivilDate struct {
	t time.Time
}

// NewCivilDate builds a CivilDate from year, month, day.
func NewCivilDate(year int, month time.Month, day int) CivilDate {
	return CivilDate{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// CivilDateOf truncates a time.Time to its UTC calendar date.
func CivilDateOf(t time.Time) CivilDate {
	u := t.UTC()
	return NewCivilDate(u.Year(), u.Month(), u.Day())
}

// ParseCivilDate parses the YYYY-MM-DD wire format.
func ParseCivilDate(value string) (CivilDate, error) {
	parsed, err := time.ParseInLocation(civilDateLayout, value, time.UTC)
	if err != nil {
		return CivilDate{}, fmt.Errorf("invalid date %q: %w", value, err)
	}
	return CivilDate{t: parsed}, nil
}

// Time returns midnight UTC of the date.
func (c CivilDate) Time() time.Time {
	return c.t
}

// Weekday returns the day of week.
func (c CivilDate) Weekday() time.Weekday {
	return c.t.Weekday()
}

// AddDays returns the date shifted by n calendar days.
func (c CivilDate) AddDays(n int) CivilDate {
	return CivilDate{t: c.t.AddDate(0, 0, n)}
}

// Equal reports whether two dates are the same calendar day.
func (c CivilDate) Equal(other CivilDate) bool {
	return c.t.Equal(other.t)
}

// Before reports whether c is earlier than other.
func (c CivilDate) Before(other CivilDate) bool {
	return c.t.Before(other.t)
}

// IsZero reports whether the date is unset.
func (c CivilDate) IsZero() bool {
	return c.t.IsZero()
}

// String implements fmt.Stringer.
func (c CivilDate) String() string {
	return c.t.Format(civilDateLayout)
}

// MarshalJSON implements json.Marshaler.
func (c CivilDate) MarshalJSON() ([]byte, error) {
	return []byte(`"` + c.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *CivilDate) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	if raw == "" || raw == "null" {
		*c = CivilDate{}
		return nil
	}
	parsed, err := ParseCivilDate(raw)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Value implements driver.Valuer.
func (c CivilDate) Value() (driver.Value, error) {
	if c.IsZero() {
		return nil, nil
	}
	return c.String(), nil
}

// Scan implements sql.Scanner.
func (c *CivilDate) Scan(value interface{}) error {
	if value == nil {
		*c = CivilDate{}
		return nil
	}
	switch v := value.(type) {
	case time.Time:
		*c = CivilDateOf(v)
		return nil
	case string:
		parsed, err := ParseCivilDate(v)
		if err != nil {
			return err
		}
		*c = parsed
		return nil
	case []byte:
		parsed, err := ParseCivilDate(string(v))
		if err != nil {
			return err
		}
		*c = parsed
		return nil
	default:
		return fmt.Errorf("civil date: unsupported scan type %T", value)
	}
}
