package valueobject

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// Address is a shipping address snapshot. It is stored as a JSON blob on
// the order so later edits to a saved address never change past orders.
type Address struct {
	FullName   string `json:"full_name"`
	Phone      string `json:"phone"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	District   string `json:"district,omitempty"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// Validate checks the required address fields
func (a Address) Validate() error {
	if strings.TrimSpace(a.FullName) == "" {
		return fmt.Errorf("address full name is required")
	}
	if strings.TrimSpace(a.Phone) == "" {
		return fmt.Errorf("address phone is required")
	}
	if strings.TrimSpace(a.Line1) == "" {
		return fmt.Errorf("address line is required")
	}
	if strings.TrimSpace(a.City) == "" {
		return fmt.Errorf("address city is required")
	}
	if strings.TrimSpace(a.Country) == "" {
		return fmt.Errorf("address country is required")
	}
	return nil
}

// IsEmpty returns true when no field is set
func (a Address) IsEmpty() bool {
	return a == Address{}
}

// Value implements driver.Valuer, serializing the address as JSON
func (a Address) Value() (driver.Value, error) {
	return json.Marshal(a)
}

// Scan implements sql.Scanner
func (a *Address) Scan(value any) error {
	if value == nil {
		*a = Address{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into Address", value)
	}
	if len(data) == 0 {
		*a = Address{}
		return nil
	}
	return json.Unmarshal(data, a)
}
