package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// DayItems is the ordered list of item ids placed on a calendar day.
// It is stored as a JSON array so every supported SQL driver can hold it.
type DayItems []string

// Value implements driver.Valuer.
func (d DayItems) Value() (driver.Value, error) {
	if d == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(d))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (d *DayItems) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*d = DayItems{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("day items: unsupported type %T", src)
	}
	if len(raw) == 0 {
		*d = DayItems{}
		return nil
	}
	var ids []string
	if err := json.Unmarshal(raw, &ids); err != nil {
		return fmt.Errorf("day items: %w", err)
	}
	*d = ids
	return nil
}

// CalendarDay is the ordered placement of one user's items on one date.
type CalendarDay struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"userId" db:"user_id"`
	Date      string    `json:"date" db:"date"`
	Items     DayItems  `json:"items" db:"items"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// DayView is a calendar day together with its resolved items.
// Day is nil when the items came from the assigned-date fallback scan.
type DayView struct {
	Day   *CalendarDay `json:"day"`
	Items []Item       `json:"items"`
}
