// Package jsonmap models the schemaless metadata bag attached to inventory
// items and movements.
package jsonmap

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Map is a free-form string-to-JSON-value bag persisted to a jsonb column.
type Map map[string]any

// Value implements driver.Valuer so sqlx/database-sql can write a Map
// straight into a jsonb column.
func (m Map) Value() (driver.Value, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner so a jsonb column reads back into a Map.
func (m *Map) Scan(src any) error {
	if src == nil {
		*m = Map{}
		return nil
	}
	var raw []byte
	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("jsonmap: unsupported scan type %T", src)
	}
	if len(raw) == 0 {
		*m = Map{}
		return nil
	}
	out := Map{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("jsonmap: unmarshal: %w", err)
	}
	*m = out
	return nil
}

// With returns a shallow copy of m with k set to v (convenience for
// annotating events without mutating a caller's map).
func (m Map) With(k string, v any) Map {
	out := make(Map, len(m)+1)
	for key, val := range m {
		out[key] = val
	}
	out[k] = v
	return out
}
