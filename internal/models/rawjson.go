// internal/models/rawjson.go
package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// RawJSON holds a JSON-encoded catalog field. Stores hand these back either as
// a JSON document or as a JSON string wrapping a document; both decode the same.
type RawJSON []byte

// Scan implements sql.Scanner for json/jsonb/text columns.
func (r *RawJSON) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*r = nil
	case []byte:
		*r = append((*r)[:0], v...)
	case string:
		*r = RawJSON(v)
	default:
		return fmt.Errorf("unsupported type %T for RawJSON", src)
	}
	return nil
}

// Value implements driver.Valuer.
func (r RawJSON) Value() (driver.Value, error) {
	if len(r) == 0 {
		return nil, nil
	}
	return []byte(r), nil
}

func (r RawJSON) MarshalJSON() ([]byte, error) {
	if len(r) == 0 || !json.Valid(r) {
		return []byte("null"), nil
	}
	return []byte(r), nil
}

func (r *RawJSON) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*r = nil
		return nil
	}
	*r = append((*r)[:0], data...)
	return nil
}

// Decode unwraps r into v. A JSON string is decoded a second time so that
// double-encoded columns parse. It returns false when nothing usable is present.
func (r RawJSON) Decode(v interface{}) bool {
	data := bytes.TrimSpace(r)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return false
	}
	if data[0] == '"' {
		var inner string
		if err := json.Unmarshal(data, &inner); err != nil {
			return false
		}
		data = bytes.TrimSpace([]byte(inner))
		if len(data) == 0 {
			return false
		}
	}
	return json.Unmarshal(data, v) == nil
}
