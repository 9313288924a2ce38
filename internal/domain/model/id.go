package model

import (
	"bytes"
	"encoding/json"
	"errors"
)

// ErrInvalidID is returned when an id is neither a JSON string nor a number.
var ErrInvalidID = errors.New("id must be a string or a number")

// FlexID accepts ids sent either as JSON numbers or strings and keeps them as
// text. The backend is not consistent about it.
type FlexID string

// UnmarshalJSON implements json.Unmarshaler.
func (id *FlexID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = FlexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return ErrInvalidID
	}
	*id = FlexID(n.String())
	return nil
}

// String returns the id text.
func (id FlexID) String() string { return string(id) }
