package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Pagination is the optional paging block returned by the PHP APIs.
type Pagination struct {
	TotalRows      int  `json:"total_rows"`
	ReturnedRows   int  `json:"returned_rows"`
	Limit          int  `json:"limit"`
	Offset         int  `json:"offset"`
	CurrentPage    int  `json:"current_page"`
	TotalPages     int  `json:"total_pages"`
	HasNext        bool `json:"has_next"`
	HasPrevious    bool `json:"has_previous"`
	NextOffset     *int `json:"next_offset"`
	PreviousOffset *int `json:"previous_offset"`
}

// Envelope is the response shape shared by the upstream and blog store APIs.
type Envelope[T any] struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message,omitempty"`
	Data       Records[T]  `json:"data"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// Records normalizes a `data` field that may hold a single object, an array
// of objects, or nothing at all.
type Records[T any] []T

// UnmarshalJSON implements json.Unmarshaler.
func (r *Records[T]) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || bytes.Equal(b, []byte("null")):
		*r = nil
		return nil
	case b[0] == '[':
		var list []T
		if err := json.Unmarshal(b, &list); err != nil {
			return fmt.Errorf("decode data list: %w", err)
		}
		*r = list
		return nil
	case b[0] == '{':
		var one T
		if err := json.Unmarshal(b, &one); err != nil {
			return fmt.Errorf("decode data object: %w", err)
		}
		*r = Records[T]{one}
		return nil
	}
	return fmt.Errorf("unexpected data payload %.20q", b)
}

// RecordKey is an identifier the store may encode as a JSON number or string.
type RecordKey string

// UnmarshalJSON implements json.Unmarshaler.
func (k *RecordKey) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*k = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*k = RecordKey(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("decode id: %w", err)
	}
	*k = RecordKey(n.String())
	return nil
}

// Int returns the key as an integer when it is numeric.
func (k RecordKey) Int() (int, bool) {
	n, err := strconv.Atoi(string(k))
	return n, err == nil
}

func (k RecordKey) String() string {
	return string(k)
}
