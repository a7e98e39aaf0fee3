package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Bool decodes the booleans the PHP backend emits: true/false, 1/0, "1"/"0",
// "true"/"false". null and "" decode to false.
type Bool bool

func (b *Bool) UnmarshalJSON(data []byte) error {
	s := string(bytes.TrimSpace(data))
	if unq, err := strconv.Unquote(s); err == nil {
		s = unq
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1":
		*b = true
	case "false", "0", "", "null":
		*b = false
	default:
		return fmt.Errorf("models: invalid boolean %s", data)
	}
	return nil
}

func (b Bool) MarshalJSON() ([]byte, error) { return json.Marshal(bool(b)) }

// FormValue is the representation sent back in mutation bodies.
func (b Bool) FormValue() string {
	if b {
		return "1"
	}
	return "0"
}

// Int decodes numbers and numeric strings. null and "" decode to 0.
type Int int

func (n *Int) UnmarshalJSON(data []byte) error {
	s := string(bytes.TrimSpace(data))
	if unq, err := strconv.Unquote(s); err == nil {
		s = strings.TrimSpace(unq)
	}
	if s == "" || s == "null" {
		*n = 0
		return nil
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("models: invalid integer %s", data)
	}
	*n = Int(i)
	return nil
}

func (n Int) MarshalJSON() ([]byte, error) { return json.Marshal(int(n)) }

// Float decodes numbers and numeric strings ("1500.00"). null and "" decode to 0.
type Float float64

func (f *Float) UnmarshalJSON(data []byte) error {
	s := string(bytes.TrimSpace(data))
	if unq, err := strconv.Unquote(s); err == nil {
		s = strings.TrimSpace(unq)
	}
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("models: invalid number %s", data)
	}
	*f = Float(v)
	return nil
}

func (f Float) MarshalJSON() ([]byte, error) { return json.Marshal(float64(f)) }
