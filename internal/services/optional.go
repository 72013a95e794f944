package services

import (
	"bytes"
	"encoding/json"
	"strings"
)

// OptionalString distinguishes an absent JSON field from an explicit
// clear. null and blank strings both clear the value.
type OptionalString struct {
	Set   bool
	Value *string
}

func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Set = true
	data = bytes.TrimSpace(data)
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	s = strings.TrimSpace(s)
	if s == "" {
		o.Value = nil
		return nil
	}
	o.Value = &s
	return nil
}

// Some returns a set OptionalString holding v.
func Some(v string) OptionalString {
	return OptionalString{Set: true, Value: &v}
}

type OptionalStrings struct {
	Set   bool
	Value []string
}

func (o *OptionalStrings) UnmarshalJSON(data []byte) error {
	o.Set = true
	data = bytes.TrimSpace(data)
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	var out []string
	if err := json.Unmarshal(data, &out); err != nil {
		return err
	}
	o.Value = out
	return nil
}

func applyOptional(updates map[string]interface{}, column string, o OptionalString) {
	if !o.Set {
		return
	}
	if o.Value == nil {
		updates[column] = nil
		return
	}
	updates[column] = *o.Value
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
