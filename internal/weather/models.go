package weather

import "strings"

// ProviderName identifies a provider; it is the registry key and part of the
// cache key.
type ProviderName string

// Location is one city resolved for one provider.
// Name is the display name, URL the provider-specific page for it.
type Location struct {
	Provider ProviderName `json:"provider"`
	Name     string       `json:"name"`
	URL      string       `json:"url"`
}

// Field is one labelled value in a Reading.
type Field struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Reading is the normalized result of a provider's parse step: labelled
// values in the order the provider produced them. Labels are provider-defined.
type Reading struct {
	fields []Field
}

// NewReading builds a Reading from label/value pairs.
func NewReading(fields ...Field) Reading {
	var r Reading
	for _, f := range fields {
		r.Set(f.Label, f.Value)
	}
	return r
}

// Set appends a field, or replaces the value of an existing label in place.
func (r *Reading) Set(label, value string) {
	for i := range r.fields {
		if r.fields[i].Label == label {
			r.fields[i].Value = value
			return
		}
	}
	r.fields = append(r.fields, Field{Label: label, Value: value})
}

// Get returns the value for label.
func (r Reading) Get(label string) (string, bool) {
	for _, f := range r.fields {
		if f.Label == label {
			return f.Value, true
		}
	}
	return "", false
}

// Fields returns a copy of the fields in insertion order.
func (r Reading) Fields() []Field {
	out := make([]Field, len(r.fields))
	copy(out, r.fields)
	return out
}

// Len returns the number of fields.
func (r Reading) Len() int {
	return len(r.fields)
}

func (r Reading) String() string {
	parts := make([]string, 0, len(r.fields))
	for _, f := range r.fields {
		parts = append(parts, f.Label+"="+f.Value)
	}
	return strings.Join(parts, ", ")
}
