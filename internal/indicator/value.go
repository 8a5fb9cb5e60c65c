package indicator

import "encoding/json"

// Value is an indicator result that may be unavailable when the series
// is too short. It marshals to a JSON number, or null when unavailable,
// so renderers can distinguish "no value" from zero.
type Value struct {
	V  float64
	OK bool
}

// Avail wraps a raw (value, ok) indicator return.
func Avail(v float64, ok bool) Value {
	return Value{V: v, OK: ok}
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.OK {
		return []byte("null"), nil
	}
	return json.Marshal(v.V)
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = Value{}
		return nil
	}
	if err := json.Unmarshal(data, &v.V); err != nil {
		return err
	}
	v.OK = true
	return nil
}
