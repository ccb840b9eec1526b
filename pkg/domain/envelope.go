package domain

import (
	"encoding/json"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// Envelope is the uniform result returned from action logic. Exactly one
// of data/errors is primary depending on the success flag, but both are
// always present (possibly empty), so callers can rely on non-nil maps.
type Envelope struct {
	success bool
	data    map[string]any
	errors  map[string]any
}

// Success builds a successful envelope carrying data (nil for none).
func Success(data map[string]any) *Envelope {
	return &Envelope{success: true, data: ensureMap(data), errors: map[string]any{}}
}

// Failure builds an unsuccessful envelope carrying errs plus optional
// auxiliary data. Either map may be nil.
func Failure(errs, data map[string]any) *Envelope {
	return &Envelope{success: false, data: ensureMap(data), errors: ensureMap(errs)}
}

func ensureMap(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}

// Successful reports whether the envelope carries a success result.
func (e *Envelope) Successful() bool { return e.success }

// Unsuccessful is the logical complement of Successful.
func (e *Envelope) Unsuccessful() bool { return !e.success }

// Data returns the full data mapping.
func (e *Envelope) Data() map[string]any { return e.data }

// DataAt resolves a dotted path through nested mappings and returns the
// addressed value, or nil when any path segment does not resolve. It never
// panics.
func (e *Envelope) DataAt(path string) any {
	if path == "" {
		return e.data
	}
	var current any = e.data
	for _, seg := range strings.Split(path, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil
		}
		current, ok = m[seg]
		if !ok {
			return nil
		}
	}
	return current
}

// DecodeData decodes the value at the dotted path (or the whole data
// mapping for an empty path) into out using mapstructure tags.
func (e *Envelope) DecodeData(path string, out any) error {
	value := e.DataAt(path)
	if value == nil {
		value = map[string]any{}
	}
	return mapstructure.Decode(value, out)
}

// Errors returns the errors mapping verbatim.
func (e *Envelope) Errors() map[string]any { return e.errors }

type envelopeJSON struct {
	Success bool           `json:"success"`
	Data    map[string]any `json:"data"`
	Errors  map[string]any `json:"errors"`
}

// MarshalJSON serializes the envelope with stable field names for wire
// adapters.
func (e *Envelope) MarshalJSON() ([]byte, error) {
	return json.Marshal(envelopeJSON{Success: e.success, Data: e.data, Errors: e.errors})
}

// UnmarshalJSON restores an envelope serialized by MarshalJSON.
func (e *Envelope) UnmarshalJSON(b []byte) error {
	var raw envelopeJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	e.success = raw.Success
	e.data = ensureMap(raw.Data)
	e.errors = ensureMap(raw.Errors)
	return nil
}
