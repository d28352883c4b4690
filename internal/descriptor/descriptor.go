// Package descriptor validates and compares facial descriptor vectors.
// A descriptor is the fixed-length real vector an external extractor produces
// for a face; closeness between descriptors approximates identity similarity.
package descriptor

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// Validation errors. Handlers map these to client-facing status codes.
var (
	// ErrMalformed means the raw value could not be normalized to a numeric array
	ErrMalformed = errors.New("descriptor is not a valid numeric array")
	// ErrWrongLength means the array does not have the configured dimension
	ErrWrongLength = errors.New("descriptor has wrong length")
	// ErrOutOfRange means an element is non-finite or outside the value bound
	ErrOutOfRange = errors.New("descriptor element out of range")
)

// Validator checks the shape and range of candidate descriptors.
type Validator struct {
	Dim   int     // required vector length
	Bound float64 // elements must lie in [-Bound, +Bound]
}

// NewValidator creates a validator for the given dimension and value bound.
func NewValidator(dim int, bound float64) *Validator {
	return &Validator{Dim: dim, Bound: bound}
}

// Parse normalizes a raw JSON value to a descriptor and validates it.
// The frontend sends descriptors either as a JSON array or as a JSON string
// containing an array, so both forms are accepted. A string that is not valid
// JSON is a structural error (ErrMalformed), as is any non-array value.
func (v *Validator) Parse(raw json.RawMessage) ([]float32, error) {
	if len(raw) == 0 {
		return nil, ErrMalformed
	}

	// Unwrap the stringified form first.
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		raw = json.RawMessage(asString)
	}

	var values []float64
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	return v.Validate(values)
}

// Validate checks a numeric sequence and returns it as a descriptor.
// The input passes through unchanged on success.
func (v *Validator) Validate(values []float64) ([]float32, error) {
	if len(values) != v.Dim {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrWrongLength, len(values), v.Dim)
	}

	out := make([]float32, v.Dim)
	for i, val := range values {
		if math.IsNaN(val) || math.IsInf(val, 0) || val < -v.Bound || val > v.Bound {
			return nil, fmt.Errorf("%w: element %d", ErrOutOfRange, i)
		}
		out[i] = float32(val)
	}
	return out, nil
}
