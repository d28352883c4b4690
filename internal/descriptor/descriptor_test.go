package descriptor

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"
)

// testDescriptorJSON builds a JSON array of n copies of value.
func testDescriptorJSON(n int, value float64) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("%g", value)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func TestParse_ValidArray(t *testing.T) {
	v := NewValidator(128, 1.0)

	got, err := v.Parse(json.RawMessage(testDescriptorJSON(128, 0.1)))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if len(got) != 128 {
		t.Fatalf("expected 128 elements, got %d", len(got))
	}
	for i, val := range got {
		if val != 0.1 {
			t.Fatalf("element %d changed: got %f, want 0.1", i, val)
		}
	}
}

func TestParse_StringifiedArray(t *testing.T) {
	v := NewValidator(128, 1.0)

	quoted, err := json.Marshal(testDescriptorJSON(128, -0.5))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	got, err := v.Parse(quoted)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if len(got) != 128 {
		t.Fatalf("expected 128 elements, got %d", len(got))
	}
}

func TestParse_Malformed(t *testing.T) {
	v := NewValidator(128, 1.0)

	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"object", `{"a": 1}`},
		{"number", `42`},
		{"string array", `["a", "b"]`},
		{"invalid json string", `"not json"`},
		{"null", `null`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Parse(json.RawMessage(tt.raw))
			if !errors.Is(err, ErrMalformed) && !errors.Is(err, ErrWrongLength) {
				t.Errorf("expected ErrMalformed or ErrWrongLength, got %v", err)
			}
			if tt.name != "null" && !errors.Is(err, ErrMalformed) {
				t.Errorf("expected ErrMalformed, got %v", err)
			}
		})
	}
}

func TestParse_WrongLength(t *testing.T) {
	v := NewValidator(128, 1.0)

	for _, n := range []int{0, 1, 127, 129, 512} {
		t.Run(fmt.Sprintf("len_%d", n), func(t *testing.T) {
			_, err := v.Parse(json.RawMessage(testDescriptorJSON(n, 0.1)))
			if !errors.Is(err, ErrWrongLength) {
				t.Errorf("expected ErrWrongLength for length %d, got %v", n, err)
			}
		})
	}
}

func TestValidate_OutOfRange(t *testing.T) {
	v := NewValidator(4, 1.0)

	tests := []struct {
		name   string
		values []float64
	}{
		{"above bound", []float64{0.1, 0.2, 1.5, 0.3}},
		{"below bound", []float64{-1.5, 0.2, 0.3, 0.4}},
		{"nan", []float64{0.1, math.NaN(), 0.3, 0.4}},
		{"positive inf", []float64{0.1, 0.2, math.Inf(1), 0.4}},
		{"negative inf", []float64{0.1, 0.2, 0.3, math.Inf(-1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Validate(tt.values)
			if !errors.Is(err, ErrOutOfRange) {
				t.Errorf("expected ErrOutOfRange, got %v", err)
			}
		})
	}
}

func TestValidate_BoundaryValues(t *testing.T) {
	v := NewValidator(2, 1.0)

	got, err := v.Validate([]float64{-1.0, 1.0})
	if err != nil {
		t.Fatalf("boundary values should be accepted: %v", err)
	}
	if got[0] != -1.0 || got[1] != 1.0 {
		t.Errorf("boundary values changed: got %v", got)
	}
}

func TestValidate_PassThrough(t *testing.T) {
	v := NewValidator(3, 1.0)
	in := []float64{0.25, -0.5, 0.75}

	got, err := v.Validate(in)
	if err != nil {
		t.Fatalf("Validate error: %v", err)
	}
	for i := range in {
		if float64(got[i]) != in[i] {
			t.Errorf("element %d changed: got %f, want %f", i, got[i], in[i])
		}
	}
}
