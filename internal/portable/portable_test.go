package portable

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScalarsLeaves(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want any
	}{
		{"nil", nil, nil},
		{"bool", true, true},
		{"string", "hello", "hello"},
		{"int", 42, 42},
		{"int64", int64(42), 42},
		{"uint32", uint32(7), 7},
		{"float64", 3.5, 3.5},
		{"float32", float32(0.5), 0.5},
		{"nan", math.NaN(), 0.0},
		{"pos_inf", math.Inf(1), 0.0},
		{"neg_inf", math.Inf(-1), 0.0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Scalars(tc.in))
		})
	}
}

func TestScalarsPreservesIntFloatSplit(t *testing.T) {
	in := map[string]any{
		"pause_count": 4,
		"duration":    10.0,
		"speech_rate": 132.0,
	}

	out, ok := Scalars(in).(map[string]any)
	assert.True(t, ok)

	_, isInt := out["pause_count"].(int)
	assert.True(t, isInt, "integer metrics must stay integers")

	_, isFloat := out["duration"].(float64)
	assert.True(t, isFloat, "float metrics must stay floats")
}

func TestScalarsNestedContainers(t *testing.T) {
	in := map[string]any{
		"metrics": map[string]any{
			"values": []float64{1.5, math.NaN(), 2.5},
			"counts": []int{1, 2, 3},
		},
		"labels": []string{"a", "b"},
		"mixed":  []any{int64(9), float32(0.25), "x"},
	}

	out := Scalars(in).(map[string]any)
	metrics := out["metrics"].(map[string]any)

	assert.Equal(t, []any{1.5, 0.0, 2.5}, metrics["values"])
	assert.Equal(t, []any{1, 2, 3}, metrics["counts"])
	assert.Equal(t, []any{"a", "b"}, out["labels"])
	assert.Equal(t, []any{9, 0.25, "x"}, out["mixed"])
}

func TestScalarsStruct(t *testing.T) {
	type inner struct {
		Score float64 `json:"score"`
	}
	type outer struct {
		Title    string  `json:"title"`
		Attempts int64   `json:"attempts"`
		Rate     float64 `json:"rate,omitempty"`
		Skipped  string  `json:"-"`
		Untagged bool
		Nested   *inner `json:"nested"`
	}

	in := outer{
		Title:    "practice",
		Attempts: 3,
		Rate:     math.Inf(1),
		Skipped:  "secret",
		Untagged: true,
		Nested:   &inner{Score: 7.5},
	}

	out := Scalars(in).(map[string]any)

	assert.Equal(t, "practice", out["title"])
	assert.Equal(t, 3, out["attempts"])
	assert.Equal(t, 0.0, out["rate"])
	assert.Equal(t, true, out["Untagged"])
	assert.Equal(t, map[string]any{"score": 7.5}, out["nested"])
}

func TestScalarsNilPointer(t *testing.T) {
	var p *struct{ X int }
	assert.Nil(t, Scalars(p))
}

func TestScalarsTypedMap(t *testing.T) {
	in := map[string]float64{"energy": 0.25, "pitch": math.NaN()}
	out := Scalars(in).(map[string]any)

	assert.Equal(t, 0.25, out["energy"])
	assert.Equal(t, 0.0, out["pitch"])
}

func TestScalarsIdempotent(t *testing.T) {
	in := map[string]any{
		"duration":    10.0,
		"pause_count": 4,
		"nested":      []any{1, 2.5, "x", nil},
	}

	once := Scalars(in)
	twice := Scalars(once)
	assert.Equal(t, once, twice)
}
