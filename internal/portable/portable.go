// Package portable converts analysis output into plain serializable
// scalars. Numeric-library values and struct wrappers never cross into
// storage or API payloads directly; everything is walked down to plain
// ints, floats, strings and bools first. Float versus integer
// classification is preserved exactly.
package portable

import (
	"fmt"
	"math"
	"reflect"
	"strings"
)

// Scalars recursively normalizes v. Maps and slices are rebuilt with
// normalized leaves, structs become map[string]any keyed by JSON tag,
// and non-finite floats collapse to 0 so the result always serializes.
// Applying Scalars to an already-normalized value returns an equal
// value.
func Scalars(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case bool, string:
		return val
	case int:
		return val
	case int8:
		return int(val)
	case int16:
		return int(val)
	case int32:
		return int(val)
	case int64:
		return int(val)
	case uint:
		return int(val)
	case uint8:
		return int(val)
	case uint16:
		return int(val)
	case uint32:
		return int(val)
	case uint64:
		return int(val)
	case float64:
		return finite(val)
	case float32:
		return finite(float64(val))
	case map[string]any:
		result := make(map[string]any, len(val))
		for k, item := range val {
			result[k] = Scalars(item)
		}
		return result
	case []any:
		result := make([]any, len(val))
		for i, item := range val {
			result[i] = Scalars(item)
		}
		return result
	case []float64:
		result := make([]any, len(val))
		for i, item := range val {
			result[i] = finite(item)
		}
		return result
	case []int:
		result := make([]any, len(val))
		for i, item := range val {
			result[i] = item
		}
		return result
	case []string:
		result := make([]any, len(val))
		for i, item := range val {
			result[i] = item
		}
		return result
	default:
		return scalarsReflect(v)
	}
}

// scalarsReflect handles structs, typed maps/slices and pointers that
// the fast paths above do not cover.
func scalarsReflect(v any) any {
	val := reflect.ValueOf(v)
	if val.Kind() == reflect.Ptr {
		if val.IsNil() {
			return nil
		}
		val = val.Elem()
	}

	switch val.Kind() {
	case reflect.Struct:
		result := make(map[string]any)
		typ := val.Type()
		for i := 0; i < val.NumField(); i++ {
			field := val.Field(i)
			fieldType := typ.Field(i)
			if !field.CanInterface() {
				continue
			}
			name := fieldType.Name
			if tag := fieldType.Tag.Get("json"); tag != "" && tag != "-" {
				if parts := strings.Split(tag, ","); parts[0] != "" {
					name = parts[0]
				}
			}
			result[name] = Scalars(field.Interface())
		}
		return result
	case reflect.Slice, reflect.Array:
		result := make([]any, val.Len())
		for i := 0; i < val.Len(); i++ {
			result[i] = Scalars(val.Index(i).Interface())
		}
		return result
	case reflect.Map:
		result := make(map[string]any, val.Len())
		for _, key := range val.MapKeys() {
			result[fmt.Sprintf("%v", key.Interface())] = Scalars(val.MapIndex(key).Interface())
		}
		return result
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return int(val.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int(val.Uint())
	case reflect.Float32, reflect.Float64:
		return finite(val.Float())
	case reflect.Bool:
		return val.Bool()
	case reflect.String:
		return val.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

func finite(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0.0
	}
	return f
}
