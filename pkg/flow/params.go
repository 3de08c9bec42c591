package flow

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/aretw0/weft/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// decodeParams decodes node parameters into out. Fields absent from params
// keep the values already set on out, so callers pre-fill defaults.
func decodeParams(params map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
		TagName:          "mapstructure",
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(params); err != nil {
		return fmt.Errorf("invalid parameters: %w", err)
	}
	return nil
}

// itemSource is the sequence input shared by the iterating nodes:
// either a literal array or the key of an array held in the Store.
type itemSource struct {
	Items    any    `mapstructure:"items"`
	InputKey string `mapstructure:"inputKey"`
}

func (s itemSource) resolve(store *domain.Store) ([]any, error) {
	raw := s.Items
	if raw == nil && s.InputKey != "" {
		raw, _ = store.Get(s.InputKey)
	}
	items, ok := toSlice(raw)
	if !ok {
		return nil, fmt.Errorf("value is not an array (got %T)", raw)
	}
	return items, nil
}

// toSlice converts any slice or array value into []any.
func toSlice(v any) ([]any, bool) {
	if items, ok := v.([]any); ok {
		return items, true
	}
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// itemParams merges the static processor parameters with the per-item values.
func itemParams(base map[string]any, item any, index int) map[string]any {
	out := make(map[string]any, len(base)+2)
	for k, v := range base {
		out[k] = v
	}
	out[domain.KeyCurrentItem] = item
	out[domain.KeyCurrentIndex] = index
	return out
}

// numeric reports the float value of v when v has a numeric Go type.
func numeric(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// toNumber coerces v to a number: numeric types, numeric strings and booleans.
func toNumber(v any) (float64, bool) {
	if f, ok := numeric(v); ok {
		return f, !math.IsNaN(f)
	}
	switch x := v.(type) {
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return f, err == nil
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

// normalizeNumber returns an int for whole values so stored counters stay integral.
func normalizeNumber(f float64) any {
	if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		return int(f)
	}
	return f
}

// stringify renders a store value the way case tables are written.
func stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	}
	if f, ok := numeric(v); ok {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct:
		if b, err := json.Marshal(v); err == nil {
			return string(b)
		}
	}
	return fmt.Sprint(v)
}

// truthy follows the usual dynamic-language rules: nil, false, 0, NaN and ""
// are false; everything else is true.
func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	}
	if f, ok := numeric(v); ok {
		return f != 0 && !math.IsNaN(f)
	}
	return true
}

func logTo(ec *domain.ExecutionContext, msg string, args ...any) {
	if ec.Log != nil {
		ec.Log(msg, args...)
	}
}
