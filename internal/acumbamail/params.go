package acumbamail

import (
	"fmt"
	"net/url"
	"reflect"
	"sort"
	"strconv"
)

// Params holds the parameters of a single API call. Values may be scalars or
// maps/slices; the latter are flattened by EncodeParams.
type Params map[string]any

// EncodeParams builds the form/query values for a call. The auth token is always
// present, scalars are stringified as-is and object-valued parameters are
// flattened to key[nestedKey]=value, e.g. {"lists": {0: "L1"}} becomes lists[0]=L1.
// The API silently rejects any other shape for array parameters.
func EncodeParams(authToken string, params Params) url.Values {
	values := url.Values{}
	values.Set("auth_token", authToken)

	keys := make([]string, 0, len(params))
	for k := range params {
		if k == "auth_token" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		flatten(values, k, params[k])
	}
	return values
}

func flatten(values url.Values, key string, v any) {
	switch val := v.(type) {
	case nil:
		return
	case string:
		values.Add(key, val)
		return
	case []byte:
		values.Add(key, string(val))
		return
	case fmt.Stringer:
		values.Add(key, val.String())
		return
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return
		}
		flatten(values, key, rv.Elem().Interface())
	case reflect.Map:
		mapKeys := rv.MapKeys()
		sort.Slice(mapKeys, func(i, j int) bool { return lessKey(mapKeys[i], mapKeys[j]) })
		for _, mk := range mapKeys {
			flatten(values, fmt.Sprintf("%s[%v]", key, mk.Interface()), rv.MapIndex(mk).Interface())
		}
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			flatten(values, fmt.Sprintf("%s[%d]", key, i), rv.Index(i).Interface())
		}
	default:
		values.Add(key, scalarString(v))
	}
}

func scalarString(v any) string {
	switch val := v.(type) {
	case bool:
		return strconv.FormatBool(val)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprint(val)
	}
}

// lessKey orders integer map keys numerically so lists[2] comes before lists[10].
func lessKey(a, b reflect.Value) bool {
	if isInt(a) && isInt(b) {
		return a.Int() < b.Int()
	}
	return fmt.Sprint(a.Interface()) < fmt.Sprint(b.Interface())
}

func isInt(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	}
	return false
}
