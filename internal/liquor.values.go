package internal

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Undefined is the value of a lookup that found nothing. It is distinct from
// nil (an explicit nil literal or nil data), though both render as empty text
// and are falsy.
type Undefined struct{}

// String renders Undefined as empty text
func (Undefined) String() string { return "" }

// emptyValue and blankValue back the "empty" and "blank" comparison literals
type emptyValue struct{}
type blankValue struct{}

func (emptyValue) String() string { return "" }
func (blankValue) String() string { return "" }

// Sentinels for the empty and blank literals
var (
	Empty = emptyValue{}
	Blank = blankValue{}
)

// ValueKind classifies a value into the template value model
type ValueKind int

// Value kind constants
const (
	KindNil ValueKind = iota
	KindUndefined
	KindBoolean
	KindNumber
	KindText
	KindArray
	KindMap
	KindOther
)

// Value kind names
const (
	KindNameNil       = "nil"
	KindNameUndefined = "undefined"
	KindNameBoolean   = "boolean"
	KindNameNumber    = "number"
	KindNameText      = "text"
	KindNameArray     = "array"
	KindNameMap       = "map"
	KindNameOther     = "other"
)

// String returns the kind name
func (k ValueKind) String() string {
	switch k {
	case KindNil:
		return KindNameNil
	case KindUndefined:
		return KindNameUndefined
	case KindBoolean:
		return KindNameBoolean
	case KindNumber:
		return KindNameNumber
	case KindText:
		return KindNameText
	case KindArray:
		return KindNameArray
	case KindMap:
		return KindNameMap
	default:
		return KindNameOther
	}
}

// Text constants for coercion
const (
	StrTrue  = "true"
	StrFalse = "false"
)

// KindOf classifies any Go value into the template value model
func KindOf(v any) ValueKind {
	switch v.(type) {
	case nil:
		return KindNil
	case Undefined:
		return KindUndefined
	case bool:
		return KindBoolean
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return KindNumber
	case string:
		return KindText
	case []any, []string:
		return KindArray
	case map[string]any, map[string]string:
		return KindMap
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return KindArray
	case reflect.Map:
		return KindMap
	case reflect.Ptr:
		if rv.IsNil() {
			return KindNil
		}
	}
	return KindOther
}

// IsUndefined reports whether v is the Undefined sentinel
func IsUndefined(v any) bool {
	_, ok := v.(Undefined)
	return ok
}

// IsNilish reports whether v is nil or Undefined
func IsNilish(v any) bool {
	k := KindOf(v)
	return k == KindNil || k == KindUndefined
}

// ToText converts a value to its text form. Nil and Undefined become empty
// text, booleans "true"/"false", numbers their shortest decimal form, arrays
// the concatenation of their elements and maps JSON.
func ToText(v any) string {
	switch val := v.(type) {
	case nil, Undefined, emptyValue, blankValue:
		return ""
	case string:
		return val
	case bool:
		if val {
			return StrTrue
		}
		return StrFalse
	case int:
		return strconv.Itoa(val)
	case float64:
		return formatFloat(val)
	case []any:
		var sb strings.Builder
		for _, item := range val {
			sb.WriteString(ToText(item))
		}
		return sb.String()
	case []string:
		return strings.Join(val, "")
	case fmt.Stringer:
		return val.String()
	case error:
		return val.Error()
	}

	if n, ok := ToNumber(v); ok && KindOf(v) == KindNumber {
		if n == math.Trunc(n) && math.Abs(n) < 1e15 {
			return strconv.FormatInt(int64(n), 10)
		}
		return formatFloat(n)
	}

	switch KindOf(v) {
	case KindNil:
		return ""
	case KindArray:
		return ToText(ToList(v))
	case KindMap:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(data)
	}
	return fmt.Sprintf("%v", v)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// IsTruthy applies template truthiness: only nil, Undefined and false are
// falsy. Empty strings and zero are truthy.
func IsTruthy(v any) bool {
	switch val := v.(type) {
	case nil, Undefined, emptyValue, blankValue:
		return false
	case bool:
		return val
	}
	return KindOf(v) != KindNil
}

// ToNumber converts a value to float64. Text is parsed; the bool result is
// false when no numeric reading exists.
func ToNumber(v any) (float64, bool) {
	switch val := v.(type) {
	case int:
		return float64(val), true
	case float64:
		return val, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	case nil, Undefined, bool:
		return 0, false
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}

// ToInt converts a value to int, truncating decimals
func ToInt(v any) (int, bool) {
	if i, ok := v.(int); ok {
		return i, true
	}
	f, ok := ToNumber(v)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int(f), true
}

// isIntegral reports whether v holds an integer kind
func isIntegral(v any) bool {
	switch reflect.ValueOf(v).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	if s, ok := v.(string); ok {
		_, err := strconv.Atoi(strings.TrimSpace(s))
		return err == nil
	}
	return false
}

// AsArray returns the elements of an array value
func AsArray(v any) ([]any, bool) {
	switch val := v.(type) {
	case []any:
		return val, true
	case []string:
		out := make([]any, len(val))
		for i, s := range val {
			out[i] = s
		}
		return out, true
	case nil, Undefined, string:
		return nil, false
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// ToList converts a value to a list for array filters: nil and Undefined
// give an empty list, arrays their elements and anything else a one-element
// list.
func ToList(v any) []any {
	if IsNilish(v) {
		return []any{}
	}
	if arr, ok := AsArray(v); ok {
		return arr
	}
	return []any{v}
}

// Iterate returns the sequence a for loop walks: array elements in order,
// or [key, value] pairs of a map ordered by key. Other values, text
// included, are not iterable.
func Iterate(v any) ([]any, bool) {
	if arr, ok := AsArray(v); ok {
		return arr, true
	}
	if KindOf(v) != KindMap {
		return nil, false
	}

	rv := reflect.ValueOf(v)
	keys := rv.MapKeys()
	sort.Slice(keys, func(i, j int) bool {
		return ToText(keys[i].Interface()) < ToText(keys[j].Interface())
	})
	out := make([]any, len(keys))
	for i, k := range keys {
		out[i] = []any{ToText(k.Interface()), rv.MapIndex(k).Interface()}
	}
	return out, true
}

// Length returns the size of text (in characters), arrays and maps
func Length(v any) int {
	if s, ok := v.(string); ok {
		return utf8.RuneCountInString(s)
	}
	switch KindOf(v) {
	case KindArray, KindMap:
		return reflect.ValueOf(v).Len()
	}
	return 0
}

// Property accesses key on v. Maps are indexed by text key, arrays by
// integer index (negative counts from the end) and structs by exported
// field or json tag name. Collections and text also answer the virtual
// properties size, first and last. Any miss yields Undefined.
func Property(v any, key any) any {
	if IsNilish(v) {
		return Undefined{}
	}

	if name, ok := key.(string); ok {
		return namedProperty(v, name)
	}
	if idx, ok := ToInt(key); ok && (isIntegral(key) || isWholeFloat(key)) {
		if arr, isArr := AsArray(v); isArr {
			return indexArray(arr, idx)
		}
		return namedProperty(v, ToText(key))
	}
	return Undefined{}
}

func isWholeFloat(v any) bool {
	f, ok := v.(float64)
	return ok && !math.IsInf(f, 0) && f == math.Trunc(f)
}

func namedProperty(v any, name string) any {
	switch val := v.(type) {
	case map[string]any:
		if item, ok := val[name]; ok {
			return item
		}
		if name == PropSize {
			return len(val)
		}
		return Undefined{}
	case string:
		return textProperty(val, name)
	}

	if arr, ok := AsArray(v); ok {
		switch name {
		case PropSize:
			return len(arr)
		case PropFirst:
			return indexArray(arr, 0)
		case PropLast:
			return indexArray(arr, -1)
		}
		return Undefined{}
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return Undefined{}
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() == reflect.String {
			item := rv.MapIndex(reflect.ValueOf(name).Convert(rv.Type().Key()))
			if item.IsValid() {
				return item.Interface()
			}
		}
		if name == PropSize {
			return rv.Len()
		}
	case reflect.Struct:
		return structField(rv, name)
	}
	return Undefined{}
}

func textProperty(s string, name string) any {
	switch name {
	case PropSize:
		return utf8.RuneCountInString(s)
	case PropFirst:
		r, size := utf8.DecodeRuneInString(s)
		if size == 0 {
			return Undefined{}
		}
		return string(r)
	case PropLast:
		r, size := utf8.DecodeLastRuneInString(s)
		if size == 0 {
			return Undefined{}
		}
		return string(r)
	}
	return Undefined{}
}

func structField(rv reflect.Value, name string) any {
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}
		tag := strings.Split(field.Tag.Get("json"), ",")[0]
		if field.Name == name || tag == name {
			return rv.Field(i).Interface()
		}
	}
	return Undefined{}
}

func indexArray(arr []any, idx int) any {
	if idx < 0 {
		idx += len(arr)
	}
	if idx < 0 || idx >= len(arr) {
		return Undefined{}
	}
	return arr[idx]
}

// IsEmptyValue reports whether v equals the empty literal: empty text,
// an empty array or an empty map
func IsEmptyValue(v any) bool {
	switch val := v.(type) {
	case string:
		return val == ""
	case emptyValue:
		return true
	}
	switch KindOf(v) {
	case KindArray, KindMap:
		return Length(v) == 0
	}
	return false
}

// IsBlankValue reports whether v equals the blank literal: nil, Undefined,
// false, whitespace-only text or an empty collection
func IsBlankValue(v any) bool {
	switch val := v.(type) {
	case nil, Undefined, blankValue, emptyValue:
		return true
	case bool:
		return !val
	case string:
		return strings.TrimFunc(val, unicode.IsSpace) == ""
	}
	return IsEmptyValue(v)
}

// Equal compares two values with template semantics. Numbers compare by
// value across Go types; nil equals Undefined.
func Equal(a, b any) bool {
	if _, ok := b.(emptyValue); ok {
		return IsEmptyValue(a)
	}
	if _, ok := a.(emptyValue); ok {
		return IsEmptyValue(b)
	}
	if _, ok := b.(blankValue); ok {
		return IsBlankValue(a)
	}
	if _, ok := a.(blankValue); ok {
		return IsBlankValue(b)
	}

	ka, kb := KindOf(a), KindOf(b)
	if (ka == KindNil || ka == KindUndefined) && (kb == KindNil || kb == KindUndefined) {
		return true
	}
	if ka != kb {
		return false
	}

	switch ka {
	case KindNumber:
		fa, _ := ToNumber(a)
		fb, _ := ToNumber(b)
		return fa == fb
	case KindText:
		return a.(string) == b.(string)
	case KindBoolean:
		return a.(bool) == b.(bool)
	case KindArray:
		arrA, _ := AsArray(a)
		arrB, _ := AsArray(b)
		if len(arrA) != len(arrB) {
			return false
		}
		for i := range arrA {
			if !Equal(arrA[i], arrB[i]) {
				return false
			}
		}
		return true
	}
	return reflect.DeepEqual(a, b)
}

// Compare orders two numbers or two texts. The bool result is false when
// the values are not comparable.
func Compare(a, b any) (int, bool) {
	if KindOf(a) == KindNumber && KindOf(b) == KindNumber {
		fa, _ := ToNumber(a)
		fb, _ := ToNumber(b)
		switch {
		case fa < fb:
			return -1, true
		case fa > fb:
			return 1, true
		}
		return 0, true
	}
	sa, okA := a.(string)
	sb, okB := b.(string)
	if okA && okB {
		return strings.Compare(sa, sb), true
	}
	return 0, false
}

// Contains implements the contains operator: substring for text, element
// membership for arrays and key membership for maps
func Contains(container, item any) bool {
	if s, ok := container.(string); ok {
		return strings.Contains(s, ToText(item))
	}
	if arr, ok := AsArray(container); ok {
		for _, el := range arr {
			if Equal(el, item) {
				return true
			}
		}
		return false
	}
	if KindOf(container) == KindMap {
		return !IsUndefined(Property(container, ToText(item)))
	}
	return false
}
