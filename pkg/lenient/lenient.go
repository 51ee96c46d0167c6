// Package lenient decodes JSON fields that the RuleKeeper backend serializes
// inconsistently. Booleans may arrive as 0/1 or strings, and list columns
// may arrive either as a JSON array or as an already serialized string.
//
// Decoding never fails on an unexpected shape: it degrades to false for
// booleans and "[]" for array text.
package lenient

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// EmptyArray is the array text used for null or unrecognized values.
const EmptyArray = "[]"

// BoolValue coerces a generic JSON value into a bool.
//
// Numbers are true when non-zero. Strings are true only for "true"
// (any case) or "1", so the string "2" is false while the number 2 is true.
func BoolValue(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case json.Number:
		f, err := t.Float64()
		return err == nil && f != 0
	case float64:
		return t != 0
	case int:
		return t != 0
	case int64:
		return t != 0
	case string:
		return strings.EqualFold(t, "true") || t == "1"
	default:
		return false
	}
}

// ArrayStringValue coerces a generic JSON value into JSON array text.
// Strings pass through unchanged. Arrays keep their string, number and
// bool elements (as text) and drop everything else.
func ArrayStringValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []any:
		items := make([]string, 0, len(t))
		for _, el := range t {
			switch e := el.(type) {
			case string:
				items = append(items, e)
			case json.Number:
				items = append(items, e.String())
			case float64:
				items = append(items, strconv.FormatFloat(e, 'f', -1, 64))
			case bool:
				items = append(items, strconv.FormatBool(e))
			}
		}
		return marshalItems(items)
	default:
		return EmptyArray
	}
}

// decodeValue parses raw into a generic value, keeping numbers exact.
// Invalid input yields nil, which both coercions map to their default.
func decodeValue(raw []byte) any {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil
	}
	return v
}

func marshalItems(items []string) string {
	if items == nil {
		items = []string{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return EmptyArray
	}
	return string(data)
}

// Bool is a boolean field that tolerates integer and string encodings.
type Bool bool

// UnmarshalJSON implements json.Unmarshaler.
func (b *Bool) UnmarshalJSON(data []byte) error {
	*b = Bool(BoolValue(decodeValue(data)))
	return nil
}

// MarshalJSON writes a native JSON boolean.
func (b Bool) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatBool(bool(b))), nil
}

// ArrayString holds JSON array text for a field the backend stores either
// as an array or as a serialized string. A field absent from the payload
// never reaches UnmarshalJSON and stays "", so read it through String or
// Items rather than converting it directly.
type ArrayString string

// NewArrayString builds array text from items.
func NewArrayString(items ...string) ArrayString {
	return ArrayString(marshalItems(items))
}

// UnmarshalJSON implements json.Unmarshaler.
func (a *ArrayString) UnmarshalJSON(data []byte) error {
	*a = ArrayString(ArrayStringValue(decodeValue(data)))
	return nil
}

// MarshalJSON writes the text as a JSON string, unchanged. Callers that
// set the field by hand must keep it valid array text.
func (a ArrayString) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(a))
}

// Items parses the text back into its elements. Empty text, as left by an
// absent field, and text that is not a JSON array of strings yield nil.
func (a ArrayString) Items() []string {
	if a == "" {
		return nil
	}
	v := decodeValue([]byte(a))
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	var items []string
	if err := json.Unmarshal([]byte(ArrayStringValue(arr)), &items); err != nil {
		return nil
	}
	return items
}

// String returns the array text, with empty text read as EmptyArray.
func (a ArrayString) String() string {
	if a == "" {
		return EmptyArray
	}
	return string(a)
}
