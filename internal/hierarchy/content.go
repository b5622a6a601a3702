package hierarchy

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"sort"
	"strconv"
)

// Kind identifies the variant held by a Content value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Content is an opaque, JSON-shaped component payload. Values are immutable:
// constructors copy their inputs and there are no mutators, so snapshots can
// share them freely. The zero value is null.
type Content struct {
	kind    Kind
	boolean bool
	number  json.Number
	str     string
	items   []Content
	fields  map[string]Content
}

func Null() Content { return Content{} }

func Bool(v bool) Content { return Content{kind: KindBool, boolean: v} }

func Number(v json.Number) Content { return Content{kind: KindNumber, number: v} }

func Int(v int64) Content { return Number(json.Number(strconv.FormatInt(v, 10))) }

func Float(v float64) Content {
	return Number(json.Number(strconv.FormatFloat(v, 'g', -1, 64)))
}

func String(v string) Content { return Content{kind: KindString, str: v} }

func Array(items ...Content) Content {
	copied := make([]Content, len(items))
	copy(copied, items)
	return Content{kind: KindArray, items: copied}
}

func Object(fields map[string]Content) Content {
	copied := make(map[string]Content, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	return Content{kind: KindObject, fields: copied}
}

// ParseContent decodes a JSON document into a Content value.
func ParseContent(data []byte) (Content, error) {
	var c Content
	if err := json.Unmarshal(data, &c); err != nil {
		return Content{}, err
	}
	return c, nil
}

// FromValue converts the output of a generic JSON decode (nil, bool,
// float64, json.Number, string, []any, map[string]any).
func FromValue(v any) (Content, error) {
	switch t := v.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(t), nil
	case json.Number:
		return Number(t), nil
	case float64:
		return Float(t), nil
	case int:
		return Int(int64(t)), nil
	case int64:
		return Int(t), nil
	case string:
		return String(t), nil
	case []any:
		items := make([]Content, len(t))
		for i, item := range t {
			c, err := FromValue(item)
			if err != nil {
				return Content{}, fmt.Errorf("index %d: %w", i, err)
			}
			items[i] = c
		}
		return Content{kind: KindArray, items: items}, nil
	case map[string]any:
		fields := make(map[string]Content, len(t))
		for k, item := range t {
			c, err := FromValue(item)
			if err != nil {
				return Content{}, fmt.Errorf("key %q: %w", k, err)
			}
			fields[k] = c
		}
		return Content{kind: KindObject, fields: fields}, nil
	default:
		return Content{}, fmt.Errorf("unsupported content value %T", v)
	}
}

func (c Content) Kind() Kind { return c.kind }

func (c Content) IsNull() bool { return c.kind == KindNull }

func (c Content) AsBool() (bool, bool) { return c.boolean, c.kind == KindBool }

func (c Content) AsNumber() (json.Number, bool) { return c.number, c.kind == KindNumber }

func (c Content) AsString() (string, bool) { return c.str, c.kind == KindString }

// Len returns the number of array items or object fields.
func (c Content) Len() int {
	switch c.kind {
	case KindArray:
		return len(c.items)
	case KindObject:
		return len(c.fields)
	default:
		return 0
	}
}

func (c Content) Index(i int) (Content, bool) {
	if c.kind != KindArray || i < 0 || i >= len(c.items) {
		return Content{}, false
	}
	return c.items[i], true
}

func (c Content) Field(key string) (Content, bool) {
	if c.kind != KindObject {
		return Content{}, false
	}
	v, ok := c.fields[key]
	return v, ok
}

// Keys returns the object keys in sorted order.
func (c Content) Keys() []string {
	if c.kind != KindObject {
		return nil
	}
	keys := make([]string, 0, len(c.fields))
	for k := range c.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Equal reports structural equality. Numbers compare by value, so 1 and 1.0
// are equal.
func (c Content) Equal(other Content) bool {
	if c.kind != other.kind {
		return false
	}
	switch c.kind {
	case KindNull:
		return true
	case KindBool:
		return c.boolean == other.boolean
	case KindNumber:
		return equalNumber(c.number, other.number)
	case KindString:
		return c.str == other.str
	case KindArray:
		if len(c.items) != len(other.items) {
			return false
		}
		for i := range c.items {
			if !c.items[i].Equal(other.items[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if len(c.fields) != len(other.fields) {
			return false
		}
		for k, v := range c.fields {
			ov, ok := other.fields[k]
			if !ok || !v.Equal(ov) {
				return false
			}
		}
		return true
	}
	return false
}

func equalNumber(a, b json.Number) bool {
	if a == b {
		return true
	}
	var ar, br big.Rat
	if _, ok := ar.SetString(string(a)); !ok {
		return false
	}
	if _, ok := br.SetString(string(b)); !ok {
		return false
	}
	return ar.Cmp(&br) == 0
}

// Value converts c back to plain Go values (the inverse of FromValue).
func (c Content) Value() any {
	switch c.kind {
	case KindBool:
		return c.boolean
	case KindNumber:
		return c.number
	case KindString:
		return c.str
	case KindArray:
		out := make([]any, len(c.items))
		for i, item := range c.items {
			out[i] = item.Value()
		}
		return out
	case KindObject:
		out := make(map[string]any, len(c.fields))
		for k, v := range c.fields {
			out[k] = v.Value()
		}
		return out
	default:
		return nil
	}
}

func (c Content) MarshalJSON() ([]byte, error) {
	switch c.kind {
	case KindNull:
		return []byte("null"), nil
	case KindBool:
		return json.Marshal(c.boolean)
	case KindNumber:
		return json.Marshal(c.number)
	case KindString:
		return json.Marshal(c.str)
	case KindArray:
		if c.items == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(c.items)
	case KindObject:
		if c.fields == nil {
			return []byte("{}"), nil
		}
		return json.Marshal(c.fields)
	default:
		return nil, fmt.Errorf("content: unknown kind %d", c.kind)
	}
}

func (c *Content) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("decode content: %w", err)
	}
	parsed, err := FromValue(raw)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

func (c Content) String() string {
	data, err := c.MarshalJSON()
	if err != nil {
		return "<invalid content>"
	}
	return string(data)
}
