package docstore

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Document es el valor persistido. Valores admitidos: nil, bool, int, int64, float64,
// string, time.Time, []any, []string, map[string]any.
type Document map[string]any

type undefined struct{}

// Undefined marca un campo "sin valor" que nunca debe llegar al store.
var Undefined any = undefined{}

func IsUndefined(v any) bool {
	_, ok := v.(undefined)
	return ok
}

// Compact elimina recursivamente los campos Undefined de mapas y listas.
// Es el único punto de escritura canónico: todo documento pasa por acá antes del store.
func Compact(doc Document) Document {
	if doc == nil {
		return nil
	}
	out := make(Document, len(doc))
	for k, v := range doc {
		if IsUndefined(v) {
			continue
		}
		out[k] = compactValue(v)
	}
	return out
}

func compactValue(v any) any {
	switch t := v.(type) {
	case Document:
		return map[string]any(Compact(t))
	case map[string]any:
		return map[string]any(Compact(Document(t)))
	case []any:
		out := make([]any, 0, len(t))
		for _, item := range t {
			if IsUndefined(item) {
				continue
			}
			out = append(out, compactValue(item))
		}
		return out
	case []string:
		out := make([]any, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out
	default:
		return v
	}
}

// Validate rechaza Undefined, floats no finitos y tipos que el store no sabe guardar.
func Validate(doc Document) error {
	for k, v := range doc {
		if err := validateValue(k, v); err != nil {
			return err
		}
	}
	return nil
}

func validateValue(path string, v any) error {
	switch t := v.(type) {
	case nil, bool, int, int64, string, time.Time:
		return nil
	case undefined:
		return fmt.Errorf("%w: %s", ErrUndefinedField, path)
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return fmt.Errorf("%w: %s is not finite", ErrUnsupported, path)
		}
		return nil
	case []string:
		return nil
	case []any:
		for i, item := range t {
			if err := validateValue(fmt.Sprintf("%s[%d]", path, i), item); err != nil {
				return err
			}
		}
		return nil
	case Document:
		return validateValue(path, map[string]any(t))
	case map[string]any:
		for k, item := range t {
			if err := validateValue(path+"."+k, item); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("%w: %s has type %T", ErrUnsupported, path, v)
	}
}

// Lookup resuelve un path con puntos ("data.name").
func Lookup(doc Document, field string) (any, bool) {
	var cur any = map[string]any(doc)
	for _, seg := range strings.Split(field, ".") {
		var m map[string]any
		switch t := cur.(type) {
		case map[string]any:
			m = t
		case Document:
			m = t
		default:
			return nil, false
		}
		v, ok := m[seg]
		if !ok {
			return nil, false
		}
		cur = v
	}
	return cur, true
}

// Clone hace una copia profunda de mapas y listas (los escalares se comparten).
func Clone(doc Document) Document {
	if doc == nil {
		return nil
	}
	out := make(Document, len(doc))
	for k, v := range doc {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case Document:
		return map[string]any(Clone(t))
	case map[string]any:
		return map[string]any(Clone(Document(t)))
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = cloneValue(item)
		}
		return out
	case []string:
		out := make([]any, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out
	default:
		return v
	}
}

// CompareValues ordena valores del mismo tipo. ok=false si no son comparables
// (tipos distintos o no escalares); en ese caso el filtro no matchea.
func CompareValues(a, b any) (int, bool) {
	if af, aok := asFloat(a); aok {
		bf, bok := asFloat(b)
		if !bok {
			return 0, false
		}
		switch {
		case af < bf:
			return -1, true
		case af > bf:
			return 1, true
		default:
			return 0, true
		}
	}
	switch at := a.(type) {
	case string:
		bt, ok := b.(string)
		if !ok {
			return 0, false
		}
		return strings.Compare(at, bt), true
	case time.Time:
		bt, ok := b.(time.Time)
		if !ok {
			return 0, false
		}
		return at.Compare(bt), true
	case bool:
		bt, ok := b.(bool)
		if !ok {
			return 0, false
		}
		switch {
		case at == bt:
			return 0, true
		case !at:
			return -1, true
		default:
			return 1, true
		}
	case nil:
		if b == nil {
			return 0, true
		}
		return 0, false
	}
	return 0, false
}

func asFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case float64:
		return t, true
	}
	return 0, false
}

// Matches evalúa un filtro contra un documento (usado por el backend en memoria).
func (f Filter) Matches(doc Document) bool {
	v, ok := Lookup(doc, f.Field)
	if !ok {
		return false
	}
	switch f.Op {
	case OpIn:
		list, _ := f.Value.([]any)
		for _, candidate := range list {
			if c, ok := CompareValues(v, candidate); ok && c == 0 {
				return true
			}
		}
		return false
	}
	c, ok := CompareValues(v, f.Value)
	if !ok {
		return false
	}
	switch f.Op {
	case OpEqual:
		return c == 0
	case OpLess:
		return c < 0
	case OpLessEq:
		return c <= 0
	case OpGreater:
		return c > 0
	case OpGreaterEq:
		return c >= 0
	}
	return false
}
