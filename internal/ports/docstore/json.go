package docstore

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// TimestampKey envuelve instantes en los backends JSON: {"_ts": "..."}.
const TimestampKey = "_ts"

// TimestampLayout tiene ancho fijo y va en UTC: el orden de texto coincide con el orden temporal.
const TimestampLayout = "2006-01-02T15:04:05.000000000Z"

// EncodeJSON serializa un documento para backends que guardan JSON.
func EncodeJSON(doc Document) ([]byte, error) {
	if err := Validate(doc); err != nil {
		return nil, err
	}
	return json.Marshal(toJSONValue(map[string]any(doc)))
}

// EncodeValue serializa un valor suelto (parámetros de queries) con la misma codificación.
func EncodeValue(v any) ([]byte, error) {
	if err := validateValue("value", v); err != nil {
		return nil, err
	}
	return json.Marshal(toJSONValue(v))
}

// JSONScalar devuelve el valor tal como queda guardado bajo la clave hoja
// (los timestamps como su string de ancho fijo).
func JSONScalar(v any) any {
	if t, ok := v.(time.Time); ok {
		return FormatTimestamp(t)
	}
	return v
}

func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

func toJSONValue(v any) any {
	switch t := v.(type) {
	case time.Time:
		return map[string]any{TimestampKey: FormatTimestamp(t)}
	case Document:
		return toJSONValue(map[string]any(t))
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[k] = toJSONValue(item)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = toJSONValue(item)
		}
		return out
	default:
		return v
	}
}

// DecodeJSON revierte EncodeJSON. Los números vuelven como float64.
func DecodeJSON(b []byte) (Document, error) {
	var raw map[string]any
	dec := json.NewDecoder(bytes.NewReader(b))
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	out := make(Document, len(raw))
	for k, v := range raw {
		out[k] = fromJSONValue(v)
	}
	return out, nil
}

func fromJSONValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		if len(t) == 1 {
			if s, ok := t[TimestampKey].(string); ok {
				if ts, err := time.Parse(TimestampLayout, s); err == nil {
					return ts
				}
			}
		}
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[k] = fromJSONValue(item)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = fromJSONValue(item)
		}
		return out
	default:
		return v
	}
}
