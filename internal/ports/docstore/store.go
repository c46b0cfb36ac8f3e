package docstore

import (
	"context"
	"errors"
	"strings"
)

var (
	ErrNotFound       = errors.New("document not found")
	ErrUndefinedField = errors.New("document contains undefined field")
	ErrUnsupported    = errors.New("unsupported document value")
	ErrInvalidQuery   = errors.New("invalid query")
)

// Store es el colaborador de persistencia: colecciones con nombre (ej: "pets/melba/events")
// y documentos direccionados como collection/docId.
type Store interface {
	// Create inserta un documento con ID generado por el store.
	Create(ctx context.Context, collection string, doc Document) (string, error)
	// CreateBatch inserta todos los documentos o ninguno.
	CreateBatch(ctx context.Context, collection string, docs []Document) ([]string, error)
	Get(ctx context.Context, collection, id string) (Document, error)
	// Update hace merge de primer nivel sobre el documento existente.
	Update(ctx context.Context, collection, id string, patch Document) error
	// Delete no falla si el documento no existe.
	Delete(ctx context.Context, collection, id string) error
	Query(ctx context.Context, collection string, q Query) ([]Snapshot, error)
}

type Snapshot struct {
	ID   string
	Data Document
}

type Op string

const (
	OpEqual     Op = "=="
	OpLess      Op = "<"
	OpLessEq    Op = "<="
	OpGreater   Op = ">"
	OpGreaterEq Op = ">="
	OpIn        Op = "in"
)

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Filter compara el valor en Field (path con puntos) contra Value.
// Para OpIn, Value debe ser un []any.
type Filter struct {
	Field string
	Op    Op
	Value any
}

type Order struct {
	Field     string
	Direction Direction
}

type Query struct {
	Where   []Filter
	OrderBy []Order
	Limit   int
}

// Validate revisa nombres de campos, operadores y direcciones antes de tocar el backend.
func (q Query) Validate() error {
	for _, f := range q.Where {
		if !ValidField(f.Field) {
			return errors.Join(ErrInvalidQuery, errors.New("bad field "+f.Field))
		}
		switch f.Op {
		case OpEqual, OpLess, OpLessEq, OpGreater, OpGreaterEq:
		case OpIn:
			if _, ok := f.Value.([]any); !ok {
				return errors.Join(ErrInvalidQuery, errors.New("in requires a list"))
			}
		default:
			return errors.Join(ErrInvalidQuery, errors.New("bad operator "+string(f.Op)))
		}
	}
	for _, o := range q.OrderBy {
		if !ValidField(o.Field) {
			return errors.Join(ErrInvalidQuery, errors.New("bad order field "+o.Field))
		}
		if o.Direction != Asc && o.Direction != Desc {
			return errors.Join(ErrInvalidQuery, errors.New("bad direction "+string(o.Direction)))
		}
	}
	if q.Limit < 0 {
		return errors.Join(ErrInvalidQuery, errors.New("negative limit"))
	}
	return nil
}

// Join arma un path de colección: Join("pets", "melba", "events") => "pets/melba/events".
func Join(parts ...string) string {
	clean := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.Trim(strings.TrimSpace(p), "/")
		if p == "" {
			continue
		}
		clean = append(clean, p)
	}
	return strings.Join(clean, "/")
}

// ValidField acepta identificadores separados por punto (ej: "data.endAt").
// Los backends SQL los interpolan en paths JSON, así que nada más pasa.
func ValidField(field string) bool {
	if field == "" {
		return false
	}
	for _, seg := range strings.Split(field, ".") {
		if seg == "" {
			return false
		}
		for i, r := range seg {
			switch {
			case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			case r >= '0' && r <= '9' && i > 0:
			default:
				return false
			}
		}
	}
	return true
}
