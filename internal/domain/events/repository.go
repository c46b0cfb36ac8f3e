package events

import (
	"time"

	"pet-medical-log/internal/ports/docstore"
)

// ListOptions filtra y ordena los eventos de una mascota. Todo se resuelve en el store.
type ListOptions struct {
	Types []EventType
	From  *time.Time // inclusive, sobre occurredAt
	To    *time.Time // inclusive, sobre occurredAt
	Limit int        // 0 = sin límite

	OrderBy        string             // default "occurredAt"
	OrderDirection docstore.Direction // default desc
}

// EventsCollection devuelve el path de la colección de eventos de la mascota.
func EventsCollection(petID string) string {
	if petID == "" {
		petID = DefaultPetID
	}
	return docstore.Join("pets", petID, "events")
}

func (o ListOptions) query() (docstore.Query, error) {
	q := docstore.Query{Limit: o.Limit}

	if o.From != nil {
		q.Where = append(q.Where, docstore.Filter{Field: "occurredAt", Op: docstore.OpGreaterEq, Value: o.From.UTC()})
	}
	if o.To != nil {
		q.Where = append(q.Where, docstore.Filter{Field: "occurredAt", Op: docstore.OpLessEq, Value: o.To.UTC()})
	}
	if len(o.Types) > 0 {
		types := make([]any, 0, len(o.Types))
		for _, t := range o.Types {
			types = append(types, string(t))
		}
		q.Where = append(q.Where, docstore.Filter{Field: "type", Op: docstore.OpIn, Value: types})
	}

	orderBy := o.OrderBy
	if orderBy == "" {
		orderBy = "occurredAt"
	}
	dir := o.OrderDirection
	if dir == "" {
		dir = docstore.Desc
	}
	q.OrderBy = []docstore.Order{{Field: orderBy, Direction: dir}}

	if err := q.Validate(); err != nil {
		return docstore.Query{}, err
	}
	return q, nil
}
