package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"pet-medical-log/internal/ports/docstore"
)

// Store guarda documentos en memoria, una colección por path. Para dev y tests.
type Store struct {
	mu          sync.RWMutex
	collections map[string]map[string]docstore.Document
	newID       func() string
}

func NewStore() *Store {
	return &Store{
		collections: make(map[string]map[string]docstore.Document),
		newID:       uuid.NewString,
	}
}

// Put escribe un documento con ID conocido (seeds y tests).
func (s *Store) Put(ctx context.Context, collection, id string, doc docstore.Document) error {
	doc = docstore.Compact(doc)
	if err := docstore.Validate(doc); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.coll(collection)[id] = docstore.Clone(doc)
	return nil
}

func (s *Store) Create(ctx context.Context, collection string, doc docstore.Document) (string, error) {
	if err := docstore.Validate(doc); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.newID()
	s.coll(collection)[id] = docstore.Clone(doc)
	return id, nil
}

func (s *Store) CreateBatch(ctx context.Context, collection string, docs []docstore.Document) ([]string, error) {
	// se valida todo antes de escribir: o entran todos o ninguno
	for i, doc := range docs {
		if err := docstore.Validate(doc); err != nil {
			return nil, fmt.Errorf("batch item %d: %w", i, err)
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.coll(collection)
	ids := make([]string, 0, len(docs))
	for _, doc := range docs {
		id := s.newID()
		c[id] = docstore.Clone(doc)
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *Store) Get(ctx context.Context, collection, id string) (docstore.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.collections[collection][id]
	if !ok {
		return nil, docstore.ErrNotFound
	}
	return docstore.Clone(doc), nil
}

func (s *Store) Update(ctx context.Context, collection, id string, patch docstore.Document) error {
	if err := docstore.Validate(patch); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.collections[collection][id]
	if !ok {
		return docstore.ErrNotFound
	}
	merged := docstore.Clone(doc)
	for k, v := range docstore.Clone(patch) {
		merged[k] = v
	}
	s.collections[collection][id] = merged
	return nil
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.collections[collection], id)
	return nil
}

func (s *Store) Query(ctx context.Context, collection string, q docstore.Query) ([]docstore.Snapshot, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]docstore.Snapshot, 0)
	for id, doc := range s.collections[collection] {
		if !matchesAll(doc, q.Where) || !hasOrderFields(doc, q.OrderBy) {
			continue
		}
		out = append(out, docstore.Snapshot{ID: id, Data: docstore.Clone(doc)})
	}

	// orden estable: primero por los campos pedidos, luego por id
	sort.SliceStable(out, func(i, j int) bool {
		for _, o := range q.OrderBy {
			c := compareField(out[i].Data, out[j].Data, o.Field)
			if c == 0 {
				continue
			}
			if o.Direction == docstore.Desc {
				return c > 0
			}
			return c < 0
		}
		return out[i].ID < out[j].ID
	})

	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (s *Store) coll(name string) map[string]docstore.Document {
	c, ok := s.collections[name]
	if !ok {
		c = make(map[string]docstore.Document)
		s.collections[name] = c
	}
	return c
}

func matchesAll(doc docstore.Document, where []docstore.Filter) bool {
	for _, f := range where {
		if !f.Matches(doc) {
			return false
		}
	}
	return true
}

// Ordenar por un campo excluye los documentos que no lo tienen (mismo criterio que los backends SQL).
func hasOrderFields(doc docstore.Document, order []docstore.Order) bool {
	for _, o := range order {
		if v, ok := docstore.Lookup(doc, o.Field); !ok || v == nil {
			return false
		}
	}
	return true
}

func compareField(a, b docstore.Document, field string) int {
	av, _ := docstore.Lookup(a, field)
	bv, _ := docstore.Lookup(b, field)
	c, ok := docstore.CompareValues(av, bv)
	if !ok {
		return 0
	}
	return c
}
