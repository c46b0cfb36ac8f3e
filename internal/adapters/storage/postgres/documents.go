package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"pet-medical-log/internal/ports/docstore"
)

// DocumentStore implementa docstore.Store sobre una tabla JSONB.
type DocumentStore struct {
	db    *sql.DB
	newID func() string
}

func NewDocumentStore(db *sql.DB) *DocumentStore {
	return &DocumentStore{db: db, newID: uuid.NewString}
}

func (s *DocumentStore) Create(ctx context.Context, collection string, doc docstore.Document) (string, error) {
	b, err := docstore.EncodeJSON(doc)
	if err != nil {
		return "", err
	}
	id := s.newID()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents (collection, id, data)
		VALUES ($1, $2, $3::jsonb)
	`, collection, id, string(b))
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *DocumentStore) CreateBatch(ctx context.Context, collection string, docs []docstore.Document) ([]string, error) {
	payloads := make([]string, 0, len(docs))
	for i, doc := range docs {
		b, err := docstore.EncodeJSON(doc)
		if err != nil {
			return nil, fmt.Errorf("batch item %d: %w", i, err)
		}
		payloads = append(payloads, string(b))
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO documents (collection, id, data)
		VALUES ($1, $2, $3::jsonb)
	`)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	ids := make([]string, 0, len(payloads))
	for _, p := range payloads {
		id := s.newID()
		if _, err := stmt.ExecContext(ctx, collection, id, p); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *DocumentStore) Get(ctx context.Context, collection, id string) (docstore.Document, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT data FROM documents
		WHERE collection = $1 AND id = $2
	`, collection, id).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, docstore.ErrNotFound
		}
		return nil, err
	}
	return docstore.DecodeJSON(raw)
}

// Update usa el operador || de jsonb: merge de primer nivel.
func (s *DocumentStore) Update(ctx context.Context, collection, id string, patch docstore.Document) error {
	b, err := docstore.EncodeJSON(patch)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE documents
		SET data = data || $3::jsonb, updated_at = now()
		WHERE collection = $1 AND id = $2
	`, collection, id, string(b))
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return docstore.ErrNotFound
	}
	return nil
}

func (s *DocumentStore) Delete(ctx context.Context, collection, id string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM documents
		WHERE collection = $1 AND id = $2
	`, collection, id)
	return err
}

func (s *DocumentStore) Query(ctx context.Context, collection string, q docstore.Query) ([]docstore.Snapshot, error) {
	query, args, err := buildQuery(collection, q)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]docstore.Snapshot, 0)
	for rows.Next() {
		var id string
		var raw []byte
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, err
		}
		doc, err := docstore.DecodeJSON(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, docstore.Snapshot{ID: id, Data: doc})
	}
	return out, rows.Err()
}

// jsonPath convierte "data.endAt" en data #> '{data,endAt}'. El campo ya pasó por ValidField.
func jsonPath(field string) string {
	return "data #> '{" + strings.ReplaceAll(field, ".", ",") + "}'"
}

var sqlOps = map[docstore.Op]string{
	docstore.OpEqual:     "=",
	docstore.OpLess:      "<",
	docstore.OpLessEq:    "<=",
	docstore.OpGreater:   ">",
	docstore.OpGreaterEq: ">=",
}

func buildQuery(collection string, q docstore.Query) (string, []any, error) {
	if err := q.Validate(); err != nil {
		return "", nil, err
	}

	sb := strings.Builder{}
	sb.WriteString(`SELECT id, data FROM documents WHERE collection = $1`)

	args := []any{collection}
	argN := 2

	for _, f := range q.Where {
		path := jsonPath(f.Field)
		if f.Op == docstore.OpIn {
			list := f.Value.([]any)
			if len(list) == 0 {
				sb.WriteString(" AND FALSE")
				continue
			}
			placeholders := make([]string, 0, len(list))
			for _, v := range list {
				b, err := docstore.EncodeValue(v)
				if err != nil {
					return "", nil, err
				}
				placeholders = append(placeholders, fmt.Sprintf("$%d::jsonb", argN))
				args = append(args, string(b))
				argN++
			}
			sb.WriteString(" AND " + path + " IN (" + strings.Join(placeholders, ",") + ")")
			continue
		}

		b, err := docstore.EncodeValue(f.Value)
		if err != nil {
			return "", nil, err
		}
		sb.WriteString(fmt.Sprintf(" AND %s %s $%d::jsonb", path, sqlOps[f.Op], argN))
		args = append(args, string(b))
		argN++
	}

	orderParts := make([]string, 0, len(q.OrderBy)+1)
	for _, o := range q.OrderBy {
		path := jsonPath(o.Field)
		sb.WriteString(" AND " + path + " IS NOT NULL AND " + path + " <> 'null'::jsonb")
		orderParts = append(orderParts, path+" "+strings.ToUpper(string(o.Direction)))
	}
	orderParts = append(orderParts, "id ASC")
	sb.WriteString(" ORDER BY " + strings.Join(orderParts, ", "))

	if q.Limit > 0 {
		sb.WriteString(fmt.Sprintf(" LIMIT $%d", argN))
		args = append(args, q.Limit)
	}

	return sb.String(), args, nil
}
