package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"pet-medical-log/internal/ports/docstore"
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	collection TEXT NOT NULL,
	id         TEXT NOT NULL,
	data       TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (collection, id)
);

CREATE INDEX IF NOT EXISTS documents_legacy_id_idx ON documents (collection, ` + `COALESCE(json_extract(data, '$.legacyId._ts'), json_extract(data, '$.legacyId'))` + `);
CREATE INDEX IF NOT EXISTS documents_occurred_at_idx ON documents (collection, ` + `COALESCE(json_extract(data, '$.occurredAt._ts'), json_extract(data, '$.occurredAt'))` + `);
CREATE INDEX IF NOT EXISTS documents_type_idx ON documents (collection, ` + `COALESCE(json_extract(data, '$.type._ts'), json_extract(data, '$.type'))` + `);
`

// Open abre (o crea) la base SQLite en path y aplica el schema.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", "file:"+path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, err
	}
	// un solo writer; evita "database is locked" en batches
	db.SetMaxOpenConns(1)
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init sqlite schema: %w", err)
	}
	return db, nil
}

// DocumentStore implementa docstore.Store guardando cada documento como texto JSON.
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
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO documents (collection, id, data) VALUES (?, ?, ?)`,
		collection, id, string(b),
	); err != nil {
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

	ids := make([]string, 0, len(payloads))
	for _, p := range payloads {
		id := s.newID()
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO documents (collection, id, data) VALUES (?, ?, ?)`,
			collection, id, p,
		); err != nil {
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
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM documents WHERE collection = ? AND id = ?`,
		collection, id,
	).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, docstore.ErrNotFound
		}
		return nil, err
	}
	return docstore.DecodeJSON([]byte(raw))
}

// Update lee, mezcla y reescribe dentro de una transacción.
// json_patch borra las claves con null, y acá null es un valor válido (endAt).
func (s *DocumentStore) Update(ctx context.Context, collection, id string, patch docstore.Document) error {
	if err := docstore.Validate(patch); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var raw string
	err = tx.QueryRowContext(ctx,
		`SELECT data FROM documents WHERE collection = ? AND id = ?`,
		collection, id,
	).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return docstore.ErrNotFound
		}
		return err
	}

	current, err := docstore.DecodeJSON([]byte(raw))
	if err != nil {
		return err
	}
	for k, v := range patch {
		current[k] = v
	}
	b, err := docstore.EncodeJSON(current)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE documents SET data = ?, updated_at = CURRENT_TIMESTAMP WHERE collection = ? AND id = ?`,
		string(b), collection, id,
	); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *DocumentStore) Delete(ctx context.Context, collection, id string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM documents WHERE collection = ? AND id = ?`,
		collection, id,
	)
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
		var id, raw string
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, err
		}
		doc, err := docstore.DecodeJSON([]byte(raw))
		if err != nil {
			return nil, err
		}
		out = append(out, docstore.Snapshot{ID: id, Data: doc})
	}
	return out, rows.Err()
}

// fieldExpr devuelve el valor escalar del campo; los timestamps se comparan por su string "_ts".
func fieldExpr(field string) string {
	return fmt.Sprintf("COALESCE(json_extract(data, '$.%s._ts'), json_extract(data, '$.%s'))", field, field)
}

// sqlValue adapta un valor de filtro a lo que devuelve json_extract.
func sqlValue(v any) (any, error) {
	switch t := v.(type) {
	case bool:
		if t {
			return 1, nil
		}
		return 0, nil
	case nil, int, int64, float64, string:
		return t, nil
	case time.Time:
		return docstore.FormatTimestamp(t), nil
	default:
		return nil, fmt.Errorf("%w: cannot filter by %T", docstore.ErrInvalidQuery, v)
	}
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
	sb.WriteString(`SELECT id, data FROM documents WHERE collection = ?`)
	args := []any{collection}

	for _, f := range q.Where {
		expr := fieldExpr(f.Field)
		if f.Op == docstore.OpIn {
			list := f.Value.([]any)
			if len(list) == 0 {
				sb.WriteString(" AND 0")
				continue
			}
			placeholders := make([]string, 0, len(list))
			for _, v := range list {
				val, err := sqlValue(v)
				if err != nil {
					return "", nil, err
				}
				placeholders = append(placeholders, "?")
				args = append(args, val)
			}
			sb.WriteString(" AND " + expr + " IN (" + strings.Join(placeholders, ",") + ")")
			continue
		}

		if f.Value == nil && f.Op == docstore.OpEqual {
			sb.WriteString(fmt.Sprintf(" AND json_type(data, '$.%s') = 'null'", f.Field))
			continue
		}
		val, err := sqlValue(f.Value)
		if err != nil {
			return "", nil, err
		}
		sb.WriteString(fmt.Sprintf(" AND %s %s ?", expr, sqlOps[f.Op]))
		args = append(args, val)
	}

	orderParts := make([]string, 0, len(q.OrderBy)+1)
	for _, o := range q.OrderBy {
		expr := fieldExpr(o.Field)
		sb.WriteString(" AND " + expr + " IS NOT NULL")
		orderParts = append(orderParts, expr+" "+strings.ToUpper(string(o.Direction)))
	}
	orderParts = append(orderParts, "id ASC")
	sb.WriteString(" ORDER BY " + strings.Join(orderParts, ", "))

	if q.Limit > 0 {
		sb.WriteString(" LIMIT ?")
		args = append(args, q.Limit)
	}

	return sb.String(), args, nil
}
