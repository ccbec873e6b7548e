// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package docstore

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const (
	DialectSQLite   = "sqlite"
	DialectPostgres = "postgres"
)

const (
	// timeLayout is fixed width so stored instants sort lexically.
	timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

	// timeFieldsKey lists the dotted paths of a stored document that hold
	// instants.
	timeFieldsKey = "$times"
)

// SQLStore keeps documents as JSON text in the document table and atomic
// counters in the counter table. Counters are folded into the document on
// every read. The tables are created by db.CreateSchema.
type SQLStore struct {
	db      *sql.DB
	dialect string
}

func NewSQLStore(db *sql.DB, dialect string) *SQLStore {
	return &SQLStore{db: db, dialect: dialect}
}

func (s *SQLStore) orderExpr(field string) string {
	if s.dialect == DialectPostgres {
		return fmt.Sprintf("(data::jsonb ->> '%s')", field)
	}
	return fmt.Sprintf("json_extract(data, '$.%s')", field)
}

func (s *SQLStore) Query(ctx context.Context, collection, orderBy string, dir Direction) ([]Record, error) {
	if err := validateField(orderBy); err != nil {
		return nil, err
	}

	order := "ASC"
	if dir == Desc {
		order = "DESC"
	}
	query := fmt.Sprintf(
		`SELECT id, data FROM document WHERE collection = $1 ORDER BY %s %s, id %s`,
		s.orderExpr(orderBy), order, order,
	)

	rows, err := s.db.QueryContext(ctx, query, collection)
	if err != nil {
		return nil, errors.Wrap(err, "query documents")
	}
	defer rows.Close()

	var records []Record
	index := make(map[string]Document)
	for rows.Next() {
		var id, raw string
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, errors.Wrap(err, "scan document")
		}
		doc, err := decodeDocument(raw)
		if err != nil {
			return nil, errors.Wrapf(err, "decode document %s", id)
		}
		records = append(records, Record{ID: id, Data: doc})
		index[id] = doc
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate documents")
	}

	if err := s.foldCounters(ctx, index, `SELECT id, field, value FROM counter WHERE collection = $1`, collection); err != nil {
		return nil, err
	}
	return records, nil
}

func (s *SQLStore) Get(ctx context.Context, collection, id string) (Record, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM document WHERE collection = $1 AND id = $2`,
		collection, id,
	).Scan(&raw)
	if err == sql.ErrNoRows {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, errors.Wrap(err, "get document")
	}

	doc, err := decodeDocument(raw)
	if err != nil {
		return Record{}, errors.Wrapf(err, "decode document %s", id)
	}
	err = s.foldCounters(ctx, map[string]Document{id: doc},
		`SELECT id, field, value FROM counter WHERE collection = $1 AND id = $2`, collection, id)
	if err != nil {
		return Record{}, err
	}
	return Record{ID: id, Data: doc}, nil
}

func (s *SQLStore) foldCounters(ctx context.Context, docs map[string]Document, query string, args ...any) error {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return errors.Wrap(err, "query counters")
	}
	defer rows.Close()

	for rows.Next() {
		var id, field string
		var value int64
		if err := rows.Scan(&id, &field, &value); err != nil {
			return errors.Wrap(err, "scan counter")
		}
		doc, ok := docs[id]
		if !ok {
			continue
		}
		path, err := splitPath(field)
		if err != nil {
			return err
		}
		addAt(doc, path, value)
	}
	return errors.Wrap(rows.Err(), "iterate counters")
}

func (s *SQLStore) Create(ctx context.Context, collection string, data Document) (string, error) {
	raw, err := encodeDocument(data)
	if err != nil {
		return "", err
	}

	id, err := newID()
	if err != nil {
		return "", err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO document (collection, id, data) VALUES ($1, $2, $3)`,
		collection, id, raw,
	)
	if err != nil {
		return "", errors.Wrap(err, "insert document")
	}
	return id, nil
}

func (s *SQLStore) Update(ctx context.Context, collection, id string, patch Document) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin update")
	}
	defer tx.Rollback()

	query := `SELECT data FROM document WHERE collection = $1 AND id = $2`
	if s.dialect == DialectPostgres {
		query += ` FOR UPDATE`
	}

	var raw string
	err = tx.QueryRowContext(ctx, query, collection, id).Scan(&raw)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return errors.Wrap(err, "load document for update")
	}

	doc, err := decodeDocument(raw)
	if err != nil {
		return errors.Wrapf(err, "decode document %s", id)
	}
	for k, v := range patch {
		doc[k] = v
	}
	merged, err := encodeDocument(doc)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE document SET data = $1 WHERE collection = $2 AND id = $3`,
		merged, collection, id,
	)
	if err != nil {
		return errors.Wrap(err, "update document")
	}
	return errors.Wrap(tx.Commit(), "commit update")
}

func (s *SQLStore) Delete(ctx context.Context, collection, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin delete")
	}
	defer tx.Rollback()

	// The document goes first so a concurrent Increment waiting on its row
	// lock finds it gone.
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM document WHERE collection = $1 AND id = $2`, collection, id); err != nil {
		return errors.Wrap(err, "delete document")
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM counter WHERE collection = $1 AND id = $2`, collection, id); err != nil {
		return errors.Wrap(err, "delete counters")
	}
	return errors.Wrap(tx.Commit(), "commit delete")
}

func (s *SQLStore) Increment(ctx context.Context, collection, id, fieldPath string, delta int64) error {
	if _, err := splitPath(fieldPath); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin increment")
	}
	defer tx.Rollback()

	// Holding the document row keeps Delete from running between the check
	// and the upsert. SQLite serializes on its single connection instead.
	check := `SELECT 1 FROM document WHERE collection = $1 AND id = $2`
	if s.dialect == DialectPostgres {
		check += ` FOR SHARE`
	}
	var exists int
	err = tx.QueryRowContext(ctx, check, collection, id).Scan(&exists)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return errors.Wrap(err, "check document")
	}

	// The addition happens inside the database; concurrent callers never
	// read-modify-write in Go.
	_, err = tx.ExecContext(ctx, `
		INSERT INTO counter (collection, id, field, value)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (collection, id, field)
		DO UPDATE SET value = counter.value + excluded.value
	`, collection, id, fieldPath, delta)
	if err != nil {
		return errors.Wrap(err, "increment counter")
	}
	return errors.Wrap(tx.Commit(), "commit increment")
}

func encodeDocument(doc Document) (string, error) {
	var times []string
	out, _ := encodeValue(doc, "", &times).(map[string]any)
	if len(times) > 0 {
		sort.Strings(times)
		out[timeFieldsKey] = times
	}
	raw, err := json.Marshal(out)
	if err != nil {
		return "", errors.Wrap(err, "encode document")
	}
	return string(raw), nil
}

// encodeValue formats instants as fixed width strings and records their
// dotted paths in times.
func encodeValue(v any, path string, times *[]string) any {
	switch val := v.(type) {
	case time.Time:
		*times = append(*times, path)
		return val.UTC().Format(timeLayout)
	case Document:
		out := make(map[string]any, len(val))
		for k, nested := range val {
			if path == "" && k == timeFieldsKey {
				continue
			}
			child := k
			if path != "" {
				child = path + "." + k
			}
			out[k] = encodeValue(nested, child, times)
		}
		return out
	case map[string]any:
		return encodeValue(Document(val), path, times)
	default:
		return v
	}
}

func decodeDocument(raw string) (Document, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.UseNumber()

	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, err
	}
	listed, _ := m[timeFieldsKey].([]any)
	delete(m, timeFieldsKey)

	doc, _ := decodeValue(m).(Document)
	for _, p := range listed {
		if path, ok := p.(string); ok {
			restoreTime(doc, strings.Split(path, "."))
		}
	}
	return doc, nil
}

// restoreTime parses the string at path back into a time.Time. Only paths
// recorded at encode time are touched, so user text never changes type.
func restoreTime(doc Document, path []string) {
	for len(path) > 1 {
		next, ok := doc[path[0]].(Document)
		if !ok {
			return
		}
		doc, path = next, path[1:]
	}
	if s, ok := doc[path[0]].(string); ok {
		if t, err := time.Parse(timeLayout, s); err == nil {
			doc[path[0]] = t
		}
	}
}

func decodeValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(Document, len(val))
		for k, nested := range val {
			out[k] = decodeValue(nested)
		}
		return out
	case []any:
		for i := range val {
			val[i] = decodeValue(val[i])
		}
		return val
	case json.Number:
		if n, err := val.Int64(); err == nil {
			return n
		}
		f, _ := val.Float64()
		return f
	default:
		return v
	}
}
