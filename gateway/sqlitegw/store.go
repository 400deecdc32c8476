// Package sqlitegw implements resource.Gateway on a local SQLite database.
// Each resource table stores its records as JSON documents next to the
// gateway-managed id and timestamps.
package sqlitegw

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/eringen/folio/resource"
)

var identRe = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// timeLayout has a fixed width so timestamps sort lexicographically.
const timeLayout = "2006-01-02T15:04:05.000000Z07:00"

// Store is a SQLite-backed resource.Gateway.
type Store struct {
	db  *sql.DB
	now func() time.Time

	mu     sync.Mutex
	tables map[string]bool
}

// Open opens (or creates) the SQLite database at path, ensures the data
// directory exists, and creates a table for every schema given.
func Open(path string, schemas ...resource.Schema) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL lets the public pages read while the back office writes; writers
	// wait on the busy timeout instead of failing with SQLITE_BUSY.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
		PRAGMA cache_size=-8000;
	`); err != nil {
		db.Close()
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{
		db:     db,
		now:    func() time.Time { return time.Now().UTC() },
		tables: map[string]bool{},
	}
	for _, schema := range schemas {
		if err := s.ensureTable(context.Background(), schema.Table); err != nil {
			db.Close()
			return nil, fmt.Errorf("ensure table %s: %w", schema.Table, err)
		}
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) ensureTable(ctx context.Context, table string) error {
	if !identRe.MatchString(table) {
		return fmt.Errorf("invalid table name %q", table)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tables[table] {
		return nil
	}
	_, err := s.db.ExecContext(ctx, fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %[1]s (
    id TEXT PRIMARY KEY,
    created_at TEXT NOT NULL,
    updated_at TEXT,
    data TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_%[1]s_created_at ON %[1]s(created_at);
`, table))
	if err != nil {
		return err
	}
	s.tables[table] = true
	return nil
}

// column maps a record field to its SQL expression.
func column(field string) (string, error) {
	switch field {
	case resource.FieldID, resource.FieldCreatedAt, resource.FieldUpdatedAt:
		return field, nil
	}
	if !identRe.MatchString(field) {
		return "", fmt.Errorf("invalid field name %q", field)
	}
	return "json_extract(data, '$." + field + "')", nil
}

// Query returns the records of table matching q.
func (s *Store) Query(ctx context.Context, table string, q resource.Query) ([]resource.Record, error) {
	if err := s.ensureTable(ctx, table); err != nil {
		return nil, err
	}
	var (
		clauses []string
		args    []any
	)
	for field, v := range q.Where {
		col, err := column(field)
		if err != nil {
			return nil, err
		}
		switch t := v.(type) {
		case nil:
			clauses = append(clauses, col+" IS NULL")
		case bool:
			// json_extract yields 1/0 for JSON booleans.
			if t {
				clauses = append(clauses, col+" = 1")
			} else {
				clauses = append(clauses, col+" = 0")
			}
		default:
			clauses = append(clauses, col+" = ?")
			args = append(args, v)
		}
	}
	query := "SELECT id, created_at, updated_at, data FROM " + table
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	if q.Order.Field != "" {
		col, err := column(q.Order.Field)
		if err != nil {
			return nil, err
		}
		dir := "ASC"
		if q.Order.Desc {
			dir = "DESC"
		}
		query += fmt.Sprintf(" ORDER BY %s %s, created_at %s", col, dir, dir)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []resource.Record
	for rows.Next() {
		var id, createdAt, data string
		var updatedAt sql.NullString
		if err := rows.Scan(&id, &createdAt, &updatedAt, &data); err != nil {
			return nil, err
		}
		rec, err := resource.DecodeRecord([]byte(data))
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", table, id, err)
		}
		rec[resource.FieldID] = id
		rec[resource.FieldCreatedAt] = createdAt
		if updatedAt.Valid {
			rec[resource.FieldUpdatedAt] = updatedAt.String
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// Insert stores rec under a new id and returns the stored record.
func (s *Store) Insert(ctx context.Context, table string, rec resource.Record) (resource.Record, error) {
	if err := s.ensureTable(ctx, table); err != nil {
		return nil, err
	}
	doc := rec.Without(resource.FieldID, resource.FieldCreatedAt, resource.FieldUpdatedAt)
	data, err := resource.EncodeRecord(doc)
	if err != nil {
		return nil, err
	}
	id := uuid.NewString()
	createdAt := s.now().Format(timeLayout)
	if _, err := s.db.ExecContext(ctx,
		"INSERT INTO "+table+" (id, created_at, data) VALUES (?, ?, ?)",
		id, createdAt, string(data)); err != nil {
		return nil, err
	}
	saved, err := resource.DecodeRecord(data)
	if err != nil {
		return nil, err
	}
	saved[resource.FieldID] = id
	saved[resource.FieldCreatedAt] = createdAt
	return saved, nil
}

// Update merges rec onto the stored record with the given id.
func (s *Store) Update(ctx context.Context, table, id string, rec resource.Record) error {
	if err := s.ensureTable(ctx, table); err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var data string
	err = tx.QueryRowContext(ctx, "SELECT data FROM "+table+" WHERE id = ?", id).Scan(&data)
	if err == sql.ErrNoRows {
		return resource.ErrNotFound
	}
	if err != nil {
		return err
	}
	current, err := resource.DecodeRecord([]byte(data))
	if err != nil {
		return err
	}
	for k, v := range rec.Without(resource.FieldID, resource.FieldCreatedAt, resource.FieldUpdatedAt) {
		current[k] = v
	}
	merged, err := resource.EncodeRecord(current)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE "+table+" SET data = ?, updated_at = ? WHERE id = ?",
		string(merged), s.now().Format(timeLayout), id); err != nil {
		return err
	}
	return tx.Commit()
}

// Delete removes the record with the given id.
func (s *Store) Delete(ctx context.Context, table, id string) error {
	if err := s.ensureTable(ctx, table); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, "DELETE FROM "+table+" WHERE id = ?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return resource.ErrNotFound
	}
	return nil
}

// Count returns the number of records in table.
func (s *Store) Count(ctx context.Context, table string) (int, error) {
	if err := s.ensureTable(ctx, table); err != nil {
		return 0, err
	}
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n)
	return n, err
}
