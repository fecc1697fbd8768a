package records

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// OpenSQLite opens or creates the database at path and ensures the schema of
// every collection.
func OpenSQLite(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// a single connection keeps ":memory:" databases shared between stores
	db.SetMaxOpenConns(1)
	for _, c := range []Collection{Requests, Riders} {
		schema := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        name TEXT NOT NULL,
        current_floor INTEGER NOT NULL,
        drop_off_floor INTEGER NOT NULL,
        created_at INTEGER NOT NULL
    );`, c)
		if _, err := db.Exec(schema); err != nil {
			if cerr := db.Close(); cerr != nil {
				return nil, fmt.Errorf("close db: %v (schema err: %w)", cerr, err)
			}
			return nil, err
		}
	}
	return db, nil
}

// SQLiteStore persists one collection in a SQLite table.
type SQLiteStore struct {
	db     *sql.DB
	table  string
	prefix string
}

// NewSQLiteStore returns a store for c backed by db. The database must have
// been opened with OpenSQLite.
func NewSQLiteStore(db *sql.DB, c Collection) (*SQLiteStore, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("unknown collection %q", c)
	}
	return &SQLiteStore{db: db, table: string(c), prefix: c.Prefix()}, nil
}

func (s *SQLiteStore) Create(ctx context.Context, in Input) (Record, error) {
	if err := in.Validate(); err != nil {
		return Record{}, err
	}
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO `+s.table+` (name, current_floor, drop_off_floor, created_at) VALUES (?, ?, ?, ?)`,
		in.Name, in.CurrentFloor, in.DropOffFloor, now.UnixNano())
	if err != nil {
		return Record{}, err
	}
	rowID, err := res.LastInsertId()
	if err != nil {
		return Record{}, err
	}
	return Record{
		ID:           s.formatID(rowID),
		Name:         in.Name,
		CurrentFloor: in.CurrentFloor,
		DropOffFloor: in.DropOffFloor,
		CreatedAt:    time.Unix(0, now.UnixNano()).UTC(),
	}, nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, current_floor, drop_off_floor, created_at FROM `+s.table+` ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	res := []Record{}
	for rows.Next() {
		r, err := s.scan(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (Record, error) {
	rowID, ok := s.parseID(id)
	if !ok {
		return Record{}, ErrNotFound
	}
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, current_floor, drop_off_floor, created_at FROM `+s.table+` WHERE id = ?`, rowID)
	r, err := s.scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	return r, err
}

func (s *SQLiteStore) Update(ctx context.Context, id string, p Patch) (Record, error) {
	if err := p.Validate(); err != nil {
		return Record{}, err
	}
	cur, err := s.Get(ctx, id)
	if err != nil {
		return Record{}, err
	}
	next := p.Apply(cur)
	rowID, _ := s.parseID(id)
	if _, err := s.db.ExecContext(ctx,
		`UPDATE `+s.table+` SET name = ?, current_floor = ?, drop_off_floor = ? WHERE id = ?`,
		next.Name, next.CurrentFloor, next.DropOffFloor, rowID); err != nil {
		return Record{}, err
	}
	return next, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) (Record, error) {
	cur, err := s.Get(ctx, id)
	if err != nil {
		return Record{}, err
	}
	rowID, _ := s.parseID(id)
	if _, err := s.db.ExecContext(ctx, `DELETE FROM `+s.table+` WHERE id = ?`, rowID); err != nil {
		return Record{}, err
	}
	return cur, nil
}

func (s *SQLiteStore) DeleteAll(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM `+s.table)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

type scanner interface {
	Scan(dest ...any) error
}

func (s *SQLiteStore) scan(row scanner) (Record, error) {
	var (
		rowID   int64
		r       Record
		created int64
	)
	if err := row.Scan(&rowID, &r.Name, &r.CurrentFloor, &r.DropOffFloor, &created); err != nil {
		return Record{}, err
	}
	r.ID = s.formatID(rowID)
	r.CreatedAt = time.Unix(0, created).UTC()
	return r, nil
}

func (s *SQLiteStore) formatID(rowID int64) string {
	return s.prefix + "_" + strconv.FormatInt(rowID, 10)
}

func (s *SQLiteStore) parseID(id string) (int64, bool) {
	rest, ok := strings.CutPrefix(id, s.prefix+"_")
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseInt(rest, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
