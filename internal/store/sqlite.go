package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/liveable/internal/model"
)

// DefaultSQLitePath is the archive file used when no DSN is configured.
const DefaultSQLitePath = "liveable.db"

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	if dsn == "" {
		dsn = DefaultSQLitePath
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS reports (
	id         TEXT PRIMARY KEY,
	kind       TEXT NOT NULL,
	zip_codes  TEXT NOT NULL,
	payload    TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_reports_kind ON reports(kind);
CREATE INDEX IF NOT EXISTS idx_reports_created_at ON reports(created_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveReport(ctx context.Context, r *model.ArchivedReport) error {
	if err := prepare(r); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO reports (id, kind, zip_codes, payload, created_at) VALUES (?, ?, ?, ?, ?)`,
		r.ID, r.Kind, joinZips(r.ZipCodes), string(r.Payload), r.CreatedAt,
	)
	return eris.Wrapf(err, "sqlite: insert report %s", r.ID)
}

func (s *SQLiteStore) GetReport(ctx context.Context, id string) (*model.ArchivedReport, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, kind, zip_codes, payload, created_at FROM reports WHERE id = ?`,
		id,
	)
	r, err := scanReport(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "sqlite: get report %s", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get report %s", id)
	}
	return r, nil
}

func (s *SQLiteStore) ListReports(ctx context.Context, filter ReportFilter) ([]model.ArchivedReport, error) {
	query := `SELECT id, kind, zip_codes, payload, created_at FROM reports WHERE 1=1`
	var args []any

	if filter.Kind != "" {
		query += ` AND kind = ?`
		args = append(args, filter.Kind)
	}
	if filter.ZipCode != "" {
		query += ` AND (',' || zip_codes || ',') LIKE ?`
		args = append(args, zipPattern(filter.ZipCode))
	}
	query += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, limitOf(filter))

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list reports")
	}
	defer rows.Close() //nolint:errcheck

	reports := []model.ArchivedReport{}
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan report")
		}
		reports = append(reports, *r)
	}
	return reports, eris.Wrap(rows.Err(), "sqlite: list reports iterate")
}

func (s *SQLiteStore) ImportReports(ctx context.Context, reports []model.ArchivedReport) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: import begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	var n int64
	for i := range reports {
		r := &reports[i]
		if err := prepare(r); err != nil {
			return 0, err
		}
		res, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO reports (id, kind, zip_codes, payload, created_at) VALUES (?, ?, ?, ?, ?)`,
			r.ID, r.Kind, joinZips(r.ZipCodes), string(r.Payload), r.CreatedAt,
		)
		if err != nil {
			return 0, eris.Wrapf(err, "sqlite: import report %s", r.ID)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return 0, eris.Wrap(err, "sqlite: rows affected")
		}
		n += affected
	}
	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: import commit")
	}
	return n, nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanReport(row scannable) (*model.ArchivedReport, error) {
	var r model.ArchivedReport
	var zips, payload string
	if err := row.Scan(&r.ID, &r.Kind, &zips, &payload, &r.CreatedAt); err != nil {
		return nil, err
	}
	r.ZipCodes = splitZips(zips)
	r.Payload = []byte(payload)
	return &r, nil
}
