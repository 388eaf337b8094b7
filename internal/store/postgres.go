package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/liveable/internal/db"
	"github.com/sells-group/liveable/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(4)
	minConns := int32(1)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS reports (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	kind       TEXT NOT NULL,
	zip_codes  TEXT NOT NULL,
	payload    JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_reports_kind ON reports(kind);
CREATE INDEX IF NOT EXISTS idx_reports_created_at ON reports(created_at DESC);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) SaveReport(ctx context.Context, r *model.ArchivedReport) error {
	if err := prepare(r); err != nil {
		return err
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO reports (id, kind, zip_codes, payload, created_at) VALUES ($1, $2, $3, $4, $5)`,
		r.ID, r.Kind, joinZips(r.ZipCodes), []byte(r.Payload), r.CreatedAt,
	)
	return eris.Wrapf(err, "postgres: insert report %s", r.ID)
}

func (s *PostgresStore) GetReport(ctx context.Context, id string) (*model.ArchivedReport, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, kind, zip_codes, payload, created_at FROM reports WHERE id = $1`,
		id,
	)
	r, err := scanPGReport(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "postgres: get report %s", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get report %s", id)
	}
	return r, nil
}

func (s *PostgresStore) ListReports(ctx context.Context, filter ReportFilter) ([]model.ArchivedReport, error) {
	query := `SELECT id, kind, zip_codes, payload, created_at FROM reports WHERE 1=1`
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Kind != "" {
		query += ` AND kind = ` + arg(filter.Kind)
	}
	if filter.ZipCode != "" {
		query += ` AND (',' || zip_codes || ',') LIKE ` + arg(zipPattern(filter.ZipCode))
	}
	query += ` ORDER BY created_at DESC LIMIT ` + arg(limitOf(filter))
	if filter.Offset > 0 {
		query += ` OFFSET ` + arg(filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list reports")
	}
	defer rows.Close()

	reports := []model.ArchivedReport{}
	for rows.Next() {
		r, err := scanPGReport(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan report")
		}
		reports = append(reports, *r)
	}
	return reports, eris.Wrap(rows.Err(), "postgres: list reports iterate")
}

var reportColumns = []string{"id", "kind", "zip_codes", "payload", "created_at"}

func (s *PostgresStore) ImportReports(ctx context.Context, reports []model.ArchivedReport) (int64, error) {
	rows := make([][]any, 0, len(reports))
	for i := range reports {
		r := &reports[i]
		if err := prepare(r); err != nil {
			return 0, err
		}
		rows = append(rows, []any{r.ID, r.Kind, joinZips(r.ZipCodes), []byte(r.Payload), r.CreatedAt})
	}
	n, err := db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        "reports",
		Columns:      reportColumns,
		ConflictKeys: []string{"id"},
		UpdateCols:   []string{},
	}, rows)
	return n, eris.Wrap(err, "postgres: import reports")
}

func scanPGReport(row pgx.Row) (*model.ArchivedReport, error) {
	var r model.ArchivedReport
	var zips string
	var payload []byte
	if err := row.Scan(&r.ID, &r.Kind, &zips, &payload, &r.CreatedAt); err != nil {
		return nil, err
	}
	r.ZipCodes = splitZips(zips)
	r.Payload = payload
	return &r, nil
}
