package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	apperrors "kinship-graph/backend/pkg/errors"
)

// PostgresSchema is the table layout the Postgres backend expects. Applying it
// is the job of the deployment's migration step.
const PostgresSchema = `
CREATE TABLE IF NOT EXISTS kv_rows (
	table_name     TEXT  NOT NULL,
	partition_key  TEXT  NOT NULL,
	clustering_key TEXT  NOT NULL,
	value          BYTEA NOT NULL,
	PRIMARY KEY (table_name, partition_key, clustering_key)
);`

const (
	pgGetSQL = `SELECT value FROM kv_rows
		WHERE table_name = $1 AND partition_key = $2 AND clustering_key = $3`

	// Scans sort under the "C" collation: byte order whatever the database locale.
	pgScanSQL = `SELECT clustering_key, value FROM kv_rows
		WHERE table_name = $1 AND partition_key = $2 AND starts_with(clustering_key, $3)
		ORDER BY clustering_key COLLATE "C"
		LIMIT $4`

	pgScanAllSQL = `SELECT clustering_key, value FROM kv_rows
		WHERE table_name = $1 AND partition_key = $2 AND starts_with(clustering_key, $3)
		ORDER BY clustering_key COLLATE "C"`

	pgPutSQL = `INSERT INTO kv_rows (table_name, partition_key, clustering_key, value)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (table_name, partition_key, clustering_key) DO UPDATE SET value = EXCLUDED.value`

	pgDeleteSQL = `DELETE FROM kv_rows
		WHERE table_name = $1 AND partition_key = $2 AND clustering_key = $3`
)

type pgxIConn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, optionsAndArgs ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, optionsAndArgs ...any) pgx.Row
}

// PostgresStore implements Store on a single kv_rows table
type PostgresStore struct {
	conn  pgxIConn
	close func()
}

// NewPostgresStoreWithConnection wraps an existing connection or pool
func NewPostgresStoreWithConnection(conn pgxIConn) *PostgresStore {
	return &PostgresStore{conn: conn, close: func() {}}
}

// OpenPostgres creates a connection pool and verifies it with a ping
func OpenPostgres(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, apperrors.NewStorageUnavailable("postgres", "connect", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, apperrors.NewStorageUnavailable("postgres", "ping", err)
	}
	return &PostgresStore{conn: pool, close: pool.Close}, nil
}

func (s *PostgresStore) Get(ctx context.Context, table, partition, clustering string) ([]byte, error) {
	var value []byte
	err := s.conn.QueryRow(ctx, pgGetSQL, table, partition, clustering).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, apperrors.NewStorageUnavailable("postgres", "get", err)
	}
	return value, nil
}

func (s *PostgresStore) Scan(ctx context.Context, table, partition, prefix string, limit int) ([]Row, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if limit > 0 {
		rows, err = s.conn.Query(ctx, pgScanSQL, table, partition, prefix, limit)
	} else {
		rows, err = s.conn.Query(ctx, pgScanAllSQL, table, partition, prefix)
	}
	if err != nil {
		return nil, apperrors.NewStorageUnavailable("postgres", "scan", err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		row := Row{Table: table, Partition: partition}
		if err := rows.Scan(&row.Clustering, &row.Value); err != nil {
			return nil, apperrors.NewStorageUnavailable("postgres", "scan", fmt.Errorf("decode row: %w", err))
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStorageUnavailable("postgres", "scan", err)
	}
	return out, nil
}

func (s *PostgresStore) Put(ctx context.Context, table, partition, clustering string, value []byte) error {
	if _, err := s.conn.Exec(ctx, pgPutSQL, table, partition, clustering, value); err != nil {
		return apperrors.NewStorageUnavailable("postgres", "put", err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, table, partition, clustering string) error {
	if _, err := s.conn.Exec(ctx, pgDeleteSQL, table, partition, clustering); err != nil {
		return apperrors.NewStorageUnavailable("postgres", "delete", err)
	}
	return nil
}

func (s *PostgresStore) Close(ctx context.Context) error {
	s.close()
	return nil
}
