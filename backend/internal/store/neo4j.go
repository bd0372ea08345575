package store

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	apperrors "kinship-graph/backend/pkg/errors"
)

// Neo4jStore implements Store on Neo4j. Every row is a :KVRow node keyed by
// (tbl, pk, ck); relationships between nodes are not used, the graph layer
// above keeps its own adjacency rows like on any other backend.
type Neo4jStore struct {
	driver neo4j.DriverWithContext
}

// Neo4jConstraints must exist before the store is used. Creating them is the
// deployment's job.
const Neo4jConstraints = `CREATE CONSTRAINT kvrow_key IF NOT EXISTS
FOR (r:KVRow) REQUIRE (r.tbl, r.pk, r.ck) IS NODE KEY`

// NewNeo4jStore wraps an existing driver
func NewNeo4jStore(driver neo4j.DriverWithContext) *Neo4jStore {
	return &Neo4jStore{driver: driver}
}

// OpenNeo4j creates a driver and verifies connectivity
func OpenNeo4j(ctx context.Context, uri, user, password string) (*Neo4jStore, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, password, ""))
	if err != nil {
		return nil, apperrors.NewStorageUnavailable("neo4j", "connect", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, apperrors.NewStorageUnavailable("neo4j", "connect", err)
	}
	return &Neo4jStore{driver: driver}, nil
}

func (s *Neo4jStore) Get(ctx context.Context, table, partition, clustering string) ([]byte, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	query := `
		MATCH (r:KVRow {tbl: $tbl, pk: $pk, ck: $ck})
		RETURN r.value AS value
	`

	result, err := session.Run(ctx, query, map[string]interface{}{
		"tbl": table,
		"pk":  partition,
		"ck":  clustering,
	})
	if err != nil {
		return nil, apperrors.NewStorageUnavailable("neo4j", "get", err)
	}

	if !result.Next(ctx) {
		if err := result.Err(); err != nil {
			return nil, apperrors.NewStorageUnavailable("neo4j", "get", err)
		}
		return nil, ErrNotFound
	}

	return bytesFromRecord(result.Record(), "value")
}

func (s *Neo4jStore) Scan(ctx context.Context, table, partition, prefix string, limit int) ([]Row, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	query := `
		MATCH (r:KVRow {tbl: $tbl, pk: $pk})
		WHERE r.ck STARTS WITH $prefix
		RETURN r.ck AS ck, r.value AS value
		ORDER BY r.ck
	`
	params := map[string]interface{}{
		"tbl":    table,
		"pk":     partition,
		"prefix": prefix,
	}
	if limit > 0 {
		query += " LIMIT $limit"
		params["limit"] = int64(limit)
	}

	result, err := session.Run(ctx, query, params)
	if err != nil {
		return nil, apperrors.NewStorageUnavailable("neo4j", "scan", err)
	}

	var rows []Row
	for result.Next(ctx) {
		record := result.Record()
		ck, _ := record.Get("ck")
		ckStr, ok := ck.(string)
		if !ok {
			continue
		}
		value, err := bytesFromRecord(record, "value")
		if err != nil {
			return nil, err
		}
		rows = append(rows, Row{Table: table, Partition: partition, Clustering: ckStr, Value: value})
	}
	if err := result.Err(); err != nil {
		return nil, apperrors.NewStorageUnavailable("neo4j", "scan", err)
	}
	return rows, nil
}

func (s *Neo4jStore) Put(ctx context.Context, table, partition, clustering string, value []byte) error {
	query := `
		MERGE (r:KVRow {tbl: $tbl, pk: $pk, ck: $ck})
		SET r.value = $value
	`
	return s.write(ctx, "put", query, map[string]interface{}{
		"tbl":   table,
		"pk":    partition,
		"ck":    clustering,
		"value": value,
	})
}

func (s *Neo4jStore) Delete(ctx context.Context, table, partition, clustering string) error {
	query := `
		MATCH (r:KVRow {tbl: $tbl, pk: $pk, ck: $ck})
		DELETE r
	`
	return s.write(ctx, "delete", query, map[string]interface{}{
		"tbl": table,
		"pk":  partition,
		"ck":  clustering,
	})
}

func (s *Neo4jStore) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

func (s *Neo4jStore) write(ctx context.Context, op, query string, params map[string]interface{}) error {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	result, err := session.Run(ctx, query, params)
	if err != nil {
		return apperrors.NewStorageUnavailable("neo4j", op, err)
	}
	if _, err := result.Consume(ctx); err != nil {
		return apperrors.NewStorageUnavailable("neo4j", op, err)
	}
	return nil
}

func bytesFromRecord(record *neo4j.Record, key string) ([]byte, error) {
	val, ok := record.Get(key)
	if !ok || val == nil {
		return nil, apperrors.NewStorageUnavailable("neo4j", "decode", fmt.Errorf("missing %s", key))
	}
	switch v := val.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, apperrors.NewStorageUnavailable("neo4j", "decode", fmt.Errorf("unexpected %s type %T", key, val))
	}
}
