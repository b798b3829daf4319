// Package sqlitevec provides a SQLite-backed vector driver using sqlite-vec.
package sqlitevec

import (
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"

	"github.com/papercomputeco/legalqa/pkg/logger"
	"github.com/papercomputeco/legalqa/pkg/vector"
)

// Driver implements vector.Driver using SQLite with sqlite-vec.
type Driver struct {
	db         *sql.DB
	dimensions uint
	logger     *slog.Logger
}

// Config holds configuration for the SQLite vec driver.
type Config struct {
	// DBPath is the path to the SQLite database file.
	// Use ":memory:" for an in-memory database.
	DBPath string

	// Dimensions is the size of the stored embeddings. It must match the
	// embedding model and cannot be zero.
	Dimensions uint
}

const schema = `
CREATE TABLE IF NOT EXISTS article_docs (
	rowid INTEGER PRIMARY KEY AUTOINCREMENT,
	doc_id TEXT NOT NULL UNIQUE,
	checksum TEXT NOT NULL DEFAULT ''
)`

// NewDriver opens the database, loads sqlite-vec and creates the tables.
func NewDriver(c Config, log *slog.Logger) (*Driver, error) {
	sqlite_vec.Auto()

	if c.DBPath == "" {
		return nil, errors.New("database path is required")
	}
	if c.Dimensions == 0 {
		return nil, errors.New("sqlite-vec embedding dimensions cannot be 0, must be configured")
	}
	if log == nil {
		log = logger.Nop()
	}

	db, err := sql.Open("sqlite3", c.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	db.SetMaxOpenConns(1)

	var vecVersion string
	if err := db.QueryRow("SELECT vec_version()").Scan(&vecVersion); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite-vec not available: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating documents table: %w", err)
	}

	createVec := fmt.Sprintf(
		`CREATE VIRTUAL TABLE IF NOT EXISTS article_embeddings USING vec0(embedding float[%d] distance_metric=cosine)`,
		c.Dimensions,
	)
	if _, err := db.Exec(createVec); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating vec0 table: %w", err)
	}

	log.Info("sqlite-vec vector driver initialized",
		"db_path", c.DBPath,
		"dimensions", c.Dimensions,
		"vec_version", vecVersion,
	)

	return &Driver{db: db, dimensions: c.Dimensions, logger: log}, nil
}

func deserializeFloat32(b []byte) ([]float32, error) {
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("invalid embedding blob length %d: must be divisible by 4", len(b))
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v, nil
}

func (d *Driver) checkDimensions(id string, embedding []float32) error {
	if uint(len(embedding)) != d.dimensions {
		return fmt.Errorf("%w: %s has %d, store expects %d", vector.ErrDimensions, id, len(embedding), d.dimensions)
	}
	return nil
}

// Add stores documents with their embeddings, replacing existing ones.
func (d *Driver) Add(ctx context.Context, docs []vector.Document) error {
	if len(docs) == 0 {
		return nil
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, doc := range docs {
		if err := d.checkDimensions(doc.ID, doc.Embedding); err != nil {
			return err
		}
		blob, err := sqlite_vec.SerializeFloat32(doc.Embedding)
		if err != nil {
			return fmt.Errorf("serializing embedding for %s: %w", doc.ID, err)
		}

		var rowid int64
		err = tx.QueryRowContext(ctx,
			`INSERT INTO article_docs (doc_id, checksum) VALUES (?, ?)
			 ON CONFLICT(doc_id) DO UPDATE SET checksum = excluded.checksum
			 RETURNING rowid`,
			doc.ID, doc.Checksum,
		).Scan(&rowid)
		if err != nil {
			return fmt.Errorf("upserting document %s: %w", doc.ID, err)
		}

		// vec0 tables have no upsert.
		if _, err := tx.ExecContext(ctx, "DELETE FROM article_embeddings WHERE rowid = ?", rowid); err != nil {
			return fmt.Errorf("clearing embedding for %s: %w", doc.ID, err)
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO article_embeddings (rowid, embedding) VALUES (?, ?)", rowid, blob,
		); err != nil {
			return fmt.Errorf("inserting embedding for %s: %w", doc.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing documents: %w", err)
	}

	d.logger.Debug("added documents to sqlite-vec", "count", len(docs))
	return nil
}

// Query finds the topK nearest documents by cosine distance.
func (d *Driver) Query(ctx context.Context, embedding []float32, topK int) ([]vector.QueryResult, error) {
	if topK <= 0 {
		topK = vector.DefaultTopK
	}
	if err := d.checkDimensions("query", embedding); err != nil {
		return nil, err
	}

	blob, err := sqlite_vec.SerializeFloat32(embedding)
	if err != nil {
		return nil, fmt.Errorf("serializing query embedding: %w", err)
	}

	rows, err := d.db.QueryContext(ctx, `
		WITH knn AS (
			SELECT rowid, distance, embedding
			FROM article_embeddings
			WHERE embedding MATCH ? AND k = ?
		)
		SELECT d.doc_id, d.checksum, knn.embedding, knn.distance
		FROM knn JOIN article_docs d ON d.rowid = knn.rowid
		ORDER BY knn.distance`,
		blob, topK,
	)
	if err != nil {
		return nil, fmt.Errorf("querying embeddings: %w", err)
	}
	defer rows.Close()

	var results []vector.QueryResult
	for rows.Next() {
		var (
			r   vector.QueryResult
			raw []byte
		)
		if err := rows.Scan(&r.ID, &r.Checksum, &raw, &r.Distance); err != nil {
			return nil, fmt.Errorf("scanning query row: %w", err)
		}
		if r.Embedding, err = deserializeFloat32(raw); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating query rows: %w", err)
	}

	d.logger.Debug("queried sqlite-vec", "results", len(results))
	return results, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func toArgs(ids []string) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}

// Get retrieves documents by their IDs, in storage order.
func (d *Driver) Get(ctx context.Context, ids []string) ([]vector.Document, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf(`
		SELECT d.doc_id, d.checksum, e.embedding
		FROM article_docs d JOIN article_embeddings e ON e.rowid = d.rowid
		WHERE d.doc_id IN (%s)
		ORDER BY d.rowid`, placeholders(len(ids)))

	rows, err := d.db.QueryContext(ctx, query, toArgs(ids)...)
	if err != nil {
		return nil, fmt.Errorf("getting documents: %w", err)
	}
	defer rows.Close()

	var docs []vector.Document
	for rows.Next() {
		var (
			doc vector.Document
			raw []byte
		)
		if err := rows.Scan(&doc.ID, &doc.Checksum, &raw); err != nil {
			return nil, fmt.Errorf("scanning document row: %w", err)
		}
		if doc.Embedding, err = deserializeFloat32(raw); err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// Delete removes documents by their IDs. Unknown IDs are ignored.
func (d *Driver) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	in := placeholders(len(ids))
	args := toArgs(ids)
	if _, err := tx.ExecContext(ctx,
		fmt.Sprintf("DELETE FROM article_embeddings WHERE rowid IN (SELECT rowid FROM article_docs WHERE doc_id IN (%s))", in),
		args...,
	); err != nil {
		return fmt.Errorf("deleting embeddings: %w", err)
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM article_docs WHERE doc_id IN (%s)", in), args...); err != nil {
		return fmt.Errorf("deleting documents: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing delete: %w", err)
	}

	d.logger.Debug("deleted documents from sqlite-vec", "count", len(ids))
	return nil
}

// Close closes the database.
func (d *Driver) Close() error {
	return d.db.Close()
}

var _ vector.Driver = (*Driver)(nil)
