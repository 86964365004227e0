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
	"slices"
	"strings"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"

	"github.com/papercomputeco/mentor/pkg/logger"
	"github.com/papercomputeco/mentor/pkg/vector"
)

// Driver implements vector.Driver using SQLite with sqlite-vec.
type Driver struct {
	db     *sql.DB
	logger *slog.Logger
}

// Config holds configuration for the SQLite vec driver.
type Config struct {
	// DBPath is the path to the SQLite database file.
	// Use ":memory:" for an in-memory database.
	DBPath string

	// Dimensions is the number of dimensions for the embedding vectors.
	// It must match the embedder and cannot change once the table exists.
	Dimensions uint
}

// NewDriver creates a new SQLite vector driver backed by sqlite-vec.
func NewDriver(c Config, log *slog.Logger) (*Driver, error) {
	// enable connection to have sqlite-vec extension
	sqlite_vec.Auto()

	log = logger.OrNop(log)

	if c.DBPath == "" {
		return nil, fmt.Errorf("database path is required")
	}

	if c.Dimensions == 0 {
		return nil, fmt.Errorf("sqlite-vec: %w", vector.ErrNoDimensions)
	}

	db, err := sql.Open("sqlite3", c.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Every connection to ":memory:" is its own database.
	db.SetMaxOpenConns(1)

	var vecVersion string
	if err := db.QueryRow("SELECT vec_version()").Scan(&vecVersion); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite-vec not available: %w", err)
	}

	// vec0 virtual tables use integer rowids, so turns live in a regular
	// table keyed by the same rowid.
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS turns (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			doc_id TEXT NOT NULL UNIQUE,
			turn_key TEXT NOT NULL DEFAULT '',
			payload TEXT NOT NULL DEFAULT ''
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating turns table: %w", err)
	}

	createVec := fmt.Sprintf(
		`CREATE VIRTUAL TABLE IF NOT EXISTS turn_embeddings USING vec0(embedding float[%d])`,
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

	return &Driver{
		db:     db,
		logger: log,
	}, nil
}

// serializeFloat32 converts a float32 slice to the little-endian BLOB
// format sqlite-vec expects.
func serializeFloat32(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
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

// maxBatch bounds the host parameters of one IN (...) list, well under
// SQLite's SQLITE_MAX_VARIABLE_NUMBER.
const maxBatch = 500

func placeholders(ids []string) (string, []any) {
	marks := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		marks[i] = "?"
		args[i] = id
	}
	return strings.Join(marks, ","), args
}

// Add stores documents with their embeddings, replacing any document that
// already has the same ID.
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
		var rowID int64
		err := tx.QueryRowContext(ctx,
			`SELECT rowid FROM turns WHERE doc_id = ?`, doc.ID,
		).Scan(&rowID)

		switch {
		case err == nil:
			if _, err := tx.ExecContext(ctx,
				`UPDATE turns SET turn_key = ?, payload = ? WHERE rowid = ?`,
				doc.Key, doc.Payload, rowID,
			); err != nil {
				return fmt.Errorf("updating turn %s: %w", doc.ID, err)
			}

			// vec0 does not support UPDATE
			if _, err := tx.ExecContext(ctx,
				`DELETE FROM turn_embeddings WHERE rowid = ?`, rowID,
			); err != nil {
				return fmt.Errorf("deleting old embedding for turn %s: %w", doc.ID, err)
			}
		case errors.Is(err, sql.ErrNoRows):
			result, err := tx.ExecContext(ctx,
				`INSERT INTO turns(doc_id, turn_key, payload) VALUES (?, ?, ?)`,
				doc.ID, doc.Key, doc.Payload,
			)
			if err != nil {
				return fmt.Errorf("inserting turn %s: %w", doc.ID, err)
			}

			rowID, err = result.LastInsertId()
			if err != nil {
				return fmt.Errorf("getting rowid for turn %s: %w", doc.ID, err)
			}
		default:
			return fmt.Errorf("checking for existing turn %s: %w", doc.ID, err)
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO turn_embeddings(rowid, embedding) VALUES (?, ?)`,
			rowID, serializeFloat32(doc.Embedding),
		); err != nil {
			return fmt.Errorf("inserting embedding for turn %s: %w", doc.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	d.logger.Debug("added documents to sqlite-vec", "count", len(docs))

	return nil
}

// Query finds the topK nearest documents to the given embedding.
func (d *Driver) Query(ctx context.Context, embedding []float32, topK int) ([]vector.QueryResult, error) {
	if topK <= 0 {
		topK = 10
	}

	rows, err := d.db.QueryContext(ctx, `
		SELECT t.doc_id, t.turn_key, t.payload, e.distance
		FROM turn_embeddings e
		INNER JOIN turns t ON t.rowid = e.rowid
		WHERE e.embedding MATCH ?
			AND e.k = ?
		ORDER BY e.distance
	`, serializeFloat32(embedding), topK)
	if err != nil {
		return nil, fmt.Errorf("querying vectors: %w", err)
	}
	defer rows.Close()

	results := []vector.QueryResult{}
	for rows.Next() {
		var r vector.QueryResult
		var distance float64
		if err := rows.Scan(&r.ID, &r.Key, &r.Payload, &distance); err != nil {
			return nil, fmt.Errorf("scanning query result: %w", err)
		}
		r.Score = float32(1.0 / (1.0 + distance))
		results = append(results, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating query results: %w", err)
	}

	d.logger.Debug("queried sqlite-vec", "results", len(results))

	return results, nil
}

// Get retrieves documents by their IDs, including their embeddings.
func (d *Driver) Get(ctx context.Context, ids []string) ([]vector.Document, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	docs := []vector.Document{}
	for batch := range slices.Chunk(ids, maxBatch) {
		got, err := d.get(ctx, batch)
		if err != nil {
			return nil, err
		}
		docs = append(docs, got...)
	}
	return docs, nil
}

func (d *Driver) get(ctx context.Context, ids []string) ([]vector.Document, error) {
	in, args := placeholders(ids)
	rows, err := d.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT t.doc_id, t.turn_key, t.payload, e.embedding
		FROM turns t
		LEFT JOIN turn_embeddings e ON e.rowid = t.rowid
		WHERE t.doc_id IN (%s)
		ORDER BY t.rowid
	`, in), args...)
	if err != nil {
		return nil, fmt.Errorf("querying turns: %w", err)
	}
	defer rows.Close()

	docs := []vector.Document{}
	for rows.Next() {
		var doc vector.Document
		var blob []byte
		if err := rows.Scan(&doc.ID, &doc.Key, &doc.Payload, &blob); err != nil {
			return nil, fmt.Errorf("scanning turn: %w", err)
		}
		if len(blob) > 0 {
			doc.Embedding, err = deserializeFloat32(blob)
			if err != nil {
				return nil, fmt.Errorf("decoding embedding for turn %s: %w", doc.ID, err)
			}
		}
		docs = append(docs, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating turns: %w", err)
	}

	return docs, nil
}

// ListIDs returns every stored document ID in insertion order.
func (d *Driver) ListIDs(ctx context.Context) ([]string, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT doc_id FROM turns ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("listing turns: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning turn id: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
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

	for batch := range slices.Chunk(ids, maxBatch) {
		in, args := placeholders(batch)

		if _, err := tx.ExecContext(ctx, fmt.Sprintf(
			`DELETE FROM turn_embeddings WHERE rowid IN (SELECT rowid FROM turns WHERE doc_id IN (%s))`, in,
		), args...); err != nil {
			return fmt.Errorf("deleting embeddings: %w", err)
		}

		if _, err := tx.ExecContext(ctx, fmt.Sprintf(
			`DELETE FROM turns WHERE doc_id IN (%s)`, in,
		), args...); err != nil {
			return fmt.Errorf("deleting turns: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	d.logger.Debug("deleted documents from sqlite-vec", "count", len(ids))

	return nil
}

// Close releases resources held by the driver.
func (d *Driver) Close() error {
	return d.db.Close()
}
