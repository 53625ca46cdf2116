// Package postgres keeps every collection as JSONB documents in one records
// table. Uniqueness keys are computed in Go and enforced by a partial unique
// index, so concurrent writers race on the index rather than on a read.
package postgres

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"

	"site-content-api/internal/model"
	"site-content-api/internal/store"
)

//go:embed migrations/001_records.sql
var migration string

const uniqueViolation = "23505"

type Backend struct {
	pool  *pgxpool.Pool
	clock store.Clock
}

// Open connects, pings and applies the records migration.
func Open(ctx context.Context, databaseURL string) (*Backend, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	cfg.MaxConns = 10
	cfg.MinConns = 1
	cfg.MaxConnLifetime = 30 * time.Minute
	cfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("db: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	if _, err := pool.Exec(ctx, migration); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	log.Info("connected to postgres, migration applied")
	return New(pool), nil
}

func New(pool *pgxpool.Pool) *Backend {
	return &Backend{pool: pool, clock: store.SystemClock}
}

func (b *Backend) Collection(c store.Collection) (store.Store, error) {
	if c.Name == "" {
		return nil, errors.New("collection name required")
	}
	return &Collection{pool: b.pool, decl: c, clock: b.clock}, nil
}

func (b *Backend) Ping(ctx context.Context) error { return b.pool.Ping(ctx) }

func (b *Backend) Close() error {
	b.pool.Close()
	return nil
}

type Collection struct {
	pool  *pgxpool.Pool
	decl  store.Collection
	clock store.Clock
}

func (c *Collection) Find(ctx context.Context, q store.Query) ([]model.Record, error) {
	args := []any{c.decl.Name}
	cond, err := where(q, &args)
	if err != nil {
		return nil, err
	}
	rows, err := c.pool.Query(ctx,
		`SELECT id, data, created_at, updated_at
		 FROM records
		 WHERE collection = $1`+cond+`
		 ORDER BY created_at, id`, args...,
	)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", c.decl.Name, err)
	}
	defer rows.Close()

	out := []model.Record{}
	for rows.Next() {
		r, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	store.SortRecords(out, c.decl.Sort)
	return out, nil
}

func (c *Collection) Count(ctx context.Context, q store.Query) (int, error) {
	args := []any{c.decl.Name}
	cond, err := where(q, &args)
	if err != nil {
		return 0, err
	}
	var n int
	err = c.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM records WHERE collection = $1`+cond, args...,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", c.decl.Name, err)
	}
	return n, nil
}

func (c *Collection) FindByID(ctx context.Context, id string) (model.Record, error) {
	row := c.pool.QueryRow(ctx,
		`SELECT id, data, created_at, updated_at
		 FROM records WHERE collection = $1 AND id = $2`, c.decl.Name, id,
	)
	r, err := scan(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Record{}, store.ErrNotFound
	}
	return r, err
}

func (c *Collection) Insert(ctx context.Context, fields map[string]any) (model.Record, error) {
	if err := ctx.Err(); err != nil {
		return model.Record{}, err
	}
	now := c.clock()
	r := model.Record{
		ID:        uuid.New().String(),
		Fields:    store.StripReserved(fields),
		CreatedAt: now,
		UpdatedAt: now,
	}
	data, err := json.Marshal(r.Fields)
	if err != nil {
		return model.Record{}, fmt.Errorf("encode %s: %w", c.decl.Name, err)
	}

	_, err = c.pool.Exec(ctx,
		`INSERT INTO records (collection, id, data, unique_key, created_at, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6)`,
		c.decl.Name, r.ID, data, c.key(r.Fields), r.CreatedAt, r.UpdatedAt,
	)
	if err != nil {
		return model.Record{}, classify(err)
	}
	// read back through JSON so numbers come out as float64 like on Find
	if r.Fields, err = decode(data); err != nil {
		return model.Record{}, err
	}
	return r, nil
}

func (c *Collection) UpdateByID(ctx context.Context, id string, patch map[string]any) (model.Record, error) {
	if err := ctx.Err(); err != nil {
		return model.Record{}, err
	}
	tx, err := c.pool.Begin(ctx)
	if err != nil {
		return model.Record{}, err
	}
	defer tx.Rollback(ctx)

	cur, err := scan(tx.QueryRow(ctx,
		`SELECT id, data, created_at, updated_at
		 FROM records WHERE collection = $1 AND id = $2
		 FOR UPDATE`, c.decl.Name, id,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Record{}, store.ErrNotFound
	}
	if err != nil {
		return model.Record{}, err
	}

	next := cur
	next.Fields = model.Merge(cur.Fields, store.StripReserved(patch))
	next.UpdatedAt = c.clock()
	if next.UpdatedAt.Before(cur.CreatedAt) {
		next.UpdatedAt = cur.CreatedAt
	}
	data, err := json.Marshal(next.Fields)
	if err != nil {
		return model.Record{}, fmt.Errorf("encode %s: %w", c.decl.Name, err)
	}

	_, err = tx.Exec(ctx,
		`UPDATE records SET data=$1, unique_key=$2, updated_at=$3
		 WHERE collection=$4 AND id=$5`,
		data, c.key(next.Fields), next.UpdatedAt, c.decl.Name, id,
	)
	if err != nil {
		return model.Record{}, classify(err)
	}
	if err := ctx.Err(); err != nil {
		return model.Record{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return model.Record{}, classify(err)
	}
	if next.Fields, err = decode(data); err != nil {
		return model.Record{}, err
	}
	return next, nil
}

func (c *Collection) DeleteByID(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	tag, err := c.pool.Exec(ctx,
		`DELETE FROM records WHERE collection = $1 AND id = $2`, c.decl.Name, id,
	)
	if err != nil {
		return false, fmt.Errorf("delete %s: %w", c.decl.Name, err)
	}
	return tag.RowsAffected() > 0, nil
}

// key is nil (SQL NULL) for documents outside the uniqueness constraint.
func (c *Collection) key(fields map[string]any) *string {
	k, ok := c.decl.Unique.Of(fields)
	if !ok {
		return nil
	}
	return &k
}

func classify(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return store.ErrConflict
	}
	return err
}

func scan(row pgx.Row) (model.Record, error) {
	var (
		r    model.Record
		data []byte
	)
	if err := row.Scan(&r.ID, &data, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return model.Record{}, err
	}
	fields, err := decode(data)
	if err != nil {
		return model.Record{}, fmt.Errorf("record %s: %w", r.ID, err)
	}
	r.Fields = fields
	r.CreatedAt = r.CreatedAt.UTC()
	r.UpdatedAt = r.UpdatedAt.UTC()
	return r, nil
}

func decode(data []byte) (map[string]any, error) {
	out := map[string]any{}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode data: %w", err)
	}
	return out, nil
}

var columns = map[string]string{
	model.KeyID:        "id",
	model.KeyCreatedAt: "created_at",
	model.KeyUpdatedAt: "updated_at",
}

// where renders q as additional AND clauses, appending bind values to args.
func where(q store.Query, args *[]any) (string, error) {
	var b strings.Builder
	bind := func(v any) string {
		*args = append(*args, v)
		return fmt.Sprintf("$%d", len(*args))
	}

	for _, c := range q.Filter {
		if col, ok := columns[c.Field]; ok {
			switch c.Op {
			case store.OpEq:
				fmt.Fprintf(&b, " AND %s = %s", col, bind(c.Value))
			case store.OpRange:
				if c.From != nil {
					fmt.Fprintf(&b, " AND %s >= %s", col, bind(c.From))
				}
				if c.To != nil {
					fmt.Fprintf(&b, " AND %s < %s", col, bind(c.To))
				}
			default:
				return "", fmt.Errorf("unsupported condition on %s", c.Field)
			}
			continue
		}

		path := strings.Split(c.Field, ".")
		switch c.Op {
		case store.OpEq:
			doc, err := json.Marshal(nest(path, c.Value))
			if err != nil {
				return "", err
			}
			fmt.Fprintf(&b, " AND data @> %s::jsonb", bind(string(doc)))
		case store.OpContains:
			doc, err := json.Marshal(nest(path, []any{c.Value}))
			if err != nil {
				return "", err
			}
			fmt.Fprintf(&b, " AND data @> %s::jsonb", bind(string(doc)))
		case store.OpRange:
			p := bind(path)
			expr := fmt.Sprintf(`(data #>> %s::text[]) COLLATE "C"`, p)
			if isNumber(c.From) || isNumber(c.To) {
				expr = fmt.Sprintf(`(data #>> %s::text[])::numeric`, p)
			}
			fmt.Fprintf(&b, " AND (data #>> %s::text[]) IS NOT NULL", p)
			if c.From != nil {
				fmt.Fprintf(&b, " AND %s >= %s", expr, bind(c.From))
			}
			if c.To != nil {
				fmt.Fprintf(&b, " AND %s < %s", expr, bind(c.To))
			}
		}
	}
	return b.String(), nil
}

func nest(path []string, v any) map[string]any {
	if len(path) == 1 {
		return map[string]any{path[0]: v}
	}
	return map[string]any{path[0]: nest(path[1:], v)}
}

func isNumber(v any) bool {
	switch v.(type) {
	case int, int32, int64, float32, float64:
		return true
	}
	return false
}
