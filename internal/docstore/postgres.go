package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/courseforge/courseforge/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var identPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// Store hands out logical database handles backed by PostgreSQL. Each
// logical database maps to a Postgres database reachable through the
// master connection string; pools are created lazily and cached by name.
type Store struct {
	baseConfig *pgxpool.Config
	logger     *zap.Logger

	mu    sync.Mutex
	pools map[string]*pgxpool.Pool
}

func NewStore(masterURL string, logger *zap.Logger) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(masterURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	return &Store{
		baseConfig: cfg,
		logger:     logger,
		pools:      make(map[string]*pgxpool.Pool),
	}, nil
}

// Database returns a handle to the named logical database.
func (s *Store) Database(ctx context.Context, name string) (domain.Database, error) {
	pool, err := s.pool(ctx, name)
	if err != nil {
		return nil, err
	}
	return &pgDatabase{pool: pool, tables: make(map[string]bool)}, nil
}

// Ping verifies the master database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	pool, err := s.pool(ctx, s.baseConfig.ConnConfig.Database)
	if err != nil {
		return err
	}
	return pool.Ping(ctx)
}

// Close closes every cached pool.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for name, pool := range s.pools {
		pool.Close()
		delete(s.pools, name)
	}
}

func (s *Store) pool(ctx context.Context, name string) (*pgxpool.Pool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if pool, ok := s.pools[name]; ok {
		return pool, nil
	}

	cfg := s.baseConfig.Copy()
	cfg.ConnConfig.Database = name

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database %q: %w", name, err)
	}

	s.pools[name] = pool
	s.logger.Debug("opened database pool", zap.String("database", name))
	return pool, nil
}

// pgDatabase implements domain.Database over one pool. Documents live one
// collection per table, body in a jsonb column, identity in a uuid column.
type pgDatabase struct {
	pool *pgxpool.Pool

	mu     sync.Mutex
	tables map[string]bool
}

func (d *pgDatabase) ensureCollection(ctx context.Context, collection string) (string, error) {
	if !identPattern.MatchString(collection) {
		return "", fmt.Errorf("%w: %q", ErrBadCollection, collection)
	}
	table := pgx.Identifier{collection}.Sanitize()

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.tables[collection] {
		return table, nil
	}

	_, err := d.pool.Exec(ctx, fmt.Sprintf(
		`CREATE TABLE IF NOT EXISTS %s (
			id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
			doc jsonb NOT NULL,
			created_at timestamptz NOT NULL DEFAULT now(),
			updated_at timestamptz NOT NULL DEFAULT now()
		)`, table))
	if err != nil {
		return "", fmt.Errorf("ensure collection %q: %w", collection, err)
	}
	d.tables[collection] = true
	return table, nil
}

// whereClause builds a WHERE fragment from a query. An "_id" key matches
// the identifier column; everything else matches by jsonb containment.
func whereClause(query domain.Query) (string, []any, error) {
	var (
		conds []string
		args  []any
	)
	body := make(map[string]any, len(query))
	for k, v := range query {
		if k == "_id" {
			id, err := parseID(v)
			if err != nil {
				return "", nil, err
			}
			args = append(args, id)
			conds = append(conds, fmt.Sprintf("id = $%d", len(args)))
			continue
		}
		body[k] = v
	}
	if len(body) > 0 {
		data, err := json.Marshal(body)
		if err != nil {
			return "", nil, err
		}
		args = append(args, data)
		conds = append(conds, fmt.Sprintf("doc @> $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", args, nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args, nil
}

func parseID(v any) (uuid.UUID, error) {
	switch id := v.(type) {
	case uuid.UUID:
		return id, nil
	case string:
		return uuid.Parse(id)
	default:
		return uuid.Nil, fmt.Errorf("unsupported _id type %T", v)
	}
}

func (d *pgDatabase) Retrieve(ctx context.Context, collection string, query domain.Query, opts *domain.RetrieveOptions) ([]domain.Document, error) {
	table, err := d.ensureCollection(ctx, collection)
	if err != nil {
		return nil, err
	}

	where, args, err := whereClause(query)
	if err != nil {
		return nil, err
	}

	sql := `SELECT id, doc, created_at, updated_at FROM ` + table + where
	if opts != nil {
		var order []string
		for _, sf := range opts.Sort {
			if !identPattern.MatchString(strings.ToLower(sf.Key)) {
				continue
			}
			dir := "ASC"
			if sf.Desc {
				dir = "DESC"
			}
			order = append(order, fmt.Sprintf("doc->>'%s' %s", sf.Key, dir))
		}
		if len(order) > 0 {
			sql += " ORDER BY " + strings.Join(order, ", ")
		}
		if opts.Limit > 0 {
			args = append(args, opts.Limit)
			sql += fmt.Sprintf(" LIMIT $%d", len(args))
		}
		if opts.Skip > 0 {
			args = append(args, opts.Skip)
			sql += fmt.Sprintf(" OFFSET $%d", len(args))
		}
	}

	rows, err := d.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []domain.Document
	for rows.Next() {
		var (
			id                   uuid.UUID
			body                 []byte
			createdAt, updatedAt time.Time
		)
		if err := rows.Scan(&id, &body, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		doc := domain.Document{}
		if err := json.Unmarshal(body, &doc); err != nil {
			return nil, err
		}
		doc["_id"] = id.String()
		doc["createdAt"] = createdAt.Format(time.RFC3339Nano)
		doc["updatedAt"] = updatedAt.Format(time.RFC3339Nano)
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (d *pgDatabase) Create(ctx context.Context, collection string, doc domain.Document) (domain.Document, error) {
	table, err := d.ensureCollection(ctx, collection)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(stripManaged(doc))
	if err != nil {
		return nil, err
	}

	var (
		id                   uuid.UUID
		createdAt, updatedAt time.Time
	)
	err = d.pool.QueryRow(ctx,
		`INSERT INTO `+table+` (doc) VALUES ($1) RETURNING id, created_at, updated_at`,
		body,
	).Scan(&id, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	created := domain.Document{}
	for k, v := range stripManaged(doc) {
		created[k] = v
	}
	created["_id"] = id.String()
	created["createdAt"] = createdAt.Format(time.RFC3339Nano)
	created["updatedAt"] = updatedAt.Format(time.RFC3339Nano)
	return created, nil
}

func (d *pgDatabase) Update(ctx context.Context, collection string, query domain.Query, delta domain.Document) error {
	table, err := d.ensureCollection(ctx, collection)
	if err != nil {
		return err
	}

	where, args, err := whereClause(query)
	if err != nil {
		return err
	}

	body, err := json.Marshal(stripManaged(delta))
	if err != nil {
		return err
	}
	args = append(args, body)

	// Shallow merge: top-level delta keys overwrite, others are untouched.
	tag, err := d.pool.Exec(ctx, fmt.Sprintf(
		`UPDATE %s SET doc = doc || $%d, updated_at = now()%s`, table, len(args), where),
		args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (d *pgDatabase) Destroy(ctx context.Context, collection string, query domain.Query) error {
	table, err := d.ensureCollection(ctx, collection)
	if err != nil {
		return err
	}

	where, args, err := whereClause(query)
	if err != nil {
		return err
	}

	tag, err := d.pool.Exec(ctx, `DELETE FROM `+table+where, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// stripManaged drops the store-managed keys from a document body before it
// is written; they live in their own columns.
func stripManaged(doc domain.Document) domain.Document {
	out := make(domain.Document, len(doc))
	for k, v := range doc {
		switch k {
		case "_id", "createdAt", "updatedAt":
			continue
		}
		out[k] = v
	}
	return out
}
