package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Kutay07/ContentLab-sub000/internal/hierarchy"
)

// PostgresStore reads and writes the published content hierarchy.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) DB() *sql.DB {
	return s.db
}

// BatchError reports the statement that made a batch fail. The whole batch
// has been rolled back when it is returned.
type BatchError struct {
	Index     int
	Statement string
	Err       error
}

func (e *BatchError) Error() string {
	var pgErr *pgconn.PgError
	if errors.As(e.Err, &pgErr) {
		return fmt.Sprintf("statement %d failed (%s %s): %s", e.Index, pgErr.Code, pgErr.ConstraintName, pgErr.Message)
	}
	return fmt.Sprintf("statement %d failed: %v", e.Index, e.Err)
}

func (e *BatchError) Unwrap() error { return e.Err }

// ExecuteBatch runs statements in order inside one transaction.
func (s *PostgresStore) ExecuteBatch(ctx context.Context, statements []string) error {
	if len(statements) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin batch: %w", err)
	}
	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			_ = tx.Rollback()
			return &BatchError{Index: i, Statement: stmt, Err: err}
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	return nil
}

// FetchHierarchy loads the published hierarchy in display order.
func (s *PostgresStore) FetchHierarchy(ctx context.Context) (hierarchy.Hierarchy, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true, Isolation: sql.LevelRepeatableRead})
	if err != nil {
		return nil, fmt.Errorf("begin read: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	out := hierarchy.Hierarchy{}
	groupIdx := map[string]int{}

	groupRows, err := tx.QueryContext(ctx, `
		SELECT id, title, order_index
		FROM level_groups
		ORDER BY order_index, id
	`)
	if err != nil {
		return nil, fmt.Errorf("load level groups: %w", err)
	}
	defer groupRows.Close()
	for groupRows.Next() {
		g := hierarchy.LevelGroup{Levels: []hierarchy.Level{}}
		if err := groupRows.Scan(&g.ID, &g.Title, &g.Order); err != nil {
			return nil, fmt.Errorf("scan level group: %w", err)
		}
		groupIdx[g.ID] = len(out)
		out = append(out, g)
	}
	if err := groupRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate level groups: %w", err)
	}

	type levelPos struct{ gi, li int }
	levelIdx := map[string]levelPos{}

	levelRows, err := tx.QueryContext(ctx, `
		SELECT id, group_id, title, icon_key, icon_family, xp_reward, order_index
		FROM levels
		ORDER BY group_id, order_index, id
	`)
	if err != nil {
		return nil, fmt.Errorf("load levels: %w", err)
	}
	defer levelRows.Close()
	for levelRows.Next() {
		var (
			l                   = hierarchy.Level{Components: []hierarchy.Component{}}
			groupID             string
			iconKey, iconFamily sql.NullString
		)
		if err := levelRows.Scan(&l.ID, &groupID, &l.Title, &iconKey, &iconFamily, &l.XPReward, &l.Order); err != nil {
			return nil, fmt.Errorf("scan level: %w", err)
		}
		gi, ok := groupIdx[groupID]
		if !ok {
			continue
		}
		l.IconKey = nullable(iconKey)
		l.IconFamily = nullable(iconFamily)
		levelIdx[l.ID] = levelPos{gi: gi, li: len(out[gi].Levels)}
		out[gi].Levels = append(out[gi].Levels, l)
	}
	if err := levelRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate levels: %w", err)
	}

	componentRows, err := tx.QueryContext(ctx, `
		SELECT id, level_id, type, display_name, content, order_index
		FROM level_components
		ORDER BY level_id, order_index, id
	`)
	if err != nil {
		return nil, fmt.Errorf("load components: %w", err)
	}
	defer componentRows.Close()
	for componentRows.Next() {
		var (
			c       hierarchy.Component
			levelID string
			content []byte
		)
		if err := componentRows.Scan(&c.ID, &levelID, &c.Type, &c.DisplayName, &content, &c.Order); err != nil {
			return nil, fmt.Errorf("scan component: %w", err)
		}
		pos, ok := levelIdx[levelID]
		if !ok {
			continue
		}
		if len(content) > 0 {
			if c.Content, err = hierarchy.ParseContent(content); err != nil {
				return nil, fmt.Errorf("decode content of component %s: %w", c.ID, err)
			}
		}
		level := &out[pos.gi].Levels[pos.li]
		level.Components = append(level.Components, c)
	}
	if err := componentRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate components: %w", err)
	}
	return out, nil
}

func nullable(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}
