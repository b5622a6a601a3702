package search

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// PgFTS implements Searcher over the published tables' generated fts columns.
type PgFTS struct {
	db *sql.DB
}

func NewPgFTS(db *sql.DB) *PgFTS {
	return &PgFTS{db: db}
}

// Healthy always returns true; without Postgres nothing is published anyway.
func (p *PgFTS) Healthy() bool {
	return true
}

// Search runs a UNION ALL over level_groups, levels and level_components
// ranked with ts_rank, using ts_headline for snippets.
func (p *PgFTS) Search(ctx context.Context, q Query) ([]Result, int, error) {
	if strings.TrimSpace(q.Text) == "" {
		return nil, 0, nil
	}
	union, args := buildFTSQuery(q)
	if union == "" {
		return nil, 0, nil
	}

	limit := q.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := max(q.Offset, 0)

	var total int
	if err := p.db.QueryRowContext(ctx, "SELECT count(*) FROM ("+union+") sub", args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("pgfts count: %w", err)
	}

	dataSQL := fmt.Sprintf(`SELECT type, id, title, snippet, group_id, level_id
		FROM (%s) sub
		ORDER BY rank DESC, id
		LIMIT %d OFFSET %d`, union, limit, offset)
	rows, err := p.db.QueryContext(ctx, dataSQL, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("pgfts query: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		var typ string
		if err := rows.Scan(&typ, &r.ID, &r.Title, &r.Snippet, &r.GroupID, &r.LevelID); err != nil {
			return nil, 0, fmt.Errorf("pgfts scan: %w", err)
		}
		r.Type = ResultType(typ)
		results = append(results, r)
	}
	return results, total, rows.Err()
}

// buildFTSQuery returns the ranked union for q and its positional arguments.
func buildFTSQuery(q Query) (string, []any) {
	const tsQuery = "plainto_tsquery('english', $1)"
	args := []any{q.Text}
	groupFilter := func(col string) string {
		if q.FilterGroupID == "" {
			return ""
		}
		if len(args) == 1 {
			args = append(args, q.FilterGroupID)
		}
		return fmt.Sprintf(" AND %s = $2", col)
	}

	var parts []string
	if q.FilterType == "" || q.FilterType == ResultGroup {
		parts = append(parts, fmt.Sprintf(`
			SELECT 'group'::text AS type, g.id, g.title,
				''::text AS snippet,
				g.id AS group_id, ''::text AS level_id,
				ts_rank(g.fts, %[1]s) AS rank
			FROM level_groups g
			WHERE g.fts @@ %[1]s%[2]s`, tsQuery, groupFilter("g.id")))
	}
	if q.FilterType == "" || q.FilterType == ResultLevel {
		parts = append(parts, fmt.Sprintf(`
			SELECT 'level'::text AS type, l.id, l.title,
				g.title AS snippet,
				l.group_id, l.id AS level_id,
				ts_rank(l.fts, %[1]s) AS rank
			FROM levels l
			JOIN level_groups g ON g.id = l.group_id
			WHERE l.fts @@ %[1]s%[2]s`, tsQuery, groupFilter("l.group_id")))
	}
	if q.FilterType == "" || q.FilterType == ResultComponent {
		parts = append(parts, fmt.Sprintf(`
			SELECT 'component'::text AS type, c.id,
				coalesce(nullif(c.display_name, ''), c.type) AS title,
				ts_headline('english', c.content::text, %[1]s, 'MaxFragments=1,MaxWords=30') AS snippet,
				l.group_id, c.level_id,
				ts_rank(c.fts, %[1]s) AS rank
			FROM level_components c
			JOIN levels l ON l.id = c.level_id
			WHERE c.fts @@ %[1]s%[2]s`, tsQuery, groupFilter("l.group_id")))
	}
	return strings.Join(parts, " UNION ALL "), args
}
