package search

import (
	"context"

	"go.uber.org/zap"

	"github.com/Kutay07/ContentLab-sub000/internal/diff"
	"github.com/Kutay07/ContentLab-sub000/internal/hierarchy"
)

// Service is the facade that tries Meilisearch first and falls back to PG FTS.
// Either backend may be nil.
type Service struct {
	meili  *Meili
	pgfts  *PgFTS
	logger *zap.Logger
}

func NewService(meili *Meili, pgfts *PgFTS, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{meili: meili, pgfts: pgfts, logger: logger.Named("search")}
}

// Search tries Meilisearch if healthy, otherwise falls back to PG FTS.
// Backend errors are logged and yield an empty response.
func (s *Service) Search(ctx context.Context, q Query) Response {
	if s.meili != nil && s.meili.Healthy() {
		results, total, err := s.meili.Search(ctx, q)
		if err == nil {
			return Response{Results: nonNil(results), Total: total, Query: q.Text}
		}
		s.logger.Warn("meilisearch error, falling back to pgfts", zap.Error(err))
	}
	if s.pgfts == nil {
		return Response{Results: []Result{}, Query: q.Text}
	}

	results, total, err := s.pgfts.Search(ctx, q)
	if err != nil {
		s.logger.Error("pgfts search", zap.Error(err))
		return Response{Results: []Result{}, Query: q.Text}
	}
	return Response{Results: nonNil(results), Total: total, Query: q.Text}
}

// IndexChanges upserts the added and updated nodes of a publish and drops the
// deleted ones. It is a no-op without a healthy Meilisearch.
func (s *Service) IndexChanges(ctx context.Context, published hierarchy.Hierarchy, changes diff.Detailed) error {
	if s.meili == nil || !s.meili.Healthy() {
		return nil
	}
	touched := touchedIDs(changes)
	markMovedChildren(published, changes, touched)
	records := BuildRecords(published, touched)
	if err := s.meili.Upsert(ctx, records); err != nil {
		return err
	}
	groups, levels, components := deletedIDs(changes)
	if err := s.meili.Delete(ctx, groups, levels, components); err != nil {
		return err
	}
	s.logger.Debug("indexed publish",
		zap.Int("upserted", records.Len()),
		zap.Int("deleted", len(groups)+len(levels)+len(components)))
	return nil
}

// ReindexAll pushes every node of h to Meilisearch.
func (s *Service) ReindexAll(ctx context.Context, h hierarchy.Hierarchy) (int, error) {
	if s.meili == nil || !s.meili.Healthy() {
		return 0, errMeiliUnhealthy
	}
	records := BuildRecords(h, nil)
	if err := s.meili.Upsert(ctx, records); err != nil {
		return 0, err
	}
	s.logger.Info("reindexed hierarchy", zap.Int("records", records.Len()))
	return records.Len(), nil
}

func touchedIDs(d diff.Detailed) map[string]bool {
	ids := make(map[string]bool)
	for _, g := range d.Added.Groups {
		ids[g.ID] = true
	}
	for _, l := range d.Added.Levels {
		ids[l.ID] = true
	}
	for _, c := range d.Added.Components {
		ids[c.ID] = true
	}
	for _, c := range d.Updated.Groups {
		ids[c.ID] = true
	}
	for _, c := range d.Updated.Levels {
		ids[c.ID] = true
	}
	for _, c := range d.Updated.Components {
		ids[c.ID] = true
	}
	for _, r := range d.Reparented.Levels {
		ids[r.ID] = true
	}
	for _, r := range d.Reparented.Components {
		ids[r.ID] = true
	}
	return ids
}

// markMovedChildren adds the components of reparented levels to ids, since
// their records carry the group id.
func markMovedChildren(h hierarchy.Hierarchy, d diff.Detailed, ids map[string]bool) {
	if len(d.Reparented.Levels) == 0 {
		return
	}
	moved := make(map[string]bool, len(d.Reparented.Levels))
	for _, r := range d.Reparented.Levels {
		moved[r.ID] = true
	}
	for _, g := range h {
		for _, l := range g.Levels {
			if !moved[l.ID] {
				continue
			}
			for _, c := range l.Components {
				ids[c.ID] = true
			}
		}
	}
}

func deletedIDs(d diff.Detailed) (groups, levels, components []string) {
	for _, g := range d.Deleted.Groups {
		groups = append(groups, g.ID)
	}
	for _, l := range d.Deleted.Levels {
		levels = append(levels, l.ID)
	}
	for _, c := range d.Deleted.Components {
		components = append(components, c.ID)
	}
	return groups, levels, components
}

func nonNil(r []Result) []Result {
	if r == nil {
		return []Result{}
	}
	return r
}
