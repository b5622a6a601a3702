package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	meili "github.com/meilisearch/meilisearch-go"
	"go.uber.org/zap"
)

const (
	idxGroups     = "contentlab_groups"
	idxLevels     = "contentlab_levels"
	idxComponents = "contentlab_components"
)

var errMeiliUnhealthy = errors.New("meilisearch unhealthy")

type indexSpec struct {
	uid        string
	rtyp       ResultType
	filterable []string
	searchable []string
}

var indexSpecs = []indexSpec{
	{uid: idxGroups, rtyp: ResultGroup, filterable: []string{"groupId"}, searchable: []string{"title"}},
	{uid: idxLevels, rtyp: ResultLevel, filterable: []string{"groupId"}, searchable: []string{"title", "groupTitle"}},
	{uid: idxComponents, rtyp: ResultComponent, filterable: []string{"groupId", "levelId", "type"}, searchable: []string{"displayName", "text", "type", "levelTitle"}},
}

// Meili implements Searcher and Index via Meilisearch.
type Meili struct {
	client  meili.ServiceManager
	logger  *zap.Logger
	healthy atomic.Bool
	done    chan struct{}
}

// NewMeili creates a Meilisearch client and configures indexes. The client is
// returned even when the first health check fails; the background loop picks
// it up once the server is reachable.
func NewMeili(url, apiKey string, logger *zap.Logger) *Meili {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Meili{
		client: meili.New(url, meili.WithAPIKey(apiKey)),
		logger: logger.Named("meili"),
		done:   make(chan struct{}),
	}

	if _, err := m.client.Health(); err != nil {
		m.logger.Warn("meilisearch unavailable", zap.String("url", url), zap.Error(err))
	} else {
		m.healthy.Store(true)
		m.configureIndexes()
	}

	go m.healthLoop()
	return m
}

func (m *Meili) configureIndexes() {
	for _, idx := range indexSpecs {
		if _, err := m.client.CreateIndex(&meili.IndexConfig{Uid: idx.uid, PrimaryKey: "id"}); err != nil {
			m.logger.Debug("create index (may already exist)", zap.String("index", idx.uid), zap.Error(err))
		}

		index := m.client.Index(idx.uid)
		filterable := make([]interface{}, len(idx.filterable))
		for i, v := range idx.filterable {
			filterable[i] = v
		}
		if _, err := index.UpdateFilterableAttributes(&filterable); err != nil {
			m.logger.Warn("update filterable attributes", zap.String("index", idx.uid), zap.Error(err))
		}
		searchable := idx.searchable
		if _, err := index.UpdateSearchableAttributes(&searchable); err != nil {
			m.logger.Warn("update searchable attributes", zap.String("index", idx.uid), zap.Error(err))
		}
	}
}

func (m *Meili) healthLoop() {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			_, err := m.client.Health()
			wasHealthy := m.healthy.Load()
			m.healthy.Store(err == nil)
			if err == nil && !wasHealthy {
				m.logger.Info("meilisearch recovered, reconfiguring indexes")
				m.configureIndexes()
			}
		}
	}
}

// Close stops the background health monitor.
func (m *Meili) Close() {
	close(m.done)
}

func (m *Meili) Healthy() bool {
	return m.healthy.Load()
}

// Search queries the three indexes (or the one selected by FilterType) and
// merges the hits.
func (m *Meili) Search(ctx context.Context, q Query) ([]Result, int, error) {
	if !m.healthy.Load() {
		return nil, 0, errMeiliUnhealthy
	}
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	queries := buildSearchRequests(q)
	if len(queries) == 0 {
		return nil, 0, nil
	}

	resp, err := m.client.MultiSearch(&meili.MultiSearchRequest{Queries: queries})
	if err != nil {
		m.healthy.Store(false)
		return nil, 0, fmt.Errorf("meilisearch multi-search: %w", err)
	}

	var results []Result
	total := 0
	for _, sr := range resp.Results {
		total += int(sr.EstimatedTotalHits)
		rtyp := indexToResultType(sr.IndexUID)
		for _, hit := range sr.Hits {
			results = append(results, hitToResult(hit, rtyp))
		}
	}
	return results, total, nil
}

func buildSearchRequests(q Query) []*meili.SearchRequest {
	limit := int64(q.Limit)
	if limit <= 0 {
		limit = 20
	}
	var queries []*meili.SearchRequest
	for _, idx := range indexSpecs {
		if q.FilterType != "" && q.FilterType != idx.rtyp {
			continue
		}
		sr := &meili.SearchRequest{
			IndexUID:              idx.uid,
			Query:                 q.Text,
			Limit:                 limit,
			Offset:                int64(q.Offset),
			AttributesToHighlight: []string{"*"},
			HighlightPreTag:       "<mark>",
			HighlightPostTag:      "</mark>",
			ShowRankingScore:      true,
		}
		if q.FilterGroupID != "" {
			sr.Filter = []string{fmt.Sprintf("groupId = %q", q.FilterGroupID)}
		}
		queries = append(queries, sr)
	}
	return queries
}

func indexToResultType(uid string) ResultType {
	for _, idx := range indexSpecs {
		if idx.uid == uid {
			return idx.rtyp
		}
	}
	return ""
}

func hitToResult(hit meili.Hit, rtyp ResultType) Result {
	r := Result{
		Type:    rtyp,
		ID:      decodeString(hit, "id"),
		GroupID: decodeString(hit, "groupId"),
	}
	switch rtyp {
	case ResultGroup:
		r.Title = formattedOrRaw(hit, "title")
	case ResultLevel:
		r.Title = formattedOrRaw(hit, "title")
		r.Snippet = formattedOrRaw(hit, "groupTitle")
		r.LevelID = r.ID
	case ResultComponent:
		r.Title = firstNonBlank(formattedOrRaw(hit, "displayName"), decodeString(hit, "type"))
		r.Snippet = formattedOrRaw(hit, "text")
		r.LevelID = decodeString(hit, "levelId")
	}
	return r
}

func formattedOrRaw(hit meili.Hit, key string) string {
	return firstNonBlank(decodeFormattedString(hit, key), decodeString(hit, key))
}

func decodeString(hit meili.Hit, key string) string {
	raw, ok := hit[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return ""
}

func decodeFormattedString(hit meili.Hit, key string) string {
	raw, ok := hit["_formatted"]
	if !ok {
		return ""
	}
	var formatted map[string]json.RawMessage
	if err := json.Unmarshal(raw, &formatted); err != nil {
		return ""
	}
	var s string
	if err := json.Unmarshal(formatted[key], &s); err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}

func firstNonBlank(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}

// Upsert adds or replaces the given records.
func (m *Meili) Upsert(ctx context.Context, records Records) error {
	if !m.healthy.Load() {
		return errMeiliUnhealthy
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(records.Groups) > 0 {
		if _, err := m.client.Index(idxGroups).AddDocuments(records.Groups, nil); err != nil {
			return fmt.Errorf("index groups: %w", err)
		}
	}
	if len(records.Levels) > 0 {
		if _, err := m.client.Index(idxLevels).AddDocuments(records.Levels, nil); err != nil {
			return fmt.Errorf("index levels: %w", err)
		}
	}
	if len(records.Components) > 0 {
		if _, err := m.client.Index(idxComponents).AddDocuments(records.Components, nil); err != nil {
			return fmt.Errorf("index components: %w", err)
		}
	}
	return nil
}

// Delete removes records by id from their indexes.
func (m *Meili) Delete(ctx context.Context, groups, levels, components []string) error {
	if !m.healthy.Load() {
		return errMeiliUnhealthy
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	batches := []struct {
		uid string
		ids []string
	}{
		{idxComponents, components},
		{idxLevels, levels},
		{idxGroups, groups},
	}
	for _, b := range batches {
		for _, id := range b.ids {
			if _, err := m.client.Index(b.uid).DeleteDocument(id, nil); err != nil {
				return fmt.Errorf("delete %s from %s: %w", id, b.uid, err)
			}
		}
	}
	return nil
}
