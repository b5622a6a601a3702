// Package publish pushes the live hierarchy of an editing session to the
// published store.
package publish

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/Kutay07/ContentLab-sub000/internal/diff"
	"github.com/Kutay07/ContentLab-sub000/internal/hierarchy"
	"github.com/Kutay07/ContentLab-sub000/internal/statement"
)

// BaselineSource returns the hierarchy currently held by the published store.
type BaselineSource interface {
	FetchHierarchy(ctx context.Context) (hierarchy.Hierarchy, error)
}

// Executor runs a batch of statements all-or-nothing.
type Executor interface {
	ExecuteBatch(ctx context.Context, statements []string) error
}

// Archiver keeps a versioned copy of every published hierarchy.
type Archiver interface {
	Record(ctx context.Context, h hierarchy.Hierarchy, message string) (string, error)
}

// Indexer refreshes the search index for the nodes a publish touched.
type Indexer interface {
	IndexChanges(ctx context.Context, published hierarchy.Hierarchy, changes diff.Detailed) error
}

// Session is the part of *editor.Editor that publishing needs.
type Session interface {
	Hierarchy() hierarchy.Hierarchy
	ValidateHierarchyDetailed() error
	SetBaseline(snapshot *hierarchy.Hierarchy)
}

type Outcome string

const (
	OutcomePublished Outcome = "published"
	OutcomeNoChanges Outcome = "no_changes"
	OutcomePlanned   Outcome = "planned"
)

type Result struct {
	Outcome    Outcome               `json:"outcome"`
	Diff       diff.Detailed         `json:"diff"`
	Statements []statement.Statement `json:"statements"`
	ArchiveRef string                `json:"archive_ref,omitempty"`
	Duration   time.Duration         `json:"duration"`
}

type Service struct {
	source   BaselineSource
	executor Executor
	schema   statement.Schema
	archive  Archiver
	indexer  Indexer
	logger   *zap.Logger
	now      func() time.Time
}

type Option func(*Service)

func WithSchema(schema statement.Schema) Option {
	return func(s *Service) { s.schema = schema }
}

func WithArchiver(a Archiver) Option {
	return func(s *Service) { s.archive = a }
}

func WithIndexer(i Indexer) Option {
	return func(s *Service) { s.indexer = i }
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func NewService(source BaselineSource, executor Executor, opts ...Option) *Service {
	s := &Service{
		source:   source,
		executor: executor,
		schema:   statement.DefaultSchema,
		logger:   zap.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Plan computes the batch Publish would run, without executing it.
func (s *Service) Plan(ctx context.Context, session Session) (Result, error) {
	ctx, span := otel.Tracer("publish").Start(ctx, "publish.Service.Plan")
	defer span.End()

	res, _, err := s.prepare(ctx, session)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Result{}, err
	}
	if res.Outcome != OutcomeNoChanges {
		res.Outcome = OutcomePlanned
	}
	span.SetAttributes(attribute.String("outcome", string(res.Outcome)), attribute.Int("statements", len(res.Statements)))
	return res, nil
}

// Publish diffs the live tree against a fresh copy of the published store
// and runs the resulting batch. The session baseline only advances when the
// batch commits. Archiving and reindexing run afterwards and never fail a
// publish.
func (s *Service) Publish(ctx context.Context, session Session) (Result, error) {
	start := s.now()
	ctx, span := otel.Tracer("publish").Start(ctx, "publish.Service.Publish")
	defer span.End()

	res, published, err := s.publish(ctx, session)
	res.Duration = s.now().Sub(start)
	publishDuration.Observe(res.Duration.Seconds())

	if err != nil {
		code := ErrorCode(err)
		publishAttemptsTotal.WithLabelValues(code).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.String("error_code", code))
		s.logger.Warn("publish failed", zap.String("code", code), zap.Error(err))
		return res, err
	}

	publishAttemptsTotal.WithLabelValues(string(res.Outcome)).Inc()
	span.SetAttributes(
		attribute.String("outcome", string(res.Outcome)),
		attribute.Int("statements", len(res.Statements)),
	)
	if res.Outcome == OutcomePublished {
		for _, stmt := range res.Statements {
			publishStatementsTotal.WithLabelValues(string(stmt.Op)).Inc()
		}
		res.ArchiveRef = s.afterPublish(ctx, published, res)
	}
	s.logger.Info("publish finished",
		zap.String("outcome", string(res.Outcome)),
		zap.Int("changes", res.Diff.Count()),
		zap.Int("statements", len(res.Statements)),
		zap.Duration("duration", res.Duration),
	)
	return res, nil
}

func (s *Service) publish(ctx context.Context, session Session) (Result, hierarchy.Hierarchy, error) {
	res, live, err := s.prepare(ctx, session)
	if err != nil || res.Outcome == OutcomeNoChanges {
		return res, live, err
	}
	if err := s.executor.ExecuteBatch(ctx, statement.SQL(res.Statements)); err != nil {
		return res, live, &PublishError{Code: CodeExecute, Message: "statement batch rejected", Err: err}
	}
	session.SetBaseline(&live)
	res.Outcome = OutcomePublished
	return res, live, nil
}

// prepare runs the read-only steps shared by Plan and Publish.
func (s *Service) prepare(ctx context.Context, session Session) (Result, hierarchy.Hierarchy, error) {
	fresh, err := s.source.FetchHierarchy(ctx)
	if err != nil {
		return Result{}, nil, &PublishError{Code: CodeFetchBaseline, Message: "could not load published hierarchy", Err: err}
	}
	if err := session.ValidateHierarchyDetailed(); err != nil {
		return Result{}, nil, &PublishError{Code: CodeValidation, Message: "live hierarchy is invalid", Err: err}
	}

	live := session.Hierarchy()
	d := diff.Compute(fresh, live)
	if d.IsEmpty() {
		return Result{Outcome: OutcomeNoChanges, Diff: d}, live, nil
	}

	stmts := statement.Generate(d, live, s.schema)
	if len(stmts) == 0 {
		return Result{Diff: d}, live, &PublishError{
			Code:    CodeEmptyBatch,
			Message: fmt.Sprintf("%d changes produced no statements", d.Count()),
		}
	}
	return Result{Diff: d, Statements: stmts}, live, nil
}

func (s *Service) afterPublish(ctx context.Context, published hierarchy.Hierarchy, res Result) string {
	var ref string
	if s.archive != nil {
		msg := fmt.Sprintf("publish: %d added, %d updated, %d moved, %d deleted",
			res.Diff.Added.Len(), res.Diff.Updated.Len(), res.Diff.Reparented.Len(), res.Diff.Deleted.Len())
		var err error
		ref, err = s.archive.Record(ctx, published, msg)
		if err != nil {
			s.logger.Warn("archive published hierarchy", zap.Error(err))
		}
	}
	if s.indexer != nil {
		if err := s.indexer.IndexChanges(ctx, published, res.Diff); err != nil {
			s.logger.Warn("reindex published hierarchy", zap.Error(err))
		}
	}
	trace.SpanFromContext(ctx).AddEvent("post_publish", trace.WithAttributes(attribute.String("archive_ref", ref)))
	return ref
}
