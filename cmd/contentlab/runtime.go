package main

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"os"

	"go.uber.org/zap"

	migrations "github.com/Kutay07/ContentLab-sub000/db"
	"github.com/Kutay07/ContentLab-sub000/internal/archive"
	"github.com/Kutay07/ContentLab-sub000/internal/config"
	"github.com/Kutay07/ContentLab-sub000/internal/draft"
	"github.com/Kutay07/ContentLab-sub000/internal/editor"
	"github.com/Kutay07/ContentLab-sub000/internal/logging"
	"github.com/Kutay07/ContentLab-sub000/internal/search"
	"github.com/Kutay07/ContentLab-sub000/internal/statement"
	"github.com/Kutay07/ContentLab-sub000/internal/store"
)

// Backend constructors, swapped out by tests.
var (
	openDraftStore = defaultDraftStore
	openDatabase   = func(ctx context.Context, cfg config.Config) (*sql.DB, error) {
		return store.Open(ctx, cfg.DatabaseURL, store.PoolOptions{})
	}
)

// runtime holds the configuration of one command invocation and opens
// backends on first use.
type runtime struct {
	cfg     config.Config
	logger  *zap.Logger
	drafts  draft.Store
	db      *sql.DB
	meili   *search.Meili
	closers []func()
}

func newRuntime() (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	level := cfg.LogLevel
	switch {
	case quiet:
		level = "error"
	case verbose:
		level = "debug"
	}
	logger, err := logging.New(level, cfg.Dev)
	if err != nil {
		return nil, err
	}
	return &runtime{cfg: cfg, logger: logger}, nil
}

func (r *runtime) close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		r.closers[i]()
	}
	r.closers = nil
	_ = r.logger.Sync()
}

func defaultDraftStore(ctx context.Context, cfg config.Config) (draft.Store, func(), error) {
	switch cfg.DraftBackend {
	case config.DraftBackendS3:
		s, err := draft.NewObjectStore(draft.ObjectConfig{
			Endpoint:  cfg.MinIOEndpoint,
			AccessKey: cfg.MinIOAccessKey,
			SecretKey: cfg.MinIOSecretKey,
			Bucket:    cfg.MinIOBucket,
			Prefix:    cfg.MinIOPrefix,
			UseSSL:    cfg.MinIOUseSSL,
		})
		if err != nil {
			return nil, nil, err
		}
		if err := s.EnsureBucket(ctx); err != nil {
			return nil, nil, err
		}
		return s, func() {}, nil
	default:
		s, err := draft.NewRedisStore(cfg.RedisURL, cfg.DraftTTL)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil
	}
}

func (r *runtime) draftStore(ctx context.Context) (draft.Store, error) {
	if r.drafts != nil {
		return r.drafts, nil
	}
	s, closeFn, err := openDraftStore(ctx, r.cfg)
	if err != nil {
		return nil, fmt.Errorf("open draft store: %w", err)
	}
	r.drafts = s
	r.closers = append(r.closers, closeFn)
	return s, nil
}

func (r *runtime) database(ctx context.Context) (*sql.DB, error) {
	if r.db != nil {
		return r.db, nil
	}
	db, err := openDatabase(ctx, r.cfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	r.db = db
	r.closers = append(r.closers, func() { _ = db.Close() })
	return db, nil
}

func (r *runtime) postgres(ctx context.Context) (*store.PostgresStore, error) {
	db, err := r.database(ctx)
	if err != nil {
		return nil, err
	}
	return store.NewPostgresStore(db), nil
}

func (r *runtime) newEditor() *editor.Editor {
	return editor.New(
		editor.WithLogger(r.logger),
		editor.WithHistoryLimit(r.cfg.HistoryLimit),
	)
}

// loadDraft opens the named draft in a fresh editor.
func (r *runtime) loadDraft(ctx context.Context, name string) (*editor.Editor, error) {
	if err := draft.ValidateName(name); err != nil {
		return nil, err
	}
	s, err := r.draftStore(ctx)
	if err != nil {
		return nil, err
	}
	ed := r.newEditor()
	if err := draft.LoadEditor(ctx, s, name, ed, false); err != nil {
		return nil, err
	}
	return ed, nil
}

// editDraft loads the named draft, applies fn and saves the result.
func (r *runtime) editDraft(ctx context.Context, name string, fn func(*editor.Editor) error) (*editor.Editor, error) {
	ed, err := r.loadDraft(ctx, name)
	if err != nil {
		return nil, err
	}
	if err := fn(ed); err != nil {
		return nil, err
	}
	if err := r.saveDraft(ctx, name, ed); err != nil {
		return nil, err
	}
	return ed, nil
}

func (r *runtime) saveDraft(ctx context.Context, name string, ed *editor.Editor) error {
	s, err := r.draftStore(ctx)
	if err != nil {
		return err
	}
	if err := draft.SaveEditor(ctx, s, name, ed); err != nil {
		return fmt.Errorf("save draft %s: %w", name, err)
	}
	r.logger.Debug("draft saved", zap.String("draft", name))
	return nil
}

func (r *runtime) archive() *archive.Service {
	return archive.New(r.cfg.ArchiveDir, r.cfg.ArchiveChannel, r.cfg.ArchiveAuthor)
}

func (r *runtime) schema() statement.Schema {
	schema := statement.DefaultSchema
	schema.ProgressTable = r.cfg.ProgressTableName()
	return schema
}

// searchService combines Meilisearch, when configured, with PG FTS.
func (r *runtime) searchService(ctx context.Context) (*search.Service, error) {
	db, err := r.database(ctx)
	if err != nil {
		return nil, err
	}
	if r.meili == nil && r.cfg.MeiliURL != "" {
		r.meili = search.NewMeili(r.cfg.MeiliURL, r.cfg.MeiliMasterKey, r.logger)
		r.closers = append(r.closers, r.meili.Close)
	}
	return search.NewService(r.meili, search.NewPgFTS(db), r.logger), nil
}

func (r *runtime) migrations(dir string) fs.FS {
	if dir == "" {
		dir = r.cfg.MigrationsDir
	}
	if dir == "" {
		return migrations.Migrations
	}
	return os.DirFS(dir)
}
