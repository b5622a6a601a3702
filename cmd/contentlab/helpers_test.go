package main

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/Kutay07/ContentLab-sub000/internal/config"
	"github.com/Kutay07/ContentLab-sub000/internal/draft"
)

// setupCLI points the draft store at a miniredis instance and the archive at
// a temp dir for the duration of the test.
func setupCLI(t *testing.T) *draft.RedisStore {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := draft.NewRedisStoreWithClient(client, time.Hour)
	t.Cleanup(func() { _ = client.Close() })

	prevOpen := openDraftStore
	openDraftStore = func(context.Context, config.Config) (draft.Store, func(), error) {
		return store, func() {}, nil
	}
	t.Cleanup(func() { openDraftStore = prevOpen })

	t.Setenv("CONTENTLAB_ARCHIVE_DIR", t.TempDir())
	t.Setenv("CONTENTLAB_LOG_LEVEL", "error")
	return store
}

// runCLI executes the command line and returns what it wrote to stdout.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out, errOut bytes.Buffer
	prevOut, prevErr := stdout, stderr
	stdout, stderr = &out, &errOut
	defer func() { stdout, stderr = prevOut, prevErr }()

	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(&errOut)
	err := root.Execute()
	if rt != nil {
		rt.close()
		rt = nil
	}
	return out.String(), err
}
