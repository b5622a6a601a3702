// Package archive keeps every published hierarchy as a commit in a local git
// repository, one repository per channel.
package archive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/Kutay07/ContentLab-sub000/internal/diff"
	"github.com/Kutay07/ContentLab-sub000/internal/hierarchy"
)

const (
	DefaultChannel = "published"
	contentFile    = "hierarchy.json"
	branchName     = "main"
)

type Commit struct {
	Hash      string    `json:"hash"`
	Message   string    `json:"message"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"created_at"`
}

type Service struct {
	baseDir string
	channel string
	author  string
	now     func() time.Time

	lockMu sync.Mutex
	locks  map[string]*sync.Mutex
}

// New archives into baseDir. Record writes to channel, or DefaultChannel
// when channel is empty.
func New(baseDir, channel, author string) *Service {
	if channel == "" {
		channel = DefaultChannel
	}
	if author == "" {
		author = "ContentLab"
	}
	return &Service{
		baseDir: baseDir,
		channel: channel,
		author:  author,
		now:     time.Now,
		locks:   make(map[string]*sync.Mutex),
	}
}

// Record commits h to the default channel and returns the short hash.
func (s *Service) Record(_ context.Context, h hierarchy.Hierarchy, message string) (string, error) {
	commit, err := s.Commit(s.channel, h, s.author, message)
	if err != nil {
		return "", err
	}
	return commit.Hash, nil
}

// Commit writes h to channel. Committing a hierarchy identical to the head
// returns the head commit.
func (s *Service) Commit(channel string, h hierarchy.Hierarchy, author, message string) (Commit, error) {
	lock := s.channelLock(channel)
	lock.Lock()
	defer lock.Unlock()

	repo, err := s.openOrInit(channel)
	if err != nil {
		return Commit{}, err
	}
	worktree, err := repo.Worktree()
	if err != nil {
		return Commit{}, fmt.Errorf("open worktree: %w", err)
	}

	if h == nil {
		h = hierarchy.Hierarchy{}
	}
	payload, err := json.MarshalIndent(h, "", "  ")
	if err != nil {
		return Commit{}, fmt.Errorf("marshal hierarchy: %w", err)
	}
	root := worktree.Filesystem.Root()
	if err := os.WriteFile(filepath.Join(root, contentFile), append(payload, '\n'), 0o644); err != nil {
		return Commit{}, fmt.Errorf("write %s: %w", contentFile, err)
	}
	if _, err := worktree.Add(contentFile); err != nil {
		return Commit{}, fmt.Errorf("git add hierarchy: %w", err)
	}

	hash, err := worktree.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  author,
			Email: fmt.Sprintf("%s@contentlab.local", sanitizeEmail(author)),
			When:  s.now(),
		},
	})
	if errors.Is(err, git.ErrEmptyCommit) {
		head, headErr := repo.Head()
		if headErr != nil {
			return Commit{}, fmt.Errorf("resolve head: %w", headErr)
		}
		hash, err = head.Hash(), nil
	}
	if err != nil {
		return Commit{}, fmt.Errorf("commit hierarchy: %w", err)
	}

	commitObj, err := repo.CommitObject(hash)
	if err != nil {
		return Commit{}, fmt.Errorf("read commit object: %w", err)
	}
	return toCommit(commitObj), nil
}

// History lists the commits of channel, newest first. A limit of 0 returns
// all of them.
func (s *Service) History(channel string, limit int) ([]Commit, error) {
	lock := s.channelLock(channel)
	lock.Lock()
	defer lock.Unlock()

	repo, err := git.PlainOpen(s.repoPath(channel))
	if err != nil {
		return nil, fmt.Errorf("open archive %s: %w", channel, err)
	}
	head, err := repo.Head()
	if err != nil {
		return nil, fmt.Errorf("resolve head: %w", err)
	}

	iter, err := repo.Log(&git.LogOptions{From: head.Hash()})
	if err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}
	defer iter.Close()

	items := make([]Commit, 0)
	err = iter.ForEach(func(commitObj *object.Commit) error {
		items = append(items, toCommit(commitObj))
		if limit > 0 && len(items) >= limit {
			return io.EOF
		}
		return nil
	})
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("iterate log: %w", err)
	}
	return items, nil
}

// HierarchyAt returns the hierarchy recorded at revision, which may be a
// short or full hash or any revision go-git resolves ("HEAD~1").
func (s *Service) HierarchyAt(channel, revision string) (hierarchy.Hierarchy, error) {
	lock := s.channelLock(channel)
	lock.Lock()
	defer lock.Unlock()

	repo, err := git.PlainOpen(s.repoPath(channel))
	if err != nil {
		return nil, fmt.Errorf("open archive %s: %w", channel, err)
	}
	hash, err := resolveHash(repo, revision)
	if err != nil {
		return nil, err
	}
	commitObj, err := repo.CommitObject(hash)
	if err != nil {
		return nil, fmt.Errorf("read commit %s: %w", revision, err)
	}
	return readHierarchyFromCommit(commitObj)
}

// Diff compares two archived revisions of channel.
func (s *Service) Diff(channel, fromRevision, toRevision string) (diff.Detailed, error) {
	from, err := s.HierarchyAt(channel, fromRevision)
	if err != nil {
		return diff.Detailed{}, err
	}
	to, err := s.HierarchyAt(channel, toRevision)
	if err != nil {
		return diff.Detailed{}, err
	}
	return diff.Compute(from, to), nil
}

func (s *Service) repoPath(channel string) string {
	return filepath.Join(s.baseDir, channel)
}

func (s *Service) channelLock(channel string) *sync.Mutex {
	s.lockMu.Lock()
	defer s.lockMu.Unlock()
	lock, ok := s.locks[channel]
	if ok {
		return lock
	}
	lock = &sync.Mutex{}
	s.locks[channel] = lock
	return lock
}

// openOrInit opens the channel repository, creating it with HEAD on main
// when it does not exist yet.
func (s *Service) openOrInit(channel string) (*git.Repository, error) {
	path := s.repoPath(channel)
	repo, err := git.PlainOpen(path)
	if err == nil {
		return repo, nil
	}
	if !errors.Is(err, git.ErrRepositoryNotExists) {
		return nil, fmt.Errorf("open archive %s: %w", channel, err)
	}

	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("create archive dir: %w", err)
	}
	repo, err = git.PlainInit(path, false)
	if err != nil {
		return nil, fmt.Errorf("init archive: %w", err)
	}
	head := plumbing.NewSymbolicReference(plumbing.HEAD, plumbing.NewBranchReferenceName(branchName))
	if err := repo.Storer.SetReference(head); err != nil {
		return nil, fmt.Errorf("set HEAD to %s: %w", branchName, err)
	}
	return repo, nil
}

func readHierarchyFromCommit(commitObj *object.Commit) (hierarchy.Hierarchy, error) {
	file, err := commitObj.File(contentFile)
	if err != nil {
		return nil, fmt.Errorf("load %s from commit: %w", contentFile, err)
	}
	reader, err := file.Reader()
	if err != nil {
		return nil, fmt.Errorf("open hierarchy reader: %w", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read hierarchy bytes: %w", err)
	}
	var h hierarchy.Hierarchy
	if err := json.Unmarshal(data, &h); err != nil {
		return nil, fmt.Errorf("decode archived hierarchy: %w", err)
	}
	return h, nil
}

func toCommit(commitObj *object.Commit) Commit {
	return Commit{
		Hash:      commitObj.Hash.String()[:7],
		Message:   commitObj.Message,
		Author:    commitObj.Author.Name,
		CreatedAt: commitObj.Author.When,
	}
}

func sanitizeEmail(input string) string {
	out := make([]rune, 0, len(input))
	for _, r := range input {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'):
			out = append(out, r)
		case r == ' ' || r == '-' || r == '_':
			out = append(out, '.')
		}
	}
	if len(out) == 0 {
		return "user"
	}
	return string(out)
}

func resolveHash(repo *git.Repository, revision string) (plumbing.Hash, error) {
	if len(revision) == 40 {
		return plumbing.NewHash(revision), nil
	}
	resolved, err := repo.ResolveRevision(plumbing.Revision(revision))
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("resolve revision %s: %w", revision, err)
	}
	return *resolved, nil
}
