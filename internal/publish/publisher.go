// Package publish replaces the contents of a hosting branch with a build
// artifact. The overwrite is destructive by design: the hosting branch always
// mirrors the latest successful build. The remote only changes when the push
// succeeds, so a failed publish leaves the previous hosting-branch state
// intact.
package publish

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport"

	"github.com/hypersql/docpub/internal/config"
	pkgerrors "github.com/hypersql/docpub/internal/errors"
	"github.com/hypersql/docpub/internal/logfields"
	"github.com/hypersql/docpub/internal/workspace"
)

// Result reports the outcome of a publish.
type Result struct {
	Commit   string // commit SHA pushed to the hosting branch
	UpToDate bool   // true when the hosting branch already matched the artifact
}

// Publisher pushes build artifacts to the configured hosting branch.
type Publisher struct {
	cfg          config.PublishConfig
	workspaceDir string // base dir for scratch clones; "" uses the system temp dir
}

// NewPublisher creates a publisher for the given publish configuration.
func NewPublisher(cfg config.PublishConfig) *Publisher {
	return &Publisher{cfg: cfg}
}

// WithWorkspaceDir overrides the scratch directory base (used by tests).
func (p *Publisher) WithWorkspaceDir(dir string) *Publisher {
	p.workspaceDir = dir
	return p
}

// Publish replaces the hosting branch content with the artifact directory.
//
// With clean enabled the branch receives a fresh single-commit history on
// every publish (force push), so the remote tree is exactly the artifact.
// Without clean the existing branch history is kept and a replacement commit
// is appended.
func (p *Publisher) Publish(ctx context.Context, artifactDir, sourceCommit string) (*Result, error) {
	ws := workspace.NewManager(p.workspaceDir)
	if err := ws.Create(); err != nil {
		return nil, pkgerrors.WorkspaceError("create", err)
	}
	defer func() {
		if err := ws.Cleanup(); err != nil {
			slog.Warn("Failed to clean up publish workspace", logfields.Error(err))
		}
	}()

	auth, err := buildAuth(p.cfg.Auth)
	if err != nil {
		return nil, pkgerrors.GitAuthError(p.cfg.RepoURL, err)
	}

	checkout, err := ws.Subdir("hosting")
	if err != nil {
		return nil, pkgerrors.WorkspaceError("subdir", err)
	}

	branchRef := plumbing.NewBranchReferenceName(p.cfg.Branch)

	var repo *git.Repository
	force := p.cfg.Clean
	if p.cfg.Clean {
		repo, err = p.initFresh(checkout, branchRef)
	} else {
		repo, err = p.cloneOrInit(ctx, checkout, branchRef, auth)
	}
	if err != nil {
		return nil, err
	}

	wt, err := repo.Worktree()
	if err != nil {
		return nil, pkgerrors.PublishFailed(p.cfg.Branch, err)
	}

	if err := replaceContents(checkout, artifactDir); err != nil {
		return nil, pkgerrors.PublishFailed(p.cfg.Branch, err)
	}

	if _, err := wt.Add("."); err != nil {
		return nil, pkgerrors.PublishFailed(p.cfg.Branch, fmt.Errorf("staging artifact: %w", err))
	}

	status, err := wt.Status()
	if err != nil {
		return nil, pkgerrors.PublishFailed(p.cfg.Branch, err)
	}
	if status.IsClean() && !p.cfg.Clean {
		slog.Info("Hosting branch already matches artifact", logfields.Branch(p.cfg.Branch))
		return &Result{UpToDate: true}, nil
	}

	message := "Publish documentation site"
	if sourceCommit != "" {
		message = fmt.Sprintf("Publish documentation site from %s", shortSHA(sourceCommit))
	}
	commit, err := wt.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  p.cfg.CommitName,
			Email: p.cfg.CommitEmail,
			When:  time.Now(),
		},
		AllowEmptyCommits: true,
	})
	if err != nil {
		return nil, pkgerrors.PublishFailed(p.cfg.Branch, fmt.Errorf("committing artifact: %w", err))
	}

	refSpec := gitconfig.RefSpec(fmt.Sprintf("%s:%s", branchRef, branchRef))
	if force {
		refSpec = gitconfig.RefSpec(fmt.Sprintf("+%s:%s", branchRef, branchRef))
	}

	pushErr := repo.PushContext(ctx, &git.PushOptions{
		RemoteName: "origin",
		RefSpecs:   []gitconfig.RefSpec{refSpec},
		Auth:       auth,
		Force:      force,
	})
	if pushErr != nil && !errors.Is(pushErr, git.NoErrAlreadyUpToDate) {
		return nil, pkgerrors.PublishFailed(p.cfg.Branch, pushErr)
	}

	slog.Info("Published documentation site",
		logfields.Branch(p.cfg.Branch),
		logfields.URL(p.cfg.RepoURL),
		logfields.Commit(shortSHA(commit.String())))
	return &Result{Commit: commit.String()}, nil
}

// initFresh initializes an empty repository whose default branch is the
// hosting branch and wires up the origin remote. Used in clean mode: every
// publish produces a single-commit history.
func (p *Publisher) initFresh(dir string, branchRef plumbing.ReferenceName) (*git.Repository, error) {
	repo, err := git.PlainInitWithOptions(dir, &git.PlainInitOptions{
		InitOptions: git.InitOptions{DefaultBranch: branchRef},
	})
	if err != nil {
		return nil, pkgerrors.PublishFailed(p.cfg.Branch, fmt.Errorf("init scratch repository: %w", err))
	}
	if _, err := repo.CreateRemote(&gitconfig.RemoteConfig{
		Name: "origin",
		URLs: []string{p.cfg.RepoURL},
	}); err != nil {
		return nil, pkgerrors.PublishFailed(p.cfg.Branch, fmt.Errorf("configure remote: %w", err))
	}
	return repo, nil
}

// cloneOrInit clones the hosting branch for history-preserving publishes,
// falling back to a fresh repository when the branch does not exist yet.
func (p *Publisher) cloneOrInit(ctx context.Context, dir string, branchRef plumbing.ReferenceName, auth transport.AuthMethod) (*git.Repository, error) {
	cloneOpts := &git.CloneOptions{
		URL:           p.cfg.RepoURL,
		ReferenceName: branchRef,
		SingleBranch:  true,
		Auth:          auth,
	}

	repo, err := git.PlainCloneContext(ctx, dir, false, cloneOpts)
	if err == nil {
		return repo, nil
	}

	if isMissingBranch(err) {
		// First publish to this branch.
		if rmErr := clearDir(dir); rmErr != nil {
			return nil, pkgerrors.PublishFailed(p.cfg.Branch, rmErr)
		}
		return p.initFresh(dir, branchRef)
	}

	return nil, pkgerrors.GitCloneError(p.cfg.RepoURL, err)
}

// isMissingBranch reports whether a clone error means the hosting branch does
// not exist on the remote yet.
func isMissingBranch(err error) bool {
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return true
	}
	var noMatch git.NoMatchingRefSpecError
	if errors.As(err, &noMatch) {
		return true
	}
	return strings.Contains(err.Error(), "couldn't find remote ref") ||
		strings.Contains(err.Error(), "remote repository is empty")
}

// replaceContents deletes everything in checkout except .git and copies the
// artifact in. Existing hosting-branch content is fully replaced, not merged.
func replaceContents(checkout, artifactDir string) error {
	if err := wipeWorktree(checkout); err != nil {
		return err
	}
	return copyDir(artifactDir, checkout)
}

// wipeWorktree removes all entries of dir except the .git directory.
func wipeWorktree(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading checkout: %w", err)
	}
	for _, entry := range entries {
		if entry.Name() == ".git" {
			continue
		}
		if err := os.RemoveAll(filepath.Join(dir, entry.Name())); err != nil {
			return fmt.Errorf("removing previous content: %w", err)
		}
	}
	return nil
}

// clearDir removes all entries of dir, .git included.
func clearDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if err := os.RemoveAll(filepath.Join(dir, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

func shortSHA(sha string) string {
	if len(sha) > 8 {
		return sha[:8]
	}
	return sha
}
