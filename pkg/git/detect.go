// Package git provides utilities for detecting git repository information.
package git

import (
	"path/filepath"

	gogit "github.com/go-git/go-git/v5"
)

// RepoName returns the name of the git repository containing dir, or of the
// working directory when dir is empty. Outside a repository it falls back to
// the base name of dir itself.
func RepoName(dir string) string {
	if dir == "" {
		dir = "."
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return ""
	}

	if root := worktreeRoot(abs); root != "" {
		return filepath.Base(root)
	}
	return filepath.Base(abs)
}

// worktreeRoot walks up from dir to the enclosing repository and returns its
// worktree root, or "" when dir is not inside a non-bare repository.
func worktreeRoot(dir string) string {
	repo, err := gogit.PlainOpenWithOptions(dir, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return ""
	}

	wt, err := repo.Worktree()
	if err != nil {
		return ""
	}
	return wt.Filesystem.Root()
}
