// Package gitinfo reads the HEAD commit of the repository a release was
// built from, for use in the release email.
package gitinfo

import (
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5"
)

var (
	errRepoNotFound = errors.New("git repo not found")
	errHeadFailed   = errors.New("git head lookup failed")
)

// ErrGit is wrapped by every lookup failure.
var ErrGit = errors.New("git lookup failed")

// Info describes HEAD.
type Info struct {
	Commit      string `json:"commit" yaml:"commit"`
	ShortCommit string `json:"shortCommit" yaml:"shortCommit"`
	Branch      string `json:"branch,omitempty" yaml:"branch,omitempty"`
}

// Head opens the repository containing dir and returns its HEAD.
func Head(dir string) (Info, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return Info{}, fmt.Errorf("%w: %w: %v", ErrGit, errRepoNotFound, err)
	}
	ref, err := repo.Head()
	if err != nil {
		return Info{}, fmt.Errorf("%w: %w: %v", ErrGit, errHeadFailed, err)
	}
	commit := ref.Hash().String()
	info := Info{Commit: commit, ShortCommit: commit}
	if len(commit) > 7 {
		info.ShortCommit = commit[:7]
	}
	if ref.Name().IsBranch() {
		info.Branch = ref.Name().Short()
	}
	return info, nil
}
