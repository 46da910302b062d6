package git

import (
	"fmt"
	"time"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// RawCommit is the unparsed commit data read from the repository log.
type RawCommit struct {
	SHA     string
	Message string
	Author  string
	Date    time.Time
}

// CommitsInRange returns the commits in base..head (commits reachable from head
// but not from base), newest first. An empty base returns the full history of head.
func (c *Client) CommitsInRange(base, head string) ([]RawCommit, error) {
	repo, err := c.OpenRepository()
	if err != nil {
		return nil, err
	}

	headHash, err := resolveRefHash(repo, head)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve head: %w", err)
	}

	excluded := make(map[plumbing.Hash]bool)
	if base != "" {
		baseHash, err := resolveRefHash(repo, base)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve base: %w", err)
		}
		if err := collectAncestors(repo, baseHash, excluded); err != nil {
			return nil, fmt.Errorf("failed to walk base history: %w", err)
		}
	}

	commits, err := iterateCommits(repo, headHash, excluded)
	if err != nil {
		return nil, fmt.Errorf("failed to iterate commits: %w", err)
	}

	result := make([]RawCommit, 0, len(commits))
	for _, commit := range commits {
		result = append(result, RawCommit{
			SHA:     commit.Hash.String(),
			Message: commit.Message,
			Author:  commit.Author.Name,
			Date:    commit.Author.When,
		})
	}

	return result, nil
}

// collectAncestors marks the commit at hash and all of its ancestors in the set.
func collectAncestors(repo *Repository, hash plumbing.Hash, set map[plumbing.Hash]bool) error {
	queue := []plumbing.Hash{hash}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if set[current] {
			continue
		}
		set[current] = true

		commit, err := repo.CommitObject(current)
		if err != nil {
			return fmt.Errorf("failed to get commit %s: %w", current, err)
		}
		queue = append(queue, commit.ParentHashes...)
	}
	return nil
}

// iterateCommits walks commits reachable from head, skipping the excluded set.
// Returns commits newest first.
func iterateCommits(repo *Repository, headHash plumbing.Hash, excluded map[plumbing.Hash]bool) ([]*object.Commit, error) {
	var commits []*object.Commit
	visited := make(map[plumbing.Hash]bool)

	queue := []plumbing.Hash{headHash}
	for len(queue) > 0 {
		hash := queue[0]
		queue = queue[1:]

		if visited[hash] || excluded[hash] {
			continue
		}
		visited[hash] = true

		commit, err := repo.CommitObject(hash)
		if err != nil {
			return nil, fmt.Errorf("failed to get commit %s: %w", hash, err)
		}

		commits = append(commits, commit)

		for _, parentHash := range commit.ParentHashes {
			if !visited[parentHash] && !excluded[parentHash] {
				queue = append(queue, parentHash)
			}
		}
	}

	return commits, nil
}

// resolveRefHash resolves a ref (branch name, SHA, or ref path) to a hash
func resolveRefHash(repo *Repository, ref string) (plumbing.Hash, error) {
	// 1. Try as a full reference name
	if r, err := repo.Reference(plumbing.ReferenceName(ref), true); err == nil {
		return r.Hash(), nil
	}

	// 2. Try as a local branch
	if r, err := repo.Reference(plumbing.ReferenceName("refs/heads/"+ref), true); err == nil {
		return r.Hash(), nil
	}

	// 3. Try as a remote branch
	if r, err := repo.Reference(plumbing.ReferenceName("refs/remotes/origin/"+ref), true); err == nil {
		return r.Hash(), nil
	}

	// 4. Try as a tag
	if r, err := repo.Reference(plumbing.ReferenceName("refs/tags/"+ref), true); err == nil {
		return r.Hash(), nil
	}

	// 5. Try ResolveRevision (handles SHAs, short SHAs, and expressions like HEAD~1)
	hash, err := repo.ResolveRevision(plumbing.Revision(ref))
	if err == nil {
		return *hash, nil
	}

	return plumbing.ZeroHash, fmt.Errorf("failed to resolve ref %s: reference not found", ref)
}
