package notes

import (
	"fmt"

	"relkit.dev/relkit/internal/git"
)

// CommitsForRangeWithDeduping returns the commits unique to head relative to
// base, parsed into the release-notes model. Both directions of the range are
// walked: every commit reachable only from base decrements a multiset counter
// for its identity key, and commits from base..head whose key still has a
// positive count are dropped. This recovers the "commits unique to head" set
// even across branches that were rebased or cherry-picked against each other,
// without a true merge-base walk.
func CommitsForRangeWithDeduping(gitClient *git.Client, base, head string) ([]*Commit, error) {
	forward, err := gitClient.CommitsInRange(base, head)
	if err != nil {
		return nil, fmt.Errorf("unable to read commits in %s..%s: %w", base, head, err)
	}
	reverse, err := gitClient.CommitsInRange(head, base)
	if err != nil {
		return nil, fmt.Errorf("unable to read commits in %s..%s: %w", head, base, err)
	}

	counts := make(map[identityKey]int)
	for _, raw := range reverse {
		counts[ParseCommit(raw).key()]++
	}

	var commits []*Commit
	for _, raw := range forward {
		commit := ParseCommit(raw)
		if counts[commit.key()] > 0 {
			counts[commit.key()]--
			continue
		}
		commits = append(commits, commit)
	}

	return commits, nil
}
