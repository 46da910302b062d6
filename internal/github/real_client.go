package github

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/go-github/v62/github"
	"golang.org/x/oauth2"
)

const (
	// GitHub check conclusion and status constants
	checkConclusionFailure        = "FAILURE"
	checkConclusionCanceled       = "CANCELED"
	checkConclusionTimedOut       = "TIMED_OUT"
	checkConclusionActionRequired = "ACTION_REQUIRED"
	checkStateFailure             = "FAILURE"
	checkStateError               = "ERROR"
	checkStatePending             = "PENDING"
)

// RealClient implements Client using the GitHub REST API.
type RealClient struct {
	client *github.Client
	token  string
	owner  string
	repo   string
}

// NewRealClient creates an authenticated GitHub client for the given repository.
// The token is read from the GITHUB_TOKEN environment variable.
func NewRealClient(owner, repo string) (*RealClient, error) {
	token := os.Getenv("GITHUB_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("no GitHub token found: set GITHUB_TOKEN")
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	httpClient := oauth2.NewClient(context.Background(), ts)

	return &RealClient{
		client: github.NewClient(httpClient),
		token:  token,
		owner:  owner,
		repo:   repo,
	}, nil
}

// GetOwnerRepo returns the repository owner and name.
func (c *RealClient) GetOwnerRepo() (string, string) {
	return c.owner, c.repo
}

// RepositoryGitURL returns an authenticated HTTPS URL for git operations.
func (c *RealClient) RepositoryGitURL(owner, repo string) string {
	return fmt.Sprintf("https://x-access-token:%s@github.com/%s/%s.git", c.token, owner, repo)
}

// ListBranches lists all branches of the repository, following pagination.
func (c *RealClient) ListBranches(ctx context.Context) ([]BranchInfo, error) {
	var branches []BranchInfo
	opts := &github.BranchListOptions{
		ListOptions: github.ListOptions{PerPage: 100},
	}

	for {
		page, resp, err := c.client.Repositories.ListBranches(ctx, c.owner, c.repo, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list branches: %w", err)
		}
		for _, b := range page {
			info := BranchInfo{Name: b.GetName(), Protected: b.GetProtected()}
			if b.Commit != nil {
				info.SHA = b.Commit.GetSHA()
			}
			branches = append(branches, info)
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return branches, nil
}

// GetBranch returns a single branch.
func (c *RealClient) GetBranch(ctx context.Context, branchName string) (*BranchInfo, error) {
	branch, _, err := c.client.Repositories.GetBranch(ctx, c.owner, c.repo, branchName, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to get branch %s: %w", branchName, err)
	}
	info := &BranchInfo{Name: branch.GetName(), Protected: branch.GetProtected()}
	if branch.Commit != nil {
		info.SHA = branch.Commit.GetSHA()
	}
	return info, nil
}

// GetFileContents reads a file's content at the given ref.
func (c *RealClient) GetFileContents(ctx context.Context, ref, path string) ([]byte, error) {
	file, _, _, err := c.client.Repositories.GetContents(ctx, c.owner, c.repo, path,
		&github.RepositoryContentGetOptions{Ref: ref})
	if err != nil {
		return nil, fmt.Errorf("failed to read %s at %s: %w", path, ref, err)
	}
	if file == nil {
		return nil, fmt.Errorf("%s at %s is not a file", path, ref)
	}
	content, err := file.GetContent()
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s at %s: %w", path, ref, err)
	}
	return []byte(content), nil
}

// GetCIStatus returns the combined check/status outcome for a ref, merging check
// runs with the legacy combined status. Check runs are the more accurate source;
// combined status can be stale and is only trusted for failures when check runs
// are present.
func (c *RealClient) GetCIStatus(ctx context.Context, ref string) (*CIStatus, error) {
	checkRuns, _, err := c.client.Checks.ListCheckRunsForRef(ctx, c.owner, c.repo, ref, &github.ListCheckRunsOptions{
		ListOptions: github.ListOptions{PerPage: 100},
	})
	if err != nil {
		return c.combinedStatusOnly(ctx, ref)
	}

	combinedStatus, _, err := c.client.Repositories.GetCombinedStatus(ctx, c.owner, c.repo, ref, nil)
	if err != nil {
		passing, pending := evaluateCheckRuns(checkRuns.CheckRuns)
		return &CIStatus{Passing: passing, Pending: pending}, nil
	}

	hasPending := false
	hasFailing := false

	for _, run := range checkRuns.CheckRuns {
		if run.Status != nil {
			status := strings.ToUpper(*run.Status)
			if status == "QUEUED" || status == "IN_PROGRESS" {
				hasPending = true
			}
		}
		if run.Conclusion != nil {
			conclusion := strings.ToUpper(*run.Conclusion)
			if conclusion == checkConclusionFailure || conclusion == checkConclusionCanceled || conclusion == checkConclusionTimedOut || conclusion == checkConclusionActionRequired {
				hasFailing = true
			}
		}
	}

	if combinedStatus != nil && combinedStatus.State != nil {
		state := strings.ToUpper(*combinedStatus.State)
		if len(checkRuns.CheckRuns) == 0 {
			if state == checkStatePending {
				hasPending = true
			} else if state == checkStateFailure || state == checkStateError {
				hasFailing = true
			}
		} else if state == checkStateFailure || state == checkStateError {
			hasFailing = true
		}
	}

	return &CIStatus{Passing: !hasFailing, Pending: hasPending}, nil
}

// combinedStatusOnly is a fallback that only uses the legacy combined status.
func (c *RealClient) combinedStatusOnly(ctx context.Context, ref string) (*CIStatus, error) {
	combinedStatus, _, err := c.client.Repositories.GetCombinedStatus(ctx, c.owner, c.repo, ref, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get combined status for %s: %w", ref, err)
	}

	if combinedStatus == nil || combinedStatus.State == nil {
		return &CIStatus{Passing: true}, nil
	}

	state := strings.ToUpper(*combinedStatus.State)
	return &CIStatus{
		Passing: state != checkStateFailure && state != checkStateError,
		Pending: state == checkStatePending,
	}, nil
}

// evaluateCheckRuns evaluates check runs and returns (passing, pending)
func evaluateCheckRuns(checkRuns []*github.CheckRun) (bool, bool) {
	hasPending := false
	hasFailing := false

	for _, run := range checkRuns {
		if run.Status != nil {
			status := strings.ToUpper(*run.Status)
			if status == "QUEUED" || status == "IN_PROGRESS" {
				hasPending = true
			}
		}
		if run.Conclusion != nil {
			conclusion := strings.ToUpper(*run.Conclusion)
			if conclusion == checkConclusionFailure || conclusion == checkConclusionCanceled || conclusion == checkConclusionTimedOut || conclusion == checkConclusionActionRequired {
				hasFailing = true
			}
		}
	}

	return !hasFailing, hasPending
}

// CreatePullRequest creates a new pull request.
func (c *RealClient) CreatePullRequest(ctx context.Context, opts CreatePROptions) (*PullRequestInfo, error) {
	pr := &github.NewPullRequest{
		Title: github.String(opts.Title),
		Head:  github.String(opts.Head),
		Base:  github.String(opts.Base),
		Draft: github.Bool(opts.Draft),
	}
	if opts.Body != "" {
		pr.Body = github.String(opts.Body)
	}

	createdPR, _, err := c.client.PullRequests.Create(ctx, c.owner, c.repo, pr)
	if err != nil {
		return nil, fmt.Errorf("failed to create pull request: %w", err)
	}

	return &PullRequestInfo{
		Number:  createdPR.GetNumber(),
		HTMLURL: createdPR.GetHTMLURL(),
		State:   createdPR.GetState(),
		Merged:  createdPR.GetMerged(),
	}, nil
}

// GetPullRequest returns the current state of a pull request.
func (c *RealClient) GetPullRequest(ctx context.Context, number int) (*PullRequestInfo, error) {
	pr, _, err := c.client.PullRequests.Get(ctx, c.owner, c.repo, number)
	if err != nil {
		return nil, fmt.Errorf("failed to get pull request #%d: %w", number, err)
	}
	return &PullRequestInfo{
		Number:  pr.GetNumber(),
		HTMLURL: pr.GetHTMLURL(),
		State:   pr.GetState(),
		Merged:  pr.GetMerged(),
	}, nil
}

// FindOwnedFork returns the authenticated user's fork of the repository.
func (c *RealClient) FindOwnedFork(ctx context.Context) (*ForkInfo, error) {
	user, _, err := c.client.Users.Get(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to determine authenticated user: %w", err)
	}
	login := user.GetLogin()

	candidate, _, err := c.client.Repositories.Get(ctx, login, c.repo)
	if err != nil || !candidate.GetFork() {
		return nil, fmt.Errorf("unable to find fork of %s/%s owned by %s; forks are required for staging releases",
			c.owner, c.repo, login)
	}

	return &ForkInfo{Owner: login, Name: candidate.GetName()}, nil
}

// CreateRelease creates a GitHub release entry.
func (c *RealClient) CreateRelease(ctx context.Context, opts ReleaseOptions) error {
	release := &github.RepositoryRelease{
		TagName:    github.String(opts.TagName),
		Name:       github.String(opts.Name),
		Body:       github.String(opts.Body),
		Prerelease: github.Bool(opts.Prerelease),
	}
	_, _, err := c.client.Repositories.CreateRelease(ctx, c.owner, c.repo, release)
	if err != nil {
		return fmt.Errorf("failed to create release %s: %w", opts.TagName, err)
	}
	return nil
}

// GetCustomProperty reads a repository custom property value, or "" when unset.
func (c *RealClient) GetCustomProperty(ctx context.Context, name string) (string, error) {
	values, _, err := c.client.Repositories.GetAllCustomPropertyValues(ctx, c.owner, c.repo)
	if err != nil {
		return "", fmt.Errorf("failed to read custom properties: %w", err)
	}
	for _, value := range values {
		if value.PropertyName == name && value.Value != nil {
			return fmt.Sprintf("%v", value.Value), nil
		}
	}
	return "", nil
}
