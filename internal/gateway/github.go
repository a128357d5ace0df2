// Package gateway provides a gateway to the GitHub API,
// abstracting away the underlying REST and GraphQL clients.
package gateway

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/go-github/v62/github"
	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"

	"github.com/naka-gawa/github-statcard/internal/domain"
)

const (
	requestTimeout = 30 * time.Second
	defaultRetries = 3
)

// Profile holds the account-level fields returned by the provider.
type Profile struct {
	Login       string
	Name        string
	AvatarURL   string
	Followers   int
	PublicRepos int
}

// Repo holds the per-repository fields the aggregation needs.
type Repo struct {
	Name  string
	Stars int
}

// Fetcher defines the behavior of a gateway for fetching information from GitHub.
type Fetcher interface {
	// FetchProfile resolves the account. An unknown handle yields
	// *domain.ResolutionError.
	FetchProfile(ctx context.Context, handle string) (*Profile, error)
	FetchRepos(ctx context.Context, handle string) ([]Repo, error)
	FetchPullRequestCount(ctx context.Context, handle string) (int, error)
	FetchIssueCount(ctx context.Context, handle string) (int, error)
	// FetchCommitEstimate sums the author's commit counts over at most
	// `sample` of the given repositories. Repositories that fail are
	// skipped; the result is an estimate by design.
	FetchCommitEstimate(ctx context.Context, handle string, repos []string, sample int) (int, error)
	// FetchAvatar downloads the image and returns it as a data URI.
	FetchAvatar(ctx context.Context, avatarURL string) (string, error)
}

// GitHubGateway is the concrete implementation of the Fetcher interface.
type GitHubGateway struct {
	restClient    *github.Client
	graphqlClient *githubv4.Client
	httpClient    *http.Client
	logger        *log.Logger
	maxRetries    uint64
	retryBase     time.Duration
}

// searchCountQuery pages through a search so that every match is counted,
// not just the first page.
type searchCountQuery struct {
	Search struct {
		PageInfo struct {
			HasNextPage bool
			EndCursor   githubv4.String
		}
		Edges []struct {
			Node struct {
				Typename string `graphql:"__typename"`
			}
		}
	} `graphql:"search(query: $query, type: ISSUE, first: 100, after: $cursor)"`
}

// NewGitHubGateway is a constructor that creates a new instance of GitHubGateway.
// An empty token degrades to unauthenticated access with lower rate limits.
func NewGitHubGateway(token string, logger *log.Logger) (Fetcher, error) {
	rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(nil, github_ratelimit.WithSingleSleepLimit(1*time.Hour, nil))
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
	}
	var transport http.RoundTripper = rateLimitWaiter
	if token != "" {
		transport = &oauth2.Transport{
			Base:   rateLimitWaiter,
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}),
		}
	} else {
		logger.Println("No token provided, using unauthenticated access (lower rate limits).")
	}
	httpClient := &http.Client{
		Transport: transport,
		Timeout:   requestTimeout,
	}
	return &GitHubGateway{
		restClient:    github.NewClient(httpClient),
		graphqlClient: githubv4.NewClient(httpClient),
		httpClient:    httpClient,
		logger:        logger,
		maxRetries:    defaultRetries,
		retryBase:     time.Second,
	}, nil
}

// withRetry runs op with bounded exponential backoff. Client errors (4xx)
// are not retried; the account either exists or it does not.
func (g *GitHubGateway) withRetry(ctx context.Context, op func() error) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = g.retryBase
	return backoff.Retry(func() error {
		err := op()
		if err == nil {
			return nil
		}
		var ghErr *github.ErrorResponse
		if errors.As(err, &ghErr) && ghErr.Response != nil &&
			ghErr.Response.StatusCode >= 400 && ghErr.Response.StatusCode < 500 {
			return backoff.Permanent(err)
		}
		return err
	}, backoff.WithContext(backoff.WithMaxRetries(bo, g.maxRetries), ctx))
}

func (g *GitHubGateway) FetchProfile(ctx context.Context, handle string) (*Profile, error) {
	g.logger.Printf("Fetching profile for %s...", handle)
	var user *github.User
	err := g.withRetry(ctx, func() error {
		var apiErr error
		user, _, apiErr = g.restClient.Users.Get(ctx, handle)
		return apiErr
	})
	if err != nil {
		var ghErr *github.ErrorResponse
		if errors.As(err, &ghErr) && ghErr.Response != nil && ghErr.Response.StatusCode == http.StatusNotFound {
			return nil, &domain.ResolutionError{Handle: handle}
		}
		return nil, fmt.Errorf("failed to fetch profile: %w", err)
	}
	return &Profile{
		Login:       user.GetLogin(),
		Name:        user.GetName(),
		AvatarURL:   user.GetAvatarURL(),
		Followers:   user.GetFollowers(),
		PublicRepos: user.GetPublicRepos(),
	}, nil
}

func (g *GitHubGateway) FetchRepos(ctx context.Context, handle string) ([]Repo, error) {
	g.logger.Println("Fetching repositories using REST API...")
	opts := &github.RepositoryListByUserOptions{ListOptions: github.ListOptions{PerPage: 100}}
	var repos []Repo
	for {
		var page []*github.Repository
		var resp *github.Response
		err := g.withRetry(ctx, func() error {
			var apiErr error
			page, resp, apiErr = g.restClient.Repositories.ListByUser(ctx, handle, opts)
			return apiErr
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list repositories: %w", err)
		}
		for _, r := range page {
			repos = append(repos, Repo{Name: r.GetName(), Stars: r.GetStargazersCount()})
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
		g.logger.Println("  Fetching next page of repositories...")
	}
	g.logger.Printf("Completed fetching %d repositories.", len(repos))
	return repos, nil
}

func (g *GitHubGateway) FetchPullRequestCount(ctx context.Context, handle string) (int, error) {
	g.logger.Println("Fetching pull request count...")
	return g.fetchSearchCount(ctx, fmt.Sprintf("author:%s is:pr", handle))
}

func (g *GitHubGateway) FetchIssueCount(ctx context.Context, handle string) (int, error) {
	g.logger.Println("Fetching issue count...")
	return g.fetchSearchCount(ctx, fmt.Sprintf("author:%s is:issue", handle))
}

func (g *GitHubGateway) fetchSearchCount(ctx context.Context, query string) (int, error) {
	variables := map[string]interface{}{"query": githubv4.String(query), "cursor": (*githubv4.String)(nil)}
	count := 0
	for {
		var q searchCountQuery
		err := g.withRetry(ctx, func() error {
			return g.graphqlClient.Query(ctx, &q, variables)
		})
		if err != nil {
			return 0, fmt.Errorf("failed to execute GraphQL search for %q: %w", query, err)
		}
		count += len(q.Search.Edges)
		if !q.Search.PageInfo.HasNextPage {
			break
		}
		variables["cursor"] = githubv4.NewString(q.Search.PageInfo.EndCursor)
		g.logger.Println("  Fetching next page of search results...")
	}
	g.logger.Printf("Completed search for query: %s (count=%d)", query, count)
	return count, nil
}

// FetchCommitEstimate reads the author's commit count per repository from
// the pagination metadata of a one-item page: the last page number of a
// per_page=1 listing is the total number of commits.
func (g *GitHubGateway) FetchCommitEstimate(ctx context.Context, handle string, repos []string, sample int) (int, error) {
	if sample > 0 && len(repos) > sample {
		repos = repos[:sample]
	}
	g.logger.Printf("Estimating commits across %d repositories...", len(repos))
	total := 0
	for _, name := range repos {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		opts := &github.CommitsListOptions{
			Author:      handle,
			ListOptions: github.ListOptions{PerPage: 1},
		}
		var commits []*github.RepositoryCommit
		var resp *github.Response
		err := g.withRetry(ctx, func() error {
			var apiErr error
			commits, resp, apiErr = g.restClient.Repositories.ListCommits(ctx, handle, name, opts)
			return apiErr
		})
		if err != nil {
			// Empty or otherwise unreadable repositories do not fail the estimate.
			g.logger.Printf("  Skipping %s/%s: %v", handle, name, err)
			continue
		}
		if resp.LastPage > 0 {
			total += resp.LastPage
		} else {
			total += len(commits)
		}
	}
	g.logger.Printf("Completed commit estimate: %d", total)
	return total, nil
}

func (g *GitHubGateway) FetchAvatar(ctx context.Context, avatarURL string) (string, error) {
	g.logger.Println("Fetching avatar image...")
	var data []byte
	var contentType string
	err := g.withRetry(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, avatarURL, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		resp, err := g.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			err := fmt.Errorf("avatar fetch failed with status %d", resp.StatusCode)
			if resp.StatusCode >= 400 && resp.StatusCode < 500 {
				return backoff.Permanent(err)
			}
			return err
		}
		data, err = io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		contentType = resp.Header.Get("Content-Type")
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to fetch avatar: %w", err)
	}
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	encoded := base64.StdEncoding.EncodeToString(data)
	return fmt.Sprintf("data:%s;base64,%s", contentType, encoded), nil
}
