// Package usecase contains the business logic of the application.
package usecase

import (
	"context"
	"log"

	"github.com/naka-gawa/github-statcard/internal/domain"
	"github.com/naka-gawa/github-statcard/internal/gateway"
	"golang.org/x/sync/errgroup"
)

// DefaultCommitSample is the default number of repositories sampled for the
// commit estimate. Enumerating commits across every repository is
// prohibitively expensive against API rate limits.
const DefaultCommitSample = 10

// Aggregator is the use case for folding the per-resource fetches into one
// Stats record. Every resource except the profile itself is best-effort:
// a failed fetch degrades that field to zero instead of aborting the run.
type Aggregator struct {
	fetcher      gateway.Fetcher
	logger       *log.Logger
	commitSample int
}

// NewAggregator creates a new Aggregator instance. commitSample bounds how
// many repositories contribute to the commit estimate; values < 1 fall back
// to DefaultCommitSample.
func NewAggregator(fetcher gateway.Fetcher, logger *log.Logger, commitSample int) *Aggregator {
	if commitSample < 1 {
		commitSample = DefaultCommitSample
	}
	return &Aggregator{
		fetcher:      fetcher,
		logger:       logger,
		commitSample: commitSample,
	}
}

// Aggregate performs the main business logic. The profile is resolved first
// (an unknown handle is the only fatal fetch error); the remaining resources
// are fetched concurrently, each writing into its own buffer, and the fold
// runs only after all of them reached a terminal state.
func (a *Aggregator) Aggregate(ctx context.Context, handle string) (*domain.Stats, error) {
	a.logger.Println("Usecase: Starting data aggregation...")

	profile, err := a.fetcher.FetchProfile(ctx, handle)
	if err != nil {
		return nil, err
	}

	var (
		repos         []gateway.Repo
		commits       int
		prCount       int
		issueCount    int
		avatarDataURI string
	)

	// The goroutines never return an error: a failed resource is logged
	// and folds as zero. Each one owns its result variable, so no locking
	// is needed.
	eg, egCtx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		rs, err := a.fetcher.FetchRepos(egCtx, handle)
		if err != nil {
			a.logger.Printf("Usecase: repositories degraded to empty: %v", err)
			return nil
		}
		repos = rs
		// The commit estimate consumes the repository list, so it runs
		// here rather than in its own goroutine.
		names := make([]string, 0, len(rs))
		for _, r := range rs {
			names = append(names, r.Name)
		}
		n, err := a.fetcher.FetchCommitEstimate(egCtx, handle, names, a.commitSample)
		if err != nil {
			a.logger.Printf("Usecase: commit estimate degraded to zero: %v", err)
			return nil
		}
		commits = n
		return nil
	})

	eg.Go(func() error {
		n, err := a.fetcher.FetchPullRequestCount(egCtx, handle)
		if err != nil {
			a.logger.Printf("Usecase: pull requests degraded to zero: %v", err)
			return nil
		}
		prCount = n
		return nil
	})

	eg.Go(func() error {
		n, err := a.fetcher.FetchIssueCount(egCtx, handle)
		if err != nil {
			a.logger.Printf("Usecase: issues degraded to zero: %v", err)
			return nil
		}
		issueCount = n
		return nil
	})

	eg.Go(func() error {
		if profile.AvatarURL == "" {
			return nil
		}
		uri, err := a.fetcher.FetchAvatar(egCtx, profile.AvatarURL)
		if err != nil {
			a.logger.Printf("Usecase: avatar degraded to empty: %v", err)
			return nil
		}
		avatarDataURI = uri
		return nil
	})

	_ = eg.Wait() // goroutines only ever return nil

	name := profile.Name
	if name == "" {
		name = profile.Login
	}

	stats := &domain.Stats{
		Login:         profile.Login,
		Name:          name,
		Repos:         len(repos),
		Followers:     profile.Followers,
		Stars:         sumStars(repos),
		PullRequests:  prCount,
		Commits:       commits,
		Issues:        issueCount,
		AvatarDataURI: avatarDataURI,
	}

	a.logger.Println("Usecase: Aggregation complete.")
	return stats, nil
}

func sumStars(repos []gateway.Repo) int {
	total := 0
	for _, r := range repos {
		total += r.Stars
	}
	return total
}
