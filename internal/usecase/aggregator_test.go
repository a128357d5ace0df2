package usecase

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"

	"github.com/naka-gawa/github-statcard/internal/domain"
	"github.com/naka-gawa/github-statcard/internal/gateway"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// mockFetcher is a mock implementation of the gateway.Fetcher interface.
// It allows us to simulate the behavior of the GitHub gateway without making real API calls.
type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) FetchProfile(ctx context.Context, handle string) (*gateway.Profile, error) {
	args := m.Called(ctx, handle)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.Profile), args.Error(1)
}

func (m *mockFetcher) FetchRepos(ctx context.Context, handle string) ([]gateway.Repo, error) {
	args := m.Called(ctx, handle)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]gateway.Repo), args.Error(1)
}

func (m *mockFetcher) FetchPullRequestCount(ctx context.Context, handle string) (int, error) {
	args := m.Called(ctx, handle)
	return args.Int(0), args.Error(1)
}

func (m *mockFetcher) FetchIssueCount(ctx context.Context, handle string) (int, error) {
	args := m.Called(ctx, handle)
	return args.Int(0), args.Error(1)
}

func (m *mockFetcher) FetchCommitEstimate(ctx context.Context, handle string, repos []string, sample int) (int, error) {
	args := m.Called(ctx, handle, repos, sample)
	return args.Int(0), args.Error(1)
}

func (m *mockFetcher) FetchAvatar(ctx context.Context, avatarURL string) (string, error) {
	args := m.Called(ctx, avatarURL)
	return args.String(0), args.Error(1)
}

func baseProfile() *gateway.Profile {
	return &gateway.Profile{
		Login:       "octocat",
		Name:        "The Octocat",
		AvatarURL:   "https://example.test/avatar.png",
		Followers:   50,
		PublicRepos: 2,
	}
}

func TestAggregator_Aggregate(t *testing.T) {
	testCases := []struct {
		name     string
		setup    func(f *mockFetcher)
		expected *domain.Stats
	}{
		{
			name: "happy path - all resources fetched",
			setup: func(f *mockFetcher) {
				f.On("FetchProfile", mock.Anything, "octocat").Return(baseProfile(), nil)
				f.On("FetchRepos", mock.Anything, "octocat").Return([]gateway.Repo{
					{Name: "repo-a", Stars: 100},
					{Name: "repo-b", Stars: 20},
				}, nil)
				f.On("FetchCommitEstimate", mock.Anything, "octocat", []string{"repo-a", "repo-b"}, 10).Return(40, nil)
				f.On("FetchPullRequestCount", mock.Anything, "octocat").Return(5, nil)
				f.On("FetchIssueCount", mock.Anything, "octocat").Return(3, nil)
				f.On("FetchAvatar", mock.Anything, "https://example.test/avatar.png").Return("data:image/png;base64,AAA", nil)
			},
			expected: &domain.Stats{
				Login:         "octocat",
				Name:          "The Octocat",
				Repos:         2,
				Followers:     50,
				Stars:         120,
				PullRequests:  5,
				Commits:       40,
				Issues:        3,
				AvatarDataURI: "data:image/png;base64,AAA",
			},
		},
		{
			name: "repositories degrade - repos, stars and commits fold as zero",
			setup: func(f *mockFetcher) {
				f.On("FetchProfile", mock.Anything, "octocat").Return(baseProfile(), nil)
				f.On("FetchRepos", mock.Anything, "octocat").Return(nil, errors.New("github api error"))
				f.On("FetchPullRequestCount", mock.Anything, "octocat").Return(5, nil)
				f.On("FetchIssueCount", mock.Anything, "octocat").Return(3, nil)
				f.On("FetchAvatar", mock.Anything, "https://example.test/avatar.png").Return("data:image/png;base64,AAA", nil)
			},
			expected: &domain.Stats{
				Login:         "octocat",
				Name:          "The Octocat",
				Repos:         0,
				Followers:     50,
				Stars:         0,
				PullRequests:  5,
				Commits:       0,
				Issues:        3,
				AvatarDataURI: "data:image/png;base64,AAA",
			},
		},
		{
			name: "pull requests degrade - field folds as zero, run completes",
			setup: func(f *mockFetcher) {
				f.On("FetchProfile", mock.Anything, "octocat").Return(baseProfile(), nil)
				f.On("FetchRepos", mock.Anything, "octocat").Return([]gateway.Repo{{Name: "repo-a", Stars: 7}}, nil)
				f.On("FetchCommitEstimate", mock.Anything, "octocat", []string{"repo-a"}, 10).Return(12, nil)
				f.On("FetchPullRequestCount", mock.Anything, "octocat").Return(0, errors.New("search unavailable"))
				f.On("FetchIssueCount", mock.Anything, "octocat").Return(3, nil)
				f.On("FetchAvatar", mock.Anything, "https://example.test/avatar.png").Return("data:image/png;base64,AAA", nil)
			},
			expected: &domain.Stats{
				Login:         "octocat",
				Name:          "The Octocat",
				Repos:         1,
				Followers:     50,
				Stars:         7,
				PullRequests:  0,
				Commits:       12,
				Issues:        3,
				AvatarDataURI: "data:image/png;base64,AAA",
			},
		},
		{
			name: "avatar degrades - card renders without image",
			setup: func(f *mockFetcher) {
				f.On("FetchProfile", mock.Anything, "octocat").Return(baseProfile(), nil)
				f.On("FetchRepos", mock.Anything, "octocat").Return([]gateway.Repo{}, nil)
				f.On("FetchCommitEstimate", mock.Anything, "octocat", []string{}, 10).Return(0, nil)
				f.On("FetchPullRequestCount", mock.Anything, "octocat").Return(0, nil)
				f.On("FetchIssueCount", mock.Anything, "octocat").Return(0, nil)
				f.On("FetchAvatar", mock.Anything, "https://example.test/avatar.png").Return("", errors.New("timeout"))
			},
			expected: &domain.Stats{
				Login:     "octocat",
				Name:      "The Octocat",
				Followers: 50,
			},
		},
		{
			name: "empty display name falls back to login",
			setup: func(f *mockFetcher) {
				profile := baseProfile()
				profile.Name = ""
				profile.AvatarURL = ""
				f.On("FetchProfile", mock.Anything, "octocat").Return(profile, nil)
				f.On("FetchRepos", mock.Anything, "octocat").Return([]gateway.Repo{}, nil)
				f.On("FetchCommitEstimate", mock.Anything, "octocat", []string{}, 10).Return(0, nil)
				f.On("FetchPullRequestCount", mock.Anything, "octocat").Return(0, nil)
				f.On("FetchIssueCount", mock.Anything, "octocat").Return(0, nil)
			},
			expected: &domain.Stats{
				Login:     "octocat",
				Name:      "octocat",
				Followers: 50,
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			logger := log.New(io.Discard, "", 0)
			fetcher := new(mockFetcher)
			tc.setup(fetcher)

			aggregator := NewAggregator(fetcher, logger, 0)

			stats, err := aggregator.Aggregate(context.Background(), "octocat")

			assert.NoError(t, err)
			assert.Equal(t, tc.expected, stats)
			fetcher.AssertExpectations(t)
		})
	}
}

func TestAggregator_Aggregate_ResolutionErrorIsFatal(t *testing.T) {
	logger := log.New(io.Discard, "", 0)
	fetcher := new(mockFetcher)
	fetcher.On("FetchProfile", mock.Anything, "ghost").Return(nil, &domain.ResolutionError{Handle: "ghost"})

	aggregator := NewAggregator(fetcher, logger, 10)

	stats, err := aggregator.Aggregate(context.Background(), "ghost")

	assert.Nil(t, stats)
	var resErr *domain.ResolutionError
	assert.ErrorAs(t, err, &resErr)
	assert.Equal(t, "ghost", resErr.Handle)
	// No other resource may be touched when the handle cannot be resolved.
	fetcher.AssertNotCalled(t, "FetchRepos", mock.Anything, mock.Anything)
	fetcher.AssertExpectations(t)
}
