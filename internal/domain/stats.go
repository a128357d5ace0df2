// Package domain contains the core data structures and domain logic for the application.
package domain

// Stats holds the aggregated public activity metrics for a single account.
// It is the core domain entity of this application: one instance is built
// per run and every field defaults to zero when the corresponding resource
// could not be fetched, so grading is always well-defined.
type Stats struct {
	Login        string `json:"login"`
	Name         string `json:"name"`
	Repos        int    `json:"repos"`
	Followers    int    `json:"followers"`
	Stars        int    `json:"stars"`
	PullRequests int    `json:"prs"`
	// Commits is an estimate sampled over a bounded set of repositories,
	// not an exhaustive count across all branches.
	Commits int `json:"commits"`
	Issues  int `json:"issues"`
	// AvatarDataURI is the profile image embedded as a data URI,
	// or empty when the avatar could not be fetched.
	AvatarDataURI string `json:"-"`
}
