// Package publish reports a quality index result back to GitHub as a commit
// status, so the grade shows up next to the commit and can gate merges.
package publish

import (
	"context"
	"fmt"
	"strings"

	"github.com/build-flow-labs/qualitygate/internal/quality"
	"github.com/google/go-github/v60/github"
	"golang.org/x/oauth2"
)

// StatusContext is the commit status context name.
const StatusContext = "quality-index"

// Target identifies the commit to annotate.
type Target struct {
	Owner string
	Repo  string
	SHA   string
}

// ParseTarget builds a Target from an "owner/repo" string and a commit SHA.
func ParseTarget(repository, sha string) (Target, error) {
	owner, repo, ok := strings.Cut(strings.TrimSpace(repository), "/")
	if !ok || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return Target{}, fmt.Errorf("repository must be owner/name, got %q", repository)
	}
	if strings.TrimSpace(sha) == "" {
		return Target{}, fmt.Errorf("commit SHA is required")
	}
	return Target{Owner: owner, Repo: repo, SHA: strings.TrimSpace(sha)}, nil
}

// StatusPublisher posts quality reports as GitHub commit statuses.
type StatusPublisher struct {
	client    *github.Client
	targetURL string
}

// NewStatusPublisher creates a publisher authenticated with token.
func NewStatusPublisher(ctx context.Context, token string) *StatusPublisher {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	return NewStatusPublisherWithClient(github.NewClient(oauth2.NewClient(ctx, ts)))
}

// NewStatusPublisherWithClient wraps an existing client (for testing).
func NewStatusPublisherWithClient(client *github.Client) *StatusPublisher {
	return &StatusPublisher{client: client}
}

// WithTargetURL sets the link attached to published statuses, e.g. a CI run.
func (p *StatusPublisher) WithTargetURL(url string) *StatusPublisher {
	p.targetURL = url
	return p
}

// Publish creates a commit status describing r.
func (p *StatusPublisher) Publish(ctx context.Context, t Target, r *quality.Report) error {
	status := &github.RepoStatus{
		State:       github.String(State(r)),
		Description: github.String(Description(r)),
		Context:     github.String(StatusContext),
	}
	if p.targetURL != "" {
		status.TargetURL = github.String(p.targetURL)
	}

	if _, _, err := p.client.Repositories.CreateStatus(ctx, t.Owner, t.Repo, t.SHA, status); err != nil {
		return fmt.Errorf("creating commit status on %s/%s@%s: %w", t.Owner, t.Repo, t.SHA, err)
	}
	return nil
}

// State maps a report to a commit status state.
func State(r *quality.Report) string {
	if r.Passed() {
		return "success"
	}
	return "failure"
}

// Description is the one-line status summary, e.g. "Grade B (72.50/100)".
func Description(r *quality.Report) string {
	return fmt.Sprintf("Grade %s (%.2f/100)", r.Grade, r.OverallScore)
}
