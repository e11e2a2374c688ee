// Package codeforces provides typed, rate-limited access to the two
// Codeforces read endpoints the tracker consumes: user.rating (contest
// history) and user.status (submission history).
//
// The client performs no retries of its own — retry policy belongs to the
// sync scheduler, which decides per error class whether to skip the student
// or abandon the remaining burst.
package codeforces

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Error taxonomy. Callers classify with errors.Is.
var (
	// ErrUpstreamUnavailable covers transport failures and 5xx responses.
	// Retried on the next cycle, never within one.
	ErrUpstreamUnavailable = errors.New("codeforces: upstream unavailable")

	// ErrInvalidHandle means the handle does not exist on the platform.
	// The student is skipped without retry.
	ErrInvalidHandle = errors.New("codeforces: invalid handle")

	// ErrRateLimited means the API asked us to back off. The scheduler
	// abandons the remaining students of the current burst.
	ErrRateLimited = errors.New("codeforces: rate limited")
)

// Client is a rate-limited HTTP client for the Codeforces API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewClient creates a Codeforces client with token-bucket rate limiting.
func NewClient(baseURL string, requestsPerMinute int, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	rps := float64(requestsPerMinute) / 60.0
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		logger:     logger,
	}
}

// envelope is the common Codeforces response wrapper.
type envelope struct {
	Status  string          `json:"status"` // "OK" or "FAILED"
	Comment string          `json:"comment"`
	Result  json.RawMessage `json:"result"`
}

// UserRating returns the full contest rating history for a handle,
// oldest first as Codeforces delivers it. An empty history is a valid
// success — a real handle with zero rated contests.
func (c *Client) UserRating(ctx context.Context, handle string) ([]ContestResult, error) {
	raw, err := c.get(ctx, "/user.rating", handle)
	if err != nil {
		return nil, err
	}

	var rows []ratingChangeRaw
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("decode rating history: %w", err)
	}

	history := make([]ContestResult, len(rows))
	for i, r := range rows {
		history[i] = ContestResult{
			ContestID: r.ContestID,
			Name:      r.ContestName,
			Timestamp: time.Unix(r.RatingUpdateTimeSeconds, 0).UTC(),
			Rank:      r.Rank,
			OldRating: r.OldRating,
			NewRating: r.NewRating,
		}
	}
	return history, nil
}

// UserStatus returns the full submission history for a handle, most recent
// first as Codeforces delivers it.
func (c *Client) UserStatus(ctx context.Context, handle string) ([]Submission, error) {
	raw, err := c.get(ctx, "/user.status", handle)
	if err != nil {
		return nil, err
	}

	var rows []submissionRaw
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("decode submissions: %w", err)
	}

	subs := make([]Submission, len(rows))
	for i, r := range rows {
		contestID := r.ContestID
		if contestID == 0 {
			contestID = r.Problem.ContestID
		}
		subs[i] = Submission{
			ContestID:     contestID,
			ProblemIndex:  r.Problem.Index,
			ProblemName:   r.Problem.Name,
			ProblemRating: r.Problem.Rating,
			Verdict:       ParseVerdict(r.Verdict),
			Timestamp:     time.Unix(r.CreationTimeSeconds, 0).UTC(),
		}
	}
	return subs, nil
}

// --------------------------------------------------------------------------
// Wire formats
// --------------------------------------------------------------------------

type ratingChangeRaw struct {
	ContestID               int    `json:"contestId"`
	ContestName             string `json:"contestName"`
	Rank                    int    `json:"rank"`
	RatingUpdateTimeSeconds int64  `json:"ratingUpdateTimeSeconds"`
	OldRating               int    `json:"oldRating"`
	NewRating               int    `json:"newRating"`
}

type submissionRaw struct {
	ContestID           int    `json:"contestId"`
	CreationTimeSeconds int64  `json:"creationTimeSeconds"`
	Verdict             string `json:"verdict"`
	Problem             struct {
		ContestID int    `json:"contestId"`
		Index     string `json:"index"`
		Name      string `json:"name"`
		Rating    int    `json:"rating"`
	} `json:"problem"`
}

// --------------------------------------------------------------------------
// Transport
// --------------------------------------------------------------------------

// get performs a rate-limited GET and classifies failures into the error
// taxonomy above.
func (c *Client) get(ctx context.Context, path, handle string) (json.RawMessage, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	params := url.Values{"handle": {handle}}
	u := c.baseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUpstreamUnavailable, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrUpstreamUnavailable, err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("%w: %s returned 429", ErrRateLimited, path)
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: %s returned %d", ErrUpstreamUnavailable, path, resp.StatusCode)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrUpstreamUnavailable, path, err)
	}

	if env.Status != "OK" {
		return nil, classifyFailure(path, env.Comment)
	}
	return env.Result, nil
}

// classifyFailure maps a FAILED envelope comment onto the error taxonomy.
// Codeforces reports bad handles as `handles: User with handle X not found`
// and throttling as `Call limit exceeded`.
func classifyFailure(path, comment string) error {
	lower := strings.ToLower(comment)
	switch {
	case strings.Contains(lower, "not found"):
		return fmt.Errorf("%w: %s", ErrInvalidHandle, comment)
	case strings.Contains(lower, "limit exceeded"):
		return fmt.Errorf("%w: %s", ErrRateLimited, comment)
	default:
		return fmt.Errorf("%w: %s: %s", ErrUpstreamUnavailable, path, truncate(comment, 200))
	}
}

// truncate returns a truncated string representation for error messages.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
