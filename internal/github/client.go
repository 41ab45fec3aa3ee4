// Package github reads issue bodies from GitHub and writes priority scores to
// a GitHub Projects (v2) board.
package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v56/github"
	"golang.org/x/oauth2"

	"github.com/dshills/issuescore/internal/board"
	"github.com/dshills/issuescore/internal/redact"
)

// Client talks to the GitHub REST and GraphQL APIs.
type Client struct {
	gh          *github.Client
	projectID   string
	graphQLPath string
}

var _ board.Board = (*Client)(nil)

type options struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*options)

// WithBaseURL points the client at a GitHub Enterprise Server or a test
// server. For Enterprise use the REST root, e.g. https://ghe.example.com/api/v3/.
func WithBaseURL(raw string) Option {
	return func(o *options) { o.baseURL = raw }
}

// WithHTTPClient sets the transport the token source wraps.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) { o.httpClient = hc }
}

// NewClient creates a GitHub client. projectID is the node ID of the
// Projects v2 board (PVT_...). An empty token makes anonymous requests.
func NewClient(token, projectID string, opts ...Option) (*Client, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	hc := o.httpClient
	if token != "" {
		ctx := context.Background()
		if hc != nil {
			ctx = context.WithValue(ctx, oauth2.HTTPClient, hc)
		}
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		hc = oauth2.NewClient(ctx, ts)
	}
	gh := github.NewClient(hc)

	c := &Client{gh: gh, projectID: projectID, graphQLPath: "graphql"}
	if o.baseURL != "" {
		raw := o.baseURL
		if !strings.HasSuffix(raw, "/") {
			raw += "/"
		}
		u, err := url.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("github.NewClient: base url: %w", err)
		}
		gh.BaseURL = u
		if strings.HasSuffix(u.Path, "/api/v3/") {
			c.graphQLPath = "../graphql"
		}
	}
	return c, nil
}

func (c *Client) Name() string { return "github" }

// Issue is the subset of a GitHub issue the scorer needs.
type Issue struct {
	NodeID string
	Number int
	Title  string
	Body   string
	URL    string
}

// FetchIssue loads an issue over the REST API.
func (c *Client) FetchIssue(ctx context.Context, ref IssueRef) (*Issue, error) {
	iss, _, err := c.gh.Issues.Get(ctx, ref.Owner, ref.Repo, ref.Number)
	if err != nil {
		return nil, fmt.Errorf("fetch issue %s: %w", ref, scrub(err))
	}
	return &Issue{
		NodeID: iss.GetNodeID(),
		Number: iss.GetNumber(),
		Title:  iss.GetTitle(),
		Body:   iss.GetBody(),
		URL:    iss.GetHTMLURL(),
	}, nil
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphQLError  `json:"errors"`
}

type graphQLError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// graphQL posts a query and decodes its data member into out.
func (c *Client) graphQL(ctx context.Context, query string, vars map[string]any, out any) error {
	req, err := c.gh.NewRequest(http.MethodPost, c.graphQLPath, graphQLRequest{Query: query, Variables: vars})
	if err != nil {
		return fmt.Errorf("graphql: build request: %w", err)
	}

	var resp graphQLResponse
	if _, err := c.gh.Do(ctx, req, &resp); err != nil {
		return fmt.Errorf("graphql: %w", scrub(err))
	}
	if len(resp.Errors) > 0 {
		msgs := make([]string, len(resp.Errors))
		for i, e := range resp.Errors {
			msgs[i] = e.Message
			if e.Type != "" {
				msgs[i] = e.Type + ": " + e.Message
			}
		}
		return fmt.Errorf("graphql: %s", redact.Redact(strings.Join(msgs, "; ")))
	}
	if out == nil || len(resp.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return fmt.Errorf("graphql: decode data: %w", err)
	}
	return nil
}

// scrub strips credentials from API error text. Context errors pass through
// untouched. Everything else keeps its chain, so *github.ErrorResponse and
// *github.RateLimitError are still reachable with errors.As.
func scrub(err error) error {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &redactedError{err: err}
}

// redactedError redacts the text of the error it wraps.
type redactedError struct {
	err error
}

func (e *redactedError) Error() string { return redact.Redact(e.err.Error()) }

func (e *redactedError) Unwrap() error { return e.err }
