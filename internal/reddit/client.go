// Package reddit provides the Reddit API client (search, comment fetch,
// OAuth) and the relevance scorer that filters its noisy search results.
package reddit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/findyourn/reddit-listener/internal/ratelimit"
	"github.com/findyourn/reddit-listener/internal/retry"
	"github.com/findyourn/reddit-listener/internal/storage"
	"github.com/findyourn/reddit-listener/internal/types"
)

const (
	defaultAuthBaseURL = "https://www.reddit.com"
	defaultAPIBaseURL  = "https://oauth.reddit.com"

	// OAuth scope requested for user tokens.
	oauthScope = "read identity mysubreddits"

	// Refresh a user token when it expires within this window.
	refreshWindow = 5 * time.Minute

	// Reddit listing endpoints return at most 100 items per page.
	maxPageSize = 100
)

// ErrAuthorizationRequired is returned when a request is made on behalf of
// a user who has not completed the OAuth flow.
var ErrAuthorizationRequired = errors.New("user has not authorized Reddit access")

// SearchOptions parameterize one search call.
type SearchOptions struct {
	Query      string
	Limit      int    // maximum posts to return (default 100)
	TimeFilter string // hour, day, week, month, year, all (default month)
	Skip       int    // posts to skip, for offset pagination

	// Optional user identity. When both are set the call runs with that
	// user's OAuth token; otherwise app-only (server) auth is used.
	TeamID string
	UserID string
}

// Config holds Reddit client configuration.
type Config struct {
	ClientID     string
	ClientSecret string
	UserAgent    string
	RedirectURI  string

	// TokenStore enables per-user OAuth. Optional; without it only
	// app-only auth is available.
	TokenStore storage.TokenStore

	// Overridable in tests.
	AuthBaseURL string
	APIBaseURL  string
	HTTPClient  *http.Client
}

// Client is the Reddit API client. All outbound calls pass through a
// shared token bucket (1 req/s, burst 10); search calls are additionally
// retried with backoff.
type Client struct {
	cfg         Config
	authBaseURL string
	apiBaseURL  string
	httpClient  *http.Client
	limiter     *ratelimit.TokenBucket
	retry       retry.Config

	mu             sync.Mutex
	appToken       string
	appTokenExpiry time.Time
}

// NewClient creates a Reddit client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, fmt.Errorf("reddit client_id and client_secret are required")
	}
	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("reddit user_agent is required")
	}

	authBase := cfg.AuthBaseURL
	if authBase == "" {
		authBase = defaultAuthBaseURL
	}
	apiBase := cfg.APIBaseURL
	if apiBase == "" {
		apiBase = defaultAPIBaseURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	return &Client{
		cfg:         cfg,
		authBaseURL: authBase,
		apiBaseURL:  apiBase,
		httpClient:  httpClient,
		limiter:     ratelimit.NewTokenBucket(1.0, 10),
		retry:       retry.DefaultConfig(),
	}, nil
}

// AuthURL returns the OAuth authorization URL to send a user to. state is
// echoed back on the callback for CSRF protection.
func (c *Client) AuthURL(state string) string {
	params := url.Values{
		"client_id":     {c.cfg.ClientID},
		"response_type": {"code"},
		"state":         {state},
		"redirect_uri":  {c.cfg.RedirectURI},
		"duration":      {"permanent"},
		"scope":         {oauthScope},
	}
	return c.authBaseURL + "/api/v1/authorize?" + params.Encode()
}

// ExchangeCode trades an OAuth authorization code for tokens and, when a
// token store is configured, persists them for the identity.
func (c *Client) ExchangeCode(ctx context.Context, code, teamID, userID string) (*storage.TokenData, error) {
	form := url.Values{
		"grant_type":   {"authorization_code"},
		"code":         {code},
		"redirect_uri": {c.cfg.RedirectURI},
	}

	resp, err := c.tokenRequest(ctx, form)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	token := &storage.TokenData{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresAt:    time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second),
		Scope:        oauthScope,
	}

	if c.cfg.TokenStore != nil {
		if err := c.cfg.TokenStore.SaveToken(ctx, teamID, userID, token); err != nil {
			return nil, err
		}
	}
	return token, nil
}

// SearchPosts searches Reddit (r/all) for posts matching opts.Query. The
// call is rate-limited and retried on transient failures. Pagination is by
// skip-count: the first opts.Skip matches are discarded.
func (c *Client) SearchPosts(ctx context.Context, opts SearchOptions) ([]*types.Post, error) {
	if opts.Limit <= 0 {
		opts.Limit = 100
	}
	if opts.TimeFilter == "" {
		opts.TimeFilter = "month"
	}

	if err := c.limiter.Acquire(ctx); err != nil {
		return nil, err
	}

	token, err := c.accessToken(ctx, opts.TeamID, opts.UserID)
	if err != nil {
		return nil, err
	}

	return retry.Do(ctx, c.retry, "reddit search", func(ctx context.Context) ([]*types.Post, error) {
		return c.searchPage(ctx, token, opts)
	})
}

// searchPage walks the search listing with the "after" cursor until
// skip+limit posts are collected or the listing runs out, then discards
// the first skip posts.
func (c *Client) searchPage(ctx context.Context, token string, opts SearchOptions) ([]*types.Post, error) {
	wanted := opts.Skip + opts.Limit
	var posts []*types.Post
	after := ""

	for len(posts) < wanted {
		pageSize := wanted - len(posts)
		if pageSize > maxPageSize {
			pageSize = maxPageSize
		}

		params := url.Values{
			"q":        {opts.Query},
			"sort":     {"relevance"},
			"t":        {opts.TimeFilter},
			"limit":    {strconv.Itoa(pageSize)},
			"raw_json": {"1"},
		}
		if after != "" {
			params.Set("after", after)
		}

		var listing listingEnvelope
		if err := c.getJSON(ctx, token, "/search?"+params.Encode(), &listing); err != nil {
			return nil, err
		}

		for _, child := range listing.Data.Children {
			if child.Kind != "t3" {
				continue
			}
			posts = append(posts, child.Data.toPost())
		}

		if listing.Data.After == "" || len(listing.Data.Children) == 0 {
			break
		}
		after = listing.Data.After
	}

	if opts.Skip >= len(posts) {
		return nil, nil
	}
	return posts[opts.Skip:], nil
}

// GetPostComments fetches up to limit top-level comments for a post. Any
// failure is absorbed to an empty result: one post's missing comments must
// not fail a whole discovery run.
func (c *Client) GetPostComments(ctx context.Context, post *types.Post, limit int) []*types.Comment {
	if limit <= 0 {
		limit = 50
	}

	if err := c.limiter.Acquire(ctx); err != nil {
		return nil
	}

	token, err := c.accessToken(ctx, "", "")
	if err != nil {
		slog.Debug("comment fetch skipped: no app token", "post", post.ID, "error", err)
		return nil
	}

	params := url.Values{
		"limit":    {strconv.Itoa(limit)},
		"depth":    {"1"},
		"raw_json": {"1"},
	}

	// The comments endpoint returns [post listing, comment listing].
	var listings []listingEnvelope
	if err := c.getJSON(ctx, token, "/comments/"+post.ID+"?"+params.Encode(), &listings); err != nil {
		slog.Debug("comment fetch failed", "post", post.ID, "error", err)
		return nil
	}
	if len(listings) < 2 {
		return nil
	}

	var comments []*types.Comment
	for _, child := range listings[1].Data.Children {
		if child.Kind != "t1" {
			continue // skip "more" stubs
		}
		comments = append(comments, &types.Comment{
			Body:  child.Data.Body,
			Score: child.Data.Score,
		})
		if len(comments) >= limit {
			break
		}
	}
	return comments
}

// accessToken resolves the bearer token for a request: the user's stored
// OAuth token when an identity is given, the cached app-only token
// otherwise.
func (c *Client) accessToken(ctx context.Context, teamID, userID string) (string, error) {
	if teamID != "" && userID != "" {
		return c.userAccessToken(ctx, teamID, userID)
	}
	return c.appAccessToken(ctx)
}

func (c *Client) appAccessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.appToken != "" && time.Now().Before(c.appTokenExpiry) {
		return c.appToken, nil
	}

	resp, err := c.tokenRequest(ctx, url.Values{"grant_type": {"client_credentials"}})
	if err != nil {
		return "", fmt.Errorf("failed to obtain app token: %w", err)
	}

	c.appToken = resp.AccessToken
	// Renew a minute early so in-flight requests never carry a token that
	// expires mid-request.
	c.appTokenExpiry = time.Now().Add(time.Duration(resp.ExpiresIn)*time.Second - time.Minute)
	return c.appToken, nil
}

func (c *Client) userAccessToken(ctx context.Context, teamID, userID string) (string, error) {
	if c.cfg.TokenStore == nil {
		return "", fmt.Errorf("token store not configured: %w", ErrAuthorizationRequired)
	}

	token, err := c.cfg.TokenStore.GetToken(ctx, teamID, userID)
	if err != nil {
		return "", err
	}
	if token == nil {
		return "", ErrAuthorizationRequired
	}

	if time.Until(token.ExpiresAt) > refreshWindow {
		return token.AccessToken, nil
	}

	resp, err := c.tokenRequest(ctx, url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {token.RefreshToken},
	})
	if err != nil {
		return "", fmt.Errorf("failed to refresh token: %w", err)
	}

	refreshed := &storage.TokenData{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresAt:    time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second),
		Scope:        token.Scope,
	}
	if refreshed.RefreshToken == "" {
		refreshed.RefreshToken = token.RefreshToken
	}
	if err := c.cfg.TokenStore.SaveToken(ctx, teamID, userID, refreshed); err != nil {
		return "", err
	}
	return refreshed.AccessToken, nil
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	Scope        string `json:"scope"`
}

func (c *Client) tokenRequest(ctx context.Context, form url.Values) (*tokenResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.authBaseURL+"/api/v1/access_token", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.cfg.ClientID, c.cfg.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &apiError{status: resp.StatusCode, path: "/api/v1/access_token"}
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}
	if tr.AccessToken == "" {
		return nil, fmt.Errorf("token response carried no access_token")
	}
	return &tr, nil
}

func (c *Client) getJSON(ctx context.Context, token, path string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiBaseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return &apiError{status: resp.StatusCode, path: path}
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("failed to decode response for %s: %w", path, err)
	}
	return nil
}

// apiError reports a non-200 response. Its message includes the status
// code so the retry policy's transient classification can see 429/5xx.
type apiError struct {
	status int
	path   string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("reddit api: %s returned status %d", e.path, e.status)
}

// Listing wire format.

type listingEnvelope struct {
	Data struct {
		After    string         `json:"after"`
		Children []listingChild `json:"children"`
	} `json:"data"`
}

type listingChild struct {
	Kind string      `json:"kind"`
	Data listingItem `json:"data"`
}

// listingItem is the union of the post (t3) and comment (t1) fields we use.
type listingItem struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Selftext    string  `json:"selftext"`
	Body        string  `json:"body"`
	Score       int     `json:"score"`
	NumComments int     `json:"num_comments"`
	Subreddit   string  `json:"subreddit"`
	Author      string  `json:"author"`
	Permalink   string  `json:"permalink"`
	CreatedUTC  float64 `json:"created_utc"`
}

func (d listingItem) toPost() *types.Post {
	return &types.Post{
		ID:          d.ID,
		Title:       d.Title,
		Body:        d.Selftext,
		Score:       d.Score,
		NumComments: d.NumComments,
		Subreddit:   d.Subreddit,
		Author:      d.Author,
		Permalink:   d.Permalink,
		CreatedUTC:  int64(d.CreatedUTC),
	}
}
