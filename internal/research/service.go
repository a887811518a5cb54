// Package research orchestrates the discovery pipeline: incremental
// rate-limited search, relevance filtering, parallel comment enrichment,
// insight extraction, LLM analysis, and the two-phase discovery cache.
package research

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/findyourn/reddit-listener/internal/reddit"
	"github.com/findyourn/reddit-listener/internal/types"
)

const (
	// How many top relevant posts get comment enrichment.
	topPostsForComments = 20

	// Comments fetched per post.
	commentsPerPost = 20

	// Concurrent comment fetches in flight at once.
	maxConcurrentFetches = 10
)

// SourceClient is the search/comment-fetch surface the orchestrator drives.
// Implemented by reddit.Client.
type SourceClient interface {
	// SearchPosts returns one page of search results. It may fail
	// transiently; retries happen inside the implementation.
	SearchPosts(ctx context.Context, opts reddit.SearchOptions) ([]*types.Post, error)

	// GetPostComments returns up to limit comments for a post. It never
	// fails: unavailable comments yield an empty slice.
	GetPostComments(ctx context.Context, post *types.Post, limit int) []*types.Comment
}

// Analyzer is the LLM-analysis surface. Implemented by analysis.Analyzer.
type Analyzer interface {
	AnalyzePainPoints(ctx context.Context, query string, posts []types.PostData) ([]types.PainPoint, error)
	GenerateContentIdeas(ctx context.Context, query string, posts []types.PostData, painPoints []types.PainPoint) ([]types.ContentIdea, error)
	GenerateDetailedContext(ctx context.Context, ideaTitle, ideaDescription string, posts []types.PostData) (*types.DetailedContext, error)
}

// Options parameterize one research or discovery run.
type Options struct {
	TimeFilter  string // hour, day, week, month, year, all (default month)
	Limit       int    // maximum posts to fetch (default 100)
	BatchSize   int    // posts per incremental batch (default 5)
	MinRelevant int    // relevant posts that stop the fetch loop early (default 3)

	// Optional user identity for source calls.
	TeamID string
	UserID string
}

func (o Options) withDefaults() Options {
	if o.TimeFilter == "" {
		o.TimeFilter = "month"
	}
	if o.Limit <= 0 {
		o.Limit = 100
	}
	if o.BatchSize <= 0 {
		o.BatchSize = 5
	}
	if o.MinRelevant <= 0 {
		o.MinRelevant = 3
	}
	return o
}

// Config holds service dependencies.
type Config struct {
	Source       SourceClient
	Analyzer     Analyzer
	MinThreshold float64       // relevance threshold (default 0.3)
	CacheTTL     time.Duration // discovery cache TTL (default 15m)
}

// Service runs research and serves the two-phase discover/get-context
// protocol.
type Service struct {
	source SourceClient
	llm    Analyzer
	scorer *reddit.RelevanceScorer
	cache  *discoveryCache
}

// NewService creates a research service.
func NewService(cfg Config) (*Service, error) {
	if cfg.Source == nil {
		return nil, fmt.Errorf("source client is required")
	}
	if cfg.Analyzer == nil {
		return nil, fmt.Errorf("analyzer is required")
	}
	return &Service{
		source: cfg.Source,
		llm:    cfg.Analyzer,
		scorer: reddit.NewRelevanceScorer(cfg.MinThreshold),
		cache:  newDiscoveryCache(cfg.CacheTTL),
	}, nil
}

// DiscoverIdeas is phase 1: fetch posts incrementally until enough relevant
// ones are found (or the source is exhausted), enrich and analyze them, and
// cache the result for phase-2 context generation. A fresh run always
// overwrites any previous entry for the same query string.
func (s *Service) DiscoverIdeas(ctx context.Context, query string, opts Options) (*types.DiscoveryResult, error) {
	opts = opts.withDefaults()
	fmt.Printf("Starting discovery for: %s\n", query)

	relevant, fetched, err := s.fetchRelevant(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	fmt.Printf("Fetched %d posts, %d relevant\n", fetched, len(relevant))

	insights, err := s.analyze(ctx, query, relevant)
	if err != nil {
		return nil, err
	}

	result := &types.DiscoveryResult{
		Query:        query,
		ContentIdeas: insights.ideas,
		PainPoints:   insights.painPoints,
		Questions:    insights.questions,
		Keywords:     insights.keywords,
		RawPosts:     insights.postsData,
	}
	s.cache.put(query, result)

	fmt.Printf("Discovery complete: %d ideas, %d pain points\n",
		len(result.ContentIdeas), len(result.PainPoints))
	return result, nil
}

// GetIdeaContext is phase 2: resolve one previously discovered idea and
// generate its detailed context from the cached raw posts, without a second
// Reddit fetch.
func (s *Service) GetIdeaContext(ctx context.Context, query, ideaTitle string) (*types.DetailedContext, error) {
	cached, err := s.cache.get(query)
	if err != nil {
		return nil, err
	}

	idea, err := resolveIdea(cached.ContentIdeas, ideaTitle)
	if err != nil {
		return nil, err
	}

	return s.llm.GenerateDetailedContext(ctx, idea.Title, idea.Description, cached.RawPosts)
}

// Research is the one-shot flow: a single full-limit search, filtered,
// enriched, and analyzed, with nothing cached.
func (s *Service) Research(ctx context.Context, query string, opts Options) (*types.ResearchResult, error) {
	opts = opts.withDefaults()
	fmt.Printf("Starting research for: %s\n", query)

	posts, err := s.source.SearchPosts(ctx, reddit.SearchOptions{
		Query:      query,
		Limit:      opts.Limit,
		TimeFilter: opts.TimeFilter,
		TeamID:     opts.TeamID,
		UserID:     opts.UserID,
	})
	if err != nil {
		return nil, err
	}

	relevant, filteredOut := s.scorer.FilterPosts(posts, query)
	fmt.Printf("Relevance filtering: %d relevant, %d removed\n", len(relevant), len(filteredOut))

	insights, err := s.analyze(ctx, query, relevant)
	if err != nil {
		return nil, err
	}

	return &types.ResearchResult{
		Query:        query,
		Questions:    insights.questions,
		Keywords:     insights.keywords,
		PainPoints:   insights.painPoints,
		ContentIdeas: insights.ideas,
	}, nil
}

// fetchRelevant runs the incremental batch-fetch loop. Batches are fetched
// strictly sequentially (each batch's skip offset depends on the count
// fetched so far) and each batch is scored in isolation; the loop stops
// early once MinRelevant relevant posts have accumulated, or when the
// source runs dry, whichever comes first.
func (s *Service) fetchRelevant(ctx context.Context, query string, opts Options) ([]types.ScoredPost, int, error) {
	var relevant []types.ScoredPost
	fetched := 0

	for fetched < opts.Limit {
		batchLimit := opts.BatchSize
		if remaining := opts.Limit - fetched; batchLimit > remaining {
			batchLimit = remaining
		}

		batch, err := s.source.SearchPosts(ctx, reddit.SearchOptions{
			Query:      query,
			Limit:      batchLimit,
			TimeFilter: opts.TimeFilter,
			Skip:       fetched,
			TeamID:     opts.TeamID,
			UserID:     opts.UserID,
		})
		if err != nil {
			return nil, fetched, err
		}
		if len(batch) == 0 {
			// Source exhausted: proceed with whatever accumulated,
			// even below MinRelevant.
			break
		}
		fetched += len(batch)

		batchRelevant, _ := s.scorer.FilterPosts(batch, query)
		relevant = append(relevant, batchRelevant...)
		fmt.Printf("Batch at offset %d: %d posts, %d relevant (total %d)\n",
			fetched-len(batch), len(batch), len(batchRelevant), len(relevant))

		if len(relevant) >= opts.MinRelevant {
			break
		}
	}

	return relevant, fetched, nil
}

// insights is the joined output of enrichment, extraction, and analysis.
type insights struct {
	questions  []string
	keywords   []string
	painPoints []types.PainPoint
	ideas      []types.ContentIdea
	postsData  []types.PostData
}

// analyze enriches the top relevant posts with comments, then runs
// question extraction, keyword extraction, and pain-point analysis
// concurrently (none depends on another's output). Content-idea generation
// consumes the pain points and therefore runs after.
func (s *Service) analyze(ctx context.Context, query string, relevant []types.ScoredPost) (*insights, error) {
	posts := make([]*types.Post, len(relevant))
	for i, sp := range relevant {
		posts[i] = sp.Post
	}

	topPosts := topByScore(posts, topPostsForComments)
	postsData, err := s.fetchComments(ctx, topPosts)
	if err != nil {
		return nil, err
	}
	fmt.Printf("Fetched comments for %d top posts\n", len(postsData))

	out := &insights{postsData: postsData}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		out.questions = ExtractQuestions(posts)
		return nil
	})
	g.Go(func() error {
		out.keywords = ExtractKeywords(posts)
		return nil
	})
	g.Go(func() error {
		painPoints, err := s.llm.AnalyzePainPoints(gctx, query, postsData)
		if err != nil {
			return err
		}
		out.painPoints = painPoints
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ideas, err := s.llm.GenerateContentIdeas(ctx, query, postsData, out.painPoints)
	if err != nil {
		return nil, err
	}
	out.ideas = ideas

	out.questions = capStrings(out.questions, 10)
	out.keywords = capStrings(out.keywords, 10)
	if len(out.painPoints) > 10 {
		out.painPoints = out.painPoints[:10]
	}
	if len(out.ideas) > 10 {
		out.ideas = out.ideas[:10]
	}
	return out, nil
}

// fetchComments fans out one comment fetch per post, bounded by a
// semaphore, and joins the results in input order. Individual fetch
// failures surface as empty comment lists inside the source client; only
// gathering mechanics (context cancellation) can fail the join.
func (s *Service) fetchComments(ctx context.Context, posts []*types.Post) ([]types.PostData, error) {
	comments := make([][]*types.Comment, len(posts))
	sem := semaphore.NewWeighted(maxConcurrentFetches)

	g, gctx := errgroup.WithContext(ctx)
	for i, post := range posts {
		i, post := i, post
		g.Go(func() error {
			if err := sem.Acquire(gctx, 1); err != nil {
				return err
			}
			defer sem.Release(1)
			comments[i] = s.source.GetPostComments(gctx, post, commentsPerPost)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	postsData := make([]types.PostData, len(posts))
	for i, post := range posts {
		postsData[i] = buildPostData(post, comments[i])
	}
	return postsData, nil
}

// buildPostData assembles the record handed to LLM analysis: body clipped
// to 1000 chars, at most 10 comments of 500 chars each.
func buildPostData(post *types.Post, comments []*types.Comment) types.PostData {
	body := post.Body
	if len(body) > 1000 {
		body = body[:1000]
	}

	data := types.PostData{
		Title:   post.Title,
		Body:    body,
		Upvotes: post.Score,
	}
	for i, comment := range comments {
		if i >= 10 {
			break
		}
		commentBody := comment.Body
		if len(commentBody) > 500 {
			commentBody = commentBody[:500]
		}
		data.Comments = append(data.Comments, types.CommentData{
			Body:    commentBody,
			Upvotes: comment.Score,
		})
	}
	return data
}

// topByScore returns the n most upvoted posts, descending, without
// mutating the input order.
func topByScore(posts []*types.Post, n int) []*types.Post {
	sorted := make([]*types.Post, len(posts))
	copy(sorted, posts)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// resolveIdea finds the idea matching title: exact match first, then
// case-insensitive substring in either direction.
func resolveIdea(ideas []types.ContentIdea, title string) (*types.ContentIdea, error) {
	for i := range ideas {
		if ideas[i].Title == title {
			return &ideas[i], nil
		}
	}

	wanted := strings.ToLower(strings.TrimSpace(title))
	for i := range ideas {
		have := strings.ToLower(ideas[i].Title)
		if strings.Contains(have, wanted) || strings.Contains(wanted, have) {
			return &ideas[i], nil
		}
	}

	available := make([]string, len(ideas))
	for i, idea := range ideas {
		available[i] = idea.Title
	}
	return nil, &IdeaNotFoundError{Title: title, Available: available}
}

func capStrings(s []string, n int) []string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
