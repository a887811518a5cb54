// Package analysis turns fetched Reddit discussions into structured
// insights (pain points, content ideas, detailed context) via an LLM.
package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"golang.org/x/time/rate"

	"github.com/findyourn/reddit-listener/internal/retry"
	"github.com/findyourn/reddit-listener/internal/types"
)

// DefaultModel is the model used when none is configured.
const DefaultModel = "claude-sonnet-4-5-20250929"

// Config holds analyzer configuration.
type Config struct {
	APIKey  string // if empty, read from ANTHROPIC_API_KEY
	BaseURL string // optional API endpoint override
	Model   string // default: DefaultModel

	// RequestsPerMinute paces outbound LLM calls (default 30, 0 keeps
	// the default; use a negative value to disable pacing).
	RequestsPerMinute int

	Retry retry.Config // zero value uses retry.DefaultConfig
}

// Analyzer makes the LLM calls of the research pipeline. Each call is
// paced by a request limiter and retried on transient API failures.
type Analyzer struct {
	client  anthropic.Client
	model   string
	limiter *rate.Limiter
	retry   retry.Config
}

// FormatError reports structured LLM output that could not be decoded or
// failed validation.
type FormatError struct {
	Operation string
	Err       error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("malformed %s output: %v", e.Operation, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

// NewAnalyzer creates an analyzer.
func NewAnalyzer(cfg Config) (*Analyzer, error) {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY not set")
		}
	}

	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	rpm := cfg.RequestsPerMinute
	if rpm == 0 {
		rpm = 30
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if rpm > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), rpm)
	}

	retryCfg := cfg.Retry
	if retryCfg.MaxRetries == 0 && retryCfg.BaseDelay == 0 {
		retryCfg = retry.DefaultConfig()
	}

	return &Analyzer{
		client:  anthropic.NewClient(opts...),
		model:   model,
		limiter: limiter,
		retry:   retryCfg,
	}, nil
}

// AnalyzePainPoints extracts up to 10 pain points (with community-voted
// solutions) from the discussions. A response the model formats badly
// degrades to an empty list rather than failing the discovery run.
func (a *Analyzer) AnalyzePainPoints(ctx context.Context, query string, posts []types.PostData) ([]types.PainPoint, error) {
	text, err := a.callModel(ctx, "pain point analysis", painPointsSystemPrompt,
		buildPainPointsPrompt(query, posts), 0.3)
	if err != nil {
		return nil, err
	}

	parsed, err := parseJSON[struct {
		PainPoints []types.PainPoint `json:"pain_points"`
	}](text)
	if err != nil {
		slog.Warn("failed to parse pain points response", "error", err)
		return nil, nil
	}

	points := parsed.PainPoints
	if len(points) > 10 {
		points = points[:10]
	}
	for i := range points {
		if points[i].Upvotes < 0 {
			points[i].Upvotes = 0
		}
	}
	return points, nil
}

// GenerateContentIdeas turns the discussions and pain points into up to 10
// content ideas. Degrades to an empty list on a malformed response.
func (a *Analyzer) GenerateContentIdeas(ctx context.Context, query string, posts []types.PostData, painPoints []types.PainPoint) ([]types.ContentIdea, error) {
	text, err := a.callModel(ctx, "content idea generation", contentIdeasSystemPrompt,
		buildContentIdeasPrompt(query, posts, painPoints), 0.7)
	if err != nil {
		return nil, err
	}

	parsed, err := parseJSON[struct {
		ContentIdeas []types.ContentIdea `json:"content_ideas"`
	}](text)
	if err != nil {
		slog.Warn("failed to parse content ideas response", "error", err)
		return nil, nil
	}

	ideas := parsed.ContentIdeas
	if len(ideas) > 10 {
		ideas = ideas[:10]
	}
	return ideas, nil
}

// GenerateDetailedContext produces the case-study-level analysis for one
// selected idea. Unlike the list-shaped operations, a malformed response
// here is surfaced as a FormatError: the caller asked for exactly this
// document and silently returning nothing would be worse than failing.
func (a *Analyzer) GenerateDetailedContext(ctx context.Context, ideaTitle, ideaDescription string, posts []types.PostData) (*types.DetailedContext, error) {
	text, err := a.callModel(ctx, "detailed context generation", detailedContextSystemPrompt,
		buildDetailedContextPrompt(ideaTitle, ideaDescription, posts), 0.5)
	if err != nil {
		return nil, err
	}

	dc, err := parseJSON[types.DetailedContext](text)
	if err != nil {
		return nil, &FormatError{Operation: "detailed context", Err: err}
	}
	if dc.IdeaTitle == "" {
		dc.IdeaTitle = ideaTitle
	}
	if dc.IdeaDescription == "" {
		dc.IdeaDescription = ideaDescription
	}
	if err := dc.Validate(); err != nil {
		return nil, &FormatError{Operation: "detailed context", Err: err}
	}
	return &dc, nil
}

// callModel makes one paced, retried request and returns the concatenated
// text blocks of the response.
func (a *Analyzer) callModel(ctx context.Context, operation, system, prompt string, temperature float64) (string, error) {
	if err := a.limiter.Wait(ctx); err != nil {
		return "", err
	}

	start := time.Now()
	response, err := retry.Do(ctx, a.retry, operation, func(ctx context.Context) (*anthropic.Message, error) {
		return a.client.Messages.New(ctx, anthropic.MessageNewParams{
			Model:       anthropic.Model(a.model),
			MaxTokens:   4096,
			Temperature: anthropic.Float(temperature),
			System: []anthropic.TextBlockParam{
				{Text: system},
			},
			Messages: []anthropic.MessageParam{
				anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
			},
		})
	})
	if err != nil {
		return "", fmt.Errorf("%s failed: %w", operation, err)
	}

	var text string
	for _, block := range response.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}

	fmt.Printf("LLM %s: input=%d tokens, output=%d tokens, duration=%v\n",
		operation, response.Usage.InputTokens, response.Usage.OutputTokens,
		time.Since(start).Round(time.Millisecond))
	return text, nil
}
