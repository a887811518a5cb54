// Package types defines the domain objects shared across the research
// pipeline: Reddit posts and comments, scored posts, and the value objects
// produced by LLM analysis.
package types

import (
	"fmt"
	"strings"
)

// Post represents a Reddit submission returned by search.
type Post struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Body        string `json:"body"` // selftext; empty for link posts
	Score       int    `json:"score"`
	NumComments int    `json:"num_comments"`
	Subreddit   string `json:"subreddit"`
	Author      string `json:"author,omitempty"`
	Permalink   string `json:"permalink,omitempty"`
	CreatedUTC  int64  `json:"created_utc,omitempty"`
}

// Comment represents a single comment on a post.
type Comment struct {
	Body  string `json:"body"`
	Score int    `json:"score"`
}

// ScoredPost is a post annotated with its relevance to a query.
type ScoredPost struct {
	Post           *Post
	RelevanceScore float64  // in [0, 1]
	MatchReasons   []string // one human-readable reason per contributing rule, in evaluation order
}

// PainPoint is a problem identified from community discussions, with the
// top-voted solutions summarized.
type PainPoint struct {
	Description     string `json:"description"`
	SolutionSummary string `json:"solution_summary"`
	Upvotes         int    `json:"upvotes"`
}

// ContentIdea is a content suggestion generated from research insights.
type ContentIdea struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Rationale   string `json:"rationale"`
}

// ControversialAspect describes whether a topic splits the community.
type ControversialAspect struct {
	IsControversial bool   `json:"is_controversial"`
	ForAgainstSplit string `json:"for_against_split"`
}

// EngagementSignals summarizes how much traction a topic has.
type EngagementSignals struct {
	Popularity        string `json:"popularity"`
	ViralityPotential string `json:"virality_potential"`
}

// Knowledge depth classifications for DetailedContext.
const (
	DepthBeginnerFriendly = "beginner-friendly"
	DepthIntermediate     = "intermediate"
	DepthExpert           = "expert"
)

// DetailedContext is the case-study-level analysis generated on demand for
// one previously discovered content idea.
type DetailedContext struct {
	IdeaTitle                  string              `json:"idea_title"`
	IdeaDescription            string              `json:"idea_description"`
	FullPostAndCommentAnalysis string              `json:"full_post_and_comment_analysis"`
	EmotionalAspect            string              `json:"emotional_aspect"`
	ControversialAspect        ControversialAspect `json:"controversial_aspect"`
	EngagementSignals          EngagementSignals   `json:"engagement_signals"`
	KnowledgeDepth             string              `json:"knowledge_depth"`
	Category                   string              `json:"category"`
}

// Validate checks that the context carries the fields downstream content
// generators depend on.
func (dc *DetailedContext) Validate() error {
	if strings.TrimSpace(dc.IdeaTitle) == "" {
		return fmt.Errorf("idea_title is required")
	}
	if strings.TrimSpace(dc.FullPostAndCommentAnalysis) == "" {
		return fmt.Errorf("full_post_and_comment_analysis is required")
	}
	switch dc.KnowledgeDepth {
	case DepthBeginnerFriendly, DepthIntermediate, DepthExpert:
	default:
		return fmt.Errorf("invalid knowledge_depth: %q", dc.KnowledgeDepth)
	}
	return nil
}

// CommentData is the trimmed comment payload handed to LLM analysis.
type CommentData struct {
	Body    string `json:"body"`
	Upvotes int    `json:"upvotes"`
}

// PostData is the assembled {title, body, popularity, comments} record
// handed to LLM analysis, and the raw payload cached for phase-2 context
// generation.
type PostData struct {
	Title    string        `json:"title"`
	Body     string        `json:"body"`
	Upvotes  int           `json:"upvotes"`
	Comments []CommentData `json:"comments"`
}

// DiscoveryResult holds everything one discovery run produced. RawPosts is
// retained so that phase-2 context generation can run without a second
// Reddit fetch.
type DiscoveryResult struct {
	Query        string        `json:"query"`
	ContentIdeas []ContentIdea `json:"content_ideas"`
	PainPoints   []PainPoint   `json:"pain_points"`
	Questions    []string      `json:"questions"`
	Keywords     []string      `json:"keywords"`
	RawPosts     []PostData    `json:"raw_posts"`
}

// ResearchResult holds the results of a one-shot (non-cached) research run.
type ResearchResult struct {
	Query        string        `json:"query"`
	Questions    []string      `json:"questions"`
	Keywords     []string      `json:"keywords"`
	PainPoints   []PainPoint   `json:"pain_points"`
	ContentIdeas []ContentIdea `json:"content_ideas"`
}
