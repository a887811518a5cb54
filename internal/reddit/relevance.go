package reddit

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/findyourn/reddit-listener/internal/types"
)

// DefaultMinThreshold is the relevance score below which a post is filtered
// out. 0.3 is moderate strictness.
const DefaultMinThreshold = 0.3

var titleWordRegex = regexp.MustCompile(`\b[a-z]+\b`)

// RelevanceScorer scores posts for topical relevance to a query and
// partitions search results into relevant and filtered-out sets. Search on
// r/all is noisy; this keeps the expensive downstream work (comment fetch,
// LLM analysis) off posts that merely shared a keyword with the query.
type RelevanceScorer struct {
	minThreshold float64
}

// NewRelevanceScorer creates a scorer with the given inclusion threshold.
// A non-positive threshold falls back to DefaultMinThreshold.
func NewRelevanceScorer(minThreshold float64) *RelevanceScorer {
	if minThreshold <= 0 {
		minThreshold = DefaultMinThreshold
	}
	return &RelevanceScorer{minThreshold: minThreshold}
}

// ScorePost scores a single post against the query. Rules are additive,
// each fires at most once, and the total is capped at 1.0. One reason
// string is recorded per contributing rule, in evaluation order.
func (s *RelevanceScorer) ScorePost(post *types.Post, query string) types.ScoredPost {
	score := 0.0
	var reasons []string

	queryLower := strings.ToLower(strings.TrimSpace(query))
	queryWords := uniqueFields(queryLower)
	queryPhrases := extractPhrases(queryLower)

	title := strings.ToLower(post.Title)
	body := strings.ToLower(post.Body)

	// 1. Exact phrase match in title (highest weight: 0.5)
	for _, phrase := range queryPhrases {
		if strings.Contains(title, phrase) {
			score += 0.5
			reasons = append(reasons, fmt.Sprintf("Exact phrase %q in title", phrase))
			break
		}
	}

	// 2. Exact phrase match in body (weight: 0.25)
	for _, phrase := range queryPhrases {
		if strings.Contains(body, phrase) {
			score += 0.25
			reasons = append(reasons, fmt.Sprintf("Exact phrase %q in body", phrase))
			break
		}
	}

	// 3. All query words appear in title (weight: 0.3), else
	// 4. partial word match in title (weight: 0.15, scaled)
	titleWords := wordSet(title)
	if len(queryWords) > 0 {
		matched := countMatches(queryWords, titleWords)
		if matched == len(queryWords) {
			score += 0.3
			reasons = append(reasons, "All query words in title")
		} else if matched > 0 {
			score += 0.15 * float64(matched) / float64(len(queryWords))
			reasons = append(reasons, fmt.Sprintf("Partial match: %d/%d words", matched, len(queryWords)))
		}
	}

	// 5. All query words in body (weight: 0.15)
	if len(queryWords) > 0 {
		if countMatches(queryWords, wordSet(body)) == len(queryWords) {
			score += 0.15
			reasons = append(reasons, "All query words in body")
		}
	}

	// 6. Query appears in subreddit name (weight: 0.1)
	if post.Subreddit != "" {
		subreddit := strings.ToLower(post.Subreddit)
		for _, phrase := range queryPhrases {
			condensed := strings.ReplaceAll(phrase, " ", "")
			if strings.Contains(subreddit, condensed) || strings.Contains(subreddit, phrase) {
				score += 0.1
				reasons = append(reasons, fmt.Sprintf("Query in subreddit: r/%s", post.Subreddit))
				break
			}
		}
	}

	return types.ScoredPost{
		Post:           post,
		RelevanceScore: math.Min(score, 1.0),
		MatchReasons:   reasons,
	}
}

// FilterPosts scores every post and partitions the input by the inclusion
// threshold. The relevant partition is sorted descending by relevance score
// weighted by upvotes (stable, so ties keep input order); the filtered-out
// partition keeps input order. Every input post lands in exactly one
// partition.
func (s *RelevanceScorer) FilterPosts(posts []*types.Post, query string) (relevant, filteredOut []types.ScoredPost) {
	for _, post := range posts {
		sp := s.ScorePost(post, query)
		if sp.RelevanceScore >= s.minThreshold {
			relevant = append(relevant, sp)
		} else {
			filteredOut = append(filteredOut, sp)
		}
	}

	// Combined relevance x popularity ranking.
	sort.SliceStable(relevant, func(i, j int) bool {
		return rank(relevant[i]) > rank(relevant[j])
	})

	return relevant, filteredOut
}

func rank(sp types.ScoredPost) float64 {
	upvotes := sp.Post.Score
	if upvotes < 1 {
		upvotes = 1
	}
	return sp.RelevanceScore * float64(upvotes)
}

// extractPhrases returns the phrases matched against post text: the full
// query plus every adjacent-word bigram.
func extractPhrases(query string) []string {
	phrases := []string{query}
	words := strings.Fields(query)
	for i := 0; i+1 < len(words); i++ {
		phrases = append(phrases, words[i]+" "+words[i+1])
	}
	return phrases
}

// uniqueFields returns the distinct whitespace-separated words of text,
// keeping first-occurrence order.
func uniqueFields(text string) []string {
	seen := make(map[string]bool)
	var words []string
	for _, w := range strings.Fields(text) {
		if !seen[w] {
			seen[w] = true
			words = append(words, w)
		}
	}
	return words
}

func wordSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range titleWordRegex.FindAllString(text, -1) {
		set[w] = true
	}
	return set
}

func countMatches(words []string, set map[string]bool) int {
	n := 0
	for _, w := range words {
		if set[w] {
			n++
		}
	}
	return n
}
