package reddit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/findyourn/reddit-listener/internal/types"
)

func TestScorePostWeights(t *testing.T) {
	scorer := NewRelevanceScorer(0.3)

	tests := []struct {
		name     string
		post     *types.Post
		query    string
		expected float64
	}{
		{
			name:     "phrase in title plus all words in title",
			post:     &types.Post{Title: "Why electric cars are the future"},
			query:    "electric cars",
			expected: 0.8, // 0.5 phrase + 0.3 all words
		},
		{
			name:     "phrase and all words in body only",
			post:     &types.Post{Title: "A big announcement", Body: "I finally bought electric cars for the fleet"},
			query:    "electric cars",
			expected: 0.4, // 0.25 phrase in body + 0.15 all words in body
		},
		{
			name:     "partial title match",
			post:     &types.Post{Title: "The electric grid is failing"},
			query:    "electric cars",
			expected: 0.075, // 0.15 * 1/2
		},
		{
			name:     "subreddit match only",
			post:     &types.Post{Title: "Charging stations near me", Subreddit: "electriccars"},
			query:    "electric cars",
			expected: 0.1, // condensed phrase inside the subreddit name
		},
		{
			name:     "no match at all",
			post:     &types.Post{Title: "Sourdough starter tips", Body: "Feed it twice a day"},
			query:    "electric cars",
			expected: 0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sp := scorer.ScorePost(tt.post, tt.query)
			assert.InDelta(t, tt.expected, sp.RelevanceScore, 1e-9)
			assert.GreaterOrEqual(t, sp.RelevanceScore, 0.0)
			assert.LessOrEqual(t, sp.RelevanceScore, 1.0)
		})
	}
}

func TestScorePostRecordsReasonsInOrder(t *testing.T) {
	scorer := NewRelevanceScorer(0.3)
	post := &types.Post{
		Title:     "Why electric cars are the future",
		Body:      "Thinking about electric cars and the future of transport",
		Subreddit: "electricvehicles",
	}

	sp := scorer.ScorePost(post, "electric cars")

	require.Len(t, sp.MatchReasons, 4)
	assert.Contains(t, sp.MatchReasons[0], "in title")
	assert.Contains(t, sp.MatchReasons[1], "in body")
	assert.Equal(t, "All query words in title", sp.MatchReasons[2])
	assert.Equal(t, "All query words in body", sp.MatchReasons[3])
	assert.Equal(t, 1.0, sp.RelevanceScore, "raw 1.2 must be capped at 1.0")
}

func TestScorePostCondensedSubredditMatch(t *testing.T) {
	scorer := NewRelevanceScorer(0.3)
	sp := scorer.ScorePost(&types.Post{Title: "Weekly thread", Subreddit: "ElectricCars"}, "electric cars")
	assert.InDelta(t, 0.1, sp.RelevanceScore, 1e-9)
	require.Len(t, sp.MatchReasons, 1)
	assert.Equal(t, "Query in subreddit: r/ElectricCars", sp.MatchReasons[0])
}

func TestScorePostBigramPhrase(t *testing.T) {
	scorer := NewRelevanceScorer(0.3)
	// "home battery" never appears, but the bigram "battery backup" does.
	sp := scorer.ScorePost(&types.Post{Title: "Best battery backup setups"}, "home battery backup")
	assert.Contains(t, sp.MatchReasons[0], `"battery backup"`)
}

func TestFilterPostsPartitionComplete(t *testing.T) {
	scorer := NewRelevanceScorer(0.3)
	posts := []*types.Post{
		{Title: "Why electric cars are the future", Score: 10},
		{Title: "Sourdough starter tips", Score: 500},
		{Title: "Electric cars charging guide", Score: 50},
		{Title: "My cat did a thing", Score: 9000},
	}

	relevant, filteredOut := scorer.FilterPosts(posts, "electric cars")

	assert.Equal(t, len(posts), len(relevant)+len(filteredOut))
	assert.Len(t, relevant, 2)
	assert.Len(t, filteredOut, 2)
}

func TestFilterPostsOrdering(t *testing.T) {
	scorer := NewRelevanceScorer(0.1)
	posts := []*types.Post{
		{Title: "electric cars guide", Score: 10},
		{Title: "electric cars rule", Score: 1000},
		{Title: "electric bike", Score: 100},
	}

	relevant, _ := scorer.FilterPosts(posts, "electric cars")
	require.NotEmpty(t, relevant)

	for i := 0; i+1 < len(relevant); i++ {
		assert.GreaterOrEqual(t, rank(relevant[i]), rank(relevant[i+1]),
			"relevant posts must be ordered by score x upvotes descending")
	}
	assert.Equal(t, "electric cars rule", relevant[0].Post.Title)
}

func TestFilterPostsStableOnTies(t *testing.T) {
	scorer := NewRelevanceScorer(0.1)
	posts := []*types.Post{
		{ID: "a", Title: "electric cars guide", Score: 100},
		{ID: "b", Title: "electric cars review", Score: 100},
		{ID: "c", Title: "electric cars thread", Score: 100},
	}

	relevant, _ := scorer.FilterPosts(posts, "electric cars")
	require.Len(t, relevant, 3)
	assert.Equal(t, "a", relevant[0].Post.ID)
	assert.Equal(t, "b", relevant[1].Post.ID)
	assert.Equal(t, "c", relevant[2].Post.ID)
}

func TestFilterPostsZeroUpvotesRankAsOne(t *testing.T) {
	scorer := NewRelevanceScorer(0.1)
	posts := []*types.Post{
		{ID: "zero", Title: "electric cars guide", Score: 0},
		{ID: "two", Title: "electric cars guide", Score: 2},
	}

	relevant, _ := scorer.FilterPosts(posts, "electric cars")
	require.Len(t, relevant, 2)
	assert.Equal(t, "two", relevant[0].Post.ID)
}

func TestThresholdBoundaryInclusive(t *testing.T) {
	scorer := NewRelevanceScorer(0.3)
	// All-words-in-title alone scores exactly 0.3 when no phrase matches.
	post := &types.Post{Title: "cars that are electric"}

	relevant, filteredOut := scorer.FilterPosts([]*types.Post{post}, "electric cars")
	assert.Len(t, relevant, 1, "score == threshold must be included")
	assert.Empty(t, filteredOut)
}
