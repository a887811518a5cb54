package analysis

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/findyourn/reddit-listener/internal/types"
)

func samplePosts(n int) []types.PostData {
	posts := make([]types.PostData, n)
	for i := range posts {
		posts[i] = types.PostData{
			Title:   "Post title",
			Body:    strings.Repeat("b", 600),
			Upvotes: 100,
			Comments: []types.CommentData{
				{Body: "first", Upvotes: 5},
				{Body: "second", Upvotes: 4},
				{Body: "third", Upvotes: 3},
				{Body: "fourth (should be dropped)", Upvotes: 2},
			},
		}
	}
	return posts
}

func TestFormatPostsForAnalysis(t *testing.T) {
	text := formatPostsForAnalysis(samplePosts(2), 50)

	assert.Contains(t, text, "Post 1:")
	assert.Contains(t, text, "Post 2:")
	assert.Contains(t, text, "(^100)")
	assert.Contains(t, text, "third")
	assert.NotContains(t, text, "fourth", "only the top 3 comments are included")
	assert.NotContains(t, text, strings.Repeat("b", 501), "bodies are clipped to 500 chars")
}

func TestFormatPostsForAnalysisRespectsMaxPosts(t *testing.T) {
	text := formatPostsForAnalysis(samplePosts(5), 2)
	assert.Contains(t, text, "Post 2:")
	assert.NotContains(t, text, "Post 3:")
}

func TestBuildPainPointsPromptMentionsQuery(t *testing.T) {
	prompt := buildPainPointsPrompt("electric cars", samplePosts(1))
	assert.Contains(t, prompt, `"electric cars"`)
	assert.Contains(t, prompt, "pain_points")
}

func TestBuildContentIdeasPromptListsPainPoints(t *testing.T) {
	painPoints := []types.PainPoint{
		{Description: "charging is slow"},
		{Description: "range anxiety"},
	}
	prompt := buildContentIdeasPrompt("electric cars", samplePosts(1), painPoints)
	assert.Contains(t, prompt, "- charging is slow")
	assert.Contains(t, prompt, "- range anxiety")
	assert.Contains(t, prompt, "content_ideas")
}

func TestBuildDetailedContextPromptEmbedsIdea(t *testing.T) {
	prompt := buildDetailedContextPrompt("10 Tips for EV Charging", "a practical guide", samplePosts(1))
	assert.Contains(t, prompt, "10 Tips for EV Charging")
	assert.Contains(t, prompt, "a practical guide")
	assert.Contains(t, prompt, "full_post_and_comment_analysis")
}

func TestClipPreservesRuneBoundary(t *testing.T) {
	s := "héllo wörld"
	clipped := clip(s, 2)
	assert.LessOrEqual(t, len(clipped), 2)
	assert.Equal(t, "h", clipped, "must not cut a multi-byte rune in half")
}
