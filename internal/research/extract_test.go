package research

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/findyourn/reddit-listener/internal/types"
)

func TestExtractQuestionsFromTitlesAndBodies(t *testing.T) {
	posts := []*types.Post{
		{Title: "How do I charge an EV at home?", Score: 50},
		{Title: "Just bought a car", Body: "Loving it so far. What should I know about winter range?", Score: 200},
		{Title: "No question here", Score: 999},
	}

	questions := ExtractQuestions(posts)

	assert.Len(t, questions, 2)
	// Ranked by the originating post's upvotes, highest first.
	assert.Equal(t, "What should I know about winter range?", questions[0])
	assert.Equal(t, "How do I charge an EV at home?", questions[1])
}

func TestExtractQuestionsRequiresQuestionWordStart(t *testing.T) {
	posts := []*types.Post{
		{Title: "Thinking about solar panels, worth it?", Score: 10},
		{Title: "Should I get solar panels?", Score: 10},
	}

	questions := ExtractQuestions(posts)

	assert.Equal(t, []string{"Should I get solar panels?"}, questions)
}

func TestExtractQuestionsSkipsShortSentences(t *testing.T) {
	posts := []*types.Post{
		{Title: "Why not?", Score: 10},
		{Title: "Why is my battery degrading so fast?", Score: 5},
	}

	questions := ExtractQuestions(posts)

	assert.Equal(t, []string{"Why is my battery degrading so fast?"}, questions)
}

func TestExtractQuestionsDedupesCaseInsensitively(t *testing.T) {
	posts := []*types.Post{
		{Title: "How does regen braking work?", Score: 10},
		{Title: "HOW DOES REGEN BRAKING WORK?", Score: 90},
	}

	questions := ExtractQuestions(posts)

	assert.Len(t, questions, 1)
}

func TestExtractQuestionsCapsAtTen(t *testing.T) {
	var posts []*types.Post
	for i := 0; i < 15; i++ {
		posts = append(posts, &types.Post{
			Title: "What about option number " + strings.Repeat("x", i+1) + "?",
			Score: i,
		})
	}

	questions := ExtractQuestions(posts)

	assert.Len(t, questions, 10)
}

func TestExtractQuestionsSplitsBodyOnSentenceBoundaries(t *testing.T) {
	posts := []*types.Post{
		{Body: "I did some digging. Found nothing online. Why is home charging cheaper at night?", Score: 1},
	}

	questions := ExtractQuestions(posts)

	assert.Equal(t, []string{"Why is home charging cheaper at night?"}, questions)
}

func TestExtractKeywordsBigramsFirstThenUnigrams(t *testing.T) {
	posts := []*types.Post{
		{Title: "electric cars and electric cars again", Body: "electric cars need charging stations"},
		{Title: "charging stations everywhere", Body: "stations stations charging"},
	}

	keywords := ExtractKeywords(posts)

	assert.NotEmpty(t, keywords)
	assert.Contains(t, keywords, "electric cars")
	assert.Contains(t, keywords, "charging stations")
	// Bigrams come before unigrams.
	assert.Contains(t, keywords[:3], "electric cars")
	assert.Contains(t, keywords, "stations")
}

func TestExtractKeywordsSkipsStopwordsAndShortWords(t *testing.T) {
	posts := []*types.Post{
		{Title: "the and of to it is battery battery battery"},
	}

	keywords := ExtractKeywords(posts)

	assert.Contains(t, keywords, "battery")
	assert.NotContains(t, keywords, "the")
	assert.NotContains(t, keywords, "it")
}

func TestExtractKeywordsClipsBodyAt500(t *testing.T) {
	rare := "zirconium"
	posts := []*types.Post{
		{Title: "title words", Body: strings.Repeat("filler ", 100) + rare},
	}

	keywords := ExtractKeywords(posts)

	assert.NotContains(t, keywords, rare, "terms past the 500-char body clip are ignored")
	assert.Contains(t, keywords, "filler")
}

func TestExtractKeywordsCapAndDeterminism(t *testing.T) {
	posts := []*types.Post{
		{Title: "alpha bravo charlie delta echo foxtrot golf hotel india juliett kilo lima"},
	}

	first := ExtractKeywords(posts)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, ExtractKeywords(posts), "tie-breaking must be deterministic")
	}
	assert.LessOrEqual(t, len(first), 10)
}
