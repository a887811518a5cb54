package research

import (
	"regexp"
	"sort"
	"strings"

	"github.com/findyourn/reddit-listener/internal/types"
)

var (
	sentenceBoundaryRegex = regexp.MustCompile(`[.!]\s+`)
	questionRegex         = regexp.MustCompile(`(?i)^(what|why|how|when|where|who|which|can|should|would|is|are|do|does)\b.*\?$`)
	keywordRegex          = regexp.MustCompile(`\b[a-z]{3,}\b`)
)

// Basic English stopwords excluded from keyword extraction.
var stopwords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "but": true,
	"in": true, "on": true, "at": true, "to": true, "for": true, "of": true,
	"with": true, "by": true, "from": true, "as": true, "is": true, "was": true,
	"are": true, "were": true, "been": true, "be": true, "have": true,
	"has": true, "had": true, "do": true, "does": true, "did": true,
	"will": true, "would": true, "could": true, "should": true, "may": true,
	"might": true, "must": true, "can": true, "i": true, "you": true,
	"he": true, "she": true, "it": true, "we": true, "they": true, "me": true,
	"him": true, "her": true, "us": true, "them": true, "this": true,
	"that": true, "these": true, "those": true, "what": true, "which": true,
	"who": true, "when": true, "where": true, "why": true, "how": true,
	"all": true, "each": true, "every": true, "both": true, "few": true,
	"more": true, "most": true, "other": true, "some": true, "such": true,
	"no": true, "not": true, "only": true, "own": true, "same": true,
	"so": true, "than": true, "too": true, "very": true, "just": true,
	"my": true, "your": true, "their": true,
}

// ExtractQuestions pulls the questions the community is asking out of post
// titles and bodies. A sentence qualifies if it contains "?", starts with a
// question word, and is longer than 10 characters. Questions are deduped by
// lowercased text, ranked by the originating post's upvotes, and capped at
// 10.
func ExtractQuestions(posts []*types.Post) []string {
	type candidate struct {
		text  string
		score int
	}
	var questions []candidate
	seen := make(map[string]bool)

	collect := func(text string, score int) {
		for _, sentence := range sentenceBoundaryRegex.Split(text, -1) {
			sentence = strings.TrimSpace(sentence)
			if !strings.Contains(sentence, "?") || !questionRegex.MatchString(sentence) {
				continue
			}
			if len(sentence) <= 10 {
				continue
			}
			normalized := strings.ToLower(sentence)
			if seen[normalized] {
				continue
			}
			seen[normalized] = true
			questions = append(questions, candidate{text: sentence, score: score})
		}
	}

	for _, post := range posts {
		if strings.Contains(post.Title, "?") {
			collect(post.Title, post.Score)
		}
		if post.Body != "" {
			collect(post.Body, post.Score)
		}
	}

	sort.SliceStable(questions, func(i, j int) bool {
		return questions[i].score > questions[j].score
	})

	result := make([]string, 0, 10)
	for i, q := range questions {
		if i >= 10 {
			break
		}
		result = append(result, q.text)
	}
	return result
}

// ExtractKeywords extracts the most frequent terms across post titles and
// bodies (first 500 characters each). The top 3 bigrams come first, then
// the top 7 unigrams, capped at 10 total. A bigram counts when at least one
// of its words is not a stopword.
func ExtractKeywords(posts []*types.Post) []string {
	var texts []string
	for _, post := range posts {
		texts = append(texts, post.Title)
		if post.Body != "" {
			body := post.Body
			if len(body) > 500 {
				body = body[:500]
			}
			texts = append(texts, body)
		}
	}
	combined := strings.ToLower(strings.Join(texts, " "))

	words := keywordRegex.FindAllString(combined, -1)

	wordCounts := make(map[string]int)
	wordOrder := make(map[string]int)
	for i, w := range words {
		if stopwords[w] {
			continue
		}
		if _, ok := wordCounts[w]; !ok {
			wordOrder[w] = i
		}
		wordCounts[w]++
	}

	bigramCounts := make(map[string]int)
	bigramOrder := make(map[string]int)
	for i := 0; i+1 < len(words); i++ {
		if stopwords[words[i]] && stopwords[words[i+1]] {
			continue
		}
		bigram := words[i] + " " + words[i+1]
		if _, ok := bigramCounts[bigram]; !ok {
			bigramOrder[bigram] = i
		}
		bigramCounts[bigram]++
	}

	keywords := topN(bigramCounts, bigramOrder, 3)
	keywords = append(keywords, topN(wordCounts, wordOrder, 7)...)
	if len(keywords) > 10 {
		keywords = keywords[:10]
	}
	return keywords
}

// topN returns the n highest-count terms, breaking count ties by first
// occurrence so the output is deterministic.
func topN(counts, order map[string]int, n int) []string {
	terms := make([]string, 0, len(counts))
	for term := range counts {
		terms = append(terms, term)
	}
	sort.Slice(terms, func(i, j int) bool {
		if counts[terms[i]] != counts[terms[j]] {
			return counts[terms[i]] > counts[terms[j]]
		}
		return order[terms[i]] < order[terms[j]]
	})
	if len(terms) > n {
		terms = terms[:n]
	}
	return terms
}
