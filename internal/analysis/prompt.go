package analysis

import (
	"fmt"
	"strings"

	"github.com/findyourn/reddit-listener/internal/types"
)

// System prompts for the three analysis operations.
const (
	painPointsSystemPrompt = "You are an expert at analyzing community discussions and identifying key pain points with their solutions. Return structured JSON data."

	contentIdeasSystemPrompt = "You are an expert content strategist who creates engaging content ideas based on community insights. Return structured JSON data."

	detailedContextSystemPrompt = "You are an expert Reddit and social media content analyst who provides exhaustive, case-study-level analysis. You extract maximum context and nuance from discussions to enable high-quality content generation downstream."
)

func buildPainPointsPrompt(query string, posts []types.PostData) string {
	return fmt.Sprintf(`Analyze the following Reddit discussions and identify the TOP 10 pain points that people are discussing.

For EACH pain point:
1. Describe the pain point clearly
2. Summarize the TOP community-voted solutions (based on upvotes and quality)
3. Note the general sentiment/priority

IMPORTANT: Only include pain points that are DIRECTLY related to %q.
Ignore tangential discussions or unrelated topics that may have appeared in search results.

Reddit Discussions:
%s

Return a JSON object of the form {"pain_points": [{"description": "...", "solution_summary": "...", "upvotes": 0}]} with up to 10 entries.`,
		query, formatPostsForAnalysis(posts, 50))
}

func buildContentIdeasPrompt(query string, posts []types.PostData, painPoints []types.PainPoint) string {
	var bullets []string
	for i, pp := range painPoints {
		if i >= 10 {
			break
		}
		bullets = append(bullets, "- "+pp.Description)
	}

	return fmt.Sprintf(`Based on the following Reddit research about %q, generate 10 compelling content ideas.

Pain Points Identified:
%s

Sample Reddit Discussions:
%s

For EACH content idea, provide:
1. A compelling title
2. A brief description of what the content would cover
3. Why this would be valuable based on the Reddit insights

IMPORTANT: Only generate content ideas that are DIRECTLY related to %q.
Do not include ideas about unrelated topics that happened to appear in the data.

Return a JSON object of the form {"content_ideas": [{"title": "...", "description": "...", "rationale": "..."}]} with up to 10 entries.`,
		query, strings.Join(bullets, "\n"), formatPostsForAnalysis(posts, 50), query)
}

func buildDetailedContextPrompt(ideaTitle, ideaDescription string, posts []types.PostData) string {
	return fmt.Sprintf(`You are analyzing Reddit discussions to provide exhaustive context for this content idea:

**Content Idea:** %s
**Description:** %s

**Your Task:**
Provide a comprehensive, case-study-level analysis of the Reddit discussions below. This analysis will be the ONLY context available to downstream content generators (LinkedIn posts, Twitter threads, blog articles), so it must be extremely detailed and capture ALL relevant information.

**Reddit Discussions:**
%s

**Analysis Requirements:**

1. **Full Post & Comment Analysis** (Most Important):
   - Transform the Reddit data into a richly detailed narrative
   - Go far beyond summarization: provide point-by-point contextualized analysis
   - Capture motivations, challenges, debates, opposing viewpoints, technical/cultural context
   - Document recurring issues, sentiment shifts, community consensus, minority opinions
   - Include specific examples, paraphrased quotes, concrete scenarios
   - Identify underlying problems, attempted solutions, what worked and what did not
   - Write like a comprehensive case study that could stand alone
   - Minimum 500 words, maximum 2000 words

2. **Emotional Aspect**: the dominant emotional tone (e.g. "frustrated", "excited", "concerned", "hopeful", "angry", "curious")

3. **Controversial Aspect**: whether the topic is controversial, and if so the estimated split (e.g. "60%% supportive, 40%% critical")

4. **Engagement Signals**: popularity level and virality potential ("high", "medium", or "low")

5. **Knowledge Depth**: "beginner-friendly", "intermediate", or "expert"

6. **Category**: primary content category (e.g. "Tutorial", "Opinion", "Analysis", "Case Study", "Guide", "News", "Discussion")

Return a JSON object with exactly these fields:
{"idea_title": "...", "idea_description": "...", "full_post_and_comment_analysis": "...", "emotional_aspect": "...", "controversial_aspect": {"is_controversial": false, "for_against_split": "..."}, "engagement_signals": {"popularity": "...", "virality_potential": "..."}, "knowledge_depth": "...", "category": "..."}

Focus on extracting maximum value and context from the Reddit discussions.`,
		ideaTitle, ideaDescription, formatPostsForAnalysis(posts, 100))
}

// formatPostsForAnalysis renders posts as compact text blocks for a prompt.
// Bodies are clipped to 500 characters and only the top 3 comments of each
// post are included.
func formatPostsForAnalysis(posts []types.PostData, maxPosts int) string {
	var blocks []string
	for i, post := range posts {
		if i >= maxPosts {
			break
		}

		var comments []string
		for j, comment := range post.Comments {
			if j >= 3 {
				break
			}
			comments = append(comments, fmt.Sprintf("  -> %s (^%d)", clip(comment.Body, 200), comment.Upvotes))
		}

		blocks = append(blocks, fmt.Sprintf("\nPost %d: %s (^%d)\n%s\nTop Comments:\n%s\n---",
			i+1, post.Title, post.Upvotes, clip(post.Body, 500), strings.Join(comments, "\n")))
	}
	return strings.Join(blocks, "\n")
}

func clip(s string, max int) string {
	if len(s) <= max {
		return s
	}
	// Avoid splitting a multi-byte rune at the cut point.
	for max > 0 && s[max]&0xC0 == 0x80 {
		max--
	}
	return s[:max]
}
