package analysis

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// Pre-compiled patterns; compiling per parse is needlessly slow.
var (
	codeFenceRegex     = regexp.MustCompile("(?s)```(?:json)?\\s*\\n?([\\s\\S]*?)\\n?```")
	trailingCommaRegex = regexp.MustCompile(`,(\s*[}\]])`)
	objectRegex        = regexp.MustCompile(`(?s)\{[\s\S]*\}`)
	arrayRegex         = regexp.MustCompile(`(?s)\[[\s\S]*\]`)
)

// parseJSON decodes model output into T, tolerating the usual LLM quirks:
// markdown code fences, trailing commas, and prose wrapped around the JSON.
//
// Strategy sequence:
//  1. direct parse
//  2. strip code fences and retry
//  3. remove trailing commas and retry
//  4. extract the outermost object/array from mixed content and retry
func parseJSON[T any](text string) (T, error) {
	var result T

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return result, fmt.Errorf("empty response")
	}

	if err := json.Unmarshal([]byte(trimmed), &result); err == nil {
		return result, nil
	}

	if m := codeFenceRegex.FindStringSubmatch(trimmed); m != nil {
		if err := json.Unmarshal([]byte(strings.TrimSpace(m[1])), &result); err == nil {
			return result, nil
		}
		trimmed = strings.TrimSpace(m[1])
	}

	cleaned := trailingCommaRegex.ReplaceAllString(trimmed, "$1")
	if err := json.Unmarshal([]byte(cleaned), &result); err == nil {
		return result, nil
	}

	var extracted string
	if strings.Contains(cleaned, "{") {
		extracted = objectRegex.FindString(cleaned)
	} else {
		extracted = arrayRegex.FindString(cleaned)
	}
	if extracted != "" {
		if err := json.Unmarshal([]byte(trailingCommaRegex.ReplaceAllString(extracted, "$1")), &result); err == nil {
			return result, nil
		}
	}

	preview := text
	if len(preview) > 200 {
		preview = preview[:200] + "..."
	}
	return result, fmt.Errorf("no parseable JSON in response: %s", preview)
}
