package research

import (
	"fmt"
	"strings"
	"time"
)

// CacheMissError is returned by GetIdeaContext when no discovery has been
// run for the query. The caller should run DiscoverIdeas first.
type CacheMissError struct {
	Query string
}

func (e *CacheMissError) Error() string {
	return fmt.Sprintf("no cached discovery for %q: run discover first", e.Query)
}

// CacheExpiredError is returned when the cached discovery for a query has
// outlived its TTL. The entry is evicted; the caller should rerun discover.
type CacheExpiredError struct {
	Query string
	Age   time.Duration
}

func (e *CacheExpiredError) Error() string {
	return fmt.Sprintf("cached discovery for %q expired (age %v): run discover again", e.Query, e.Age.Round(time.Second))
}

// IdeaNotFoundError is returned when an idea title cannot be resolved in
// the cached discovery, even by fuzzy match. It carries the valid titles
// so the caller can display them.
type IdeaNotFoundError struct {
	Title     string
	Available []string
}

func (e *IdeaNotFoundError) Error() string {
	if len(e.Available) == 0 {
		return fmt.Sprintf("idea %q not found: the discovery produced no content ideas", e.Title)
	}
	return fmt.Sprintf("idea %q not found; available ideas: %s", e.Title, strings.Join(e.Available, "; "))
}
