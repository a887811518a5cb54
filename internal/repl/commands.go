package repl

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/findyourn/reddit-listener/internal/types"
)

// cmdDiscover runs phase-1 discovery for the query in args.
func (r *REPL) cmdDiscover(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: discover <query>")
	}
	query := strings.Join(args, " ")

	result, err := r.service.DiscoverIdeas(r.ctx, query, r.opts)
	if err != nil {
		return err
	}

	r.lastQuery = query
	r.lastIdeas = r.lastIdeas[:0]
	for _, idea := range result.ContentIdeas {
		r.lastIdeas = append(r.lastIdeas, idea.Title)
	}

	printDiscovery(result)
	fmt.Println("Use 'context <idea title>' to expand an idea.")
	fmt.Println()
	return nil
}

// cmdContext expands one discovered idea using the cached discovery.
func (r *REPL) cmdContext(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: context <idea title>")
	}
	if r.lastQuery == "" {
		return fmt.Errorf("no discovery yet: run 'discover <query>' first")
	}

	detail, err := r.service.GetIdeaContext(r.ctx, r.lastQuery, strings.Join(args, " "))
	if err != nil {
		return err
	}

	printDetailedContext(detail)
	return nil
}

// cmdResearch runs the one-shot research flow.
func (r *REPL) cmdResearch(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: research <query>")
	}

	result, err := r.service.Research(r.ctx, strings.Join(args, " "), r.opts)
	if err != nil {
		return err
	}

	printResearch(result)
	return nil
}

// cmdIdeas lists the idea titles from the most recent discovery.
func (r *REPL) cmdIdeas(args []string) error {
	if r.lastQuery == "" {
		return fmt.Errorf("no discovery yet: run 'discover <query>' first")
	}

	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	fmt.Printf("\n%s (query: %s)\n", cyan("Content ideas"), r.lastQuery)
	for i, title := range r.lastIdeas {
		fmt.Printf("  %d. %s\n", i+1, title)
	}
	fmt.Println()
	return nil
}

func (r *REPL) cmdHelp(args []string) error {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()
	fmt.Printf("\n%s\n\n", cyan("Available Commands:"))

	commands := []struct {
		name string
		desc string
	}{
		{"discover <query>", "Find content ideas from Reddit discussions"},
		{"context <idea>", "Expand a discovered idea into detailed context"},
		{"research <query>", "One-shot research: questions, keywords, pain points, ideas"},
		{"ideas", "List idea titles from the last discovery"},
		{"help, ?", "Show this help message"},
		{"exit, quit", "Exit the shell"},
	}
	for _, cmd := range commands {
		fmt.Printf("  %-20s %s\n", green(cmd.name), cmd.desc)
	}

	fmt.Println()
	fmt.Println("Bare input is treated as a discovery query:")
	fmt.Println("  reddit> electric cars")
	fmt.Println()
	return nil
}

func (r *REPL) cmdExit(args []string) error {
	green := color.New(color.FgGreen).SprintFunc()
	fmt.Printf("\n%s Goodbye!\n", green("✓"))
	r.rl.Close()
	return io.EOF
}

func printDiscovery(result *types.DiscoveryResult) {
	bold := color.New(color.Bold).SprintFunc()

	fmt.Printf("\n%s\n", bold("Content ideas"))
	for i, idea := range result.ContentIdeas {
		fmt.Printf("  %d. %s\n", i+1, color.GreenString(idea.Title))
		if idea.Description != "" {
			fmt.Printf("     %s\n", idea.Description)
		}
	}

	fmt.Printf("\n%s\n", bold("Pain points"))
	for _, p := range result.PainPoints {
		fmt.Printf("  - %s (^%d)\n", p.Description, p.Upvotes)
	}

	fmt.Printf("\n%s\n", bold("Questions people ask"))
	for _, q := range result.Questions {
		fmt.Printf("  - %s\n", q)
	}

	fmt.Printf("\n%s %s\n\n", bold("Keywords:"), strings.Join(result.Keywords, ", "))
}

func printResearch(result *types.ResearchResult) {
	printDiscovery(&types.DiscoveryResult{
		Query:        result.Query,
		ContentIdeas: result.ContentIdeas,
		PainPoints:   result.PainPoints,
		Questions:    result.Questions,
		Keywords:     result.Keywords,
	})
}

func printDetailedContext(detail *types.DetailedContext) {
	bold := color.New(color.Bold).SprintFunc()

	fmt.Printf("\n%s\n\n", color.GreenString(detail.IdeaTitle))
	fmt.Println(detail.FullPostAndCommentAnalysis)

	if detail.EmotionalAspect != "" {
		fmt.Printf("\n%s %s\n", bold("Emotional aspect:"), detail.EmotionalAspect)
	}
	if detail.ControversialAspect.IsControversial {
		fmt.Printf("%s %s\n", bold("Controversy:"), detail.ControversialAspect.ForAgainstSplit)
	}
	if detail.EngagementSignals.Popularity != "" {
		fmt.Printf("%s popularity %s, virality %s\n", bold("Engagement:"),
			detail.EngagementSignals.Popularity, detail.EngagementSignals.ViralityPotential)
	}
	if detail.Category != "" {
		fmt.Printf("%s %s\n", bold("Category:"), detail.Category)
	}
	fmt.Printf("%s %s\n\n", bold("Knowledge depth:"), detail.KnowledgeDepth)
}
