package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/findyourn/reddit-listener/internal/types"
)

func printInsights(ideas []types.ContentIdea, painPoints []types.PainPoint, questions, keywords []string) {
	bold := color.New(color.Bold).SprintFunc()

	fmt.Printf("\n%s\n", bold("Content ideas"))
	for i, idea := range ideas {
		fmt.Printf("  %d. %s\n", i+1, color.GreenString(idea.Title))
		if idea.Description != "" {
			fmt.Printf("     %s\n", idea.Description)
		}
		if idea.Rationale != "" {
			fmt.Printf("     %s %s\n", bold("Why:"), idea.Rationale)
		}
	}

	fmt.Printf("\n%s\n", bold("Pain points"))
	for _, p := range painPoints {
		fmt.Printf("  - %s (^%d)\n", p.Description, p.Upvotes)
		if p.SolutionSummary != "" {
			fmt.Printf("    %s\n", p.SolutionSummary)
		}
	}

	fmt.Printf("\n%s\n", bold("Questions people ask"))
	for _, q := range questions {
		fmt.Printf("  - %s\n", q)
	}

	fmt.Printf("\n%s %s\n", bold("Keywords:"), strings.Join(keywords, ", "))
}

func printDetailedContext(detail *types.DetailedContext) {
	bold := color.New(color.Bold).SprintFunc()

	fmt.Printf("\n%s\n\n", color.GreenString(detail.IdeaTitle))
	fmt.Println(detail.FullPostAndCommentAnalysis)
	fmt.Println()

	if detail.EmotionalAspect != "" {
		fmt.Printf("%s %s\n", bold("Emotional aspect:"), detail.EmotionalAspect)
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
	fmt.Printf("%s %s\n", bold("Knowledge depth:"), detail.KnowledgeDepth)
}
