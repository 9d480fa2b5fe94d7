package services

import (
	"fmt"
	"strings"
	"unicode"

	types "github.com/ideavault/ideavault-backend/internal/domain"
)

type ideaTemplate struct {
	title       string
	description string
	tags        []string
}

// structuredTemplates are cycled by index when search and synthesis come up
// short. {category} and {audience} are title-cased.
var structuredTemplates = []ideaTemplate{
	{
		title:       "{category} Platform for {audience}",
		description: "An all-in-one {category} platform built around the daily workflow of {audience}, combining the essential tools in one simple subscription.",
		tags:        []string{"platform", "saas"},
	},
	{
		title:       "Smart {category} Assistant for {audience}",
		description: "An AI assistant that automates repetitive {category} tasks for {audience} and surfaces personalized recommendations.",
		tags:        []string{"ai", "automation"},
	},
	{
		title:       "{category} Marketplace for {audience}",
		description: "A curated marketplace connecting {audience} with vetted {category} providers, with reviews, bookings and payments built in.",
		tags:        []string{"marketplace", "community"},
	},
	{
		title:       "{category} Insights Dashboard for {audience}",
		description: "A dashboard that turns scattered {category} data into clear, actionable insights for {audience}.",
		tags:        []string{"analytics", "dashboard"},
	},
}

// freeformTemplates are interpolated with prompt keywords.
var freeformTemplates = []ideaTemplate{
	{
		title:       "{keyword} Companion App",
		description: "A mobile companion that helps people with {keyword} through guided routines, reminders and progress tracking.",
		tags:        []string{"mobile", "consumer"},
	},
	{
		title:       "{keyword} Community Hub",
		description: "An online community where people interested in {keyword} share advice, find peers and join small group challenges.",
		tags:        []string{"community"},
	},
	{
		title:       "{keyword} Expert Marketplace",
		description: "A marketplace that matches people with vetted {keyword} experts for short paid sessions.",
		tags:        []string{"marketplace"},
	},
	{
		title:       "AI {keyword} Coach",
		description: "An AI coach that gives personalized {keyword} plans and adapts them from user feedback.",
		tags:        []string{"ai", "coaching"},
	},
}

// fallbackIdeas builds n template ideas whose normalized titles do not
// collide with existing ones. Templates repeat with a numeric suffix once
// they are exhausted.
func fallbackIdeas(plan *generationPlan, existing []types.Idea, n int) []types.Idea {
	if n <= 0 {
		return nil
	}
	seen := make(map[string]bool, len(existing)+n)
	for _, idea := range existing {
		seen[types.NormalizeTitle(idea.Title)] = true
	}

	out := make([]types.Idea, 0, n)
	for i := 0; len(out) < n && i < n+len(existing)+len(structuredTemplates)*4; i++ {
		idea := fallbackIdea(plan, i)
		key := types.NormalizeTitle(idea.Title)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, idea)
	}
	return out
}

func fallbackIdea(plan *generationPlan, i int) types.Idea {
	var (
		tpl  ideaTemplate
		repl *strings.Replacer
		idea types.Idea
	)
	if plan.mode == GenerationStructured {
		tpl = structuredTemplates[i%len(structuredTemplates)]
		repl = strings.NewReplacer(
			"{category}", titleCase(plan.input.Category),
			"{audience}", titleCase(plan.input.TargetAudience),
		)
		idea = types.Idea{
			Category:       plan.input.Category,
			Difficulty:     types.ParseDifficulty(plan.input.Difficulty),
			TargetAudience: plan.input.TargetAudience,
		}
	} else {
		tpl = freeformTemplates[i%len(freeformTemplates)]
		keyword := "Everyday"
		if kws := distinctKeywords(plan.keywords); len(kws) > 0 {
			keyword = kws[i%len(kws)]
		}
		repl = strings.NewReplacer("{keyword}", titleCase(keyword))
		idea = types.Idea{
			Category:       "General",
			Difficulty:     types.DifficultyMedium,
			TargetAudience: "General consumers",
		}
	}

	idea.Title = repl.Replace(tpl.title)
	if round := i / len(structuredTemplates); round > 0 {
		idea.Title = fmt.Sprintf("%s %d", idea.Title, round+1)
	}
	idea.Description = repl.Replace(tpl.description)
	if plan.mode == GenerationFreeform {
		idea.Description += fmt.Sprintf(" Inspired by: %q.", plan.prompt)
	}
	idea.Tags = append([]string(nil), tpl.tags...)
	idea.Source = types.SourceFallback
	return idea
}

func distinctKeywords(keywords []string) []string {
	seen := make(map[string]bool, len(keywords))
	out := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	return out
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
