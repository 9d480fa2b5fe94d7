package llm

import (
	"fmt"
	"strings"

	"github.com/ideavault/ideavault-backend/internal/domain"
)

const ideaSystemPrompt = `You are a startup strategist who invents practical, specific business ideas.
Respond with JSON only.`

const reportSystemPrompt = `You are a venture analyst writing concise, concrete business reports.
Never use placeholder text. Respond with a single JSON object only.`

func ideaSynthesisPrompt(req IdeaSynthesisRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate %d new, distinct business ideas.\n", req.Count)
	if req.Prompt != "" {
		fmt.Fprintf(&b, "The user asked for: %q\n", req.Prompt)
	}
	if req.Category != "" {
		fmt.Fprintf(&b, "Category: %s\n", req.Category)
	}
	if req.Difficulty != "" {
		fmt.Fprintf(&b, "Difficulty: %s\n", req.Difficulty)
	}
	if req.TargetAudience != "" {
		fmt.Fprintf(&b, "Target audience: %s\n", req.TargetAudience)
	}
	if len(req.Context) > 0 {
		b.WriteString("\nExisting products for inspiration (do not copy them):\n")
		for i, idea := range req.Context {
			fmt.Fprintf(&b, "%d. %s: %s\n", i+1, idea.Title, truncate(idea.Description, 200))
		}
	}
	b.WriteString(`
Return a JSON array where each element has:
{"title": string, "description": string (2-3 sentences), "category": string,
 "difficulty": "easy"|"medium"|"hard", "target_audience": string, "tags": [string]}`)
	return b.String()
}

func reportPrompt(idea domain.Idea) string {
	return fmt.Sprintf(`Write a business report for this idea.

Title: %s
Description: %s
Category: %s
Difficulty: %s
Target audience: %s

Return a JSON object with exactly these keys:
"business_concept": {"title","summary","problem_statement","solution","value_proposition","unique_advantage"},
"market_intelligence": {"market_size","target_market","growth_rate","trends":[string],
  "key_players":[{"name","description","strengths","weaknesses"}],"competitive_landscape"},
"product_strategy": {"core_features":[string],"mvp_scope","technology_stack":[string],"development_timeline","roadmap":[string]},
"go_to_market": {"launch_strategy","channels":[string],"pricing_model","customer_acquisition","partnerships":[string]},
"financial_foundation": {"startup_costs","revenue_streams":[string],"projected_revenue","break_even_timeline","funding_strategy"},
"evaluation": {"overall_score","market_score","feasibility_score","innovation_score" (numbers 0-10),
  "strengths":[string],"risks":[string],"opportunities":[string],"recommendation","next_steps":[string]},
"visualization": {"type":"3d_scatter","axes":{"x","y","z"},"data_points":[{"label","x","y","z"}]}
All string values must be specific and non-empty.`,
		idea.Title, idea.Description, idea.Category, idea.Difficulty, idea.TargetAudience)
}

func competitorPrompt(idea domain.Idea) string {
	return fmt.Sprintf(`List 3 to 5 real companies or products that compete with this idea.

Title: %s
Description: %s
Category: %s

Return a JSON array: [{"name": string, "description": string, "strengths": string, "weaknesses": string}]`,
		idea.Title, idea.Description, idea.Category)
}

func mvpPrompt(idea domain.Idea) string {
	return fmt.Sprintf(`Write a prompt that an AI coding assistant could follow to build an MVP of this product.

Title: %s
Description: %s
Category: %s
Target audience: %s

The prompt should describe the core workflow, data model, pages and acceptance criteria.
Return only the prompt text.`,
		idea.Title, idea.Description, idea.Category, idea.TargetAudience)
}

func truncate(s string, n int) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n])
}
