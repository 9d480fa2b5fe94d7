package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ideavault/ideavault-backend/internal/domain"
)

var errNoJSON = errors.New("no JSON payload found")

var fenceRe = regexp.MustCompile("(?s)```(?:json|JSON)?\\s*(.*?)```")

// extractJSON returns the outermost JSON value of the wanted kind ('[' or
// '{') found in text, ignoring markdown fences and surrounding prose.
func extractJSON(text string, open byte) (string, error) {
	if m := fenceRe.FindStringSubmatch(text); len(m) == 2 {
		text = m[1]
	}
	closeCh := byte('}')
	if open == '[' {
		closeCh = ']'
	}
	start := strings.IndexByte(text, open)
	end := strings.LastIndexByte(text, closeCh)
	if start < 0 || end <= start {
		return "", errNoJSON
	}
	return text[start : end+1], nil
}

// parseIdeasJSON accepts either a JSON array of ideas or an object holding
// one under "ideas".
func parseIdeasJSON(text string) ([]domain.Idea, error) {
	var rows []map[string]any
	if raw, err := extractJSON(text, '['); err == nil {
		if jerr := json.Unmarshal([]byte(raw), &rows); jerr != nil {
			rows = nil
		}
	}
	if rows == nil {
		raw, err := extractJSON(text, '{')
		if err != nil {
			return nil, err
		}
		var wrapper struct {
			Ideas []map[string]any `json:"ideas"`
		}
		if err := json.Unmarshal([]byte(raw), &wrapper); err != nil {
			return nil, fmt.Errorf("decode ideas: %w", err)
		}
		rows = wrapper.Ideas
	}

	out := make([]domain.Idea, 0, len(rows))
	for _, row := range rows {
		idea := domain.Idea{
			Title:          pickString(row, "title", "name"),
			Description:    pickString(row, "description", "summary"),
			Category:       pickString(row, "category"),
			Difficulty:     domain.ParseDifficulty(pickString(row, "difficulty")),
			TargetAudience: pickString(row, "target_audience", "targetAudience", "audience"),
			Tags:           pickStrings(row, "tags", "keywords"),
		}
		if strings.TrimSpace(idea.Title) == "" {
			continue
		}
		out = append(out, idea)
	}
	if len(out) == 0 {
		return nil, errors.New("no ideas in payload")
	}
	return out, nil
}

var (
	listPrefixRe = regexp.MustCompile(`^\s*(?:[-*•]+|\d+[.)]|#+)\s*`)
	ideaHeadRe   = regexp.MustCompile(`(?i)^idea\s*\d*\s*[:.-]\s*`)
)

// parseIdeasLines reads "Key: value" blocks. A new title starts a new idea.
func parseIdeasLines(text string) []domain.Idea {
	var out []domain.Idea
	var cur *domain.Idea

	flush := func() {
		if cur != nil && strings.TrimSpace(cur.Title) != "" {
			if cur.Difficulty == "" {
				cur.Difficulty = domain.DifficultyMedium
			}
			out = append(out, *cur)
		}
		cur = nil
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.ReplaceAll(line, "**", "")
		line = listPrefixRe.ReplaceAllString(line, "")
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if ideaHeadRe.MatchString(line) {
			rest := strings.TrimSpace(ideaHeadRe.ReplaceAllString(line, ""))
			flush()
			cur = &domain.Idea{}
			if rest != "" && !strings.Contains(rest, ":") {
				cur.Title = rest
			}
			if !strings.Contains(rest, ":") {
				continue
			}
			line = rest
		}
		key, val, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		val = strings.TrimSpace(val)
		switch key {
		case "title", "name", "idea":
			if cur != nil && cur.Title != "" {
				flush()
			}
			if cur == nil {
				cur = &domain.Idea{}
			}
			cur.Title = val
		case "description", "summary":
			if cur != nil {
				cur.Description = val
			}
		case "category":
			if cur != nil {
				cur.Category = val
			}
		case "difficulty":
			if cur != nil {
				cur.Difficulty = domain.ParseDifficulty(val)
			}
		case "target audience", "target_audience", "audience":
			if cur != nil {
				cur.TargetAudience = val
			}
		case "tags", "keywords":
			if cur != nil {
				cur.Tags = splitList(val)
			}
		}
	}
	flush()
	return out
}

func splitList(s string) []string {
	s = strings.Trim(strings.TrimSpace(s), "[]")
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ';' })
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.Trim(strings.TrimSpace(p), `"'#`)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func pickString(row map[string]any, keys ...string) string {
	for _, k := range keys {
		v, ok := row[k]
		if !ok || v == nil {
			continue
		}
		switch t := v.(type) {
		case string:
			if s := strings.TrimSpace(t); s != "" {
				return s
			}
		case float64:
			return strconv.FormatFloat(t, 'f', -1, 64)
		case []any:
			parts := make([]string, 0, len(t))
			for _, it := range t {
				if s, ok := it.(string); ok && strings.TrimSpace(s) != "" {
					parts = append(parts, strings.TrimSpace(s))
				}
			}
			if len(parts) > 0 {
				return strings.Join(parts, "; ")
			}
		}
	}
	return ""
}

func pickStrings(row map[string]any, keys ...string) []string {
	for _, k := range keys {
		switch t := row[k].(type) {
		case []any:
			out := make([]string, 0, len(t))
			for _, it := range t {
				if s, ok := it.(string); ok && strings.TrimSpace(s) != "" {
					out = append(out, strings.TrimSpace(s))
				}
			}
			if len(out) > 0 {
				return out
			}
		case string:
			if out := splitList(t); len(out) > 0 {
				return out
			}
		}
	}
	return []string{}
}

func parseCompetitors(text string) ([]domain.Competitor, error) {
	raw, err := extractJSON(text, '[')
	var rows []map[string]any
	if err == nil {
		err = json.Unmarshal([]byte(raw), &rows)
	}
	if err != nil {
		obj, oerr := extractJSON(text, '{')
		if oerr != nil {
			return nil, err
		}
		var wrapper struct {
			Competitors []map[string]any `json:"competitors"`
			KeyPlayers  []map[string]any `json:"key_players"`
		}
		if jerr := json.Unmarshal([]byte(obj), &wrapper); jerr != nil {
			return nil, jerr
		}
		rows = append(wrapper.Competitors, wrapper.KeyPlayers...)
	}
	out := make([]domain.Competitor, 0, len(rows))
	for _, row := range rows {
		c := domain.Competitor{
			Name:        pickString(row, "name", "company"),
			Description: pickString(row, "description", "summary"),
			Strengths:   pickString(row, "strengths", "strength"),
			Weaknesses:  pickString(row, "weaknesses", "weakness"),
		}
		if c.Name != "" {
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		return nil, errors.New("no competitors in payload")
	}
	return out, nil
}

func parseReport(text string) (*domain.Report, error) {
	raw, err := extractJSON(text, '{')
	if err != nil {
		return nil, err
	}
	var r domain.Report
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}
	return &r, nil
}
