package llm

import (
	"reflect"
	"strings"

	"github.com/ideavault/ideavault-backend/internal/domain"
)

// placeholderTokens never survive into a report. A value that is only a
// token matches in any case; inside text the token must match exactly and
// stand alone, so "Kotlin/Android" is not "n/a".
var placeholderTokens = []string{"undefined", "N/A", "TBD"}

const lastResortText = "Further research recommended"

func isPlaceholder(s string) bool {
	trimmed := strings.TrimSpace(s)
	for _, tok := range placeholderTokens {
		if strings.EqualFold(trimmed, tok) || containsToken(trimmed, tok) {
			return true
		}
	}
	return false
}

func containsToken(s, tok string) bool {
	for from := 0; from < len(s); {
		i := strings.Index(s[from:], tok)
		if i < 0 {
			return false
		}
		start := from + i
		end := start + len(tok)
		if (start == 0 || !tokenRune(s[start-1])) && (end == len(s) || !tokenRune(s[end])) {
			return true
		}
		from = start + 1
	}
	return false
}

// tokenRune reports whether b continues a word. Non-ASCII bytes count as
// word characters.
func tokenRune(b byte) bool {
	return b == '/' || b == '_' || b == '-' || b >= 0x80 ||
		('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z') || ('0' <= b && b <= '9')
}

func badLeaf(s string) bool {
	return strings.TrimSpace(s) == "" || isPlaceholder(s)
}

// SanitizeReport replaces every empty or placeholder leaf string in r with
// the value at the same path in ref. Empty lists are copied from ref and
// list entries that are placeholders are dropped. Scores are clamped to
// [0, 10].
func SanitizeReport(r, ref *domain.Report) {
	if r == nil {
		return
	}
	var refVal reflect.Value
	if ref != nil {
		refVal = reflect.ValueOf(ref).Elem()
	}
	sanitizeValue(reflect.ValueOf(r).Elem(), refVal)
	clampScores(&r.Evaluation)
}

func sanitizeValue(dst, ref reflect.Value) {
	switch dst.Kind() {
	case reflect.String:
		if !badLeaf(dst.String()) {
			return
		}
		if ref.IsValid() && ref.Kind() == reflect.String && !badLeaf(ref.String()) {
			dst.SetString(ref.String())
			return
		}
		dst.SetString(lastResortText)

	case reflect.Struct:
		for i := 0; i < dst.NumField(); i++ {
			if !dst.Type().Field(i).IsExported() {
				continue
			}
			var refField reflect.Value
			if ref.IsValid() && ref.Kind() == reflect.Struct {
				refField = ref.Field(i)
			}
			sanitizeValue(dst.Field(i), refField)
		}

	case reflect.Slice:
		sanitizeSlice(dst, ref)
	}
}

func sanitizeSlice(dst, ref reflect.Value) {
	elemKind := dst.Type().Elem().Kind()

	if elemKind == reflect.String && dst.Len() > 0 {
		kept := reflect.MakeSlice(dst.Type(), 0, dst.Len())
		for i := 0; i < dst.Len(); i++ {
			if s := dst.Index(i).String(); !badLeaf(s) {
				kept = reflect.Append(kept, reflect.ValueOf(strings.TrimSpace(s)).Convert(dst.Type().Elem()))
			}
		}
		dst.Set(kept)
	}

	if dst.Len() == 0 {
		if ref.IsValid() && ref.Kind() == reflect.Slice && ref.Len() > 0 {
			cp := reflect.MakeSlice(dst.Type(), ref.Len(), ref.Len())
			reflect.Copy(cp, ref)
			dst.Set(cp)
		} else if elemKind == reflect.String {
			dst.Set(reflect.Append(reflect.MakeSlice(dst.Type(), 0, 1), reflect.ValueOf(lastResortText)))
		}
		return
	}

	if elemKind == reflect.Struct {
		for i := 0; i < dst.Len(); i++ {
			var refElem reflect.Value
			if ref.IsValid() && ref.Kind() == reflect.Slice && ref.Len() > 0 {
				j := i
				if j >= ref.Len() {
					j = ref.Len() - 1
				}
				refElem = ref.Index(j)
			}
			sanitizeValue(dst.Index(i), refElem)
		}
	}
}

func clampScores(e *domain.Evaluation) {
	for _, p := range []*float64{&e.OverallScore, &e.MarketScore, &e.FeasibilityScore, &e.InnovationScore} {
		if *p < 0 {
			*p = 0
		}
		if *p > 10 {
			*p = 10
		}
	}
}

// LeafStrings returns every string leaf of r, including list entries.
func LeafStrings(r *domain.Report) []string {
	var out []string
	var walk func(v reflect.Value)
	walk = func(v reflect.Value) {
		switch v.Kind() {
		case reflect.String:
			out = append(out, v.String())
		case reflect.Struct:
			for i := 0; i < v.NumField(); i++ {
				if v.Type().Field(i).IsExported() {
					walk(v.Field(i))
				}
			}
		case reflect.Slice:
			for i := 0; i < v.Len(); i++ {
				walk(v.Index(i))
			}
		}
	}
	walk(reflect.ValueOf(r).Elem())
	return out
}
