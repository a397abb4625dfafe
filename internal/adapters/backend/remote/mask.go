package remote

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Game scripts carry {placeholders} and <markup> that an LLM must echo back
// untouched. They are swapped for opaque tokens around the model call.
var (
	placeholderRE = regexp.MustCompile(`\{[^}]+\}`)
	markupRE      = regexp.MustCompile(`<[^>]+>`)
)

func uniqueMatches(re *regexp.Regexp, s string) []string {
	m := re.FindAllString(s, -1)
	if len(m) == 0 {
		return nil
	}
	uniq := make(map[string]struct{}, len(m))
	for _, v := range m {
		uniq[v] = struct{}{}
	}
	out := make([]string, 0, len(uniq))
	for v := range uniq {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

type masker struct {
	tokens []struct{ token, orig string }
}

func maskTokens(s string) (string, *masker) {
	m := &masker{}
	masked := s
	for i, ph := range uniqueMatches(placeholderRE, s) {
		token := fmt.Sprintf("__PH_%d__", i)
		masked = strings.ReplaceAll(masked, ph, token)
		m.tokens = append(m.tokens, struct{ token, orig string }{token, ph})
	}
	for i, tg := range uniqueMatches(markupRE, s) {
		token := fmt.Sprintf("__TAG_%d__", i)
		masked = strings.ReplaceAll(masked, tg, token)
		m.tokens = append(m.tokens, struct{ token, orig string }{token, tg})
	}
	return masked, m
}

// unmask restores the originals and fails if the model dropped any.
func (m *masker) unmask(s string) (string, error) {
	out := s
	for i := len(m.tokens) - 1; i >= 0; i-- {
		t := m.tokens[i]
		if !strings.Contains(out, t.token) {
			return "", fmt.Errorf("token missing in translation: %s", t.orig)
		}
		out = strings.ReplaceAll(out, t.token, t.orig)
	}
	return out, nil
}
