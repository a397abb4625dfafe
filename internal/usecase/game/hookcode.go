package game

import (
	"fmt"
	"regexp"
	"strings"

	"yagt/internal/domain"
)

// Hook codes follow the extractor convention, H for hooks and R for
// memory reads: H<type>[offsets]@<hex address>[:module[:function]].
// Per-game parameters may follow as ";key=value" pairs.
var hookCodeRE = regexp.MustCompile(`(?i)^[HR][^@\s]*@[0-9a-f]+(:[^\s:]+){0,2}$`)

// ParseHookCode validates code and builds a descriptor. An "encoding"
// parameter overrides defaultEncoding.
func ParseHookCode(code, defaultEncoding string) (domain.HookDescriptor, error) {
	parts := strings.Split(strings.TrimSpace(code), ";")
	c := strings.TrimPrefix(strings.TrimSpace(parts[0]), "/")
	if !hookCodeRE.MatchString(c) {
		return domain.HookDescriptor{}, fmt.Errorf("%w: malformed hook code %q", domain.ErrUnsupportedTarget, code)
	}
	d := domain.HookDescriptor{Code: c, Encoding: defaultEncoding}
	for _, p := range parts[1:] {
		k, v, ok := strings.Cut(strings.TrimSpace(p), "=")
		if !ok || k == "" {
			return domain.HookDescriptor{}, fmt.Errorf("%w: malformed hook parameter %q", domain.ErrUnsupportedTarget, p)
		}
		k = strings.ToLower(strings.TrimSpace(k))
		v = strings.TrimSpace(v)
		if k == "encoding" {
			d.Encoding = v
			continue
		}
		if d.Params == nil {
			d.Params = map[string]string{}
		}
		d.Params[k] = v
	}
	return d, nil
}
