package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

const googleBaseURL = "https://translate.googleapis.com"

// translateGoogle calls the public gtx endpoint. The response is a nested
// array whose first element lists [translated, source, ...] segments.
func (b *Backend) translateGoogle(ctx context.Context, st *clientState, text, targetLang string) (string, error) {
	base := st.cfg.BaseURL
	if base == "" {
		base = googleBaseURL
	}
	src := st.cfg.SourceLang
	if src == "" {
		src = "auto"
	}
	r, err := st.http.R().SetContext(ctx).
		SetQueryParams(map[string]string{"client": "gtx", "sl": src, "tl": targetLang, "dt": "t", "q": text}).
		Get(strings.TrimRight(base, "/") + "/translate_a/single")
	if err := b.classify(r, err); err != nil {
		return "", err
	}

	var raw []any
	if err := json.Unmarshal(r.Body(), &raw); err != nil {
		return "", b.fail(r.StatusCode(), fmt.Errorf("decode response: %w", err))
	}
	if len(raw) == 0 {
		return "", b.fail(r.StatusCode(), fmt.Errorf("empty response"))
	}
	segs, _ := raw[0].([]any)
	var sb strings.Builder
	for _, s := range segs {
		parts, ok := s.([]any)
		if !ok || len(parts) == 0 {
			continue
		}
		if t, ok := parts[0].(string); ok {
			sb.WriteString(t)
		}
	}
	if sb.Len() == 0 {
		return "", b.fail(r.StatusCode(), fmt.Errorf("no translated segments in response"))
	}
	return sb.String(), nil
}
