package remote

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"yagt/internal/domain"
	"yagt/internal/ports"
)

const promptType = "translate_line"

type ModelInfo struct {
	Name          string `json:"name"`
	Description   string `json:"description,omitempty"`
	ContextTokens int    `json:"context_tokens,omitempty"`
}

func (b *Backend) prompt(ctx context.Context, st *clientState, text, targetLang string) (string, string, *masker, error) {
	masked, m := maskTokens(text)
	data := ports.PromptData{SrcLang: st.cfg.SourceLang, TgtLang: targetLang, Text: masked, Game: st.cfg.Options["game"]}
	sys, err := b.prompts.Render(ctx, promptType, "system", data)
	if err != nil {
		return "", "", nil, b.fail(0, fmt.Errorf("render system prompt: %w", err))
	}
	user, err := b.prompts.Render(ctx, promptType, "user", data)
	if err != nil {
		return "", "", nil, b.fail(0, fmt.Errorf("render user prompt: %w", err))
	}
	return sys, user, m, nil
}

func (b *Backend) finish(content string, m *masker) (string, error) {
	tr, err := extractTranslation(strings.TrimSpace(content))
	if err != nil {
		return "", b.fail(0, err)
	}
	out, err := m.unmask(strings.TrimSpace(tr))
	if err != nil {
		return "", b.fail(0, err)
	}
	return out, nil
}

func (b *Backend) translateOpenRouter(ctx context.Context, st *clientState, text, targetLang string) (string, error) {
	sys, user, m, err := b.prompt(ctx, st, text, targetLang)
	if err != nil {
		return "", err
	}
	base := st.cfg.BaseURL
	if base == "" {
		base = "https://openrouter.ai"
	}
	url := openRouterURL(base, "/chat/completions")
	// JSON schema first; some models only accept json_object and answer 400.
	schema := map[string]any{
		"type": "json_schema",
		"json_schema": map[string]any{
			"name":   "translation",
			"strict": true,
			"schema": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"translation": map[string]any{"type": "string"},
				},
				"required":             []string{"translation"},
				"additionalProperties": false,
			},
		},
	}
	body := map[string]any{
		"model": st.cfg.Model,
		"messages": []map[string]string{
			{"role": "system", "content": sys},
			{"role": "user", "content": user},
		},
		"temperature":     0.2,
		"response_format": schema,
	}
	var resp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	post := func() error {
		r, err := st.http.R().SetContext(ctx).
			SetHeader("Authorization", "Bearer "+st.cfg.APIKey).
			SetHeader("X-Title", "yagt").
			SetHeader("Content-Type", "application/json").
			SetBody(body).SetResult(&resp).
			Post(url)
		if err == nil && r.StatusCode() == 400 {
			if _, retried := body["response_format"].(map[string]string); !retried {
				body["response_format"] = map[string]string{"type": "json_object"}
				return errRetryJSONObject
			}
		}
		return b.classify(r, err)
	}
	err = post()
	if errors.Is(err, errRetryJSONObject) {
		err = post()
	}
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", b.fail(0, fmt.Errorf("no choices returned"))
	}
	return b.finish(resp.Choices[0].Message.Content, m)
}

func (b *Backend) translateOllama(ctx context.Context, st *clientState, text, targetLang string) (string, error) {
	sys, user, m, err := b.prompt(ctx, st, text, targetLang)
	if err != nil {
		return "", err
	}
	body := map[string]any{
		"model": st.cfg.Model,
		"messages": []map[string]string{
			{"role": "system", "content": sys},
			{"role": "user", "content": user},
		},
		"stream":  false,
		"format":  "json",
		"options": map[string]any{"temperature": 0.2},
	}
	var resp struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	}
	r, err := st.http.R().SetContext(ctx).SetHeader("Content-Type", "application/json").SetBody(body).SetResult(&resp).
		Post(ollamaBase(st) + "/api/chat")
	if err := b.classify(r, err); err != nil {
		return "", err
	}
	return b.finish(resp.Message.Content, m)
}

// ListModels lists the models an LLM backend offers.
func (b *Backend) ListModels(ctx context.Context) ([]ModelInfo, error) {
	st := b.snapshot()
	if st == nil {
		return nil, b.fail(0, fmt.Errorf("list models: %w", domain.ErrNotInitialized))
	}
	switch st.cfg.Type {
	case TypeOllama:
		var resp struct {
			Models []struct {
				Name string `json:"name"`
			} `json:"models"`
		}
		r, err := st.http.R().SetContext(ctx).SetResult(&resp).Get(ollamaBase(st) + "/api/tags")
		if err := b.classify(r, err); err != nil {
			return nil, err
		}
		out := make([]ModelInfo, 0, len(resp.Models))
		for _, m := range resp.Models {
			out = append(out, ModelInfo{Name: m.Name})
		}
		return out, nil
	case TypeOpenRouter:
		base := st.cfg.BaseURL
		if base == "" {
			base = "https://openrouter.ai"
		}
		var resp struct {
			Data []struct {
				ID            string `json:"id"`
				Name          string `json:"name"`
				ContextLength int    `json:"context_length"`
			} `json:"data"`
		}
		r, err := st.http.R().SetContext(ctx).
			SetHeader("Authorization", "Bearer "+st.cfg.APIKey).
			SetResult(&resp).
			Get(openRouterURL(base, "/models"))
		if err := b.classify(r, err); err != nil {
			return nil, err
		}
		out := make([]ModelInfo, 0, len(resp.Data))
		for _, d := range resp.Data {
			label := d.Name
			if label == "" {
				label = d.ID
			}
			out = append(out, ModelInfo{Name: d.ID, Description: label, ContextTokens: d.ContextLength})
		}
		return out, nil
	default:
		return nil, b.fail(0, fmt.Errorf("list models: unsupported for %s", st.cfg.Type))
	}
}

func ollamaBase(st *clientState) string {
	if st.cfg.BaseURL == "" {
		return "http://localhost:11434"
	}
	return strings.TrimRight(st.cfg.BaseURL, "/")
}
