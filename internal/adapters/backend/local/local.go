// Package local is the offline translation engine: a configured dictionary,
// the persisted dictionary table, and regexp rewrite rules.
package local

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"yagt/internal/domain"
	"yagt/internal/ports"
)

type rule struct {
	re      *regexp.Regexp
	replace string
}

type Backend struct {
	name string
	dict ports.DictionaryRepository

	mu      sync.RWMutex
	ready   bool
	entries map[string]string
	rules   []rule
}

var _ ports.Backend = (*Backend)(nil)

// New returns an uninitialized engine. dict may be nil.
func New(name string, dict ports.DictionaryRepository) *Backend {
	return &Backend{name: name, dict: dict}
}

func (b *Backend) Name() string { return b.name }

func (b *Backend) Initialize(_ context.Context, cfg domain.BackendConfig) error {
	rules := make([]rule, 0, len(cfg.Rules))
	for i, r := range cfg.Rules {
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			return &domain.ConfigError{Section: "translators." + b.name, Err: fmt.Errorf("rule %d: %w", i, err)}
		}
		rules = append(rules, rule{re: re, replace: r.Replace})
	}
	entries := make(map[string]string, len(cfg.Dictionary))
	for k, v := range cfg.Dictionary {
		entries[strings.TrimSpace(k)] = v
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries = entries
	b.rules = rules
	b.ready = true
	return nil
}

// Translate looks the text up, then applies the rewrite rules and looks the
// result up again. Rewritten text with no dictionary hit is returned as is.
func (b *Backend) Translate(ctx context.Context, text, targetLang string) (string, error) {
	b.mu.RLock()
	ready, entries, rules := b.ready, b.entries, b.rules
	b.mu.RUnlock()
	if !ready {
		return "", b.fail(domain.ErrNotInitialized)
	}

	key := strings.TrimSpace(text)
	if out, ok, err := b.lookup(ctx, entries, key, targetLang); err != nil || ok {
		return out, err
	}

	rewritten := key
	for _, r := range rules {
		rewritten = r.re.ReplaceAllString(rewritten, r.replace)
	}
	if rewritten == key {
		return "", b.fail(domain.ErrNoTranslation)
	}
	if out, ok, err := b.lookup(ctx, entries, rewritten, targetLang); err != nil || ok {
		return out, err
	}
	return rewritten, nil
}

func (b *Backend) lookup(ctx context.Context, entries map[string]string, key, targetLang string) (string, bool, error) {
	if v, ok := entries[key]; ok {
		return v, true, nil
	}
	if b.dict == nil {
		return "", false, nil
	}
	e, err := b.dict.Lookup(ctx, key, targetLang)
	if err != nil {
		return "", false, b.fail(fmt.Errorf("dictionary lookup: %w", err))
	}
	if e == nil {
		return "", false, nil
	}
	return e.Translation, true, nil
}

func (b *Backend) fail(err error) error {
	return &domain.BackendError{Backend: b.name, Err: err}
}
