package domain

// BackendConfig describes one configured translation backend. The order of a
// []BackendConfig is its priority order.
type BackendConfig struct {
	Name       string            `json:"name"`
	Type       string            `json:"type"` // local, google, openrouter, ollama
	Enabled    bool              `json:"enabled"`
	BaseURL    string            `json:"base_url,omitempty"`
	APIKey     string            `json:"api_key,omitempty"`
	Model      string            `json:"model,omitempty"`
	SourceLang string            `json:"source_lang,omitempty"`
	RateLimit  float64           `json:"rate_limit,omitempty"` // requests per second, 0 = unlimited
	Dictionary map[string]string `json:"dictionary,omitempty"`
	Rules      []Rule            `json:"rules,omitempty"`
	Options    map[string]string `json:"options,omitempty"`
}

// Rule is a regexp rewrite applied by the local engine before lookup.
type Rule struct {
	Pattern string `json:"pattern"`
	Replace string `json:"replace"`
}

// DefaultConfig is the "default" config document.
type DefaultConfig struct {
	TargetLanguage string          `json:"target_language"`
	OnlineAPIs     []BackendConfig `json:"onlineApis"`
}

// DictionaryEntry is a persisted term for the local engine.
type DictionaryEntry struct {
	ID          int64  `json:"id"`
	SourceText  string `json:"source_text"`
	TgtLang     string `json:"tgt_lang"`
	Translation string `json:"translation"`
}
