package domain

type TranslationRequest struct {
	Text       string   `json:"text"`
	TargetLang string   `json:"target_lang"`
	Backends   []string `json:"backends,omitempty"` // consulted, in priority order
}

// TranslationResult is the terminal outcome of a TranslationRequest.
type TranslationResult struct {
	Request   TranslationRequest `json:"request"`
	Text      string             `json:"text,omitempty"`
	Backend   string             `json:"backend,omitempty"`
	OK        bool               `json:"ok"`
	FromCache bool               `json:"from_cache"`
	Error     string             `json:"error,omitempty"`
	Err       error              `json:"-"`
}

func Failed(req TranslationRequest, err error) TranslationResult {
	return TranslationResult{Request: req, Err: err, Error: err.Error()}
}
