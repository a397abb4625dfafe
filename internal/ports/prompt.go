package ports

import "context"

type PromptData struct {
	SrcLang string
	TgtLang string
	Text    string
	Game    string
}

type PromptRenderer interface {
	Render(ctx context.Context, typ, role string, data PromptData) (string, error)
}
