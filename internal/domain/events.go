package domain

// Event names emitted to the presentation layer.
const (
	EventGameStarted  = "game.started"
	EventTextCaptured = "game.text"
	EventTranslated   = "translation"
	EventGameExited   = "game.exited"
	EventError        = "game.error"
)

type StartedEvent struct {
	SessionID string `json:"session_id"`
	Game      string `json:"game"`
	PID       int    `json:"pid"`
}

type TextEvent struct {
	SessionID string `json:"session_id"`
	Seq       uint64 `json:"seq"`
	Thread    string `json:"thread,omitempty"`
	Text      string `json:"text"`
}

type TranslatedEvent struct {
	SessionID string            `json:"session_id"`
	Result    TranslationResult `json:"result"`
}

type ExitedEvent struct {
	SessionID string `json:"session_id"`
	Game      string `json:"game"`
	Reason    string `json:"reason"`
}

type ErrorEvent struct {
	SessionID string `json:"session_id,omitempty"`
	Kind      string `json:"kind"`
	Message   string `json:"message"`
}
