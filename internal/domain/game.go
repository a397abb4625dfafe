package domain

import "time"

// Game is a library entry persisted under the "games" config document.
type Game struct {
	Name     string   `json:"name"`
	Path     string   `json:"path"`
	Args     []string `json:"args,omitempty"`
	HookCode string   `json:"code,omitempty"`     // applied once the process is ready
	Encoding string   `json:"encoding,omitempty"` // decoding hint for captured bytes
	Wrapper  string   `json:"wrapper,omitempty"`  // e.g. a locale emulator executable
}

// LaunchSpec is what the OS process layer needs to spawn a game.
type LaunchSpec struct {
	Path        string
	Args        []string
	Wrapper     string
	WrapperArgs []string
}

func (g Game) LaunchSpec() LaunchSpec {
	spec := LaunchSpec{Path: g.Path, Args: g.Args, Wrapper: g.Wrapper}
	if g.Wrapper != "" {
		spec.WrapperArgs = []string{"-run"}
	}
	return spec
}

type GameState string

const (
	GameIdle      GameState = "idle"
	GameLaunching GameState = "launching"
	GameRunning   GameState = "running"
	GameExited    GameState = "exited"
)

type HookState string

const (
	HookNone   HookState = "no_hook"
	HookActive HookState = "hook_active"
	HookFailed HookState = "hook_failed"
)

// GameInfo is the snapshot sent to the overlay when it asks for the "game" config.
type GameInfo struct {
	SessionID string    `json:"session_id"`
	Game      Game      `json:"game"`
	PID       int       `json:"pid"`
	State     GameState `json:"state"`
	Hook      HookState `json:"hook"`
	StartedAt time.Time `json:"started_at"`
}
