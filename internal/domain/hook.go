package domain

import "time"

type HookStatus string

const (
	StatusPending  HookStatus = "pending"
	StatusActive   HookStatus = "active"
	StatusFailed   HookStatus = "failed"
	StatusDetached HookStatus = "detached"
)

// HookDescriptor says what to intercept inside the target and how to read
// what comes out. Values are immutable once built.
type HookDescriptor struct {
	Code string `json:"code"`
	// Encoding is the game's text encoding. Installers that decode inside
	// the target receive it as a code page; ones that deliver raw bytes tag
	// captures with it.
	Encoding string            `json:"encoding,omitempty"`
	Params   map[string]string `json:"params,omitempty"`
}

func (d HookDescriptor) Param(key string) string {
	if d.Params == nil {
		return ""
	}
	return d.Params[key]
}

// CapturedText is one unit of text forwarded by an active hook session.
// Seq strictly increases within a session.
type CapturedText struct {
	Seq      uint64    `json:"seq"`
	Data     []byte    `json:"data"`
	Encoding string    `json:"encoding"`
	Thread   string    `json:"thread,omitempty"`
	At       time.Time `json:"at"`
}
