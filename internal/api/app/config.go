package app

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"yagt/internal/domain"
	"yagt/internal/usecase/library"
)

// SectionGame is a read-only section holding the running game, or null.
const SectionGame = "game"

// CurrentGame reports the game the supervisor is running, nil when idle.
type CurrentGame interface {
	Current() *domain.GameInfo
}

type ConfigAPI struct {
	lib  *library.Service
	sink library.BackendSink
	game CurrentGame
	log  *zap.SugaredLogger
}

func NewConfigAPI(lib *library.Service, sink library.BackendSink, game CurrentGame, log *zap.SugaredLogger) *ConfigAPI {
	return &ConfigAPI{lib: lib, sink: sink, game: game, log: log}
}

// Get returns a config section as JSON. API keys are masked.
func (a *ConfigAPI) Get(section string) (string, error) {
	if section == SectionGame {
		return a.currentGame()
	}
	ctx := context.Background()
	raw, err := a.lib.Get(ctx, section)
	if err != nil {
		return "", err
	}
	return maskSection(section, raw)
}

func (a *ConfigAPI) currentGame() (string, error) {
	var info *domain.GameInfo
	if a.game != nil {
		info = a.game.Current()
	}
	raw, err := json.Marshal(info)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// Save stores a section and returns it as stored, keys masked. Masked or
// empty keys keep the stored value. Backend sections are applied at once.
func (a *ConfigAPI) Save(section, value string) (string, error) {
	ctx := context.Background()
	merged, err := a.restoreKeys(ctx, section, json.RawMessage(value))
	if err != nil {
		return "", err
	}
	stored, err := a.lib.Save(ctx, section, merged)
	if err != nil {
		return "", err
	}
	if section == library.SectionDefault || section == library.SectionTranslators {
		if err := a.lib.Apply(ctx, a.sink); err != nil {
			a.log.Warnw("applying saved backend config", "section", section, "err", err)
		}
	}
	return maskSection(section, stored)
}

func backendList(section string, raw json.RawMessage) ([]domain.BackendConfig, *domain.DefaultConfig, error) {
	switch section {
	case library.SectionDefault:
		var d domain.DefaultConfig
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, nil, &domain.ConfigError{Section: section, Err: err}
		}
		return d.OnlineAPIs, &d, nil
	case library.SectionTranslators:
		var l []domain.BackendConfig
		if err := json.Unmarshal(raw, &l); err != nil {
			return nil, nil, &domain.ConfigError{Section: section, Err: err}
		}
		return l, nil, nil
	}
	return nil, nil, nil
}

func encodeBackends(list []domain.BackendConfig, def *domain.DefaultConfig) (json.RawMessage, error) {
	if def != nil {
		def.OnlineAPIs = list
		return json.Marshal(def)
	}
	return json.Marshal(list)
}

func maskSection(section string, raw json.RawMessage) (string, error) {
	list, def, err := backendList(section, raw)
	if err != nil || list == nil {
		return string(raw), err
	}
	for i := range list {
		list[i].APIKey = mask(list[i].APIKey)
	}
	out, err := encodeBackends(list, def)
	return string(out), err
}

func (a *ConfigAPI) restoreKeys(ctx context.Context, section string, value json.RawMessage) (json.RawMessage, error) {
	list, def, err := backendList(section, value)
	if err != nil || list == nil {
		return value, err
	}
	current, err := a.lib.Get(ctx, section)
	if err != nil {
		return nil, err
	}
	existing, _, _ := backendList(section, current)
	keys := make(map[string]string, len(existing))
	for _, b := range existing {
		keys[b.Name] = b.APIKey
	}
	for i := range list {
		if list[i].APIKey == "" || strings.HasPrefix(list[i].APIKey, "****") {
			list[i].APIKey = keys[list[i].Name]
		}
	}
	return encodeBackends(list, def)
}
