// Package library is the configuration provider: the game list, the
// default online API settings and the local translator settings, each
// stored as one JSON document in the settings table.
package library

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"yagt/internal/domain"
	"yagt/internal/ports"
)

const (
	SectionGames       = "games"
	SectionDefault     = "default"
	SectionTranslators = "translators"
)

// DefaultSettings is what an empty or malformed "default" document becomes.
func DefaultSettings() domain.DefaultConfig {
	return domain.DefaultConfig{
		TargetLanguage: "en",
		OnlineAPIs:     []domain.BackendConfig{{Name: "google", Type: "google", Enabled: true}},
	}
}

type Service struct {
	settings ports.SettingsRepository
	log      *zap.SugaredLogger

	mu sync.Mutex // serializes read-modify-write of the games document
}

func New(settings ports.SettingsRepository, log *zap.SugaredLogger) *Service {
	return &Service{settings: settings, log: log}
}

// load decodes a section into out. A missing section leaves out untouched;
// a malformed one is reported as a ConfigError and out is left untouched.
func (s *Service) load(ctx context.Context, section string, out any) error {
	raw, err := s.settings.Get(ctx, section)
	if err != nil {
		return fmt.Errorf("read %s: %w", section, err)
	}
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		cerr := &domain.ConfigError{Section: section, Err: err}
		s.log.Warnw("malformed config section, using defaults", "section", section, "err", err)
		return cerr
	}
	return nil
}

func (s *Service) store(ctx context.Context, section string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", section, err)
	}
	return s.settings.Set(ctx, section, string(b))
}

// Games returns the game list. On a malformed document the list is empty
// and the error is a *domain.ConfigError.
func (s *Service) Games(ctx context.Context) ([]domain.Game, error) {
	var games []domain.Game
	if err := s.load(ctx, SectionGames, &games); err != nil {
		return []domain.Game{}, err
	}
	if games == nil {
		games = []domain.Game{}
	}
	return games, nil
}

func (s *Service) Game(ctx context.Context, name string) (domain.Game, error) {
	games, err := s.Games(ctx)
	if err != nil {
		return domain.Game{}, err
	}
	for _, g := range games {
		if g.Name == name {
			return g, nil
		}
	}
	return domain.Game{}, fmt.Errorf("%q: %w", name, domain.ErrGameNotFound)
}

// AddGame appends g, or replaces the entry with the same name.
func (s *Service) AddGame(ctx context.Context, g domain.Game) ([]domain.Game, error) {
	g.Name = strings.TrimSpace(g.Name)
	g.Path = strings.TrimSpace(g.Path)
	if g.Name == "" || g.Path == "" {
		return nil, &domain.ConfigError{Section: SectionGames, Err: errors.New("game name and path are required")}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	games, err := s.Games(ctx)
	if err != nil {
		var ce *domain.ConfigError
		if !errors.As(err, &ce) {
			return nil, err
		}
	}
	replaced := false
	for i := range games {
		if games[i].Name == g.Name {
			games[i] = g
			replaced = true
		}
	}
	if !replaced {
		games = append(games, g)
	}
	if err := s.store(ctx, SectionGames, games); err != nil {
		return nil, err
	}
	s.log.Infow("game saved", "name", g.Name, "replaced", replaced)
	return games, nil
}

// RemoveGame drops every entry named name. Removing an unknown name is not
// an error.
func (s *Service) RemoveGame(ctx context.Context, name string) ([]domain.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	games, err := s.Games(ctx)
	if err != nil {
		return nil, err
	}
	kept := games[:0]
	for _, g := range games {
		if g.Name != name {
			kept = append(kept, g)
		}
	}
	if err := s.store(ctx, SectionGames, kept); err != nil {
		return nil, err
	}
	return kept, nil
}

func (s *Service) Defaults(ctx context.Context) (domain.DefaultConfig, error) {
	cfg := DefaultSettings()
	if err := s.load(ctx, SectionDefault, &cfg); err != nil {
		return DefaultSettings(), err
	}
	if cfg.TargetLanguage == "" {
		cfg.TargetLanguage = DefaultSettings().TargetLanguage
	}
	return cfg, nil
}

func (s *Service) Translators(ctx context.Context) ([]domain.BackendConfig, error) {
	var out []domain.BackendConfig
	if err := s.load(ctx, SectionTranslators, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Get returns a section as JSON, with defaults filled in.
func (s *Service) Get(ctx context.Context, section string) (json.RawMessage, error) {
	var (
		v   any
		err error
	)
	switch section {
	case SectionGames:
		v, err = s.Games(ctx)
	case SectionDefault:
		v, err = s.Defaults(ctx)
	case SectionTranslators:
		var t []domain.BackendConfig
		t, err = s.Translators(ctx)
		if t == nil {
			t = []domain.BackendConfig{}
		}
		v = t
	default:
		return nil, fmt.Errorf("%q: %w", section, domain.ErrUnknownSection)
	}
	var ce *domain.ConfigError
	if err != nil && !errors.As(err, &ce) {
		return nil, err
	}
	return json.Marshal(v)
}

// Save validates value against the section's shape, stores it and returns
// the stored form.
func (s *Service) Save(ctx context.Context, section string, value json.RawMessage) (json.RawMessage, error) {
	var v any
	switch section {
	case SectionGames:
		v = &[]domain.Game{}
	case SectionDefault:
		v = &domain.DefaultConfig{}
	case SectionTranslators:
		v = &[]domain.BackendConfig{}
	default:
		return nil, fmt.Errorf("%q: %w", section, domain.ErrUnknownSection)
	}
	if err := json.Unmarshal(value, v); err != nil {
		return nil, &domain.ConfigError{Section: section, Err: err}
	}
	if section == SectionGames {
		s.mu.Lock()
		defer s.mu.Unlock()
	}
	if err := s.store(ctx, section, v); err != nil {
		return nil, err
	}
	s.log.Infow("config saved", "section", section)
	return json.Marshal(v)
}
