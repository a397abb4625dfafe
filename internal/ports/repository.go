package ports

import (
	"context"

	"yagt/internal/domain"
)

type SettingsRepository interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

type DictionaryRepository interface {
	Lookup(ctx context.Context, src, tgtLang string) (*domain.DictionaryEntry, error)
	Put(ctx context.Context, entry *domain.DictionaryEntry) error
	List(ctx context.Context, tgtLang string, limit int) ([]*domain.DictionaryEntry, error)
}
