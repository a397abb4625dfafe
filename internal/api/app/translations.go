package app

import (
	"context"
	"strings"

	dictcsv "yagt/internal/adapters/dictionary/csv"
	"yagt/internal/domain"
	"yagt/internal/ports"
	"yagt/internal/usecase/translator"
)

type TranslationsAPI struct {
	manager *translator.Manager
	dict    ports.DictionaryRepository
	emit    ports.EventEmitter
}

func NewTranslationsAPI(manager *translator.Manager, dict ports.DictionaryRepository, emit ports.EventEmitter) *TranslationsAPI {
	return &TranslationsAPI{manager: manager, dict: dict, emit: emit}
}

// Request translates text in the background; the result arrives as a
// translation event. Empty text produces no event.
func (a *TranslationsAPI) Request(text string) {
	a.manager.Translate(text, func(r domain.TranslationResult) {
		a.emit.Emit(domain.EventTranslated, domain.TranslatedEvent{Result: r})
	})
}

func (a *TranslationsAPI) Translate(text string) (domain.TranslationResult, error) {
	return a.manager.TranslateWait(context.Background(), text)
}

func (a *TranslationsAPI) Dictionary(tgtLang string, limit int) ([]*domain.DictionaryEntry, error) {
	return a.dict.List(context.Background(), tgtLang, limit)
}

func (a *TranslationsAPI) AddDictionaryEntry(e domain.DictionaryEntry) (bool, error) {
	if e.TgtLang == "" {
		e.TgtLang = a.manager.TargetLanguage()
	}
	if err := a.dict.Put(context.Background(), &e); err != nil {
		return false, err
	}
	return true, nil
}

// ImportDictionary stores every row of a CSV dictionary and returns how many
// entries were written. Rows without a lang column use the target language.
func (a *TranslationsAPI) ImportDictionary(data string) (int, error) {
	entries, err := dictcsv.Parse([]byte(data), a.manager.TargetLanguage())
	if err != nil {
		return 0, &domain.ConfigError{Section: "dictionary", Err: err}
	}
	ctx := context.Background()
	for i, e := range entries {
		if err := a.dict.Put(ctx, e); err != nil {
			return i, err
		}
	}
	return len(entries), nil
}

func (a *TranslationsAPI) ExportDictionary(tgtLang, sep string) (string, error) {
	entries, err := a.dict.List(context.Background(), tgtLang, 0)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	if err := dictcsv.Export(&b, entries, sep); err != nil {
		return "", err
	}
	return b.String(), nil
}
