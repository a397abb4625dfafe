package library

import (
	"context"
	"errors"

	"yagt/internal/domain"
)

// BackendSink receives backend configuration; the translation manager
// implements it.
type BackendSink interface {
	SetTargetLanguage(lang string)
	InitializeAPIs(ctx context.Context, cfgs []domain.BackendConfig) error
	InitializeTranslators(ctx context.Context, cfgs []domain.BackendConfig) error
}

// Apply loads "default" and "translators" and hands them to sink. Malformed
// sections fall back to defaults; every failure is joined into the result.
func (s *Service) Apply(ctx context.Context, sink BackendSink) error {
	var errs []error
	def, err := s.Defaults(ctx)
	if err != nil {
		errs = append(errs, err)
	}
	tr, err := s.Translators(ctx)
	if err != nil {
		errs = append(errs, err)
	}
	sink.SetTargetLanguage(def.TargetLanguage)
	if err := sink.InitializeTranslators(ctx, tr); err != nil {
		errs = append(errs, err)
	}
	if err := sink.InitializeAPIs(ctx, def.OnlineAPIs); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
